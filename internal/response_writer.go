package internal

import (
	"bufio"
	"net"
	"net/http"
	"sync"
)

// ResponseWriter decorates http.ResponseWriter with outcome tracking.
// The pipeline reads Written to tell a responded handler from a silent
// one, and response caching and metrics register OnBeforeWrite hooks to
// observe the status before it leaves the process.
type ResponseWriter struct {
	http.ResponseWriter
	status      int
	size        int64
	written     bool
	beforeWrite []func()
	mu          sync.Mutex
}

// NewResponseWriter wraps w. The status defaults to 200 until the
// handler says otherwise.
func NewResponseWriter(w http.ResponseWriter) *ResponseWriter {
	return &ResponseWriter{ResponseWriter: w, status: http.StatusOK}
}

// OnBeforeWrite registers a hook invoked once, right before the first
// byte or header hits the wire. Hooks run in registration order.
func (w *ResponseWriter) OnBeforeWrite(fn func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.beforeWrite = append(w.beforeWrite, fn)
}

// commit marks the response as started and returns the pending hooks.
// The second return is false when another write already won.
func (w *ResponseWriter) commit(status int) ([]func(), bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.written {
		return nil, false
	}
	w.written = true
	w.status = status
	hooks := w.beforeWrite
	w.beforeWrite = nil
	return hooks, true
}

// WriteHeader sends the status line. Only the first call counts;
// later calls are dropped.
func (w *ResponseWriter) WriteHeader(code int) {
	hooks, first := w.commit(code)
	if !first {
		return
	}
	for _, fn := range hooks {
		fn()
	}
	w.ResponseWriter.WriteHeader(code)
}

// Write sends body bytes, implying a 200 status if none was set.
func (w *ResponseWriter) Write(b []byte) (int, error) {
	if hooks, first := w.commit(w.status); first {
		for _, fn := range hooks {
			fn()
		}
		w.ResponseWriter.WriteHeader(w.status)
	}

	n, err := w.ResponseWriter.Write(b)
	w.size += int64(n)
	return n, err
}

// Status returns the committed (or pending default) status code.
func (w *ResponseWriter) Status() int { return w.status }

// Size returns the number of body bytes written so far.
func (w *ResponseWriter) Size() int64 { return w.size }

// Written reports whether the response has started.
func (w *ResponseWriter) Written() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.written
}

// Flush passes through to the underlying writer when it supports it.
func (w *ResponseWriter) Flush() {
	if flusher, ok := w.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

// Hijack passes through to the underlying writer when it supports it.
func (w *ResponseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if hijacker, ok := w.ResponseWriter.(http.Hijacker); ok {
		return hijacker.Hijack()
	}
	return nil, nil, http.ErrNotSupported
}

// Push passes through to the underlying writer when it supports it.
func (w *ResponseWriter) Push(target string, opts *http.PushOptions) error {
	if pusher, ok := w.ResponseWriter.(http.Pusher); ok {
		return pusher.Push(target, opts)
	}
	return http.ErrNotSupported
}

// Unwrap exposes the original writer for middleware that needs it.
func (w *ResponseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
