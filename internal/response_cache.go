package internal

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"time"

	"github.com/sciocoder/FastEndpoints/pkg/cache"
)

// respCacheMaxEntries caps each endpoint's response cache. Entries
// beyond the cap evict least-recently-used first.
const respCacheMaxEntries = 1024

// cachedResponse is a stored copy of a successful response: the
// headers as the handler left them, the full body, and the status.
type cachedResponse struct {
	header http.Header
	body   []byte
	status int
}

// newResponseCache wraps an endpoint handler with an in-memory
// response cache. Only 200 responses are stored (the method is pinned
// to GET at registration). Entries are keyed by the full request URI
// and the Authorization header, so authenticated callers never see
// each other's payloads. Served responses carry X-Cache: HIT, fresh
// ones X-Cache: MISS.
func newResponseCache(ttl time.Duration) func(http.Handler) http.Handler {
	// Lazy expiry plus the LRU cap keeps the store goroutine-free; a
	// sweeper would outlive nothing since the app never tears routes
	// down.
	store := cache.NewMemory[cachedResponse](
		cache.WithDefaultTTL(ttl),
		cache.WithMaxEntries(respCacheMaxEntries),
		cache.WithCleanupInterval(0),
	)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := responseCacheKey(r)
			if entry, err := store.Get(r.Context(), key); err == nil {
				replayResponse(w, entry)
				return
			}

			rec := newCacheRecorder(w)
			next.ServeHTTP(rec, r)

			if !rec.Written() || rec.Status() != http.StatusOK {
				return
			}
			header := w.Header().Clone()
			// The marker and Date belong to the original exchange,
			// not the stored copy.
			header.Del("X-Cache")
			header.Del("Date")
			_ = store.Set(r.Context(), key, cachedResponse{
				header: header,
				body:   rec.body.Bytes(),
				status: rec.Status(),
			}, ttl)
		})
	}
}

// responseCacheKey derives the storage key for a request. Hashing
// keeps Authorization values out of the cache's key space.
func responseCacheKey(r *http.Request) string {
	sum := sha256.Sum256([]byte(r.URL.RequestURI() + "\x00" + r.Header.Get("Authorization")))
	return hex.EncodeToString(sum[:])
}

// replayResponse writes a stored response to the client.
func replayResponse(w http.ResponseWriter, entry cachedResponse) {
	dst := w.Header()
	for name, values := range entry.header {
		dst[name] = values
	}
	dst.Set("X-Cache", "HIT")
	w.WriteHeader(entry.status)
	_, _ = w.Write(entry.body)
}

// cacheRecorder tees the response body while the wrapped
// ResponseWriter tracks status and stamps the miss marker before the
// first write.
type cacheRecorder struct {
	*ResponseWriter
	body bytes.Buffer
}

func newCacheRecorder(w http.ResponseWriter) *cacheRecorder {
	rw := NewResponseWriter(w)
	rw.OnBeforeWrite(func() {
		w.Header().Set("X-Cache", "MISS")
	})
	return &cacheRecorder{ResponseWriter: rw}
}

func (cr *cacheRecorder) Write(b []byte) (int, error) {
	n, err := cr.ResponseWriter.Write(b)
	cr.body.Write(b[:n])
	return n, err
}
