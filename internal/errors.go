package internal

import (
	"errors"
	"net/http"
)

// HTTPError carries everything an error handler needs to render a
// failure: the status code, a user-facing message, and optional
// structured detail. The wrapped Err is for logs only and never
// reaches the client.
type HTTPError struct {
	Err       error  // underlying cause, kept out of responses
	Message   string // user-facing message
	Title     string // optional; derived from Code when empty
	Detail    string // optional extended description
	ErrorCode string // application-level code for clients and i18n
	RequestID string // request correlation ID
	Code      int    // HTTP status
}

func (e *HTTPError) Error() string { return e.Message }

func (e *HTTPError) Unwrap() error { return e.Err }

func (e *HTTPError) StatusCode() int { return e.Code }

func (e *HTTPError) StatusText() string { return http.StatusText(e.Code) }

// HTTPErrorOption configures an HTTPError.
type HTTPErrorOption func(*HTTPError)

// WithTitle sets the rendered title.
func WithTitle(title string) HTTPErrorOption {
	return func(e *HTTPError) { e.Title = title }
}

// WithDetail sets the extended description.
func WithDetail(detail string) HTTPErrorOption {
	return func(e *HTTPError) { e.Detail = detail }
}

// WithErrorCode sets the application-level error code.
func WithErrorCode(code string) HTTPErrorOption {
	return func(e *HTTPError) { e.ErrorCode = code }
}

// WithRequestID attaches the request correlation ID.
func WithRequestID(id string) HTTPErrorOption {
	return func(e *HTTPError) { e.RequestID = id }
}

// WithError records the underlying cause for logging.
func WithError(err error) HTTPErrorOption {
	return func(e *HTTPError) { e.Err = err }
}

// NewHTTPError creates an HTTPError with the given status and message.
func NewHTTPError(code int, message string) *HTTPError {
	return &HTTPError{Code: code, Message: message}
}

func newStatusError(code int, message string, opts []HTTPErrorOption) *HTTPError {
	e := NewHTTPError(code, message)
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Constructors for the statuses handlers raise in practice. Anything
// else goes through NewHTTPError directly.

func ErrBadRequest(message string, opts ...HTTPErrorOption) *HTTPError {
	return newStatusError(http.StatusBadRequest, message, opts)
}

func ErrUnauthorized(message string, opts ...HTTPErrorOption) *HTTPError {
	return newStatusError(http.StatusUnauthorized, message, opts)
}

func ErrForbidden(message string, opts ...HTTPErrorOption) *HTTPError {
	return newStatusError(http.StatusForbidden, message, opts)
}

func ErrNotFound(message string, opts ...HTTPErrorOption) *HTTPError {
	return newStatusError(http.StatusNotFound, message, opts)
}

func ErrMethodNotAllowed(message string, opts ...HTTPErrorOption) *HTTPError {
	return newStatusError(http.StatusMethodNotAllowed, message, opts)
}

func ErrConflict(message string, opts ...HTTPErrorOption) *HTTPError {
	return newStatusError(http.StatusConflict, message, opts)
}

func ErrUnprocessable(message string, opts ...HTTPErrorOption) *HTTPError {
	return newStatusError(http.StatusUnprocessableEntity, message, opts)
}

func ErrTooManyRequests(message string, opts ...HTTPErrorOption) *HTTPError {
	return newStatusError(http.StatusTooManyRequests, message, opts)
}

func ErrInternal(message string, opts ...HTTPErrorOption) *HTTPError {
	return newStatusError(http.StatusInternalServerError, message, opts)
}

func ErrServiceUnavailable(message string, opts ...HTTPErrorOption) *HTTPError {
	return newStatusError(http.StatusServiceUnavailable, message, opts)
}

// IsHTTPError reports whether err is, or wraps, an *HTTPError.
func IsHTTPError(err error) bool {
	return AsHTTPError(err) != nil
}

// AsHTTPError unwraps err down to an *HTTPError, or nil when there is
// none in the chain.
func AsHTTPError(err error) *HTTPError {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	return nil
}
