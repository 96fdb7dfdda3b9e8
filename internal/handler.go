package internal

// HandlerFunc is the signature for request handlers.
// It receives a Context and returns an error.
// Returning a non-nil error triggers the error handling path.
type HandlerFunc func(c Context) error

// Middleware wraps a HandlerFunc to add cross-cutting concerns.
// Middleware can inspect/modify the request, short-circuit processing,
// or wrap the response.
//
// Example:
//
//	func RequireTLS(next fastendpoints.HandlerFunc) fastendpoints.HandlerFunc {
//	    return func(c fastendpoints.Context) error {
//	        if c.Request().TLS == nil {
//	            return fastendpoints.ErrForbidden("TLS required")
//	        }
//	        return next(c)
//	    }
//	}
type Middleware func(next HandlerFunc) HandlerFunc

// ErrorHandler handles errors returned from handlers.
type ErrorHandler func(Context, error) error
