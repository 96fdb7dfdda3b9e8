package internal

import (
	"strconv"

	"github.com/sciocoder/FastEndpoints/pkg/di"
)

// scalar covers the types Param, Query, and QueryDefault can decode
// from their raw string form.
type scalar interface {
	~string | ~int | ~int64 | ~float64 | ~bool
}

// ContextValue returns the value stored under key as T, or T's zero
// value on a missing key or type mismatch.
func ContextValue[T any](c Context, key any) T {
	if v, ok := c.Get(key).(T); ok {
		return v
	}
	var zero T
	return zero
}

// RequestFrom returns the bound request model as *T. Nil means the
// endpoint declared no model or declared a different type.
func RequestFrom[T any](c Context) *T {
	if m, ok := c.Model().(*T); ok {
		return m
	}
	return nil
}

// Resolve pulls a service of type T out of the app container.
func Resolve[T any](c Context) (T, error) {
	return di.Resolve[T](c.Container())
}

// Param returns a route parameter decoded as T, or T's zero value when
// absent or unparsable.
func Param[T scalar](c Context, name string) T {
	v, _ := decodeScalar[T](c.Param(name))
	return v
}

// Query returns a query parameter decoded as T, or T's zero value when
// absent or unparsable.
func Query[T scalar](c Context, name string) T {
	v, _ := decodeScalar[T](c.Query(name))
	return v
}

// QueryDefault is Query with a fallback for missing or unparsable
// input.
func QueryDefault[T scalar](c Context, name string, defaultValue T) T {
	raw := c.Query(name)
	if raw == "" {
		return defaultValue
	}
	if v, ok := decodeScalar[T](raw); ok {
		return v
	}
	return defaultValue
}

func decodeScalar[T scalar](raw string) (T, bool) {
	var zero T
	switch any(zero).(type) {
	case string:
		return any(raw).(T), true
	case int:
		if v, err := strconv.Atoi(raw); err == nil {
			return any(v).(T), true
		}
	case int64:
		if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return any(v).(T), true
		}
	case float64:
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			return any(v).(T), true
		}
	case bool:
		if v, err := strconv.ParseBool(raw); err == nil {
			return any(v).(T), true
		}
	}
	return zero, false
}
