package internal

import (
	"strings"
)

// ExtractorSource pulls one candidate value out of a request. It
// reports false when the source has nothing to offer so the chain can
// move on.
type ExtractorSource = func(Context) (string, bool)

// Extractor is an ordered chain of sources. The security stage and the
// auth middleware use it to locate credentials; the I18n middleware
// uses it to locate the request language.
type Extractor struct {
	sources []ExtractorSource
}

// NewExtractor builds a chain that consults sources left to right.
func NewExtractor(sources ...ExtractorSource) Extractor {
	return Extractor{sources: sources}
}

// Extract returns the first non-empty value any source produces.
func (e Extractor) Extract(c Context) (string, bool) {
	for _, src := range e.sources {
		if v, ok := src(c); ok && v != "" {
			return v, true
		}
	}
	return "", false
}

// nonEmpty adapts a plain getter into an ExtractorSource, treating an
// empty string as a miss.
func nonEmpty(get func(Context) string) ExtractorSource {
	return func(c Context) (string, bool) {
		v := get(c)
		return v, v != ""
	}
}

// FromHeader reads a request header.
func FromHeader(name string) ExtractorSource {
	return nonEmpty(func(c Context) string { return c.Header(name) })
}

// FromQuery reads a query-string parameter.
func FromQuery(name string) ExtractorSource {
	return nonEmpty(func(c Context) string { return c.Query(name) })
}

// FromParam reads a route parameter.
func FromParam(name string) ExtractorSource {
	return nonEmpty(func(c Context) string { return c.Param(name) })
}

// FromForm reads a form field.
func FromForm(name string) ExtractorSource {
	return nonEmpty(func(c Context) string { return c.Form(name) })
}

// FromCookie reads a request cookie.
func FromCookie(name string) ExtractorSource {
	return func(c Context) (string, bool) {
		cookie, err := c.Request().Cookie(name)
		if err != nil || cookie.Value == "" {
			return "", false
		}
		return cookie.Value, true
	}
}

// FromClaim reads a claim off the request principal. Misses when no
// principal was established or the claim is absent.
func FromClaim(name string) ExtractorSource {
	return func(c Context) (string, bool) {
		v, ok := c.Principal().Claim(name)
		if !ok || v == "" {
			return "", false
		}
		return v, true
	}
}

// FromBearerToken reads the token from an "Authorization: Bearer ..."
// header. The scheme comparison is case-insensitive.
func FromBearerToken() ExtractorSource {
	return func(c Context) (string, bool) {
		auth := c.Header("Authorization")
		if len(auth) < 7 || !strings.EqualFold(auth[:7], "bearer ") {
			return "", false
		}
		return auth[7:], auth[7:] != ""
	}
}
