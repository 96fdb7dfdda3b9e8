// Package slug turns arbitrary strings into URL-safe identifiers.
// Latin diacritics fold to ASCII, everything non-alphanumeric becomes
// a separator, and options cover length limits, random suffixes, and
// reserved-name collisions.
//
//	slug.Make("Café & Restaurant")
//	// "cafe-restaurant"
//
//	slug.Make("Long Article Title", slug.MaxLength(20), slug.WithSuffix(6))
//	// "long-article-x3k7f9"
//
//	slug.Make("admin", slug.ReservedSlugs("admin", "api"))
//	// "admin-k7x2m4"
//
// Scripts that do not fold to ASCII (Cyrillic, CJK) are dropped, so
// pair WithSuffix or MinLength with such input to avoid empty slugs.
// The framework uses the package to derive OpenAPI operation IDs from
// endpoint names.
package slug
