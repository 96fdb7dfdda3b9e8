package validator

import (
	"errors"
	"strings"
)

// ValidationError describes a single failed check for a single field.
// Message holds a ready-to-display English message; TranslationKey and
// TranslationValues allow replacing it with a localized one.
type ValidationError struct {
	TranslationValues map[string]any `json:"-"`
	Field             string         `json:"field"`
	Message           string         `json:"message"`
	TranslationKey    string         `json:"-"`
}

// ValidationErrors is an ordered collection of validation errors.
// Insertion order is significant and preserved through translation,
// filtering, and rendering.
type ValidationErrors []ValidationError

// TranslateFunc converts a translation key and its placeholder values into
// a localized message. i18n translators satisfy this signature directly.
type TranslateFunc func(key string, values map[string]any) string

// Error implements the error interface.
func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "validation failed"
	}
	var b strings.Builder
	b.WriteString("validation failed: ")
	for i, e := range ve {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(e.Field)
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	return b.String()
}

// IsEmpty reports whether the collection contains no errors.
func (ve ValidationErrors) IsEmpty() bool {
	return len(ve) == 0
}

// Has reports whether any error exists for the given field.
func (ve ValidationErrors) Has(field string) bool {
	for _, e := range ve {
		if e.Field == field {
			return true
		}
	}
	return false
}

// Get returns the messages recorded for the given field, in insertion order.
func (ve ValidationErrors) Get(field string) []string {
	var msgs []string
	for _, e := range ve {
		if e.Field == field {
			msgs = append(msgs, e.Message)
		}
	}
	return msgs
}

// GetErrors returns the full errors recorded for the given field.
func (ve ValidationErrors) GetErrors(field string) []ValidationError {
	var out []ValidationError
	for _, e := range ve {
		if e.Field == field {
			out = append(out, e)
		}
	}
	return out
}

// Fields returns the distinct field names that have errors, in first-seen order.
func (ve ValidationErrors) Fields() []string {
	var fields []string
	seen := make(map[string]struct{}, len(ve))
	for _, e := range ve {
		if _, ok := seen[e.Field]; ok {
			continue
		}
		seen[e.Field] = struct{}{}
		fields = append(fields, e.Field)
	}
	return fields
}

// Translate rewrites every Message in place using fn. Errors without a
// TranslationKey keep their original message. A nil fn is a no-op.
func (ve ValidationErrors) Translate(fn TranslateFunc) {
	if fn == nil {
		return
	}
	for i := range ve {
		if ve[i].TranslationKey == "" {
			continue
		}
		ve[i].Message = fn(ve[i].TranslationKey, ve[i].TranslationValues)
	}
}

// IsValidationError reports whether err is (or wraps) ValidationErrors.
func IsValidationError(err error) bool {
	var ve ValidationErrors
	return errors.As(err, &ve)
}

// ExtractValidationErrors returns the ValidationErrors wrapped in err,
// or nil when err carries none.
func ExtractValidationErrors(err error) ValidationErrors {
	var ve ValidationErrors
	if errors.As(err, &ve) {
		return ve
	}
	return nil
}
