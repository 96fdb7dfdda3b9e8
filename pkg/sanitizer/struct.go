package sanitizer

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strictPolicy = bluemonday.StrictPolicy()

// StripHTML removes all HTML from s, returning plain text.
// Use for fields that must never contain markup (names, titles, search input).
func StripHTML(s string) string {
	return strictPolicy.Sanitize(s)
}

// SanitizeStruct applies the sanitize tag directives to the string
// fields of the struct v points to, in tag order:
//
//	type CreateComment struct {
//	    Author string `sanitize:"trim"`
//	    Email  string `sanitize:"trim,lower"`
//	    Body   string `sanitize:"html"`
//	}
//
// Supported directives:
//
//	trim   strip leading and trailing whitespace
//	lower  lowercase
//	upper  uppercase
//	strip  remove all HTML, leaving plain text
//	html   remove unsafe HTML, keeping basic formatting
//
// Nested structs, pointers, and slices are walked recursively. Fields
// tagged sanitize:"-" are skipped. Unknown directives are reported as
// errors since they indicate a typo in the model.
func SanitizeStruct(v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("sanitizer: target must be a non-nil pointer to a struct, got %T", v)
	}
	rv = rv.Elem()
	if rv.Kind() != reflect.Struct {
		return fmt.Errorf("sanitizer: target must point to a struct, got %s", rv.Kind())
	}
	return sanitizeStruct(rv)
}

func sanitizeStruct(rv reflect.Value) error {
	rt := rv.Type()
	for i := 0; i < rv.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}
		tag := field.Tag.Get("sanitize")
		if tag == "-" {
			continue
		}
		if err := sanitizeValue(rv.Field(i), tag, field.Name); err != nil {
			return err
		}
	}
	return nil
}

func sanitizeValue(fv reflect.Value, tag, name string) error {
	switch fv.Kind() {
	case reflect.String:
		if tag == "" {
			return nil
		}
		out, err := applyDirectives(fv.String(), tag, name)
		if err != nil {
			return err
		}
		if fv.CanSet() {
			fv.SetString(out)
		}
	case reflect.Pointer:
		if fv.IsNil() {
			return nil
		}
		return sanitizeValue(fv.Elem(), tag, name)
	case reflect.Struct:
		return sanitizeStruct(fv)
	case reflect.Slice, reflect.Array:
		for i := 0; i < fv.Len(); i++ {
			if err := sanitizeValue(fv.Index(i), tag, name); err != nil {
				return err
			}
		}
	}
	return nil
}

func applyDirectives(s, tag, field string) (string, error) {
	for _, directive := range strings.Split(tag, ",") {
		switch strings.TrimSpace(directive) {
		case "":
		case "trim":
			s = strings.TrimSpace(s)
		case "lower":
			s = strings.ToLower(s)
		case "upper":
			s = strings.ToUpper(s)
		case "strip":
			s = StripHTML(s)
		case "html":
			s = SanitizeHTML(s)
		default:
			return "", fmt.Errorf("sanitizer: field %s: unknown directive %q", field, directive)
		}
	}
	return s, nil
}
