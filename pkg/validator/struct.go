package validator

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// ValidateStruct evaluates `validate` struct tags on v and returns the
// accumulated failures as ValidationErrors, or nil when everything passes.
// v must be a struct or a pointer to one; anything else passes trivially.
//
// Tag grammar: rules separated by ";", parameters attached with ":".
//
//	Name  string   `json:"name" validate:"required;min:2;max:100"`
//	Email string   `json:"email" validate:"required;email"`
//	Tags  []string `json:"tags" validate:"max:5"`
//	Level string   `json:"level" validate:"oneof:low|medium|high"`
//
// min/max/len apply to character count for strings, item count for slices
// and maps, and the numeric value for numbers. Nested structs are validated
// recursively with dotted field paths.
func ValidateStruct(v any) error {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}

	var ve ValidationErrors
	validateStructValue(rv, "", &ve)
	if len(ve) == 0 {
		return nil
	}
	return ve
}

func validateStructValue(rv reflect.Value, prefix string, ve *ValidationErrors) {
	rt := rv.Type()
	for i := range rt.NumField() {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}
		fv := rv.Field(i)

		// Embedded structs validate under the parent's path.
		if sf.Anonymous && fv.Kind() == reflect.Struct {
			validateStructValue(fv, prefix, ve)
			continue
		}

		name := fieldName(sf)
		if prefix != "" {
			name = prefix + "." + name
		}

		if tag := sf.Tag.Get("validate"); tag != "" && tag != "-" {
			for _, rule := range strings.Split(tag, ";") {
				rule = strings.TrimSpace(rule)
				if rule == "" {
					continue
				}
				if r, ok := ruleFromTag(name, fv, rule); ok {
					if r.Check != nil && !r.Check() {
						*ve = append(*ve, r.Error)
					}
				}
			}
		}

		// Recurse into nested struct values so their tags apply too.
		if fv.Kind() == reflect.Struct && fv.Type() != timeType {
			validateStructValue(fv, name, ve)
		} else if fv.Kind() == reflect.Pointer && !fv.IsNil() && fv.Elem().Kind() == reflect.Struct && fv.Elem().Type() != timeType {
			validateStructValue(fv.Elem(), name, ve)
		}
	}
}

var timeType = reflect.TypeOf(time.Time{})

func fieldName(sf reflect.StructField) string {
	for _, tag := range []string{"json", "form", "query", "param"} {
		if v := sf.Tag.Get(tag); v != "" && v != "-" {
			if idx := strings.Index(v, ","); idx >= 0 {
				v = v[:idx]
			}
			if v != "" {
				return v
			}
		}
	}
	return strings.ToLower(sf.Name[:1]) + sf.Name[1:]
}

func ruleFromTag(field string, fv reflect.Value, rule string) (Rule, bool) {
	name, param, _ := strings.Cut(rule, ":")
	switch name {
	case "required":
		return requiredRule(field, fv), true
	case "min":
		n, err := strconv.Atoi(param)
		if err != nil {
			return Rule{}, false
		}
		return boundRule(field, fv, n, true), true
	case "max":
		n, err := strconv.Atoi(param)
		if err != nil {
			return Rule{}, false
		}
		return boundRule(field, fv, n, false), true
	case "len":
		n, err := strconv.Atoi(param)
		if err != nil {
			return Rule{}, false
		}
		if fv.Kind() == reflect.String {
			return LenString(field, fv.String(), n), true
		}
		if fv.Kind() == reflect.Slice || fv.Kind() == reflect.Array {
			return Rule{
				Check: func() bool { return fv.Len() == n },
				Error: ValidationError{
					Field:             field,
					Message:           fmt.Sprintf("must contain exactly %d items", n),
					TranslationKey:    keyExactItems,
					TranslationValues: map[string]any{"field": field, "count": n},
				},
			}, true
		}
		return Rule{}, false
	case "email":
		if fv.Kind() == reflect.String {
			return Email(field, fv.String()), true
		}
		return Rule{}, false
	case "oneof":
		if fv.Kind() == reflect.String {
			return OneOf(field, fv.String(), strings.Split(param, "|")...), true
		}
		return Rule{}, false
	default:
		return Rule{}, false
	}
}

func requiredRule(field string, fv reflect.Value) Rule {
	switch fv.Kind() {
	case reflect.String:
		return RequiredString(field, fv.String())
	case reflect.Slice, reflect.Map, reflect.Array:
		return Rule{
			Check: func() bool { return fv.Len() > 0 },
			Error: ValidationError{
				Field:             field,
				Message:           "is required",
				TranslationKey:    keyRequired,
				TranslationValues: map[string]any{"field": field},
			},
		}
	case reflect.Pointer, reflect.Interface:
		return Rule{
			Check: func() bool { return !fv.IsNil() },
			Error: ValidationError{
				Field:             field,
				Message:           "is required",
				TranslationKey:    keyRequired,
				TranslationValues: map[string]any{"field": field},
			},
		}
	default:
		return Rule{
			Check: func() bool { return !fv.IsZero() },
			Error: ValidationError{
				Field:             field,
				Message:           "is required",
				TranslationKey:    keyRequired,
				TranslationValues: map[string]any{"field": field},
			},
		}
	}
}

func boundRule(field string, fv reflect.Value, n int, isMin bool) Rule {
	switch fv.Kind() {
	case reflect.String:
		if isMin {
			return MinLenString(field, fv.String(), n)
		}
		return MaxLenString(field, fv.String(), n)
	case reflect.Slice, reflect.Map, reflect.Array:
		if isMin {
			return Rule{
				Check: func() bool { return fv.Len() >= n },
				Error: ValidationError{
					Field:             field,
					Message:           fmt.Sprintf("must contain at least %d items", n),
					TranslationKey:    keyMinItems,
					TranslationValues: map[string]any{"field": field, "min": n},
				},
			}
		}
		return Rule{
			Check: func() bool { return fv.Len() <= n },
			Error: ValidationError{
				Field:             field,
				Message:           fmt.Sprintf("must not contain more than %d items", n),
				TranslationKey:    keyMaxItems,
				TranslationValues: map[string]any{"field": field, "max": n},
			},
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if isMin {
			return MinNum(field, fv.Int(), int64(n))
		}
		return MaxNum(field, fv.Int(), int64(n))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if isMin {
			return MinNum(field, fv.Uint(), uint64(n))
		}
		return MaxNum(field, fv.Uint(), uint64(n))
	case reflect.Float32, reflect.Float64:
		if isMin {
			return MinNum(field, fv.Float(), float64(n))
		}
		return MaxNum(field, fv.Float(), float64(n))
	default:
		return Rule{}
	}
}
