package validator

import (
	"fmt"
	"regexp"
	"strings"
)

type number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// Translation keys shared by the rule constructors and ValidateStruct.
const (
	keyRequired    = "validation.required"
	keyMinLength   = "validation.min_length"
	keyMaxLength   = "validation.max_length"
	keyExactLength = "validation.exact_length"
	keyMin         = "validation.min"
	keyMax         = "validation.max"
	keyMinItems    = "validation.min_items"
	keyMaxItems    = "validation.max_items"
	keyExactItems  = "validation.exact_items"
	keyEmail       = "validation.email"
	keyOneOf       = "validation.one_of"
)

var emailRx = regexp.MustCompile(`^[a-zA-Z0-9.!#$%&'*+/=?^_` + "`" + `{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)+$`)

// RequiredString fails when value is empty or whitespace-only.
func RequiredString(field, value string) Rule {
	return Rule{
		Check: func() bool { return strings.TrimSpace(value) != "" },
		Error: ValidationError{
			Field:             field,
			Message:           "is required",
			TranslationKey:    keyRequired,
			TranslationValues: map[string]any{"field": field},
		},
	}
}

// MinLenString fails when value is shorter than min characters.
// Empty values pass so optional fields can combine with RequiredString.
func MinLenString(field, value string, min int) Rule {
	return Rule{
		Check: func() bool { return value == "" || len([]rune(value)) >= min },
		Error: ValidationError{
			Field:             field,
			Message:           fmt.Sprintf("must be at least %d characters", min),
			TranslationKey:    keyMinLength,
			TranslationValues: map[string]any{"field": field, "min": min},
		},
	}
}

// MaxLenString fails when value is longer than max characters.
func MaxLenString(field, value string, max int) Rule {
	return Rule{
		Check: func() bool { return len([]rune(value)) <= max },
		Error: ValidationError{
			Field:             field,
			Message:           fmt.Sprintf("must not exceed %d characters", max),
			TranslationKey:    keyMaxLength,
			TranslationValues: map[string]any{"field": field, "max": max},
		},
	}
}

// LenString fails when value is not exactly length characters long.
// Empty values pass.
func LenString(field, value string, length int) Rule {
	return Rule{
		Check: func() bool { return value == "" || len([]rune(value)) == length },
		Error: ValidationError{
			Field:             field,
			Message:           fmt.Sprintf("must be exactly %d characters", length),
			TranslationKey:    keyExactLength,
			TranslationValues: map[string]any{"field": field, "length": length},
		},
	}
}

// RequiredNum fails when value is zero.
func RequiredNum[T number](field string, value T) Rule {
	return Rule{
		Check: func() bool { return value != 0 },
		Error: ValidationError{
			Field:             field,
			Message:           "is required",
			TranslationKey:    keyRequired,
			TranslationValues: map[string]any{"field": field},
		},
	}
}

// MinNum fails when value is below min.
func MinNum[T number](field string, value, min T) Rule {
	return Rule{
		Check: func() bool { return value >= min },
		Error: ValidationError{
			Field:             field,
			Message:           fmt.Sprintf("must be at least %v", min),
			TranslationKey:    keyMin,
			TranslationValues: map[string]any{"field": field, "min": min},
		},
	}
}

// MaxNum fails when value is above max.
func MaxNum[T number](field string, value, max T) Rule {
	return Rule{
		Check: func() bool { return value <= max },
		Error: ValidationError{
			Field:             field,
			Message:           fmt.Sprintf("must not exceed %v", max),
			TranslationKey:    keyMax,
			TranslationValues: map[string]any{"field": field, "max": max},
		},
	}
}

// RequiredSlice fails when the slice is empty.
func RequiredSlice[T any](field string, value []T) Rule {
	return Rule{
		Check: func() bool { return len(value) > 0 },
		Error: ValidationError{
			Field:             field,
			Message:           "is required",
			TranslationKey:    keyRequired,
			TranslationValues: map[string]any{"field": field},
		},
	}
}

// MinLenSlice fails when the slice holds fewer than min items.
func MinLenSlice[T any](field string, value []T, min int) Rule {
	return Rule{
		Check: func() bool { return len(value) >= min },
		Error: ValidationError{
			Field:             field,
			Message:           fmt.Sprintf("must contain at least %d items", min),
			TranslationKey:    keyMinItems,
			TranslationValues: map[string]any{"field": field, "min": min},
		},
	}
}

// MaxLenSlice fails when the slice holds more than max items.
func MaxLenSlice[T any](field string, value []T, max int) Rule {
	return Rule{
		Check: func() bool { return len(value) <= max },
		Error: ValidationError{
			Field:             field,
			Message:           fmt.Sprintf("must not contain more than %d items", max),
			TranslationKey:    keyMaxItems,
			TranslationValues: map[string]any{"field": field, "max": max},
		},
	}
}

// LenSlice fails when the slice does not hold exactly count items.
func LenSlice[T any](field string, value []T, count int) Rule {
	return Rule{
		Check: func() bool { return len(value) == count },
		Error: ValidationError{
			Field:             field,
			Message:           fmt.Sprintf("must contain exactly %d items", count),
			TranslationKey:    keyExactItems,
			TranslationValues: map[string]any{"field": field, "count": count},
		},
	}
}

// RequiredMap fails when the map is empty.
func RequiredMap[K comparable, V any](field string, value map[K]V) Rule {
	return Rule{
		Check: func() bool { return len(value) > 0 },
		Error: ValidationError{
			Field:             field,
			Message:           "is required",
			TranslationKey:    keyRequired,
			TranslationValues: map[string]any{"field": field},
		},
	}
}

// Email fails when value is not a plausible email address.
// Empty values pass.
func Email(field, value string) Rule {
	return Rule{
		Check: func() bool { return value == "" || emailRx.MatchString(value) },
		Error: ValidationError{
			Field:             field,
			Message:           "must be a valid email address",
			TranslationKey:    keyEmail,
			TranslationValues: map[string]any{"field": field},
		},
	}
}

// OneOf fails when value is not among allowed. Empty values pass.
func OneOf(field, value string, allowed ...string) Rule {
	return Rule{
		Check: func() bool {
			if value == "" {
				return true
			}
			for _, a := range allowed {
				if value == a {
					return true
				}
			}
			return false
		},
		Error: ValidationError{
			Field:             field,
			Message:           fmt.Sprintf("must be one of: %s", strings.Join(allowed, ", ")),
			TranslationKey:    keyOneOf,
			TranslationValues: map[string]any{"field": field, "values": strings.Join(allowed, ", ")},
		},
	}
}
