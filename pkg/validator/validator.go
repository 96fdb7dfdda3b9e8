package validator

// Rule is a single validation check paired with the error it produces on
// failure. Error is always populated at construction so callers can inspect
// translation metadata without evaluating the rule.
type Rule struct {
	Check func() bool
	Error ValidationError
}

// Apply evaluates rules in order and returns the accumulated failures as a
// ValidationErrors error, or nil when every rule passes. Evaluation never
// stops early: all failures surface together.
func Apply(rules ...Rule) error {
	var ve ValidationErrors
	for _, r := range rules {
		if r.Check != nil && !r.Check() {
			ve = append(ve, r.Error)
		}
	}
	if len(ve) == 0 {
		return nil
	}
	return ve
}

// Custom builds a rule from an arbitrary predicate. The resulting error has
// no translation key, so the message is reported verbatim.
func Custom(field, message string, valid func() bool) Rule {
	return Rule{
		Check: valid,
		Error: ValidationError{
			Field:   field,
			Message: message,
		},
	}
}

// Validatable lets a model declare cross-field checks that run after
// tag-based validation. Returned errors are appended to the same ordered
// sequence as the tag failures.
type Validatable interface {
	Validate() ValidationErrors
}
