// Package validator provides composable validation rules that accumulate
// structured, translatable errors instead of failing on the first problem.
//
// Rules are plain values built by constructor functions and evaluated by
// Apply. Every failed rule contributes one ValidationError carrying the
// field path, a default English message, and a translation key with
// placeholder values, so messages can be localized after the fact:
//
//	err := validator.Apply(
//	    validator.RequiredString("email", form.Email),
//	    validator.MinLenString("password", form.Password, 8),
//	)
//	if validator.IsValidationError(err) {
//	    ve := validator.ExtractValidationErrors(err)
//	    ve.Translate(translator.TranslateMessage)
//	}
//
// ValidateStruct drives the same rules from struct tags for shapes that
// prefer declarative validation:
//
//	type CreateUser struct {
//	    Email string `json:"email" validate:"required;email"`
//	    Name  string `json:"name" validate:"required;min:2;max:100"`
//	}
//
// The error order is the rule declaration order (or struct field order for
// ValidateStruct) and is preserved all the way to the caller.
package validator
