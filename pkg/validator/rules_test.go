package validator_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sciocoder/FastEndpoints/pkg/validator"
)

func TestApply(t *testing.T) {
	t.Parallel()

	t.Run("returns nil when all rules pass", func(t *testing.T) {
		t.Parallel()
		err := validator.Apply(
			validator.RequiredString("email", "user@example.com"),
			validator.MinLenString("password", "supersecret", 8),
			validator.MaxNum("age", 42, 120),
		)
		assert.NoError(t, err)
	})

	t.Run("accumulates failures in declaration order", func(t *testing.T) {
		t.Parallel()
		err := validator.Apply(
			validator.RequiredString("email", ""),
			validator.MinLenString("password", "abc", 8),
			validator.MinNum("age", 15, 18),
		)
		require.Error(t, err)

		ve := validator.ExtractValidationErrors(err)
		require.Len(t, ve, 3)
		assert.Equal(t, "email", ve[0].Field)
		assert.Equal(t, "password", ve[1].Field)
		assert.Equal(t, "age", ve[2].Field)
	})

	t.Run("nil check counts as pass", func(t *testing.T) {
		t.Parallel()
		err := validator.Apply(validator.Rule{Error: validator.ValidationError{Field: "x"}})
		assert.NoError(t, err)
	})

	t.Run("custom rule reports verbatim message", func(t *testing.T) {
		t.Parallel()
		err := validator.Apply(
			validator.Custom("price", "must cover the minimum fee", func() bool { return false }),
		)
		require.Error(t, err)

		ve := validator.ExtractValidationErrors(err)
		require.Len(t, ve, 1)
		assert.Equal(t, "price", ve[0].Field)
		assert.Equal(t, "must cover the minimum fee", ve[0].Message)
		assert.Empty(t, ve[0].TranslationKey)
	})
}

func TestRules(t *testing.T) {
	t.Parallel()

	t.Run("required string trims whitespace", func(t *testing.T) {
		t.Parallel()
		assert.False(t, validator.RequiredString("name", "   ").Check())
		assert.True(t, validator.RequiredString("name", " x ").Check())
	})

	t.Run("optional length rules pass on empty", func(t *testing.T) {
		t.Parallel()
		assert.True(t, validator.MinLenString("nick", "", 3).Check())
		assert.True(t, validator.LenString("code", "", 6).Check())
		assert.True(t, validator.Email("email", "").Check())
		assert.True(t, validator.OneOf("level", "", "low", "high").Check())
	})

	t.Run("string lengths count runes", func(t *testing.T) {
		t.Parallel()
		assert.True(t, validator.MinLenString("name", "żółć", 4).Check())
		assert.True(t, validator.MaxLenString("name", "żółć", 4).Check())
		assert.True(t, validator.LenString("name", "żółć", 4).Check())
	})

	t.Run("email", func(t *testing.T) {
		t.Parallel()
		assert.True(t, validator.Email("email", "user@example.com").Check())
		assert.False(t, validator.Email("email", "not-an-email").Check())
		assert.False(t, validator.Email("email", "user@").Check())
	})

	t.Run("oneof", func(t *testing.T) {
		t.Parallel()
		assert.True(t, validator.OneOf("level", "low", "low", "high").Check())
		assert.False(t, validator.OneOf("level", "medium", "low", "high").Check())
	})

	t.Run("numeric bounds work for floats", func(t *testing.T) {
		t.Parallel()
		assert.False(t, validator.MinNum("price", 0.5, 1.0).Check())
		assert.True(t, validator.MaxNum("price", 0.5, 1.0).Check())
	})

	t.Run("collection rules", func(t *testing.T) {
		t.Parallel()
		assert.False(t, validator.RequiredSlice("tags", []string{}).Check())
		assert.True(t, validator.RequiredSlice("tags", []string{"a"}).Check())
		assert.False(t, validator.MinLenSlice("tags", []string{"a"}, 2).Check())
		assert.True(t, validator.MaxLenSlice("tags", []string{"a"}, 2).Check())
		assert.True(t, validator.LenSlice("pair", []int{1, 2}, 2).Check())
		assert.False(t, validator.RequiredMap("attrs", map[string]string{}).Check())
	})
}

func TestValidationErrors_Accessors(t *testing.T) {
	t.Parallel()

	ve := validator.ValidationErrors{
		{Field: "email", Message: "is required"},
		{Field: "password", Message: "too short"},
		{Field: "email", Message: "must be a valid email address"},
	}

	t.Run("Get preserves insertion order", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, []string{"is required", "must be a valid email address"}, ve.Get("email"))
	})

	t.Run("Has", func(t *testing.T) {
		t.Parallel()
		assert.True(t, ve.Has("password"))
		assert.False(t, ve.Has("name"))
	})

	t.Run("Fields returns distinct names in first-seen order", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, []string{"email", "password"}, ve.Fields())
	})

	t.Run("Error joins field messages", func(t *testing.T) {
		t.Parallel()
		assert.Contains(t, ve.Error(), "email: is required")
		assert.Contains(t, ve.Error(), "password: too short")
	})

	t.Run("IsEmpty", func(t *testing.T) {
		t.Parallel()
		assert.False(t, ve.IsEmpty())
		assert.True(t, validator.ValidationErrors{}.IsEmpty())
	})
}
