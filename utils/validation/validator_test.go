package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signupForm struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=8"`
	Name     string `validate:"max=10"`
}

func TestValidateStructPasses(t *testing.T) {
	v := NewValidator()
	assert.NoError(t, v.ValidateStruct(signupForm{
		Email:    "alice@example.com",
		Password: "long enough",
		Name:     "Alice",
	}))
}

func TestValidateStructListsEveryFailedField(t *testing.T) {
	v := NewValidator()
	err := v.ValidateStruct(signupForm{
		Email:    "not-an-email",
		Password: "short",
		Name:     "far too long a name",
	})
	require.Error(t, err)

	msg := err.Error()
	assert.Contains(t, msg, "Invalid email format")
	assert.Contains(t, msg, "Password must be at least 8 characters")
	assert.Contains(t, msg, "Name must be at most 10 characters")
}

func TestFormatValidationErrorsRequired(t *testing.T) {
	v := NewValidator()
	err := v.validate.Struct(signupForm{})
	require.Error(t, err)

	fields := FormatValidationErrors(err)
	assert.Equal(t, "Email is required", fields["email"])
	assert.Equal(t, "Password is required", fields["password"])
}
