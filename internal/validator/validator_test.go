package validator_test

import (
	"strings"
	"testing"

	"storefront/internal/validator"

	"github.com/stretchr/testify/assert"
)

func TestIsEmail(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"jane@example.com", true},
		{" jane@example.com ", true},
		{"jane+tag@mail.example.co", true},
		{"", false},
		{"jane", false},
		{"jane@example", false},
		{"ja ne@example.com", false},
		{strings.Repeat("a", 250) + "@x.io", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, validator.IsEmail(tt.in), tt.in)
	}
}

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, validator.ValidateEmail("ops@example.com"))
	assert.ErrorIs(t, validator.ValidateEmail("nope"), validator.ErrInvalidEmail)
}

func TestIsCountryCode(t *testing.T) {
	assert.True(t, validator.IsCountryCode("US"))
	assert.False(t, validator.IsCountryCode("us"))
	assert.False(t, validator.IsCountryCode("USA"))
	assert.False(t, validator.IsCountryCode("U1"))
	assert.False(t, validator.IsCountryCode(""))
}
