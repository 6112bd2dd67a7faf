package validation

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{name: "valid email", email: "test@example.com"},
		{name: "valid email with subdomain", email: "user@mail.example.com"},
		{name: "valid email with plus", email: "user+tag@example.com"},
		{name: "surrounding spaces are trimmed", email: "  test@example.com "},
		{name: "missing @", email: "testexample.com", wantErr: true},
		{name: "missing domain", email: "test@", wantErr: true},
		{name: "missing local part", email: "@example.com", wantErr: true},
		{name: "empty string", email: "", wantErr: true},
		{name: "spaces in email", email: "test @example.com", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			assert.Equal(t, tt.wantErr, err != nil, "ValidateEmail(%q) error = %v", tt.email, err)
		})
	}
}

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "valid name", input: "John Doe"},
		{name: "single name", input: "John"},
		{name: "name with hyphen", input: "Mary-Jane"},
		{name: "name with apostrophe", input: "O'Brien"},
		{name: "empty name", input: "", wantErr: true},
		{name: "blank name", input: "   ", wantErr: true},
		{name: "name too short", input: "J", wantErr: true},
		{name: "name too long", input: strings.Repeat("x", 256), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.input)
			assert.Equal(t, tt.wantErr, err != nil, "ValidateName(%q) error = %v", tt.input, err)
		})
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{name: "valid password", password: "password123"},
		{name: "password exactly 8 characters", password: "pass1234"},
		{name: "long password", password: "thisIsAVeryLongPasswordThatShouldBeValid123"},
		{name: "password too short", password: "pass123", wantErr: true},
		{name: "empty password", password: "", wantErr: true},
		{name: "beyond bcrypt limit", password: strings.Repeat("p", 73), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			assert.Equal(t, tt.wantErr, err != nil, "ValidatePassword() error = %v", err)
		})
	}
}

func TestValidationErrorNamesField(t *testing.T) {
	err := ValidatePassword("short")

	var verr ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "password", verr.Field)
	assert.Equal(t, "password must be at least 8 characters", verr.Message)
}

type payload struct {
	Name   string `json:"name" validate:"required,min=2"`
	Status string `json:"status" validate:"omitempty,oneof=active suspended banned"`
	Parent *int64 `json:"parentId" validate:"omitempty,gt=0"`
}

func TestStruct(t *testing.T) {
	assert.NoError(t, Struct(payload{Name: "Ada"}))

	err := Struct(payload{Name: "Ada", Status: "retired"})
	var verr ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "status", verr.Field)
	assert.Equal(t, "status must be one of: active suspended banned", verr.Message)

	err = Struct(payload{})
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "name", verr.Field)
	assert.Equal(t, "name is required", verr.Message)

	zero := int64(0)
	err = Struct(payload{Name: "Ada", Parent: &zero})
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "parentId", verr.Field)
}
