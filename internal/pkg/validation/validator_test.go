package validation_test

import (
	"testing"

	"whisper-client/internal/dto"
	"whisper-client/internal/pkg/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidator_SignIn(t *testing.T) {
	v := validation.NewValidator()

	tests := []struct {
		name        string
		req         dto.SignInRequest
		wantField   string
		wantMessage string
	}{
		{
			name:        "short username",
			req:         dto.SignInRequest{Username: "ab", Password: "secret1"},
			wantField:   "username",
			wantMessage: "Username must be at least 3 characters",
		},
		{
			name:        "short password",
			req:         dto.SignInRequest{Username: "alice", Password: "12345"},
			wantField:   "password",
			wantMessage: "Password must be at least 6 characters",
		},
		{
			name:        "bad optional email",
			req:         dto.SignInRequest{Username: "alice", Email: "nope", Password: "secret1"},
			wantField:   "email",
			wantMessage: "Invalid email format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.req)
			require.Error(t, err)

			var verr *validation.Error
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.wantMessage, verr.Messages[tt.wantField])
			assert.True(t, validation.IsValidationError(err))
		})
	}
}

func TestValidator_SignUpPasswordsMustMatch(t *testing.T) {
	v := validation.NewValidator()

	err := v.Struct(dto.SignUpRequest{
		Username:        "alice_01",
		Email:           "alice@example.com",
		Password:        "secret1",
		ConfirmPassword: "secret2",
	})

	require.Error(t, err)
	assert.Equal(t, "Passwords don't match", err.Error())
}

func TestValidator_SignUpUsernameCharset(t *testing.T) {
	v := validation.NewValidator()

	err := v.Struct(dto.SignUpRequest{
		Username:        "alice smith",
		Email:           "alice@example.com",
		Password:        "secret1",
		ConfirmPassword: "secret1",
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "can only contain letters, numbers, hyphens, and underscores")
}

func TestValidator_JoinsMessagesInFieldOrder(t *testing.T) {
	v := validation.NewValidator()

	err := v.Struct(dto.CreateChatSessionRequest{Language: "de"})

	require.Error(t, err)
	assert.Equal(t, "Session name is required; Invalid language selection", err.Error())
}

func TestValidator_Valid(t *testing.T) {
	v := validation.NewValidator()

	assert.NoError(t, v.Struct(dto.TranscriptionRequest{Task: "transcribe", Language: "kk"}))
	assert.NoError(t, v.Struct(dto.UpdateChatSessionRequest{}))
}
