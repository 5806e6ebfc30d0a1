package dto

import (
	"time"

	"whisper-client/internal/entity"
)

type SignUpRequest struct {
	Username        string `json:"username" validate:"required,min=3,max=30,username" label:"Username"`
	Email           string `json:"email" validate:"required,email,max=100" label:"Email"`
	Password        string `json:"password" validate:"required,min=6,max=100" label:"Password"`
	ConfirmPassword string `json:"confirmPassword" validate:"eqfield=Password" label:"Confirm password"`
}

type SignInRequest struct {
	Username string `json:"username" validate:"required,min=3,max=30" label:"Username"`
	Email    string `json:"email,omitempty" validate:"omitempty,email" label:"Email"`
	Password string `json:"password" validate:"required,min=6,max=100" label:"Password"`
}

type AuthStateResponse struct {
	IsAuthenticated bool         `json:"is_authenticated"`
	IsLoading       bool         `json:"is_loading"`
	User            *entity.User `json:"user"`
	SessionToken    string       `json:"session_token,omitempty"`
	SessionExpiry   *time.Time   `json:"session_expiry,omitempty"`
	Error           string       `json:"error,omitempty"`
}

type PasswordStrengthRequest struct {
	Password string `json:"password"`
}

type PasswordStrength struct {
	Score int    `json:"score"` // 0-4
	Label string `json:"label"`
}
