package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// LoginRequest holds credentials for authenticating a user.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest is the self-registration payload. StudentID is required
// when Role is student and ignored otherwise.
type RegisterRequest struct {
	Name       string  `json:"name" validate:"required"`
	Email      string  `json:"email" validate:"required,email"`
	Password   string  `json:"password" validate:"required"`
	Role       string  `json:"role" validate:"required,user_role"`
	StudentID  string  `json:"studentId"`
	Department *string `json:"department"`
}

// AuthResponse is the public profile with a freshly issued token alongside
// its fields.
type AuthResponse struct {
	UserProfile
	Token string `json:"token"`
}

// JWTClaims represents the JWT payload. Only the subject is trusted; the
// identity is re-read from storage on every request.
type JWTClaims struct {
	UserID string   `json:"user_id"`
	Role   UserRole `json:"role"`
	jwt.RegisteredClaims
}

// RateDecision is the outcome of one rate limited request.
type RateDecision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}
