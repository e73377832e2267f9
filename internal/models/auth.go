package models

import "time"

// Flow modes for the sign-in wizard. The lookup step behaves differently
// depending on whether the client is signing in or signing up.
const (
	FlowModeSignIn = "sign_in"
	FlowModeSignUp = "sign_up"
)

// LookupRequest is the email step of the sign-in flow.
type LookupRequest struct {
	Role  Role   `json:"role" validate:"required,oneof=student teacher"`
	Email string `json:"email" validate:"required"`
	Mode  string `json:"mode" validate:"omitempty,oneof=sign_in sign_up"`
}

// LoginRequest is the password step for an account that already has one.
type LoginRequest struct {
	Role     Role   `json:"role" validate:"required,oneof=student teacher"`
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// ActivateRequest completes first-time password setup for a pending account.
type ActivateRequest struct {
	Role            Role   `json:"role" validate:"required,oneof=student teacher"`
	Email           string `json:"email" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
}

// RegisterRequest is the self-service sign-up step.
type RegisterRequest struct {
	Role            Role   `json:"role" validate:"required,oneof=student teacher"`
	Email           string `json:"email" validate:"required"`
	Name            string `json:"name" validate:"required"`
	Subjects        string `json:"subjects" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
}

// LookupResponse names the step the client should render next.
type LookupResponse struct {
	Next string `json:"next"`
}

// LoginResponse returns the issued session token and projection.
type LoginResponse struct {
	Token    string    `json:"token"`
	Session  Session   `json:"session"`
	IssuedAt time.Time `json:"issued_at"`
}
