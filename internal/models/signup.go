package models

import "time"

// SignupRequest carries the fields of the create-account form
type SignupRequest struct {
	FullName   string `json:"full_name" binding:"required"`
	Phone      string `json:"phone" binding:"required"`
	Pin        string `json:"pin" binding:"required"`
	ConfirmPin string `json:"confirm_pin" binding:"required"`
}

// SignupStarted is returned once the verification code for a signup has been sent
type SignupStarted struct {
	SessionID string     `json:"session_id"`
	FullName  string     `json:"full_name"`
	FirstName string     `json:"first_name"`
	Phone     string     `json:"phone"`
	Session   OTPSession `json:"session"`
}

// SignupCompleted is returned after the phone is verified
type SignupCompleted struct {
	Phone             string      `json:"phone"`
	RegistrationToken string      `json:"registration_token"`
	NextStep          Destination `json:"next_step"`
}

// AccessTokenRequest exchanges a registration token for an access token
type AccessTokenRequest struct {
	RegistrationToken string `json:"registration_token" binding:"required"`
}

// AccessToken is the bearer credential for the wallet endpoints
type AccessToken struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	Phone       string    `json:"phone"`
}

// PinLength is the number of digits in a wallet PIN
const PinLength = 4

// Navigation payload marker of sessions started by a signup
const (
	PayloadFlowKey    = "flow"
	PayloadFlowSignup = "signup"
)
