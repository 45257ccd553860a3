package models

import "time"

// OTPStatus is the state of a verification session
type OTPStatus string

// Constants for verification status
const (
	OTPStatusIdle      OTPStatus = "idle"
	OTPStatusSending   OTPStatus = "sending"
	OTPStatusVerifying OTPStatus = "verifying"
	OTPStatusSucceeded OTPStatus = "succeeded"
	OTPStatusFailed    OTPStatus = "failed"
)

// Constants for verification configuration
const (
	OTPCodeLength           = 6
	OTPCountdownSeconds     = 60
	OTPCountdownInterval    = time.Second
	DefaultOTPMaxAttempts   = 5
	RegistrationTokenPrefix = "reg_token:"
	DefaultAccessTokenTTL   = 24 * time.Hour
)

// Destination identifies the onboarding step a navigator moves to
type Destination string

// Onboarding destinations
const (
	DestinationUserType Destination = "UserType"
	DestinationHome     Destination = "Home"
)

// OTPSession is a point-in-time copy of a verification session
type OTPSession struct {
	ID               string            `json:"id,omitempty"`
	Phone            string            `json:"phone"`
	Code             []string          `json:"code"`
	CountdownSeconds int               `json:"countdown_seconds"`
	CanResend        bool              `json:"can_resend"`
	Status           OTPStatus         `json:"status"`
	Ready            bool              `json:"ready"`
	LastError        string            `json:"last_error,omitempty"`
	NextStep         Destination       `json:"next_step,omitempty"`
	NextStepPayload  map[string]string `json:"next_step_payload,omitempty"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// EmptyCode returns a fresh code buffer with every slot empty
func EmptyCode() []string {
	return make([]string, OTPCodeLength)
}

// StartOTPSessionRequest is the body of POST /v1/otp/sessions
type StartOTPSessionRequest struct {
	Phone string `json:"phone" binding:"required"`
}

// EnterDigitRequest is the body of PUT /v1/otp/sessions/:id/digits/:index
type EnterDigitRequest struct {
	Digit string `json:"digit"`
}

// FocusResponse tells the UI which slot should take focus next
type FocusResponse struct {
	Focus   int        `json:"focus"`
	Session OTPSession `json:"session"`
}

// NormalizePhoneRequest is the body of POST /v1/phone/normalize
type NormalizePhoneRequest struct {
	Phone string `json:"phone" binding:"required"`
}

// NormalizePhoneResponse describes the normalized form of a phone number
type NormalizePhoneResponse struct {
	Input      string `json:"input"`
	Canonical  string `json:"canonical"`
	Acceptable bool   `json:"acceptable"`
	Display    string `json:"display,omitempty"`
	Carrier    string `json:"carrier,omitempty"`
	Wallet     string `json:"wallet,omitempty"`
}
