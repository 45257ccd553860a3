package models

import (
	"errors"
	"fmt"
)

// Error constants for the onboarding and coupon flows
var (
	ErrIncompleteCode   = errors.New("please enter the complete 6-digit code")
	ErrInvalidPhone     = errors.New("please enter a valid phone number")
	ErrResendTooSoon    = errors.New("verification code can't be resent yet")
	ErrCallInFlight     = errors.New("a request is already in progress")
	ErrSessionClosed    = errors.New("verification session is closed")
	ErrCodeNotRequested = errors.New("no verification code has been sent")
	ErrSessionNotFound  = errors.New("verification session not found")
	ErrSessionNotDone   = errors.New("phone number has not been verified")
	ErrPinMismatch      = errors.New("PINs do not match")
	ErrSelfTransfer     = errors.New("you cannot send coupons to yourself")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidToken     = errors.New("invalid or expired registration token")
	ErrRateLimited      = errors.New("too many verification requests")
	ErrNotSignup        = errors.New("verification session does not belong to a signup")
	ErrForbidden        = errors.New("you can only access your own wallet")
	ErrUnauthenticated  = errors.New("invalid or expired access token")
)

// Messages shown when a collaborator fails without saying why
const (
	DefaultSendFailureMessage     = "Failed to send verification code"
	DefaultVerifyFailureMessage   = "Invalid verification code"
	DefaultTransferFailureMessage = "Transfer failed"
	DefaultAuthUnavailableMessage = "Verification service is unavailable, please try again"
)

// ValidationError is a local input problem detected before any external call
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// NewValidationError builds a ValidationError wrapping a sentinel
func NewValidationError(field string, err error) *ValidationError {
	return &ValidationError{Field: field, Message: err.Error(), Err: err}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// ExternalError is a failure reported by an external collaborator (auth provider, ledger)
type ExternalError struct {
	Op      string
	Message string
	Err     error
}

// NewExternalError wraps err, using its text as the user message or fallback when it has none
func NewExternalError(op string, err error, fallback string) *ExternalError {
	msg := fallback
	if err != nil && err.Error() != "" {
		msg = err.Error()
	}
	return &ExternalError{Op: op, Message: msg, Err: err}
}

func (e *ExternalError) Error() string {
	return e.Message
}

func (e *ExternalError) Unwrap() error {
	return e.Err
}

// IsValidationError reports whether err is (or wraps) a ValidationError
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsExternalError reports whether err is (or wraps) an ExternalError
func IsExternalError(err error) bool {
	var ee *ExternalError
	return errors.As(err, &ee)
}
