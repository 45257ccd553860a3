package services

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/mychangex/app-wallet/internal/logging"
	"github.com/mychangex/app-wallet/internal/models"
	"github.com/mychangex/app-wallet/internal/observability"
	"github.com/mychangex/app-wallet/internal/utils"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// SignupService runs the create-account flow on top of phone verification
type SignupService struct {
	sessions  *SessionManager
	tokens    *RegistrationTokens
	logger    *logging.SafeLogger
	hashCost  int
	auditSink AuditSink
}

// NewSignupService creates a signup service
func NewSignupService(sessions *SessionManager, tokens *RegistrationTokens, audit AuditSink, logger *logging.SafeLogger) *SignupService {
	if logger == nil {
		logger = logging.Logger
	}
	return &SignupService{
		sessions:  sessions,
		tokens:    tokens,
		logger:    logger,
		hashCost:  bcrypt.DefaultCost,
		auditSink: audit,
	}
}

// ValidateSignup checks the form fields without calling anything external
func ValidateSignup(req models.SignupRequest) error {
	if strings.TrimSpace(req.FullName) == "" {
		return &models.ValidationError{Field: "full_name", Message: "full name is required"}
	}
	if !utils.IsAcceptablePhone(req.Phone) {
		return models.NewValidationError("phone", models.ErrInvalidPhone)
	}
	if !isPin(req.Pin) {
		return &models.ValidationError{Field: "pin", Message: "PIN must be exactly 4 digits"}
	}
	if req.ConfirmPin != req.Pin {
		return models.NewValidationError("confirm_pin", models.ErrPinMismatch)
	}
	return nil
}

func isPin(s string) bool {
	if utf8.RuneCountInString(s) != models.PinLength {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Begin validates the form, hashes the PIN and sends the verification code.
// The signup metadata rides along in the session's navigation payload.
func (s *SignupService) Begin(ctx context.Context, req models.SignupRequest) (*models.SignupStarted, error) {
	if err := ValidateSignup(req); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Pin), s.hashCost)
	if err != nil {
		return nil, err
	}

	fullName := strings.TrimSpace(req.FullName)
	view, err := s.sessions.Start(ctx, req.Phone, WithNavigationPayload(map[string]string{
		models.PayloadFlowKey: models.PayloadFlowSignup,
		"full_name":           fullName,
		"pin_hash":            string(hash),
	}))
	if err != nil {
		return nil, err
	}

	s.logger.Info("signup started",
		zap.String("session_id", view.ID),
		zap.String("name", utils.MaskName(fullName)),
		zap.String("phone", observability.MaskPhone(view.Phone)))

	// the hash stays server side
	view.NextStepPayload = nil
	return &models.SignupStarted{
		SessionID: view.ID,
		FullName:  fullName,
		FirstName: utils.ExtractFirstName(fullName),
		Phone:     view.Phone,
		Session:   view,
	}, nil
}

// Complete closes a verified signup session and issues a registration token for its phone.
// Sessions not started by Begin are refused with ErrNotSignup.
func (s *SignupService) Complete(ctx context.Context, sessionID string) (*models.SignupCompleted, error) {
	destination, payload, err := s.sessions.Claim(sessionID, isSignupPayload)
	if err != nil {
		return nil, err
	}

	phone := payload["phone"]
	token, err := s.tokens.Issue(ctx, phone)
	if err != nil {
		s.logger.Error("failed to issue registration token",
			zap.String("session_id", sessionID),
			zap.String("phone", observability.MaskPhone(phone)),
			zap.Error(err))
		return nil, err
	}

	if s.auditSink != nil {
		_ = s.auditSink.LogAuditEvent(ctx, utils.AuditLog{
			Phone:      phone,
			Action:     utils.AuditActionVerify,
			Resource:   utils.AuditResourceSignup,
			ResourceID: sessionID,
			Metadata:   map[string]string{"full_name": payload["full_name"]},
		})
	}

	s.logger.Info("signup phone verified", zap.String("phone", observability.MaskPhone(phone)))
	return &models.SignupCompleted{
		Phone:             phone,
		RegistrationToken: token,
		NextStep:          destination,
	}, nil
}

func isSignupPayload(payload map[string]string) error {
	if payload[models.PayloadFlowKey] != models.PayloadFlowSignup {
		return models.ErrNotSignup
	}
	return nil
}

// CheckPin reports whether pin matches a hash produced by Begin
func CheckPin(hash, pin string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pin)) == nil
}
