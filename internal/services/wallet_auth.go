package services

import (
	"context"

	"github.com/mychangex/app-wallet/internal/logging"
	"github.com/mychangex/app-wallet/internal/models"
	"github.com/mychangex/app-wallet/internal/observability"
	"github.com/mychangex/app-wallet/internal/utils"
	"go.uber.org/zap"
)

// WalletAuthService turns proof of phone ownership into wallet access tokens
type WalletAuthService struct {
	sessions  *SessionManager
	tokens    *RegistrationTokens
	access    *AccessTokens
	auditSink AuditSink
	logger    *logging.SafeLogger
}

// NewWalletAuthService creates the access token service
func NewWalletAuthService(sessions *SessionManager, tokens *RegistrationTokens, access *AccessTokens, audit AuditSink, logger *logging.SafeLogger) *WalletAuthService {
	if logger == nil {
		logger = logging.Logger
	}
	return &WalletAuthService{
		sessions:  sessions,
		tokens:    tokens,
		access:    access,
		auditSink: audit,
		logger:    logger,
	}
}

// Exchange consumes a registration token issued at the end of a signup
func (s *WalletAuthService) Exchange(ctx context.Context, registrationToken string) (*models.AccessToken, error) {
	phone, err := s.tokens.Consume(ctx, registrationToken)
	if err != nil {
		return nil, err
	}
	return s.issue(ctx, phone, "registration_token")
}

// Login claims a verified OTP session and issues a token for its phone
func (s *WalletAuthService) Login(ctx context.Context, sessionID string) (*models.AccessToken, error) {
	_, payload, err := s.sessions.Claim(sessionID, nil)
	if err != nil {
		return nil, err
	}
	return s.issue(ctx, payload["phone"], "otp_session")
}

// Authenticate returns the phone an access token belongs to
func (s *WalletAuthService) Authenticate(token string) (string, error) {
	return s.access.Authenticate(token)
}

func (s *WalletAuthService) issue(ctx context.Context, phone, method string) (*models.AccessToken, error) {
	if !utils.IsCanonicalPhone(phone) {
		return nil, models.ErrInvalidToken
	}

	token, err := s.access.Issue(phone)
	if err != nil {
		return nil, err
	}

	if s.auditSink != nil {
		_ = s.auditSink.LogAuditEvent(ctx, utils.AuditLog{
			Phone:    phone,
			Action:   utils.AuditActionLogin,
			Resource: utils.AuditResourceWallet,
			Metadata: map[string]string{"method": method},
		})
	}

	s.logger.Info("access token issued",
		zap.String("phone", observability.MaskPhone(phone)),
		zap.String("method", method))
	return token, nil
}
