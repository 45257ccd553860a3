package services

import (
	"context"

	"github.com/mychangex/app-wallet/internal/logging"
	"github.com/mychangex/app-wallet/internal/models"
	"github.com/mychangex/app-wallet/internal/observability"
	"github.com/mychangex/app-wallet/internal/utils"
	"go.uber.org/zap"
)

// AuthGateway sends and checks one-time codes for a canonical phone number.
// A returned error's text is shown to the user as-is.
type AuthGateway interface {
	SendCode(ctx context.Context, phone string) error
	VerifyCode(ctx context.Context, phone, code string) error
}

// LedgerGateway moves coupon balance between wallets through the remote transfer procedure
type LedgerGateway interface {
	TransferFunds(ctx context.Context, transfer models.Transfer) error
	Balance(ctx context.Context, phone string) (int64, error)
}

// Navigator receives the "done, proceed to destination" signal of a finished flow
type Navigator interface {
	Navigate(destination models.Destination, payload map[string]string)
}

// NavigatorFunc adapts a plain function to Navigator
type NavigatorFunc func(destination models.Destination, payload map[string]string)

// Navigate calls f
func (f NavigatorFunc) Navigate(destination models.Destination, payload map[string]string) {
	f(destination, payload)
}

// LogNavigator returns a Navigator that only records the transition in the log
func LogNavigator(logger *logging.SafeLogger) Navigator {
	return NavigatorFunc(func(destination models.Destination, payload map[string]string) {
		logger.Info("onboarding step completed",
			zap.String("next_step", string(destination)),
			zap.Any("payload", observability.MaskSensitiveData(payload)))
	})
}

// AuditSink receives audit trail entries. *utils.AuditWorker implements it.
type AuditSink interface {
	LogAuditEvent(ctx context.Context, entry utils.AuditLog) error
}
