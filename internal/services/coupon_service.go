package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mychangex/app-wallet/internal/logging"
	"github.com/mychangex/app-wallet/internal/models"
	"github.com/mychangex/app-wallet/internal/observability"
	"github.com/mychangex/app-wallet/internal/utils"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// DefaultMaxTransferCents caps a single transfer at 1000.00
const DefaultMaxTransferCents int64 = 100000

// ParseAmount converts a decimal amount such as "12.5" into cents.
// At most two decimal places are accepted and the amount must be positive.
func ParseAmount(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, models.ErrInvalidAmount
	}

	whole, frac, hasDot := strings.Cut(s, ".")
	if whole == "" {
		whole = "0"
	}
	if hasDot && (frac == "" || len(frac) > 2) {
		return 0, models.ErrInvalidAmount
	}
	if !allDigits(whole) || !allDigits(frac) {
		return 0, models.ErrInvalidAmount
	}
	for len(frac) < 2 {
		frac += "0"
	}

	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil || units > (1<<62)/100 {
		return 0, models.ErrInvalidAmount
	}
	cents, _ := strconv.ParseInt(frac, 10, 64)

	total := units*100 + cents
	if total <= 0 {
		return 0, models.ErrInvalidAmount
	}
	return total, nil
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// FormatCents renders cents as a decimal amount with two places
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

// ValidateTransfer is the single check applied to every coupon transfer,
// whether it was typed in or scanned from a QR code.
func ValidateTransfer(req models.TransferRequest, maxCents int64) (models.Transfer, error) {
	if !utils.IsAcceptablePhone(req.From) {
		return models.Transfer{}, models.NewValidationError("from", models.ErrInvalidPhone)
	}
	if !utils.IsAcceptablePhone(req.To) {
		return models.Transfer{}, models.NewValidationError("to", models.ErrInvalidPhone)
	}

	if utils.SamePhone(req.From, req.To) {
		return models.Transfer{}, models.NewValidationError("to", models.ErrSelfTransfer)
	}
	from := utils.NormalizePhone(req.From)
	to := utils.NormalizePhone(req.To)

	cents, err := ParseAmount(req.Amount)
	if err != nil || (maxCents > 0 && cents > maxCents) {
		return models.Transfer{}, models.NewValidationError("amount", models.ErrInvalidAmount)
	}

	return models.Transfer{From: from, To: to, AmountCents: cents}, nil
}

// CouponService sends coupons between wallets through the ledger
type CouponService struct {
	ledger   LedgerGateway
	audit    AuditSink
	maxCents int64
	logger   *logging.SafeLogger
	now      func() time.Time
}

// NewCouponService creates a coupon service. maxCents <= 0 means DefaultMaxTransferCents.
func NewCouponService(ledger LedgerGateway, audit AuditSink, maxCents int64, logger *logging.SafeLogger) *CouponService {
	if maxCents <= 0 {
		maxCents = DefaultMaxTransferCents
	}
	if logger == nil {
		logger = logging.Logger
	}
	return &CouponService{
		ledger:   ledger,
		audit:    audit,
		maxCents: maxCents,
		logger:   logger,
		now:      time.Now,
	}
}

// Transfer validates req and asks the ledger to move the coupons
func (s *CouponService) Transfer(ctx context.Context, req models.TransferRequest) (*models.TransferResult, error) {
	transfer, err := ValidateTransfer(req, s.maxCents)
	if err != nil {
		observability.CouponTransfers.WithLabelValues("invalid").Inc()
		return nil, err
	}
	transfer.CreatedAt = s.now()

	ctx, span := otel.Tracer("coupons").Start(ctx, "coupons.transfer")
	defer span.End()
	span.SetAttributes(
		attribute.String("transfer.from", observability.MaskPhone(transfer.From)),
		attribute.String("transfer.to", observability.MaskPhone(transfer.To)),
		attribute.Int64("transfer.amount_cents", transfer.AmountCents),
	)

	logger := s.logger.With(
		zap.String("from", observability.MaskPhone(transfer.From)),
		zap.String("to", observability.MaskPhone(transfer.To)),
		zap.Int64("amount_cents", transfer.AmountCents))

	if err := s.ledger.TransferFunds(ctx, transfer); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		observability.CouponTransfers.WithLabelValues("failed").Inc()
		logger.Warn("coupon transfer failed", zap.Error(err))
		return nil, models.NewExternalError("transfer_funds", err, models.DefaultTransferFailureMessage)
	}

	observability.CouponTransfers.WithLabelValues("success").Inc()
	logger.Info("coupon transfer completed")

	if s.audit != nil {
		_ = s.audit.LogAuditEvent(ctx, utils.AuditLog{
			Phone:      transfer.From,
			Action:     utils.AuditActionTransfer,
			Resource:   utils.AuditResourceCoupon,
			ResourceID: transfer.To,
			Timestamp:  transfer.CreatedAt,
			Metadata:   map[string]string{"amount": FormatCents(transfer.AmountCents)},
		})
	}

	return &models.TransferResult{
		From:      transfer.From,
		To:        transfer.To,
		Amount:    FormatCents(transfer.AmountCents),
		Timestamp: transfer.CreatedAt,
	}, nil
}

// Balance returns the coupon balance of phone
func (s *CouponService) Balance(ctx context.Context, phone string) (*models.Balance, error) {
	if !utils.IsAcceptablePhone(phone) {
		return nil, models.NewValidationError("phone", models.ErrInvalidPhone)
	}
	canonical := utils.NormalizePhone(phone)

	cents, err := s.ledger.Balance(ctx, canonical)
	if err != nil {
		return nil, models.NewExternalError("balance", err, "Failed to load balance")
	}
	return &models.Balance{
		Phone:        canonical,
		BalanceCents: cents,
		Balance:      FormatCents(cents),
	}, nil
}
