package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/mychangex/app-wallet/internal/logging"
	"github.com/mychangex/app-wallet/internal/models"
	"github.com/mychangex/app-wallet/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLedger struct {
	mu        sync.Mutex
	transfers []models.Transfer
	balances  map[string]int64
	err       error
}

func (f *fakeLedger) TransferFunds(ctx context.Context, transfer models.Transfer) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.transfers = append(f.transfers, transfer)
	return nil
}

func (f *fakeLedger) Balance(ctx context.Context, phone string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	return f.balances[phone], nil
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in      string
		cents   int64
		wantErr bool
	}{
		{"10", 1000, false},
		{"10.5", 1050, false},
		{"10.05", 1005, false},
		{" 0.01 ", 1, false},
		{".75", 75, false},
		{"0", 0, true},
		{"0.00", 0, true},
		{"-5", 0, true},
		{"1.234", 0, true},
		{"1.", 0, true},
		{"abc", 0, true},
		{"1,000", 0, true},
		{"", 0, true},
		{"99999999999999999999", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAmount(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, models.ErrInvalidAmount)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.cents, got)
		})
	}
}

func TestFormatCents(t *testing.T) {
	assert.Equal(t, "0.00", FormatCents(0))
	assert.Equal(t, "10.50", FormatCents(1050))
	assert.Equal(t, "0.07", FormatCents(7))
	assert.Equal(t, "-3.20", FormatCents(-320))
}

func TestValidateTransfer(t *testing.T) {
	tests := []struct {
		name     string
		req      models.TransferRequest
		field    string
		sentinel error
	}{
		{"bad sender", models.TransferRequest{From: "123", To: "0712345678", Amount: "5"}, "from", models.ErrInvalidPhone},
		{"bad recipient", models.TransferRequest{From: "0784739341", To: "hello", Amount: "5"}, "to", models.ErrInvalidPhone},
		{"self transfer same format", models.TransferRequest{From: "0784739341", To: "0784739341", Amount: "5"}, "to", models.ErrSelfTransfer},
		{"self transfer different formats", models.TransferRequest{From: "0784739341", To: "+263 78 473 9341", Amount: "5"}, "to", models.ErrSelfTransfer},
		{"zero amount", models.TransferRequest{From: "0784739341", To: "0712345678", Amount: "0"}, "amount", models.ErrInvalidAmount},
		{"over max", models.TransferRequest{From: "0784739341", To: "0712345678", Amount: "1000.01"}, "amount", models.ErrInvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateTransfer(tt.req, DefaultMaxTransferCents)
			var ve *models.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
			assert.ErrorIs(t, err, tt.sentinel)
		})
	}
}

func TestValidateTransfer_Valid(t *testing.T) {
	transfer, err := ValidateTransfer(models.TransferRequest{
		From:   "784739341",
		To:     "263712345678",
		Amount: "1000",
	}, DefaultMaxTransferCents)

	require.NoError(t, err)
	assert.Equal(t, "+263784739341", transfer.From)
	assert.Equal(t, "+263712345678", transfer.To)
	assert.Equal(t, int64(100000), transfer.AmountCents)
}

func TestCouponService_Transfer(t *testing.T) {
	ledger := &fakeLedger{}
	audit := &recordingAudit{}
	s := NewCouponService(ledger, audit, 0, logging.NewSafeLogger(nil))
	fixed := time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	result, err := s.Transfer(context.Background(), models.TransferRequest{
		From:   "0784739341",
		To:     "0712345678",
		Amount: "12.5",
	})
	require.NoError(t, err)

	assert.Equal(t, "12.50", result.Amount)
	assert.Equal(t, fixed, result.Timestamp)
	require.Len(t, ledger.transfers, 1)
	assert.Equal(t, int64(1250), ledger.transfers[0].AmountCents)
	assert.Equal(t, "+263712345678", ledger.transfers[0].To)

	require.Len(t, audit.entries, 1)
	assert.Equal(t, utils.AuditActionTransfer, audit.entries[0].Action)
	assert.Equal(t, "12.50", audit.entries[0].Metadata["amount"])
}

func TestCouponService_TransferValidationSkipsLedger(t *testing.T) {
	ledger := &fakeLedger{}
	s := NewCouponService(ledger, nil, 0, logging.NewSafeLogger(nil))

	_, err := s.Transfer(context.Background(), models.TransferRequest{
		From: "0784739341", To: "+263784739341", Amount: "1",
	})

	assert.ErrorIs(t, err, models.ErrSelfTransfer)
	assert.Empty(t, ledger.transfers)
}

func TestCouponService_TransferLedgerFailure(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		message string
	}{
		{"collaborator message", errors.New("Insufficient balance"), "Insufficient balance"},
		{"generic message", errors.New(""), models.DefaultTransferFailureMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewCouponService(&fakeLedger{err: tt.err}, nil, 0, logging.NewSafeLogger(nil))

			_, err := s.Transfer(context.Background(), models.TransferRequest{
				From: "0784739341", To: "0712345678", Amount: "1",
			})
			require.Error(t, err)
			assert.True(t, models.IsExternalError(err))
			assert.Equal(t, tt.message, err.Error())
		})
	}
}

func TestCouponService_Balance(t *testing.T) {
	ledger := &fakeLedger{balances: map[string]int64{"+263784739341": 4520}}
	s := NewCouponService(ledger, nil, 0, logging.NewSafeLogger(nil))

	b, err := s.Balance(context.Background(), "0784739341")
	require.NoError(t, err)
	assert.Equal(t, "+263784739341", b.Phone)
	assert.Equal(t, "45.20", b.Balance)

	_, err = s.Balance(context.Background(), "nope")
	assert.True(t, models.IsValidationError(err))

	ledger.err = errors.New("connection reset")
	_, err = s.Balance(context.Background(), "0784739341")
	assert.True(t, models.IsExternalError(err))
}
