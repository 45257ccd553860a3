package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/mychangex/app-wallet/internal/logging"
	"github.com/mychangex/app-wallet/internal/models"
	"github.com/mychangex/app-wallet/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type recordingAudit struct {
	mu      sync.Mutex
	entries []utils.AuditLog
}

func (r *recordingAudit) LogAuditEvent(ctx context.Context, entry utils.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
	return nil
}

func newTestSignup(t *testing.T, auth AuthGateway) (*SignupService, *SessionManager, *recordingAudit) {
	t.Helper()
	m, _ := newTestSessionManager(t, auth, SessionManagerConfig{})
	audit := &recordingAudit{}
	s := NewSignupService(m, NewRegistrationTokens(newMemoryTokenStore(), 15*time.Minute), audit, logging.NewSafeLogger(nil))
	s.hashCost = bcrypt.MinCost
	return s, m, audit
}

func validSignup() models.SignupRequest {
	return models.SignupRequest{
		FullName:   "Tendai Moyo",
		Phone:      "0784739341",
		Pin:        "2580",
		ConfirmPin: "2580",
	}
}

func TestValidateSignup(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.SignupRequest)
		field  string
	}{
		{"valid", func(r *models.SignupRequest) {}, ""},
		{"blank name", func(r *models.SignupRequest) { r.FullName = "   " }, "full_name"},
		{"bad phone", func(r *models.SignupRequest) { r.Phone = "+27821234567" }, "phone"},
		{"short pin", func(r *models.SignupRequest) { r.Pin, r.ConfirmPin = "123", "123" }, "pin"},
		{"letters in pin", func(r *models.SignupRequest) { r.Pin, r.ConfirmPin = "12a4", "12a4" }, "pin"},
		{"pin mismatch", func(r *models.SignupRequest) { r.ConfirmPin = "2581" }, "confirm_pin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validSignup()
			tt.mutate(&req)

			err := ValidateSignup(req)
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			var ve *models.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestValidateSignup_PinMismatchSentinel(t *testing.T) {
	req := validSignup()
	req.ConfirmPin = "0000"
	assert.ErrorIs(t, ValidateSignup(req), models.ErrPinMismatch)
}

func TestSignupService_BeginValidationSkipsSend(t *testing.T) {
	auth := &fakeAuth{}
	s, m, _ := newTestSignup(t, auth)

	req := validSignup()
	req.ConfirmPin = "1111"
	_, err := s.Begin(context.Background(), req)

	assert.True(t, models.IsValidationError(err))
	assert.Equal(t, 0, auth.sendCalls())
	assert.Equal(t, 0, m.Len())
}

func TestSignupService_BeginAndComplete(t *testing.T) {
	auth := &fakeAuth{}
	s, m, audit := newTestSignup(t, auth)
	ctx := context.Background()

	started, err := s.Begin(ctx, validSignup())
	require.NoError(t, err)
	assert.Equal(t, "+263784739341", started.Phone)
	assert.Equal(t, "Tendai Moyo", started.FullName)
	assert.Equal(t, "Tendai", started.FirstName)
	assert.NotEmpty(t, started.SessionID)

	_, err = s.Complete(ctx, started.SessionID)
	assert.ErrorIs(t, err, models.ErrSessionNotDone)

	w, err := m.Get(started.SessionID)
	require.NoError(t, err)
	enterCode(t, w, "1", "2", "3", "4", "5", "6")
	require.NoError(t, w.Submit(ctx))

	_, payload, err := m.Completed(started.SessionID)
	require.NoError(t, err)
	assert.True(t, CheckPin(payload["pin_hash"], "2580"))
	assert.False(t, CheckPin(payload["pin_hash"], "2581"))

	completed, err := s.Complete(ctx, started.SessionID)
	require.NoError(t, err)
	assert.Equal(t, "+263784739341", completed.Phone)
	assert.Equal(t, models.DestinationUserType, completed.NextStep)
	assert.NotEmpty(t, completed.RegistrationToken)

	phone, err := s.tokens.Consume(ctx, completed.RegistrationToken)
	require.NoError(t, err)
	assert.Equal(t, "+263784739341", phone)

	assert.Equal(t, 0, m.Len(), "session is closed after completion")
	require.Len(t, audit.entries, 1)
	assert.Equal(t, utils.AuditActionVerify, audit.entries[0].Action)
	assert.Equal(t, "Tendai Moyo", audit.entries[0].Metadata["full_name"])
	assert.NotContains(t, audit.entries[0].Metadata, "pin_hash")
}

func TestSignupService_CompleteUnknownSession(t *testing.T) {
	s, _, _ := newTestSignup(t, &fakeAuth{})
	_, err := s.Complete(context.Background(), "missing")
	assert.ErrorIs(t, err, models.ErrSessionNotFound)
}

func TestSignupService_CompleteRefusesPlainSession(t *testing.T) {
	s, m, audit := newTestSignup(t, &fakeAuth{})
	id := verifiedSession(t, m, "0784739341")

	_, err := s.Complete(context.Background(), id)
	assert.ErrorIs(t, err, models.ErrNotSignup)
	assert.Equal(t, 1, m.Len(), "the session stays usable for its own flow")
	assert.Empty(t, audit.entries)
}

func TestSignupService_ConcurrentCompleteIssuesOneToken(t *testing.T) {
	s, m, _ := newTestSignup(t, &fakeAuth{})
	ctx := context.Background()

	started, err := s.Begin(ctx, validSignup())
	require.NoError(t, err)
	w, err := m.Get(started.SessionID)
	require.NoError(t, err)
	enterCode(t, w, "1", "2", "3", "4", "5", "6")
	require.NoError(t, w.Submit(ctx))

	const callers = 8
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		tokens []string
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			completed, err := s.Complete(ctx, started.SessionID)
			if err != nil {
				assert.ErrorIs(t, err, models.ErrSessionNotFound)
				return
			}
			mu.Lock()
			tokens = append(tokens, completed.RegistrationToken)
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, tokens, 1)
}
