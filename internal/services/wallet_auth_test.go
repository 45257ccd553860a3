package services

import (
	"context"
	"testing"
	"time"

	"github.com/mychangex/app-wallet/internal/logging"
	"github.com/mychangex/app-wallet/internal/models"
	"github.com/mychangex/app-wallet/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWalletAuth(t *testing.T) (*WalletAuthService, *SessionManager, *RegistrationTokens, *recordingAudit) {
	t.Helper()
	m, _ := newTestSessionManager(t, &fakeAuth{}, SessionManagerConfig{})
	tokens := NewRegistrationTokens(newMemoryTokenStore(), 15*time.Minute)
	audit := &recordingAudit{}
	s := NewWalletAuthService(m, tokens, NewAccessTokens(testSigningKey, time.Hour), audit, logging.NewSafeLogger(nil))
	return s, m, tokens, audit
}

func TestWalletAuthService_Exchange(t *testing.T) {
	s, _, tokens, audit := newTestWalletAuth(t)
	ctx := context.Background()

	reg, err := tokens.Issue(ctx, "+263784739341")
	require.NoError(t, err)

	token, err := s.Exchange(ctx, reg)
	require.NoError(t, err)
	assert.Equal(t, "+263784739341", token.Phone)

	phone, err := s.Authenticate(token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "+263784739341", phone)

	_, err = s.Exchange(ctx, reg)
	assert.ErrorIs(t, err, models.ErrInvalidToken, "registration tokens are single use")

	require.Len(t, audit.entries, 1)
	assert.Equal(t, utils.AuditActionLogin, audit.entries[0].Action)
	assert.Equal(t, "registration_token", audit.entries[0].Metadata["method"])
}

func TestWalletAuthService_Login(t *testing.T) {
	s, m, _, _ := newTestWalletAuth(t)
	ctx := context.Background()

	pending, err := m.Start(ctx, "0712345678")
	require.NoError(t, err)
	_, err = s.Login(ctx, pending.ID)
	assert.ErrorIs(t, err, models.ErrSessionNotDone)

	id := verifiedSession(t, m, "0784739341")
	token, err := s.Login(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "+263784739341", token.Phone)

	_, err = s.Login(ctx, id)
	assert.ErrorIs(t, err, models.ErrSessionNotFound, "a session yields one token")
}
