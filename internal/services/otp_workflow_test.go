package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/mychangex/app-wallet/internal/logging"
	"github.com/mychangex/app-wallet/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuth struct {
	mu        sync.Mutex
	sendErr   error
	verifyErr error
	sent      []string
	verified  []string
	block     chan struct{}

	// verifyBlock holds VerifyCode until closed
	verifyBlock chan struct{}
}

func (f *fakeAuth) SendCode(ctx context.Context, phone string) error {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, phone)
	return f.sendErr
}

func (f *fakeAuth) VerifyCode(ctx context.Context, phone, code string) error {
	if f.verifyBlock != nil {
		<-f.verifyBlock
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.verified = append(f.verified, phone+":"+code)
	return f.verifyErr
}

func (f *fakeAuth) sendCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func (f *fakeAuth) verifyCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.verified)
}

type navigation struct {
	destination models.Destination
	payload     map[string]string
}

type recordingNav struct {
	mu    sync.Mutex
	calls []navigation
}

func (r *recordingNav) Navigate(destination models.Destination, payload map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, navigation{destination: destination, payload: payload})
}

// stillTicker never fires; tests drive the countdown with Tick
type stillTicker struct {
	c       chan time.Time
	stopped bool
}

func (s *stillTicker) C() <-chan time.Time { return s.c }
func (s *stillTicker) Stop()               { s.stopped = true }

type tickerRecorder struct {
	mu      sync.Mutex
	tickers []*stillTicker
}

func (r *tickerRecorder) factory(time.Duration) Ticker {
	r.mu.Lock()
	defer r.mu.Unlock()
	t := &stillTicker{c: make(chan time.Time)}
	r.tickers = append(r.tickers, t)
	return t
}

func (r *tickerRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tickers)
}

func newTestWorkflow(t *testing.T, auth *fakeAuth, nav Navigator, opts ...WorkflowOption) (*OTPWorkflow, *tickerRecorder) {
	t.Helper()
	rec := &tickerRecorder{}
	opts = append([]WorkflowOption{
		WithTickerFactory(rec.factory),
		WithLogger(logging.NewSafeLogger(nil)),
	}, opts...)
	w := NewOTPWorkflow(auth, nav, opts...)
	t.Cleanup(w.Close)
	return w, rec
}

func enterCode(t *testing.T, w *OTPWorkflow, digits ...string) {
	t.Helper()
	for i, d := range digits {
		_, err := w.EnterDigit(i, d)
		require.NoError(t, err)
	}
}

func TestOTPWorkflow_RequestCode_NormalizesAndStartsCountdown(t *testing.T) {
	auth := &fakeAuth{}
	w, rec := newTestWorkflow(t, auth, nil)

	require.NoError(t, w.RequestCode(context.Background(), "0784739341"))

	assert.Equal(t, []string{"+263784739341"}, auth.sent)
	s := w.Snapshot()
	assert.Equal(t, "+263784739341", s.Phone)
	assert.Equal(t, 60, s.CountdownSeconds)
	assert.False(t, s.CanResend)
	assert.True(t, s.Ready)
	assert.Equal(t, models.OTPStatusIdle, s.Status)
	assert.Equal(t, models.EmptyCode(), s.Code)
	assert.Equal(t, 1, rec.count())
}

func TestOTPWorkflow_CountdownReachesZeroAndStops(t *testing.T) {
	w, _ := newTestWorkflow(t, &fakeAuth{}, nil)
	require.NoError(t, w.RequestCode(context.Background(), "784739341"))

	for i := 0; i < 59; i++ {
		w.Tick()
	}
	s := w.Snapshot()
	assert.Equal(t, 1, s.CountdownSeconds)
	assert.False(t, s.CanResend)

	w.Tick()
	s = w.Snapshot()
	assert.Equal(t, 0, s.CountdownSeconds)
	assert.True(t, s.CanResend)

	for i := 0; i < 5; i++ {
		w.Tick()
	}
	assert.Equal(t, 0, w.Snapshot().CountdownSeconds)
}

func TestOTPWorkflow_CountdownDrivenByTicker(t *testing.T) {
	w := NewOTPWorkflow(&fakeAuth{}, nil,
		WithCountdown(3, time.Millisecond),
		WithLogger(logging.NewSafeLogger(nil)))
	t.Cleanup(w.Close)

	require.NoError(t, w.RequestCode(context.Background(), "0784739341"))

	assert.Eventually(t, func() bool {
		return w.Snapshot().CanResend
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, 0, w.Snapshot().CountdownSeconds)
}

func TestOTPWorkflow_ZeroCountdownAllowsImmediateResend(t *testing.T) {
	auth := &fakeAuth{}
	w, rec := newTestWorkflow(t, auth, nil, WithCountdown(0, time.Second))

	require.NoError(t, w.RequestCode(context.Background(), "0784739341"))
	assert.True(t, w.Snapshot().CanResend)
	assert.Equal(t, 0, rec.count())

	require.NoError(t, w.Resend(context.Background()))
	assert.Equal(t, 2, auth.sendCalls())
}

func TestOTPWorkflow_RequestCodeFailure(t *testing.T) {
	auth := &fakeAuth{sendErr: errors.New("SMS quota exceeded")}
	w, _ := newTestWorkflow(t, auth, nil)

	err := w.RequestCode(context.Background(), "0784739341")
	require.Error(t, err)
	assert.True(t, models.IsExternalError(err))
	assert.Equal(t, "SMS quota exceeded", err.Error())

	s := w.Snapshot()
	assert.Equal(t, models.OTPStatusFailed, s.Status)
	assert.False(t, s.Ready)
	assert.Equal(t, "SMS quota exceeded", s.LastError)

	enterCode(t, w, "1", "2", "3", "4", "5", "6")
	err = w.Submit(context.Background())
	assert.ErrorIs(t, err, models.ErrCodeNotRequested)
	assert.Equal(t, 0, auth.verifyCalls())
}

func TestOTPWorkflow_RequestCodeFailureWithoutMessage(t *testing.T) {
	auth := &fakeAuth{sendErr: errors.New("")}
	w, _ := newTestWorkflow(t, auth, nil)

	err := w.RequestCode(context.Background(), "0784739341")
	require.Error(t, err)
	assert.Equal(t, models.DefaultSendFailureMessage, err.Error())
}

func TestOTPWorkflow_EnterDigitFocus(t *testing.T) {
	w, _ := newTestWorkflow(t, &fakeAuth{}, nil)

	tests := []struct {
		name  string
		index int
		digit string
		focus int
	}{
		{"first slot advances", 0, "1", 1},
		{"middle slot advances", 3, "4", 4},
		{"last slot stays", 5, "6", 5},
		{"empty digit stays", 2, "", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			focus, err := w.EnterDigit(tt.index, tt.digit)
			require.NoError(t, err)
			assert.Equal(t, tt.focus, focus)
			assert.Equal(t, tt.digit, w.Snapshot().Code[tt.index])
		})
	}
}

func TestOTPWorkflow_EnterDigitRejectsBadInput(t *testing.T) {
	w, _ := newTestWorkflow(t, &fakeAuth{}, nil)

	_, err := w.EnterDigit(6, "1")
	assert.True(t, models.IsValidationError(err))

	_, err = w.EnterDigit(-1, "1")
	assert.True(t, models.IsValidationError(err))

	_, err = w.EnterDigit(0, "12")
	assert.True(t, models.IsValidationError(err))

	assert.Len(t, w.Snapshot().Code, models.OTPCodeLength)
	assert.Equal(t, models.EmptyCode(), w.Snapshot().Code)
}

func TestOTPWorkflow_Backspace(t *testing.T) {
	w, _ := newTestWorkflow(t, &fakeAuth{}, nil)
	enterCode(t, w, "1", "2")

	focus, err := w.Backspace(3)
	require.NoError(t, err)
	assert.Equal(t, 2, focus)

	focus, err = w.Backspace(1)
	require.NoError(t, err)
	assert.Equal(t, 1, focus, "filled slot keeps focus")

	focus, err = w.Backspace(0)
	require.NoError(t, err)
	assert.Equal(t, 0, focus)

	assert.Equal(t, []string{"1", "2", "", "", "", ""}, w.Snapshot().Code)
}

func TestOTPWorkflow_SubmitIncompleteCode(t *testing.T) {
	auth := &fakeAuth{}
	w, _ := newTestWorkflow(t, auth, nil)
	require.NoError(t, w.RequestCode(context.Background(), "0784739341"))
	enterCode(t, w, "1", "2", "3", "", "", "")

	err := w.Submit(context.Background())
	require.Error(t, err)
	assert.True(t, models.IsValidationError(err))
	assert.ErrorIs(t, err, models.ErrIncompleteCode)
	assert.Equal(t, 0, auth.verifyCalls())
	assert.Equal(t, models.OTPStatusIdle, w.Snapshot().Status)
}

func TestOTPWorkflow_SubmitFailureAllowsRetry(t *testing.T) {
	auth := &fakeAuth{verifyErr: errors.New("")}
	w, _ := newTestWorkflow(t, auth, nil)
	require.NoError(t, w.RequestCode(context.Background(), "0784739341"))
	enterCode(t, w, "1", "2", "3", "4", "5", "6")

	err := w.Submit(context.Background())
	require.Error(t, err)
	assert.True(t, models.IsExternalError(err))
	assert.Equal(t, models.DefaultVerifyFailureMessage, err.Error())
	assert.Equal(t, models.OTPStatusFailed, w.Snapshot().Status)

	auth.mu.Lock()
	auth.verifyErr = nil
	auth.mu.Unlock()

	require.NoError(t, w.Submit(context.Background()))
	assert.Equal(t, models.OTPStatusSucceeded, w.Snapshot().Status)
	assert.Equal(t, 1, auth.sendCalls())
	assert.Equal(t, 2, auth.verifyCalls())
}

func TestOTPWorkflow_ResendTooSoonLeavesStateUnchanged(t *testing.T) {
	auth := &fakeAuth{}
	w, _ := newTestWorkflow(t, auth, nil)
	require.NoError(t, w.RequestCode(context.Background(), "0784739341"))
	enterCode(t, w, "1", "2", "3")
	for i := 0; i < 10; i++ {
		w.Tick()
	}
	before := w.Snapshot()

	err := w.Resend(context.Background())
	assert.ErrorIs(t, err, models.ErrResendTooSoon)

	after := w.Snapshot()
	assert.Equal(t, before.Code, after.Code)
	assert.Equal(t, before.CountdownSeconds, after.CountdownSeconds)
	assert.Equal(t, before.Status, after.Status)
	assert.Equal(t, 1, auth.sendCalls())
}

func TestOTPWorkflow_ResendAfterCountdown(t *testing.T) {
	auth := &fakeAuth{}
	w, rec := newTestWorkflow(t, auth, nil)
	require.NoError(t, w.RequestCode(context.Background(), "263784739341"))
	enterCode(t, w, "9", "9")
	for i := 0; i < 60; i++ {
		w.Tick()
	}

	require.NoError(t, w.Resend(context.Background()))

	assert.Equal(t, []string{"+263784739341", "+263784739341"}, auth.sent)
	s := w.Snapshot()
	assert.Equal(t, models.EmptyCode(), s.Code)
	assert.Equal(t, 60, s.CountdownSeconds)
	assert.False(t, s.CanResend)
	assert.Equal(t, 2, rec.count())
}

func TestOTPWorkflow_RejectsOverlappingSend(t *testing.T) {
	auth := &fakeAuth{block: make(chan struct{})}
	w, _ := newTestWorkflow(t, auth, nil)

	errc := make(chan error, 1)
	go func() { errc <- w.RequestCode(context.Background(), "0784739341") }()

	assert.Eventually(t, func() bool {
		return w.Snapshot().Status == models.OTPStatusSending
	}, time.Second, time.Millisecond)

	assert.ErrorIs(t, w.RequestCode(context.Background(), "0784739341"), models.ErrCallInFlight)
	assert.ErrorIs(t, w.Resend(context.Background()), models.ErrCallInFlight)

	close(auth.block)
	require.NoError(t, <-errc)
	assert.Equal(t, 1, auth.sendCalls())
}

func TestOTPWorkflow_RejectsOverlappingSubmit(t *testing.T) {
	auth := &fakeAuth{verifyBlock: make(chan struct{})}
	w, _ := newTestWorkflow(t, auth, nil, WithCountdown(0, time.Second))
	ctx := context.Background()

	require.NoError(t, w.RequestCode(ctx, "0784739341"))
	require.True(t, w.Snapshot().CanResend)
	enterCode(t, w, "1", "2", "3", "4", "5", "6")

	errc := make(chan error, 1)
	go func() { errc <- w.Submit(ctx) }()

	assert.Eventually(t, func() bool {
		return w.Snapshot().Status == models.OTPStatusVerifying
	}, time.Second, time.Millisecond)

	assert.ErrorIs(t, w.Submit(ctx), models.ErrCallInFlight)
	assert.ErrorIs(t, w.Resend(ctx), models.ErrCallInFlight)
	assert.Equal(t, 1, auth.sendCalls(), "no code is sent while verifying")

	close(auth.verifyBlock)
	require.NoError(t, <-errc)
	assert.Equal(t, 1, auth.verifyCalls())
	assert.Equal(t, models.OTPStatusSucceeded, w.Snapshot().Status)
}

func TestOTPWorkflow_NegativeCountdownClampedToZero(t *testing.T) {
	w, _ := newTestWorkflow(t, &fakeAuth{}, nil, WithCountdown(-5, time.Second))
	require.NoError(t, w.RequestCode(context.Background(), "0784739341"))

	s := w.Snapshot()
	assert.Equal(t, 0, s.CountdownSeconds)
	assert.True(t, s.CanResend)
}

func TestOTPWorkflow_CloseStopsCountdown(t *testing.T) {
	w, rec := newTestWorkflow(t, &fakeAuth{}, nil)
	require.NoError(t, w.RequestCode(context.Background(), "0784739341"))

	w.Close()
	w.Close()

	require.Equal(t, 1, rec.count())
	assert.True(t, rec.tickers[0].stopped)
	assert.True(t, w.Closed())

	before := w.Snapshot().CountdownSeconds
	w.Tick()
	assert.Equal(t, before, w.Snapshot().CountdownSeconds)

	_, err := w.EnterDigit(0, "1")
	assert.ErrorIs(t, err, models.ErrSessionClosed)
	assert.ErrorIs(t, w.Submit(context.Background()), models.ErrSessionClosed)
	assert.ErrorIs(t, w.Resend(context.Background()), models.ErrSessionClosed)
}

func TestOTPWorkflow_EndToEnd(t *testing.T) {
	auth := &fakeAuth{}
	nav := &recordingNav{}
	w, rec := newTestWorkflow(t, auth, nav, WithNavigationPayload(map[string]string{"full_name": "Tendai Moyo"}))

	require.NoError(t, w.RequestCode(context.Background(), "0784739341"))
	enterCode(t, w, "1", "2", "3", "4", "5", "6")
	require.NoError(t, w.Submit(context.Background()))

	s := w.Snapshot()
	assert.Equal(t, models.OTPStatusSucceeded, s.Status)
	assert.Equal(t, models.DestinationUserType, s.NextStep)
	assert.Equal(t, []string{"+263784739341:123456"}, auth.verified)

	require.Len(t, nav.calls, 1)
	assert.Equal(t, models.DestinationUserType, nav.calls[0].destination)
	assert.Equal(t, "+263784739341", nav.calls[0].payload["phone"])
	assert.Equal(t, "Tendai Moyo", nav.calls[0].payload["full_name"])

	assert.True(t, rec.tickers[0].stopped, "countdown stops on success")

	require.NoError(t, w.Submit(context.Background()))
	assert.Len(t, nav.calls, 1)
	assert.Equal(t, 1, auth.verifyCalls())
}
