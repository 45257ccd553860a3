package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mychangex/app-wallet/internal/logging"
	"github.com/mychangex/app-wallet/internal/models"
	"github.com/mychangex/app-wallet/internal/observability"
	"github.com/mychangex/app-wallet/internal/utils"
	"go.uber.org/zap"
)

// RecordingNavigator remembers the last navigation signal and forwards it
type RecordingNavigator struct {
	mu          sync.Mutex
	destination models.Destination
	payload     map[string]string
	next        Navigator
}

// NewRecordingNavigator forwards to next, which may be nil
func NewRecordingNavigator(next Navigator) *RecordingNavigator {
	return &RecordingNavigator{next: next}
}

// Navigate records the destination and payload
func (r *RecordingNavigator) Navigate(destination models.Destination, payload map[string]string) {
	r.mu.Lock()
	r.destination = destination
	r.payload = copyPayload(payload)
	r.mu.Unlock()

	if r.next != nil {
		r.next.Navigate(destination, payload)
	}
}

// Last returns the last recorded navigation; ok is false if none happened yet
func (r *RecordingNavigator) Last() (models.Destination, map[string]string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.destination == "" {
		return "", nil, false
	}
	return r.destination, copyPayload(r.payload), true
}

type managedSession struct {
	workflow  *OTPWorkflow
	navigator *RecordingNavigator
}

// SessionManager owns the live verification sessions of the HTTP API
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[string]*managedSession

	auth        AuthGateway
	navigator   Navigator
	limiter     *SendCodeLimiter
	idleTimeout time.Duration
	options     []WorkflowOption
	logger      *logging.SafeLogger
	now         func() time.Time
	newID       func() string
}

// SessionManagerConfig holds the SessionManager settings
type SessionManagerConfig struct {
	IdleTimeout      time.Duration
	CountdownSeconds int
	Limiter          *SendCodeLimiter
	Navigator        Navigator
	Logger           *logging.SafeLogger
}

// NewSessionManager creates an empty session registry
func NewSessionManager(auth AuthGateway, cfg SessionManagerConfig, opts ...WorkflowOption) *SessionManager {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Logger
	}
	countdown := cfg.CountdownSeconds
	if countdown == 0 {
		countdown = models.OTPCountdownSeconds
	}

	m := &SessionManager{
		sessions:    make(map[string]*managedSession),
		auth:        auth,
		navigator:   cfg.Navigator,
		limiter:     cfg.Limiter,
		idleTimeout: cfg.IdleTimeout,
		logger:      logger,
		now:         time.Now,
		newID:       func() string { return uuid.New().String() },
	}
	m.options = append([]WorkflowOption{
		WithCountdown(countdown, models.OTPCountdownInterval),
		WithLogger(logger),
	}, opts...)
	return m
}

// Start validates phone, sends it a code and registers the new session.
// Nothing is registered when sending fails.
func (m *SessionManager) Start(ctx context.Context, phone string, opts ...WorkflowOption) (models.OTPSession, error) {
	if !utils.IsAcceptablePhone(phone) {
		return models.OTPSession{}, models.NewValidationError("phone", models.ErrInvalidPhone)
	}
	canonical := utils.NormalizePhone(phone)

	if m.limiter != nil {
		if ok, reason := m.limiter.Allow(ctx, canonical); !ok {
			observability.OTPSends.WithLabelValues("rate_limited").Inc()
			return models.OTPSession{}, fmt.Errorf("%w: %s", models.ErrRateLimited, reason)
		}
	}

	nav := NewRecordingNavigator(m.navigator)
	all := make([]WorkflowOption, 0, len(m.options)+len(opts)+1)
	all = append(all, m.options...)
	all = append(all, WithClock(m.now))
	all = append(all, opts...)
	workflow := NewOTPWorkflow(m.auth, nav, all...)

	if err := workflow.RequestCode(ctx, canonical); err != nil {
		workflow.Close()
		return models.OTPSession{}, err
	}

	id := m.newID()
	m.mu.Lock()
	m.sessions[id] = &managedSession{workflow: workflow, navigator: nav}
	m.mu.Unlock()
	observability.ActiveOTPSessions.Inc()

	m.logger.Info("otp session started",
		zap.String("session_id", id),
		zap.String("phone", observability.MaskPhone(canonical)))

	snapshot := workflow.Snapshot()
	snapshot.ID = id
	return snapshot, nil
}

// Get returns the workflow registered under id
func (m *SessionManager) Get(id string) (*OTPWorkflow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, models.ErrSessionNotFound
	}
	return s.workflow, nil
}

// View returns a snapshot of the session registered under id
func (m *SessionManager) View(id string) (models.OTPSession, error) {
	w, err := m.Get(id)
	if err != nil {
		return models.OTPSession{}, err
	}
	snapshot := w.Snapshot()
	snapshot.ID = id
	return snapshot, nil
}

// Completed returns where a verified session asked to go next.
// It fails with ErrSessionNotDone until the code has been verified.
func (m *SessionManager) Completed(id string) (models.Destination, map[string]string, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return "", nil, models.ErrSessionNotFound
	}

	destination, payload, done := s.navigator.Last()
	if !done {
		return "", nil, models.ErrSessionNotDone
	}
	return destination, payload, nil
}

// Claim removes a verified session from the registry and returns its navigation result.
// accept, when set, inspects the payload first; its error leaves the session in place.
// Only one caller can claim a session.
func (m *SessionManager) Claim(id string, accept func(payload map[string]string) error) (models.Destination, map[string]string, error) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if !ok {
		m.mu.Unlock()
		return "", nil, models.ErrSessionNotFound
	}
	destination, payload, done := s.navigator.Last()
	if !done {
		m.mu.Unlock()
		return "", nil, models.ErrSessionNotDone
	}
	if accept != nil {
		if err := accept(payload); err != nil {
			m.mu.Unlock()
			return "", nil, err
		}
	}
	delete(m.sessions, id)
	m.mu.Unlock()

	s.workflow.Close()
	observability.ActiveOTPSessions.Dec()
	return destination, payload, nil
}

// Close tears down and forgets the session registered under id
func (m *SessionManager) Close(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	if !ok {
		return models.ErrSessionNotFound
	}
	s.workflow.Close()
	observability.ActiveOTPSessions.Dec()
	return nil
}

// Len returns the number of registered sessions
func (m *SessionManager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep closes every session idle for longer than the idle timeout and returns how many it removed
func (m *SessionManager) Sweep(now time.Time) int {
	if m.idleTimeout <= 0 {
		return 0
	}
	cutoff := now.Add(-m.idleTimeout)

	m.mu.Lock()
	var expired []*managedSession
	for id, s := range m.sessions {
		if s.workflow.Snapshot().UpdatedAt.Before(cutoff) {
			expired = append(expired, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range expired {
		s.workflow.Close()
		observability.ActiveOTPSessions.Dec()
	}

	if len(expired) > 0 {
		m.logger.Debug("expired idle otp sessions", zap.Int("count", len(expired)))
	}
	return len(expired)
}

// RunJanitor sweeps idle sessions every interval until ctx is done
func (m *SessionManager) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep(m.now())
			if m.limiter != nil {
				m.limiter.CleanupOldEntries(24 * time.Hour)
			}
		}
	}
}

// Shutdown closes every session
func (m *SessionManager) Shutdown() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*managedSession)
	m.mu.Unlock()

	for _, s := range sessions {
		s.workflow.Close()
		observability.ActiveOTPSessions.Dec()
	}
	m.logger.Info("otp sessions closed", zap.Int("count", len(sessions)))
}
