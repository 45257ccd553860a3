package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/mychangex/app-wallet/internal/logging"
	"github.com/mychangex/app-wallet/internal/models"
	"github.com/mychangex/app-wallet/internal/observability"
	"github.com/mychangex/app-wallet/internal/utils"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// OTPWorkflow drives one phone verification attempt: sending the code, the resend
// countdown, digit entry and submission. All methods are safe for concurrent use.
type OTPWorkflow struct {
	mu sync.Mutex

	auth      AuthGateway
	navigator Navigator
	newTicker TickerFactory
	logger    *logging.SafeLogger
	now       func() time.Time

	countdownFrom int
	interval      time.Duration
	payload       map[string]string

	phone       string
	code        []string
	countdown   int
	canResend   bool
	status      models.OTPStatus
	ready       bool
	inFlight    bool
	closed      bool
	lastErr     string
	nextStep    models.Destination
	nextPayload map[string]string
	updatedAt   time.Time

	timer      *Countdown
	generation uint64
}

// WorkflowOption customizes an OTPWorkflow
type WorkflowOption func(*OTPWorkflow)

// WithTickerFactory replaces the ticker used by the resend countdown
func WithTickerFactory(f TickerFactory) WorkflowOption {
	return func(w *OTPWorkflow) { w.newTicker = f }
}

// WithCountdown sets the resend countdown length in ticks and the tick interval
func WithCountdown(seconds int, interval time.Duration) WorkflowOption {
	if seconds < 0 {
		seconds = 0
	}
	return func(w *OTPWorkflow) {
		w.countdownFrom = seconds
		w.interval = interval
	}
}

// WithLogger sets the workflow logger
func WithLogger(logger *logging.SafeLogger) WorkflowOption {
	return func(w *OTPWorkflow) { w.logger = logger }
}

// WithClock sets the time source used for UpdatedAt
func WithClock(now func() time.Time) WorkflowOption {
	return func(w *OTPWorkflow) { w.now = now }
}

// WithNavigationPayload adds fields to the payload handed to the navigator on success
func WithNavigationPayload(payload map[string]string) WorkflowOption {
	return func(w *OTPWorkflow) {
		for k, v := range payload {
			w.payload[k] = v
		}
	}
}

// NewOTPWorkflow creates an idle workflow. No code is sent until RequestCode is called.
func NewOTPWorkflow(auth AuthGateway, navigator Navigator, opts ...WorkflowOption) *OTPWorkflow {
	w := &OTPWorkflow{
		auth:          auth,
		navigator:     navigator,
		newTicker:     NewRealTicker,
		logger:        logging.Logger,
		now:           time.Now,
		countdownFrom: models.OTPCountdownSeconds,
		interval:      models.OTPCountdownInterval,
		payload:       make(map[string]string),
		code:          models.EmptyCode(),
		status:        models.OTPStatusIdle,
	}
	for _, opt := range opts {
		opt(w)
	}
	w.updatedAt = w.now()
	return w
}

// RequestCode normalizes phone and asks the auth gateway to send it a code.
// On success the code buffer is cleared and the resend countdown restarts.
func (w *OTPWorkflow) RequestCode(ctx context.Context, phone string) error {
	return w.send(ctx, utils.NormalizePhone(phone), false)
}

// Resend sends a new code to the same phone. It returns ErrResendTooSoon and leaves
// the session untouched while the countdown is still running.
func (w *OTPWorkflow) Resend(ctx context.Context) error {
	return w.send(ctx, "", true)
}

func (w *OTPWorkflow) send(ctx context.Context, phone string, resend bool) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return models.ErrSessionClosed
	}
	if w.inFlight {
		w.mu.Unlock()
		return models.ErrCallInFlight
	}
	if resend {
		if !w.canResend {
			w.mu.Unlock()
			return models.ErrResendTooSoon
		}
		phone = w.phone
	}
	w.phone = phone
	w.inFlight = true
	w.status = models.OTPStatusSending
	w.touch()
	w.mu.Unlock()

	ctx, span := otel.Tracer("otp").Start(ctx, "otp.send_code")
	span.SetAttributes(
		attribute.String("otp.phone", observability.MaskPhone(phone)),
		attribute.Bool("otp.resend", resend),
	)
	err := w.auth.SendCode(ctx, phone)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()

	w.mu.Lock()
	w.inFlight = false
	if w.closed {
		w.mu.Unlock()
		return models.ErrSessionClosed
	}

	if err != nil {
		extErr := models.NewExternalError("send_code", err, models.DefaultSendFailureMessage)
		w.status = models.OTPStatusFailed
		w.ready = false
		w.lastErr = extErr.Message
		w.touch()
		w.mu.Unlock()

		observability.OTPSends.WithLabelValues("failed").Inc()
		w.logger.Warn("failed to send verification code",
			zap.String("phone", observability.MaskPhone(phone)),
			zap.Bool("resend", resend),
			zap.Error(err))
		return extErr
	}

	w.status = models.OTPStatusIdle
	w.ready = true
	w.code = models.EmptyCode()
	w.lastErr = ""
	w.countdown = w.countdownFrom
	w.canResend = w.countdownFrom <= 0

	previous := w.timer
	w.timer = nil
	w.generation++
	if w.countdownFrom > 0 {
		gen := w.generation
		w.timer = StartCountdown(w.newTicker, w.interval, func() bool { return w.tick(gen) })
	}
	w.touch()
	w.mu.Unlock()

	// The old goroutine may be waiting on mu; it sees a stale generation and exits.
	previous.Stop()

	observability.OTPSends.WithLabelValues("success").Inc()
	w.logger.Info("verification code sent",
		zap.String("phone", observability.MaskPhone(phone)),
		zap.Bool("resend", resend))
	return nil
}

// Tick advances the resend countdown by one step. It does nothing when no
// countdown is running.
func (w *OTPWorkflow) Tick() {
	w.mu.Lock()
	if w.timer == nil {
		w.mu.Unlock()
		return
	}
	gen := w.generation
	w.mu.Unlock()
	w.tick(gen)
}

// tick reports whether the countdown identified by gen should keep running
func (w *OTPWorkflow) tick(gen uint64) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed || gen != w.generation || w.canResend {
		return false
	}
	if w.countdown > 0 {
		w.countdown--
	}
	if w.countdown == 0 {
		w.canResend = true
		w.touch()
		return false
	}
	return true
}

// EnterDigit stores digit in slot index and returns the slot that should take focus next
func (w *OTPWorkflow) EnterDigit(index int, digit string) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return index, models.ErrSessionClosed
	}
	if index < 0 || index >= models.OTPCodeLength {
		return index, &models.ValidationError{Field: "index", Message: fmt.Sprintf("slot %d does not exist", index)}
	}
	if utf8.RuneCountInString(digit) > 1 {
		return index, &models.ValidationError{Field: "digit", Message: "enter one digit at a time"}
	}

	w.code[index] = digit
	w.touch()

	if digit != "" && index < models.OTPCodeLength-1 {
		return index + 1, nil
	}
	return index, nil
}

// Backspace returns the slot that should take focus after backspace in slot index.
// The code buffer is not modified.
func (w *OTPWorkflow) Backspace(index int) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return index, models.ErrSessionClosed
	}
	if index < 0 || index >= models.OTPCodeLength {
		return index, &models.ValidationError{Field: "index", Message: fmt.Sprintf("slot %d does not exist", index)}
	}
	if w.code[index] == "" && index > 0 {
		return index - 1, nil
	}
	return index, nil
}

// Submit verifies the entered code. An incomplete code fails with a ValidationError
// before the auth gateway is called. On success the navigator is told to move on.
func (w *OTPWorkflow) Submit(ctx context.Context) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return models.ErrSessionClosed
	}

	code := strings.Join(w.code, "")
	if utf8.RuneCountInString(code) != models.OTPCodeLength {
		w.mu.Unlock()
		return models.NewValidationError("code", models.ErrIncompleteCode)
	}
	if w.inFlight {
		w.mu.Unlock()
		return models.ErrCallInFlight
	}
	if w.status == models.OTPStatusSucceeded {
		w.mu.Unlock()
		return nil
	}
	if !w.ready {
		w.mu.Unlock()
		return models.NewValidationError("phone", models.ErrCodeNotRequested)
	}

	phone := w.phone
	w.inFlight = true
	w.status = models.OTPStatusVerifying
	w.touch()
	w.mu.Unlock()

	ctx, span := otel.Tracer("otp").Start(ctx, "otp.verify_code")
	span.SetAttributes(attribute.String("otp.phone", observability.MaskPhone(phone)))
	err := w.auth.VerifyCode(ctx, phone, code)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()

	w.mu.Lock()
	w.inFlight = false
	if w.closed {
		w.mu.Unlock()
		return models.ErrSessionClosed
	}

	if err != nil {
		extErr := models.NewExternalError("verify_code", err, models.DefaultVerifyFailureMessage)
		w.status = models.OTPStatusFailed
		w.lastErr = extErr.Message
		w.touch()
		w.mu.Unlock()

		observability.OTPVerifications.WithLabelValues("failed").Inc()
		w.logger.Warn("verification code rejected",
			zap.String("phone", observability.MaskPhone(phone)),
			zap.Error(err))
		return extErr
	}

	payload := make(map[string]string, len(w.payload)+1)
	for k, v := range w.payload {
		payload[k] = v
	}
	payload["phone"] = phone

	w.status = models.OTPStatusSucceeded
	w.lastErr = ""
	w.nextStep = models.DestinationUserType
	w.nextPayload = payload
	timer := w.timer
	w.timer = nil
	w.generation++
	w.touch()
	w.mu.Unlock()

	timer.Stop()

	observability.OTPVerifications.WithLabelValues("success").Inc()
	w.logger.Info("phone number verified", zap.String("phone", observability.MaskPhone(phone)))

	if w.navigator != nil {
		w.navigator.Navigate(models.DestinationUserType, copyPayload(payload))
	}
	return nil
}

// Close tears the workflow down. The countdown is stopped and every later call
// fails with ErrSessionClosed. Close is idempotent.
func (w *OTPWorkflow) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	timer := w.timer
	w.timer = nil
	w.generation++
	w.mu.Unlock()

	timer.Stop()
}

// Snapshot returns a copy of the current session state
func (w *OTPWorkflow) Snapshot() models.OTPSession {
	w.mu.Lock()
	defer w.mu.Unlock()

	code := make([]string, len(w.code))
	copy(code, w.code)

	return models.OTPSession{
		Phone:            w.phone,
		Code:             code,
		CountdownSeconds: w.countdown,
		CanResend:        w.canResend,
		Status:           w.status,
		Ready:            w.ready,
		LastError:        w.lastErr,
		NextStep:         w.nextStep,
		NextStepPayload:  copyPayload(w.nextPayload),
		UpdatedAt:        w.updatedAt,
	}
}

// Closed reports whether Close has been called
func (w *OTPWorkflow) Closed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closed
}

// touch records activity; callers hold mu
func (w *OTPWorkflow) touch() {
	w.updatedAt = w.now()
}

func copyPayload(p map[string]string) map[string]string {
	if p == nil {
		return nil
	}
	out := make(map[string]string, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}
