package services

import (
	"context"
	"sync"
	"time"

	"github.com/mychangex/app-wallet/internal/logging"
	"github.com/mychangex/app-wallet/internal/observability"
	"go.uber.org/zap"
)

// RateLimiter implements a token bucket rate limiter
type RateLimiter struct {
	tokens     int
	maxTokens  int
	refillRate time.Duration
	lastRefill time.Time
	lastUsed   time.Time
	mutex      sync.Mutex
	logger     *logging.SafeLogger
	now        func() time.Time
}

// NewRateLimiter creates a new token bucket rate limiter
func NewRateLimiter(maxTokens int, refillRate time.Duration, logger *logging.SafeLogger) *RateLimiter {
	return newRateLimiterWithClock(maxTokens, refillRate, logger, time.Now)
}

func newRateLimiterWithClock(maxTokens int, refillRate time.Duration, logger *logging.SafeLogger, now func() time.Time) *RateLimiter {
	t := now()
	return &RateLimiter{
		tokens:     maxTokens,
		maxTokens:  maxTokens,
		refillRate: refillRate,
		lastRefill: t,
		lastUsed:   t,
		logger:     logger,
		now:        now,
	}
}

// Allow checks if a request should be allowed based on rate limiting
func (rl *RateLimiter) Allow(ctx context.Context, operation string) bool {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	now := rl.now()
	rl.lastUsed = now
	elapsed := now.Sub(rl.lastRefill)

	tokensToAdd := int(elapsed / rl.refillRate)
	if tokensToAdd > 0 {
		rl.tokens += tokensToAdd
		if rl.tokens > rl.maxTokens {
			rl.tokens = rl.maxTokens
		}
		rl.lastRefill = rl.lastRefill.Add(time.Duration(tokensToAdd) * rl.refillRate)

		rl.logger.Debug("rate limiter tokens refilled",
			zap.String("operation", operation),
			zap.Int("tokens_added", tokensToAdd),
			zap.Int("current_tokens", rl.tokens))
	}

	if rl.tokens > 0 {
		rl.tokens--
		return true
	}

	rl.logger.Warn("rate limiter rejected request",
		zap.String("operation", operation),
		zap.Int("max_tokens", rl.maxTokens))
	return false
}

// GetStatus returns the current and maximum token counts
func (rl *RateLimiter) GetStatus() (int, int) {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()
	return rl.tokens, rl.maxTokens
}

func (rl *RateLimiter) idleSince() time.Time {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()
	return rl.lastUsed
}

// SendCodeLimiter guards the send-code path: one global bucket shared by every
// phone plus a small bucket per phone.
type SendCodeLimiter struct {
	global       *RateLimiter
	perPhone     sync.Map // map[string]*RateLimiter
	perPhoneMax  int
	perPhoneRate time.Duration
	logger       *logging.SafeLogger
	now          func() time.Time
}

// Per-phone allowance: a burst of 3 sends, then one more every 5 minutes
const (
	DefaultPerPhoneBurst = 3
	DefaultPerPhoneRate  = 5 * time.Minute
)

// NewSendCodeLimiter allows maxRequestsPerMinute sends overall
func NewSendCodeLimiter(maxRequestsPerMinute int, logger *logging.SafeLogger) *SendCodeLimiter {
	return newSendCodeLimiter(maxRequestsPerMinute, DefaultPerPhoneBurst, DefaultPerPhoneRate, logger, time.Now)
}

func newSendCodeLimiter(maxRequestsPerMinute, perPhoneMax int, perPhoneRate time.Duration, logger *logging.SafeLogger, now func() time.Time) *SendCodeLimiter {
	// One token every (60 seconds / maxRequestsPerMinute)
	refillRate := time.Minute / time.Duration(maxRequestsPerMinute)

	return &SendCodeLimiter{
		global:       newRateLimiterWithClock(maxRequestsPerMinute, refillRate, logger, now),
		perPhoneMax:  perPhoneMax,
		perPhoneRate: perPhoneRate,
		logger:       logger,
		now:          now,
	}
}

// Allow reports whether a code may be sent to phone now, and if not, why
func (m *SendCodeLimiter) Allow(ctx context.Context, phone string) (bool, string) {
	limiter, _ := m.perPhone.LoadOrStore(phone, newRateLimiterWithClock(m.perPhoneMax, m.perPhoneRate, m.logger, m.now))
	if !limiter.(*RateLimiter).Allow(ctx, "send_code_phone") {
		m.logger.Warn("send code rate limited for phone", zap.String("phone", observability.MaskPhone(phone)))
		return false, "too many codes requested for this phone"
	}

	if !m.global.Allow(ctx, "send_code") {
		return false, "global rate limit exceeded"
	}

	return true, ""
}

// CleanupOldEntries removes per-phone buckets unused for longer than olderThan
func (m *SendCodeLimiter) CleanupOldEntries(olderThan time.Duration) int {
	cutoff := m.now().Add(-olderThan)
	removed := 0

	m.perPhone.Range(func(key, value interface{}) bool {
		if value.(*RateLimiter).idleSince().Before(cutoff) {
			m.perPhone.Delete(key)
			removed++
		}
		return true
	})

	if removed > 0 {
		m.logger.Debug("cleaned up send code rate limit entries", zap.Int("removed", removed))
	}
	return removed
}

// GetGlobalLimiterStatus returns the current status of the global bucket
func (m *SendCodeLimiter) GetGlobalLimiterStatus() (int, int) {
	return m.global.GetStatus()
}

// GetCacheSize returns the number of tracked phones
func (m *SendCodeLimiter) GetCacheSize() int {
	count := 0
	m.perPhone.Range(func(key, value interface{}) bool {
		count++
		return true
	})
	return count
}
