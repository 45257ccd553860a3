// Package gateways holds the concrete collaborators behind the services'
// AuthGateway and LedgerGateway interfaces.
package gateways

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/mychangex/app-wallet/internal/logging"
	"github.com/mychangex/app-wallet/internal/models"
	"github.com/mychangex/app-wallet/internal/observability"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Messages returned to the user by RedisAuthGateway
var (
	ErrCodeCooldown    = errors.New("Please wait before requesting another code")
	ErrCodeExpired     = errors.New("Verification code has expired, request a new one")
	ErrCodeMismatch    = errors.New("Invalid verification code")
	ErrTooManyAttempts = errors.New("Too many attempts, request a new code")
	ErrDeliveryFailed  = errors.New("Could not deliver the verification code, please try again")
)

// CodeSender delivers a text message to a phone number
type CodeSender interface {
	SendSMS(ctx context.Context, to, body string) error
}

// codeStore is the part of the Redis client RedisAuthGateway uses
type codeStore interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
}

// RedisAuthGateway generates one-time codes itself, keeps their hashes in Redis
// and hands delivery to a CodeSender.
type RedisAuthGateway struct {
	store       codeStore
	sender      CodeSender
	ttl         time.Duration
	cooldown    time.Duration
	maxAttempts int64
	logger      *logging.SafeLogger
	generate    func() (string, error)
}

// RedisAuthConfig holds the code lifetime settings
type RedisAuthConfig struct {
	TTL         time.Duration
	Cooldown    time.Duration
	MaxAttempts int
}

// NewRedisAuthGateway creates a Redis-backed auth gateway
func NewRedisAuthGateway(store codeStore, sender CodeSender, cfg RedisAuthConfig, logger *logging.SafeLogger) *RedisAuthGateway {
	if logger == nil {
		logger = logging.Logger
	}
	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = models.DefaultOTPMaxAttempts
	}
	return &RedisAuthGateway{
		store:       store,
		sender:      sender,
		ttl:         cfg.TTL,
		cooldown:    cfg.Cooldown,
		maxAttempts: int64(maxAttempts),
		logger:      logger,
		generate:    generateCode,
	}
}

func codeKey(phone string) string     { return "otp:code:" + phone }
func cooldownKey(phone string) string { return "otp:cooldown:" + phone }
func attemptsKey(phone string) string { return "otp:attempts:" + phone }

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func hashCode(phone, code string) string {
	sum := sha256.Sum256([]byte(phone + ":" + code))
	return hex.EncodeToString(sum[:])
}

// SendCode stores a fresh code for phone and sends it by SMS
func (g *RedisAuthGateway) SendCode(ctx context.Context, phone string) error {
	if g.cooldown > 0 {
		ok, err := g.store.SetNX(ctx, cooldownKey(phone), "1", g.cooldown).Result()
		if err != nil {
			return g.unavailable("check_send_cooldown", phone, err)
		}
		if !ok {
			return ErrCodeCooldown
		}
	}

	code, err := g.generate()
	if err != nil {
		g.store.Del(ctx, cooldownKey(phone))
		return g.unavailable("generate_code", phone, err)
	}

	if err := g.store.Set(ctx, codeKey(phone), hashCode(phone, code), g.ttl).Err(); err != nil {
		g.store.Del(ctx, cooldownKey(phone))
		return g.unavailable("store_code", phone, err)
	}
	g.store.Del(ctx, attemptsKey(phone))

	body := fmt.Sprintf("Your myChangeX verification code is %s. It expires in %d minutes.", code, int(g.ttl.Minutes()))
	if err := g.sender.SendSMS(ctx, phone, body); err != nil {
		g.store.Del(ctx, codeKey(phone), cooldownKey(phone))
		g.logger.Error("failed to deliver verification code",
			zap.String("phone", observability.MaskPhone(phone)),
			zap.Error(err))
		return ErrDeliveryFailed
	}

	return nil
}

// VerifyCode checks code against the stored hash. A correct code can be used once.
func (g *RedisAuthGateway) VerifyCode(ctx context.Context, phone, code string) error {
	attempts, err := g.store.Incr(ctx, attemptsKey(phone)).Result()
	if err != nil {
		return g.unavailable("count_attempts", phone, err)
	}
	if attempts == 1 {
		g.store.Expire(ctx, attemptsKey(phone), g.ttl)
	}
	if attempts > g.maxAttempts {
		return ErrTooManyAttempts
	}

	stored, err := g.store.Get(ctx, codeKey(phone)).Result()
	if errors.Is(err, redis.Nil) {
		return ErrCodeExpired
	}
	if err != nil {
		return g.unavailable("load_code", phone, err)
	}

	if subtle.ConstantTimeCompare([]byte(stored), []byte(hashCode(phone, code))) != 1 {
		return ErrCodeMismatch
	}

	g.store.Del(ctx, codeKey(phone), attemptsKey(phone))
	return nil
}

// unavailable logs a store failure and returns an error safe to show the user
func (g *RedisAuthGateway) unavailable(op, phone string, err error) error {
	g.logger.Error("verification store failure",
		zap.String("op", op),
		zap.String("phone", observability.MaskPhone(phone)),
		zap.Error(err))
	return &models.ExternalError{Op: op, Message: models.DefaultAuthUnavailableMessage, Err: err}
}

// LogSender writes codes to the log instead of sending them. Development only.
type LogSender struct {
	Logger *logging.SafeLogger
}

// SendSMS logs the message
func (s LogSender) SendSMS(ctx context.Context, to, body string) error {
	s.Logger.Info("sms not sent, logging instead",
		zap.String("to", observability.MaskPhone(to)),
		zap.String("body", body))
	return nil
}
