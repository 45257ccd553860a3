package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mychangex/app-wallet/internal/models"
	"github.com/redis/go-redis/v9"
)

// tokenStore is the part of the Redis client the token registry uses
type tokenStore interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	GetDel(ctx context.Context, key string) *redis.StringCmd
}

// RegistrationTokens issues one-time tokens proving that a phone number was verified
type RegistrationTokens struct {
	store tokenStore
	ttl   time.Duration
	newID func() string
}

// NewRegistrationTokens creates a registry keeping tokens for ttl
func NewRegistrationTokens(store tokenStore, ttl time.Duration) *RegistrationTokens {
	return &RegistrationTokens{
		store: store,
		ttl:   ttl,
		newID: uuid.NewString,
	}
}

// Issue stores a fresh token bound to phone
func (r *RegistrationTokens) Issue(ctx context.Context, phone string) (string, error) {
	token := r.newID()
	ok, err := r.store.SetNX(ctx, models.RegistrationTokenPrefix+token, phone, r.ttl).Result()
	if err != nil {
		return "", fmt.Errorf("failed to store registration token: %w", err)
	}
	if !ok {
		return "", fmt.Errorf("registration token collision")
	}
	return token, nil
}

// Consume returns the phone bound to token and invalidates it.
// A second call with the same token fails with ErrInvalidToken.
func (r *RegistrationTokens) Consume(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", models.ErrInvalidToken
	}
	phone, err := r.store.GetDel(ctx, models.RegistrationTokenPrefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return "", models.ErrInvalidToken
	}
	if err != nil {
		return "", fmt.Errorf("failed to read registration token: %w", err)
	}
	return phone, nil
}
