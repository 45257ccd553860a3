package services

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/mychangex/app-wallet/internal/models"
	"github.com/mychangex/app-wallet/internal/utils"
)

const accessTokenIssuer = "mychangex-wallet"

// WalletClaims are carried by an access token. Subject is the canonical phone.
type WalletClaims struct {
	jwt.RegisteredClaims
}

// AccessTokens signs and checks the bearer tokens of the wallet endpoints
type AccessTokens struct {
	signingKey []byte
	ttl        time.Duration
	now        func() time.Time
}

// NewAccessTokens creates an HS256 token issuer
func NewAccessTokens(signingKey []byte, ttl time.Duration) *AccessTokens {
	if ttl <= 0 {
		ttl = models.DefaultAccessTokenTTL
	}
	return &AccessTokens{signingKey: signingKey, ttl: ttl, now: time.Now}
}

// Issue signs a token for phone
func (a *AccessTokens) Issue(phone string) (*models.AccessToken, error) {
	now := a.now()
	expiresAt := now.Add(a.ttl)

	claims := WalletClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    accessTokenIssuer,
			Subject:   phone,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.signingKey)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	return &models.AccessToken{
		AccessToken: signed,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt.UTC(),
		Phone:       phone,
	}, nil
}

// Authenticate returns the phone a valid token was issued for
func (a *AccessTokens) Authenticate(token string) (string, error) {
	claims := &WalletClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return a.signingKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(accessTokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil || !parsed.Valid {
		return "", models.ErrUnauthenticated
	}
	if !utils.IsCanonicalPhone(claims.Subject) {
		return "", models.ErrUnauthenticated
	}
	return claims.Subject, nil
}
