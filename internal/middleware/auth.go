package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mychangex/app-wallet/internal/observability"
	"github.com/mychangex/app-wallet/internal/utils"
	"go.uber.org/zap"
)

// WalletPhoneKey is the gin context key holding the authenticated wallet's phone
const WalletPhoneKey = "wallet_phone"

// Authenticator resolves a bearer token to the canonical phone it was issued for
type Authenticator interface {
	Authenticate(token string) (string, error)
}

// AuthMiddleware requires a valid bearer access token
func AuthMiddleware(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			return
		}

		phone, err := auth.Authenticate(strings.TrimSpace(parts[1]))
		if err != nil {
			observability.Logger().Debug("rejected access token",
				zap.String("request_id", c.GetString(RequestIDKey)),
				zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		c.Set(WalletPhoneKey, phone)
		c.Next()
	}
}

// RequireOwnPhone checks that the phone in the named path parameter is the caller's
func RequireOwnPhone(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		phone, err := WalletPhone(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Claims not found"})
			return
		}
		if utils.NormalizePhone(c.Param(param)) != phone {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access denied"})
			return
		}
		c.Next()
	}
}

// WalletPhone returns the phone set by AuthMiddleware
func WalletPhone(c *gin.Context) (string, error) {
	phone := c.GetString(WalletPhoneKey)
	if phone == "" {
		return "", fmt.Errorf("wallet phone not found")
	}
	return phone, nil
}
