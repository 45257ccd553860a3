package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type staticAuthenticator map[string]string

func (s staticAuthenticator) Authenticate(token string) (string, error) {
	phone, ok := s[token]
	if !ok {
		return "", errors.New("unknown token")
	}
	return phone, nil
}

func newAuthRouter() *gin.Engine {
	router := gin.New()
	auth := router.Group("/", AuthMiddleware(staticAuthenticator{"good": "+263784739341"}))
	auth.GET("/me", func(c *gin.Context) {
		phone, err := WalletPhone(c)
		if err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.String(http.StatusOK, phone)
	})
	auth.GET("/wallets/:phone", RequireOwnPhone("phone"), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router
}

func TestAuthMiddleware(t *testing.T) {
	router := newAuthRouter()

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic good", http.StatusUnauthorized},
		{"no token", "Bearer ", http.StatusUnauthorized},
		{"unknown token", "Bearer bad", http.StatusUnauthorized},
		{"valid", "Bearer good", http.StatusOK},
		{"scheme is case insensitive", "bearer good", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, "+263784739341", w.Body.String())
			}
		})
	}
}

func TestRequireOwnPhone(t *testing.T) {
	router := newAuthRouter()

	tests := []struct {
		name   string
		path   string
		status int
	}{
		{"own wallet", "/wallets/+263784739341", http.StatusOK},
		{"own wallet local format", "/wallets/0784739341", http.StatusOK},
		{"other wallet", "/wallets/0712345678", http.StatusForbidden},
		{"not a phone", "/wallets/12345", http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			req.Header.Set("Authorization", "Bearer good")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestRequireOwnPhone_WithoutAuthentication(t *testing.T) {
	router := gin.New()
	router.GET("/wallets/:phone", RequireOwnPhone("phone"), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/wallets/0784739341", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
