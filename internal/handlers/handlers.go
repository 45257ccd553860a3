// Package handlers exposes the onboarding and coupon flows over HTTP.
package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mychangex/app-wallet/internal/logging"
	"github.com/mychangex/app-wallet/internal/middleware"
	"github.com/mychangex/app-wallet/internal/models"
	"github.com/mychangex/app-wallet/internal/services"
	"go.uber.org/zap"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse reports the state of the service and its dependencies
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Services  map[string]string `json:"services"`
}

// Handlers holds the services the HTTP layer delegates to
type Handlers struct {
	sessions *services.SessionManager
	signup   *services.SignupService
	wallet   *services.WalletAuthService
	coupons  *services.CouponService
	health   map[string]HealthCheck
	logger   *logging.SafeLogger
}

// New creates the HTTP handlers. checks are run by GET /health, keyed by dependency name.
func New(sessions *services.SessionManager, signup *services.SignupService, wallet *services.WalletAuthService, coupons *services.CouponService, checks map[string]HealthCheck, logger *logging.SafeLogger) *Handlers {
	if logger == nil {
		logger = logging.NewSafeLogger(nil)
	}
	return &Handlers{
		sessions: sessions,
		signup:   signup,
		wallet:   wallet,
		coupons:  coupons,
		health:   checks,
		logger:   logger,
	}
}

// RegisterRoutes mounts every endpoint on rg
func (h *Handlers) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/health", h.HealthCheck)
	rg.POST("/phone/normalize", h.NormalizePhone)

	otp := rg.Group("/otp/sessions")
	{
		otp.POST("", h.StartOTPSession)
		otp.GET("/:id", h.GetOTPSession)
		otp.PUT("/:id/digits/:index", h.EnterDigit)
		otp.POST("/:id/backspace/:index", h.Backspace)
		otp.POST("/:id/submit", h.SubmitCode)
		otp.POST("/:id/resend", h.ResendCode)
		otp.POST("/:id/token", h.LoginWithSession)
		otp.DELETE("/:id", h.CloseOTPSession)
	}

	rg.POST("/signup", h.StartSignup)
	rg.POST("/signup/:id/complete", h.CompleteSignup)
	rg.POST("/auth/token", h.ExchangeRegistrationToken)

	coupons := rg.Group("/coupons", middleware.AuthMiddleware(h.wallet))
	{
		coupons.POST("/transfer", h.TransferCoupons)
		coupons.GET("/balance/:phone", middleware.RequireOwnPhone("phone"), h.GetBalance)
	}
}

// statusForError maps a service error to the HTTP status it is reported with
func statusForError(err error) int {
	switch {
	case errors.Is(err, models.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrSessionClosed):
		return http.StatusGone
	case errors.Is(err, models.ErrResendTooSoon), errors.Is(err, models.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, models.ErrCallInFlight), errors.Is(err, models.ErrSessionNotDone), errors.Is(err, models.ErrNotSignup):
		return http.StatusConflict
	case errors.Is(err, models.ErrInvalidToken), errors.Is(err, models.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, models.ErrForbidden):
		return http.StatusForbidden
	case models.IsValidationError(err):
		return http.StatusBadRequest
	case models.IsExternalError(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handlers) respondError(c *gin.Context, err error) {
	status := statusForError(err)
	msg := err.Error()

	var ve *models.ValidationError
	if errors.As(err, &ve) {
		// field prefixes are for logs; the user sees the sentence
		msg = ve.Message
	}
	if status == http.StatusInternalServerError {
		h.logger.Error("unhandled error",
			zap.String("path", c.FullPath()),
			zap.String("request_id", c.GetString("request_id")),
			zap.Error(err))
		msg = "Internal server error"
	}

	_ = c.Error(err)
	c.JSON(status, ErrorResponse{Error: msg})
}

func bindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body: " + err.Error()})
}
