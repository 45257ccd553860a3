package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mychangex/app-wallet/internal/models"
	"github.com/mychangex/app-wallet/internal/utils"
	"go.uber.org/zap"
)

// StartSignup godoc
// @Summary Create an account
// @Description Validates the signup form and sends a verification code to the phone number.
// @Description The returned session is driven through the /otp/sessions endpoints.
// @Tags signup
// @Accept json
// @Produce json
// @Param data body models.SignupRequest true "Signup form"
// @Success 201 {object} models.SignupStarted
// @Failure 400 {object} ErrorResponse
// @Failure 429 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /signup [post]
func (h *Handlers) StartSignup(c *gin.Context) {
	var req models.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	h.logger.Debug("signup requested", zap.Any("request", utils.SanitizeAuditData(req)))

	started, err := h.signup.Begin(utils.WithAuditRequest(c), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	started.Session = sessionView(started.SessionID, started.Session)
	c.JSON(http.StatusCreated, started)
}

// CompleteSignup godoc
// @Summary Finish signup
// @Description Issues a single-use registration token once the session's phone has been verified
// @Tags signup
// @Produce json
// @Param id path string true "Session ID returned by POST /signup"
// @Success 200 {object} models.SignupCompleted
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Phone not verified yet, or not a signup session"
// @Router /signup/{id}/complete [post]
func (h *Handlers) CompleteSignup(c *gin.Context) {
	completed, err := h.signup.Complete(utils.WithAuditRequest(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, completed)
}
