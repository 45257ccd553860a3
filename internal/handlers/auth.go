package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mychangex/app-wallet/internal/models"
	"github.com/mychangex/app-wallet/internal/utils"
)

// ExchangeRegistrationToken godoc
// @Summary Get an access token after signup
// @Description Consumes the registration token returned by /signup/{id}/complete
// @Tags auth
// @Accept json
// @Produce json
// @Param data body models.AccessTokenRequest true "Registration token"
// @Success 200 {object} models.AccessToken
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /auth/token [post]
func (h *Handlers) ExchangeRegistrationToken(c *gin.Context) {
	var req models.AccessTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	token, err := h.wallet.Exchange(utils.WithAuditRequest(c), req.RegistrationToken)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, token)
}

// LoginWithSession godoc
// @Summary Get an access token for a verified phone
// @Description Closes a verified OTP session and returns an access token for its phone
// @Tags auth
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} models.AccessToken
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Phone not verified yet"
// @Router /otp/sessions/{id}/token [post]
func (h *Handlers) LoginWithSession(c *gin.Context) {
	token, err := h.wallet.Login(utils.WithAuditRequest(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, token)
}
