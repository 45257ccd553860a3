package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mychangex/app-wallet/internal/middleware"
	"github.com/mychangex/app-wallet/internal/models"
	"github.com/mychangex/app-wallet/internal/observability"
	"github.com/mychangex/app-wallet/internal/utils"
	"go.uber.org/zap"
)

// TransferCoupons godoc
// @Summary Send coupons
// @Description Moves coupons from the caller's wallet to another. Used by both the send and the receive (QR) screens.
// @Tags coupons
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param data body models.TransferRequest true "Transfer"
// @Success 200 {object} models.TransferResult
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /coupons/transfer [post]
func (h *Handlers) TransferCoupons(c *gin.Context) {
	phone, err := middleware.WalletPhone(c)
	if err != nil {
		h.respondError(c, models.ErrUnauthenticated)
		return
	}

	var req models.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	if req.From != "" && utils.NormalizePhone(req.From) != phone {
		h.logger.Warn("transfer from another wallet refused",
			zap.String("wallet", observability.MaskPhone(phone)),
			zap.String("request_id", c.GetString(middleware.RequestIDKey)))
		h.respondError(c, models.ErrForbidden)
		return
	}
	req.From = phone

	result, err := h.coupons.Transfer(utils.WithAuditRequest(c), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetBalance godoc
// @Summary Coupon balance
// @Description Only the wallet's owner can read its balance
// @Tags coupons
// @Produce json
// @Security BearerAuth
// @Param phone path string true "Phone number"
// @Success 200 {object} models.Balance
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /coupons/balance/{phone} [get]
func (h *Handlers) GetBalance(c *gin.Context) {
	balance, err := h.coupons.Balance(c.Request.Context(), c.Param("phone"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, balance)
}
