package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mychangex/app-wallet/internal/models"
	"github.com/mychangex/app-wallet/internal/utils"
)

// NormalizePhone godoc
// @Summary Normalize a phone number
// @Description Returns the canonical +263 form of a user-entered number and whether it is accepted
// @Tags phone
// @Accept json
// @Produce json
// @Param data body models.NormalizePhoneRequest true "Phone number as typed"
// @Success 200 {object} models.NormalizePhoneResponse
// @Failure 400 {object} ErrorResponse
// @Router /phone/normalize [post]
func (h *Handlers) NormalizePhone(c *gin.Context) {
	var req models.NormalizePhoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	resp := models.NormalizePhoneResponse{
		Input:      req.Phone,
		Canonical:  utils.NormalizePhone(req.Phone),
		Acceptable: utils.IsAcceptablePhone(req.Phone),
	}
	if resp.Acceptable {
		resp.Display = utils.FormatPhoneForDisplay(req.Phone)
	}
	if parsed, err := utils.ParsePhoneNumber(req.Phone); err == nil {
		resp.Carrier = parsed.Carrier
		resp.Wallet = parsed.Wallet
	} else {
		resp.Carrier = utils.CarrierForPhone(req.Phone)
	}

	c.JSON(http.StatusOK, resp)
}
