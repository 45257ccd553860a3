package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mychangex/app-wallet/internal/models"
	"github.com/mychangex/app-wallet/internal/utils"
)

// StartOTPSession godoc
// @Summary Start phone verification
// @Description Normalizes the phone number, sends it a 6-digit code and opens a verification session
// @Tags otp
// @Accept json
// @Produce json
// @Param data body models.StartOTPSessionRequest true "Phone number"
// @Success 201 {object} models.OTPSession
// @Failure 400 {object} ErrorResponse
// @Failure 429 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /otp/sessions [post]
func (h *Handlers) StartOTPSession(c *gin.Context) {
	var req models.StartOTPSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	session, err := h.sessions.Start(utils.WithAuditRequest(c), req.Phone)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sessionView(session.ID, session))
}

// GetOTPSession godoc
// @Summary Get a verification session
// @Tags otp
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} models.OTPSession
// @Failure 404 {object} ErrorResponse
// @Router /otp/sessions/{id} [get]
func (h *Handlers) GetOTPSession(c *gin.Context) {
	session, err := h.sessions.View(c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessionView(session.ID, session))
}

// EnterDigit godoc
// @Summary Enter one digit of the code
// @Description Stores the digit in the given slot and returns the slot that should take focus next
// @Tags otp
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param index path int true "Slot index (0-5)"
// @Param data body models.EnterDigitRequest true "Digit, empty to clear"
// @Success 200 {object} models.FocusResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /otp/sessions/{id}/digits/{index} [put]
func (h *Handlers) EnterDigit(c *gin.Context) {
	index, ok := slotIndex(c)
	if !ok {
		return
	}
	var req models.EnterDigitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	workflow, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	focus, err := workflow.EnterDigit(index, req.Digit)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.FocusResponse{Focus: focus, Session: sessionView(c.Param("id"), workflow.Snapshot())})
}

// Backspace godoc
// @Summary Backspace in a code slot
// @Description Returns the slot that should take focus; the code itself is not changed
// @Tags otp
// @Produce json
// @Param id path string true "Session ID"
// @Param index path int true "Slot index (0-5)"
// @Success 200 {object} models.FocusResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /otp/sessions/{id}/backspace/{index} [post]
func (h *Handlers) Backspace(c *gin.Context) {
	index, ok := slotIndex(c)
	if !ok {
		return
	}
	workflow, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	focus, err := workflow.Backspace(index)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.FocusResponse{Focus: focus, Session: sessionView(c.Param("id"), workflow.Snapshot())})
}

// SubmitCode godoc
// @Summary Verify the entered code
// @Tags otp
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} models.OTPSession
// @Failure 400 {object} ErrorResponse "Incomplete code"
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Another request is in progress"
// @Failure 502 {object} ErrorResponse "Code rejected"
// @Router /otp/sessions/{id}/submit [post]
func (h *Handlers) SubmitCode(c *gin.Context) {
	workflow, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	if err := workflow.Submit(c.Request.Context()); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, sessionView(c.Param("id"), workflow.Snapshot()))
}

// ResendCode godoc
// @Summary Resend the verification code
// @Description Only allowed once the countdown has reached zero
// @Tags otp
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} models.OTPSession
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 429 {object} ErrorResponse "Countdown still running"
// @Failure 502 {object} ErrorResponse
// @Router /otp/sessions/{id}/resend [post]
func (h *Handlers) ResendCode(c *gin.Context) {
	workflow, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	if err := workflow.Resend(c.Request.Context()); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, sessionView(c.Param("id"), workflow.Snapshot()))
}

// CloseOTPSession godoc
// @Summary Close a verification session
// @Description Stops the countdown and discards the session
// @Tags otp
// @Param id path string true "Session ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /otp/sessions/{id} [delete]
func (h *Handlers) CloseOTPSession(c *gin.Context) {
	if err := h.sessions.Close(c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func slotIndex(c *gin.Context) (int, bool) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "index must be a number"})
		return 0, false
	}
	return index, true
}

// sessionView is the client-facing copy of a session. Navigation payloads of
// signup sessions hold the PIN hash, so only the phone is passed on.
func sessionView(id string, session models.OTPSession) models.OTPSession {
	session.ID = id
	if session.NextStepPayload != nil {
		session.NextStepPayload = map[string]string{"phone": session.Phone}
	}
	return session
}
