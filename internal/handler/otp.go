package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/feastly/food-ordering-backend/internal/service"
)

// OtpHandler exposes the email verification flow: send, verify, resend and
// the remaining-attempts query.
type OtpHandler struct {
	Otp *service.OtpService
}

func NewOtpHandler(otp *service.OtpService) *OtpHandler {
	return &OtpHandler{Otp: otp}
}

type otpSendReq struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}
type otpVerifyReq struct {
	Email       string `json:"email"`
	OtpCode     string `json:"otp_code"`
	DisplayName string `json:"display_name"`
}

type otpResp struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Send generates and dispatches a verification code. A dispatch failure is
// reported to the caller; nothing was verified yet, so retrying is safe.
func (h *OtpHandler) Send(c echo.Context) error {
	return h.send(c, "OTP sent successfully")
}

// Resend is Send under another route: a fresh code with a fresh attempt
// budget, overwriting whatever was pending.
func (h *OtpHandler) Resend(c echo.Context) error {
	return h.send(c, "OTP resent successfully")
}

func (h *OtpHandler) send(c echo.Context, okMessage string) error {
	var req otpSendReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, otpResp{Success: false, Message: "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	if err := h.Otp.Send(ctx, req.Email, req.DisplayName); err != nil {
		if errors.Is(err, service.ErrValidation) {
			return c.JSON(http.StatusBadRequest, otpResp{Success: false, Message: "email is required"})
		}
		return c.JSON(http.StatusInternalServerError, otpResp{Success: false, Message: "failed to send OTP"})
	}
	return c.JSON(http.StatusOK, otpResp{Success: true, Message: okMessage})
}

// Verify checks a submitted code. Mismatches report how many attempts are
// left; expired or exhausted codes tell the caller to request a new one.
func (h *OtpHandler) Verify(c echo.Context) error {
	var req otpVerifyReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, otpResp{Success: false, Message: "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	err := h.Otp.Verify(ctx, req.Email, req.OtpCode, req.DisplayName)
	if err == nil {
		return c.JSON(http.StatusOK, otpResp{Success: true, Message: "OTP verified successfully"})
	}

	switch {
	case errors.Is(err, service.ErrValidation):
		return c.JSON(http.StatusBadRequest, otpResp{Success: false, Message: "email and otp_code are required"})
	case errors.Is(err, service.ErrOtpNotPending):
		return c.JSON(http.StatusBadRequest, otpResp{Success: false, Message: "no pending verification code, request a new one"})
	case errors.Is(err, service.ErrOtpExpired):
		return c.JSON(http.StatusBadRequest, otpResp{Success: false, Message: "verification code expired, request a new one"})
	case errors.Is(err, service.ErrOtpAttemptsExhausted):
		return c.JSON(http.StatusBadRequest, otpResp{Success: false, Message: "too many attempts, request a new code"})
	case errors.Is(err, service.ErrOtpMismatch):
		remaining, rerr := h.Otp.RemainingAttempts(ctx, req.Email)
		if rerr != nil {
			remaining = 0
		}
		return c.JSON(http.StatusBadRequest, echo.Map{
			"success":            false,
			"message":            "invalid OTP",
			"remaining_attempts": remaining,
		})
	}
	return c.JSON(http.StatusInternalServerError, otpResp{Success: false, Message: "failed to verify OTP"})
}

// Attempts reports the remaining guesses for an email's pending code and
// whether the email has already been verified.
func (h *OtpHandler) Attempts(c echo.Context) error {
	email := strings.TrimSpace(c.QueryParam("email"))
	if email == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email query parameter required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	remaining, err := h.Otp.RemainingAttempts(ctx, email)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	verified, err := h.Otp.IsVerified(ctx, email)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"email":              email,
		"remaining_attempts": remaining,
		"verified":           verified,
	})
}
