package api

import (
	"errors"
	"fmt"
	"log/slog"

	"folioauth/internal/mail"
	"folioauth/internal/twofactor"
	"folioauth/internal/users"
	"github.com/gofiber/fiber/v2"
)

type TwoFactorHandler struct {
	twoFactorService TwoFactorService
	mailSender       mail.MailSender
}

type emailRequest struct {
	Email string `json:"email"`
}

type verifyRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type disableRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// PostSetup starts enrollment and returns the secret, provisioning URI and QR
// image for one-time display. A second setup call before verification
// replaces the unconfirmed secret; a setup call on an enabled account is a
// conflict.
func (h *TwoFactorHandler) PostSetup(ctx *fiber.Ctx) error {
	var req emailRequest
	if err := ctx.BodyParser(&req); err != nil || req.Email == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(NewErrorResponse(fiber.StatusBadRequest, MsgInvalidRequest))
	}

	enrollment, err := h.twoFactorService.Setup(ctx.Context(), req.Email)
	switch {
	case errors.Is(err, users.ErrUserNotFound):
		return ctx.Status(fiber.StatusNotFound).JSON(NewErrorResponse(fiber.StatusNotFound, MsgUserNotFound))
	case errors.Is(err, twofactor.ErrAlreadyEnabled):
		return ctx.Status(fiber.StatusConflict).JSON(NewErrorResponse(fiber.StatusConflict, MsgAlreadyEnabled))
	case err != nil:
		slog.Error("Two-factor setup failed", "error", err)
		return ctx.Status(fiber.StatusInternalServerError).JSON(NewErrorResponse(fiber.StatusInternalServerError, MsgInternalError))
	}
	return ctx.JSON(NewDataResponse(enrollment))
}

// PostVerify completes enrollment. On success the response carries the ten
// backup codes; they are shown exactly once and never retrievable afterwards.
func (h *TwoFactorHandler) PostVerify(ctx *fiber.Ctx) error {
	var req verifyRequest
	if err := ctx.BodyParser(&req); err != nil || req.Email == "" || req.Code == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(NewErrorResponse(fiber.StatusBadRequest, MsgInvalidRequest))
	}

	backupCodes, err := h.twoFactorService.VerifyEnrollment(ctx.Context(), req.Email, req.Code)
	switch {
	case errors.Is(err, users.ErrUserNotFound):
		return ctx.Status(fiber.StatusNotFound).JSON(NewErrorResponse(fiber.StatusNotFound, MsgUserNotFound))
	case errors.Is(err, twofactor.ErrAlreadyEnabled):
		return ctx.Status(fiber.StatusConflict).JSON(NewErrorResponse(fiber.StatusConflict, MsgAlreadyEnabled))
	case errors.Is(err, twofactor.ErrNoPendingSecret):
		return ctx.Status(fiber.StatusConflict).JSON(NewErrorResponse(fiber.StatusConflict, MsgSetupNotStarted))
	case errors.Is(err, twofactor.ErrInvalidCode):
		return ctx.Status(fiber.StatusUnauthorized).JSON(NewErrorResponse(fiber.StatusUnauthorized, MsgInvalidCredentials))
	case err != nil:
		slog.Error("Two-factor enrollment verify failed", "error", err)
		return ctx.Status(fiber.StatusInternalServerError).JSON(NewErrorResponse(fiber.StatusInternalServerError, MsgInternalError))
	}

	if err := mail.SendTwoFactorEnabled(h.mailSender, req.Email, len(backupCodes)); err != nil {
		slog.Warn("Failed to send two-factor enabled notification", "email", req.Email, "error", err)
	}
	return ctx.JSON(NewDataResponse(fiber.Map{
		"backupCodes": backupCodes,
	}))
}

// PostValidate answers a login-time challenge with either a TOTP code or an
// unused backup code. Unknown emails are masked as an invalid credential here
// to avoid account enumeration on the login path.
func (h *TwoFactorHandler) PostValidate(ctx *fiber.Ctx) error {
	var req verifyRequest
	if err := ctx.BodyParser(&req); err != nil || req.Email == "" || req.Code == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(NewErrorResponse(fiber.StatusBadRequest, MsgInvalidRequest))
	}

	sub := twofactor.Subject{Email: req.Email, IPAddress: ctx.IP()}
	result, err := h.twoFactorService.Validate(ctx.Context(), sub, req.Code)
	var attemptErr *twofactor.AttemptFailError
	switch {
	case errors.Is(err, users.ErrUserNotFound):
		return ctx.Status(fiber.StatusUnauthorized).JSON(NewErrorResponse(fiber.StatusUnauthorized, MsgInvalidCredentials))
	case errors.Is(err, twofactor.ErrNotEnabled):
		return ctx.Status(fiber.StatusBadRequest).JSON(NewErrorResponse(fiber.StatusBadRequest, MsgNotEnabled))
	case errors.As(err, &attemptErr):
		return ctx.Status(fiber.StatusUnauthorized).JSON(
			NewErrorResponse(fiber.StatusUnauthorized, fmt.Sprintf(MsgInvalidCode, attemptErr.AttemptsLeft)))
	case errors.Is(err, twofactor.ErrTooManyFailedAttempts):
		return ctx.Status(fiber.StatusTooManyRequests).JSON(NewErrorResponse(fiber.StatusTooManyRequests, MsgTooManyFailedAttempts))
	case err != nil:
		slog.Error("Two-factor validate failed", "error", err)
		return ctx.Status(fiber.StatusInternalServerError).JSON(NewErrorResponse(fiber.StatusInternalServerError, MsgInternalError))
	}

	data := fiber.Map{"valid": true}
	if result.UsedBackupCode {
		data["remainingBackupCodes"] = result.RemainingBackupCodes
	}
	return ctx.JSON(NewDataResponse(data))
}

func (h *TwoFactorHandler) GetStatus(ctx *fiber.Ctx) error {
	email := ctx.Query("email")
	if email == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(NewErrorResponse(fiber.StatusBadRequest, MsgInvalidRequest))
	}

	enabled, err := h.twoFactorService.IsEnabled(ctx.Context(), email)
	switch {
	case errors.Is(err, users.ErrUserNotFound):
		return ctx.Status(fiber.StatusNotFound).JSON(NewErrorResponse(fiber.StatusNotFound, MsgUserNotFound))
	case err != nil:
		slog.Error("Two-factor status failed", "error", err)
		return ctx.Status(fiber.StatusInternalServerError).JSON(NewErrorResponse(fiber.StatusInternalServerError, MsgInternalError))
	}
	return ctx.JSON(NewDataResponse(fiber.Map{
		"enabled": enabled,
	}))
}

// PostDisable clears the security record after a fresh password proof; an
// active session alone is not enough to strip two-factor protection.
func (h *TwoFactorHandler) PostDisable(ctx *fiber.Ctx) error {
	var req disableRequest
	if err := ctx.BodyParser(&req); err != nil || req.Email == "" || req.Password == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(NewErrorResponse(fiber.StatusBadRequest, MsgInvalidRequest))
	}

	err := h.twoFactorService.Disable(ctx.Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, users.ErrUserNotFound):
		return ctx.Status(fiber.StatusNotFound).JSON(NewErrorResponse(fiber.StatusNotFound, MsgUserNotFound))
	case errors.Is(err, twofactor.ErrInvalidPassword):
		return ctx.Status(fiber.StatusUnauthorized).JSON(NewErrorResponse(fiber.StatusUnauthorized, MsgIncorrectPassword))
	case err != nil:
		slog.Error("Two-factor disable failed", "error", err)
		return ctx.Status(fiber.StatusInternalServerError).JSON(NewErrorResponse(fiber.StatusInternalServerError, MsgInternalError))
	}

	if err := mail.SendTwoFactorDisabled(h.mailSender, req.Email); err != nil {
		slog.Warn("Failed to send two-factor disabled notification", "email", req.Email, "error", err)
	}
	return ctx.JSON(NewDataResponse(fiber.Map{
		"disabled": true,
	}))
}

func NewTwoFactorHandler(twoFactorService TwoFactorService, mailSender mail.MailSender) *TwoFactorHandler {
	return &TwoFactorHandler{
		twoFactorService: twoFactorService,
		mailSender:       mailSender,
	}
}
