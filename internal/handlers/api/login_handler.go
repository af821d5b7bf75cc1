package api

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"folioauth/internal/twofactor"
	"folioauth/model"
	"github.com/gofiber/fiber/v2"
)

type LoginHandler struct {
	userService      UserService
	twoFactorService TwoFactorService
	tokenService     TokenService
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Code     string `json:"code"`
}

type userInfoResponse struct {
	UserID   string `json:"userId"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

type loginResponse struct {
	User                 *userInfoResponse `json:"user,omitempty"`
	AccessToken          string            `json:"accessToken,omitempty"`
	TwoFactorRequired    bool              `json:"twoFactorRequired,omitempty"`
	RemainingBackupCodes *int              `json:"remainingBackupCodes,omitempty"`
}

func newUserInfoResponse(user *model.User) *userInfoResponse {
	return &userInfoResponse{
		UserID:   strconv.FormatUint(uint64(user.ID), 10),
		FullName: user.FullName,
		Email:    user.Email,
	}
}

// PostLogin is the session entry point: password first, then the two-factor
// challenge when the account has it enabled. Unknown emails and wrong
// passwords produce the same response so the login path leaks nothing about
// which check failed.
func (h *LoginHandler) PostLogin(ctx *fiber.Ctx) error {
	var req loginRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(NewErrorResponse(fiber.StatusBadRequest, MsgInvalidRequest))
	}
	if req.Email == "" || req.Password == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(NewErrorResponse(fiber.StatusBadRequest, MsgInvalidRequest))
	}

	user, err := h.userService.GetUserByEmail(ctx.Context(), req.Email)
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(NewErrorResponse(fiber.StatusUnauthorized, MsgInvalidCredentials))
	}
	if err := h.userService.VerifyPassword(user, req.Password); err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(NewErrorResponse(fiber.StatusUnauthorized, MsgInvalidCredentials))
	}

	resp := loginResponse{}
	if user.TwoFactorEnabled {
		if req.Code == "" {
			resp.TwoFactorRequired = true
			return ctx.JSON(NewDataResponse(resp))
		}
		sub := twofactor.Subject{Email: user.Email, IPAddress: ctx.IP()}
		result, err := h.twoFactorService.Validate(ctx.Context(), sub, req.Code)
		if err != nil {
			return h.challengeError(ctx, err)
		}
		if result.UsedBackupCode {
			remaining := result.RemainingBackupCodes
			resp.RemainingBackupCodes = &remaining
		}
	}

	accessToken, err := h.tokenService.IssueAccessToken(user)
	if err != nil {
		slog.Error("Failed to issue access token", "user", user.ID, "error", err)
		return ctx.Status(fiber.StatusInternalServerError).JSON(NewErrorResponse(fiber.StatusInternalServerError, MsgInternalError))
	}
	resp.User = newUserInfoResponse(user)
	resp.AccessToken = accessToken
	return ctx.JSON(NewDataResponse(resp))
}

func (h *LoginHandler) challengeError(ctx *fiber.Ctx, err error) error {
	var attemptErr *twofactor.AttemptFailError
	switch {
	case errors.As(err, &attemptErr):
		return ctx.Status(fiber.StatusUnauthorized).JSON(
			NewErrorResponse(fiber.StatusUnauthorized, fmt.Sprintf(MsgInvalidCode, attemptErr.AttemptsLeft)))
	case errors.Is(err, twofactor.ErrTooManyFailedAttempts):
		return ctx.Status(fiber.StatusTooManyRequests).JSON(
			NewErrorResponse(fiber.StatusTooManyRequests, MsgTooManyFailedAttempts))
	default:
		slog.Error("Two-factor validation error", "error", err)
		return ctx.Status(fiber.StatusInternalServerError).JSON(
			NewErrorResponse(fiber.StatusInternalServerError, MsgInternalError))
	}
}

func NewLoginHandler(userService UserService, twoFactorService TwoFactorService, tokenService TokenService) *LoginHandler {
	return &LoginHandler{
		userService:      userService,
		twoFactorService: twoFactorService,
		tokenService:     tokenService,
	}
}
