package middlewares

import (
	"strings"

	"folioauth/internal/auth"
	"github.com/gofiber/fiber/v2"
)

const authClaimsLocalKey = "authClaims"

type TokenVerifier interface {
	VerifyAccessToken(tokenString string) (*auth.AccessClaims, error)
}

// RequireAuth guards management endpoints behind a Bearer access token.
func RequireAuth(tokens TokenVerifier) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		header := ctx.Get(fiber.HeaderAuthorization)
		tokenString, found := strings.CutPrefix(header, "Bearer ")
		if !found || tokenString == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Missing access token")
		}
		claims, err := tokens.VerifyAccessToken(tokenString)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid or expired access token")
		}
		ctx.Locals(authClaimsLocalKey, claims)
		return ctx.Next()
	}
}

// AuthClaims returns the verified claims set by RequireAuth, or nil.
func AuthClaims(ctx *fiber.Ctx) *auth.AccessClaims {
	claims, _ := ctx.Locals(authClaimsLocalKey).(*auth.AccessClaims)
	return claims
}
