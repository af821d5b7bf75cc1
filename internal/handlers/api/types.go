package api

import (
	"context"

	"folioauth/internal/twofactor"
	"folioauth/model"
)

type UserService interface {
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	VerifyPassword(user *model.User, password string) error
}

type TwoFactorService interface {
	Setup(ctx context.Context, email string) (*twofactor.Enrollment, error)
	VerifyEnrollment(ctx context.Context, email string, code string) ([]string, error)
	Validate(ctx context.Context, sub twofactor.Subject, code string) (*twofactor.ValidateResult, error)
	IsEnabled(ctx context.Context, email string) (bool, error)
	Disable(ctx context.Context, email string, password string) error
}

type TokenService interface {
	IssueAccessToken(user *model.User) (string, error)
}
