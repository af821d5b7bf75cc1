package users

import (
	"context"
	"encoding/json"
	"errors"
	"net/mail"

	"folioauth/model"
	"github.com/go-sql-driver/mysql"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type CreateUserOptions struct {
	FullName string
	Email    string
	Password string
}

type UserService struct {
	userRepo UserRepository
}

func (s *UserService) GetUserByID(ctx context.Context, userID uint) (*model.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	return user, err
}

func (s *UserService) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, ErrUserNotFound
	}
	user, err := s.userRepo.GetByEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	return user, err
}

func (s *UserService) CreateUser(ctx context.Context, opts CreateUserOptions) (*model.User, error) {
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(opts.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := model.User{
		FullName: opts.FullName,
		Email:    opts.Email,
		Password: string(passwordHash),
	}

	var mysqlErr *mysql.MySQLError
	if err := s.userRepo.Create(ctx, &user); errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
		return nil, ErrEmailRegistered
	} else if err != nil {
		return nil, err
	}
	return &user, nil
}

// VerifyPassword compares the candidate against the stored bcrypt hash.
func (s *UserService) VerifyPassword(user *model.User, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return ErrInvalidPassword
	}
	return nil
}

// SetPendingSecret stores a freshly generated TOTP secret with the enabled
// flag off. Calling it again before verification overwrites the previous
// unconfirmed secret.
func (s *UserService) SetPendingSecret(ctx context.Context, userID uint, secret string) error {
	_, err := s.userRepo.Updates(ctx, userID, map[string]interface{}{
		ColTwoFactorSecret:      secret,
		ColTwoFactorEnabled:     false,
		ColTwoFactorBackupCodes: "",
	})
	return err
}

// EnableTwoFactor flips the enabled flag and stores the freshly issued backup
// codes. The pending secret is left untouched and becomes the active one.
func (s *UserService) EnableTwoFactor(ctx context.Context, userID uint, backupCodes []string) error {
	_, err := s.userRepo.Updates(ctx, userID, map[string]interface{}{
		ColTwoFactorEnabled:     true,
		ColTwoFactorBackupCodes: EncodeBackupCodes(backupCodes),
	})
	return err
}

// DisableTwoFactor clears the whole security record: secret, flag and any
// remaining backup codes.
func (s *UserService) DisableTwoFactor(ctx context.Context, userID uint) error {
	_, err := s.userRepo.Updates(ctx, userID, map[string]interface{}{
		ColTwoFactorSecret:      "",
		ColTwoFactorEnabled:     false,
		ColTwoFactorBackupCodes: "",
	})
	return err
}

// SwapBackupCodes persists the shrunk code list, but only if the stored list
// still equals prev. A false return means a concurrent login already consumed
// a code from the same snapshot and the caller must treat its match as stale.
func (s *UserService) SwapBackupCodes(ctx context.Context, userID uint, prev string, remaining []string) (bool, error) {
	return s.userRepo.UpdatesIfBackupCodes(ctx, userID, prev, map[string]interface{}{
		ColTwoFactorBackupCodes: EncodeBackupCodes(remaining),
	})
}

func EncodeBackupCodes(codes []string) string {
	if len(codes) == 0 {
		return ""
	}
	raw, _ := json.Marshal(codes)
	return string(raw)
}

func DecodeBackupCodes(raw string) []string {
	if raw == "" {
		return nil
	}
	var codes []string
	if err := json.Unmarshal([]byte(raw), &codes); err != nil {
		return nil
	}
	return codes
}

func NewUserService(userRepo UserRepository) *UserService {
	return &UserService{
		userRepo: userRepo,
	}
}
