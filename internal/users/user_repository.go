package users

import (
	"context"

	"folioauth/model"
	"gorm.io/gorm"
)

// Column names used for partial security-record updates.
const (
	ColPassword             = "password"
	ColTwoFactorSecret      = "two_factor_secret"
	ColTwoFactorEnabled     = "two_factor_enabled"
	ColTwoFactorBackupCodes = "two_factor_backup_codes"
)

type UserRepository interface {
	GetByID(ctx context.Context, userID uint) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	Create(ctx context.Context, user *model.User) error
	Updates(ctx context.Context, userID uint, columns map[string]interface{}) (int64, error)
	// UpdatesIfBackupCodes applies columns only when the stored backup-code
	// list still equals prev, reporting whether a row was modified. This is
	// the conditional write that makes backup-code consumption single-use
	// under concurrent logins.
	UpdatesIfBackupCodes(ctx context.Context, userID uint, prev string, columns map[string]interface{}) (bool, error)
}

type userRepository struct {
	db *gorm.DB
}

func (r *userRepository) GetByID(ctx context.Context, userID uint) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).First(&user, "email = ?", email).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) Updates(ctx context.Context, userID uint, columns map[string]interface{}) (int64, error) {
	ret := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", userID).Updates(columns)
	return ret.RowsAffected, ret.Error
}

func (r *userRepository) UpdatesIfBackupCodes(ctx context.Context, userID uint, prev string, columns map[string]interface{}) (bool, error) {
	ret := r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ? AND two_factor_backup_codes = ?", userID, prev).
		Updates(columns)
	return ret.RowsAffected > 0, ret.Error
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db}
}
