package users

import (
	"context"
	"errors"
	"testing"

	"folioauth/model"
	"github.com/go-sql-driver/mysql"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type fakeUserRepository struct {
	user      *model.User
	createErr error
}

func (r *fakeUserRepository) GetByID(ctx context.Context, userID uint) (*model.User, error) {
	if r.user == nil || r.user.ID != userID {
		return nil, gorm.ErrRecordNotFound
	}
	return r.user, nil
}

func (r *fakeUserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	if r.user == nil || r.user.Email != email {
		return nil, gorm.ErrRecordNotFound
	}
	return r.user, nil
}

func (r *fakeUserRepository) Create(ctx context.Context, user *model.User) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.user = user
	return nil
}

func (r *fakeUserRepository) Updates(ctx context.Context, userID uint, columns map[string]interface{}) (int64, error) {
	return 1, nil
}

func (r *fakeUserRepository) UpdatesIfBackupCodes(ctx context.Context, userID uint, prev string, columns map[string]interface{}) (bool, error) {
	if r.user == nil || r.user.TwoFactorBackupCodes != prev {
		return false, nil
	}
	return true, nil
}

func TestGetUserByEmailRejectsInvalidAddress(t *testing.T) {
	svc := NewUserService(&fakeUserRepository{})
	if _, err := svc.GetUserByEmail(context.Background(), "not-an-address"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestGetUserByEmailNotFound(t *testing.T) {
	svc := NewUserService(&fakeUserRepository{})
	if _, err := svc.GetUserByEmail(context.Background(), "alice@example.com"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestCreateUserHashesPassword(t *testing.T) {
	repo := &fakeUserRepository{}
	svc := NewUserService(repo)

	user, err := svc.CreateUser(context.Background(), CreateUserOptions{
		FullName: "Alice",
		Email:    "alice@example.com",
		Password: "hunter2",
	})
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if user.Password == "hunter2" {
		t.Fatalf("password stored in plain text")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("hunter2")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
	if err := svc.VerifyPassword(user, "hunter2"); err != nil {
		t.Fatalf("VerifyPassword failed: %v", err)
	}
	if err := svc.VerifyPassword(user, "wrong"); !errors.Is(err, ErrInvalidPassword) {
		t.Fatalf("expected ErrInvalidPassword, got %v", err)
	}
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	repo := &fakeUserRepository{createErr: &mysql.MySQLError{Number: 1062}}
	svc := NewUserService(repo)

	_, err := svc.CreateUser(context.Background(), CreateUserOptions{
		Email:    "alice@example.com",
		Password: "hunter2",
	})
	if !errors.Is(err, ErrEmailRegistered) {
		t.Fatalf("expected ErrEmailRegistered, got %v", err)
	}
}

func TestBackupCodesRoundTrip(t *testing.T) {
	codes := []string{"AAAA1111", "BBBB2222"}
	raw := EncodeBackupCodes(codes)
	decoded := DecodeBackupCodes(raw)
	if len(decoded) != len(codes) {
		t.Fatalf("expected %d codes, got %d", len(codes), len(decoded))
	}
	for i := range codes {
		if decoded[i] != codes[i] {
			t.Fatalf("code %d mismatch: %q != %q", i, decoded[i], codes[i])
		}
	}

	if EncodeBackupCodes(nil) != "" {
		t.Fatalf("empty list must encode to an empty string")
	}
	if DecodeBackupCodes("") != nil {
		t.Fatalf("empty string must decode to nil")
	}
	if DecodeBackupCodes("not json") != nil {
		t.Fatalf("malformed payload must decode to nil")
	}
}
