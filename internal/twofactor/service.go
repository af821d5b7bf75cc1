package twofactor

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"

	"folioauth/internal/store"
	"folioauth/internal/users"
	"folioauth/model"
	"folioauth/params"
)

// UserStore is the slice of the user service the two-factor flows read and
// write: the security record fields plus the password check the disable flow
// re-proves.
type UserStore interface {
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	VerifyPassword(user *model.User, password string) error
	SetPendingSecret(ctx context.Context, userID uint, secret string) error
	EnableTwoFactor(ctx context.Context, userID uint, backupCodes []string) error
	DisableTwoFactor(ctx context.Context, userID uint) error
	SwapBackupCodes(ctx context.Context, userID uint, prev string, remaining []string) (bool, error)
}

// Subject identifies who is answering a login-time challenge. The IP address
// scopes the failure counter so a remote guesser cannot lock the owner out
// from a different network.
type Subject struct {
	Email     string
	IPAddress string
}

type ValidateResult struct {
	UsedBackupCode bool
	// RemainingBackupCodes is only meaningful when UsedBackupCode is true; the
	// caller should surface it so the user knows when to regenerate codes.
	RemainingBackupCodes int
}

type TwoFactorService struct {
	opts           Options
	masterKey      string
	codePattern    *regexp.Regexp
	userStateStore *userStateStore
	userStore      UserStore
}

func (s *TwoFactorService) calculateHash(inputs ...interface{}) string {
	if len(inputs) == 0 {
		return ""
	}
	h := hmac.New(sha256.New, []byte(s.masterKey))
	for _, val := range inputs {
		switch v := val.(type) {
		case []byte:
			h.Write(v)
		default:
			h.Write([]byte(fmt.Sprintf("%v", v)))
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}

func (s *TwoFactorService) getStateID(userID uint, ipAddress string) string {
	return s.calculateHash(userID, ipAddress)
}

// Setup starts enrollment: it generates a fresh secret and stores it with the
// enabled flag off. Re-running setup before verification silently replaces the
// unconfirmed secret; that is safe because the old one was never activated.
// Setup is rejected once two-factor auth is enabled — an explicit disable is
// required first so a working authenticator cannot be invalidated by accident.
func (s *TwoFactorService) Setup(ctx context.Context, email string) (*Enrollment, error) {
	user, err := s.userStore.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user.TwoFactorEnabled {
		return nil, ErrAlreadyEnabled
	}

	key, err := s.generateKey(user.Email)
	if err != nil {
		return nil, err
	}
	if err := s.userStore.SetPendingSecret(ctx, user.ID, key.Secret()); err != nil {
		return nil, err
	}

	qrCode, err := qrCodeDataURI(key)
	if err != nil {
		return nil, err
	}
	return &Enrollment{
		Secret:     key.Secret(),
		OTPAuthURL: key.URL(),
		QRCode:     qrCode,
	}, nil
}

// VerifyEnrollment completes enrollment: a valid code for the pending secret
// flips the enabled flag and issues the backup codes, returned here for
// one-time display. A wrong code leaves the record unchanged and the user may
// retry with a fresh code.
func (s *TwoFactorService) VerifyEnrollment(ctx context.Context, email string, code string) ([]string, error) {
	user, err := s.userStore.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user.TwoFactorEnabled {
		return nil, ErrAlreadyEnabled
	}
	if user.TwoFactorSecret == "" {
		return nil, ErrNoPendingSecret
	}
	if !s.verifyTOTP(user.TwoFactorSecret, code) {
		return nil, ErrInvalidCode
	}

	backupCodes := generateBackupCodes(s.opts.BackupCodeCount, s.opts.BackupCodeLength)
	if err := s.userStore.EnableTwoFactor(ctx, user.ID, backupCodes); err != nil {
		return nil, err
	}
	return backupCodes, nil
}

// Validate runs the login-time challenge. Backup codes are checked before
// TOTP; a matched backup code is removed from the stored list before success
// is reported, so it can never be replayed. Failures count against the
// subject's user+ip state until the lockout threshold.
func (s *TwoFactorService) Validate(ctx context.Context, sub Subject, code string) (*ValidateResult, error) {
	user, err := s.userStore.GetUserByEmail(ctx, sub.Email)
	if err != nil {
		return nil, err
	}
	if !user.TwoFactorEnabled {
		return nil, ErrNotEnabled
	}

	stateID := s.getStateID(user.ID, sub.IPAddress)
	failCount, err := s.userStateStore.GetFailCount(ctx, stateID)
	if err != nil {
		return nil, err
	}
	if failCount >= params.TwoFactorMaxFailCount {
		return nil, ErrTooManyFailedAttempts
	}

	if result, ok := s.tryBackupCode(ctx, user, code); ok {
		s.userStateStore.ResetFailCount(ctx, stateID)
		return result, nil
	}

	if s.verifyTOTP(user.TwoFactorSecret, code) {
		s.userStateStore.ResetFailCount(ctx, stateID)
		return &ValidateResult{}, nil
	}

	failCount, err = s.userStateStore.IncreaseFailCount(ctx, stateID)
	if err != nil {
		return nil, err
	}
	attemptsLeft := params.TwoFactorMaxFailCount - failCount
	if attemptsLeft <= 0 {
		return nil, ErrTooManyFailedAttempts
	}
	return nil, NewAttemptFailError(attemptsLeft)
}

// tryBackupCode reports success only after the shrunk list has been persisted
// by a conditional update. If the update matches no row, a concurrent request
// consumed a code from the same snapshot first and this attempt is a miss.
func (s *TwoFactorService) tryBackupCode(ctx context.Context, user *model.User, code string) (*ValidateResult, bool) {
	raw := user.TwoFactorBackupCodes
	matched, remaining := consumeBackupCode(users.DecodeBackupCodes(raw), code)
	if !matched {
		return nil, false
	}
	swapped, err := s.userStore.SwapBackupCodes(ctx, user.ID, raw, remaining)
	if err != nil || !swapped {
		return nil, false
	}
	return &ValidateResult{
		UsedBackupCode:       true,
		RemainingBackupCodes: len(remaining),
	}, true
}

// IsEnabled reports whether the user has completed two-factor enrollment.
func (s *TwoFactorService) IsEnabled(ctx context.Context, email string) (bool, error) {
	user, err := s.userStore.GetUserByEmail(ctx, email)
	if err != nil {
		return false, err
	}
	return user.TwoFactorEnabled, nil
}

// Disable requires a fresh password proof, not just an authenticated session,
// before clearing the secret, the enabled flag and any unused backup codes.
func (s *TwoFactorService) Disable(ctx context.Context, email string, password string) error {
	user, err := s.userStore.GetUserByEmail(ctx, email)
	if err != nil {
		return err
	}
	if err := s.userStore.VerifyPassword(user, password); err != nil {
		return ErrInvalidPassword
	}
	return s.userStore.DisableTwoFactor(ctx, user.ID)
}

func NewTwoFactorService(opts Options, masterKey string, storage store.Storage, userStore UserStore) *TwoFactorService {
	return &TwoFactorService{
		opts:           opts,
		masterKey:      masterKey,
		codePattern:    codeRegexp(opts.CodeDigits),
		userStateStore: newUserStateStore(storage),
		userStore:      userStore,
	}
}
