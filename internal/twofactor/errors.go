package twofactor

import "errors"

var (
	ErrAlreadyEnabled        = errors.New("two-factor authentication already enabled")
	ErrNotEnabled            = errors.New("two-factor authentication not enabled")
	ErrNoPendingSecret       = errors.New("two-factor setup not started")
	ErrInvalidCode           = errors.New("invalid verification code")
	ErrInvalidPassword       = errors.New("invalid password")
	ErrTooManyFailedAttempts = errors.New("too many failed attempts")
)

// AttemptFailError reports a failed login-time challenge along with how many
// attempts remain before the user+ip state locks out.
type AttemptFailError struct {
	AttemptsLeft int
}

func (e *AttemptFailError) Error() string {
	return "verify attempt failed"
}

func NewAttemptFailError(attemptsLeft int) *AttemptFailError {
	return &AttemptFailError{
		AttemptsLeft: attemptsLeft,
	}
}
