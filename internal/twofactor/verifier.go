package twofactor

import (
	"fmt"
	"regexp"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

func codeRegexp(digits int) *regexp.Regexp {
	return regexp.MustCompile(fmt.Sprintf(`^\d{%d}$`, digits))
}

// verifyTOTP checks the candidate against the secret for the current UTC time
// step and WindowSteps steps either side of it. Candidates that are not
// exactly CodeDigits digits are rejected before any HMAC work. Valid codes
// stay valid for the whole window; TOTP codes are not single-use here, unlike
// backup codes.
func (s *TwoFactorService) verifyTOTP(secret string, code string) bool {
	if secret == "" || !s.codePattern.MatchString(code) {
		return false
	}
	ok, err := totp.ValidateCustom(code, secret, time.Now().UTC(), totp.ValidateOpts{
		Period:    s.opts.StepSeconds,
		Skew:      s.opts.WindowSteps,
		Digits:    otp.Digits(s.opts.CodeDigits),
		Algorithm: otp.AlgorithmSHA1,
	})
	return err == nil && ok
}
