package twofactor

import (
	"bytes"
	"encoding/base64"
	"image/png"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// Options carries the TOTP and backup-code tunables. They are fixed at service
// construction; the defaults match what authenticator apps expect.
type Options struct {
	Issuer           string
	WindowSteps      uint // accepted time steps before and after now
	StepSeconds      uint
	CodeDigits       int
	BackupCodeCount  int
	BackupCodeLength int
}

func DefaultOptions() Options {
	return Options{
		Issuer:           "Portfolio Admin",
		WindowSteps:      2,
		StepSeconds:      30,
		CodeDigits:       6,
		BackupCodeCount:  10,
		BackupCodeLength: 8,
	}
}

// Enrollment is the one-time setup payload: the secret and QR code are shown
// exactly once and are not retrievable through any later read path.
type Enrollment struct {
	Secret     string `json:"secret"`
	OTPAuthURL string `json:"otpauthURL"`
	QRCode     string `json:"qrCode"` // data:image/png;base64 URI
}

func (s *TwoFactorService) generateKey(accountName string) (*otp.Key, error) {
	return totp.Generate(totp.GenerateOpts{
		Issuer:      s.opts.Issuer,
		AccountName: accountName,
		SecretSize:  20,
		Period:      s.opts.StepSeconds,
		Digits:      otp.Digits(s.opts.CodeDigits),
		Algorithm:   otp.AlgorithmSHA1,
	})
}

func qrCodeDataURI(key *otp.Key) (string, error) {
	img, err := key.Image(200, 200)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
