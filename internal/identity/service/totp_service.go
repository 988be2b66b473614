package service

import (
	"crypto/rand"
	"encoding/base32"
	"net/url"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const totpSecretBytes = 20

// totpService implements TotpService using RFC 6238 time-based codes with a
// 30 second step, 6 digits and SHA-1, the parameters every mainstream
// authenticator app defaults to.
type totpService struct {
	issuer string
}

// GenerateSecret creates a fresh 160-bit shared secret, base32-encoded
// without padding.
func (s *totpService) GenerateSecret() (string, error) {
	raw := make([]byte, totpSecretBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}

	enc := base32.StdEncoding.WithPadding(base32.NoPadding)
	return enc.EncodeToString(raw), nil
}

// VerifyCode validates the code against the secret with ±1 step of skew.
// An empty secret passes vacuously: enrollment is per-identity and callers
// gate on enrollment status before prompting for a code.
func (s *totpService) VerifyCode(secret, code string) bool {
	if secret == "" {
		return true
	}

	ok, err := totp.ValidateCustom(code, secret, time.Now().UTC(), totp.ValidateOpts{
		Period:    30,
		Skew:      1,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	if err != nil {
		return false
	}
	return ok
}

// ProvisioningURI builds the otpauth:// descriptor for enrollment.
func (s *totpService) ProvisioningURI(secret, accountHandle string) string {
	label := url.PathEscape(s.issuer + ":" + accountHandle)

	v := url.Values{}
	v.Set("secret", secret)
	v.Set("issuer", s.issuer)
	v.Set("period", "30")
	v.Set("digits", "6")
	v.Set("algorithm", "SHA1")

	return "otpauth://totp/" + label + "?" + v.Encode()
}

// NewTotpService creates a new TotpService with the given issuer label.
func NewTotpService(issuer string) TotpService {
	return &totpService{issuer: issuer}
}
