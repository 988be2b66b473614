// Package service provides technical services for identity credentials.
//
// This package implements password hashing/verification and time-based
// one-time-password handling using industry-standard cryptographic practices.
package service

// CredentialService defines operations for password hashing and validation.
// Implementations must use a memory-hard hashing algorithm (e.g., argon2)
// and constant-time verification.
type CredentialService interface {
	// HashPassword hashes a plain text password.
	// Returns ErrPasswordPolicy when the plaintext is shorter than the
	// minimum policy length. The plaintext is never stored or logged.
	HashPassword(plainPassword string) (hashedPassword string, err error)

	// VerifyPassword compares a plain text password against a stored hash.
	// The comparison is constant-time to prevent timing attacks.
	VerifyPassword(plainPassword string, hashedPassword string) bool

	// DummyVerify burns one password verification against a fixed hash.
	// Callers use it to keep the "unknown handle" path indistinguishable
	// in timing from the "wrong password" path.
	DummyVerify()
}

// TotpService defines operations for the optional TOTP second factor.
type TotpService interface {
	// GenerateSecret creates a fresh base32-encoded shared secret.
	// The secret is only surfaced to the user at setup confirmation.
	GenerateSecret() (string, error)

	// VerifyCode validates a time-based code against the shared secret,
	// allowing one step of clock skew in each direction (30s step).
	//
	// An empty secret means no second factor is enrolled and the check is
	// vacuously satisfied: callers gate on enrollment status before
	// prompting, not the reverse.
	VerifyCode(secret, code string) bool

	// ProvisioningURI builds the otpauth:// enrollment descriptor consumed
	// by an external QR renderer. The core never renders images.
	ProvisioningURI(secret, accountHandle string) string
}
