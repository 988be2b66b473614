package service

import (
	"github.com/allisson/go-pwdhash"

	"github.com/allisson/notehub/internal/identity/domain"
	"github.com/allisson/notehub/internal/validation"
)

// credentialService implements CredentialService using Argon2id hashing.
type credentialService struct {
	hasher    *pwdhash.PasswordHasher
	dummyHash string
}

// HashPassword hashes a plain text password using Argon2id after checking
// the minimum length policy.
func (s *credentialService) HashPassword(plainPassword string) (string, error) {
	if len(plainPassword) < validation.MinPasswordLength {
		return "", domain.ErrPasswordPolicy
	}

	hashedPassword, err := s.hasher.Hash([]byte(plainPassword))
	if err != nil {
		return "", err
	}
	return hashedPassword, nil
}

// VerifyPassword performs a constant-time comparison between a plain password
// and its stored hash.
func (s *credentialService) VerifyPassword(plainPassword string, hashedPassword string) bool {
	ok, err := s.hasher.Verify([]byte(plainPassword), hashedPassword)
	if err != nil {
		return false
	}
	return ok
}

// DummyVerify runs a verification against a throwaway hash so the unknown
// handle path costs the same as a real password check.
func (s *credentialService) DummyVerify() {
	_, _ = s.hasher.Verify([]byte("dummy-password"), s.dummyHash)
}

// NewCredentialService creates a new CredentialService instance using Argon2id
// hashing with the interactive policy, suitable for user-facing logins.
func NewCredentialService() CredentialService {
	hasher, err := pwdhash.New(
		pwdhash.WithPolicy(pwdhash.PolicyInteractive),
	)
	if err != nil {
		// This should never happen with valid policy
		panic(err)
	}

	dummyHash, err := hasher.Hash([]byte("not-a-real-password"))
	if err != nil {
		panic(err)
	}

	return &credentialService{
		hasher:    hasher,
		dummyHash: dummyHash,
	}
}
