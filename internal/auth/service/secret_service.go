package service

import (
	"crypto/rand"
	"encoding/base64"

	"github.com/allisson/go-pwdhash"

	apperrors "github.com/allisson/piivault/internal/errors"
)

// SecretLength is the number of random bytes in a generated agent secret.
const SecretLength = 32

type secretService struct {
	hasher *pwdhash.PasswordHasher
}

// NewSecretService creates a SecretService using the interactive Argon2id policy,
// since the agent verifies the secret on every request.
func NewSecretService() (SecretService, error) {
	hasher, err := pwdhash.New(pwdhash.WithPolicy(pwdhash.PolicyInteractive))
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to create secret hasher")
	}
	return &secretService{hasher: hasher}, nil
}

func (s *secretService) GenerateSecret() (string, string, error) {
	raw := make([]byte, SecretLength)
	if _, err := rand.Read(raw); err != nil {
		return "", "", apperrors.Wrap(err, "failed to generate agent secret")
	}
	plain := base64.RawURLEncoding.EncodeToString(raw)

	hashed, err := s.HashSecret(plain)
	if err != nil {
		return "", "", err
	}
	return plain, hashed, nil
}

func (s *secretService) HashSecret(plainSecret string) (string, error) {
	hashed, err := s.hasher.Hash([]byte(plainSecret))
	if err != nil {
		return "", apperrors.Wrap(err, "failed to hash agent secret")
	}
	return hashed, nil
}

func (s *secretService) CompareSecret(plainSecret string, hashedSecret string) bool {
	ok, err := s.hasher.Verify([]byte(plainSecret), hashedSecret)
	return err == nil && ok
}
