package service

import (
	"crypto/sha256"
	"fmt"

	"golang.org/x/crypto/pbkdf2"

	cryptoDomain "github.com/allisson/piivault/internal/crypto/domain"
	apperrors "github.com/allisson/piivault/internal/errors"
)

// PBKDF2KeyDeriver derives session keys with PBKDF2-HMAC-SHA256.
//
// The challenge is the password and sessionID‖challenge is the salt, so the derived
// key is a pure function of the session credentials. This lets a restarted process
// decrypt records written earlier in the same session without a new challenge.
type PBKDF2KeyDeriver struct {
	iterations int
	algorithm  cryptoDomain.Algorithm
}

// NewPBKDF2KeyDeriver creates a key deriver. Iteration counts below
// MinKDFIterations are raised to the minimum.
func NewPBKDF2KeyDeriver(iterations int, alg cryptoDomain.Algorithm) *PBKDF2KeyDeriver {
	if iterations < cryptoDomain.MinKDFIterations {
		iterations = cryptoDomain.MinKDFIterations
	}
	return &PBKDF2KeyDeriver{
		iterations: iterations,
		algorithm:  alg,
	}
}

// Iterations returns the effective PBKDF2 iteration count.
func (d *PBKDF2KeyDeriver) Iterations() int {
	return d.iterations
}

// DeriveKey derives a 256-bit key and seals it into a KeyHandle.
// Returns an error wrapping ErrKeyDerivation when either input is empty or sealing fails.
func (d *PBKDF2KeyDeriver) DeriveKey(sessionID, challenge string) (*cryptoDomain.KeyHandle, error) {
	if sessionID == "" || challenge == "" {
		return nil, fmt.Errorf("%w: %w", cryptoDomain.ErrKeyDerivation,
			apperrors.Wrap(apperrors.ErrInvalidInput, "session id and challenge are required"))
	}

	salt := make([]byte, 0, len(sessionID)+len(challenge))
	salt = append(salt, sessionID...)
	salt = append(salt, challenge...)

	password := []byte(challenge)
	defer cryptoDomain.Zero(password)

	key := pbkdf2.Key(password, salt, d.iterations, cryptoDomain.KeySize, sha256.New)

	handle, err := cryptoDomain.NewKeyHandle(key, d.algorithm)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", cryptoDomain.ErrKeyDerivation, err)
	}
	return handle, nil
}
