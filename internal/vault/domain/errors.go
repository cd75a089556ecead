package domain

import (
	"github.com/allisson/piivault/internal/errors"
)

var (
	// ErrVaultInit indicates Initialize failed; the vault stays unready.
	ErrVaultInit = errors.New("vault initialization failed")

	// ErrVaultNotReady indicates an operation ran before Initialize or after Wipe.
	ErrVaultNotReady = errors.Wrap(errors.ErrUnavailable, "vault not ready")

	// ErrInvalidTokenFormat indicates the identifier does not match ^TOKEN_[A-Za-z0-9]+$.
	ErrInvalidTokenFormat = errors.Wrap(errors.ErrInvalidInput, "invalid token format")

	// ErrValueTooLarge indicates the plaintext exceeds MaxValueSize.
	ErrValueTooLarge = errors.Wrap(errors.ErrInvalidInput, "value exceeds maximum size")

	// ErrInvalidRecord indicates an encrypted record with a malformed nonce or tag.
	ErrInvalidRecord = errors.Wrap(errors.ErrInvalidInput, "invalid encrypted record")

	// ErrStorage indicates the record store failed.
	ErrStorage = errors.New("storage error")

	// ErrRecordNotFound indicates no record exists for the token.
	ErrRecordNotFound = errors.Wrap(errors.ErrNotFound, "record not found")
)
