package domain

import (
	"github.com/allisson/piivault/internal/errors"
)

// Cryptographic operation errors.
var (
	// ErrUnsupportedAlgorithm indicates the requested AEAD algorithm is unknown.
	ErrUnsupportedAlgorithm = errors.Wrap(errors.ErrInvalidInput, "unsupported algorithm")

	// ErrInvalidKeySize indicates key material is not exactly KeySize bytes.
	ErrInvalidKeySize = errors.Wrap(errors.ErrInvalidInput, "invalid key size")

	// ErrDecryptionFailed indicates authentication failed. A wrong key, tampered
	// ciphertext and mismatched associated data all surface as this error.
	ErrDecryptionFailed = errors.Wrap(errors.ErrInvalidInput, "decryption failed")

	// ErrKeyDerivation indicates the session key could not be derived.
	ErrKeyDerivation = errors.New("key derivation failed")

	// ErrKeyDestroyed indicates a key handle was used after Destroy.
	ErrKeyDestroyed = errors.Wrap(errors.ErrUnavailable, "key handle destroyed")

	// ErrKeyNotExportable is returned by any attempt to serialize a key handle.
	ErrKeyNotExportable = errors.New("key handle is not exportable")
)
