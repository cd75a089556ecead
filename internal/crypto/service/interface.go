// Package service provides the cryptographic primitives behind the vault:
// AEAD ciphers (AES-256-GCM, ChaCha20-Poly1305) and session key derivation.
package service

import (
	cryptoDomain "github.com/allisson/piivault/internal/crypto/domain"
)

// AEAD defines the interface for Authenticated Encryption with Associated Data.
type AEAD interface {
	// Encrypt encrypts plaintext with optional AAD and returns ciphertext (tag appended) and nonce.
	Encrypt(plaintext, aad []byte) (ciphertext, nonce []byte, err error)

	// Decrypt decrypts ciphertext (tag appended) using the provided nonce and AAD.
	Decrypt(ciphertext, nonce, aad []byte) ([]byte, error)
}

// AEADManager defines the interface for creating AEAD cipher instances.
type AEADManager interface {
	// CreateCipher creates an AEAD cipher instance for the specified algorithm.
	CreateCipher(key []byte, alg cryptoDomain.Algorithm) (AEAD, error)
}

// KeyDeriver turns session credentials into a sealed symmetric key.
type KeyDeriver interface {
	// DeriveKey derives the session key. The same inputs always yield the same key.
	DeriveKey(sessionID, challenge string) (*cryptoDomain.KeyHandle, error)
}
