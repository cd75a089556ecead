package domain

import (
	"sync"

	"github.com/awnumar/memguard"

	"github.com/allisson/piivault/internal/errors"
)

// KeyHandle is an opaque, non-exportable reference to a derived session key.
//
// The key lives inside a memguard enclave (encrypted in memory) and is only
// decrypted into guarded memory for the duration of a Use callback. There is no
// accessor for the raw bytes and every serialization path returns ErrKeyNotExportable.
type KeyHandle struct {
	mu        sync.RWMutex
	enclave   *memguard.Enclave
	algorithm Algorithm
}

// NewKeyHandle seals key into a new handle. The key slice is wiped in all cases.
func NewKeyHandle(key []byte, alg Algorithm) (*KeyHandle, error) {
	if len(key) != KeySize {
		Zero(key)
		return nil, ErrInvalidKeySize
	}
	if _, err := ParseAlgorithm(string(alg)); err != nil {
		Zero(key)
		return nil, err
	}

	// NewEnclave wipes the source buffer after sealing it.
	return &KeyHandle{
		enclave:   memguard.NewEnclave(key),
		algorithm: alg,
	}, nil
}

// Algorithm returns the AEAD algorithm this key is bound to.
func (h *KeyHandle) Algorithm() Algorithm {
	return h.algorithm
}

// Valid reports whether the handle still holds key material.
func (h *KeyHandle) Valid() bool {
	if h == nil {
		return false
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.enclave != nil
}

// Use opens the enclave and passes the key to fn. The key slice must not be
// retained after fn returns; the guarded buffer is destroyed immediately after.
func (h *KeyHandle) Use(fn func(key []byte) error) error {
	if h == nil {
		return ErrKeyDestroyed
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.enclave == nil {
		return ErrKeyDestroyed
	}

	buf, err := h.enclave.Open()
	if err != nil {
		return errors.Wrap(err, "failed to open key enclave")
	}
	defer buf.Destroy()

	return fn(buf.Bytes())
}

// Destroy discards the sealed key. Safe to call more than once.
func (h *KeyHandle) Destroy() {
	if h == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.enclave = nil
}

// String keeps key handles out of formatted logs.
func (h *KeyHandle) String() string {
	return "KeyHandle(redacted)"
}

// GoString keeps key handles out of %#v output.
func (h *KeyHandle) GoString() string {
	return h.String()
}

// MarshalJSON always fails: key handles are never serialized.
func (h *KeyHandle) MarshalJSON() ([]byte, error) {
	return nil, ErrKeyNotExportable
}

// MarshalBinary always fails: key handles are never serialized.
func (h *KeyHandle) MarshalBinary() ([]byte, error) {
	return nil, ErrKeyNotExportable
}
