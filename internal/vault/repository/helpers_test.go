package repository

import (
	"bytes"
	"testing"
	"time"

	vaultDomain "github.com/allisson/piivault/internal/vault/domain"
)

func newTestRecord(t *testing.T, fill byte) *vaultDomain.EncryptedRecord {
	t.Helper()
	return &vaultDomain.EncryptedRecord{
		Ciphertext: bytes.Repeat([]byte{fill}, 5),
		Nonce:      bytes.Repeat([]byte{fill}, vaultDomain.NonceSize),
		AuthTag:    bytes.Repeat([]byte{fill}, vaultDomain.TagSize),
		CreatedAt:  time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}
