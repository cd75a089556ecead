package domain

import (
	"time"
)

// Record field sizes shared by every supported AEAD algorithm.
const (
	NonceSize = 12
	TagSize   = 16
)

// EncryptedRecord is the persisted form of one token value.
//
// The three byte slices are written and read as a single unit; a record missing its
// nonce or tag is never a valid persisted state.
type EncryptedRecord struct {
	Ciphertext []byte
	Nonce      []byte
	AuthTag    []byte
	CreatedAt  time.Time
}

// Validate checks the nonce and tag lengths.
func (r *EncryptedRecord) Validate() error {
	if r == nil {
		return ErrInvalidRecord
	}
	if len(r.Nonce) != NonceSize || len(r.AuthTag) != TagSize {
		return ErrInvalidRecord
	}
	return nil
}

// Clone returns a deep copy of the record.
func (r *EncryptedRecord) Clone() *EncryptedRecord {
	if r == nil {
		return nil
	}
	return &EncryptedRecord{
		Ciphertext: append([]byte(nil), r.Ciphertext...),
		Nonce:      append([]byte(nil), r.Nonce...),
		AuthTag:    append([]byte(nil), r.AuthTag...),
		CreatedAt:  r.CreatedAt,
	}
}
