// Package codec converts between AEAD output and the persisted EncryptedRecord triple,
// and serializes records for key-value backends with MessagePack.
package codec

import (
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	vaultDomain "github.com/allisson/piivault/internal/vault/domain"
)

// formatVersion is written into every encoded record.
const formatVersion uint8 = 1

// wireRecord is the MessagePack layout of a record.
type wireRecord struct {
	Version    uint8  `msgpack:"v"`
	Ciphertext []byte `msgpack:"c"`
	Nonce      []byte `msgpack:"n"`
	AuthTag    []byte `msgpack:"t"`
	CreatedAt  int64  `msgpack:"at"`
}

// Split separates sealed AEAD output (ciphertext with the tag appended) into a record.
// The returned record owns copies of its slices.
func Split(sealed, nonce []byte) (*vaultDomain.EncryptedRecord, error) {
	if len(sealed) < vaultDomain.TagSize {
		return nil, vaultDomain.ErrInvalidRecord
	}

	cut := len(sealed) - vaultDomain.TagSize
	record := &vaultDomain.EncryptedRecord{
		Ciphertext: append([]byte(nil), sealed[:cut]...),
		Nonce:      append([]byte(nil), nonce...),
		AuthTag:    append([]byte(nil), sealed[cut:]...),
		CreatedAt:  time.Now().UTC(),
	}
	if err := record.Validate(); err != nil {
		return nil, err
	}
	return record, nil
}

// Join rebuilds the sealed AEAD input (ciphertext followed by tag) from a record.
func Join(record *vaultDomain.EncryptedRecord) ([]byte, error) {
	if err := record.Validate(); err != nil {
		return nil, err
	}

	sealed := make([]byte, 0, len(record.Ciphertext)+len(record.AuthTag))
	sealed = append(sealed, record.Ciphertext...)
	sealed = append(sealed, record.AuthTag...)
	return sealed, nil
}

// Marshal encodes a record as MessagePack.
func Marshal(record *vaultDomain.EncryptedRecord) ([]byte, error) {
	if err := record.Validate(); err != nil {
		return nil, err
	}

	w := wireRecord{
		Version:    formatVersion,
		Ciphertext: record.Ciphertext,
		Nonce:      record.Nonce,
		AuthTag:    record.AuthTag,
	}
	if !record.CreatedAt.IsZero() {
		w.CreatedAt = record.CreatedAt.UnixNano()
	}

	data, err := msgpack.Marshal(&w)
	if err != nil {
		return nil, fmt.Errorf("failed to encode record: %w", err)
	}
	return data, nil
}

// Unmarshal decodes a MessagePack record and validates its layout.
func Unmarshal(data []byte) (*vaultDomain.EncryptedRecord, error) {
	var w wireRecord
	if err := msgpack.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("%w: %v", vaultDomain.ErrInvalidRecord, err)
	}
	if w.Version != formatVersion {
		return nil, fmt.Errorf("%w: unknown format version %d", vaultDomain.ErrInvalidRecord, w.Version)
	}

	record := &vaultDomain.EncryptedRecord{
		Ciphertext: w.Ciphertext,
		Nonce:      w.Nonce,
		AuthTag:    w.AuthTag,
	}
	if w.CreatedAt != 0 {
		record.CreatedAt = time.Unix(0, w.CreatedAt).UTC()
	}
	if err := record.Validate(); err != nil {
		return nil, err
	}
	return record, nil
}
