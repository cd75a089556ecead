// Package usecase implements the encrypted token vault.
//
// The vault owns the session key handle, an in-memory plaintext cache and the
// lifecycle (Initialize / Wipe) of one session. Writes fail closed and propagate
// errors; reads degrade to "absent" so rendering paths never fail.
package usecase

import (
	"context"

	vaultDomain "github.com/allisson/piivault/internal/vault/domain"
)

// RecordStore persists encrypted records for one namespace. Every call is atomic per
// record; no multi-record transaction is assumed.
type RecordStore interface {
	Put(ctx context.Context, token string, record *vaultDomain.EncryptedRecord) error

	// Get returns ErrRecordNotFound when the token has no record.
	Get(ctx context.Context, token string) (*vaultDomain.EncryptedRecord, error)
	Has(ctx context.Context, token string) (bool, error)
	Count(ctx context.Context) (int64, error)

	// Clear removes every record in the namespace. Clearing an empty namespace succeeds.
	Clear(ctx context.Context) error
}

// VaultUseCase defines the vault operations.
type VaultUseCase interface {
	// Initialize derives the session key and marks the vault ready.
	// It is a no-op when the vault is already ready. On failure the vault stays
	// unready and the error wraps ErrVaultInit.
	Initialize(ctx context.Context, sessionID, challenge string) error

	// Store encrypts value under a fresh nonce and persists it for token.
	// Storing an existing token replaces its record.
	Store(ctx context.Context, token, value string) error

	// StoreFromTokenMap stores every entry in sorted token order and stops at the
	// first failure. Entries stored before the failure remain.
	StoreFromTokenMap(ctx context.Context, tokens map[string]string) error

	// Retrieve returns the plaintext for token. A missing, unreadable or
	// unauthenticated record yields ok == false and a nil error.
	Retrieve(ctx context.Context, token string) (value string, ok bool, err error)

	// RetrieveBatch resolves tokens one at a time and returns only the resolved ones.
	// Duplicates are decrypted at most once; malformed tokens are skipped.
	RetrieveBatch(ctx context.Context, tokens []string) (map[string]string, error)

	// HasToken reports whether a record exists without decrypting it.
	HasToken(ctx context.Context, token string) (bool, error)

	// Stats returns aggregate counters only.
	Stats(ctx context.Context) (vaultDomain.Stats, error)

	// Wipe clears the namespace, the cache and the key handle and marks the vault
	// unready. Safe to call repeatedly and before Initialize.
	Wipe(ctx context.Context) error

	// IsReady reports whether the vault accepts operations.
	IsReady() bool

	// Subscribe registers listener for readiness changes and returns a function that
	// removes it. Listeners run synchronously after the change, outside the vault lock.
	Subscribe(listener func()) (unsubscribe func())
}
