package usecase

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/piivault/internal/crypto/domain"
	cryptoService "github.com/allisson/piivault/internal/crypto/service"
	"github.com/allisson/piivault/internal/vault/repository"
	vaultDomain "github.com/allisson/piivault/internal/vault/domain"
)

const (
	testSessionID = "session-0001"
	testChallenge = "Y2hhbGxlbmdlLWZvci10ZXN0cw=="
)

var errStoreDown = errors.New("store down")

// countingDeriver counts DeriveKey calls.
type countingDeriver struct {
	next  cryptoService.KeyDeriver
	mu    sync.Mutex
	calls int
}

func (d *countingDeriver) DeriveKey(sessionID, challenge string) (*cryptoDomain.KeyHandle, error) {
	d.mu.Lock()
	d.calls++
	d.mu.Unlock()
	return d.next.DeriveKey(sessionID, challenge)
}

func (d *countingDeriver) Calls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls
}

// faultyStore wraps a MemoryRecordStore with per-operation failures and hooks.
type faultyStore struct {
	*repository.MemoryRecordStore

	putErr   error
	getErr   error
	hasErr   error
	countErr error
	clearErr error

	gets    int
	onCount func()
}

func newFaultyStore() *faultyStore {
	store, err := repository.NewMemoryRecordStore("test")
	if err != nil {
		panic(err)
	}
	return &faultyStore{MemoryRecordStore: store}
}

func (s *faultyStore) Put(ctx context.Context, token string, record *vaultDomain.EncryptedRecord) error {
	if s.putErr != nil {
		return s.putErr
	}
	return s.MemoryRecordStore.Put(ctx, token, record)
}

func (s *faultyStore) Get(ctx context.Context, token string) (*vaultDomain.EncryptedRecord, error) {
	s.gets++
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.MemoryRecordStore.Get(ctx, token)
}

func (s *faultyStore) Has(ctx context.Context, token string) (bool, error) {
	if s.hasErr != nil {
		return false, s.hasErr
	}
	return s.MemoryRecordStore.Has(ctx, token)
}

func (s *faultyStore) Count(ctx context.Context) (int64, error) {
	if s.onCount != nil {
		s.onCount()
	}
	if s.countErr != nil {
		return 0, s.countErr
	}
	return s.MemoryRecordStore.Count(ctx)
}

func (s *faultyStore) Clear(ctx context.Context) error {
	if s.clearErr != nil {
		return s.clearErr
	}
	return s.MemoryRecordStore.Clear(ctx)
}

func newTestDeriver() *countingDeriver {
	return &countingDeriver{
		next: cryptoService.NewPBKDF2KeyDeriver(cryptoDomain.MinKDFIterations, cryptoDomain.AESGCM),
	}
}

// newTestVault returns an unready vault over store.
func newTestVault(t *testing.T, store RecordStore, deriver cryptoService.KeyDeriver) *vaultUseCase {
	t.Helper()
	if deriver == nil {
		deriver = newTestDeriver()
	}
	uc := NewVaultUseCase(store, deriver, cryptoService.NewAEADManager(), slog.New(slog.DiscardHandler))
	return uc.(*vaultUseCase)
}

// newReadyVault returns an initialized vault over store.
func newReadyVault(t *testing.T, store RecordStore) *vaultUseCase {
	t.Helper()
	uc := newTestVault(t, store, nil)
	require.NoError(t, uc.Initialize(context.Background(), testSessionID, testChallenge))
	return uc
}

func newRecordFixture() *vaultDomain.EncryptedRecord {
	return &vaultDomain.EncryptedRecord{
		Ciphertext: []byte("opaque"),
		Nonce:      make([]byte, vaultDomain.NonceSize),
		AuthTag:    make([]byte, vaultDomain.TagSize),
	}
}
