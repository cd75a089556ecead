package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	cryptoDomain "github.com/allisson/piivault/internal/crypto/domain"
	cryptoService "github.com/allisson/piivault/internal/crypto/service"
	"github.com/allisson/piivault/internal/vault/codec"
	vaultDomain "github.com/allisson/piivault/internal/vault/domain"
)

// vaultUseCase implements VaultUseCase.
//
// mu is held for the whole of every single-token operation, so two callers never
// decrypt or cache the same token concurrently. Batches take mu once per token.
type vaultUseCase struct {
	store       RecordStore
	keyDeriver  cryptoService.KeyDeriver
	aeadManager cryptoService.AEADManager
	logger      *slog.Logger

	mu    sync.Mutex
	key   *cryptoDomain.KeyHandle
	cache map[string]string
	ready bool

	listenersMu    sync.Mutex
	listeners      map[uint64]func()
	nextListenerID uint64
}

// NewVaultUseCase creates an unready vault over store.
func NewVaultUseCase(
	store RecordStore,
	keyDeriver cryptoService.KeyDeriver,
	aeadManager cryptoService.AEADManager,
	logger *slog.Logger,
) VaultUseCase {
	return &vaultUseCase{
		store:       store,
		keyDeriver:  keyDeriver,
		aeadManager: aeadManager,
		logger:      logger,
		cache:       make(map[string]string),
		listeners:   make(map[uint64]func()),
	}
}

// Initialize derives the session key and opens the vault.
func (v *vaultUseCase) Initialize(ctx context.Context, sessionID, challenge string) error {
	start := time.Now()

	v.mu.Lock()
	if v.ready {
		v.mu.Unlock()
		return nil
	}

	key, err := v.keyDeriver.DeriveKey(sessionID, challenge)
	if err != nil {
		v.mu.Unlock()
		emitInitFailed(ctx, err)
		return fmt.Errorf("%w: %w", vaultDomain.ErrVaultInit, err)
	}

	count, err := v.store.Count(ctx)
	if err != nil {
		key.Destroy()
		v.mu.Unlock()
		err = fmt.Errorf("%w: %w: %w", vaultDomain.ErrVaultInit, vaultDomain.ErrStorage, err)
		emitInitFailed(ctx, err)
		return err
	}

	v.key = key
	v.cache = make(map[string]string)
	v.ready = true
	v.mu.Unlock()

	v.logger.Info("vault initialized",
		slog.Int64("token_count", count),
		slog.String("algorithm", key.Algorithm().String()),
	)
	emitInitialized(ctx, count, time.Since(start))
	v.notify()
	return nil
}

// Store encrypts and persists one token value.
func (v *vaultUseCase) Store(ctx context.Context, token, value string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.ready {
		return vaultDomain.ErrVaultNotReady
	}
	if !vaultDomain.IsValidToken(token) {
		return vaultDomain.ErrInvalidTokenFormat
	}
	if len(value) > vaultDomain.MaxValueSize {
		return vaultDomain.ErrValueTooLarge
	}

	record, err := v.seal(token, value)
	if err != nil {
		return fmt.Errorf("failed to encrypt value: %w", err)
	}

	if err := v.store.Put(ctx, token, record); err != nil {
		v.logger.Error("failed to persist record", slog.String("token", token), slog.Any("error", err))
		return fmt.Errorf("%w: %w", vaultDomain.ErrStorage, err)
	}

	v.cache[token] = value
	return nil
}

// StoreFromTokenMap stores entries sequentially in sorted token order.
func (v *vaultUseCase) StoreFromTokenMap(ctx context.Context, tokens map[string]string) error {
	start := time.Now()

	keys := make([]string, 0, len(tokens))
	for token := range tokens {
		keys = append(keys, token)
	}
	sort.Strings(keys)

	stored := 0
	for _, token := range keys {
		if err := v.Store(ctx, token, tokens[token]); err != nil {
			emitStoreComplete(ctx, stored, len(keys), time.Since(start), err)
			return err
		}
		stored++
	}

	emitStoreComplete(ctx, stored, len(keys), time.Since(start), nil)
	return nil
}

// Retrieve returns the plaintext for token, consulting the cache first.
func (v *vaultUseCase) Retrieve(ctx context.Context, token string) (string, bool, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.ready {
		return "", false, vaultDomain.ErrVaultNotReady
	}
	if !vaultDomain.IsValidToken(token) {
		return "", false, vaultDomain.ErrInvalidTokenFormat
	}

	return v.resolveLocked(ctx, token)
}

// RetrieveBatch resolves tokens sequentially. Readiness is checked before every
// token; a wipe landing mid-batch discards the partial result.
func (v *vaultUseCase) RetrieveBatch(ctx context.Context, tokens []string) (map[string]string, error) {
	if !v.IsReady() {
		return nil, vaultDomain.ErrVaultNotReady
	}

	resolved := make(map[string]string, len(tokens))
	seen := make(map[string]struct{}, len(tokens))

	for _, token := range tokens {
		if _, dup := seen[token]; dup {
			continue
		}
		seen[token] = struct{}{}

		if err := ctx.Err(); err != nil {
			return nil, err
		}

		value, ok, err := v.retrieveForBatch(ctx, token)
		if err != nil {
			return nil, err
		}
		if ok {
			resolved[token] = value
		}
	}

	return resolved, nil
}

func (v *vaultUseCase) retrieveForBatch(ctx context.Context, token string) (string, bool, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.ready {
		return "", false, vaultDomain.ErrVaultNotReady
	}
	if !vaultDomain.IsValidToken(token) {
		return "", false, nil
	}
	return v.resolveLocked(ctx, token)
}

// resolveLocked implements the cache-then-decrypt read path. mu must be held.
func (v *vaultUseCase) resolveLocked(ctx context.Context, token string) (string, bool, error) {
	if value, ok := v.cache[token]; ok {
		return value, true, nil
	}

	record, err := v.store.Get(ctx, token)
	if err != nil {
		if errors.Is(err, vaultDomain.ErrRecordNotFound) {
			return "", false, nil
		}
		v.logger.Warn("failed to read record", slog.String("token", token), slog.Any("error", err))
		emitRetrieveFailed(ctx, reasonStorage, err)
		return "", false, nil
	}

	value, err := v.open(token, record)
	if err != nil {
		v.logger.Warn("failed to decrypt record", slog.String("token", token), slog.Any("error", err))
		emitRetrieveFailed(ctx, reasonDecryption, err)
		return "", false, nil
	}

	v.cache[token] = value
	return value, true, nil
}

// HasToken checks existence without decrypting.
func (v *vaultUseCase) HasToken(ctx context.Context, token string) (bool, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.ready {
		return false, vaultDomain.ErrVaultNotReady
	}
	if !vaultDomain.IsValidToken(token) {
		return false, vaultDomain.ErrInvalidTokenFormat
	}
	if _, ok := v.cache[token]; ok {
		return true, nil
	}

	exists, err := v.store.Has(ctx, token)
	if err != nil {
		return false, fmt.Errorf("%w: %w", vaultDomain.ErrStorage, err)
	}
	return exists, nil
}

// Stats returns aggregate counters. It works on an unready vault. The store count
// runs outside mu so a slow scan never stalls token operations.
func (v *vaultUseCase) Stats(ctx context.Context) (vaultDomain.Stats, error) {
	count, err := v.store.Count(ctx)
	if err != nil {
		return vaultDomain.Stats{}, fmt.Errorf("%w: %w", vaultDomain.ErrStorage, err)
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	return vaultDomain.Stats{
		TokenCount: count,
		CacheSize:  len(v.cache),
		IsReady:    v.ready,
	}, nil
}

// Wipe resets the vault. In-memory state is always reset; a store failure is returned.
func (v *vaultUseCase) Wipe(ctx context.Context) error {
	start := time.Now()

	v.mu.Lock()
	wasReady, err := v.wipeLocked(ctx)
	v.mu.Unlock()

	if err != nil {
		err = fmt.Errorf("%w: %w", vaultDomain.ErrStorage, err)
	}
	emitWiped(ctx, time.Since(start), err)

	if wasReady {
		v.notify()
	}
	return err
}

// wipeLocked clears state and reports whether the vault was ready. mu must be held.
func (v *vaultUseCase) wipeLocked(ctx context.Context) (bool, error) {
	clearErr := v.store.Clear(ctx)

	wasReady := v.ready
	if v.key != nil {
		v.key.Destroy()
		v.key = nil
	}
	clear(v.cache)
	v.ready = false

	return wasReady, clearErr
}

// IsReady reports whether the vault is initialized.
func (v *vaultUseCase) IsReady() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.ready
}

// Subscribe registers a readiness listener.
func (v *vaultUseCase) Subscribe(listener func()) func() {
	v.listenersMu.Lock()
	id := v.nextListenerID
	v.nextListenerID++
	v.listeners[id] = listener
	v.listenersMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			v.listenersMu.Lock()
			delete(v.listeners, id)
			v.listenersMu.Unlock()
		})
	}
}

func (v *vaultUseCase) notify() {
	v.listenersMu.Lock()
	ids := make([]uint64, 0, len(v.listeners))
	for id := range v.listeners {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	listeners := make([]func(), 0, len(ids))
	for _, id := range ids {
		listeners = append(listeners, v.listeners[id])
	}
	v.listenersMu.Unlock()

	for _, listener := range listeners {
		listener()
	}
}

// seal encrypts value with the token as associated data. mu must be held.
func (v *vaultUseCase) seal(token, value string) (*vaultDomain.EncryptedRecord, error) {
	var record *vaultDomain.EncryptedRecord

	err := v.key.Use(func(key []byte) error {
		cipher, err := v.aeadManager.CreateCipher(key, v.key.Algorithm())
		if err != nil {
			return err
		}

		sealed, nonce, err := cipher.Encrypt([]byte(value), []byte(token))
		if err != nil {
			return err
		}

		record, err = codec.Split(sealed, nonce)
		return err
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// open authenticates and decrypts a record. mu must be held.
func (v *vaultUseCase) open(token string, record *vaultDomain.EncryptedRecord) (string, error) {
	sealed, err := codec.Join(record)
	if err != nil {
		return "", err
	}

	var value string
	err = v.key.Use(func(key []byte) error {
		cipher, err := v.aeadManager.CreateCipher(key, v.key.Algorithm())
		if err != nil {
			return err
		}

		plaintext, err := cipher.Decrypt(sealed, record.Nonce, []byte(token))
		if err != nil {
			return fmt.Errorf("%w: %w", cryptoDomain.ErrDecryptionFailed, err)
		}
		value = string(plaintext)
		cryptoDomain.Zero(plaintext)
		return nil
	})
	return value, err
}
