// Package repository implements RecordStore backends for encrypted vault records:
// an embedded Badger store, an in-memory store, and PostgreSQL/MySQL stores.
// Every store is scoped to a namespace so several vaults can share one backend.
package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dgraph-io/badger/v4"

	apperrors "github.com/allisson/piivault/internal/errors"
	"github.com/allisson/piivault/internal/vault/codec"
	vaultDomain "github.com/allisson/piivault/internal/vault/domain"
)

const badgerKeyRoot = "vault/"

// BadgerOptions configures OpenBadger.
type BadgerOptions struct {
	Path     string
	InMemory bool
	Logger   *slog.Logger
}

// OpenBadger opens a Badger database with its internal logging routed through slog.
func OpenBadger(o BadgerOptions) (*badger.DB, error) {
	opts := badger.DefaultOptions(o.Path)
	if o.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts.Logger = nil
	if o.Logger != nil {
		opts.Logger = &badgerLogger{logger: o.Logger.With(slog.String("component", "badger"))}
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database: %w", err)
	}
	return db, nil
}

// BadgerRecordStore persists records in Badger under vault/<namespace>/<token>,
// each value being the MessagePack-encoded record.
type BadgerRecordStore struct {
	db     *badger.DB
	prefix []byte
}

// NewBadgerRecordStore creates a store for one namespace.
func NewBadgerRecordStore(db *badger.DB, namespace string) (*BadgerRecordStore, error) {
	if err := validateNamespace(namespace); err != nil {
		return nil, err
	}
	return &BadgerRecordStore{
		db:     db,
		prefix: []byte(badgerKeyRoot + namespace + "/"),
	}, nil
}

func (b *BadgerRecordStore) key(token string) []byte {
	key := make([]byte, 0, len(b.prefix)+len(token))
	key = append(key, b.prefix...)
	return append(key, token...)
}

// Put writes the record in a single transaction, replacing any previous record.
func (b *BadgerRecordStore) Put(_ context.Context, token string, record *vaultDomain.EncryptedRecord) error {
	data, err := codec.Marshal(record)
	if err != nil {
		return err
	}

	err = b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(b.key(token), data)
	})
	if err != nil {
		return apperrors.Wrap(err, "failed to put record")
	}
	return nil
}

// Get reads the record for token. Returns ErrRecordNotFound when absent.
func (b *BadgerRecordStore) Get(_ context.Context, token string) (*vaultDomain.EncryptedRecord, error) {
	var data []byte

	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(b.key(token))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, vaultDomain.ErrRecordNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get record")
	}

	return codec.Unmarshal(data)
}

// Has reports whether a record exists without reading its value.
func (b *BadgerRecordStore) Has(_ context.Context, token string) (bool, error) {
	err := b.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(b.key(token))
		return err
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return false, nil
		}
		return false, apperrors.Wrap(err, "failed to check record")
	}
	return true, nil
}

// Count returns the number of records in the namespace using a key-only scan.
func (b *BadgerRecordStore) Count(_ context.Context) (int64, error) {
	var count int64

	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = b.prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(b.prefix); it.ValidForPrefix(b.prefix); it.Next() {
			count++
		}
		return nil
	})
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to count records")
	}
	return count, nil
}

// Clear removes every record in the namespace.
func (b *BadgerRecordStore) Clear(_ context.Context) error {
	if err := b.db.DropPrefix(b.prefix); err != nil {
		return apperrors.Wrap(err, "failed to clear records")
	}
	return nil
}

// Ping reports whether the database is still open.
func (b *BadgerRecordStore) Ping(_ context.Context) error {
	if b.db.IsClosed() {
		return errors.New("badger database is closed")
	}
	return nil
}

func validateNamespace(namespace string) error {
	if namespace == "" || strings.ContainsAny(namespace, "/\x00") {
		return apperrors.Wrapf(apperrors.ErrInvalidInput, "invalid namespace %q", namespace)
	}
	return nil
}
