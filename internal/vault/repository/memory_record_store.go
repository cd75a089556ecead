package repository

import (
	"context"
	"sync"

	vaultDomain "github.com/allisson/piivault/internal/vault/domain"
)

// memoryShelf is the map shared by every namespace view of one memory store.
type memoryShelf struct {
	mu         sync.RWMutex
	namespaces map[string]map[string]*vaultDomain.EncryptedRecord
}

// MemoryRecordStore keeps records of one namespace in a process-local map. Records
// are copied on the way in and out. Nothing survives the process; use it for tests
// and ephemeral sessions.
type MemoryRecordStore struct {
	shelf     *memoryShelf
	namespace string
}

// NewMemoryRecordStore creates an empty store scoped to namespace.
func NewMemoryRecordStore(namespace string) (*MemoryRecordStore, error) {
	if err := validateNamespace(namespace); err != nil {
		return nil, err
	}
	shelf := &memoryShelf{namespaces: make(map[string]map[string]*vaultDomain.EncryptedRecord)}
	return &MemoryRecordStore{shelf: shelf, namespace: namespace}, nil
}

// WithNamespace returns a store over the same map scoped to namespace.
func (m *MemoryRecordStore) WithNamespace(namespace string) (*MemoryRecordStore, error) {
	if err := validateNamespace(namespace); err != nil {
		return nil, err
	}
	return &MemoryRecordStore{shelf: m.shelf, namespace: namespace}, nil
}

// Put stores a copy of the record.
func (m *MemoryRecordStore) Put(_ context.Context, token string, record *vaultDomain.EncryptedRecord) error {
	if err := record.Validate(); err != nil {
		return err
	}

	m.shelf.mu.Lock()
	defer m.shelf.mu.Unlock()

	records, ok := m.shelf.namespaces[m.namespace]
	if !ok {
		records = make(map[string]*vaultDomain.EncryptedRecord)
		m.shelf.namespaces[m.namespace] = records
	}
	records[token] = record.Clone()
	return nil
}

// Get returns a copy of the record or ErrRecordNotFound.
func (m *MemoryRecordStore) Get(_ context.Context, token string) (*vaultDomain.EncryptedRecord, error) {
	m.shelf.mu.RLock()
	defer m.shelf.mu.RUnlock()

	record, ok := m.shelf.namespaces[m.namespace][token]
	if !ok {
		return nil, vaultDomain.ErrRecordNotFound
	}
	return record.Clone(), nil
}

// Has reports whether token has a record.
func (m *MemoryRecordStore) Has(_ context.Context, token string) (bool, error) {
	m.shelf.mu.RLock()
	defer m.shelf.mu.RUnlock()

	_, ok := m.shelf.namespaces[m.namespace][token]
	return ok, nil
}

// Count returns the number of records in the namespace.
func (m *MemoryRecordStore) Count(_ context.Context) (int64, error) {
	m.shelf.mu.RLock()
	defer m.shelf.mu.RUnlock()
	return int64(len(m.shelf.namespaces[m.namespace])), nil
}

// Clear drops every record in the namespace.
func (m *MemoryRecordStore) Clear(_ context.Context) error {
	m.shelf.mu.Lock()
	defer m.shelf.mu.Unlock()
	delete(m.shelf.namespaces, m.namespace)
	return nil
}

// Ping always succeeds.
func (m *MemoryRecordStore) Ping(_ context.Context) error {
	return nil
}
