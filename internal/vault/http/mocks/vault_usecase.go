// Package mocks provides testify mocks for the vault HTTP handlers.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	vaultDomain "github.com/allisson/piivault/internal/vault/domain"
)

// MockVaultUseCase is a mock implementation of usecase.VaultUseCase.
type MockVaultUseCase struct {
	mock.Mock
}

// Initialize mocks the Initialize method.
func (m *MockVaultUseCase) Initialize(ctx context.Context, sessionID, challenge string) error {
	args := m.Called(ctx, sessionID, challenge)
	return args.Error(0)
}

// Store mocks the Store method.
func (m *MockVaultUseCase) Store(ctx context.Context, token, value string) error {
	args := m.Called(ctx, token, value)
	return args.Error(0)
}

// StoreFromTokenMap mocks the StoreFromTokenMap method.
func (m *MockVaultUseCase) StoreFromTokenMap(ctx context.Context, tokens map[string]string) error {
	args := m.Called(ctx, tokens)
	return args.Error(0)
}

// Retrieve mocks the Retrieve method.
func (m *MockVaultUseCase) Retrieve(ctx context.Context, token string) (string, bool, error) {
	args := m.Called(ctx, token)
	return args.String(0), args.Bool(1), args.Error(2)
}

// RetrieveBatch mocks the RetrieveBatch method.
func (m *MockVaultUseCase) RetrieveBatch(ctx context.Context, tokens []string) (map[string]string, error) {
	args := m.Called(ctx, tokens)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]string), args.Error(1)
}

// HasToken mocks the HasToken method.
func (m *MockVaultUseCase) HasToken(ctx context.Context, token string) (bool, error) {
	args := m.Called(ctx, token)
	return args.Bool(0), args.Error(1)
}

// Stats mocks the Stats method.
func (m *MockVaultUseCase) Stats(ctx context.Context) (vaultDomain.Stats, error) {
	args := m.Called(ctx)
	return args.Get(0).(vaultDomain.Stats), args.Error(1)
}

// Wipe mocks the Wipe method.
func (m *MockVaultUseCase) Wipe(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// IsReady mocks the IsReady method.
func (m *MockVaultUseCase) IsReady() bool {
	args := m.Called()
	return args.Bool(0)
}

// Subscribe mocks the Subscribe method.
func (m *MockVaultUseCase) Subscribe(listener func()) func() {
	args := m.Called(listener)
	if args.Get(0) == nil {
		return func() {}
	}
	return args.Get(0).(func())
}
