package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	apperrors "github.com/allisson/piivault/internal/errors"
	vaultDomain "github.com/allisson/piivault/internal/vault/domain"
)

// MySQLRecordStore implements record persistence for MySQL databases.
// The connection string must set parseTime=true.
type MySQLRecordStore struct {
	db        *sql.DB
	namespace string
}

// NewMySQLRecordStore creates a store for one namespace.
func NewMySQLRecordStore(db *sql.DB, namespace string) (*MySQLRecordStore, error) {
	if err := validateNamespace(namespace); err != nil {
		return nil, err
	}
	return &MySQLRecordStore{db: db, namespace: namespace}, nil
}

// Put upserts the record for token.
func (m *MySQLRecordStore) Put(ctx context.Context, token string, record *vaultDomain.EncryptedRecord) error {
	if err := record.Validate(); err != nil {
		return err
	}

	createdAt := record.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	query := `INSERT INTO vault_records (namespace, token, ciphertext, nonce, auth_tag, created_at)
			  VALUES (?, ?, ?, ?, ?, ?)
			  ON DUPLICATE KEY UPDATE
			  ciphertext = VALUES(ciphertext), nonce = VALUES(nonce),
			  auth_tag = VALUES(auth_tag), created_at = VALUES(created_at)`

	_, err := m.db.ExecContext(
		ctx,
		query,
		m.namespace,
		token,
		record.Ciphertext,
		record.Nonce,
		record.AuthTag,
		createdAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to put record")
	}
	return nil
}

// Get retrieves the record for token. Returns ErrRecordNotFound when absent.
func (m *MySQLRecordStore) Get(ctx context.Context, token string) (*vaultDomain.EncryptedRecord, error) {
	query := `SELECT ciphertext, nonce, auth_tag, created_at
			  FROM vault_records
			  WHERE namespace = ? AND token = ?`

	var record vaultDomain.EncryptedRecord
	err := m.db.QueryRowContext(ctx, query, m.namespace, token).Scan(
		&record.Ciphertext,
		&record.Nonce,
		&record.AuthTag,
		&record.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, vaultDomain.ErrRecordNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get record")
	}
	return &record, nil
}

// Has reports whether token has a record.
func (m *MySQLRecordStore) Has(ctx context.Context, token string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM vault_records WHERE namespace = ? AND token = ?)`

	var exists bool
	if err := m.db.QueryRowContext(ctx, query, m.namespace, token).Scan(&exists); err != nil {
		return false, apperrors.Wrap(err, "failed to check record")
	}
	return exists, nil
}

// Count returns the number of records in the namespace.
func (m *MySQLRecordStore) Count(ctx context.Context) (int64, error) {
	query := `SELECT COUNT(*) FROM vault_records WHERE namespace = ?`

	var count int64
	if err := m.db.QueryRowContext(ctx, query, m.namespace).Scan(&count); err != nil {
		return 0, apperrors.Wrap(err, "failed to count records")
	}
	return count, nil
}

// Clear deletes every record in the namespace.
func (m *MySQLRecordStore) Clear(ctx context.Context) error {
	query := `DELETE FROM vault_records WHERE namespace = ?`

	if _, err := m.db.ExecContext(ctx, query, m.namespace); err != nil {
		return apperrors.Wrap(err, "failed to clear records")
	}
	return nil
}

// Ping checks database connectivity.
func (m *MySQLRecordStore) Ping(ctx context.Context) error {
	return m.db.PingContext(ctx)
}
