package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	apperrors "github.com/allisson/piivault/internal/errors"
	vaultDomain "github.com/allisson/piivault/internal/vault/domain"
)

// PostgreSQLRecordStore implements record persistence for PostgreSQL databases.
type PostgreSQLRecordStore struct {
	db        *sql.DB
	namespace string
}

// NewPostgreSQLRecordStore creates a store for one namespace.
func NewPostgreSQLRecordStore(db *sql.DB, namespace string) (*PostgreSQLRecordStore, error) {
	if err := validateNamespace(namespace); err != nil {
		return nil, err
	}
	return &PostgreSQLRecordStore{db: db, namespace: namespace}, nil
}

// Put upserts the record for token.
func (p *PostgreSQLRecordStore) Put(ctx context.Context, token string, record *vaultDomain.EncryptedRecord) error {
	if err := record.Validate(); err != nil {
		return err
	}

	createdAt := record.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	query := `INSERT INTO vault_records (namespace, token, ciphertext, nonce, auth_tag, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  ON CONFLICT (namespace, token) DO UPDATE SET
			  ciphertext = EXCLUDED.ciphertext, nonce = EXCLUDED.nonce,
			  auth_tag = EXCLUDED.auth_tag, created_at = EXCLUDED.created_at`

	_, err := p.db.ExecContext(
		ctx,
		query,
		p.namespace,
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
func (p *PostgreSQLRecordStore) Get(ctx context.Context, token string) (*vaultDomain.EncryptedRecord, error) {
	query := `SELECT ciphertext, nonce, auth_tag, created_at
			  FROM vault_records
			  WHERE namespace = $1 AND token = $2`

	var record vaultDomain.EncryptedRecord
	err := p.db.QueryRowContext(ctx, query, p.namespace, token).Scan(
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
func (p *PostgreSQLRecordStore) Has(ctx context.Context, token string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM vault_records WHERE namespace = $1 AND token = $2)`

	var exists bool
	if err := p.db.QueryRowContext(ctx, query, p.namespace, token).Scan(&exists); err != nil {
		return false, apperrors.Wrap(err, "failed to check record")
	}
	return exists, nil
}

// Count returns the number of records in the namespace.
func (p *PostgreSQLRecordStore) Count(ctx context.Context) (int64, error) {
	query := `SELECT COUNT(*) FROM vault_records WHERE namespace = $1`

	var count int64
	if err := p.db.QueryRowContext(ctx, query, p.namespace).Scan(&count); err != nil {
		return 0, apperrors.Wrap(err, "failed to count records")
	}
	return count, nil
}

// Clear deletes every record in the namespace.
func (p *PostgreSQLRecordStore) Clear(ctx context.Context) error {
	query := `DELETE FROM vault_records WHERE namespace = $1`

	if _, err := p.db.ExecContext(ctx, query, p.namespace); err != nil {
		return apperrors.Wrap(err, "failed to clear records")
	}
	return nil
}

// Ping checks database connectivity.
func (p *PostgreSQLRecordStore) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}
