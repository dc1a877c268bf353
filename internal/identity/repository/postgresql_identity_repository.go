// Package repository provides data persistence implementations for identity entities.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/allisson/tokenauth/internal/database"
	"github.com/allisson/tokenauth/internal/identity/domain"

	apperrors "github.com/allisson/tokenauth/internal/errors"
)

// pqUniqueViolation is the SQLSTATE raised for unique constraint violations.
const pqUniqueViolation = "23505"

// PostgreSQLIdentityRepository handles identity persistence for PostgreSQL.
type PostgreSQLIdentityRepository struct {
	db *sql.DB
}

// NewPostgreSQLIdentityRepository creates a new PostgreSQLIdentityRepository.
func NewPostgreSQLIdentityRepository(db *sql.DB) *PostgreSQLIdentityRepository {
	return &PostgreSQLIdentityRepository{
		db: db,
	}
}

// Save inserts the identity or updates the row with the same ID.
// A different identity holding the same email yields ErrDuplicateIdentity.
func (r *PostgreSQLIdentityRepository) Save(ctx context.Context, identity *domain.Identity) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO identities (id, first_name, last_name, email, password, capability, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			  ON CONFLICT (id) DO UPDATE SET
				first_name = EXCLUDED.first_name,
				last_name = EXCLUDED.last_name,
				email = EXCLUDED.email,
				password = EXCLUDED.password,
				capability = EXCLUDED.capability,
				updated_at = EXCLUDED.updated_at`

	_, err := querier.ExecContext(
		ctx,
		query,
		identity.ID,
		identity.FirstName,
		identity.LastName,
		identity.Email,
		identity.Password,
		string(identity.Capability),
		identity.CreatedAt,
		identity.UpdatedAt,
	)
	if err != nil {
		if isPostgreSQLUniqueViolation(err) {
			return domain.ErrDuplicateIdentity
		}
		return apperrors.Wrap(err, "failed to save identity")
	}
	return nil
}

// GetByEmail retrieves an identity by email.
func (r *PostgreSQLIdentityRepository) GetByEmail(ctx context.Context, email string) (*domain.Identity, error) {
	var identity domain.Identity
	var capability string
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, first_name, last_name, email, password, capability, created_at, updated_at
			  FROM identities WHERE email = $1`

	err := querier.QueryRowContext(ctx, query, email).Scan(
		&identity.ID,
		&identity.FirstName,
		&identity.LastName,
		&identity.Email,
		&identity.Password,
		&capability,
		&identity.CreatedAt,
		&identity.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrIdentityNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get identity by email")
	}

	identity.Capability = domain.Capability(capability)
	return &identity, nil
}

// GetByUsername retrieves an identity by the username bound into its tokens.
func (r *PostgreSQLIdentityRepository) GetByUsername(
	ctx context.Context,
	username string,
) (*domain.Identity, error) {
	return r.GetByEmail(ctx, username)
}

func isPostgreSQLUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pqUniqueViolation
	}
	return false
}
