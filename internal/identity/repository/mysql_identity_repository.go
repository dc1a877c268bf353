package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"

	"github.com/allisson/tokenauth/internal/database"
	"github.com/allisson/tokenauth/internal/identity/domain"

	apperrors "github.com/allisson/tokenauth/internal/errors"
)

// mysqlDuplicateEntry is the MySQL error number for duplicate keys.
const mysqlDuplicateEntry = 1062

// MySQLIdentityRepository handles identity persistence for MySQL.
type MySQLIdentityRepository struct {
	db *sql.DB
}

// NewMySQLIdentityRepository creates a new MySQLIdentityRepository.
func NewMySQLIdentityRepository(db *sql.DB) *MySQLIdentityRepository {
	return &MySQLIdentityRepository{
		db: db,
	}
}

// Save inserts the identity or updates the row with the same ID.
//
// ON DUPLICATE KEY UPDATE would also fire on the email index and overwrite another
// identity, so the existing row is looked up by ID first.
func (r *MySQLIdentityRepository) Save(ctx context.Context, identity *domain.Identity) error {
	querier := database.GetTx(ctx, r.db)

	// Convert UUID to bytes for MySQL BINARY(16)
	uuidBytes, err := identity.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal UUID")
	}

	var exists bool
	err = querier.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM identities WHERE id = ?)`, uuidBytes).
		Scan(&exists)
	if err != nil {
		return apperrors.Wrap(err, "failed to check identity")
	}

	if exists {
		query := `UPDATE identities SET first_name = ?, last_name = ?, email = ?, password = ?,
				  capability = ?, updated_at = ? WHERE id = ?`
		_, err = querier.ExecContext(
			ctx,
			query,
			identity.FirstName,
			identity.LastName,
			identity.Email,
			identity.Password,
			string(identity.Capability),
			identity.UpdatedAt,
			uuidBytes,
		)
	} else {
		query := `INSERT INTO identities (id, first_name, last_name, email, password, capability, created_at, updated_at)
				  VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
		_, err = querier.ExecContext(
			ctx,
			query,
			uuidBytes,
			identity.FirstName,
			identity.LastName,
			identity.Email,
			identity.Password,
			string(identity.Capability),
			identity.CreatedAt,
			identity.UpdatedAt,
		)
	}
	if err != nil {
		if isMySQLUniqueViolation(err) {
			return domain.ErrDuplicateIdentity
		}
		return apperrors.Wrap(err, "failed to save identity")
	}
	return nil
}

// GetByEmail retrieves an identity by email.
func (r *MySQLIdentityRepository) GetByEmail(ctx context.Context, email string) (*domain.Identity, error) {
	var identity domain.Identity
	var idBytes []byte
	var capability string
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, first_name, last_name, email, password, capability, created_at, updated_at
			  FROM identities WHERE email = ?`

	err := querier.QueryRowContext(ctx, query, email).Scan(
		&idBytes,
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

	// Convert bytes back to UUID
	if err := identity.ID.UnmarshalBinary(idBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal UUID")
	}

	identity.Capability = domain.Capability(capability)
	return &identity, nil
}

// GetByUsername retrieves an identity by the username bound into its tokens.
func (r *MySQLIdentityRepository) GetByUsername(ctx context.Context, username string) (*domain.Identity, error) {
	return r.GetByEmail(ctx, username)
}

func isMySQLUniqueViolation(err error) bool {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == mysqlDuplicateEntry
	}
	return false
}
