package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/tokenauth/internal/errors"
	"github.com/allisson/tokenauth/internal/identity/domain"
)

var identityColumns = []string{
	"id", "first_name", "last_name", "email", "password", "capability", "created_at", "updated_at",
}

func newTestIdentity() *domain.Identity {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return &domain.Identity{
		ID:         uuid.Must(uuid.NewV7()),
		FirstName:  "Ada",
		LastName:   "Lovelace",
		Email:      "a@x.com",
		Password:   "$argon2id$v=19$m=65536,t=3,p=4$c2FsdA$aGFzaA",
		Capability: domain.CapabilityUser,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func TestNewPostgreSQLIdentityRepository(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	repo := NewPostgreSQLIdentityRepository(db)
	assert.NotNil(t, repo)
	assert.Equal(t, db, repo.db)
}

func TestPostgreSQLIdentityRepository_Save(t *testing.T) {
	t.Run("upsert", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		identity := newTestIdentity()
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO identities")).
			WithArgs(
				identity.ID.String(),
				identity.FirstName,
				identity.LastName,
				identity.Email,
				identity.Password,
				"USER",
				identity.CreatedAt,
				identity.UpdatedAt,
			).
			WillReturnResult(sqlmock.NewResult(0, 1))

		repo := NewPostgreSQLIdentityRepository(db)
		require.NoError(t, repo.Save(context.Background(), identity))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate email", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO identities")).
			WillReturnError(&pq.Error{Code: pqUniqueViolation, Message: "duplicate key value"})

		repo := NewPostgreSQLIdentityRepository(db)
		err = repo.Save(context.Background(), newTestIdentity())
		assert.ErrorIs(t, err, domain.ErrDuplicateIdentity)
		assert.True(t, apperrors.Is(err, apperrors.ErrConflict))
	})

	t.Run("other database error", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		dbErr := errors.New("connection reset")
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO identities")).WillReturnError(dbErr)

		repo := NewPostgreSQLIdentityRepository(db)
		err = repo.Save(context.Background(), newTestIdentity())
		assert.ErrorIs(t, err, dbErr)
		assert.NotErrorIs(t, err, domain.ErrDuplicateIdentity)
	})
}

func TestPostgreSQLIdentityRepository_GetByEmail(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		expected := newTestIdentity()
		expected.Capability = domain.CapabilityAdmin
		rows := sqlmock.NewRows(identityColumns).AddRow(
			expected.ID.String(),
			expected.FirstName,
			expected.LastName,
			expected.Email,
			expected.Password,
			"ADMIN",
			expected.CreatedAt,
			expected.UpdatedAt,
		)
		mock.ExpectQuery(regexp.QuoteMeta("FROM identities WHERE email = $1")).
			WithArgs("a@x.com").
			WillReturnRows(rows)

		repo := NewPostgreSQLIdentityRepository(db)
		identity, err := repo.GetByEmail(context.Background(), "a@x.com")
		require.NoError(t, err)
		assert.Equal(t, expected, identity)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		mock.ExpectQuery(regexp.QuoteMeta("FROM identities WHERE email = $1")).
			WithArgs("missing@x.com").
			WillReturnRows(sqlmock.NewRows(identityColumns))

		repo := NewPostgreSQLIdentityRepository(db)
		identity, err := repo.GetByEmail(context.Background(), "missing@x.com")
		assert.Nil(t, identity)
		assert.ErrorIs(t, err, domain.ErrIdentityNotFound)
	})
}

func TestPostgreSQLIdentityRepository_GetByUsername(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	expected := newTestIdentity()
	rows := sqlmock.NewRows(identityColumns).AddRow(
		expected.ID.String(),
		expected.FirstName,
		expected.LastName,
		expected.Email,
		expected.Password,
		"USER",
		expected.CreatedAt,
		expected.UpdatedAt,
	)
	mock.ExpectQuery(regexp.QuoteMeta("FROM identities WHERE email = $1")).
		WithArgs(expected.Username()).
		WillReturnRows(rows)

	repo := NewPostgreSQLIdentityRepository(db)
	identity, err := repo.GetByUsername(context.Background(), expected.Username())
	require.NoError(t, err)
	assert.Equal(t, expected.ID, identity.ID)
	assert.Equal(t, domain.CapabilityUser, identity.Capability)
}
