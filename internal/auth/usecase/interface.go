// Package usecase defines business logic interfaces for authentication and authorization operations.
package usecase

import (
	"context"

	authDomain "github.com/allisson/tokenauth/internal/auth/domain"
	identityDomain "github.com/allisson/tokenauth/internal/identity/domain"
)

// IdentityRepository defines persistence operations for identities.
// Implementations must support transaction-aware operations via context propagation.
type IdentityRepository interface {
	// Save inserts or updates an identity. Returns ErrDuplicateIdentity when another
	// identity already holds the email.
	Save(ctx context.Context, identity *identityDomain.Identity) error

	// GetByEmail retrieves an identity by email. Returns ErrIdentityNotFound if not found.
	GetByEmail(ctx context.Context, email string) (*identityDomain.Identity, error)

	// GetByUsername retrieves an identity by token subject. Returns ErrIdentityNotFound if not found.
	GetByUsername(ctx context.Context, username string) (*identityDomain.Identity, error)
}

// AuthUseCase defines registration, login and per-request token authentication.
type AuthUseCase interface {
	// Register creates an identity and issues a token bound to its username.
	//
	// The capability defaults to USER when unset. Returns ErrDuplicateIdentity if the
	// email is already registered; no record is written in that case.
	Register(ctx context.Context, input *authDomain.RegisterInput) (*authDomain.IssuedToken, error)

	// Login verifies credentials and issues a token.
	//
	// Returns ErrUnknownIdentity or ErrInvalidCredential. Both wrap ErrUnauthorized and
	// are rendered identically at the HTTP boundary.
	Login(ctx context.Context, input *authDomain.LoginInput) (*authDomain.IssuedToken, error)

	// Authenticate validates a bearer token and builds the request principal.
	//
	// Token failures return ErrMalformedToken, ErrBadSignature or ErrExpiredToken.
	// A valid token whose subject no longer exists returns ErrPrincipalNotFound.
	// The capability is read from the identity store, never from the token.
	Authenticate(ctx context.Context, token string) (*authDomain.Principal, error)

	// GetIdentity retrieves an identity by email. Returns ErrIdentityNotFound if not found.
	GetIdentity(ctx context.Context, email string) (*identityDomain.Identity, error)
}
