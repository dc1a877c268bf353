// Package domain defines the authentication and authorization model: token claims,
// request principals, the route policy table and the error taxonomy.
package domain

import (
	"time"

	"github.com/google/uuid"

	identityDomain "github.com/allisson/tokenauth/internal/identity/domain"
)

// Reserved claim names. The token codec always writes them itself.
const (
	ClaimSubject   = "sub"
	ClaimIssuedAt  = "iat"
	ClaimExpiresAt = "exp"
	ClaimIssuer    = "iss"
)

// MinSigningKeyLength is the minimum HS256 key size in bytes.
const MinSigningKeyLength = 32

// IsReservedClaim reports whether name is written by the codec and cannot be supplied as an extra claim.
func IsReservedClaim(name string) bool {
	switch name {
	case ClaimSubject, ClaimIssuedAt, ClaimExpiresAt:
		return true
	}
	return false
}

// Claims is the decoded content of a valid token.
type Claims struct {
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
	// Extra holds every non-reserved claim, including a configured issuer.
	Extra map[string]any
}

// Principal is the identity established for a single request.
// Capability is read from the identity store at request time, never from the token.
type Principal struct {
	Subject    string
	IdentityID uuid.UUID
	Capability identityDomain.Capability
	ExpiresAt  time.Time
}

// RegisterInput contains the parameters for registering a new identity.
type RegisterInput struct {
	FirstName  string
	LastName   string
	Email      string
	Secret     string //nolint:gosec // raw secret, hashed before storage and never logged
	Capability identityDomain.Capability
}

// LoginInput contains the credentials presented at login.
type LoginInput struct {
	Email  string
	Secret string //nolint:gosec // raw secret, never logged
}

// IssuedToken is the result of a successful registration or login.
type IssuedToken struct {
	Token     string
	ExpiresAt time.Time
}
