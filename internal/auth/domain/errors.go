package domain

import (
	"github.com/allisson/tokenauth/internal/errors"
)

// Token validation errors. The request authorizer recovers from all three by leaving the
// request unauthenticated.
var (
	// ErrMalformedToken indicates the token cannot be parsed or uses a disallowed algorithm.
	ErrMalformedToken = errors.Wrap(errors.ErrUnauthorized, "malformed token")

	// ErrBadSignature indicates the token MAC does not verify against the signing key.
	ErrBadSignature = errors.Wrap(errors.ErrUnauthorized, "bad token signature")

	// ErrExpiredToken indicates the current time is at or past the token expiry.
	ErrExpiredToken = errors.Wrap(errors.ErrUnauthorized, "token expired")
)

// Authentication errors.
var (
	// ErrPrincipalNotFound indicates a validly signed token names a subject that no longer exists.
	ErrPrincipalNotFound = errors.Wrap(errors.ErrUnauthorized, "principal not found")

	// ErrUnknownIdentity indicates login with an email that is not registered.
	ErrUnknownIdentity = errors.Wrap(errors.ErrUnauthorized, "unknown identity")

	// ErrInvalidCredential indicates login with a secret that does not match the stored hash.
	ErrInvalidCredential = errors.Wrap(errors.ErrUnauthorized, "invalid credential")
)

// Authorization denials.
var (
	// ErrUnauthenticated indicates the route requires a principal and none was established.
	ErrUnauthenticated = errors.Wrap(errors.ErrUnauthorized, "authentication required")

	// ErrForbidden indicates the principal lacks the capability required by the route.
	ErrForbidden = errors.Wrap(errors.ErrForbidden, "insufficient capability")

	// ErrNoRouteMatch indicates no route policy entry covers the request. Unlisted routes are closed.
	ErrNoRouteMatch = errors.Wrap(errors.ErrForbidden, "route not covered by policy")
)

// Configuration errors, fatal at startup.
var (
	// ErrReservedClaim indicates a static extra claim collides with sub, iat or exp.
	ErrReservedClaim = errors.Wrap(errors.ErrMisconfigured, "reserved claim name")

	// ErrSigningKeyTooShort indicates the signing key is below MinSigningKeyLength bytes.
	ErrSigningKeyTooShort = errors.Wrap(errors.ErrMisconfigured, "signing key too short")

	// ErrInvalidRoutePolicy indicates a route policy entry is unusable.
	ErrInvalidRoutePolicy = errors.Wrap(errors.ErrMisconfigured, "invalid route policy")
)
