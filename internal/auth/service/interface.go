// Package service provides the technical services behind authentication: credential
// hashing, the signed token codec, signing key loading and route policy loading.
package service

import (
	"context"
	"time"

	authDomain "github.com/allisson/tokenauth/internal/auth/domain"
)

// CredentialService hashes and verifies identity secrets.
type CredentialService interface {
	// HashSecret hashes a raw secret for storage.
	HashSecret(rawSecret string) (hashedSecret string, err error)

	// VerifySecret reports whether rawSecret matches hashedSecret. The comparison is
	// constant-time and never returns or logs the raw secret.
	VerifySecret(rawSecret string, hashedSecret string) bool

	// VerifyUnknown runs a verification against an internal dummy hash and returns false.
	// It gives logins for unknown identities the same cost as a wrong secret.
	VerifyUnknown(rawSecret string) bool
}

// TokenService encodes and validates signed, stateless tokens.
type TokenService interface {
	// Issue signs a token for subject valid from now for the configured window.
	// Reserved claims always override entries of extra with the same name.
	Issue(subject string, extra map[string]any, now time.Time) (token string, expiresAt time.Time, err error)

	// Validate checks structure, algorithm, signature and expiry, in that order.
	Validate(token string, now time.Time) (*authDomain.Claims, error)

	// ExtractSubject validates token and returns its subject.
	ExtractSubject(token string, now time.Time) (string, error)

	// ValidityWindow returns the configured token lifetime.
	ValidityWindow() time.Duration
}

// KMSKeeper is the subset of *secrets.Keeper used for KMS-wrapped signing secrets.
type KMSKeeper interface {
	Encrypt(ctx context.Context, plaintext []byte) ([]byte, error)
	Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error)
	Close() error
}

// KMSService opens keepers for gocloud.dev key URIs.
type KMSService interface {
	// OpenKeeper opens a keeper for keyURI.
	OpenKeeper(ctx context.Context, keyURI string) (KMSKeeper, error)
}
