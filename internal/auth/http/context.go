// Package http provides HTTP middleware, handlers and utilities for authentication.
package http

import (
	"context"

	authDomain "github.com/allisson/tokenauth/internal/auth/domain"
)

// principalKey is a context key type for storing the request principal.
type principalKey struct{}

// WithPrincipal stores an authenticated principal in the context.
// This is typically called by the authentication middleware after successful token validation.
func WithPrincipal(ctx context.Context, principal *authDomain.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, principal)
}

// GetPrincipal retrieves the authenticated principal from the context.
// Returns (principal, true) if a principal is present, or (nil, false) for an
// unauthenticated request.
func GetPrincipal(ctx context.Context) (*authDomain.Principal, bool) {
	principal, ok := ctx.Value(principalKey{}).(*authDomain.Principal)
	return principal, ok && principal != nil
}
