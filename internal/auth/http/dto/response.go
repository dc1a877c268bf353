// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	"time"

	authDomain "github.com/allisson/tokenauth/internal/auth/domain"
	identityDomain "github.com/allisson/tokenauth/internal/identity/domain"
)

// TokenResponse contains an issued token and its expiration time.
type TokenResponse struct {
	Token     string    `json:"token"` //nolint:gosec // returned to its owner
	ExpiresAt time.Time `json:"expires_at"`
}

// MapIssuedTokenToResponse converts an issued token to an API response.
func MapIssuedTokenToResponse(issued *authDomain.IssuedToken) TokenResponse {
	return TokenResponse{
		Token:     issued.Token,
		ExpiresAt: issued.ExpiresAt.UTC(),
	}
}

// PrincipalResponse describes the principal of the current request.
type PrincipalResponse struct {
	Subject    string    `json:"subject"`
	IdentityID string    `json:"identity_id"`
	Capability string    `json:"capability"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// MapPrincipalToResponse converts a request principal to an API response.
func MapPrincipalToResponse(principal *authDomain.Principal) PrincipalResponse {
	return PrincipalResponse{
		Subject:    principal.Subject,
		IdentityID: principal.IdentityID.String(),
		Capability: string(principal.Capability),
		ExpiresAt:  principal.ExpiresAt.UTC(),
	}
}

// IdentityResponse represents an identity in API responses (excludes the credential hash).
type IdentityResponse struct {
	ID         string    `json:"id"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	Email      string    `json:"email"`
	Capability string    `json:"capability"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// MapIdentityToResponse converts a domain identity to an API response.
func MapIdentityToResponse(identity *identityDomain.Identity) IdentityResponse {
	return IdentityResponse{
		ID:         identity.ID.String(),
		FirstName:  identity.FirstName,
		LastName:   identity.LastName,
		Email:      identity.Email,
		Capability: string(identity.Capability),
		CreatedAt:  identity.CreatedAt,
		UpdatedAt:  identity.UpdatedAt,
	}
}

// MessageResponse is the body returned by the demo resource endpoints.
type MessageResponse struct {
	Message string `json:"message"`
	Subject string `json:"subject,omitempty"`
}
