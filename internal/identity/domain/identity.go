// Package domain defines the identity entity persisted by the identity store.
//
// An identity is created on registration and carries the capability used by route
// authorization. Its email doubles as the username bound into issued tokens.
package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/tokenauth/internal/errors"
)

// Capability is the authorization level attached to an identity.
type Capability string

// Supported capabilities, lowest privilege first.
const (
	CapabilityUser  Capability = "USER"
	CapabilityAdmin Capability = "ADMIN"
)

// DefaultCapability is assigned when registration does not request one.
const DefaultCapability = CapabilityUser

var capabilityRank = map[Capability]int{
	CapabilityUser:  1,
	CapabilityAdmin: 2,
}

// IsValid reports whether c is one of the supported capabilities.
func (c Capability) IsValid() bool {
	_, ok := capabilityRank[c]
	return ok
}

// Satisfies reports whether c grants required. With exact set only the same capability
// qualifies, otherwise any capability ranked at or above required does.
func (c Capability) Satisfies(required Capability, exact bool) bool {
	if !c.IsValid() || !required.IsValid() {
		return false
	}
	if exact {
		return c == required
	}
	return capabilityRank[c] >= capabilityRank[required]
}

// ParseCapability converts s into a Capability. An empty string yields DefaultCapability.
func ParseCapability(s string) (Capability, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultCapability, nil
	}
	c := Capability(strings.ToUpper(s))
	if !c.IsValid() {
		return "", ErrInvalidCapability
	}
	return c, nil
}

// Identity represents a registered account.
type Identity struct {
	ID         uuid.UUID
	FirstName  string
	LastName   string
	Email      string
	Password   string //nolint:gosec // credential hash, never the raw secret
	Capability Capability
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Username returns the value bound into tokens as their subject.
func (i *Identity) Username() string {
	return i.Email
}

// Domain-specific errors for identity operations.
var (
	// ErrIdentityNotFound indicates no identity exists for the given email or username.
	ErrIdentityNotFound = errors.Wrap(errors.ErrNotFound, "identity not found")

	// ErrDuplicateIdentity indicates an identity with the same email already exists.
	ErrDuplicateIdentity = errors.Wrap(errors.ErrConflict, "duplicate identity")

	// ErrInvalidCapability indicates an unknown capability name.
	ErrInvalidCapability = errors.Wrap(errors.ErrInvalidInput, "invalid capability")
)
