package service

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authDomain "github.com/allisson/tokenauth/internal/auth/domain"
	apperrors "github.com/allisson/tokenauth/internal/errors"
	identityDomain "github.com/allisson/tokenauth/internal/identity/domain"
)

const testPolicyYAML = `
routes:
  - pattern: /api/v1/auth/**
    access: public
  - pattern: /api/v1/reports/*
    methods: [get]
    access: authenticated
  - pattern: /api/v1/reports/*
    access: capability
    capability: ADMIN
  - pattern: /api/v1/users-only
    access: capability
    capability: USER
    exact: true
`

func TestLoadRoutePolicy(t *testing.T) {
	t.Run("Success_DefaultWhenPathEmpty", func(t *testing.T) {
		policy, err := LoadRoutePolicy("")
		require.NoError(t, err)
		assert.Equal(t, len(authDomain.DefaultRouteRules()), len(policy.Rules()))
	})

	t.Run("Success_FromFile", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "routes.yaml")
		require.NoError(t, os.WriteFile(path, []byte(testPolicyYAML), 0o600))

		policy, err := LoadRoutePolicy(path)
		require.NoError(t, err)

		user := &authDomain.Principal{Subject: "a@x.com", Capability: identityDomain.CapabilityUser}
		admin := &authDomain.Principal{Subject: "root@x.com", Capability: identityDomain.CapabilityAdmin}

		assert.True(t, policy.Authorize("/api/v1/auth/register", "POST", nil).Allowed)
		assert.True(t, policy.Authorize("/api/v1/reports/q1", "GET", user).Allowed)
		assert.ErrorIs(t, policy.Authorize("/api/v1/reports/q1", "GET", nil).Err(), authDomain.ErrUnauthenticated)
		assert.ErrorIs(t, policy.Authorize("/api/v1/reports/q1", "DELETE", user).Err(), authDomain.ErrForbidden)
		assert.True(t, policy.Authorize("/api/v1/reports/q1", "DELETE", admin).Allowed)
		assert.ErrorIs(t, policy.Authorize("/api/v1/users-only", "GET", admin).Err(), authDomain.ErrForbidden)
		assert.ErrorIs(t, policy.Authorize("/api/v1/other", "GET", admin).Err(), authDomain.ErrNoRouteMatch)
	})

	t.Run("Error_MissingFile", func(t *testing.T) {
		policy, err := LoadRoutePolicy(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Nil(t, policy)
		assert.True(t, apperrors.Is(err, apperrors.ErrMisconfigured))
	})
}

func TestParseRoutePolicy_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"empty document", ""},
		{"no routes", "routes: []\n"},
		{"not yaml", "routes: [\n"},
		{"unknown field", "routes:\n  - pattern: /a\n    access: public\n    role: admin\n"},
		{"unknown access", "routes:\n  - pattern: /a\n    access: sometimes\n"},
		{"capability without name", "routes:\n  - pattern: /a\n    access: capability\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			policy, err := ParseRoutePolicy([]byte(tt.yaml))
			assert.Nil(t, policy)
			assert.ErrorIs(t, err, authDomain.ErrInvalidRoutePolicy)
		})
	}
}
