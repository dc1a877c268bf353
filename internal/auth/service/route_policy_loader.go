package service

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	authDomain "github.com/allisson/tokenauth/internal/auth/domain"
	apperrors "github.com/allisson/tokenauth/internal/errors"
)

// routePolicyFile is the YAML layout of a route policy file:
//
//	routes:
//	  - pattern: /api/v1/auth/**
//	    access: public
//	  - pattern: /api/v1/admin/**
//	    methods: [GET]
//	    access: capability
//	    capability: ADMIN
type routePolicyFile struct {
	Routes []authDomain.RouteRule `yaml:"routes"`
}

// LoadRoutePolicy reads the route table at path. An empty path selects the built-in table.
func LoadRoutePolicy(path string) (*authDomain.RoutePolicy, error) {
	if path == "" {
		return authDomain.DefaultRoutePolicy(), nil
	}

	data, err := os.ReadFile(path) //nolint:gosec // operator-supplied configuration path
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrMisconfigured, fmt.Sprintf("failed to read route policy: %v", err))
	}
	return ParseRoutePolicy(data)
}

// ParseRoutePolicy decodes a YAML route table. Unknown fields are rejected.
func ParseRoutePolicy(data []byte) (*authDomain.RoutePolicy, error) {
	var file routePolicyFile

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil {
		return nil, fmt.Errorf("%w: %s", authDomain.ErrInvalidRoutePolicy, err.Error())
	}
	if len(file.Routes) == 0 {
		return nil, fmt.Errorf("%w: no routes defined", authDomain.ErrInvalidRoutePolicy)
	}

	return authDomain.NewRoutePolicy(file.Routes)
}
