// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	validation "github.com/jellydator/validation"

	authDomain "github.com/allisson/tokenauth/internal/auth/domain"
	identityDomain "github.com/allisson/tokenauth/internal/identity/domain"
	customValidation "github.com/allisson/tokenauth/internal/validation"
)

// RegisterRequest contains the parameters for registering a new identity.
type RegisterRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"` //nolint:gosec // raw secret from the client
}

// Validate checks if the register request is valid.
func (r *RegisterRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.FirstName, validation.Length(0, 255)),
		validation.Field(&r.LastName, validation.Length(0, 255)),
		validation.Field(&r.Email,
			validation.Required,
			customValidation.NotBlank,
			customValidation.Email,
			validation.Length(3, 255),
		),
		validation.Field(&r.Password,
			validation.Required,
			customValidation.NotBlank,
			validation.Length(1, 1024),
		),
	)
}

// ToDomain converts the request into use case input. Self-registration always
// yields the default capability.
func (r *RegisterRequest) ToDomain() *authDomain.RegisterInput {
	return &authDomain.RegisterInput{
		FirstName:  r.FirstName,
		LastName:   r.LastName,
		Email:      r.Email,
		Secret:     r.Password,
		Capability: identityDomain.DefaultCapability,
	}
}

// AuthenticateRequest contains the credentials presented at login.
type AuthenticateRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"` //nolint:gosec // raw secret from the client
}

// Validate checks if the authenticate request is valid.
func (r *AuthenticateRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Email,
			validation.Required,
			customValidation.NotBlank,
			validation.Length(1, 255),
		),
		validation.Field(&r.Password,
			validation.Required,
			validation.Length(1, 1024),
		),
	)
}

// ToDomain converts the request into use case input.
func (r *AuthenticateRequest) ToDomain() *authDomain.LoginInput {
	return &authDomain.LoginInput{
		Email:  r.Email,
		Secret: r.Password,
	}
}
