// Package usecase implements business logic orchestration for authentication operations.
package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/allisson/tokenauth/internal/auth/domain"
	authService "github.com/allisson/tokenauth/internal/auth/service"
	"github.com/allisson/tokenauth/internal/database"
	identityDomain "github.com/allisson/tokenauth/internal/identity/domain"
)

// Clock returns the current time. Token issuance and validation read it once per call.
type Clock func() time.Time

// authUseCase implements AuthUseCase.
type authUseCase struct {
	txManager         database.TxManager
	identityRepo      IdentityRepository
	credentialService authService.CredentialService
	tokenService      authService.TokenService
	now               Clock
}

// Register creates a new identity and returns a token for it.
//
// The secret is hashed before the transaction starts. Inside the transaction the email is
// checked for uniqueness and the identity is saved; the repository's unique index covers
// concurrent registrations that pass the check together.
func (a *authUseCase) Register(
	ctx context.Context,
	input *authDomain.RegisterInput,
) (*authDomain.IssuedToken, error) {
	capability := input.Capability
	if capability == "" {
		capability = identityDomain.DefaultCapability
	}
	if !capability.IsValid() {
		return nil, identityDomain.ErrInvalidCapability
	}

	hashedSecret, err := a.credentialService.HashSecret(input.Secret)
	if err != nil {
		return nil, err
	}

	now := a.now().UTC()
	identity := &identityDomain.Identity{
		ID:         uuid.Must(uuid.NewV7()),
		FirstName:  strings.TrimSpace(input.FirstName),
		LastName:   strings.TrimSpace(input.LastName),
		Email:      normalizeEmail(input.Email),
		Password:   hashedSecret,
		Capability: capability,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	err = a.txManager.WithTx(ctx, func(ctx context.Context) error {
		_, err := a.identityRepo.GetByEmail(ctx, identity.Email)
		if err == nil {
			return identityDomain.ErrDuplicateIdentity
		}
		if !errors.Is(err, identityDomain.ErrIdentityNotFound) {
			return err
		}
		return a.identityRepo.Save(ctx, identity)
	})
	if err != nil {
		return nil, err
	}

	return a.issue(identity, now)
}

// Login verifies the presented secret and returns a token.
//
// Unknown emails still pay for one hash verification so both failure branches take
// comparable time.
func (a *authUseCase) Login(ctx context.Context, input *authDomain.LoginInput) (*authDomain.IssuedToken, error) {
	identity, err := a.identityRepo.GetByEmail(ctx, normalizeEmail(input.Email))
	if err != nil {
		if errors.Is(err, identityDomain.ErrIdentityNotFound) {
			a.credentialService.VerifyUnknown(input.Secret)
			return nil, authDomain.ErrUnknownIdentity
		}
		return nil, err
	}

	if !a.credentialService.VerifySecret(input.Secret, identity.Password) {
		return nil, authDomain.ErrInvalidCredential
	}

	return a.issue(identity, a.now().UTC())
}

// Authenticate validates token and resolves its subject against the identity store.
func (a *authUseCase) Authenticate(ctx context.Context, token string) (*authDomain.Principal, error) {
	claims, err := a.tokenService.Validate(token, a.now())
	if err != nil {
		return nil, err
	}

	identity, err := a.identityRepo.GetByUsername(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, identityDomain.ErrIdentityNotFound) {
			return nil, authDomain.ErrPrincipalNotFound
		}
		return nil, err
	}

	return &authDomain.Principal{
		Subject:    identity.Username(),
		IdentityID: identity.ID,
		Capability: identity.Capability,
		ExpiresAt:  claims.ExpiresAt,
	}, nil
}

// GetIdentity retrieves an identity by email.
func (a *authUseCase) GetIdentity(ctx context.Context, email string) (*identityDomain.Identity, error) {
	return a.identityRepo.GetByEmail(ctx, normalizeEmail(email))
}

func (a *authUseCase) issue(identity *identityDomain.Identity, now time.Time) (*authDomain.IssuedToken, error) {
	token, expiresAt, err := a.tokenService.Issue(identity.Username(), nil, now)
	if err != nil {
		return nil, err
	}
	return &authDomain.IssuedToken{Token: token, ExpiresAt: expiresAt}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NewAuthUseCase creates a new AuthUseCase with the provided dependencies.
// A nil clock uses time.Now.
func NewAuthUseCase(
	txManager database.TxManager,
	identityRepo IdentityRepository,
	credentialService authService.CredentialService,
	tokenService authService.TokenService,
	clock Clock,
) AuthUseCase {
	if clock == nil {
		clock = time.Now
	}
	return &authUseCase{
		txManager:         txManager,
		identityRepo:      identityRepo,
		credentialService: credentialService,
		tokenService:      tokenService,
		now:               clock,
	}
}
