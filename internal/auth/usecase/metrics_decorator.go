package usecase

import (
	"context"
	"errors"
	"time"

	authDomain "github.com/allisson/tokenauth/internal/auth/domain"
	apperrors "github.com/allisson/tokenauth/internal/errors"
	identityDomain "github.com/allisson/tokenauth/internal/identity/domain"
	"github.com/allisson/tokenauth/internal/metrics"
)

// authUseCaseWithMetrics decorates AuthUseCase with metrics instrumentation.
type authUseCaseWithMetrics struct {
	next    AuthUseCase
	metrics metrics.AuthMetrics
}

// NewAuthUseCaseWithMetrics wraps an AuthUseCase with metrics recording.
func NewAuthUseCaseWithMetrics(useCase AuthUseCase, m metrics.AuthMetrics) AuthUseCase {
	return &authUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (a *authUseCaseWithMetrics) Register(
	ctx context.Context,
	input *authDomain.RegisterInput,
) (*authDomain.IssuedToken, error) {
	start := time.Now()
	output, err := a.next.Register(ctx, input)
	a.metrics.RecordOperation(ctx, "register", outcomeOf(err), time.Since(start))
	return output, err
}

func (a *authUseCaseWithMetrics) Login(
	ctx context.Context,
	input *authDomain.LoginInput,
) (*authDomain.IssuedToken, error) {
	start := time.Now()
	output, err := a.next.Login(ctx, input)
	a.metrics.RecordOperation(ctx, "login", outcomeOf(err), time.Since(start))
	return output, err
}

func (a *authUseCaseWithMetrics) Authenticate(ctx context.Context, token string) (*authDomain.Principal, error) {
	start := time.Now()
	principal, err := a.next.Authenticate(ctx, token)
	a.metrics.RecordOperation(ctx, "authenticate", outcomeOf(err), time.Since(start))
	return principal, err
}

func (a *authUseCaseWithMetrics) GetIdentity(ctx context.Context, email string) (*identityDomain.Identity, error) {
	start := time.Now()
	identity, err := a.next.GetIdentity(ctx, email)
	a.metrics.RecordOperation(ctx, "identity_get", outcomeOf(err), time.Since(start))
	return identity, err
}

// outcomeOf maps err to a bounded label value.
func outcomeOf(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, authDomain.ErrMalformedToken):
		return "malformed_token"
	case errors.Is(err, authDomain.ErrBadSignature):
		return "bad_signature"
	case errors.Is(err, authDomain.ErrExpiredToken):
		return "expired_token"
	case errors.Is(err, authDomain.ErrPrincipalNotFound):
		return "principal_not_found"
	case errors.Is(err, authDomain.ErrUnknownIdentity):
		return "unknown_identity"
	case errors.Is(err, authDomain.ErrInvalidCredential):
		return "invalid_credential"
	case errors.Is(err, identityDomain.ErrDuplicateIdentity):
		return "duplicate_identity"
	case errors.Is(err, identityDomain.ErrIdentityNotFound):
		return "not_found"
	case apperrors.Is(err, apperrors.ErrInvalidInput):
		return "invalid_input"
	default:
		return "error"
	}
}
