package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	authDomain "github.com/allisson/tokenauth/internal/auth/domain"
	"github.com/allisson/tokenauth/internal/auth/usecase"
	usecaseMocks "github.com/allisson/tokenauth/internal/auth/usecase/mocks"
	apperrors "github.com/allisson/tokenauth/internal/errors"
	identityDomain "github.com/allisson/tokenauth/internal/identity/domain"
)

type mockAuthMetrics struct {
	mock.Mock
}

func (m *mockAuthMetrics) RecordOperation(ctx context.Context, operation, outcome string, duration time.Duration) {
	m.Called(ctx, operation, outcome, duration)
}

func expectOutcome(ctx context.Context, m *mockAuthMetrics, operation, outcome string) {
	m.On("RecordOperation", ctx, operation, outcome, mock.AnythingOfType("time.Duration")).Return().Once()
}

func TestAuthUseCaseWithMetrics(t *testing.T) {
	ctx := context.Background()

	t.Run("Register success", func(t *testing.T) {
		mockNext := &usecaseMocks.MockAuthUseCase{}
		mockMetrics := &mockAuthMetrics{}
		uc := usecase.NewAuthUseCaseWithMetrics(mockNext, mockMetrics)

		input := &authDomain.RegisterInput{Email: "a@x.com", Secret: "s1"}
		output := &authDomain.IssuedToken{Token: "t"}
		mockNext.On("Register", ctx, input).Return(output, nil).Once()
		expectOutcome(ctx, mockMetrics, "register", "success")

		res, err := uc.Register(ctx, input)
		assert.NoError(t, err)
		assert.Equal(t, output, res)
		mockNext.AssertExpectations(t)
		mockMetrics.AssertExpectations(t)
	})

	t.Run("Register duplicate", func(t *testing.T) {
		mockNext := &usecaseMocks.MockAuthUseCase{}
		mockMetrics := &mockAuthMetrics{}
		uc := usecase.NewAuthUseCaseWithMetrics(mockNext, mockMetrics)

		input := &authDomain.RegisterInput{Email: "a@x.com", Secret: "s1"}
		mockNext.On("Register", ctx, input).Return(nil, identityDomain.ErrDuplicateIdentity).Once()
		expectOutcome(ctx, mockMetrics, "register", "duplicate_identity")

		res, err := uc.Register(ctx, input)
		assert.Nil(t, res)
		assert.ErrorIs(t, err, identityDomain.ErrDuplicateIdentity)
		mockMetrics.AssertExpectations(t)
	})

	t.Run("Login failures keep their class", func(t *testing.T) {
		mockNext := &usecaseMocks.MockAuthUseCase{}
		mockMetrics := &mockAuthMetrics{}
		uc := usecase.NewAuthUseCaseWithMetrics(mockNext, mockMetrics)

		unknown := &authDomain.LoginInput{Email: "nobody@x.com", Secret: "s1"}
		wrong := &authDomain.LoginInput{Email: "a@x.com", Secret: "bad"}
		mockNext.On("Login", ctx, unknown).Return(nil, authDomain.ErrUnknownIdentity).Once()
		mockNext.On("Login", ctx, wrong).Return(nil, authDomain.ErrInvalidCredential).Once()
		expectOutcome(ctx, mockMetrics, "login", "unknown_identity")
		expectOutcome(ctx, mockMetrics, "login", "invalid_credential")

		_, err := uc.Login(ctx, unknown)
		assert.ErrorIs(t, err, authDomain.ErrUnknownIdentity)
		_, err = uc.Login(ctx, wrong)
		assert.ErrorIs(t, err, authDomain.ErrInvalidCredential)
		mockMetrics.AssertExpectations(t)
	})

	t.Run("Authenticate", func(t *testing.T) {
		mockNext := &usecaseMocks.MockAuthUseCase{}
		mockMetrics := &mockAuthMetrics{}
		uc := usecase.NewAuthUseCaseWithMetrics(mockNext, mockMetrics)

		principal := &authDomain.Principal{Subject: "a@x.com"}
		mockNext.On("Authenticate", ctx, "good").Return(principal, nil).Once()
		mockNext.On("Authenticate", ctx, "old").Return(nil, authDomain.ErrExpiredToken).Once()
		mockNext.On("Authenticate", ctx, "gone").Return(nil, authDomain.ErrPrincipalNotFound).Once()
		expectOutcome(ctx, mockMetrics, "authenticate", "success")
		expectOutcome(ctx, mockMetrics, "authenticate", "expired_token")
		expectOutcome(ctx, mockMetrics, "authenticate", "principal_not_found")

		res, err := uc.Authenticate(ctx, "good")
		assert.NoError(t, err)
		assert.Equal(t, principal, res)
		_, err = uc.Authenticate(ctx, "old")
		assert.ErrorIs(t, err, authDomain.ErrExpiredToken)
		_, err = uc.Authenticate(ctx, "gone")
		assert.ErrorIs(t, err, authDomain.ErrPrincipalNotFound)
		mockMetrics.AssertExpectations(t)
	})

	t.Run("GetIdentity", func(t *testing.T) {
		mockNext := &usecaseMocks.MockAuthUseCase{}
		mockMetrics := &mockAuthMetrics{}
		uc := usecase.NewAuthUseCaseWithMetrics(mockNext, mockMetrics)

		mockNext.On("GetIdentity", ctx, "a@x.com").Return(nil, identityDomain.ErrIdentityNotFound).Once()
		mockNext.On("GetIdentity", ctx, "b@x.com").
			Return(nil, apperrors.Wrap(apperrors.ErrInvalidInput, "bad email")).Once()
		mockNext.On("GetIdentity", ctx, "c@x.com").Return(nil, errors.New("connection reset")).Once()
		expectOutcome(ctx, mockMetrics, "identity_get", "not_found")
		expectOutcome(ctx, mockMetrics, "identity_get", "invalid_input")
		expectOutcome(ctx, mockMetrics, "identity_get", "error")

		for _, email := range []string{"a@x.com", "b@x.com", "c@x.com"} {
			_, err := uc.GetIdentity(ctx, email)
			assert.Error(t, err)
		}
		mockMetrics.AssertExpectations(t)
	})
}
