package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	authDomain "github.com/allisson/tokenauth/internal/auth/domain"
	authHTTP "github.com/allisson/tokenauth/internal/auth/http"
	authService "github.com/allisson/tokenauth/internal/auth/service"
	authUseCase "github.com/allisson/tokenauth/internal/auth/usecase"
	identityRepository "github.com/allisson/tokenauth/internal/identity/repository"
)

// signingKeyLoadTimeout bounds a KMS round trip when the signing secret is wrapped.
const signingKeyLoadTimeout = 30 * time.Second

// authComponents holds the lazily built authentication and authorization components.
type authComponents struct {
	kmsService        authService.KMSService
	credentialService authService.CredentialService
	signingKey        []byte
	tokenService      authService.TokenService
	routePolicy       *authDomain.RoutePolicy
	tokenCarrier      *authHTTP.TokenCarrier
	identityRepo      authUseCase.IdentityRepository
	authUseCase       authUseCase.AuthUseCase
	authHandler       *authHTTP.AuthHandler
	identityHandler   *authHTTP.IdentityHandler
	demoHandler       *authHTTP.DemoHandler

	kmsServiceInit        sync.Once
	credentialServiceInit sync.Once
	signingKeyInit        sync.Once
	tokenServiceInit      sync.Once
	routePolicyInit       sync.Once
	tokenCarrierInit      sync.Once
	identityRepoInit      sync.Once
	authUseCaseInit       sync.Once
	authHandlerInit       sync.Once
	identityHandlerInit   sync.Once
	demoHandlerInit       sync.Once
}

// KMSService returns the gocloud.dev keeper opener used to unwrap the signing secret.
func (c *Container) KMSService() authService.KMSService {
	c.kmsServiceInit.Do(func() {
		c.kmsService = authService.NewKMSService()
	})
	return c.kmsService
}

// CredentialService returns the credential verifier.
func (c *Container) CredentialService() authService.CredentialService {
	c.credentialServiceInit.Do(func() {
		c.credentialService = authService.NewCredentialService()
	})
	return c.credentialService
}

// SigningKey returns the token signing key, decoded and unwrapped from configuration.
func (c *Container) SigningKey() ([]byte, error) {
	c.signingKeyInit.Do(func() {
		key, err := c.initSigningKey()
		c.signingKey = key
		c.setInitError("signingKey", err)
	})
	if err := c.initError("signingKey"); err != nil {
		return nil, err
	}
	return c.signingKey, nil
}

// TokenService returns the token codec.
func (c *Container) TokenService() (authService.TokenService, error) {
	c.tokenServiceInit.Do(func() {
		tokenService, err := c.initTokenService()
		c.tokenService = tokenService
		c.setInitError("tokenService", err)
	})
	if err := c.initError("tokenService"); err != nil {
		return nil, err
	}
	return c.tokenService, nil
}

// RoutePolicy returns the route authorization table, loaded from AUTH_ROUTE_POLICY_FILE
// when set.
func (c *Container) RoutePolicy() (*authDomain.RoutePolicy, error) {
	c.routePolicyInit.Do(func() {
		policy, err := c.initRoutePolicy()
		c.routePolicy = policy
		c.setInitError("routePolicy", err)
	})
	if err := c.initError("routePolicy"); err != nil {
		return nil, err
	}
	return c.routePolicy, nil
}

// TokenCarrier returns the configured token transport.
func (c *Container) TokenCarrier() (*authHTTP.TokenCarrier, error) {
	c.tokenCarrierInit.Do(func() {
		carrier, err := authHTTP.NewTokenCarrier(
			c.config.AuthTokenCarrier,
			c.config.AuthTokenCookieName,
			c.config.AuthTokenCookieSecure,
		)
		c.tokenCarrier = carrier
		c.setInitError("tokenCarrier", err)
	})
	if err := c.initError("tokenCarrier"); err != nil {
		return nil, err
	}
	return c.tokenCarrier, nil
}

// IdentityRepository returns the identity store for the configured driver.
func (c *Container) IdentityRepository() (authUseCase.IdentityRepository, error) {
	c.identityRepoInit.Do(func() {
		repo, err := c.initIdentityRepository()
		c.identityRepo = repo
		c.setInitError("identityRepo", err)
	})
	if err := c.initError("identityRepo"); err != nil {
		return nil, err
	}
	return c.identityRepo, nil
}

// AuthUseCase returns the authentication service.
func (c *Container) AuthUseCase() (authUseCase.AuthUseCase, error) {
	c.authUseCaseInit.Do(func() {
		uc, err := c.initAuthUseCase()
		c.authUseCase = uc
		c.setInitError("authUseCase", err)
	})
	if err := c.initError("authUseCase"); err != nil {
		return nil, err
	}
	return c.authUseCase, nil
}

// AuthHandler returns the HTTP handler for register, authenticate, me and logout.
func (c *Container) AuthHandler() (*authHTTP.AuthHandler, error) {
	c.authHandlerInit.Do(func() {
		handler, err := c.initAuthHandler()
		c.authHandler = handler
		c.setInitError("authHandler", err)
	})
	if err := c.initError("authHandler"); err != nil {
		return nil, err
	}
	return c.authHandler, nil
}

// IdentityHandler returns the HTTP handler for identity lookups.
func (c *Container) IdentityHandler() (*authHTTP.IdentityHandler, error) {
	c.identityHandlerInit.Do(func() {
		uc, err := c.AuthUseCase()
		if err != nil {
			c.setInitError("identityHandler", fmt.Errorf("failed to get auth use case for identity handler: %w", err))
			return
		}
		c.identityHandler = authHTTP.NewIdentityHandler(uc, c.Logger())
	})
	if err := c.initError("identityHandler"); err != nil {
		return nil, err
	}
	return c.identityHandler, nil
}

// DemoHandler returns the handler serving the demonstration routes.
func (c *Container) DemoHandler() *authHTTP.DemoHandler {
	c.demoHandlerInit.Do(func() {
		c.demoHandler = authHTTP.NewDemoHandler()
	})
	return c.demoHandler
}

func (c *Container) initSigningKey() ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), signingKeyLoadTimeout)
	defer cancel()

	key, err := authService.LoadSigningKey(ctx, c.KMSService(), authService.SigningKeyConfig{
		Secret:    c.config.AuthSigningSecret,
		Encoding:  c.config.AuthSigningSecretEncoding,
		KMSKeyURI: c.config.AuthSigningSecretKMSKeyURI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load signing key: %w", err)
	}
	return key, nil
}

func (c *Container) initTokenService() (authService.TokenService, error) {
	key, err := c.SigningKey()
	if err != nil {
		return nil, err
	}

	var staticClaims map[string]any
	if c.config.AuthTokenIssuer != "" {
		staticClaims = map[string]any{"iss": c.config.AuthTokenIssuer}
	}

	tokenService, err := authService.NewTokenService(key, c.config.AuthTokenExpiration, staticClaims)
	if err != nil {
		return nil, fmt.Errorf("failed to create token service: %w", err)
	}
	return tokenService, nil
}

func (c *Container) initRoutePolicy() (*authDomain.RoutePolicy, error) {
	if c.config.AuthRoutePolicyFile == "" {
		return authDomain.DefaultRoutePolicy(), nil
	}
	policy, err := authService.LoadRoutePolicy(c.config.AuthRoutePolicyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load route policy: %w", err)
	}
	return policy, nil
}

func (c *Container) initIdentityRepository() (authUseCase.IdentityRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for identity repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return identityRepository.NewPostgreSQLIdentityRepository(db), nil
	case "mysql":
		return identityRepository.NewMySQLIdentityRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

func (c *Container) initAuthUseCase() (authUseCase.AuthUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for auth use case: %w", err)
	}

	identityRepo, err := c.IdentityRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get identity repository for auth use case: %w", err)
	}

	tokenService, err := c.TokenService()
	if err != nil {
		return nil, fmt.Errorf("failed to get token service for auth use case: %w", err)
	}

	baseUseCase := authUseCase.NewAuthUseCase(
		txManager,
		identityRepo,
		c.CredentialService(),
		tokenService,
		time.Now,
	)

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		authMetrics, err := c.AuthMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for auth use case: %w", err)
		}
		return authUseCase.NewAuthUseCaseWithMetrics(baseUseCase, authMetrics), nil
	}

	return baseUseCase, nil
}

func (c *Container) initAuthHandler() (*authHTTP.AuthHandler, error) {
	uc, err := c.AuthUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get auth use case for auth handler: %w", err)
	}

	carrier, err := c.TokenCarrier()
	if err != nil {
		return nil, fmt.Errorf("failed to get token carrier for auth handler: %w", err)
	}

	return authHTTP.NewAuthHandler(uc, carrier, c.Logger()), nil
}
