package http

import (
	"errors"
	"log/slog"

	"github.com/gin-gonic/gin"

	authDomain "github.com/allisson/tokenauth/internal/auth/domain"
	authUseCase "github.com/allisson/tokenauth/internal/auth/usecase"
	"github.com/allisson/tokenauth/internal/httputil"
	"github.com/allisson/tokenauth/internal/metrics"
)

// AuthenticationMiddleware establishes the request principal from the presented token.
//
// A missing, malformed, badly signed or expired token leaves the request unauthenticated
// and the chain continues; AuthorizationMiddleware decides whether that is acceptable for
// the route. A valid token whose subject no longer exists aborts with 401, as does a
// failure of the identity store.
func AuthenticationMiddleware(
	authUseCase authUseCase.AuthUseCase,
	carrier *TokenCarrier,
	logger *slog.Logger,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := carrier.Extract(c.Request)
		if token == "" {
			c.Next()
			return
		}

		principal, err := authUseCase.Authenticate(c.Request.Context(), token)
		if err != nil {
			if isTokenError(err) {
				logger.Debug("token rejected, continuing unauthenticated",
					slog.String("reason", err.Error()),
					slog.String("path", c.Request.URL.Path))
				c.Next()
				return
			}
			logger.Debug("authentication failed", slog.Any("error", err))
			httputil.HandleErrorGin(c, err, logger)
			c.Abort()
			return
		}

		ctx := WithPrincipal(c.Request.Context(), principal)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// AuthorizationMiddleware applies the route policy to every request.
//
// MUST run after AuthenticationMiddleware. Denials are rendered as 401 for missing
// authentication and 403 for insufficient capability or an unlisted route.
func AuthorizationMiddleware(
	policy *authDomain.RoutePolicy,
	decisions metrics.DecisionMetrics,
	logger *slog.Logger,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, _ := GetPrincipal(c.Request.Context())
		path := c.Request.URL.Path

		decision := policy.Authorize(path, c.Request.Method, principal)
		decisions.RecordDecision(c.Request.Context(), decisionOutcome(decision), denialReason(decision))

		if !decision.Allowed {
			attrs := []any{
				slog.String("path", path),
				slog.String("method", c.Request.Method),
				slog.String("reason", decision.Reason.Error()),
			}
			if principal != nil {
				attrs = append(attrs, slog.String("subject", principal.Subject))
			}
			logger.Debug("authorization denied", attrs...)
			httputil.HandleErrorGin(c, decision.Err(), logger)
			c.Abort()
			return
		}

		c.Next()
	}
}

func isTokenError(err error) bool {
	return errors.Is(err, authDomain.ErrMalformedToken) ||
		errors.Is(err, authDomain.ErrBadSignature) ||
		errors.Is(err, authDomain.ErrExpiredToken)
}

func decisionOutcome(decision authDomain.Decision) string {
	if decision.Allowed {
		return "allow"
	}
	return "deny"
}

func denialReason(decision authDomain.Decision) string {
	switch {
	case decision.Allowed:
		return ""
	case errors.Is(decision.Reason, authDomain.ErrUnauthenticated):
		return "unauthenticated"
	case errors.Is(decision.Reason, authDomain.ErrNoRouteMatch):
		return "no_route_match"
	default:
		return "forbidden"
	}
}
