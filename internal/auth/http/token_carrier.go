package http

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/allisson/tokenauth/internal/errors"
)

const (
	// CarrierHeader reads tokens from "Authorization: Bearer <token>".
	CarrierHeader = "header"

	// CarrierCookie reads tokens from a named cookie.
	CarrierCookie = "cookie"

	bearerPrefix = "bearer "
)

// TokenCarrier reads and writes the token on the single transport configured for the
// deployment. The other transport is ignored.
type TokenCarrier struct {
	kind         string
	cookieName   string
	cookieSecure bool
}

// NewTokenCarrier creates a carrier of the given kind.
func NewTokenCarrier(kind, cookieName string, cookieSecure bool) (*TokenCarrier, error) {
	switch kind {
	case CarrierHeader:
	case CarrierCookie:
		if strings.TrimSpace(cookieName) == "" {
			return nil, apperrors.Wrap(apperrors.ErrMisconfigured, "token cookie name is required")
		}
	default:
		return nil, apperrors.Wrap(apperrors.ErrMisconfigured, fmt.Sprintf("unknown token carrier %q", kind))
	}
	return &TokenCarrier{kind: kind, cookieName: cookieName, cookieSecure: cookieSecure}, nil
}

// Kind returns the configured carrier kind.
func (t *TokenCarrier) Kind() string {
	return t.kind
}

// Extract returns the token presented with the request, or "" when none was sent.
func (t *TokenCarrier) Extract(r *http.Request) string {
	if t.kind == CarrierCookie {
		cookie, err := r.Cookie(t.cookieName)
		if err != nil {
			return ""
		}
		return strings.TrimSpace(cookie.Value)
	}

	authHeader := r.Header.Get("Authorization")
	if len(authHeader) <= len(bearerPrefix) || !strings.EqualFold(authHeader[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(authHeader[len(bearerPrefix):])
}

// Store hands an issued token back to the client. With the header carrier the token is
// only returned in the response body, so this is a no-op.
func (t *TokenCarrier) Store(c *gin.Context, token string, expiresAt time.Time) {
	if t.kind != CarrierCookie {
		return
	}
	maxAge := int(time.Until(expiresAt).Seconds())
	if maxAge < 1 {
		maxAge = 1
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(t.cookieName, token, maxAge, "/", "", t.cookieSecure, true)
}

// Clear removes the client-held token. Tokens stay valid until they expire.
func (t *TokenCarrier) Clear(c *gin.Context) {
	if t.kind != CarrierCookie {
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(t.cookieName, "", -1, "/", "", t.cookieSecure, true)
}
