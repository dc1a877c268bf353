package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/tokenauth/internal/config"
)

func corsRouter(t *testing.T, carrier string) *gin.Engine {
	t.Helper()
	middleware := createCORSMiddleware(true, "https://app.example.com", carrier, discardLogger())
	require.NotNil(t, middleware)

	router := gin.New()
	router.Use(middleware)
	router.GET("/api/v1/auth/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.POST("/api/v1/auth/authenticate", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return router
}

func preflight(router *gin.Engine, origin string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/auth/authenticate", nil)
	req.Header.Set("Origin", origin)
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	router.ServeHTTP(w, req)
	return w
}

func TestCreateCORSMiddleware_ReturnsNil(t *testing.T) {
	tests := []struct {
		name    string
		enabled bool
		origins string
	}{
		{"disabled", false, "https://app.example.com"},
		{"no origins", true, ""},
		{"only blanks", true, " , ,"},
		{"only wildcard", true, "*"},
		{"no scheme", true, "app.example.com"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Nil(t, createCORSMiddleware(tt.enabled, tt.origins, config.TokenCarrierHeader, discardLogger()))
		})
	}
}

func TestParseOrigins(t *testing.T) {
	origins, rejected := parseOrigins(" https://app.example.com , http://localhost:3000/,*,ftp://x.example.com,,")
	assert.Equal(t, []string{"https://app.example.com", "http://localhost:3000"}, origins)
	assert.Equal(t, []string{"*", "ftp://x.example.com"}, rejected)

	origins, rejected = parseOrigins("")
	assert.Nil(t, origins)
	assert.Nil(t, rejected)
}

func TestCORS_HeaderCarrier(t *testing.T) {
	router := corsRouter(t, config.TokenCarrierHeader)

	w := preflight(router, "https://app.example.com")

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Authorization")
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCORS_CookieCarrier(t *testing.T) {
	router := corsRouter(t, config.TokenCarrierCookie)

	w := preflight(router, "https://app.example.com")

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
	assert.NotContains(t, w.Header().Get("Access-Control-Allow-Headers"), "Authorization")
}

func TestCORS_SimpleRequest(t *testing.T) {
	router := corsRouter(t, config.TokenCarrierHeader)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req.Header.Set("Origin", "https://app.example.com")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "X-Request-Id", w.Header().Get("Access-Control-Expose-Headers"))
}

func TestCORS_UnknownOriginRejected(t *testing.T) {
	router := corsRouter(t, config.TokenCarrierHeader)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
