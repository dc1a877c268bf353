package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/tokenauth/internal/errors"
)

func TestNewTokenCarrier(t *testing.T) {
	t.Run("Success_Header", func(t *testing.T) {
		carrier, err := NewTokenCarrier(CarrierHeader, "", false)
		require.NoError(t, err)
		assert.Equal(t, CarrierHeader, carrier.Kind())
	})

	t.Run("Success_Cookie", func(t *testing.T) {
		carrier, err := NewTokenCarrier(CarrierCookie, "token", true)
		require.NoError(t, err)
		assert.Equal(t, CarrierCookie, carrier.Kind())
	})

	t.Run("Error_CookieWithoutName", func(t *testing.T) {
		carrier, err := NewTokenCarrier(CarrierCookie, " ", true)
		assert.Nil(t, carrier)
		assert.True(t, apperrors.Is(err, apperrors.ErrMisconfigured))
	})

	t.Run("Error_UnknownKind", func(t *testing.T) {
		carrier, err := NewTokenCarrier("query", "", false)
		assert.Nil(t, carrier)
		assert.True(t, apperrors.Is(err, apperrors.ErrMisconfigured))
	})
}

func TestTokenCarrier_Extract(t *testing.T) {
	header, err := NewTokenCarrier(CarrierHeader, "", false)
	require.NoError(t, err)
	cookie, err := NewTokenCarrier(CarrierCookie, "token", false)
	require.NoError(t, err)

	tests := []struct {
		name    string
		carrier *TokenCarrier
		auth    string
		cookie  string
		want    string
	}{
		{"bearer", header, "Bearer abc.def.ghi", "", "abc.def.ghi"},
		{"lowercase bearer", header, "bearer abc.def.ghi", "", "abc.def.ghi"},
		{"bearer with padding", header, "Bearer   abc.def.ghi  ", "", "abc.def.ghi"},
		{"bearer without token", header, "Bearer ", "", ""},
		{"basic scheme", header, "Basic dXNlcjpwYXNz", "", ""},
		{"no header", header, "", "", ""},
		{"header carrier ignores cookie", header, "", "abc.def.ghi", ""},
		{"cookie", cookie, "", "abc.def.ghi", "abc.def.ghi"},
		{"cookie carrier ignores header", cookie, "Bearer abc.def.ghi", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.auth != "" {
				req.Header.Set("Authorization", tt.auth)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: "token", Value: tt.cookie})
			}
			assert.Equal(t, tt.want, tt.carrier.Extract(req))
		})
	}
}

func TestTokenCarrier_StoreAndClear(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("Cookie_SetsHttpOnlyCookie", func(t *testing.T) {
		carrier, err := NewTokenCarrier(CarrierCookie, "token", true)
		require.NoError(t, err)

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/", nil)

		carrier.Store(c, "abc.def.ghi", time.Now().Add(time.Hour))

		cookies := w.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, "token", cookies[0].Name)
		assert.Equal(t, "abc.def.ghi", cookies[0].Value)
		assert.Equal(t, "/", cookies[0].Path)
		assert.True(t, cookies[0].HttpOnly)
		assert.True(t, cookies[0].Secure)
		assert.Greater(t, cookies[0].MaxAge, 3500)
	})

	t.Run("Cookie_ClearExpiresCookie", func(t *testing.T) {
		carrier, err := NewTokenCarrier(CarrierCookie, "token", false)
		require.NoError(t, err)

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/logout", nil)

		carrier.Clear(c)

		cookies := w.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, "token", cookies[0].Name)
		assert.Empty(t, cookies[0].Value)
		assert.Less(t, cookies[0].MaxAge, 0)
	})

	t.Run("Header_NoCookies", func(t *testing.T) {
		carrier, err := NewTokenCarrier(CarrierHeader, "", false)
		require.NoError(t, err)

		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/", nil)

		carrier.Store(c, "abc.def.ghi", time.Now().Add(time.Hour))
		carrier.Clear(c)

		assert.Empty(t, w.Result().Cookies())
	})
}
