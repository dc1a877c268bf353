package commands

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	authService "github.com/allisson/tokenauth/internal/auth/service"
)

func newLocalSecretsURI(t *testing.T) string {
	t.Helper()
	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)
	return "base64key://" + base64.URLEncoding.EncodeToString(key)
}

func TestRunCreateSigningSecret(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	kmsService := authService.NewKMSService()

	t.Run("text", func(t *testing.T) {
		var out bytes.Buffer
		err := RunCreateSigningSecret(ctx, kmsService, logger, DefaultSigningSecretSize, "", "text", &out)
		require.NoError(t, err)

		line := strings.SplitN(out.String(), "\n", 2)[0]
		require.True(t, strings.HasPrefix(line, "AUTH_SIGNING_SECRET="))

		key, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(line, "AUTH_SIGNING_SECRET="))
		require.NoError(t, err)
		require.Len(t, key, DefaultSigningSecretSize)
		require.Contains(t, out.String(), "AUTH_SIGNING_SECRET_ENCODING=base64")
	})

	t.Run("json", func(t *testing.T) {
		var out bytes.Buffer
		err := RunCreateSigningSecret(ctx, kmsService, logger, 32, "", "json", &out)
		require.NoError(t, err)

		var result map[string]string
		require.NoError(t, json.Unmarshal(out.Bytes(), &result))
		key, err := base64.StdEncoding.DecodeString(result["AUTH_SIGNING_SECRET"])
		require.NoError(t, err)
		require.Len(t, key, 32)
	})

	t.Run("kms-wrapped-loads-back", func(t *testing.T) {
		keyURI := newLocalSecretsURI(t)

		var out bytes.Buffer
		err := RunCreateSigningSecret(ctx, kmsService, logger, 48, keyURI, "json", &out)
		require.NoError(t, err)

		var result map[string]string
		require.NoError(t, json.Unmarshal(out.Bytes(), &result))
		require.Equal(t, keyURI, result["AUTH_SIGNING_SECRET_KMS_KEY_URI"])

		key, err := authService.LoadSigningKey(ctx, kmsService, authService.SigningKeyConfig{
			Secret:    result["AUTH_SIGNING_SECRET"],
			KMSKeyURI: keyURI,
		})
		require.NoError(t, err)
		require.Len(t, key, 48)
	})

	t.Run("size-too-small", func(t *testing.T) {
		err := RunCreateSigningSecret(ctx, kmsService, logger, 8, "", "text", io.Discard)
		require.Error(t, err)
		require.Contains(t, err.Error(), "at least")
	})

	t.Run("invalid-format", func(t *testing.T) {
		err := RunCreateSigningSecret(ctx, kmsService, logger, 32, "", "yaml", io.Discard)
		require.Error(t, err)
		require.Contains(t, err.Error(), "invalid format")
	})

	t.Run("invalid-kms-uri", func(t *testing.T) {
		err := RunCreateSigningSecret(ctx, kmsService, logger, 32, "unknown://key", "text", io.Discard)
		require.Error(t, err)
		require.Contains(t, err.Error(), "failed to wrap signing secret")
	})
}
