package commands

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"

	authDomain "github.com/allisson/tokenauth/internal/auth/domain"
	authService "github.com/allisson/tokenauth/internal/auth/service"
)

// DefaultSigningSecretSize is the number of random bytes in a generated signing secret.
const DefaultSigningSecretSize = 64

// RunCreateSigningSecret generates a random signing secret and prints the value to use for
// AUTH_SIGNING_SECRET. With kmsKeyURI set the secret is wrapped by that keeper and the
// output is the ciphertext to pair with AUTH_SIGNING_SECRET_KMS_KEY_URI.
func RunCreateSigningSecret(
	ctx context.Context,
	kmsService authService.KMSService,
	logger *slog.Logger,
	size int,
	kmsKeyURI string,
	format string,
	writer io.Writer,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}
	if size < authDomain.MinSigningKeyLength {
		return fmt.Errorf("secret size must be at least %d bytes", authDomain.MinSigningKeyLength)
	}

	key := make([]byte, size)
	if _, err := rand.Read(key); err != nil {
		return fmt.Errorf("failed to generate signing secret: %w", err)
	}

	secret := base64.StdEncoding.EncodeToString(key)
	if kmsKeyURI != "" {
		wrapped, err := authService.WrapSigningKey(ctx, kmsService, kmsKeyURI, key)
		if err != nil {
			return fmt.Errorf("failed to wrap signing secret: %w", err)
		}
		secret = wrapped
		logger.Info("signing secret wrapped with KMS", slog.Int("size", size))
	} else {
		logger.Info("signing secret generated", slog.Int("size", size))
	}

	fields := []outputField{
		{key: "AUTH_SIGNING_SECRET", value: secret},
		{key: "AUTH_SIGNING_SECRET_ENCODING", value: authService.SigningKeyEncodingBase64},
	}
	if kmsKeyURI != "" {
		fields = append(fields, outputField{key: "AUTH_SIGNING_SECRET_KMS_KEY_URI", value: kmsKeyURI})
	}
	return writeOutput(writer, format, envLayout, fields...)
}
