package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	authDomain "github.com/allisson/tokenauth/internal/auth/domain"
	apperrors "github.com/allisson/tokenauth/internal/errors"
)

// Signing secret encodings.
const (
	SigningKeyEncodingBase64 = "base64"
	SigningKeyEncodingRaw    = "raw"
)

// SigningKeyConfig describes where the token signing key comes from.
type SigningKeyConfig struct {
	// Secret is the configured value: raw bytes, base64, or base64 KMS ciphertext.
	Secret string
	// Encoding is "base64" or "raw". Ignored when KMSKeyURI is set.
	Encoding string
	// KMSKeyURI, when set, is the keeper used to decrypt Secret.
	KMSKeyURI string
}

// LoadSigningKey resolves the signing key once at startup. Every failure wraps
// ErrMisconfigured so the server refuses to start.
func LoadSigningKey(ctx context.Context, kmsService KMSService, cfg SigningKeyConfig) ([]byte, error) {
	secret := strings.TrimSpace(cfg.Secret)
	if secret == "" {
		return nil, apperrors.Wrap(apperrors.ErrMisconfigured, "signing secret is not configured")
	}

	var key []byte
	switch {
	case cfg.KMSKeyURI != "":
		ciphertext, err := base64.StdEncoding.DecodeString(secret)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrMisconfigured, "signing secret ciphertext is not valid base64")
		}
		key, err = decryptWithKMS(ctx, kmsService, cfg.KMSKeyURI, ciphertext)
		if err != nil {
			return nil, err
		}
	case cfg.Encoding == "" || cfg.Encoding == SigningKeyEncodingBase64:
		decoded, err := base64.StdEncoding.DecodeString(secret)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrMisconfigured, "signing secret is not valid base64")
		}
		key = decoded
	case cfg.Encoding == SigningKeyEncodingRaw:
		key = []byte(secret)
	default:
		return nil, apperrors.Wrap(
			apperrors.ErrMisconfigured,
			fmt.Sprintf("unknown signing secret encoding %q", cfg.Encoding),
		)
	}

	if len(key) < authDomain.MinSigningKeyLength {
		return nil, fmt.Errorf(
			"%w: got %d bytes, need at least %d",
			authDomain.ErrSigningKeyTooShort,
			len(key),
			authDomain.MinSigningKeyLength,
		)
	}

	return key, nil
}

// WrapSigningKey encrypts key with the keeper at keyURI and returns base64 ciphertext
// suitable for AUTH_SIGNING_SECRET.
func WrapSigningKey(ctx context.Context, kmsService KMSService, keyURI string, key []byte) (string, error) {
	keeper, err := kmsService.OpenKeeper(ctx, keyURI)
	if err != nil {
		return "", err
	}
	defer func() { _ = keeper.Close() }()

	ciphertext, err := keeper.Encrypt(ctx, key)
	if err != nil {
		return "", apperrors.Wrap(err, "failed to encrypt signing secret")
	}
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

func decryptWithKMS(ctx context.Context, kmsService KMSService, keyURI string, ciphertext []byte) ([]byte, error) {
	keeper, err := kmsService.OpenKeeper(ctx, keyURI)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrMisconfigured, err.Error())
	}
	defer func() { _ = keeper.Close() }()

	plaintext, err := keeper.Decrypt(ctx, ciphertext)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrMisconfigured, "failed to decrypt signing secret")
	}
	return plaintext, nil
}
