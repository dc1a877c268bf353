package service

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"gocloud.dev/secrets"
	_ "gocloud.dev/secrets/awskms"
	_ "gocloud.dev/secrets/azurekeyvault"
	_ "gocloud.dev/secrets/gcpkms"
	_ "gocloud.dev/secrets/hashivault"
	_ "gocloud.dev/secrets/localsecrets"

	apperrors "github.com/allisson/tokenauth/internal/errors"
)

// KMSSchemes lists the key URI schemes a signing secret may be wrapped with. base64key is
// the local keeper, meant for development and tests.
var KMSSchemes = []string{"awskms", "azurekeyvault", "gcpkms", "hashivault", "base64key"}

type kmsService struct{}

// NewKMSService creates a KMSService backed by gocloud.dev/secrets.
func NewKMSService() KMSService {
	return &kmsService{}
}

// OpenKeeper opens the keeper addressed by keyURI. An unsupported scheme is a configuration
// error and never reaches the driver registry.
func (k *kmsService) OpenKeeper(ctx context.Context, keyURI string) (KMSKeeper, error) {
	scheme, _, ok := strings.Cut(keyURI, "://")
	if !ok || !slices.Contains(KMSSchemes, scheme) {
		return nil, apperrors.Wrap(
			apperrors.ErrMisconfigured,
			fmt.Sprintf("unsupported KMS key URI scheme %q (supported: %s)", scheme, strings.Join(KMSSchemes, ", ")),
		)
	}

	keeper, err := secrets.OpenKeeper(ctx, keyURI)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s keeper: %w", scheme, err)
	}
	return keeper, nil
}
