package commands

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	authDomain "github.com/allisson/tokenauth/internal/auth/domain"
	authUseCase "github.com/allisson/tokenauth/internal/auth/usecase"
	identityDomain "github.com/allisson/tokenauth/internal/identity/domain"
)

// CreateIdentityParams holds the create-identity flags.
type CreateIdentityParams struct {
	Email      string
	Password   string //nolint:gosec // raw secret from the operator
	Capability string
	FirstName  string
	LastName   string
	Format     string
}

// RunCreateIdentity registers an identity with an explicit capability and prints a token for
// it. This is the only way to create an ADMIN identity; HTTP registration always yields USER.
// The password is read from io.Reader when not passed as a flag.
func RunCreateIdentity(
	ctx context.Context,
	authUseCase authUseCase.AuthUseCase,
	logger *slog.Logger,
	params CreateIdentityParams,
	io IOTuple,
) error {
	if err := validateFormat(params.Format); err != nil {
		return err
	}

	capability, err := identityDomain.ParseCapability(params.Capability)
	if err != nil {
		return fmt.Errorf("invalid capability %q (valid options: USER, ADMIN): %w", params.Capability, err)
	}

	password := params.Password
	if password == "" {
		password, err = promptPassword(io)
		if err != nil {
			return err
		}
	}

	issued, err := authUseCase.Register(ctx, &authDomain.RegisterInput{
		FirstName:  params.FirstName,
		LastName:   params.LastName,
		Email:      params.Email,
		Secret:     password,
		Capability: capability,
	})
	if err != nil {
		return fmt.Errorf("failed to create identity: %w", err)
	}

	logger.Info("identity created",
		slog.String("email", params.Email),
		slog.String("capability", string(capability)),
	)

	if params.Format == "text" {
		_, _ = fmt.Fprintln(io.Writer, "\nIdentity created successfully!")
	}
	return writeOutput(io.Writer, params.Format, labelLayout,
		outputField{key: "email", label: "Email", value: params.Email},
		outputField{key: "capability", label: "Capability", value: string(capability)},
		outputField{key: "token", label: "Token", value: issued.Token},
		outputField{key: "expires_at", label: "Expires At", value: issued.ExpiresAt.UTC().Format(time.RFC3339)},
	)
}

func promptPassword(io IOTuple) (string, error) {
	if io.Reader == nil {
		return "", fmt.Errorf("password is required")
	}

	_, _ = fmt.Fprint(io.Writer, "Password: ")
	line, err := bufio.NewReader(io.Reader).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read password: %w", err)
	}

	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return "", fmt.Errorf("password is required")
	}
	return password, nil
}
