// Package commands contains CLI command implementations for the application.
package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/allisson/piivault/internal/app"
	vaultUseCase "github.com/allisson/piivault/internal/vault/usecase"
)

// IOTuple holds reader and writer for commands, allowing for testing.
type IOTuple struct {
	Reader io.Reader
	Writer io.Writer
}

// DefaultIO returns an IOTuple with os.Stdin and os.Stdout.
func DefaultIO() IOTuple {
	return IOTuple{
		Reader: os.Stdin,
		Writer: os.Stdout,
	}
}

// OpenVault returns the container's vault with the session opened from
// VAULT_SESSION_ID and VAULT_SESSION_CHALLENGE.
func OpenVault(ctx context.Context, container *app.Container) (vaultUseCase.VaultUseCase, error) {
	vault, err := container.VaultUseCase()
	if err != nil {
		return nil, err
	}

	opened, err := container.OpenSessionFromConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open vault session: %w", err)
	}
	if !opened {
		return nil, errors.New("VAULT_SESSION_ID and VAULT_SESSION_CHALLENGE are required")
	}

	return vault, nil
}

// closeContainer closes all resources in the container and logs any errors.
func closeContainer(container *app.Container, logger *slog.Logger) {
	if err := container.Shutdown(context.Background()); err != nil {
		logger.Error("failed to shutdown container", slog.Any("error", err))
	}
}

// validateFormat rejects output formats other than text and json.
func validateFormat(format string) error {
	switch format {
	case "text", "json":
		return nil
	default:
		return fmt.Errorf("invalid format: %s (valid options: text, json)", format)
	}
}

func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return nil
}
