package commands

import (
	"context"
	"fmt"
	"io"

	vaultUseCase "github.com/allisson/piivault/internal/vault/usecase"
)

// RunStats prints the vault's token count, cache size and readiness.
func RunStats(ctx context.Context, vault vaultUseCase.VaultUseCase, writer io.Writer, format string) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	stats, err := vault.Stats(ctx)
	if err != nil {
		return fmt.Errorf("failed to read vault stats: %w", err)
	}

	if format == "json" {
		return writeJSON(writer, stats)
	}

	_, _ = fmt.Fprintf(writer, "Tokens:     %d\n", stats.TokenCount)
	_, _ = fmt.Fprintf(writer, "Cache size: %d\n", stats.CacheSize)
	_, _ = fmt.Fprintf(writer, "Ready:      %t\n", stats.IsReady)
	return nil
}
