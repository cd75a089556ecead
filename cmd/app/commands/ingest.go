package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	validation "github.com/jellydator/validation"

	customValidation "github.com/allisson/piivault/internal/validation"
	vaultUseCase "github.com/allisson/piivault/internal/vault/usecase"
)

// RunIngest reads a JSON object of token to value from path ('-' reads io.Reader)
// and stores every entry in the vault. The whole map is validated before anything
// is written.
func RunIngest(
	ctx context.Context,
	vault vaultUseCase.VaultUseCase,
	logger *slog.Logger,
	io IOTuple,
	path string,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	tokens, err := readTokenMap(io.Reader, path)
	if err != nil {
		return err
	}

	if err := validation.Validate(tokens, customValidation.TokenMap); err != nil {
		return customValidation.WrapValidationError(err)
	}

	if err := vault.StoreFromTokenMap(ctx, tokens); err != nil {
		return fmt.Errorf("failed to store tokens: %w", err)
	}

	logger.Info("tokens ingested", slog.Int("count", len(tokens)))

	if format == "json" {
		return writeJSON(io.Writer, map[string]int{"stored": len(tokens)})
	}

	_, _ = fmt.Fprintf(io.Writer, "Stored %d tokens\n", len(tokens))
	return nil
}

func readTokenMap(stdin io.Reader, path string) (map[string]string, error) {
	var reader io.Reader
	if path == "-" {
		reader = stdin
	} else {
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open token file: %w", err)
		}
		defer func() { _ = file.Close() }()
		reader = file
	}

	var tokens map[string]string
	if err := json.NewDecoder(reader).Decode(&tokens); err != nil {
		return nil, fmt.Errorf("failed to decode token map: %w", err)
	}
	if tokens == nil {
		tokens = map[string]string{}
	}
	return tokens, nil
}
