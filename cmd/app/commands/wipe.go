package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	vaultUseCase "github.com/allisson/piivault/internal/vault/usecase"
)

// ErrWipeAborted is returned when the confirmation prompt is not answered with "wipe".
var ErrWipeAborted = errors.New("wipe aborted")

// RunWipe deletes every record in the vault namespace. Unless skipConfirm is set the
// operator must type "wipe" on io.Reader first.
func RunWipe(
	ctx context.Context,
	vault vaultUseCase.VaultUseCase,
	logger *slog.Logger,
	io IOTuple,
	skipConfirm bool,
) error {
	if !skipConfirm {
		_, _ = fmt.Fprint(io.Writer, "This deletes every stored token. Type 'wipe' to confirm: ")

		scanner := bufio.NewScanner(io.Reader)
		if !scanner.Scan() || strings.TrimSpace(scanner.Text()) != "wipe" {
			_, _ = fmt.Fprintln(io.Writer, "Aborted")
			return ErrWipeAborted
		}
	}

	if err := vault.Wipe(ctx); err != nil {
		return fmt.Errorf("failed to wipe vault: %w", err)
	}

	logger.Info("vault wiped")
	_, _ = fmt.Fprintln(io.Writer, "Vault wiped")
	return nil
}
