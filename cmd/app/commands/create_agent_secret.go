package commands

import (
	"fmt"
	"io"

	authService "github.com/allisson/piivault/internal/auth/service"
)

// RunCreateAgentSecret generates a bearer secret for the local agent together with
// its Argon2id hash. The plain secret is printed once and never stored.
func RunCreateAgentSecret(secretService authService.SecretService, writer io.Writer, format string) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	plain, hashed, err := secretService.GenerateSecret()
	if err != nil {
		return fmt.Errorf("failed to generate agent secret: %w", err)
	}

	if format == "json" {
		return writeJSON(writer, map[string]string{
			"secret":            plain,
			"agent_secret_hash": hashed,
		})
	}

	_, _ = fmt.Fprintf(writer, "Agent secret (send as 'Authorization: Bearer <secret>'):\n%s\n\n", plain)
	_, _ = fmt.Fprintf(writer, "Set this on the agent:\nAGENT_SECRET_HASH=\"%s\"\n", hashed)
	return nil
}
