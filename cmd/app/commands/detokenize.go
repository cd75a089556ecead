package commands

import (
	"context"
	"fmt"

	"github.com/allisson/piivault/internal/detokenizer"
)

// RunDetokenize streams io.Reader through the detokenizer into io.Writer. Tokens
// split across read boundaries are still resolved.
func RunDetokenize(ctx context.Context, d *detokenizer.Detokenizer, chunkSize int, io IOTuple) error {
	rewriter := detokenizer.NewStreamRewriter(d, chunkSize)
	if _, err := rewriter.Rewrite(ctx, io.Reader, io.Writer); err != nil {
		return fmt.Errorf("failed to detokenize stream: %w", err)
	}
	return nil
}
