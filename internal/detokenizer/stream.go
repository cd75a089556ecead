package detokenizer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	vaultDomain "github.com/allisson/piivault/internal/vault/domain"
)

// MaxPendingToken bounds how much trailing text ProcessStream holds back while a
// token may still be growing. A longer run is flushed as is.
const MaxPendingToken = 1024

// DefaultChunkSize is the read size used by StreamRewriter when none is given.
const DefaultChunkSize = 4096

// ProcessStream rewrites the part of buffer+chunk that can no longer change and
// returns the rest as the new buffer. A token is never split between two calls:
// a token whose run reaches the end of the input, or a trailing fragment that may
// still become one ("T", "TOK", "TOKEN_"), is held back.
func (d *Detokenizer) ProcessStream(ctx context.Context, chunk, buffer string) (processed, residual string) {
	combined := buffer + chunk
	cut := streamCut(combined)
	if len(combined)-cut > MaxPendingToken {
		cut = len(combined)
	}
	return d.Process(ctx, combined[:cut]), combined[cut:]
}

// Flush processes whatever ProcessStream held back at end of stream.
func (d *Detokenizer) Flush(ctx context.Context, residual string) string {
	if residual == "" {
		return ""
	}
	return d.Process(ctx, residual)
}

// streamCut returns the offset up to which text is stable under appends.
func streamCut(text string) int {
	matches := vaultDomain.TokenPattern().FindAllStringIndex(text, -1)

	lastEnd := 0
	if n := len(matches); n > 0 {
		last := matches[n-1]
		if last[1] == len(text) {
			return last[0]
		}
		lastEnd = last[1]
	}

	// Longest suffix, starting after the last match, that is a prefix of the marker.
	maxLen := min(len(vaultDomain.TokenPrefix), len(text)-lastEnd)
	for n := maxLen; n > 0; n-- {
		if strings.HasPrefix(vaultDomain.TokenPrefix, text[len(text)-n:]) {
			return len(text) - n
		}
	}
	return len(text)
}

// StreamRewriter drives ProcessStream over an io.Reader.
type StreamRewriter struct {
	detokenizer *Detokenizer
	chunkSize   int
}

// NewStreamRewriter creates a rewriter reading chunkSize bytes at a time.
func NewStreamRewriter(d *Detokenizer, chunkSize int) *StreamRewriter {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &StreamRewriter{detokenizer: d, chunkSize: chunkSize}
}

// Rewrite copies r to w, replacing tokens as it goes. It returns the number of bytes
// written. Cancelling ctx stops the copy between chunks.
func (s *StreamRewriter) Rewrite(ctx context.Context, r io.Reader, w io.Writer) (int64, error) {
	buf := make([]byte, s.chunkSize)
	var (
		written int64
		pending string
	)

	emit := func(text string) error {
		if text == "" {
			return nil
		}
		n, err := io.WriteString(w, text)
		written += int64(n)
		if err != nil {
			return fmt.Errorf("failed to write rewritten stream: %w", err)
		}
		return nil
	}

	for {
		if err := ctx.Err(); err != nil {
			return written, err
		}

		n, readErr := r.Read(buf)
		if n > 0 {
			var out string
			out, pending = s.detokenizer.ProcessStream(ctx, string(buf[:n]), pending)
			if err := emit(out); err != nil {
				return written, err
			}
		}

		if readErr != nil {
			if !errors.Is(readErr, io.EOF) {
				return written, fmt.Errorf("failed to read stream: %w", readErr)
			}
			return written, emit(s.detokenizer.Flush(ctx, pending))
		}
	}
}
