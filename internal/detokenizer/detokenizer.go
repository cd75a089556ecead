// Package detokenizer finds vault tokens in text and rewrites them to their plaintext.
//
// The detokenizer is read-only with respect to the vault and never fails: tokens it
// cannot resolve stay in the output verbatim, and any internal error returns the
// input unchanged.
package detokenizer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/allisson/piivault/internal/metrics"
	vaultDomain "github.com/allisson/piivault/internal/vault/domain"
)

const metricsDomain = "detokenizer"

// Resolver resolves a batch of tokens. Only resolved tokens appear in the result.
type Resolver interface {
	RetrieveBatch(ctx context.Context, tokens []string) (map[string]string, error)
}

// Detokenizer rewrites tokenized text. It holds no mutable state and is safe for
// concurrent use.
type Detokenizer struct {
	resolver Resolver
	logger   *slog.Logger
	metrics  metrics.BusinessMetrics
}

// New creates a Detokenizer backed by resolver.
func New(resolver Resolver, logger *slog.Logger, m metrics.BusinessMetrics) *Detokenizer {
	if m == nil {
		m = metrics.NewNoOpBusinessMetrics()
	}
	return &Detokenizer{
		resolver: resolver,
		logger:   logger,
		metrics:  m,
	}
}

// HasTokens reports whether text contains at least one token.
func (d *Detokenizer) HasTokens(text string) bool {
	return vaultDomain.TokenPattern().MatchString(text)
}

// ExtractTokens returns the distinct tokens in text in order of first occurrence.
func (d *Detokenizer) ExtractTokens(text string) []string {
	matches := vaultDomain.TokenPattern().FindAllString(text, -1)
	if len(matches) == 0 {
		return []string{}
	}

	seen := make(map[string]struct{}, len(matches))
	tokens := make([]string, 0, len(matches))
	for _, m := range matches {
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		tokens = append(tokens, m)
	}
	return tokens
}

// IsValidToken reports whether token is exactly one well-formed token.
func (d *Detokenizer) IsValidToken(token string) bool {
	return vaultDomain.IsValidToken(token)
}

// Process replaces every resolvable token in text with its value.
func (d *Detokenizer) Process(ctx context.Context, text string) string {
	return d.ProcessDetailed(ctx, text).Text
}

// ProcessArray processes each text in order and returns results in the same order.
func (d *Detokenizer) ProcessArray(ctx context.Context, texts []string) []string {
	out := make([]string, len(texts))
	for i, text := range texts {
		out[i] = d.Process(ctx, text)
	}
	return out
}

// ProcessDetailed is Process plus a report of found, resolved and missing tokens.
func (d *Detokenizer) ProcessDetailed(ctx context.Context, text string) (result vaultDomain.DetokenizationResult) {
	start := time.Now()
	status := "success"

	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("detokenization panicked", slog.String("panic", fmt.Sprint(r)))
			result = unchanged(text, nil)
			status = "error"
		}
		d.metrics.RecordOperation(ctx, metricsDomain, "process", status)
		d.metrics.RecordDuration(ctx, metricsDomain, "process", time.Since(start), status)
		d.metrics.RecordTokens(ctx, metricsDomain, "resolved", len(result.TokensResolved))
		d.metrics.RecordTokens(ctx, metricsDomain, "missing", len(result.TokensMissing))
	}()

	tokens := d.ExtractTokens(text)
	if len(tokens) == 0 {
		return unchanged(text, tokens)
	}

	resolved, err := d.resolver.RetrieveBatch(ctx, tokens)
	if err != nil {
		d.logger.Debug("tokens left unresolved",
			slog.Int("token_count", len(tokens)),
			slog.Any("error", err),
		)
		status = "error"
		return unchanged(text, tokens)
	}

	result = vaultDomain.DetokenizationResult{
		TokensFound:    tokens,
		TokensResolved: make([]string, 0, len(resolved)),
		TokensMissing:  []string{},
	}
	for _, token := range tokens {
		if _, ok := resolved[token]; ok {
			result.TokensResolved = append(result.TokensResolved, token)
		} else {
			result.TokensMissing = append(result.TokensMissing, token)
		}
	}

	// The callback's return value is inserted literally, so values containing
	// "$1" or regexp syntax are never expanded.
	result.Text = vaultDomain.TokenPattern().ReplaceAllStringFunc(text, func(token string) string {
		if value, ok := resolved[token]; ok {
			return value
		}
		return token
	})
	return result
}

// unchanged reports every token as missing and returns text as is.
func unchanged(text string, tokens []string) vaultDomain.DetokenizationResult {
	if tokens == nil {
		tokens = []string{}
	}
	return vaultDomain.DetokenizationResult{
		Text:           text,
		TokensFound:    tokens,
		TokensResolved: []string{},
		TokensMissing:  append([]string{}, tokens...),
	}
}
