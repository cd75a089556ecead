package detokenizer

import (
	"context"
	"log/slog"
	"sync"

	vaultDomain "github.com/allisson/piivault/internal/vault/domain"
)

// fakeResolver resolves from a fixed map and records the batches it receives.
type fakeResolver struct {
	mu      sync.Mutex
	values  map[string]string
	err     error
	panics  bool
	batches [][]string
}

func (f *fakeResolver) RetrieveBatch(_ context.Context, tokens []string) (map[string]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.batches = append(f.batches, append([]string(nil), tokens...))
	if f.panics {
		panic("resolver exploded")
	}
	if f.err != nil {
		return nil, f.err
	}

	out := make(map[string]string)
	for _, token := range tokens {
		if value, ok := f.values[token]; ok {
			out[token] = value
		}
	}
	return out, nil
}

func newAliceBobResolver() *fakeResolver {
	return &fakeResolver{values: map[string]string{
		"TOKEN_abc123": "Alice",
		"TOKEN_def456": "Bob",
	}}
}

func newTestDetokenizer(r Resolver) *Detokenizer {
	return New(r, slog.New(slog.DiscardHandler), nil)
}

var errNotReady = vaultDomain.ErrVaultNotReady
