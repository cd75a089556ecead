package usecase

import (
	"context"
	"time"

	"github.com/allisson/piivault/internal/metrics"
	vaultDomain "github.com/allisson/piivault/internal/vault/domain"
)

const metricsDomain = "vault"

// vaultUseCaseWithMetrics decorates VaultUseCase with metrics instrumentation.
type vaultUseCaseWithMetrics struct {
	next    VaultUseCase
	metrics metrics.BusinessMetrics
}

// NewVaultUseCaseWithMetrics wraps a VaultUseCase with metrics recording.
func NewVaultUseCaseWithMetrics(useCase VaultUseCase, m metrics.BusinessMetrics) VaultUseCase {
	return &vaultUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (v *vaultUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	v.metrics.RecordOperation(ctx, metricsDomain, operation, status)
	v.metrics.RecordDuration(ctx, metricsDomain, operation, time.Since(start), status)
}

// Initialize records metrics for vault initialization.
func (v *vaultUseCaseWithMetrics) Initialize(ctx context.Context, sessionID, challenge string) error {
	start := time.Now()
	err := v.next.Initialize(ctx, sessionID, challenge)
	v.record(ctx, "initialize", start, err)
	return err
}

// Store records metrics for single token writes.
func (v *vaultUseCaseWithMetrics) Store(ctx context.Context, token, value string) error {
	start := time.Now()
	err := v.next.Store(ctx, token, value)
	v.record(ctx, "store", start, err)
	return err
}

// StoreFromTokenMap records metrics for token map ingestion.
func (v *vaultUseCaseWithMetrics) StoreFromTokenMap(ctx context.Context, tokens map[string]string) error {
	start := time.Now()
	err := v.next.StoreFromTokenMap(ctx, tokens)
	v.record(ctx, "store_token_map", start, err)
	return err
}

// Retrieve records metrics for single token reads and their resolution outcome.
func (v *vaultUseCaseWithMetrics) Retrieve(ctx context.Context, token string) (string, bool, error) {
	start := time.Now()
	value, ok, err := v.next.Retrieve(ctx, token)
	v.record(ctx, "retrieve", start, err)

	if err == nil {
		if ok {
			v.metrics.RecordTokens(ctx, metricsDomain, "resolved", 1)
		} else {
			v.metrics.RecordTokens(ctx, metricsDomain, "missing", 1)
		}
	}
	return value, ok, err
}

// RetrieveBatch records metrics for batch reads.
func (v *vaultUseCaseWithMetrics) RetrieveBatch(ctx context.Context, tokens []string) (map[string]string, error) {
	start := time.Now()
	values, err := v.next.RetrieveBatch(ctx, tokens)
	v.record(ctx, "retrieve_batch", start, err)

	if err == nil {
		v.metrics.RecordTokens(ctx, metricsDomain, "resolved", len(values))
	}
	return values, err
}

// HasToken records metrics for existence checks.
func (v *vaultUseCaseWithMetrics) HasToken(ctx context.Context, token string) (bool, error) {
	start := time.Now()
	exists, err := v.next.HasToken(ctx, token)
	v.record(ctx, "has_token", start, err)
	return exists, err
}

// Stats records metrics for stats reads.
func (v *vaultUseCaseWithMetrics) Stats(ctx context.Context) (vaultDomain.Stats, error) {
	start := time.Now()
	stats, err := v.next.Stats(ctx)
	v.record(ctx, "stats", start, err)
	return stats, err
}

// Wipe records metrics for vault wipes.
func (v *vaultUseCaseWithMetrics) Wipe(ctx context.Context) error {
	start := time.Now()
	err := v.next.Wipe(ctx)
	v.record(ctx, "wipe", start, err)
	return err
}

// IsReady delegates without recording.
func (v *vaultUseCaseWithMetrics) IsReady() bool {
	return v.next.IsReady()
}

// Subscribe delegates without recording.
func (v *vaultUseCaseWithMetrics) Subscribe(listener func()) func() {
	return v.next.Subscribe(listener)
}
