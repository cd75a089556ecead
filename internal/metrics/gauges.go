package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/metric"
)

// VaultState is a point-in-time view of the vault used by the state gauges.
type VaultState struct {
	Ready      bool
	TokenCount int64
	CacheSize  int
}

// RegisterVaultGauges registers observable gauges for vault readiness, stored token
// count and cache size. observe runs on every collection; an error skips that cycle.
func RegisterVaultGauges(
	meterProvider metric.MeterProvider,
	namespace string,
	observe func(ctx context.Context) (VaultState, error),
) error {
	meter := meterProvider.Meter(namespace)

	ready, err := meter.Int64ObservableGauge(
		fmt.Sprintf("%s_vault_ready", namespace),
		metric.WithDescription("1 when the vault is initialized, 0 otherwise"),
	)
	if err != nil {
		return fmt.Errorf("failed to create ready gauge: %w", err)
	}

	tokens, err := meter.Int64ObservableGauge(
		fmt.Sprintf("%s_vault_tokens", namespace),
		metric.WithDescription("Encrypted records in the vault namespace"),
		metric.WithUnit("{token}"),
	)
	if err != nil {
		return fmt.Errorf("failed to create token gauge: %w", err)
	}

	cache, err := meter.Int64ObservableGauge(
		fmt.Sprintf("%s_vault_cache_entries", namespace),
		metric.WithDescription("Plaintext cache entries held in memory"),
		metric.WithUnit("{entry}"),
	)
	if err != nil {
		return fmt.Errorf("failed to create cache gauge: %w", err)
	}

	_, err = meter.RegisterCallback(func(ctx context.Context, o metric.Observer) error {
		state, err := observe(ctx)
		if err != nil {
			return nil
		}

		var readyValue int64
		if state.Ready {
			readyValue = 1
		}
		o.ObserveInt64(ready, readyValue)
		o.ObserveInt64(tokens, state.TokenCount)
		o.ObserveInt64(cache, int64(state.CacheSize))
		return nil
	}, ready, tokens, cache)
	if err != nil {
		return fmt.Errorf("failed to register vault gauge callback: %w", err)
	}
	return nil
}
