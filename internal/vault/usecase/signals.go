package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/zoobzio/capitan"

	"github.com/allisson/piivault/internal/metrics"
)

// Vault lifecycle signals. Fields carry counts, durations and errors only; token
// identifiers and values never appear in events. Emits detach from the caller's
// cancellation so events outlive the request that produced them.
var (
	SignalInitialized    = capitan.NewSignal("vault.initialized", "Vault session key derived and vault ready")
	SignalInitFailed     = capitan.NewSignal("vault.init.failed", "Vault initialization failed")
	SignalWiped          = capitan.NewSignal("vault.wiped", "Vault storage, cache and key discarded")
	SignalStoreComplete  = capitan.NewSignal("vault.store.complete", "Token map ingestion finished")
	SignalRetrieveFailed = capitan.NewSignal("vault.retrieve.failed", "Record could not be read or authenticated")
)

// Field keys.
var (
	KeyTokenCount = capitan.NewIntKey("token_count")
	KeyStored     = capitan.NewIntKey("stored")
	KeyReason     = capitan.NewStringKey("reason")
	KeyDuration   = capitan.NewDurationKey("duration")
	KeyError      = capitan.NewErrorKey("error")
)

// Retrieve failure reasons.
const (
	reasonStorage    = "storage"
	reasonDecryption = "decryption"
)

func emitInitialized(ctx context.Context, tokenCount int64, duration time.Duration) {
	capitan.Emit(context.WithoutCancel(ctx), SignalInitialized,
		KeyTokenCount.Field(int(tokenCount)),
		KeyDuration.Field(duration),
	)
}

func emitInitFailed(ctx context.Context, err error) {
	capitan.Error(context.WithoutCancel(ctx), SignalInitFailed, KeyError.Field(err))
}

func emitWiped(ctx context.Context, duration time.Duration, err error) {
	ctx = context.WithoutCancel(ctx)
	fields := []capitan.Field{
		KeyDuration.Field(duration),
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalWiped, fields...)
		return
	}
	capitan.Emit(ctx, SignalWiped, fields...)
}

func emitStoreComplete(ctx context.Context, stored, total int, duration time.Duration, err error) {
	ctx = context.WithoutCancel(ctx)
	fields := []capitan.Field{
		KeyStored.Field(stored),
		KeyTokenCount.Field(total),
		KeyDuration.Field(duration),
	}
	if err != nil {
		fields = append(fields, KeyError.Field(err))
		capitan.Error(ctx, SignalStoreComplete, fields...)
		return
	}
	capitan.Emit(ctx, SignalStoreComplete, fields...)
}

func emitRetrieveFailed(ctx context.Context, reason string, err error) {
	capitan.Error(context.WithoutCancel(ctx), SignalRetrieveFailed,
		KeyReason.Field(reason),
		KeyError.Field(err),
	)
}

// ObserveSignals routes vault signals to logger and m. Retrieve failures feed the
// token counter as "unreadable_<reason>", which keeps them apart from absent tokens.
// Close the returned observer on shutdown.
func ObserveSignals(logger *slog.Logger, m metrics.BusinessMetrics) *capitan.Observer {
	return capitan.Observe(func(ctx context.Context, e *capitan.Event) {
		switch e.Signal() {
		case SignalRetrieveFailed:
			reason, _ := KeyReason.From(e)
			m.RecordTokens(ctx, metricsDomain, "unreadable_"+reason, 1)
		case SignalInitFailed:
			err, _ := KeyError.From(e)
			logger.Error("vault initialization failed", slog.Any("error", err))
		case SignalWiped:
			duration, _ := KeyDuration.From(e)
			if err, ok := KeyError.From(e); ok {
				logger.Error("failed to clear vault storage",
					slog.Duration("duration", duration),
					slog.Any("error", err),
				)
				return
			}
			logger.Info("vault wiped", slog.Duration("duration", duration))
		}
	}, SignalRetrieveFailed, SignalInitFailed, SignalWiped)
}
