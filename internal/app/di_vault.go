package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/zoobzio/capitan"

	authService "github.com/allisson/piivault/internal/auth/service"
	"github.com/allisson/piivault/internal/config"
	cryptoDomain "github.com/allisson/piivault/internal/crypto/domain"
	cryptoService "github.com/allisson/piivault/internal/crypto/service"
	"github.com/allisson/piivault/internal/database"
	"github.com/allisson/piivault/internal/detokenizer"
	"github.com/allisson/piivault/internal/metrics"
	vaultHTTP "github.com/allisson/piivault/internal/vault/http"
	vaultRepository "github.com/allisson/piivault/internal/vault/repository"
	vaultUseCase "github.com/allisson/piivault/internal/vault/usecase"
)

const databaseConnectTimeout = 10 * time.Second

// RecordStore is a vault record store that can report its reachability.
type RecordStore interface {
	vaultUseCase.RecordStore
	Ping(ctx context.Context) error
}

// storageBundle keeps the record store together with the handles it was built on,
// so Shutdown can close them.
type storageBundle struct {
	store    RecordStore
	db       *sql.DB
	badgerDB *badger.DB
}

func (s *storageBundle) close() error {
	var errs []error
	if s.badgerDB != nil {
		if err := s.badgerDB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("badger close: %w", err))
		}
	}
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("database close: %w", err))
		}
	}
	return errors.Join(errs...)
}

type vaultComponents struct {
	keyDeriver        cryptoService.KeyDeriver
	aeadManager       cryptoService.AEADManager
	useCase           vaultUseCase.VaultUseCase
	detokenizer       *detokenizer.Detokenizer
	secretService     authService.SecretService
	vaultHandler      *vaultHTTP.VaultHandler
	detokenizeHandler *vaultHTTP.DetokenizeHandler

	signals          *capitan.Observer
	stopReadinessLog func()
}

// close detaches the signal observer and the readiness logger. Closing the observer
// waits for queued events, so it runs before the metrics provider stops.
func (v *vaultComponents) close() {
	if v.stopReadinessLog != nil {
		v.stopReadinessLog()
	}
	if v.signals != nil {
		v.signals.Close()
	}
}

// RecordStore returns the record store selected by VAULT_STORAGE_DRIVER.
func (c *Container) RecordStore() (RecordStore, error) {
	var err error
	c.storageInit.Do(func() {
		c.storage, err = c.initStorage()
		if err != nil {
			c.initErrors["storage"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["storage"]; exists {
		return nil, storedErr
	}
	return c.storage.store, nil
}

// KeyDeriver returns the PBKDF2 session key deriver.
func (c *Container) KeyDeriver() (cryptoService.KeyDeriver, error) {
	var err error
	c.keyDeriverInit.Do(func() {
		c.vault.keyDeriver, err = c.initKeyDeriver()
		if err != nil {
			c.initErrors["keyDeriver"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["keyDeriver"]; exists {
		return nil, storedErr
	}
	return c.vault.keyDeriver, nil
}

// AEADManager returns the AEAD cipher factory.
func (c *Container) AEADManager() cryptoService.AEADManager {
	c.aeadManagerInit.Do(func() {
		c.vault.aeadManager = cryptoService.NewAEADManager()
	})
	return c.vault.aeadManager
}

// VaultUseCase returns the process-wide vault.
func (c *Container) VaultUseCase() (vaultUseCase.VaultUseCase, error) {
	var err error
	c.vaultUseCaseInit.Do(func() {
		c.vault.useCase, err = c.initVaultUseCase()
		if err != nil {
			c.initErrors["vaultUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["vaultUseCase"]; exists {
		return nil, storedErr
	}
	return c.vault.useCase, nil
}

// Detokenizer returns the detokenizer resolving through the process-wide vault.
func (c *Container) Detokenizer() (*detokenizer.Detokenizer, error) {
	var err error
	c.detokenizerInit.Do(func() {
		c.vault.detokenizer, err = c.initDetokenizer()
		if err != nil {
			c.initErrors["detokenizer"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["detokenizer"]; exists {
		return nil, storedErr
	}
	return c.vault.detokenizer, nil
}

// SecretService returns the agent secret hashing service.
func (c *Container) SecretService() (authService.SecretService, error) {
	var err error
	c.secretServiceInit.Do(func() {
		c.vault.secretService, err = authService.NewSecretService()
		if err != nil {
			err = fmt.Errorf("failed to create secret service: %w", err)
			c.initErrors["secretService"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["secretService"]; exists {
		return nil, storedErr
	}
	return c.vault.secretService, nil
}

// OpenSessionFromConfig initializes the vault with VAULT_SESSION_ID and
// VAULT_SESSION_CHALLENGE. It reports false when either is unset.
func (c *Container) OpenSessionFromConfig(ctx context.Context) (bool, error) {
	if !c.config.HasSessionCredentials() {
		return false, nil
	}

	vault, err := c.VaultUseCase()
	if err != nil {
		return false, err
	}

	if err := vault.Initialize(ctx, c.config.VaultSessionID, c.config.VaultSessionChallenge); err != nil {
		return false, err
	}
	return true, nil
}

func (c *Container) vaultHandlers() (*vaultHTTP.VaultHandler, *vaultHTTP.DetokenizeHandler, error) {
	vault, err := c.VaultUseCase()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get vault for handlers: %w", err)
	}

	d, err := c.Detokenizer()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get detokenizer for handlers: %w", err)
	}

	if c.vault.vaultHandler == nil {
		c.vault.vaultHandler = vaultHTTP.NewVaultHandler(vault, c.Logger())
	}
	if c.vault.detokenizeHandler == nil {
		c.vault.detokenizeHandler = vaultHTTP.NewDetokenizeHandler(d, c.config.StreamChunkSize, c.Logger())
	}
	return c.vault.vaultHandler, c.vault.detokenizeHandler, nil
}

func (c *Container) initStorage() (*storageBundle, error) {
	logger := c.Logger()
	namespace := c.config.VaultNamespace

	switch c.config.VaultStorageDriver {
	case config.StorageMemory:
		store, err := vaultRepository.NewMemoryRecordStore(namespace)
		if err != nil {
			return nil, fmt.Errorf("failed to create memory record store: %w", err)
		}
		return &storageBundle{store: store}, nil

	case config.StorageBadger:
		db, err := vaultRepository.OpenBadger(vaultRepository.BadgerOptions{
			Path:   c.config.VaultBadgerPath,
			Logger: logger,
		})
		if err != nil {
			return nil, err
		}
		store, err := vaultRepository.NewBadgerRecordStore(db, namespace)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		return &storageBundle{store: store, badgerDB: db}, nil

	case config.StoragePostgres, config.StorageMySQL:
		ctx, cancel := context.WithTimeout(c.ctx, databaseConnectTimeout)
		defer cancel()

		db, err := database.Connect(ctx, database.Config{
			Driver:             c.config.VaultStorageDriver,
			ConnectionString:   c.config.DBConnectionString,
			MaxOpenConnections: c.config.DBMaxOpenConnections,
			MaxIdleConnections: c.config.DBMaxIdleConnections,
			ConnMaxLifetime:    c.config.DBConnMaxLifetime,
		})
		if err != nil {
			return nil, err
		}

		var store RecordStore
		if c.config.VaultStorageDriver == config.StoragePostgres {
			store, err = vaultRepository.NewPostgreSQLRecordStore(db, namespace)
		} else {
			store, err = vaultRepository.NewMySQLRecordStore(db, namespace)
		}
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		return &storageBundle{store: store, db: db}, nil

	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", c.config.VaultStorageDriver)
	}
}

func (c *Container) initKeyDeriver() (cryptoService.KeyDeriver, error) {
	alg, err := cryptoDomain.ParseAlgorithm(c.config.VaultAlgorithm)
	if err != nil {
		return nil, fmt.Errorf("failed to parse vault algorithm: %w", err)
	}
	return cryptoService.NewPBKDF2KeyDeriver(c.config.VaultKDFIterations, alg), nil
}

func (c *Container) initVaultUseCase() (vaultUseCase.VaultUseCase, error) {
	store, err := c.RecordStore()
	if err != nil {
		return nil, fmt.Errorf("failed to get record store for vault: %w", err)
	}

	keyDeriver, err := c.KeyDeriver()
	if err != nil {
		return nil, fmt.Errorf("failed to get key deriver for vault: %w", err)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for vault: %w", err)
	}

	logger := c.Logger()
	base := vaultUseCase.NewVaultUseCase(store, keyDeriver, c.AEADManager(), logger)

	c.vault.signals = vaultUseCase.ObserveSignals(logger, businessMetrics)
	c.vault.stopReadinessLog = base.Subscribe(func() {
		logger.Info("vault readiness changed", slog.Bool("ready", base.IsReady()))
	})

	if !c.config.MetricsEnabled {
		return base, nil
	}

	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics provider for vault: %w", err)
	}

	err = metrics.RegisterVaultGauges(
		provider.MeterProvider(),
		c.config.MetricsNamespace,
		func(ctx context.Context) (metrics.VaultState, error) {
			stats, err := base.Stats(ctx)
			if err != nil {
				return metrics.VaultState{}, err
			}
			return metrics.VaultState{
				Ready:      stats.IsReady,
				TokenCount: stats.TokenCount,
				CacheSize:  stats.CacheSize,
			}, nil
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to register vault gauges: %w", err)
	}

	return vaultUseCase.NewVaultUseCaseWithMetrics(base, businessMetrics), nil
}

func (c *Container) initDetokenizer() (*detokenizer.Detokenizer, error) {
	vault, err := c.VaultUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get vault for detokenizer: %w", err)
	}

	businessMetrics, err := c.BusinessMetrics()
	if err != nil {
		return nil, fmt.Errorf("failed to get business metrics for detokenizer: %w", err)
	}

	return detokenizer.New(vault, c.Logger(), businessMetrics), nil
}
