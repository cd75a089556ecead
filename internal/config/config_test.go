package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		validate func(t *testing.T, cfg *Config)
	}{
		{
			name:    "load default configuration",
			envVars: map[string]string{},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "127.0.0.1", cfg.ServerHost)
				assert.Equal(t, 8700, cfg.ServerPort)
				assert.Equal(t, "info", cfg.LogLevel)
				assert.Equal(t, StorageBadger, cfg.VaultStorageDriver)
				assert.Equal(t, "./data/vault", cfg.VaultBadgerPath)
				assert.Equal(t, "default", cfg.VaultNamespace)
				assert.Equal(t, "aes-gcm", cfg.VaultAlgorithm)
				assert.Equal(t, 210_000, cfg.VaultKDFIterations)
				assert.False(t, cfg.HasSessionCredentials())
				assert.Equal(t, 5*time.Minute, cfg.DBConnMaxLifetime)
				assert.Empty(t, cfg.AgentSecretHash)
				assert.True(t, cfg.RateLimitEnabled)
				assert.False(t, cfg.CORSEnabled)
				assert.True(t, cfg.MetricsEnabled)
				assert.Equal(t, "piivault", cfg.MetricsNamespace)
				assert.Equal(t, 8701, cfg.MetricsPort)
				assert.Equal(t, 4096, cfg.StreamChunkSize)
				assert.NoError(t, cfg.Validate())
			},
		},
		{
			name: "load custom vault configuration",
			envVars: map[string]string{
				"VAULT_STORAGE_DRIVER":    "memory",
				"VAULT_NAMESPACE":         "tenant-a",
				"VAULT_ALGORITHM":         "chacha20-poly1305",
				"VAULT_KDF_ITERATIONS":    "300000",
				"VAULT_SESSION_ID":        "session-123",
				"VAULT_SESSION_CHALLENGE": "challenge-value-123456",
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, StorageMemory, cfg.VaultStorageDriver)
				assert.Equal(t, "tenant-a", cfg.VaultNamespace)
				assert.Equal(t, "chacha20-poly1305", cfg.VaultAlgorithm)
				assert.Equal(t, 300000, cfg.VaultKDFIterations)
				assert.True(t, cfg.HasSessionCredentials())
				assert.False(t, cfg.IsSQLStorage())
				assert.NoError(t, cfg.Validate())
			},
		},
		{
			name: "load custom database configuration",
			envVars: map[string]string{
				"VAULT_STORAGE_DRIVER":         "mysql",
				"DB_CONNECTION_STRING":         "user:password@tcp(localhost:3306)/vault",
				"DB_MAX_OPEN_CONNECTIONS":      "50",
				"DB_MAX_IDLE_CONNECTIONS":      "10",
				"DB_CONN_MAX_LIFETIME_MINUTES": "10",
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.True(t, cfg.IsSQLStorage())
				assert.Equal(t, "user:password@tcp(localhost:3306)/vault", cfg.DBConnectionString)
				assert.Equal(t, 50, cfg.DBMaxOpenConnections)
				assert.Equal(t, 10, cfg.DBMaxIdleConnections)
				assert.Equal(t, 10*time.Minute, cfg.DBConnMaxLifetime)
				assert.NoError(t, cfg.Validate())
			},
		},
		{
			name: "load custom server and metrics configuration",
			envVars: map[string]string{
				"SERVER_HOST":       "0.0.0.0",
				"SERVER_PORT":       "9090",
				"METRICS_ENABLED":   "false",
				"METRICS_NAMESPACE": "agent",
				"LOG_LEVEL":         "debug",
				"STREAM_CHUNK_SIZE": "512",
			},
			validate: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "0.0.0.0", cfg.ServerHost)
				assert.Equal(t, 9090, cfg.ServerPort)
				assert.False(t, cfg.MetricsEnabled)
				assert.Equal(t, "agent", cfg.MetricsNamespace)
				assert.Equal(t, "debug", cfg.GetGinMode())
				assert.Equal(t, 512, cfg.StreamChunkSize)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Clearenv()

			for key, value := range tt.envVars {
				require.NoError(t, os.Setenv(key, value))
			}

			tt.validate(t, Load())
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			ServerPort:              8700,
			VaultStorageDriver:      StorageBadger,
			VaultBadgerPath:         "/tmp/vault",
			VaultNamespace:          "default",
			VaultAlgorithm:          "aes-gcm",
			MetricsEnabled:          true,
			MetricsPort:             8701,
			RateLimitEnabled:        true,
			RateLimitRequestsPerSec: 10,
			RateLimitBurst:          20,
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "unknown driver", mutate: func(c *Config) { c.VaultStorageDriver = "sqlite" }, wantErr: "VaultStorageDriver"},
		{name: "badger without path", mutate: func(c *Config) { c.VaultBadgerPath = "" }, wantErr: "VaultBadgerPath"},
		{name: "memory without path", mutate: func(c *Config) {
			c.VaultStorageDriver = StorageMemory
			c.VaultBadgerPath = ""
		}},
		{name: "postgres without dsn", mutate: func(c *Config) { c.VaultStorageDriver = StoragePostgres }, wantErr: "DBConnectionString"},
		{name: "unknown algorithm", mutate: func(c *Config) { c.VaultAlgorithm = "des" }, wantErr: "VaultAlgorithm"},
		{name: "empty namespace", mutate: func(c *Config) { c.VaultNamespace = "" }, wantErr: "VaultNamespace"},
		{name: "zero rate", mutate: func(c *Config) { c.RateLimitRequestsPerSec = 0 }, wantErr: "RateLimitRequestsPerSec"},
		{name: "rate limit disabled", mutate: func(c *Config) {
			c.RateLimitEnabled = false
			c.RateLimitRequestsPerSec = 0
			c.RateLimitBurst = 0
		}},
		{name: "bad port", mutate: func(c *Config) { c.ServerPort = 70000 }, wantErr: "ServerPort"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
