// Package config provides application configuration through environment variables.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/allisson/go-env"
	validation "github.com/jellydator/validation"
	"github.com/joho/godotenv"

	cryptoDomain "github.com/allisson/piivault/internal/crypto/domain"
)

// Storage drivers accepted by VAULT_STORAGE_DRIVER.
const (
	StorageBadger   = "badger"
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
	StorageMySQL    = "mysql"
)

// Config holds all application configuration.
type Config struct {
	// ServerHost is the address the agent binds to. Loopback by default.
	ServerHost string
	// ServerPort is the port the agent listens on.
	ServerPort int

	// LogLevel is the logging level (debug, info, warn, error).
	LogLevel string

	// VaultStorageDriver selects the record store (badger, memory, postgres, mysql).
	VaultStorageDriver string
	// VaultBadgerPath is the Badger data directory.
	VaultBadgerPath string
	// VaultNamespace isolates this vault's records inside a shared store.
	VaultNamespace string
	// VaultAlgorithm is the AEAD used to seal records.
	VaultAlgorithm string
	// VaultKDFIterations is the PBKDF2 iteration count.
	VaultKDFIterations int
	// VaultSessionID and VaultSessionChallenge let CLI commands open the session
	// without the HTTP API.
	VaultSessionID        string
	VaultSessionChallenge string

	// DBConnectionString is the DSN for the postgres and mysql drivers.
	DBConnectionString string
	// DBMaxOpenConnections is the maximum number of open connections to the database.
	DBMaxOpenConnections int
	// DBMaxIdleConnections is the maximum number of idle connections in the pool.
	DBMaxIdleConnections int
	// DBConnMaxLifetime is the maximum amount of time a connection may be reused.
	DBConnMaxLifetime time.Duration

	// AgentSecretHash is the Argon2id hash of the bearer secret. Empty disables
	// authentication.
	AgentSecretHash string

	// RateLimitEnabled turns on per-IP rate limiting of the API.
	RateLimitEnabled bool
	// RateLimitRequestsPerSec is the sustained request rate per client IP.
	RateLimitRequestsPerSec float64
	// RateLimitBurst is the burst size per client IP.
	RateLimitBurst int

	// CORSEnabled indicates whether CORS is enabled.
	CORSEnabled bool
	// CORSAllowOrigins is a comma-separated list of allowed origins.
	CORSAllowOrigins string

	// MetricsEnabled indicates whether metrics collection is enabled.
	MetricsEnabled bool
	// MetricsNamespace prefixes every metric name.
	MetricsNamespace string
	// MetricsPort is the port number for the metrics server.
	MetricsPort int

	// StreamChunkSize is the read size of the streaming detokenizer.
	StreamChunkSize int
}

// Load loads configuration from environment variables and .env file.
func Load() *Config {
	loadDotEnv()

	return &Config{
		// Server
		ServerHost: env.GetString("SERVER_HOST", "127.0.0.1"),
		ServerPort: env.GetInt("SERVER_PORT", 8700),

		// Logging
		LogLevel: env.GetString("LOG_LEVEL", "info"),

		// Vault
		VaultStorageDriver:    env.GetString("VAULT_STORAGE_DRIVER", StorageBadger),
		VaultBadgerPath:       env.GetString("VAULT_BADGER_PATH", "./data/vault"),
		VaultNamespace:        env.GetString("VAULT_NAMESPACE", "default"),
		VaultAlgorithm:        env.GetString("VAULT_ALGORITHM", string(cryptoDomain.AESGCM)),
		VaultKDFIterations:    env.GetInt("VAULT_KDF_ITERATIONS", cryptoDomain.DefaultKDFIterations),
		VaultSessionID:        env.GetString("VAULT_SESSION_ID", ""),
		VaultSessionChallenge: env.GetString("VAULT_SESSION_CHALLENGE", ""),

		// Database
		DBConnectionString:   env.GetString("DB_CONNECTION_STRING", ""),
		DBMaxOpenConnections: env.GetInt("DB_MAX_OPEN_CONNECTIONS", 10),
		DBMaxIdleConnections: env.GetInt("DB_MAX_IDLE_CONNECTIONS", 2),
		DBConnMaxLifetime:    env.GetDuration("DB_CONN_MAX_LIFETIME_MINUTES", 5, time.Minute),

		// Auth
		AgentSecretHash: env.GetString("AGENT_SECRET_HASH", ""),

		// Rate limiting
		RateLimitEnabled:        env.GetBool("RATE_LIMIT_ENABLED", true),
		RateLimitRequestsPerSec: env.GetFloat64("RATE_LIMIT_REQUESTS_PER_SEC", 50.0),
		RateLimitBurst:          env.GetInt("RATE_LIMIT_BURST", 100),

		// CORS
		CORSEnabled:      env.GetBool("CORS_ENABLED", false),
		CORSAllowOrigins: env.GetString("CORS_ALLOW_ORIGINS", ""),

		// Metrics
		MetricsEnabled:   env.GetBool("METRICS_ENABLED", true),
		MetricsNamespace: env.GetString("METRICS_NAMESPACE", "piivault"),
		MetricsPort:      env.GetInt("METRICS_PORT", 8701),

		// Streaming
		StreamChunkSize: env.GetInt("STREAM_CHUNK_SIZE", 4096),
	}
}

// Validate checks the settings that would otherwise only fail at first use.
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.VaultStorageDriver,
			validation.Required,
			validation.In(StorageBadger, StorageMemory, StoragePostgres, StorageMySQL),
		),
		validation.Field(&c.VaultBadgerPath,
			validation.When(c.VaultStorageDriver == StorageBadger, validation.Required),
		),
		validation.Field(&c.VaultNamespace, validation.Required),
		validation.Field(&c.VaultAlgorithm,
			validation.Required,
			validation.In(string(cryptoDomain.AESGCM), string(cryptoDomain.ChaCha20)),
		),
		validation.Field(&c.DBConnectionString,
			validation.When(c.IsSQLStorage(), validation.Required),
		),
		validation.Field(&c.ServerPort, validation.Required, validation.Min(1), validation.Max(65535)),
		validation.Field(&c.MetricsPort,
			validation.When(c.MetricsEnabled, validation.Required, validation.Min(1), validation.Max(65535)),
		),
		validation.Field(&c.RateLimitRequestsPerSec,
			validation.When(c.RateLimitEnabled, validation.Required, validation.Min(0.0).Exclusive()),
		),
		validation.Field(&c.RateLimitBurst,
			validation.When(c.RateLimitEnabled, validation.Required, validation.Min(1)),
		),
		validation.Field(&c.StreamChunkSize, validation.Min(0)),
	)
}

// IsSQLStorage reports whether the configured record store is a SQL database.
func (c *Config) IsSQLStorage() bool {
	return c.VaultStorageDriver == StoragePostgres || c.VaultStorageDriver == StorageMySQL
}

// HasSessionCredentials reports whether the session can be opened from configuration.
func (c *Config) HasSessionCredentials() bool {
	return c.VaultSessionID != "" && c.VaultSessionChallenge != ""
}

// GetGinMode returns the appropriate Gin mode based on log level.
func (c *Config) GetGinMode() string {
	if c.LogLevel == "debug" {
		return "debug"
	}
	return "release"
}

// loadDotEnv searches for a .env file from the current directory up to the root and
// loads the first one found.
func loadDotEnv() {
	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	dir := cwd
	for {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			_ = godotenv.Load(envPath)
			return
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
}
