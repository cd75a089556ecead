// Package integration exercises the agent API end to end through the DI container,
// once per storage driver. The SQL drivers are skipped when no test database is
// reachable.
package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/piivault/internal/app"
	authService "github.com/allisson/piivault/internal/auth/service"
	"github.com/allisson/piivault/internal/config"
	cryptoDomain "github.com/allisson/piivault/internal/crypto/domain"
	"github.com/allisson/piivault/internal/testutil"
	vaultDomain "github.com/allisson/piivault/internal/vault/domain"
	"github.com/allisson/piivault/internal/vault/http/dto"
)

const (
	sessionID = "conversation-42"
	challenge = "correct horse battery staple"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type agent struct {
	container *app.Container
	server    *httptest.Server
	secret    string
}

func newConfig(driver string) *config.Config {
	return &config.Config{
		LogLevel:           "error",
		ServerHost:         "127.0.0.1",
		VaultStorageDriver: driver,
		VaultNamespace:     "integration",
		VaultAlgorithm:     string(cryptoDomain.ChaCha20),
		VaultKDFIterations: cryptoDomain.MinKDFIterations,
		MetricsNamespace:   "piivault",
		StreamChunkSize:    8,
	}
}

func startAgent(t *testing.T, cfg *config.Config) *agent {
	t.Helper()

	container := app.NewContainer(cfg)
	server, err := container.HTTPServer()
	require.NoError(t, err)

	ts := httptest.NewServer(server.GetHandler())
	t.Cleanup(func() {
		ts.Close()
		_ = container.Shutdown(context.Background())
	})

	return &agent{container: container, server: ts}
}

func (a *agent) do(t *testing.T, method, path string, body any) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	return a.doRaw(t, method, path, "application/json", reader)
}

func (a *agent) doRaw(t *testing.T, method, path, contentType string, body io.Reader) (*http.Response, []byte) {
	t.Helper()

	req, err := http.NewRequest(method, a.server.URL+path, body)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", contentType)
	}
	if a.secret != "" {
		req.Header.Set("Authorization", "Bearer "+a.secret)
	}

	client := &http.Client{Timeout: 30 * time.Second}
	//nolint:gosec // controlled test environment with localhost URLs
	resp, err := client.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, raw
}

func decode[T any](t *testing.T, raw []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v), string(raw))
	return v
}

func configForDriver(t *testing.T, driver string) *config.Config {
	t.Helper()

	cfg := newConfig(driver)
	switch driver {
	case config.StorageBadger:
		cfg.VaultBadgerPath = t.TempDir()
	case config.StoragePostgres:
		testutil.SetupPostgresDB(t)
		cfg.DBConnectionString = testutil.GetPostgresTestDSN()
	case config.StorageMySQL:
		testutil.SetupMySQLDB(t)
		cfg.DBConnectionString = testutil.GetMySQLTestDSN()
	}
	cfg.DBMaxOpenConnections = 5
	cfg.DBMaxIdleConnections = 1
	cfg.DBConnMaxLifetime = time.Minute
	return cfg
}

func TestAgentLifecycle(t *testing.T) {
	drivers := []string{
		config.StorageMemory,
		config.StorageBadger,
		config.StoragePostgres,
		config.StorageMySQL,
	}

	for _, driver := range drivers {
		t.Run(driver, func(t *testing.T) {
			a := startAgent(t, configForDriver(t, driver))

			resp, _ := a.do(t, http.MethodGet, "/health", nil)
			assert.Equal(t, http.StatusOK, resp.StatusCode)

			resp, _ = a.do(t, http.MethodGet, "/ready", nil)
			assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

			tokens := map[string]any{"tokens": map[string]string{
				"TOKEN_p1": "Alice Smith",
				"TOKEN_e1": "alice@example.com",
			}}

			resp, _ = a.do(t, http.MethodPost, "/v1/vault/tokens", tokens)
			assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

			resp, _ = a.do(t, http.MethodPost, "/v1/vault/session",
				map[string]string{"session_id": sessionID, "challenge": challenge})
			require.Equal(t, http.StatusNoContent, resp.StatusCode)

			resp, _ = a.do(t, http.MethodGet, "/ready", nil)
			assert.Equal(t, http.StatusOK, resp.StatusCode)

			resp, body := a.do(t, http.MethodPost, "/v1/vault/tokens", tokens)
			require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
			assert.Equal(t, 2, decode[dto.StoreTokensResponse](t, body).Stored)

			resp, body = a.do(t, http.MethodGet, "/v1/vault/tokens/TOKEN_p1", nil)
			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.True(t, decode[dto.TokenExistsResponse](t, body).Exists)
			assert.NotContains(t, string(body), "Alice")

			resp, body = a.do(t, http.MethodGet, "/v1/vault/tokens/TOKEN_nope", nil)
			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.False(t, decode[dto.TokenExistsResponse](t, body).Exists)

			resp, body = a.do(t, http.MethodPost, "/v1/detokenize",
				map[string]string{"text": "Dear TOKEN_p1 <TOKEN_e1>, ref TOKEN_x9."})
			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Equal(t, "Dear Alice Smith <alice@example.com>, ref TOKEN_x9.",
				decode[dto.DetokenizeTextResponse](t, body).Text)

			resp, body = a.do(t, http.MethodPost, "/v1/detokenize",
				map[string]any{"texts": []string{"TOKEN_p1", "no tokens", "TOKEN_e1"}})
			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Equal(t, []string{"Alice Smith", "no tokens", "alice@example.com"},
				decode[dto.DetokenizeTextsResponse](t, body).Texts)

			resp, body = a.do(t, http.MethodPost, "/v1/detokenize",
				map[string]any{"text": "TOKEN_p1 and TOKEN_x9", "detailed": true})
			assert.Equal(t, http.StatusOK, resp.StatusCode)
			detailed := decode[vaultDomain.DetokenizationResult](t, body)
			assert.Equal(t, "Alice Smith and TOKEN_x9", detailed.Text)
			assert.Equal(t, []string{"TOKEN_p1"}, detailed.TokensResolved)
			assert.Equal(t, []string{"TOKEN_x9"}, detailed.TokensMissing)

			// The stream chunk size is smaller than a token, so tokens span reads.
			resp, body = a.doRaw(t, http.MethodPost, "/v1/detokenize/stream", "text/plain",
				strings.NewReader("Contact TOKEN_p1 at TOKEN_e1"))
			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Equal(t, "Contact Alice Smith at alice@example.com", string(body))

			resp, body = a.do(t, http.MethodGet, "/v1/vault/stats", nil)
			assert.Equal(t, http.StatusOK, resp.StatusCode)
			stats := decode[dto.StatsResponse](t, body)
			assert.Equal(t, int64(2), stats.TokenCount)
			assert.True(t, stats.IsReady)

			resp, _ = a.do(t, http.MethodDelete, "/v1/vault/session", nil)
			assert.Equal(t, http.StatusNoContent, resp.StatusCode)

			resp, _ = a.do(t, http.MethodGet, "/ready", nil)
			assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

			// An unready vault leaves text untouched.
			resp, body = a.do(t, http.MethodPost, "/v1/detokenize", map[string]string{"text": "Dear TOKEN_p1"})
			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Equal(t, "Dear TOKEN_p1", decode[dto.DetokenizeTextResponse](t, body).Text)

			resp, body = a.do(t, http.MethodGet, "/v1/vault/stats", nil)
			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Equal(t, int64(0), decode[dto.StatsResponse](t, body).TokenCount)
		})
	}
}

func TestAgentRestartKeepsRecordsForTheSameSession(t *testing.T) {
	path := t.TempDir()
	ctx := context.Background()

	cfg := newConfig(config.StorageBadger)
	cfg.VaultBadgerPath = path
	cfg.VaultSessionID = sessionID
	cfg.VaultSessionChallenge = challenge

	first := app.NewContainer(cfg)
	opened, err := first.OpenSessionFromConfig(ctx)
	require.NoError(t, err)
	require.True(t, opened)

	vault, err := first.VaultUseCase()
	require.NoError(t, err)
	require.NoError(t, vault.Store(ctx, "TOKEN_p1", "Alice Smith"))
	require.NoError(t, first.Shutdown(ctx))

	t.Run("same credentials", func(t *testing.T) {
		second := app.NewContainer(cfg)
		defer func() { _ = second.Shutdown(ctx) }()

		_, err := second.OpenSessionFromConfig(ctx)
		require.NoError(t, err)

		d, err := second.Detokenizer()
		require.NoError(t, err)
		assert.Equal(t, "Hi Alice Smith", d.Process(ctx, "Hi TOKEN_p1"))
	})

	t.Run("different challenge", func(t *testing.T) {
		other := *cfg
		other.VaultSessionChallenge = "a different challenge"

		third := app.NewContainer(&other)
		defer func() { _ = third.Shutdown(ctx) }()

		_, err := third.OpenSessionFromConfig(ctx)
		require.NoError(t, err)

		// The record exists but cannot be opened with another key.
		d, err := third.Detokenizer()
		require.NoError(t, err)
		assert.Equal(t, "Hi TOKEN_p1", d.Process(ctx, "Hi TOKEN_p1"))
	})
}

func TestAgentAuthentication(t *testing.T) {
	secretService, err := authService.NewSecretService()
	require.NoError(t, err)

	plain, hashed, err := secretService.GenerateSecret()
	require.NoError(t, err)

	cfg := newConfig(config.StorageMemory)
	cfg.AgentSecretHash = hashed
	a := startAgent(t, cfg)

	resp, _ := a.do(t, http.MethodGet, "/v1/vault/stats", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	a.secret = "wrong-secret"
	resp, _ = a.do(t, http.MethodGet, "/v1/vault/stats", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	a.secret = plain
	resp, _ = a.do(t, http.MethodGet, "/v1/vault/stats", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Probes stay open.
	a.secret = ""
	resp, _ = a.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
