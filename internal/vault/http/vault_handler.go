// Package http provides the gin handlers of the local agent API: session lifecycle,
// token ingestion, presence checks, statistics and detokenization.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/allisson/piivault/internal/httputil"
	customValidation "github.com/allisson/piivault/internal/validation"
	"github.com/allisson/piivault/internal/vault/http/dto"
	vaultUseCase "github.com/allisson/piivault/internal/vault/usecase"
)

// VaultHandler serves the /v1/vault endpoints.
type VaultHandler struct {
	vaultUseCase vaultUseCase.VaultUseCase
	logger       *slog.Logger
}

// NewVaultHandler creates a VaultHandler.
func NewVaultHandler(vaultUseCase vaultUseCase.VaultUseCase, logger *slog.Logger) *VaultHandler {
	return &VaultHandler{
		vaultUseCase: vaultUseCase,
		logger:       logger,
	}
}

// OpenSessionHandler derives the session key and makes the vault ready.
// POST /v1/vault/session - Returns 204. Opening an already open session is a no-op.
func (h *VaultHandler) OpenSessionHandler(c *gin.Context) {
	var req dto.OpenSessionRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	if err := h.vaultUseCase.Initialize(c.Request.Context(), req.SessionID, req.Challenge); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

// CloseSessionHandler wipes every record and the key and marks the vault unready.
// DELETE /v1/vault/session - Returns 204.
func (h *VaultHandler) CloseSessionHandler(c *gin.Context) {
	if err := h.vaultUseCase.Wipe(c.Request.Context()); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

// StoreTokensHandler ingests a token map.
// POST /v1/vault/tokens - Returns 201 with the number of stored tokens.
func (h *VaultHandler) StoreTokensHandler(c *gin.Context) {
	var req dto.StoreTokensRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	if err := h.vaultUseCase.StoreFromTokenMap(c.Request.Context(), req.Tokens); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.StoreTokensResponse{Stored: len(req.Tokens)})
}

// TokenExistsHandler reports whether a token has a record. The value is never returned.
// GET /v1/vault/tokens/:token - Returns 200.
func (h *VaultHandler) TokenExistsHandler(c *gin.Context) {
	exists, err := h.vaultUseCase.HasToken(c.Request.Context(), c.Param("token"))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.TokenExistsResponse{Exists: exists})
}

// StatsHandler returns aggregate vault counters.
// GET /v1/vault/stats - Returns 200. Works whether or not the vault is ready.
func (h *VaultHandler) StatsHandler(c *gin.Context) {
	stats, err := h.vaultUseCase.Stats(c.Request.Context())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapStatsToResponse(stats))
}
