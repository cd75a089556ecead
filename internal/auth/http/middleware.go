// Package http provides the authentication and rate limiting middleware of the local agent.
package http

import (
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"

	authService "github.com/allisson/piivault/internal/auth/service"
	apperrors "github.com/allisson/piivault/internal/errors"
	"github.com/allisson/piivault/internal/httputil"
)

const bearerPrefix = "bearer "

// AgentAuthMiddleware requires "Authorization: Bearer <agent secret>" on every request
// and verifies the secret against secretHash. The scheme is matched case-insensitively.
// Any failure responds 401 without saying which check failed.
func AgentAuthMiddleware(
	secretService authService.SecretService,
	secretHash string,
	logger *slog.Logger,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		secret, ok := bearerSecret(c.GetHeader("Authorization"))
		if !ok {
			logger.Debug("agent authentication failed: missing or malformed authorization header")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		if !secretService.CompareSecret(secret, secretHash) {
			logger.Debug("agent authentication failed: secret mismatch",
				slog.String("client_ip", c.ClientIP()))
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		c.Next()
	}
}

func bearerSecret(header string) (string, bool) {
	if len(header) <= len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return "", false
	}
	secret := strings.TrimSpace(header[len(bearerPrefix):])
	return secret, secret != ""
}
