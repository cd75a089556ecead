package http

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

var corsMethods = []string{http.MethodGet, http.MethodPost, http.MethodDelete}

// createCORSMiddleware lets a local chat UI call the agent from the browser.
// It returns nil when CORS is off or the origin list is empty.
func createCORSMiddleware(enabled bool, allowOriginsStr string, logger *slog.Logger) gin.HandlerFunc {
	if !enabled {
		return nil
	}

	origins := parseOrigins(allowOriginsStr)
	if len(origins) == 0 {
		logger.Warn("CORS enabled without any allowed origin, skipping middleware")
		return nil
	}
	logger.Info("CORS enabled", slog.Any("origins", origins))

	// Agent auth travels in the Authorization header, never in cookies.
	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     corsMethods,
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Request-Id"},
		ExposeHeaders:    []string{"X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           time.Hour,
	})
}

func parseOrigins(originsStr string) []string {
	var origins []string
	for origin := range strings.SplitSeq(originsStr, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}
