package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

const testSecretHash = "$argon2id$v=19$m=65536,t=1,p=4$c2FsdA$aGFzaA"

func newAuthRouter(svc *mockSecretService) *gin.Engine {
	router := gin.New()
	router.Use(AgentAuthMiddleware(svc, testSecretHash, createTestLogger()))
	router.GET("/v1/vault/stats", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return router
}

func TestAgentAuthMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		secret     string
		matches    bool
		wantStatus int
	}{
		{name: "valid secret", header: "Bearer s3cret", secret: "s3cret", matches: true, wantStatus: http.StatusOK},
		{name: "case-insensitive scheme", header: "bEaReR s3cret", secret: "s3cret", matches: true, wantStatus: http.StatusOK},
		{name: "wrong secret", header: "Bearer nope", secret: "nope", matches: false, wantStatus: http.StatusUnauthorized},
		{name: "missing header", wantStatus: http.StatusUnauthorized},
		{name: "basic scheme", header: "Basic czNjcmV0", wantStatus: http.StatusUnauthorized},
		{name: "empty bearer", header: "Bearer    ", wantStatus: http.StatusUnauthorized},
		{name: "scheme only", header: "Bearer", wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockSecretService{}
			if tt.secret != "" {
				svc.On("CompareSecret", tt.secret, testSecretHash).Return(tt.matches).Once()
			}

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/v1/vault/stats", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			newAuthRouter(svc).ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusUnauthorized {
				assert.Contains(t, w.Body.String(), `"error":"unauthorized"`)
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestBearerSecret(t *testing.T) {
	secret, ok := bearerSecret("Bearer abc")
	assert.True(t, ok)
	assert.Equal(t, "abc", secret)

	_, ok = bearerSecret("Bearerabc")
	assert.False(t, ok)
}
