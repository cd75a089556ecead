package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/allisson/piivault/internal/detokenizer"
	"github.com/allisson/piivault/internal/httputil"
	customValidation "github.com/allisson/piivault/internal/validation"
	vaultDomain "github.com/allisson/piivault/internal/vault/domain"
	"github.com/allisson/piivault/internal/vault/http/dto"
)

// DetokenizeHandler serves the /v1/detokenize endpoints. Unresolvable tokens,
// including every token while the vault is not ready, are returned verbatim.
type DetokenizeHandler struct {
	detokenizer *detokenizer.Detokenizer
	rewriter    *detokenizer.StreamRewriter
	logger      *slog.Logger
}

// NewDetokenizeHandler creates a DetokenizeHandler. chunkSize sets the read size of
// the streaming endpoint; zero selects detokenizer.DefaultChunkSize.
func NewDetokenizeHandler(d *detokenizer.Detokenizer, chunkSize int, logger *slog.Logger) *DetokenizeHandler {
	return &DetokenizeHandler{
		detokenizer: d,
		rewriter:    detokenizer.NewStreamRewriter(d, chunkSize),
		logger:      logger,
	}
}

// DetokenizeHandler rewrites one text or a list of texts.
// POST /v1/detokenize - Returns 200. With "detailed" the response also lists the
// found, resolved and missing tokens.
func (h *DetokenizeHandler) DetokenizeHandler(c *gin.Context) {
	var req dto.DetokenizeRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	ctx := c.Request.Context()

	switch {
	case req.IsBatch() && req.Detailed:
		results := make([]vaultDomain.DetokenizationResult, len(req.Texts))
		for i, text := range req.Texts {
			results[i] = h.detokenizer.ProcessDetailed(ctx, text)
		}
		c.JSON(http.StatusOK, dto.DetokenizeResultsResponse{Results: results})
	case req.IsBatch():
		c.JSON(http.StatusOK, dto.DetokenizeTextsResponse{Texts: h.detokenizer.ProcessArray(ctx, req.Texts)})
	case req.Detailed:
		c.JSON(http.StatusOK, h.detokenizer.ProcessDetailed(ctx, *req.Text))
	default:
		c.JSON(http.StatusOK, dto.DetokenizeTextResponse{Text: h.detokenizer.Process(ctx, *req.Text)})
	}
}

// StreamHandler rewrites the raw request body as it arrives and streams the result.
// POST /v1/detokenize/stream - Returns 200 with the request's content type. Tokens
// split across reads are resolved as if the body had been sent in one piece.
func (h *DetokenizeHandler) StreamHandler(c *gin.Context) {
	contentType := c.ContentType()
	if contentType == "" {
		contentType = "text/plain"
	}
	c.Header("Content-Type", contentType+"; charset=utf-8")
	c.Status(http.StatusOK)

	written, err := h.rewriter.Rewrite(c.Request.Context(), c.Request.Body, c.Writer)
	if err != nil {
		// The status line is already sent; the client sees a truncated body.
		h.logger.Warn("stream detokenization aborted",
			slog.Int64("bytes_written", written),
			slog.Any("error", err),
		)
		_ = c.Error(err)
	}
}
