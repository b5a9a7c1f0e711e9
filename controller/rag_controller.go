package controller

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ndisplan/ragserver/models"
	"github.com/ndisplan/ragserver/services"
)

// RAGController handles the HTTP requests for the RAG API. It depends on the
// service layer for the actual business logic.
type RAGController struct {
	ragService services.RAGService
	ingest     services.IngestService
	log        *zap.Logger
}

// NewRAGController is called from main.go to inject the service dependencies.
func NewRAGController(ragService services.RAGService, ingest services.IngestService, log *zap.Logger) *RAGController {
	return &RAGController{
		ragService: ragService,
		ingest:     ingest,
		log:        log.Named("http"),
	}
}

// Plan is the Gin handler for POST /api/v1/plan. It answers one question
// from the indexed corpus and returns the answer as both markdown and
// rendered HTML.
func (c *RAGController) Plan(ctx *gin.Context) {
	var req models.PlanRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "query is required"})
		return
	}

	response, err := c.ragService.Answer(ctx.Request.Context(), req.Query)
	if err != nil {
		c.log.Error("plan request failed", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate answer"})
		return
	}

	response.AnswerHTML = RenderAnswerHTML(response.Answer)
	ctx.JSON(http.StatusOK, response)
}

// Reindex is the Gin handler for POST /api/v1/reindex. The rebuild runs in
// the request; a second request while one is active gets 409.
func (c *RAGController) Reindex(ctx *gin.Context) {
	response, err := c.ingest.Reindex(ctx.Request.Context())
	if err != nil {
		if errors.Is(err, services.ErrRebuildRunning) {
			ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.log.Error("reindex failed", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Rebuild failed"})
		return
	}

	ctx.JSON(http.StatusOK, response)
}

// Stats is the Gin handler for GET /api/v1/stats.
func (c *RAGController) Stats(ctx *gin.Context) {
	response, err := c.ragService.Stats(ctx.Request.Context())
	if err != nil {
		c.log.Error("stats request failed", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read index stats"})
		return
	}

	ctx.JSON(http.StatusOK, response)
}
