package handlers

import (
	"context"
	"net/http"
	"time"

	"genuverity-backend/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	apiVersion    = "1.0.0"
	healthTimeout = 3 * time.Second

	statusOperational = "operational"
	statusUnavailable = "unavailable"
	statusDisabled    = "disabled"
)

var features = []string{
	"AI-Orchestrated Pipeline",
	"Semantic Claim Caching",
	"Tiered Source Credibility",
	"Constitutional AI Enforcement",
	"Image and URL Analysis",
}

// SystemHandler serves the service description and health report
type SystemHandler struct {
	lookup *service.FactCheckService
	model  *service.GeminiClient
	logger *zap.Logger
}

// NewSystemHandler creates a new system handler
func NewSystemHandler(lookup *service.FactCheckService, model *service.GeminiClient, logger *zap.Logger) *SystemHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SystemHandler{lookup: lookup, model: model, logger: logger}
}

// Root handles GET /
func (h *SystemHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message":       "GenuVerity Constitutional AI Fact-Checking API",
		"status":        statusOperational,
		"version":       apiVersion,
		"analysis_mode": h.lookup.AnalysisMode(),
		"features":      features,
	})
}

// Health handles GET /health. A failing result store makes the service
// unavailable (503); any other failing dependency only degrades it.
func (h *SystemHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	services := gin.H{}
	status := "healthy"
	code := http.StatusOK

	if h.model.Enabled() {
		services["gemini_orchestrator"] = statusOperational
	} else {
		services["gemini_orchestrator"] = "mock"
	}

	if err := h.lookup.StoreHealthy(ctx); err != nil {
		h.logger.Error("result store health check failed", zap.Error(err))
		services["result_store"] = statusUnavailable
		status = "unhealthy"
		code = http.StatusServiceUnavailable
	} else {
		services["result_store"] = statusOperational
	}

	switch err := h.lookup.CacheHealthy(ctx); {
	case h.lookup.CacheName() == "none":
		services["hot_cache"] = statusDisabled
	case err != nil:
		h.logger.Warn("hot cache health check failed", zap.Error(err))
		services["hot_cache"] = statusUnavailable
		if code == http.StatusOK {
			status = "degraded"
		}
	default:
		services["hot_cache"] = statusOperational
	}

	switch err := h.lookup.ArchiveHealthy(ctx); {
	case h.lookup.ArchiveName() == "":
		services["snapshot_archive"] = statusDisabled
	case err != nil:
		h.logger.Warn("snapshot archive health check failed", zap.Error(err))
		services["snapshot_archive"] = statusUnavailable
		if code == http.StatusOK {
			status = "degraded"
		}
	default:
		services["snapshot_archive"] = statusOperational
	}

	c.JSON(code, gin.H{
		"status":    status,
		"timestamp": float64(time.Now().UnixMilli()) / 1000,
		"services":  services,
	})
}
