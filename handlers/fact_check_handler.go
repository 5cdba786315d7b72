package handlers

import (
	"errors"
	"net/http"
	"time"

	"genuverity-backend/fixtures"
	"genuverity-backend/models"
	"genuverity-backend/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const resultFallbackHeader = "X-Result-Fallback"

// FactCheckHandler handles claim analysis and result lookups
type FactCheckHandler struct {
	lookup         *service.FactCheckService
	model          *service.GeminiClient
	uploads        *UploadHandler
	fallbackToDemo bool
	logger         *zap.Logger
}

// FactCheckHandlerOption is a functional option for FactCheckHandler
type FactCheckHandlerOption func(*FactCheckHandler)

// WithUploads stores images submitted for analysis
func WithUploads(u *UploadHandler) FactCheckHandlerOption {
	return func(h *FactCheckHandler) {
		h.uploads = u
	}
}

// WithDemoFallback serves the default demo result for unknown ids instead of 404
func WithDemoFallback(enabled bool) FactCheckHandlerOption {
	return func(h *FactCheckHandler) {
		h.fallbackToDemo = enabled
	}
}

// WithHandlerLogger sets the logger
func WithHandlerLogger(l *zap.Logger) FactCheckHandlerOption {
	return func(h *FactCheckHandler) {
		h.logger = l
	}
}

// NewFactCheckHandler creates a new fact-check handler
func NewFactCheckHandler(lookup *service.FactCheckService, model *service.GeminiClient, opts ...FactCheckHandlerOption) *FactCheckHandler {
	h := &FactCheckHandler{
		lookup: lookup,
		model:  model,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.uploads == nil {
		h.uploads = NewUploadHandler(nil, nil, 0)
	}
	return h
}

// ClaimRequest is the body of the claim endpoints
type ClaimRequest struct {
	Claim string `json:"claim"`
}

// URLRequest is the body of POST /fact-check/url
type URLRequest struct {
	URL string `json:"url" binding:"required"`
}

// FactCheckResponse is the body of POST /fact-check
type FactCheckResponse struct {
	Result      *models.FactCheckResult `json:"result"`
	CacheStatus string                  `json:"cache_status"`
	CachedAt    *time.Time              `json:"cached_at,omitempty"`
	Similarity  *float64                `json:"similarity,omitempty"`
}

// FactCheckUltimate handles POST /fact-check-ultimate
func (h *FactCheckHandler) FactCheckUltimate(c *gin.Context) {
	res, ok := h.analyze(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, models.NewUltimateResponse(res.Result, res.CacheStatus, res.CachedAt))
}

// FactCheck handles POST /fact-check
func (h *FactCheckHandler) FactCheck(c *gin.Context) {
	res, ok := h.analyze(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, FactCheckResponse{
		Result:      res.Result,
		CacheStatus: res.CacheStatus,
		CachedAt:    res.CachedAt,
		Similarity:  res.Similarity,
	})
}

func (h *FactCheckHandler) analyze(c *gin.Context) (*service.LookupResult, bool) {
	var req ClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, CodeInvalidRequest, "Request body must be JSON with a claim field", nil)
		return nil, false
	}

	res, err := h.lookup.Analyze(c.Request.Context(), req.Claim)
	if err != nil {
		h.respondServiceError(c, err)
		return nil, false
	}
	return res, true
}

// FactCheckURL handles POST /fact-check/url
func (h *FactCheckHandler) FactCheckURL(c *gin.Context) {
	var req URLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, CodeInvalidRequest, "Request body must be JSON with a url field", nil)
		return
	}
	if _, err := service.ValidateArticleURL(req.URL); err != nil {
		respondError(c, http.StatusBadRequest, CodeInvalidURL, err.Error(), gin.H{"url": req.URL})
		return
	}

	result := h.model.ProcessURL(c.Request.Context(), req.URL)
	c.JSON(http.StatusOK, FactCheckResponse{Result: result, CacheStatus: uncachedStatus(result)})
}

// FactCheckImage handles POST /fact-check/image
func (h *FactCheckHandler) FactCheckImage(c *gin.Context) {
	img, ok := h.uploads.Read(c)
	if !ok {
		return
	}

	result := h.model.ProcessImage(c.Request.Context(), img.Filename, img.MimeType, img.Data)
	h.uploads.Store(c, img, result.ID)
	c.JSON(http.StatusOK, FactCheckResponse{Result: result, CacheStatus: uncachedStatus(result)})
}

// GetResult handles GET /results/:id. The body is the stored serialization, byte for byte.
func (h *FactCheckHandler) GetResult(c *gin.Context) {
	id := c.Param("id")
	if !models.IsURLSafeID(id) {
		h.notFound(c, id)
		return
	}

	data, err := h.lookup.GetByIDJSON(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrResultNotFound) {
			h.notFound(c, id)
			return
		}
		h.respondServiceError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", data)
}

// RefreshResult handles POST /results/:id/refresh
func (h *FactCheckHandler) RefreshResult(c *gin.Context) {
	id := c.Param("id")
	if !models.IsURLSafeID(id) {
		respondError(c, http.StatusNotFound, CodeNotFound, "Result not found", gin.H{"id": id})
		return
	}

	res, err := h.lookup.Refresh(c.Request.Context(), id)
	if err != nil {
		h.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, FactCheckResponse{Result: res.Result, CacheStatus: res.CacheStatus})
}

// notFound answers an unknown id with 404, or with the default demo result
// when demo fallback is on
func (h *FactCheckHandler) notFound(c *gin.Context, id string) {
	if h.fallbackToDemo {
		h.logger.Info("unknown result id; serving demo result", zap.String("id", id))
		c.Header(resultFallbackHeader, "default")
		c.JSON(http.StatusOK, fixtures.Default())
		return
	}
	respondError(c, http.StatusNotFound, CodeNotFound, "Result not found", gin.H{"id": id})
}

func (h *FactCheckHandler) respondServiceError(c *gin.Context, err error) {
	var claimErr *service.ClaimError
	switch {
	case errors.As(err, &claimErr):
		respondError(c, http.StatusBadRequest, CodeInvalidClaim, claimErr.Error(), claimErr.Details())
	case errors.Is(err, service.ErrResultNotFound):
		respondError(c, http.StatusNotFound, CodeNotFound, "Result not found", gin.H{"id": c.Param("id")})
	case errors.Is(err, service.ErrRefreshFailed):
		h.logger.Warn("refresh failed", zap.String("id", c.Param("id")), zap.Error(err))
		respondError(c, http.StatusInternalServerError, CodeProcessingFailed,
			"Refresh failed; the previous result is unchanged", gin.H{"previous_result_kept": true})
	case errors.Is(err, service.ErrStoreFailure):
		h.logger.Error("result store unavailable", zap.Error(err))
		respondError(c, http.StatusServiceUnavailable, CodeServiceUnavailable, "Result store is unavailable", nil)
	default:
		h.logger.Error("request failed", zap.Error(err))
		respondError(c, http.StatusInternalServerError, CodeProcessingFailed, "Failed to process request", nil)
	}
}

func uncachedStatus(r *models.FactCheckResult) string {
	if r.AnalysisMode == models.AnalysisModeFallback {
		return service.CacheStatusFallback
	}
	return service.CacheStatusFresh
}
