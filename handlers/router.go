package handlers

import (
	"net/http"
	"time"

	"genuverity-backend/metrics"
	"genuverity-backend/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RouterConfig holds the cross-cutting pieces of the HTTP surface
type RouterConfig struct {
	CORSAllowedOrigins []string
	KeyAuth            middleware.KeyAuthenticator
	RateLimiter        *middleware.RateLimiter // nil disables rate limiting
	Logger             *zap.Logger
}

// NewRouter wires every route
func NewRouter(cfg RouterConfig, factCheck *FactCheckHandler, system *SystemHandler) *gin.Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(logger))
	r.Use(cors.New(corsConfig(cfg.CORSAllowedOrigins)))
	r.Use(middleware.APIKey(cfg.KeyAuth, logger))

	r.GET("/", system.Root)
	r.GET("/health", system.Health)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	r.GET("/results/:id", factCheck.GetResult)

	// Analysis endpoints spend the caller's hourly budget
	analysis := r.Group("/")
	if cfg.RateLimiter != nil {
		analysis.Use(cfg.RateLimiter.Middleware())
	}
	{
		analysis.POST("/fact-check-ultimate", factCheck.FactCheckUltimate)
		analysis.POST("/fact-check", factCheck.FactCheck)
		analysis.POST("/fact-check/image", factCheck.FactCheckImage)
		analysis.POST("/fact-check/url", factCheck.FactCheckURL)
		analysis.POST("/results/:id/refresh", factCheck.RefreshResult)
	}

	r.NoRoute(func(c *gin.Context) {
		respondError(c, http.StatusNotFound, CodeNotFound, "Route not found", gin.H{"path": c.Request.URL.Path})
	})
	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", "X-API-Key"},
		ExposeHeaders: []string{"Content-Length", "Retry-After", "X-Request-ID", resultFallbackHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}
	return cfg
}
