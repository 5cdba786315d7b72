package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"genuverity-backend/models"
	"genuverity-backend/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	apiKeyContextKey = "genuverity.api_key"
	apiKeyHeader     = "X-API-Key"
)

// KeyAuthenticator resolves a presented API key
type KeyAuthenticator interface {
	Authenticate(ctx context.Context, raw string) (*models.APIKey, error)
}

// APIKey resolves the caller's tier. Requests without a key are anonymous;
// a key that does not verify is rejected with 401. A nil authenticator
// treats every request as anonymous.
func APIKey(auth KeyAuthenticator, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := presentedKey(c)
		if raw == "" || auth == nil {
			c.Next()
			return
		}

		key, err := auth.Authenticate(c.Request.Context(), raw)
		switch {
		case err == nil:
			c.Set(apiKeyContextKey, key)
			c.Next()
		case errors.Is(err, service.ErrInvalidAPIKey), errors.Is(err, service.ErrRevokedAPIKey):
			abort(c, http.StatusUnauthorized, "INVALID_API_KEY", err.Error())
		default:
			logger.Error("api key lookup failed", zap.Error(err))
			abort(c, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "Unable to verify API key")
		}
	}
}

// CallerKey returns the verified key of the request, nil for anonymous callers
func CallerKey(c *gin.Context) *models.APIKey {
	if v, ok := c.Get(apiKeyContextKey); ok {
		if key, ok := v.(*models.APIKey); ok {
			return key
		}
	}
	return nil
}

// CallerTier returns the tier of the request
func CallerTier(c *gin.Context) models.Tier {
	if key := CallerKey(c); key != nil {
		return key.Tier
	}
	return models.TierAnonymous
}

// presentedKey reads X-API-Key, then an Authorization bearer token
func presentedKey(c *gin.Context) string {
	if k := strings.TrimSpace(c.GetHeader(apiKeyHeader)); k != "" {
		return k
	}
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func abort(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": gin.H{},
		},
	})
}
