package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"genuverity-backend/models"
	"genuverity-backend/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeAuthenticator struct {
	keys map[string]*models.APIKey
	err  error
}

func (f *fakeAuthenticator) Authenticate(_ context.Context, raw string) (*models.APIKey, error) {
	if f.err != nil {
		return nil, f.err
	}
	if k, ok := f.keys[raw]; ok {
		return k, nil
	}
	return nil, service.ErrInvalidAPIKey
}

func newRouter(t *testing.T, auth KeyAuthenticator, limiter *RateLimiter) *gin.Engine {
	t.Helper()
	logger := zaptest.NewLogger(t)
	r := gin.New()
	r.Use(RequestLogger(logger), APIKey(auth, logger))
	handlers := []gin.HandlerFunc{}
	if limiter != nil {
		handlers = append(handlers, limiter.Middleware())
	}
	handlers = append(handlers, func(c *gin.Context) {
		c.String(http.StatusOK, string(CallerTier(c)))
	})
	r.POST("/fact-check", handlers...)
	return r
}

func post(r http.Handler, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/fact-check", nil)
	req.RemoteAddr = "203.0.113.7:5555"
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAPIKeyResolvesTier(t *testing.T) {
	auth := &fakeAuthenticator{keys: map[string]*models.APIKey{
		"gv_aaaaaaaa_secret": {ID: uuid.New(), Tier: models.TierEnterprise},
	}}
	r := newRouter(t, auth, nil)

	w := post(r, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "anonymous", w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = post(r, map[string]string{"X-API-Key": "gv_aaaaaaaa_secret"})
	assert.Equal(t, "enterprise", w.Body.String())

	w = post(r, map[string]string{"Authorization": "bearer gv_aaaaaaaa_secret"})
	assert.Equal(t, "enterprise", w.Body.String())

	w = post(r, map[string]string{"X-API-Key": "gv_bbbbbbbb_wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"INVALID_API_KEY"`)
}

func TestAPIKeyStoreFailure(t *testing.T) {
	r := newRouter(t, &fakeAuthenticator{err: errors.New("db down")}, nil)
	w := post(r, map[string]string{"X-API-Key": "gv_aaaaaaaa_secret"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestAPIKeyWithoutAuthenticator(t *testing.T) {
	r := newRouter(t, nil, nil)
	w := post(r, map[string]string{"X-API-Key": "anything"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "anonymous", w.Body.String())
}

func TestRateLimiterPerTier(t *testing.T) {
	key := &models.APIKey{ID: uuid.New(), Tier: models.TierAuthenticated}
	auth := &fakeAuthenticator{keys: map[string]*models.APIKey{"gv_aaaaaaaa_secret": key}}
	limiter := NewRateLimiter(map[models.Tier]int{
		models.TierAnonymous:     2,
		models.TierAuthenticated: 3,
	}, zaptest.NewLogger(t))
	r := newRouter(t, auth, limiter)

	for i := 0; i < 2; i++ {
		require.Equal(t, http.StatusOK, post(r, nil).Code)
	}
	w := post(r, nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"RATE_LIMITED"`)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	// keyed callers have their own bucket
	withKey := map[string]string{"X-API-Key": "gv_aaaaaaaa_secret"}
	for i := 0; i < 3; i++ {
		require.Equal(t, http.StatusOK, post(r, withKey).Code)
	}
	assert.Equal(t, http.StatusTooManyRequests, post(r, withKey).Code)
}

func TestRateLimiterUnlimitedTier(t *testing.T) {
	limiter := NewRateLimiter(map[models.Tier]int{models.TierAnonymous: 0}, nil)
	r := newRouter(t, nil, limiter)
	for i := 0; i < 10; i++ {
		require.Equal(t, http.StatusOK, post(r, nil).Code)
	}
}

func TestRateLimiterSweep(t *testing.T) {
	limiter := NewRateLimiter(map[models.Tier]int{models.TierAnonymous: 2}, nil)
	ok, _ := limiter.reserve("anonymous:a", 2)
	require.True(t, ok)
	limiter.getLimiter("anonymous:b", 2)

	limiter.sweep(time.Now())
	assert.Len(t, limiter.limiters, 1)

	limiter.sweep(time.Now().Add(time.Hour))
	assert.Empty(t, limiter.limiters)
}
