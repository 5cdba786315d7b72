package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"genuverity-backend/cache"
	"genuverity-backend/metrics"
	"genuverity-backend/models"
	"genuverity-backend/repository"
	"genuverity-backend/storage"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// DefaultSimilarityThreshold is the cosine similarity above which two claims share a result
const DefaultSimilarityThreshold = 0.85

// Cache status values reported with every analysis
const (
	CacheStatusCached   = "cached"
	CacheStatusFresh    = "fresh"
	CacheStatusFallback = "fallback"
)

var (
	ErrResultNotFound = repository.ErrResultNotFound
	ErrRefreshFailed  = errors.New("refresh failed; previous result kept")
	ErrStoreFailure   = errors.New("result store unavailable")
)

// ResultStore is the authoritative store of results
type ResultStore interface {
	Get(ctx context.Context, id string) (*repository.StoredResult, error)
	Put(ctx context.Context, rec *repository.StoredResult) error
	FindSimilar(ctx context.Context, embedding []float32, model string, threshold float64) (*repository.StoredResult, float64, error)
	Ping(ctx context.Context) error
}

// LookupResult is a result plus how it was obtained
type LookupResult struct {
	Result      *models.FactCheckResult
	CacheStatus string
	CachedAt    *time.Time
	Similarity  *float64
}

// FactCheckService maps claims and result ids to results. At most one
// analysis per result id runs at a time; concurrent callers share it.
type FactCheckService struct {
	store     ResultStore
	hot       cache.Cache
	archive   storage.Storage
	analyzer  Analyzer
	embedder  Embedder
	threshold float64
	minLength int
	maxLength int
	timeout   time.Duration
	logger    *zap.Logger

	builds singleflight.Group
}

// FactCheckServiceOption is a functional option for FactCheckService
type FactCheckServiceOption func(*FactCheckService)

// WithResultStore sets the result store
func WithResultStore(store ResultStore) FactCheckServiceOption {
	return func(s *FactCheckService) {
		s.store = store
	}
}

// WithHotCache sets the cache of serialized results
func WithHotCache(c cache.Cache) FactCheckServiceOption {
	return func(s *FactCheckService) {
		s.hot = c
	}
}

// WithSnapshotArchive archives every stored version; nil disables archiving
func WithSnapshotArchive(archive storage.Storage) FactCheckServiceOption {
	return func(s *FactCheckService) {
		s.archive = archive
	}
}

// WithAnalyzer sets the analyzer used on cache misses
func WithAnalyzer(a Analyzer) FactCheckServiceOption {
	return func(s *FactCheckService) {
		s.analyzer = a
	}
}

// WithEmbedder sets the embedder used for similarity lookups
func WithEmbedder(e Embedder) FactCheckServiceOption {
	return func(s *FactCheckService) {
		s.embedder = e
	}
}

// WithSimilarityThreshold sets the minimum cosine similarity of a cache hit
func WithSimilarityThreshold(t float64) FactCheckServiceOption {
	return func(s *FactCheckService) {
		s.threshold = t
	}
}

// WithClaimLengthBounds sets the accepted claim length in characters
func WithClaimLengthBounds(minLen, maxLen int) FactCheckServiceOption {
	return func(s *FactCheckService) {
		s.minLength = minLen
		s.maxLength = maxLen
	}
}

// WithAnalysisTimeout bounds a single build
func WithAnalysisTimeout(d time.Duration) FactCheckServiceOption {
	return func(s *FactCheckService) {
		s.timeout = d
	}
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) FactCheckServiceOption {
	return func(s *FactCheckService) {
		s.logger = l
	}
}

// NewFactCheckService creates a new lookup service
func NewFactCheckService(opts ...FactCheckServiceOption) *FactCheckService {
	s := &FactCheckService{
		threshold: DefaultSimilarityThreshold,
		minLength: DefaultClaimMinLength,
		maxLength: DefaultClaimMaxLength,
		timeout:   DefaultModelTimeout,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.store == nil {
		s.store = repository.NewMemoryRepository()
	}
	if s.hot == nil {
		s.hot = cache.NewMemoryCache()
	}
	if s.embedder == nil {
		s.embedder = NewHashEmbedder()
	}
	if s.analyzer == nil {
		s.analyzer = NewModelAnalyzer(NewGeminiClient())
	}
	return s
}

// ClaimBounds returns the accepted claim length range
func (s *FactCheckService) ClaimBounds() (int, int) {
	return s.minLength, s.maxLength
}

// AnalysisMode reports which analyzer answers cache misses
func (s *FactCheckService) AnalysisMode() models.AnalysisMode {
	return s.analyzer.Mode()
}

// GetByIDJSON returns the serialized result. Repeated calls return identical
// bytes until the result is refreshed.
func (s *FactCheckService) GetByIDJSON(ctx context.Context, id string) ([]byte, error) {
	if data, ok := s.hot.Get(ctx, id); ok {
		metrics.Lookups.WithLabelValues("get", "hit").Inc()
		return data, nil
	}

	rec, err := s.store.Get(ctx, id)
	if errors.Is(err, repository.ErrResultNotFound) {
		metrics.Lookups.WithLabelValues("get", "not_found").Inc()
		return nil, ErrResultNotFound
	}
	if err != nil {
		metrics.Lookups.WithLabelValues("get", "error").Inc()
		return nil, fmt.Errorf("%w: %w", ErrStoreFailure, err)
	}

	data, err := json.Marshal(rec.Result)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}
	// A refresh may have stored and cached a newer version since the read
	// above. Add never replaces it, and the cached bytes win.
	added, err := s.hot.Add(ctx, id, data)
	if err != nil {
		s.logger.Warn("failed to cache result", zap.String("id", id), zap.Error(err))
	} else if !added {
		if cached, ok := s.hot.Get(ctx, id); ok {
			data = cached
		}
	}
	metrics.Lookups.WithLabelValues("get", "store").Inc()
	return data, nil
}

// GetByID returns a private copy of the stored result
func (s *FactCheckService) GetByID(ctx context.Context, id string) (*models.FactCheckResult, error) {
	data, err := s.GetByIDJSON(ctx, id)
	if err != nil {
		return nil, err
	}
	var result models.FactCheckResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to decode result: %w", err)
	}
	return &result, nil
}

// Analyze returns the cached result for the claim or a semantically
// equivalent one, building and storing a new result on a miss. Upstream
// failures end in an uncached fallback result; only invalid claims and
// store failures return errors.
func (s *FactCheckService) Analyze(ctx context.Context, claim string) (*LookupResult, error) {
	if err := ValidateClaim(claim, s.minLength, s.maxLength); err != nil {
		metrics.Lookups.WithLabelValues("analyze", "invalid").Inc()
		return nil, err
	}
	claim = strings.TrimSpace(claim)
	normalized := NormalizeClaim(claim)
	id := ClaimID(normalized)

	res, err := s.do(id, func() (*LookupResult, error) {
		return s.lookupOrBuild(ctx, id, claim, normalized)
	})
	if errors.Is(err, ErrRefreshFailed) {
		// joined a failed refresh of the same id; the old entry is still there
		res, err = s.do(id, func() (*LookupResult, error) {
			return s.lookupOrBuild(ctx, id, claim, normalized)
		})
	}
	if err != nil {
		metrics.Lookups.WithLabelValues("analyze", "error").Inc()
		return nil, err
	}
	metrics.Lookups.WithLabelValues("analyze", res.CacheStatus).Inc()
	return res, nil
}

// Refresh re-analyses the claim of an existing result and replaces it only
// once the new result is complete and valid. The id is kept.
func (s *FactCheckService) Refresh(ctx context.Context, id string) (*LookupResult, error) {
	res, err := s.do(id, func() (*LookupResult, error) {
		return s.rebuild(ctx, id)
	})
	if err != nil {
		metrics.Lookups.WithLabelValues("refresh", "failed").Inc()
		return nil, err
	}
	metrics.Lookups.WithLabelValues("refresh", "ok").Inc()
	return res, nil
}

// Seed stores results under their own ids and createdAt, skipping ids that already exist
func (s *FactCheckService) Seed(ctx context.Context, results ...*models.FactCheckResult) error {
	for _, r := range results {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("seed %s: %w", r.ID, err)
		}
		_, err := s.store.Get(ctx, r.ID)
		if err == nil {
			continue
		}
		if !errors.Is(err, repository.ErrResultNotFound) {
			return fmt.Errorf("%w: %w", ErrStoreFailure, err)
		}

		normalized := NormalizeClaim(r.Claim)
		rec := &repository.StoredResult{
			Result:      r.Clone(),
			Fingerprint: Fingerprint(normalized),
			CachedAt:    r.CreatedAt,
		}
		if vec, err := s.embedder.Embed(ctx, normalized); err != nil {
			s.logger.Warn("seed without embedding", zap.String("id", r.ID), zap.Error(err))
		} else if !IsZeroVector(vec) {
			rec.Embedding = vec
			rec.EmbeddingModel = s.embedder.Model()
		}
		if err := s.store.Put(ctx, rec); err != nil {
			return fmt.Errorf("%w: %w", ErrStoreFailure, err)
		}
		s.logger.Info("seeded result", zap.String("id", r.ID))
	}
	return nil
}

// StoreHealthy pings the result store
func (s *FactCheckService) StoreHealthy(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// CacheHealthy pings the hot cache
func (s *FactCheckService) CacheHealthy(ctx context.Context) error {
	return s.hot.Ping(ctx)
}

// CacheName identifies the hot cache backend
func (s *FactCheckService) CacheName() string {
	return s.hot.Name()
}

// ArchiveHealthy pings the snapshot archive; a disabled archive is healthy
func (s *FactCheckService) ArchiveHealthy(ctx context.Context) error {
	if s.archive == nil {
		return nil
	}
	return s.archive.Ping(ctx)
}

// ArchiveName identifies the snapshot archive backend, "" when disabled
func (s *FactCheckService) ArchiveName() string {
	if s.archive == nil {
		return ""
	}
	return s.archive.Name()
}

// do runs fn once per id across concurrent callers. Every caller gets its
// own copy of the result.
func (s *FactCheckService) do(id string, fn func() (*LookupResult, error)) (*LookupResult, error) {
	v, err, _ := s.builds.Do(id, func() (any, error) {
		return fn()
	})
	if err != nil {
		return nil, err
	}
	shared := v.(*LookupResult)
	out := *shared
	out.Result = shared.Result.Clone()
	return &out, nil
}

func (s *FactCheckService) lookupOrBuild(ctx context.Context, id, claim, normalized string) (*LookupResult, error) {
	rec, err := s.store.Get(ctx, id)
	if err == nil {
		one := 1.0
		return cachedResult(rec, &one), nil
	}
	if !errors.Is(err, repository.ErrResultNotFound) {
		return nil, fmt.Errorf("%w: %w", ErrStoreFailure, err)
	}

	vec, err := s.embedder.Embed(ctx, normalized)
	if err != nil {
		s.logger.Warn("embedding failed; skipping similarity lookup", zap.String("id", id), zap.Error(err))
		vec = nil
	}
	if vec != nil && IsZeroVector(vec) {
		// only stopwords; nothing to compare and nothing worth storing
		vec = nil
	}
	if vec != nil {
		match, score, err := s.store.FindSimilar(ctx, vec, s.embedder.Model(), s.threshold)
		switch {
		case err == nil && (math.IsNaN(score) || score < s.threshold):
			s.logger.Warn("store returned a match below the threshold", zap.String("id", id), zap.Float64("similarity", score))
		case err == nil:
			s.logger.Debug("similar claim found", zap.String("id", id), zap.String("match", match.Result.ID), zap.Float64("similarity", score))
			return cachedResult(match, &score), nil
		case !errors.Is(err, repository.ErrResultNotFound):
			return nil, fmt.Errorf("%w: %w", ErrStoreFailure, err)
		}
	}

	result, err := s.build(ctx, id, claim)
	if err != nil {
		return s.fallback(claim, err), nil
	}

	stored := &repository.StoredResult{
		Result:      result,
		Fingerprint: Fingerprint(normalized),
		CachedAt:    result.CreatedAt,
	}
	if vec != nil {
		stored.Embedding = vec
		stored.EmbeddingModel = s.embedder.Model()
	}
	if err := s.persist(context.WithoutCancel(ctx), stored); err != nil {
		s.logger.Error("failed to store result", zap.String("id", id), zap.Error(err))
	}
	return &LookupResult{Result: result, CacheStatus: CacheStatusFresh}, nil
}

func (s *FactCheckService) rebuild(ctx context.Context, id string) (*LookupResult, error) {
	prev, err := s.store.Get(ctx, id)
	if errors.Is(err, repository.ErrResultNotFound) {
		return nil, ErrResultNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreFailure, err)
	}

	result, err := s.build(ctx, id, prev.Result.Claim)
	if err != nil {
		reason := FallbackReasonFor(err)
		metrics.ModelFallbacks.WithLabelValues(string(reason)).Inc()
		s.logger.Warn("refresh failed; keeping previous result", zap.String("id", id), zap.String("reason", string(reason)), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrRefreshFailed, err)
	}
	if !result.CreatedAt.After(prev.Result.CreatedAt) {
		result.CreatedAt = prev.Result.CreatedAt.Add(time.Millisecond)
	}

	normalized := NormalizeClaim(result.Claim)
	stored := &repository.StoredResult{
		Result:         result,
		Fingerprint:    Fingerprint(normalized),
		Embedding:      prev.Embedding,
		EmbeddingModel: prev.EmbeddingModel,
		CachedAt:       result.CreatedAt,
		RefreshCount:   prev.RefreshCount + 1,
	}
	if prev.EmbeddingModel != s.embedder.Model() || len(prev.Embedding) == 0 {
		if vec, err := s.embedder.Embed(ctx, normalized); err == nil && !IsZeroVector(vec) {
			stored.Embedding = vec
			stored.EmbeddingModel = s.embedder.Model()
		}
	}
	if err := s.persist(context.WithoutCancel(ctx), stored); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRefreshFailed, err)
	}
	s.logger.Info("result refreshed", zap.String("id", id), zap.Int("refresh_count", stored.RefreshCount))
	return &LookupResult{Result: result, CacheStatus: CacheStatusFresh}, nil
}

// build runs the analyzer on a context that survives the first caller
// leaving but not the analysis timeout, then stamps and validates the result.
func (s *FactCheckService) build(ctx context.Context, id, claim string) (*models.FactCheckResult, error) {
	buildCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()

	start := time.Now()
	result, err := s.analyzer.Analyze(buildCtx, claim)
	elapsed := time.Since(start)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, fmt.Errorf("%w: analyzer returned no result", ErrMalformedResponse)
	}

	result.ID = id
	result.Claim = claim
	result.CreatedAt = now().UTC()
	if result.AnalysisMode == "" {
		result.AnalysisMode = s.analyzer.Mode()
	}
	if result.AnalysisMode == models.AnalysisModeLive {
		result.AnalysisTime = models.FormatAnalysisTime(elapsed)
	}
	if result.ConstitutionalAI != nil {
		compliant := result.ConstitutionalAI.Compliant()
		result.ConstitutionalCompliant = &compliant
	}
	result.Consensus = models.ComputeConsensus(result.AIModels)

	if err := result.Validate(); err != nil {
		return nil, err
	}
	metrics.AnalysisDuration.WithLabelValues(string(result.AnalysisMode)).Observe(elapsed.Seconds())
	return result, nil
}

// persist writes the store first; the snapshot and hot cache follow.
// Callers pass a detached context so a departed caller cannot abort the write.
func (s *FactCheckService) persist(ctx context.Context, rec *repository.StoredResult) error {
	data, err := json.Marshal(rec.Result)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	if err := s.store.Put(ctx, rec); err != nil {
		return err
	}
	s.archiveSnapshot(ctx, rec.Result, data)
	s.cacheBytes(ctx, rec.Result.ID, data)
	return nil
}

func (s *FactCheckService) archiveSnapshot(ctx context.Context, result *models.FactCheckResult, data []byte) {
	if s.archive == nil {
		return
	}
	key := storage.SnapshotKey(result.ID, result.CreatedAt)
	if err := s.archive.Put(ctx, key, "application/json", bytes.NewReader(data)); err != nil {
		metrics.ArchiveErrors.Inc()
		s.logger.Warn("failed to archive snapshot", zap.String("key", key), zap.Error(err))
	}
}

func (s *FactCheckService) cacheBytes(ctx context.Context, id string, data []byte) {
	if err := s.hot.Set(ctx, id, data); err != nil {
		s.logger.Warn("failed to cache result", zap.String("id", id), zap.Error(err))
	}
}

func (s *FactCheckService) fallback(claim string, err error) *LookupResult {
	reason := FallbackReasonFor(err)
	metrics.ModelFallbacks.WithLabelValues(string(reason)).Inc()
	if reason != FallbackDisabled {
		s.logger.Warn("analysis degraded to fallback", zap.String("reason", string(reason)), zap.Error(err))
	}
	return &LookupResult{Result: FallbackResult(claim, reason), CacheStatus: CacheStatusFallback}
}

func cachedResult(rec *repository.StoredResult, similarity *float64) *LookupResult {
	cachedAt := rec.CachedAt
	return &LookupResult{
		Result:      rec.Result,
		CacheStatus: CacheStatusCached,
		CachedAt:    &cachedAt,
		Similarity:  similarity,
	}
}
