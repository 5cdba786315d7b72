package repository

import (
	"context"
	"math"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryRepository keeps results in process. Entries never expire, matching
// the permanent-record policy of the Postgres store.
type MemoryRepository struct {
	items *gocache.Cache
}

// NewMemoryRepository creates an empty in-memory result store
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{items: gocache.New(gocache.NoExpiration, 0)}
}

func (r *MemoryRepository) Get(_ context.Context, id string) (*StoredResult, error) {
	v, ok := r.items.Get(id)
	if !ok {
		return nil, ErrResultNotFound
	}
	return v.(*StoredResult).clone(), nil
}

// Put inserts or replaces the entry for rec.Result.ID
func (r *MemoryRepository) Put(_ context.Context, rec *StoredResult) error {
	r.items.Set(rec.Result.ID, rec.clone(), gocache.NoExpiration)
	return nil
}

// FindSimilar scans every entry embedded with the same model
func (r *MemoryRepository) FindSimilar(_ context.Context, embedding []float32, model string, threshold float64) (*StoredResult, float64, error) {
	var best *StoredResult
	bestScore := math.Inf(-1)
	for _, item := range r.items.Items() {
		rec := item.Object.(*StoredResult)
		if rec.EmbeddingModel != model || len(rec.Embedding) != len(embedding) {
			continue
		}
		score := cosine(embedding, rec.Embedding)
		if score > bestScore || (score == bestScore && best != nil && rec.Result.ID < best.Result.ID) {
			best, bestScore = rec, score
		}
	}
	if best == nil || math.IsNaN(bestScore) || bestScore < threshold {
		return nil, 0, ErrResultNotFound
	}
	return best.clone(), bestScore, nil
}

func (r *MemoryRepository) Ping(context.Context) error { return nil }

// Count returns the number of stored results
func (r *MemoryRepository) Count() int {
	return r.items.ItemCount()
}

func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
