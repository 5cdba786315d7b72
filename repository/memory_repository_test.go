package repository

import (
	"context"
	"testing"
	"time"

	"genuverity-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(id string, vec []float32, model string) *StoredResult {
	return &StoredResult{
		Result: &models.FactCheckResult{
			ID: id, Claim: "claim " + id, Verdict: models.VerdictTrue,
			Summary: "s", BottomLine: "b", CreatedAt: time.Date(2024, 10, 4, 12, 0, 0, 0, time.UTC),
		},
		Fingerprint:    "f-" + id,
		Embedding:      vec,
		EmbeddingModel: model,
	}
}

func TestMemoryRepositoryGetPut(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	_, err := repo.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrResultNotFound)

	rec := record("a", []float32{1, 0}, "m")
	require.NoError(t, repo.Put(ctx, rec))
	rec.Result.Summary = "mutated after put"

	got, err := repo.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "s", got.Result.Summary)

	got.Result.Summary = "mutated after get"
	again, err := repo.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "s", again.Result.Summary)

	replacement := record("a", []float32{0, 1}, "m")
	replacement.RefreshCount = 1
	require.NoError(t, repo.Put(ctx, replacement))
	got, err = repo.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 1, got.RefreshCount)
	assert.Equal(t, 1, repo.Count())
}

func TestMemoryRepositoryFindSimilar(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	require.NoError(t, repo.Put(ctx, record("near", []float32{1, 0.1}, "m")))
	require.NoError(t, repo.Put(ctx, record("far", []float32{0, 1}, "m")))
	require.NoError(t, repo.Put(ctx, record("other-model", []float32{1, 0}, "other")))
	require.NoError(t, repo.Put(ctx, record("unembedded", nil, "")))

	got, score, err := repo.FindSimilar(ctx, []float32{1, 0}, "m", 0.9)
	require.NoError(t, err)
	assert.Equal(t, "near", got.Result.ID)
	assert.Greater(t, score, 0.99)

	_, _, err = repo.FindSimilar(ctx, []float32{-1, 0}, "m", 0.5)
	assert.ErrorIs(t, err, ErrResultNotFound)

	_, _, err = repo.FindSimilar(ctx, []float32{1, 0}, "unknown-model", 0)
	assert.ErrorIs(t, err, ErrResultNotFound)
}

func TestMemoryRepositoryFindSimilarTieBreaksOnID(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	require.NoError(t, repo.Put(ctx, record("b", []float32{1, 0}, "m")))
	require.NoError(t, repo.Put(ctx, record("a", []float32{1, 0}, "m")))

	got, _, err := repo.FindSimilar(ctx, []float32{1, 0}, "m", 0.5)
	require.NoError(t, err)
	assert.Equal(t, "a", got.Result.ID)
}

func TestVectorLiteral(t *testing.T) {
	assert.Equal(t, "[]", formatVector(nil))
	assert.Equal(t, "[0.500000,-1.000000,0.000000]", formatVector([]float32{0.5, -1, 0}))

	v, err := parseVector("[0.5, -1,0]")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5, -1, 0}, v)

	v, err = parseVector("[]")
	require.NoError(t, err)
	assert.Empty(t, v)

	_, err = parseVector("0.5,1")
	assert.Error(t, err)
	_, err = parseVector("[a,b]")
	assert.Error(t, err)
}
