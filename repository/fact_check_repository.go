package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"genuverity-backend/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// FactCheckRepository stores results in Postgres with pgvector embeddings
type FactCheckRepository struct {
	db *pgxpool.Pool
}

// NewFactCheckRepository creates a new fact-check repository
func NewFactCheckRepository(db *pgxpool.Pool) *FactCheckRepository {
	return &FactCheckRepository{db: db}
}

// Get retrieves a result by id
func (r *FactCheckRepository) Get(ctx context.Context, id string) (*StoredResult, error) {
	query := `
		SELECT payload, fingerprint, embedding::text, embedding_model, cached_at, refresh_count
		FROM fact_check_results
		WHERE id = $1`

	return r.scanOne(r.db.QueryRow(ctx, query, id))
}

// Put inserts the result or atomically replaces the row with the same id
func (r *FactCheckRepository) Put(ctx context.Context, rec *StoredResult) error {
	payload, err := json.Marshal(rec.Result)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	var vector *string
	var model *string
	if len(rec.Embedding) > 0 {
		v := formatVector(rec.Embedding)
		vector = &v
		model = &rec.EmbeddingModel
	}

	query := `
		INSERT INTO fact_check_results (
			id, fingerprint, claim, verdict, payload,
			embedding, embedding_model, created_at, cached_at, refresh_count
		) VALUES (
			$1, $2, $3, $4, $5, $6::vector, $7, $8, $9, $10
		)
		ON CONFLICT (id) DO UPDATE SET
			fingerprint = EXCLUDED.fingerprint,
			claim = EXCLUDED.claim,
			verdict = EXCLUDED.verdict,
			payload = EXCLUDED.payload,
			embedding = COALESCE(EXCLUDED.embedding, fact_check_results.embedding),
			embedding_model = COALESCE(EXCLUDED.embedding_model, fact_check_results.embedding_model),
			created_at = EXCLUDED.created_at,
			cached_at = EXCLUDED.cached_at,
			refresh_count = EXCLUDED.refresh_count`

	_, err = r.db.Exec(
		ctx, query,
		rec.Result.ID,
		rec.Fingerprint,
		rec.Result.Claim,
		string(rec.Result.Verdict),
		payload,
		vector,
		model,
		rec.Result.CreatedAt,
		rec.CachedAt,
		rec.RefreshCount,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert result %s: %w", rec.Result.ID, err)
	}
	return nil
}

// FindSimilar returns the nearest result embedded with the same model when
// its cosine similarity reaches threshold
func (r *FactCheckRepository) FindSimilar(ctx context.Context, embedding []float32, model string, threshold float64) (*StoredResult, float64, error) {
	query := `
		SELECT payload, fingerprint, embedding_model, cached_at, refresh_count,
			1 - (embedding <=> $1::vector) AS similarity
		FROM fact_check_results
		WHERE embedding IS NOT NULL
			AND embedding_model = $2
		ORDER BY embedding <=> $1::vector
		LIMIT 1`

	var (
		payload    []byte
		similarity float64
		embedModel *string
		rec        StoredResult
	)
	err := r.db.QueryRow(ctx, query, formatVector(embedding), model).Scan(
		&payload,
		&rec.Fingerprint,
		&embedModel,
		&rec.CachedAt,
		&rec.RefreshCount,
		&similarity,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, 0, ErrResultNotFound
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search similar results: %w", err)
	}
	// a zero query or stored vector makes <=> NaN
	if math.IsNaN(similarity) || similarity < threshold {
		return nil, 0, ErrResultNotFound
	}

	if err := json.Unmarshal(payload, &rec.Result); err != nil {
		return nil, 0, fmt.Errorf("failed to decode stored result: %w", err)
	}
	if embedModel != nil {
		rec.EmbeddingModel = *embedModel
	}
	return &rec, similarity, nil
}

// Ping checks the database connection
func (r *FactCheckRepository) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

// EmbeddingTarget is a stored claim whose embedding needs (re)computing
type EmbeddingTarget struct {
	ID    string
	Claim string
}

// ListMissingEmbeddings returns results without an embedding for model
func (r *FactCheckRepository) ListMissingEmbeddings(ctx context.Context, model string, limit int) ([]EmbeddingTarget, error) {
	query := `
		SELECT id, claim
		FROM fact_check_results
		WHERE embedding IS NULL OR embedding_model IS DISTINCT FROM $1
		ORDER BY created_at
		LIMIT $2`

	rows, err := r.db.Query(ctx, query, model, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}
	defer rows.Close()

	var targets []EmbeddingTarget
	for rows.Next() {
		var t EmbeddingTarget
		if err := rows.Scan(&t.ID, &t.Claim); err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		targets = append(targets, t)
	}
	return targets, rows.Err()
}

// UpdateEmbedding replaces the embedding of one result
func (r *FactCheckRepository) UpdateEmbedding(ctx context.Context, id string, embedding []float32, model string) error {
	query := `
		UPDATE fact_check_results SET
			embedding = $2::vector,
			embedding_model = $3
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, id, formatVector(embedding), model)
	if err != nil {
		return fmt.Errorf("failed to update embedding for %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrResultNotFound
	}
	return nil
}

func (r *FactCheckRepository) scanOne(row pgx.Row) (*StoredResult, error) {
	var (
		payload    []byte
		vector     *string
		embedModel *string
		rec        StoredResult
	)
	err := row.Scan(&payload, &rec.Fingerprint, &vector, &embedModel, &rec.CachedAt, &rec.RefreshCount)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrResultNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get result: %w", err)
	}

	var result models.FactCheckResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, fmt.Errorf("failed to decode stored result: %w", err)
	}
	rec.Result = &result
	if vector != nil && embedModel != nil {
		if rec.Embedding, err = parseVector(*vector); err != nil {
			return nil, fmt.Errorf("failed to decode embedding: %w", err)
		}
		rec.EmbeddingModel = *embedModel
	}
	return &rec, nil
}
