package repository

import (
	"context"
	"errors"
	"fmt"

	"genuverity-backend/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrAPIKeyNotFound = errors.New("api key not found")

// APIKeyRepository handles database operations for API keys
type APIKeyRepository struct {
	db *pgxpool.Pool
}

// NewAPIKeyRepository creates a new API key repository
func NewAPIKeyRepository(db *pgxpool.Pool) *APIKeyRepository {
	return &APIKeyRepository{db: db}
}

// Create stores a new key; only the bcrypt hash is persisted
func (r *APIKeyRepository) Create(ctx context.Context, key *models.APIKey) error {
	query := `
		INSERT INTO api_keys (prefix, key_hash, tier, owner)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`

	err := r.db.QueryRow(ctx, query, key.Prefix, key.KeyHash, string(key.Tier), key.Owner).
		Scan(&key.ID, &key.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create api key: %w", err)
	}
	return nil
}

// GetByPrefix retrieves a key by its public prefix
func (r *APIKeyRepository) GetByPrefix(ctx context.Context, prefix string) (*models.APIKey, error) {
	key := &models.APIKey{}
	query := `
		SELECT id, prefix, key_hash, tier, owner, created_at, revoked_at
		FROM api_keys
		WHERE prefix = $1`

	err := r.db.QueryRow(ctx, query, prefix).Scan(
		&key.ID,
		&key.Prefix,
		&key.KeyHash,
		&key.Tier,
		&key.Owner,
		&key.CreatedAt,
		&key.RevokedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrAPIKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get api key: %w", err)
	}
	return key, nil
}

// Revoke marks a key as revoked
func (r *APIKeyRepository) Revoke(ctx context.Context, prefix string) error {
	tag, err := r.db.Exec(ctx, `UPDATE api_keys SET revoked_at = NOW() WHERE prefix = $1 AND revoked_at IS NULL`, prefix)
	if err != nil {
		return fmt.Errorf("failed to revoke api key: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAPIKeyNotFound
	}
	return nil
}
