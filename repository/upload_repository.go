package repository

import (
	"context"

	"genuverity-backend/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// UploadRepository handles database operations for uploaded images
type UploadRepository struct {
	db *pgxpool.Pool
}

// NewUploadRepository creates a new upload repository
func NewUploadRepository(db *pgxpool.Pool) *UploadRepository {
	return &UploadRepository{db: db}
}

// Create creates a new upload record
func (r *UploadRepository) Create(ctx context.Context, upload *models.Upload) error {
	query := `
		INSERT INTO uploads (
			id, api_key_id, result_id, filename, mime_type, size, storage_path
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`

	return r.db.QueryRow(
		ctx, query,
		upload.ID,
		upload.APIKeyID,
		upload.ResultID,
		upload.Filename,
		upload.MimeType,
		upload.Size,
		upload.StoragePath,
	).Scan(&upload.CreatedAt)
}
