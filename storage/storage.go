package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrObjectNotFound = errors.New("object not found")

// Storage holds result snapshots and uploaded images under slash-separated keys
type Storage interface {
	// Put writes data under key, replacing any existing object
	Put(ctx context.Context, key, contentType string, data io.Reader) error

	// Download retrieves an object by key
	Download(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes an object by key
	Delete(ctx context.Context, key string) error

	// Ping checks that the backend can be reached
	Ping(ctx context.Context) error

	Name() string
}

// StorageType represents the storage backend type
type StorageType string

const (
	StorageTypeLocal StorageType = "local"
	StorageTypeS3    StorageType = "s3"
)

// StorageConfig holds configuration for storage
type StorageConfig struct {
	Type         StorageType
	LocalPath    string // For local storage
	S3Bucket     string // For S3 storage
	S3Region     string // For S3 storage
	AWSAccessKey string
	AWSSecretKey string
}

// NewStorage creates a new storage instance based on configuration
func NewStorage(cfg StorageConfig) (Storage, error) {
	switch cfg.Type {
	case StorageTypeLocal:
		return NewLocalStorage(cfg.LocalPath)
	case StorageTypeS3:
		if cfg.S3Bucket == "" {
			return nil, errors.New("AWS_S3_BUCKET environment variable is required for S3 storage")
		}
		return NewS3Storage(cfg)
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}

// Upload stores an uploaded file and returns its key
func Upload(ctx context.Context, s Storage, fileID uuid.UUID, filename string, data io.Reader) (string, error) {
	key := UploadKey(fileID, filename)
	if err := s.Put(ctx, key, getContentType(filename), data); err != nil {
		return "", err
	}
	return key, nil
}

// UploadKey generates a unique key for an uploaded file
func UploadKey(fileID uuid.UUID, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	baseName := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	// Sanitize filename
	baseName = strings.ReplaceAll(baseName, " ", "_")
	baseName = strings.ReplaceAll(baseName, "/", "_")
	baseName = strings.ReplaceAll(baseName, "\\", "_")
	baseName = strings.ReplaceAll(baseName, "..", "_")

	// Use fileID to ensure uniqueness
	return fmt.Sprintf("uploads/%s/%s_%s%s", fileID.String()[:2], fileID.String(), baseName, ext)
}

// SnapshotKey is the archive key of one version of a result
func SnapshotKey(resultID string, createdAt time.Time) string {
	return fmt.Sprintf("results/%s/%s.json", resultID, createdAt.UTC().Format("20060102T150405.000Z"))
}

// getContentType determines content type from filename
func getContentType(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".json":
		return "application/json"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	case ".txt":
		return "text/plain"
	default:
		return "application/octet-stream"
	}
}
