package models

import (
	"time"

	"github.com/google/uuid"
)

// Upload records an image submitted for analysis
type Upload struct {
	ID          uuid.UUID  `json:"id"`
	APIKeyID    *uuid.UUID `json:"api_key_id,omitempty"`
	ResultID    string     `json:"result_id"`
	Filename    string     `json:"filename"`
	MimeType    string     `json:"mime_type"`
	Size        int64      `json:"size"`
	StoragePath string     `json:"storage_path"`
	CreatedAt   time.Time  `json:"created_at"`
}
