package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"genuverity-backend/middleware"
	"genuverity-backend/models"
	"genuverity-backend/storage"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const defaultMaxUploadBytes = 10 * 1024 * 1024

// UploadRecorder persists upload metadata
type UploadRecorder interface {
	Create(ctx context.Context, upload *models.Upload) error
}

// UploadHandler reads images submitted for analysis and keeps a copy of them
type UploadHandler struct {
	storage          storage.Storage
	uploadRepo       UploadRecorder
	maxFileSize      int64
	allowedMimeTypes map[string]bool
	logger           *zap.Logger
}

// NewUploadHandler creates a new upload handler. With nil storage images are
// analysed but not kept; with a nil recorder no metadata is written.
func NewUploadHandler(store storage.Storage, uploadRepo UploadRecorder, maxFileSize int64) *UploadHandler {
	if maxFileSize <= 0 {
		maxFileSize = defaultMaxUploadBytes
	}
	return &UploadHandler{
		storage:     store,
		uploadRepo:  uploadRepo,
		maxFileSize: maxFileSize,
		allowedMimeTypes: map[string]bool{
			"image/png":  true,
			"image/jpeg": true,
			"image/gif":  true,
			"image/webp": true,
		},
		logger: zap.NewNop(),
	}
}

// WithLogger sets the logger and returns h
func (h *UploadHandler) WithLogger(l *zap.Logger) *UploadHandler {
	h.logger = l
	return h
}

// Image is a validated image read from a multipart request
type Image struct {
	Filename string
	MimeType string
	Data     []byte
}

// Read extracts the "file" form field. On failure the error response is already written.
func (h *UploadHandler) Read(c *gin.Context) (*Image, bool) {
	// multipart framing needs some room beyond the file itself
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxFileSize+64*1024)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.tooLarge(c)
			return nil, false
		}
		respondError(c, http.StatusBadRequest, CodeInvalidImage, "Multipart field \"file\" is required", nil)
		return nil, false
	}
	if fileHeader.Size > h.maxFileSize {
		h.tooLarge(c)
		return nil, false
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, http.StatusBadRequest, CodeInvalidImage, "Unable to read uploaded file", nil)
		return nil, false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respondError(c, http.StatusBadRequest, CodeInvalidImage, "Unable to read uploaded file", nil)
		return nil, false
	}

	// trust the bytes, not the declared Content-Type
	mimeType := http.DetectContentType(data)
	if !h.allowedMimeTypes[mimeType] {
		respondError(c, http.StatusBadRequest, CodeInvalidImage,
			"File type not allowed. Allowed types: PNG, JPEG, GIF, WEBP", gin.H{"detected_type": mimeType})
		return nil, false
	}

	return &Image{Filename: fileHeader.Filename, MimeType: mimeType, Data: data}, true
}

// Store keeps the image and records which result it produced. Failures are
// logged; the analysis has already been answered.
func (h *UploadHandler) Store(c *gin.Context, img *Image, resultID string) {
	if h.storage == nil {
		return
	}
	ctx := context.WithoutCancel(c.Request.Context())

	fileID := uuid.New()
	storagePath, err := storage.Upload(ctx, h.storage, fileID, img.Filename, bytes.NewReader(img.Data))
	if err != nil {
		h.logger.Warn("failed to store upload", zap.String("filename", img.Filename), zap.Error(err))
		return
	}
	if h.uploadRepo == nil {
		return
	}

	upload := &models.Upload{
		ID:          fileID,
		ResultID:    resultID,
		Filename:    img.Filename,
		MimeType:    img.MimeType,
		Size:        int64(len(img.Data)),
		StoragePath: storagePath,
	}
	if key := middleware.CallerKey(c); key != nil {
		id := key.ID
		upload.APIKeyID = &id
	}
	if err := h.uploadRepo.Create(ctx, upload); err != nil {
		// Try to clean up the stored file
		_ = h.storage.Delete(ctx, storagePath)
		h.logger.Warn("failed to record upload", zap.String("id", fileID.String()), zap.Error(err))
	}
}

func (h *UploadHandler) tooLarge(c *gin.Context) {
	respondError(c, http.StatusRequestEntityTooLarge, CodeFileTooLarge,
		fmt.Sprintf("File size exceeds maximum of %d bytes", h.maxFileSize),
		gin.H{"max_bytes": h.maxFileSize})
}
