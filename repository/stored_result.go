package repository

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"genuverity-backend/models"
)

var ErrResultNotFound = errors.New("fact-check result not found")

// StoredResult is a result together with the lookup metadata kept beside it
type StoredResult struct {
	Result         *models.FactCheckResult
	Fingerprint    string
	Embedding      []float32
	EmbeddingModel string
	CachedAt       time.Time
	RefreshCount   int
}

func (s *StoredResult) clone() *StoredResult {
	cp := *s
	cp.Result = s.Result.Clone()
	if s.Embedding != nil {
		cp.Embedding = append([]float32(nil), s.Embedding...)
	}
	return &cp
}

// formatVector formats an embedding vector as a pgvector literal
func formatVector(embedding []float32) string {
	if len(embedding) == 0 {
		return "[]"
	}
	parts := make([]string, len(embedding))
	for i, v := range embedding {
		parts[i] = strconv.FormatFloat(float64(v), 'f', 6, 32)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// parseVector reads a pgvector text literal
func parseVector(s string) ([]float32, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "[") || !strings.HasSuffix(s, "]") {
		return nil, fmt.Errorf("invalid vector literal")
	}
	body := strings.TrimSpace(s[1 : len(s)-1])
	if body == "" {
		return nil, nil
	}
	parts := strings.Split(body, ",")
	out := make([]float32, len(parts))
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return nil, fmt.Errorf("invalid vector component %q: %w", p, err)
		}
		out[i] = float32(f)
	}
	return out, nil
}
