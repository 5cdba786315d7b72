package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/OneOfOne/xxhash"
	"github.com/google/generative-ai-go/genai"
)

// EmbeddingDimensions matches the vector(768) column
const EmbeddingDimensions = 768

// HashEmbeddingModel names the vectors produced by HashEmbedder
const HashEmbeddingModel = "hash-bow-v1"

var ErrEmbeddingFailed = errors.New("failed to generate embedding")

// Embedder turns claim text into a unit vector. Vectors from different
// models are never compared, so stores keep Model() next to each vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Model() string
}

// words carrying no meaning for claim matching
var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "is": {}, "are": {}, "was": {}, "were": {}, "be": {},
	"do": {}, "does": {}, "did": {}, "of": {}, "to": {}, "in": {}, "on": {}, "at": {},
	"from": {}, "for": {}, "by": {}, "and": {}, "or": {}, "it": {}, "its": {}, "that": {},
	"this": {}, "really": {}, "actually": {}, "true": {}, "can": {},
}

// negations flip a claim's meaning without changing its words. Contractions
// arrive without apostrophes after normalization.
var negations = map[string]struct{}{
	"not": {}, "no": {}, "never": {}, "nor": {}, "neither": {}, "none": {}, "nothing": {},
	"cannot": {}, "cant": {}, "dont": {}, "doesnt": {}, "didnt": {}, "isnt": {}, "arent": {},
	"wasnt": {}, "werent": {}, "wont": {}, "hasnt": {}, "havent": {},
}

// negationFeature marks negated claims on its own hashed dimension
const negationFeature = "\x00negated"

// HashEmbedder is a deterministic bag-of-words embedder using signed feature
// hashing of unigrams and bigrams. It needs no network and is used when the
// model API is disabled.
//
// Negation words are not features themselves. A negated claim instead gets
// one polarity feature weighted as heavily as all its word features together,
// which caps the similarity between a claim and its negation at 1/sqrt(2).
type HashEmbedder struct{}

func NewHashEmbedder() *HashEmbedder {
	return &HashEmbedder{}
}

func (e *HashEmbedder) Model() string { return HashEmbeddingModel }

func (e *HashEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, EmbeddingDimensions)

	var tokens []string
	negated := false
	for _, w := range strings.Fields(NormalizeClaim(text)) {
		if _, neg := negations[w]; neg {
			negated = true
			continue
		}
		if _, skip := stopwords[w]; !skip {
			tokens = append(tokens, w)
		}
	}

	add := func(feature string, weight float32) {
		h := xxhash.ChecksumString64(feature)
		idx := h % EmbeddingDimensions
		if h>>63 == 1 {
			vec[idx] -= weight
		} else {
			vec[idx] += weight
		}
	}
	features := 0
	for i, tok := range tokens {
		add(tok, 1)
		features++
		if i > 0 {
			add(tokens[i-1]+" "+tok, 1)
			features++
		}
	}
	if negated && features > 0 {
		add(negationFeature, float32(math.Sqrt(float64(features))))
	}

	normalize(vec)
	return vec, nil
}

// GeminiEmbedder embeds through the Gemini embedding API
type GeminiEmbedder struct {
	client *genai.Client
	model  string
}

func NewGeminiEmbedder(client *genai.Client, model string) *GeminiEmbedder {
	return &GeminiEmbedder{client: client, model: model}
}

func (e *GeminiEmbedder) Model() string { return e.model }

func (e *GeminiEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	em := e.client.EmbeddingModel(e.model)
	em.TaskType = genai.TaskTypeSemanticSimilarity

	res, err := em.EmbedContent(ctx, genai.Text(NormalizeClaim(text)))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEmbeddingFailed, err)
	}
	if res.Embedding == nil || len(res.Embedding.Values) == 0 {
		return nil, fmt.Errorf("%w: empty embedding", ErrEmbeddingFailed)
	}
	if len(res.Embedding.Values) != EmbeddingDimensions {
		return nil, fmt.Errorf("%w: expected %d dimensions, got %d", ErrEmbeddingFailed, EmbeddingDimensions, len(res.Embedding.Values))
	}

	vec := append([]float32(nil), res.Embedding.Values...)
	normalize(vec)
	return vec, nil
}

// normalize scales v to unit length in place
func normalize(v []float32) {
	norm := 0.0
	for _, x := range v {
		norm += float64(x) * float64(x)
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range v {
			v[i] = float32(float64(v[i]) / norm)
		}
	}
}

// IsZeroVector reports whether v has no direction, as for a claim made only of stopwords
func IsZeroVector(v []float32) bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}

// CosineSimilarity returns 0 for mismatched or zero vectors
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
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
