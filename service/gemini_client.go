package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"genuverity-backend/metrics"
	"genuverity-backend/models"

	"github.com/go-playground/validator/v10"
	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
)

const (
	DefaultModelTimeout = 120 * time.Second

	modelTemperature     = 0.1
	modelTopK            = 32
	modelTopP            = 1
	modelMaxOutputTokens = 1024
)

var (
	ErrModelDisabled     = errors.New("model API is disabled")
	ErrMalformedResponse = errors.New("malformed model response")
	ErrNoCandidates      = errors.New("model returned no candidates")
)

const textPrompt = `Please fact-check this claim: %q

Provide a comprehensive analysis including:
1. Whether it's TRUE, FALSE, MIXED, or UNVERIFIABLE
2. Your confidence level (0-100)
3. A detailed summary explaining the verdict
4. Key reasoning points

Format your response as JSON with these exact fields: verdict, confidence, summary, reasoning`

const imagePrompt = `Please analyze this image for any factual claims, memes, or statements that can be fact-checked. Extract the main claim and provide a comprehensive fact-check analysis including:
1. The main claim or statement in the image
2. Whether it's TRUE, FALSE, MIXED, or UNVERIFIABLE
3. Your confidence level (0-100)
4. A detailed summary of why this verdict was reached
5. Key reasoning points

Format your response as JSON with these exact fields: claim, verdict, confidence, summary, reasoning`

// ContentGenerator is the part of *genai.GenerativeModel the client needs
type ContentGenerator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// GeminiClient makes exactly one model call per request. The Process*
// methods never fail: every error ends in FallbackResult.
type GeminiClient struct {
	text      ContentGenerator
	vision    ContentGenerator
	modelName string
	enabled   bool
	timeout   time.Duration
	fetcher   *ArticleFetcher
	logger    *zap.Logger
}

// GeminiClientOption is a functional option for GeminiClient
type GeminiClientOption func(*GeminiClient)

// WithGenAIClient builds text and vision models from a genai client
func WithGenAIClient(client *genai.Client, textModel, visionModel string) GeminiClientOption {
	return func(c *GeminiClient) {
		c.text = configureModel(client.GenerativeModel(textModel))
		c.vision = configureModel(client.GenerativeModel(visionModel))
		c.modelName = textModel
	}
}

// WithGenerators sets the text and vision generators directly
func WithGenerators(text, vision ContentGenerator, modelName string) GeminiClientOption {
	return func(c *GeminiClient) {
		c.text = text
		c.vision = vision
		c.modelName = modelName
	}
}

// WithModelEnabled turns real model calls on; otherwise every call is mocked
func WithModelEnabled(enabled bool) GeminiClientOption {
	return func(c *GeminiClient) {
		c.enabled = enabled
	}
}

// WithModelTimeout bounds each model call
func WithModelTimeout(d time.Duration) GeminiClientOption {
	return func(c *GeminiClient) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithArticleFetcher sets the fetcher used by ProcessURL
func WithArticleFetcher(f *ArticleFetcher) GeminiClientOption {
	return func(c *GeminiClient) {
		c.fetcher = f
	}
}

// WithClientLogger sets the logger
func WithClientLogger(l *zap.Logger) GeminiClientOption {
	return func(c *GeminiClient) {
		c.logger = l
	}
}

// NewGeminiClient creates a new model client
func NewGeminiClient(opts ...GeminiClientOption) *GeminiClient {
	c := &GeminiClient{
		modelName: "gemini",
		timeout:   DefaultModelTimeout,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.fetcher == nil {
		c.fetcher = NewArticleFetcher(nil)
	}
	return c
}

func configureModel(m *genai.GenerativeModel) *genai.GenerativeModel {
	m.SetTemperature(modelTemperature)
	m.SetTopK(modelTopK)
	m.SetTopP(modelTopP)
	m.SetMaxOutputTokens(modelMaxOutputTokens)
	m.ResponseMIMEType = "application/json"
	return m
}

// Enabled reports whether real model calls are made
func (c *GeminiClient) Enabled() bool {
	return c.enabled && c.text != nil
}

// ModelName is the text model identifier
func (c *GeminiClient) ModelName() string {
	return c.modelName
}

// AnalyzeText runs one model call for a text claim and returns its error, if any.
// Callers that must not fail use ProcessText.
func (c *GeminiClient) AnalyzeText(ctx context.Context, claim string) (*models.FactCheckResult, error) {
	if !c.Enabled() {
		return nil, ErrModelDisabled
	}
	start := time.Now()
	resp, err := c.generate(ctx, c.text, genai.Text(fmt.Sprintf(textPrompt, claim)))
	if err != nil {
		return nil, err
	}
	return c.toResult("txt", claim, resp, time.Since(start)), nil
}

// AnalyzeImage runs one vision call for an uploaded image
func (c *GeminiClient) AnalyzeImage(ctx context.Context, mimeType string, data []byte) (*models.FactCheckResult, error) {
	if !c.Enabled() || c.vision == nil {
		return nil, ErrModelDisabled
	}
	format := strings.TrimPrefix(mimeType, "image/")
	start := time.Now()
	resp, err := c.generate(ctx, c.vision, genai.Text(imagePrompt), genai.ImageData(format, data))
	if err != nil {
		return nil, err
	}
	claim := resp.Claim
	if claim == "" {
		claim = "Image-based claim"
	}
	return c.toResult("img", claim, resp, time.Since(start)), nil
}

// ProcessText never fails
func (c *GeminiClient) ProcessText(ctx context.Context, claim string) *models.FactCheckResult {
	result, err := c.AnalyzeText(ctx, claim)
	if err != nil {
		return c.fallback(claim, err)
	}
	return result
}

// ProcessImage never fails
func (c *GeminiClient) ProcessImage(ctx context.Context, filename, mimeType string, data []byte) *models.FactCheckResult {
	result, err := c.AnalyzeImage(ctx, mimeType, data)
	if err != nil {
		return c.fallback(fmt.Sprintf("Image analysis (%s)", filename), err)
	}
	return result
}

// ProcessURL fetches the article and analyses its text. Never fails.
func (c *GeminiClient) ProcessURL(ctx context.Context, rawURL string) *models.FactCheckResult {
	if !c.Enabled() {
		return c.fallback("URL analysis: "+rawURL, ErrModelDisabled)
	}

	fetchCtx, cancel := context.WithTimeout(ctx, c.timeout)
	text, err := c.fetcher.Fetch(fetchCtx, rawURL)
	cancel()
	if err != nil {
		return c.fallback("URL analysis: "+rawURL, err)
	}

	result, err := c.AnalyzeText(ctx, "Article content: "+text)
	if err != nil {
		return c.fallback("URL analysis: "+rawURL, err)
	}
	result.Claim = "Article analysis: " + rawURL
	return result
}

func (c *GeminiClient) fallback(claim string, err error) *models.FactCheckResult {
	reason := FallbackReasonFor(err)
	metrics.ModelFallbacks.WithLabelValues(string(reason)).Inc()
	if reason != FallbackDisabled {
		c.logger.Warn("model call degraded to fallback", zap.String("reason", string(reason)), zap.Error(err))
	}
	return FallbackResult(claim, reason)
}

// FallbackReasonFor classifies a model or analyzer error
func FallbackReasonFor(err error) FallbackReason {
	switch {
	case errors.Is(err, ErrModelDisabled), errors.Is(err, ErrNoFixtureMatch):
		return FallbackDisabled
	case errors.Is(err, context.DeadlineExceeded):
		return FallbackTimeout
	case errors.Is(err, ErrMalformedResponse), errors.Is(err, models.ErrInvalidResult):
		return FallbackMalformed
	default:
		return FallbackUpstream
	}
}

func (c *GeminiClient) generate(ctx context.Context, model ContentGenerator, parts ...genai.Part) (*ModelResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("model call: %w", ctx.Err())
		}
		return nil, fmt.Errorf("model call: %w", err)
	}
	return ParseModelResponse(responseText(resp))
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var b strings.Builder
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				b.WriteString(string(t))
			}
		}
		break
	}
	return b.String()
}

// ModelResponse is the validated JSON payload of a model answer
type ModelResponse struct {
	Claim      string    `json:"claim"`
	Verdict    string    `json:"verdict" validate:"required"`
	Confidence *float64  `json:"confidence" validate:"required,gte=0,lte=100"`
	Summary    string    `json:"summary" validate:"required"`
	Reasoning  reasoning `json:"reasoning"`

	verdict models.Verdict
}

// reasoning accepts either a string or a list of points
type reasoning string

func (r *reasoning) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*r = reasoning(s)
		return nil
	}
	var points []string
	if err := json.Unmarshal(data, &points); err != nil {
		return fmt.Errorf("reasoning must be a string or a list of strings")
	}
	*r = reasoning(strings.Join(points, " "))
	return nil
}

var responseValidator = validator.New()

// ParseModelResponse validates raw model output. Markdown code fences are
// tolerated; missing or mistyped fields yield ErrMalformedResponse.
func ParseModelResponse(raw string) (*ModelResponse, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return nil, ErrNoCandidates
	}
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	var resp ModelResponse
	if err := json.Unmarshal([]byte(text), &resp); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	if err := responseValidator.Struct(&resp); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	v, err := models.ParseVerdict(resp.Verdict)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	resp.verdict = v
	resp.Summary = strings.TrimSpace(resp.Summary)
	resp.Claim = strings.TrimSpace(resp.Claim)
	return &resp, nil
}

func (c *GeminiClient) toResult(prefix, claim string, resp *ModelResponse, elapsed time.Duration) *models.FactCheckResult {
	ts := now().UTC()
	confidence := *resp.Confidence
	return &models.FactCheckResult{
		ID:                 fmt.Sprintf("%s-%d", prefix, ts.UnixMilli()),
		Claim:              claim,
		Verdict:            resp.verdict,
		Confidence:         confidence,
		AnalysisTime:       models.FormatAnalysisTime(elapsed),
		Summary:            resp.Summary,
		BottomLine:         firstSentence(resp.Summary),
		SourceDistribution: []models.SourceDistribution{},
		Sources:            []models.Source{},
		AIModels: []models.AIModelAnalysis{{
			ModelName:  c.modelName,
			Verdict:    resp.verdict,
			Confidence: confidence,
			Reasoning:  string(resp.Reasoning),
		}},
		Limitations:  []string{"Single-model assessment without retrieved sources"},
		AnalysisMode: models.AnalysisModeLive,
		CreatedAt:    ts,
	}
}

func firstSentence(s string) string {
	if i := strings.IndexAny(s, ".!?"); i > 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}
