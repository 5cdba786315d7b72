package service

import (
	"context"
	"errors"
	"fmt"

	"genuverity-backend/models"
)

var ErrNoFixtureMatch = errors.New("no demo fixture matches the claim")

// Analyzer produces a fresh result for a claim. Errors send the lookup
// service down the fallback path.
type Analyzer interface {
	Analyze(ctx context.Context, claim string) (*models.FactCheckResult, error)
	Mode() models.AnalysisMode
}

// ModelAnalyzer analyses claims with the generative model
type ModelAnalyzer struct {
	client *GeminiClient
}

func NewModelAnalyzer(client *GeminiClient) *ModelAnalyzer {
	return &ModelAnalyzer{client: client}
}

func (a *ModelAnalyzer) Analyze(ctx context.Context, claim string) (*models.FactCheckResult, error) {
	return a.client.AnalyzeText(ctx, claim)
}

func (a *ModelAnalyzer) Mode() models.AnalysisMode { return models.AnalysisModeLive }

// FixtureAnalyzer answers from a fixed set of demo results, choosing the one
// whose claim is semantically closest to the input.
type FixtureAnalyzer struct {
	embedder  Embedder
	threshold float64
	fixtures  []fixtureVector
}

type fixtureVector struct {
	result *models.FactCheckResult
	vector []float32
}

// NewFixtureAnalyzer embeds every fixture claim up front
func NewFixtureAnalyzer(ctx context.Context, embedder Embedder, threshold float64, fixtures ...*models.FactCheckResult) (*FixtureAnalyzer, error) {
	a := &FixtureAnalyzer{embedder: embedder, threshold: threshold}
	for _, f := range fixtures {
		vec, err := embedder.Embed(ctx, f.Claim)
		if err != nil {
			return nil, fmt.Errorf("embed fixture %s: %w", f.ID, err)
		}
		a.fixtures = append(a.fixtures, fixtureVector{result: f.Clone(), vector: vec})
	}
	return a, nil
}

// Analyze returns a copy of the closest fixture or ErrNoFixtureMatch
func (a *FixtureAnalyzer) Analyze(ctx context.Context, claim string) (*models.FactCheckResult, error) {
	vec, err := a.embedder.Embed(ctx, claim)
	if err != nil {
		return nil, err
	}

	var best *models.FactCheckResult
	bestScore := 0.0
	for _, f := range a.fixtures {
		if s := CosineSimilarity(vec, f.vector); s > bestScore {
			best, bestScore = f.result, s
		}
	}
	if best == nil || bestScore < a.threshold {
		return nil, ErrNoFixtureMatch
	}

	out := best.Clone()
	out.AnalysisMode = models.AnalysisModeFixture
	return out, nil
}

func (a *FixtureAnalyzer) Mode() models.AnalysisMode { return models.AnalysisModeFixture }
