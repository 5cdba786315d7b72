package service

import (
	"fmt"
	"strings"
	"time"

	"genuverity-backend/models"
)

// FallbackReason says why a result came from the fallback generator
type FallbackReason string

const (
	FallbackDisabled  FallbackReason = "disabled"
	FallbackTimeout   FallbackReason = "timeout"
	FallbackUpstream  FallbackReason = "upstream"
	FallbackMalformed FallbackReason = "malformed"
)

const (
	fallbackConfidence   = 75
	fallbackAnalysisTime = "12s"
	unspecifiedClaim     = "Unspecified claim"
)

var fallbackSummaries = map[FallbackReason]string{
	FallbackDisabled:  "This is a mock analysis result. To enable real AI processing, add your Gemini API key to the environment variables.",
	FallbackTimeout:   "This is a fallback analysis result. The analysis model did not respond in time, so no verified assessment is available yet.",
	FallbackUpstream:  "This is a fallback analysis result. The analysis model could not be reached, so no verified assessment is available yet.",
	FallbackMalformed: "This is a fallback analysis result. The analysis model returned a response that could not be validated, so no verified assessment is available yet.",
}

var now = time.Now

// FallbackResult builds the well-formed placeholder returned whenever no real
// analysis is available. It never fails.
func FallbackResult(claim string, reason FallbackReason) *models.FactCheckResult {
	claim = strings.TrimSpace(claim)
	if claim == "" {
		claim = unspecifiedClaim
	}
	summary, ok := fallbackSummaries[reason]
	if !ok {
		summary = fallbackSummaries[FallbackUpstream]
	}

	ts := now().UTC()
	return &models.FactCheckResult{
		ID:                 fmt.Sprintf("mock-%d", ts.UnixMilli()),
		Claim:              claim,
		Verdict:            models.VerdictMixed,
		Confidence:         fallbackConfidence,
		AnalysisTime:       fallbackAnalysisTime,
		Summary:            summary,
		BottomLine:         "No verified assessment is available for this claim yet",
		SourceDistribution: []models.SourceDistribution{},
		Sources:            []models.Source{},
		AIModels:           []models.AIModelAnalysis{},
		Limitations:        []string{fmt.Sprintf("Fallback result (%s): no sources were analyzed", reason)},
		AnalysisMode:       models.AnalysisModeFallback,
		CreatedAt:          ts,
	}
}
