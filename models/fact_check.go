package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Verdict is the closed set of fact-check outcomes
type Verdict string

const (
	VerdictTrue         Verdict = "TRUE"
	VerdictFalse        Verdict = "FALSE"
	VerdictMixed        Verdict = "MIXED"
	VerdictUnverifiable Verdict = "UNVERIFIABLE"
)

// ParseVerdict normalizes a verdict string ("false", " Mixed ") to the closed enum
func ParseVerdict(s string) (Verdict, error) {
	v := Verdict(strings.ToUpper(strings.TrimSpace(s)))
	if !v.Valid() {
		return "", fmt.Errorf("unknown verdict: %q", s)
	}
	return v, nil
}

// Valid reports whether v is one of the four verdicts
func (v Verdict) Valid() bool {
	switch v {
	case VerdictTrue, VerdictFalse, VerdictMixed, VerdictUnverifiable:
		return true
	}
	return false
}

// UnmarshalJSON accepts any casing but rejects values outside the enum
func (v *Verdict) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseVerdict(s)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// AnalysisMode records where a result came from
type AnalysisMode string

const (
	AnalysisModeLive     AnalysisMode = "live"
	AnalysisModeFixture  AnalysisMode = "fixture"
	AnalysisModeFallback AnalysisMode = "fallback"
)

// ConstitutionalThreshold is the minimum overall score for a compliant result
const ConstitutionalThreshold = 87

// QualityMetrics holds the four quality sub-scores
type QualityMetrics struct {
	SourceAgreement float64 `json:"sourceAgreement" validate:"gte=0,lte=100"`
	EvidenceQuality float64 `json:"evidenceQuality" validate:"gte=0,lte=100"`
	SourceCoverage  float64 `json:"sourceCoverage" validate:"gte=0,lte=100"`
	Reliability     float64 `json:"reliability" validate:"gte=0,lte=100"`
}

// SourceDistribution describes one credibility tier
type SourceDistribution struct {
	Tier               int     `json:"tier" validate:"gte=1,lte=7"`
	TierName           string  `json:"tierName"`
	Count              int     `json:"count" validate:"gte=0"` // returned sources of this tier
	FoundCount         *int    `json:"foundCount,omitempty" validate:"omitempty,gte=0"`
	WeightContribution float64 `json:"weightContribution" validate:"gte=0,lte=100"`
	Icon               string  `json:"icon,omitempty"`
}

// AIModelAnalysis is one model's verdict
type AIModelAnalysis struct {
	ModelName  string  `json:"modelName" validate:"required"`
	Verdict    Verdict `json:"verdict"`
	Confidence float64 `json:"confidence" validate:"gte=0,lte=100"`
	Reasoning  string  `json:"reasoning"`
}

// TimelineEvent is a dated piece of evidence
type TimelineEvent struct {
	Year         int    `json:"year"`
	Description  string `json:"description"`
	IsSupporting bool   `json:"isSupporting"` // true supports the claim, false refutes it
}

// ConstitutionalAIScore holds the six constitutional sub-scores
type ConstitutionalAIScore struct {
	Overall       float64 `json:"overall" validate:"gte=0,lte=100"`
	Truthfulness  float64 `json:"truthfulness" validate:"gte=0,lte=100"`
	Helpfulness   float64 `json:"helpfulness" validate:"gte=0,lte=100"`
	Harmlessness  float64 `json:"harmlessness" validate:"gte=0,lte=100"`
	Neutrality    float64 `json:"neutrality" validate:"gte=0,lte=100"`
	Verifiability float64 `json:"verifiability" validate:"gte=0,lte=100"`
}

// Compliant reports whether the overall score meets ConstitutionalThreshold
func (s ConstitutionalAIScore) Compliant() bool {
	return s.Overall >= ConstitutionalThreshold
}

// Consensus summarizes agreement across AIModels
type Consensus struct {
	Verdict           Verdict `json:"verdict"`
	Agreement         float64 `json:"agreement"` // share of models agreeing with Verdict, 0-1
	AverageConfidence float64 `json:"averageConfidence"`
	ModelCount        int     `json:"modelCount"`
}

// FactCheckResult is the unit of value served by the lookup service.
// Results are cache entries: they are never mutated after being stored.
type FactCheckResult struct {
	ID                      string                 `json:"id" validate:"required"`
	Claim                   string                 `json:"claim" validate:"required"`
	Verdict                 Verdict                `json:"verdict"`
	Confidence              float64                `json:"confidence" validate:"gte=0,lte=100"`
	AnalysisTime            string                 `json:"analysisTime"`
	Summary                 string                 `json:"summary" validate:"required"`
	BottomLine              string                 `json:"bottomLine" validate:"required"`
	QualityMetrics          QualityMetrics         `json:"qualityMetrics"`
	SourceDistribution      []SourceDistribution   `json:"sourceDistribution" validate:"dive"`
	Sources                 []Source               `json:"sources" validate:"dive"`
	TotalSourceCount        int                    `json:"totalSourceCount" validate:"gte=0"`
	AnalyzedSourceCount     int                    `json:"analyzedSourceCount" validate:"gte=0"`
	AIModels                []AIModelAnalysis      `json:"aiModels" validate:"dive"`
	Timeline                []TimelineEvent        `json:"timeline,omitempty"`
	ConstitutionalAI        *ConstitutionalAIScore `json:"constitutionalAI,omitempty"`
	ConstitutionalCompliant *bool                  `json:"constitutionalCompliant,omitempty"`
	Consensus               *Consensus             `json:"consensus,omitempty"`
	Limitations             []string               `json:"limitations,omitempty"`
	FullAnalysis            string                 `json:"fullAnalysis,omitempty"`
	RelatedClaims           []string               `json:"relatedClaims,omitempty"`
	AnalysisMode            AnalysisMode           `json:"analysisMode,omitempty"`
	CreatedAt               time.Time              `json:"createdAt"`
}

// Clone returns a deep copy so callers can derive new results without touching cached ones
func (r *FactCheckResult) Clone() *FactCheckResult {
	if r == nil {
		return nil
	}
	data, err := json.Marshal(r)
	if err != nil {
		cp := *r
		return &cp
	}
	var out FactCheckResult
	if err := json.Unmarshal(data, &out); err != nil {
		cp := *r
		return &cp
	}
	return &out
}

// ComputeConsensus derives the majority verdict and agreement ratio from model verdicts.
// Ties are broken by summed confidence.
func ComputeConsensus(analyses []AIModelAnalysis) *Consensus {
	if len(analyses) == 0 {
		return nil
	}

	counts := make(map[Verdict]int)
	weight := make(map[Verdict]float64)
	total := 0.0
	for _, a := range analyses {
		counts[a.Verdict]++
		weight[a.Verdict] += a.Confidence
		total += a.Confidence
	}

	var best Verdict
	for _, v := range []Verdict{VerdictTrue, VerdictFalse, VerdictMixed, VerdictUnverifiable} {
		if counts[v] == 0 {
			continue
		}
		if best == "" || counts[v] > counts[best] || (counts[v] == counts[best] && weight[v] > weight[best]) {
			best = v
		}
	}

	return &Consensus{
		Verdict:           best,
		Agreement:         float64(counts[best]) / float64(len(analyses)),
		AverageConfidence: total / float64(len(analyses)),
		ModelCount:        len(analyses),
	}
}
