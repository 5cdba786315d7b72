package models

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// ToUnitScale converts a 0-100 score to the 0-1 fraction used by /fact-check-ultimate.
// FactCheckResult keeps 0-100 everywhere else.
func ToUnitScale(score float64) float64 {
	return math.Round(score*100) / 10000
}

// UltimateVerdict is the verdict block of the external response
type UltimateVerdict struct {
	Verdict    Verdict `json:"verdict"`
	Confidence float64 `json:"confidence"`
	Summary    string  `json:"summary"`
	BottomLine string  `json:"bottom_line"`
}

// SourceStatistics reports the found, analyzed and returned source counts
type SourceStatistics struct {
	TotalSourcesFound int   `json:"total_sources_found"`
	SourcesAnalyzed   int   `json:"sources_analyzed"`
	SourcesExcluded   int   `json:"sources_excluded"`
	SourcesReturned   int   `json:"sources_returned"`
	ProcessingTimeMs  int64 `json:"processing_time_ms"`
}

// UltimateSource is one source in the external response
type UltimateSource struct {
	ID               string  `json:"id"`
	URL              string  `json:"url"`
	Title            string  `json:"title"`
	Domain           string  `json:"domain"`
	SourceType       string  `json:"source_type"`
	Tier             int     `json:"tier"`
	CredibilityScore float64 `json:"credibility_score"`
	RelevanceScore   float64 `json:"relevance_score"`
}

// ConstitutionalAnalysis is the compliance block of the external response
type ConstitutionalAnalysis struct {
	OverallCompliance *float64 `json:"overall_compliance"`
	Compliant         *bool    `json:"compliant"`
	Threshold         float64  `json:"threshold"`
}

// UltimateResponse is the body of POST /fact-check-ultimate
type UltimateResponse struct {
	ID                     string                 `json:"id"`
	Claim                  string                 `json:"claim"`
	CacheStatus            string                 `json:"cache_status"`
	CachedAt               *time.Time             `json:"cached_at,omitempty"`
	Verdict                UltimateVerdict        `json:"verdict"`
	SourceStatistics       SourceStatistics       `json:"source_statistics"`
	Sources                []UltimateSource       `json:"sources"`
	ConstitutionalAnalysis ConstitutionalAnalysis `json:"constitutional_analysis"`
}

var externalSourceTypes = map[SourceType]string{
	SourceTypePrimary:    "primary_research",
	SourceTypeFactCheck:  "fact_check",
	SourceTypeAcademic:   "peer_reviewed",
	SourceTypeGovernment: "government",
	SourceTypeMedia:      "news_media",
	SourceTypeSocial:     "social_media",
	SourceTypeOther:      "other",
}

// ExternalSourceType maps an internal source type to the external vocabulary
func ExternalSourceType(t SourceType) string {
	if s, ok := externalSourceTypes[t]; ok {
		return s
	}
	return "other"
}

// NewUltimateResponse converts a result into the external contract shape
func NewUltimateResponse(r *FactCheckResult, cacheStatus string, cachedAt *time.Time) UltimateResponse {
	sources := make([]UltimateSource, 0, len(r.Sources))
	for _, s := range r.Sources {
		relevance := s.CredibilityScore
		if s.RelevanceScore != nil {
			relevance = *s.RelevanceScore
		}
		sources = append(sources, UltimateSource{
			ID:               s.ID,
			URL:              s.URL,
			Title:            s.Title,
			Domain:           s.Domain,
			SourceType:       ExternalSourceType(s.Type),
			Tier:             s.Tier,
			CredibilityScore: ToUnitScale(s.CredibilityScore),
			RelevanceScore:   ToUnitScale(relevance),
		})
	}

	excluded := r.TotalSourceCount - r.AnalyzedSourceCount
	if excluded < 0 {
		excluded = 0
	}

	constitutional := ConstitutionalAnalysis{Threshold: ToUnitScale(ConstitutionalThreshold)}
	if r.ConstitutionalAI != nil {
		overall := ToUnitScale(r.ConstitutionalAI.Overall)
		compliant := r.ConstitutionalAI.Compliant()
		constitutional.OverallCompliance = &overall
		constitutional.Compliant = &compliant
	}

	return UltimateResponse{
		ID:          r.ID,
		Claim:       r.Claim,
		CacheStatus: cacheStatus,
		CachedAt:    cachedAt,
		Verdict: UltimateVerdict{
			Verdict:    r.Verdict,
			Confidence: ToUnitScale(r.Confidence),
			Summary:    r.Summary,
			BottomLine: r.BottomLine,
		},
		SourceStatistics: SourceStatistics{
			TotalSourcesFound: r.TotalSourceCount,
			SourcesAnalyzed:   r.AnalyzedSourceCount,
			SourcesExcluded:   excluded,
			SourcesReturned:   len(r.Sources),
			ProcessingTimeMs:  ParseAnalysisTime(r.AnalysisTime).Milliseconds(),
		},
		Sources:                sources,
		ConstitutionalAnalysis: constitutional,
	}
}

// ParseAnalysisTime reads "38s", "3.4s" or "1m 7s"; unparseable input yields 0
func ParseAnalysisTime(s string) time.Duration {
	d, err := time.ParseDuration(strings.ReplaceAll(s, " ", ""))
	if err != nil || d < 0 {
		return 0
	}
	return d
}

// FormatAnalysisTime renders a duration the way results display it ("3.4s", "38s", "1m 7s")
func FormatAnalysisTime(d time.Duration) string {
	switch {
	case d < 10*time.Second:
		return fmt.Sprintf("%.1fs", d.Seconds())
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Round(time.Second)/time.Second))
	default:
		d = d.Round(time.Second)
		return fmt.Sprintf("%dm %ds", int(d/time.Minute), int((d%time.Minute)/time.Second))
	}
}
