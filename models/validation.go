package models

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidResult wraps every structural violation found by Validate
var ErrInvalidResult = errors.New("invalid fact-check result")

// weightTolerance absorbs rounding in fixture weight percentages
const weightTolerance = 0.5

var (
	validate  = validator.New(validator.WithRequiredStructEnabled())
	urlSafeID = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._~-]{0,127}$`)
)

// IsURLSafeID reports whether id can be used as a single URL path segment
func IsURLSafeID(id string) bool {
	return urlSafeID.MatchString(id)
}

// Validate checks the result against the invariants consumers rely on:
// closed verdict enum, score ranges, tier bookkeeping and the social-field rule.
func (r *FactCheckResult) Validate() error {
	var errs []error

	if err := validate.Struct(r); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				errs = append(errs, fmt.Errorf("%s failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
			}
		} else {
			errs = append(errs, err)
		}
	}

	if r.ID != "" && !IsURLSafeID(r.ID) {
		errs = append(errs, fmt.Errorf("id %q is not URL-safe", r.ID))
	}
	if !r.Verdict.Valid() {
		errs = append(errs, fmt.Errorf("verdict %q is not one of TRUE, FALSE, MIXED, UNVERIFIABLE", r.Verdict))
	}
	for i, m := range r.AIModels {
		if !m.Verdict.Valid() {
			errs = append(errs, fmt.Errorf("aiModels[%d].verdict %q is invalid", i, m.Verdict))
		}
	}

	errs = append(errs, r.validateSources()...)
	errs = append(errs, r.validateDistribution()...)

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidResult, errors.Join(errs...))
}

func (r *FactCheckResult) validateSources() []error {
	var errs []error
	for i, s := range r.Sources {
		if !s.Type.Valid() {
			errs = append(errs, fmt.Errorf("sources[%d].type %q is invalid", i, s.Type))
		}
		if s.Type != SourceTypeSocial && !s.Social.empty() {
			errs = append(errs, fmt.Errorf("sources[%d] carries social fields but has type %q", i, s.Type))
		}
	}
	return errs
}

func (r *FactCheckResult) validateDistribution() []error {
	var errs []error

	counts := make(map[int]int, len(r.SourceDistribution))
	seen := make(map[int]bool, len(r.SourceDistribution))
	weightSum := 0.0
	for _, d := range r.SourceDistribution {
		if seen[d.Tier] {
			errs = append(errs, fmt.Errorf("sourceDistribution lists tier %d twice", d.Tier))
		}
		seen[d.Tier] = true
		counts[d.Tier] = d.Count
		weightSum += d.WeightContribution
	}

	if weightSum > 100+weightTolerance {
		errs = append(errs, fmt.Errorf("sourceDistribution weights sum to %.2f, above 100", weightSum))
	}

	returned := TierCounts(r.Sources)
	for tier, n := range returned {
		if !seen[tier] {
			errs = append(errs, fmt.Errorf("source tier %d has no sourceDistribution entry", tier))
			continue
		}
		if counts[tier] != n {
			errs = append(errs, fmt.Errorf("tier %d count is %d but %d sources are returned", tier, counts[tier], n))
		}
	}
	for tier, c := range counts {
		if _, ok := returned[tier]; !ok && c != 0 {
			errs = append(errs, fmt.Errorf("tier %d count is %d but no sources are returned", tier, c))
		}
	}

	return errs
}

// TierCounts counts returned sources per tier
func TierCounts(sources []Source) map[int]int {
	out := make(map[int]int)
	for _, s := range sources {
		out[s.Tier]++
	}
	return out
}

// WeightTotal sums the weight contributions of all tiers
func (r *FactCheckResult) WeightTotal() float64 {
	total := 0.0
	for _, d := range r.SourceDistribution {
		total += d.WeightContribution
	}
	return total
}
