package service

import (
	"strings"
	"testing"

	"genuverity-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFallbackResult(t *testing.T) {
	for _, reason := range []FallbackReason{FallbackDisabled, FallbackTimeout, FallbackUpstream, FallbackMalformed, "unknown"} {
		r := FallbackResult("Vaccines cause autism", reason)
		require.NotNil(t, r)
		assert.True(t, strings.HasPrefix(r.ID, "mock-"))
		assert.Equal(t, models.VerdictMixed, r.Verdict)
		assert.Equal(t, 75.0, r.Confidence)
		assert.Equal(t, "12s", r.AnalysisTime)
		assert.NotEmpty(t, r.Summary)
		assert.NotEmpty(t, r.BottomLine)
		assert.Empty(t, r.Sources)
		assert.Equal(t, models.AnalysisModeFallback, r.AnalysisMode)
		assert.NoError(t, r.Validate(), reason)
	}

	assert.Contains(t, FallbackResult("claim text here", FallbackDisabled).Summary, "mock analysis")
	assert.Contains(t, FallbackResult("claim text here", FallbackTimeout).Summary, "did not respond in time")
}

func TestFallbackResultEmptyClaim(t *testing.T) {
	r := FallbackResult("   ", FallbackUpstream)
	assert.Equal(t, "Unspecified claim", r.Claim)
	assert.NoError(t, r.Validate())
}
