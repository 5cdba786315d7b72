package models_test

import (
	"encoding/json"
	"testing"
	"time"

	"genuverity-backend/fixtures"
	"genuverity-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVerdict(t *testing.T) {
	for in, want := range map[string]models.Verdict{
		"TRUE": models.VerdictTrue, "false": models.VerdictFalse, " Mixed ": models.VerdictMixed, "unverifiable": models.VerdictUnverifiable,
	} {
		got, err := models.ParseVerdict(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}
	_, err := models.ParseVerdict("MOSTLY TRUE")
	assert.Error(t, err)

	var r models.FactCheckResult
	assert.Error(t, json.Unmarshal([]byte(`{"verdict":"MAYBE"}`), &r))
}

func TestValidateFlagsViolations(t *testing.T) {
	r := fixtures.Vaccines()
	require.NoError(t, r.Validate())

	bad := fixtures.Vaccines()
	bad.Confidence = 101
	assert.ErrorIs(t, bad.Validate(), models.ErrInvalidResult)

	bad = fixtures.Vaccines()
	bad.ID = "has spaces/and slashes"
	assert.ErrorIs(t, bad.Validate(), models.ErrInvalidResult)

	bad = fixtures.Vaccines()
	bad.SourceDistribution[0].Count = 7
	assert.ErrorIs(t, bad.Validate(), models.ErrInvalidResult)

	bad = fixtures.Vaccines()
	bad.SourceDistribution[0].WeightContribution = 90
	assert.ErrorIs(t, bad.Validate(), models.ErrInvalidResult)

	bad = fixtures.Vaccines()
	bad.Sources[0].Social = &models.SocialProfile{CreatorName: "someone"}
	assert.ErrorIs(t, bad.Validate(), models.ErrInvalidResult)

	bad = fixtures.Vaccines()
	bad.Sources[0].Tier = 8
	assert.ErrorIs(t, bad.Validate(), models.ErrInvalidResult)
}

func TestSourceSocialFieldsOnlyOnSocialSources(t *testing.T) {
	views := int64(1200)
	academic := models.Source{
		ID: "1", Title: "Study", Tier: 3, Type: models.SourceTypeAcademic,
		Social: &models.SocialProfile{Platform: models.PlatformYouTube, ViewCount: &views},
	}
	data, err := json.Marshal(academic)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "platform")
	assert.NotContains(t, string(data), "viewCount")

	var decoded models.Source
	require.NoError(t, json.Unmarshal([]byte(`{"id":"2","tier":3,"type":"academic","platform":"tiktok","creatorName":"x"}`), &decoded))
	assert.Nil(t, decoded.Social)

	social := academic
	social.Type = models.SourceTypeSocial
	social.Tier = 6
	data, err = json.Marshal(social)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"platform":"youtube"`)
	assert.Contains(t, string(data), `"viewCount":1200`)

	require.NoError(t, json.Unmarshal(data, &decoded))
	require.NotNil(t, decoded.Social)
	assert.Equal(t, models.PlatformYouTube, decoded.Social.Platform)
	assert.Equal(t, views, *decoded.Social.ViewCount)

	assert.Error(t, json.Unmarshal([]byte(`{"id":"3","type":"blog"}`), &decoded))
}

func TestCloneIsDeep(t *testing.T) {
	r := fixtures.Vaccines()
	cp := r.Clone()
	cp.Sources[0].Title = "changed"
	cp.SourceDistribution[0].Count = 99
	assert.NotEqual(t, "changed", r.Sources[0].Title)
	assert.NotEqual(t, 99, r.SourceDistribution[0].Count)
	assert.True(t, r.CreatedAt.Equal(cp.CreatedAt))
	require.NotNil(t, cp.Sources[5].Social)
}

func TestComputeConsensus(t *testing.T) {
	assert.Nil(t, models.ComputeConsensus(nil))

	c := models.ComputeConsensus([]models.AIModelAnalysis{
		{ModelName: "a", Verdict: models.VerdictFalse, Confidence: 90},
		{ModelName: "b", Verdict: models.VerdictFalse, Confidence: 80},
		{ModelName: "c", Verdict: models.VerdictMixed, Confidence: 70},
	})
	assert.Equal(t, models.VerdictFalse, c.Verdict)
	assert.InDelta(t, 2.0/3.0, c.Agreement, 1e-9)
	assert.InDelta(t, 80, c.AverageConfidence, 1e-9)
	assert.Equal(t, 3, c.ModelCount)

	// ties go to the higher summed confidence
	c = models.ComputeConsensus([]models.AIModelAnalysis{
		{ModelName: "a", Verdict: models.VerdictTrue, Confidence: 60},
		{ModelName: "b", Verdict: models.VerdictMixed, Confidence: 75},
	})
	assert.Equal(t, models.VerdictMixed, c.Verdict)
}

func TestAnalysisTime(t *testing.T) {
	assert.Equal(t, "3.4s", models.FormatAnalysisTime(3400*time.Millisecond))
	assert.Equal(t, "38s", models.FormatAnalysisTime(38*time.Second))
	assert.Equal(t, "1m 7s", models.FormatAnalysisTime(67*time.Second))

	assert.Equal(t, 3400*time.Millisecond, models.ParseAnalysisTime("3.4s"))
	assert.Equal(t, 67*time.Second, models.ParseAnalysisTime("1m 7s"))
	assert.Zero(t, models.ParseAnalysisTime("soon"))
}
