package service

import (
	"errors"
	"strings"
	"testing"

	"genuverity-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeClaim(t *testing.T) {
	cases := map[string]string{
		"  Vaccines CAUSE   autism!! ":                     "vaccines cause autism",
		"Ｖａｃｃｉｎｅｓ cause autism":                         "vaccines cause autism",
		"Is the Great Wall of China visible from space?": "is the great wall of china visible from space",
		"Coffee: bad for your health?":                    "coffee bad for your health",
		"Don't trust it":                                 "dont trust it",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeClaim(in), in)
	}
}

func TestClaimIDIsStableAndURLSafe(t *testing.T) {
	a := ClaimID(NormalizeClaim("The Great Wall of China is visible from space"))
	b := ClaimID(NormalizeClaim("the great wall of china is VISIBLE from space."))
	assert.Equal(t, a, b)
	assert.True(t, strings.HasPrefix(a, "the-great-wall-of-china-is-visible-from-space-"))
	assert.True(t, models.IsURLSafeID(a))

	long := ClaimID(NormalizeClaim(strings.Repeat("word ", 40)))
	assert.LessOrEqual(t, len(long), maxSlugLength+7)
	assert.True(t, models.IsURLSafeID(long))

	cjk := ClaimID(NormalizeClaim("长城在太空中可以看到"))
	assert.True(t, strings.HasPrefix(cjk, "claim-"))
	assert.True(t, models.IsURLSafeID(cjk))

	assert.NotEqual(t, ClaimID("vaccines cause autism"), ClaimID("vaccines cause asthma"))
}

func TestValidateClaim(t *testing.T) {
	err := ValidateClaim("hi", DefaultClaimMinLength, DefaultClaimMaxLength)
	var claimErr *ClaimError
	require.True(t, errors.As(err, &claimErr))
	assert.Equal(t, "INVALID_CLAIM", claimErr.Code)
	assert.Equal(t, 2, claimErr.ProvidedLength)
	assert.Equal(t, 10, claimErr.MinLength)
	assert.Equal(t, 500, claimErr.MaxLength)
	assert.Equal(t, map[string]int{"provided_length": 2, "min_length": 10, "max_length": 500}, claimErr.Details())

	// runes, not bytes
	err = ValidateClaim("長城は宇宙から見える", DefaultClaimMinLength, DefaultClaimMaxLength)
	require.True(t, errors.As(err, &claimErr))
	assert.Equal(t, 9, claimErr.ProvidedLength)

	assert.Error(t, ValidateClaim("   ", DefaultClaimMinLength, DefaultClaimMaxLength))
	assert.NoError(t, ValidateClaim("  "+strings.Repeat("a", 10)+"  ", DefaultClaimMinLength, DefaultClaimMaxLength))
	assert.NoError(t, ValidateClaim(strings.Repeat("a", 500), DefaultClaimMinLength, DefaultClaimMaxLength))
	assert.Error(t, ValidateClaim(strings.Repeat("a", 501), DefaultClaimMinLength, DefaultClaimMaxLength))
}
