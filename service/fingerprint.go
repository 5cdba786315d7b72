package service

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/OneOfOne/xxhash"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

const (
	DefaultClaimMinLength = 10
	DefaultClaimMaxLength = 500

	maxSlugLength = 60
)

// ClaimError reports a claim outside the accepted length bounds
type ClaimError struct {
	Code           string
	ProvidedLength int
	MinLength      int
	MaxLength      int
}

func (e *ClaimError) Error() string {
	return fmt.Sprintf("claim must be between %d and %d characters, got %d", e.MinLength, e.MaxLength, e.ProvidedLength)
}

// Details is the error envelope payload
func (e *ClaimError) Details() map[string]int {
	return map[string]int{
		"provided_length": e.ProvidedLength,
		"min_length":      e.MinLength,
		"max_length":      e.MaxLength,
	}
}

// ValidateClaim counts runes of the trimmed claim against [minLen, maxLen]
func ValidateClaim(claim string, minLen, maxLen int) error {
	n := utf8.RuneCountInString(strings.TrimSpace(claim))
	if n < minLen || n > maxLen {
		return &ClaimError{
			Code:           "INVALID_CLAIM",
			ProvidedLength: n,
			MinLength:      minLen,
			MaxLength:      maxLen,
		}
	}
	return nil
}

var caseFolder = cases.Fold()

// NormalizeClaim maps textual variants of a claim onto one form:
// NFKC, case folded, punctuation and symbols dropped, whitespace collapsed.
func NormalizeClaim(claim string) string {
	s := caseFolder.String(norm.NFKC.String(claim))

	var b strings.Builder
	b.Grow(len(s))
	space := true
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsNumber(r):
			b.WriteRune(r)
			space = false
		case r == '\'' || r == '’':
			// contractions stay one word
		default:
			if !space {
				b.WriteByte(' ')
				space = true
			}
		}
	}
	return strings.TrimSpace(b.String())
}

// Fingerprint is the 64-bit xxhash of a normalized claim in hex
func Fingerprint(normalized string) string {
	return fmt.Sprintf("%016x", xxhash.ChecksumString64(normalized))
}

// ClaimID derives the URL-safe result id for a normalized claim:
// an ASCII slug of at most 60 characters plus 6 hex digits of the fingerprint.
func ClaimID(normalized string) string {
	var b strings.Builder
	dash := true
	for _, r := range normalized {
		if b.Len() >= maxSlugLength {
			break
		}
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash {
			b.WriteByte('-')
			dash = true
		}
	}
	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		slug = "claim"
	}
	return slug + "-" + Fingerprint(normalized)[:6]
}
