package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"genuverity-backend/models"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// fakeGenerator replies with a canned text or error and records prompts
type fakeGenerator struct {
	mu      sync.Mutex
	reply   string
	err     error
	block   bool
	prompts []string
}

func (g *fakeGenerator) GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error) {
	g.mu.Lock()
	for _, p := range parts {
		if t, ok := p.(genai.Text); ok {
			g.prompts = append(g.prompts, string(t))
		}
	}
	reply, err, block := g.reply, g.err, g.block
	g.mu.Unlock()

	if block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if err != nil {
		return nil, err
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []genai.Part{genai.Text(reply)}},
		}},
	}, nil
}

func (g *fakeGenerator) calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.prompts)
}

const validReply = `{"verdict":"false","confidence":92,"summary":"The Great Wall is not visible to the naked eye from orbit. Astronauts confirm this.","reasoning":["Too narrow","Similar color to terrain"]}`

func newTestClient(t *testing.T, gen *fakeGenerator, opts ...GeminiClientOption) *GeminiClient {
	t.Helper()
	base := []GeminiClientOption{
		WithGenerators(gen, gen, "gemini-test"),
		WithModelEnabled(true),
		WithClientLogger(zaptest.NewLogger(t)),
	}
	return NewGeminiClient(append(base, opts...)...)
}

func TestProcessTextValidResponse(t *testing.T) {
	gen := &fakeGenerator{reply: validReply}
	c := newTestClient(t, gen)

	r := c.ProcessText(context.Background(), "The Great Wall of China is visible from space")
	assert.Equal(t, models.VerdictFalse, r.Verdict)
	assert.Equal(t, 92.0, r.Confidence)
	assert.Equal(t, "The Great Wall is not visible to the naked eye from orbit", r.BottomLine)
	assert.Equal(t, models.AnalysisModeLive, r.AnalysisMode)
	assert.True(t, strings.HasPrefix(r.ID, "txt-"))
	require.Len(t, r.AIModels, 1)
	assert.Equal(t, "gemini-test", r.AIModels[0].ModelName)
	assert.Equal(t, "Too narrow Similar color to terrain", r.AIModels[0].Reasoning)
	assert.NoError(t, r.Validate())
	assert.Equal(t, 1, gen.calls())
}

func TestProcessTextFencedResponse(t *testing.T) {
	gen := &fakeGenerator{reply: "```json\n" + validReply + "\n```"}
	r := newTestClient(t, gen).ProcessText(context.Background(), "The Great Wall of China is visible from space")
	assert.Equal(t, models.VerdictFalse, r.Verdict)
}

func TestProcessTextDisabled(t *testing.T) {
	gen := &fakeGenerator{reply: validReply}
	c := newTestClient(t, gen, WithModelEnabled(false))

	assert.False(t, c.Enabled())
	r := c.ProcessText(context.Background(), "Vaccines cause autism")
	assert.Equal(t, models.VerdictMixed, r.Verdict)
	assert.Equal(t, 75.0, r.Confidence)
	assert.Contains(t, r.Summary, "Gemini API key")
	assert.Zero(t, gen.calls())

	_, err := c.AnalyzeText(context.Background(), "Vaccines cause autism")
	assert.ErrorIs(t, err, ErrModelDisabled)
}

func TestProcessTextMalformedResponses(t *testing.T) {
	replies := []string{
		`not json at all`,
		`{"verdict":"MAYBE","confidence":50,"summary":"s"}`,
		`{"verdict":"TRUE","summary":"missing confidence"}`,
		`{"verdict":"TRUE","confidence":150,"summary":"out of range"}`,
		`{"verdict":"TRUE","confidence":"high","summary":"wrong type"}`,
		`{"verdict":"TRUE","confidence":80}`,
	}
	for _, reply := range replies {
		gen := &fakeGenerator{reply: reply}
		c := newTestClient(t, gen)

		_, err := c.AnalyzeText(context.Background(), "Vaccines cause autism")
		assert.ErrorIs(t, err, ErrMalformedResponse, reply)
		assert.Equal(t, FallbackMalformed, FallbackReasonFor(err))

		r := c.ProcessText(context.Background(), "Vaccines cause autism")
		assert.Equal(t, models.VerdictMixed, r.Verdict, reply)
		assert.Equal(t, models.AnalysisModeFallback, r.AnalysisMode)
	}
}

func TestProcessTextEmptyResponse(t *testing.T) {
	gen := &fakeGenerator{reply: "  "}
	_, err := newTestClient(t, gen).AnalyzeText(context.Background(), "Vaccines cause autism")
	assert.ErrorIs(t, err, ErrNoCandidates)
	assert.Equal(t, FallbackUpstream, FallbackReasonFor(err))
}

func TestProcessTextUpstreamError(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("rpc error: code = Unavailable")}
	c := newTestClient(t, gen)

	_, err := c.AnalyzeText(context.Background(), "Vaccines cause autism")
	require.Error(t, err)
	assert.Equal(t, FallbackUpstream, FallbackReasonFor(err))

	r := c.ProcessText(context.Background(), "Vaccines cause autism")
	assert.Equal(t, models.VerdictMixed, r.Verdict)
	assert.Contains(t, r.Summary, "could not be reached")
}

func TestProcessTextTimeout(t *testing.T) {
	gen := &fakeGenerator{block: true}
	c := newTestClient(t, gen, WithModelTimeout(20*time.Millisecond))

	start := time.Now()
	_, err := c.AnalyzeText(context.Background(), "Vaccines cause autism")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, FallbackTimeout, FallbackReasonFor(err))
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestProcessImage(t *testing.T) {
	gen := &fakeGenerator{reply: `{"claim":"Humans only use 10% of their brains","verdict":"FALSE","confidence":95,"summary":"Imaging shows activity across the whole brain."}`}
	c := newTestClient(t, gen)

	r := c.ProcessImage(context.Background(), "meme.png", "image/png", []byte{0x89, 'P', 'N', 'G'})
	assert.Equal(t, "Humans only use 10% of their brains", r.Claim)
	assert.Equal(t, models.VerdictFalse, r.Verdict)
	assert.True(t, strings.HasPrefix(r.ID, "img-"))

	gen.reply = `{"verdict":"UNVERIFIABLE","confidence":40,"summary":"No legible claim."}`
	r = c.ProcessImage(context.Background(), "meme.png", "image/png", []byte{1})
	assert.Equal(t, "Image-based claim", r.Claim)

	off := newTestClient(t, gen, WithModelEnabled(false))
	r = off.ProcessImage(context.Background(), "meme.png", "image/png", []byte{1})
	assert.Equal(t, "Image analysis (meme.png)", r.Claim)
	assert.Equal(t, models.AnalysisModeFallback, r.AnalysisMode)
}

func articleServer(t *testing.T, robots string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/robots.txt":
			if robots == "" {
				http.NotFound(w, r)
				return
			}
			fmt.Fprint(w, robots)
		default:
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			fmt.Fprint(w, `<html><head><title>T</title><script>var x = 1;</script></head>
<body><nav>Home | About</nav><article><h1>Wall myth</h1><p>The wall cannot be seen from orbit.</p></article></body></html>`)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestProcessURL(t *testing.T) {
	srv := articleServer(t, "")
	gen := &fakeGenerator{reply: validReply}
	c := newTestClient(t, gen, WithArticleFetcher(NewArticleFetcher(srv.Client())))

	target := srv.URL + "/news/wall"
	r := c.ProcessURL(context.Background(), target)
	assert.Equal(t, "Article analysis: "+target, r.Claim)
	assert.Equal(t, models.VerdictFalse, r.Verdict)

	require.Equal(t, 1, gen.calls())
	prompt := gen.prompts[0]
	assert.Contains(t, prompt, "Article content: ")
	assert.Contains(t, prompt, "Wall myth The wall cannot be seen from orbit.")
	assert.NotContains(t, prompt, "var x")
	assert.NotContains(t, prompt, "Home | About")
}

func TestProcessURLDisallowedByRobots(t *testing.T) {
	srv := articleServer(t, "User-agent: *\nDisallow: /private\n")
	gen := &fakeGenerator{reply: validReply}
	c := newTestClient(t, gen, WithArticleFetcher(NewArticleFetcher(srv.Client())))

	r := c.ProcessURL(context.Background(), srv.URL+"/private/story")
	assert.Equal(t, models.AnalysisModeFallback, r.AnalysisMode)
	assert.Zero(t, gen.calls())

	r = c.ProcessURL(context.Background(), srv.URL+"/public/story")
	assert.Equal(t, models.VerdictFalse, r.Verdict)
}

func TestValidateArticleURL(t *testing.T) {
	for _, bad := range []string{"", "example.com/a", "ftp://example.com/a", "https://", "javascript:alert(1)"} {
		_, err := ValidateArticleURL(bad)
		assert.ErrorIs(t, err, ErrInvalidURL, bad)
	}
	u, err := ValidateArticleURL(" https://example.com/a?b=c ")
	require.NoError(t, err)
	assert.Equal(t, "example.com", u.Host)
}

func TestParseModelResponseReasoningString(t *testing.T) {
	resp, err := ParseModelResponse(`{"verdict":"Mixed","confidence":0,"summary":" s ","reasoning":"single"}`)
	require.NoError(t, err)
	assert.Equal(t, "s", resp.Summary)
	assert.Equal(t, reasoning("single"), resp.Reasoning)
	assert.Equal(t, 0.0, *resp.Confidence)
}
