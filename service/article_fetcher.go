package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/temoto/robotstxt"
	"golang.org/x/net/html"
)

const (
	fetcherUserAgent  = "GenuVerityBot/1.0 (+https://genuverity.com/bot)"
	maxArticleBytes   = 2 << 20
	maxArticleRunes   = 8000
	defaultFetchLimit = 15 * time.Second
)

var (
	ErrInvalidURL      = errors.New("url must be an absolute http or https URL")
	ErrFetchDisallowed = errors.New("robots.txt disallows fetching this url")
	ErrFetchFailed     = errors.New("failed to fetch article")
)

// ValidateArticleURL accepts absolute http(s) URLs with a host
func ValidateArticleURL(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, ErrInvalidURL
	}
	return u, nil
}

// ArticleFetcher downloads a page and reduces it to readable text,
// honoring robots.txt for its user agent.
type ArticleFetcher struct {
	httpClient *http.Client
	userAgent  string

	mu     sync.RWMutex
	robots map[string]*robotstxt.RobotsData
}

func NewArticleFetcher(client *http.Client) *ArticleFetcher {
	if client == nil {
		client = &http.Client{Timeout: defaultFetchLimit}
	}
	return &ArticleFetcher{
		httpClient: client,
		userAgent:  fetcherUserAgent,
		robots:     make(map[string]*robotstxt.RobotsData),
	}
}

// Fetch returns the visible text of the page at rawURL
func (f *ArticleFetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	u, err := ValidateArticleURL(rawURL)
	if err != nil {
		return "", err
	}
	if !f.allowed(ctx, u) {
		return "", ErrFetchDisallowed
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,text/plain;q=0.9")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: status %d", ErrFetchFailed, resp.StatusCode)
	}

	body := io.LimitReader(resp.Body, maxArticleBytes)
	var text string
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "text/plain") {
		data, err := io.ReadAll(body)
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrFetchFailed, err)
		}
		text = string(data)
	} else {
		doc, err := html.Parse(body)
		if err != nil {
			return "", fmt.Errorf("%w: parse html: %w", ErrFetchFailed, err)
		}
		var b strings.Builder
		visibleText(doc, &b)
		text = b.String()
	}

	text = truncateRunes(strings.Join(strings.Fields(text), " "), maxArticleRunes)
	if text == "" {
		return "", fmt.Errorf("%w: page has no readable text", ErrFetchFailed)
	}
	return text, nil
}

// allowed fetches robots.txt once per host. Unreachable robots files allow the fetch.
func (f *ArticleFetcher) allowed(ctx context.Context, u *url.URL) bool {
	f.mu.RLock()
	data, ok := f.robots[u.Host]
	f.mu.RUnlock()

	if !ok {
		robotsURL := fmt.Sprintf("%s://%s/robots.txt", u.Scheme, u.Host)
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
		if err != nil {
			return true
		}
		req.Header.Set("User-Agent", f.userAgent)
		resp, err := f.httpClient.Do(req)
		if err != nil {
			return true
		}
		data, err = robotstxt.FromResponse(resp)
		_ = resp.Body.Close()
		if err != nil {
			return true
		}

		f.mu.Lock()
		f.robots[u.Host] = data
		f.mu.Unlock()
	}

	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	return data.TestAgent(path, "GenuVerityBot")
}

var skippedElements = map[string]bool{
	"script": true, "style": true, "noscript": true, "template": true,
	"nav": true, "footer": true, "header": true, "aside": true, "form": true, "svg": true,
}

func visibleText(n *html.Node, b *strings.Builder) {
	if n.Type == html.ElementNode && skippedElements[n.Data] {
		return
	}
	if n.Type == html.TextNode {
		b.WriteString(n.Data)
		b.WriteByte(' ')
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		visibleText(c, b)
	}
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
