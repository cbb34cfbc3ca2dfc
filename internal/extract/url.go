// Package extract turns source documents into plain text. URLs are fetched
// and their HTML reduced to readable text; PDFs go through a pluggable
// text extractor.
package extract

import (
	"context"
	"errors"
	"html"
	"io"
	"net"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/vestor-labs/ingest-cli/internal/config"
)

const (
	DefaultTimeout      = 30 * time.Second
	DefaultMaxChars     = 150_000
	DefaultMaxBodyBytes = 5 << 20
	DefaultUserAgent    = "vestor-ingest/1.0 (Investor Profile Bot)"
)

// URLResult is the extracted text plus page metadata for one fetched URL.
type URLResult struct {
	Text          string
	FinalURL      string
	Title         string
	Description   string
	ContentLength int
	Truncated     bool
}

// URLExtractor fetches pages and reduces them to plain text. A shared rate
// limiter throttles all fetches regardless of host; investor documents tend
// to cluster on a single site.
type URLExtractor struct {
	client       *http.Client
	limiter      *rate.Limiter
	userAgent    string
	maxChars     int
	maxBodyBytes int64
}

// NewURLExtractor builds an extractor from config, filling zero values with
// defaults.
func NewURLExtractor(cfg config.FetchConfig) *URLExtractor {
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	maxChars := cfg.MaxChars
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = DefaultMaxBodyBytes
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	rps := cfg.RatePerSecond
	if rps <= 0 {
		rps = 2
	}

	transport := &http.Transport{
		MaxIdleConnsPerHost: 10,
		MaxConnsPerHost:     20,
		IdleConnTimeout:     90 * time.Second,
	}
	return &URLExtractor{
		client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		limiter:      rate.NewLimiter(rate.Limit(rps), max(1, int(rps))),
		userAgent:    ua,
		maxChars:     maxChars,
		maxBodyBytes: maxBody,
	}
}

// Extract fetches the URL, following redirects, and returns its readable
// text. Non-2xx responses and transport failures are errors; the caller
// decides whether they fail just the document or the whole run.
func (e *URLExtractor) Extract(ctx context.Context, rawURL string) (*URLResult, error) {
	if err := e.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "extract: rate limiter wait")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, eris.Wrapf(err, "extract: create request for %s", rawURL)
	}
	req.Header.Set("User-Agent", e.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,text/plain;q=0.9,*/*;q=0.8")

	resp, err := e.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, eris.Wrapf(ErrTimeout, "extract: fetch %s: %v", rawURL, err)
		}
		return nil, eris.Wrapf(err, "extract: fetch %s", rawURL)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, eris.Errorf("extract: unexpected status %d from %s", resp.StatusCode, rawURL)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, e.maxBodyBytes))
	if err != nil {
		if isTimeout(err) {
			return nil, eris.Wrapf(ErrTimeout, "extract: read %s: %v", rawURL, err)
		}
		return nil, eris.Wrapf(err, "extract: read body from %s", rawURL)
	}

	result := &URLResult{FinalURL: resp.Request.URL.String()}

	raw := string(body)
	contentType := resp.Header.Get("Content-Type")
	if strings.Contains(contentType, "text/html") || strings.Contains(contentType, "application/xhtml") || contentType == "" {
		result.Title, result.Description = pageMetadata(raw)
		result.Text = htmlToText(raw)
	} else {
		result.Text = strings.TrimSpace(raw)
	}

	result.ContentLength = len(result.Text)
	result.Text, result.Truncated = truncate(result.Text, e.maxChars)
	if result.Truncated {
		zap.L().Debug("extracted text truncated",
			zap.String("url", rawURL),
			zap.Int("content_length", result.ContentLength),
			zap.Int("max_chars", e.maxChars),
		)
	}

	return result, nil
}

func isTimeout(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}

// pageMetadata pulls title and description, preferring document tags over
// OpenGraph equivalents.
func pageMetadata(rawHTML string) (title, description string) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return "", ""
	}

	title = strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		title, _ = doc.Find(`meta[property="og:title"]`).Attr("content")
		title = strings.TrimSpace(title)
	}

	description, _ = doc.Find(`meta[name="description"]`).Attr("content")
	description = strings.TrimSpace(description)
	if description == "" {
		description, _ = doc.Find(`meta[property="og:description"]`).Attr("content")
		description = strings.TrimSpace(description)
	}
	return title, description
}

var (
	scriptRe   = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleRe    = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	noscriptRe = regexp.MustCompile(`(?is)<noscript[^>]*>.*?</noscript>`)
	anchorRe   = regexp.MustCompile(`(?is)<a\s[^>]*href=["']([^"']+)["'][^>]*>(.*?)</a>`)
	blockRe    = regexp.MustCompile(`(?i)</(?:p|div|h[1-6]|li|tr|section|article|header|footer|blockquote|pre|table|ul|ol)>|<br\s*/?>`)
	tagRe      = regexp.MustCompile(`(?s)<[^>]+>`)
	spaceRe    = regexp.MustCompile(`[ \t]+`)
	blankRe    = regexp.MustCompile(`\n{3,}`)
)

// htmlToText reduces an HTML document to readable plain text. Anchors keep
// their targets as "text [href]" so profile extraction can see portfolio
// and team links; block-level elements become line breaks.
func htmlToText(rawHTML string) string {
	text := scriptRe.ReplaceAllString(rawHTML, " ")
	text = styleRe.ReplaceAllString(text, " ")
	text = noscriptRe.ReplaceAllString(text, " ")

	text = anchorRe.ReplaceAllStringFunc(text, func(m string) string {
		groups := anchorRe.FindStringSubmatch(m)
		href := groups[1]
		inner := strings.TrimSpace(tagRe.ReplaceAllString(groups[2], " "))
		if inner == "" {
			return " "
		}
		if strings.HasPrefix(href, "#") || strings.HasPrefix(href, "javascript:") {
			return " " + inner + " "
		}
		return " " + inner + " [" + href + "] "
	})

	text = blockRe.ReplaceAllString(text, "\n")
	text = tagRe.ReplaceAllString(text, " ")
	text = html.UnescapeString(text)

	text = spaceRe.ReplaceAllString(text, " ")
	lines := strings.Split(text, "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}
	text = strings.Join(lines, "\n")
	text = blankRe.ReplaceAllString(text, "\n\n")

	return strings.TrimSpace(text)
}

// truncate cuts text to at most maxChars runes.
func truncate(text string, maxChars int) (string, bool) {
	runes := []rune(text)
	if len(runes) <= maxChars {
		return text, false
	}
	return string(runes[:maxChars]), true
}
