package extract

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vestor-labs/ingest-cli/internal/config"
)

const samplePage = `<!DOCTYPE html>
<html>
<head>
<title>Meridian Ventures</title>
<meta name="description" content="Seed-stage venture firm">
<style>body { color: red; }</style>
<script>trackVisitor();</script>
</head>
<body>
<h1>Investment Thesis</h1>
<p>We back &amp; support technical founders.</p>
<noscript>Enable JS</noscript>
<a href="/portfolio">Our portfolio</a>
<a href="#top">Back to top</a>
</body>
</html>`

func testConfig() config.FetchConfig {
	return config.FetchConfig{TimeoutSecs: 5, MaxChars: 150_000, RatePerSecond: 100}
}

func TestExtract_HTMLPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.Header.Get("User-Agent"), "vestor-ingest")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(samplePage))
	}))
	defer srv.Close()

	e := NewURLExtractor(testConfig())
	res, err := e.Extract(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.Equal(t, "Meridian Ventures", res.Title)
	assert.Equal(t, "Seed-stage venture firm", res.Description)
	assert.False(t, res.Truncated)

	assert.Contains(t, res.Text, "Investment Thesis")
	assert.Contains(t, res.Text, "We back & support technical founders.")
	assert.Contains(t, res.Text, "Our portfolio [/portfolio]")
	// Fragment links keep their text but drop the target.
	assert.Contains(t, res.Text, "Back to top")
	assert.NotContains(t, res.Text, "#top")
	assert.NotContains(t, res.Text, "trackVisitor")
	assert.NotContains(t, res.Text, "color: red")
	assert.NotContains(t, res.Text, "Enable JS")
}

func TestExtract_PlainText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("Fund memo: we invest at seed.\n"))
	}))
	defer srv.Close()

	e := NewURLExtractor(testConfig())
	res, err := e.Extract(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.Equal(t, "Fund memo: we invest at seed.", res.Text)
	assert.Empty(t, res.Title)
}

func TestExtract_FollowsRedirects(t *testing.T) {
	final := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("landed"))
	}))
	defer final.Close()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, final.URL, http.StatusFound)
	}))
	defer srv.Close()

	e := NewURLExtractor(testConfig())
	res, err := e.Extract(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.Equal(t, "landed", res.Text)
	assert.Equal(t, final.URL+"/", res.FinalURL+"/")
}

func TestExtract_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	e := NewURLExtractor(testConfig())
	_, err := e.Extract(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
	assert.False(t, IsTimeout(err))
}

func TestExtract_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer srv.Close()

	cfg := testConfig()
	e := NewURLExtractor(cfg)
	e.client.Timeout = 50 * time.Millisecond

	_, err := e.Extract(context.Background(), srv.URL)
	require.Error(t, err)
	assert.True(t, IsTimeout(err))
}

func TestExtract_Truncation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		for i := 0; i < 100; i++ {
			_, _ = w.Write([]byte("All work and no play makes for a dull fund. "))
		}
	}))
	defer srv.Close()

	cfg := testConfig()
	cfg.MaxChars = 200
	e := NewURLExtractor(cfg)

	res, err := e.Extract(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.True(t, res.Truncated)
	assert.Len(t, []rune(res.Text), 200)
	assert.Greater(t, res.ContentLength, 200)
}

func TestHTMLToText_BlockBreaksAndEntities(t *testing.T) {
	out := htmlToText(`<div>First</div><p>Second &mdash; detail</p><br>Third`)

	assert.Contains(t, out, "First\n")
	assert.Contains(t, out, "Second")
	assert.Contains(t, out, "Third")
	assert.NotContains(t, out, "&mdash;")
}

func TestHTMLToText_CollapsesBlankLines(t *testing.T) {
	out := htmlToText("<p>a</p>\n\n\n\n<p>b</p>")
	assert.NotContains(t, out, "\n\n\n")
}
