package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spigell/resume-advisor/internal/extraction"
)

func serveHTML(t *testing.T, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestExtract_JobDescriptionAmongBoilerplate(t *testing.T) {
	page := `
	<html>
		<head><title>Careers</title><script>var tracking = 1;</script></head>
		<body>
			<header><a href="/">Home</a><a href="/jobs">Jobs</a></header>
			<nav><ul><li>About</li><li>Blog</li><li>Contact</li></ul></nav>
			<div class="layout">
				<div class="job-description">Senior Backend Engineer, Go, Kubernetes</div>
				<aside>Similar jobs</aside>
			</div>
			<footer>© Acme Corp</footer>
		</body>
	</html>`
	server := serveHTML(t, page)

	res := New(zap.NewNop(), Options{}).Extract(context.Background(), server.URL)

	require.False(t, res.Failed(), res.String())
	assert.Equal(t, "Senior Backend Engineer, Go, Kubernetes", res.String())
	assert.False(t, res.Truncated)
}

func TestExtract_ArticleSubtreeOnly(t *testing.T) {
	page := `
	<html><body>
		<div>Outside text</div>
		<article>
			<h1>Platform Engineer</h1>
			<p>Build <b>internal</b> tooling.</p>
		</article>
		<div class="description">Company description</div>
	</body></html>`
	server := serveHTML(t, page)

	res := New(nil, Options{}).Extract(context.Background(), server.URL)

	require.False(t, res.Failed(), res.String())
	assert.Equal(t, "Platform Engineer\nBuild\ninternal\ntooling.", res.Text)
	assert.NotContains(t, res.Text, "Outside text")
	assert.NotContains(t, res.Text, "Company description")
}

func TestExtract_SendsBrowserHeaders(t *testing.T) {
	var got http.Header
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		_, _ = w.Write([]byte("<main>Role</main>"))
	}))
	defer server.Close()

	res := New(nil, Options{}).Extract(context.Background(), server.URL)
	require.False(t, res.Failed(), res.String())

	assert.Equal(t, DefaultUserAgent, got.Get("User-Agent"))
	assert.Equal(t, acceptLanguageHeader, got.Get("Accept-Language"))
	assert.Equal(t, acceptHeader, got.Get("Accept"))
}

func TestExtract_Truncates(t *testing.T) {
	server := serveHTML(t, "<html><body><main>"+strings.Repeat("x", 12000)+"</main></body></html>")

	res := New(nil, Options{}).Extract(context.Background(), server.URL)

	require.False(t, res.Failed(), res.String())
	assert.True(t, res.Truncated)
	require.True(t, strings.HasSuffix(res.Text, extraction.TruncationMarker))
	body := strings.TrimSuffix(res.Text, extraction.TruncationMarker)
	assert.Equal(t, DefaultMaxChars, utf8.RuneCountInString(body))
}

func TestExtract_EmptyPage(t *testing.T) {
	server := serveHTML(t, `<html><body><div id="root"></div><script>render()</script></body></html>`)

	res := New(nil, Options{}).Extract(context.Background(), server.URL)

	require.True(t, res.Failed())
	assert.Equal(t, extraction.KindEmpty, res.Err.Kind)
	assert.Equal(t, "Error: Could not extract text content. The page might require JavaScript.", res.String())
}

func TestExtract_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	res := New(nil, Options{}).Extract(context.Background(), server.URL+"/jobs/1")

	require.True(t, res.Failed())
	assert.Equal(t, extraction.KindHTTPStatus, res.Err.Kind)
	assert.Equal(t, "Error: HTTP error occurred: 404 Client Error: Not Found for url: "+server.URL+"/jobs/1", res.String())
}

func TestExtract_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	res := New(nil, Options{}).Extract(context.Background(), server.URL)

	require.True(t, res.Failed())
	assert.Contains(t, res.String(), "502 Server Error: Bad Gateway")
}

func TestExtract_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	res := New(nil, Options{Timeout: 50 * time.Millisecond}).Extract(context.Background(), server.URL)

	require.True(t, res.Failed())
	assert.Equal(t, extraction.KindTimeout, res.Err.Kind)
	assert.Equal(t, "Error: Request timed out for '"+server.URL+"'.", res.String())
}

func TestExtract_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	target := server.URL
	server.Close()

	res := New(nil, Options{}).Extract(context.Background(), target)

	require.True(t, res.Failed())
	assert.Equal(t, extraction.KindConnection, res.Err.Kind)
	assert.Equal(t, "Error: Could not connect to '"+target+"'.", res.String())
}

func TestExtract_SchemelessURLUsesHTTPS(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<div class="job-details">Staff SRE</div>`))
	}))
	defer server.Close()

	extractor := New(nil, Options{})
	extractor.HTTPClient = server.Client()

	withScheme := extractor.Extract(context.Background(), server.URL)
	withoutScheme := extractor.Extract(context.Background(), strings.TrimPrefix(server.URL, "https://"))

	require.False(t, withScheme.Failed(), withScheme.String())
	assert.Equal(t, withScheme, withoutScheme)
	assert.Equal(t, "Staff SRE", withoutScheme.Text)
}

func TestExtract_DecodesDeclaredCharset(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
		_, _ = w.Write([]byte("<main>Caf\xe9 barista</main>"))
	}))
	defer server.Close()

	res := New(nil, Options{}).Extract(context.Background(), server.URL)

	require.False(t, res.Failed(), res.String())
	assert.Equal(t, "Café barista", res.Text)
}

func TestNormalizeURL(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"example.com/jobs/1":           "https://example.com/jobs/1",
		"  'https://example.com/a'  ":  "https://example.com/a",
		`"http://example.com/b"`:       "http://example.com/b",
		"\thttps://example.com/c\n":    "https://example.com/c",
		"HTTPS://Example.com/Careers": "HTTPS://Example.com/Careers",
	}

	for input, expect := range tests {
		assert.Equal(t, expect, NormalizeURL(input), "input %q", input)
	}
}
