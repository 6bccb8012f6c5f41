// Package scraper fetches a job posting page and extracts its description text.
package scraper

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/resume-advisor/internal/extraction"
)

const (
	// ToolName is the name the extractor is registered under in the pipeline.
	ToolName = "job_url_scraper"
	// DefaultMaxChars caps the extracted posting text.
	DefaultMaxChars = 10000
)

// Extractor downloads job postings and reduces them to plain text.
type Extractor struct {
	logger     *zap.Logger
	maxChars   int
	HTTPClient *http.Client
	UserAgent  string
}

// Options configures an Extractor. Zero values fall back to defaults.
type Options struct {
	Timeout   time.Duration
	UserAgent string
	MaxChars  int
}

// New creates an Extractor.
func New(logger *zap.Logger, opts Options) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	userAgent := strings.TrimSpace(opts.UserAgent)
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	maxChars := opts.MaxChars
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}

	return &Extractor{
		logger:   logger,
		maxChars: maxChars,
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
		UserAgent: userAgent,
	}
}

func (e *Extractor) Name() string { return ToolName }

func (e *Extractor) Description() string {
	return "Scrape and extract job description content from a URL."
}

// Call implements the pipeline tool contract.
func (e *Extractor) Call(ctx context.Context, input string) extraction.Result {
	return e.Extract(ctx, input)
}

// Extract fetches rawURL and returns the most relevant text region of the
// page. Transport and parsing failures are reported inside the result.
func (e *Extractor) Extract(ctx context.Context, rawURL string) extraction.Result {
	target := NormalizeURL(rawURL)

	body, err := e.fetch(ctx, target)
	if err != nil {
		res := classify(target, err)
		e.logger.Debug("job page fetch failed",
			zap.String("url", target),
			zap.String("kind", string(res.Err.Kind)),
			zap.Error(err),
		)
		return res
	}

	text, err := ExtractContent(body)
	if err != nil {
		return extraction.Failure(extraction.KindUnknown, err, "unexpected failure scraping URL: %v", err)
	}

	if text == "" {
		return extraction.Failure(extraction.KindEmpty, nil, "Could not extract text content. The page might require JavaScript.")
	}

	text, truncated := extraction.Truncate(text, e.maxChars)

	e.logger.Debug("job page extracted",
		zap.String("url", target),
		zap.Int("html_length", len(body)),
		zap.Bool("truncated", truncated),
	)

	return extraction.Success(text, truncated)
}

// NormalizeURL trims whitespace and quotes and defaults the scheme to https.
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	raw = strings.Trim(raw, `"`)
	raw = strings.Trim(raw, `'`)

	lower := strings.ToLower(raw)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		raw = "https://" + raw
	}

	return raw
}

func classify(target string, err error) extraction.Result {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return extraction.Failure(extraction.KindHTTPStatus, err, "HTTP error occurred: %s", statusErr.Error())
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return extraction.Failure(extraction.KindTimeout, err, "Request timed out for '%s'.", target)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return extraction.Failure(extraction.KindTimeout, err, "Request timed out for '%s'.", target)
	}

	var (
		opErr  *net.OpError
		dnsErr *net.DNSError
	)
	if errors.As(err, &opErr) || errors.As(err, &dnsErr) {
		return extraction.Failure(extraction.KindConnection, err, "Could not connect to '%s'.", target)
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Op != "parse" {
		return extraction.Failure(extraction.KindConnection, err, "Could not connect to '%s'.", target)
	}

	return extraction.Failure(extraction.KindUnknown, err, "unexpected failure scraping URL: %v", err)
}
