// Package metadata fetches remote pages and scrapes link preview metadata.
package metadata

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"

	"github.com/linkboard/linkboard/internal/directory"
)

// DefaultTimeout bounds the single outbound GET.
const DefaultTimeout = 10 * time.Second

// DefaultUserAgent mimics a desktop browser to reduce bot-blocking.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// noTitleFallback is returned when the page exposes no usable title at all.
const noTitleFallback = "No title"

// Config controls fetch behavior.
type Config struct {
	UserAgent string
	Timeout   time.Duration
}

// Extractor implements directory.Extractor with a single colly GET per call.
// There is no retry and no cache: extraction runs interactively at submission
// time, never in a hot path.
type Extractor struct {
	cfg    Config
	logger *zap.Logger
}

// New builds an Extractor, filling in the default timeout and user agent.
func New(cfg Config, logger *zap.Logger) *Extractor {
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{cfg: cfg, logger: logger}
}

// Extract fetches rawURL and scrapes its metadata. Network failures and
// non-2xx responses collapse into one FetchError; the cause is kept for
// logging only. The URL must be absolute, checked before any network call.
func (e *Extractor) Extract(ctx context.Context, rawURL string) (directory.Metadata, error) {
	origin, err := originOf(rawURL)
	if err != nil {
		return directory.Metadata{}, directory.InvalidField("url", "must be an absolute URL")
	}

	body, err := e.fetch(ctx, rawURL)
	if err != nil {
		e.logger.Warn("metadata fetch failed", zap.String("url", rawURL), zap.Error(err))
		return directory.Metadata{}, directory.NewFetchError(err)
	}

	meta, err := parse(body)
	if err != nil {
		e.logger.Warn("metadata parse failed", zap.String("url", rawURL), zap.Error(err))
		return directory.Metadata{}, directory.NewFetchError(err)
	}

	meta.Image = resolveAgainst(origin, meta.Image)
	meta.Favicon = resolveAgainst(origin, meta.Favicon)
	return meta, nil
}

// fetch executes a single HTTP GET using a per-call colly collector. Colly
// routes non-2xx responses through OnError, which is exactly the collapse
// the extraction contract wants.
func (e *Extractor) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	collector := colly.NewCollector(colly.Async(false))
	collector.UserAgent = e.cfg.UserAgent
	collector.IgnoreRobotsTxt = true
	collector.SetRequestTimeout(e.cfg.Timeout)

	var (
		body     []byte
		fetchErr error
	)
	collector.OnResponse(func(r *colly.Response) {
		body = append([]byte(nil), r.Body...)
	})
	collector.OnError(func(_ *colly.Response, err error) {
		fetchErr = err
	})

	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(rawURL)
	}()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("fetch canceled: %w", ctx.Err())
	case err := <-done:
		if err != nil {
			return nil, fmt.Errorf("visit %s: %w", rawURL, err)
		}
		if fetchErr != nil {
			return nil, fmt.Errorf("fetch %s: %w", rawURL, fetchErr)
		}
		return body, nil
	}
}

// parse scrapes the metadata fields in priority order: Open Graph, then
// Twitter Card, then the conventional document tags, then the literal
// fallbacks.
func parse(body []byte) (directory.Metadata, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return directory.Metadata{}, fmt.Errorf("parse html: %w", err)
	}

	title := firstNonEmpty(
		metaContent(doc, `meta[property="og:title"]`),
		metaContent(doc, `meta[name="twitter:title"]`),
		strings.TrimSpace(doc.Find("title").First().Text()),
	)
	if title == "" {
		title = noTitleFallback
	}

	description := firstNonEmpty(
		metaContent(doc, `meta[property="og:description"]`),
		metaContent(doc, `meta[name="twitter:description"]`),
		metaContent(doc, `meta[name="description"]`),
	)

	image := firstNonEmpty(
		metaContent(doc, `meta[property="og:image"]`),
		metaContent(doc, `meta[name="twitter:image"]`),
	)

	favicon := firstNonEmpty(
		linkHref(doc, `link[rel="icon"]`),
		linkHref(doc, `link[rel="shortcut icon"]`),
	)
	if favicon == "" {
		favicon = "/favicon.ico"
	}

	return directory.Metadata{
		Title:       title,
		Description: description,
		Image:       image,
		Favicon:     favicon,
	}, nil
}

func metaContent(doc *goquery.Document, selector string) string {
	return strings.TrimSpace(doc.Find(selector).First().AttrOr("content", ""))
}

func linkHref(doc *goquery.Document, selector string) string {
	return strings.TrimSpace(doc.Find(selector).First().AttrOr("href", ""))
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// resolveAgainst repairs a relative resource reference by concatenating it
// onto the page origin. This is deliberately exact-path concatenation, not
// RFC 3986 relative resolution: a leading "/" is joined directly, anything
// else gets a "/" inserted first.
func resolveAgainst(origin, value string) string {
	if value == "" || strings.HasPrefix(value, "http") {
		return value
	}
	if strings.HasPrefix(value, "/") {
		return origin + value
	}
	return origin + "/" + value
}

// originOf returns scheme://host for an absolute URL.
func originOf(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("url %q is not absolute", raw)
	}
	return u.Scheme + "://" + u.Host, nil
}
