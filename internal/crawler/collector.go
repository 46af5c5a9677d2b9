package crawler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/gocolly/colly/v2"
	"golang.org/x/net/html/charset"
)

var errNoPageLoaded = errors.New("no page loaded")

// Collector is a Loader backed by a plain colly collector. It is used for
// sites that serve their sitemaps without client-side rendering.
type Collector struct {
	collector *colly.Collector

	mu      sync.Mutex
	content string
	loaded  bool
}

// CollectorConfig configures the colly engine.
type CollectorConfig struct {
	UserAgent       string
	PageLoadTimeout time.Duration
}

// NewCollector builds a colly-backed Loader.
func NewCollector(config *CollectorConfig) *Collector {
	c := colly.NewCollector(
		colly.UserAgent(config.UserAgent),
	)
	// Retries revisit the same URL
	c.AllowURLRevisit = true
	c.MaxBodySize = 0

	if config.PageLoadTimeout > 0 {
		c.SetRequestTimeout(config.PageLoadTimeout)
	}

	col := &Collector{collector: c}

	c.OnResponse(func(r *colly.Response) {
		body, err := toUTF8(r.Body, r.Headers.Get("Content-Type"))
		if err != nil {
			body = r.Body
		}
		col.mu.Lock()
		col.content = string(body)
		col.loaded = true
		col.mu.Unlock()
	})

	return col
}

// SetPageLoadTimeout sets the HTTP request timeout.
func (c *Collector) SetPageLoadTimeout(d time.Duration) {
	c.collector.SetRequestTimeout(d)
}

// Load fetches url. colly has no per-request context, so cancellation is only
// observed before the request starts.
func (c *Collector) Load(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	c.content = ""
	c.loaded = false
	c.mu.Unlock()

	if err := c.collector.Visit(url); err != nil {
		return fmt.Errorf("failed to visit %s: %w", url, err)
	}
	c.collector.Wait()
	return nil
}

// Content returns the body of the last successful Load.
func (c *Collector) Content(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.loaded {
		return "", errNoPageLoaded
	}
	return c.content, nil
}

// toUTF8 transcodes bodies that are not already valid UTF-8, using the
// Content-Type header and any meta charset declaration.
func toUTF8(body []byte, contentType string) ([]byte, error) {
	if utf8.Valid(body) {
		return body, nil
	}
	r, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return nil, err
	}
	return io.ReadAll(r)
}
