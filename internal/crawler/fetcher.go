package crawler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/romangod6/sitemap-downloader/internal/models"
	"github.com/romangod6/sitemap-downloader/internal/utils"
)

// ErrFetchFailed is returned once every attempt for a URL has failed.
var ErrFetchFailed = errors.New("fetch failed")

// Loader renders pages. The browser session and the colly engine both
// satisfy it.
type Loader interface {
	SetPageLoadTimeout(d time.Duration)
	Load(ctx context.Context, url string) error
	Content(ctx context.Context) (string, error)
}

// RetryPolicy bounds a fetch: a fixed number of attempts separated by a fixed
// backoff, with a short settle delay after each successful navigation.
type RetryPolicy struct {
	MaxAttempts     int
	Backoff         time.Duration
	Settle          time.Duration
	PageLoadTimeout time.Duration
}

// DefaultRetryPolicy returns 3 attempts, 5s backoff, 1s settle, 60s timeout.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:     3,
		Backoff:         5 * time.Second,
		Settle:          time.Second,
		PageLoadTimeout: 60 * time.Second,
	}
}

// Fetcher loads pages through a Loader under a RetryPolicy.
type Fetcher struct {
	loader Loader
	policy RetryPolicy
	logger *utils.CrawlerLogger
	sleep  func(ctx context.Context, d time.Duration) error
}

// NewFetcher returns a Fetcher that uses policy for Fetch.
func NewFetcher(loader Loader, policy RetryPolicy, logger *utils.CrawlerLogger) *Fetcher {
	return &Fetcher{
		loader: loader,
		policy: policy,
		logger: logger,
		sleep:  sleepContext,
	}
}

// Fetch loads url with the fetcher's default policy.
func (f *Fetcher) Fetch(ctx context.Context, url string) (models.Page, error) {
	return f.FetchWithPolicy(ctx, url, f.policy)
}

// FetchWithPolicy loads url, waits for rendering to settle and classifies the
// rendered content. Every failure is retried regardless of cause.
func (f *Fetcher) FetchWithPolicy(ctx context.Context, url string, policy RetryPolicy) (models.Page, error) {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}
	if policy.PageLoadTimeout > 0 {
		f.loader.SetPageLoadTimeout(policy.PageLoadTimeout)
	}

	var lastErr error
	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return models.Page{}, err
		}

		f.logger.LogEvent("FETCHING", "URL: %s", url)
		content, err := f.attempt(ctx, url, policy.Settle)
		if err == nil {
			kind := models.Classify(content)
			if kind == models.KindHTML {
				f.logger.LogEvent("DETECTED", "HTML content. Parsing as HTML sitemap.")
			} else {
				f.logger.LogEvent("DETECTED", "XML content. Parsing as XML sitemap.")
			}
			return models.Page{URL: url, Kind: kind, Content: content, Attempts: attempt}, nil
		}
		if ctx.Err() != nil {
			return models.Page{}, ctx.Err()
		}

		lastErr = err
		f.logger.LogEvent("RETRY", "Attempt %d failed for %s. Error: %v", attempt, url, err)
		if err := f.sleep(ctx, policy.Backoff); err != nil {
			return models.Page{}, err
		}
	}

	f.logger.LogError("Failed to load %s after %d attempts.", url, policy.MaxAttempts)
	return models.Page{}, fmt.Errorf("%w: %s: %w", ErrFetchFailed, url, lastErr)
}

func (f *Fetcher) attempt(ctx context.Context, url string, settle time.Duration) (string, error) {
	if err := f.loader.Load(ctx, url); err != nil {
		return "", err
	}
	if err := f.sleep(ctx, settle); err != nil {
		return "", err
	}
	return f.loader.Content(ctx)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
