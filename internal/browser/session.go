// Package browser owns the single headless Chrome instance used to render
// sitemaps before their source is read.
package browser

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
)

// contentScript returns raw XML for XML documents and the rendered markup
// for everything else.
const contentScript = `(() => {
	const root = document.documentElement;
	if (!root) {
		return "";
	}
	if (!(root instanceof HTMLElement)) {
		return new XMLSerializer().serializeToString(document);
	}
	return root.outerHTML;
})()`

type Options struct {
	Headless        bool
	ExecPath        string
	UserAgent       string
	PageLoadTimeout time.Duration
}

// Session is a headless browser with one tab.
type Session struct {
	ctx         context.Context
	cancelTab   context.CancelFunc
	cancelAlloc context.CancelFunc

	mu      sync.Mutex
	timeout time.Duration

	closeOnce sync.Once
	closeErr  error
}

// NewSession starts the browser. Cancelling ctx also tears the browser down.
func NewSession(ctx context.Context, opts Options) (*Session, error) {
	allocOpts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	if !opts.Headless {
		allocOpts = append(allocOpts, chromedp.Flag("headless", false))
	}
	if opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
	}
	if opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(opts.UserAgent))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)
	tabCtx, cancelTab := chromedp.NewContext(allocCtx)

	// The first Run launches the browser, so launch failures surface here
	if err := chromedp.Run(tabCtx); err != nil {
		cancelTab()
		cancelAlloc()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	s := &Session{
		ctx:         tabCtx,
		cancelTab:   cancelTab,
		cancelAlloc: cancelAlloc,
		timeout:     opts.PageLoadTimeout,
	}
	if s.timeout <= 0 {
		s.timeout = 60 * time.Second
	}
	return s, nil
}

func (s *Session) SetPageLoadTimeout(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timeout = d
}

// Load navigates to url and blocks until the load event fires or the page
// load timeout expires.
func (s *Session) Load(ctx context.Context, url string) error {
	s.mu.Lock()
	timeout := s.timeout
	s.mu.Unlock()

	runCtx, cancel := s.runContext(ctx, timeout)
	defer cancel()

	if err := chromedp.Run(runCtx, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("failed to load %s: %w", url, err)
	}
	return nil
}

// Content returns the source of the currently loaded document.
func (s *Session) Content(ctx context.Context) (string, error) {
	runCtx, cancel := s.runContext(ctx, 0)
	defer cancel()

	var source string
	if err := chromedp.Run(runCtx, chromedp.Evaluate(contentScript, &source)); err != nil {
		return "", fmt.Errorf("failed to read page source: %w", err)
	}
	return source, nil
}

// Close shuts the browser down. Only the first call has any effect.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = chromedp.Cancel(s.ctx)
		s.cancelTab()
		s.cancelAlloc()
	})
	return s.closeErr
}

// runContext derives a context from the tab that is also cancelled when the
// caller's ctx is.
func (s *Session) runContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	var runCtx context.Context
	var cancel context.CancelFunc
	if timeout > 0 {
		runCtx, cancel = context.WithTimeout(s.ctx, timeout)
	} else {
		runCtx, cancel = context.WithCancel(s.ctx)
	}
	stop := context.AfterFunc(ctx, cancel)
	return runCtx, func() {
		stop()
		cancel()
	}
}
