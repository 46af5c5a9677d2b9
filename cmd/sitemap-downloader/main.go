package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/romangod6/sitemap-downloader/config"
	"github.com/romangod6/sitemap-downloader/internal/browser"
	"github.com/romangod6/sitemap-downloader/internal/crawler"
	"github.com/romangod6/sitemap-downloader/internal/downloader"
	"github.com/romangod6/sitemap-downloader/internal/output"
	"github.com/romangod6/sitemap-downloader/internal/storage"
	"github.com/romangod6/sitemap-downloader/internal/utils"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	runID := uuid.New()
	logger := utils.NewConsoleLogger(os.Stdout)
	if cfg.Logging.File {
		logger, err = utils.NewCrawlerLogger(cfg.Logging.Dir, runID.String())
		if err != nil {
			log.Fatalf("Failed to create logger: %v", err)
		}
	}

	logger.Println("\n==========================================")
	logger.Println("Sitemap Downloader")
	logger.Println("==========================================")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loader, closeLoader, err := newLoader(ctx, cfg, logger)
	if err != nil {
		logger.Close()
		if ctx.Err() != nil {
			os.Exit(0)
		}
		log.Fatalf("%v", err)
	}

	history, err := storage.Open(cfg.Storage.Driver, cfg.Storage.DSN)
	if err != nil {
		logger.LogError("Failed to open download history: %v", err)
		closeLoader()
		logger.Close()
		os.Exit(1)
	}

	policy := crawler.RetryPolicy{
		MaxAttempts:     cfg.Fetcher.MaxRetries,
		Backoff:         cfg.GetBackoff(),
		Settle:          cfg.GetSettle(),
		PageLoadTimeout: cfg.GetPageLoadTimeout(),
	}

	d := downloader.New(downloader.Options{
		Fetcher: crawler.NewFetcher(loader, policy, logger),
		Writer:  output.NewWriter(cfg.Output.Dir),
		History: history,
		Prompt:  downloader.NewPrompter(os.Stdin, os.Stdout),
		Logger:  logger,
		RunID:   runID,
	})

	// Teardown happens exactly once, on whichever of the two paths fires first
	shutdown := func(code int) {
		closeLoader()
		if history != nil {
			history.Close()
		}
		logger.Close()
		os.Exit(code)
	}

	done := make(chan error, 1)
	go func() {
		done <- d.Run(ctx)
	}()

	select {
	case <-ctx.Done():
		logger.LogInfo("Interrupted! Exiting and closing browser session...")
		shutdown(0)
	case err := <-done:
		switch {
		case downloader.IsInterrupt(err):
			logger.LogInfo("Interrupted! Exiting and closing browser session...")
		case err != nil:
			logger.LogError("%v", err)
			shutdown(1)
		default:
			logger.LogInfo("All tasks completed.")
		}
		shutdown(0)
	}
}

// newLoader starts the configured page engine and returns its teardown.
func newLoader(ctx context.Context, cfg *config.Config, logger *utils.CrawlerLogger) (crawler.Loader, func(), error) {
	if cfg.Fetcher.Engine == "http" {
		logger.LogInfo("Using plain HTTP engine.")
		c := crawler.NewCollector(&crawler.CollectorConfig{
			UserAgent:       cfg.Browser.UserAgent,
			PageLoadTimeout: cfg.GetPageLoadTimeout(),
		})
		return c, func() {}, nil
	}

	logger.LogInfo("Starting browser session...")
	session, err := browser.NewSession(ctx, browser.Options{
		Headless:        cfg.Browser.Headless,
		ExecPath:        cfg.Browser.ExecPath,
		UserAgent:       cfg.Browser.UserAgent,
		PageLoadTimeout: cfg.GetPageLoadTimeout(),
	})
	if err != nil {
		return nil, nil, err
	}
	logger.LogInfo("Browser session started successfully.")

	return session, func() {
		if err := session.Close(); err != nil {
			logger.LogDebug("Browser close: %v", err)
		}
		logger.LogInfo("Browser session closed.")
	}, nil
}
