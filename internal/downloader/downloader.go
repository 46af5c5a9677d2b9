// Package downloader drives the interactive sitemap download flows.
package downloader

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/romangod6/sitemap-downloader/internal/crawler"
	"github.com/romangod6/sitemap-downloader/internal/models"
	"github.com/romangod6/sitemap-downloader/internal/output"
	"github.com/romangod6/sitemap-downloader/internal/storage"
	"github.com/romangod6/sitemap-downloader/internal/utils"
)

// Placeholder is substituted with each number in range mode.
const Placeholder = "{}"

// ErrNoPlaceholder is logged when a range template cannot be expanded.
var ErrNoPlaceholder = errors.New("url template has no " + Placeholder + " placeholder")

// PageFetcher loads and classifies one URL.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (models.Page, error)
}

// Downloader runs one interactive flow per invocation. Fetches are strictly
// sequential.
type Downloader struct {
	fetcher PageFetcher
	writer  *output.Writer
	history storage.Store
	prompt  *Prompter
	logger  *utils.CrawlerLogger
	runID   uuid.UUID
}

// Options wires a Downloader to its collaborators.
type Options struct {
	Fetcher PageFetcher
	Writer  *output.Writer
	// History is optional; nil disables recording.
	History storage.Store
	Prompt  *Prompter
	Logger  *utils.CrawlerLogger
	RunID   uuid.UUID
}

// New builds a Downloader, generating a run id when none is given.
func New(opts Options) *Downloader {
	runID := opts.RunID
	if runID == uuid.Nil {
		runID = uuid.New()
	}
	return &Downloader{
		fetcher: opts.Fetcher,
		writer:  opts.Writer,
		history: opts.History,
		prompt:  opts.Prompt,
		logger:  opts.Logger,
		runID:   runID,
	}
}

// Run shows the menu, reads one choice and runs the selected flow. Only
// write failures and cancellation are returned; everything else is logged.
func (d *Downloader) Run(ctx context.Context) error {
	d.logger.Println("Choose an option:")
	d.logger.Println("1. Download a single sitemap")
	d.logger.Println("2. Download an index sitemap and all its nested sitemaps")
	d.logger.Println("3. Download a range of sitemaps")

	choice, err := d.prompt.Ask("Enter your choice (1, 2, or 3): ")
	if err != nil {
		d.logger.LogError("No choice entered. Exiting.")
		return nil
	}

	switch choice {
	case "1":
		d.logger.LogEvent("START", "Starting single sitemap download...")
		url, err := d.prompt.Ask("Enter the full URL of the single sitemap: ")
		if err != nil {
			return d.inputError(err)
		}
		return d.Single(ctx, url)
	case "2":
		d.logger.LogEvent("START", "Starting index sitemap download with nested sitemaps...")
		url, err := d.prompt.Ask("Enter the full URL of the index sitemap: ")
		if err != nil {
			return d.inputError(err)
		}
		return d.Index(ctx, url)
	case "3":
		d.logger.LogEvent("START", "Starting download of a range of sitemaps...")
		template, err := d.prompt.Ask("Enter the base URL structure (use '{}' as a placeholder for the number): ")
		if err != nil {
			return d.inputError(err)
		}
		start, err := d.prompt.AskInt("Enter the starting number: ")
		if err != nil {
			return d.inputError(err)
		}
		end, err := d.prompt.AskInt("Enter the ending number: ")
		if err != nil {
			return d.inputError(err)
		}
		return d.Range(ctx, template, start, end)
	default:
		d.logger.LogError("Invalid choice. Exiting.")
		return nil
	}
}

// Single fetches and saves one sitemap.
func (d *Downloader) Single(ctx context.Context, url string) error {
	dir, ok, err := d.outputDir(url)
	if !ok {
		return err
	}

	saved, err := d.fetchAndSave(ctx, url, dir)
	if err != nil {
		return err
	}
	if saved {
		d.logger.LogEvent("SUCCESS", "Single sitemap download completed.")
	}
	return nil
}

// Index fetches and saves an index sitemap, then every sitemap it links to.
// Nested sitemaps land in the index's domain folder and are not descended
// into further.
func (d *Downloader) Index(ctx context.Context, url string) error {
	dir, ok, err := d.outputDir(url)
	if !ok {
		return err
	}

	page, err := d.fetcher.Fetch(ctx, url)
	if err != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil || page.Content == "" {
		d.logger.LogError("Failed to load index sitemap.")
		return nil
	}
	if err := d.save(ctx, page, dir); err != nil {
		return err
	}
	d.logger.LogInfo("Index sitemap saved successfully.")

	nested := crawler.ExtractLinks(page, d.logger)
	if len(nested) == 0 {
		d.logger.LogInfo("No nested sitemaps found.")
		return nil
	}

	for i, link := range nested {
		if err := ctx.Err(); err != nil {
			return err
		}
		d.logger.LogEvent("FETCHING", "Nested sitemap %d: %s", i+1, link)
		if _, err := d.fetchAndSave(ctx, link, dir); err != nil {
			return err
		}
	}

	d.logger.LogEvent("SUCCESS", "Index sitemap and all nested sitemaps downloaded successfully.")
	return nil
}

// Range fetches and saves template with the placeholder replaced by every
// number from start to end inclusive, in order.
func (d *Downloader) Range(ctx context.Context, template string, start, end int) error {
	if !strings.Contains(template, Placeholder) {
		d.logger.LogError("%v: %s", ErrNoPlaceholder, template)
		return nil
	}

	urls := RangeURLs(template, start, end)
	if len(urls) == 0 {
		d.logger.LogWarning("Empty range %d..%d, nothing to download.", start, end)
		return nil
	}

	// The placeholder may sit in the host, so the folder comes from the first
	// expanded URL rather than the template
	dir, ok, err := d.outputDir(urls[0])
	if !ok {
		return err
	}

	for _, url := range urls {
		if err := ctx.Err(); err != nil {
			return err
		}
		d.logger.LogEvent("FETCHING", "Sitemap: %s", url)
		if _, err := d.fetchAndSave(ctx, url, dir); err != nil {
			return err
		}
	}

	d.logger.LogEvent("SUCCESS", "Range of sitemaps downloaded successfully.")
	return nil
}

// RangeURLs expands template for every number in [start, end]. Only the
// first placeholder is substituted.
func RangeURLs(template string, start, end int) []string {
	var urls []string
	for i := start; i <= end; i++ {
		urls = append(urls, strings.Replace(template, Placeholder, strconv.Itoa(i), 1))
	}
	return urls
}

// fetchAndSave reports whether url was saved. A failed fetch or an empty
// page is skipped, not an error.
func (d *Downloader) fetchAndSave(ctx context.Context, url, dir string) (bool, error) {
	page, err := d.fetcher.Fetch(ctx, url)
	if err != nil {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		return false, nil
	}
	if page.Content == "" {
		d.logger.LogWarning("Empty page returned for %s. Skipping.", url)
		return false, nil
	}
	if err := d.save(ctx, page, dir); err != nil {
		return false, err
	}
	return true, nil
}

// outputDir returns the domain folder for url. An unparsable url ends the
// flow like any other input error; failing to create the folder is fatal.
func (d *Downloader) outputDir(url string) (string, bool, error) {
	if _, err := output.Domain(url); err != nil {
		d.logger.LogError("Invalid URL: %v", err)
		return "", false, nil
	}
	dir, err := d.writer.DirFor(url)
	if err != nil {
		return "", false, err
	}
	return dir, true, nil
}

func (d *Downloader) save(ctx context.Context, page models.Page, dir string) error {
	path, err := d.writer.Save(page.URL, page.Content, dir, page.Kind)
	if err != nil {
		return err
	}
	d.logger.LogEvent("SAVED", "%s.%s to %s", output.Slug(page.URL), page.Kind.Extension(), dir)

	if d.history == nil {
		return nil
	}
	domain, _ := output.Domain(page.URL)
	if err := d.history.RecordDownload(ctx, models.NewDownload(d.runID, page, domain, path)); err != nil {
		d.logger.LogWarning("Failed to record download history for %s: %v", page.URL, err)
	}
	return nil
}

func (d *Downloader) inputError(err error) error {
	d.logger.LogError("Invalid input: %v", err)
	return nil
}

// IsInterrupt reports whether err came from cancelling the run.
func IsInterrupt(err error) bool {
	return errors.Is(err, context.Canceled)
}

// RunID identifies this run in the download history.
func (d *Downloader) RunID() uuid.UUID {
	return d.runID
}
