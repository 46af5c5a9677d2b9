// sitemap-inspect fetches one sitemap over plain HTTP and prints the nested
// sitemap links it would follow, without saving anything.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/romangod6/sitemap-downloader/internal/crawler"
	"github.com/romangod6/sitemap-downloader/internal/output"
	"github.com/romangod6/sitemap-downloader/internal/utils"
)

func main() {
	if len(os.Args) != 2 {
		log.Fatalf("usage: %s <sitemap-url>", os.Args[0])
	}
	sitemapURL := os.Args[1]

	logger := utils.NewConsoleLogger(os.Stderr)
	loader := crawler.NewCollector(&crawler.CollectorConfig{PageLoadTimeout: 30 * time.Second})

	policy := crawler.DefaultRetryPolicy()
	policy.Settle = 0
	fetcher := crawler.NewFetcher(loader, policy, logger)

	page, err := fetcher.Fetch(context.Background(), sitemapURL)
	if err != nil {
		log.Fatalf("Error fetching sitemap: %v", err)
	}

	domain, _ := output.Domain(sitemapURL)
	fmt.Printf("Domain: %s\n", domain)
	fmt.Printf("Kind: %s (%d bytes)\n", page.Kind, len(page.Content))
	fmt.Printf("Would save as: %s.%s\n", output.Slug(sitemapURL), page.Kind.Extension())

	links := crawler.ExtractLinks(page, logger)
	fmt.Printf("Nested sitemaps found: %d\n\n", len(links))
	for i, link := range links {
		fmt.Printf("%3d. %s\n", i+1, link)
	}
}
