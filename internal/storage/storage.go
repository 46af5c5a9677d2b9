package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/romangod6/sitemap-downloader/internal/models"
)

// Store keeps a history of saved sitemap files. The history is informational
// only and is never consulted to skip downloads.
type Store interface {
	Initialize() error
	Close() error

	RecordDownload(ctx context.Context, download *models.Download) error
	GetDownload(ctx context.Context, id uuid.UUID) (*models.Download, error)
	ListDownloads(ctx context.Context, domain string, limit, offset int) ([]*models.Download, error)
	ListDomains(ctx context.Context) ([]*models.DomainSummary, error)
}

// Open returns the store for driver, or nil when history is disabled.
func Open(driver, dsn string) (Store, error) {
	var (
		store Store
		err   error
	)
	switch driver {
	case "", "none":
		return nil, nil
	case "sqlite", "sqlite3":
		if dsn == "" {
			dsn = "downloads.db"
		}
		store, err = NewSQLiteStore(dsn)
	case "postgres":
		store, err = NewPostgresStore(dsn)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", driver)
	}
	if err != nil {
		return nil, err
	}

	if err := store.Initialize(); err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to initialize %s store: %w", driver, err)
	}
	return store, nil
}
