package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
	"github.com/romangod6/sitemap-downloader/internal/models"
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Initialize() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS downloads (
            id TEXT PRIMARY KEY,
            run_id TEXT NOT NULL,
            url TEXT NOT NULL,
            domain TEXT NOT NULL,
            path TEXT NOT NULL,
            kind TEXT NOT NULL,
            bytes INTEGER NOT NULL,
            attempts INTEGER NOT NULL,
            saved_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
        )`,
		`CREATE INDEX IF NOT EXISTS idx_downloads_domain ON downloads(domain)`,
		`CREATE INDEX IF NOT EXISTS idx_downloads_run_id ON downloads(run_id)`,
	}

	for _, query := range queries {
		if _, err := s.db.Exec(query); err != nil {
			return fmt.Errorf("error executing query %s: %w", query, err)
		}
	}

	return nil
}

func (s *SQLiteStore) RecordDownload(ctx context.Context, download *models.Download) error {
	query := `
        INSERT INTO downloads (id, run_id, url, domain, path, kind, bytes, attempts, saved_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
    `

	_, err := s.db.ExecContext(ctx, query,
		download.ID.String(),
		download.RunID.String(),
		download.URL,
		download.Domain,
		download.Path,
		download.Kind.String(),
		download.Bytes,
		download.Attempts,
		download.SavedAt.UTC(),
	)

	return err
}

func (s *SQLiteStore) GetDownload(ctx context.Context, id uuid.UUID) (*models.Download, error) {
	query := `
        SELECT id, run_id, url, domain, path, kind, bytes, attempts, saved_at
        FROM downloads
        WHERE id = ?
    `

	downloads, err := s.queryDownloads(ctx, query, id.String())
	if err != nil {
		return nil, err
	}
	if len(downloads) == 0 {
		return nil, nil
	}
	return downloads[0], nil
}

func (s *SQLiteStore) ListDownloads(ctx context.Context, domain string, limit, offset int) ([]*models.Download, error) {
	if domain == "" {
		query := `
        SELECT id, run_id, url, domain, path, kind, bytes, attempts, saved_at
        FROM downloads
        ORDER BY saved_at DESC
        LIMIT ? OFFSET ?
    `
		return s.queryDownloads(ctx, query, limit, offset)
	}

	query := `
        SELECT id, run_id, url, domain, path, kind, bytes, attempts, saved_at
        FROM downloads
        WHERE domain = ?
        ORDER BY saved_at DESC
        LIMIT ? OFFSET ?
    `
	return s.queryDownloads(ctx, query, domain, limit, offset)
}

func (s *SQLiteStore) ListDomains(ctx context.Context) ([]*models.DomainSummary, error) {
	query := `
        SELECT domain, COUNT(*), MAX(saved_at)
        FROM downloads
        GROUP BY domain
        ORDER BY domain
    `

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var domains []*models.DomainSummary
	for rows.Next() {
		var summary models.DomainSummary
		var lastSaved sql.NullString

		if err := rows.Scan(&summary.Domain, &summary.Downloads, &lastSaved); err != nil {
			return nil, err
		}
		// Aggregates lose the DATETIME column type, so the driver hands back text
		if lastSaved.Valid {
			summary.LastSaved = parseSQLiteTime(lastSaved.String)
		}

		domains = append(domains, &summary)
	}

	return domains, rows.Err()
}

func (s *SQLiteStore) queryDownloads(ctx context.Context, query string, args ...interface{}) ([]*models.Download, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var downloads []*models.Download
	for rows.Next() {
		var download models.Download
		var idStr, runIDStr, kind string

		err := rows.Scan(
			&idStr,
			&runIDStr,
			&download.URL,
			&download.Domain,
			&download.Path,
			&kind,
			&download.Bytes,
			&download.Attempts,
			&download.SavedAt,
		)
		if err != nil {
			return nil, err
		}

		download.ID, _ = uuid.Parse(idStr)
		download.RunID, _ = uuid.Parse(runIDStr)
		download.Kind = models.ParseKind(kind)
		download.KindName = download.Kind.String()

		downloads = append(downloads, &download)
	}

	return downloads, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func parseSQLiteTime(value string) time.Time {
	for _, layout := range sqlite3.SQLiteTimestampFormats {
		if t, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return t
		}
	}
	return time.Time{}
}
