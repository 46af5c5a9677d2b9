package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/romangod6/sitemap-downloader/internal/models"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(connStr string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Initialize() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS downloads (
            id UUID PRIMARY KEY,
            run_id UUID NOT NULL,
            url VARCHAR(2048) NOT NULL,
            domain VARCHAR(255) NOT NULL,
            path TEXT NOT NULL,
            kind VARCHAR(16) NOT NULL,
            bytes INTEGER NOT NULL,
            attempts INTEGER NOT NULL,
            saved_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
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

func (s *PostgresStore) RecordDownload(ctx context.Context, download *models.Download) error {
	query := `
        INSERT INTO downloads (id, run_id, url, domain, path, kind, bytes, attempts, saved_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
    `

	_, err := s.db.ExecContext(ctx, query,
		download.ID,
		download.RunID,
		download.URL,
		download.Domain,
		download.Path,
		download.Kind.String(),
		download.Bytes,
		download.Attempts,
		download.SavedAt,
	)

	return err
}

func (s *PostgresStore) GetDownload(ctx context.Context, id uuid.UUID) (*models.Download, error) {
	query := `
        SELECT id, run_id, url, domain, path, kind, bytes, attempts, saved_at
        FROM downloads
        WHERE id = $1
    `

	downloads, err := s.queryDownloads(ctx, query, id)
	if err != nil {
		return nil, err
	}
	if len(downloads) == 0 {
		return nil, nil
	}
	return downloads[0], nil
}

func (s *PostgresStore) ListDownloads(ctx context.Context, domain string, limit, offset int) ([]*models.Download, error) {
	query := `
        SELECT id, run_id, url, domain, path, kind, bytes, attempts, saved_at
        FROM downloads
        WHERE $1 = '' OR domain = $1
        ORDER BY saved_at DESC
        LIMIT $2 OFFSET $3
    `

	return s.queryDownloads(ctx, query, domain, limit, offset)
}

func (s *PostgresStore) ListDomains(ctx context.Context) ([]*models.DomainSummary, error) {
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
		if err := rows.Scan(&summary.Domain, &summary.Downloads, &summary.LastSaved); err != nil {
			return nil, err
		}
		domains = append(domains, &summary)
	}

	return domains, rows.Err()
}

func (s *PostgresStore) queryDownloads(ctx context.Context, query string, args ...interface{}) ([]*models.Download, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var downloads []*models.Download
	for rows.Next() {
		var download models.Download
		var kind string

		err := rows.Scan(
			&download.ID,
			&download.RunID,
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

		download.Kind = models.ParseKind(kind)
		download.KindName = download.Kind.String()

		downloads = append(downloads, &download)
	}

	return downloads, rows.Err()
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
