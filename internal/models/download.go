package models

import (
	"time"

	"github.com/google/uuid"
)

// NewDownload creates a download record with a generated UUID and timestamp
func NewDownload(runID uuid.UUID, page Page, domain, path string) *Download {
	return &Download{
		ID:       uuid.New(),
		RunID:    runID,
		URL:      page.URL,
		Domain:   domain,
		Path:     path,
		Kind:     page.Kind,
		KindName: page.Kind.String(),
		Bytes:    len(page.Content),
		Attempts: page.Attempts,
		SavedAt:  time.Now(),
	}
}
