package models

import (
	"time"

	"github.com/google/uuid"
)

// Download records one saved sitemap file.
type Download struct {
	ID       uuid.UUID `json:"id"`
	RunID    uuid.UUID `json:"run_id"`
	URL      string    `json:"url"`
	Domain   string    `json:"domain"`
	Path     string    `json:"path"`
	Kind     Kind      `json:"-"`
	KindName string    `json:"kind"`
	Bytes    int       `json:"bytes"`
	Attempts int       `json:"attempts"`
	SavedAt  time.Time `json:"saved_at"`
}

// DomainSummary aggregates the downloads of one domain.
type DomainSummary struct {
	Domain    string    `json:"domain"`
	Downloads int       `json:"downloads"`
	LastSaved time.Time `json:"last_saved"`
}
