package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/romangod6/sitemap-downloader/internal/models"
)

func newTestSQLiteStore(t *testing.T) Store {
	t.Helper()
	store, err := Open("sqlite", filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStoreRecordsDownloads(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()
	runID := uuid.New()

	pages := []struct {
		url    string
		domain string
		kind   models.Kind
	}{
		{"https://a.com/sitemap.xml", "a.com", models.KindXML},
		{"https://a.com/pages.html", "a.com", models.KindHTML},
		{"https://b.com/sitemap.xml", "b.com", models.KindXML},
	}

	var first *models.Download
	for i, p := range pages {
		page := models.Page{URL: p.url, Kind: p.kind, Content: "<urlset/>", Attempts: 1}
		d := models.NewDownload(runID, page, p.domain, filepath.Join("output", p.domain, "x"))
		d.SavedAt = time.Date(2024, 1, 1, 0, 0, i, 0, time.UTC)
		if err := store.RecordDownload(ctx, d); err != nil {
			t.Fatalf("RecordDownload: %v", err)
		}
		if first == nil {
			first = d
		}
	}

	got, err := store.GetDownload(ctx, first.ID)
	if err != nil {
		t.Fatalf("GetDownload: %v", err)
	}
	if got == nil || got.URL != first.URL || got.RunID != runID || got.Kind != models.KindXML || got.Bytes != len("<urlset/>") {
		t.Fatalf("unexpected download %+v", got)
	}

	missing, err := store.GetDownload(ctx, uuid.New())
	if err != nil || missing != nil {
		t.Fatalf("GetDownload(missing) = %v, %v", missing, err)
	}

	all, err := store.ListDownloads(ctx, "", 10, 0)
	if err != nil {
		t.Fatalf("ListDownloads: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("ListDownloads returned %d rows, want 3", len(all))
	}

	onlyA, err := store.ListDownloads(ctx, "a.com", 10, 0)
	if err != nil {
		t.Fatalf("ListDownloads(a.com): %v", err)
	}
	if len(onlyA) != 2 {
		t.Fatalf("ListDownloads(a.com) returned %d rows, want 2", len(onlyA))
	}

	domains, err := store.ListDomains(ctx)
	if err != nil {
		t.Fatalf("ListDomains: %v", err)
	}
	if len(domains) != 2 || domains[0].Domain != "a.com" || domains[0].Downloads != 2 {
		t.Fatalf("unexpected domains %+v", domains)
	}
	if domains[0].LastSaved.IsZero() {
		t.Fatal("expected last saved timestamp for a.com")
	}
}

func TestOpenDrivers(t *testing.T) {
	store, err := Open("none", "")
	if err != nil || store != nil {
		t.Fatalf("Open(none) = %v, %v", store, err)
	}
	if _, err := Open("mongo", ""); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}
