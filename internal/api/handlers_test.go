package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/romangod6/sitemap-downloader/internal/models"
)

type memoryStore struct {
	downloads []*models.Download
	fail      bool

	gotDomain string
	gotLimit  int
	gotOffset int
}

func (s *memoryStore) Initialize() error { return nil }
func (s *memoryStore) Close() error      { return nil }

func (s *memoryStore) RecordDownload(ctx context.Context, d *models.Download) error {
	s.downloads = append(s.downloads, d)
	return nil
}

func (s *memoryStore) GetDownload(ctx context.Context, id uuid.UUID) (*models.Download, error) {
	if s.fail {
		return nil, errors.New("db down")
	}
	for _, d := range s.downloads {
		if d.ID == id {
			return d, nil
		}
	}
	return nil, nil
}

func (s *memoryStore) ListDownloads(ctx context.Context, domain string, limit, offset int) ([]*models.Download, error) {
	if s.fail {
		return nil, errors.New("db down")
	}
	s.gotDomain, s.gotLimit, s.gotOffset = domain, limit, offset
	var out []*models.Download
	for _, d := range s.downloads {
		if domain == "" || d.Domain == domain {
			out = append(out, d)
		}
	}
	return out, nil
}

func (s *memoryStore) ListDomains(ctx context.Context) ([]*models.DomainSummary, error) {
	if s.fail {
		return nil, errors.New("db down")
	}
	return []*models.DomainSummary{{Domain: "x.com", Downloads: len(s.downloads), LastSaved: time.Now()}}, nil
}

func serve(t *testing.T, store *memoryStore, path string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	srv := NewServer(0, store)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := serve(t, &memoryStore{}, "/api/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestListDownloads(t *testing.T) {
	store := &memoryStore{}
	page := models.Page{URL: "https://x.com/a.xml", Kind: models.KindXML, Content: "<urlset/>", Attempts: 1}
	store.RecordDownload(context.Background(), models.NewDownload(uuid.New(), page, "x.com", "output/x.com/a.xml.xml"))

	rec := serve(t, store, "/api/downloads?domain=x.com&page=2&limit=500")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
	if store.gotDomain != "x.com" || store.gotLimit != 10 || store.gotOffset != 10 {
		t.Fatalf("store called with (%q, %d, %d)", store.gotDomain, store.gotLimit, store.gotOffset)
	}

	var resp struct {
		Data []models.Download `json:"data"`
		Page int               `json:"page"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Page != 2 || len(resp.Data) != 1 || resp.Data[0].KindName != "xml" {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestListDownloadsEmptyIsArray(t *testing.T) {
	rec := serve(t, &memoryStore{}, "/api/downloads")
	var resp struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if string(resp.Data) != "[]" {
		t.Fatalf("data = %s, want []", resp.Data)
	}
}

func TestGetDownload(t *testing.T) {
	store := &memoryStore{}
	d := models.NewDownload(uuid.New(), models.Page{URL: "https://x.com/a.xml", Kind: models.KindXML}, "x.com", "p")
	store.RecordDownload(context.Background(), d)

	tests := []struct {
		name string
		path string
		want int
	}{
		{"found", "/api/downloads/" + d.ID.String(), http.StatusOK},
		{"missing", "/api/downloads/" + uuid.NewString(), http.StatusNotFound},
		{"bad id", "/api/downloads/not-a-uuid", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := serve(t, store, tt.path); rec.Code != tt.want {
				t.Fatalf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestStoreFailures(t *testing.T) {
	store := &memoryStore{fail: true}
	for _, path := range []string{"/api/downloads", "/api/domains", "/api/downloads/" + uuid.NewString()} {
		if rec := serve(t, store, path); rec.Code != http.StatusInternalServerError {
			t.Fatalf("%s: status = %d, want 500", path, rec.Code)
		}
	}
}

func TestListDomains(t *testing.T) {
	rec := serve(t, &memoryStore{}, "/api/domains")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var domains []models.DomainSummary
	if err := json.Unmarshal(rec.Body.Bytes(), &domains); err != nil || len(domains) != 1 {
		t.Fatalf("domains = %v, %v", domains, err)
	}
}
