package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/desertthunder/songbook/internal/models"
	"github.com/desertthunder/songbook/internal/shared"
	tu "github.com/desertthunder/songbook/internal/testing"
)

type stubStore struct {
	songs []models.Song
	err   error
}

func (s *stubStore) Songs() ([]models.Song, error) { return s.songs, s.err }

func TestDecodeDocument(t *testing.T) {
	tc := []struct {
		name    string
		doc     string
		want    int
		wantErr bool
	}{
		{name: "bare array", doc: tu.SampleDocument, want: 5},
		{name: "wrapped object", doc: `{"songs": [{"title": "A"}, {}]}`, want: 2},
		{name: "empty array", doc: `[]`, want: 0},
		{name: "object without songs", doc: `{"items": []}`, wantErr: true},
		{name: "scalar", doc: `42`, wantErr: true},
		{name: "empty", doc: "  ", wantErr: true},
		{name: "truncated", doc: `[{"title": "A"`, wantErr: true},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeDocument([]byte(tt.doc))
			if tt.wantErr {
				if !errors.Is(err, shared.ErrInvalidDocument) {
					t.Fatalf("expected ErrInvalidDocument, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("expected %d records, got %d", tt.want, len(got))
			}
		})
	}
}

func TestFileSource(t *testing.T) {
	t.Run("reads document", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "songs.json")
		tu.MustWriteFile(t, path, tu.SampleDocument)

		src := NewFileSource(path)
		if src.Name() != path {
			t.Errorf("expected name %s, got %s", path, src.Name())
		}

		raws, err := src.Fetch(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(raws) != 5 {
			t.Errorf("expected 5 records, got %d", len(raws))
		}
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := NewFileSource("/nonexistent/songs.json").Fetch(context.Background())
		if !errors.Is(err, shared.ErrSourceUnavailable) {
			t.Errorf("expected ErrSourceUnavailable, got %v", err)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if _, err := NewFileSource("songs.json").Fetch(ctx); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}

func TestHTTPSource(t *testing.T) {
	t.Run("fetches document", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Bearer abc" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(tu.SampleDocument))
		}))
		defer server.Close()

		src := NewHTTPSource(server.URL, server.Client()).
			WithHeaders(&shared.CurlHeaders{Headers: map[string]string{"Authorization": "Bearer abc"}})

		raws, err := src.Fetch(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(raws) != 5 {
			t.Errorf("expected 5 records, got %d", len(raws))
		}
	})

	t.Run("non-2xx status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "gone", http.StatusNotFound)
		}))
		defer server.Close()

		_, err := NewHTTPSource(server.URL, server.Client()).Fetch(context.Background())
		if !errors.Is(err, shared.ErrSourceUnavailable) {
			t.Errorf("expected ErrSourceUnavailable, got %v", err)
		}
	})

	t.Run("transport failure", func(t *testing.T) {
		client := &http.Client{Transport: tu.NewMockRoundTripper(nil, errors.New("connection refused"))}

		_, err := NewHTTPSource("http://songs.invalid/catalog.json", client).Fetch(context.Background())
		if !errors.Is(err, shared.ErrSourceUnavailable) {
			t.Errorf("expected ErrSourceUnavailable, got %v", err)
		}
	})

	t.Run("body read failure", func(t *testing.T) {
		client := &http.Client{Transport: tu.NewMockRoundTripper(&http.Response{
			StatusCode: http.StatusOK,
			Body:       &tu.FCloser{},
			Header:     make(http.Header),
		}, nil)}

		if _, err := NewHTTPSource("http://songs.invalid/catalog.json", client).Fetch(context.Background()); err == nil {
			t.Error("expected error when body cannot be read")
		}
	})

	t.Run("timeout", func(t *testing.T) {
		release := make(chan struct{})
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		defer server.Close()
		defer close(release)

		_, err := NewHTTPSource(server.URL, server.Client()).WithTimeout(20 * time.Millisecond).Fetch(context.Background())
		if !errors.Is(err, shared.ErrTimeout) {
			t.Errorf("expected ErrTimeout, got %v", err)
		}
	})
}

func TestDatabaseSource(t *testing.T) {
	songs := tu.SampleSongs(t)
	src := NewDatabaseSource(&stubStore{songs: songs})

	raws, err := src.Fetch(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rebuilt, failures := models.BuildCatalog(raws)
	if len(failures) != 0 {
		t.Fatalf("stored songs should rebuild cleanly, got %v", failures)
	}
	if len(rebuilt) != len(songs) || rebuilt[0].Title != songs[0].Title {
		t.Errorf("expected %d songs starting with %s, got %d", len(songs), songs[0].Title, len(rebuilt))
	}

	failing := NewDatabaseSource(&stubStore{err: errors.New("disk I/O error")})
	if _, err := failing.Fetch(context.Background()); err == nil {
		t.Error("expected store error to surface")
	}
}

func TestNewSource(t *testing.T) {
	store := &stubStore{}

	tc := []struct {
		name    string
		spec    string
		cfg     shared.CatalogConfig
		store   SongLister
		want    string
		wantErr bool
	}{
		{name: "url wins", cfg: shared.CatalogConfig{URL: "https://x/songs.json", Source: "songs.json"}, want: "*services.HTTPSource"},
		{name: "file from config", cfg: shared.CatalogConfig{Source: "songs.json"}, want: "*services.FileSource"},
		{name: "database fallback", store: store, want: "*services.DatabaseSource"},
		{name: "nothing configured", wantErr: true},
		{name: "flag url", spec: "http://x/songs.json", want: "*services.HTTPSource"},
		{name: "flag db", spec: "db", store: store, want: "*services.DatabaseSource"},
		{name: "flag db without store", spec: "db", wantErr: true},
		{name: "flag path", spec: "./other.json", cfg: shared.CatalogConfig{URL: "https://x"}, want: "*services.FileSource"},
		{name: "missing headers file", spec: "https://x", cfg: shared.CatalogConfig{HeadersPath: "/nonexistent.sh"}, wantErr: true},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			src, err := ParseSource(tt.spec, tt.cfg, tt.store)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %T", src)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := typeName(src); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func typeName(src Source) string {
	switch src.(type) {
	case *HTTPSource:
		return "*services.HTTPSource"
	case *FileSource:
		return "*services.FileSource"
	case *DatabaseSource:
		return "*services.DatabaseSource"
	default:
		return "unknown"
	}
}
