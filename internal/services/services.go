// package services defines interface Source for loading catalog documents
//
// Local files, HTTP endpoints, and the catalog database
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/desertthunder/songbook/internal/models"
	"github.com/desertthunder/songbook/internal/shared"
)

// Source defines the interface for catalog providers that yield raw song records.
type Source interface {
	// Fetch retrieves every raw record the source holds, in document order.
	// Malformed records are returned as-is; they are filtered when the catalog is built.
	Fetch(ctx context.Context) ([]models.RawSong, error)

	// Name identifies the source in logs and import history (a path, URL, or "database").
	Name() string
}

// SongLister is the read side of the song store used by [DatabaseSource].
type SongLister interface {
	Songs() ([]models.Song, error)
}

// DatabaseSourceName is the --source value that selects the catalog database.
const DatabaseSourceName = "db"

// NewSource picks a source from configuration: a URL wins over a local path; with neither set the database is used.
func NewSource(cfg shared.CatalogConfig, store SongLister) (Source, error) {
	switch {
	case cfg.URL != "":
		return newHTTPSourceFromConfig(cfg.URL, cfg)
	case cfg.Source != "":
		return NewFileSource(cfg.Source), nil
	case store != nil:
		return NewDatabaseSource(store), nil
	default:
		return nil, fmt.Errorf("%w: no catalog source configured", shared.ErrMissingConfig)
	}
}

// ParseSource interprets a --source flag value: http(s) URLs fetch remotely, "db" reads the database,
// anything else is a file path. An empty value defers to [NewSource].
func ParseSource(spec string, cfg shared.CatalogConfig, store SongLister) (Source, error) {
	switch {
	case spec == "":
		return NewSource(cfg, store)
	case spec == DatabaseSourceName:
		if store == nil {
			return nil, fmt.Errorf("%w: database source requires a store", shared.ErrInvalidArgument)
		}
		return NewDatabaseSource(store), nil
	case strings.HasPrefix(spec, "http://"), strings.HasPrefix(spec, "https://"):
		return newHTTPSourceFromConfig(spec, cfg)
	default:
		return NewFileSource(spec), nil
	}
}

func newHTTPSourceFromConfig(url string, cfg shared.CatalogConfig) (*HTTPSource, error) {
	src := NewHTTPSource(url, nil)
	src.timeout = cfg.FetchTimeout()
	if cfg.HeadersPath != "" {
		headers, err := shared.ParseCurlFile(cfg.HeadersPath)
		if err != nil {
			return nil, err
		}
		src.headers = headers
	}
	return src, nil
}

// catalogDocument is the wrapped document form: {"songs": [...]}.
type catalogDocument struct {
	Songs []models.RawSong `json:"songs"`
}

// DecodeDocument accepts either a bare JSON array of records or an object with a "songs" array.
func DecodeDocument(data []byte) ([]models.RawSong, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty document", shared.ErrInvalidDocument)
	}

	switch data[0] {
	case '[':
		var songs []models.RawSong
		if err := json.Unmarshal(data, &songs); err != nil {
			return nil, fmt.Errorf("%w: %w", shared.ErrInvalidDocument, err)
		}
		return songs, nil
	case '{':
		var doc catalogDocument
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("%w: %w", shared.ErrInvalidDocument, err)
		}
		if doc.Songs == nil {
			return nil, fmt.Errorf("%w: missing songs array", shared.ErrInvalidDocument)
		}
		return doc.Songs, nil
	default:
		return nil, fmt.Errorf("%w: expected array or object", shared.ErrInvalidDocument)
	}
}
