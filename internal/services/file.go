package services

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/songbook/internal/models"
	"github.com/desertthunder/songbook/internal/shared"
)

// FileSource reads a catalog document from disk.
type FileSource struct {
	path string
}

// NewFileSource creates a source for the document at path.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

func (f *FileSource) Name() string { return f.path }

// Fetch reads and decodes the whole document.
func (f *FileSource) Fetch(ctx context.Context) ([]models.RawSong, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read catalog: %w", shared.ErrSourceUnavailable, err)
	}

	return DecodeDocument(data)
}
