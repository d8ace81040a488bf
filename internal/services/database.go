package services

import (
	"context"
	"fmt"

	"github.com/desertthunder/songbook/internal/models"
)

// DatabaseSource replays the stored catalog as raw records.
type DatabaseSource struct {
	store SongLister
}

// NewDatabaseSource creates a source over store.
func NewDatabaseSource(store SongLister) *DatabaseSource {
	return &DatabaseSource{store: store}
}

func (d *DatabaseSource) Name() string { return "database" }

func (d *DatabaseSource) Fetch(ctx context.Context) ([]models.RawSong, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	songs, err := d.store.Songs()
	if err != nil {
		return nil, fmt.Errorf("failed to load songs: %w", err)
	}

	raws := make([]models.RawSong, 0, len(songs))
	for _, s := range songs {
		raws = append(raws, s.Raw())
	}
	return raws, nil
}
