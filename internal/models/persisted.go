package models

import (
	"fmt"
	"time"
)

// PersistedSong is a [Song] stored in the catalog database.
//
// Implements [Model]; soft-deleted rows carry a non-nil deletedAt.
type PersistedSong struct {
	id        string
	sequence  int
	song      Song
	createdAt time.Time
	updatedAt time.Time
	deletedAt *time.Time
}

var _ Model = (*PersistedSong)(nil)

// NewPersistedSong wraps a song for persistence. The ID is taken from the song when present.
func NewPersistedSong(sequence int, song Song) *PersistedSong {
	now := time.Now()
	return &PersistedSong{
		id:        song.ID,
		sequence:  sequence,
		song:      song,
		createdAt: now,
		updatedAt: now,
	}
}

func (p *PersistedSong) ID() string            { return p.id }
func (p *PersistedSong) Sequence() int         { return p.sequence }
func (p *PersistedSong) CreatedAt() time.Time  { return p.createdAt }
func (p *PersistedSong) UpdatedAt() time.Time  { return p.updatedAt }
func (p *PersistedSong) DeletedAt() *time.Time { return p.deletedAt }

// Song returns the record with its ID synchronized to the persisted identifier.
func (p *PersistedSong) Song() Song {
	return p.song.WithID(p.id)
}

// SetID assigns the identifier, usually generated by the repository on insert.
func (p *PersistedSong) SetID(id string) {
	p.id = id
	p.song = p.song.WithID(id)
}

// SetSong replaces the wrapped record, keeping the persisted identifier.
func (p *PersistedSong) SetSong(song Song) { p.song = song.WithID(p.id) }

func (p *PersistedSong) SetSequence(seq int)       { p.sequence = seq }
func (p *PersistedSong) SetCreatedAt(t time.Time)  { p.createdAt = t }
func (p *PersistedSong) SetUpdatedAt(t time.Time)  { p.updatedAt = t }
func (p *PersistedSong) SetDeletedAt(t *time.Time) { p.deletedAt = t }

// Validate checks the invariants a stored song must hold.
func (p *PersistedSong) Validate() error {
	switch {
	case p.id == "":
		return fmt.Errorf("%w: id is required", ErrMalformedSong)
	case p.song.Title == "":
		return fmt.Errorf("%w: title is required", ErrMalformedSong)
	case p.song.Artist == "":
		return fmt.Errorf("%w: artist is required", ErrMalformedSong)
	case !p.song.Key.Valid():
		return fmt.Errorf("%w: key %d out of range", ErrMalformedSong, int(p.song.Key))
	case p.song.Capo < 0:
		return fmt.Errorf("%w: capo must not be negative", ErrMalformedSong)
	case p.song.Range != nil && p.song.Range.Low > p.song.Range.High:
		return fmt.Errorf("%w: range low exceeds high", ErrMalformedSong)
	}
	return nil
}
