package catalog

import (
	"maps"
	"slices"
	"sync"

	"github.com/desertthunder/songbook/internal/models"
)

// Catalog holds the current song collection together with its cached [Aggregate].
//
// The collection is only ever replaced wholesale; the aggregate is recomputed on each replacement and never
// mutated independently. A Catalog is safe for concurrent use.
type Catalog struct {
	mu    sync.RWMutex
	songs []models.Song
	index map[string]int
	agg   Aggregate
}

// New creates a Catalog over a copy of songs.
func New(songs []models.Song) *Catalog {
	c := &Catalog{}
	c.Replace(songs)
	return c
}

// Replace swaps in a new collection and recomputes the aggregate.
func (c *Catalog) Replace(songs []models.Song) {
	owned := slices.Clone(songs)
	index := make(map[string]int, len(owned))
	for i, song := range owned {
		if song.ID != "" {
			index[song.ID] = i
		}
	}
	agg := Compute(owned)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.songs = owned
	c.index = index
	c.agg = agg
}

// Songs returns a copy of the collection in catalog order.
func (c *Catalog) Songs() []models.Song {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.songs)
}

// Len returns the number of songs.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.songs)
}

// Get looks a song up by ID.
func (c *Catalog) Get(id string) (models.Song, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	i, ok := c.index[id]
	if !ok {
		return models.Song{}, false
	}
	return c.songs[i], true
}

// Aggregate returns the cached summary of the current collection.
func (c *Catalog) Aggregate() Aggregate {
	c.mu.RLock()
	defer c.mu.RUnlock()
	agg := c.agg
	agg.Songbooks = slices.Clone(agg.Songbooks)
	agg.LanguageCounts = maps.Clone(agg.LanguageCounts)
	if agg.MaxRangeSemitones != nil {
		n := *agg.MaxRangeSemitones
		agg.MaxRangeSemitones = &n
	}
	return agg
}

// Query filters then sorts the current collection.
func (c *Catalog) Query(filter FilterSpec, order SortSpec) ([]models.Song, error) {
	if err := order.Validate(); err != nil {
		return nil, err
	}

	// The slice is replaced, never written in place, so it can be read after unlocking.
	c.mu.RLock()
	songs := c.songs
	c.mu.RUnlock()

	filtered, err := Filter(songs, filter)
	if err != nil {
		return nil, err
	}
	return Sort(filtered, order)
}
