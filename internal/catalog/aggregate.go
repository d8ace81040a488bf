package catalog

import (
	"cmp"
	"maps"
	"slices"

	"github.com/desertthunder/songbook/internal/models"
)

// Aggregate summarizes a song collection. It is a pure projection of the songs it was computed from.
type Aggregate struct {
	// MaxRangeSemitones is nil when no song has a known range.
	MaxRangeSemitones *int           `json:"max_range_semitones"`
	Songbooks         []string       `json:"songbooks"`
	LanguageCounts    map[string]int `json:"language_counts"`
	Total             int            `json:"total"`
}

// Compute derives an [Aggregate] in a single pass. The result does not depend on input order.
func Compute(songs []models.Song) Aggregate {
	agg := Aggregate{
		Songbooks:      []string{},
		LanguageCounts: make(map[string]int),
		Total:          len(songs),
	}

	books := make(map[string]struct{})
	for _, song := range songs {
		if song.Range != nil {
			n := song.Range.Semitones()
			if agg.MaxRangeSemitones == nil || n > *agg.MaxRangeSemitones {
				agg.MaxRangeSemitones = &n
			}
		}

		if song.Language != "" {
			agg.LanguageCounts[song.Language]++
		}

		for _, book := range song.Songbooks {
			books[book] = struct{}{}
		}
	}

	agg.Songbooks = slices.AppendSeq(agg.Songbooks, maps.Keys(books))
	slices.Sort(agg.Songbooks)

	return agg
}

// Languages returns the languages present, most common first, ties broken alphabetically.
func (a Aggregate) Languages() []string {
	langs := slices.Collect(maps.Keys(a.LanguageCounts))
	slices.SortFunc(langs, func(x, y string) int {
		if a.LanguageCounts[x] != a.LanguageCounts[y] {
			return a.LanguageCounts[y] - a.LanguageCounts[x]
		}
		return cmp.Compare(x, y)
	})
	return langs
}

// Equal reports whether two aggregates describe the same catalog summary.
func (a Aggregate) Equal(other Aggregate) bool {
	switch {
	case (a.MaxRangeSemitones == nil) != (other.MaxRangeSemitones == nil):
		return false
	case a.MaxRangeSemitones != nil && *a.MaxRangeSemitones != *other.MaxRangeSemitones:
		return false
	case a.Total != other.Total:
		return false
	}
	return slices.Equal(a.Songbooks, other.Songbooks) && maps.Equal(a.LanguageCounts, other.LanguageCounts)
}
