package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/desertthunder/songbook/internal/models"
	"github.com/desertthunder/songbook/internal/music"
	"github.com/sahilm/fuzzy"
)

// ErrInvalidFilter is returned for filter specifications that cannot be evaluated.
var ErrInvalidFilter = errors.New("invalid filter")

// All disables the language and songbook criteria.
const All = "all"

// FilterSpec selects songs. The zero value (and [DefaultFilter]) matches every song.
type FilterSpec struct {
	Language     string            `json:"language"`      // Exact language tag, or All / ""
	Range        *music.VocalRange `json:"range"`         // Singable window; nil means any range
	CapoRequired bool              `json:"capo_required"` // Only songs played with a capo
	Songbook     string            `json:"songbook"`      // Songbook membership, or All / ""
	Query        string            `json:"query"`         // Fuzzy match on title and artist; "" disables
}

// DefaultFilter returns the identity filter.
func DefaultFilter() FilterSpec {
	return FilterSpec{Language: All, Songbook: All}
}

// ParseFilterSpec builds a [FilterSpec] from user-supplied strings. An empty window means any range.
func ParseFilterSpec(language, window, songbook, query string, capoRequired bool) (FilterSpec, error) {
	spec := FilterSpec{
		Language:     strings.TrimSpace(language),
		Songbook:     strings.TrimSpace(songbook),
		Query:        query,
		CapoRequired: capoRequired,
	}
	if strings.TrimSpace(window) != "" {
		r, err := music.ParseRangeWindow(window)
		if err != nil {
			return FilterSpec{}, fmt.Errorf("%w: %w", ErrInvalidFilter, err)
		}
		spec.Range = r
	}
	return spec, nil
}

// Validate rejects windows that no song could ever satisfy because they are malformed.
func (f FilterSpec) Validate() error {
	if f.Range != nil {
		if f.Range.Low > f.Range.High {
			return fmt.Errorf("%w: range low bound %d exceeds high bound %d", ErrInvalidFilter, f.Range.Low, f.Range.High)
		}
	}
	return nil
}

// IsIdentity reports whether the spec has no active criterion.
func (f FilterSpec) IsIdentity() bool {
	return isAll(f.Language) && f.Range == nil && !f.CapoRequired && isAll(f.Songbook) && strings.TrimSpace(f.Query) == ""
}

// Matches evaluates the non-fuzzy predicates for a single song.
//
// Missing song data never satisfies an active criterion.
func (f FilterSpec) Matches(song models.Song) bool {
	if !isAll(f.Language) && song.Language != f.Language {
		return false
	}
	if f.Range != nil && (song.Range == nil || !f.Range.Contains(*song.Range)) {
		return false
	}
	if f.CapoRequired && !song.HasCapo() {
		return false
	}
	if !isAll(f.Songbook) && !song.InSongbook(f.Songbook) {
		return false
	}
	return true
}

// Filter returns the songs satisfying every active criterion, in input order.
func Filter(songs []models.Song, spec FilterSpec) ([]models.Song, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	out := make([]models.Song, 0, len(songs))
	for _, song := range songs {
		if spec.Matches(song) {
			out = append(out, song)
		}
	}

	if q := strings.TrimSpace(spec.Query); q != "" {
		out = fuzzyFilter(out, q)
	}

	return out, nil
}

// searchSource exposes "title artist" strings to [fuzzy.FindFrom].
type searchSource []models.Song

func (s searchSource) String(i int) string { return s[i].Title + " " + s[i].Artist }
func (s searchSource) Len() int            { return len(s) }

// fuzzyFilter keeps the songs matching query, preserving their relative order rather than score order.
func fuzzyFilter(songs []models.Song, query string) []models.Song {
	matches := fuzzy.FindFrom(query, searchSource(songs))
	keep := make([]bool, len(songs))
	for _, m := range matches {
		keep[m.Index] = true
	}

	out := make([]models.Song, 0, len(matches))
	for i, song := range songs {
		if keep[i] {
			out = append(out, song)
		}
	}
	return out
}

func isAll(s string) bool {
	return s == "" || s == All
}
