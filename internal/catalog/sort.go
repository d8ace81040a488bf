package catalog

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/desertthunder/songbook/internal/models"
)

// ErrInvalidSort is returned for unknown sort fields or orders.
var ErrInvalidSort = errors.New("invalid sort")

// SortField enumerates the sortable song attributes.
type SortField int

const (
	SortByTitle SortField = iota
	SortByArtist
	SortByDateAdded
	SortByRange
)

func (f SortField) String() string {
	switch f {
	case SortByTitle:
		return "title"
	case SortByArtist:
		return "artist"
	case SortByDateAdded:
		return "dateAdded"
	case SortByRange:
		return "range"
	default:
		return ""
	}
}

func (f SortField) MarshalText() ([]byte, error) { return []byte(f.String()), nil }

func (f *SortField) UnmarshalText(text []byte) error {
	parsed, err := ParseSortField(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

// SortFields lists every field in cycling order.
func SortFields() []SortField {
	return []SortField{SortByTitle, SortByArtist, SortByDateAdded, SortByRange}
}

// ParseSortField accepts the field names produced by [SortField.String], case-insensitively,
// plus the snake_case spelling "date_added".
func ParseSortField(s string) (SortField, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "title":
		return SortByTitle, nil
	case "artist":
		return SortByArtist, nil
	case "dateadded", "date_added", "date":
		return SortByDateAdded, nil
	case "range":
		return SortByRange, nil
	default:
		return 0, fmt.Errorf("%w: unknown field %q", ErrInvalidSort, s)
	}
}

// SortOrder is the direction of a sort.
type SortOrder int

const (
	Ascending SortOrder = iota
	Descending
)

func (o SortOrder) String() string {
	switch o {
	case Ascending:
		return "ascending"
	case Descending:
		return "descending"
	default:
		return ""
	}
}

func (o SortOrder) MarshalText() ([]byte, error) { return []byte(o.String()), nil }

func (o *SortOrder) UnmarshalText(text []byte) error {
	parsed, err := ParseSortOrder(string(text))
	if err != nil {
		return err
	}
	*o = parsed
	return nil
}

// ParseSortOrder accepts "ascending"/"asc" and "descending"/"desc".
func ParseSortOrder(s string) (SortOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ascending", "asc":
		return Ascending, nil
	case "descending", "desc":
		return Descending, nil
	default:
		return 0, fmt.Errorf("%w: unknown order %q", ErrInvalidSort, s)
	}
}

// SortSpec chooses a field and direction.
type SortSpec struct {
	Field SortField `json:"field"`
	Order SortOrder `json:"order"`
}

// DefaultSort orders by title, ascending.
func DefaultSort() SortSpec {
	return SortSpec{Field: SortByTitle, Order: Ascending}
}

// ParseSortSpec builds a [SortSpec] from user-supplied names. An empty order means ascending.
func ParseSortSpec(field, order string) (SortSpec, error) {
	f, err := ParseSortField(field)
	if err != nil {
		return SortSpec{}, err
	}
	if strings.TrimSpace(order) == "" {
		return SortSpec{Field: f, Order: Ascending}, nil
	}
	o, err := ParseSortOrder(order)
	if err != nil {
		return SortSpec{}, err
	}
	return SortSpec{Field: f, Order: o}, nil
}

// Validate rejects out-of-range enum values.
func (s SortSpec) Validate() error {
	if s.Field.String() == "" {
		return fmt.Errorf("%w: unknown field %d", ErrInvalidSort, int(s.Field))
	}
	if s.Order.String() == "" {
		return fmt.Errorf("%w: unknown order %d", ErrInvalidSort, int(s.Order))
	}
	return nil
}

// Sort returns a stably sorted copy of songs. The input slice is left untouched.
//
// Songs without a range compare lower than any ranged song, so they lead in ascending order and trail in descending order.
// Descending order negates the comparator; equal songs keep their original relative order either way.
func Sort(songs []models.Song, spec SortSpec) ([]models.Song, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	cmp := comparator(spec.Field)
	if spec.Order == Descending {
		asc := cmp
		cmp = func(a, b models.Song) int { return -asc(a, b) }
	}

	out := slices.Clone(songs)
	slices.SortStableFunc(out, cmp)
	return out, nil
}

func comparator(field SortField) func(a, b models.Song) int {
	switch field {
	case SortByArtist:
		return func(a, b models.Song) int { return strings.Compare(a.Artist, b.Artist) }
	case SortByDateAdded:
		return func(a, b models.Song) int { return a.DateAdded.Compare(b.DateAdded) }
	case SortByRange:
		return compareRange
	default:
		return func(a, b models.Song) int { return strings.Compare(a.Title, b.Title) }
	}
}

func compareRange(a, b models.Song) int {
	switch {
	case a.Range == nil && b.Range == nil:
		return 0
	case a.Range == nil:
		return -1
	case b.Range == nil:
		return 1
	}
	return a.Range.Semitones() - b.Range.Semitones()
}
