package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/desertthunder/songbook/internal/music"
)

// ErrMalformedSong is matched (via [errors.Is]) by every [MalformedSongError].
var ErrMalformedSong = errors.New("malformed song record")

// DateAdded is the month a song entered the catalog. The zero value means unknown.
type DateAdded struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

// IsZero reports whether the date is unknown.
func (d DateAdded) IsZero() bool {
	return d.Month == 0 && d.Year == 0
}

// Compare orders dates by year, then month.
func (d DateAdded) Compare(other DateAdded) int {
	if d.Year != other.Year {
		return d.Year - other.Year
	}
	return d.Month - other.Month
}

func (d DateAdded) String() string {
	if d.IsZero() {
		return ""
	}
	return fmt.Sprintf("%d/%d", d.Month, d.Year)
}

// RawDate is the optional-field form of [DateAdded] as found in catalog documents.
type RawDate struct {
	Month *int `json:"month"`
	Year  *int `json:"year"`
}

// RawSong is a deserialized catalog record. Every field is optional; presence is explicit.
type RawSong struct {
	ID          *string         `json:"id,omitempty"`
	Title       *string         `json:"title"`
	Artist      *string         `json:"artist"`
	Key         *string         `json:"key"`
	DateAdded   *RawDate        `json:"date_added"`
	StartMelody *string         `json:"start_melody"`
	Language    *string         `json:"language"`
	Tempo       *int            `json:"tempo"`
	Capo        *int            `json:"capo"`
	Range       json.RawMessage `json:"range"`
	Content     *string         `json:"content"`
	Songbooks   []string        `json:"songbooks"`
}

// Song is a normalized, immutable catalog record.
//
// Songs are values: edits go through the With* helpers which return a modified copy.
// The Songbooks slice is shared between copies and must be treated as read-only.
type Song struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Artist      string            `json:"artist"`
	Key         music.Key         `json:"key"`
	DateAdded   DateAdded         `json:"date_added"`
	StartMelody string            `json:"start_melody,omitempty"`
	Language    string            `json:"language,omitempty"`
	Tempo       int               `json:"tempo,omitempty"`
	Capo        int               `json:"capo"`
	Range       *music.VocalRange `json:"range,omitempty"`
	Songbooks   []string          `json:"songbooks"`
	Content     string            `json:"content,omitempty"`
}

// MalformedSongError lists the required fields that were missing or invalid in a raw record.
type MalformedSongError struct {
	Fields []string
	Causes []error
}

func (e *MalformedSongError) Error() string {
	msg := fmt.Sprintf("%v: missing or invalid %s", ErrMalformedSong, strings.Join(e.Fields, ", "))
	if len(e.Causes) > 0 {
		msg += fmt.Sprintf(" (%v)", errors.Join(e.Causes...))
	}
	return msg
}

// Is makes MalformedSongError match [ErrMalformedSong].
func (e *MalformedSongError) Is(target error) bool {
	return target == ErrMalformedSong
}

// Unwrap exposes the underlying causes, e.g. [music.ErrInvalidKey].
func (e *MalformedSongError) Unwrap() []error {
	return e.Causes
}

// NewSong normalizes a raw record.
//
// Title, artist and key are required; all other fields fall back to their zero values.
// A range that cannot be parsed is treated as absent.
func NewSong(raw RawSong) (Song, error) {
	var fields []string
	var causes []error

	title := trimmed(raw.Title)
	if title == "" {
		fields = append(fields, "title")
	}

	artist := trimmed(raw.Artist)
	if artist == "" {
		fields = append(fields, "artist")
	}

	var key music.Key
	if raw.Key == nil {
		fields = append(fields, "key")
	} else if k, err := music.ParseKey(strings.TrimSpace(*raw.Key)); err != nil {
		fields = append(fields, "key")
		causes = append(causes, err)
	} else {
		key = k
	}

	if len(fields) > 0 {
		return Song{}, &MalformedSongError{Fields: fields, Causes: causes}
	}

	return Song{
		ID:          trimmed(raw.ID),
		Title:       title,
		Artist:      artist,
		Key:         key,
		DateAdded:   normalizeDate(raw.DateAdded),
		StartMelody: trimmed(raw.StartMelody),
		Language:    trimmed(raw.Language),
		Tempo:       nonNegative(raw.Tempo),
		Capo:        nonNegative(raw.Capo),
		Range:       music.ParseRange(raw.Range),
		Songbooks:   normalizeSongbooks(raw.Songbooks),
		Content:     deref(raw.Content),
	}, nil
}

// HasCapo reports whether the song is played with a capo.
func (s Song) HasCapo() bool {
	return s.Capo > 0
}

// HasRange reports whether the vocal range is known.
func (s Song) HasRange() bool {
	return s.Range != nil
}

// InSongbook reports whether the song belongs to the named songbook.
func (s Song) InSongbook(name string) bool {
	_, found := slices.BinarySearch(s.Songbooks, name)
	return found
}

// SoundingKey is the key heard when playing the written chords with the capo on.
func (s Song) SoundingKey() music.Key {
	return music.Transpose(s.Key, s.Capo)
}

// WithID returns a copy carrying the given identifier.
func (s Song) WithID(id string) Song {
	s.ID = id
	return s
}

// WithCapo returns a copy with a different capo position. Negative values clear the capo.
func (s Song) WithCapo(capo int) Song {
	s.Capo = max(capo, 0)
	return s
}

// WithRange returns a copy with a different vocal range; nil clears it.
func (s Song) WithRange(r *music.VocalRange) Song {
	if r != nil {
		cp := *r
		r = &cp
	}
	s.Range = r
	return s
}

// WithSongbooks returns a copy belonging to the given songbooks.
func (s Song) WithSongbooks(books ...string) Song {
	s.Songbooks = normalizeSongbooks(books)
	return s
}

// Transposed returns a copy written n semitones higher (or lower for negative n).
func (s Song) Transposed(n int) Song {
	s.Key = music.Transpose(s.Key, n)
	return s
}

// Raw converts the song back to its document form. NewSong(s.Raw()) yields s again.
func (s Song) Raw() RawSong {
	raw := RawSong{
		ID:          optional(s.ID),
		Title:       &s.Title,
		Artist:      &s.Artist,
		StartMelody: optional(s.StartMelody),
		Language:    optional(s.Language),
		Tempo:       &s.Tempo,
		Capo:        &s.Capo,
		Content:     optional(s.Content),
		Songbooks:   slices.Clone(s.Songbooks),
	}

	key := s.Key.String()
	raw.Key = &key

	if !s.DateAdded.IsZero() {
		month, year := s.DateAdded.Month, s.DateAdded.Year
		raw.DateAdded = &RawDate{Month: &month, Year: &year}
	}
	if s.Range != nil {
		raw.Range, _ = json.Marshal(s.Range)
	}
	return raw
}

// RecordError reports a raw record that could not be turned into a [Song].
type RecordError struct {
	Index int    // Position in the input sequence
	Title string // Title as found in the raw record, possibly empty
	Err   error
}

func (e RecordError) Error() string {
	if e.Title != "" {
		return fmt.Sprintf("record %d (%q): %v", e.Index, e.Title, e.Err)
	}
	return fmt.Sprintf("record %d: %v", e.Index, e.Err)
}

func (e RecordError) Unwrap() error {
	return e.Err
}

// BuildCatalog converts raw records, skipping (and reporting) malformed ones without aborting.
func BuildCatalog(raws []RawSong) ([]Song, []RecordError) {
	songs := make([]Song, 0, len(raws))
	var failures []RecordError

	for i, raw := range raws {
		song, err := NewSong(raw)
		if err != nil {
			failures = append(failures, RecordError{Index: i, Title: trimmed(raw.Title), Err: err})
			continue
		}
		songs = append(songs, song)
	}

	return songs, failures
}

func normalizeDate(raw *RawDate) DateAdded {
	if raw == nil || raw.Month == nil || raw.Year == nil {
		return DateAdded{}
	}
	if *raw.Month < 1 || *raw.Month > 12 {
		return DateAdded{}
	}
	return DateAdded{Month: *raw.Month, Year: *raw.Year}
}

func normalizeSongbooks(books []string) []string {
	out := make([]string, 0, len(books))
	for _, b := range books {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

func trimmed(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func nonNegative(n *int) int {
	if n == nil || *n < 0 {
		return 0
	}
	return *n
}
