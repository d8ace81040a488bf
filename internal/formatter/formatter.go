// package formatter provides functions to export song data to various formats (CSV, Markdown, plain text, JSON)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/desertthunder/songbook/internal/catalog"
	"github.com/desertthunder/songbook/internal/models"
	"github.com/desertthunder/songbook/internal/music"
	"github.com/desertthunder/songbook/internal/shared"
)

// Format selects an export encoding.
type Format int

const (
	JSON Format = iota
	CSV
	Markdown
	Text
)

func (f Format) String() string {
	switch f {
	case JSON:
		return "json"
	case CSV:
		return "csv"
	case Markdown:
		return "markdown"
	case Text:
		return "txt"
	default:
		return ""
	}
}

// Ext is the file extension used when writing f.
func (f Format) Ext() string {
	switch f {
	case Markdown:
		return "md"
	default:
		return f.String()
	}
}

// ParseFormat accepts json, csv, md/markdown and txt/text.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json", "":
		return JSON, nil
	case "csv":
		return CSV, nil
	case "md", "markdown":
		return Markdown, nil
	case "txt", "text":
		return Text, nil
	default:
		return 0, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidFlag, s)
	}
}

// SongbookExport is a named selection of songs to export. An empty name means the whole catalog.
type SongbookExport struct {
	Name  string        `json:"name"`
	Songs []models.Song `json:"songs"`
}

// Title is the heading used in Markdown and text exports.
func (e SongbookExport) Title() string {
	if e.Name == "" {
		return "Songbook"
	}
	return e.Name
}

// FormatRange renders a vocal range as "low-high (n semitones)", or "unknown" when absent.
func FormatRange(r *music.VocalRange) string {
	if r == nil {
		return "unknown"
	}
	return fmt.Sprintf("%s (%d semitones)", r, r.Semitones())
}

// FormatCapo renders the capo position, or "none".
func FormatCapo(capo int) string {
	if capo <= 0 {
		return "none"
	}
	return strconv.Itoa(capo)
}

// FormatDate renders a month/year, or "unknown".
func FormatDate(d models.DateAdded) string {
	if d.IsZero() {
		return "unknown"
	}
	return d.String()
}

// Export encodes export in the given format.
func Export(export SongbookExport, format Format) ([]byte, error) {
	switch format {
	case CSV:
		return ExportToCSV(export)
	case Markdown:
		return ExportToMarkdown(export)
	case Text:
		return ExportToText(export)
	case JSON:
		return shared.MarshalJSON(export, true)
	default:
		return nil, fmt.Errorf("%w: unknown format %d", shared.ErrInvalidFlag, int(format))
	}
}

// ExportToCSV converts songs to CSV with columns: ID, Title, Artist, Key, Capo, Language, Added, Range, Songbooks
func ExportToCSV(export SongbookExport) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Artist", "Key", "Capo", "Language", "Added", "Range", "Songbooks"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, song := range export.Songs {
		var rng string
		if song.Range != nil {
			rng = song.Range.String()
		}
		record := []string{
			song.ID,
			song.Title,
			song.Artist,
			song.Key.String(),
			strconv.Itoa(song.Capo),
			song.Language,
			song.DateAdded.String(),
			rng,
			strings.Join(song.Songbooks, ";"),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts songs to a Markdown table of contents
func ExportToMarkdown(export SongbookExport) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", export.Title())
	fmt.Fprintf(&buf, "**Songs**: %d\n\n", len(export.Songs))

	buf.WriteString("| # | Title | Artist | Key | Capo | Range |\n")
	buf.WriteString("|---|-------|--------|-----|------|-------|\n")
	for i, song := range export.Songs {
		fmt.Fprintf(&buf, "| %d | %s | %s | %s | %s | %s |\n",
			i+1, escapeCell(song.Title), escapeCell(song.Artist), song.Key, FormatCapo(song.Capo), FormatRange(song.Range))
	}

	return buf.Bytes(), nil
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// ExportToText converts songs to plain text format
func ExportToText(export SongbookExport) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "%s\n", export.Title())
	fmt.Fprintf(&buf, "Songs: %d\n\n", len(export.Songs))

	for i, song := range export.Songs {
		fmt.Fprintf(&buf, "%d. %s - %s [%s]\n", i+1, song.Artist, song.Title, song.Key)
	}

	return buf.Bytes(), nil
}

// WriteExport writes export to path in the given format and returns the path written.
//
// An empty path defaults to {name}.{ext}, or songbook.{ext} for the whole catalog.
func WriteExport(export SongbookExport, format Format, path string) (string, error) {
	if path == "" {
		path = fmt.Sprintf("%s.%s", Slug(export.Title()), format.Ext())
	}

	data, err := Export(export, format)
	if err != nil {
		return "", fmt.Errorf("failed to generate %s: %w", format, err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s file: %w", format, err)
	}

	return path, nil
}

var slugRe = regexp.MustCompile(`[^\p{L}\p{N}]+`)

// Slug turns a songbook name into a file-name-safe token.
func Slug(name string) string {
	s := strings.Trim(slugRe.ReplaceAllString(strings.ToLower(name), "-"), "-")
	if s == "" {
		return "songbook"
	}
	return s
}

var chordRe = regexp.MustCompile(`\[[^\]\n]*\]`)

// StripChords removes bracketed chord annotations such as "[Em7]" and drops lines that held only chords.
func StripChords(content string) string {
	lines := strings.Split(content, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		stripped := chordRe.ReplaceAllString(line, "")
		if strings.TrimSpace(stripped) == "" && strings.TrimSpace(line) != "" {
			continue
		}
		out = append(out, strings.TrimRight(stripped, " "))
	}
	return strings.Join(out, "\n")
}

// FormatSong renders a song sheet: header fields, then the content with or without chords.
func FormatSong(song models.Song, showChords bool) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n%s\n\n", song.Title, song.Artist)
	fmt.Fprintf(&b, "Key:      %s", song.Key)
	if song.HasCapo() {
		fmt.Fprintf(&b, " (capo %d, sounds %s)", song.Capo, song.SoundingKey())
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "Range:    %s\n", FormatRange(song.Range))
	if song.Language != "" {
		fmt.Fprintf(&b, "Language: %s\n", song.Language)
	}
	if song.Tempo > 0 {
		fmt.Fprintf(&b, "Tempo:    %d bpm\n", song.Tempo)
	}
	if song.StartMelody != "" {
		fmt.Fprintf(&b, "Melody:   %s\n", song.StartMelody)
	}
	fmt.Fprintf(&b, "Added:    %s\n", FormatDate(song.DateAdded))
	if len(song.Songbooks) > 0 {
		fmt.Fprintf(&b, "Books:    %s\n", strings.Join(song.Songbooks, ", "))
	}

	if song.Content != "" {
		content := song.Content
		if !showChords {
			content = StripChords(content)
		}
		fmt.Fprintf(&b, "\n%s\n", content)
	}

	return b.String()
}

// FormatStats renders a catalog summary as aligned plain text.
func FormatStats(agg catalog.Aggregate) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Songs:      %d\n", agg.Total)
	if agg.MaxRangeSemitones != nil {
		fmt.Fprintf(&b, "Max range:  %d semitones\n", *agg.MaxRangeSemitones)
	} else {
		b.WriteString("Max range:  unknown\n")
	}

	if len(agg.Songbooks) > 0 {
		fmt.Fprintf(&b, "Songbooks:  %s\n", strings.Join(agg.Songbooks, ", "))
	} else {
		b.WriteString("Songbooks:  none\n")
	}

	langs := agg.Languages()
	if len(langs) == 0 {
		b.WriteString("Languages:  none\n")
		return b.String()
	}
	b.WriteString("Languages:\n")
	for _, lang := range langs {
		fmt.Fprintf(&b, "  %-8s %d\n", lang, agg.LanguageCounts[lang])
	}
	return b.String()
}

// WriteJSONFile writes v as indented JSON, used for export manifests.
func WriteJSONFile(v any, path string) error {
	data, err := shared.MarshalJSON(v, true)
	if err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write JSON file: %w", err)
	}
	return nil
}
