package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/songbook/internal/formatter"
	"github.com/desertthunder/songbook/internal/models"
)

var _ list.Item = songItem{}

// songItem wraps [models.Song] to implement [list.Item].
type songItem struct {
	song models.Song
}

func (i songItem) FilterValue() string { return i.song.Title + " " + i.song.Artist }
func (i songItem) Title() string       { return i.song.Title }
func (i songItem) Description() string {
	parts := []string{i.song.Artist, i.song.Key.String()}
	if i.song.HasCapo() {
		parts = append(parts, "capo "+formatter.FormatCapo(i.song.Capo))
	}
	if i.song.HasRange() {
		parts = append(parts, i.song.Range.String())
	}
	if i.song.Language != "" {
		parts = append(parts, i.song.Language)
	}
	return strings.Join(parts, " • ")
}

func songItems(songs []models.Song) []list.Item {
	items := make([]list.Item, len(songs))
	for i, song := range songs {
		items[i] = songItem{song: song}
	}
	return items
}
