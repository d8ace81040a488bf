// package testing contains shared testing utilities
package testing

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"testing"

	"github.com/desertthunder/songbook/internal/models"
)

// SampleDocument is a catalog document with four valid songs and one record missing its key.
const SampleDocument = `[
	{
		"id": "wonderwall",
		"title": "Wonderwall",
		"artist": "Oasis",
		"key": "F#",
		"date_added": {"month": 3, "year": 2021},
		"language": "en",
		"tempo": 87,
		"capo": 2,
		"range": "12",
		"songbooks": ["campfire", "90s"],
		"content": "[Em7]Today is [G]gonna be the day"
	},
	{
		"id": "orchidej",
		"title": "Bílá orchidej",
		"artist": "Olympic",
		"key": "C",
		"date_added": {"month": 7, "year": 2019},
		"language": "cs",
		"range": {"low": 3, "high": 14},
		"songbooks": ["campfire"]
	},
	{
		"id": "hallelujah",
		"title": "Hallelujah",
		"artist": "Leonard Cohen",
		"key": "C",
		"date_added": {"month": 1, "year": 2020},
		"language": "en",
		"capo": 5,
		"range": [0, 9]
	},
	{
		"id": "holubi-dum",
		"title": "Holubí dům",
		"artist": "Jiří Schelinger",
		"key": "G",
		"language": "cs",
		"songbooks": ["campfire", "czech"]
	},
	{
		"id": "broken",
		"title": "Untitled",
		"artist": "Nobody"
	}
]`

// SampleRawSongs decodes [SampleDocument].
func SampleRawSongs(t *testing.T) []models.RawSong {
	t.Helper()
	var raws []models.RawSong
	if err := json.Unmarshal([]byte(SampleDocument), &raws); err != nil {
		t.Fatalf("failed to decode sample document: %v", err)
	}
	return raws
}

// SampleSongs returns the valid songs of [SampleDocument] in document order.
func SampleSongs(t *testing.T) []models.Song {
	t.Helper()
	songs, failures := models.BuildCatalog(SampleRawSongs(t))
	if len(failures) != 1 {
		t.Fatalf("expected exactly one malformed sample record, got %d", len(failures))
	}
	return songs
}

// MockSource is a test double for [services.Source]
type MockSource struct {
	SourceName string
	Songs      []models.RawSong
	Err        error
	Calls      int
}

func (m *MockSource) Name() string {
	if m.SourceName == "" {
		return "mock"
	}
	return m.SourceName
}

func (m *MockSource) Fetch(ctx context.Context) ([]models.RawSong, error) {
	m.Calls++
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return m.Songs, m.Err
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

// MustWriteFile writes content to path, failing the test on error.
func MustWriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write file %s: %v", path, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
