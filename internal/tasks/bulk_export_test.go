package tasks

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/desertthunder/songbook/internal/catalog"
	"github.com/desertthunder/songbook/internal/formatter"
	"github.com/desertthunder/songbook/internal/models"
	tu "github.com/desertthunder/songbook/internal/testing"
)

func TestBulkExport(t *testing.T) {
	songs := tu.SampleSongs(t)
	books := catalog.Compute(songs).Songbooks

	t.Run("writes one file per songbook", func(t *testing.T) {
		dir := t.TempDir()
		progress := make(chan ProgressUpdate, 20)

		res, err := BulkExport(context.Background(), progress, songs, books, BulkExportOpts{
			Format:     formatter.CSV,
			OutputDir:  dir,
			NumWorkers: 2,
			Sort:       catalog.DefaultSort(),
		})
		if err != nil {
			t.Fatalf("BulkExport failed: %v", err)
		}

		if res.TotalSongbooks != 3 || res.SuccessfulExports != 3 || res.FailedExports != 0 {
			t.Errorf("unexpected counts: %+v", res)
		}

		wantSongs := map[string]int{"90s": 1, "campfire": 3, "czech": 1}
		for i, r := range res.Results {
			if r.Songbook != books[i] {
				t.Errorf("results should be ordered by songbook, got %s at %d", r.Songbook, i)
			}
			if r.Songs != wantSongs[r.Songbook] {
				t.Errorf("%s: expected %d songs, got %d", r.Songbook, wantSongs[r.Songbook], r.Songs)
			}
			tu.AssertFileExists(t, r.File)
		}

		campfire := tu.MustReadFile(t, filepath.Join(dir, "campfire.csv"))
		lines := strings.Split(strings.TrimSpace(campfire), "\n")
		if len(lines) != 4 || !strings.HasPrefix(lines[1], "orchidej,Bílá orchidej") {
			t.Errorf("campfire export should be sorted by title, got:\n%s", campfire)
		}

		var manifest BulkExportResult
		if err := json.Unmarshal([]byte(tu.MustReadFile(t, res.ManifestPath)), &manifest); err != nil {
			t.Fatalf("manifest is not valid JSON: %v", err)
		}
		if manifest.Format != "csv" || len(manifest.Results) != 3 {
			t.Errorf("unexpected manifest %+v", manifest)
		}

		if len(progress) == 0 {
			t.Error("expected progress updates")
		}
	})

	t.Run("write failures are recorded", func(t *testing.T) {
		dir := t.TempDir()
		if err := os.Mkdir(filepath.Join(dir, "czech.md"), 0755); err != nil {
			t.Fatalf("failed to create blocking directory: %v", err)
		}

		res, err := BulkExport(context.Background(), nil, songs, books, BulkExportOpts{
			Format:    formatter.Markdown,
			OutputDir: dir,
			RateLimit: 1000,
		})
		if err != nil {
			t.Fatalf("BulkExport failed: %v", err)
		}
		if res.SuccessfulExports != 2 || res.FailedExports != 1 {
			t.Errorf("expected 2 successes and 1 failure, got %+v", res)
		}
		if last := res.Results[2]; last.Songbook != "czech" || last.Success || last.Error == "" {
			t.Errorf("expected czech failure, got %+v", last)
		}
	})

	t.Run("songbooks with the same slug get distinct files", func(t *testing.T) {
		dir := t.TempDir()
		mixed := []models.Song{
			{ID: "a", Title: "Upper", Artist: "X", Songbooks: []string{"Camp"}},
			{ID: "b", Title: "Lower", Artist: "Y", Songbooks: []string{"camp"}},
		}
		mixedBooks := catalog.Compute(mixed).Songbooks

		res, err := BulkExport(context.Background(), nil, mixed, mixedBooks, BulkExportOpts{
			Format:    formatter.Text,
			OutputDir: dir,
			Sort:      catalog.DefaultSort(),
		})
		if err != nil {
			t.Fatalf("BulkExport failed: %v", err)
		}
		if res.SuccessfulExports != 2 {
			t.Fatalf("expected 2 successes, got %+v", res)
		}
		if res.Results[0].File == res.Results[1].File {
			t.Fatalf("both songbooks were written to %s", res.Results[0].File)
		}
		if !strings.Contains(tu.MustReadFile(t, filepath.Join(dir, "camp.txt")), "Upper") {
			t.Error("camp.txt should hold the Camp songbook")
		}
		if !strings.Contains(tu.MustReadFile(t, filepath.Join(dir, "camp-2.txt")), "Lower") {
			t.Error("camp-2.txt should hold the camp songbook")
		}
	})

	t.Run("exportFileNames", func(t *testing.T) {
		got := exportFileNames([]string{"Camp", "camp", "camp-2", "!!"})
		want := []string{"camp", "camp-2", "camp-2-2", "songbook"}
		if !slices.Equal(got, want) {
			t.Errorf("exportFileNames() = %v, want %v", got, want)
		}
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if _, err := BulkExport(ctx, nil, songs, books, BulkExportOpts{OutputDir: t.TempDir(), RateLimit: 1}); err == nil {
			t.Fatal("expected context error")
		}
	})
}
