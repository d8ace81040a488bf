package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/desertthunder/songbook/internal/catalog"
	"github.com/desertthunder/songbook/internal/formatter"
	"github.com/desertthunder/songbook/internal/models"
	"golang.org/x/time/rate"
)

// BulkExportOpts contains configuration for per-songbook exports.
type BulkExportOpts struct {
	Format     formatter.Format // Export encoding
	OutputDir  string           // Base output directory (default: songbook_export_{epoch})
	NumWorkers int              // Concurrent workers (default: 4, max 10)
	RateLimit  float64          // Files written per second (default: unlimited)
	Sort       catalog.SortSpec // Order of songs within each file
}

// SongbookExportResult is the outcome of exporting one songbook.
type SongbookExportResult struct {
	Songbook string `json:"songbook"`
	File     string `json:"file,omitempty"`
	Songs    int    `json:"songs"`
	Success  bool   `json:"success"`
	Error    string `json:"error,omitempty"`
}

// BulkExportResult summarizes a bulk export and is written as the manifest.
type BulkExportResult struct {
	TotalSongbooks    int                    `json:"total_songbooks"`
	SuccessfulExports int                    `json:"successful_exports"`
	FailedExports     int                    `json:"failed_exports"`
	OutputDirectory   string                 `json:"output_directory"`
	Format            string                 `json:"format"`
	Results           []SongbookExportResult `json:"results"`
	ManifestPath      string                 `json:"-"`
}

type songbookExportJob struct {
	export formatter.SongbookExport
	file   string
}

// exportFileNames slugs each songbook name, suffixing repeats ("camp", "camp-2") so no two books share a file.
func exportFileNames(books []string) []string {
	used := make(map[string]bool, len(books))
	names := make([]string, len(books))
	for i, book := range books {
		base := formatter.Slug(book)
		name := base
		for n := 2; used[name]; n++ {
			name = fmt.Sprintf("%s-%d", base, n)
		}
		used[name] = true
		names[i] = name
	}
	return names
}

// BulkExport writes one file per songbook concurrently and a manifest summarizing the run.
//
// Songbooks with no songs are still exported. Per-songbook failures are recorded in the manifest and do not stop
// the others; results are ordered by songbook name regardless of completion order.
func BulkExport(
	ctx context.Context,
	prog chan<- ProgressUpdate,
	songs []models.Song,
	books []string,
	opts BulkExportOpts,
) (*BulkExportResult, error) {
	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("songbook_export_%d", time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 4
	}
	opts.NumWorkers = min(opts.NumWorkers, 10)

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	result := &BulkExportResult{
		TotalSongbooks:  len(books),
		OutputDirectory: opts.OutputDir,
		Format:          opts.Format.String(),
		Results:         make([]SongbookExportResult, 0, len(books)),
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	}

	jobs := make(chan songbookExportJob, len(books))
	results := make(chan SongbookExportResult, len(books))

	var wg sync.WaitGroup
	for range opts.NumWorkers {
		wg.Add(1)
		go exportWorker(ctx, &wg, jobs, results, opts)
	}

	files := exportFileNames(books)
	go func() {
		defer close(jobs)
		for i, book := range books {
			if err := limiter.Wait(ctx); err != nil {
				return
			}

			selected, err := catalog.Filter(songs, catalog.FilterSpec{Songbook: book})
			if err == nil {
				selected, err = catalog.Sort(selected, opts.Sort)
			}
			if err != nil {
				results <- SongbookExportResult{Songbook: book, Error: err.Error()}
				continue
			}

			sendProgress(prog, exportingSongbookUpdate(i+1, len(books), book))
			jobs <- songbookExportJob{
				export: formatter.SongbookExport{Name: book, Songs: selected},
				file:   files[i],
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		result.Results = append(result.Results, res)

		if res.Success {
			result.SuccessfulExports++
			sendProgress(prog, exportCompletedUpdate(completed, len(books), res.Songbook, res.Songs))
		} else {
			result.FailedExports++
			sendProgress(prog, exportFailedUpdate(completed, len(books), res.Songbook, fmt.Errorf("%s", res.Error)))
		}
	}

	if err := ctx.Err(); err != nil {
		return result, err
	}

	slices.SortFunc(result.Results, func(a, b SongbookExportResult) int {
		return strings.Compare(a.Songbook, b.Songbook)
	})

	manifestPath := filepath.Join(opts.OutputDir, "export_manifest.json")
	if err := formatter.WriteJSONFile(result, manifestPath); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath
	return result, nil
}

// exportWorker writes songbooks from the jobs channel until it is closed or ctx is done.
func exportWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	jobs <-chan songbookExportJob,
	results chan<- SongbookExportResult,
	opts BulkExportOpts,
) {
	defer wg.Done()

	for job := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
		}

		results <- exportSingleSongbook(job, opts)
	}
}

func exportSingleSongbook(j songbookExportJob, opts BulkExportOpts) SongbookExportResult {
	res := SongbookExportResult{Songbook: j.export.Name, Songs: len(j.export.Songs)}

	path := filepath.Join(opts.OutputDir, j.file+"."+opts.Format.Ext())
	file, err := formatter.WriteExport(j.export, opts.Format, path)
	if err != nil {
		res.Error = err.Error()
		return res
	}

	res.File = file
	res.Success = true
	return res
}
