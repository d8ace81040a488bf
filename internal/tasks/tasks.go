// package tasks implements long-running catalog operations.
//
// The core abstraction is Importer, which fetches a source, builds the catalog and stores it.
// Operations emit progress updates via channels for non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/songbook/internal/models"
	"github.com/desertthunder/songbook/internal/repositories"
	"github.com/desertthunder/songbook/internal/services"
	"github.com/desertthunder/songbook/internal/shared"
)

// ErrDuplicateID marks a record whose ID was already taken by an earlier record in the same document.
var ErrDuplicateID = errors.New("duplicate song id")

// CatalogStore persists a built catalog wholesale.
type CatalogStore interface {
	ReplaceAll(songs []models.Song) ([]*models.PersistedSong, error)
}

// ImportHistory records import runs.
type ImportHistory interface {
	Start(run *models.ImportRun) error
	Finish(run *models.ImportRun) error
}

var (
	_ CatalogStore  = (*repositories.SongRepository)(nil)
	_ ImportHistory = (*repositories.ImportRepository)(nil)
)

// ImportResult contains the outcome of a single import.
type ImportResult struct {
	Source   string               // Source name
	Songs    []models.Song        // Stored songs in document order, with IDs assigned
	Failures []models.RecordError // Records that were skipped
	Imported int                  // Number of songs stored
	Total    int                  // Number of records fetched
}

// Importer fetches catalog documents and stores the songs they contain.
//
// A nil store performs a dry run; a nil history skips bookkeeping.
type Importer struct {
	store   CatalogStore
	history ImportHistory
	logger  *log.Logger
}

// NewImporter creates an Importer. The logger defaults to [shared.NewLogger] on stderr.
func NewImporter(store CatalogStore, history ImportHistory, logger *log.Logger) *Importer {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Importer{store: store, history: history, logger: logger}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Import fetches src, builds the catalog and replaces the stored catalog with it.
//
// Malformed and duplicate-ID records are skipped and reported in [ImportResult.Failures]; they never abort the import.
// Fetch and storage failures do, leaving the stored catalog untouched.
func (i *Importer) Import(ctx context.Context, src services.Source, progress chan<- ProgressUpdate) (*ImportResult, error) {
	if src == nil {
		return nil, fmt.Errorf("%w: no source", shared.ErrSourceUnavailable)
	}

	run := models.NewImportRun(src.Name())
	if i.history != nil {
		if err := i.history.Start(run); err != nil {
			i.logger.Warn("failed to record import start", "source", src.Name(), "error", err)
		}
	}

	sendProgress(progress, fetchSourceUpdate(src.Name()))
	raws, err := src.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", src.Name(), err)
	}

	sendProgress(progress, buildCatalogUpdate(len(raws)))
	songs, failures := models.BuildCatalog(raws)
	songs, failures = i.dedupe(songs, failures, len(raws))

	result := &ImportResult{
		Source:   src.Name(),
		Songs:    songs,
		Failures: failures,
		Total:    len(raws),
	}
	for _, f := range failures {
		i.logger.Warn("skipping record", "index", f.Index, "title", f.Title, "error", f.Err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if i.store != nil {
		sendProgress(progress, persistUpdate(len(songs)))
		stored, err := i.store.ReplaceAll(songs)
		if err != nil {
			return nil, fmt.Errorf("failed to store catalog: %w", err)
		}
		result.Songs = make([]models.Song, 0, len(stored))
		for _, p := range stored {
			result.Songs = append(result.Songs, p.Song())
		}
	}
	result.Imported = len(result.Songs)

	run.Complete(result.Imported, len(result.Failures))
	if i.history != nil {
		if err := i.history.Finish(run); err != nil {
			i.logger.Warn("failed to record import completion", "source", src.Name(), "error", err)
		}
	}

	sendProgress(progress, importCompletedUpdate(result))
	i.logger.Info("import complete", "source", src.Name(), "imported", result.Imported, "failed", len(result.Failures))
	return result, nil
}

// dedupe drops songs whose ID repeats an earlier one. Songs sharing a title and artist are kept but logged.
func (i *Importer) dedupe(songs []models.Song, failures []models.RecordError, total int) ([]models.Song, []models.RecordError) {
	failed := make(map[int]struct{}, len(failures))
	for _, f := range failures {
		failed[f.Index] = struct{}{}
	}

	// BuildCatalog keeps document order, so the k-th song came from the k-th record that did not fail.
	positions := make([]int, 0, len(songs))
	for idx := range total {
		if _, ok := failed[idx]; !ok {
			positions = append(positions, idx)
		}
	}

	ids := make(map[string]struct{}, len(songs))
	names := make(map[string]string, len(songs))
	kept := make([]models.Song, 0, len(songs))

	for k, song := range songs {
		if song.ID != "" {
			if _, dup := ids[song.ID]; dup {
				failures = append(failures, models.RecordError{
					Index: positions[k],
					Title: song.Title,
					Err:   fmt.Errorf("%w: %q", ErrDuplicateID, song.ID),
				})
				continue
			}
			ids[song.ID] = struct{}{}
		}

		key := shared.NormalizeSongKey(song.Title, song.Artist)
		if first, seen := names[key]; seen {
			i.logger.Debug("song appears more than once", "title", song.Title, "artist", song.Artist, "first", first)
		} else {
			names[key] = song.ID
		}
		kept = append(kept, song)
	}

	slices.SortFunc(failures, func(a, b models.RecordError) int { return a.Index - b.Index })
	return kept, failures
}
