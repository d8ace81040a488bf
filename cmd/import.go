package main

import (
	"context"
	"time"

	"github.com/desertthunder/songbook/internal/models"
	"github.com/desertthunder/songbook/internal/repositories"
	"github.com/desertthunder/songbook/internal/services"
	"github.com/desertthunder/songbook/internal/tasks"
	"github.com/urfave/cli/v3"
)

// ImportSummary is the JSON form of an import.
type ImportSummary struct {
	Source   string         `json:"source"`
	Total    int            `json:"total"`
	Imported int            `json:"imported"`
	DryRun   bool           `json:"dry_run"`
	Failures []FailureEntry `json:"failures"`
}

// FailureEntry describes one skipped record.
type FailureEntry struct {
	Index int    `json:"index"`
	Title string `json:"title,omitempty"`
	Error string `json:"error"`
}

func summarize(result *tasks.ImportResult, dryRun bool) ImportSummary {
	summary := ImportSummary{
		Source:   result.Source,
		Total:    result.Total,
		Imported: result.Imported,
		DryRun:   dryRun,
		Failures: make([]FailureEntry, 0, len(result.Failures)),
	}
	for _, f := range result.Failures {
		summary.Failures = append(summary.Failures, FailureEntry{Index: f.Index, Title: f.Title, Error: f.Err.Error()})
	}
	return summary
}

// Import fetches the catalog document and replaces the stored catalog with its valid songs.
func (r *Runner) Import(ctx context.Context, cmd *cli.Command) error {
	dryRun := cmd.Bool("dry-run")

	var (
		store   tasks.CatalogStore
		history tasks.ImportHistory
		lister  services.SongLister
	)
	if !dryRun {
		db, err := r.database()
		if err != nil {
			return err
		}
		songs := repositories.NewSongRepository(db)
		store, history = songs, repositories.NewImportRepository(db)
		if cmd.String("source") == services.DatabaseSourceName {
			lister = songs
		}
	}

	src, err := services.ParseSource(cmd.String("source"), r.config.Catalog, lister)
	if err != nil {
		return err
	}

	progress := make(chan tasks.ProgressUpdate, 10)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			r.logger.Info(update.Message, "phase", update.Phase)
		}
	}()

	result, err := tasks.NewImporter(store, history, r.logger).Import(ctx, src, progress)
	close(progress)
	<-done
	if err != nil {
		return err
	}

	summary := summarize(result, dryRun)
	if cmd.Bool("json") {
		return r.writeJSON(summary, true)
	}

	verb := "Imported"
	if dryRun {
		verb = "Validated"
	}
	r.writePlain("✓ %s %d of %d songs from %s\n", verb, summary.Imported, summary.Total, summary.Source)
	if len(summary.Failures) > 0 {
		r.writePlainln("Skipped %d records:", len(summary.Failures))
		for _, f := range summary.Failures {
			label := f.Title
			if label == "" {
				label = "untitled"
			}
			r.writePlain("  • #%d %s: %s\n", f.Index, label, f.Error)
		}
	}
	return nil
}

// HistoryEntry is the JSON form of an import run.
type HistoryEntry struct {
	ID          string     `json:"id"`
	Source      string     `json:"source"`
	Imported    int        `json:"imported"`
	Failed      int        `json:"failed"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

func historyEntry(run *models.ImportRun) HistoryEntry {
	entry := HistoryEntry{
		ID:          run.ID(),
		Source:      run.Source(),
		Imported:    run.Imported(),
		Failed:      run.Failed(),
		StartedAt:   run.StartedAt(),
		CompletedAt: run.CompletedAt(),
	}
	return entry
}

// History prints the most recent import run.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	db, err := r.database()
	if err != nil {
		return err
	}

	run, err := repositories.NewImportRepository(db).Latest()
	if err != nil {
		return err
	}

	entry := historyEntry(run)
	if cmd.Bool("json") {
		return r.writeJSON(entry, true)
	}

	r.writePlainHeader("Latest import")
	r.writePlain("Source:    %s\n", entry.Source)
	r.writePlain("Started:   %s\n", entry.StartedAt.Format(time.DateTime))
	if entry.CompletedAt != nil {
		r.writePlain("Completed: %s\n", entry.CompletedAt.Format(time.DateTime))
	} else {
		r.writePlain("Completed: no\n")
	}
	r.writePlain("Imported:  %d\n", entry.Imported)
	r.writePlain("Failed:    %d\n", entry.Failed)
	return nil
}
