package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/songbook/internal/catalog"
	"github.com/desertthunder/songbook/internal/repositories"
	"github.com/desertthunder/songbook/internal/services"
	"github.com/desertthunder/songbook/internal/shared"
	"github.com/desertthunder/songbook/internal/tasks"
	"github.com/desertthunder/songbook/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive song browser.
//
// Without --source the stored catalog is browsed and nothing is reloaded; with it, the source is imported on start
// (and stored when the database is available).
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, logFile, err := shared.NewFileLogger(cmd.String("log-file"))
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	defer logFile.Close()
	r.logger = fileLogger

	var (
		cat      *catalog.Catalog
		importer *tasks.Importer
		src      services.Source
	)

	if spec := cmd.String("source"); spec != "" {
		var (
			store   tasks.CatalogStore
			history tasks.ImportHistory
		)
		if db, err := r.database(); err == nil {
			store, history = repositories.NewSongRepository(db), repositories.NewImportRepository(db)
		} else {
			r.logger.Warn("database unavailable, browsing without storing", "error", err)
		}

		if src, err = services.ParseSource(spec, r.config.Catalog, nil); err != nil {
			return err
		}
		importer = tasks.NewImporter(store, history, r.logger)
		cat = catalog.New(nil)
	} else {
		if cat, err = r.loadCatalog(ctx, ""); err != nil {
			return err
		}
	}

	model := ui.NewModel(ctx, cat, importer, src, r.preferences())
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
