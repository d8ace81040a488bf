package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/songbook/internal/catalog"
	"github.com/desertthunder/songbook/internal/repositories"
	"github.com/desertthunder/songbook/internal/services"
	"github.com/desertthunder/songbook/internal/settings"
	"github.com/desertthunder/songbook/internal/shared"
	"github.com/desertthunder/songbook/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	logger     *log.Logger
	output     io.Writer
	db         *sql.DB
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Logger     *log.Logger
	Output     io.Writer
	DB         *sql.DB // Already migrated database; opened from config on first use when nil
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		logger:     opts.Logger,
		output:     opts.Output,
		db:         opts.DB,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, importCommand, historyCommand, songsCommand, statsCommand, keyCommand, serveCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// Before resolves and loads the configuration file. A missing file leaves the defaults in place.
func (r *Runner) Before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.Bool("verbose") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}

	r.configPath = shared.ConfigPath(cmd.String("config"))
	config, err := shared.LoadConfig(r.configPath)
	switch {
	case err == nil:
		r.config = config
		r.logger.Debug("loaded config", "path", r.configPath)
	case errors.Is(err, shared.ErrMissingConfig):
		r.logger.Debug("config file not found, using defaults", "path", r.configPath)
	default:
		return ctx, err
	}
	return ctx, nil
}

// Close releases the database handle, if one was opened.
func (r *Runner) Close() error {
	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db = nil
	return err
}

// database opens and migrates the configured database on first use.
func (r *Runner) database() (*sql.DB, error) {
	if r.db != nil {
		return r.db, nil
	}

	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	r.db = db
	return db, nil
}

// preferences builds the settings snapshot from the [preferences] table, logging entries it cannot use.
func (r *Runner) preferences() settings.Settings {
	prefs, errs := settings.FromMap(r.config.Preferences)
	for _, err := range errs {
		r.logger.Warn("ignoring preference", "error", err)
	}
	if lang := r.config.Catalog.DefaultLanguage; lang != "" {
		if next, err := prefs.With(settings.Language, settings.String(lang)); err == nil {
			prefs = next
		}
	}
	if field := r.config.Catalog.DefaultSort; field != "" {
		if next, err := prefs.With(settings.SortField, settings.String(field)); err == nil {
			prefs = next
		}
	}
	return prefs
}

// loadCatalog reads the stored catalog, or fetches the named source without storing it when the database is empty
// or another source is named.
func (r *Runner) loadCatalog(ctx context.Context, spec string) (*catalog.Catalog, error) {
	if spec == "" || spec == services.DatabaseSourceName {
		db, err := r.database()
		if err != nil && spec != "" {
			return nil, err
		}
		if err == nil {
			songs, err := repositories.NewSongRepository(db).Songs()
			if err != nil {
				return nil, err
			}
			if len(songs) == 0 && spec != "" {
				return nil, fmt.Errorf("%w: run 'songbook import' first", shared.ErrDatabaseEmpty)
			}
			if len(songs) > 0 {
				r.logger.Debug("loaded catalog from database", "songs", len(songs))
				return catalog.New(songs), nil
			}
		} else {
			r.logger.Debug("database unavailable, reading source", "error", err)
		}
	}

	src, err := services.ParseSource(spec, r.config.Catalog, nil)
	if err != nil {
		return nil, err
	}
	result, err := tasks.NewImporter(nil, nil, r.logger).Import(ctx, src, nil)
	if err != nil {
		return nil, err
	}
	return catalog.New(result.Songs), nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
