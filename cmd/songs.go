package main

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/desertthunder/songbook/internal/catalog"
	"github.com/desertthunder/songbook/internal/formatter"
	"github.com/desertthunder/songbook/internal/models"
	"github.com/desertthunder/songbook/internal/settings"
	"github.com/desertthunder/songbook/internal/shared"
	"github.com/desertthunder/songbook/internal/tasks"
	"github.com/urfave/cli/v3"
)

// querySpec builds the filter and sort from flags, falling back to the configured defaults and preferences.
func (r *Runner) querySpec(cmd *cli.Command) (catalog.FilterSpec, catalog.SortSpec, error) {
	language := cmd.String("language")
	if language == "" {
		language = r.config.Catalog.DefaultLanguage
	}

	capo := cmd.Bool("capo")
	if !cmd.IsSet("capo") {
		capo = r.preferences().Bool(settings.CapoRequired)
	}

	filter, err := catalog.ParseFilterSpec(language, cmd.String("range"), cmd.String("songbook"), cmd.String("query"), capo)
	if err != nil {
		return catalog.FilterSpec{}, catalog.SortSpec{}, fmt.Errorf("%w: %w", shared.ErrInvalidFlag, err)
	}

	field, order := cmd.String("sort"), cmd.String("order")
	if field == "" {
		field = r.config.Catalog.DefaultSort
	}
	if order == "" {
		order = r.config.Catalog.DefaultOrder
	}
	if field == "" {
		field = catalog.DefaultSort().Field.String()
	}
	sortSpec, err := catalog.ParseSortSpec(field, order)
	if err != nil {
		return catalog.FilterSpec{}, catalog.SortSpec{}, fmt.Errorf("%w: %w", shared.ErrInvalidFlag, err)
	}

	return filter, sortSpec, nil
}

func (r *Runner) querySongs(ctx context.Context, cmd *cli.Command) (*catalog.Catalog, []models.Song, error) {
	filter, order, err := r.querySpec(cmd)
	if err != nil {
		return nil, nil, err
	}

	cat, err := r.loadCatalog(ctx, cmd.String("source"))
	if err != nil {
		return nil, nil, err
	}

	songs, err := cat.Query(filter, order)
	if err != nil {
		return nil, nil, err
	}
	return cat, songs, nil
}

// SongsList prints the songs matching the filter flags.
func (r *Runner) SongsList(ctx context.Context, cmd *cli.Command) error {
	cat, songs, err := r.querySongs(ctx, cmd)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(songs, cmd.Bool("pretty"))
	}

	if len(songs) == 0 {
		r.writePlain("No songs match (catalog holds %d)\n", cat.Len())
		return nil
	}

	w := tabwriter.NewWriter(r.output, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tARTIST\tKEY\tCAPO\tRANGE\tLANG\tADDED")
	for _, song := range songs {
		rng := "-"
		if song.HasRange() {
			rng = song.Range.String()
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			song.ID, song.Title, song.Artist, song.Key, formatter.FormatCapo(song.Capo), rng, song.Language,
			formatter.FormatDate(song.DateAdded),
		)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	r.writePlainln("%d of %d songs", len(songs), cat.Len())
	return nil
}

// SongsShow prints one song sheet, optionally transposed.
func (r *Runner) SongsShow(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: song id", shared.ErrMissingArgument)
	}

	cat, err := r.loadCatalog(ctx, cmd.String("source"))
	if err != nil {
		return err
	}

	song, ok := cat.Get(id)
	if !ok {
		return fmt.Errorf("%w: %s", shared.ErrSongNotFound, id)
	}
	song = song.Transposed(int(cmd.Int("transpose")))

	if cmd.Bool("json") {
		return r.writeJSON(song, true)
	}

	showChords := r.preferences().Bool(settings.ShowChords)
	if cmd.IsSet("no-chords") {
		showChords = !cmd.Bool("no-chords")
	}
	return r.writePlain("%s", formatter.FormatSong(song, showChords))
}

// SongsExport writes the matching songs to a single file, or one file per songbook.
func (r *Runner) SongsExport(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	_, songs, err := r.querySongs(ctx, cmd)
	if err != nil {
		return err
	}

	if !cmd.Bool("by-songbook") {
		name := cmd.String("songbook")
		if name == catalog.All {
			name = ""
		}
		path, err := formatter.WriteExport(formatter.SongbookExport{Name: name, Songs: songs}, format, cmd.String("output"))
		if err != nil {
			return err
		}
		r.logger.Info("export written", "path", path, "songs", len(songs))
		r.writePlain("✓ Exported %d songs to %s\n", len(songs), path)
		return nil
	}

	_, order, err := r.querySpec(cmd)
	if err != nil {
		return err
	}
	books := catalog.Compute(songs).Songbooks
	if len(books) == 0 {
		return fmt.Errorf("%w: no songbooks among %d matching songs", shared.ErrInvalidInput, len(songs))
	}

	progress := make(chan tasks.ProgressUpdate, len(books)*2)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			r.logger.Info(update.Message, "step", update.Step, "total", update.Total)
		}
	}()

	result, err := tasks.BulkExport(ctx, progress, songs, books, tasks.BulkExportOpts{
		Format:     format,
		OutputDir:  cmd.String("output"),
		NumWorkers: int(cmd.Int("workers")),
		RateLimit:  cmd.Float("rate"),
		Sort:       order,
	})
	close(progress)
	<-done
	if err != nil {
		return err
	}

	r.writePlain("✓ Exported %d of %d songbooks to %s\n", result.SuccessfulExports, result.TotalSongbooks, result.OutputDirectory)
	if result.FailedExports > 0 {
		var failed []string
		for _, res := range result.Results {
			if !res.Success {
				failed = append(failed, res.Songbook)
			}
		}
		r.writePlain("Failed: %s\n", strings.Join(failed, ", "))
	}
	r.writePlain("Manifest: %s\n", result.ManifestPath)
	return nil
}

// Stats prints the catalog aggregate.
func (r *Runner) Stats(ctx context.Context, cmd *cli.Command) error {
	cat, err := r.loadCatalog(ctx, cmd.String("source"))
	if err != nil {
		return err
	}

	agg := cat.Aggregate()
	if cmd.Bool("json") {
		return r.writeJSON(agg, true)
	}
	return r.writePlain("%s", formatter.FormatStats(agg))
}
