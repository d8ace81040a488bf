// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// sourceFlag selects where a command reads songs from.
func sourceFlag(usage string) cli.Flag {
	return &cli.StringFlag{
		Name:    "source",
		Aliases: []string{"s"},
		Usage:   usage,
	}
}

// filterFlags are shared by every command that selects a subset of songs.
func filterFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "language",
			Aliases: []string{"l"},
			Usage:   "Only songs in this language (\"all\" for every language)",
		},
		&cli.StringFlag{
			Name:  "range",
			Usage: "Only songs singable within this window, as low-high or a semitone count",
		},
		&cli.BoolFlag{
			Name:  "capo",
			Usage: "Only songs played with a capo",
		},
		&cli.StringFlag{
			Name:    "songbook",
			Aliases: []string{"b"},
			Usage:   "Only songs in this songbook",
		},
		&cli.StringFlag{
			Name:    "query",
			Aliases: []string{"q"},
			Usage:   "Fuzzy match on title and artist",
		},
		&cli.StringFlag{
			Name:  "sort",
			Usage: "Sort field: title, artist, dateAdded or range",
		},
		&cli.StringFlag{
			Name:  "order",
			Usage: "Sort order: ascending or descending",
		},
	}
}

// setupCommand handles setup operations for configuration and the database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "config",
				Usage:  "Write an example configuration file",
				Action: r.SetupConfig,
			},
			{
				Name:  "database",
				Usage: "Initialize database and run migrations",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "rollback",
						Usage: "Roll back the most recent migration instead",
					},
				},
				Action: r.SetupDatabase,
			},
		},
	}
}

// importCommand loads a catalog document into the database.
func importCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "Import a catalog document into the database, replacing the stored catalog",
		Flags: []cli.Flag{
			sourceFlag("File path or http(s) URL of the catalog document (default: from config)"),
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Validate the document without storing it",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.Import,
	}
}

// historyCommand reports past imports.
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Show the most recent import",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.History,
	}
}

// songsCommand handles listing, viewing and exporting songs.
func songsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "songs",
		Usage: "Query the song catalog",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List songs matching the filter",
				Flags: append(filterFlags(),
					sourceFlag("Read from this file, URL or \"db\" instead of the stored catalog"),
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				),
				Action: r.SongsList,
			},
			{
				Name:  "show",
				Usage: "Print one song sheet",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "id",
					},
				},
				Flags: []cli.Flag{
					sourceFlag("Read from this file, URL or \"db\" instead of the stored catalog"),
					&cli.IntFlag{
						Name:    "transpose",
						Aliases: []string{"t"},
						Usage:   "Semitones to transpose by (negative transposes down)",
					},
					&cli.BoolFlag{
						Name:  "no-chords",
						Usage: "Hide chords (default: from preferences)",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.SongsShow,
			},
			{
				Name:  "export",
				Usage: "Export matching songs as json, csv, md or txt",
				Flags: append(filterFlags(),
					sourceFlag("Read from this file, URL or \"db\" instead of the stored catalog"),
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Output format: json, csv, md or txt",
						Value:   "json",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file, or directory with --by-songbook",
					},
					&cli.BoolFlag{
						Name:  "by-songbook",
						Usage: "Write one file per songbook plus a manifest",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent workers for --by-songbook",
						Value: 4,
					},
					&cli.FloatFlag{
						Name:  "rate",
						Usage: "Files written per second for --by-songbook (0 for unlimited)",
					},
				),
				Action: r.SongsExport,
			},
		},
	}
}

// statsCommand prints the catalog aggregate.
func statsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "Summarize the catalog: song count, languages, songbooks and widest range",
		Flags: []cli.Flag{
			sourceFlag("Read from this file, URL or \"db\" instead of the stored catalog"),
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.Stats,
	}
}

// keyCommand exposes key arithmetic.
func keyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "key",
		Usage: "Key arithmetic over C C# D Es E F F# G As A B H",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List the twelve keys in semitone order",
				Action: r.KeyList,
			},
			{
				Name:  "transpose",
				Usage: "Transpose a key by a number of semitones",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "key",
					},
				},
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:     "by",
						Aliases:  []string{"n"},
						Usage:    "Semitones (negative transposes down)",
						Required: true,
					},
				},
				Action: r.KeyTranspose,
			},
			{
				Name:  "distance",
				Usage: "Upward semitone distance between two keys",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "from",
					},
					&cli.StringArg{
						Name: "to",
					},
				},
				Action: r.KeyDistance,
			},
		},
	}
}

// serveCommand runs the JSON API.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the catalog as a read-only JSON API",
		Flags: []cli.Flag{
			sourceFlag("Read from this file, URL or \"db\" instead of the stored catalog"),
			&cli.StringFlag{
				Name:  "host",
				Usage: "Listen host (default: from config)",
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Listen port (default: from config)",
			},
			&cli.BoolFlag{
				Name:  "open",
				Usage: "Open the song list in a browser",
			},
		},
		Action: r.Serve,
	}
}

// tuiCommand returns the top-level TUI command for interactive browsing.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch interactive TUI for browsing songs",
		Flags: []cli.Flag{
			sourceFlag("Load from this file or URL on start (r reloads it)"),
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Where to write logs while the TUI runs",
				Value: "songbook-tui.log",
			},
		},
		Action: r.TUI,
	}
}
