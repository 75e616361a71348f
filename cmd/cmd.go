// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Usage:   "Output format (text, json, csv, markdown)",
		Value:   "text",
	}
}

func outputFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "Write to a file instead of stdout",
	}
}

// setupCommand prepares the config file, database and local library
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Initialize config, database and local library",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
		},
		Action: r.Setup,
		Commands: []*cli.Command{
			{
				Name:   "status",
				Usage:  "Show applied and pending migrations",
				Action: r.MigrationStatus,
			},
			{
				Name:   "rollback",
				Usage:  "Roll back the most recent migration",
				Action: r.Rollback,
			},
		},
	}
}

// serveCommand runs the catalog REST API
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the catalog API server",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "host", Usage: "Listen host (overrides config)"},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Usage: "Listen port (overrides config)"},
			&cli.BoolFlag{Name: "seed", Usage: "Seed the default catalog before serving"},
			&cli.BoolFlag{Name: "open", Usage: "Open the API root in a browser once listening"},
		},
		Action: r.Serve,
	}
}

// seedCommand asks the catalog API to insert the default catalog
func seedCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "seed",
		Usage:  "Seed the remote catalog with the default tracks",
		Action: r.Seed,
	}
}

// healthCommand checks the catalog API
func healthCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "health",
		Usage: "Check catalog API and database health",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: "Output as JSON"},
		},
		Action: r.Health,
	}
}

// tracksCommand handles catalog operations
func tracksCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tracks",
		Aliases: []string{"t"},
		Usage:   "Catalog operations",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List catalog tracks, newest first",
				Flags: []cli.Flag{
					formatFlag(),
					outputFlag(),
					&cli.StringFlag{Name: "genre", Aliases: []string{"g"}, Usage: "Only tracks in this genre"},
				},
				Action: r.TracksList,
			},
			{
				Name:   "genres",
				Usage:  "Summarize the catalog by genre",
				Action: r.TracksGenres,
			},
			{
				Name:  "add",
				Usage: "Ingest one track",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "title", Required: true, Usage: "Track title"},
					&cli.StringFlag{Name: "artist", Required: true, Usage: "Artist name"},
					&cli.StringFlag{Name: "album", Usage: "Album title"},
					&cli.StringFlag{Name: "genre", Usage: "Genre (default Unknown)"},
					&cli.StringFlag{Name: "duration", Usage: "Duration as mm:ss"},
					&cli.StringFlag{Name: "cover", Required: true, Usage: "Cover art URL, data URI or file path"},
					&cli.StringFlag{Name: "audio", Required: true, Usage: "Audio URL, data URI or file path"},
				},
				Action: r.TracksAdd,
			},
			{
				Name:  "import",
				Usage: "Ingest every row of a CSV manifest",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "manifest"},
				},
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "workers", Aliases: []string{"w"}, Value: 3, Usage: "Concurrent ingestions (max 10)"},
					&cli.FloatFlag{Name: "rate", Value: 5, Usage: "Creates per second"},
				},
				Action: r.TracksImport,
			},
			{
				Name:  "delete",
				Usage: "Delete a track from the catalog",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Action: r.TracksDelete,
			},
		},
	}
}

// libraryCommand handles the personal library
func libraryCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "library",
		Aliases: []string{"lib"},
		Usage:   "Personal library operations",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List saved tracks, most recent first",
				Flags:  []cli.Flag{formatFlag()},
				Action: r.LibraryList,
			},
			{
				Name:  "add",
				Usage: "Save a catalog track to the library",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Action: r.LibraryAdd,
			},
			{
				Name:  "remove",
				Usage: "Remove a track from the library",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Action: r.LibraryRemove,
			},
			{
				Name:   "export",
				Usage:  "Export the library to a file",
				Flags:  []cli.Flag{formatFlag(), outputFlag()},
				Action: r.LibraryExport,
			},
		},
	}
}

// cacheCommand manages the offline catalog copy
func cacheCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Inspect or clear the offline catalog copy",
		Commands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Show the cached catalog",
				Action: r.CacheShow,
			},
			{
				Name:   "clear",
				Usage:  "Discard the cached catalog",
				Action: r.CacheClear,
			},
		},
	}
}

// playCommand plays one track in the terminal
func playCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "play",
		Usage: "Play a track (the featured track when no id is given)",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "id"},
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "no-advance", Usage: "Stop at the end instead of moving to the next track"},
		},
		Action: r.Play,
	}
}

// tuiCommand launches the interactive terminal UI
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "tui",
		Usage: "Launch the interactive terminal UI",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "log-file", Usage: "Where to write logs while the UI runs"},
		},
		Action: r.TUI,
	}
}
