// submodule cmd contains command definitions
package main

import (
	"github.com/desertthunder/tunename/internal/formatter"
	"github.com/urfave/cli/v3"
)

// setupCommand handles setup operations for config and database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "config",
				Usage: "Write a config.toml template",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.SetupConfig,
			},
			{
				Name:   "database",
				Usage:  "Initialize database and run migrations",
				Action: r.SetupDatabase,
			},
			{
				Name:   "status",
				Usage:  "Show configuration, credentials and migration status",
				Action: r.SetupStatus,
			},
		},
	}
}

// contactsCommand manages the stored contacts and the saved selection.
func contactsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "contacts",
		Aliases: []string{"c"},
		Usage:   "Manage contacts",
		Commands: []*cli.Command{
			{
				Name:  "import",
				Usage: "Import contacts from a CSV file (id, first_name, last_name, full_name)",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "file",
						Aliases:  []string{"f"},
						Usage:    "CSV file to import, - for stdin",
						Required: true,
					},
				},
				Action: r.ContactsImport,
			},
			{
				Name:  "list",
				Usage: "List contacts",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "filtered",
						Usage: "Only the saved selection",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.ContactsList,
			},
			{
				Name:  "filter",
				Usage: "Save the selection used by --filter builds",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:  "id",
						Usage: "Contact ID to select (repeatable)",
					},
					&cli.BoolFlag{
						Name:  "clear",
						Usage: "Clear the selection",
					},
				},
				Action: r.ContactsFilter,
			},
			{
				Name:  "export",
				Usage: "Export contacts as CSV",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path (default: stdout)",
					},
				},
				Action: r.ContactsExport,
			},
		},
	}
}

// prefsCommand shows and edits the stored playlist preferences.
func prefsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "prefs",
		Usage: "Manage saved playlist preferences",
		Commands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Show the saved preferences",
				Action: r.PrefsShow,
			},
			{
				Name:   "set",
				Usage:  "Save preferences used when a build does not override them",
				Flags:  preferenceFlags(),
				Action: r.PrefsSet,
			},
			{
				Name:   "reset",
				Usage:  "Forget the saved preferences",
				Action: r.PrefsReset,
			},
		},
	}
}

// preferenceFlags are shared by prefs set and playlist build.
func preferenceFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:    "songs",
			Aliases: []string{"n"},
			Usage:   "Number of songs",
		},
		&cli.BoolFlag{
			Name:  "filter",
			Usage: "Only use the saved contact selection",
		},
		&cli.StringSliceFlag{
			Name:  "characteristic",
			Usage: "Song characteristic: popular, obscure or clean (repeatable)",
		},
		&cli.StringFlag{
			Name:  "genre",
			Usage: "Restrict songs to a genre",
		},
		&cli.IntFlag{
			Name:  "year-from",
			Usage: "Earliest release year",
		},
		&cli.IntFlag{
			Name:  "year-to",
			Usage: "Latest release year",
		},
	}
}

// playlistCommand builds playlists and browses the history.
func playlistCommand(r *Runner) *cli.Command {
	buildFlags := append(preferenceFlags(),
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"F"},
			Usage:   "Output format: txt, json, csv or markdown",
			Value:   string(formatter.Text),
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Write the playlist to a file instead of stdout",
		},
		&cli.BoolFlag{
			Name:  "save",
			Usage: "Save the playlist to Spotify",
		},
		&cli.BoolFlag{
			Name:  "open",
			Usage: "Open the saved playlist in the browser",
		},
		&cli.BoolFlag{
			Name:  "no-history",
			Usage: "Do not record the playlist in the local history",
		},
		&cli.Uint64Flag{
			Name:  "seed",
			Usage: "Seed contact sampling for a reproducible build",
		},
	)

	return &cli.Command{
		Name:    "playlist",
		Aliases: []string{"p"},
		Usage:   "Build and browse playlists",
		Commands: []*cli.Command{
			{
				Name:   "build",
				Usage:  "Build a playlist from your contacts' first names",
				Flags:  buildFlags,
				Action: r.PlaylistBuild,
			},
			{
				Name:  "list",
				Usage: "List previously built playlists",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of playlists to show",
						Value: 20,
					},
				},
				Action: r.PlaylistList,
			},
			{
				Name:  "show",
				Usage: "Show a previously built playlist",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "id",
						Usage:    "Playlist ID",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"F"},
						Usage:   "Output format: txt, json, csv or markdown",
						Value:   string(formatter.Text),
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write the playlist to a file instead of stdout",
					},
				},
				Action: r.PlaylistShow,
			},
		},
	}
}

// searchCommand runs a single song search, useful to check credentials and preferences.
func searchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "search",
		Usage: "Search songs whose title contains a name",
		Flags: append(preferenceFlags()[2:],
			&cli.StringFlag{
				Name:     "term",
				Aliases:  []string{"t"},
				Usage:    "Name to search for",
				Required: true,
			},
			&cli.IntFlag{
				Name:  "count",
				Usage: "Maximum number of songs",
				Value: 10,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		),
		Action: r.Search,
	}
}

// cacheCommand manages the search result cache
func cacheCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Manage the search result cache",
		Commands: []*cli.Command{
			{
				Name:   "status",
				Usage:  "Show the cache backend and its health",
				Action: r.CacheStatus,
			},
			{
				Name:   "purge",
				Usage:  "Remove expired entries",
				Action: r.CachePurge,
			},
			{
				Name:   "clear",
				Usage:  "Remove every entry",
				Action: r.CacheClear,
			},
		},
	}
}

// serveCommand starts the HTTP API.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the HTTP API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Interface to listen on (default: server.host)",
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "Port to listen on (default: server.port)",
			},
		},
		Action: r.Serve,
	}
}

// tuiCommand returns the top-level TUI command for interactive playlist building.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Build a playlist interactively",
		Flags:   preferenceFlags(),
		Action:  r.TUI,
	}
}
