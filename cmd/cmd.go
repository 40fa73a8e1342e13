// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func roleFlag(value string) *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "role",
		Aliases: []string{"r"},
		Usage:   "Role to act as (super_admin, admin, choir_member, guest or empty for anonymous)",
		Value:   value,
	}
}

func outputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print JSON output",
		},
	}
}

// itemFlags are shared by admin entries add and update.
func itemFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "author", Usage: "Author or lyricist"},
		&cli.StringFlag{Name: "composer", Usage: "Composer"},
		&cli.StringFlag{Name: "category", Usage: "Category id or name (empty clears it)"},
		&cli.IntFlag{Name: "number", Aliases: []string{"n"}, Usage: "Catalog number for songs, hymn number for hymns"},
		&cli.IntFlag{Name: "year", Usage: "Year written"},
		&cli.StringSliceFlag{Name: "tags", Usage: "Tags (repeatable)"},
		&cli.StringFlag{Name: "english", Usage: "English lyrics of a hymn, verses separated by blank lines"},
		&cli.StringFlag{Name: "localized", Usage: "Localized lyrics of a hymn, verse-aligned with --english"},
		&cli.StringFlag{Name: "sheet-music-url", Usage: "Link to sheet music"},
		&cli.StringFlag{Name: "audio-url", Usage: "Link to a recording"},
		&cli.StringFlag{Name: "video-url", Usage: "Link to a video"},
		&cli.StringFlag{Name: "key", Usage: "Key signature"},
		&cli.StringFlag{Name: "time-signature", Usage: "Time signature"},
		&cli.StringFlag{Name: "tempo", Usage: "Tempo"},
	}
}

func lyricsFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "lyrics", Aliases: []string{"l"}, Usage: "Song lyrics, verses separated by blank lines"},
		&cli.StringFlag{Name: "lyrics-file", Usage: "Read song lyrics from a file"},
	}
}

// setupCommand handles database creation and seeding
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Initialize and seed the catalog database",
		Commands: []*cli.Command{
			{
				Name:  "database",
				Usage: "Create the config file if missing and run migrations",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "rollback",
						Usage: "Revert the most recent migration",
					},
				},
				Action: r.SetupDatabase,
			},
			{
				Name:  "seed",
				Usage: "Import categories and entries from a TOML seed file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "file",
						Aliases: []string{"f"},
						Usage:   "Path to a seed file",
					},
					&cli.BoolFlag{
						Name:  "sample",
						Usage: "Import the bundled sample catalog",
					},
				},
				Action: r.SetupSeed,
			},
		},
	}
}

// entriesCommand handles reading catalog entries
func entriesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "entries",
		Aliases: []string{"songs"},
		Usage:   "List, show and export catalog entries",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List entries visible to a role",
				Flags: append([]cli.Flag{
					roleFlag(""),
					&cli.StringFlag{
						Name:  "category",
						Usage: "Category id or name",
						Value: "all",
					},
					&cli.StringFlag{
						Name:    "query",
						Aliases: []string{"q"},
						Usage:   "Search text or number",
					},
					&cli.StringFlag{
						Name:  "format",
						Usage: "Output format: text, markdown or csv",
						Value: "text",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write the listing to a file",
					},
				}, outputFlags()...),
				Action: r.EntriesList,
			},
			{
				Name:  "show",
				Usage: "Show one entry with its lyrics",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags:  append([]cli.Flag{roleFlag("")}, outputFlags()...),
				Action: r.EntriesShow,
			},
			{
				Name:  "export",
				Usage: "Export every category to its own file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "role",
						Aliases: []string{"r"},
						Usage:   "Role to export as (super_admin, admin or choir_member; guests cannot export)",
						Value:   "choir_member",
					},
					&cli.StringFlag{
						Name:  "format",
						Usage: "Output format: text, markdown or csv",
						Value: "markdown",
					},
					&cli.StringFlag{
						Name:    "dir",
						Aliases: []string{"d"},
						Usage:   "Output directory",
						Value:   "./export",
					},
					&cli.IntFlag{
						Name:    "workers",
						Aliases: []string{"w"},
						Usage:   "Number of categories exported concurrently",
						Value:   4,
					},
				},
				Action: r.EntriesExport,
			},
		},
	}
}

// categoriesCommand handles reading categories
func categoriesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "categories",
		Usage: "Catalog categories",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List selectable categories",
				Flags:  outputFlags(),
				Action: r.CategoriesList,
			},
		},
	}
}

// adminCommand handles curation. Every subcommand acts as --role.
func adminCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "admin",
		Usage: "Curate entries, versions and categories",
		Flags: []cli.Flag{roleFlag("super_admin")},
		Commands: []*cli.Command{
			{
				Name:  "entries",
				Usage: "Create, update, delete or hide entries",
				Commands: []*cli.Command{
					{
						Name:  "add",
						Usage: "Create a song or hymn",
						Flags: append(append([]cli.Flag{
							&cli.StringFlag{
								Name:     "type",
								Aliases:  []string{"t"},
								Usage:    "song or hymn",
								Required: true,
							},
							&cli.StringFlag{
								Name:     "title",
								Usage:    "Title",
								Required: true,
							},
						}, itemFlags()...), lyricsFlags()...),
						Action: r.AdminEntryAdd,
					},
					{
						Name:  "update",
						Usage: "Change the fields given as flags",
						Arguments: []cli.Argument{
							&cli.StringArg{Name: "id"},
						},
						Flags:  append([]cli.Flag{&cli.StringFlag{Name: "title", Usage: "Title"}}, itemFlags()...),
						Action: r.AdminEntryUpdate,
					},
					{
						Name:  "delete",
						Usage: "Delete an entry and its versions",
						Arguments: []cli.Argument{
							&cli.StringArg{Name: "id"},
						},
						Action: r.AdminEntryDelete,
					},
					{
						Name:  "deactivate",
						Usage: "Hide an entry from every listing",
						Arguments: []cli.Argument{
							&cli.StringArg{Name: "id"},
						},
						Flags: []cli.Flag{
							&cli.BoolFlag{
								Name:  "restore",
								Usage: "Make the entry visible again",
							},
						},
						Action: r.AdminEntryDeactivate,
					},
				},
			},
			{
				Name:  "versions",
				Usage: "Manage song lyric versions",
				Commands: []*cli.Command{
					{
						Name:  "add",
						Usage: "Add a lyric version to a song",
						Arguments: []cli.Argument{
							&cli.StringArg{Name: "item-id"},
						},
						Flags: append([]cli.Flag{
							&cli.StringFlag{Name: "title", Usage: "Version title"},
							&cli.StringFlag{Name: "language", Usage: "Language code"},
							&cli.StringFlag{Name: "notes", Usage: "Notes"},
							&cli.BoolFlag{Name: "primary", Usage: "Make this the primary version"},
						}, lyricsFlags()...),
						Action: r.AdminVersionAdd,
					},
					{
						Name:  "primary",
						Usage: "Set the primary version of a song",
						Arguments: []cli.Argument{
							&cli.StringArg{Name: "item-id"},
							&cli.StringArg{Name: "version-id"},
						},
						Action: r.AdminVersionPrimary,
					},
				},
			},
			{
				Name:  "categories",
				Usage: "Create or delete categories",
				Commands: []*cli.Command{
					{
						Name:  "add",
						Usage: "Create a category",
						Arguments: []cli.Argument{
							&cli.StringArg{Name: "name"},
						},
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "description", Aliases: []string{"d"}, Usage: "Description"},
						},
						Action: r.AdminCategoryAdd,
					},
					{
						Name:  "delete",
						Usage: "Delete a category by id or name",
						Arguments: []cli.Argument{
							&cli.StringArg{Name: "category"},
						},
						Action: r.AdminCategoryDelete,
					},
				},
			},
		},
	}
}

// serveCommand runs the HTTP API
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the catalog JSON API",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "host", Usage: "Listen host (overrides server.host)"},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Usage: "Listen port (overrides server.port)"},
		},
		Action: r.Serve,
	}
}

// browseCommand launches the TUI
func browseCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "browse",
		Usage: "Browse the catalog in an interactive terminal UI",
		Flags: []cli.Flag{
			roleFlag(""),
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Where to write logs while the UI owns the terminal",
				Value: "./tmp/choirbook-tui.log",
			},
		},
		Action: r.Browse,
	}
}
