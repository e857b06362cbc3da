// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// resolveCommand maps artist names to MusicBrainz IDs
func resolveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "resolve",
		Usage: "Resolve artist names to MusicBrainz IDs",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "input",
			},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output file for resolved MBIDs",
				Value:   r.config.Files.MBIDs,
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of artists to process",
			},
			&cli.BoolFlag{
				Name:  "append",
				Usage: "Append to the output file, skipping MBIDs already in it",
			},
			&cli.FloatFlag{
				Name:  "interval",
				Usage: "Seconds to wait between MusicBrainz requests",
				Value: r.config.MusicBrainz.Interval,
			},
			&cli.IntFlag{
				Name:  "min-score",
				Usage: "Minimum search score (0-100) to accept a match",
				Value: r.config.MusicBrainz.MinScore,
			},
		},
		Action: r.Resolve,
	}
}

// lidarrCommand handles Lidarr operations
func lidarrCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "lidarr",
		Usage: "Lidarr library operations",
		Commands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Add artists from an MBID list to Lidarr",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
					&cli.StringFlag{
						Name:    "input",
						Aliases: []string{"i"},
						Usage:   "Path to the MBID list file",
						Value:   r.config.Files.MBIDs,
					},
					&cli.StringFlag{
						Name:  "root",
						Usage: "Root folder path for new artists",
						Value: r.config.Lidarr.RootFolder,
					},
					&cli.IntFlag{
						Name:  "quality-profile-id",
						Usage: "Quality profile ID for new artists",
						Value: r.config.Lidarr.QualityProfileID,
					},
					&cli.IntFlag{
						Name:  "metadata-profile-id",
						Usage: "Metadata profile ID for new artists",
						Value: r.config.Lidarr.MetadataProfileID,
					},
					&cli.BoolFlag{
						Name:  "use-default-profiles",
						Usage: "Pick the first quality and metadata profiles from the server",
					},
					&cli.StringFlag{
						Name:  "monitor",
						Usage: "Monitor option: all, missing, existing, none, future, latest, first",
						Value: r.config.Lidarr.Monitor,
					},
					&cli.BoolFlag{
						Name:  "search-missing",
						Usage: "Trigger a search for missing albums after adding",
						Value: r.config.Lidarr.SearchMissing,
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of MBIDs to process",
					},
					&cli.BoolFlag{
						Name:  "dry-run",
						Usage: "Show what would be added without calling Lidarr",
					},
					&cli.StringFlag{
						Name:  "report",
						Usage: "Output file for the import report",
						Value: r.config.Files.Report,
					},
					&cli.StringFlag{
						Name:  "lidarr-url",
						Usage: "Lidarr base URL (overrides config)",
					},
					&cli.StringFlag{
						Name:  "api-key",
						Usage: "Lidarr API key (overrides config)",
					},
				},
				Action: r.LidarrAdd,
			},
			{
				Name:  "status",
				Usage: "Check Lidarr connectivity",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
					&cli.StringFlag{
						Name:  "lidarr-url",
						Usage: "Lidarr base URL (overrides config)",
					},
					&cli.StringFlag{
						Name:  "api-key",
						Usage: "Lidarr API key (overrides config)",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.LidarrStatus,
			},
		},
	}
}

// bulkCommand chains resolution and Lidarr import in one invocation
func bulkCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "bulk",
		Usage: "Resolve artist names and register them in Lidarr in one pass",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "input",
			},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output file for resolved MBIDs",
				Value:   r.config.Files.MBIDs,
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of artists to resolve",
			},
			&cli.FloatFlag{
				Name:  "interval",
				Usage: "Seconds to wait between MusicBrainz requests",
				Value: r.config.MusicBrainz.Interval,
			},
			&cli.IntFlag{
				Name:  "min-score",
				Usage: "Minimum search score (0-100) to accept a match",
				Value: r.config.MusicBrainz.MinScore,
			},
			&cli.StringFlag{
				Name:  "root",
				Usage: "Root folder path for new artists",
				Value: r.config.Lidarr.RootFolder,
			},
			&cli.IntFlag{
				Name:  "quality-profile-id",
				Usage: "Quality profile ID for new artists",
				Value: r.config.Lidarr.QualityProfileID,
			},
			&cli.IntFlag{
				Name:  "metadata-profile-id",
				Usage: "Metadata profile ID for new artists",
				Value: r.config.Lidarr.MetadataProfileID,
			},
			&cli.BoolFlag{
				Name:  "use-default-profiles",
				Usage: "Pick the first quality and metadata profiles from the server",
			},
			&cli.StringFlag{
				Name:  "monitor",
				Usage: "Monitor option: all, missing, existing, none, future, latest, first",
				Value: r.config.Lidarr.Monitor,
			},
			&cli.BoolFlag{
				Name:  "search-missing",
				Usage: "Trigger a search for missing albums after adding",
				Value: r.config.Lidarr.SearchMissing,
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Show what would be added without calling Lidarr",
			},
			&cli.StringFlag{
				Name:  "report",
				Usage: "Output file for the import report",
				Value: r.config.Files.Report,
			},
			&cli.StringFlag{
				Name:  "lidarr-url",
				Usage: "Lidarr base URL (overrides config)",
			},
			&cli.StringFlag{
				Name:  "api-key",
				Usage: "Lidarr API key (overrides config)",
			},
		},
		Action: r.Bulk,
	}
}

// spotifyCommand handles Spotify operations
func spotifyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "spotify",
		Aliases: []string{"spot"},
		Usage:   "Spotify library operations",
		Commands: []*cli.Command{
			{
				Name:  "auth",
				Usage: "Authenticate with Spotify using OAuth2",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.SpotifyAuth,
			},
			{
				Name:  "export",
				Usage: "Export followed and saved-album artists to a list file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file for artist names",
						Value:   r.config.Files.Artists,
					},
					&cli.BoolFlag{
						Name:  "skip-albums",
						Usage: "Only collect followed artists, skip saved albums",
					},
					&cli.BoolFlag{
						Name:  "dry-run",
						Usage: "Count artists and albums without writing the file",
					},
				},
				Action: r.SpotifyExport,
			},
		},
	}
}

// historyCommand inspects recorded runs
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Show past resolve and import runs",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
			&cli.StringFlag{
				Name:  "run",
				Usage: "Show details for a single run ID",
			},
			&cli.StringFlag{
				Name:  "kind",
				Usage: "Filter runs by kind: resolve, import, export",
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of runs to list",
				Value: 20,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
				Value: true,
			},
		},
		Action: r.History,
	}
}
