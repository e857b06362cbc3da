package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackedtechbro/mbid-to-lidarr/internal/repositories"
	"github.com/jackedtechbro/mbid-to-lidarr/internal/services"
	"github.com/jackedtechbro/mbid-to-lidarr/internal/shared"
	"github.com/urfave/cli/v3"
)

const defaultConfigPath = "config.toml"

func main() {
	logger := shared.NewLogger(nil)

	if err := shared.LoadDotenv(""); err != nil {
		logger.Warnf("failed to load .env file: %v", err)
	}

	config := shared.DefaultConfig()
	if _, err := os.Stat(defaultConfigPath); err == nil {
		loaded, err := shared.LoadConfig(defaultConfigPath)
		if err != nil {
			logger.Warnf("failed to load %s, using defaults: %v", defaultConfigPath, err)
		} else {
			config = loaded
		}
	}

	if err := config.ApplyEnv(); err != nil {
		logger.Fatalf("invalid environment override: %v", err)
	}

	musicbrainz := services.NewMusicBrainzService(config.MusicBrainz, nil)

	var lidarr *services.LidarrService
	if config.Lidarr.APIKey != "" {
		lidarr, _ = services.NewLidarrService(config.Lidarr, nil)
	}

	var spotify *services.SpotifyService
	if config.Credentials.Spotify.ClientID != "" && config.Credentials.Spotify.ClientSecret != "" {
		spotify, _ = services.NewSpotifyService(config.Credentials.Spotify)
	}

	// History is optional until `mbli setup` creates the database.
	var history *repositories.HistoryRepository
	if _, err := os.Stat(config.Database.Path); err == nil {
		db, err := shared.OpenHistoryDB(config.Database)
		if err != nil {
			logger.Warnf("failed to open history database: %v", err)
		} else {
			defer db.Close()
			history = repositories.NewHistoryRepository(db)
		}
	}

	runner := NewRunner(RunnerOpts{
		Config:      config,
		ConfigPath:  defaultConfigPath,
		MusicBrainz: musicbrainz,
		Lidarr:      lidarr,
		Spotify:     spotify,
		History:     history,
		Logger:      logger,
	})

	app := &cli.Command{
		Name:     "mbli",
		Usage:    "Resolve artist names to MusicBrainz IDs and register them in Lidarr",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	// Ctrl+C cancels the context so in-flight batches finish their current
	// request and flush output before exiting.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, os.Args); err != nil {
		logger.Fatalf("application error: %v", err)
	}
}

func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create the config file and initialize the history database",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
		},
		Action: r.Setup,
	}
}
