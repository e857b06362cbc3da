package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jackedtechbro/mbid-to-lidarr/internal/shared"
	"github.com/urfave/cli/v3"
)

// Setup creates the config file from the embedded template when missing and
// initializes the history database.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	var config *shared.Config
	if _, err := os.Stat(configPath); err == nil {
		if config, err = shared.LoadConfig(configPath); err != nil {
			r.logger.Warn("failed to load config, using defaults", "error", err)
			config = shared.DefaultConfig()
		}
	} else {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			r.logger.Warn("failed to create config file, using defaults", "error", err)
			config = shared.DefaultConfig()
		} else {
			r.writePlain("✓ Created %s\n", configPath)
			if config, err = shared.LoadConfig(configPath); err != nil {
				r.logger.Warn("failed to load created config, using defaults", "error", err)
				config = shared.DefaultConfig()
			}
		}
	}

	r.logger.Info("initializing history database", "path", config.Database.Path)

	db, err := shared.OpenHistoryDB(config.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize history database: %w", err)
	}
	defer db.Close()

	r.writePlain("✓ History database ready at %s\n", config.Database.Path)

	r.writePlainln("Next steps:")
	r.writePlain("1. Set lidarr.api_key in %s\n", configPath)
	r.writePlain("2. Put artist names in %s (one per line)\n", config.Files.Artists)
	r.writePlain("3. Run 'mbli bulk' to resolve and register them\n")

	return nil
}
