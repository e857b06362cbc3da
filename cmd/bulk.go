package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackedtechbro/mbid-to-lidarr/internal/formatter"
	"github.com/jackedtechbro/mbid-to-lidarr/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Bulk resolves artist names and immediately registers the results in Lidarr.
func (r *Runner) Bulk(ctx context.Context, cmd *cli.Command) error {
	// Validate the Lidarr side first so a misconfigured run fails before
	// spending any MusicBrainz requests.
	lidarr, err := r.lidarrService(cmd)
	if err != nil {
		return err
	}
	importOpts, err := r.importOpts(cmd)
	if err != nil {
		return err
	}

	inputPath := cmd.StringArg("input")
	if inputPath == "" {
		inputPath = r.config.Files.Artists
	}

	names, err := formatter.ReadArtistFile(inputPath)
	if err != nil {
		return fmt.Errorf("failed to read artist list: %w", err)
	}
	if len(names) == 0 {
		return r.writePlain("No artist names found in %s.\n", inputPath)
	}

	mbidsPath := cmd.String("output")
	resolveOpts := tasks.ResolveOpts{
		MinScore: cmd.Int("min-score"),
		Limit:    cmd.Int("limit"),
	}

	_, err = r.runResolve(ctx, r.musicbrainzService(cmd), names, inputPath, mbidsPath, false, resolveOpts)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	if err != nil {
		return err
	}

	mbids, err := r.readMBIDs(mbidsPath)
	if err != nil {
		return err
	}
	if len(mbids) == 0 {
		return r.writePlain("No MBIDs found in input file.\n")
	}

	return r.runImport(ctx, lidarr, mbids, mbidsPath, cmd.String("report"), importOpts)
}
