package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackedtechbro/mbid-to-lidarr/internal/formatter"
	"github.com/jackedtechbro/mbid-to-lidarr/internal/models"
	"github.com/jackedtechbro/mbid-to-lidarr/internal/services"
	"github.com/jackedtechbro/mbid-to-lidarr/internal/tasks"
	"github.com/urfave/cli/v3"
)

// musicbrainzService returns the shared MusicBrainz client, or a new one when
// flags change its pacing.
func (r *Runner) musicbrainzService(cmd *cli.Command) *services.MusicBrainzService {
	cfg := r.config.MusicBrainz
	cfg.Interval = cmd.Float("interval")

	if r.musicbrainz != nil && cfg == r.config.MusicBrainz {
		return r.musicbrainz
	}
	return services.NewMusicBrainzService(cfg, r.httpClient)
}

// Resolve maps artist names from a text file to MusicBrainz IDs.
func (r *Runner) Resolve(ctx context.Context, cmd *cli.Command) error {
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

	opts := tasks.ResolveOpts{
		MinScore: cmd.Int("min-score"),
		Limit:    cmd.Int("limit"),
	}

	_, err = r.runResolve(ctx, r.musicbrainzService(cmd), names, inputPath, cmd.String("output"), cmd.Bool("append"), opts)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// runResolve drives the resolve engine against an open MBID writer, printing
// progress lines and recording the run when history is available.
func (r *Runner) runResolve(ctx context.Context, mb *services.MusicBrainzService, names []string, inputPath, outputPath string, resume bool, opts tasks.ResolveOpts) (*tasks.ResolveResult, error) {
	writer, err := formatter.NewMBIDWriter(outputPath, resume)
	if err != nil {
		return nil, fmt.Errorf("failed to open output file: %w", err)
	}
	defer writer.Close()

	run := r.startRun(models.RunResolve, inputPath, outputPath)
	if run != nil {
		opts.RunID = run.ID()
	}

	progress := make(chan tasks.ProgressUpdate, 50)
	drain := r.printProgress(progress)

	engine := tasks.NewResolveEngine(mb, r.recorder())
	result, runErr := engine.Run(ctx, progress, names, writer, opts)
	drain()

	if result != nil {
		r.finishRun(run, len(result.Artists), result.Matched, result.Unmatched)
	}

	if errors.Is(runErr, context.Canceled) {
		r.writePlain("\nInterrupted. Progress saved to output file.\n")
	}

	return result, runErr
}
