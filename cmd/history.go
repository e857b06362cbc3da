package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jackedtechbro/mbid-to-lidarr/internal/models"
	"github.com/jackedtechbro/mbid-to-lidarr/internal/repositories"
	"github.com/jackedtechbro/mbid-to-lidarr/internal/shared"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/urfave/cli/v3"
)

// runRow flattens a run for JSON output; models.Run keeps its fields private.
type runRow struct {
	ID         string     `json:"id"`
	Kind       string     `json:"kind"`
	InputPath  string     `json:"input_path"`
	OutputPath string     `json:"output_path"`
	Total      int        `json:"total"`
	Succeeded  int        `json:"succeeded"`
	Failed     int        `json:"failed"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

func newRunRow(run *models.Run) runRow {
	return runRow{
		ID:         run.ID(),
		Kind:       string(run.Kind()),
		InputPath:  run.InputPath(),
		OutputPath: run.OutputPath(),
		Total:      run.Total(),
		Succeeded:  run.Succeeded(),
		Failed:     run.Failed(),
		StartedAt:  run.StartedAt(),
		FinishedAt: run.FinishedAt(),
	}
}

func runDuration(run *models.Run) string {
	finished := run.FinishedAt()
	if finished == nil {
		return "-"
	}
	return finished.Sub(run.StartedAt()).Round(time.Second).String()
}

// History lists recorded runs, or one run's rows with --run.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	history := r.history
	if history == nil {
		if _, err := os.Stat(r.config.Database.Path); err != nil {
			return fmt.Errorf("%w: no history database at %s (run mbli setup first)", shared.ErrMissingConfig, r.config.Database.Path)
		}
		db, err := shared.OpenHistoryDB(r.config.Database)
		if err != nil {
			return fmt.Errorf("failed to open history database: %w", err)
		}
		defer db.Close()
		history = repositories.NewHistoryRepository(db)
	}

	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")

	if runID := cmd.String("run"); runID != "" {
		return r.historyRun(history, runID, useJSON, pretty)
	}

	criteria := map[string]any{"limit": cmd.Int("limit")}
	if kind := cmd.String("kind"); kind != "" {
		criteria["kind"] = kind
	}

	runs, err := history.Runs.List(criteria)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}
	if len(runs) == 0 {
		return r.writePlain("No recorded runs.\n")
	}

	if useJSON {
		rows := make([]runRow, 0, len(runs))
		for _, run := range runs {
			rows = append(rows, newRunRow(run))
		}
		return r.writeJSON(rows, pretty)
	}

	t := table.NewWriter()
	t.AppendHeader(table.Row{"ID", "Kind", "Started", "Duration", "Total", "OK", "Failed"})
	for _, run := range runs {
		t.AppendRow(table.Row{
			run.ID(), run.Kind(), run.StartedAt().Format(time.DateTime),
			runDuration(run), run.Total(), run.Succeeded(), run.Failed(),
		})
	}
	r.renderTable(t)
	return nil
}

// historyRun prints one run's header line plus its per-item rows.
func (r *Runner) historyRun(history *repositories.HistoryRepository, runID string, useJSON, pretty bool) error {
	run, err := history.Runs.Get(runID)
	if err != nil {
		return fmt.Errorf("failed to load run %s: %w", runID, err)
	}

	switch run.Kind() {
	case models.RunResolve:
		resolutions, err := history.Resolutions.List(map[string]any{"run_id": runID})
		if err != nil {
			return fmt.Errorf("failed to list resolutions: %w", err)
		}

		if useJSON {
			artists := make([]models.ResolvedArtist, 0, len(resolutions))
			for _, res := range resolutions {
				artists = append(artists, res.Artist())
			}
			return r.writeJSON(map[string]any{"run": newRunRow(run), "resolutions": artists}, pretty)
		}

		r.writePlain("Run %s (%s) started %s\n", run.ID(), run.Kind(), run.StartedAt().Format(time.DateTime))
		t := table.NewWriter()
		t.AppendHeader(table.Row{"Input", "MBID", "Matched", "Score"})
		for _, res := range resolutions {
			artist := res.Artist()
			mbid := artist.MBID
			if mbid == "" {
				mbid = "-"
			}
			t.AppendRow(table.Row{artist.InputName, mbid, artist.MatchedName, artist.Score})
		}
		r.renderTable(t)
		return nil

	case models.RunImport:
		events, err := history.Events.List(map[string]any{"run_id": runID})
		if err != nil {
			return fmt.Errorf("failed to list import events: %w", err)
		}

		if useJSON {
			results := make([]models.ImportResult, 0, len(events))
			for _, event := range events {
				results = append(results, event.Result())
			}
			return r.writeJSON(map[string]any{"run": newRunRow(run), "events": results}, pretty)
		}

		r.writePlain("Run %s (%s) started %s\n", run.ID(), run.Kind(), run.StartedAt().Format(time.DateTime))
		t := table.NewWriter()
		t.AppendHeader(table.Row{"MBID", "Status", "Artist", "Detail"})
		for _, event := range events {
			result := event.Result()
			t.AppendRow(table.Row{result.MBID, result.Status, result.ArtistName, result.Detail})
		}
		r.renderTable(t)
		return nil

	default:
		if useJSON {
			return r.writeJSON(newRunRow(run), pretty)
		}
		r.writePlain("Run %s (%s) started %s\n", run.ID(), run.Kind(), run.StartedAt().Format(time.DateTime))
		r.writePlain("Total: %d, Succeeded: %d, Failed: %d\n", run.Total(), run.Succeeded(), run.Failed())
		return nil
	}
}
