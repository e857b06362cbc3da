package main

import (
	"context"
	"fmt"

	"github.com/jackedtechbro/mbid-to-lidarr/internal/formatter"
	"github.com/jackedtechbro/mbid-to-lidarr/internal/models"
	"github.com/jackedtechbro/mbid-to-lidarr/internal/services"
	"github.com/jackedtechbro/mbid-to-lidarr/internal/shared"
	"github.com/jackedtechbro/mbid-to-lidarr/internal/tasks"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/urfave/cli/v3"
)

// lidarrService returns the shared Lidarr client, or a new one when flags
// override the configured URL or key.
func (r *Runner) lidarrService(cmd *cli.Command) (*services.LidarrService, error) {
	cfg := r.config.Lidarr
	if v := cmd.String("lidarr-url"); v != "" {
		cfg.URL = v
	}
	if v := cmd.String("api-key"); v != "" {
		cfg.APIKey = v
	}

	if r.lidarr != nil && cfg == r.config.Lidarr {
		return r.lidarr, nil
	}

	svc, err := services.NewLidarrService(cfg, r.httpClient)
	if err != nil {
		return nil, fmt.Errorf("%w (set lidarr.api_key in config.toml or pass --api-key)", err)
	}
	return svc, nil
}

// readMBIDs loads an identifier file, dropping lines that are not UUIDs.
func (r *Runner) readMBIDs(path string) ([]string, error) {
	lines, err := formatter.ReadMBIDFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read MBID file: %w", err)
	}

	mbids := make([]string, 0, len(lines))
	for _, line := range lines {
		if !shared.IsMBID(line) {
			r.logger.Warnf("skipping non-MBID line %q", line)
			continue
		}
		mbids = append(mbids, line)
	}
	return mbids, nil
}

// importOpts builds engine options from the shared add/bulk flag surface.
// The limit flag is intentionally left out; its meaning differs per command.
func (r *Runner) importOpts(cmd *cli.Command) (tasks.ImportOpts, error) {
	opts := tasks.ImportOpts{
		RootFolder:        cmd.String("root"),
		QualityProfileID:  cmd.Int("quality-profile-id"),
		MetadataProfileID: cmd.Int("metadata-profile-id"),
		SearchMissing:     cmd.Bool("search-missing"),
		DryRun:            cmd.Bool("dry-run"),
	}

	// Zero ids make the engine auto-detect from the server's profile lists.
	if cmd.Bool("use-default-profiles") {
		opts.QualityProfileID = 0
		opts.MetadataProfileID = 0
	}

	if v := cmd.String("monitor"); v != "" {
		monitor, err := models.ParseMonitorOption(v)
		if err != nil {
			return opts, fmt.Errorf("%w: %v", shared.ErrInvalidFlag, err)
		}
		opts.Monitor = monitor
	}

	return opts, nil
}

// LidarrAdd registers the MBIDs from an identifier file as monitored artists.
func (r *Runner) LidarrAdd(ctx context.Context, cmd *cli.Command) error {
	lidarr, err := r.lidarrService(cmd)
	if err != nil {
		return err
	}

	inputPath := cmd.String("input")
	mbids, err := r.readMBIDs(inputPath)
	if err != nil {
		return err
	}
	if len(mbids) == 0 {
		return r.writePlain("No MBIDs found in input file.\n")
	}

	opts, err := r.importOpts(cmd)
	if err != nil {
		return err
	}
	opts.Limit = cmd.Int("limit")

	return r.runImport(ctx, lidarr, mbids, inputPath, cmd.String("report"), opts)
}

// runImport drives the import engine against an open report writer, printing
// progress lines and a final summary table.
func (r *Runner) runImport(ctx context.Context, lidarr *services.LidarrService, mbids []string, inputPath, reportPath string, opts tasks.ImportOpts) error {
	report, err := formatter.NewReportWriter(reportPath)
	if err != nil {
		return fmt.Errorf("failed to open report file: %w", err)
	}
	defer report.Close()

	run := r.startRun(models.RunImport, inputPath, reportPath)
	if run != nil {
		opts.RunID = run.ID()
	}

	progress := make(chan tasks.ProgressUpdate, 50)
	drain := r.printProgress(progress)

	engine := tasks.NewImportEngine(lidarr, r.recorder())
	result, runErr := engine.Run(ctx, progress, mbids, report, opts)
	drain()

	if result != nil {
		succeeded := result.Stats.Added + result.Stats.Exists + result.Stats.DryRun
		failed := result.Stats.LookupError + result.Stats.AddError
		r.finishRun(run, result.Stats.Total(), succeeded, failed)
		r.printImportSummary(result, report.Path())
	}

	return runErr
}

func (r *Runner) printImportSummary(result *tasks.ImportRunResult, reportPath string) {
	r.writePlainHeader("Import Summary")

	t := table.NewWriter()
	t.AppendHeader(table.Row{"Status", "Count"})
	t.AppendRows([]table.Row{
		{"Added", result.Stats.Added},
		{"Already present", result.Stats.Exists},
		{"Lookup failures", result.Stats.LookupError},
		{"Add failures", result.Stats.AddError},
	})
	if result.Stats.DryRun > 0 {
		t.AppendRow(table.Row{"Dry run", result.Stats.DryRun})
	}
	t.AppendFooter(table.Row{"Total", result.Stats.Total()})
	r.renderTable(t)

	r.writePlain("Profiles: quality %d, metadata %d\n", result.QualityProfileID, result.MetadataProfileID)
	r.writePlain("Report written to %s\n", reportPath)
}

// LidarrStatus checks connectivity and prints the server identity.
func (r *Runner) LidarrStatus(ctx context.Context, cmd *cli.Command) error {
	lidarr, err := r.lidarrService(cmd)
	if err != nil {
		return err
	}

	status, err := lidarr.SystemStatus(ctx)
	if err != nil {
		return fmt.Errorf("lidarr is unreachable: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(status, cmd.Bool("pretty"))
	}

	return r.writePlain("✓ Connected to %s %s\n", status.AppName, status.Version)
}
