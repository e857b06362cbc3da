package formatter

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jackedtechbro/mbid-to-lidarr/internal/models"
)

// ReportWriter writes the importer's tab-separated run report. Each call
// appends one line and reaches disk immediately; the file is recreated fresh
// for every run.
//
// Row format: mbid<TAB>STATUS<TAB>artist name<TAB>detail, with "-" standing
// in for empty fields. The final line is a SUMMARY row with per-status counts.
type ReportWriter struct {
	f    *os.File
	path string
}

// NewReportWriter truncates and opens the report file, creating parent
// directories as needed.
func NewReportWriter(path string) (*ReportWriter, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create report directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open report file: %w", err)
	}

	return &ReportWriter{f: f, path: path}, nil
}

// Row appends one outcome line.
func (w *ReportWriter) Row(result models.ImportResult) error {
	line := fmt.Sprintf("%s\t%s\t%s\t%s",
		result.MBID, result.Status, orDash(result.ArtistName), orDash(result.Detail))
	if _, err := fmt.Fprintln(w.f, line); err != nil {
		return fmt.Errorf("failed to write report row: %w", err)
	}
	return nil
}

// Summary appends the trailing per-status count line.
func (w *ReportWriter) Summary(stats models.ImportStats) error {
	line := fmt.Sprintf("SUMMARY\tADDED=%d\tEXISTS=%d\tLOOKUP_ERROR=%d\tADD_ERROR=%d\tDRY_RUN=%d",
		stats.Added, stats.Exists, stats.LookupError, stats.AddError, stats.DryRun)
	if _, err := fmt.Fprintln(w.f, line); err != nil {
		return fmt.Errorf("failed to write report summary: %w", err)
	}
	return nil
}

// Path returns the report file's location.
func (w *ReportWriter) Path() string {
	return w.path
}

// Close closes the underlying file.
func (w *ReportWriter) Close() error {
	return w.f.Close()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
