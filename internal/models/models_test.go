package models

import (
	"testing"
	"time"
)

func TestImportStats(t *testing.T) {
	t.Run("Record tallies by status", func(t *testing.T) {
		var stats ImportStats
		for _, status := range []ImportStatus{
			StatusAdded, StatusAdded, StatusExists, StatusLookupError,
			StatusNoResults, StatusAddError, StatusDryRun,
		} {
			stats.Record(status)
		}

		if stats.Added != 2 {
			t.Errorf("expected 2 added, got %d", stats.Added)
		}
		if stats.Exists != 1 {
			t.Errorf("expected 1 exists, got %d", stats.Exists)
		}
		if stats.LookupError != 2 {
			t.Errorf("expected NO_RESULTS to count as lookup error, got %d", stats.LookupError)
		}
		if stats.AddError != 1 {
			t.Errorf("expected 1 add error, got %d", stats.AddError)
		}
		if stats.DryRun != 1 {
			t.Errorf("expected 1 dry run, got %d", stats.DryRun)
		}
		if stats.Total() != 7 {
			t.Errorf("expected total 7, got %d", stats.Total())
		}
	})
}

func TestParseMonitorOption(t *testing.T) {
	tc := []struct {
		name    string
		input   string
		want    MonitorOption
		wantErr bool
	}{
		{name: "all", input: "all", want: MonitorAll},
		{name: "missing", input: "missing", want: MonitorMissing},
		{name: "first", input: "first", want: MonitorFirst},
		{name: "unknown value", input: "sometimes", wantErr: true},
		{name: "empty value", input: "", wantErr: true},
		{name: "case sensitive", input: "All", wantErr: true},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMonitorOption(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error for %q", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestRun(t *testing.T) {
	t.Run("Finish records counts and end time", func(t *testing.T) {
		run := NewRun(RunResolve, "artists.txt", "output/mbids.txt")

		if run.FinishedAt() != nil {
			t.Error("expected unfinished run")
		}
		if run.UpdatedAt() != run.StartedAt() {
			t.Error("expected updated at to fall back to start time")
		}

		run.Finish(10, 8, 2)

		if run.Total() != 10 || run.Succeeded() != 8 || run.Failed() != 2 {
			t.Errorf("unexpected counts: %d/%d/%d", run.Total(), run.Succeeded(), run.Failed())
		}
		if run.FinishedAt() == nil {
			t.Fatal("expected finished run")
		}
		if !run.UpdatedAt().Equal(*run.FinishedAt()) {
			t.Error("expected updated at to match finish time")
		}
	})

	t.Run("Validate rejects unknown kinds", func(t *testing.T) {
		run := NewRun(RunKind("verify"), "", "")
		if err := run.Validate(); err == nil {
			t.Error("expected error for unknown kind")
		}
	})

	t.Run("Validate rejects zero start time", func(t *testing.T) {
		run := NewRun(RunImport, "", "")
		run.SetStartedAt(time.Time{})
		if err := run.Validate(); err == nil {
			t.Error("expected error for zero start time")
		}
	})
}

func TestResolutionValidate(t *testing.T) {
	t.Run("accepts matched artist", func(t *testing.T) {
		res := NewResolution("run-1", ResolvedArtist{
			InputName: "Nirvana",
			MBID:      "5b11f4ce-a62d-471e-81fc-a69a8278c7da",
			Score:     100,
		})
		if err := res.Validate(); err != nil {
			t.Errorf("expected valid resolution, got %v", err)
		}
	})

	t.Run("accepts unmatched artist", func(t *testing.T) {
		res := NewResolution("run-1", ResolvedArtist{InputName: "zxqwv nobody"})
		if err := res.Validate(); err != nil {
			t.Errorf("expected valid resolution, got %v", err)
		}
	})

	t.Run("rejects malformed mbid", func(t *testing.T) {
		res := NewResolution("run-1", ResolvedArtist{InputName: "Nirvana", MBID: "not-a-uuid"})
		if err := res.Validate(); err == nil {
			t.Error("expected error for malformed mbid")
		}
	})

	t.Run("rejects missing run id", func(t *testing.T) {
		res := NewResolution("", ResolvedArtist{InputName: "Nirvana"})
		if err := res.Validate(); err == nil {
			t.Error("expected error for missing run id")
		}
	})
}

func TestImportEventValidate(t *testing.T) {
	t.Run("accepts known status", func(t *testing.T) {
		ev := NewImportEvent("run-1", ImportResult{
			MBID:   "5b11f4ce-a62d-471e-81fc-a69a8278c7da",
			Status: StatusAdded,
		})
		if err := ev.Validate(); err != nil {
			t.Errorf("expected valid event, got %v", err)
		}
	})

	t.Run("rejects unknown status", func(t *testing.T) {
		ev := NewImportEvent("run-1", ImportResult{MBID: "x", Status: ImportStatus("MAYBE")})
		if err := ev.Validate(); err == nil {
			t.Error("expected error for unknown status")
		}
	})

	t.Run("rejects missing mbid", func(t *testing.T) {
		ev := NewImportEvent("run-1", ImportResult{Status: StatusAdded})
		if err := ev.Validate(); err == nil {
			t.Error("expected error for missing mbid")
		}
	})
}
