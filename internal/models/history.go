package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RunKind identifies which pipeline stage a run executed.
type RunKind string

const (
	RunResolve RunKind = "resolve"
	RunImport  RunKind = "import"
	RunExport  RunKind = "export"
)

// Valid reports whether the kind is one of the known pipeline stages.
func (k RunKind) Valid() bool {
	switch k {
	case RunResolve, RunImport, RunExport:
		return true
	}
	return false
}

// Run records one pipeline invocation. A run is created when a stage starts
// and finalized with its counts when the stage ends.
type Run struct {
	id         string
	kind       RunKind
	inputPath  string
	outputPath string
	total      int
	succeeded  int
	failed     int
	startedAt  time.Time
	finishedAt *time.Time
}

// NewRun creates a Run for the given stage, started now.
func NewRun(kind RunKind, inputPath, outputPath string) *Run {
	return &Run{
		kind:       kind,
		inputPath:  inputPath,
		outputPath: outputPath,
		startedAt:  time.Now(),
	}
}

func (r *Run) ID() string          { return r.id }
func (r *Run) Kind() RunKind       { return r.kind }
func (r *Run) InputPath() string   { return r.inputPath }
func (r *Run) OutputPath() string  { return r.outputPath }
func (r *Run) Total() int          { return r.total }
func (r *Run) Succeeded() int      { return r.succeeded }
func (r *Run) Failed() int         { return r.failed }
func (r *Run) StartedAt() time.Time { return r.startedAt }

// FinishedAt returns when the run ended, or nil while it is in flight.
func (r *Run) FinishedAt() *time.Time { return r.finishedAt }

// CreatedAt returns the run's start time.
func (r *Run) CreatedAt() time.Time { return r.startedAt }

// UpdatedAt returns the run's end time, falling back to the start time for
// unfinished runs.
func (r *Run) UpdatedAt() time.Time {
	if r.finishedAt != nil {
		return *r.finishedAt
	}
	return r.startedAt
}

// Finish records final counts and stamps the end time.
func (r *Run) Finish(total, succeeded, failed int) {
	now := time.Now()
	r.total = total
	r.succeeded = succeeded
	r.failed = failed
	r.finishedAt = &now
}

func (r *Run) SetID(id string)              { r.id = id }
func (r *Run) SetStartedAt(t time.Time)     { r.startedAt = t }
func (r *Run) SetFinishedAt(t *time.Time)   { r.finishedAt = t }
func (r *Run) SetCounts(total, ok, bad int) { r.total, r.succeeded, r.failed = total, ok, bad }

// Validate checks that the run has a known kind and a start time.
func (r *Run) Validate() error {
	if !r.kind.Valid() {
		return fmt.Errorf("invalid run kind %q", r.kind)
	}
	if r.startedAt.IsZero() {
		return fmt.Errorf("run start time not set")
	}
	return nil
}

// Resolution is one persisted artist resolution attempt.
type Resolution struct {
	id        string
	runID     string
	artist    ResolvedArtist
	createdAt time.Time
}

// NewResolution creates a Resolution belonging to the given run.
func NewResolution(runID string, artist ResolvedArtist) *Resolution {
	return &Resolution{
		runID:     runID,
		artist:    artist,
		createdAt: time.Now(),
	}
}

func (r *Resolution) ID() string             { return r.id }
func (r *Resolution) RunID() string          { return r.runID }
func (r *Resolution) Artist() ResolvedArtist { return r.artist }
func (r *Resolution) CreatedAt() time.Time   { return r.createdAt }

// UpdatedAt matches CreatedAt; resolution rows are never modified.
func (r *Resolution) UpdatedAt() time.Time { return r.createdAt }

func (r *Resolution) SetID(id string)          { r.id = id }
func (r *Resolution) SetCreatedAt(t time.Time) { r.createdAt = t }

// Validate checks that the resolution names its input and carries a
// well-formed identifier when matched.
func (r *Resolution) Validate() error {
	if r.runID == "" {
		return fmt.Errorf("resolution missing run id")
	}
	if r.artist.InputName == "" {
		return fmt.Errorf("resolution missing input name")
	}
	if r.artist.MBID != "" {
		if _, err := uuid.Parse(r.artist.MBID); err != nil {
			return fmt.Errorf("malformed mbid %q: %w", r.artist.MBID, err)
		}
	}
	return nil
}

// ImportEvent is one persisted importer outcome.
type ImportEvent struct {
	id        string
	runID     string
	result    ImportResult
	createdAt time.Time
}

// NewImportEvent creates an ImportEvent belonging to the given run.
func NewImportEvent(runID string, result ImportResult) *ImportEvent {
	return &ImportEvent{
		runID:     runID,
		result:    result,
		createdAt: time.Now(),
	}
}

func (e *ImportEvent) ID() string           { return e.id }
func (e *ImportEvent) RunID() string        { return e.runID }
func (e *ImportEvent) Result() ImportResult { return e.result }
func (e *ImportEvent) CreatedAt() time.Time { return e.createdAt }

// UpdatedAt matches CreatedAt; import events are never modified.
func (e *ImportEvent) UpdatedAt() time.Time { return e.createdAt }

func (e *ImportEvent) SetID(id string)          { e.id = id }
func (e *ImportEvent) SetCreatedAt(t time.Time) { e.createdAt = t }

// Validate checks that the event names its run, target, and a known status.
func (e *ImportEvent) Validate() error {
	if e.runID == "" {
		return fmt.Errorf("import event missing run id")
	}
	if e.result.MBID == "" {
		return fmt.Errorf("import event missing mbid")
	}
	if !e.result.Status.Valid() {
		return fmt.Errorf("invalid import status %q", e.result.Status)
	}
	return nil
}
