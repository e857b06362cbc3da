// package repositories provides the persistence layer for the history store.
//
// Each repository implements models.Repository[T] for one entity type. The
// history tables are append-only: rows are inserted as a run progresses and
// never modified afterward, except for the final counts stamped onto a run
// when it ends.
package repositories

import (
	"database/sql"

	"github.com/jackedtechbro/mbid-to-lidarr/internal/models"
)

// HistoryRepository bundles the entity repositories behind the small
// recording surface the engines and the history command use.
type HistoryRepository struct {
	Runs        *RunRepository
	Resolutions *ResolutionRepository
	Events      *ImportEventRepository
}

// NewHistoryRepository creates repositories sharing the given connection.
func NewHistoryRepository(db *sql.DB) *HistoryRepository {
	return &HistoryRepository{
		Runs:        NewRunRepository(db),
		Resolutions: NewResolutionRepository(db),
		Events:      NewImportEventRepository(db),
	}
}

// StartRun persists a new run for the given stage and returns it.
func (h *HistoryRepository) StartRun(kind models.RunKind, inputPath, outputPath string) (*models.Run, error) {
	run := models.NewRun(kind, inputPath, outputPath)
	if err := h.Runs.Create(run); err != nil {
		return nil, err
	}
	return run, nil
}

// FinishRun stamps final counts onto the run and persists them.
func (h *HistoryRepository) FinishRun(run *models.Run, total, succeeded, failed int) error {
	run.Finish(total, succeeded, failed)
	return h.Runs.Finish(run)
}

// RecordResolution appends one resolver outcome to the run.
func (h *HistoryRepository) RecordResolution(runID string, artist models.ResolvedArtist) error {
	return h.Resolutions.Create(models.NewResolution(runID, artist))
}

// RecordImport appends one importer outcome to the run.
func (h *HistoryRepository) RecordImport(runID string, result models.ImportResult) error {
	return h.Events.Create(models.NewImportEvent(runID, result))
}
