package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/jackedtechbro/mbid-to-lidarr/internal/models"
	"github.com/jackedtechbro/mbid-to-lidarr/internal/shared"
)

// rowScanner is satisfied by both *sql.Row and *sql.Rows, letting the scan
// helpers serve single-row and multi-row queries alike.
type rowScanner interface {
	Scan(dest ...any) error
}

// RunRepository implements models.Repository[*models.Run] for pipeline runs.
//
// Runs are created when a stage starts and finalized in place when it ends;
// they are never deleted.
type RunRepository struct {
	db *sql.DB
}

// NewRunRepository creates a new RunRepository with the given database connection
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Create inserts a new run into the database with a generated ID
func (r *RunRepository) Create(run *models.Run) error {
	run.SetID(shared.GenerateID())

	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO runs (id, kind, input_path, output_path, total, succeeded, failed, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query,
		run.ID(),
		string(run.Kind()),
		run.InputPath(),
		run.OutputPath(),
		run.Total(),
		run.Succeeded(),
		run.Failed(),
		run.StartedAt(),
		run.FinishedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	return nil
}

// Finish persists the run's final counts and end time
func (r *RunRepository) Finish(run *models.Run) error {
	query := `
		UPDATE runs
		SET total = ?, succeeded = ?, failed = ?, finished_at = ?
		WHERE id = ?
	`

	result, err := r.db.Exec(query,
		run.Total(),
		run.Succeeded(),
		run.Failed(),
		run.FinishedAt(),
		run.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to finalize run: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("run not found: %s", run.ID())
	}

	return nil
}

// Get retrieves a run by ID
func (r *RunRepository) Get(id string) (*models.Run, error) {
	query := `
		SELECT id, kind, input_path, output_path, total, succeeded, failed, started_at, finished_at
		FROM runs
		WHERE id = ?
	`

	return scanRun(r.db.QueryRow(query, id))
}

// List retrieves runs matching the given criteria, most recent first
func (r *RunRepository) List(criteria map[string]any) ([]*models.Run, error) {
	query := `
		SELECT id, kind, input_path, output_path, total, succeeded, failed, started_at, finished_at
		FROM runs
	`

	args := []any{}

	if kind, ok := criteria["kind"].(string); ok && kind != "" {
		query += " WHERE kind = ?"
		args = append(args, kind)
	}

	query += " ORDER BY started_at DESC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return runs, nil
}

// scanRun scans a row into a [models.Run]
func scanRun(row rowScanner) (*models.Run, error) {
	var (
		id         string
		kind       string
		inputPath  string
		outputPath string
		total      int
		succeeded  int
		failed     int
		startedAt  time.Time
		finishedAt sql.NullTime
	)

	err := row.Scan(&id, &kind, &inputPath, &outputPath, &total, &succeeded, &failed, &startedAt, &finishedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}

	run := models.NewRun(models.RunKind(kind), inputPath, outputPath)
	run.SetID(id)
	run.SetStartedAt(startedAt)
	run.SetCounts(total, succeeded, failed)
	if finishedAt.Valid {
		run.SetFinishedAt(&finishedAt.Time)
	}

	return run, nil
}
