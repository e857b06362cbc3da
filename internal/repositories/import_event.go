package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/jackedtechbro/mbid-to-lidarr/internal/models"
	"github.com/jackedtechbro/mbid-to-lidarr/internal/shared"
)

// ImportEventRepository implements models.Repository[*models.ImportEvent]
// for persisted importer outcomes.
type ImportEventRepository struct {
	db *sql.DB
}

// NewImportEventRepository creates a new ImportEventRepository with the given database connection
func NewImportEventRepository(db *sql.DB) *ImportEventRepository {
	return &ImportEventRepository{db: db}
}

// Create inserts a new import event into the database with a generated ID
func (r *ImportEventRepository) Create(event *models.ImportEvent) error {
	event.SetID(shared.GenerateID())

	if err := event.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO import_events (id, run_id, mbid, status, artist_name, detail, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result := event.Result()
	_, err := r.db.Exec(query,
		event.ID(),
		event.RunID(),
		result.MBID,
		string(result.Status),
		result.ArtistName,
		result.Detail,
		event.CreatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert import event: %w", err)
	}

	return nil
}

// Get retrieves an import event by ID
func (r *ImportEventRepository) Get(id string) (*models.ImportEvent, error) {
	query := `
		SELECT id, run_id, mbid, status, artist_name, detail, created_at
		FROM import_events
		WHERE id = ?
	`

	return scanImportEvent(r.db.QueryRow(query, id))
}

// List retrieves import events matching the given criteria in insertion order
func (r *ImportEventRepository) List(criteria map[string]any) ([]*models.ImportEvent, error) {
	query := `
		SELECT id, run_id, mbid, status, artist_name, detail, created_at
		FROM import_events
	`

	conditions := []string{}
	args := []any{}

	if runID, ok := criteria["run_id"].(string); ok && runID != "" {
		conditions = append(conditions, "run_id = ?")
		args = append(args, runID)
	}

	if status, ok := criteria["status"].(string); ok && status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, status)
	}

	for i, cond := range conditions {
		if i == 0 {
			query += " WHERE " + cond
		} else {
			query += " AND " + cond
		}
	}

	query += " ORDER BY created_at ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query import events: %w", err)
	}
	defer rows.Close()

	var events []*models.ImportEvent
	for rows.Next() {
		event, err := scanImportEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return events, nil
}

// scanImportEvent scans a row into a [models.ImportEvent]
func scanImportEvent(row rowScanner) (*models.ImportEvent, error) {
	var (
		id         string
		runID      string
		mbid       string
		status     string
		artistName string
		detail     string
		createdAt  time.Time
	)

	err := row.Scan(&id, &runID, &mbid, &status, &artistName, &detail, &createdAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("import event not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan import event: %w", err)
	}

	event := models.NewImportEvent(runID, models.ImportResult{
		MBID:       mbid,
		Status:     models.ImportStatus(status),
		ArtistName: artistName,
		Detail:     detail,
	})
	event.SetID(id)
	event.SetCreatedAt(createdAt)

	return event, nil
}
