package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/jackedtechbro/mbid-to-lidarr/internal/models"
	"github.com/jackedtechbro/mbid-to-lidarr/internal/shared"
)

// ResolutionRepository implements models.Repository[*models.Resolution] for
// persisted resolver outcomes.
type ResolutionRepository struct {
	db *sql.DB
}

// NewResolutionRepository creates a new ResolutionRepository with the given database connection
func NewResolutionRepository(db *sql.DB) *ResolutionRepository {
	return &ResolutionRepository{db: db}
}

// Create inserts a new resolution into the database with a generated ID
func (r *ResolutionRepository) Create(res *models.Resolution) error {
	res.SetID(shared.GenerateID())

	if err := res.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO resolutions (id, run_id, input_name, mbid, matched_name, score, artist_type, country, disambiguation, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	artist := res.Artist()
	_, err := r.db.Exec(query,
		res.ID(),
		res.RunID(),
		artist.InputName,
		artist.MBID,
		artist.MatchedName,
		artist.Score,
		artist.Type,
		artist.Country,
		artist.Disambiguation,
		res.CreatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert resolution: %w", err)
	}

	return nil
}

// Get retrieves a resolution by ID
func (r *ResolutionRepository) Get(id string) (*models.Resolution, error) {
	query := `
		SELECT id, run_id, input_name, mbid, matched_name, score, artist_type, country, disambiguation, created_at
		FROM resolutions
		WHERE id = ?
	`

	return scanResolution(r.db.QueryRow(query, id))
}

// List retrieves resolutions matching the given criteria in insertion order
func (r *ResolutionRepository) List(criteria map[string]any) ([]*models.Resolution, error) {
	query := `
		SELECT id, run_id, input_name, mbid, matched_name, score, artist_type, country, disambiguation, created_at
		FROM resolutions
	`

	conditions := ""
	args := []any{}

	if runID, ok := criteria["run_id"].(string); ok && runID != "" {
		conditions = " WHERE run_id = ?"
		args = append(args, runID)
	}

	if matched, ok := criteria["matched"].(bool); ok {
		op := "="
		if matched {
			op = "!="
		}
		if conditions == "" {
			conditions = fmt.Sprintf(" WHERE mbid %s ''", op)
		} else {
			conditions += fmt.Sprintf(" AND mbid %s ''", op)
		}
	}

	query += conditions + " ORDER BY created_at ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query resolutions: %w", err)
	}
	defer rows.Close()

	var resolutions []*models.Resolution
	for rows.Next() {
		res, err := scanResolution(rows)
		if err != nil {
			return nil, err
		}
		resolutions = append(resolutions, res)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return resolutions, nil
}

// scanResolution scans a row into a [models.Resolution]
func scanResolution(row rowScanner) (*models.Resolution, error) {
	var (
		id             string
		runID          string
		inputName      string
		mbid           string
		matchedName    string
		score          int
		artistType     string
		country        string
		disambiguation string
		createdAt      time.Time
	)

	err := row.Scan(&id, &runID, &inputName, &mbid, &matchedName, &score, &artistType, &country, &disambiguation, &createdAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("resolution not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan resolution: %w", err)
	}

	res := models.NewResolution(runID, models.ResolvedArtist{
		InputName:      inputName,
		MBID:           mbid,
		MatchedName:    matchedName,
		Score:          score,
		Type:           artistType,
		Country:        country,
		Disambiguation: disambiguation,
	})
	res.SetID(id)
	res.SetCreatedAt(createdAt)

	return res, nil
}
