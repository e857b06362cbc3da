// package models defines the data model for the artist import pipeline
package models

import (
	"time"
)

// Model defines the base interface for all persistent models in the history store.
// Implementations include Run, Resolution, and ImportEvent.
type Model interface {
	ID() string           // ID returns the unique identifier for this model
	CreatedAt() time.Time // CreatedAt returns when this model was created
	UpdatedAt() time.Time // UpdatedAt returns when this model was last updated
	Validate() error      // Validate checks if the model's data is valid and returns an error if not
}

// Repository defines the interface for history data access.
//
// The history store is append-only, so the interface carries no update or
// delete operations; runs are finalized through the run repository's own
// Finish method.
type Repository[T Model] interface {
	Create(model T) error                      // Create inserts a new model into the database
	Get(id string) (T, error)                  // Get retrieves a model by its ID
	List(criteria map[string]any) ([]T, error) // List retrieves all models matching the given criteria
}
