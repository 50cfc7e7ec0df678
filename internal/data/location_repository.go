package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// LocationRepository handles database operations for locations.
type LocationRepository struct {
	DB *sqlx.DB
}

// NewLocationRepository creates a new LocationRepository.
func NewLocationRepository(db *sqlx.DB) *LocationRepository {
	return &LocationRepository{DB: db}
}

// GetByID finds a location by its ID.
func (r *LocationRepository) GetByID(ctx context.Context, id int64) (*Location, error) {
	var location Location
	err := r.DB.GetContext(ctx, &location, "SELECT * FROM locations WHERE id = ?", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("location with id %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get location by id: %w", err)
	}
	return &location, nil
}

// GetAll retrieves all locations ordered by name.
func (r *LocationRepository) GetAll(ctx context.Context) ([]*Location, error) {
	locations := []*Location{}
	if err := r.DB.SelectContext(ctx, &locations, "SELECT * FROM locations ORDER BY name, id"); err != nil {
		return nil, fmt.Errorf("failed to list locations: %w", err)
	}
	return locations, nil
}

// Save creates a new location and returns its ID.
func (r *LocationRepository) Save(ctx context.Context, location *Location) (int64, error) {
	res, err := r.DB.NamedExecContext(ctx,
		"INSERT INTO locations (name, is_published, created_at) VALUES (:name, :is_published, :created_at)", location)
	if err != nil {
		return 0, fmt.Errorf("failed to save location: %w", err)
	}
	return res.LastInsertId()
}

// SetPublished toggles a location's published flag.
func (r *LocationRepository) SetPublished(ctx context.Context, id int64, published bool) error {
	res, err := r.DB.ExecContext(ctx, "UPDATE locations SET is_published = ? WHERE id = ?", published, id)
	if err != nil {
		return fmt.Errorf("failed to update location: %w", err)
	}
	return expectMatched(ctx, r.DB, res, "locations", "location", id)
}

// Delete removes a location; referencing posts get a NULL location.
func (r *LocationRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM locations WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete location: %w", err)
	}
	return expectOneRow(res, "location", id)
}
