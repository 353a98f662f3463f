package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vbonduro/homeinv/internal/domain"
)

type LocationStore struct {
	db *sql.DB
}

func NewLocationStore(db *sql.DB) *LocationStore {
	return &LocationStore{db: db}
}

const locationColumns = "id, name, parent_id, description, location_type, image_path, created_at, updated_at"

func scanLocation(row interface{ Scan(...any) error }) (*domain.Location, error) {
	loc := &domain.Location{}
	err := row.Scan(&loc.ID, &loc.Name, &loc.ParentID, &loc.Description,
		&loc.LocationType, &loc.ImagePath, &loc.CreatedAt, &loc.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return loc, nil
}

func (s *LocationStore) Create(ctx context.Context, name string, parentID *int64, description, locationType, imagePath string) (*domain.Location, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO locations (name, parent_id, description, location_type, image_path)
		VALUES (?, ?, ?, ?, ?)
	`, name, parentID, description, locationType, imagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to create location: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}

	return s.GetByID(ctx, id)
}

func (s *LocationStore) GetByID(ctx context.Context, id int64) (*domain.Location, error) {
	loc, err := scanLocation(s.db.QueryRowContext(ctx, `
		SELECT `+locationColumns+` FROM locations WHERE id = ?
	`, id))

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get location: %w", err)
	}

	return loc, nil
}

// List returns every location ordered by name.
func (s *LocationStore) List(ctx context.Context) ([]*domain.Location, error) {
	return s.list(ctx, `SELECT `+locationColumns+` FROM locations ORDER BY name ASC`)
}

// ListRoots returns locations with no parent, ordered by name.
func (s *LocationStore) ListRoots(ctx context.Context) ([]*domain.Location, error) {
	return s.list(ctx, `SELECT `+locationColumns+` FROM locations WHERE parent_id IS NULL ORDER BY name ASC`)
}

// ListByParent returns the direct children of parentID, ordered by name.
func (s *LocationStore) ListByParent(ctx context.Context, parentID int64) ([]*domain.Location, error) {
	return s.list(ctx, `SELECT `+locationColumns+` FROM locations WHERE parent_id = ? ORDER BY name ASC`, parentID)
}

func (s *LocationStore) list(ctx context.Context, query string, args ...any) ([]*domain.Location, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list locations: %w", err)
	}
	defer rows.Close()

	var locs []*domain.Location
	for rows.Next() {
		loc, err := scanLocation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan location: %w", err)
		}
		locs = append(locs, loc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating locations: %w", err)
	}

	return locs, nil
}

func (s *LocationStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM locations`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count locations: %w", err)
	}
	return n, nil
}

func (s *LocationStore) Update(ctx context.Context, id int64, name string, parentID *int64, description, locationType, imagePath string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE locations
		SET name = ?, parent_id = ?, description = ?, location_type = ?, image_path = ?,
		    updated_at = datetime('now')
		WHERE id = ?
	`, name, parentID, description, locationType, imagePath, id)
	if err != nil {
		return fmt.Errorf("failed to update location: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return domain.ErrNotFound
	}

	return nil
}

// Delete removes the location and its region rows in one transaction, so a
// failed row delete never leaves the location stripped of its regions.
func (s *LocationStore) Delete(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM location_regions WHERE location_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete regions: %w", err)
	}

	result, err := tx.ExecContext(ctx, `
		DELETE FROM locations WHERE id = ?
	`, id)
	if err != nil {
		return fmt.Errorf("failed to delete location: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return domain.ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit location delete: %w", err)
	}

	return nil
}

// CountChildren returns how many locations name id as their parent.
func (s *LocationStore) CountChildren(ctx context.Context, id int64) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM locations WHERE parent_id = ?`, id).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count children: %w", err)
	}
	return n, nil
}
