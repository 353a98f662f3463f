package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vbonduro/homeinv/internal/domain"
)

type RegionStore struct {
	db *sql.DB
}

func NewRegionStore(db *sql.DB) *RegionStore {
	return &RegionStore{db: db}
}

const regionColumns = "id, location_id, name, x_coord, y_coord, width, height, color, position"

func scanRegion(row interface{ Scan(...any) error }) (*domain.Region, error) {
	reg := &domain.Region{}
	err := row.Scan(&reg.ID, &reg.LocationID, &reg.Name, &reg.X, &reg.Y,
		&reg.Width, &reg.Height, &reg.Color, &reg.Position)
	if err != nil {
		return nil, err
	}
	return reg, nil
}

func (s *RegionStore) GetByID(ctx context.Context, id int64) (*domain.Region, error) {
	reg, err := scanRegion(s.db.QueryRowContext(ctx, `
		SELECT `+regionColumns+` FROM location_regions WHERE id = ?
	`, id))

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get region: %w", err)
	}

	return reg, nil
}

// ListByLocation returns the location's regions in stored order.
func (s *RegionStore) ListByLocation(ctx context.Context, locationID int64) ([]*domain.Region, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+regionColumns+` FROM location_regions
		WHERE location_id = ? ORDER BY position ASC, id ASC
	`, locationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list regions: %w", err)
	}
	defer rows.Close()

	var regions []*domain.Region
	for rows.Next() {
		reg, err := scanRegion(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan region: %w", err)
		}
		regions = append(regions, reg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating regions: %w", err)
	}

	return regions, nil
}

// ReplaceForLocation swaps the location's whole region set in one
// transaction: delete everything owned by locationID, then insert the given
// regions in order. Readers never observe the half-replaced state.
func (s *RegionStore) ReplaceForLocation(ctx context.Context, locationID int64, regions []*domain.Region) ([]*domain.Region, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM location_regions WHERE location_id = ?`, locationID); err != nil {
		return nil, fmt.Errorf("failed to clear regions: %w", err)
	}

	inserted := make([]*domain.Region, 0, len(regions))
	for i, reg := range regions {
		result, err := tx.ExecContext(ctx, `
			INSERT INTO location_regions (location_id, name, x_coord, y_coord, width, height, color, position)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, locationID, reg.Name, reg.X, reg.Y, reg.Width, reg.Height, reg.Color, i)
		if err != nil {
			return nil, fmt.Errorf("failed to insert region %q: %w", reg.Name, err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("failed to get last insert id: %w", err)
		}
		stored := *reg
		stored.ID = id
		stored.LocationID = locationID
		stored.Position = i
		inserted = append(inserted, &stored)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit region replacement: %w", err)
	}

	return inserted, nil
}
