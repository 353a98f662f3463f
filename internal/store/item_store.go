package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/vbonduro/homeinv/internal/domain"
)

type ItemStore struct {
	db *sql.DB
}

func NewItemStore(db *sql.DB) *ItemStore {
	return &ItemStore{db: db}
}

// itemSelect joins the display names of the item's location and region.
const itemSelect = `
	SELECT i.id, i.name, i.description, i.quantity, i.image_path,
	       i.location_id, i.region_id,
	       COALESCE(l.name, ''), COALESCE(r.name, ''),
	       i.created_at, i.updated_at
	FROM inventory_items i
	LEFT JOIN locations l ON i.location_id = l.id
	LEFT JOIN location_regions r ON i.region_id = r.id
`

func scanItem(row interface{ Scan(...any) error }) (*domain.Item, error) {
	item := &domain.Item{}
	err := row.Scan(&item.ID, &item.Name, &item.Description, &item.Quantity,
		&item.ImagePath, &item.LocationID, &item.RegionID,
		&item.LocationName, &item.RegionName, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (s *ItemStore) Create(ctx context.Context, name, description string, quantity int, imagePath string, locationID, regionID *int64) (*domain.Item, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO inventory_items (name, description, quantity, image_path, location_id, region_id)
		VALUES (?, ?, ?, ?, ?, ?)
	`, name, description, quantity, imagePath, locationID, regionID)
	if err != nil {
		return nil, fmt.Errorf("failed to create item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}

	return s.GetByID(ctx, id)
}

func (s *ItemStore) GetByID(ctx context.Context, id int64) (*domain.Item, error) {
	item, err := scanItem(s.db.QueryRowContext(ctx, itemSelect+` WHERE i.id = ?`, id))

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}

	return item, nil
}

// List returns items, optionally filtered by location and/or region.
func (s *ItemStore) List(ctx context.Context, locationID, regionID *int64) ([]*domain.Item, error) {
	query := itemSelect
	var clauses []string
	var args []any

	if locationID != nil {
		clauses = append(clauses, "i.location_id = ?")
		args = append(args, *locationID)
	}
	if regionID != nil {
		clauses = append(clauses, "i.region_id = ?")
		args = append(args, *regionID)
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY i.name ASC"

	return s.queryItems(ctx, query, args...)
}

// SearchCandidates returns every item the case-insensitive query could match:
// substring of name or description, exact derived tag, or substring of the
// joined location or region name. Ranking happens in the service layer.
func (s *ItemStore) SearchCandidates(ctx context.Context, query string) ([]*domain.Item, error) {
	lowered := strings.ToLower(query)
	pattern := "%" + lowered + "%"

	return s.queryItems(ctx, `
		SELECT DISTINCT i.id, i.name, i.description, i.quantity, i.image_path,
		       i.location_id, i.region_id,
		       COALESCE(l.name, ''), COALESCE(r.name, ''),
		       i.created_at, i.updated_at
		FROM inventory_items i
		LEFT JOIN locations l ON i.location_id = l.id
		LEFT JOIN location_regions r ON i.region_id = r.id
		LEFT JOIN item_tags t ON i.id = t.item_id
		WHERE LOWER(i.name) LIKE ?
		   OR LOWER(i.description) LIKE ?
		   OR t.tag = ?
		   OR LOWER(COALESCE(l.name, '')) LIKE ?
		   OR LOWER(COALESCE(r.name, '')) LIKE ?
	`, pattern, pattern, lowered, pattern, pattern)
}

func (s *ItemStore) queryItems(ctx context.Context, query string, args ...any) ([]*domain.Item, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	var items []*domain.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating items: %w", err)
	}

	return items, nil
}

func (s *ItemStore) Update(ctx context.Context, id int64, name, description string, quantity int, imagePath string, locationID, regionID *int64) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE inventory_items
		SET name = ?, description = ?, quantity = ?, image_path = ?,
		    location_id = ?, region_id = ?, updated_at = datetime('now')
		WHERE id = ?
	`, name, description, quantity, imagePath, locationID, regionID, id)
	if err != nil {
		return fmt.Errorf("failed to update item: %w", err)
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

// DecrementQuantity subtracts one from the item's quantity, refusing to go
// below zero. The guard lives in the WHERE clause so concurrent decrements
// cannot race past it.
func (s *ItemStore) DecrementQuantity(ctx context.Context, id int64) (*domain.Item, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE inventory_items
		SET quantity = quantity - 1, updated_at = datetime('now')
		WHERE id = ? AND quantity > 0
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to decrement quantity: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		item, err := s.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if item == nil {
			return nil, domain.ErrNotFound
		}
		return nil, domain.Invalid("quantity", "cannot go below zero")
	}

	return s.GetByID(ctx, id)
}

func (s *ItemStore) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `
		DELETE FROM inventory_items WHERE id = ?
	`, id)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
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

// CountByLocation returns how many items reference the location.
func (s *ItemStore) CountByLocation(ctx context.Context, locationID int64) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM inventory_items WHERE location_id = ?`, locationID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count items: %w", err)
	}
	return n, nil
}
