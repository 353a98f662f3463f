package store

import (
	"context"
	"database/sql"
	"fmt"
)

// TagStore persists the derived search tags for items. Tags are always
// replaced wholesale when an item is written; there is no incremental update.
type TagStore struct {
	db *sql.DB
}

func NewTagStore(db *sql.DB) *TagStore {
	return &TagStore{db: db}
}

// Replace deletes the item's tags and inserts the given set.
func (s *TagStore) Replace(ctx context.Context, itemID int64, tags []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM item_tags WHERE item_id = ?`, itemID); err != nil {
		return fmt.Errorf("failed to clear tags: %w", err)
	}

	for _, tag := range tags {
		if _, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO item_tags (item_id, tag) VALUES (?, ?)
		`, itemID, tag); err != nil {
			return fmt.Errorf("failed to insert tag %q: %w", tag, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit tag replacement: %w", err)
	}

	return nil
}

// ListByItem returns the item's tags in lexical order.
func (s *TagStore) ListByItem(ctx context.Context, itemID int64) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT tag FROM item_tags WHERE item_id = ? ORDER BY tag ASC
	`, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	defer rows.Close()

	var tags []string
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		tags = append(tags, tag)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tags: %w", err)
	}

	return tags, nil
}

// DeleteByItem removes all tags for the item.
func (s *TagStore) DeleteByItem(ctx context.Context, itemID int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM item_tags WHERE item_id = ?`, itemID)
	if err != nil {
		return fmt.Errorf("failed to delete tags: %w", err)
	}
	return nil
}
