package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"pricetrack/internal/domain/item"
)

const uniqueViolation = "23505"

type ItemRepository struct {
	db *DB
}

var _ item.Repository = (*ItemRepository)(nil)

func NewItemRepository(db *DB) *ItemRepository {
	return &ItemRepository{db: db}
}

func (r *ItemRepository) Create(ctx context.Context, it *item.Item) error {
	query := `
		INSERT INTO items (id, description, cost, date, url, user_id)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(ctx, query, it.ID, it.Description, it.Cost, it.Date, it.URL, it.UserID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return item.ErrDuplicateItem
		}
		return fmt.Errorf("failed to create item: %w", err)
	}

	return nil
}

func (r *ItemRepository) ListByUserID(ctx context.Context, userID string) ([]*item.Item, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return []*item.Item{}, nil
	}

	query := `
		SELECT id, description, cost, date, url, user_id
		FROM items
		WHERE user_id = $1
		ORDER BY date ASC, id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer rows.Close()

	items := []*item.Item{}
	for rows.Next() {
		var it item.Item
		if err := rows.Scan(&it.ID, &it.Description, &it.Cost, &it.Date, &it.URL, &it.UserID); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		it.Date = it.Date.UTC()
		items = append(items, &it)
	}

	return items, rows.Err()
}
