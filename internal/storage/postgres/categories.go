// internal/storage/postgres/categories.go
package postgres

import (
	"context"
	"fmt"

	"finance-tracker/internal/domain"
	"finance-tracker/internal/storage"

	"github.com/jackc/pgx/v5"
)

func (s *Storage) CreateCategory(ctx context.Context, c *domain.Category) (int64, error) {
	err := s.db.QueryRow(ctx, `
		INSERT INTO categories (name, type, user_id)
		VALUES ($1, $2, $3)
		RETURNING id
	`, c.Name, c.Type, c.UserID).Scan(&c.ID)
	if err != nil {
		return 0, fmt.Errorf("create category: %w", err)
	}
	return c.ID, nil
}

func (s *Storage) CategoryByID(ctx context.Context, id int64) (*domain.Category, error) {
	var c domain.Category
	err := s.db.QueryRow(ctx,
		`SELECT id, name, type, user_id FROM categories WHERE id = $1`, id,
	).Scan(&c.ID, &c.Name, &c.Type, &c.UserID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("find category: %w", err)
	}
	return &c, nil
}

func (s *Storage) CategoriesForUser(ctx context.Context, userID int64) ([]domain.Category, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, name, type, user_id FROM categories
		WHERE user_id = $1 OR user_id IS NULL
		ORDER BY name
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Type, &c.UserID); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (s *Storage) CategoryNameExists(ctx context.Context, userID int64, name string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM categories WHERE user_id = $1 AND name = $2)
	`, userID, name).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check category name: %w", err)
	}
	return exists, nil
}

// UpdateCategory only touches categories owned by userID; global categories
// cannot be edited through the API.
func (s *Storage) UpdateCategory(ctx context.Context, userID int64, c *domain.Category) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE categories SET name = $1, type = $2
		WHERE id = $3 AND user_id = $4
	`, c.Name, c.Type, c.ID, userID)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// DeleteCategory relies on the schema: budgets referencing the category are
// cascaded away, transactions keep the row with category_id nulled.
func (s *Storage) DeleteCategory(ctx context.Context, userID, id int64) error {
	tag, err := s.db.Exec(ctx,
		`DELETE FROM categories WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}
