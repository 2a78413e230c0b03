package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hxngan/vitien/internal/common"
	"github.com/hxngan/vitien/internal/model"
)

// GetCategories returns a user's categories, optionally filtered by
// direction. Pass an empty direction for all.
func (s *SQLiteStorage) GetCategories(ctx context.Context, userID int64, direction model.Direction) ([]model.Category, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(userID, "userID"); err != nil {
		return nil, err
	}

	query := `SELECT id, user_id, name, type FROM categories WHERE user_id = ?`
	args := []any{userID}
	if direction != "" {
		if !direction.Valid() {
			return nil, fmt.Errorf("%w: %q", ErrInvalidDirection, direction)
		}
		query += ` AND type = ? ORDER BY name`
		args = append(args, string(direction))
	} else {
		query += ` ORDER BY type, name`
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var categories []model.Category
	for rows.Next() {
		var cat model.Category
		var dir string
		if err := rows.Scan(&cat.ID, &cat.UserID, &cat.Name, &dir); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		cat.Direction = model.Direction(dir)
		categories = append(categories, cat)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}
	return categories, nil
}

// AddCategory inserts a category. Duplicate names are permitted and both
// are retained.
func (s *SQLiteStorage) AddCategory(ctx context.Context, userID int64, name string, direction model.Direction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(name, "name"); err != nil {
		return err
	}
	if !direction.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidDirection, direction)
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO categories (user_id, name, type) VALUES (?, ?, ?)`,
		userID, name, string(direction),
	)
	if err != nil {
		return fmt.Errorf("failed to insert category: %w", err)
	}
	return nil
}

// DeleteCategory removes a category. Existing transactions keep their
// category name snapshot untouched.
func (s *SQLiteStorage) DeleteCategory(ctx context.Context, userID, categoryID int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM categories WHERE id = ? AND user_id = ?`,
		categoryID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("category %d: %w", categoryID, common.ErrNotFound)
	}
	return nil
}

// EnsureDefaultCategories seeds the standard income/expense categories the
// first time a user is seen with no categories. Idempotent.
func (s *SQLiteStorage) EnsureDefaultCategories(ctx context.Context, userID int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateID(userID, "userID"); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var count int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM categories WHERE user_id = ?`, userID,
	).Scan(&count); err != nil {
		return fmt.Errorf("failed to count categories: %w", err)
	}
	if count > 0 {
		return nil
	}

	for _, name := range model.DefaultExpenseCategories {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO categories (user_id, name, type) VALUES (?, ?, 'expense')`,
			userID, name,
		); err != nil {
			return fmt.Errorf("failed to seed category %q: %w", name, err)
		}
	}
	for _, name := range model.DefaultIncomeCategories {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO categories (user_id, name, type) VALUES (?, ?, 'income')`,
			userID, name,
		); err != nil {
			return fmt.Errorf("failed to seed category %q: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit default categories: %w", err)
	}

	slog.Info("provisioned default categories", "user_id", userID)
	return nil
}
