package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/hxngan/vitien/internal/model"
)

// SetLimit upserts the spending limit for (user, category, period). A
// repeat set overwrites in place.
func (s *SQLiteStorage) SetLimit(ctx context.Context, userID int64, category string, period model.LimitPeriod, amount float64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(category, "category"); err != nil {
		return err
	}
	if amount <= 0 {
		return fmt.Errorf("%w: got %v", ErrInvalidAmount, amount)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO limits (user_id, category, period, limit_amount)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id, category, period) DO UPDATE SET limit_amount = excluded.limit_amount`,
		userID, category, string(period), amount,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert limit: %w", err)
	}
	return nil
}

// GetLimit returns the configured limit, or (nil, nil) when none is set.
func (s *SQLiteStorage) GetLimit(ctx context.Context, userID int64, category string, period model.LimitPeriod) (*model.SpendingLimit, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(category, "category"); err != nil {
		return nil, err
	}

	var l model.SpendingLimit
	var p string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, category, period, limit_amount
		FROM limits
		WHERE user_id = ? AND category = ? AND period = ?`,
		userID, category, string(period),
	).Scan(&l.ID, &l.UserID, &l.Category, &p, &l.Amount)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query limit: %w", err)
	}

	l.Period = model.LimitPeriod(p)
	return &l, nil
}

// GetMonthCategorySpend sums one category's expenses over
// `[first-of-month, first-of-next-month)` in UTC.
func (s *SQLiteStorage) GetMonthCategorySpend(ctx context.Context, userID int64, category string, year int, month time.Month) (float64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateString(category, "category"); err != nil {
		return 0, err
	}

	start, end := monthWindow(year, month)
	var total float64
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(amount), 0)
		FROM transactions
		WHERE user_id = ? AND type = 'expense' AND category = ?
			AND created_at >= ? AND created_at < ?`,
		userID, category, start, end,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum month spend: %w", err)
	}

	return total, nil
}
