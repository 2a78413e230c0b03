package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/hxngan/vitien/internal/model"
)

// SaveBudget inserts one allocation snapshot. Snapshots accumulate; none is
// authoritative.
func (s *SQLiteStorage) SaveBudget(ctx context.Context, b *model.Budget) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if b == nil {
		return fmt.Errorf("budget cannot be nil")
	}
	if err := validateID(b.UserID, "userID"); err != nil {
		return err
	}

	createdAt := b.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO budgets (user_id, total_income, essential, long_term, invest, personal, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		b.UserID, b.TotalIncome, b.Essential, b.LongTerm, b.Invest, b.Personal, createdAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert budget: %w", err)
	}
	return nil
}
