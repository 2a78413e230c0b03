package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/hxngan/vitien/internal/common"
	"github.com/hxngan/vitien/internal/model"
)

// CreateGoal inserts a saving goal starting at zero.
func (s *SQLiteStorage) CreateGoal(ctx context.Context, userID int64, name string, target float64) (*model.SavingGoal, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(userID, "userID"); err != nil {
		return nil, err
	}
	if err := validateString(name, "name"); err != nil {
		return nil, err
	}
	if target <= 0 {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidAmount, target)
	}

	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO saving_goals (user_id, name, target_amount, current_amount, created_at)
		VALUES (?, ?, ?, 0, ?)`,
		userID, name, target, now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create goal: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get goal id: %w", err)
	}

	return &model.SavingGoal{
		ID:           id,
		UserID:       userID,
		Name:         name,
		TargetAmount: target,
		CreatedAt:    now,
	}, nil
}

// GetGoals returns a user's goals, newest first.
func (s *SQLiteStorage) GetGoals(ctx context.Context, userID int64) ([]model.SavingGoal, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(userID, "userID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, name, target_amount, current_amount, created_at
		FROM saving_goals
		WHERE user_id = ?
		ORDER BY id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query goals: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var goals []model.SavingGoal
	for rows.Next() {
		var g model.SavingGoal
		if err := rows.Scan(&g.ID, &g.UserID, &g.Name, &g.TargetAmount, &g.CurrentAmount, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan goal: %w", err)
		}
		goals = append(goals, g)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating goals: %w", err)
	}
	return goals, nil
}

// GetGoal returns one goal by id.
func (s *SQLiteStorage) GetGoal(ctx context.Context, goalID int64) (*model.SavingGoal, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.getGoal(ctx, s.db.QueryRowContext, goalID)
}

func (s *SQLiteStorage) getGoalTx(ctx context.Context, tx *sql.Tx, goalID int64) (*model.SavingGoal, error) {
	return s.getGoal(ctx, tx.QueryRowContext, goalID)
}

type queryRowFunc func(ctx context.Context, query string, args ...any) *sql.Row

func (s *SQLiteStorage) getGoal(ctx context.Context, queryRow queryRowFunc, goalID int64) (*model.SavingGoal, error) {
	var g model.SavingGoal
	err := queryRow(ctx, `
		SELECT id, user_id, name, target_amount, current_amount, created_at
		FROM saving_goals
		WHERE id = ?`,
		goalID,
	).Scan(&g.ID, &g.UserID, &g.Name, &g.TargetAmount, &g.CurrentAmount, &g.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("goal %d: %w", goalID, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query goal: %w", err)
	}
	return &g, nil
}

// UpdateGoalAmount overwrites a goal's current amount. The amount must not
// be negative; callers enforce withdraw bounds before calling.
func (s *SQLiteStorage) UpdateGoalAmount(ctx context.Context, goalID int64, newAmount float64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.updateGoalAmountTx(ctx, tx, goalID, newAmount); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLiteStorage) updateGoalAmountTx(ctx context.Context, tx *sql.Tx, goalID int64, newAmount float64) error {
	if newAmount < 0 {
		return fmt.Errorf("goal amount cannot go negative: got %v", newAmount)
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE saving_goals SET current_amount = ? WHERE id = ?`,
		newAmount, goalID,
	)
	if err != nil {
		return fmt.Errorf("failed to update goal amount: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("goal %d: %w", goalID, common.ErrNotFound)
	}
	return nil
}

// AddGoalTransaction appends one history record. History rows are never
// mutated.
func (s *SQLiteStorage) AddGoalTransaction(ctx context.Context, gt *model.GoalTransaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateGoalTransaction(gt); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.addGoalTransactionTx(ctx, tx, gt); err != nil {
		return err
	}
	return tx.Commit()
}

// GetGoalTransactions returns a goal's history, newest first.
func (s *SQLiteStorage) GetGoalTransactions(ctx context.Context, goalID int64) ([]model.GoalTransaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(goalID, "goalID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, goal_id, type, amount, note, created_at
		FROM saving_goal_transactions
		WHERE goal_id = ?
		ORDER BY id DESC`,
		goalID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query goal transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var history []model.GoalTransaction
	for rows.Next() {
		var gt model.GoalTransaction
		var kind string
		if err := rows.Scan(&gt.ID, &gt.GoalID, &kind, &gt.Amount, &gt.Note, &gt.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan goal transaction: %w", err)
		}
		gt.Type = model.GoalTransactionType(kind)
		history = append(history, gt)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating goal transactions: %w", err)
	}
	return history, nil
}

func (s *SQLiteStorage) addGoalTransactionTx(ctx context.Context, tx *sql.Tx, gt *model.GoalTransaction) error {
	createdAt := gt.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := tx.ExecContext(ctx, `
		INSERT INTO saving_goal_transactions (goal_id, type, amount, note, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		gt.GoalID, string(gt.Type), gt.Amount, gt.Note, createdAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert goal transaction: %w", err)
	}
	return nil
}
