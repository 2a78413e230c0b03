// Package goal moves money in and out of saving goals.
package goal

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hxngan/vitien/internal/common"
	"github.com/hxngan/vitien/internal/model"
	"github.com/hxngan/vitien/internal/service"
)

// Ledger applies deposits and withdrawals to saving goals. Each movement
// updates the goal amount and appends a history record in one database
// transaction.
type Ledger struct {
	store service.Storage
}

// NewLedger creates a goal ledger backed by the given storage.
func NewLedger(store service.Storage) *Ledger {
	return &Ledger{store: store}
}

// Deposit adds amount to the goal. The goal may exceed its target; reaching
// the target is reported, never enforced.
func (l *Ledger) Deposit(ctx context.Context, goalID int64, amount float64, note string) (*model.SavingGoal, error) {
	return l.apply(ctx, goalID, amount, note, model.GoalDeposit)
}

// Withdraw removes amount from the goal. Withdrawing more than the current
// amount fails with ErrInsufficientFunds and changes nothing.
func (l *Ledger) Withdraw(ctx context.Context, goalID int64, amount float64, note string) (*model.SavingGoal, error) {
	return l.apply(ctx, goalID, amount, note, model.GoalWithdraw)
}

func (l *Ledger) apply(ctx context.Context, goalID int64, amount float64, note string, kind model.GoalTransactionType) (*model.SavingGoal, error) {
	if amount <= 0 {
		return nil, &common.ValidationError{Field: "amount", Reason: "must be positive"}
	}

	tx, err := l.store.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin goal transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	g, err := tx.GetGoal(ctx, goalID)
	if err != nil {
		return nil, err
	}

	newAmount := g.CurrentAmount + amount
	if kind == model.GoalWithdraw {
		if amount > g.CurrentAmount {
			return nil, fmt.Errorf("withdraw %v from goal %q holding %v: %w",
				amount, g.Name, g.CurrentAmount, common.ErrInsufficientFunds)
		}
		newAmount = g.CurrentAmount - amount
	}

	if err := tx.UpdateGoalAmount(ctx, goalID, newAmount); err != nil {
		return nil, err
	}
	if err := tx.AddGoalTransaction(ctx, &model.GoalTransaction{
		GoalID:    goalID,
		Type:      kind,
		Amount:    amount,
		Note:      note,
		CreatedAt: time.Now().UTC(),
	}); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit goal transaction: %w", err)
	}

	slog.Info("goal updated",
		"goal_id", goalID,
		"type", string(kind),
		"amount", amount,
		"current", newAmount,
	)

	g.CurrentAmount = newAmount
	return g, nil
}

// Reached reports whether the goal has met or passed its target.
func Reached(g *model.SavingGoal) bool {
	return g.CurrentAmount >= g.TargetAmount
}
