package model

import "time"

// SavingGoal tracks progress toward a savings target, independent of wallet
// balances. CurrentAmount never goes negative; it may exceed TargetAmount.
type SavingGoal struct {
	CreatedAt     time.Time
	Name          string
	ID            int64
	UserID        int64
	TargetAmount  float64
	CurrentAmount float64
}

// GoalTransactionType distinguishes goal deposits from withdrawals.
type GoalTransactionType string

const (
	// GoalDeposit adds money to a goal.
	GoalDeposit GoalTransactionType = "deposit"
	// GoalWithdraw takes money out of a goal.
	GoalWithdraw GoalTransactionType = "withdraw"
)

// GoalTransaction is an append-only audit record of one deposit or
// withdrawal against a goal. Never mutated.
type GoalTransaction struct {
	CreatedAt time.Time
	Note      string
	Type      GoalTransactionType
	ID        int64
	GoalID    int64
	Amount    float64
}
