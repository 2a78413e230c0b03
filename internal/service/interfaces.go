// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/hxngan/vitien/internal/model"
)

// Storage defines the contract for the persistence layer. All monetary
// aggregates (wallet balances, totals, month spend) are computed live over
// transaction rows; nothing is cached.
type Storage interface {
	// User operations
	GetOrCreateUser(ctx context.Context, externalID, fullName string) (*model.User, error)
	GetUserByExternalID(ctx context.Context, externalID string) (*model.User, error)

	// Wallet operations
	CreateWallet(ctx context.Context, userID int64, name string, purpose model.WalletPurpose) (*model.Wallet, error)
	GetWallets(ctx context.Context, userID int64) ([]model.Wallet, error)
	GetWallet(ctx context.Context, userID, walletID int64) (*model.Wallet, error)
	GetWalletByName(ctx context.Context, userID int64, name string) (*model.Wallet, error)
	EnsureDefaultWallets(ctx context.Context, userID int64) error
	GetWalletBalance(ctx context.Context, userID, walletID int64) (float64, error)
	GetBalance(ctx context.Context, userID int64) (float64, error)

	// Transaction operations
	AddTransaction(ctx context.Context, txn *model.Transaction) (int64, error)
	GetTransaction(ctx context.Context, userID, txnID int64) (*model.Transaction, error)
	GetRecentTransactions(ctx context.Context, userID int64, limit int) ([]model.Transaction, error)
	DeleteTransaction(ctx context.Context, userID, txnID int64) error
	UpdateTransactionAmount(ctx context.Context, userID, txnID int64, amount float64) error
	UpdateTransactionCategory(ctx context.Context, userID, txnID int64, category string) error
	UpdateTransactionNote(ctx context.Context, userID, txnID int64, note string) error
	GetSummary(ctx context.Context, userID int64, start, end time.Time) (*PeriodSummary, error)
	GetCategorySummaryMonth(ctx context.Context, userID int64, year int, month time.Month) ([]CategoryTotal, error)
	GetTransactionsForExport(ctx context.Context, userID int64, filter ExportFilter) ([]ExportRow, error)

	// Category operations
	GetCategories(ctx context.Context, userID int64, direction model.Direction) ([]model.Category, error)
	AddCategory(ctx context.Context, userID int64, name string, direction model.Direction) error
	DeleteCategory(ctx context.Context, userID, categoryID int64) error
	EnsureDefaultCategories(ctx context.Context, userID int64) error

	// Spending limit operations
	SetLimit(ctx context.Context, userID int64, category string, period model.LimitPeriod, amount float64) error
	GetLimit(ctx context.Context, userID int64, category string, period model.LimitPeriod) (*model.SpendingLimit, error)
	GetMonthCategorySpend(ctx context.Context, userID int64, category string, year int, month time.Month) (float64, error)

	// Saving goal operations
	CreateGoal(ctx context.Context, userID int64, name string, target float64) (*model.SavingGoal, error)
	GetGoals(ctx context.Context, userID int64) ([]model.SavingGoal, error)
	GetGoal(ctx context.Context, goalID int64) (*model.SavingGoal, error)
	UpdateGoalAmount(ctx context.Context, goalID int64, newAmount float64) error
	AddGoalTransaction(ctx context.Context, gt *model.GoalTransaction) error
	GetGoalTransactions(ctx context.Context, goalID int64) ([]model.GoalTransaction, error)

	// Budget snapshots
	SaveBudget(ctx context.Context, b *model.Budget) error

	// Database management
	Migrate(ctx context.Context) error
	BeginTx(ctx context.Context) (Transaction, error)
	Close() error
}

// Transaction is a database transaction scoped to the write pairs that must
// land together: the two legs of a wallet transfer, and the goal
// read-modify-write plus its history record.
type Transaction interface {
	Commit() error
	Rollback() error

	AddTransaction(ctx context.Context, txn *model.Transaction) (int64, error)
	GetGoal(ctx context.Context, goalID int64) (*model.SavingGoal, error)
	UpdateGoalAmount(ctx context.Context, goalID int64, newAmount float64) error
	AddGoalTransaction(ctx context.Context, gt *model.GoalTransaction) error
}

// PeriodSummary aggregates income and expense over a time window.
type PeriodSummary struct {
	Income  float64
	Expense float64
}

// Net returns income minus expense.
func (s PeriodSummary) Net() float64 {
	return s.Income - s.Expense
}

// CategoryTotal is one row of a per-category expense breakdown.
type CategoryTotal struct {
	Category string
	Total    float64
}

// WalletBalance pairs a wallet with its derived balance.
type WalletBalance struct {
	Wallet  model.Wallet
	Balance float64
}

// ExportFilter selects which transactions an export covers. Zero value means
// all transactions. Month filtering takes `[first-of-month, first-of-next)`
// in UTC; wallet filtering takes one wallet's transactions.
type ExportFilter struct {
	Year     int
	Month    time.Month
	WalletID int64
}

// ExportRow is one CSV export line with the wallet name already joined.
type ExportRow struct {
	CreatedAt  time.Time
	Direction  string
	Category   string
	Note       string
	WalletName string
	ID         int64
	Amount     float64
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
