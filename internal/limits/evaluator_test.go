package limits

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hxngan/vitien/internal/model"
	"github.com/hxngan/vitien/internal/storage"
)

func createTestEvaluator(t *testing.T) (*Evaluator, *storage.SQLiteStorage, int64) {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	ctx := context.Background()
	require.NoError(t, store.Migrate(ctx))

	user, err := store.GetOrCreateUser(ctx, "tg:1", "")
	require.NoError(t, err)

	eval := NewEvaluator(store)
	eval.now = func() time.Time {
		return time.Date(2026, time.May, 15, 10, 0, 0, 0, time.UTC)
	}
	return eval, store, user.ID
}

func spend(t *testing.T, store *storage.SQLiteStorage, userID int64, category string, amount float64, at time.Time) {
	t.Helper()
	_, err := store.AddTransaction(context.Background(), &model.Transaction{
		UserID:    userID,
		Direction: model.DirectionExpense,
		Amount:    amount,
		Category:  category,
		CreatedAt: at,
	})
	require.NoError(t, err)
}

func TestCheck_NoLimitConfigured(t *testing.T) {
	eval, _, userID := createTestEvaluator(t)

	status, err := eval.Check(context.Background(), userID, "Ăn uống")
	require.NoError(t, err)
	assert.Nil(t, status)
}

func TestCheck_WithinLimit(t *testing.T) {
	eval, store, userID := createTestEvaluator(t)
	ctx := context.Background()

	require.NoError(t, store.SetLimit(ctx, userID, "Ăn uống", model.PeriodMonth, 2_000_000))
	spend(t, store, userID, "Ăn uống", 500_000, time.Date(2026, time.May, 3, 9, 0, 0, 0, time.UTC))

	status, err := eval.Check(ctx, userID, "Ăn uống")
	require.NoError(t, err)
	require.NotNil(t, status)
	assert.False(t, status.Exceeded)
	assert.InDelta(t, 500_000, status.Spent, 0.001)
	assert.InDelta(t, 1_500_000, status.Remaining(), 0.001)
}

func TestCheck_Exceeded(t *testing.T) {
	eval, store, userID := createTestEvaluator(t)
	ctx := context.Background()

	require.NoError(t, store.SetLimit(ctx, userID, "Ăn uống", model.PeriodMonth, 1_000_000))
	spend(t, store, userID, "Ăn uống", 800_000, time.Date(2026, time.May, 3, 9, 0, 0, 0, time.UTC))
	spend(t, store, userID, "Ăn uống", 400_000, time.Date(2026, time.May, 10, 9, 0, 0, 0, time.UTC))

	status, err := eval.Check(ctx, userID, "Ăn uống")
	require.NoError(t, err)
	require.NotNil(t, status)
	assert.True(t, status.Exceeded)
	assert.InDelta(t, 200_000, status.Over, 0.001)
	assert.Zero(t, status.Remaining())
}

func TestCheck_OnlyCurrentMonthCounts(t *testing.T) {
	eval, store, userID := createTestEvaluator(t)
	ctx := context.Background()

	require.NoError(t, store.SetLimit(ctx, userID, "Ăn uống", model.PeriodMonth, 1_000_000))
	// Last month's overspend is irrelevant in May.
	spend(t, store, userID, "Ăn uống", 5_000_000, time.Date(2026, time.April, 20, 9, 0, 0, 0, time.UTC))
	spend(t, store, userID, "Ăn uống", 100_000, time.Date(2026, time.May, 2, 9, 0, 0, 0, time.UTC))

	status, err := eval.Check(ctx, userID, "Ăn uống")
	require.NoError(t, err)
	require.NotNil(t, status)
	assert.False(t, status.Exceeded)
	assert.InDelta(t, 100_000, status.Spent, 0.001)
}

func TestCheck_SpendEqualToLimitIsNotExceeded(t *testing.T) {
	eval, store, userID := createTestEvaluator(t)
	ctx := context.Background()

	require.NoError(t, store.SetLimit(ctx, userID, "Ăn uống", model.PeriodMonth, 1_000_000))
	spend(t, store, userID, "Ăn uống", 1_000_000, time.Date(2026, time.May, 3, 9, 0, 0, 0, time.UTC))

	status, err := eval.Check(ctx, userID, "Ăn uống")
	require.NoError(t, err)
	require.NotNil(t, status)
	assert.False(t, status.Exceeded)
	assert.Zero(t, status.Remaining())
}
