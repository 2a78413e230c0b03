package report

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hxngan/vitien/internal/model"
	"github.com/hxngan/vitien/internal/service"
	"github.com/hxngan/vitien/internal/storage"
)

func createTestReporter(t *testing.T) (*Reporter, *storage.SQLiteStorage, int64) {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	ctx := context.Background()
	require.NoError(t, store.Migrate(ctx))

	user, err := store.GetOrCreateUser(ctx, "tg:1", "")
	require.NoError(t, err)
	require.NoError(t, store.EnsureDefaultWallets(ctx, user.ID))

	r := NewReporter(store)
	r.now = func() time.Time {
		return time.Date(2026, time.May, 15, 12, 0, 0, 0, time.UTC)
	}
	return r, store, user.ID
}

func record(t *testing.T, store *storage.SQLiteStorage, userID int64, dir model.Direction, amount float64, category string, at time.Time, walletID int64) {
	t.Helper()
	_, err := store.AddTransaction(context.Background(), &model.Transaction{
		UserID:    userID,
		WalletID:  walletID,
		Direction: dir,
		Amount:    amount,
		Category:  category,
		CreatedAt: at,
	})
	require.NoError(t, err)
}

func TestOverview(t *testing.T) {
	r, store, userID := createTestReporter(t)

	today := time.Date(2026, time.May, 15, 8, 0, 0, 0, time.UTC)
	lastWeek := time.Date(2026, time.May, 10, 8, 0, 0, 0, time.UTC)
	lastMonth := time.Date(2026, time.April, 10, 8, 0, 0, 0, time.UTC)

	record(t, store, userID, model.DirectionIncome, 10_000_000, "Lương", lastMonth, 0)
	record(t, store, userID, model.DirectionExpense, 200_000, "Ăn uống", lastWeek, 0)
	record(t, store, userID, model.DirectionExpense, 50_000, "Đi lại", today, 0)

	out, err := r.Overview(context.Background(), userID)
	require.NoError(t, err)
	assert.Contains(t, out, "9.750.000đ", "total balance")
	assert.Contains(t, out, "Hôm nay: thu 0đ, chi 50.000đ")
	assert.Contains(t, out, "7 ngày: thu 0đ, chi 250.000đ")
	assert.Contains(t, out, "Tháng 5: thu 0đ, chi 250.000đ")
}

func TestMonthBreakdown(t *testing.T) {
	r, store, userID := createTestReporter(t)

	at := time.Date(2026, time.May, 5, 8, 0, 0, 0, time.UTC)
	record(t, store, userID, model.DirectionExpense, 600_000, "Ăn uống", at, 0)
	record(t, store, userID, model.DirectionExpense, 400_000, "Đi lại", at, 0)

	out, err := r.MonthBreakdown(context.Background(), userID)
	require.NoError(t, err)
	assert.Contains(t, out, "1.000.000đ")
	assert.Contains(t, out, "1. Ăn uống: 600.000đ (60%)")
	assert.Contains(t, out, "2. Đi lại: 400.000đ (40%)")
}

func TestMonthBreakdown_Empty(t *testing.T) {
	r, _, userID := createTestReporter(t)

	out, err := r.MonthBreakdown(context.Background(), userID)
	require.NoError(t, err)
	assert.Contains(t, out, "chưa có khoản chi")
}

func TestWallets(t *testing.T) {
	r, store, userID := createTestReporter(t)
	ctx := context.Background()

	wallets, err := store.GetWallets(ctx, userID)
	require.NoError(t, err)
	record(t, store, userID, model.DirectionIncome, 4_000_000, "Lương", r.now(), wallets[0].ID)

	out, err := r.Wallets(ctx, userID)
	require.NoError(t, err)
	assert.Contains(t, out, wallets[0].Name+": 4.000.000đ")
	assert.Contains(t, out, wallets[1].Name+": 0đ")
}

func TestInsights(t *testing.T) {
	r, store, userID := createTestReporter(t)

	recent := time.Date(2026, time.May, 1, 8, 0, 0, 0, time.UTC)
	older := time.Date(2026, time.April, 1, 8, 0, 0, 0, time.UTC)

	record(t, store, userID, model.DirectionExpense, 1_500_000, "Ăn uống", recent, 0)
	record(t, store, userID, model.DirectionExpense, 1_000_000, "Ăn uống", older, 0)

	out, err := r.Insights(context.Background(), userID)
	require.NoError(t, err)
	assert.Contains(t, out, "chi 1.500.000đ")
	assert.Contains(t, out, "Tăng 50%")
}

func TestWriteCSV(t *testing.T) {
	r, store, userID := createTestReporter(t)
	ctx := context.Background()

	wallets, err := store.GetWallets(ctx, userID)
	require.NoError(t, err)

	at := time.Date(2026, time.May, 5, 8, 30, 0, 0, time.UTC)
	record(t, store, userID, model.DirectionExpense, 35_000, "Ăn uống", at, wallets[0].ID)

	var buf bytes.Buffer
	require.NoError(t, r.WriteCSV(ctx, &buf, userID, service.ExportFilter{}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "id,datetime_utc,type,amount,category,note,wallet", lines[0])
	assert.Contains(t, lines[1], "2026-05-05 08:30:00")
	assert.Contains(t, lines[1], "expense")
	assert.Contains(t, lines[1], ",35000,")
	assert.Contains(t, lines[1], wallets[0].Name)
}

func TestWriteCSV_RoundsFractionalAmounts(t *testing.T) {
	r, store, userID := createTestReporter(t)
	ctx := context.Background()

	at := time.Date(2026, time.May, 5, 8, 0, 0, 0, time.UTC)
	record(t, store, userID, model.DirectionExpense, 999.6, "Ăn uống", at, 0)

	var buf bytes.Buffer
	require.NoError(t, r.WriteCSV(ctx, &buf, userID, service.ExportFilter{}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], ",1000,", "amount rounds to the nearest đồng, never truncates")
}

func TestWriteCSV_MonthFilter(t *testing.T) {
	r, store, userID := createTestReporter(t)
	ctx := context.Background()

	record(t, store, userID, model.DirectionExpense, 10_000, "Ăn uống",
		time.Date(2026, time.April, 5, 8, 0, 0, 0, time.UTC), 0)
	record(t, store, userID, model.DirectionExpense, 20_000, "Ăn uống",
		time.Date(2026, time.May, 5, 8, 0, 0, 0, time.UTC), 0)

	var buf bytes.Buffer
	require.NoError(t, r.WriteCSV(ctx, &buf, userID, service.ExportFilter{Year: 2026, Month: time.April}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], ",10000,")
}
