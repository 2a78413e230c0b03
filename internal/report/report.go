// Package report builds read-only summaries and exports over the ledger.
package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hxngan/vitien/internal/money"
	"github.com/hxngan/vitien/internal/service"
)

// Reporter renders presentation-ready summaries from storage queries. It
// never mutates anything.
//
// Two deliberately distinct window rules: calendar-month figures span
// `[first-of-month, first-of-next-month)` in UTC, while "recent" figures
// (today, 7 days, 30 days) anchor at the current instant.
type Reporter struct {
	store service.Storage
	now   func() time.Time
}

// NewReporter creates a reporter backed by the given storage.
func NewReporter(store service.Storage) *Reporter {
	return &Reporter{store: store, now: time.Now}
}

// UserID resolves a transport identity to the internal user id, creating
// the user on first contact.
func (r *Reporter) UserID(ctx context.Context, externalID string) (int64, error) {
	user, err := r.store.GetOrCreateUser(ctx, externalID, "")
	if err != nil {
		return 0, err
	}
	return user.ID, nil
}

// Overview renders total balance plus today / last-7-days / current-month
// income and expense.
func (r *Reporter) Overview(ctx context.Context, userID int64) (string, error) {
	now := r.now().UTC()

	balance, err := r.store.GetBalance(ctx, userID)
	if err != nil {
		return "", err
	}

	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	today, err := r.store.GetSummary(ctx, userID, dayStart, now)
	if err != nil {
		return "", err
	}

	week, err := r.store.GetSummary(ctx, userID, now.AddDate(0, 0, -7), now)
	if err != nil {
		return "", err
	}

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	monthTotals, err := r.store.GetSummary(ctx, userID, monthStart, monthStart.AddDate(0, 1, 0))
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "💰 Số dư: %s\n\n", money.Format(balance))
	fmt.Fprintf(&b, "Hôm nay: thu %s, chi %s\n", money.Format(today.Income), money.Format(today.Expense))
	fmt.Fprintf(&b, "7 ngày: thu %s, chi %s\n", money.Format(week.Income), money.Format(week.Expense))
	fmt.Fprintf(&b, "Tháng %d: thu %s, chi %s (còn %s)",
		int(now.Month()), money.Format(monthTotals.Income), money.Format(monthTotals.Expense),
		money.Format(monthTotals.Net()))
	return b.String(), nil
}

// MonthBreakdown renders the current month's expenses by category, largest
// first, calling out the top three.
func (r *Reporter) MonthBreakdown(ctx context.Context, userID int64) (string, error) {
	now := r.now().UTC()
	totals, err := r.store.GetCategorySummaryMonth(ctx, userID, now.Year(), now.Month())
	if err != nil {
		return "", err
	}
	if len(totals) == 0 {
		return fmt.Sprintf("Tháng %d chưa có khoản chi nào.", int(now.Month())), nil
	}

	var sum float64
	for _, ct := range totals {
		sum += ct.Total
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📊 Chi tiêu tháng %d: %s\n", int(now.Month()), money.Format(sum))
	for i, ct := range totals {
		marker := "•"
		if i < 3 {
			marker = fmt.Sprintf("%d.", i+1)
		}
		share := 0.0
		if sum > 0 {
			share = ct.Total / sum * 100
		}
		fmt.Fprintf(&b, "%s %s: %s (%.0f%%)\n", marker, ct.Category, money.Format(ct.Total), share)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

// Wallets renders every wallet with its derived balance.
func (r *Reporter) Wallets(ctx context.Context, userID int64) (string, error) {
	balances, err := r.WalletBalances(ctx, userID)
	if err != nil {
		return "", err
	}
	if len(balances) == 0 {
		return "Chưa có ví nào.", nil
	}

	var b strings.Builder
	b.WriteString("👛 Ví của bạn:\n")
	for _, wb := range balances {
		fmt.Fprintf(&b, "• %s: %s\n", wb.Wallet.Name, money.Format(wb.Balance))
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

// WalletBalances pairs each wallet with its derived balance.
func (r *Reporter) WalletBalances(ctx context.Context, userID int64) ([]service.WalletBalance, error) {
	wallets, err := r.store.GetWallets(ctx, userID)
	if err != nil {
		return nil, err
	}

	balances := make([]service.WalletBalance, 0, len(wallets))
	for _, w := range wallets {
		bal, err := r.store.GetWalletBalance(ctx, userID, w.ID)
		if err != nil {
			return nil, err
		}
		balances = append(balances, service.WalletBalance{Wallet: w, Balance: bal})
	}
	return balances, nil
}

// Insights compares the last 30 days of spending with the 30 days before
// that.
func (r *Reporter) Insights(ctx context.Context, userID int64) (string, error) {
	now := r.now().UTC()

	current, err := r.store.GetSummary(ctx, userID, now.AddDate(0, 0, -30), now)
	if err != nil {
		return "", err
	}
	previous, err := r.store.GetSummary(ctx, userID, now.AddDate(0, 0, -60), now.AddDate(0, 0, -30))
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🔎 30 ngày qua: chi %s", money.Format(current.Expense))
	switch {
	case previous.Expense == 0 && current.Expense == 0:
		b.WriteString("\nChưa đủ dữ liệu để so sánh.")
	case previous.Expense == 0:
		b.WriteString("\n30 ngày trước đó không có khoản chi nào.")
	default:
		change := (current.Expense - previous.Expense) / previous.Expense * 100
		if change >= 0 {
			fmt.Fprintf(&b, "\nTăng %.0f%% so với 30 ngày trước đó (%s).", change, money.Format(previous.Expense))
		} else {
			fmt.Fprintf(&b, "\nGiảm %.0f%% so với 30 ngày trước đó (%s).", -change, money.Format(previous.Expense))
		}
	}
	return b.String(), nil
}
