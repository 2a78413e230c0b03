package engine

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hxngan/vitien/internal/model"
	"github.com/hxngan/vitien/internal/storage"
)

const testUserKey = "tg:1001"

func createTestEngine(t *testing.T) (*Engine, *storage.SQLiteStorage) {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.Migrate(context.Background()))
	return New(store), store
}

func send(t *testing.T, e *Engine, ev Event) *Outcome {
	t.Helper()
	out, err := e.HandleEvent(context.Background(), testUserKey, "Ngân", ev)
	require.NoError(t, err)
	require.NotNil(t, out)
	return out
}

func text(s string) Event { return Event{Text: s} }
func command(s string) Event { return Event{Command: s} }
func pick(data string) Event { return Event{Callback: data} }

// optionData finds the callback data of the first option whose label
// contains the given substring.
func optionData(t *testing.T, out *Outcome, labelPart string) string {
	t.Helper()
	for _, o := range out.Options {
		if strings.Contains(o.Label, labelPart) {
			return o.Data
		}
	}
	t.Fatalf("no option matching %q in %v", labelPart, out.Options)
	return ""
}

func TestFirstContactProvisionsDefaults(t *testing.T) {
	e, store := createTestEngine(t)
	ctx := context.Background()

	out := send(t, e, command(CommandStart))
	assert.Equal(t, OutcomeConfirmation, out.Kind)

	user, err := store.GetUserByExternalID(ctx, testUserKey)
	require.NoError(t, err)

	wallets, err := store.GetWallets(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, wallets, 4)

	cats, err := store.GetCategories(ctx, user.ID, "")
	require.NoError(t, err)
	assert.NotEmpty(t, cats)

	// Repeated contact must not provision again.
	send(t, e, command(CommandStart))
	wallets, err = store.GetWallets(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, wallets, 4)
}

func TestAddTransactionFlow(t *testing.T) {
	e, store := createTestEngine(t)
	ctx := context.Background()

	out := send(t, e, command(CommandAdd))
	assert.Equal(t, OutcomePrompt, out.Kind)
	require.Len(t, out.Options, 2)

	out = send(t, e, pick("dir|expense"))
	assert.Equal(t, OutcomePrompt, out.Kind)

	out = send(t, e, text("35k ăn sáng"))
	assert.Equal(t, OutcomePrompt, out.Kind)
	assert.NotEmpty(t, out.Options, "category menu expected")

	out = send(t, e, pick("cat|Ăn uống"))
	assert.Equal(t, OutcomePrompt, out.Kind)
	require.NotEmpty(t, out.Options, "wallet menu expected")

	out = send(t, e, pick(out.Options[0].Data))
	assert.Equal(t, OutcomeConfirmation, out.Kind)

	user, err := store.GetUserByExternalID(ctx, testUserKey)
	require.NoError(t, err)
	txns, err := store.GetRecentTransactions(ctx, user.ID, 0)
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.InDelta(t, 35_000, txns[0].Amount, 0.001)
	assert.Equal(t, "Ăn uống", txns[0].Category)
	assert.Equal(t, "ăn sáng", txns[0].Note)
	assert.Equal(t, model.DirectionExpense, txns[0].Direction)
	assert.Positive(t, txns[0].WalletID)
}

func TestAddTransaction_BadAmountRepromptsSameStep(t *testing.T) {
	e, _ := createTestEngine(t)

	send(t, e, command(CommandAdd))
	send(t, e, pick("dir|expense"))

	out := send(t, e, text("abc xyz"))
	assert.Equal(t, OutcomeValidationError, out.Kind)

	// Same step still accepts a valid line.
	out = send(t, e, text("50k"))
	assert.Equal(t, OutcomePrompt, out.Kind)
	assert.NotEmpty(t, out.Options)
}

func TestAddTransaction_UnknownWalletReprompts(t *testing.T) {
	e, _ := createTestEngine(t)

	send(t, e, command(CommandAdd))
	send(t, e, pick("dir|expense"))
	send(t, e, text("50k"))
	send(t, e, text("Ăn uống"))

	out := send(t, e, text("ví không tồn tại"))
	assert.Equal(t, OutcomeValidationError, out.Kind)

	// Typed wallet names match case-insensitively.
	out = send(t, e, text("chi tiêu thiết yếu"))
	assert.Equal(t, OutcomeConfirmation, out.Kind)
}

func TestQuickExpenseFromBareText(t *testing.T) {
	e, store := createTestEngine(t)
	ctx := context.Background()

	out := send(t, e, text("120k cà phê"))
	assert.Equal(t, OutcomePrompt, out.Kind, "bare amount text should drop into the category step")

	send(t, e, pick("cat|Ăn uống"))
	out = send(t, e, text("Chi tiêu thiết yếu"))
	assert.Equal(t, OutcomeConfirmation, out.Kind)

	user, err := store.GetUserByExternalID(ctx, testUserKey)
	require.NoError(t, err)
	txns, err := store.GetRecentTransactions(ctx, user.ID, 0)
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, "cà phê", txns[0].Note)
}

func TestUnparseableBareTextIsRejected(t *testing.T) {
	e, _ := createTestEngine(t)

	out := send(t, e, text("xin chào"))
	assert.Equal(t, OutcomeValidationError, out.Kind)
}

func TestNewFlowReplacesSession(t *testing.T) {
	e, store := createTestEngine(t)
	ctx := context.Background()

	// Halfway into add-transaction…
	send(t, e, command(CommandAdd))
	send(t, e, pick("dir|income"))

	// …starting a budget flow silently discards it.
	out := send(t, e, command(CommandBudget))
	assert.Equal(t, OutcomePrompt, out.Kind)

	out = send(t, e, text("10tr"))
	assert.Equal(t, OutcomeConfirmation, out.Kind)
	assert.Contains(t, out.Message, "4-2-2-2")

	user, err := store.GetUserByExternalID(ctx, testUserKey)
	require.NoError(t, err)
	txns, err := store.GetRecentTransactions(ctx, user.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, txns, "abandoned flow must not have committed anything")
}

func TestTransferFlow(t *testing.T) {
	e, store := createTestEngine(t)
	ctx := context.Background()

	send(t, e, command(CommandStart))
	user, err := store.GetUserByExternalID(ctx, testUserKey)
	require.NoError(t, err)
	wallets, err := store.GetWallets(ctx, user.ID)
	require.NoError(t, err)
	src, dst := wallets[0], wallets[1]

	// Seed the source wallet.
	_, err = store.AddTransaction(ctx, &model.Transaction{
		UserID: user.ID, WalletID: src.ID, Direction: model.DirectionIncome,
		Amount: 1_000_000, Category: "Lương",
	})
	require.NoError(t, err)

	out := send(t, e, command(CommandTransfer))
	assert.Equal(t, OutcomePrompt, out.Kind)

	send(t, e, pick(optionData(t, out, src.Name)))
	out = send(t, e, text(dst.Name))
	assert.Equal(t, OutcomePrompt, out.Kind)

	send(t, e, text("300k"))
	out = send(t, e, text("-"))
	assert.Equal(t, OutcomeConfirmation, out.Kind)

	balSrc, err := store.GetWalletBalance(ctx, user.ID, src.ID)
	require.NoError(t, err)
	assert.InDelta(t, 700_000, balSrc, 0.001)

	balDst, err := store.GetWalletBalance(ctx, user.ID, dst.ID)
	require.NoError(t, err)
	assert.InDelta(t, 300_000, balDst, 0.001)

	// Total balance is unchanged by a transfer.
	total, err := store.GetBalance(ctx, user.ID)
	require.NoError(t, err)
	assert.InDelta(t, 1_000_000, total, 0.001)

	txns, err := store.GetRecentTransactions(ctx, user.ID, 10)
	require.NoError(t, err)
	require.Len(t, txns, 3)
	assert.Contains(t, txns[0].Category, "Chuyển từ ví "+src.Name)
	assert.Contains(t, txns[1].Category, "Chuyển sang ví "+dst.Name)
}

func TestTransfer_SelfTransferRejected(t *testing.T) {
	e, store := createTestEngine(t)
	ctx := context.Background()

	send(t, e, command(CommandStart))
	user, err := store.GetUserByExternalID(ctx, testUserKey)
	require.NoError(t, err)
	wallets, err := store.GetWallets(ctx, user.ID)
	require.NoError(t, err)

	send(t, e, command(CommandTransfer))
	send(t, e, text(wallets[0].Name))

	out := send(t, e, text(wallets[0].Name))
	assert.Equal(t, OutcomeValidationError, out.Kind)

	// The destination step retries.
	out = send(t, e, text(wallets[1].Name))
	assert.Equal(t, OutcomePrompt, out.Kind)
}

func TestGoalFlow(t *testing.T) {
	e, store := createTestEngine(t)
	ctx := context.Background()

	send(t, e, command(CommandGoalNew))
	send(t, e, text("Du lịch Nhật"))
	out := send(t, e, text("30tr"))
	assert.Equal(t, OutcomeConfirmation, out.Kind)

	out = send(t, e, command(CommandGoals))
	assert.Equal(t, OutcomeConfirmation, out.Kind)
	assert.Contains(t, out.Message, "Du lịch Nhật")

	// Deposit.
	send(t, e, pick(optionData(t, out, "Nạp")))
	send(t, e, text("5tr"))
	out = send(t, e, text("-"))
	assert.Equal(t, OutcomeConfirmation, out.Kind)

	user, err := store.GetUserByExternalID(ctx, testUserKey)
	require.NoError(t, err)
	goals, err := store.GetGoals(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, goals, 1)
	assert.InDelta(t, 5_000_000, goals[0].CurrentAmount, 0.001)
}

func TestGoalWithdraw_InsufficientRepromptsAmount(t *testing.T) {
	e, store := createTestEngine(t)
	ctx := context.Background()

	send(t, e, command(CommandGoalNew))
	send(t, e, text("Quỹ khẩn cấp"))
	send(t, e, text("10tr"))

	out := send(t, e, command(CommandGoals))
	send(t, e, pick(optionData(t, out, "Nạp")))
	send(t, e, text("1tr"))
	send(t, e, text("-"))

	out = send(t, e, command(CommandGoals))
	send(t, e, pick(optionData(t, out, "Rút")))
	send(t, e, text("5tr"))
	out = send(t, e, text("-"))
	assert.Equal(t, OutcomeValidationError, out.Kind, "overdraw must be rejected")

	user, err := store.GetUserByExternalID(ctx, testUserKey)
	require.NoError(t, err)
	goals, err := store.GetGoals(ctx, user.ID)
	require.NoError(t, err)
	assert.InDelta(t, 1_000_000, goals[0].CurrentAmount, 0.001, "no mutation on overdraw")

	// The flow backed up to the amount step; a valid amount succeeds.
	send(t, e, text("500k"))
	out = send(t, e, text("-"))
	assert.Equal(t, OutcomeConfirmation, out.Kind)

	goals, err = store.GetGoals(ctx, user.ID)
	require.NoError(t, err)
	assert.InDelta(t, 500_000, goals[0].CurrentAmount, 0.001)
}

func TestBudgetFlowActions(t *testing.T) {
	e, store := createTestEngine(t)
	ctx := context.Background()

	send(t, e, command(CommandBudget))
	out := send(t, e, text("20tr"))
	assert.Equal(t, OutcomeConfirmation, out.Kind)
	require.Len(t, out.Options, 2)

	saveData := optionData(t, out, "Lưu")
	goalsData := optionData(t, out, "mục tiêu")

	// Either, both, or neither action may be invoked.
	out = send(t, e, pick(saveData))
	assert.Equal(t, OutcomeConfirmation, out.Kind)

	out = send(t, e, pick(goalsData))
	assert.Equal(t, OutcomeConfirmation, out.Kind)

	user, err := store.GetUserByExternalID(ctx, testUserKey)
	require.NoError(t, err)
	goals, err := store.GetGoals(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, goals, 2)

	// 20% long-term and 20% invest buckets of 20M.
	for _, g := range goals {
		assert.InDelta(t, 4_000_000, g.TargetAmount, 0.001)
	}
}

func TestSalarySplitFlow(t *testing.T) {
	e, store := createTestEngine(t)
	ctx := context.Background()

	send(t, e, command(CommandSalary))
	out := send(t, e, text("10tr"))
	assert.Equal(t, OutcomeConfirmation, out.Kind)

	user, err := store.GetUserByExternalID(ctx, testUserKey)
	require.NoError(t, err)
	txns, err := store.GetRecentTransactions(ctx, user.ID, 10)
	require.NoError(t, err)
	require.Len(t, txns, 4)

	total, err := store.GetBalance(ctx, user.ID)
	require.NoError(t, err)
	assert.InDelta(t, 10_000_000, total, 0.001)

	wallets, err := store.GetWallets(ctx, user.ID)
	require.NoError(t, err)
	for _, w := range wallets {
		bal, err := store.GetWalletBalance(ctx, user.ID, w.ID)
		require.NoError(t, err)
		if w.Purpose == model.PurposeEssential {
			assert.InDelta(t, 4_000_000, bal, 0.001)
		} else {
			assert.InDelta(t, 2_000_000, bal, 0.001)
		}
	}
}

func TestSetLimitFlowAndWarning(t *testing.T) {
	e, _ := createTestEngine(t)

	send(t, e, command(CommandLimit))
	send(t, e, pick("cat|Ăn uống"))
	out := send(t, e, text("100k"))
	assert.Equal(t, OutcomeConfirmation, out.Kind)

	// First expense under the limit: no warning.
	send(t, e, text("80k phở"))
	send(t, e, pick("cat|Ăn uống"))
	out = send(t, e, text("Chi tiêu thiết yếu"))
	assert.Equal(t, OutcomeConfirmation, out.Kind)
	assert.NotContains(t, out.Message, "hạn mức")

	// Second expense pushes past it: warning appended to the confirmation.
	send(t, e, text("50k bún chả"))
	send(t, e, pick("cat|Ăn uống"))
	out = send(t, e, text("Chi tiêu thiết yếu"))
	assert.Equal(t, OutcomeConfirmation, out.Kind)
	assert.Contains(t, out.Message, "hạn mức")
}

func TestAddCategoryFlow(t *testing.T) {
	e, store := createTestEngine(t)
	ctx := context.Background()

	send(t, e, command(CommandCategory))
	send(t, e, pick("dir|income"))
	out := send(t, e, text("Freelance"))
	assert.Equal(t, OutcomeConfirmation, out.Kind)

	user, err := store.GetUserByExternalID(ctx, testUserKey)
	require.NoError(t, err)
	cats, err := store.GetCategories(ctx, user.ID, model.DirectionIncome)
	require.NoError(t, err)

	found := false
	for _, c := range cats {
		if c.Name == "Freelance" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestDeleteCategoryFlow(t *testing.T) {
	e, store := createTestEngine(t)
	ctx := context.Background()

	out := send(t, e, command(CommandCategory))
	deleteData := optionData(t, out, "Xóa danh mục")

	out = send(t, e, pick(deleteData))
	assert.Equal(t, OutcomePrompt, out.Kind)
	target := optionData(t, out, "Giải trí")

	out = send(t, e, pick(target))
	assert.Equal(t, OutcomeConfirmation, out.Kind)

	user, err := store.GetUserByExternalID(ctx, testUserKey)
	require.NoError(t, err)
	cats, err := store.GetCategories(ctx, user.ID, model.DirectionExpense)
	require.NoError(t, err)
	for _, c := range cats {
		assert.NotEqual(t, "Giải trí", c.Name)
	}

	// Replaying the callback hits a missing category and aborts.
	out = send(t, e, pick(target))
	assert.Equal(t, OutcomeValidationError, out.Kind)
}

func TestDeleteCategory_HistorySurvives(t *testing.T) {
	e, store := createTestEngine(t)
	ctx := context.Background()

	send(t, e, text("50k vé xem phim"))
	send(t, e, pick("cat|Giải trí"))
	out := send(t, e, text("Chi tiêu thiết yếu"))
	require.Equal(t, OutcomeConfirmation, out.Kind)

	out = send(t, e, command(CommandCategory))
	out = send(t, e, pick(optionData(t, out, "Xóa danh mục")))
	out = send(t, e, pick(optionData(t, out, "Giải trí")))
	assert.Equal(t, OutcomeConfirmation, out.Kind)

	user, err := store.GetUserByExternalID(ctx, testUserKey)
	require.NoError(t, err)
	txns, err := store.GetRecentTransactions(ctx, user.ID, 0)
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, "Giải trí", txns[0].Category)
}

func TestRecentTransactionsListing(t *testing.T) {
	e, store := createTestEngine(t)
	ctx := context.Background()

	send(t, e, text("50k phở"))
	send(t, e, pick("cat|Ăn uống"))
	send(t, e, text("Chi tiêu thiết yếu"))
	send(t, e, text("120k cà phê"))
	send(t, e, pick("cat|Ăn uống"))
	send(t, e, text("Chi tiêu thiết yếu"))

	out := send(t, e, command(CommandRecent))
	assert.Equal(t, OutcomeConfirmation, out.Kind)
	assert.Contains(t, out.Message, "50.000đ")
	assert.Contains(t, out.Message, "120.000đ")
	require.Len(t, out.Options, 4, "each entry carries edit and delete actions")

	user, err := store.GetUserByExternalID(ctx, testUserKey)
	require.NoError(t, err)
	txns, err := store.GetRecentTransactions(ctx, user.ID, 0)
	require.NoError(t, err)
	oldest := txns[len(txns)-1]

	// The oldest entry is still deletable long after its commit menu is gone.
	out = send(t, e, pick(optionData(t, out, fmt.Sprintf("Xóa #%d", oldest.ID))))
	assert.Equal(t, OutcomeConfirmation, out.Kind)

	out = send(t, e, command(CommandRecent))
	assert.NotContains(t, out.Message, "50.000đ")
	assert.Contains(t, out.Message, "120.000đ")

	// And the remaining one is still editable from the listing.
	send(t, e, pick(optionData(t, out, "Sửa #")))
	send(t, e, pick("edit_field|note"))
	out = send(t, e, text("cà phê đen đá"))
	assert.Equal(t, OutcomeConfirmation, out.Kind)

	txns, err = store.GetRecentTransactions(ctx, user.ID, 0)
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, "cà phê đen đá", txns[0].Note)
}

func TestEditTransactionFlow(t *testing.T) {
	e, store := createTestEngine(t)
	ctx := context.Background()

	send(t, e, text("50k phở"))
	send(t, e, pick("cat|Ăn uống"))
	out := send(t, e, text("Chi tiêu thiết yếu"))
	require.Equal(t, OutcomeConfirmation, out.Kind)

	editData := optionData(t, out, "Sửa")
	out = send(t, e, pick(editData))
	assert.Equal(t, OutcomePrompt, out.Kind)

	send(t, e, pick("edit_field|amount"))
	out = send(t, e, text("65k"))
	assert.Equal(t, OutcomeConfirmation, out.Kind)

	user, err := store.GetUserByExternalID(ctx, testUserKey)
	require.NoError(t, err)
	txns, err := store.GetRecentTransactions(ctx, user.ID, 0)
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.InDelta(t, 65_000, txns[0].Amount, 0.001)
	// Everything else untouched.
	assert.Equal(t, "Ăn uống", txns[0].Category)
	assert.Equal(t, "phở", txns[0].Note)
}

func TestDeleteTransactionCallback(t *testing.T) {
	e, store := createTestEngine(t)
	ctx := context.Background()

	send(t, e, text("50k phở"))
	send(t, e, pick("cat|Ăn uống"))
	out := send(t, e, text("Chi tiêu thiết yếu"))
	require.Equal(t, OutcomeConfirmation, out.Kind)

	out = send(t, e, pick(optionData(t, out, "Xóa")))
	assert.Equal(t, OutcomeConfirmation, out.Kind)

	user, err := store.GetUserByExternalID(ctx, testUserKey)
	require.NoError(t, err)
	txns, err := store.GetRecentTransactions(ctx, user.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, txns)
}

func TestExportMonthFlow(t *testing.T) {
	e, _ := createTestEngine(t)

	send(t, e, command(CommandExport))
	out := send(t, e, text("không phải tháng"))
	assert.Equal(t, OutcomeValidationError, out.Kind)

	out = send(t, e, text("03-2026"))
	assert.Equal(t, OutcomeConfirmation, out.Kind)
	require.NotNil(t, out.Export)
	assert.Equal(t, 2026, out.Export.Year)
	assert.Equal(t, 3, int(out.Export.Month))
}

func TestStaleCallbackWithoutSession(t *testing.T) {
	e, _ := createTestEngine(t)

	out := send(t, e, pick("cat|Ăn uống"))
	assert.Equal(t, OutcomeValidationError, out.Kind)
}
