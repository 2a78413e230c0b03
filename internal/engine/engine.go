// Package engine implements the per-user conversational state machine that
// collects structured input across turns and commits completed flows to the
// ledger.
package engine

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"log/slog"
	"sync"

	"github.com/hxngan/vitien/internal/common"
	"github.com/hxngan/vitien/internal/goal"
	"github.com/hxngan/vitien/internal/limits"
	"github.com/hxngan/vitien/internal/model"
	"github.com/hxngan/vitien/internal/money"
	"github.com/hxngan/vitien/internal/service"
)

const sessionStripes = 64

// Engine routes inbound user events through per-user sessions. Processing is
// serialized per user: two events for the same user never race on one
// session or one goal balance.
type Engine struct {
	store  service.Storage
	goals  *goal.Ledger
	limits *limits.Evaluator

	mu       [sessionStripes]sync.Mutex
	sessions [sessionStripes]map[string]*session
}

// New creates an engine backed by the given storage.
func New(store service.Storage) *Engine {
	e := &Engine{
		store:  store,
		goals:  goal.NewLedger(store),
		limits: limits.NewEvaluator(store),
	}
	for i := range e.sessions {
		e.sessions[i] = make(map[string]*session)
	}
	return e
}

// HandleEvent processes one user turn and returns what to render. The
// externalID is the transport platform's identity key; fullName is used only
// on first contact.
func (e *Engine) HandleEvent(ctx context.Context, externalID, fullName string, ev Event) (*Outcome, error) {
	if externalID == "" {
		return nil, common.NewValidationError("externalID", "cannot be empty")
	}

	idx := stripeFor(externalID)
	e.mu[idx].Lock()
	defer e.mu[idx].Unlock()

	user, err := e.resolveUser(ctx, externalID, fullName)
	if err != nil {
		return nil, err
	}

	var out *Outcome
	switch {
	case ev.Command != "":
		out, err = e.startCommand(ctx, user, idx, ev.Command)
	case ev.Callback != "":
		out, err = e.handleCallback(ctx, user, idx, ev.Callback)
	default:
		out, err = e.handleText(ctx, user, idx, ev.Text)
	}
	if err != nil {
		return e.outcomeFromError(user, idx, err)
	}
	return out, nil
}

// resolveUser finds or creates the user and provisions the default wallets
// and categories. Both ensure calls are idempotent.
func (e *Engine) resolveUser(ctx context.Context, externalID, fullName string) (*model.User, error) {
	user, err := e.store.GetOrCreateUser(ctx, externalID, fullName)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve user: %w", err)
	}
	if err := e.store.EnsureDefaultWallets(ctx, user.ID); err != nil {
		return nil, err
	}
	if err := e.store.EnsureDefaultCategories(ctx, user.ID); err != nil {
		return nil, err
	}
	return user, nil
}

// startCommand begins a new flow, silently replacing any session in
// progress.
func (e *Engine) startCommand(ctx context.Context, user *model.User, idx uint32, command string) (*Outcome, error) {
	e.clearSession(user.ExternalID, idx)

	switch command {
	case CommandStart:
		return confirm("Chào " + user.FullName + "! Gõ số tiền kèm ghi chú (vd: 35k ăn sáng) để ghi chi tiêu nhanh."), nil
	case CommandAdd:
		e.setSession(user.ExternalID, idx, &session{flow: flowAddTransaction, step: stepTxnDirection})
		return prompt("Thu hay chi?",
			Option{Label: "Khoản thu", Data: callback(cbDirection, string(model.DirectionIncome))},
			Option{Label: "Khoản chi", Data: callback(cbDirection, string(model.DirectionExpense))},
		), nil
	case CommandTransfer:
		return e.startTransfer(ctx, user, idx)
	case CommandGoals:
		return e.listGoals(ctx, user)
	case CommandGoalNew:
		e.setSession(user.ExternalID, idx, &session{flow: flowCreateGoal, step: stepGoalName})
		return prompt("Tên mục tiêu tiết kiệm?"), nil
	case CommandBudget:
		e.setSession(user.ExternalID, idx, &session{flow: flowBudget})
		return prompt("Nhập tổng thu nhập để chia theo quy tắc 4-2-2-2:"), nil
	case CommandLimit:
		return e.startSetLimit(ctx, user, idx)
	case CommandCategory:
		e.setSession(user.ExternalID, idx, &session{flow: flowAddCategory, step: stepCategoryDirection})
		return prompt("Danh mục thu hay chi?",
			Option{Label: "Thu", Data: callback(cbDirection, string(model.DirectionIncome))},
			Option{Label: "Chi", Data: callback(cbDirection, string(model.DirectionExpense))},
			Option{Label: "Xóa danh mục", Data: callback(cbDeleteCat, "")},
		), nil
	case CommandSalary:
		e.setSession(user.ExternalID, idx, &session{flow: flowSalarySplit})
		return prompt("Nhập tổng lương để chia vào 4 ví:"), nil
	case CommandWallet:
		e.setSession(user.ExternalID, idx, &session{flow: flowAddWallet})
		return prompt("Tên ví mới?"), nil
	case CommandRecent:
		return e.listTransactions(ctx, user)
	case CommandExport:
		e.setSession(user.ExternalID, idx, &session{flow: flowExportMonth})
		return prompt("Xuất tháng nào? (vd: 03-2026, hoặc \"tháng này\")"), nil
	default:
		return reject("Lệnh không hợp lệ."), nil
	}
}

// handleText advances the active flow with one line of free text. With no
// active session, the text is treated as a quick expense entry
// ("35k ăn sáng") and drops into the add-transaction flow at the category
// step.
func (e *Engine) handleText(ctx context.Context, user *model.User, idx uint32, text string) (*Outcome, error) {
	if s := e.session(user.ExternalID, idx); s != nil {
		return e.advance(ctx, user, idx, s, text)
	}

	amount, note, err := money.SplitAmountAndNote(text)
	if err != nil || amount <= 0 {
		return reject("Mình chưa hiểu. Gõ số tiền kèm ghi chú (vd: 35k ăn sáng) hoặc dùng lệnh."), nil
	}

	s := &session{
		flow:      flowAddTransaction,
		step:      stepTxnCategory,
		direction: model.DirectionExpense,
		amount:    amount,
		note:      note,
	}
	e.setSession(user.ExternalID, idx, s)
	return e.promptCategory(ctx, user, s.direction)
}

// handleCallback handles a menu selection. Some callbacks advance the active
// flow, some start one, and some commit immediately.
func (e *Engine) handleCallback(ctx context.Context, user *model.User, idx uint32, data string) (*Outcome, error) {
	tag, payload := splitCallback(data)

	switch tag {
	case cbDeleteCat:
		return e.handleDeleteCategory(ctx, user, idx, payload)
	case cbGoalDeposit, cbGoalWithdraw:
		return e.startGoalMovement(ctx, user, idx, tag, payload)
	case cbEditTxn:
		return e.startEditTransaction(ctx, user, idx, payload)
	case cbDeleteTxn:
		return e.deleteTransaction(ctx, user, idx, payload)
	case cbBudgetSave:
		return e.saveBudgetSnapshot(ctx, user, payload)
	case cbBudgetGoals:
		return e.spinOffBudgetGoals(ctx, user, payload)
	}

	s := e.session(user.ExternalID, idx)
	if s == nil {
		return reject("Lựa chọn này không còn hiệu lực."), nil
	}
	return e.advance(ctx, user, idx, s, data)
}

// advance dispatches one input (free text or callback data) to the active
// flow's step handler.
func (e *Engine) advance(ctx context.Context, user *model.User, idx uint32, s *session, input string) (*Outcome, error) {
	switch s.flow {
	case flowAddTransaction:
		return e.advanceAddTransaction(ctx, user, idx, s, input)
	case flowTransfer:
		return e.advanceTransfer(ctx, user, idx, s, input)
	case flowCreateGoal:
		return e.advanceCreateGoal(ctx, user, idx, s, input)
	case flowGoalDeposit, flowGoalWithdraw:
		return e.advanceGoalMovement(ctx, user, idx, s, input)
	case flowBudget:
		return e.advanceBudget(ctx, user, idx, s, input)
	case flowSetLimit:
		return e.advanceSetLimit(ctx, user, idx, s, input)
	case flowAddCategory:
		return e.advanceAddCategory(ctx, user, idx, s, input)
	case flowEditTransaction:
		return e.advanceEditTransaction(ctx, user, idx, s, input)
	case flowSalarySplit:
		return e.advanceSalarySplit(ctx, user, idx, s, input)
	case flowAddWallet:
		return e.advanceAddWallet(ctx, user, idx, s, input)
	case flowExportMonth:
		return e.advanceExportMonth(ctx, user, idx, s, input)
	default:
		e.clearSession(user.ExternalID, idx)
		return reject("Phiên làm việc không hợp lệ, hãy bắt đầu lại."), nil
	}
}

// outcomeFromError maps domain errors onto conversational outcomes.
// Parse and validation failures keep the session so the same step retries;
// not-found and configuration failures abort the flow.
func (e *Engine) outcomeFromError(user *model.User, idx uint32, err error) (*Outcome, error) {
	var vErr *common.ValidationError
	switch {
	case errors.Is(err, money.ErrParse):
		return reject("Không hiểu số tiền. Thử lại (vd: 200k, 1.5tr, 150.000)."), nil
	case errors.As(err, &vErr):
		return reject(vErr.Reason + ". Thử lại."), nil
	case errors.Is(err, common.ErrInsufficientFunds):
		// The goal flow already reset itself to the amount step.
		return reject("Số dư mục tiêu không đủ. Nhập số tiền khác:"), nil
	case errors.Is(err, common.ErrNotFound):
		e.clearSession(user.ExternalID, idx)
		return reject("Không tìm thấy dữ liệu này nữa. Thao tác đã bị hủy."), nil
	case errors.Is(err, common.ErrMissingWallets):
		e.clearSession(user.ExternalID, idx)
		return reject("Chưa đủ 4 ví mặc định để chia lương. Thao tác đã bị hủy."), nil
	}

	var uErr *common.UserError
	if errors.As(err, &uErr) {
		e.clearSession(user.ExternalID, idx)
		slog.Error("flow failed", "user_id", user.ID, "error", err)
		return reject(uErr.UserMessage), nil
	}

	return nil, err
}

func (e *Engine) session(key string, idx uint32) *session {
	return e.sessions[idx][key]
}

func (e *Engine) setSession(key string, idx uint32, s *session) {
	e.sessions[idx][key] = s
}

func (e *Engine) clearSession(key string, idx uint32) {
	delete(e.sessions[idx], key)
}

func stripeFor(key string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return h.Sum32() % sessionStripes
}
