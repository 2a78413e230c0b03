package engine

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/hxngan/vitien/internal/common"
	"github.com/hxngan/vitien/internal/model"
	"github.com/hxngan/vitien/internal/money"
)

// advanceAddTransaction walks direction -> amount+note -> category -> wallet,
// committing only at the wallet step.
func (e *Engine) advanceAddTransaction(ctx context.Context, user *model.User, idx uint32, s *session, input string) (*Outcome, error) {
	switch s.step {
	case stepTxnDirection:
		dir, ok := directionFromInput(input)
		if !ok {
			return reject("Chọn \"Khoản thu\" hoặc \"Khoản chi\"."), nil
		}
		s.direction = dir
		s.step = stepTxnAmount
		return prompt("Nhập số tiền kèm ghi chú (vd: 35k ăn sáng):"), nil

	case stepTxnAmount:
		amount, note, err := money.SplitAmountAndNote(input)
		if err != nil {
			return nil, err
		}
		if amount <= 0 {
			return nil, common.NewValidationError("amount", "số tiền phải lớn hơn 0")
		}
		s.amount = amount
		s.note = note
		s.step = stepTxnCategory
		return e.promptCategory(ctx, user, s.direction)

	case stepTxnCategory:
		name := textOrPayload(input, cbCategory)
		if name == "" {
			return reject("Chọn hoặc nhập tên danh mục."), nil
		}
		s.category = name
		s.step = stepTxnWallet
		return e.promptWallet(ctx, user, "Ghi vào ví nào?", cbWallet)

	case stepTxnWallet:
		wallet, err := e.walletFromInput(ctx, user, input, cbWallet)
		if err != nil {
			return nil, err
		}
		if wallet == nil {
			return reject("Không có ví tên đó. Chọn lại:"), nil
		}
		return e.commitTransaction(ctx, user, idx, s, wallet)
	}

	e.clearSession(user.ExternalID, idx)
	return reject("Phiên làm việc không hợp lệ, hãy bắt đầu lại."), nil
}

func (e *Engine) commitTransaction(ctx context.Context, user *model.User, idx uint32, s *session, wallet *model.Wallet) (*Outcome, error) {
	id, err := e.store.AddTransaction(ctx, &model.Transaction{
		UserID:    user.ID,
		WalletID:  wallet.ID,
		Direction: s.direction,
		Amount:    s.amount,
		Category:  s.category,
		Note:      s.note,
	})
	if err != nil {
		return nil, err
	}
	e.clearSession(user.ExternalID, idx)

	verb := "chi"
	if s.direction == model.DirectionIncome {
		verb = "thu"
	}
	msg := fmt.Sprintf("Đã ghi %s %s — %s (ví %s).", verb, money.Format(s.amount), s.category, wallet.Name)

	// Limits are advisory: evaluated after the expense is committed, never
	// blocking it.
	if s.direction == model.DirectionExpense {
		status, err := e.limits.Check(ctx, user.ID, s.category)
		if err != nil {
			return nil, err
		}
		if status != nil && status.Exceeded {
			msg += fmt.Sprintf("\n⚠️ Vượt hạn mức tháng của %q: đã chi %s / hạn mức %s (vượt %s).",
				s.category, money.Format(status.Spent), money.Format(status.Limit), money.Format(status.Over))
		}
	}

	return confirm(msg,
		Option{Label: "Sửa", Data: callback(cbEditTxn, strconv.FormatInt(id, 10))},
		Option{Label: "Xóa", Data: callback(cbDeleteTxn, strconv.FormatInt(id, 10))},
	), nil
}

// listTransactions renders the newest entries with per-transaction edit and
// delete actions, so older entries stay editable after their post-commit
// menu is gone.
func (e *Engine) listTransactions(ctx context.Context, user *model.User) (*Outcome, error) {
	txns, err := e.store.GetRecentTransactions(ctx, user.ID, 5)
	if err != nil {
		return nil, err
	}
	if len(txns) == 0 {
		return confirm("Chưa có giao dịch nào."), nil
	}

	var b strings.Builder
	b.WriteString("🧾 Giao dịch gần đây:")
	options := make([]Option, 0, len(txns)*2)
	for _, txn := range txns {
		sign := "-"
		if txn.Direction == model.DirectionIncome {
			sign = "+"
		}
		fmt.Fprintf(&b, "\n#%d %s %s%s — %s", txn.ID, txn.CreatedAt.Format("02/01"), sign, money.Format(txn.Amount), txn.Category)
		if txn.Note != "" {
			fmt.Fprintf(&b, " (%s)", txn.Note)
		}
		id := strconv.FormatInt(txn.ID, 10)
		options = append(options,
			Option{Label: "Sửa #" + id, Data: callback(cbEditTxn, id)},
			Option{Label: "Xóa #" + id, Data: callback(cbDeleteTxn, id)},
		)
	}
	return confirm(b.String(), options...), nil
}

// startEditTransaction begins the edit flow for one transaction selected
// from a rendered list.
func (e *Engine) startEditTransaction(ctx context.Context, user *model.User, idx uint32, payload string) (*Outcome, error) {
	txnID, err := strconv.ParseInt(payload, 10, 64)
	if err != nil {
		return reject("Lựa chọn này không còn hiệu lực."), nil
	}

	if _, err := e.store.GetTransaction(ctx, user.ID, txnID); err != nil {
		return nil, err
	}

	e.setSession(user.ExternalID, idx, &session{flow: flowEditTransaction, step: stepEditField, txnID: txnID})
	return prompt("Sửa trường nào?",
		Option{Label: "Số tiền", Data: callback(cbEditField, "amount")},
		Option{Label: "Danh mục", Data: callback(cbEditField, "category")},
		Option{Label: "Ghi chú", Data: callback(cbEditField, "note")},
	), nil
}

func (e *Engine) advanceEditTransaction(ctx context.Context, user *model.User, idx uint32, s *session, input string) (*Outcome, error) {
	switch s.step {
	case stepEditField:
		field := textOrPayload(input, cbEditField)
		switch field {
		case "amount", "category", "note":
			s.editField = field
			s.step = stepEditValue
			return prompt("Nhập giá trị mới:"), nil
		default:
			return reject("Chọn số tiền, danh mục hoặc ghi chú."), nil
		}

	case stepEditValue:
		// Exactly one field is overwritten; everything else stays.
		switch s.editField {
		case "amount":
			amount, err := money.Parse(input)
			if err != nil {
				return nil, err
			}
			if amount <= 0 {
				return nil, common.NewValidationError("amount", "số tiền phải lớn hơn 0")
			}
			if err := e.store.UpdateTransactionAmount(ctx, user.ID, s.txnID, amount); err != nil {
				return nil, err
			}
		case "category":
			name := strings.TrimSpace(input)
			if name == "" {
				return nil, common.NewValidationError("category", "tên danh mục không được để trống")
			}
			if err := e.store.UpdateTransactionCategory(ctx, user.ID, s.txnID, name); err != nil {
				return nil, err
			}
		case "note":
			if err := e.store.UpdateTransactionNote(ctx, user.ID, s.txnID, strings.TrimSpace(input)); err != nil {
				return nil, err
			}
		}
		e.clearSession(user.ExternalID, idx)
		return confirm("Đã cập nhật giao dịch."), nil
	}

	e.clearSession(user.ExternalID, idx)
	return reject("Phiên làm việc không hợp lệ, hãy bắt đầu lại."), nil
}

// deleteTransaction commits immediately; no confirmation step.
func (e *Engine) deleteTransaction(ctx context.Context, user *model.User, idx uint32, payload string) (*Outcome, error) {
	txnID, err := strconv.ParseInt(payload, 10, 64)
	if err != nil {
		return reject("Lựa chọn này không còn hiệu lực."), nil
	}
	if err := e.store.DeleteTransaction(ctx, user.ID, txnID); err != nil {
		return nil, err
	}
	return confirm("Đã xóa giao dịch."), nil
}

func (e *Engine) promptCategory(ctx context.Context, user *model.User, dir model.Direction) (*Outcome, error) {
	cats, err := e.store.GetCategories(ctx, user.ID, dir)
	if err != nil {
		return nil, err
	}
	options := make([]Option, 0, len(cats))
	for _, c := range cats {
		options = append(options, Option{Label: c.Name, Data: callback(cbCategory, c.Name)})
	}
	return prompt("Chọn danh mục (hoặc nhập tên mới):", options...), nil
}

func (e *Engine) promptWallet(ctx context.Context, user *model.User, msg, tag string) (*Outcome, error) {
	wallets, err := e.store.GetWallets(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	options := make([]Option, 0, len(wallets))
	for _, w := range wallets {
		options = append(options, Option{Label: w.Name, Data: callback(tag, strconv.FormatInt(w.ID, 10))})
	}
	return prompt(msg, options...), nil
}

// walletFromInput resolves a wallet from either a menu callback carrying the
// wallet id or a typed name (matched case-insensitively). Returns (nil, nil)
// when nothing matches.
func (e *Engine) walletFromInput(ctx context.Context, user *model.User, input, tag string) (*model.Wallet, error) {
	if t, payload := splitCallback(input); t == tag {
		id, err := strconv.ParseInt(payload, 10, 64)
		if err != nil {
			return nil, nil
		}
		return e.store.GetWallet(ctx, user.ID, id)
	}

	name := strings.TrimSpace(input)
	if name == "" {
		return nil, nil
	}
	return e.store.GetWalletByName(ctx, user.ID, name)
}

// textOrPayload returns the payload when input is a callback with the given
// tag, otherwise the trimmed text.
func textOrPayload(input, tag string) string {
	if t, payload := splitCallback(input); t == tag {
		return payload
	}
	return strings.TrimSpace(input)
}

func directionFromInput(input string) (model.Direction, bool) {
	v := textOrPayload(input, cbDirection)
	switch strings.ToLower(v) {
	case string(model.DirectionIncome), "thu":
		return model.DirectionIncome, true
	case string(model.DirectionExpense), "chi":
		return model.DirectionExpense, true
	}
	return "", false
}
