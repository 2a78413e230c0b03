package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hxngan/vitien/internal/common"
	"github.com/hxngan/vitien/internal/model"
	"github.com/hxngan/vitien/internal/money"
)

func (e *Engine) startTransfer(ctx context.Context, user *model.User, idx uint32) (*Outcome, error) {
	e.setSession(user.ExternalID, idx, &session{flow: flowTransfer, step: stepTransferSource})
	return e.promptWallet(ctx, user, "Chuyển từ ví nào?", cbSource)
}

func (e *Engine) advanceTransfer(ctx context.Context, user *model.User, idx uint32, s *session, input string) (*Outcome, error) {
	switch s.step {
	case stepTransferSource:
		wallet, err := e.walletFromInput(ctx, user, input, cbSource)
		if err != nil {
			return nil, err
		}
		if wallet == nil {
			return reject("Không có ví tên đó. Chọn lại:"), nil
		}
		s.walletID = wallet.ID
		s.step = stepTransferDest
		return e.promptWallet(ctx, user, "Chuyển đến ví nào?", cbDestination)

	case stepTransferDest:
		wallet, err := e.walletFromInput(ctx, user, input, cbDestination)
		if err != nil {
			return nil, err
		}
		if wallet == nil {
			return reject("Không có ví tên đó. Chọn lại:"), nil
		}
		if wallet.ID == s.walletID {
			return nil, common.NewValidationError("wallet", "ví nhận phải khác ví chuyển")
		}
		s.destWalletID = wallet.ID
		s.step = stepTransferAmount
		return prompt("Số tiền chuyển?"), nil

	case stepTransferAmount:
		amount, err := money.Parse(input)
		if err != nil {
			return nil, err
		}
		if amount <= 0 {
			return nil, common.NewValidationError("amount", "số tiền phải lớn hơn 0")
		}
		s.amount = amount
		s.step = stepTransferNote
		return prompt("Ghi chú? (gửi \"-\" để bỏ qua)"), nil

	case stepTransferNote:
		note := strings.TrimSpace(input)
		if note == "-" {
			note = ""
		}
		s.note = note
		return e.commitTransfer(ctx, user, idx, s)
	}

	e.clearSession(user.ExternalID, idx)
	return reject("Phiên làm việc không hợp lệ, hãy bắt đầu lại."), nil
}

// commitTransfer writes both legs of a transfer in one database transaction:
// an expense on the source wallet and a matching income on the destination.
// Either both land or neither does.
func (e *Engine) commitTransfer(ctx context.Context, user *model.User, idx uint32, s *session) (*Outcome, error) {
	source, err := e.store.GetWallet(ctx, user.ID, s.walletID)
	if err != nil {
		return nil, err
	}
	dest, err := e.store.GetWallet(ctx, user.ID, s.destWalletID)
	if err != nil {
		return nil, err
	}

	tx, err := e.store.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transfer: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC()
	if _, err := tx.AddTransaction(ctx, &model.Transaction{
		UserID:    user.ID,
		WalletID:  source.ID,
		Direction: model.DirectionExpense,
		Amount:    s.amount,
		Category:  "Chuyển sang ví " + dest.Name,
		Note:      s.note,
		CreatedAt: now,
	}); err != nil {
		return nil, fmt.Errorf("failed to write transfer source leg: %w", err)
	}
	if _, err := tx.AddTransaction(ctx, &model.Transaction{
		UserID:    user.ID,
		WalletID:  dest.ID,
		Direction: model.DirectionIncome,
		Amount:    s.amount,
		Category:  "Chuyển từ ví " + source.Name,
		Note:      s.note,
		CreatedAt: now,
	}); err != nil {
		return nil, fmt.Errorf("failed to write transfer destination leg: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transfer: %w", err)
	}

	e.clearSession(user.ExternalID, idx)
	return confirm(fmt.Sprintf("Đã chuyển %s từ %q sang %q.",
		money.Format(s.amount), source.Name, dest.Name)), nil
}
