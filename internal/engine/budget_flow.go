package engine

import (
	"context"
	"fmt"
	"strconv"

	"github.com/hxngan/vitien/internal/budget"
	"github.com/hxngan/vitien/internal/common"
	"github.com/hxngan/vitien/internal/model"
	"github.com/hxngan/vitien/internal/money"
)

// advanceBudget computes the 4-2-2-2 split and offers the two optional
// commit actions. Nothing is written until one of them is chosen.
func (e *Engine) advanceBudget(ctx context.Context, user *model.User, idx uint32, s *session, input string) (*Outcome, error) {
	total, err := money.Parse(input)
	if err != nil {
		return nil, err
	}
	if total <= 0 {
		return nil, common.NewValidationError("total", "thu nhập phải lớn hơn 0")
	}

	a := budget.Split(total)
	e.clearSession(user.ExternalID, idx)

	payload := strconv.FormatFloat(total, 'f', -1, 64)
	msg := fmt.Sprintf(
		"Chia %s theo quy tắc 4-2-2-2:\n• Thiết yếu (40%%): %s\n• Tiết kiệm dài hạn (20%%): %s\n• Đầu tư (20%%): %s\n• Cá nhân (20%%): %s",
		money.Format(a.TotalIncome),
		money.Format(a.Essential),
		money.Format(a.LongTerm),
		money.Format(a.Invest),
		money.Format(a.Personal),
	)
	return confirm(msg,
		Option{Label: "Lưu ngân sách", Data: callback(cbBudgetSave, payload)},
		Option{Label: "Tạo 2 mục tiêu tiết kiệm", Data: callback(cbBudgetGoals, payload)},
	), nil
}

func (e *Engine) saveBudgetSnapshot(ctx context.Context, user *model.User, payload string) (*Outcome, error) {
	total, err := strconv.ParseFloat(payload, 64)
	if err != nil || total <= 0 {
		return reject("Lựa chọn này không còn hiệu lực."), nil
	}

	a := budget.Split(total)
	if err := e.store.SaveBudget(ctx, &model.Budget{
		UserID:      user.ID,
		TotalIncome: a.TotalIncome,
		Essential:   a.Essential,
		LongTerm:    a.LongTerm,
		Invest:      a.Invest,
		Personal:    a.Personal,
	}); err != nil {
		return nil, err
	}
	return confirm("Đã lưu ngân sách " + money.Format(total) + "."), nil
}

// spinOffBudgetGoals creates saving goals for the long-term and invest
// buckets of a computed allocation.
func (e *Engine) spinOffBudgetGoals(ctx context.Context, user *model.User, payload string) (*Outcome, error) {
	total, err := strconv.ParseFloat(payload, 64)
	if err != nil || total <= 0 {
		return reject("Lựa chọn này không còn hiệu lực."), nil
	}

	a := budget.Split(total)
	longTerm, err := e.store.CreateGoal(ctx, user.ID, "Tiết kiệm dài hạn", a.LongTerm)
	if err != nil {
		return nil, err
	}
	invest, err := e.store.CreateGoal(ctx, user.ID, "Đầu tư & Tự do tài chính", a.Invest)
	if err != nil {
		return nil, err
	}

	return confirm(fmt.Sprintf("Đã tạo 2 mục tiêu: %q (%s) và %q (%s).",
		longTerm.Name, money.Format(longTerm.TargetAmount),
		invest.Name, money.Format(invest.TargetAmount))), nil
}

// advanceSalarySplit commits immediately after the amount: four income
// transactions, one per canonical wallet, split 40/20/20/20. All four land
// in one database transaction or none do.
func (e *Engine) advanceSalarySplit(ctx context.Context, user *model.User, idx uint32, s *session, input string) (*Outcome, error) {
	total, err := money.Parse(input)
	if err != nil {
		return nil, err
	}
	if total <= 0 {
		return nil, common.NewValidationError("total", "lương phải lớn hơn 0")
	}

	wallets, err := e.store.GetWallets(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	byPurpose := make(map[model.WalletPurpose]*model.Wallet, len(wallets))
	for i := range wallets {
		byPurpose[wallets[i].Purpose] = &wallets[i]
	}

	a := budget.Split(total)
	legs := []struct {
		purpose model.WalletPurpose
		amount  float64
	}{
		{model.PurposeEssential, a.Essential},
		{model.PurposeLongTerm, a.LongTerm},
		{model.PurposeInvest, a.Invest},
		{model.PurposePersonal, a.Personal},
	}
	for _, leg := range legs {
		if byPurpose[leg.purpose] == nil {
			return nil, fmt.Errorf("no wallet tagged %q: %w", leg.purpose, common.ErrMissingWallets)
		}
	}

	tx, err := e.store.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin salary split: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, leg := range legs {
		w := byPurpose[leg.purpose]
		if _, err := tx.AddTransaction(ctx, &model.Transaction{
			UserID:    user.ID,
			WalletID:  w.ID,
			Direction: model.DirectionIncome,
			Amount:    leg.amount,
			Category:  "Lương - " + w.Name,
		}); err != nil {
			return nil, fmt.Errorf("failed to write salary leg for %q: %w", w.Name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit salary split: %w", err)
	}

	e.clearSession(user.ExternalID, idx)
	return confirm(fmt.Sprintf(
		"Đã chia lương %s vào 4 ví:\n• %s: %s\n• %s: %s\n• %s: %s\n• %s: %s",
		money.Format(total),
		byPurpose[model.PurposeEssential].Name, money.Format(a.Essential),
		byPurpose[model.PurposeLongTerm].Name, money.Format(a.LongTerm),
		byPurpose[model.PurposeInvest].Name, money.Format(a.Invest),
		byPurpose[model.PurposePersonal].Name, money.Format(a.Personal),
	)), nil
}
