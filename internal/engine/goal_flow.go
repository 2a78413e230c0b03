package engine

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/hxngan/vitien/internal/common"
	"github.com/hxngan/vitien/internal/goal"
	"github.com/hxngan/vitien/internal/model"
	"github.com/hxngan/vitien/internal/money"
)

// listGoals renders the goal menu: every goal with its progress plus
// deposit/withdraw actions.
func (e *Engine) listGoals(ctx context.Context, user *model.User) (*Outcome, error) {
	goals, err := e.store.GetGoals(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if len(goals) == 0 {
		return confirm("Chưa có mục tiêu tiết kiệm nào. Dùng lệnh tạo mục tiêu để bắt đầu."), nil
	}

	var b strings.Builder
	b.WriteString("🎯 Mục tiêu tiết kiệm:\n")
	options := make([]Option, 0, len(goals)*2)
	for _, g := range goals {
		fmt.Fprintf(&b, "• %s: %s / %s", g.Name, money.Format(g.CurrentAmount), money.Format(g.TargetAmount))
		if goal.Reached(&g) {
			b.WriteString(" ✅")
		}
		b.WriteString("\n")

		id := strconv.FormatInt(g.ID, 10)
		options = append(options,
			Option{Label: "Nạp: " + g.Name, Data: callback(cbGoalDeposit, id)},
			Option{Label: "Rút: " + g.Name, Data: callback(cbGoalWithdraw, id)},
		)
	}
	return confirm(b.String(), options...), nil
}

func (e *Engine) advanceCreateGoal(ctx context.Context, user *model.User, idx uint32, s *session, input string) (*Outcome, error) {
	switch s.step {
	case stepGoalName:
		name := strings.TrimSpace(input)
		if name == "" {
			return nil, common.NewValidationError("name", "tên mục tiêu không được để trống")
		}
		s.name = name
		s.step = stepGoalTarget
		return prompt("Số tiền mục tiêu?"), nil

	case stepGoalTarget:
		target, err := money.Parse(input)
		if err != nil {
			return nil, err
		}
		if target <= 0 {
			return nil, common.NewValidationError("target", "số tiền mục tiêu phải lớn hơn 0")
		}

		g, err := e.store.CreateGoal(ctx, user.ID, s.name, target)
		if err != nil {
			return nil, err
		}
		e.clearSession(user.ExternalID, idx)
		return confirm(fmt.Sprintf("Đã tạo mục tiêu %q: %s.", g.Name, money.Format(g.TargetAmount))), nil
	}

	e.clearSession(user.ExternalID, idx)
	return reject("Phiên làm việc không hợp lệ, hãy bắt đầu lại."), nil
}

// startGoalMovement begins a deposit or withdraw flow for one goal picked
// from the menu.
func (e *Engine) startGoalMovement(ctx context.Context, user *model.User, idx uint32, tag, payload string) (*Outcome, error) {
	goalID, err := strconv.ParseInt(payload, 10, 64)
	if err != nil {
		return reject("Lựa chọn này không còn hiệu lực."), nil
	}

	g, err := e.store.GetGoal(ctx, goalID)
	if err != nil {
		return nil, err
	}
	if g.UserID != user.ID {
		return nil, fmt.Errorf("goal %d: %w", goalID, common.ErrNotFound)
	}

	flow := flowGoalDeposit
	msg := fmt.Sprintf("Nạp bao nhiêu vào %q? (hiện có %s)", g.Name, money.Format(g.CurrentAmount))
	if tag == cbGoalWithdraw {
		flow = flowGoalWithdraw
		msg = fmt.Sprintf("Rút bao nhiêu từ %q? (hiện có %s)", g.Name, money.Format(g.CurrentAmount))
	}

	e.setSession(user.ExternalID, idx, &session{flow: flow, step: stepGoalAmount, goalID: goalID})
	return prompt(msg), nil
}

func (e *Engine) advanceGoalMovement(ctx context.Context, user *model.User, idx uint32, s *session, input string) (*Outcome, error) {
	switch s.step {
	case stepGoalAmount:
		amount, err := money.Parse(input)
		if err != nil {
			return nil, err
		}
		if amount <= 0 {
			return nil, common.NewValidationError("amount", "số tiền phải lớn hơn 0")
		}
		s.amount = amount
		s.step = stepGoalNote
		return prompt("Ghi chú? (gửi \"-\" để bỏ qua)"), nil

	case stepGoalNote:
		note := strings.TrimSpace(input)
		if note == "-" {
			note = ""
		}

		var g *model.SavingGoal
		var err error
		if s.flow == flowGoalWithdraw {
			g, err = e.goals.Withdraw(ctx, s.goalID, s.amount, note)
		} else {
			g, err = e.goals.Deposit(ctx, s.goalID, s.amount, note)
		}
		if err != nil {
			// Overdrawing is recoverable: back up to the amount step and
			// let the error mapping re-prompt.
			if s.flow == flowGoalWithdraw {
				s.step = stepGoalAmount
			}
			return nil, err
		}

		e.clearSession(user.ExternalID, idx)
		msg := fmt.Sprintf("%q: %s / %s.", g.Name, money.Format(g.CurrentAmount), money.Format(g.TargetAmount))
		if goal.Reached(g) {
			msg += " 🎉 Đã đạt mục tiêu!"
		}
		return confirm(msg), nil
	}

	e.clearSession(user.ExternalID, idx)
	return reject("Phiên làm việc không hợp lệ, hãy bắt đầu lại."), nil
}
