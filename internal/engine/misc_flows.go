package engine

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/hxngan/vitien/internal/common"
	"github.com/hxngan/vitien/internal/model"
	"github.com/hxngan/vitien/internal/money"
	"github.com/hxngan/vitien/internal/service"
)

func (e *Engine) startSetLimit(ctx context.Context, user *model.User, idx uint32) (*Outcome, error) {
	e.setSession(user.ExternalID, idx, &session{flow: flowSetLimit, step: stepLimitCategory})

	cats, err := e.store.GetCategories(ctx, user.ID, model.DirectionExpense)
	if err != nil {
		return nil, err
	}
	options := make([]Option, 0, len(cats))
	for _, c := range cats {
		options = append(options, Option{Label: c.Name, Data: callback(cbCategory, c.Name)})
	}
	return prompt("Đặt hạn mức tháng cho danh mục nào?", options...), nil
}

func (e *Engine) advanceSetLimit(ctx context.Context, user *model.User, idx uint32, s *session, input string) (*Outcome, error) {
	switch s.step {
	case stepLimitCategory:
		name := textOrPayload(input, cbCategory)
		if name == "" {
			return reject("Chọn hoặc nhập tên danh mục."), nil
		}
		s.category = name
		s.step = stepLimitAmount
		return prompt(fmt.Sprintf("Hạn mức tháng cho %q?", name)), nil

	case stepLimitAmount:
		amount, err := money.Parse(input)
		if err != nil {
			return nil, err
		}
		if amount <= 0 {
			return nil, common.NewValidationError("amount", "hạn mức phải lớn hơn 0")
		}

		if err := e.store.SetLimit(ctx, user.ID, s.category, model.PeriodMonth, amount); err != nil {
			return nil, err
		}
		e.clearSession(user.ExternalID, idx)
		return confirm(fmt.Sprintf("Đã đặt hạn mức %s/tháng cho %q.", money.Format(amount), s.category)), nil
	}

	e.clearSession(user.ExternalID, idx)
	return reject("Phiên làm việc không hợp lệ, hãy bắt đầu lại."), nil
}

func (e *Engine) advanceAddCategory(ctx context.Context, user *model.User, idx uint32, s *session, input string) (*Outcome, error) {
	switch s.step {
	case stepCategoryDirection:
		dir, ok := directionFromInput(input)
		if !ok {
			return reject("Chọn \"Thu\" hoặc \"Chi\"."), nil
		}
		s.direction = dir
		s.step = stepCategoryName
		return prompt("Tên danh mục mới?"), nil

	case stepCategoryName:
		name := strings.TrimSpace(input)
		if name == "" {
			return nil, common.NewValidationError("name", "tên danh mục không được để trống")
		}
		// No uniqueness check: duplicate names are allowed and retained.
		if err := e.store.AddCategory(ctx, user.ID, name, s.direction); err != nil {
			return nil, err
		}
		e.clearSession(user.ExternalID, idx)
		return confirm(fmt.Sprintf("Đã thêm danh mục %q.", name)), nil
	}

	e.clearSession(user.ExternalID, idx)
	return reject("Phiên làm việc không hợp lệ, hãy bắt đầu lại."), nil
}

// handleDeleteCategory lists every category when the payload is empty and
// deletes the selected one otherwise. Transactions keep their category
// label, so history survives the deletion.
func (e *Engine) handleDeleteCategory(ctx context.Context, user *model.User, idx uint32, payload string) (*Outcome, error) {
	e.clearSession(user.ExternalID, idx)

	if payload == "" {
		var options []Option
		for _, dir := range []model.Direction{model.DirectionExpense, model.DirectionIncome} {
			cats, err := e.store.GetCategories(ctx, user.ID, dir)
			if err != nil {
				return nil, err
			}
			for _, c := range cats {
				options = append(options, Option{
					Label: c.Name,
					Data:  callback(cbDeleteCat, strconv.FormatInt(c.ID, 10)),
				})
			}
		}
		if len(options) == 0 {
			return confirm("Chưa có danh mục nào."), nil
		}
		return prompt("Xóa danh mục nào?", options...), nil
	}

	catID, err := strconv.ParseInt(payload, 10, 64)
	if err != nil {
		return reject("Lựa chọn này không còn hiệu lực."), nil
	}
	if err := e.store.DeleteCategory(ctx, user.ID, catID); err != nil {
		return nil, err
	}
	return confirm("Đã xóa danh mục. Các giao dịch cũ vẫn giữ nguyên."), nil
}

func (e *Engine) advanceAddWallet(ctx context.Context, user *model.User, idx uint32, s *session, input string) (*Outcome, error) {
	name := strings.TrimSpace(input)
	if name == "" {
		return nil, common.NewValidationError("name", "tên ví không được để trống")
	}

	existing, err := e.store.GetWalletByName(ctx, user.ID, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, common.NewValidationError("name", "đã có ví tên này")
	}

	w, err := e.store.CreateWallet(ctx, user.ID, name, "")
	if err != nil {
		return nil, err
	}
	e.clearSession(user.ExternalID, idx)
	return confirm(fmt.Sprintf("Đã tạo ví %q.", w.Name)), nil
}

var monthYearRe = regexp.MustCompile(`^(\d{1,2})[^\d]+(\d{4})$`)

// advanceExportMonth resolves "MM-YYYY", "M/YYYY" or "tháng này" into an
// export filter. The transport serializes the matching transactions.
func (e *Engine) advanceExportMonth(ctx context.Context, user *model.User, idx uint32, s *session, input string) (*Outcome, error) {
	text := strings.ToLower(strings.TrimSpace(input))

	var year int
	var month time.Month
	if text == "tháng này" || text == "thang nay" {
		now := time.Now().UTC()
		year, month = now.Year(), now.Month()
	} else {
		m := monthYearRe.FindStringSubmatch(text)
		if m == nil {
			return reject("Không hiểu. Gửi dạng 03-2026 hoặc \"tháng này\"."), nil
		}
		mm, _ := strconv.Atoi(m[1])
		yyyy, _ := strconv.Atoi(m[2])
		if mm < 1 || mm > 12 {
			return nil, common.NewValidationError("month", "tháng phải từ 1 đến 12")
		}
		year, month = yyyy, time.Month(mm)
	}

	e.clearSession(user.ExternalID, idx)
	out := confirm(fmt.Sprintf("Đang xuất giao dịch tháng %02d-%d…", month, year))
	out.Export = &service.ExportFilter{Year: year, Month: month}
	return out, nil
}
