// Package limits checks monthly category spending against configured limits.
package limits

import (
	"context"
	"time"

	"github.com/hxngan/vitien/internal/model"
	"github.com/hxngan/vitien/internal/service"
)

// Status is the outcome of checking one category against its monthly limit.
// Limits are advisory: an exceeded limit never blocks a transaction, it only
// produces a warning after the fact.
type Status struct {
	Category string
	Limit    float64
	Spent    float64
	Exceeded bool
	Over     float64
}

// Remaining returns how much of the limit is left, never negative.
func (s Status) Remaining() float64 {
	if s.Spent >= s.Limit {
		return 0
	}
	return s.Limit - s.Spent
}

// Evaluator answers "has this category blown its monthly limit?" questions.
type Evaluator struct {
	store service.Storage
	now   func() time.Time
}

// NewEvaluator creates an evaluator backed by the given storage.
func NewEvaluator(store service.Storage) *Evaluator {
	return &Evaluator{store: store, now: time.Now}
}

// Check compares the category's current calendar-month spend against its
// monthly limit. Returns (nil, nil) when no limit is configured.
func (e *Evaluator) Check(ctx context.Context, userID int64, category string) (*Status, error) {
	limit, err := e.store.GetLimit(ctx, userID, category, model.PeriodMonth)
	if err != nil {
		return nil, err
	}
	if limit == nil {
		return nil, nil
	}

	now := e.now().UTC()
	spent, err := e.store.GetMonthCategorySpend(ctx, userID, category, now.Year(), now.Month())
	if err != nil {
		return nil, err
	}

	status := &Status{
		Category: category,
		Limit:    limit.Amount,
		Spent:    spent,
	}
	if spent > limit.Amount {
		status.Exceeded = true
		status.Over = spent - limit.Amount
	}
	return status, nil
}
