package model

// LimitPeriod scopes a spending limit in time. Only the monthly period
// is defined.
type LimitPeriod string

// PeriodMonth is the only supported limit period.
const PeriodMonth LimitPeriod = "month"

// SpendingLimit caps expenses in one category for one period. At most one
// limit exists per (user, category, period); setting it again overwrites
// in place. Limits are advisory: they warn, they never block.
type SpendingLimit struct {
	Category string
	Period   LimitPeriod
	ID       int64
	UserID   int64
	Amount   float64
}
