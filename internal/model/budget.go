package model

import "time"

// Budget is a saved snapshot of one 4-2-2-2 allocation computation. Multiple
// snapshots may coexist; none constrains future transactions.
type Budget struct {
	CreatedAt   time.Time
	ID          int64
	UserID      int64
	TotalIncome float64
	Essential   float64
	LongTerm    float64
	Invest      float64
	Personal    float64
}
