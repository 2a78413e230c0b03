// Package budget implements the 4-2-2-2 income allocation rule.
package budget

// Allocation is one computation of the 4-2-2-2 rule: 40% essential spending,
// 20% long-term savings, 20% investing, 20% personal. The four buckets always
// sum to the input total; rounding is a presentation concern.
type Allocation struct {
	TotalIncome float64
	Essential   float64
	LongTerm    float64
	Invest      float64
	Personal    float64
}

// Split allocates a total income across the four buckets.
func Split(total float64) Allocation {
	return Allocation{
		TotalIncome: total,
		Essential:   total * 0.4,
		LongTerm:    total * 0.2,
		Invest:      total * 0.2,
		Personal:    total * 0.2,
	}
}
