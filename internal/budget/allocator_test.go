package budget

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name  string
		total float64
	}{
		{name: "zero", total: 0},
		{name: "typical salary", total: 15_000_000},
		{name: "odd amount", total: 12_345_678.9},
		{name: "small amount", total: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := Split(tt.total)
			assert.InDelta(t, tt.total*0.4, a.Essential, 1e-6)
			assert.InDelta(t, tt.total*0.2, a.LongTerm, 1e-6)
			assert.InDelta(t, tt.total*0.2, a.Invest, 1e-6)
			assert.InDelta(t, tt.total*0.2, a.Personal, 1e-6)

			sum := a.Essential + a.LongTerm + a.Invest + a.Personal
			assert.InDelta(t, tt.total, sum, 1e-6, "buckets must sum to the input total")
		})
	}
}
