package service

import (
	"github.com/shopspring/decimal"

	"github.com/andresuchdata/autopo-reorder/internal/domain"
	"github.com/andresuchdata/autopo-reorder/internal/policy"
)

// Summary aggregates a batch for dashboards and CLI output.
type Summary struct {
	TotalItems       int            `json:"total_items"`
	NeedsReorder     int            `json:"needs_reorder"`
	Expedite         int            `json:"expedite"`
	Errors           int            `json:"errors"`
	ByPriority       map[string]int `json:"by_priority"`
	TotalOrderValue  float64        `json:"total_order_value"`
	TotalCostSavings float64        `json:"total_cost_savings"`
}

// Summarize counts decisions by outcome and values the recommended orders at
// each chosen vendor's unit price.
func Summarize(results []policy.BatchResult) Summary {
	s := Summary{
		TotalItems: len(results),
		ByPriority: map[string]int{
			string(domain.PriorityHigh):   0,
			string(domain.PriorityMedium): 0,
			string(domain.PriorityLow):    0,
		},
	}

	orderValue := decimal.Zero
	savings := decimal.Zero

	for _, r := range results {
		d := r.Decision
		if d == nil {
			s.Errors++
			continue
		}
		if !d.NeedsReorder {
			continue
		}

		s.NeedsReorder++
		s.ByPriority[string(d.Priority)]++
		if d.Expedite {
			s.Expedite++
		}
		if d.ChosenVendor != nil {
			price := decimal.NewFromFloat(d.ChosenVendor.PricePerUnit)
			orderValue = orderValue.Add(price.Mul(decimal.NewFromInt(int64(d.RecommendedQty))))
		}
		if d.CostSavings != nil {
			savings = savings.Add(decimal.NewFromFloat(d.CostSavings.Amount))
		}
	}

	s.TotalOrderValue = orderValue.Round(2).InexactFloat64()
	s.TotalCostSavings = savings.Round(2).InexactFloat64()

	return s
}
