// Package optimizer computes economic order quantities and ranks vendors by
// total annual cost under the Wilson constant-demand model.
package optimizer

import (
	"math"
	"sort"

	"github.com/andresuchdata/autopo-reorder/internal/domain"
	"github.com/andresuchdata/autopo-reorder/pkg/logger"
)

// CalculateEOQ returns ceil(sqrt(2DS/H)), or 0 when any input is not positive
// and finite. Results beyond the int range are capped at math.MaxInt.
func CalculateEOQ(annualDemand, orderCost, holdingCostPerUnit float64) int {
	if !(annualDemand > 0) || !(orderCost > 0) || !(holdingCostPerUnit > 0) {
		return 0
	}
	if !finite(annualDemand) || !finite(orderCost) || !finite(holdingCostPerUnit) {
		return 0
	}

	eoq := math.Ceil(math.Sqrt(2 * annualDemand * orderCost / holdingCostPerUnit))
	if math.IsNaN(eoq) {
		return 0
	}
	if eoq >= float64(math.MaxInt) {
		return math.MaxInt
	}

	return int(eoq)
}

func finite(v float64) bool {
	return !math.IsInf(v, 0) && !math.IsNaN(v)
}

func validVendor(v domain.Vendor) bool {
	switch {
	case !(v.PricePerUnit > 0) || !finite(v.PricePerUnit):
		return false
	case !(v.OrderCost > 0) || !finite(v.OrderCost):
		return false
	case v.HoldingCostRate < 0 || !finite(v.HoldingCostRate):
		return false
	case v.LeadTimeDays < 0 || !finite(v.LeadTimeDays):
		return false
	}
	return true
}

func breakdown(annualDemand float64, v domain.Vendor) (int, domain.CostBreakdown, bool) {
	if !(annualDemand > 0) || !finite(annualDemand) || !validVendor(v) {
		return 0, domain.CostBreakdown{}, false
	}

	holding := v.HoldingCostPerUnit()
	eoq := CalculateEOQ(annualDemand, v.OrderCost, holding)
	if eoq == 0 {
		return 0, domain.CostBreakdown{}, false
	}

	b := domain.CostBreakdown{
		PurchaseCost: annualDemand * v.PricePerUnit,
		OrderingCost: annualDemand / float64(eoq) * v.OrderCost,
		HoldingCost:  float64(eoq) / 2 * holding,
	}

	return eoq, b, finite(b.Total())
}

// CalculateTotalCostForVendor returns purchase + ordering + holding cost for a
// year of demand at the vendor's EOQ, or +Inf when the demand or any vendor
// field is unusable.
func CalculateTotalCostForVendor(annualDemand float64, v domain.Vendor) float64 {
	_, b, ok := breakdown(annualDemand, v)
	if !ok {
		return math.Inf(1)
	}
	return b.Total()
}

// EvaluateVendor augments a vendor with its EOQ and cost breakdown. The second
// result is false when the vendor has no finite cost.
func EvaluateVendor(annualDemand float64, v domain.Vendor) (domain.VendorEvaluation, bool) {
	eoq, b, ok := breakdown(annualDemand, v)
	if !ok {
		return domain.VendorEvaluation{Vendor: v}, false
	}

	return domain.VendorEvaluation{
		Vendor:          v,
		EOQ:             eoq,
		TotalAnnualCost: b.Total(),
		CostBreakdown:   b,
	}, true
}

// SelectBestVendor picks the vendor with the lowest finite total cost. Ties go
// to the vendor listed first.
func SelectBestVendor(vendors []domain.Vendor, annualDemand float64) (domain.VendorEvaluation, error) {
	if len(vendors) == 0 || !(annualDemand > 0) {
		return domain.VendorEvaluation{}, domain.ErrNoVendorAvailable
	}

	var (
		best  domain.VendorEvaluation
		found bool
	)
	for _, v := range vendors {
		eval, ok := EvaluateVendor(annualDemand, v)
		if !ok {
			logger.Log.Debug().Str("vendor_id", v.VendorID).Msg("vendor skipped: no finite cost")
			continue
		}
		if !found || eval.TotalAnnualCost < best.TotalAnnualCost {
			best = eval
			found = true
		}
	}

	if !found {
		return domain.VendorEvaluation{}, domain.ErrNoVendorAvailable
	}

	logger.Log.Debug().
		Str("vendor_id", best.VendorID).
		Float64("annual_demand", annualDemand).
		Float64("total_annual_cost", best.TotalAnnualCost).
		Int("eoq", best.EOQ).
		Msg("selected vendor")

	return best, nil
}

// CompareVendors evaluates every vendor with a finite cost and returns them
// cheapest first. Equal costs keep input order.
func CompareVendors(vendors []domain.Vendor, annualDemand float64) []domain.VendorEvaluation {
	evals := make([]domain.VendorEvaluation, 0, len(vendors))
	for _, v := range vendors {
		if eval, ok := EvaluateVendor(annualDemand, v); ok {
			evals = append(evals, eval)
		}
	}

	sort.SliceStable(evals, func(i, j int) bool {
		return evals[i].TotalAnnualCost < evals[j].TotalAnnualCost
	})

	return evals
}
