package policy

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/andresuchdata/autopo-reorder/internal/domain"
)

func round(v float64, places int32) float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return v
	}
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

func formatQty(v float64) string {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return fmt.Sprint(v)
	}
	return decimal.NewFromFloat(v).String()
}

func formatMoney(v float64) string {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return "n/a"
	}
	return "$" + decimal.NewFromFloat(v).StringFixed(2)
}

func formatDays(days float64) string {
	if math.IsInf(days, 1) {
		return "no projected stockout"
	}
	return fmt.Sprintf("%.1f days until stockout", days)
}

// costSavings compares best against the second-ranked vendor. ranked[0] is
// always best since both keep input order on equal cost. It is nil when fewer
// than two vendors are viable.
func costSavings(best domain.VendorEvaluation, ranked []domain.VendorEvaluation) *domain.CostSavings {
	if len(ranked) < 2 {
		return nil
	}
	runnerUp := ranked[1]
	if !(runnerUp.TotalAnnualCost > 0) {
		return nil
	}

	amount := decimal.NewFromFloat(runnerUp.TotalAnnualCost).Sub(decimal.NewFromFloat(best.TotalAnnualCost))
	pct := amount.Div(decimal.NewFromFloat(runnerUp.TotalAnnualCost)).Mul(decimal.NewFromInt(100))

	return &domain.CostSavings{
		Amount:       amount.Round(2).InexactFloat64(),
		Percentage:   pct.Round(1).InexactFloat64(),
		VersusVendor: runnerUp.Name,
	}
}

// evidenceSummary renders the deterministic audit line for a decision.
func (p *ReorderPolicy) evidenceSummary(d *domain.ReorderDecision, onHand, thresholdDays float64) string {
	tier := strings.ToUpper(string(d.Priority))
	days := d.DaysUntilStockout.Float()

	if !d.NeedsReorder {
		return fmt.Sprintf(
			"%s PRIORITY: %s has sufficient stock, no action needed. Current: %s units, %s, daily usage: %.1f units.",
			tier, d.SKU, formatQty(onHand), formatDays(days), d.AvgDailyUsage,
		)
	}

	var reason string
	switch {
	case days <= highPriorityDays && days <= thresholdDays:
		reason = fmt.Sprintf("stockout predicted in %.1f days", days)
	case days <= thresholdDays:
		reason = fmt.Sprintf("stockout within lead time + safety margin (%.1f days)", days)
	default:
		reason = "below reorder point threshold"
	}

	return fmt.Sprintf(
		"%s PRIORITY: %s needs reordering (%s). Current stock: %s units, daily usage: %.1f units. "+
			"Recommend ordering %d units from %s (EOQ: %d, cost: %s).",
		tier, d.SKU, reason, formatQty(onHand), d.AvgDailyUsage,
		d.RecommendedQty, d.VendorName(), d.EOQ, formatMoney(d.ChosenVendor.TotalAnnualCost),
	)
}

type factorInputs struct {
	item              domain.InventoryItem
	best              domain.VendorEvaluation
	viableVendors     int
	vendorsConsidered int
	avgDaily          float64
	annualDemand      float64
	stdDeviation      float64
	safetyStock       float64
	daysUntilStockout float64
	safetyMarginDays  float64
	thresholdDays     float64
	targetStockDays   int
	targetStock       float64
	stockoutRisk      bool
	belowReorderPoint bool
	minimalDemand     bool
}

// decisionFactors flattens the inputs of a decision into scalar values.
// An infinite runway is reported as nil.
func decisionFactors(in factorInputs) map[string]any {
	var days any
	if !math.IsInf(in.daysUntilStockout, 0) {
		days = round(in.daysUntilStockout, 1)
	}

	factors := map[string]any{
		"current_stock":          in.item.Stock(),
		"reorder_point":          in.item.ReorderPoint,
		"minimum_stock":          in.item.MinimumStock,
		"maximum_stock":          in.item.MaximumStock,
		"avg_daily_usage":        round(in.avgDaily, 2),
		"annual_demand":          round(in.annualDemand, 2),
		"demand_std_deviation":   round(in.stdDeviation, 2),
		"minimal_demand_assumed": in.minimalDemand,
		"days_until_stockout":    days,
		"lead_time_days":         in.best.LeadTimeDays,
		"safety_margin_days":     in.safetyMarginDays,
		"reorder_threshold_days": in.thresholdDays,
		"target_stock_days":      in.targetStockDays,
		"target_stock_level":     round(in.targetStock, 1),
		"safety_stock":           round(in.safetyStock, 2),
		"eoq":                    in.best.EOQ,
		"stockout_risk":          in.stockoutRisk,
		"below_reorder_point":    in.belowReorderPoint,
		"vendor_id":              in.best.VendorID,
		"vendor_name":            in.best.Name,
		"total_annual_cost":      round(in.best.TotalAnnualCost, 2),
		"vendors_considered":     in.vendorsConsidered,
		"viable_vendors":         in.viableVendors,
	}

	if in.best.TrustScore != nil {
		factors["vendor_trust_score"] = *in.best.TrustScore
	}

	return factors
}
