package policy

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/andresuchdata/autopo-reorder/internal/domain"
	"github.com/andresuchdata/autopo-reorder/internal/forecast"
	"github.com/andresuchdata/autopo-reorder/internal/optimizer"
	"github.com/andresuchdata/autopo-reorder/internal/safetystock"
	"github.com/andresuchdata/autopo-reorder/pkg/logger"
)

const daysPerYear = 365

var decisionNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("autopo-reorder/decision"))

// DecisionID is stable for a SKU on a given evaluation day.
func DecisionID(sku string, evaluatedOn string) string {
	return uuid.NewSHA1(decisionNamespace, []byte(sku+"|"+evaluatedOn)).String()
}

// EvaluateReorderNeed decides whether item needs replenishing, how much to
// order and from which vendor. A targetStockDays of zero or less uses the
// policy default.
func (p *ReorderPolicy) EvaluateReorderNeed(
	item domain.InventoryItem,
	txns []domain.Transaction,
	vendors []domain.Vendor,
	targetStockDays int,
) (*domain.ReorderDecision, error) {
	if err := item.Validate(); err != nil {
		return nil, err
	}
	if targetStockDays <= 0 {
		targetStockDays = p.targetStockDays
	}

	asOf := p.now()
	sku := item.SKU
	onHand := *item.OnHand

	log := logger.Log.With().Str("sku", sku).Logger()

	// 1. Average daily usage, floored for items without history
	observed := forecast.ComputeDailyAverage(txns, sku, p.windowDays, asOf)
	avgDaily := observed
	minimalDemand := false
	if avgDaily <= 0 {
		log.Warn().Float64("assumed_daily", p.minimumDailyDemand).Msg("no usage history, assuming minimal demand")
		avgDaily = p.minimumDailyDemand
		minimalDemand = true
	}

	// 2. Annual demand
	annualDemand := avgDaily * daysPerYear

	// 3. Vendor selection
	best, err := optimizer.SelectBestVendor(vendors, annualDemand)
	if err != nil {
		return nil, fmt.Errorf("evaluate %s: %w", sku, err)
	}
	ranked := optimizer.CompareVendors(vendors, annualDemand)

	// 4. Runway
	daysUntilStockout := forecast.EstimateDaysUntilStockout(onHand, avgDaily)
	stockoutDate := forecast.StockoutDate(asOf, daysUntilStockout)

	// 5. Reorder threshold
	thresholdDays := best.LeadTimeDays + p.safetyMarginDays

	// 6. Need
	stockoutRisk := daysUntilStockout <= thresholdDays
	belowReorderPoint := onHand <= item.ReorderPoint
	needsReorder := stockoutRisk || belowReorderPoint

	// 7. Quantity
	demand := safetystock.Demand{
		AverageDaily: avgDaily,
		StdDeviation: forecast.DailyUsageStdDeviation(txns, sku, p.windowDays, asOf),
		LeadTimeDays: best.LeadTimeDays,
		AnnualDemand: annualDemand,
		EOQ:          best.EOQ,
	}
	targetStock := avgDaily * float64(targetStockDays)

	qty := 0
	if needsReorder {
		qty = p.orderQuantity(item, demand, targetStock)
	}

	// 8. Priority
	priority := ClassifyPriority(daysUntilStockout)

	// 9. Savings against the runner-up
	savings := costSavings(best, ranked)

	decision := &domain.ReorderDecision{
		DecisionID:        DecisionID(sku, asOf.Format("2006-01-02")),
		SKU:               sku,
		NeedsReorder:      needsReorder,
		ChosenVendor:      &best,
		RecommendedQty:    qty,
		EOQ:               best.EOQ,
		Priority:          priority,
		Expedite:          needsReorder && p.calc.ShouldExpedite(item),
		AvgDailyUsage:     avgDaily,
		DaysUntilStockout: domain.Days(daysUntilStockout),
		StockoutDate:      stockoutDate,
		CostSavings:       savings,
		Status:            domain.StatusPending,
		EvaluatedAt:       asOf,
	}

	// 10. Evidence
	decision.EvidenceSummary = p.evidenceSummary(decision, onHand, thresholdDays)
	decision.DecisionFactors = decisionFactors(factorInputs{
		item:              item,
		best:              best,
		viableVendors:     len(ranked),
		vendorsConsidered: len(vendors),
		avgDaily:          avgDaily,
		annualDemand:      annualDemand,
		stdDeviation:      demand.StdDeviation,
		safetyStock:       p.calc.SafetyStock(demand),
		daysUntilStockout: daysUntilStockout,
		safetyMarginDays:  p.safetyMarginDays,
		thresholdDays:     thresholdDays,
		targetStockDays:   targetStockDays,
		targetStock:       targetStock,
		stockoutRisk:      stockoutRisk,
		belowReorderPoint: belowReorderPoint,
		minimalDemand:     minimalDemand,
	})

	log.Info().
		Bool("needs_reorder", needsReorder).
		Str("vendor_id", best.VendorID).
		Int("qty", qty).
		Str("priority", string(priority)).
		Msg("reorder evaluation complete")

	return decision, nil
}

// orderQuantity is the largest of the EOQ, the minimum order and the shortfall
// against target stock, rounded up to the order unit.
func (p *ReorderPolicy) orderQuantity(item domain.InventoryItem, demand safetystock.Demand, targetStock float64) int {
	qty := demand.EOQ

	minOrder := p.minOrderQty
	if item.MinOrderQty > minOrder {
		minOrder = item.MinOrderQty
	}
	if minOrder > qty {
		qty = minOrder
	}

	shortfall := int(math.Ceil(math.Max(0, targetStock-item.Stock())))
	if shortfall > qty {
		qty = shortfall
	}

	return safetystock.RoundUpToUnit(qty, item.OrderUnit)
}
