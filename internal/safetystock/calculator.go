package safetystock

import (
	"math"
	"strings"

	"github.com/andresuchdata/autopo-reorder/internal/domain"
	"github.com/andresuchdata/autopo-reorder/internal/optimizer"
	"github.com/andresuchdata/autopo-reorder/pkg/logger"
)

const (
	DefaultServiceLevel         = 0.95
	DefaultMultiplier           = 1.2
	DefaultLeadTimeDays         = 7
	DefaultOrderCost            = 50.0
	DefaultLowStockThresholdPct = 20.0

	// fallbackBufferRatio is the share of lead-time demand held as buffer when
	// demand variability is unknown.
	fallbackBufferRatio = 0.2
)

var skippedStatuses = map[string]bool{
	"inactive":        true,
	"reorder_pending": true,
	"discontinued":    true,
}

var urgentPriorities = map[string]bool{
	"high":     true,
	"critical": true,
	"urgent":   true,
}

// Demand describes the usage profile a quantity is sized against.
type Demand struct {
	AverageDaily float64
	StdDeviation float64
	// LeadTimeDays <= 0 falls back to the calculator's default.
	LeadTimeDays float64
	AnnualDemand float64
	// EOQ, when zero, is derived from AnnualDemand and the item's unit cost.
	EOQ int
}

// Calculator sizes safety stock and replenishment quantities.
type Calculator struct {
	ServiceLevel         float64
	Multiplier           float64
	DefaultLeadTimeDays  float64
	HoldingCostRate      float64
	OrderCost            float64
	LowStockThresholdPct float64
}

// NewCalculator creates a calculator with the standard parameters.
func NewCalculator() *Calculator {
	return &Calculator{
		ServiceLevel:         DefaultServiceLevel,
		Multiplier:           DefaultMultiplier,
		DefaultLeadTimeDays:  DefaultLeadTimeDays,
		HoldingCostRate:      domain.DefaultHoldingCostRate,
		OrderCost:            DefaultOrderCost,
		LowStockThresholdPct: DefaultLowStockThresholdPct,
	}
}

// ZScore approximates the normal quantile with two points: 1.645 at a 95%
// service level or above, 1.28 below it.
func ZScore(serviceLevel float64) float64 {
	if serviceLevel >= 0.95 {
		return 1.645
	}
	return 1.28
}

func (c *Calculator) leadTime(d Demand) float64 {
	if d.LeadTimeDays > 0 {
		return d.LeadTimeDays
	}
	return c.DefaultLeadTimeDays
}

func (c *Calculator) multiplier() float64 {
	if c.Multiplier > 0 {
		return c.Multiplier
	}
	return DefaultMultiplier
}

// SafetyStock returns the buffer for the given demand. Without a positive
// standard deviation it falls back to 20% of lead-time demand.
func (c *Calculator) SafetyStock(d Demand) float64 {
	if !(d.AverageDaily > 0) {
		return 0
	}

	lt := c.leadTime(d)

	var ss float64
	if d.StdDeviation > 0 {
		ss = ZScore(c.ServiceLevel) * math.Sqrt(lt) * d.StdDeviation
	} else {
		ss = d.AverageDaily * lt * fallbackBufferRatio
	}

	return ss * c.multiplier()
}

func (c *Calculator) eoq(item domain.InventoryItem, d Demand) int {
	if d.EOQ > 0 {
		return d.EOQ
	}
	return optimizer.CalculateEOQ(d.AnnualDemand, c.OrderCost, c.HoldingCostRate*item.UnitCost)
}

// CalculateOrderQuantity takes the largest of the refill-to-max, EOQ and
// safety stock quantities, floors it at the item's minimum order and rounds
// it up to the order unit.
func (c *Calculator) CalculateOrderQuantity(item domain.InventoryItem, d Demand) int {
	onHand := item.Stock()

	// 1. Refill to maximum, or to three times the minimum when no maximum is set
	var basic float64
	if item.MaximumStock > 0 {
		basic = item.MaximumStock - onHand
	} else {
		basic = 3*item.MinimumStock - onHand
	}

	// 2. Economic order quantity
	eoq := float64(c.eoq(item, d))

	// 3. Safety stock
	safety := c.SafetyStock(d)

	qty := math.Ceil(math.Max(basic, math.Max(eoq, safety)))

	// 4. Minimum order
	minOrder := item.MinOrderQty
	if minOrder < 1 {
		minOrder = 1
	}
	if qty < float64(minOrder) {
		qty = float64(minOrder)
	}

	// 5. Order unit
	result := RoundUpToUnit(int(qty), item.OrderUnit)

	logger.Log.Debug().
		Str("sku", item.SKU).
		Float64("basic_qty", basic).
		Float64("eoq_qty", eoq).
		Float64("safety_qty", safety).
		Int("recommended_qty", result).
		Msg("calculated order quantity")

	return result
}

// RoundUpToUnit rounds qty up to the nearest multiple of unit. Units of one
// or less leave qty unchanged.
func RoundUpToUnit(qty, unit int) int {
	if unit <= 1 || qty%unit == 0 {
		return qty
	}
	return (qty/unit + 1) * unit
}

// ShouldExpedite reports whether an item's order needs to be rushed: stock at
// or below half the minimum, an item flagged critical, or an urgent priority.
func (c *Calculator) ShouldExpedite(item domain.InventoryItem) bool {
	if item.Stock() <= 0.5*item.MinimumStock {
		return true
	}
	if item.Critical {
		return true
	}
	return urgentPriorities[strings.ToLower(strings.TrimSpace(item.Priority))]
}

// IsLowStock reports whether an active item sits at or below its minimum, or
// at or below the configured percentage of its maximum.
func (c *Calculator) IsLowStock(item domain.InventoryItem) bool {
	if skippedStatuses[strings.ToLower(strings.TrimSpace(item.Status))] {
		return false
	}

	onHand := item.Stock()
	if onHand <= item.MinimumStock {
		return true
	}

	if item.MaximumStock > 0 {
		threshold := item.MaximumStock * c.LowStockThresholdPct / 100
		if onHand <= threshold {
			return true
		}
	}

	return false
}

// IdentifyLowStock filters items down to those needing replenishment.
func (c *Calculator) IdentifyLowStock(items []domain.InventoryItem) []domain.InventoryItem {
	var low []domain.InventoryItem
	for _, item := range items {
		if !c.IsLowStock(item) {
			continue
		}
		logger.Log.Info().
			Str("sku", item.SKU).
			Float64("current_stock", item.Stock()).
			Float64("minimum_stock", item.MinimumStock).
			Msg("low stock identified")
		low = append(low, item)
	}
	return low
}
