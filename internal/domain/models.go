// internal/domain/models.go
package domain

import "time"

// DefaultHoldingCostRate is the annual carrying cost as a fraction of unit
// price applied when a vendor does not specify one.
const DefaultHoldingCostRate = 0.25

// Transaction is a single stock movement. A positive Quantity is consumption
// (units leaving stock); zero or negative quantities are receipts, returns or
// adjustments and never count as usage.
type Transaction struct {
	SKU      string    `json:"sku"`
	Quantity float64   `json:"quantity"`
	Date     time.Time `json:"date"`
}

// InventoryItem is the stock snapshot of one SKU at evaluation time.
// OnHand is a pointer so a missing value can be told apart from zero stock.
type InventoryItem struct {
	SKU          string   `json:"sku"`
	Name         string   `json:"name,omitempty"`
	OnHand       *float64 `json:"on_hand"`
	ReorderPoint float64  `json:"reorder_point"`
	MinimumStock float64  `json:"minimum_stock"`
	MaximumStock float64  `json:"maximum_stock"`
	MinOrderQty  int      `json:"min_order_qty"`
	OrderUnit    int      `json:"order_unit"`
	UnitCost     float64  `json:"unit_cost,omitempty"`
	Critical     bool     `json:"is_critical,omitempty"`
	Priority     string   `json:"priority,omitempty"`
	Status       string   `json:"status,omitempty"`
}

// Stock returns the on-hand quantity, or zero when it is unknown.
func (i InventoryItem) Stock() float64 {
	if i.OnHand == nil {
		return 0
	}
	return *i.OnHand
}

// Validate checks the attributes every evaluation depends on.
func (i InventoryItem) Validate() error {
	if i.SKU == "" {
		return &MissingFieldError{Field: "sku"}
	}
	if i.OnHand == nil {
		return &MissingFieldError{Field: "on_hand", SKU: i.SKU}
	}
	return nil
}

// Vendor is a candidate supplier for a SKU.
// A zero HoldingCostRate means DefaultHoldingCostRate.
type Vendor struct {
	VendorID        string   `json:"vendor_id"`
	Name            string   `json:"name"`
	PricePerUnit    float64  `json:"price_per_unit"`
	OrderCost       float64  `json:"order_cost"`
	LeadTimeDays    float64  `json:"lead_time_days"`
	HoldingCostRate float64  `json:"holding_cost_rate,omitempty"`
	TrustScore      *float64 `json:"trust_score,omitempty"`
}

// EffectiveHoldingCostRate resolves the default holding cost rate.
func (v Vendor) EffectiveHoldingCostRate() float64 {
	if v.HoldingCostRate == 0 {
		return DefaultHoldingCostRate
	}
	return v.HoldingCostRate
}

// HoldingCostPerUnit is the annual cost of carrying one unit.
func (v Vendor) HoldingCostPerUnit() float64 {
	return v.PricePerUnit * v.EffectiveHoldingCostRate()
}

// ForecastResult is the demand outlook of one SKU.
type ForecastResult struct {
	SKU                string     `json:"sku"`
	AvgDailyUsage      float64    `json:"avg_daily_usage"`
	WeeklyDemand       float64    `json:"weekly_demand"`
	DemandStdDeviation float64    `json:"demand_std_deviation"`
	DaysUntilStockout  Days       `json:"days_until_stockout"`
	StockoutDate       *time.Time `json:"stockout_date"`
}

// CostBreakdown splits a vendor's total annual cost.
type CostBreakdown struct {
	PurchaseCost float64 `json:"purchase_cost"`
	OrderingCost float64 `json:"ordering_cost"`
	HoldingCost  float64 `json:"holding_cost"`
}

// Total sums the three components.
func (b CostBreakdown) Total() float64 {
	return b.PurchaseCost + b.OrderingCost + b.HoldingCost
}

// VendorEvaluation is a vendor augmented with its EOQ and annual cost.
type VendorEvaluation struct {
	Vendor
	EOQ             int           `json:"eoq"`
	TotalAnnualCost float64       `json:"total_annual_cost"`
	CostBreakdown   CostBreakdown `json:"cost_breakdown"`
}

// CostSavings compares the chosen vendor against the runner-up.
type CostSavings struct {
	Amount       float64 `json:"savings_amount"`
	Percentage   float64 `json:"savings_percentage"`
	VersusVendor string  `json:"vs_vendor"`
}

// ReorderDecision is the terminal artifact of one evaluation.
type ReorderDecision struct {
	DecisionID        string            `json:"decision_id"`
	SKU               string            `json:"sku"`
	NeedsReorder      bool              `json:"needs_reorder"`
	ChosenVendor      *VendorEvaluation `json:"chosen_vendor"`
	RecommendedQty    int               `json:"recommended_qty"`
	EOQ               int               `json:"eoq"`
	Priority          Priority          `json:"priority"`
	Expedite          bool              `json:"expedite"`
	AvgDailyUsage     float64           `json:"avg_daily_usage"`
	DaysUntilStockout Days              `json:"days_until_stockout"`
	StockoutDate      *time.Time        `json:"stockout_date"`
	EvidenceSummary   string            `json:"evidence_summary"`
	DecisionFactors   map[string]any    `json:"decision_factors"`
	CostSavings       *CostSavings      `json:"cost_savings,omitempty"`
	Status            DecisionStatus    `json:"status"`
	EvaluatedAt       time.Time         `json:"evaluated_at"`
}

// VendorName is the chosen vendor's name, or empty when there is none.
func (d ReorderDecision) VendorName() string {
	if d.ChosenVendor == nil {
		return ""
	}
	return d.ChosenVendor.Name
}

// Float64 returns a pointer to v.
func Float64(v float64) *float64 {
	return &v
}
