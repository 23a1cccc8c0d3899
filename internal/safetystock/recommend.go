package safetystock

import (
	"github.com/shopspring/decimal"

	"github.com/andresuchdata/autopo-reorder/internal/domain"
)

// Plan pairs an item with the demand profile used to size its order.
type Plan struct {
	Item   domain.InventoryItem
	Demand Demand
}

// Recommendation is the replenishment proposal for one low-stock item.
type Recommendation struct {
	SKU            string  `json:"sku"`
	Name           string  `json:"name,omitempty"`
	CurrentStock   float64 `json:"current_stock"`
	RecommendedQty int     `json:"recommended_quantity"`
	SafetyStock    float64 `json:"safety_stock"`
	EstimatedCost  float64 `json:"estimated_cost"`
	Expedite       bool    `json:"is_expedited"`
	Priority       string  `json:"priority"`
}

// Recommendations summarizes a replenishment run.
type Recommendations struct {
	TotalItemsAnalyzed  int              `json:"total_items_analyzed"`
	ItemsNeedingReorder int              `json:"items_needing_reorder"`
	Items               []Recommendation `json:"reorder_items"`
	Expedited           []Recommendation `json:"expedited_items"`
	TotalEstimatedCost  float64          `json:"total_estimated_cost"`
}

// Recommend sizes an order for every low-stock item among plans.
func (c *Calculator) Recommend(plans []Plan) Recommendations {
	recs := Recommendations{
		TotalItemsAnalyzed: len(plans),
		Items:              []Recommendation{},
		Expedited:          []Recommendation{},
	}

	total := decimal.Zero
	for _, p := range plans {
		if !c.IsLowStock(p.Item) {
			continue
		}

		qty := c.CalculateOrderQuantity(p.Item, p.Demand)
		cost := decimal.NewFromInt(int64(qty)).Mul(decimal.NewFromFloat(p.Item.UnitCost)).Round(2)

		priority := p.Item.Priority
		if priority == "" {
			priority = "normal"
		}

		rec := Recommendation{
			SKU:            p.Item.SKU,
			Name:           p.Item.Name,
			CurrentStock:   p.Item.Stock(),
			RecommendedQty: qty,
			SafetyStock:    decimal.NewFromFloat(c.SafetyStock(p.Demand)).Round(2).InexactFloat64(),
			EstimatedCost:  cost.InexactFloat64(),
			Expedite:       c.ShouldExpedite(p.Item),
			Priority:       priority,
		}

		recs.Items = append(recs.Items, rec)
		if rec.Expedite {
			recs.Expedited = append(recs.Expedited, rec)
		}
		total = total.Add(cost)
	}

	recs.ItemsNeedingReorder = len(recs.Items)
	recs.TotalEstimatedCost = total.InexactFloat64()

	return recs
}
