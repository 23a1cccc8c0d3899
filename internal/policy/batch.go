package policy

import (
	"math"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/andresuchdata/autopo-reorder/internal/domain"
	"github.com/andresuchdata/autopo-reorder/pkg/logger"
)

// BatchResult is the outcome of one item in a batch. Exactly one of Decision
// and Error is set.
type BatchResult struct {
	SKU      string                  `json:"sku"`
	Decision *domain.ReorderDecision `json:"decision,omitempty"`
	Error    string                  `json:"error,omitempty"`
}

func (r BatchResult) needsReorder() bool {
	return r.Decision != nil && r.Decision.NeedsReorder
}

func (r BatchResult) days() float64 {
	if r.Decision == nil {
		return math.Inf(1)
	}
	return r.Decision.DaysUntilStockout.Float()
}

// GroupBySKU indexes transactions by SKU, keeping input order.
func GroupBySKU(txns []domain.Transaction) map[string][]domain.Transaction {
	grouped := make(map[string][]domain.Transaction)
	for _, t := range txns {
		grouped[t.SKU] = append(grouped[t.SKU], t)
	}
	return grouped
}

// BatchEvaluateReorders evaluates every item independently on a bounded pool
// of workers. A failing item is reported in its own result and never stops
// the batch. Results list reorders first, then the shortest runway first.
func (p *ReorderPolicy) BatchEvaluateReorders(
	items []domain.InventoryItem,
	txns []domain.Transaction,
	vendors []domain.Vendor,
	targetStockDays int,
) []BatchResult {
	bySKU := GroupBySKU(txns)
	results := make([]BatchResult, len(items))

	var g errgroup.Group
	g.SetLimit(p.workers)

	for i, item := range items {
		g.Go(func() error {
			sku := item.SKU
			if sku == "" {
				sku = "unknown"
			}

			decision, err := p.EvaluateReorderNeed(item, bySKU[item.SKU], vendors, targetStockDays)
			if err != nil {
				logger.Log.Error().Err(err).Str("sku", sku).Msg("failed to evaluate item")
				results[i] = BatchResult{SKU: sku, Error: err.Error()}
				return nil
			}

			results[i] = BatchResult{SKU: sku, Decision: decision}
			return nil
		})
	}

	// workers never return an error
	_ = g.Wait()

	SortResults(results)

	logger.Log.Info().Int("items", len(results)).Msg("batch evaluation complete")

	return results
}

// SortResults orders results with reorders first, then by ascending days
// until stockout. Errored results count as no reorder with infinite runway.
func SortResults(results []BatchResult) {
	sort.SliceStable(results, func(i, j int) bool {
		ri, rj := results[i].needsReorder(), results[j].needsReorder()
		if ri != rj {
			return ri
		}
		return results[i].days() < results[j].days()
	})
}
