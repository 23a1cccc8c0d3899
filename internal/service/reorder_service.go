package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/andresuchdata/autopo-reorder/internal/cache"
	"github.com/andresuchdata/autopo-reorder/internal/config"
	"github.com/andresuchdata/autopo-reorder/internal/domain"
	"github.com/andresuchdata/autopo-reorder/internal/forecast"
	"github.com/andresuchdata/autopo-reorder/internal/optimizer"
	"github.com/andresuchdata/autopo-reorder/internal/policy"
	"github.com/andresuchdata/autopo-reorder/internal/safetystock"
	"github.com/andresuchdata/autopo-reorder/pkg/logger"
)

// ErrInvalidRequest marks a request the engine cannot act on.
var ErrInvalidRequest = errors.New("invalid request")

// EvaluateRequest is one batch evaluation. Transactions arrive raw and are
// validated before use.
type EvaluateRequest struct {
	Items           []domain.InventoryItem    `json:"items"`
	Transactions    []forecast.RawTransaction `json:"transactions"`
	Vendors         []domain.Vendor           `json:"vendors"`
	TargetStockDays int                       `json:"target_stock_days"`
}

// EvaluateResponse carries batch results, their summary and any rejected
// transaction messages.
type EvaluateResponse struct {
	Results  []policy.BatchResult `json:"results"`
	Summary  Summary              `json:"summary"`
	Warnings []string             `json:"warnings"`
	Cached   bool                 `json:"cached"`
}

type ReorderService struct {
	policy *policy.ReorderPolicy
	cache  cache.DecisionCache
}

func NewReorderService(p *policy.ReorderPolicy, cacheImpl cache.DecisionCache) *ReorderService {
	if p == nil {
		p = policy.New(policy.Config{}, nil)
	}
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopDecisionCache()
	}
	return &ReorderService{policy: p, cache: cacheImpl}
}

// NewPolicyFromConfig builds the decision policy and its safety stock
// calculator from engine settings.
func NewPolicyFromConfig(cfg config.EngineConfig) *policy.ReorderPolicy {
	calc := safetystock.NewCalculator()
	if cfg.ServiceLevel > 0 {
		calc.ServiceLevel = cfg.ServiceLevel
	}
	if cfg.SafetyStockMultiplier > 0 {
		calc.Multiplier = cfg.SafetyStockMultiplier
	}
	if cfg.DefaultLeadTimeDays > 0 {
		calc.DefaultLeadTimeDays = float64(cfg.DefaultLeadTimeDays)
	}
	if cfg.HoldingCostRate > 0 {
		calc.HoldingCostRate = cfg.HoldingCostRate
	}
	if cfg.OrderCost > 0 {
		calc.OrderCost = cfg.OrderCost
	}
	if cfg.LowStockThresholdPct > 0 {
		calc.LowStockThresholdPct = cfg.LowStockThresholdPct
	}

	return policy.New(policy.Config{
		SafetyMarginDays:   float64(cfg.SafetyMarginDays),
		MinOrderQty:        cfg.MinOrderQty,
		WindowDays:         cfg.WindowDays,
		TargetStockDays:    cfg.TargetStockDays,
		MinimumDailyDemand: cfg.MinimumDailyDemand,
		Workers:            cfg.Workers,
	}, calc)
}

// Evaluate runs a batch evaluation, serving identical same-day requests from cache.
func (s *ReorderService) Evaluate(ctx context.Context, req EvaluateRequest) (*EvaluateResponse, error) {
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("%w: no items to evaluate", ErrInvalidRequest)
	}

	key, err := cache.Fingerprint(req, s.policy.Now())
	if err != nil {
		logger.Log.Warn().Err(err).Msg("reorder: cache fingerprint failed")
	}

	txns, warnings := forecast.ParseTransactions(req.Transactions)
	if warnings == nil {
		warnings = []string{}
	}

	if key != "" {
		if results, ok, err := s.cache.GetDecisions(ctx, key); err == nil && ok {
			return &EvaluateResponse{Results: results, Summary: Summarize(results), Warnings: warnings, Cached: true}, nil
		} else if err != nil {
			logger.Log.Warn().Err(err).Msg("reorder: cache get decisions failed")
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	results := s.policy.BatchEvaluateReorders(req.Items, txns, req.Vendors, req.TargetStockDays)

	if key != "" {
		if err := s.cache.SetDecisions(ctx, key, results); err != nil {
			logger.Log.Warn().Err(err).Msg("reorder: cache set decisions failed")
		}
	}

	return &EvaluateResponse{Results: results, Summary: Summarize(results), Warnings: warnings}, nil
}

// EvaluateItem evaluates a single item. Contract violations surface as
// domain.ErrMissingField or domain.ErrNoVendorAvailable.
func (s *ReorderService) EvaluateItem(item domain.InventoryItem, raw []forecast.RawTransaction, vendors []domain.Vendor, targetStockDays int) (*domain.ReorderDecision, []string, error) {
	txns, warnings := forecast.ParseTransactions(raw)
	decision, err := s.policy.EvaluateReorderNeed(item, txns, vendors, targetStockDays)
	if err != nil {
		return nil, warnings, err
	}
	return decision, warnings, nil
}

// EvaluateParsed runs a batch over already validated transactions.
func (s *ReorderService) EvaluateParsed(items []domain.InventoryItem, txns []domain.Transaction, vendors []domain.Vendor, targetStockDays int) ([]policy.BatchResult, Summary) {
	results := s.policy.BatchEvaluateReorders(items, txns, vendors, targetStockDays)
	return results, Summarize(results)
}

// CompareVendors ranks vendors for the given annual demand.
func (s *ReorderService) CompareVendors(vendors []domain.Vendor, annualDemand float64) ([]domain.VendorEvaluation, error) {
	if !(annualDemand > 0) {
		return nil, fmt.Errorf("%w: annual demand must be positive", ErrInvalidRequest)
	}

	ranked := optimizer.CompareVendors(vendors, annualDemand)
	if len(ranked) == 0 {
		return nil, domain.ErrNoVendorAvailable
	}
	return ranked, nil
}

// Forecast projects demand for one SKU from raw transactions.
func (s *ReorderService) Forecast(raw []forecast.RawTransaction, sku string, onHand float64, windowDays int) (domain.ForecastResult, []string, error) {
	if sku == "" {
		return domain.ForecastResult{}, nil, &domain.MissingFieldError{Field: "sku"}
	}
	if windowDays <= 0 {
		windowDays = s.policy.WindowDays()
	}

	txns, warnings := forecast.ParseTransactions(raw)
	return forecast.Forecast(txns, sku, onHand, windowDays, s.policy.Now()), warnings, nil
}

// Recommend sizes replenishment for low-stock items using observed demand and
// the cheapest viable vendor's lead time and EOQ.
func (s *ReorderService) Recommend(items []domain.InventoryItem, txns []domain.Transaction, vendors []domain.Vendor) safetystock.Recommendations {
	asOf := s.policy.Now()
	window := s.policy.WindowDays()
	bySKU := policy.GroupBySKU(txns)

	plans := make([]safetystock.Plan, 0, len(items))
	for _, item := range items {
		skuTxns := bySKU[item.SKU]
		avg := forecast.ComputeDailyAverage(skuTxns, item.SKU, window, asOf)
		demand := safetystock.Demand{
			AverageDaily: avg,
			StdDeviation: forecast.DailyUsageStdDeviation(skuTxns, item.SKU, window, asOf),
			AnnualDemand: avg * 365,
		}

		if best, err := optimizer.SelectBestVendor(vendors, demand.AnnualDemand); err == nil {
			demand.LeadTimeDays = best.LeadTimeDays
			demand.EOQ = best.EOQ
			if item.UnitCost == 0 {
				item.UnitCost = best.PricePerUnit
			}
		}

		plans = append(plans, safetystock.Plan{Item: item, Demand: demand})
	}

	return s.policy.Calculator().Recommend(plans)
}

// InvalidateCache drops every cached batch response.
func (s *ReorderService) InvalidateCache(ctx context.Context) error {
	if err := s.cache.InvalidateAll(ctx); err != nil {
		return fmt.Errorf("invalidate decision cache: %w", err)
	}
	logger.Log.Info().Msg("reorder: decision cache invalidated")
	return nil
}
