package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/autopo-reorder/internal/config"
	"github.com/andresuchdata/autopo-reorder/internal/domain"
	"github.com/andresuchdata/autopo-reorder/internal/forecast"
	"github.com/andresuchdata/autopo-reorder/internal/policy"
)

var evalTime = time.Date(2024, 6, 30, 9, 0, 0, 0, time.UTC)

type memoryCache struct {
	entries       map[string][]policy.BatchResult
	sets          int
	getErr        error
	invalidateErr error
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string][]policy.BatchResult{}}
}

func (m *memoryCache) GetDecisions(_ context.Context, key string) ([]policy.BatchResult, bool, error) {
	if m.getErr != nil {
		return nil, false, m.getErr
	}
	r, ok := m.entries[key]
	return r, ok, nil
}

func (m *memoryCache) SetDecisions(_ context.Context, key string, results []policy.BatchResult) error {
	m.sets++
	m.entries[key] = results
	return nil
}

func (m *memoryCache) InvalidateAll(context.Context) error {
	if m.invalidateErr != nil {
		return m.invalidateErr
	}
	m.entries = map[string][]policy.BatchResult{}
	return nil
}

func (m *memoryCache) Close() error { return nil }

func newTestService(c *memoryCache) *ReorderService {
	p := policy.New(policy.Config{
		WindowDays: 90,
		Workers:    2,
		Now:        func() time.Time { return evalTime },
	}, nil)
	if c == nil {
		return NewReorderService(p, nil)
	}
	return NewReorderService(p, c)
}

func rawUsage(sku string, perDay int) []forecast.RawTransaction {
	raw := make([]forecast.RawTransaction, 0, 90)
	for i := 0; i < 90; i++ {
		raw = append(raw, forecast.RawTransaction{
			SKU:      sku,
			Quantity: fmt.Sprint(perDay),
			Date:     evalTime.AddDate(0, 0, -i).Format("2006-01-02"),
		})
	}
	return raw
}

func vendors() []domain.Vendor {
	return []domain.Vendor{
		{VendorID: "V1", Name: "Supplier A", PricePerUnit: 10, OrderCost: 50, LeadTimeDays: 7},
		{VendorID: "V2", Name: "Supplier B", PricePerUnit: 12, OrderCost: 40, LeadTimeDays: 3},
	}
}

func evaluateRequest() EvaluateRequest {
	raw := append(rawUsage("NOW", 3), rawUsage("OK", 1)...)
	raw = append(raw, forecast.RawTransaction{SKU: "NOW", Quantity: "oops", Date: "2024-06-01"})

	return EvaluateRequest{
		Items: []domain.InventoryItem{
			{SKU: "OK", OnHand: domain.Float64(200), ReorderPoint: 30},
			{SKU: "NOW", OnHand: domain.Float64(5), ReorderPoint: 20},
			{SKU: "BAD"},
		},
		Transactions:    raw,
		Vendors:         vendors(),
		TargetStockDays: 30,
	}
}

func TestEvaluate(t *testing.T) {
	c := newMemoryCache()
	svc := newTestService(c)

	resp, err := svc.Evaluate(context.Background(), evaluateRequest())
	require.NoError(t, err)

	require.Len(t, resp.Results, 3)
	assert.Equal(t, "NOW", resp.Results[0].SKU)
	assert.Equal(t, "BAD", resp.Results[2].SKU)
	assert.Len(t, resp.Warnings, 1)
	assert.False(t, resp.Cached)

	assert.Equal(t, 3, resp.Summary.TotalItems)
	assert.Equal(t, 1, resp.Summary.NeedsReorder)
	assert.Equal(t, 1, resp.Summary.Errors)
	assert.Equal(t, 1, resp.Summary.ByPriority["High"])
	assert.Equal(t, 1, c.sets)

	again, err := svc.Evaluate(context.Background(), evaluateRequest())
	require.NoError(t, err)
	assert.True(t, again.Cached)
	assert.Equal(t, resp.Results, again.Results)
	assert.Equal(t, 1, c.sets)
}

func TestEvaluateCacheFailureFallsThrough(t *testing.T) {
	c := newMemoryCache()
	c.getErr = errors.New("redis down")
	svc := newTestService(c)

	resp, err := svc.Evaluate(context.Background(), evaluateRequest())
	require.NoError(t, err)
	assert.False(t, resp.Cached)
	assert.Len(t, resp.Results, 3)
}

func TestEvaluateRejectsEmptyRequest(t *testing.T) {
	_, err := newTestService(nil).Evaluate(context.Background(), EvaluateRequest{})
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestEvaluateHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestService(nil).Evaluate(ctx, evaluateRequest())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEvaluateItem(t *testing.T) {
	svc := newTestService(nil)

	d, warnings, err := svc.EvaluateItem(domain.InventoryItem{SKU: "NOW", OnHand: domain.Float64(5), ReorderPoint: 20}, rawUsage("NOW", 3), vendors(), 30)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.True(t, d.NeedsReorder)
	assert.Equal(t, domain.PriorityHigh, d.Priority)

	_, _, err = svc.EvaluateItem(domain.InventoryItem{SKU: "NOW"}, nil, vendors(), 30)
	assert.ErrorIs(t, err, domain.ErrMissingField)

	_, _, err = svc.EvaluateItem(domain.InventoryItem{SKU: "NOW", OnHand: domain.Float64(5)}, nil, nil, 30)
	assert.ErrorIs(t, err, domain.ErrNoVendorAvailable)
}

func TestCompareVendors(t *testing.T) {
	svc := newTestService(nil)

	ranked, err := svc.CompareVendors(vendors(), 1000)
	require.NoError(t, err)
	require.Len(t, ranked, 2)
	assert.Equal(t, "V1", ranked[0].VendorID)
	assert.InDelta(t, 10500.0, ranked[0].TotalAnnualCost, 1e-6)

	_, err = svc.CompareVendors(vendors(), 0)
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = svc.CompareVendors(nil, 1000)
	assert.ErrorIs(t, err, domain.ErrNoVendorAvailable)
}

func TestForecast(t *testing.T) {
	svc := newTestService(nil)

	res, warnings, err := svc.Forecast(rawUsage("A", 2), "A", 10, 0)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.InDelta(t, 2.0, res.AvgDailyUsage, 1e-9)
	assert.InDelta(t, 5.0, res.DaysUntilStockout.Float(), 1e-9)

	_, _, err = svc.Forecast(nil, "", 10, 30)
	assert.ErrorIs(t, err, domain.ErrMissingField)
}

func TestRecommend(t *testing.T) {
	svc := newTestService(nil)
	txns, _ := forecast.ParseTransactions(rawUsage("LOW", 3))

	recs := svc.Recommend([]domain.InventoryItem{
		{SKU: "LOW", OnHand: domain.Float64(5), MinimumStock: 10, MaximumStock: 100},
		{SKU: "FULL", OnHand: domain.Float64(90), MinimumStock: 10, MaximumStock: 100},
	}, txns, vendors())

	assert.Equal(t, 2, recs.TotalItemsAnalyzed)
	require.Len(t, recs.Items, 1)
	assert.Equal(t, "LOW", recs.Items[0].SKU)
	assert.Equal(t, 210, recs.Items[0].RecommendedQty)
	assert.Equal(t, 2100.0, recs.Items[0].EstimatedCost)
	assert.True(t, recs.Items[0].Expedite)
}

func TestNewPolicyFromConfig(t *testing.T) {
	p := NewPolicyFromConfig(config.EngineConfig{
		SafetyMarginDays:     7,
		WindowDays:           60,
		ServiceLevel:         0.9,
		OrderCost:            75,
		LowStockThresholdPct: 30,
	})

	assert.Equal(t, 60, p.WindowDays())
	assert.Equal(t, 0.9, p.Calculator().ServiceLevel)
	assert.Equal(t, 75.0, p.Calculator().OrderCost)
	assert.Equal(t, 30.0, p.Calculator().LowStockThresholdPct)
	assert.Equal(t, 1.2, p.Calculator().Multiplier)
}

func TestInvalidateCache(t *testing.T) {
	c := newMemoryCache()
	svc := newTestService(c)

	_, err := svc.Evaluate(context.Background(), evaluateRequest())
	require.NoError(t, err)
	require.Len(t, c.entries, 1)

	require.NoError(t, svc.InvalidateCache(context.Background()))
	assert.Empty(t, c.entries)

	resp, err := svc.Evaluate(context.Background(), evaluateRequest())
	require.NoError(t, err)
	assert.False(t, resp.Cached)
	assert.Equal(t, 2, c.sets)
}

func TestInvalidateCacheError(t *testing.T) {
	c := newMemoryCache()
	c.invalidateErr = errors.New("redis down")

	err := newTestService(c).InvalidateCache(context.Background())
	assert.ErrorContains(t, err, "redis down")
}
