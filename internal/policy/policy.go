// Package policy turns forecasts, vendor costs and safety stock sizing into a
// single reorder decision per SKU.
package policy

import (
	"runtime"
	"time"

	"github.com/andresuchdata/autopo-reorder/internal/domain"
	"github.com/andresuchdata/autopo-reorder/internal/forecast"
	"github.com/andresuchdata/autopo-reorder/internal/safetystock"
	"github.com/andresuchdata/autopo-reorder/pkg/logger"
)

const (
	DefaultSafetyMarginDays   = 7
	DefaultMinOrderQty        = 1
	DefaultTargetStockDays    = 30
	DefaultMinimumDailyDemand = 0.1

	highPriorityDays   = 7
	mediumPriorityDays = 14
)

// Config tunes a ReorderPolicy. Zero values take the defaults.
type Config struct {
	SafetyMarginDays   float64
	MinOrderQty        int
	WindowDays         int
	TargetStockDays    int
	MinimumDailyDemand float64
	Workers            int
	// Now anchors the forecast window and stockout dates.
	Now func() time.Time
}

// ReorderPolicy evaluates reorder needs. It holds configuration only and is
// safe for concurrent use.
type ReorderPolicy struct {
	safetyMarginDays   float64
	minOrderQty        int
	windowDays         int
	targetStockDays    int
	minimumDailyDemand float64
	workers            int
	now                func() time.Time
	calc               *safetystock.Calculator
}

// New creates a policy. A nil calculator uses the standard safety stock parameters.
func New(cfg Config, calc *safetystock.Calculator) *ReorderPolicy {
	p := &ReorderPolicy{
		safetyMarginDays:   cfg.SafetyMarginDays,
		minOrderQty:        cfg.MinOrderQty,
		windowDays:         cfg.WindowDays,
		targetStockDays:    cfg.TargetStockDays,
		minimumDailyDemand: cfg.MinimumDailyDemand,
		workers:            cfg.Workers,
		now:                cfg.Now,
		calc:               calc,
	}

	if p.safetyMarginDays <= 0 {
		p.safetyMarginDays = DefaultSafetyMarginDays
	}
	if p.minOrderQty <= 0 {
		p.minOrderQty = DefaultMinOrderQty
	}
	if p.windowDays <= 0 {
		p.windowDays = forecast.DefaultWindowDays
	}
	if p.targetStockDays <= 0 {
		p.targetStockDays = DefaultTargetStockDays
	}
	if p.minimumDailyDemand < 0 {
		p.minimumDailyDemand = 0
	} else if p.minimumDailyDemand == 0 {
		p.minimumDailyDemand = DefaultMinimumDailyDemand
	}
	if p.workers <= 0 {
		p.workers = runtime.NumCPU()
	}
	if p.now == nil {
		p.now = time.Now
	}
	if p.calc == nil {
		p.calc = safetystock.NewCalculator()
	}

	logger.Log.Debug().
		Float64("safety_margin_days", p.safetyMarginDays).
		Int("min_order_qty", p.minOrderQty).
		Int("window_days", p.windowDays).
		Int("workers", p.workers).
		Msg("reorder policy initialized")

	return p
}

// ClassifyPriority maps days of runway to an urgency tier:
// at most 7 days is High, at most 14 is Medium, anything else Low.
func ClassifyPriority(daysUntilStockout float64) domain.Priority {
	switch {
	case daysUntilStockout <= highPriorityDays:
		return domain.PriorityHigh
	case daysUntilStockout <= mediumPriorityDays:
		return domain.PriorityMedium
	default:
		return domain.PriorityLow
	}
}

// Now returns the policy's evaluation time.
func (p *ReorderPolicy) Now() time.Time {
	return p.now()
}

// WindowDays is the trailing forecast window in days.
func (p *ReorderPolicy) WindowDays() int {
	return p.windowDays
}

// Calculator exposes the safety stock calculator used for expedite checks and decision factors.
func (p *ReorderPolicy) Calculator() *safetystock.Calculator {
	return p.calc
}

// WithClock returns a copy of the policy that evaluates as of now().
func (p *ReorderPolicy) WithClock(now func() time.Time) *ReorderPolicy {
	clone := *p
	if now != nil {
		clone.now = now
	}
	return &clone
}
