package forecast

import (
	"math"
	"time"

	"github.com/andresuchdata/autopo-reorder/internal/domain"
	"github.com/andresuchdata/autopo-reorder/pkg/logger"
)

// DefaultWindowDays is the trailing window used when none is configured.
const DefaultWindowDays = 90

const day = 24 * time.Hour

// inWindow reports whether t falls within [asOf - windowDays, asOf].
func inWindow(t, asOf time.Time, windowDays int) bool {
	cutoff := asOf.Add(-time.Duration(windowDays) * day)
	return !t.Before(cutoff) && !t.After(asOf)
}

// ComputeDailyAverage sums the consumption of sku over the trailing window
// ending at asOf and divides it by windowDays. Days without transactions count
// as zero usage. Non-positive quantities are ignored.
func ComputeDailyAverage(txns []domain.Transaction, sku string, windowDays int, asOf time.Time) float64 {
	if windowDays <= 0 || len(txns) == 0 {
		return 0
	}

	var (
		total float64
		count int
	)
	for _, t := range txns {
		if t.SKU != sku || !inWindow(t.Date, asOf, windowDays) {
			continue
		}
		if !(t.Quantity > 0) || math.IsInf(t.Quantity, 0) {
			continue
		}
		total += t.Quantity
		count++
	}

	if count == 0 {
		logger.Log.Debug().Str("sku", sku).Int("window_days", windowDays).Msg("no usage in window")
		return 0
	}

	avg := total / float64(windowDays)
	logger.Log.Debug().
		Str("sku", sku).
		Float64("total_usage", total).
		Int("window_days", windowDays).
		Float64("avg_daily", avg).
		Msg("computed daily average")

	return avg
}

// ForecastWeeklyDemand projects a week of demand. Negative input is treated as zero.
func ForecastWeeklyDemand(avgDaily float64) float64 {
	if avgDaily < 0 {
		avgDaily = 0
	}
	return avgDaily * 7
}

// EstimateDaysUntilStockout returns 0 when nothing is on hand and +Inf when
// there is no usage.
func EstimateDaysUntilStockout(onHand, avgDaily float64) float64 {
	if onHand <= 0 {
		return 0
	}
	if avgDaily <= 0 {
		return math.Inf(1)
	}
	return onHand / avgDaily
}

// DailyUsageStdDeviation is the population standard deviation of per-day
// consumption of sku over the window. Empty days are zero buckets.
func DailyUsageStdDeviation(txns []domain.Transaction, sku string, windowDays int, asOf time.Time) float64 {
	if windowDays <= 0 {
		return 0
	}

	buckets := make([]float64, windowDays)
	cutoff := asOf.Add(-time.Duration(windowDays) * day)
	for _, t := range txns {
		if t.SKU != sku || !inWindow(t.Date, asOf, windowDays) {
			continue
		}
		if !(t.Quantity > 0) || math.IsInf(t.Quantity, 0) {
			continue
		}
		idx := int(t.Date.Sub(cutoff) / day)
		if idx >= windowDays {
			idx = windowDays - 1
		}
		buckets[idx] += t.Quantity
	}

	var sum float64
	for _, b := range buckets {
		sum += b
	}
	mean := sum / float64(windowDays)

	var sq float64
	for _, b := range buckets {
		d := b - mean
		sq += d * d
	}

	return math.Sqrt(sq / float64(windowDays))
}

// Forecast assembles the full demand outlook of one SKU.
func Forecast(txns []domain.Transaction, sku string, onHand float64, windowDays int, asOf time.Time) domain.ForecastResult {
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}

	avg := ComputeDailyAverage(txns, sku, windowDays, asOf)
	days := EstimateDaysUntilStockout(onHand, avg)

	return domain.ForecastResult{
		SKU:                sku,
		AvgDailyUsage:      avg,
		WeeklyDemand:       ForecastWeeklyDemand(avg),
		DemandStdDeviation: DailyUsageStdDeviation(txns, sku, windowDays, asOf),
		DaysUntilStockout:  domain.Days(days),
		StockoutDate:       StockoutDate(asOf, days),
	}
}

// StockoutDate projects days forward from asOf. It is nil when days is infinite.
func StockoutDate(asOf time.Time, days float64) *time.Time {
	if math.IsInf(days, 0) || math.IsNaN(days) {
		return nil
	}
	d := asOf.Add(time.Duration(days * float64(day)))
	return &d
}
