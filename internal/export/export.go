// Package export writes batch decisions as CSV, XLSX or JSON.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/andresuchdata/autopo-reorder/internal/ingest"
	"github.com/andresuchdata/autopo-reorder/internal/policy"
)

const sheetName = "Decisions"

var header = []string{
	"decision_id",
	"sku",
	"needs_reorder",
	"priority",
	"expedite",
	"recommended_qty",
	"eoq",
	"vendor_id",
	"vendor_name",
	"total_annual_cost",
	"avg_daily_usage",
	"days_until_stockout",
	"stockout_date",
	"savings_amount",
	"savings_percentage",
	"vs_vendor",
	"evidence_summary",
	"error",
}

func money(v float64) string {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return ""
	}
	return decimal.NewFromFloat(v).StringFixed(2)
}

func fixed(v float64, places int32) string {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return ""
	}
	return decimal.NewFromFloat(v).StringFixed(places)
}

// record flattens a batch result into one row aligned with header.
func record(r policy.BatchResult) []string {
	d := r.Decision
	if d == nil {
		rec := make([]string, len(header))
		rec[1] = r.SKU
		rec[2] = "false"
		rec[len(header)-1] = r.Error
		return rec
	}

	var vendorID, vendorName, totalCost string
	if d.ChosenVendor != nil {
		vendorID = d.ChosenVendor.VendorID
		vendorName = d.ChosenVendor.Name
		totalCost = money(d.ChosenVendor.TotalAnnualCost)
	}

	var stockout string
	if d.StockoutDate != nil {
		stockout = d.StockoutDate.Format(time.DateOnly)
	}

	var savingsAmount, savingsPct, vsVendor string
	if d.CostSavings != nil {
		savingsAmount = money(d.CostSavings.Amount)
		savingsPct = fixed(d.CostSavings.Percentage, 1)
		vsVendor = d.CostSavings.VersusVendor
	}

	return []string{
		d.DecisionID,
		d.SKU,
		strconv.FormatBool(d.NeedsReorder),
		string(d.Priority),
		strconv.FormatBool(d.Expedite),
		strconv.Itoa(d.RecommendedQty),
		strconv.Itoa(d.EOQ),
		vendorID,
		vendorName,
		totalCost,
		fixed(d.AvgDailyUsage, 2),
		fixed(d.DaysUntilStockout.Float(), 1),
		stockout,
		savingsAmount,
		savingsPct,
		vsVendor,
		d.EvidenceSummary,
		"",
	}
}

// WriteCSV writes results with a header row.
func WriteCSV(w io.Writer, results []policy.BatchResult) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, r := range results {
		if err := cw.Write(record(r)); err != nil {
			return fmt.Errorf("failed to write csv row for %s: %w", r.SKU, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes results to a single-sheet workbook.
func WriteXLSX(w io.Writer, results []policy.BatchResult) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}

	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		return fmt.Errorf("failed to create stream writer: %w", err)
	}

	if err := sw.SetRow("A1", toCells(header)); err != nil {
		return fmt.Errorf("failed to write xlsx header: %w", err)
	}
	for i, r := range results {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, toCells(record(r))); err != nil {
			return fmt.Errorf("failed to write xlsx row for %s: %w", r.SKU, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("failed to flush xlsx: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write xlsx: %w", err)
	}
	return nil
}

func toCells(values []string) []any {
	cells := make([]any, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return cells
}

// WriteJSON writes results as an indented JSON array.
func WriteJSON(w io.Writer, results []policy.BatchResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if results == nil {
		results = []policy.BatchResult{}
	}
	return enc.Encode(results)
}

// Write encodes results in the given format.
func Write(w io.Writer, format ingest.Format, results []policy.BatchResult) error {
	switch format {
	case ingest.FormatCSV:
		return WriteCSV(w, results)
	case ingest.FormatXLSX:
		return WriteXLSX(w, results)
	case ingest.FormatJSON:
		return WriteJSON(w, results)
	default:
		return fmt.Errorf("%w: %s", ingest.ErrUnsupportedFormat, format)
	}
}

// WriteFile writes results to path, choosing the format from its extension.
func WriteFile(path string, results []policy.BatchResult) error {
	format, err := ingest.DetectFormat(path)
	if err != nil {
		return err
	}

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer out.Close()

	if err := Write(out, format, results); err != nil {
		return fmt.Errorf("failed to export %s: %w", path, err)
	}

	return out.Close()
}
