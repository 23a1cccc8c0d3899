package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/andresuchdata/autopo-reorder/internal/domain"
	"github.com/andresuchdata/autopo-reorder/internal/policy"
)

func sampleResults() []policy.BatchResult {
	stockout := time.Date(2024, 7, 2, 0, 0, 0, 0, time.UTC)
	return []policy.BatchResult{
		{
			SKU: "A-1",
			Decision: &domain.ReorderDecision{
				DecisionID:   "id-1",
				SKU:          "A-1",
				NeedsReorder: true,
				ChosenVendor: &domain.VendorEvaluation{
					Vendor:          domain.Vendor{VendorID: "V1", Name: "Supplier A"},
					TotalAnnualCost: 11473.214,
				},
				RecommendedQty:    210,
				EOQ:               210,
				Priority:          domain.PriorityHigh,
				AvgDailyUsage:     3,
				DaysUntilStockout: domain.Days(5.0 / 3.0),
				StockoutDate:      &stockout,
				CostSavings:       &domain.CostSavings{Amount: 2179.43, Percentage: 16, VersusVendor: "Supplier B"},
				EvidenceSummary:   "HIGH PRIORITY: A-1 needs reordering",
			},
		},
		{SKU: "B-2", Error: "missing required field: on_hand (sku B-2)"},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleResults()))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, header, rows[0])

	first := rows[1]
	assert.Equal(t, "A-1", first[1])
	assert.Equal(t, "true", first[2])
	assert.Equal(t, "High", first[3])
	assert.Equal(t, "210", first[5])
	assert.Equal(t, "11473.21", first[9])
	assert.Equal(t, "3.00", first[10])
	assert.Equal(t, "1.7", first[11])
	assert.Equal(t, "2024-07-02", first[12])
	assert.Equal(t, "16.0", first[14])

	second := rows[2]
	assert.Equal(t, "B-2", second[1])
	assert.Equal(t, "false", second[2])
	assert.Contains(t, second[len(second)-1], "on_hand")
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sampleResults()))

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "A-1", decoded[0]["sku"])
	assert.Equal(t, "missing required field: on_hand (sku B-2)", decoded[1]["error"])

	buf.Reset()
	require.NoError(t, WriteJSON(&buf, nil))
	assert.JSONEq(t, "[]", buf.String())
}

func TestWriteFileXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "decisions.xlsx")
	require.NoError(t, WriteFile(path, sampleResults()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "decision_id", rows[0][0])
	assert.Equal(t, "A-1", rows[1][1])
	assert.Equal(t, "Supplier A", rows[1][8])
}

func TestWriteFileUnsupported(t *testing.T) {
	err := WriteFile(filepath.Join(t.TempDir(), "decisions.txt"), nil)
	assert.Error(t, err)
}
