package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/autopo-reorder/internal/domain"
	"github.com/andresuchdata/autopo-reorder/internal/policy"
)

const asOf = "2024-06-30"

func writeFixtures(t *testing.T) (items, txns, vendors string) {
	t.Helper()
	dir := t.TempDir()

	items = filepath.Join(dir, "items.csv")
	require.NoError(t, os.WriteFile(items, []byte(
		"sku,name,on_hand,reorder_point\n"+
			"NOW,Widget,5,20\n"+
			"OK,Gadget,200,30\n"), 0o644))

	var b strings.Builder
	b.WriteString("sku,quantity,date\n")
	day, _ := time.Parse("2006-01-02", asOf)
	for i := 0; i < 90; i++ {
		d := day.AddDate(0, 0, -i).Format("2006-01-02")
		fmt.Fprintf(&b, "NOW,3,%s\nOK,1,%s\n", d, d)
	}
	txns = filepath.Join(dir, "transactions.csv")
	require.NoError(t, os.WriteFile(txns, []byte(b.String()), 0o644))

	vendors = filepath.Join(dir, "vendors.csv")
	require.NoError(t, os.WriteFile(vendors, []byte(
		"vendor_id,name,price_per_unit,order_cost,lead_time_days\n"+
			"V1,Supplier A,10,50,7\n"+
			"V2,Supplier B,12,40,3\n"), 0o644))

	return items, txns, vendors
}

func run(t *testing.T, args ...string) []byte {
	t.Helper()
	var out bytes.Buffer

	app := newApp()
	app.Writer = &out
	app.ErrWriter = &bytes.Buffer{}

	require.NoError(t, app.Run(append([]string{"reorder", "--log-level", "error"}, args...)))
	return out.Bytes()
}

func TestEvaluateCommand(t *testing.T) {
	items, txns, vendors := writeFixtures(t)

	out := run(t, "evaluate",
		"--items", items,
		"--transactions", txns,
		"--vendors", vendors,
		"--as-of", asOf,
	)

	var results []policy.BatchResult
	require.NoError(t, json.Unmarshal(out, &results))
	require.Len(t, results, 2)

	now := results[0].Decision
	require.NotNil(t, now)
	assert.Equal(t, "NOW", now.SKU)
	assert.True(t, now.NeedsReorder)
	assert.Equal(t, domain.PriorityHigh, now.Priority)
	assert.Equal(t, policy.DecisionID("NOW", asOf), now.DecisionID)

	assert.False(t, results[1].Decision.NeedsReorder)
}

func TestEvaluateCommandWritesFile(t *testing.T) {
	items, txns, vendors := writeFixtures(t)
	out := filepath.Join(t.TempDir(), "decisions.csv")

	run(t, "evaluate",
		"--items", items,
		"--transactions", txns,
		"--vendors", vendors,
		"--as-of", asOf,
		"--output", out,
	)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Len(t, lines, 3)
	assert.Contains(t, lines[1], "NOW")
}

func TestVendorsCommand(t *testing.T) {
	_, _, vendors := writeFixtures(t)

	out := run(t, "vendors", "--vendors", vendors, "--annual-demand", "1000")

	var ranked []domain.VendorEvaluation
	require.NoError(t, json.Unmarshal(out, &ranked))
	require.Len(t, ranked, 2)
	assert.Equal(t, "V1", ranked[0].VendorID)
	assert.InDelta(t, 10500.0, ranked[0].TotalAnnualCost, 1e-6)
}

func TestForecastCommand(t *testing.T) {
	_, txns, _ := writeFixtures(t)

	out := run(t, "forecast", "--transactions", txns, "--sku", "NOW", "--on-hand", "30", "--as-of", asOf)

	var result domain.ForecastResult
	require.NoError(t, json.Unmarshal(out, &result))
	assert.InDelta(t, 3.0, result.AvgDailyUsage, 1e-9)
	assert.InDelta(t, 10.0, result.DaysUntilStockout.Float(), 1e-9)
}

func TestEvaluateCommandRejectsBadAsOf(t *testing.T) {
	items, txns, vendors := writeFixtures(t)

	app := newApp()
	app.Writer = &bytes.Buffer{}
	app.ErrWriter = &bytes.Buffer{}

	err := app.Run([]string{"reorder", "evaluate",
		"--items", items,
		"--transactions", txns,
		"--vendors", vendors,
		"--as-of", "yesterday",
	})
	assert.ErrorContains(t, err, "invalid --as-of")
}
