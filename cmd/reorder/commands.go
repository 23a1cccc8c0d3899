package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/andresuchdata/autopo-reorder/internal/config"
	"github.com/andresuchdata/autopo-reorder/internal/domain"
	"github.com/andresuchdata/autopo-reorder/internal/export"
	"github.com/andresuchdata/autopo-reorder/internal/forecast"
	"github.com/andresuchdata/autopo-reorder/internal/ingest"
	"github.com/andresuchdata/autopo-reorder/internal/policy"
	"github.com/andresuchdata/autopo-reorder/internal/service"
	"github.com/andresuchdata/autopo-reorder/pkg/logger"
)

func itemsFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "items",
		Usage:    "Inventory items file (csv, xlsx or json)",
		Required: true,
		EnvVars:  []string{"REORDER_ITEMS"},
	}
}

func transactionsFlag(required bool) *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "transactions",
		Usage:    "Inventory transactions file (csv, xlsx or json)",
		Required: required,
		EnvVars:  []string{"REORDER_TRANSACTIONS"},
	}
}

func vendorsFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "vendors",
		Usage:    "Vendor offers file (csv, xlsx or json)",
		Required: true,
		EnvVars:  []string{"REORDER_VENDORS"},
	}
}

func asOfFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:  "as-of",
		Usage: "Evaluate as of this date (YYYY-MM-DD or RFC3339), defaults to now",
	}
}

func windowFlag() *cli.IntFlag {
	return &cli.IntFlag{
		Name:  "window",
		Usage: "Trailing forecast window in days (0 uses the configured window)",
	}
}

// newPolicy builds the engine policy from configuration and command flags.
func newPolicy(c *cli.Context) (*policy.ReorderPolicy, error) {
	engine := config.Load().Engine
	if w := c.Int("window"); w > 0 {
		engine.WindowDays = w
	}

	p := service.NewPolicyFromConfig(engine)

	if raw := c.String("as-of"); raw != "" {
		asOf, err := forecast.ParseDate(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid --as-of %q: %w", raw, err)
		}
		p = p.WithClock(func() time.Time { return asOf })
	}

	return p, nil
}

func loadTransactions(path string) ([]domain.Transaction, error) {
	if path == "" {
		return nil, nil
	}

	txns, warnings, err := ingest.LoadTransactions(path)
	if err != nil {
		return nil, err
	}
	for _, w := range warnings {
		logger.Log.Warn().Str("file", path).Msg(w)
	}

	return txns, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func evaluateCommand() *cli.Command {
	return &cli.Command{
		Name:  "evaluate",
		Usage: "Evaluate reorder needs for every item and export the decisions",
		Flags: []cli.Flag{
			itemsFlag(),
			transactionsFlag(true),
			vendorsFlag(),
			&cli.IntFlag{
				Name:  "target-days",
				Usage: "Days of stock an order should cover (0 uses the configured target)",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write decisions to this file; the format follows its extension",
			},
			&cli.StringFlag{
				Name:  "format",
				Usage: "Format for stdout output (csv, xlsx or json)",
				Value: string(ingest.FormatJSON),
			},
			asOfFlag(),
			windowFlag(),
		},
		Action: runEvaluate,
	}
}

func runEvaluate(c *cli.Context) error {
	p, err := newPolicy(c)
	if err != nil {
		return err
	}

	items, err := ingest.LoadItems(c.String("items"))
	if err != nil {
		return err
	}
	txns, err := loadTransactions(c.String("transactions"))
	if err != nil {
		return err
	}
	vendors, err := ingest.LoadVendors(c.String("vendors"))
	if err != nil {
		return err
	}

	svc := service.NewReorderService(p, nil)
	results, summary := svc.EvaluateParsed(items, txns, vendors, c.Int("target-days"))

	logger.Log.Info().
		Int("items", summary.TotalItems).
		Int("needs_reorder", summary.NeedsReorder).
		Int("expedite", summary.Expedite).
		Int("errors", summary.Errors).
		Float64("order_value", summary.TotalOrderValue).
		Msg("evaluation complete")

	if out := c.String("output"); out != "" {
		if err := export.WriteFile(out, results); err != nil {
			return err
		}
		logger.Log.Info().Str("output", out).Msg("decisions exported")
		return nil
	}

	return export.Write(c.App.Writer, ingest.Format(c.String("format")), results)
}

func vendorsCommand() *cli.Command {
	return &cli.Command{
		Name:  "vendors",
		Usage: "Rank vendors by total annual cost for a given annual demand",
		Flags: []cli.Flag{
			vendorsFlag(),
			&cli.Float64Flag{
				Name:     "annual-demand",
				Usage:    "Expected units per year",
				Required: true,
			},
		},
		Action: func(c *cli.Context) error {
			vendors, err := ingest.LoadVendors(c.String("vendors"))
			if err != nil {
				return err
			}

			p, err := newPolicy(c)
			if err != nil {
				return err
			}

			ranked, err := service.NewReorderService(p, nil).CompareVendors(vendors, c.Float64("annual-demand"))
			if err != nil {
				return err
			}

			return writeJSON(c.App.Writer, ranked)
		},
	}
}

func forecastCommand() *cli.Command {
	return &cli.Command{
		Name:  "forecast",
		Usage: "Forecast demand and runway for one SKU",
		Flags: []cli.Flag{
			transactionsFlag(true),
			&cli.StringFlag{
				Name:     "sku",
				Usage:    "SKU to forecast",
				Required: true,
			},
			&cli.Float64Flag{
				Name:  "on-hand",
				Usage: "Units currently in stock",
			},
			asOfFlag(),
			windowFlag(),
		},
		Action: func(c *cli.Context) error {
			p, err := newPolicy(c)
			if err != nil {
				return err
			}

			txns, err := loadTransactions(c.String("transactions"))
			if err != nil {
				return err
			}

			result := forecast.Forecast(txns, c.String("sku"), c.Float64("on-hand"), p.WindowDays(), p.Now())
			return writeJSON(c.App.Writer, result)
		},
	}
}

func recommendCommand() *cli.Command {
	return &cli.Command{
		Name:  "recommend",
		Usage: "Size safety-stock replenishment for low-stock items",
		Flags: []cli.Flag{
			itemsFlag(),
			transactionsFlag(false),
			vendorsFlag(),
			asOfFlag(),
			windowFlag(),
		},
		Action: func(c *cli.Context) error {
			p, err := newPolicy(c)
			if err != nil {
				return err
			}

			items, err := ingest.LoadItems(c.String("items"))
			if err != nil {
				return err
			}
			txns, err := loadTransactions(c.String("transactions"))
			if err != nil {
				return err
			}
			vendors, err := ingest.LoadVendors(c.String("vendors"))
			if err != nil {
				return err
			}

			recs := service.NewReorderService(p, nil).Recommend(items, txns, vendors)
			logger.Log.Info().
				Int("analyzed", recs.TotalItemsAnalyzed).
				Int("needing_reorder", recs.ItemsNeedingReorder).
				Msg("recommendations ready")

			return writeJSON(c.App.Writer, recs)
		},
	}
}
