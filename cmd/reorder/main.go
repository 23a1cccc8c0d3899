package main

import (
	"os"

	"github.com/urfave/cli/v2"

	"github.com/andresuchdata/autopo-reorder/internal/config"
	"github.com/andresuchdata/autopo-reorder/pkg/logger"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("reorder command failed")
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "reorder",
		Usage: "Inventory reorder decisions: forecasting, vendor selection and order sizing",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "log-format",
				Usage:   "Log format (console or json)",
				EnvVars: []string{"LOG_FORMAT"},
			},
		},
		Before: setupLogging,
		Commands: []*cli.Command{
			evaluateCommand(),
			vendorsCommand(),
			forecastCommand(),
			recommendCommand(),
			serveCommand(),
		},
	}
}

func setupLogging(c *cli.Context) error {
	cfg := config.Load()

	level := cfg.Log.Level
	if c.IsSet("log-level") {
		level = c.String("log-level")
	}
	format := cfg.Log.Format
	if c.IsSet("log-format") {
		format = c.String("log-format")
	}

	logger.SetOutput(c.App.ErrWriter, format)
	logger.SetLevel(level)
	return nil
}
