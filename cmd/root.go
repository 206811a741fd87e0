package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/waterlens-cli/internal/config"
	"github.com/KaramelBytes/waterlens-cli/internal/logging"
)

var (
	// Global flags
	cfgFile       string
	debug         bool
	flagStandards string
	flagWorkers   int

	// Loaded configuration
	cfg *cfgpkg.Global

	// logger writes diagnostics to stderr; command output goes to stdout.
	logger = logging.Discard()

	logOutput io.Writer = os.Stderr
)

var rootCmd = &cobra.Command{
	Use:   "waterlens",
	Short: "WaterLens CLI: score water samples against drinking-water standards",
	Long: `WaterLens reads laboratory sample sheets (CSV, TSV, XLSX, JSON), normalizes parameter names and
units, classifies every reading against a standards registry, computes HMPI and WQI indices, fits trends
across the batch, and writes Markdown, JSON or XLSX reports.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.waterlens/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&flagStandards, "standards", "", "YAML file overriding the built-in standards (overrides config)")
	rootCmd.PersistentFlags().IntVar(&flagWorkers, "workers", 0, "concurrent sample workers (overrides config)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: allow running commands that don't need config
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		cfg = nil
	} else {
		cfg = c
	}

	level, format := "warn", "text"
	if cfg != nil {
		level, format = cfg.LogLevel, cfg.LogFormat
	}
	if debug {
		level = "debug"
	}
	l, err := logging.New(logOutput, level, format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "⚠ Warning: %v\n", err)
		return
	}
	logger = l
	slog.SetDefault(l)
}
