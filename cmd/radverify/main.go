package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"radverify/internal/analyze"
	"radverify/internal/api"
	"radverify/internal/calib"
	"radverify/internal/config"
	"radverify/internal/telemetry"
	"radverify/internal/verify"
	"radverify/internal/version"
)

var (
	configPath string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:     "radverify",
	Version: version.String(),
	Short:   "Cross-checks ultrasound scans against their written reports",
	Long: `radverify analyzes an ultrasound scan image, parses the accompanying
free-text report, and reconciles the two: matched findings, omissions,
overstatements, measurement mismatches and outright contradictions, with an
aggregate agreement rate and risk level.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()

		if configPath == "" {
			configPath = os.Getenv("RADVERIFY_CONFIG")
		}

		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}

		zcfg := zap.NewProductionConfig()
		level, err := zapcore.ParseLevel(cfg.LogLevel)
		if err != nil {
			level = zapcore.InfoLevel
		}
		if verbose {
			level = zapcore.DebugLevel
		}
		zcfg.Level = zap.NewAtomicLevelAt(level)
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the verification HTTP service",
	RunE: func(cmd *cobra.Command, args []string) error {
		server := api.NewServer(api.Options{
			Pipeline:    buildPipeline(),
			Logger:      logger,
			MaxUploadMB: cfg.Server.MaxUploadMB,
		})
		return server.Run(cfg.Server.Addr)
	},
}

var (
	scanPath   string
	reportPath string
	jsonOutput bool
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify one scan/report pair from the command line",
	RunE: func(cmd *cobra.Command, args []string) error {
		imageData, err := os.ReadFile(scanPath)
		if err != nil {
			return fmt.Errorf("failed to read scan: %w", err)
		}
		reportText, err := os.ReadFile(reportPath)
		if err != nil {
			return fmt.Errorf("failed to read report: %w", err)
		}

		result, err := buildPipeline().Run(context.Background(), scanPath, imageData, string(reportText))
		if err != nil {
			return err
		}

		if jsonOutput {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		}

		fmt.Println(result.Summary.Text())
		fmt.Println()
		fmt.Println(result.Snippet.Summary)
		fmt.Println(result.Snippet.ConfidenceStatement)
		fmt.Println()
		for _, c := range result.Comparisons {
			fmt.Printf("[%-13s] %-18s %s\n", c.Status, c.Feature, c.Explanation)
		}
		return nil
	},
}

// buildPipeline wires the configured components together.
func buildPipeline() *verify.Pipeline {
	detOpts := analyze.DefaultOptions()
	detOpts.BinaryThreshold = cfg.Detector.BinaryThreshold
	detOpts.MinBlobAreaFraction = cfg.Detector.MinBlobAreaFraction
	detOpts.PresenceThreshold = cfg.Detector.PresenceThreshold

	var noise analyze.NoiseSource
	if cfg.Detector.FallbackSeed != 0 {
		noise = analyze.NewSeededNoise(cfg.Detector.FallbackSeed)
	}

	calOpts := calib.DefaultOptions()
	calOpts.DefaultRatio = cfg.Calibration.DefaultRatio
	calOpts.TickSpacingMM = cfg.Calibration.TickSpacingMM

	var sink telemetry.Sink = telemetry.NopSink{}
	if cfg.Telemetry.Enabled {
		if fs, err := telemetry.NewFileSink(cfg.Telemetry.Path); err == nil {
			sink = fs
		} else {
			logger.Warn("telemetry disabled", zap.Error(err))
		}
	}

	return verify.NewPipeline(verify.PipelineOptions{
		Calibrator:   calib.NewEstimator(calOpts),
		Detector:     analyze.NewDetector(detOpts, noise),
		Engine:       verify.NewEngine(verify.Options{HighConfidence: cfg.Compare.HighConfidence}),
		Sink:         sink,
		Logger:       logger,
		MinReportLen: cfg.Server.MinReportLen,
	})
}

func main() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to TOML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	verifyCmd.Flags().StringVar(&scanPath, "scan", "", "path to the scan image (jpg/png)")
	verifyCmd.Flags().StringVar(&reportPath, "report", "", "path to the report text file")
	verifyCmd.Flags().BoolVar(&jsonOutput, "json", false, "emit the full result as JSON")
	_ = verifyCmd.MarkFlagRequired("scan")
	_ = verifyCmd.MarkFlagRequired("report")

	rootCmd.AddCommand(serveCmd, verifyCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
