package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"reqsync/core/config"
	"reqsync/core/jama"
	"reqsync/core/logger"
	"reqsync/core/reconcile"
)

var debugLogging bool

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "reqsync",
	Short: "Jama requirement spreadsheet synchronizer",
	Long: `reqsync moves requirement items between a Jama Connect project and an
Excel workbook: fetch exports the project tree to a sheet, update applies
the sheet's edits (create, update, delete) back to the project.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		// Use the application's standard logger for error reporting
		// We default to console format to match user expectations (CLI tool)
		cfg := &logger.Config{
			Level:  "debug",
			Format: "console",
		}

		l, logErr := logger.New(cfg)
		if logErr == nil {
			l.Error("command failed", zap.Error(err))
			_ = l.Sync()
		} else {
			// Absolute fallback if logger creation fails (rare)
			fmt.Println(err)
		}
		os.Exit(1)
	}
}

func init() {
	RootCmd.PersistentFlags().BoolVar(&debugLogging, "debug", false, "Enable debug logging and raw API dumps")
}

// setup loads configuration and builds the logger and Jama client
// shared by the remote-facing subcommands.
func setup() (*config.Config, *zap.Logger, *jama.Client, error) {
	cfg, err := config.Load(".")
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	if debugLogging {
		cfg.Log.Level = "debug"
		cfg.Jama.Debug = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, nil, err
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	l = logger.WithRunID(l)

	client, err := jama.NewClient(cfg.Jama, l)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to build Jama client: %w", err)
	}
	return cfg, l, client, nil
}

// progressReporter logs one line per progress event.
func progressReporter(l *zap.Logger) reconcile.Reporter {
	return reconcile.ReporterFunc(func(ev reconcile.Event) {
		fields := []zap.Field{
			zap.String("phase", string(ev.Phase)),
			zap.Int("done", ev.Done),
		}
		if ev.Total != reconcile.TotalUnknown {
			fields = append(fields, zap.Int("total", ev.Total))
		}
		l.Info("progress", fields...)
	})
}
