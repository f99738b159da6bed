package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/danielpatrickdp/denovo-bench/go-ingest/internal/config"
	"github.com/danielpatrickdp/denovo-bench/go-ingest/internal/diagnostics"
	"github.com/danielpatrickdp/denovo-bench/go-ingest/internal/service"
)

// #region main
func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
// #endregion main

// #region app
// app carries the state shared by every subcommand.
type app struct {
	configPath string
	verbose    bool

	cfg    config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "ingest",
		Short: "Read de novo sequencing benchmark data",
		Long: `ingest parses the benchmark data tree: MGF spectra, antibody coverage
tables, indicator tables and algorithm throughput. Results are printed as
JSON, or served over gRPC with "ingest serve".`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return err
			}
			if a.verbose {
				cfg.Verbose = true
			}
			a.cfg = cfg

			zc := zap.NewProductionConfig()
			if cfg.Verbose {
				zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}
			logger, err := zc.Build()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			a.logger = logger
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "ingest.yaml", "path to YAML config")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		a.serveCmd(),
		a.listCmd(),
		a.previewCmd(),
		a.coverageCmd(),
		a.indicatorsCmd(),
		a.efficiencyCmd(),
	)
	return root
}
// #endregion app

// #region session
// session opens the service for one command. When a diagnostics database is
// configured the command's skipped rows are recorded as a run.
func (a *app) session(command string) (*service.Service, func(), error) {
	svc, err := service.New(a.cfg, service.Options{Logger: a.logger})
	if err != nil {
		return nil, nil, err
	}
	if a.cfg.DiagnosticsDB == "" {
		return svc, func() {}, nil
	}
	store, err := diagnostics.NewStore(a.cfg.DiagnosticsDB, a.logger)
	if err != nil {
		return nil, nil, err
	}
	run, err := store.BeginRun(command)
	if err != nil {
		store.Close()
		return nil, nil, err
	}
	a.logger.Debug("diagnostics run started", zap.String("run_id", run.ID), zap.String("command", command))
	return svc.WithRecorder(run), func() { store.Close() }, nil
}
// #endregion session
