package main

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/denovo-bench/go-ingest/internal/diagnostics"
	"github.com/danielpatrickdp/denovo-bench/go-ingest/internal/indicator"
	"github.com/danielpatrickdp/denovo-bench/go-ingest/internal/ingesterr"
	"github.com/danielpatrickdp/denovo-bench/go-ingest/internal/rpc"
	"github.com/danielpatrickdp/denovo-bench/go-ingest/internal/service"
)

// #region serve
func (a *app) serveCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the ingest API over gRPC",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr == "" {
				addr = a.cfg.ListenAddr
			}
			svc, err := service.New(a.cfg, service.Options{Logger: a.logger})
			if err != nil {
				return err
			}
			var store *diagnostics.Store
			if a.cfg.DiagnosticsDB != "" {
				store, err = diagnostics.NewStore(a.cfg.DiagnosticsDB, a.logger)
				if err != nil {
					return err
				}
				defer store.Close()
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return rpc.Serve(ctx, addr, rpc.NewServer(svc, store, a.logger))
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	return cmd
}
// #endregion serve

// #region spectra
func (a *app) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <category>",
		Short: "List the spectral files of a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, done, err := a.session("list " + args[0])
			if err != nil {
				return err
			}
			defer done()
			files, err := svc.ListSpectra(args[0])
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), files)
		},
	}
}

func (a *app) previewCmd() *cobra.Command {
	var limit int
	var raw bool
	cmd := &cobra.Command{
		Use:   "preview <category> <id>",
		Short: "Parse the first spectra of a file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, done, err := a.session("preview " + args[0] + "/" + args[1])
			if err != nil {
				return err
			}
			defer done()
			p, err := svc.PreviewSpectra(args[0], args[1], limit)
			if err != nil {
				return err
			}
			if raw {
				_, err := io.WriteString(cmd.OutOrStdout(), p.Raw)
				return err
			}
			return writeJSON(cmd.OutOrStdout(), p.Spectra)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "number of spectra (default from config)")
	cmd.Flags().BoolVar(&raw, "raw", false, "print the file text instead of parsed spectra")
	return cmd
}
// #endregion spectra

// #region tables
func (a *app) coverageCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "coverage [antibody]",
		Short: "Parse antibody coverage tables",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var antibody string
			if len(args) == 1 {
				antibody = args[0]
			}
			svc, done, err := a.session("coverage " + antibody)
			if err != nil {
				return err
			}
			defer done()
			sets, err := svc.Coverage(antibody)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), sets)
		},
	}
}

type indicatorsOutput struct {
	Indicators []indicator.Dataset `json:"indicators"`
	Failures   []rpc.FailureView   `json:"failures,omitempty"`
}

func (a *app) indicatorsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "indicators [key]",
		Short: "Parse one indicator, or every registered indicator",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			if len(args) == 1 {
				svc, done, err := a.session("indicators " + args[0])
				if err != nil {
					return err
				}
				defer done()
				ds, err := svc.Indicator(ctx, args[0])
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), ds)
			}

			svc, done, err := a.session("indicators")
			if err != nil {
				return err
			}
			defer done()
			sets, failures := svc.Indicators(ctx)
			out := indicatorsOutput{Indicators: sets}
			for _, f := range failures {
				out.Failures = append(out.Failures, rpc.FailureView{Key: f.Key, Error: f.Err.Error(), NotFound: ingesterr.IsNotFound(f.Err)})
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}
}

func (a *app) efficiencyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "efficiency",
		Short: "Parse algorithm throughput with architecture families",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, done, err := a.session("efficiency")
			if err != nil {
				return err
			}
			defer done()
			records, err := svc.Efficiency()
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), records)
		},
	}
}
// #endregion tables

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
