// Package cli implements the anyref-bench command.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"runtime"
	"runtime/pprof"

	"github.com/spf13/cobra"

	"github.com/rawbytedev/anyref/internal/bench"
)

const (
	FlagIterations = "iterations"
	FlagElements   = "elements"
	FlagWorkers    = "workers"
	FlagMemProfile = "memprofile"
	FlagPprofAddr  = "pprof-addr"
	FlagFormat     = "format"
)

// New returns the root command.
func New() *cobra.Command {
	cfg := bench.DefaultConfig()
	cmd := &cobra.Command{
		Use:   "anyref-bench",
		Short: "Time erased reference handles against typed access",
		Long: `anyref-bench erases values and views, restores them, indexes and
sub-ranges them and shares them across goroutines, checking every result
against a checksum computed without erasure.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, cfg)
		},
		DisableAutoGenTag: true,
	}
	flags := cmd.Flags()
	flags.IntVar(&cfg.Iterations, FlagIterations, cfg.Iterations, "operations per workload")
	flags.IntVar(&cfg.Elements, FlagElements, cfg.Elements, "length of the erased view")
	flags.IntVar(&cfg.Workers, FlagWorkers, cfg.Workers, "concurrent readers in the shared workload")
	flags.String(FlagMemProfile, "", "write a heap profile to this file after the run")
	flags.String(FlagPprofAddr, "", "serve net/http/pprof on this address while running")
	flags.StringP(FlagFormat, "o", OutputFormatTable, "report format, table or json")
	RegisterLoggingFlags(flags)
	return cmd
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := New().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, cfg bench.Config) error {
	logger, err := GetBaseLogger(cmd)
	if err != nil {
		return err
	}
	format, err := oneOf(cmd.Flags(), FlagFormat, []string{OutputFormatTable, OutputFormatJSON})
	if err != nil {
		return err
	}
	if addr, _ := cmd.Flags().GetString(FlagPprofAddr); addr != "" {
		go servePprof(addr, logger)
	}

	report, err := bench.Run(cmd.Context(), cfg, logger)
	if err != nil {
		return fmt.Errorf("benchmark failed: %w", err)
	}
	if err := render(cmd.OutOrStdout(), format, report); err != nil {
		return err
	}

	if path, _ := cmd.Flags().GetString(FlagMemProfile); path != "" {
		if err := writeHeapProfile(path); err != nil {
			return err
		}
		logger.InfoContext(cmd.Context(), "heap profile written", "path", path)
	}
	return nil
}

func servePprof(addr string, logger *slog.Logger) {
	logger.Info("serving pprof", "addr", addr)
	if err := http.ListenAndServe(addr, nil); err != nil {
		logger.Error("pprof server stopped", "error", err.Error())
	}
}

func writeHeapProfile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("could not create heap profile: %w", err)
	}
	defer f.Close()
	runtime.GC()
	if err := pprof.WriteHeapProfile(f); err != nil {
		return fmt.Errorf("could not write heap profile: %w", err)
	}
	return nil
}
