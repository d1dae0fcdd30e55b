package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/rupture-state/internal/config"
	"github.com/danielpatrickdp/rupture-state/internal/logging"
	"github.com/danielpatrickdp/rupture-state/internal/telemetry"
	"github.com/danielpatrickdp/rupture-state/internal/tracestore"
)

var version = "0.1.0-dev"

// #region main

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// #endregion main

// #region root

// app carries the process-wide settings resolved before a subcommand runs.
type app struct {
	cfg      config.Config
	logger   *slog.Logger
	jsonOut  bool
	shutdown func(context.Context) error
}

func newRootCmd() *cobra.Command {
	a := &app{logger: logging.Discard()}

	rootCmd := &cobra.Command{
		Use:   "rupture",
		Short: "Rupture/collapse epistemic state simulator",
		Long: `rupture runs epistemic states against signal sequences.

A state realigns its belief toward each signal until the distortion
exceeds its threshold, then ruptures and collapses. Scenarios are YAML
files naming the operators and parameters of each agent.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.shutdown == nil {
				return nil
			}
			return a.shutdown(context.Background())
		},
	}

	// Global flags
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON")
	rootCmd.PersistentFlags().String("db", "", "Path to the run database (default $RUPTURE_DB_PATH)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error (default $RUPTURE_LOG_LEVEL)")
	rootCmd.PersistentFlags().String("trace", "", "Trace exporter: stdout or none (default $RUPTURE_TRACE_EXPORTER)")

	rootCmd.AddCommand(
		newVersionCmd(a),
		newSimulateCmd(a),
		newSweepCmd(a),
		newReplayCmd(a),
		newInspectCmd(a),
		newDescribeCmd(a),
		newFixtureExportCmd(a),
	)
	return rootCmd
}

// setup merges environment configuration with the global flags and starts
// logging and tracing.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if v, _ := cmd.Flags().GetString("db"); v != "" {
		cfg.DBPath = v
	}
	if v, _ := cmd.Flags().GetString("log-level"); v != "" {
		cfg.LogLevel = v
	}
	if v, _ := cmd.Flags().GetString("trace"); v != "" {
		cfg.TraceExporter = v
	}
	a.cfg = cfg
	a.jsonOut, _ = cmd.Flags().GetBool("json")

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	format, err := logging.ParseFormat(cfg.LogFormat)
	if err != nil {
		return err
	}
	a.logger = logging.New(cmd.ErrOrStderr(), level, format)

	a.shutdown, err = telemetry.Init(cmd.Context(), telemetry.Config{
		ServiceName: "rupture",
		Exporter:    cfg.TraceExporter,
		Writer:      cmd.ErrOrStderr(),
	})
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	return nil
}

// openStore opens the run database named by --db or RUPTURE_DB_PATH.
func (a *app) openStore() (*tracestore.Store, error) {
	if a.cfg.DBPath == "" {
		return nil, fmt.Errorf("no database: pass --db or set RUPTURE_DB_PATH")
	}
	store, err := tracestore.NewStore(a.cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	return store, nil
}

// #endregion root

// #region version

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.jsonOut {
				return printJSON(cmd.OutOrStdout(), map[string]string{"version": version})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "rupture version %s\n", version)
			return nil
		},
	}
}

// #endregion version

// #region output

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// #endregion output
