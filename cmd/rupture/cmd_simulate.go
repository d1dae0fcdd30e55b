package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/rupture-state/internal/export"
	"github.com/danielpatrickdp/rupture-state/internal/metrics"
	"github.com/danielpatrickdp/rupture-state/internal/scenario"
	"github.com/danielpatrickdp/rupture-state/internal/sim"
)

func newSimulateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate <scenario.yaml>",
		Short: "Run a scenario and print its summary",
		Long: `Run every agent of a scenario against its signal sequence.

The trace can be exported as CSV or JSON lines, saved to the run
database with --save, and observed as Prometheus metrics with --metrics.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			seed, _ := cmd.Flags().GetUint64("seed")
			format, _ := cmd.Flags().GetString("export")
			outPath, _ := cmd.Flags().GetString("out")
			save, _ := cmd.Flags().GetBool("save")
			showMetrics, _ := cmd.Flags().GetBool("metrics")

			sc, err := scenario.Load(args[0])
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("seed") {
				sc = scenario.WithSeed(sc, seed)
			}

			opts := []sim.Option{sim.WithLogger(a.logger)}
			var collector *metrics.Collector
			if showMetrics {
				collector = metrics.NewCollector()
				opts = append(opts, sim.WithObserver(collector))
			}

			a.logger.Info("simulate", "scenario", sc.Name, "agents", len(sc.Agents))
			b, res, err := runScenario(cmd.Context(), sc, opts...)
			if err != nil {
				return fmt.Errorf("simulate %s: %w", sc.Name, err)
			}

			out := runOutput{
				Scenario: sc.Name,
				Mode:     b.Mode,
				Summary:  sim.Summarize(res),
				Topology: topology(res),
			}

			if save {
				store, err := a.openStore()
				if err != nil {
					return err
				}
				defer store.Close()
				run, err := saveRun(store, sc, seed, res)
				if err != nil {
					return err
				}
				out.RunID = run.ID
				a.logger.Info("run saved", "run_id", run.ID, "ruptures", run.Ruptures)
			}

			if format != "" {
				if err := writeExport(cmd.OutOrStdout(), outPath, format, res); err != nil {
					return err
				}
				if outPath == "" {
					return nil
				}
			}

			w := cmd.OutOrStdout()
			if a.jsonOut {
				if err := printJSON(w, out); err != nil {
					return err
				}
			} else {
				printRunOutput(w, out)
			}
			if collector != nil {
				return collector.WriteText(w)
			}
			return nil
		},
	}

	cmd.Flags().Uint64("seed", 0, "Offset every agent seed and seed the generated signal")
	cmd.Flags().String("export", "", "Export the trace as csv, jsonl or json")
	cmd.Flags().String("out", "", "Write the export to a file instead of stdout")
	cmd.Flags().Bool("save", false, "Save the run to the database")
	cmd.Flags().Bool("metrics", false, "Print Prometheus metrics after the summary")
	return cmd
}

func writeExport(stdout io.Writer, path, format string, res sim.Result) error {
	if path == "" {
		return export.Write(stdout, format, res.Records)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := export.Write(f, format, res.Records); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func printRunOutput(w io.Writer, out runOutput) {
	s := out.Summary
	if out.RunID != "" {
		fmt.Fprintf(w, "Run:        %s\n", out.RunID)
	}
	fmt.Fprintf(w, "Scenario:   %s (%s signal)\n", out.Scenario, out.Mode)
	fmt.Fprintf(w, "Agents:     %d\n", s.Agents)
	fmt.Fprintf(w, "Steps:      %d\n", s.Steps)
	fmt.Fprintf(w, "Ruptures:   %d\n", s.Ruptures)
	if s.FirstRupture >= 0 {
		fmt.Fprintf(w, "First:      step=%d\n", s.FirstRupture)
	}
	fmt.Fprintf(w, "Mean V/E:   %.4f / %.4f\n", s.MeanV, s.MeanE)
	fmt.Fprintf(w, "Density:    %.3f (%s)\n", out.Topology.RuptureDensity, out.Topology.Volatility)
	for _, label := range sortedKeys(s.Collapses) {
		fmt.Fprintf(w, "  %-20s %d\n", label, s.Collapses[label])
	}
}
