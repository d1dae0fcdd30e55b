package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/danielpatrickdp/rupture-state/internal/scenario"
	"github.com/danielpatrickdp/rupture-state/internal/sim"
)

// sweepRow is the outcome of one seed.
type sweepRow struct {
	Seed         uint64  `json:"seed"`
	RunID        string  `json:"run_id,omitempty"`
	Ruptures     int     `json:"ruptures"`
	FirstRupture int     `json:"first_rupture"`
	Density      float64 `json:"rupture_density"`
	Volatility   string  `json:"volatility_signature"`
	MeanV        float64 `json:"mean_v"`
	MeanE        float64 `json:"mean_e"`
}

type sweepOutput struct {
	Scenario     string     `json:"scenario"`
	Seeds        int        `json:"seeds"`
	MeanRuptures float64    `json:"mean_ruptures"`
	Volatile     int        `json:"volatile_runs"`
	Rows         []sweepRow `json:"runs"`
}

func newSweepCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep <scenario.yaml>",
		Short: "Run a scenario over many seeds concurrently",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			seeds, _ := cmd.Flags().GetInt("seeds")
			start, _ := cmd.Flags().GetUint64("start")
			workers, _ := cmd.Flags().GetInt("workers")
			save, _ := cmd.Flags().GetBool("save")

			if seeds < 1 {
				return fmt.Errorf("--seeds must be positive, got %d", seeds)
			}
			if workers < 1 {
				workers = a.cfg.Workers
			}

			sc, err := scenario.Load(args[0])
			if err != nil {
				return err
			}

			rows := make([]sweepRow, seeds)
			results := make([]sim.Result, seeds)
			scenarios := make([]scenario.Scenario, seeds)

			g, gCtx := errgroup.WithContext(cmd.Context())
			g.SetLimit(workers)
			for i := 0; i < seeds; i++ {
				seed := start + uint64(i)
				g.Go(func() error {
					if err := gCtx.Err(); err != nil {
						return err
					}
					seeded := scenario.WithSeed(sc, seed)
					_, res, err := runScenario(gCtx, seeded, sim.WithLogger(a.logger))
					if err != nil {
						return fmt.Errorf("seed %d: %w", seed, err)
					}
					s := sim.Summarize(res)
					topo := topology(res)
					rows[i] = sweepRow{
						Seed:         seed,
						Ruptures:     s.Ruptures,
						FirstRupture: s.FirstRupture,
						Density:      topo.RuptureDensity,
						Volatility:   topo.Volatility,
						MeanV:        s.MeanV,
						MeanE:        s.MeanE,
					}
					results[i] = res
					scenarios[i] = seeded
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return fmt.Errorf("sweep %s: %w", sc.Name, err)
			}

			if save {
				store, err := a.openStore()
				if err != nil {
					return err
				}
				defer store.Close()
				for i := range rows {
					run, err := saveRun(store, scenarios[i], rows[i].Seed, results[i])
					if err != nil {
						return err
					}
					rows[i].RunID = run.ID
				}
			}

			out := sweepOutput{Scenario: sc.Name, Seeds: seeds, Rows: rows}
			total := 0
			for _, r := range rows {
				total += r.Ruptures
				if r.Volatility == "volatile" {
					out.Volatile++
				}
			}
			out.MeanRuptures = float64(total) / float64(seeds)
			a.logger.Info("sweep complete", "scenario", sc.Name, "seeds", seeds, "mean_ruptures", out.MeanRuptures)

			if a.jsonOut {
				return printJSON(cmd.OutOrStdout(), out)
			}
			printSweepTable(cmd.OutOrStdout(), out)
			return nil
		},
	}

	cmd.Flags().Int("seeds", 10, "Number of seeds to run")
	cmd.Flags().Uint64("start", 0, "First seed")
	cmd.Flags().Int("workers", 0, "Concurrent runs (default $RUPTURE_WORKERS)")
	cmd.Flags().Bool("save", false, "Save every run to the database")
	return cmd
}

func printSweepTable(w io.Writer, out sweepOutput) {
	fmt.Fprintf(w, "%8s  %8s  %6s  %8s  %-10s  %9s  %9s\n",
		"Seed", "Ruptures", "First", "Density", "Signature", "Mean V", "Mean E")
	fmt.Fprintf(w, "%8s+-%8s+-%6s+-%8s+-%-10s+-%9s+-%9s\n",
		"--------", "--------", "------", "--------", "----------", "---------", "---------")
	for _, r := range out.Rows {
		first := "-"
		if r.FirstRupture >= 0 {
			first = fmt.Sprint(r.FirstRupture)
		}
		fmt.Fprintf(w, "%8d  %8d  %6s  %8.3f  %-10s  %9.4f  %9.4f\n",
			r.Seed, r.Ruptures, first, r.Density, r.Volatility, r.MeanV, r.MeanE)
	}
	fmt.Fprintf(w, "\n%d seeds, mean ruptures %.2f, %d volatile\n", out.Seeds, out.MeanRuptures, out.Volatile)
}
