package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/rupture-state/internal/replay"
	"github.com/danielpatrickdp/rupture-state/internal/scenario"
	"github.com/danielpatrickdp/rupture-state/internal/tracestore"
)

func newFixtureExportCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fixture-export [run-id]",
		Short: "Export a stored run as a replay fixture",
		Long: `Write a stored run as a replay fixture: the scenario the run was
built from plus its recorded trace. Without a run ID the most recent run
is exported.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outPath, _ := cmd.Flags().GetString("out")
			desc, _ := cmd.Flags().GetString("description")
			if outPath == "" {
				return fmt.Errorf("--out is required")
			}

			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			run, err := pickRun(store, args)
			if err != nil {
				return err
			}
			if run.ConfigJSON == "" {
				return fmt.Errorf("run %s has no stored scenario", run.ID)
			}
			var sc scenario.Scenario
			if err := json.Unmarshal([]byte(run.ConfigJSON), &sc); err != nil {
				return fmt.Errorf("decode scenario of run %s: %w", run.ID, err)
			}
			records, err := store.LoadRecords(run.ID)
			if err != nil {
				return err
			}

			if desc == "" {
				desc = fmt.Sprintf("run %s (%s, seed %d)", run.ID, run.Name, run.Seed)
			}
			if err := replay.SaveFixture(outPath, replay.FromRun(desc, sc, records)); err != nil {
				return err
			}
			a.logger.Info("fixture exported", "run_id", run.ID, "records", len(records), "out", outPath)
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote fixture to %s (%d records)\n", outPath, len(records))
			return nil
		},
	}
	cmd.Flags().String("out", "", "Output fixture JSON path")
	cmd.Flags().String("description", "", "Fixture description")
	return cmd
}

func pickRun(store *tracestore.Store, args []string) (tracestore.Run, error) {
	if len(args) == 1 {
		return store.GetRun(args[0])
	}
	runs, err := store.ListRuns(1)
	if err != nil {
		return tracestore.Run{}, err
	}
	if len(runs) == 0 {
		return tracestore.Run{}, fmt.Errorf("no runs stored")
	}
	return runs[0], nil
}
