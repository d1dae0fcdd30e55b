package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/rupture-state/internal/replay"
	"github.com/danielpatrickdp/rupture-state/internal/sim"
)

func newReplayCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "replay <fixture.json>",
		Short: "Re-run a fixture and compare its trace",
		Long: `Re-run the scenario stored in a replay fixture and compare every
step record with the expected trace. Exits non-zero on any mismatch.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := replay.LoadFixture(args[0])
			if err != nil {
				return err
			}
			res, err := replay.Replay(cmd.Context(), f, sim.WithLogger(a.logger))
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if a.jsonOut {
				if err := printJSON(w, map[string]any{
					"fixture":    f.Description,
					"records":    len(res.Actual),
					"passed":     res.Passed(),
					"mismatches": res.Mismatches,
				}); err != nil {
					return err
				}
			} else {
				fmt.Fprintf(w, "Fixture: %s\n", f.Description)
				fmt.Fprintf(w, "Records: %d expected, %d replayed\n", len(f.Expected), len(res.Actual))
				for _, m := range res.Mismatches {
					fmt.Fprintf(w, "  MISMATCH %s\n", m)
				}
			}
			if !res.Passed() {
				return fmt.Errorf("replay: %d mismatches", len(res.Mismatches))
			}
			if !a.jsonOut {
				fmt.Fprintln(w, "All records match.")
			}
			return nil
		},
	}
}
