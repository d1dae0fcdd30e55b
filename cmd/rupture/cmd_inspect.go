package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/rupture-state/internal/drift"
	"github.com/danielpatrickdp/rupture-state/internal/logging"
	"github.com/danielpatrickdp/rupture-state/internal/state"
	"github.com/danielpatrickdp/rupture-state/internal/tracestore"
)

// #region list-mode

type listRow struct {
	RunID     string `json:"run_id"`
	Name      string `json:"name"`
	Seed      uint64 `json:"seed"`
	Agents    int    `json:"agents"`
	Steps     int    `json:"steps"`
	Ruptures  int    `json:"ruptures"`
	CreatedAt string `json:"created_at"`
}

func newInspectCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect [run-id]",
		Short: "List stored runs or show one run",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			last, _ := cmd.Flags().GetInt("last")
			agent, _ := cmd.Flags().GetString("agent")

			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			if len(args) == 1 {
				return runDetailMode(cmd.OutOrStdout(), store, args[0], agent, a.jsonOut)
			}
			return runListMode(cmd.OutOrStdout(), store, last, a.jsonOut)
		},
	}
	cmd.Flags().Int("last", 20, "Show the N most recent runs")
	cmd.Flags().String("agent", "", "Show only one agent's records")
	return cmd
}

func runListMode(w io.Writer, store *tracestore.Store, last int, jsonOut bool) error {
	runs, err := store.ListRuns(last)
	if err != nil {
		return err
	}
	rows := make([]listRow, len(runs))
	for i, r := range runs {
		rows[i] = listRow{
			RunID:     r.ID,
			Name:      r.Name,
			Seed:      r.Seed,
			Agents:    r.Agents,
			Steps:     r.Steps,
			Ruptures:  r.Ruptures,
			CreatedAt: r.CreatedAt.Format("2006-01-02T15:04:05Z"),
		}
	}
	if jsonOut {
		return printJSON(w, rows)
	}
	if len(rows) == 0 {
		fmt.Fprintln(w, "no runs found")
		return nil
	}
	fmt.Fprintf(w, "%-36s  %-16s  %6s  %6s  %6s  %8s  %s\n",
		"Run", "Scenario", "Seed", "Agents", "Steps", "Ruptures", "Time")
	fmt.Fprintf(w, "%-36s+-%-16s+-%6s+-%6s+-%6s+-%8s+-%s\n",
		"------------------------------------", "----------------", "------", "------", "------", "--------", "--------------------")
	for _, r := range rows {
		fmt.Fprintf(w, "%-36s  %-16s  %6d  %6d  %6d  %8d  %s\n",
			r.RunID, r.Name, r.Seed, r.Agents, r.Steps, r.Ruptures, r.CreatedAt)
	}
	return nil
}

// #endregion list-mode

// #region detail-mode

type detailOutput struct {
	Run      listRow                `json:"run"`
	Summary  json.RawMessage        `json:"summary,omitempty"`
	Topology drift.Topology         `json:"topology"`
	Ruptures []logging.RuptureEntry `json:"ruptures"`
	Records  []state.StepRecord     `json:"records"`
}

func runDetailMode(w io.Writer, store *tracestore.Store, runID, agent string, jsonOut bool) error {
	run, err := store.GetRun(runID)
	if err != nil {
		return err
	}
	records, err := store.LoadRecords(runID)
	if err != nil {
		return err
	}
	ruptures, err := store.Ruptures(runID)
	if err != nil {
		return err
	}
	if agent != "" {
		records = state.NewTrace(records).ForAgent(agent)
	}

	cfg := drift.DefaultConfig()
	field := drift.BuildField(records, true)
	out := detailOutput{
		Run: listRow{
			RunID: run.ID, Name: run.Name, Seed: run.Seed, Agents: run.Agents,
			Steps: run.Steps, Ruptures: run.Ruptures,
			CreatedAt: run.CreatedAt.Format("2006-01-02T15:04:05Z"),
		},
		Topology: drift.Describe(field, drift.Zones(field, cfg.Margin), cfg),
		Ruptures: ruptures,
		Records:  records,
	}
	if run.SummaryJSON != "" {
		out.Summary = json.RawMessage(run.SummaryJSON)
	}
	if jsonOut {
		return printJSON(w, out)
	}

	fmt.Fprintf(w, "Run:        %s\n", run.ID)
	fmt.Fprintf(w, "Scenario:   %s (seed %d)\n", run.Name, run.Seed)
	fmt.Fprintf(w, "Created:    %s\n", out.Run.CreatedAt)
	fmt.Fprintf(w, "Ruptures:   %d of %d steps (%s)\n", run.Ruptures, run.Steps, out.Topology.Volatility)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%5s  %-10s  %9s  %9s  %9s  %9s  %-12s\n", "t", "Agent", "R", "Delta", "Theta", "V", "Outcome")
	fmt.Fprintf(w, "%5s+-%-10s+-%9s+-%9s+-%9s+-%9s+-%-12s\n",
		"-----", "----------", "---------", "---------", "---------", "---------", "------------")
	for _, rec := range records {
		outcome := "realign"
		if rec.Ruptured {
			outcome = rec.CollapseLabel
		}
		fmt.Fprintf(w, "%5d  %-10s  %9.4f  %9.4f  %9.4f  %9.4f  %-12s\n",
			rec.T, rec.Agent, rec.R, rec.Delta, rec.Theta, rec.V, outcome)
	}
	return nil
}

// #endregion detail-mode
