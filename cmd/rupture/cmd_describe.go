package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/rupture-state/internal/registry"
	"github.com/danielpatrickdp/rupture-state/internal/scenario"
)

func newDescribeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "describe [role]",
		Short: "Describe operator variants or a configured scenario",
		Long: `Without --scenario, list the built-in variants of one role (realign,
threshold, rupture, collapse) or of every role. With --scenario, describe
the agents and signal a scenario would run.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("scenario")
			w := cmd.OutOrStdout()
			if path != "" {
				return describeScenario(cmd, a, path)
			}

			roles := registry.Roles()
			if len(args) == 1 {
				roles = args[:1]
			}
			catalogue := make(map[string][]registry.Entry, len(roles))
			for _, role := range roles {
				entries, err := registry.Describe(role)
				if err != nil {
					return err
				}
				catalogue[role] = entries
			}
			if a.jsonOut {
				return printJSON(w, catalogue)
			}
			for _, role := range roles {
				printEntries(w, role, catalogue[role])
			}
			return nil
		},
	}
	cmd.Flags().String("scenario", "", "Describe the scenario in this YAML file")
	return cmd
}

func describeScenario(cmd *cobra.Command, a *app, path string) error {
	sc, err := scenario.Load(path)
	if err != nil {
		return err
	}
	b, err := scenario.Build(cmd.Context(), sc)
	if err != nil {
		return err
	}
	desc := registry.DescribeSimulation(b.States, b.Mode, b.Signals, b.Steps)

	w := cmd.OutOrStdout()
	if a.jsonOut {
		return printJSON(w, desc)
	}
	fmt.Fprintf(w, "Scenario: %s\n", sc.Name)
	fmt.Fprintf(w, "Signal:   %s, %d steps, min %.4f max %.4f mean %.4f\n",
		desc.Signal.Mode, desc.Signal.Steps, desc.Signal.Min, desc.Signal.Max, desc.Signal.Mean)
	for _, ag := range desc.Agents {
		fmt.Fprintf(w, "\nAgent %s (V0=%.4f E0=%.4f seed=%d)\n", ag.Name, ag.V0, ag.E0, ag.Seed)
		for _, role := range registry.Roles() {
			fmt.Fprintf(w, "  %-10s %s\n", role, ag.Operators[role])
		}
	}
	return nil
}

func printEntries(w io.Writer, role string, entries []registry.Entry) {
	fmt.Fprintf(w, "%s\n", strings.ToUpper(role))
	for _, e := range entries {
		flags := ""
		if e.Stochastic {
			flags += " [stochastic]"
		}
		if e.Coupled {
			flags += " [coupled]"
		}
		fmt.Fprintf(w, "  %-14s %s%s\n", e.Name, e.Formula, flags)
		fmt.Fprintf(w, "  %-14s %s\n", "", e.Meaning)
		if len(e.Keys) > 0 {
			fmt.Fprintf(w, "  %-14s keys: %s\n", "", strings.Join(e.Keys, ", "))
		}
	}
	fmt.Fprintln(w)
}
