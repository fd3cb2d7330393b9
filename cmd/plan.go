package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kilianp07/sprintplan/app"
	"github.com/kilianp07/sprintplan/core/planner"
	"github.com/kilianp07/sprintplan/pkg/export"
	"github.com/kilianp07/sprintplan/pkg/scenario"
)

var (
	scenarioPath string
	outputPath   string
	checkExpect  bool
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Plan a scenario and print the ledger",
	RunE:  runPlan,
}

var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Find the smallest sprint count meeting the target score",
	RunE:  runOptimize,
}

func init() {
	for _, c := range []*cobra.Command{planCmd, optimizeCmd} {
		c.Flags().StringVarP(&scenarioPath, "scenario", "s", "", "scenario file (YAML or TOML)")
		c.Flags().StringVarP(&outputPath, "output", "o", "", "write the plan to a .json, .csv, .xlsx or .html file")
		c.Flags().BoolVar(&checkExpect, "check", false, "fail when the scenario expectations are not met")
		_ = c.MarkFlagRequired("scenario")
		rootCmd.AddCommand(c)
	}
}

func loadInput(svc *app.Service) (*scenario.Scenario, planner.Input, error) {
	sc, err := scenario.Load(scenarioPath)
	if err != nil {
		return nil, planner.Input{}, fmt.Errorf("load scenario: %w", err)
	}
	in, err := sc.Input()
	if err != nil {
		return nil, planner.Input{}, err
	}
	in.Classifier = svc.Classifier
	return sc, in, nil
}

func runPlan(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return withService(ctx, cmd, func(svc *app.Service) error {
		sc, in, err := loadInput(svc)
		if err != nil {
			return err
		}
		plan, err := svc.Planner.Plan(ctx, in)
		if err != nil {
			return err
		}
		printPlan(cmd.OutOrStdout(), plan)
		return finish(sc, plan, nil)
	})
}

func runOptimize(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return withService(ctx, cmd, func(svc *app.Service) error {
		sc, in, err := loadInput(svc)
		if err != nil {
			return err
		}
		res, err := svc.Planner.Optimize(ctx, in)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "SPRINTS\tSCORE\tOVERFLOW\tMET")
		for _, s := range res.Steps {
			fmt.Fprintf(tw, "%d\t%.3f\t%d\t%t\n", s.Sprints, s.Score, s.Overflow, s.Met)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
		verdict := "meets the target"
		if !res.Met {
			verdict = "best score, target not met"
		}
		fmt.Fprintf(out, "\nrecommended: %d sprints (%s)\n\n", res.Recommended, verdict)
		printPlan(out, res.Plan)
		return finish(sc, res.Plan, res)
	})
}

func finish(sc *scenario.Scenario, plan *planner.Plan, opt *planner.OptimizeResult) error {
	if outputPath != "" {
		if err := writeOutput(outputPath, plan); err != nil {
			return err
		}
	}
	if checkExpect {
		if failed := sc.Check(plan, opt); len(failed) > 0 {
			return fmt.Errorf("scenario %s: %s", sc.Name, scenario.Summary(failed))
		}
	}
	return nil
}

func writeOutput(path string, plan *planner.Plan) error {
	format, err := export.FormatFromPath(path)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := export.Write(f, format, export.FromPlan(plan)); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func printPlan(w io.Writer, plan *planner.Plan) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SPRINT\tTASK\tOWNER\tROLE\tHOURS\tCRITICAL")
	for _, e := range plan.SortedEntries() {
		crit := ""
		if e.Critical {
			crit = "yes"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%.1f\t%s\n", e.Sprint, e.Task, e.Owner, e.Role, e.Hours, crit)
	}
	_ = tw.Flush()

	t := plan.Totals
	fmt.Fprintf(w, "\nplan %s: score %.3f, overflow %d, planned %.1fh of %.1fh (delta %+.1fh), unassigned %.1fh\n",
		plan.ID, plan.Score.Score, plan.Score.Overflow, t.PlannedHours, t.BaselineHours, t.Delta, t.UnassignedHours)
	for _, warn := range plan.Warnings {
		fmt.Fprintf(w, "warning: %s\n", warn.Message)
	}
}
