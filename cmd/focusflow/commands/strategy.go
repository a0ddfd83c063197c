// ABOUTME: CLI commands for the strategic plan
// ABOUTME: Generates a SMART goal with weekly milestones and can adopt the suggested tasks
package commands

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/harper/focusflow/internal/models"
	"github.com/spf13/cobra"
)

var strategyAdopt bool

// NewStrategyCmd creates the strategy command
func NewStrategyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "strategy [goal]",
		Short: "Turn a goal into a strategic plan",
		Long: `Turn a goal into a strategic plan.

With a goal, generates a SMART goal, four weekly milestones and a few
resources, replacing the current plan. Without one, shows the plan.

Examples:
  focusflow strategy "Double online sales"
  focusflow strategy "Hire a first employee" --adopt
  focusflow strategy --format json`,
		RunE: runStrategy,
	}
	cmd.Flags().BoolVar(&strategyAdopt, "adopt", false, "Add the suggested tasks to today's list")
	return cmd
}

func printPlan(w io.Writer, p *models.StrategicPlan) {
	bold := color.New(color.Bold)
	cyan := color.New(color.FgCyan)

	bold.Fprintf(w, "Goal: %s\n", p.OriginalGoal)
	fmt.Fprintf(w, "SMART: %s\n", p.SmartGoal)
	if p.GeneratedAt > 0 {
		fmt.Fprintf(w, "Generated %s\n", formatTime(time.UnixMilli(p.GeneratedAt)))
	}
	fmt.Fprintln(w)
	for _, m := range p.Milestones {
		cyan.Fprintf(w, "Week %d: %s\n", m.Week, m.Focus)
		fmt.Fprintf(w, "  %s\n", m.Action)
	}
	if len(p.Resources) > 0 {
		fmt.Fprintln(w)
		bold.Fprintln(w, "Resources")
		for _, r := range p.Resources {
			fmt.Fprintf(w, "  • %s (%s) %s\n", r.Title, r.Type, r.Description)
		}
	}
}

func runStrategy(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		out := cmd.OutOrStdout()
		if len(args) == 0 {
			plan := a.session.Snapshot().Plan
			if structured() {
				return printStructured(out, plan)
			}
			if plan == nil {
				say(out, "No plan yet. Try: focusflow strategy \"your goal\"\n")
				return nil
			}
			printPlan(out, plan)
			return nil
		}

		say(cmd.ErrOrStderr(), "Building your plan...\n")
		strategy, save, err := a.session.GenerateStrategy(ctx, strings.Join(args, " "))
		if err != nil {
			return err
		}
		if err := save.Wait(ctx); err != nil {
			return fmt.Errorf("saving plan: %w", err)
		}

		if strategyAdopt && len(strategy.ImmediateTasks) > 0 {
			if err := a.session.AdoptTasks(strategy.ImmediateTasks).Wait(ctx); err != nil {
				return fmt.Errorf("saving tasks: %w", err)
			}
		}

		if structured() {
			return printStructured(out, strategy)
		}
		printPlan(out, &strategy.Plan)
		if len(strategy.ImmediateTasks) > 0 {
			fmt.Fprintln(out)
			if strategyAdopt {
				color.New(color.FgGreen).Fprintf(out, "✓ Added %d tasks to today's list\n", len(strategy.ImmediateTasks))
			} else {
				fmt.Fprintln(out, "Suggested tasks (add them with --adopt):")
				for _, t := range strategy.ImmediateTasks {
					fmt.Fprintf(out, "  - %s (%s, %d min)\n", t.Title, t.Priority, t.EstimatedTimeMin)
				}
			}
		}
		return nil
	})
}
