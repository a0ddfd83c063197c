// ABOUTME: CLI commands for today's task list
// ABOUTME: List, generate, add, toggle, delete, run with the model, and remember results
package commands

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/harper/focusflow/internal/export"
	"github.com/harper/focusflow/internal/focus"
	"github.com/harper/focusflow/internal/models"
	"github.com/spf13/cobra"
)

var (
	taskMinutes  int
	taskPriority string
	taskPending  bool
	taskHTML     bool
	taskEditText string
)

// NewTasksCmd creates the tasks command group
func NewTasksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "Show and manage today's tasks",
		Long: `Show and manage today's tasks.

Tasks are referenced by list position (1, 2, ...) or by ID prefix.

Examples:
  focusflow tasks
  focusflow tasks generate
  focusflow tasks add "Call the supplier" --minutes 20 --priority high
  focusflow tasks done 2
  focusflow tasks run 1
  focusflow tasks remember 1`,
		RunE: runTasksList,
	}
	cmd.Flags().BoolVar(&taskPending, "pending", false, "Only show pending tasks")

	cmd.AddCommand(&cobra.Command{
		Use:   "generate",
		Short: "Replace the list with generated tasks for today",
		Args:  cobra.NoArgs,
		RunE:  runTasksGenerate,
	})

	add := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a task by hand",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runTasksAdd,
	}
	add.Flags().IntVarP(&taskMinutes, "minutes", "m", models.DefaultManualMinutes, "Estimated minutes")
	add.Flags().StringVarP(&taskPriority, "priority", "p", string(models.PriorityMedium), "Priority: high, medium, low")
	cmd.AddCommand(add)

	cmd.AddCommand(&cobra.Command{
		Use:     "done <task>",
		Aliases: []string{"toggle"},
		Short:   "Toggle a task between pending and completed",
		Args:    cobra.ExactArgs(1),
		RunE:    runTasksToggle,
	})

	cmd.AddCommand(&cobra.Command{
		Use:     "rm <task>",
		Aliases: []string{"delete"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE:    runTasksDelete,
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "run <task>",
		Short: "Have the model do the task and save its output",
		Args:  cobra.ExactArgs(1),
		RunE:  runTasksRun,
	})

	show := &cobra.Command{
		Use:   "show <task>",
		Short: "Show a task and its AI result",
		Args:  cobra.ExactArgs(1),
		RunE:  runTasksShow,
	}
	show.Flags().BoolVar(&taskHTML, "html", false, "Render the result as HTML")
	cmd.AddCommand(show)

	edit := &cobra.Command{
		Use:   "edit <task>",
		Short: "Replace a task's AI result",
		Args:  cobra.ExactArgs(1),
		RunE:  runTasksEdit,
	}
	edit.Flags().StringVar(&taskEditText, "text", "", "New result text")
	_ = edit.MarkFlagRequired("text")
	cmd.AddCommand(edit)

	cmd.AddCommand(&cobra.Command{
		Use:   "remember <task>",
		Short: "Save a task's AI result to the knowledge base",
		Args:  cobra.ExactArgs(1),
		RunE:  runTasksRemember,
	})

	return cmd
}

func printTasks(cmd *cobra.Command, tasks models.Tasks) error {
	if structured() {
		return printStructured(cmd.OutOrStdout(), tasks)
	}
	if len(tasks) == 0 {
		say(cmd.OutOrStdout(), "No tasks yet. Try: focusflow tasks generate\n")
		return nil
	}

	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)
	yellow := color.New(color.FgYellow)

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "#\tID\t\tTASK\tPRIORITY\tMIN\tAI\n")
	for i, t := range tasks {
		mark := "[ ]"
		if t.Completed() {
			mark = green.Sprint("[x]")
		}
		priority := string(t.Priority)
		switch t.Priority {
		case models.PriorityHigh:
			priority = red.Sprint(priority)
		case models.PriorityMedium:
			priority = yellow.Sprint(priority)
		}
		ai := ""
		if t.AIExecutionResult != "" {
			ai = "✓"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%d\t%s\n", i+1, shortID(t.ID), mark, truncate(t.Title, 50), priority, t.EstimatedTimeMin, ai)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	say(cmd.OutOrStdout(), "\n%d/%d done (%d%%)\n", tasks.CompletedCount(), len(tasks), tasks.Progress())
	return nil
}

func runTasksList(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		tasks := a.session.Snapshot().Tasks
		if taskPending {
			pending := models.Tasks{}
			for _, t := range tasks {
				if !t.Completed() {
					pending = append(pending, t)
				}
			}
			tasks = pending
		}
		return printTasks(cmd, tasks)
	})
}

func runTasksGenerate(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		say(cmd.ErrOrStderr(), "Generating today's tasks...\n")
		tasks, save, err := a.session.GenerateTasks(ctx)
		if err != nil {
			return err
		}
		if err := save.Wait(ctx); err != nil {
			return fmt.Errorf("saving tasks: %w", err)
		}
		return printTasks(cmd, tasks)
	})
}

func runTasksAdd(cmd *cobra.Command, args []string) error {
	priority, err := models.ParsePriority(taskPriority)
	if err != nil {
		return err
	}
	if err := validatePositiveInt(taskMinutes, "--minutes"); err != nil {
		return err
	}
	return withApp(cmd, func(ctx context.Context, a *app) error {
		task, save, err := a.session.AddTask(focus.TaskInput{
			Title:    strings.Join(args, " "),
			Minutes:  taskMinutes,
			Priority: priority,
		})
		if err != nil {
			return err
		}
		if err := save.Wait(ctx); err != nil {
			return fmt.Errorf("saving task: %w", err)
		}
		if structured() {
			return printStructured(cmd.OutOrStdout(), task)
		}
		say(cmd.OutOrStdout(), "Added %s %s\n", shortID(task.ID), task.Title)
		return nil
	})
}

func runTasksToggle(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		ref, err := resolveTask(a.session.Snapshot().Tasks, args[0])
		if err != nil {
			return err
		}
		task, save, err := a.session.ToggleTask(ref.ID)
		if err != nil {
			return err
		}
		if err := save.Wait(ctx); err != nil {
			return fmt.Errorf("saving task: %w", err)
		}
		if task.Completed() {
			say(cmd.OutOrStdout(), "%s %s\n", color.GreenString("✓ Done:"), task.Title)
		} else {
			say(cmd.OutOrStdout(), "Reopened: %s\n", task.Title)
		}
		return nil
	})
}

func runTasksDelete(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		ref, err := resolveTask(a.session.Snapshot().Tasks, args[0])
		if err != nil {
			return err
		}
		save, err := a.session.DeleteTask(ref.ID)
		if err != nil {
			return err
		}
		if err := save.Wait(ctx); err != nil {
			return fmt.Errorf("saving tasks: %w", err)
		}
		say(cmd.OutOrStdout(), "Deleted: %s\n", ref.Title)
		return nil
	})
}

func runTasksRun(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		ref, err := resolveTask(a.session.Snapshot().Tasks, args[0])
		if err != nil {
			return err
		}
		say(cmd.ErrOrStderr(), "Working on %q...\n", ref.Title)
		task, save, err := a.session.ExecuteTask(ctx, ref.ID)
		if err != nil {
			return err
		}
		if err := save.Wait(ctx); err != nil {
			return fmt.Errorf("saving result: %w", err)
		}
		if structured() {
			return printStructured(cmd.OutOrStdout(), task)
		}
		fmt.Fprintln(cmd.OutOrStdout(), task.AIExecutionResult)
		return nil
	})
}

func runTasksShow(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		task, err := resolveTask(a.session.Snapshot().Tasks, args[0])
		if err != nil {
			return err
		}
		if structured() {
			return printStructured(cmd.OutOrStdout(), task)
		}
		if taskHTML {
			html, err := export.RenderHTML(task.AIExecutionResult)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), html)
			return nil
		}

		out := cmd.OutOrStdout()
		color.New(color.FgCyan, color.Bold).Fprintf(out, "%s\n", task.Title)
		fmt.Fprintf(out, "ID:       %s\n", task.ID)
		fmt.Fprintf(out, "Status:   %s\n", task.Status)
		fmt.Fprintf(out, "Priority: %s\n", task.Priority)
		fmt.Fprintf(out, "Estimate: %d min\n", task.EstimatedTimeMin)
		if task.Description != "" {
			fmt.Fprintf(out, "\n%s\n", task.Description)
		}
		if task.AIExecutionResult != "" {
			fmt.Fprintf(out, "\n--- AI result ---\n%s\n", task.AIExecutionResult)
		}
		return nil
	})
}

func runTasksEdit(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		ref, err := resolveTask(a.session.Snapshot().Tasks, args[0])
		if err != nil {
			return err
		}
		_, save, err := a.session.EditResult(ref.ID, taskEditText)
		if err != nil {
			return err
		}
		if err := save.Wait(ctx); err != nil {
			return fmt.Errorf("saving result: %w", err)
		}
		say(cmd.OutOrStdout(), "Result updated\n")
		return nil
	})
}

func runTasksRemember(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		ref, err := resolveTask(a.session.Snapshot().Tasks, args[0])
		if err != nil {
			return err
		}
		save, err := a.session.RememberResult(ref.ID)
		if err != nil {
			return err
		}
		if err := save.Wait(ctx); err != nil {
			return fmt.Errorf("saving knowledge: %w", err)
		}
		say(cmd.OutOrStdout(), "Saved %q to the knowledge base\n", ref.Title)
		return nil
	})
}
