// ABOUTME: CLI commands to view and edit the business profile and knowledge base
// ABOUTME: Field edits are validated the same way onboarding is
package commands

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/harper/focusflow/internal/models"
	"github.com/spf13/cobra"
)

// NewProfileCmd creates profile command
func NewProfileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "View and manage the business profile",
		Long: `View and manage the business profile.

Examples:
  focusflow profile
  focusflow profile --format json
  focusflow profile set industry "Retail"
  focusflow profile knowledge add "Customers prefer annual billing"`,
		RunE: runProfileShow,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set <field> <value>",
		Short: "Update one profile field",
		Long: `Update one profile field.

Fields: ` + strings.Join(models.ProfileFields, ", ") + ` (aliases: name, goal, challenge)`,
		Args: cobra.ExactArgs(2),
		RunE: runProfileSet,
	})

	knowledge := &cobra.Command{
		Use:   "knowledge",
		Short: "List knowledge base entries",
		RunE:  runKnowledgeList,
	}
	knowledge.AddCommand(&cobra.Command{
		Use:   "add <text>",
		Short: "Add a snippet to the knowledge base",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runKnowledgeAdd,
	})
	cmd.AddCommand(knowledge)

	return cmd
}

func runProfileShow(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		profile := a.session.Snapshot().Profile
		if structured() {
			return printStructured(cmd.OutOrStdout(), profile)
		}
		if profile == nil {
			say(cmd.OutOrStdout(), "No profile found. Create one with: focusflow onboard\n")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "FIELD\tVALUE\n")
		fmt.Fprintf(w, "-----\t-----\n")
		for _, field := range models.ProfileFields {
			value, _ := profile.Get(field)
			if value == "" {
				value = "(not set)"
			}
			fmt.Fprintf(w, "%s\t%s\n", field, truncate(value, 60))
		}
		fmt.Fprintf(w, "knowledge\t%d entries\n", len(profile.KnowledgeBase))
		return w.Flush()
	})
}

func runProfileSet(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		save, err := a.session.UpdateProfile(func(p *models.Profile) error {
			return p.Set(args[0], args[1])
		})
		if err != nil {
			return err
		}
		if err := save.Wait(ctx); err != nil {
			return fmt.Errorf("saving profile: %w", err)
		}
		say(cmd.OutOrStdout(), "Profile updated successfully\n")
		return nil
	})
}

func runKnowledgeList(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		var entries []string
		if p := a.session.Snapshot().Profile; p != nil {
			entries = p.KnowledgeBase
		}
		if structured() {
			if entries == nil {
				entries = []string{}
			}
			return printStructured(cmd.OutOrStdout(), entries)
		}
		if len(entries) == 0 {
			say(cmd.OutOrStdout(), "Knowledge base is empty\n")
			return nil
		}
		for i, e := range entries {
			fmt.Fprintf(cmd.OutOrStdout(), "%d. %s\n", i+1, truncate(strings.ReplaceAll(e, "\n", " "), 100))
		}
		return nil
	})
}

func runKnowledgeAdd(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		save, err := a.session.AddKnowledge(strings.Join(args, " "))
		if err != nil {
			return err
		}
		if err := save.Wait(ctx); err != nil {
			return fmt.Errorf("saving knowledge: %w", err)
		}
		say(cmd.OutOrStdout(), "Added to knowledge base\n")
		return nil
	})
}
