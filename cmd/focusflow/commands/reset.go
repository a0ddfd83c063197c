// ABOUTME: Reset command that clears all four tables in one transaction
// ABOUTME: Asks for confirmation unless --yes is given
package commands

import (
	"context"

	"github.com/spf13/cobra"
)

// NewResetCmd creates the reset command
func NewResetCmd() *cobra.Command {
	var skipConfirm bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete the profile, tasks, chat and plan",
		Long: `Delete the profile, tasks, chat and plan.

All four are cleared together; if clearing fails nothing is removed.
With CHARM_AUTO_SYNC on, the cleared state is pushed to the charm
mirror too; otherwise the mirror is untouched (see: focusflow sync wipe).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !skipConfirm {
				ok, err := confirm(cmd.OutOrStdout(), cmd.InOrStdin(), "Delete all FocusFlow data?")
				if err != nil {
					return err
				}
				if !ok {
					say(cmd.OutOrStdout(), "Reset cancelled.\n")
					return nil
				}
			}
			return withApp(cmd, func(ctx context.Context, a *app) error {
				if err := a.session.Reset(ctx); err != nil {
					return err
				}
				say(cmd.OutOrStdout(), "All data cleared. Run focusflow onboard to start again.\n")
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&skipConfirm, "yes", "y", false, "Skip confirmation prompt")
	return cmd
}
