// ABOUTME: Sync commands for the Charm cloud mirror
// ABOUTME: Push, pull, status, wipe and key listing
package commands

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/harper/focusflow/internal/charm"
	"github.com/spf13/cobra"
)

// NewSyncCmd creates the sync command group
func NewSyncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Mirror the record store to Charm cloud",
		Long: `Mirror the record store to Charm cloud.

The local SQLite store is always the source of truth. Push copies it to
your Charm account, pull replaces local tables with the mirrored copies.
Charm authenticates with your SSH key. Set CHARM_AUTO_SYNC=true to pull
before and push after every command.`,
	}

	cmd.AddCommand(newSyncStatusCmd())
	cmd.AddCommand(newSyncPushCmd())
	cmd.AddCommand(newSyncPullCmd())
	cmd.AddCommand(newSyncWipeCmd())
	cmd.AddCommand(newSyncKeysCmd())

	return cmd
}

// withMirror runs fn with the app's mirror, opening one if auto-sync did not
func withMirror(cmd *cobra.Command, fn func(ctx context.Context, a *app, m *charm.Mirror) error) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		m := a.mirror
		if m == nil {
			var err error
			if m, err = openMirror(a.cfg, a.store, a.log); err != nil {
				return fmt.Errorf("failed to connect to Charm: %w", err)
			}
			defer func() { _ = m.Close() }()
		}
		return fn(ctx, a, m)
	})
}

func newSyncStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Compare local tables with the mirror",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMirror(cmd, func(ctx context.Context, a *app, m *charm.Mirror) error {
				statuses, err := m.Status(ctx)
				if err != nil {
					return err
				}
				if structured() {
					return printStructured(cmd.OutOrStdout(), statuses)
				}

				out := cmd.OutOrStdout()
				if id, err := charm.UserID(); err == nil {
					fmt.Fprintf(out, "User ID: %s\n", id)
				} else {
					fmt.Fprintln(out, "Status: Not connected")
					fmt.Fprintln(out, "Run 'focusflow sync keys' to check your SSH keys")
				}
				fmt.Fprintf(out, "Host: %s\n\n", a.cfg.CharmHost)

				w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				fmt.Fprintf(w, "TABLE\tLOCAL\tREMOTE\tSTATE\n")
				for _, st := range statuses {
					state := color.YellowString("differs")
					if st.InSync {
						state = color.GreenString("in sync")
					}
					fmt.Fprintf(w, "%s\t%t\t%t\t%s\n", st.Table, st.Local, st.Remote, state)
				}
				return w.Flush()
			})
		},
	}
}

func newSyncPushCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "push",
		Short: "Copy local tables to the mirror",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMirror(cmd, func(ctx context.Context, a *app, m *charm.Mirror) error {
				n, err := m.Push(ctx)
				if err != nil {
					return err
				}
				say(cmd.OutOrStdout(), "Pushed %d tables\n", n)
				return nil
			})
		},
	}
}

func newSyncPullCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pull",
		Short: "Replace local tables with the mirrored copies",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMirror(cmd, func(ctx context.Context, a *app, m *charm.Mirror) error {
				n, err := m.Pull(ctx)
				if err != nil {
					return err
				}
				say(cmd.OutOrStdout(), "Pulled %d tables\n", n)
				return nil
			})
		},
	}
}

func newSyncWipeCmd() *cobra.Command {
	var confirmed bool

	cmd := &cobra.Command{
		Use:   "wipe",
		Short: "Delete the mirrored copies from Charm",
		Long: `Delete the mirrored copies from Charm.

Local data is not touched; use 'focusflow reset' for that.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirmed {
				fmt.Fprintln(cmd.OutOrStdout(), "This will delete ALL mirrored data from Charm!")
				fmt.Fprintln(cmd.OutOrStdout(), "Run with --confirm to proceed")
				return nil
			}
			return withMirror(cmd, func(ctx context.Context, a *app, m *charm.Mirror) error {
				n, err := m.Wipe(ctx)
				if err != nil {
					return err
				}
				say(cmd.OutOrStdout(), "Deleted %d mirrored tables\n", n)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&confirmed, "confirm", false, "Confirm the wipe operation")
	return cmd
}

func newSyncKeysCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keys",
		Short: "List authorized SSH keys",
		RunE: func(cmd *cobra.Command, args []string) error {
			keys, err := charm.AuthorizedKeys()
			if err != nil {
				return fmt.Errorf("failed to get authorized keys: %w", err)
			}
			if keys == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "No authorized keys found")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Authorized SSH keys:")
			fmt.Fprintln(cmd.OutOrStdout(), keys)
			return nil
		},
	}
}
