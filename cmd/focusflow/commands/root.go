// ABOUTME: Root command, global flags and subcommand registration for the focusflow CLI
// ABOUTME: Loads .env before any subcommand runs
package commands

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	verbose      bool
	quiet        bool
	outputFormat string
	dbPath       string
)

const banner = `
 ███████╗ ██████╗  ██████╗██╗   ██╗███████╗
 ██╔════╝██╔═══██╗██╔════╝██║   ██║██╔════╝
 █████╗  ██║   ██║██║     ██║   ██║███████╗
 ██╔══╝  ██║   ██║██║     ██║   ██║╚════██║
 ██║     ╚██████╔╝╚██████╗╚██████╔╝███████║
 ╚═╝      ╚═════╝  ╚═════╝ ╚═════╝ ╚══════╝ flow
`

// NewRootCmd creates the root command with all subcommands
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "focusflow",
		Short: "Daily focus planner and business coach",
		Long: banner + `
FocusFlow keeps a small business owner's profile, today's tasks,
a coach chat and a strategic plan in a local SQLite record store.

Tasks, coaching and plans are generated by any OpenAI-compatible
model (set OPENAI_API_KEY). Everything else works offline.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if verbose && quiet {
				return fmt.Errorf("--verbose and --quiet cannot be used together")
			}
			switch outputFormat {
			case "auto", "table", "json", "yaml":
			default:
				return fmt.Errorf("--format must be auto, table, json or yaml, got %q", outputFormat)
			}
			// A missing .env is fine
			_ = godotenv.Load()
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose logging")
	cmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Only print errors")
	cmd.PersistentFlags().StringVar(&outputFormat, "format", "auto", "Output format: auto, table, json, yaml")
	cmd.PersistentFlags().StringVar(&dbPath, "db", "", "Record store path (default $FOCUSFLOW_DB or XDG data dir)")

	cmd.AddCommand(NewOnboardCmd())
	cmd.AddCommand(NewProfileCmd())
	cmd.AddCommand(NewTasksCmd())
	cmd.AddCommand(NewChatCmd())
	cmd.AddCommand(NewStrategyCmd())
	cmd.AddCommand(NewResetCmd())
	cmd.AddCommand(NewSyncCmd())
	cmd.AddCommand(NewExportCmd())
	cmd.AddCommand(NewMCPCmd())
	cmd.AddCommand(NewVersionCmd())
	cmd.AddCommand(NewInstallSkillCmd())

	return cmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}
