// ABOUTME: Export command writing all FocusFlow data to a file or stdout
// ABOUTME: Supports json, yaml, markdown and html
package commands

import (
	"context"
	"time"

	"github.com/harper/focusflow/internal/export"
	"github.com/spf13/cobra"
)

var exportAs string

// NewExportCmd creates the export command
func NewExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export [path]",
		Short: "Export profile, tasks, chat and plan",
		Long: `Export profile, tasks, chat and plan.

The format comes from --as or the file extension. Without a path the
export is written to stdout (default format: markdown).

Examples:
  focusflow export backup.json
  focusflow export report.html
  focusflow export --as yaml`,
		Args: cobra.MaximumNArgs(1),
		RunE: runExport,
	}
	cmd.Flags().StringVar(&exportAs, "as", "", "Export format: json, yaml, markdown, html")
	return cmd
}

func runExport(cmd *cobra.Command, args []string) error {
	var (
		format export.Format
		err    error
	)
	switch {
	case exportAs != "":
		format, err = export.ParseFormat(exportAs)
	case len(args) == 1:
		format, err = export.FormatForPath(args[0])
	default:
		format = export.FormatMarkdown
	}
	if err != nil {
		return err
	}

	return withApp(cmd, func(ctx context.Context, a *app) error {
		data := export.FromSnapshot(a.session.Snapshot(), time.Now())
		if len(args) == 0 {
			return export.Write(cmd.OutOrStdout(), data, format)
		}
		if err := export.WriteFile(args[0], data, format); err != nil {
			return err
		}
		say(cmd.OutOrStdout(), "Exported to %s\n", args[0])
		return nil
	})
}
