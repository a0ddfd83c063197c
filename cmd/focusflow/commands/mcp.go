// ABOUTME: MCP command starts the Model Context Protocol server on stdio
// ABOUTME: Lets agents read and edit the profile, tasks, knowledge base and plan
package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/harper/focusflow/internal/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
)

// NewMCPCmd creates the MCP command
func NewMCPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for LLM agents",
		Long: `Start MCP server for LLM agents

Runs FocusFlow as an MCP (Model Context Protocol) server over stdio so
agents can manage your tasks and knowledge base.`,
		RunE: runMCP,
		Example: `  # Configure in claude_desktop_config.json:
  # {
  #   "mcpServers": {
  #     "focusflow": {
  #       "command": "focusflow",
  #       "args": ["mcp"]
  #     }
  #   }
  # }`,
	}
}

func runMCP(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	cmd.SetContext(ctx)

	return withApp(cmd, func(ctx context.Context, a *app) error {
		if !a.cfg.HasModel() {
			a.log.Warn().Msg("OPENAI_API_KEY not set; generate_tasks and ask_coach will fail")
		}

		server := mcpserver.NewMCPServer("FocusFlow", versionInfo.Version)
		handlers := mcp.RegisterTools(server, a.session, a.log)

		a.log.Info().Str("db", a.cfg.DBPath).Msg("MCP server starting on stdio")
		serverErr := make(chan error, 1)
		go func() {
			serverErr <- mcpserver.ServeStdio(server)
		}()

		var err error
		select {
		case <-ctx.Done():
			a.log.Info().Msg("shutdown signal received")
		case err = <-serverErr:
			if err != nil {
				err = fmt.Errorf("MCP server error: %w", err)
			}
		}

		flushCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if ferr := handlers.Shutdown(flushCtx); ferr != nil {
			a.log.Error().Stack().Err(ferr).Msg("pending saves failed")
		}
		return err
	})
}
