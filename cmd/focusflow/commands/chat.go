// ABOUTME: CLI commands for the business coach chat
// ABOUTME: One-shot messages, an interactive loop, history and clearing
package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/harper/focusflow/internal/models"
	"github.com/spf13/cobra"
)

var chatLimit int

// NewChatCmd creates the chat command
func NewChatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat [message]",
		Short: "Talk to your business coach",
		Long: `Talk to your business coach.

With a message, sends it and prints the reply. Without one, starts an
interactive session; type "exit" or press Ctrl-D to leave.

Examples:
  focusflow chat "What should I focus on first?"
  focusflow chat
  focusflow chat history --limit 10`,
		RunE: runChat,
	}

	history := &cobra.Command{
		Use:   "history",
		Short: "Show the chat transcript",
		Args:  cobra.NoArgs,
		RunE:  runChatHistory,
	}
	history.Flags().IntVarP(&chatLimit, "limit", "n", 0, "Only the last N messages")
	cmd.AddCommand(history)

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Clear the chat transcript",
		Args:  cobra.NoArgs,
		RunE:  runChatClear,
	})

	return cmd
}

func printMessage(w io.Writer, m models.ChatMessage) {
	if m.Role == models.RoleModel {
		color.New(color.FgCyan).Fprint(w, "Coach: ")
	} else {
		color.New(color.FgGreen).Fprint(w, "You: ")
	}
	fmt.Fprintln(w, m.Text)
}

func sendOne(ctx context.Context, cmd *cobra.Command, a *app, text string) error {
	turn, save, err := a.session.SendMessage(ctx, text)
	if err != nil {
		return err
	}
	if structured() {
		if err := printStructured(cmd.OutOrStdout(), turn); err != nil {
			return err
		}
	} else {
		printMessage(cmd.OutOrStdout(), turn.Reply)
	}
	if err := save.Wait(ctx); err != nil {
		return fmt.Errorf("saving chat: %w", err)
	}
	return nil
}

func runChat(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		if len(args) > 0 {
			return sendOne(ctx, cmd, a, strings.Join(args, " "))
		}

		say(cmd.OutOrStdout(), "Coach is listening. Type \"exit\" to leave.\n")
		scanner := bufio.NewScanner(cmd.InOrStdin())
		for {
			say(cmd.OutOrStdout(), "> ")
			if !scanner.Scan() {
				break
			}
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			if line == "exit" || line == "quit" {
				break
			}
			if err := sendOne(ctx, cmd, a, line); err != nil {
				return err
			}
		}
		return scanner.Err()
	})
}

func runChatHistory(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		chat := a.session.Snapshot().Chat
		if chatLimit > 0 && chatLimit < len(chat) {
			chat = chat[len(chat)-chatLimit:]
		}
		if structured() {
			return printStructured(cmd.OutOrStdout(), chat)
		}
		if len(chat) == 0 {
			say(cmd.OutOrStdout(), "No messages yet\n")
			return nil
		}
		for _, m := range chat {
			fmt.Fprintf(cmd.OutOrStdout(), "[%s] ", formatTime(m.Time()))
			printMessage(cmd.OutOrStdout(), m)
		}
		return nil
	})
}

func runChatClear(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		if err := a.session.ClearChat().Wait(ctx); err != nil {
			return fmt.Errorf("clearing chat: %w", err)
		}
		say(cmd.OutOrStdout(), "Chat cleared\n")
		return nil
	})
}
