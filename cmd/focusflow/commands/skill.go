// ABOUTME: Install Claude Code skill for focusflow
// ABOUTME: Embeds and installs the skill definition to ~/.claude/skills/

package commands

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

//go:embed skill/SKILL.md
var skillFS embed.FS

// NewInstallSkillCmd creates the install-skill command
func NewInstallSkillCmd() *cobra.Command {
	var skipConfirm bool

	cmd := &cobra.Command{
		Use:   "install-skill",
		Short: "Install Claude Code skill",
		Long: `Install the focusflow skill for Claude Code.

This copies the skill definition to ~/.claude/skills/focusflow/
so Claude Code can manage your tasks and knowledge base.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return installSkill(cmd, skipConfirm)
		},
	}

	cmd.Flags().BoolVarP(&skipConfirm, "yes", "y", false, "Skip confirmation prompt")
	return cmd
}

func installSkill(cmd *cobra.Command, skipConfirm bool) error {
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	skillDir := filepath.Join(home, ".claude", "skills", "focusflow")
	skillPath := filepath.Join(skillDir, "SKILL.md")
	out := cmd.OutOrStdout()

	_, _ = fmt.Fprintln(out, "This will install the focusflow skill, enabling Claude Code to:")
	_, _ = fmt.Fprintln(out)
	_, _ = fmt.Fprintln(out, "  • List, add and complete today's tasks")
	_, _ = fmt.Fprintln(out, "  • Save facts about your business to the knowledge base")
	_, _ = fmt.Fprintln(out, "  • Ask the business coach")
	_, _ = fmt.Fprintln(out)
	_, _ = fmt.Fprintf(out, "Destination:\n  %s\n\n", skillPath)

	if _, err := os.Stat(skillPath); err == nil {
		_, _ = fmt.Fprintln(out, "Note: A skill file already exists and will be overwritten.")
		_, _ = fmt.Fprintln(out)
	}

	if !skipConfirm {
		ok, err := confirm(out, cmd.InOrStdin(), "Install the focusflow skill?")
		if err != nil {
			return err
		}
		if !ok {
			_, _ = fmt.Fprintln(out, "Installation cancelled.")
			return nil
		}
		_, _ = fmt.Fprintln(out)
	}

	content, err := skillFS.ReadFile("skill/SKILL.md")
	if err != nil {
		return fmt.Errorf("failed to read embedded skill: %w", err)
	}
	if err := os.MkdirAll(skillDir, 0755); err != nil {
		return fmt.Errorf("failed to create skill directory: %w", err)
	}
	if err := os.WriteFile(skillPath, content, 0644); err != nil {
		return fmt.Errorf("failed to write skill file: %w", err)
	}

	_, _ = fmt.Fprintln(out, "✓ Installed focusflow skill successfully!")
	_, _ = fmt.Fprintln(out, "Try asking Claude: \"What should I work on today?\"")
	return nil
}
