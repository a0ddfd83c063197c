// ABOUTME: Onboarding command that sets up the business profile
// ABOUTME: Takes answers from flags and prompts for any that are missing
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

var onboardAnswers models.Profile

type question struct {
	prompt   string
	dest     *string
	optional bool
}

// NewOnboardCmd creates the onboard command
func NewOnboardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "onboard",
		Short: "Set up your business profile",
		Long: `Set up your business profile.

The profile is context for every generated task, coach reply and plan.
Answers not given as flags are asked for interactively. Running it
again replaces the answers but keeps the knowledge base.

Examples:
  focusflow onboard
  focusflow onboard --business "Acme Bakery" --industry Food --goal "Open a second shop"`,
		RunE: runOnboard,
	}

	cmd.Flags().StringVar(&onboardAnswers.BusinessName, "business", "", "Business name")
	cmd.Flags().StringVar(&onboardAnswers.Industry, "industry", "", "Industry")
	cmd.Flags().StringVar(&onboardAnswers.MainGoal, "goal", "", "Main goal")
	cmd.Flags().StringVar(&onboardAnswers.BiggestChallenge, "challenge", "", "Biggest challenge (optional)")

	return cmd
}

func askMissing(w io.Writer, r io.Reader, answers *models.Profile, challengeSet bool) error {
	reader := bufio.NewReader(r)
	questions := []question{
		{"What's your business called?", &answers.BusinessName, false},
		{"What industry are you in?", &answers.Industry, false},
		{"What's your main goal right now?", &answers.MainGoal, false},
		{"What's your biggest challenge? (optional)", &answers.BiggestChallenge, true},
	}
	for _, q := range questions {
		if strings.TrimSpace(*q.dest) != "" || (q.optional && challengeSet) {
			continue
		}
		_, _ = fmt.Fprintf(w, "%s ", q.prompt)
		line, err := reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return fmt.Errorf("reading answer: %w", err)
		}
		*q.dest = strings.TrimSpace(line)
		if *q.dest == "" && !q.optional {
			return fmt.Errorf("%s is required", strings.TrimSuffix(q.prompt, "?"))
		}
	}
	return nil
}

func runOnboard(cmd *cobra.Command, args []string) error {
	answers := onboardAnswers
	if err := askMissing(cmd.OutOrStdout(), cmd.InOrStdin(), &answers, cmd.Flags().Changed("challenge")); err != nil {
		return err
	}

	return withApp(cmd, func(ctx context.Context, a *app) error {
		save, err := a.session.CompleteOnboarding(answers)
		if err != nil {
			return err
		}
		if err := save.Wait(ctx); err != nil {
			return fmt.Errorf("saving profile: %w", err)
		}
		if !quiet {
			color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "✓ Welcome, %s!\n", answers.BusinessName)
			say(cmd.OutOrStdout(), "Next: focusflow tasks generate\n")
		}
		return nil
	})
}
