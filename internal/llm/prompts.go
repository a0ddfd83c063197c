// ABOUTME: Prompt construction for the coach, planner and task executor
// ABOUTME: Builds system instructions from the profile, task list and knowledge base
package llm

import (
	"fmt"
	"strings"

	"github.com/harper/focusflow/internal/models"
)

// Text shown in place of a model answer when the provider fails.
const (
	CoachFallback     = "I'm having trouble connecting right now. Let's focus on the tasks at hand."
	ExecutionFallback = "Error executing task. Please check your connection."
	EmptyExecution    = "I tried to complete the task but couldn't generate a result. Please try again."
)

const (
	dailyTasksRequest = "Generate today's high-impact task list."
	executeRequest    = "Please complete this task for me."
)

func dailyTasksPrompt(p *models.Profile) string {
	return fmt.Sprintf(`You are an elite business productivity coach.
Your goal is to generate 3-5 high-impact, specific tasks for the user to complete TODAY.
The user runs a business in the %q industry.
Their main goal is: %q.
Their biggest challenge is: %q.

Tasks should be actionable, realistic for a single day, and directly contribute to the main goal.
Prioritize tasks that move the needle (revenue generating or critical operations).`,
		p.Industry, p.MainGoal, p.BiggestChallenge)
}

// taskContext lists tasks as "- [STATUS] title (priority)" lines.
func taskContext(tasks models.Tasks) string {
	if len(tasks) == 0 {
		return "No tasks currently listed for today."
	}
	lines := make([]string, 0, len(tasks)+1)
	lines = append(lines, "Current User Tasks:")
	for _, t := range tasks {
		lines = append(lines, fmt.Sprintf("- [%s] %s (%s)", t.Status, t.Title, t.Priority))
	}
	return strings.Join(lines, "\n")
}

// knowledgeContext numbers saved snippets from 1, separated by "---" lines.
func knowledgeContext(p *models.Profile) string {
	if len(p.KnowledgeBase) == 0 {
		return ""
	}
	items := make([]string, len(p.KnowledgeBase))
	for i, k := range p.KnowledgeBase {
		items[i] = fmt.Sprintf("[Item %d]: %s", i+1, k)
	}
	return "USER SAVED KNOWLEDGE/CONTEXT (Reference this if relevant):\n" + strings.Join(items, "\n---\n")
}

func coachPrompt(p *models.Profile, tasks models.Tasks) string {
	return fmt.Sprintf(`You are "FocusFlow", a dedicated, no-nonsense, but supportive business coach.
User Context:
- Business: %s (%s)
- Goal: %s
- Challenge: %s

%s

%s

Style:
- Keep answers concise (optimized for mobile reading).
- Be action-oriented. Don't just give theory, give steps.
- Hold the user accountable.
- If they complain about being tired/lazy, remind them of their goal.
- Use bullet points for readability.
- If the user asks about their tasks, refer to the specific tasks in the context provided.`,
		p.BusinessName, p.Industry, p.MainGoal, p.BiggestChallenge,
		taskContext(tasks), knowledgeContext(p))
}

func strategyPrompt(goal string, p *models.Profile) string {
	return fmt.Sprintf(`You are a strategic business advisor.
The user has a main goal: %q.
Their business is in the %q industry.

Analyze this goal.
1. Refine it into a specific SMART goal.
2. Break it down into 4 weekly milestones.
3. Suggest 3 relevant educational resources (Books, Podcasts, Tools, etc.).
4. Create 3 immediate actionable tasks to start TODAY.`, goal, p.Industry)
}

func strategyRequest(goal string) string {
	return "Create a strategy for: " + goal
}

func executePrompt(t models.Task, p *models.Profile) string {
	return fmt.Sprintf(`You are an AI Business Assistant. Your job is to EXECUTE the task provided by the user to the best of your ability.

User Profile:
- Business: %s
- Industry: %s

Task Title: %s
Task Description: %s

Instructions:
- If the task asks for an email, write the full email draft.
- If the task asks for research, provide a summarized research report (use your internal knowledge).
- If the task asks for a plan, write the detailed steps.
- If the task asks for analysis, perform the analysis.
- Output FORMAT: Markdown. Use bolding, lists, and clear headers.
- Do not just say "Here is the task", just DO the task.`,
		p.BusinessName, p.Industry, t.Title, t.Description)
}
