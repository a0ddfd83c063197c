// ABOUTME: Tests for prompt construction
// ABOUTME: Verifies profile, task and knowledge context appear as the coach expects
package llm

import (
	"strings"
	"testing"

	"github.com/harper/focusflow/internal/models"
)

func testProfile() *models.Profile {
	return &models.Profile{
		BusinessName:     "Acme",
		Industry:         "SaaS",
		MainGoal:         "Grow MRR",
		BiggestChallenge: "Time",
		IsSetup:          true,
	}
}

func TestTaskContext(t *testing.T) {
	if got := taskContext(nil); got != "No tasks currently listed for today." {
		t.Errorf("taskContext(nil) = %q", got)
	}

	tasks := models.Tasks{
		{Title: "Call supplier", Status: models.StatusPending, Priority: models.PriorityHigh},
		{Title: "Send invoice", Status: models.StatusCompleted, Priority: models.PriorityLow},
	}
	want := "Current User Tasks:\n- [PENDING] Call supplier (High)\n- [COMPLETED] Send invoice (Low)"
	if got := taskContext(tasks); got != want {
		t.Errorf("taskContext() = %q, want %q", got, want)
	}
}

func TestKnowledgeContext(t *testing.T) {
	p := testProfile()
	if got := knowledgeContext(p); got != "" {
		t.Errorf("knowledgeContext() without snippets = %q, want empty", got)
	}

	p.KnowledgeBase = []string{"first", "second"}
	got := knowledgeContext(p)
	if !strings.Contains(got, "[Item 1]: first\n---\n[Item 2]: second") {
		t.Errorf("knowledgeContext() = %q", got)
	}
}

func TestCoachPrompt(t *testing.T) {
	p := testProfile()
	p.KnowledgeBase = []string{"Task: Research\nOutput: notes"}
	got := coachPrompt(p, models.Tasks{{Title: "Call supplier", Status: models.StatusPending, Priority: models.PriorityHigh}})

	for _, want := range []string{
		`You are "FocusFlow"`,
		"- Business: Acme (SaaS)",
		"- Goal: Grow MRR",
		"- [PENDING] Call supplier (High)",
		"[Item 1]: Task: Research",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("coachPrompt() missing %q", want)
		}
	}
}

func TestDailyTasksAndStrategyPrompts(t *testing.T) {
	p := testProfile()

	daily := dailyTasksPrompt(p)
	if !strings.Contains(daily, `"SaaS" industry`) || !strings.Contains(daily, "3-5 high-impact") {
		t.Errorf("dailyTasksPrompt() = %q", daily)
	}

	strategy := strategyPrompt("Launch v2", p)
	if !strings.Contains(strategy, `main goal: "Launch v2"`) || !strings.Contains(strategy, "4 weekly milestones") {
		t.Errorf("strategyPrompt() = %q", strategy)
	}
	if strategyRequest("Launch v2") != "Create a strategy for: Launch v2" {
		t.Errorf("strategyRequest() = %q", strategyRequest("Launch v2"))
	}

	exec := executePrompt(models.Task{Title: "Draft email", Description: "to supplier"}, p)
	if !strings.Contains(exec, "Task Title: Draft email") || !strings.Contains(exec, "Markdown") {
		t.Errorf("executePrompt() = %q", exec)
	}
}

func TestToTasksDefaultsPriority(t *testing.T) {
	tasks := toTasks([]taskDraft{
		{Title: "A", Priority: "high", EstimatedTimeMin: 30},
		{Title: "B", Priority: "whenever", EstimatedTimeMin: 15},
	})
	if len(tasks) != 2 {
		t.Fatalf("toTasks() returned %d tasks", len(tasks))
	}
	if tasks[0].Priority != models.PriorityHigh || tasks[1].Priority != models.PriorityMedium {
		t.Errorf("priorities = %s, %s", tasks[0].Priority, tasks[1].Priority)
	}
	for _, task := range tasks {
		if task.ID == "" || task.Status != models.StatusPending || task.CreatedAt == "" {
			t.Errorf("task not initialised: %+v", task)
		}
	}
}
