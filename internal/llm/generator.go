// ABOUTME: Generator is the contract between the application and the language model
// ABOUTME: Structured responses are decoded into models types with fresh ids
package llm

import (
	"context"
	"errors"

	"github.com/harper/focusflow/internal/models"
)

// ErrNoChoices is returned when the provider answers without a completion
var ErrNoChoices = errors.New("no completion choices returned")

// Generator produces tasks, chat replies, strategies and task output
type Generator interface {
	// DailyTasks suggests 3-5 pending tasks for today.
	DailyTasks(ctx context.Context, profile *models.Profile) (models.Tasks, error)
	// CoachReply answers message given the prior transcript and current tasks.
	CoachReply(ctx context.Context, profile *models.Profile, tasks models.Tasks, history []models.ChatMessage, message string) (string, error)
	// Strategy turns a goal into a plan plus tasks to start today.
	Strategy(ctx context.Context, profile *models.Profile, goal string) (*Strategy, error)
	// ExecuteTask does the task and returns markdown.
	ExecuteTask(ctx context.Context, profile *models.Profile, task models.Task) (string, error)
}

// Strategy is a generated plan together with its suggested first tasks
type Strategy struct {
	Plan           models.StrategicPlan `json:"plan" yaml:"plan"`
	ImmediateTasks models.Tasks         `json:"immediateTasks" yaml:"immediateTasks"`
}

type taskDraft struct {
	Title            string `json:"title" description:"Short, punchy task title (max 6 words)"`
	Description      string `json:"description" description:"Brief explanation of what to do and why."`
	Priority         string `json:"priority" enum:"High,Medium,Low"`
	EstimatedTimeMin int    `json:"estimatedTimeMin" description:"Estimated minutes to complete (15-90)"`
}

type dailyTasksResponse struct {
	Tasks []taskDraft `json:"tasks"`
}

type milestoneDraft struct {
	Week   int    `json:"week"`
	Focus  string `json:"focus"`
	Action string `json:"action"`
}

type resourceDraft struct {
	Title       string `json:"title"`
	Type        string `json:"type" enum:"Book,Podcast,Course,Tool,Article"`
	Description string `json:"description"`
	Reason      string `json:"reason"`
}

type strategyResponse struct {
	SmartGoal      string           `json:"smartGoal" description:"A specific, measurable, achievable, relevant, and time-bound version of the user's goal."`
	Milestones     []milestoneDraft `json:"milestones"`
	Resources      []resourceDraft  `json:"resources"`
	ImmediateTasks []taskDraft      `json:"immediateTasks"`
}

// toTasks converts drafts into pending tasks, defaulting unknown priorities to Medium.
func toTasks(drafts []taskDraft) models.Tasks {
	tasks := make(models.Tasks, 0, len(drafts))
	for _, d := range drafts {
		priority, err := models.ParsePriority(d.Priority)
		if err != nil {
			priority = models.PriorityMedium
		}
		tasks = append(tasks, models.NewTask(d.Title, d.Description, priority, d.EstimatedTimeMin))
	}
	return tasks
}

func (r strategyResponse) toStrategy(goal string) *Strategy {
	plan := models.StrategicPlan{
		OriginalGoal: goal,
		SmartGoal:    r.SmartGoal,
		Milestones:   make([]models.Milestone, 0, len(r.Milestones)),
		Resources:    make([]models.Resource, 0, len(r.Resources)),
	}
	for _, m := range r.Milestones {
		plan.Milestones = append(plan.Milestones, models.Milestone(m))
	}
	for _, res := range r.Resources {
		plan.Resources = append(plan.Resources, models.Resource{
			Title:       res.Title,
			Type:        models.ResourceType(res.Type),
			Description: res.Description,
			Reason:      res.Reason,
		})
	}
	plan.AssignResourceIDs()
	return &Strategy{Plan: plan, ImmediateTasks: toTasks(r.ImmediateTasks)}
}
