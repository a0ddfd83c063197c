// ABOUTME: Task list operations for the session
// ABOUTME: Covers generation, manual add, toggle, delete, AI execution and remembering results
package focus

import (
	"context"
	"fmt"
	"strings"

	"github.com/harper/focusflow/internal/models"
)

// TaskInput is a task entered by hand
type TaskInput struct {
	Title    string
	Minutes  int
	Priority models.Priority
}

// GenerateTasks replaces the task list with freshly generated tasks
func (s *Session) GenerateTasks(ctx context.Context) (models.Tasks, *Save, error) {
	gen, err := s.generator()
	if err != nil {
		return nil, nil, err
	}
	profile, err := s.currentProfile()
	if err != nil {
		return nil, nil, err
	}

	tasks, err := gen.DailyTasks(ctx, profile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate tasks: %w", err)
	}
	if tasks == nil {
		tasks = models.Tasks{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.logger.Debug().Int("count", len(tasks)).Msg("generated tasks")
	return tasks.Clone(), s.saveTasksLocked(tasks), nil
}

// AddTask appends a manual task to the end of the list
func (s *Session) AddTask(in TaskInput) (models.Task, *Save, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return models.Task{}, nil, ErrEmptyTitle
	}
	task := models.NewManualTask(title, in.Minutes, in.Priority)

	s.mu.Lock()
	defer s.mu.Unlock()
	next := append(s.tasks.Clone(), task)
	return task, s.saveTasksLocked(next), nil
}

// AdoptTasks appends tasks suggested by a strategy to the list
func (s *Session) AdoptTasks(tasks models.Tasks) *Save {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := append(s.tasks.Clone(), tasks...)
	return s.saveTasksLocked(next)
}

// mutateTask copies the list, applies fn to the task with id and saves the copy.
func (s *Session) mutateTask(id string, fn func(*models.Task) error) (models.Task, *Save, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.tasks.Find(id)
	if i < 0 {
		return models.Task{}, nil, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	next := s.tasks.Clone()
	if err := fn(&next[i]); err != nil {
		return models.Task{}, nil, err
	}
	return next[i], s.saveTasksLocked(next), nil
}

// ToggleTask flips a task between pending and completed
func (s *Session) ToggleTask(id string) (models.Task, *Save, error) {
	return s.mutateTask(id, func(t *models.Task) error {
		t.Toggle()
		return nil
	})
}

// DeleteTask removes a task from the list
func (s *Session) DeleteTask(id string) (*Save, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tasks.Find(id) < 0 {
		return nil, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	return s.saveTasksLocked(s.tasks.Without(id)), nil
}

// ExecuteTask asks the model to do the task and stores the output on it.
// A model failure stores nothing.
func (s *Session) ExecuteTask(ctx context.Context, id string) (models.Task, *Save, error) {
	gen, err := s.generator()
	if err != nil {
		return models.Task{}, nil, err
	}
	profile, err := s.currentProfile()
	if err != nil {
		return models.Task{}, nil, err
	}

	s.mu.Lock()
	i := s.tasks.Find(id)
	var task models.Task
	if i >= 0 {
		task = s.tasks[i]
	}
	s.mu.Unlock()
	if i < 0 {
		return models.Task{}, nil, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}

	result, err := gen.ExecuteTask(ctx, profile, task)
	if err != nil {
		return models.Task{}, nil, fmt.Errorf("failed to execute task: %w", err)
	}

	// The list may have changed while the model was working.
	return s.mutateTask(id, func(t *models.Task) error {
		t.AIExecutionResult = result
		return nil
	})
}

// EditResult replaces a task's AI result with user-edited text
func (s *Session) EditResult(id, text string) (models.Task, *Save, error) {
	return s.mutateTask(id, func(t *models.Task) error {
		t.AIExecutionResult = text
		return nil
	})
}

// RememberResult appends "Task: <title>\nOutput: <result>" to the knowledge base.
// This is a profile write, separate from the task list.
func (s *Session) RememberResult(id string) (*Save, error) {
	s.mu.Lock()
	i := s.tasks.Find(id)
	var task models.Task
	if i >= 0 {
		task = s.tasks[i]
	}
	s.mu.Unlock()

	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	if strings.TrimSpace(task.AIExecutionResult) == "" {
		return nil, ErrNoResult
	}
	return s.AddKnowledge(KnowledgeEntry(task))
}

// KnowledgeEntry formats a task result for the knowledge base
func KnowledgeEntry(t models.Task) string {
	return fmt.Sprintf("Task: %s\nOutput: %s", t.Title, t.AIExecutionResult)
}
