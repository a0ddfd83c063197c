// ABOUTME: Task represents one item of the daily task list
// ABOUTME: The whole list is persisted as one document on every mutation
package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TaskStatus is the completion state of a task
type TaskStatus string

const (
	StatusPending   TaskStatus = "PENDING"
	StatusCompleted TaskStatus = "COMPLETED"
)

// Priority ranks how urgent a task is
type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// Priorities lists the valid priorities, highest first
var Priorities = []Priority{PriorityHigh, PriorityMedium, PriorityLow}

// DefaultManualMinutes is the estimate used when a manual task has none
const DefaultManualMinutes = 15

// ManualDescription is the description given to tasks the user adds by hand
const ManualDescription = "Manual task"

// ParsePriority accepts a priority name in any case
func ParsePriority(s string) (Priority, error) {
	for _, p := range Priorities {
		if strings.EqualFold(string(p), strings.TrimSpace(s)) {
			return p, nil
		}
	}
	return "", fmt.Errorf("invalid priority %q (valid: High, Medium, Low)", s)
}

// Task is a single actionable item
type Task struct {
	ID                string     `json:"id" yaml:"id"`
	Title             string     `json:"title" yaml:"title"`
	Description       string     `json:"description" yaml:"description"`
	Status            TaskStatus `json:"status" yaml:"status"`
	Priority          Priority   `json:"priority" yaml:"priority"`
	EstimatedTimeMin  int        `json:"estimatedTimeMin" yaml:"estimatedTimeMin"`
	CreatedAt         string     `json:"createdAt" yaml:"createdAt"`
	AIExecutionResult string     `json:"aiExecutionResult,omitempty" yaml:"aiExecutionResult,omitempty"`
}

// NewTask creates a pending task with a fresh id and the current time
func NewTask(title, description string, priority Priority, minutes int) Task {
	return Task{
		ID:               uuid.New().String(),
		Title:            title,
		Description:      description,
		Status:           StatusPending,
		Priority:         priority,
		EstimatedTimeMin: minutes,
		CreatedAt:        time.Now().UTC().Format(time.RFC3339),
	}
}

// NewManualTask creates a task entered by the user, filling in defaults
func NewManualTask(title string, minutes int, priority Priority) Task {
	if minutes <= 0 {
		minutes = DefaultManualMinutes
	}
	p, err := ParsePriority(string(priority))
	if err != nil {
		p = PriorityMedium
	}
	return NewTask(title, ManualDescription, p, minutes)
}

// Completed reports whether the task is done
func (t *Task) Completed() bool {
	return t.Status == StatusCompleted
}

// Toggle flips the task between pending and completed
func (t *Task) Toggle() {
	if t.Status == StatusCompleted {
		t.Status = StatusPending
	} else {
		t.Status = StatusCompleted
	}
}

// Tasks is the ordered task list
type Tasks []Task

// Find returns the index of the task with the given id, or -1
func (ts Tasks) Find(id string) int {
	for i := range ts {
		if ts[i].ID == id {
			return i
		}
	}
	return -1
}

// Without returns a copy of the list minus the task with the given id
func (ts Tasks) Without(id string) Tasks {
	out := make(Tasks, 0, len(ts))
	for _, t := range ts {
		if t.ID != id {
			out = append(out, t)
		}
	}
	return out
}

// Clone returns a copy of the list that shares no backing array
func (ts Tasks) Clone() Tasks {
	if ts == nil {
		return nil
	}
	out := make(Tasks, len(ts))
	copy(out, ts)
	return out
}

// CompletedCount returns how many tasks are completed
func (ts Tasks) CompletedCount() int {
	n := 0
	for i := range ts {
		if ts[i].Completed() {
			n++
		}
	}
	return n
}

// Progress returns the completed share as a whole percentage
func (ts Tasks) Progress() int {
	if len(ts) == 0 {
		return 0
	}
	return ts.CompletedCount() * 100 / len(ts)
}
