// ABOUTME: StrategicPlan represents a generated SMART goal breakdown
// ABOUTME: Replaced wholesale whenever a new strategy is generated
package models

import (
	"time"

	"github.com/google/uuid"
)

// ResourceType categorises a recommended learning resource
type ResourceType string

const (
	ResourceBook    ResourceType = "Book"
	ResourcePodcast ResourceType = "Podcast"
	ResourceCourse  ResourceType = "Course"
	ResourceTool    ResourceType = "Tool"
	ResourceArticle ResourceType = "Article"
)

// Milestone is one week of the plan
type Milestone struct {
	Week   int    `json:"week" yaml:"week"`
	Focus  string `json:"focus" yaml:"focus"`
	Action string `json:"action" yaml:"action"`
}

// Resource is a recommended book, course, tool, etc.
type Resource struct {
	ID          string       `json:"id" yaml:"id"`
	Title       string       `json:"title" yaml:"title"`
	Type        ResourceType `json:"type" yaml:"type"`
	Description string       `json:"description" yaml:"description"`
	Reason      string       `json:"reason" yaml:"reason"`
}

// StrategicPlan is the single plan document
type StrategicPlan struct {
	OriginalGoal string      `json:"originalGoal" yaml:"originalGoal"`
	SmartGoal    string      `json:"smartGoal" yaml:"smartGoal"`
	Milestones   []Milestone `json:"milestones" yaml:"milestones"`
	Resources    []Resource  `json:"resources" yaml:"resources"`
	GeneratedAt  int64       `json:"generatedAt" yaml:"generatedAt"`
}

// AssignResourceIDs gives every resource without an id a fresh one
func (p *StrategicPlan) AssignResourceIDs() {
	for i := range p.Resources {
		if p.Resources[i].ID == "" {
			p.Resources[i].ID = uuid.New().String()
		}
	}
}

// Stamp records the generation time in milliseconds
func (p *StrategicPlan) Stamp(now time.Time) {
	p.GeneratedAt = now.UnixMilli()
}
