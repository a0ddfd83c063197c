// ABOUTME: Profile represents the business owner's onboarding answers and knowledge base
// ABOUTME: Stored whole as the single document of the profile table
package models

import (
	"errors"
	"fmt"
	"strings"
)

// Profile represents the user's business context
type Profile struct {
	BusinessName     string   `json:"businessName" yaml:"businessName"`
	Industry         string   `json:"industry" yaml:"industry"`
	MainGoal         string   `json:"mainGoal" yaml:"mainGoal"`
	BiggestChallenge string   `json:"biggestChallenge" yaml:"biggestChallenge"`
	IsSetup          bool     `json:"isSetup" yaml:"isSetup"`
	KnowledgeBase    []string `json:"knowledgeBase,omitempty" yaml:"knowledgeBase,omitempty"`
}

// ProfileFields lists the editable profile fields in display order
var ProfileFields = []string{"businessName", "industry", "mainGoal", "biggestChallenge"}

// Validate checks that a completed profile has the fields prompts depend on
func (p *Profile) Validate() error {
	if !p.IsSetup {
		return nil
	}
	var missing []string
	if strings.TrimSpace(p.BusinessName) == "" {
		missing = append(missing, "businessName")
	}
	if strings.TrimSpace(p.Industry) == "" {
		missing = append(missing, "industry")
	}
	if strings.TrimSpace(p.MainGoal) == "" {
		missing = append(missing, "mainGoal")
	}
	if len(missing) > 0 {
		return fmt.Errorf("profile is missing required fields: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Set updates a single field by its JSON name
func (p *Profile) Set(field, value string) error {
	value = strings.TrimSpace(value)
	switch strings.ToLower(field) {
	case "businessname", "business", "name":
		p.BusinessName = value
	case "industry":
		p.Industry = value
	case "maingoal", "goal":
		p.MainGoal = value
	case "biggestchallenge", "challenge":
		p.BiggestChallenge = value
	default:
		return fmt.Errorf("unknown profile field %q (valid: %s)", field, strings.Join(ProfileFields, ", "))
	}
	return nil
}

// Get returns a field value by its JSON name
func (p *Profile) Get(field string) (string, bool) {
	switch field {
	case "businessName":
		return p.BusinessName, true
	case "industry":
		return p.Industry, true
	case "mainGoal":
		return p.MainGoal, true
	case "biggestChallenge":
		return p.BiggestChallenge, true
	}
	return "", false
}

// ErrEmptyKnowledge is returned when a blank snippet is added to the knowledge base
var ErrEmptyKnowledge = errors.New("knowledge snippet is empty")

// AddKnowledge appends a snippet to the end of the knowledge base
func (p *Profile) AddKnowledge(snippet string) error {
	if strings.TrimSpace(snippet) == "" {
		return ErrEmptyKnowledge
	}
	p.KnowledgeBase = append(p.KnowledgeBase, snippet)
	return nil
}

// Clone returns a deep copy so callers can mutate without aliasing the knowledge slice
func (p *Profile) Clone() *Profile {
	if p == nil {
		return nil
	}
	c := *p
	if p.KnowledgeBase != nil {
		c.KnowledgeBase = append([]string(nil), p.KnowledgeBase...)
	}
	return &c
}
