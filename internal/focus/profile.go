// ABOUTME: Onboarding and profile edits for the session
// ABOUTME: Every change replaces the whole profile document
package focus

import (
	"github.com/harper/focusflow/internal/models"
)

// CompleteOnboarding stores the answers from onboarding as a set-up profile.
// An existing knowledge base is kept.
func (s *Session) CompleteOnboarding(answers models.Profile) (*Save, error) {
	next := answers.Clone()
	next.IsSetup = true
	if err := next.Validate(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.profile != nil && len(next.KnowledgeBase) == 0 {
		next.KnowledgeBase = append([]string(nil), s.profile.KnowledgeBase...)
	}
	return s.saveProfileLocked(next), nil
}

// UpdateProfile applies fn to a copy of the profile and saves the result if it validates.
func (s *Session) UpdateProfile(fn func(*models.Profile) error) (*Save, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.profile == nil || !s.profile.IsSetup {
		return nil, ErrNotOnboarded
	}

	next := s.profile.Clone()
	if err := fn(next); err != nil {
		return nil, err
	}
	if err := next.Validate(); err != nil {
		return nil, err
	}
	return s.saveProfileLocked(next), nil
}

// AddKnowledge appends a snippet to the profile's knowledge base
func (s *Session) AddKnowledge(snippet string) (*Save, error) {
	return s.UpdateProfile(func(p *models.Profile) error {
		return p.AddKnowledge(snippet)
	})
}
