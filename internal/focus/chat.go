// ABOUTME: Coach chat and strategy operations for the session
// ABOUTME: The transcript is saved after the user message and again after the reply
package focus

import (
	"context"
	"fmt"
	"strings"

	"github.com/harper/focusflow/internal/llm"
	"github.com/harper/focusflow/internal/models"
)

// ChatTurn is the result of sending one message
type ChatTurn struct {
	User     models.ChatMessage `json:"user" yaml:"user"`
	Reply    models.ChatMessage `json:"reply" yaml:"reply"`
	Fallback bool               `json:"fallback" yaml:"fallback"` // the model failed and Reply holds the fallback text
}

// SendMessage appends the user's message, asks the coach, and appends the reply.
// A model failure produces the fallback reply rather than an error.
// The returned Save is the transcript write that includes the reply.
func (s *Session) SendMessage(ctx context.Context, text string) (ChatTurn, *Save, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return ChatTurn{}, nil, ErrEmptyMessage
	}
	gen, err := s.generator()
	if err != nil {
		return ChatTurn{}, nil, err
	}
	profile, err := s.currentProfile()
	if err != nil {
		return ChatTurn{}, nil, err
	}

	user := models.NewChatMessage(models.RoleUser, text)
	user.Timestamp = s.now().UnixMilli()

	s.mu.Lock()
	history := append([]models.ChatMessage{}, s.chat...)
	tasks := s.tasks.Clone()
	s.saveChatLocked(append(append([]models.ChatMessage{}, s.chat...), user))
	s.mu.Unlock()

	turn := ChatTurn{User: user}
	reply, err := gen.CoachReply(ctx, profile, tasks, history, text)
	if err != nil {
		s.logger.Warn().Err(err).Msg("coach reply failed, using fallback")
		reply = llm.CoachFallback
		turn.Fallback = true
	}
	turn.Reply = models.NewChatMessage(models.RoleModel, reply)
	turn.Reply.Timestamp = s.now().UnixMilli()

	s.mu.Lock()
	defer s.mu.Unlock()
	return turn, s.saveChatLocked(append(append([]models.ChatMessage{}, s.chat...), turn.Reply)), nil
}

// ClearChat empties the transcript
func (s *Session) ClearChat() *Save {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveChatLocked([]models.ChatMessage{})
}

// GenerateStrategy replaces the plan with a new one for goal. The suggested
// tasks are returned for review; AdoptTasks adds the ones the user keeps.
func (s *Session) GenerateStrategy(ctx context.Context, goal string) (*llm.Strategy, *Save, error) {
	goal = strings.TrimSpace(goal)
	if goal == "" {
		return nil, nil, ErrEmptyGoal
	}
	gen, err := s.generator()
	if err != nil {
		return nil, nil, err
	}
	profile, err := s.currentProfile()
	if err != nil {
		return nil, nil, err
	}

	strategy, err := gen.Strategy(ctx, profile, goal)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate strategy: %w", err)
	}
	strategy.Plan.OriginalGoal = goal
	strategy.Plan.AssignResourceIDs()
	strategy.Plan.Stamp(s.now())

	plan := clonePlan(strategy.Plan)
	s.mu.Lock()
	defer s.mu.Unlock()
	return strategy, s.savePlanLocked(&plan), nil
}
