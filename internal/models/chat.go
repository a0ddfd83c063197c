// ABOUTME: ChatMessage represents one turn of the coach conversation
// ABOUTME: The transcript is persisted whole after every appended message
package models

import (
	"time"

	"github.com/google/uuid"
)

// Role identifies who wrote a chat message
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// ChatMessage is a single message in the coach transcript
type ChatMessage struct {
	ID        string `json:"id" yaml:"id"`
	Role      Role   `json:"role" yaml:"role"`
	Text      string `json:"text" yaml:"text"`
	Timestamp int64  `json:"timestamp" yaml:"timestamp"`
}

// NewChatMessage stamps a message with a new id and the current time in milliseconds
func NewChatMessage(role Role, text string) ChatMessage {
	return ChatMessage{
		ID:        uuid.New().String(),
		Role:      role,
		Text:      text,
		Timestamp: time.Now().UnixMilli(),
	}
}

// Time converts the millisecond timestamp
func (m ChatMessage) Time() time.Time {
	return time.UnixMilli(m.Timestamp)
}
