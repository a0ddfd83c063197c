// ABOUTME: MCP tool handler implementations over a focus Session
// ABOUTME: Writes wait for their Save so agents see persistence failures
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/harper/focusflow/internal/focus"
	"github.com/harper/focusflow/internal/models"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/rs/zerolog"
)

// Handlers contains the handler functions for all MCP tools
type Handlers struct {
	session *focus.Session
	logger  zerolog.Logger
}

// NewHandlers creates handlers over session
func NewHandlers(session *focus.Session, logger zerolog.Logger) *Handlers {
	return &Handlers{
		session: session,
		logger:  logger.With().Str("component", "mcp").Logger(),
	}
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

// committed waits for a save and turns a failure into a tool error
func (h *Handlers) committed(ctx context.Context, tool string, save *focus.Save, v interface{}) (*mcp.CallToolResult, error) {
	if err := save.Wait(ctx); err != nil {
		h.logger.Warn().Err(err).Str("tool", tool).Msg("save failed")
		return mcp.NewToolResultError(fmt.Sprintf("change was not saved: %v", err)), nil
	}
	return jsonResult(v)
}

// GetProfile handles the get_profile tool
func (h *Handlers) GetProfile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	profile := h.session.Snapshot().Profile
	if profile == nil {
		return jsonResult(map[string]interface{}{"profile": nil, "isSetup": false})
	}
	return jsonResult(map[string]interface{}{"profile": profile, "isSetup": profile.IsSetup})
}

// UpdateProfile handles the update_profile tool
func (h *Handlers) UpdateProfile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	field, err := request.RequireString("field")
	if err != nil {
		return mcp.NewToolResultError("field argument is required and must be a string"), nil
	}
	value, err := request.RequireString("value")
	if err != nil {
		return mcp.NewToolResultError("value argument is required and must be a string"), nil
	}

	save, err := h.session.UpdateProfile(func(p *models.Profile) error {
		return p.Set(field, value)
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return h.committed(ctx, "update_profile", save, map[string]interface{}{
		"success": true,
		"profile": h.session.Snapshot().Profile,
	})
}

// ListTasks handles the list_tasks tool
func (h *Handlers) ListTasks(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	status := models.TaskStatus(request.GetString("status", ""))
	tasks := h.session.Snapshot().Tasks

	out := make(models.Tasks, 0, len(tasks))
	for _, t := range tasks {
		if status == "" || t.Status == status {
			out = append(out, t)
		}
	}
	return jsonResult(map[string]interface{}{
		"tasks":     out,
		"completed": tasks.CompletedCount(),
		"total":     len(tasks),
		"progress":  tasks.Progress(),
	})
}

// AddTask handles the add_task tool
func (h *Handlers) AddTask(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := request.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError("title argument is required and must be a string"), nil
	}
	priority := models.PriorityMedium
	if raw := request.GetString("priority", ""); raw != "" {
		p, err := models.ParsePriority(raw)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		priority = p
	}

	task, save, err := h.session.AddTask(focus.TaskInput{
		Title:    title,
		Minutes:  request.GetInt("minutes", models.DefaultManualMinutes),
		Priority: priority,
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return h.committed(ctx, "add_task", save, map[string]interface{}{"task": task})
}

// ToggleTask handles the toggle_task tool
func (h *Handlers) ToggleTask(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("id argument is required and must be a string"), nil
	}
	task, save, err := h.session.ToggleTask(id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return h.committed(ctx, "toggle_task", save, map[string]interface{}{"task": task})
}

// DeleteTask handles the delete_task tool
func (h *Handlers) DeleteTask(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("id argument is required and must be a string"), nil
	}
	save, err := h.session.DeleteTask(id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return h.committed(ctx, "delete_task", save, map[string]interface{}{"success": true, "id": id})
}

// SaveKnowledge handles the save_knowledge tool
func (h *Handlers) SaveKnowledge(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	snippet, err := request.RequireString("snippet")
	if err != nil {
		return mcp.NewToolResultError("snippet argument is required and must be a string"), nil
	}
	save, err := h.session.AddKnowledge(snippet)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	count := 0
	if p := h.session.Snapshot().Profile; p != nil {
		count = len(p.KnowledgeBase)
	}
	return h.committed(ctx, "save_knowledge", save, map[string]interface{}{"success": true, "entries": count})
}

// GetPlan handles the get_plan tool
func (h *Handlers) GetPlan(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(map[string]interface{}{"plan": h.session.Snapshot().Plan})
}

// GetChatHistory handles the get_chat_history tool
func (h *Handlers) GetChatHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	chat := h.session.Snapshot().Chat
	if limit := request.GetInt("limit", 0); limit > 0 && limit < len(chat) {
		chat = chat[len(chat)-limit:]
	}
	return jsonResult(map[string]interface{}{"messages": chat})
}

// GenerateTasks handles the generate_tasks tool
func (h *Handlers) GenerateTasks(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tasks, save, err := h.session.GenerateTasks(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return h.committed(ctx, "generate_tasks", save, map[string]interface{}{"tasks": tasks})
}

// AskCoach handles the ask_coach tool
func (h *Handlers) AskCoach(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	message, err := request.RequireString("message")
	if err != nil {
		return mcp.NewToolResultError("message argument is required and must be a string"), nil
	}
	turn, save, err := h.session.SendMessage(ctx, message)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return h.committed(ctx, "ask_coach", save, map[string]interface{}{
		"reply":    turn.Reply.Text,
		"fallback": turn.Fallback,
	})
}

// Shutdown waits for outstanding saves before the process exits
func (h *Handlers) Shutdown(ctx context.Context) error {
	h.logger.Debug().Int("pending", h.session.Pending()).Msg("flushing saves")
	return h.session.Flush(ctx)
}
