// ABOUTME: MCP tool definitions and registration for the FocusFlow server
// ABOUTME: Exposes the profile, task list, knowledge base, plan and coach to agents
package mcp

import (
	"github.com/harper/focusflow/internal/focus"
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
)

func str(desc string) map[string]interface{} {
	return map[string]interface{}{"type": "string", "description": desc}
}

func noArgs() mcp.ToolInputSchema {
	return mcp.ToolInputSchema{Type: "object", Properties: map[string]interface{}{}}
}

// RegisterTools registers all MCP tools with the server
func RegisterTools(server *mcpserver.MCPServer, session *focus.Session, logger zerolog.Logger) *Handlers {
	h := NewHandlers(session, logger)

	server.AddTool(mcp.Tool{
		Name:        "get_profile",
		Description: "Get the business profile and knowledge base.",
		InputSchema: noArgs(),
	}, h.GetProfile)

	server.AddTool(mcp.Tool{
		Name:        "update_profile",
		Description: "Change one profile field: businessName, industry, mainGoal or biggestChallenge.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"field": str("Profile field to change"),
				"value": str("New value"),
			},
			Required: []string{"field", "value"},
		},
	}, h.UpdateProfile)

	server.AddTool(mcp.Tool{
		Name:        "list_tasks",
		Description: "List today's tasks with status, priority and estimated minutes.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"status": map[string]interface{}{
					"type":        "string",
					"description": "Only tasks with this status",
					"enum":        []string{"PENDING", "COMPLETED"},
				},
			},
		},
	}, h.ListTasks)

	server.AddTool(mcp.Tool{
		Name:        "add_task",
		Description: "Add a task to the end of today's list.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"title": str("Task title"),
				"minutes": map[string]interface{}{
					"type":        "number",
					"description": "Estimated minutes (default: 15)",
					"default":     15,
				},
				"priority": map[string]interface{}{
					"type":        "string",
					"description": "Task priority (default: Medium)",
					"enum":        []string{"High", "Medium", "Low"},
				},
			},
			Required: []string{"title"},
		},
	}, h.AddTask)

	server.AddTool(mcp.Tool{
		Name:        "toggle_task",
		Description: "Mark a task completed, or pending again if it was completed.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"id": str("Task ID")},
			Required:   []string{"id"},
		},
	}, h.ToggleTask)

	server.AddTool(mcp.Tool{
		Name:        "delete_task",
		Description: "Remove a task from the list.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"id": str("Task ID")},
			Required:   []string{"id"},
		},
	}, h.DeleteTask)

	server.AddTool(mcp.Tool{
		Name:        "save_knowledge",
		Description: "Append a snippet to the knowledge base used as context for every generation.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"snippet": str("Text to remember")},
			Required:   []string{"snippet"},
		},
	}, h.SaveKnowledge)

	server.AddTool(mcp.Tool{
		Name:        "get_plan",
		Description: "Get the current strategic plan: SMART goal, weekly milestones and resources.",
		InputSchema: noArgs(),
	}, h.GetPlan)

	server.AddTool(mcp.Tool{
		Name:        "get_chat_history",
		Description: "Get the coach chat transcript, oldest first.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"limit": map[string]interface{}{
					"type":        "number",
					"description": "Only the most recent N messages (default: all)",
				},
			},
		},
	}, h.GetChatHistory)

	server.AddTool(mcp.Tool{
		Name:        "generate_tasks",
		Description: "Replace today's list with freshly generated tasks for the business.",
		InputSchema: noArgs(),
	}, h.GenerateTasks)

	server.AddTool(mcp.Tool{
		Name:        "ask_coach",
		Description: "Send a message to the business coach and get the reply. Both are saved to the transcript.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{"message": str("Message to the coach")},
			Required:   []string{"message"},
		},
	}, h.AskCoach)

	return h
}
