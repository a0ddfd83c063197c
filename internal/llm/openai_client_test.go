// ABOUTME: Tests for the OpenAI client against a fake chat completions endpoint
// ABOUTME: Checks request shape, structured output decoding and error surfacing
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/harper/focusflow/internal/models"
)

type fakeProvider struct {
	mu       sync.Mutex
	requests []map[string]any
	reply    string
	status   int
	choices  int
}

func (f *fakeProvider) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		f.mu.Lock()
		f.requests = append(f.requests, body)
		f.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		if f.status != 0 && f.status != http.StatusOK {
			w.WriteHeader(f.status)
			_, _ = w.Write([]byte(`{"error":{"message":"upstream unavailable","type":"server_error"}}`))
			return
		}

		choices := []map[string]any{}
		n := f.choices
		if n == 0 {
			n = 1
		}
		if n > 0 {
			choices = append(choices, map[string]any{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": f.reply},
				"finish_reason": "stop",
			})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-test",
			"object":  "chat.completion",
			"created": time.Now().Unix(),
			"model":   "test-model",
			"choices": choices,
		})
	}
}

func (f *fakeProvider) last(t *testing.T) map[string]any {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) == 0 {
		t.Fatal("no request recorded")
	}
	return f.requests[len(f.requests)-1]
}

func newTestClient(t *testing.T, f *fakeProvider) *OpenAIClient {
	t.Helper()
	srv := httptest.NewServer(f.handler(t))
	t.Cleanup(srv.Close)

	c, err := NewOpenAIClientWithConfig(&ClientConfig{
		APIKey:      "test-key",
		BaseURL:     srv.URL + "/v1",
		Model:       "test-model",
		Temperature: 0.7,
		Timeout:     5 * time.Second,
	})
	if err != nil {
		t.Fatalf("NewOpenAIClientWithConfig() error = %v", err)
	}
	return c
}

func messagesOf(t *testing.T, req map[string]any) []map[string]any {
	t.Helper()
	raw, ok := req["messages"].([]any)
	if !ok {
		t.Fatalf("messages missing from request: %v", req)
	}
	out := make([]map[string]any, len(raw))
	for i, m := range raw {
		out[i] = m.(map[string]any)
	}
	return out
}

func TestNewOpenAIClient_RequiresKey(t *testing.T) {
	if _, err := NewOpenAIClient(""); err == nil {
		t.Error("NewOpenAIClient(\"\") should fail")
	}
	c, err := NewOpenAIClient("key")
	if err != nil {
		t.Fatalf("NewOpenAIClient() error = %v", err)
	}
	if c.Model() != DefaultChatModel {
		t.Errorf("Model() = %s, want %s", c.Model(), DefaultChatModel)
	}
}

func TestDailyTasks_StructuredOutput(t *testing.T) {
	f := &fakeProvider{reply: `{"tasks":[
		{"title":"Call supplier","description":"Negotiate","priority":"High","estimatedTimeMin":30},
		{"title":"Post update","description":"LinkedIn","priority":"Low","estimatedTimeMin":15}
	]}`}
	c := newTestClient(t, f)

	tasks, err := c.DailyTasks(context.Background(), testProfile())
	if err != nil {
		t.Fatalf("DailyTasks() error = %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("DailyTasks() returned %d tasks, want 2", len(tasks))
	}
	if tasks[0].Title != "Call supplier" || tasks[0].Priority != models.PriorityHigh || tasks[0].EstimatedTimeMin != 30 {
		t.Errorf("unexpected first task: %+v", tasks[0])
	}
	if tasks[0].ID == tasks[1].ID {
		t.Error("tasks should get distinct ids")
	}

	req := f.last(t)
	if req["model"] != "test-model" {
		t.Errorf("model = %v, want test-model", req["model"])
	}
	format, ok := req["response_format"].(map[string]any)
	if !ok || format["type"] != "json_schema" {
		t.Fatalf("response_format = %v, want json_schema", req["response_format"])
	}
	schema := format["json_schema"].(map[string]any)
	if schema["name"] != "daily_tasks" || schema["strict"] != true {
		t.Errorf("json_schema = %v", schema)
	}

	msgs := messagesOf(t, req)
	if msgs[0]["role"] != "system" || !strings.Contains(msgs[0]["content"].(string), `"SaaS" industry`) {
		t.Errorf("system message = %v", msgs[0])
	}
	if msgs[1]["content"] != dailyTasksRequest {
		t.Errorf("user message = %v", msgs[1])
	}
}

func TestDailyTasks_InvalidJSON(t *testing.T) {
	c := newTestClient(t, &fakeProvider{reply: "Sure! Here are your tasks"})

	_, err := c.DailyTasks(context.Background(), testProfile())
	if err == nil || !strings.Contains(err.Error(), "parse") {
		t.Errorf("DailyTasks() error = %v, want parse failure", err)
	}
}

func TestCoachReply_SendsHistory(t *testing.T) {
	f := &fakeProvider{reply: "- Call the supplier first."}
	c := newTestClient(t, f)

	history := []models.ChatMessage{
		{Role: models.RoleUser, Text: "What should I do?"},
		{Role: models.RoleModel, Text: "Focus on revenue."},
	}
	reply, err := c.CoachReply(context.Background(), testProfile(), nil, history, "And then?")
	if err != nil {
		t.Fatalf("CoachReply() error = %v", err)
	}
	if reply != "- Call the supplier first." {
		t.Errorf("CoachReply() = %q", reply)
	}

	req := f.last(t)
	if _, ok := req["response_format"]; ok {
		t.Error("coach reply should be free text")
	}
	msgs := messagesOf(t, req)
	roles := make([]string, len(msgs))
	for i, m := range msgs {
		roles[i] = m["role"].(string)
	}
	if strings.Join(roles, ",") != "system,user,assistant,user" {
		t.Errorf("roles = %v", roles)
	}
	if msgs[3]["content"] != "And then?" {
		t.Errorf("last message = %v", msgs[3])
	}
}

func TestStrategy_AddsIDsAndGoal(t *testing.T) {
	f := &fakeProvider{reply: `{
		"smartGoal":"Grow MRR 10% in 4 weeks",
		"milestones":[{"week":1,"focus":"Pipeline","action":"Call 10 leads"}],
		"resources":[{"title":"Traction","type":"Book","description":"d","reason":"r"}],
		"immediateTasks":[{"title":"List leads","description":"d","priority":"Medium","estimatedTimeMin":20}]
	}`}
	c := newTestClient(t, f)

	s, err := c.Strategy(context.Background(), testProfile(), "grow")
	if err != nil {
		t.Fatalf("Strategy() error = %v", err)
	}
	if s.Plan.OriginalGoal != "grow" || s.Plan.SmartGoal != "Grow MRR 10% in 4 weeks" {
		t.Errorf("plan = %+v", s.Plan)
	}
	if len(s.Plan.Milestones) != 1 || s.Plan.Milestones[0].Week != 1 {
		t.Errorf("milestones = %+v", s.Plan.Milestones)
	}
	if len(s.Plan.Resources) != 1 || s.Plan.Resources[0].ID == "" || s.Plan.Resources[0].Type != models.ResourceBook {
		t.Errorf("resources = %+v", s.Plan.Resources)
	}
	if len(s.ImmediateTasks) != 1 || s.ImmediateTasks[0].Status != models.StatusPending {
		t.Errorf("immediate tasks = %+v", s.ImmediateTasks)
	}

	msgs := messagesOf(t, f.last(t))
	if msgs[1]["content"] != "Create a strategy for: grow" {
		t.Errorf("user message = %v", msgs[1])
	}
}

func TestExecuteTask(t *testing.T) {
	f := &fakeProvider{reply: "# Email draft\n\nHi there"}
	c := newTestClient(t, f)

	out, err := c.ExecuteTask(context.Background(), testProfile(), models.Task{Title: "Draft email"})
	if err != nil {
		t.Fatalf("ExecuteTask() error = %v", err)
	}
	if out != "# Email draft\n\nHi there" {
		t.Errorf("ExecuteTask() = %q", out)
	}

	f.reply = ""
	out, err = c.ExecuteTask(context.Background(), testProfile(), models.Task{Title: "Draft email"})
	if err != nil {
		t.Fatalf("ExecuteTask() error = %v", err)
	}
	if out != EmptyExecution {
		t.Errorf("ExecuteTask() with empty reply = %q, want %q", out, EmptyExecution)
	}
}

func TestProviderErrorsAreNotRetried(t *testing.T) {
	f := &fakeProvider{status: http.StatusServiceUnavailable}
	c := newTestClient(t, f)

	_, err := c.CoachReply(context.Background(), testProfile(), nil, nil, "hi")
	if err == nil {
		t.Fatal("CoachReply() should fail on 503")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.requests) != 1 {
		t.Errorf("provider called %d times, want exactly 1", len(f.requests))
	}
}

func TestNoChoices(t *testing.T) {
	c := newTestClient(t, &fakeProvider{choices: -1})

	_, err := c.ExecuteTask(context.Background(), testProfile(), models.Task{Title: "x"})
	if !errors.Is(err, ErrNoChoices) {
		t.Errorf("ExecuteTask() error = %v, want ErrNoChoices", err)
	}
}
