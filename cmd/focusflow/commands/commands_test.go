// ABOUTME: End-to-end tests running the CLI against a temporary record store
// ABOUTME: Model-backed commands talk to a fake chat completions endpoint

package commands

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/harper/focusflow/internal/export"
	"github.com/harper/focusflow/internal/focus"
	"github.com/harper/focusflow/internal/models"
)

// testDB isolates the environment and returns a fresh database path
func testDB(t *testing.T) string {
	t.Helper()
	for _, key := range []string{"OPENAI_API_KEY", "OPENAI_BASE_URL", "FOCUSFLOW_DB"} {
		t.Setenv(key, "")
	}
	t.Setenv("CHARM_AUTO_SYNC", "false")
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("LOG_FORMAT", "console")
	return filepath.Join(t.TempDir(), "focusflow.db")
}

func runCLI(t *testing.T, db, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--db", db}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, db string, args ...string) string {
	t.Helper()
	out, err := runCLI(t, db, "", args...)
	if err != nil {
		t.Fatalf("focusflow %s: %v", strings.Join(args, " "), err)
	}
	return out
}

func onboard(t *testing.T, db string) {
	t.Helper()
	mustRun(t, db, "onboard", "--business", "Acme Bakery", "--industry", "Food", "--goal", "Open a second shop", "--challenge", "Cash flow")
}

// fakeModel answers every chat completion with reply
func fakeModel(t *testing.T, reply string) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-test",
			"object":  "chat.completion",
			"created": time.Now().Unix(),
			"model":   "test-model",
			"choices": []map[string]any{{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": reply},
				"finish_reason": "stop",
			}},
		})
	}))
	t.Cleanup(srv.Close)
	t.Setenv("OPENAI_API_KEY", "test-key")
	t.Setenv("OPENAI_BASE_URL", srv.URL+"/v1")
}

func TestOnboard_FlagsPersistProfile(t *testing.T) {
	db := testDB(t)

	out := mustRun(t, db, "onboard", "--business", "Acme Bakery", "--industry", "Food", "--goal", "Open a second shop", "--challenge", "Cash flow")
	if !strings.Contains(out, "Welcome, Acme Bakery") {
		t.Errorf("onboard output = %q", out)
	}

	var profile models.Profile
	if err := json.Unmarshal([]byte(mustRun(t, db, "--format", "json", "profile")), &profile); err != nil {
		t.Fatalf("decode profile: %v", err)
	}
	if profile.BusinessName != "Acme Bakery" || profile.MainGoal != "Open a second shop" {
		t.Errorf("profile = %+v", profile)
	}
	if !profile.IsSetup {
		t.Error("profile should be marked set up")
	}
}

func TestOnboard_PromptsForMissingAnswers(t *testing.T) {
	db := testDB(t)

	out, err := runCLI(t, db, "Corner Shop\nRetail\nDouble revenue\n\n", "onboard")
	if err != nil {
		t.Fatalf("onboard: %v", err)
	}
	if !strings.Contains(out, "What's your business called?") {
		t.Errorf("expected prompts, got %q", out)
	}

	mustRun(t, db, "profile", "set", "industry", "Groceries")

	var profile models.Profile
	if err := json.Unmarshal([]byte(mustRun(t, db, "--format", "json", "profile")), &profile); err != nil {
		t.Fatalf("decode profile: %v", err)
	}
	if profile.BusinessName != "Corner Shop" || profile.Industry != "Groceries" {
		t.Errorf("profile = %+v", profile)
	}
}

func TestOnboard_RequiredAnswerMissing(t *testing.T) {
	db := testDB(t)

	_, err := runCLI(t, db, "\n", "onboard")
	if err == nil || !strings.Contains(err.Error(), "required") {
		t.Fatalf("expected required answer error, got %v", err)
	}
}

func TestProfile_NotOnboarded(t *testing.T) {
	db := testDB(t)

	out := mustRun(t, db, "profile")
	if !strings.Contains(out, "No profile found") {
		t.Errorf("profile output = %q", out)
	}
}

func TestProfile_Knowledge(t *testing.T) {
	db := testDB(t)
	onboard(t, db)

	mustRun(t, db, "profile", "knowledge", "add", "Customers", "prefer", "annual", "billing")

	var entries []string
	if err := json.Unmarshal([]byte(mustRun(t, db, "--format", "json", "profile", "knowledge")), &entries); err != nil {
		t.Fatalf("decode knowledge: %v", err)
	}
	if len(entries) != 1 || entries[0] != "Customers prefer annual billing" {
		t.Errorf("knowledge = %v", entries)
	}
}

func listTasks(t *testing.T, db string, extra ...string) models.Tasks {
	t.Helper()
	args := append([]string{"--format", "json", "tasks"}, extra...)
	var tasks models.Tasks
	if err := json.Unmarshal([]byte(mustRun(t, db, args...)), &tasks); err != nil {
		t.Fatalf("decode tasks: %v", err)
	}
	return tasks
}

func TestTasks_Lifecycle(t *testing.T) {
	db := testDB(t)
	onboard(t, db)

	mustRun(t, db, "tasks", "add", "Call the supplier", "-m", "20", "-p", "high")
	mustRun(t, db, "tasks", "add", "Post an update")

	tasks := listTasks(t, db)
	if len(tasks) != 2 {
		t.Fatalf("got %d tasks, want 2", len(tasks))
	}
	if tasks[0].Title != "Call the supplier" || tasks[0].Priority != models.PriorityHigh || tasks[0].EstimatedTimeMin != 20 {
		t.Errorf("first task = %+v", tasks[0])
	}
	if tasks[1].EstimatedTimeMin != models.DefaultManualMinutes || tasks[1].Priority != models.PriorityMedium {
		t.Errorf("second task should use defaults, got %+v", tasks[1])
	}

	out := mustRun(t, db, "tasks", "done", "1")
	if !strings.Contains(out, "Done:") {
		t.Errorf("done output = %q", out)
	}
	if pending := listTasks(t, db, "--pending"); len(pending) != 1 || pending[0].Title != "Post an update" {
		t.Errorf("pending = %+v", pending)
	}

	table := mustRun(t, db, "tasks")
	if !strings.Contains(table, "1/2 done (50%)") {
		t.Errorf("table output = %q", table)
	}

	mustRun(t, db, "tasks", "rm", tasks[1].ID[:8])
	tasks = listTasks(t, db)
	if len(tasks) != 1 || !tasks[0].Completed() {
		t.Errorf("after delete = %+v", tasks)
	}
}

func TestTasks_AddRejectsBadInput(t *testing.T) {
	db := testDB(t)

	if _, err := runCLI(t, db, "", "tasks", "add", "x", "-p", "urgent"); err == nil {
		t.Error("expected invalid priority error")
	}
	if _, err := runCLI(t, db, "", "tasks", "add", "x", "-m", "0"); err == nil {
		t.Error("expected invalid minutes error")
	}
	if _, err := runCLI(t, db, "", "tasks", "done", "1"); err == nil {
		t.Error("expected no task error on empty list")
	}
}

func TestTasks_GenerateWithoutModel(t *testing.T) {
	db := testDB(t)
	onboard(t, db)

	_, err := runCLI(t, db, "", "tasks", "generate")
	if !errors.Is(err, focus.ErrNoGenerator) {
		t.Fatalf("expected ErrNoGenerator, got %v", err)
	}
}

func TestTasks_GenerateWithModel(t *testing.T) {
	db := testDB(t)
	onboard(t, db)
	mustRun(t, db, "tasks", "add", "Old task")

	fakeModel(t, `{"tasks":[{"title":"Email three customers","description":"Ask for reviews","priority":"High","estimatedTimeMin":25}]}`)

	out := mustRun(t, db, "tasks", "generate")
	if !strings.Contains(out, "Email three customers") {
		t.Errorf("generate output = %q", out)
	}

	tasks := listTasks(t, db)
	if len(tasks) != 1 {
		t.Fatalf("generated list should replace the old one, got %+v", tasks)
	}
	if tasks[0].Status != models.StatusPending || tasks[0].EstimatedTimeMin != 25 {
		t.Errorf("generated task = %+v", tasks[0])
	}
}

func TestChat_OneShotWithModel(t *testing.T) {
	db := testDB(t)
	onboard(t, db)
	fakeModel(t, "Focus on repeat customers.")

	out := mustRun(t, db, "chat", "How", "do", "I", "grow?")
	if !strings.Contains(out, "Coach: Focus on repeat customers.") {
		t.Errorf("chat output = %q", out)
	}

	var history []models.ChatMessage
	if err := json.Unmarshal([]byte(mustRun(t, db, "--format", "json", "chat", "history")), &history); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("history = %+v", history)
	}
	if history[0].Role != models.RoleUser || history[0].Text != "How do I grow?" {
		t.Errorf("first message = %+v", history[0])
	}

	mustRun(t, db, "chat", "clear")
	if out := mustRun(t, db, "chat", "history"); !strings.Contains(out, "No messages yet") {
		t.Errorf("history after clear = %q", out)
	}
}

func TestExport_JSONFile(t *testing.T) {
	db := testDB(t)
	onboard(t, db)
	mustRun(t, db, "tasks", "add", "Call the supplier")

	path := filepath.Join(t.TempDir(), "backup.json")
	out := mustRun(t, db, "export", path)
	if !strings.Contains(out, "Exported to") {
		t.Errorf("export output = %q", out)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var data export.Data
	if err := json.Unmarshal(raw, &data); err != nil {
		t.Fatalf("decode export: %v", err)
	}
	if data.Tool != "focusflow" || data.Profile == nil || data.Profile.BusinessName != "Acme Bakery" {
		t.Errorf("export = %+v", data)
	}
	if len(data.Tasks) != 1 || len(data.Chat) != 0 {
		t.Errorf("export tasks/chat = %d/%d", len(data.Tasks), len(data.Chat))
	}
}

func TestExport_MarkdownStdout(t *testing.T) {
	db := testDB(t)
	onboard(t, db)

	out := mustRun(t, db, "export")
	if !strings.Contains(out, "# FocusFlow Export - Acme Bakery") {
		t.Errorf("markdown export = %q", out)
	}
}

func TestReset(t *testing.T) {
	db := testDB(t)
	onboard(t, db)
	mustRun(t, db, "tasks", "add", "Call the supplier")

	out, err := runCLI(t, db, "n\n", "reset")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Reset cancelled") {
		t.Errorf("declined reset output = %q", out)
	}
	if len(listTasks(t, db)) != 1 {
		t.Fatal("declined reset should keep data")
	}

	mustRun(t, db, "reset", "--yes")

	if out := mustRun(t, db, "profile"); !strings.Contains(out, "No profile found") {
		t.Errorf("profile after reset = %q", out)
	}
	if tasks := listTasks(t, db); len(tasks) != 0 {
		t.Errorf("tasks after reset = %+v", tasks)
	}
}
