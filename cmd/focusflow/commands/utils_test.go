// ABOUTME: Tests for shared CLI utility functions
// ABOUTME: Covers truncation, relative times and task references

package commands

import (
	"strings"
	"testing"
	"time"

	"github.com/harper/focusflow/internal/models"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		input  string
		maxLen int
		want   string
	}{
		{"short", 10, "short"},
		{"exactly ten", 11, "exactly ten"},
		{"this is a long string", 10, "this is..."},
		{"héllo wörld", 8, "héllo..."},
		{"abcdef", 3, "abc"},
	}

	for _, tt := range tests {
		if got := truncate(tt.input, tt.maxLen); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.want)
		}
	}
}

func TestFormatTime(t *testing.T) {
	now := time.Now()
	tests := []struct {
		t    time.Time
		want string
	}{
		{now.Add(-10 * time.Second), "just now"},
		{now.Add(-5 * time.Minute), "5m ago"},
		{now.Add(-3 * time.Hour), "3h ago"},
		{now.Add(-2 * 24 * time.Hour), "2d ago"},
	}
	for _, tt := range tests {
		if got := formatTime(tt.t); got != tt.want {
			t.Errorf("formatTime(%v) = %q, want %q", tt.t, got, tt.want)
		}
	}

	old := time.Date(2020, 5, 17, 0, 0, 0, 0, time.Local)
	if got := formatTime(old); got != "2020-05-17" {
		t.Errorf("formatTime(old) = %q", got)
	}
}

func TestResolveTask(t *testing.T) {
	tasks := models.Tasks{
		{ID: "aaaa1111-0000", Title: "First"},
		{ID: "aaaa2222-0000", Title: "Second"},
		{ID: "bbbb3333-0000", Title: "Third"},
	}

	tests := []struct {
		ref     string
		want    string
		wantErr string
	}{
		{"1", "First", ""},
		{"3", "Third", ""},
		{"bbbb", "Third", ""},
		{"aaaa2222-0000", "Second", ""},
		{"aaaa", "", "ambiguous"},
		{"zzz", "", "no task matches"},
		{"4", "", "no task matches"},
		{"", "", "no task matches"},
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			got, err := resolveTask(tasks, tt.ref)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("resolveTask(%q) error = %v, want %q", tt.ref, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("resolveTask(%q) error = %v", tt.ref, err)
			}
			if got.Title != tt.want {
				t.Errorf("resolveTask(%q) = %q, want %q", tt.ref, got.Title, tt.want)
			}
		})
	}
}

func TestValidatePositiveInt(t *testing.T) {
	if err := validatePositiveInt(5, "n"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := validatePositiveInt(0, "n"); err == nil {
		t.Error("expected error for 0")
	}
}

func TestShortID(t *testing.T) {
	if got := shortID("0123456789"); got != "01234567" {
		t.Errorf("shortID = %q", got)
	}
	if got := shortID("abc"); got != "abc" {
		t.Errorf("shortID = %q", got)
	}
}
