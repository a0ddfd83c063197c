// ABOUTME: Shared helpers for CLI commands: output encoding, task lookup, formatting
// ABOUTME: Keeps json/yaml/table handling consistent across commands
package commands

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/harper/focusflow/internal/models"
	"gopkg.in/yaml.v3"
)

// truncate shortens a string to maxLen, adding "..." if truncated
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// formatTime formats a time for display
func formatTime(t time.Time) string {
	diff := time.Since(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	}
	return t.Format("2006-01-02")
}

// structured reports whether output should be machine-readable
func structured() bool {
	return outputFormat == "json" || outputFormat == "yaml"
}

// printStructured writes v as JSON or YAML per --format
func printStructured(w io.Writer, v interface{}) error {
	if outputFormat == "yaml" {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("marshaling YAML: %w", err)
		}
		return enc.Close()
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	_, err = fmt.Fprintf(w, "%s\n", data)
	return err
}

// resolveTask finds a task by 1-based list position, full ID or unique ID prefix
func resolveTask(tasks models.Tasks, ref string) (models.Task, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return models.Task{}, fmt.Errorf("no task matches %q", ref)
	}
	if n, err := strconv.Atoi(ref); err == nil && n >= 1 && n <= len(tasks) && len(ref) < 4 {
		return tasks[n-1], nil
	}
	if i := tasks.Find(ref); i >= 0 {
		return tasks[i], nil
	}

	var match *models.Task
	for i := range tasks {
		if strings.HasPrefix(tasks[i].ID, ref) {
			if match != nil {
				return models.Task{}, fmt.Errorf("task reference %q is ambiguous", ref)
			}
			match = &tasks[i]
		}
	}
	if match == nil {
		return models.Task{}, fmt.Errorf("no task matches %q", ref)
	}
	return *match, nil
}

// shortID is the prefix shown in tables
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// confirm asks a yes/no question on r
func confirm(w io.Writer, r io.Reader, question string) (bool, error) {
	_, _ = fmt.Fprintf(w, "%s [y/N] ", question)
	response, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("failed to read response: %w", err)
	}
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes", nil
}

// say prints unless --quiet
func say(w io.Writer, format string, args ...interface{}) {
	if quiet {
		return
	}
	_, _ = fmt.Fprintf(w, format, args...)
}

// validatePositiveInt returns error if n is not positive
func validatePositiveInt(n int, name string) error {
	if n <= 0 {
		return fmt.Errorf("%s must be positive, got %d", name, n)
	}
	return nil
}
