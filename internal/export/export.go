// ABOUTME: Export of the profile, tasks, chat and plan to JSON, YAML, Markdown or HTML
// ABOUTME: HTML is the Markdown rendering passed through goldmark
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/harper/focusflow/internal/focus"
	"github.com/harper/focusflow/internal/models"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"gopkg.in/yaml.v3"
)

// Version of the export document layout
const Version = "1.0"

// Format is an export encoding
type Format string

const (
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
)

// Formats lists the supported formats
var Formats = []Format{FormatJSON, FormatYAML, FormatMarkdown, FormatHTML}

// ParseFormat accepts a format name or common alias
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "html", "htm":
		return FormatHTML, nil
	}
	return "", fmt.Errorf("unknown export format %q (use json, yaml, markdown or html)", s)
}

// FormatForPath picks a format from the file extension
func FormatForPath(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", fmt.Errorf("cannot infer format from %q; pass --format", path)
	}
	return ParseFormat(ext)
}

// Data is the complete exportable document
type Data struct {
	Version    string                `json:"version" yaml:"version"`
	ExportedAt string                `json:"exportedAt" yaml:"exportedAt"`
	Tool       string                `json:"tool" yaml:"tool"`
	Profile    *models.Profile       `json:"profile,omitempty" yaml:"profile,omitempty"`
	Tasks      models.Tasks          `json:"tasks" yaml:"tasks"`
	Chat       []models.ChatMessage  `json:"chat" yaml:"chat"`
	Plan       *models.StrategicPlan `json:"plan,omitempty" yaml:"plan,omitempty"`
}

// FromSnapshot builds an export document from session state
func FromSnapshot(snap focus.Snapshot, now time.Time) *Data {
	d := &Data{
		Version:    Version,
		ExportedAt: now.UTC().Format(time.RFC3339),
		Tool:       "focusflow",
		Profile:    snap.Profile,
		Tasks:      snap.Tasks,
		Chat:       snap.Chat,
		Plan:       snap.Plan,
	}
	if d.Tasks == nil {
		d.Tasks = models.Tasks{}
	}
	if d.Chat == nil {
		d.Chat = []models.ChatMessage{}
	}
	return d
}

// Write encodes d to w in the given format
func Write(w io.Writer, d *Data, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(d); err != nil {
			return fmt.Errorf("failed to encode JSON: %w", err)
		}
		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(d); err != nil {
			return fmt.Errorf("failed to encode YAML: %w", err)
		}
		return enc.Close()
	case FormatMarkdown:
		_, err := io.WriteString(w, Markdown(d))
		return err
	case FormatHTML:
		return writeHTML(w, d)
	}
	return fmt.Errorf("unknown export format %q", format)
}

// WriteFile writes d to path, creating parent directories
func WriteFile(path string, d *Data, format Format) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	file, err := os.Create(path) // #nosec G304
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := Write(file, d, format); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

// Markdown renders d as a readable report
func Markdown(d *Data) string {
	var b strings.Builder
	title := "FocusFlow Export"
	if d.Profile != nil && d.Profile.BusinessName != "" {
		title += " - " + d.Profile.BusinessName
	}
	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "Generated: %s\n\n", d.ExportedAt)

	if p := d.Profile; p != nil {
		b.WriteString("## Profile\n\n")
		fmt.Fprintf(&b, "- **Business:** %s\n", p.BusinessName)
		fmt.Fprintf(&b, "- **Industry:** %s\n", p.Industry)
		fmt.Fprintf(&b, "- **Main goal:** %s\n", p.MainGoal)
		if p.BiggestChallenge != "" {
			fmt.Fprintf(&b, "- **Biggest challenge:** %s\n", p.BiggestChallenge)
		}
		b.WriteString("\n")
		if len(p.KnowledgeBase) > 0 {
			b.WriteString("### Knowledge Base\n\n")
			for _, k := range p.KnowledgeBase {
				fmt.Fprintf(&b, "- %s\n", strings.ReplaceAll(k, "\n", " "))
			}
			b.WriteString("\n")
		}
	}

	if len(d.Tasks) > 0 {
		fmt.Fprintf(&b, "## Tasks (%d/%d done)\n\n", d.Tasks.CompletedCount(), len(d.Tasks))
		b.WriteString("| Done | Task | Priority | Minutes |\n")
		b.WriteString("|------|------|----------|---------|\n")
		for _, t := range d.Tasks {
			done := " "
			if t.Completed() {
				done = "x"
			}
			fmt.Fprintf(&b, "| [%s] | %s | %s | %d |\n", done, escapeCell(t.Title), t.Priority, t.EstimatedTimeMin)
		}
		b.WriteString("\n")
		for _, t := range d.Tasks {
			if t.AIExecutionResult == "" {
				continue
			}
			fmt.Fprintf(&b, "### %s\n\n%s\n\n", t.Title, t.AIExecutionResult)
		}
	}

	if p := d.Plan; p != nil {
		b.WriteString("## Strategic Plan\n\n")
		fmt.Fprintf(&b, "**Goal:** %s\n\n", p.OriginalGoal)
		fmt.Fprintf(&b, "**SMART goal:** %s\n\n", p.SmartGoal)
		for _, m := range p.Milestones {
			fmt.Fprintf(&b, "- **Week %d: %s** %s\n", m.Week, m.Focus, m.Action)
		}
		if len(p.Resources) > 0 {
			b.WriteString("\n### Resources\n\n")
			for _, r := range p.Resources {
				fmt.Fprintf(&b, "- **%s** (%s): %s\n", r.Title, r.Type, r.Description)
			}
		}
		b.WriteString("\n")
	}

	if len(d.Chat) > 0 {
		b.WriteString("## Coach Chat\n\n")
		for _, m := range d.Chat {
			who := "You"
			if m.Role == models.RoleModel {
				who = "Coach"
			}
			fmt.Fprintf(&b, "**%s:** %s\n\n", who, m.Text)
		}
	}
	return b.String()
}

func escapeCell(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "|", `\|`), "\n", " ")
}

var markdown = goldmark.New(goldmark.WithExtensions(extension.Table, extension.TaskList))

// RenderHTML converts Markdown to an HTML fragment
func RenderHTML(md string) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(md), &buf); err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return buf.String(), nil
}

var page = template.Must(template.New("export").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
</head>
<body>
{{.Body}}
</body>
</html>
`))

func writeHTML(w io.Writer, d *Data) error {
	body, err := RenderHTML(Markdown(d))
	if err != nil {
		return err
	}
	title := "FocusFlow Export"
	if d.Profile != nil && d.Profile.BusinessName != "" {
		title += " - " + d.Profile.BusinessName
	}
	// goldmark escapes raw HTML by default, so the body is safe to embed
	return page.Execute(w, struct {
		Title string
		Body  template.HTML
	}{Title: title, Body: template.HTML(body)}) // #nosec G203
}
