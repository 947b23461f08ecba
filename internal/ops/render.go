package ops

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/yuin/goldmark"

	"github.com/hpungsan/specforge/internal/errors"
	"github.com/hpungsan/specforge/internal/plan"
)

// Export formats
const (
	FormatMarkdown = "markdown"
	FormatHTML     = "html"
	FormatJSON     = "json"
)

// formatExtensions maps each export format to its file extension.
var formatExtensions = map[string]string{
	FormatMarkdown: ".md",
	FormatHTML:     ".html",
	FormatJSON:     ".json",
}

// ParseFormat normalizes a format name. Empty means markdown; "md" is accepted.
func ParseFormat(format string) (string, error) {
	f := strings.ToLower(strings.TrimSpace(format))
	switch f {
	case "", "md":
		return FormatMarkdown, nil
	case FormatMarkdown, FormatHTML, FormatJSON:
		return f, nil
	}
	return "", errors.NewInvalidRequest(fmt.Sprintf("unknown format %q (valid: markdown, html, json)", format))
}

// Render renders a project in the given format.
func Render(p *plan.Project, format string) ([]byte, error) {
	f, err := ParseFormat(format)
	if err != nil {
		return nil, err
	}
	switch f {
	case FormatHTML:
		return RenderHTML(p)
	case FormatJSON:
		data, err := json.MarshalIndent(p, "", "  ")
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		return append(data, '\n'), nil
	default:
		return []byte(RenderMarkdown(p)), nil
	}
}

// RenderMarkdown renders a project as a markdown document: a field list
// followed by the tasks grouped by sprint in task order.
func RenderMarkdown(p *plan.Project) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", p.Name)

	fields := []struct {
		label string
		value *string
	}{
		{"Priority", p.Priority},
		{"Backend", p.BackTech},
		{"Frontend", p.FrontTech},
		{"Cloud", p.CloudTech},
		{"End date", p.EndDate},
	}
	for _, f := range fields {
		if f.value != nil {
			fmt.Fprintf(&b, "- **%s:** %s\n", f.label, *f.value)
		}
	}
	if p.SprintsQuantity != nil {
		fmt.Fprintf(&b, "- **Sprints:** %d\n", *p.SprintsQuantity)
	}
	if p.UpdatedAt != 0 {
		fmt.Fprintf(&b, "- **Updated:** %s\n", formatTime(p.UpdatedAt))
	}

	fmt.Fprintf(&b, "\n## Tasks (%d)\n", len(p.Tasks))
	if len(p.Tasks) == 0 {
		b.WriteString("\n_No tasks._\n")
		return b.String()
	}

	current := ""
	for i, t := range p.Tasks {
		group := "Unscheduled"
		if t.Sprint != nil {
			group = fmt.Sprintf("Sprint %d", *t.Sprint)
		}
		if i == 0 || group != current {
			fmt.Fprintf(&b, "\n### %s\n\n", group)
			current = group
		}

		fmt.Fprintf(&b, "%d. **%s**", i+1, t.Name)
		if t.AssignedTo != nil {
			fmt.Fprintf(&b, " (%s)", *t.AssignedTo)
		}
		b.WriteString("\n")
		if t.Description != nil {
			fmt.Fprintf(&b, "   %s\n", *t.Description)
		}
	}
	return b.String()
}

var htmlPage = template.Must(template.New("page").Parse(`<!DOCTYPE html>
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

// RenderHTML renders the markdown form of a project to a standalone HTML page.
func RenderHTML(p *plan.Project) ([]byte, error) {
	body, err := renderMarkdown(RenderMarkdown(p))
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	var buf bytes.Buffer
	if err := htmlPage.Execute(&buf, struct {
		Title string
		Body  template.HTML
	}{Title: p.Name, Body: body}); err != nil {
		return nil, errors.NewInternal(err)
	}
	return buf.Bytes(), nil
}

// renderMarkdown converts markdown text to HTML using goldmark. The default
// renderer drops raw HTML from the input.
func renderMarkdown(md string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil //nolint:gosec
}

// formatTime formats a Unix timestamp as "2006-01-02 15:04" UTC.
func formatTime(unix int64) string {
	return time.Unix(unix, 0).UTC().Format("2006-01-02 15:04")
}
