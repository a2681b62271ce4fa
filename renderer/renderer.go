// Package renderer formats portfolio reports as markdown.
package renderer

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"text/template"
)

//go:embed templates/*.md
var templates embed.FS

// RenderHoldings renders the holdings report to a markdown string.
func RenderHoldings(h *Holdings) string {
	partials := map[string]string{
		"holdings_title":  "holdings_title.md",
		"holdings_table":  "holdings_table.md",
		"holdings_totals": "holdings_totals.md",
	}
	if len(h.Positions) == 0 {
		// An empty file name results in an empty template.
		partials["holdings_table"] = "holdings_empty.md"
		partials["holdings_totals"] = ""
	}
	return renderTemplate("holdings", "holdings.md", partials, h)
}

// RenderGoals renders the goals report to a markdown string.
func RenderGoals(g *Goals) string {
	partials := map[string]string{
		"goals_table":   "goals_table.md",
		"goals_details": "goals_details.md",
	}
	if len(g.Goals) == 0 {
		partials["goals_table"] = "goals_empty.md"
		partials["goals_details"] = ""
	}
	return renderTemplate("goals", "goals.md", partials, g)
}

// renderTemplate is a generic utility to render a main template that depends on several partials.
func renderTemplate(templateName, mainFile string, partials map[string]string, data any) string {
	mainContent, err := fs.ReadFile(templates, "templates/"+mainFile)
	if err != nil {
		return fmt.Sprintf("error reading main template %q: %v", mainFile, err)
	}

	tmpl, err := template.New(templateName).Parse(string(mainContent))
	if err != nil {
		return fmt.Sprintf("error parsing main template %q: %v", mainFile, err)
	}

	for name, file := range partials {
		var content []byte
		if file != "" {
			var readErr error
			content, readErr = fs.ReadFile(templates, "templates/"+file)
			if readErr != nil {
				return fmt.Sprintf("error reading partial template %q: %v", file, readErr)
			}
		}
		if _, err := tmpl.New(name).Parse(string(content)); err != nil {
			return fmt.Sprintf("error parsing partial template %q for %q: %v", file, name, err)
		}
	}

	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, templateName, data); err != nil {
		return fmt.Sprintf("error executing template %q: %v", templateName, err)
	}
	return b.String()
}
