package cmd

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/charmbracelet/glamour"
)

var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// renderMarkdown formats 'md' for the terminal, unless raw output is requested.
func renderMarkdown(md string) string {
	if *Raw {
		return md
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(120))
	if err != nil {
		log.Printf("creating markdown renderer: %v", err)
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		log.Printf("rendering markdown: %v", err)
		return md
	}
	return out
}

func printMarkdown(md string) {
	fmt.Fprint(stdout, renderMarkdown(md))
}
