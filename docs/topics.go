// Package docs embeds the user documentation displayed by 'pft topic'.
package docs

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

//go:embed *.md
var files embed.FS

// Readme is the topic listing every other topic.
const Readme = "readme"

// Topic returns the markdown of a topic.
func Topic(name string) (string, error) {
	content, err := files.ReadFile(strings.ToLower(name) + ".md")
	if err != nil {
		return "", fmt.Errorf("unknown topic %q: see 'pft topic' for the list", name)
	}
	return string(content), nil
}

// Topics concatenates topics. "*" expands to every topic but the readme.
func Topics(names ...string) (string, error) {
	var b strings.Builder
	for _, name := range names {
		expanded := []string{name}
		if name == "*" {
			expanded = List()
		}
		for _, n := range expanded {
			content, err := Topic(n)
			if err != nil {
				return "", err
			}
			b.WriteString(content)
			b.WriteString("\n")
		}
	}
	return b.String(), nil
}

// List returns the sorted topic names, readme excluded.
func List() []string {
	entries, _ := fs.Glob(files, "*.md")
	var names []string
	for _, e := range entries {
		if name := strings.TrimSuffix(e, ".md"); name != Readme {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
