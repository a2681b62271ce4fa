package docs

import (
	"bufio"
	"os"
	"regexp"
	"slices"
	"strings"
	"testing"
)

// readmeTopics returns the topics listed in the readme as "* name: description".
func readmeTopics(t *testing.T) []string {
	t.Helper()
	file, err := os.Open(Readme + ".md")
	if err != nil {
		t.Fatalf("failed to open readme: %v", err)
	}
	defer file.Close()

	item := regexp.MustCompile(`^\*\s+([^:]+):`)
	var topics []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if m := item.FindStringSubmatch(scanner.Text()); m != nil {
			topics = append(topics, strings.TrimSpace(m[1]))
		}
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("error scanning readme: %v", err)
	}
	return topics
}

func TestReadmeListsEveryTopic(t *testing.T) {
	listed := readmeTopics(t)
	for _, topic := range listed {
		if _, err := Topic(topic); err != nil {
			t.Errorf("readme lists %q: %v", topic, err)
		}
	}
	for _, topic := range List() {
		if !slices.Contains(listed, topic) {
			t.Errorf("topic %q is missing from the readme", topic)
		}
	}
}

func TestTopics(t *testing.T) {
	tests := []struct {
		names   []string
		want    string
		wantErr bool
	}{
		{names: []string{"goals"}, want: "# Goals"},
		{names: []string{"GOALS"}, want: "# Goals"},
		{names: []string{"readme", "storage"}, want: "# Storage"},
		{names: []string{"*"}, want: "# Import and export"},
		{names: []string{"nope"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.names, ","), func(t *testing.T) {
			got, err := Topics(tt.names...)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Topics(%v) error = %v, wantErr %v", tt.names, err, tt.wantErr)
			}
			if !strings.Contains(got, tt.want) {
				t.Errorf("Topics(%v) does not contain %q", tt.names, tt.want)
			}
		})
	}
}

func TestList(t *testing.T) {
	got := List()
	if slices.Contains(got, Readme) {
		t.Errorf("List() = %v, must not contain the readme", got)
	}
	if !slices.IsSorted(got) {
		t.Errorf("List() = %v, want sorted", got)
	}
}
