package cmd

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// writeExtension installs an executable shell script named 'name' in a PATH directory.
func writeExtension(t *testing.T, name, script string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script extensions need a unix shell")
	}
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, name), []byte("#!/bin/sh\n"+script), 0o755); err != nil {
		t.Fatalf("writing extension: %v", err)
	}
	t.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))
}

func TestRunExtension(t *testing.T) {
	c := setup(t)
	writeExtension(t, "pft-hello", `echo "store=$FOLIO_STORE user=$FOLIO_USER args=$*"`)
	flags.User = "alice"

	found, code := RunExtension("hello", []string{"a", "b"})
	if !found || code != 0 {
		t.Fatalf("RunExtension() = %v, %d, want true, 0", found, code)
	}
	want := "store=file user=alice args=a b"
	if got := strings.TrimSpace(c.out.String()); got != want {
		t.Errorf("extension output = %q, want %q", got, want)
	}
}

func TestRunExtension_ExitCode(t *testing.T) {
	setup(t)
	writeExtension(t, "pft-failing", "exit 3\n")

	found, code := RunExtension("failing", nil)
	if !found || code != 3 {
		t.Errorf("RunExtension() = %v, %d, want true, 3", found, code)
	}
}

func TestRunExtension_Missing(t *testing.T) {
	setup(t)
	if found, _ := RunExtension("does-not-exist-anywhere", nil); found {
		t.Error("RunExtension() found a missing extension")
	}
}
