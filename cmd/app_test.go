package cmd

import (
	"bytes"
	"context"
	"flag"
	"strings"
	"testing"

	"github.com/google/subcommands"
)

// console captures what commands print.
type console struct {
	out, err bytes.Buffer
}

// setup isolates the commands from the user's environment: a fresh file store,
// mock market data and raw markdown output.
func setup(t *testing.T) *console {
	t.Helper()
	for _, names := range [][]string{envAlphaVantageKey, envNewsKey, envMock, envFirebaseProject, envUser, envStore, envDataDir, envSupabase} {
		for _, n := range names {
			t.Setenv(n, "")
		}
	}

	oldFlags, oldMock, oldConfig, oldRaw := flags, mockFlag, *configFile, *Raw
	oldOut, oldErr := stdout, stderr
	t.Cleanup(func() {
		flags, mockFlag, *configFile, *Raw = oldFlags, oldMock, oldConfig, oldRaw
		stdout, stderr = oldOut, oldErr
	})

	mock := true
	flags = Config{DataDir: t.TempDir(), CacheDir: t.TempDir()}
	mockFlag = optionalBool{v: &mock}
	*configFile = ""
	*Raw = true

	c := new(console)
	stdout, stderr = &c.out, &c.err
	return c
}

// run parses 'args' for 'cmd' and executes it.
func run(t *testing.T, cmd subcommands.Command, args ...string) subcommands.ExitStatus {
	t.Helper()
	f := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	cmd.SetFlags(f)
	if err := f.Parse(args); err != nil {
		t.Fatalf("parsing %v: %v", args, err)
	}
	return cmd.Execute(context.Background(), f)
}

// mustRun runs the command and fails the test unless it succeeds. It returns the output.
func (c *console) mustRun(t *testing.T, cmd subcommands.Command, args ...string) string {
	t.Helper()
	c.out.Reset()
	c.err.Reset()
	if got := run(t, cmd, args...); got != subcommands.ExitSuccess {
		t.Fatalf("%s %v = %v, want success\nstderr: %s", cmd.Name(), args, got, c.err.String())
	}
	return c.out.String()
}

func TestCommands(t *testing.T) {
	seen := make(map[string]bool)
	for _, cmd := range Commands() {
		name := cmd.Name()
		if seen[name] {
			t.Errorf("command %q registered twice", name)
		}
		seen[name] = true
		if !strings.HasPrefix(cmd.Usage(), "pft "+name) {
			t.Errorf("usage of %q must start with 'pft %s', got %q", name, name, cmd.Usage())
		}
		if cmd.Synopsis() == "" {
			t.Errorf("command %q has no synopsis", name)
		}
	}
	for _, cmd := range goalCommands() {
		if !strings.HasPrefix(cmd.Usage(), "pft goal "+cmd.Name()) {
			t.Errorf("usage of goal %q must start with 'pft goal %s'", cmd.Name(), cmd.Name())
		}
	}
}

func TestPositions(t *testing.T) {
	c := setup(t)

	out := c.mustRun(t, &addCmd{}, "-t", "aapl", "-b", "150", "-p", "185.50", "-q", "10")
	if !strings.Contains(out, "## AAPL") {
		t.Errorf("add output does not show the position:\n%s", out)
	}
	c.mustRun(t, &addCmd{}, "-t", "MSFT", "-b", "300", "-q", "2")

	if got := run(t, &addCmd{}, "-t", "AAPL", "-b", "1", "-q", "1"); got != subcommands.ExitFailure {
		t.Errorf("adding a held ticker = %v, want failure", got)
	}
	if !strings.Contains(c.err.String(), "already in your portfolio") {
		t.Errorf("stderr = %q, want the duplicate ticker message", c.err.String())
	}

	c.mustRun(t, &editCmd{}, "-q", "12", "AAPL")
	out = c.mustRun(t, &listCmd{}, "-sort", "ticker", "-asc")
	if i, j := strings.Index(out, "AAPL"), strings.Index(out, "MSFT"); i < 0 || j < 0 || i > j {
		t.Errorf("list -sort ticker -asc must show AAPL before MSFT:\n%s", out)
	}
	if !strings.Contains(out, "12") {
		t.Errorf("list does not show the edited quantity:\n%s", out)
	}

	out = c.mustRun(t, &summaryCmd{})
	if !strings.Contains(out, "# Portfolio Summary") {
		t.Errorf("summary output:\n%s", out)
	}

	out = c.mustRun(t, &removeCmd{}, "msft")
	if !strings.Contains(out, "Removed MSFT") {
		t.Errorf("remove output = %q", out)
	}
	if got := run(t, &removeCmd{}, "MSFT"); got != subcommands.ExitFailure {
		t.Errorf("removing a missing position = %v, want failure", got)
	}
}

func TestPositions_Usage(t *testing.T) {
	setup(t)
	tests := []struct {
		name string
		cmd  subcommands.Command
		args []string
	}{
		{"add without quantity", &addCmd{}, []string{"-t", "AAPL", "-b", "1"}},
		{"add with a bad price", &addCmd{}, []string{"-t", "AAPL", "-b", "abc", "-q", "1"}},
		{"edit without field", &editCmd{}, []string{"AAPL"}},
		{"edit without position", &editCmd{}, []string{"-q", "1"}},
		{"remove without position", &removeCmd{}, nil},
		{"list with a bad sort", &listCmd{}, []string{"-sort", "size"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := run(t, tt.cmd, tt.args...); got != subcommands.ExitUsageError {
				t.Errorf("got %v, want a usage error", got)
			}
		})
	}
}

func TestMarket(t *testing.T) {
	c := setup(t)
	c.mustRun(t, &addCmd{}, "-t", "AAPL", "-b", "150", "-q", "10")

	out := c.mustRun(t, &quoteCmd{}, "AAPL", "IBM")
	for _, want := range []string{"AAPL*", "IBM*", "simulated quote"} {
		if !strings.Contains(out, want) {
			t.Errorf("quote output does not contain %q:\n%s", want, out)
		}
	}

	c.mustRun(t, &refreshCmd{}, "-snapshot")
	c.mustRun(t, &refreshCmd{}, "-snapshot")
	out = c.mustRun(t, &summaryCmd{}, "-history", "5")
	if !strings.Contains(out, "# Portfolio History") {
		t.Errorf("summary -history output:\n%s", out)
	}

	out = c.mustRun(t, &watchCmd{}, "-interval", "1ms", "-n", "2")
	if n := strings.Count(out, "# Holdings"); n != 2 {
		t.Errorf("watch -n 2 displayed the holdings %d times, want 2", n)
	}

	out = c.mustRun(t, &newsCmd{})
	if !strings.Contains(out, "News for AAPL") {
		t.Errorf("news output:\n%s", out)
	}
	out = c.mustRun(t, &newsCmd{}, "-top", "-category", "technology")
	if !strings.Contains(out, "Top technology headlines") {
		t.Errorf("news -top output:\n%s", out)
	}
}

func TestTopic(t *testing.T) {
	c := setup(t)
	if out := c.mustRun(t, &topicCmd{}); !strings.Contains(out, "# pft") {
		t.Errorf("topic output:\n%s", out)
	}
	if out := c.mustRun(t, &topicCmd{}, "goals"); !strings.Contains(out, "# Goals") {
		t.Errorf("topic goals output:\n%s", out)
	}
	if got := run(t, &topicCmd{}, "nope"); got != subcommands.ExitUsageError {
		t.Errorf("unknown topic = %v, want a usage error", got)
	}
}
