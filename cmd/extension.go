package cmd

import (
	"errors"
	"fmt"
	"log"
	"os"
	"os/exec"
	"strconv"
)

// Variables set for extensions, from the resolved configuration.
const (
	EnvExtStore   = "FOLIO_STORE"
	EnvExtUser    = "FOLIO_USER"
	EnvExtDataDir = "FOLIO_DATA_DIR"
	EnvExtMock    = "FOLIO_MOCK_DATA"
	EnvExtVerbose = "FOLIO_VERBOSE"
)

// RunExtension looks for a pft-<subcommand> executable in the PATH and runs it with 'args'.
// It reports whether an extension was found, and its exit code.
func RunExtension(subcommand string, args []string) (bool, int) {
	name := "pft-" + subcommand
	path, err := exec.LookPath(name)
	if err != nil {
		log.Printf("no extension %q in PATH: %v", name, err)
		return false, 0
	}

	cfg, err := LoadConfig()
	if err != nil {
		fmt.Fprintln(stderr, "Error:", UserMessage(err))
		return true, 1
	}

	cmd := exec.Command(path, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	cmd.Env = append(os.Environ(),
		EnvExtStore+"="+cfg.Store,
		EnvExtUser+"="+cfg.User,
		EnvExtDataDir+"="+cfg.DataDir,
		EnvExtVerbose+"="+strconv.FormatBool(*Verbose),
	)
	if cfg.Mock != nil {
		cmd.Env = append(cmd.Env, EnvExtMock+"="+strconv.FormatBool(*cfg.Mock))
	}

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return true, exitErr.ExitCode()
		}
		fmt.Fprintf(stderr, "Error: running extension %q: %v\n", name, err)
		return true, 1
	}
	return true, 0
}
