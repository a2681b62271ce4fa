// Command pft tracks a stock portfolio from the terminal.
package main

import (
	"context"
	"flag"
	"io"
	"log"
	"os"

	"github.com/etnz/folio/cmd"
	"github.com/google/subcommands"
)

func main() {
	// exits when invoked by the shell for completion, or with COMP_INSTALL=1.
	cmd.Completion().Complete("pft")

	commander := subcommands.NewCommander(flag.CommandLine, "pft")
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	cmd.Register(commander)

	flag.Parse()
	if !*cmd.Verbose {
		log.SetOutput(io.Discard)
	}

	if name := flag.Arg(0); name != "" && !registered(name) {
		if found, code := cmd.RunExtension(name, flag.Args()[1:]); found {
			os.Exit(code)
		}
	}
	os.Exit(int(commander.Execute(context.Background())))
}

func registered(name string) bool {
	switch name {
	case "help", "flags", "commands":
		return true
	}
	for _, c := range cmd.Commands() {
		if c.Name() == name {
			return true
		}
	}
	return false
}
