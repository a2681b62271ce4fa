package cmd

import (
	"context"
	"flag"
	"os"
	"strings"

	"github.com/etnz/folio/agent"
	"github.com/google/subcommands"
	"google.golang.org/genai"
)

type assistCmd struct{}

func (*assistCmd) Name() string     { return "assist" }
func (*assistCmd) Synopsis() string { return "chat with the AI assistant about the portfolio" }
func (*assistCmd) Usage() string {
	return `pft assist [<question>]

  Starts an interactive session with the Gemini assistant. It reads the holdings,
  the goals and the quotes, and searches the news. Type 'bye' to exit.
  The Gemini client reads its key from GEMINI_API_KEY or GOOGLE_API_KEY.

Usage Examples:
$ pft assist which position lost the most
`
}

func (*assistCmd) SetFlags(_ *flag.FlagSet) {}

func (c *assistCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := open(ctx)
	if err != nil {
		return fail(err)
	}
	defer a.Close()

	client, err := genai.NewClient(ctx, nil)
	if err != nil {
		return fail(err)
	}

	w := &agent.Workspace{
		Portfolio: a.portfolio,
		Feed:      a.feed(),
		Quotes:    a.quotes(),
		Now:       a.now,
	}
	assistant := agent.New(stdout, os.Stdin, agent.NewAnalyst(w), agent.NewNewsroom(w))
	assistant.Render = renderMarkdown

	var prompts []string
	if f.NArg() > 0 {
		prompts = append(prompts, strings.Join(f.Args(), " "))
	}
	if err := assistant.Run(ctx, client, prompts...); err != nil {
		return fail(err)
	}
	return subcommands.ExitSuccess
}
