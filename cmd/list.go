package cmd

import (
	"context"
	"flag"

	"github.com/etnz/folio"
	"github.com/etnz/folio/renderer"
	"github.com/google/subcommands"
)

type listCmd struct {
	sort string
	asc  bool
}

func (*listCmd) Name() string     { return "list" }
func (*listCmd) Synopsis() string { return "display the holdings of the portfolio" }
func (*listCmd) Usage() string {
	return `pft list [-sort value|profit|percent|ticker|allocation] [-asc]

  Displays every position with its market value, profit or loss and allocation.
  The order defaults to the one saved in the settings.
`
}

func (c *listCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.sort, "sort", "", "sort column: value, profit, percent, ticker or allocation")
	f.BoolVar(&c.asc, "asc", false, "sort in ascending order")
}

func (c *listCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := open(ctx)
	if err != nil {
		return fail(err)
	}
	defer a.Close()

	key, desc := a.settings.SortBy, a.settings.SortDesc
	if c.sort != "" {
		if key, err = folio.ParseSortKey(c.sort); err != nil {
			return usage("%v", err)
		}
		desc = !c.asc
	} else if c.asc {
		desc = false
	}

	h := renderer.NewHoldings(a.portfolio.Currency(), a.portfolio.Stocks(), key, desc, a.now())
	h.Mock = a.mock()
	printMarkdown(renderer.RenderHoldings(h))
	return subcommands.ExitSuccess
}

type summaryCmd struct {
	history int
}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "display the portfolio totals" }
func (*summaryCmd) Usage() string {
	return `pft summary [-history <n>]

  Displays the total value, cost and profit or loss of the portfolio, and its
  best and worst performers. With -history, also displays the last n snapshots
  recorded by 'pft refresh -snapshot'.
`
}

func (c *summaryCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.history, "history", 0, "number of snapshots to display")
}

func (c *summaryCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := open(ctx)
	if err != nil {
		return fail(err)
	}
	defer a.Close()

	md := renderer.SummaryMarkdown(a.portfolio.Currency(), a.portfolio.Summary())
	if c.history > 0 {
		snaps, err := a.store.LoadSnapshots(ctx, a.user(), c.history)
		if err != nil {
			return fail(err)
		}
		md += "\n" + renderer.HistoryMarkdown(snaps)
	}
	printMarkdown(md)
	return subcommands.ExitSuccess
}
