package cmd

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/etnz/folio"
	"github.com/etnz/folio/quote"
	"github.com/etnz/folio/renderer"
	"github.com/etnz/folio/store"
	"github.com/google/subcommands"
)

type quoteCmd struct{}

func (*quoteCmd) Name() string     { return "quote" }
func (*quoteCmd) Synopsis() string { return "display the latest quotes" }
func (*quoteCmd) Usage() string {
	return `pft quote [<ticker>...]

  Displays the latest quote of each ticker, every held ticker by default.
  Quotes are cached for a minute, and requests are throttled to the
  Alpha Vantage free tier (5 requests per minute).
`
}

func (*quoteCmd) SetFlags(f *flag.FlagSet) {}

func (c *quoteCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := open(ctx)
	if err != nil {
		return fail(err)
	}
	defer a.Close()

	symbols := f.Args()
	if len(symbols) == 0 {
		symbols = a.portfolio.Tickers()
	}
	if len(symbols) == 0 {
		return usage("no ticker given, and the portfolio is empty")
	}

	quotes, err := a.quotes().Quotes(ctx, symbols)
	list := make([]quote.Quote, 0, len(quotes))
	for _, s := range symbols {
		if q, ok := quotes[folio.NormalizeTicker(s)]; ok {
			list = append(list, q)
		}
	}
	if len(list) > 0 {
		printMarkdown(renderer.QuotesMarkdown(list, a.portfolio.Currency()))
	}
	if err != nil {
		return fail(err)
	}
	return subcommands.ExitSuccess
}

// refresh updates the prices of the portfolio and saves them, with a snapshot when asked.
func (a *app) refresh(ctx context.Context, quotes *quote.Service, snapshot bool) error {
	res, qerr := quotes.Refresh(ctx, a.portfolio)
	if len(res.Skipped) > 0 {
		fmt.Fprintf(stderr, "Warning: no live quote for %s, kept the previous price.\n", strings.Join(res.Skipped, ", "))
	}
	if err := a.store.ReplaceStocks(ctx, a.user(), a.portfolio.Stocks()); err != nil {
		return err
	}
	if snapshot {
		snap := store.NewSnapshot(a.user(), a.portfolio, a.now())
		if err := a.store.SaveSnapshot(ctx, snap); err != nil {
			return err
		}
	}
	return qerr
}

type refreshCmd struct {
	snapshot bool
}

func (*refreshCmd) Name() string     { return "refresh" }
func (*refreshCmd) Synopsis() string { return "update the current price of every position" }
func (*refreshCmd) Usage() string {
	return `pft refresh [-snapshot]

  Fetches the latest quote of every held ticker and saves the new prices.
  With -snapshot, also records the valuation of the portfolio, see 'pft summary -history'.
`
}

func (c *refreshCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.snapshot, "snapshot", false, "record a snapshot of the portfolio valuation")
}

func (c *refreshCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := open(ctx)
	if err != nil {
		return fail(err)
	}
	defer a.Close()

	err = a.refresh(ctx, a.quotes(), c.snapshot)

	h := renderer.NewHoldings(a.portfolio.Currency(), a.portfolio.Stocks(), a.settings.SortBy, a.settings.SortDesc, a.now())
	h.Mock = a.mock()
	printMarkdown(renderer.RenderHoldings(h))
	if err != nil {
		return fail(err)
	}
	return subcommands.ExitSuccess
}

type watchCmd struct {
	interval time.Duration
	count    int
}

func (*watchCmd) Name() string     { return "watch" }
func (*watchCmd) Synopsis() string { return "refresh the holdings periodically" }
func (*watchCmd) Usage() string {
	return `pft watch [-interval <duration>] [-n <count>]

  Refreshes the prices and displays the holdings periodically, until interrupted.
  The interval defaults to the refresh interval of the settings.
`
}

func (c *watchCmd) SetFlags(f *flag.FlagSet) {
	f.DurationVar(&c.interval, "interval", 0, "refresh interval, like 60s")
	f.IntVar(&c.count, "n", 0, "stop after n refreshes, 0 never stops")
}

func (c *watchCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	a, err := open(ctx)
	if err != nil {
		return fail(err)
	}
	defer a.Close()

	interval := c.interval
	if interval <= 0 {
		interval = a.settings.Refresh()
	}
	if interval < 10*time.Second && !a.mock() {
		interval = 10 * time.Second
	}

	// a single service keeps its cache and rate limiter across refreshes.
	quotes := a.quotes()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for i := 1; ; i++ {
		if err := a.refresh(ctx, quotes, false); err != nil {
			if ctx.Err() != nil {
				return subcommands.ExitSuccess
			}
			// keep watching
			log.Printf("refresh failed: %v", err)
			fmt.Fprintln(stderr, "Warning:", UserMessage(err))
		}
		h := renderer.NewHoldings(a.portfolio.Currency(), a.portfolio.Stocks(), a.settings.SortBy, a.settings.SortDesc, a.now())
		h.Mock = a.mock()
		printMarkdown(renderer.RenderHoldings(h))

		if c.count > 0 && i >= c.count {
			return subcommands.ExitSuccess
		}
		select {
		case <-ctx.Done():
			return subcommands.ExitSuccess
		case <-ticker.C:
		}
	}
}
