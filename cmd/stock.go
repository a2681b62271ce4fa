package cmd

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/etnz/folio"
	"github.com/etnz/folio/renderer"
	"github.com/google/subcommands"
)

type addCmd struct {
	ticker   string
	buy      string
	current  string
	quantity string
	currency string
	fetch    bool
}

func (*addCmd) Name() string     { return "add" }
func (*addCmd) Synopsis() string { return "add a position to the portfolio" }
func (*addCmd) Usage() string {
	return `pft add -t <ticker> -b <buy price> -q <quantity> [-p <current price> | -fetch] [-c <currency>]

  Adds a position to the portfolio. A ticker can be held only once.
  The current price defaults to the buy price, or to the latest quote with -fetch.

Usage Examples:
$ pft add -t AAPL -b 150 -p 185.50 -q 10
`
}

func (c *addCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.ticker, "t", "", "ticker symbol, like AAPL (required)")
	f.StringVar(&c.buy, "b", "", "buy price per share (required)")
	f.StringVar(&c.current, "p", "", "current price per share")
	f.StringVar(&c.quantity, "q", "", "number of shares (required)")
	f.StringVar(&c.currency, "c", "", "currency of the prices, defaults to the portfolio currency")
	f.BoolVar(&c.fetch, "fetch", false, "fetch the current price")
}

func (c *addCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.ticker == "" || c.buy == "" || c.quantity == "" {
		return usage("-t, -b and -q are required")
	}

	a, err := open(ctx)
	if err != nil {
		return fail(err)
	}
	defer a.Close()

	cur := strings.ToUpper(c.currency)
	if cur == "" {
		cur = a.portfolio.Currency()
	}
	buy, err := parseMoney("buy price", c.buy, cur)
	if err != nil {
		return usage("%v", err)
	}
	current := folio.Money{}
	if c.current != "" {
		if current, err = parseMoney("current price", c.current, cur); err != nil {
			return usage("%v", err)
		}
	}
	qty, err := parseQuantity("quantity", c.quantity)
	if err != nil {
		return usage("%v", err)
	}

	s := folio.NewStock(c.ticker, buy, current, qty)
	if c.fetch {
		q, err := a.quotes().Quote(ctx, s.Ticker)
		if err != nil {
			return fail(err)
		}
		s.SetPrice(folio.M(q.Price, cur), q.FetchedAt)
	}

	s, err = a.portfolio.Add(s)
	if err != nil {
		return fail(err)
	}
	if err := a.store.SaveStock(ctx, a.user(), s); err != nil {
		return fail(err)
	}

	printMarkdown(renderer.StockMarkdown(s, a.portfolio.Summary().TotalValue))
	return subcommands.ExitSuccess
}

type editCmd struct {
	ticker   string
	buy      string
	current  string
	quantity string
}

func (*editCmd) Name() string     { return "edit" }
func (*editCmd) Synopsis() string { return "edit a position" }
func (*editCmd) Usage() string {
	return `pft edit [-t <ticker>] [-b <buy price>] [-p <current price>] [-q <quantity>] <id|ticker>

  Edits the position identified by its id or ticker. Only the given fields change.

Usage Examples:
$ pft edit -q 12 AAPL
`
}

func (c *editCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.ticker, "t", "", "new ticker symbol")
	f.StringVar(&c.buy, "b", "", "new buy price per share")
	f.StringVar(&c.current, "p", "", "new current price per share")
	f.StringVar(&c.quantity, "q", "", "new number of shares")
}

func (c *editCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		return usage("edit needs exactly one position id or ticker")
	}
	if c.ticker == "" && c.buy == "" && c.current == "" && c.quantity == "" {
		return usage("nothing to edit, use -t, -b, -p or -q")
	}

	a, err := open(ctx)
	if err != nil {
		return fail(err)
	}
	defer a.Close()

	cur := a.portfolio.Currency()
	var edits []func(*folio.Stock)
	if c.ticker != "" {
		edits = append(edits, func(s *folio.Stock) { s.Ticker = c.ticker })
	}
	if c.buy != "" {
		buy, err := parseMoney("buy price", c.buy, cur)
		if err != nil {
			return usage("%v", err)
		}
		edits = append(edits, func(s *folio.Stock) { s.BuyPrice = buy })
	}
	if c.current != "" {
		current, err := parseMoney("current price", c.current, cur)
		if err != nil {
			return usage("%v", err)
		}
		edits = append(edits, func(s *folio.Stock) { s.SetPrice(current, a.now()) })
	}
	if c.quantity != "" {
		qty, err := parseQuantity("quantity", c.quantity)
		if err != nil {
			return usage("%v", err)
		}
		edits = append(edits, func(s *folio.Stock) { s.Quantity = qty })
	}

	s, err := a.portfolio.Update(f.Arg(0), func(s *folio.Stock) {
		for _, edit := range edits {
			edit(s)
		}
	})
	if err != nil {
		return fail(err)
	}
	if err := a.store.SaveStock(ctx, a.user(), s); err != nil {
		return fail(err)
	}

	printMarkdown(renderer.StockMarkdown(s, a.portfolio.Summary().TotalValue))
	return subcommands.ExitSuccess
}

type removeCmd struct{}

func (*removeCmd) Name() string     { return "remove" }
func (*removeCmd) Synopsis() string { return "remove positions from the portfolio" }
func (*removeCmd) Usage() string {
	return `pft remove <id|ticker>...

  Removes the positions identified by their id or ticker.
`
}

func (*removeCmd) SetFlags(f *flag.FlagSet) {}

func (c *removeCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		return usage("remove needs at least one position id or ticker")
	}

	a, err := open(ctx)
	if err != nil {
		return fail(err)
	}
	defer a.Close()

	for _, id := range f.Args() {
		s, err := a.portfolio.Remove(id)
		if err != nil {
			return fail(err)
		}
		if err := a.store.DeleteStock(ctx, a.user(), s.ID); err != nil {
			return fail(err)
		}
		fmt.Fprintf(stdout, "Removed %s (%s shares).\n", s.Ticker, s.Quantity)
	}
	return subcommands.ExitSuccess
}
