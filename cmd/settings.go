package cmd

import (
	"context"
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/etnz/folio"
	"github.com/etnz/folio/renderer"
	"github.com/google/subcommands"
)

type settingsCmd struct {
	currency string
	refresh  time.Duration
	mock     optionalBool
	country  string
	category string
	sort     string
	desc     optionalBool
	reset    bool
}

func (*settingsCmd) Name() string     { return "settings" }
func (*settingsCmd) Synopsis() string { return "display or change the user settings" }
func (*settingsCmd) Usage() string {
	return `pft settings [-currency <code>] [-refresh <duration>] [-mock=true|false] [-country <cc>] [-category <category>] [-sort <key>] [-desc=true|false] [-reset]

  Without flags, displays the current settings.
  The currency can only change while the portfolio holds no position.

Usage Examples:
$ pft settings -refresh 5m -sort profit
$ pft settings -mock=false
`
}

func (c *settingsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.currency, "currency", "", "portfolio currency, like USD or EUR")
	f.DurationVar(&c.refresh, "refresh", 0, "price refresh interval, at least 10s")
	f.Var(&c.mock, "mock", "use mock quotes and news")
	f.StringVar(&c.country, "country", "", "2-letter country of the top headlines")
	f.StringVar(&c.category, "category", "", "category of the top headlines")
	f.StringVar(&c.sort, "sort", "", "default sort of the holdings: ticker, value, profit, percent or allocation")
	f.Var(&c.desc, "desc", "sort the holdings in descending order")
	f.BoolVar(&c.reset, "reset", false, "restore the default settings before applying the other flags")
}

// apply returns 's' changed by the set flags.
func (c *settingsCmd) apply(s folio.Settings) (folio.Settings, error) {
	if c.reset {
		s = folio.DefaultSettings()
	}
	if c.currency != "" {
		s.Currency = strings.ToUpper(c.currency)
	}
	if c.refresh != 0 {
		s.RefreshInterval = int(c.refresh / time.Second)
	}
	if c.mock.v != nil {
		s.MockData = *c.mock.v
	}
	if c.country != "" {
		s.NewsCountry = strings.ToLower(c.country)
	}
	if c.category != "" {
		s.NewsCategory = strings.ToLower(c.category)
	}
	if c.sort != "" {
		k, err := folio.ParseSortKey(c.sort)
		if err != nil {
			return s, err
		}
		s.SortBy = k
	}
	if c.desc.v != nil {
		s.SortDesc = *c.desc.v
	}
	return s, s.Validate()
}

func (c *settingsCmd) changed() bool {
	return c.reset || c.currency != "" || c.refresh != 0 || c.mock.v != nil || c.country != "" ||
		c.category != "" || c.sort != "" || c.desc.v != nil
}

func (c *settingsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() > 0 {
		return usage("settings takes no arguments")
	}
	a, err := open(ctx)
	if err != nil {
		return fail(err)
	}
	defer a.Close()

	if c.changed() {
		s, err := c.apply(a.settings)
		if err != nil {
			return fail(err)
		}
		if s.Currency != a.settings.Currency && (len(a.portfolio.Stocks()) > 0 || len(a.portfolio.Goals()) > 0) {
			return fail(fmt.Errorf("cannot change the currency from %s to %s while holding positions or goals: export them, remove them, then change it",
				a.settings.Currency, s.Currency))
		}
		if err := a.store.SaveSettings(ctx, a.user(), s); err != nil {
			return fail(err)
		}
		a.settings = s
	}
	printMarkdown(renderer.SettingsMarkdown(a.settings))
	return subcommands.ExitSuccess
}
