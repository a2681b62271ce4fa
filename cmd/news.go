package cmd

import (
	"context"
	"flag"
	"strings"

	"github.com/etnz/folio/news"
	"github.com/etnz/folio/renderer"
	"github.com/google/subcommands"
)

type newsCmd struct {
	top      bool
	count    int
	category string
	country  string
}

func (*newsCmd) Name() string     { return "news" }
func (*newsCmd) Synopsis() string { return "display financial news" }
func (*newsCmd) Usage() string {
	return `pft news [-top [-category <category>] [-country <code>]] [-n <count>] [<query>...]

  Displays the latest articles about the query, or about the held tickers by default.
  With -top, displays the top headlines of a category instead.
  Articles are cached for 10 minutes.
`
}

func (c *newsCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.top, "top", false, "display the top headlines")
	f.IntVar(&c.count, "n", 10, "number of articles")
	f.StringVar(&c.category, "category", "", "headlines category, defaults to the settings")
	f.StringVar(&c.country, "country", "", "headlines country code, defaults to the settings")
}

func (c *newsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := open(ctx)
	if err != nil {
		return fail(err)
	}
	defer a.Close()

	feed := a.feed()
	query := strings.TrimSpace(strings.Join(f.Args(), " "))

	var (
		title    string
		articles []news.Article
	)
	switch {
	case c.top:
		h := news.Headlines{
			Country:  firstNonEmpty(c.country, a.settings.NewsCountry),
			Category: firstNonEmpty(c.category, a.settings.NewsCategory),
			Q:        query,
			PageSize: c.count,
		}
		title = "Top " + h.Category + " headlines"
		articles, err = feed.TopHeadlines(ctx, h)
	case query != "":
		title = "News about " + query
		articles, err = feed.Everything(ctx, news.Query{Q: query, PageSize: c.count})
	default:
		tickers := a.portfolio.Tickers()
		if len(tickers) == 0 {
			return usage("no query given, and the portfolio is empty")
		}
		title = "News for " + strings.Join(tickers, ", ")
		articles, err = news.ForTickers(ctx, feed, tickers, c.count)
	}
	if err != nil {
		return fail(err)
	}
	printMarkdown(renderer.NewsMarkdown(title, articles))
	return subcommands.ExitSuccess
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
