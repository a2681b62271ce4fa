package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/etnz/folio"
	"github.com/etnz/folio/date"
	"github.com/etnz/folio/news"
	"github.com/etnz/folio/quote"
	"github.com/etnz/folio/renderer"
	"google.golang.org/genai"
)

// Workspace is the user's data the tools work on.
type Workspace struct {
	Portfolio *folio.Portfolio
	Feed      news.Feed
	Quotes    quote.Provider // optional
	Now       func() time.Time
}

func (w *Workspace) now() time.Time {
	if w.Now != nil {
		return w.Now()
	}
	return time.Now()
}

func object(props map[string]*genai.Schema, required ...string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeObject, Properties: props, Required: required}
}

var markdownResponse = &genai.Schema{
	Type:        genai.TypeString,
	Description: "A markdown report.",
}

func holdingsTool(w *Workspace) *Func {
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name:        "Holdings",
			Description: "Holdings lists every position of the portfolio with its quantity, prices, market value, profit or loss and allocation.",
			Parameters: object(map[string]*genai.Schema{
				"sort": {
					Type:        genai.TypeString,
					Description: "The column to sort positions by, in descending order. Default is value.",
					Enum:        []string{"value", "profit", "percent", "ticker", "allocation"},
				},
			}),
			Response: markdownResponse,
		},
		Func: func(ctx context.Context, args map[string]any) (string, error) {
			s, err := stringArg(args, "sort", false)
			if err != nil {
				return "", err
			}
			key, err := folio.ParseSortKey(s)
			if err != nil {
				return "", err
			}
			p := w.Portfolio
			// tickers read best in alphabetical order.
			desc := key != folio.SortByTicker
			return renderer.RenderHoldings(renderer.NewHoldings(p.Currency(), p.Stocks(), key, desc, w.now())), nil
		},
	}
}

func summaryTool(w *Workspace) *Func {
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name:        "Summary",
			Description: "Summary returns the totals of the portfolio: value, cost, profit or loss, and the best and worst performers.",
			Response:    markdownResponse,
		},
		Func: func(ctx context.Context, args map[string]any) (string, error) {
			return renderer.SummaryMarkdown(w.Portfolio.Currency(), w.Portfolio.Summary()), nil
		},
	}
}

func positionTool(w *Workspace) *Func {
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name:        "Position",
			Description: "Position details a single position of the portfolio.",
			Parameters: object(map[string]*genai.Schema{
				"ticker": {
					Type:        genai.TypeString,
					Description: "The ticker of the position, like AAPL.",
				},
			}, "ticker"),
			Response: markdownResponse,
		},
		Func: func(ctx context.Context, args map[string]any) (string, error) {
			ticker, err := stringArg(args, "ticker", true)
			if err != nil {
				return "", err
			}
			s, ok := w.Portfolio.Find(ticker)
			if !ok {
				return "", fmt.Errorf("%s is not in the portfolio, held tickers are: %s", folio.NormalizeTicker(ticker), strings.Join(w.Portfolio.Tickers(), ", "))
			}
			return renderer.StockMarkdown(s, w.Portfolio.Summary().TotalValue), nil
		},
	}
}

func goalsTool(w *Workspace) *Func {
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name:        "Goals",
			Description: "Goals lists the user's financial goals, their progress, and the monthly contribution required to reach them on time.",
			Response:    markdownResponse,
		},
		Func: func(ctx context.Context, args map[string]any) (string, error) {
			return renderer.RenderGoals(renderer.NewGoals(w.Portfolio.Goals(), date.Of(w.now()))), nil
		},
	}
}

func quoteTool(w *Workspace) *Func {
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name:        "Quote",
			Description: "Quote fetches the latest market quote of one or more symbols, held or not.",
			Parameters: object(map[string]*genai.Schema{
				"symbols": {
					Type:        genai.TypeString,
					Description: "Comma separated list of symbols, like AAPL,MSFT.",
				},
			}, "symbols"),
			Response: markdownResponse,
		},
		Func: func(ctx context.Context, args map[string]any) (string, error) {
			arg, err := stringArg(args, "symbols", true)
			if err != nil {
				return "", err
			}
			var quotes []quote.Quote
			for _, s := range strings.Split(arg, ",") {
				if s = folio.NormalizeTicker(s); s == "" {
					continue
				}
				q, err := w.Quotes.Quote(ctx, s)
				if err != nil {
					return "", fmt.Errorf("quote of %s: %w", s, err)
				}
				quotes = append(quotes, q)
			}
			return renderer.QuotesMarkdown(quotes, w.Portfolio.Currency()), nil
		},
	}
}

func newsTool(w *Workspace) *Func {
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name:        "News",
			Description: "News searches the articles of the last days. Without query it returns the news about the tickers held in the portfolio.",
			Parameters: object(map[string]*genai.Schema{
				"query": {
					Type:        genai.TypeString,
					Description: "Keywords or phrases to search for, optional.",
				},
			}),
			Response: markdownResponse,
		},
		Func: func(ctx context.Context, args map[string]any) (string, error) {
			q, err := stringArg(args, "query", false)
			if err != nil {
				return "", err
			}
			if q = strings.TrimSpace(q); q == "" {
				tickers := w.Portfolio.Tickers()
				articles, err := news.ForTickers(ctx, w.Feed, tickers, 10)
				if err != nil {
					return "", err
				}
				return renderer.NewsMarkdown("News for "+strings.Join(tickers, ", "), articles), nil
			}
			articles, err := w.Feed.Everything(ctx, news.Query{Q: q, PageSize: 10, From: w.now().AddDate(0, 0, -7)})
			if err != nil {
				return "", err
			}
			return renderer.NewsMarkdown("News about "+q, articles), nil
		},
	}
}

func headlinesTool(w *Workspace) *Func {
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name:        "Headlines",
			Description: "Headlines returns the top headlines of a news category.",
			Parameters: object(map[string]*genai.Schema{
				"category": {
					Type:        genai.TypeString,
					Description: "The news category, business by default.",
					Enum:        []string{"business", "technology", "general", "health", "science", "sports", "entertainment"},
				},
			}),
			Response: markdownResponse,
		},
		Func: func(ctx context.Context, args map[string]any) (string, error) {
			category, err := stringArg(args, "category", false)
			if err != nil {
				return "", err
			}
			articles, err := w.Feed.TopHeadlines(ctx, news.Headlines{Category: category, PageSize: 10})
			if err != nil {
				return "", err
			}
			if category == "" {
				category = "business"
			}
			return renderer.NewsMarkdown("Top "+category+" headlines", articles), nil
		},
	}
}
