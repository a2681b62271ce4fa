// Package news fetches financial news from News API (newsapi.org v2).
package news

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Article is a news article.
type Article struct {
	Source      Source    `json:"source"`
	Author      string    `json:"author"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	URLToImage  string    `json:"urlToImage"`
	PublishedAt time.Time `json:"publishedAt"`
	Content     string    `json:"content"`
}

// Source is the publisher of an article.
type Source struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Query searches every article (the /everything endpoint).
type Query struct {
	Q        string
	Language string    // default "en"
	SortBy   string    // relevancy, popularity or publishedAt (default)
	PageSize int       // default 20, at most 100
	From     time.Time // oldest article, optional
}

// Headlines selects top headlines (the /top-headlines endpoint).
type Headlines struct {
	Country  string // 2-letter code, default "us"
	Category string // default "business"
	Q        string // optional keywords
	PageSize int    // default 20, at most 100
}

// Feed is a source of articles.
type Feed interface {
	Everything(ctx context.Context, q Query) ([]Article, error)
	TopHeadlines(ctx context.Context, h Headlines) ([]Article, error)
}

// TickerQuery builds the query matching any of 'tickers'.
func TickerQuery(tickers []string) string {
	terms := make([]string, 0, len(tickers))
	for _, t := range tickers {
		if t = strings.TrimSpace(t); t != "" {
			terms = append(terms, fmt.Sprintf("%q", strings.ToUpper(t)))
		}
	}
	return strings.Join(terms, " OR ")
}

// ForTickers returns the 'n' latest articles mentioning any of 'tickers' over the last week.
func ForTickers(ctx context.Context, f Feed, tickers []string, n int) ([]Article, error) {
	q := TickerQuery(tickers)
	if q == "" {
		return nil, nil
	}
	return f.Everything(ctx, Query{
		Q:        q,
		Language: "en",
		SortBy:   "publishedAt",
		PageSize: n,
		From:     time.Now().AddDate(0, 0, -7),
	})
}

func pageSize(n int) int {
	switch {
	case n <= 0:
		return 20
	case n > 100:
		return 100
	}
	return n
}
