// Package quote fetches market quotes for ticker symbols.
//
// A Provider fetches one quote from its source; a Service adds caching,
// request deduplication, rate limiting and mock fallback on top of it.
package quote

import (
	"context"
	"time"

	"github.com/etnz/folio"
	"github.com/etnz/folio/date"
	"github.com/shopspring/decimal"
)

// Sources of quotes.
const (
	SourceAlphaVantage = "alphavantage"
	SourceMock         = "mock"
)

// Quote is a point-in-time price record for a ticker.
type Quote struct {
	Symbol           string          `json:"symbol"`
	Price            decimal.Decimal `json:"price"`
	Open             decimal.Decimal `json:"open"`
	High             decimal.Decimal `json:"high"`
	Low              decimal.Decimal `json:"low"`
	PreviousClose    decimal.Decimal `json:"previousClose"`
	Change           decimal.Decimal `json:"change"`
	ChangePercent    folio.Percent   `json:"changePercent"`
	Volume           int64           `json:"volume"`
	LatestTradingDay date.Date       `json:"latestTradingDay"`
	FetchedAt        time.Time       `json:"fetchedAt"`
	Source           string          `json:"source"`
}

// IsMock reports whether the quote was synthesized.
func (q Quote) IsMock() bool { return q.Source == SourceMock }

// Provider fetches the latest quote of a symbol.
type Provider interface {
	Quote(ctx context.Context, symbol string) (Quote, error)
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(ctx context.Context, symbol string) (Quote, error)

func (f ProviderFunc) Quote(ctx context.Context, symbol string) (Quote, error) { return f(ctx, symbol) }
