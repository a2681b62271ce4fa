package folio

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// CostBasis is what was paid for the position.
func CostBasis(s Stock) Money { return s.BuyPrice.Mul(s.Quantity) }

// MarketValue is what the position is worth at its current price.
func MarketValue(s Stock) Money { return s.CurrentPrice.Mul(s.Quantity) }

// ProfitLoss is the unrealized gain of the position.
func ProfitLoss(s Stock) Money { return s.CurrentPrice.Sub(s.BuyPrice).Mul(s.Quantity) }

// ProfitLossPercent is the unrealized gain relative to the buy price, 0 when the buy price is 0.
func ProfitLossPercent(s Stock) Percent { return s.CurrentPrice.Sub(s.BuyPrice).Percent(s.BuyPrice) }

// AllocationPercentage is the share of 'totalValue' held in s, 0 when the total is 0.
func AllocationPercentage(s Stock, totalValue Money) Percent {
	return MarketValue(s).Percent(totalValue)
}

func sum(stocks []Stock, f func(Stock) Money) Money {
	var total Money
	for _, s := range stocks {
		total = total.Add(f(s))
	}
	return total
}

func TotalValue(stocks []Stock) Money      { return sum(stocks, MarketValue) }
func TotalCost(stocks []Stock) Money       { return sum(stocks, CostBasis) }
func TotalProfitLoss(stocks []Stock) Money { return sum(stocks, ProfitLoss) }

// TotalProfitLossPercent is the overall gain relative to the overall cost.
func TotalProfitLossPercent(stocks []Stock) Percent {
	return TotalProfitLoss(stocks).Percent(TotalCost(stocks))
}

// Performer identifies a position by its relative performance.
type Performer struct {
	Ticker  string
	Percent Percent
}

// Summary aggregates a set of positions.
type Summary struct {
	Positions              int
	TotalValue             Money
	TotalCost              Money
	TotalProfitLoss        Money
	TotalProfitLossPercent Percent
	Best, Worst            *Performer // nil when there are no positions
	LastUpdated            time.Time  // most recent price update
}

// Summarize computes the portfolio totals of 'stocks'.
func Summarize(stocks []Stock) Summary {
	summary := Summary{
		Positions:              len(stocks),
		TotalValue:             TotalValue(stocks),
		TotalCost:              TotalCost(stocks),
		TotalProfitLoss:        TotalProfitLoss(stocks),
		TotalProfitLossPercent: TotalProfitLossPercent(stocks),
	}
	for _, s := range stocks {
		pct := ProfitLossPercent(s)
		if summary.Best == nil || pct > summary.Best.Percent {
			summary.Best = &Performer{Ticker: s.Ticker, Percent: pct}
		}
		if summary.Worst == nil || pct < summary.Worst.Percent {
			summary.Worst = &Performer{Ticker: s.Ticker, Percent: pct}
		}
		if s.LastUpdated.After(summary.LastUpdated) {
			summary.LastUpdated = s.LastUpdated
		}
	}
	return summary
}

// SortKey selects the column positions are ordered by.
type SortKey string

const (
	SortByTicker     SortKey = "ticker"
	SortByValue      SortKey = "value"
	SortByProfit     SortKey = "profit"
	SortByPercent    SortKey = "percent"
	SortByAllocation SortKey = "allocation"
)

// ParseSortKey validates a user supplied sort key.
func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(s))); k {
	case SortByTicker, SortByValue, SortByProfit, SortByPercent, SortByAllocation:
		return k, nil
	case "":
		return SortByValue, nil
	default:
		return "", fmt.Errorf("unknown sort key %q: want ticker, value, profit, percent or allocation", s)
	}
}

// SortStocks returns a sorted copy of 'stocks'. Ties are broken by ticker.
func SortStocks(stocks []Stock, key SortKey, desc bool) []Stock {
	sorted := make([]Stock, len(stocks))
	copy(sorted, stocks)

	// allocation is proportional to market value, so both share the same order.
	var cmp func(a, b Stock) int
	switch key {
	case SortByValue, SortByAllocation:
		cmp = func(a, b Stock) int { return MarketValue(a).Decimal().Cmp(MarketValue(b).Decimal()) }
	case SortByProfit:
		cmp = func(a, b Stock) int { return ProfitLoss(a).Decimal().Cmp(ProfitLoss(b).Decimal()) }
	case SortByPercent:
		cmp = func(a, b Stock) int {
			pa, pb := ProfitLossPercent(a), ProfitLossPercent(b)
			switch {
			case pa < pb:
				return -1
			case pa > pb:
				return 1
			}
			return 0
		}
	default:
		cmp = func(a, b Stock) int { return 0 }
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		c := cmp(a, b)
		if desc {
			c = -c
		}
		if c == 0 {
			return a.Ticker < b.Ticker
		}
		return c < 0
	})
	return sorted
}
