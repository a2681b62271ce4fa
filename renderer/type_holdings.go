package renderer

import (
	"time"

	"github.com/etnz/folio"
)

// Holdings is the data model of the holdings report.
type Holdings struct {
	Currency               string
	AsOf                   time.Time
	SortedBy               folio.SortKey
	Positions              []HoldingRow
	TotalValue             folio.Money
	TotalCost              folio.Money
	TotalProfitLoss        folio.Money
	TotalProfitLossPercent folio.Percent
	Best, Worst            *folio.Performer
	Mock                   bool // prices are simulated
}

// HoldingRow is one position of the holdings report.
type HoldingRow struct {
	Ticker            string
	Quantity          folio.Quantity
	BuyPrice          folio.Money
	CurrentPrice      folio.Money
	MarketValue       folio.Money
	ProfitLoss        folio.Money
	ProfitLossPercent folio.Percent
	Allocation        folio.Percent
	LastUpdated       time.Time
}

// NewHoldings creates a new Holdings report of 'stocks' ordered by 'key'.
func NewHoldings(currency string, stocks []folio.Stock, key folio.SortKey, desc bool, asOf time.Time) *Holdings {
	sum := folio.Summarize(stocks)
	h := &Holdings{
		Currency:               currency,
		AsOf:                   asOf,
		SortedBy:               key,
		Positions:              make([]HoldingRow, 0, len(stocks)),
		TotalValue:             sum.TotalValue.WithCurrency(currency),
		TotalCost:              sum.TotalCost.WithCurrency(currency),
		TotalProfitLoss:        sum.TotalProfitLoss.WithCurrency(currency),
		TotalProfitLossPercent: sum.TotalProfitLossPercent,
		Best:                   sum.Best,
		Worst:                  sum.Worst,
	}
	for _, s := range folio.SortStocks(stocks, key, desc) {
		h.Positions = append(h.Positions, HoldingRow{
			Ticker:            s.Ticker,
			Quantity:          s.Quantity,
			BuyPrice:          s.BuyPrice,
			CurrentPrice:      s.CurrentPrice,
			MarketValue:       folio.MarketValue(s),
			ProfitLoss:        folio.ProfitLoss(s),
			ProfitLossPercent: folio.ProfitLossPercent(s),
			Allocation:        folio.AllocationPercentage(s, sum.TotalValue),
			LastUpdated:       s.LastUpdated,
		})
	}
	return h
}
