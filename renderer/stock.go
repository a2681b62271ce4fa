package renderer

import (
	"fmt"
	"strings"
	"time"

	"github.com/etnz/folio"
)

// StockMarkdown renders the details of a position, 'total' is the portfolio market value.
func StockMarkdown(s folio.Stock, total folio.Money) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s\n\n", s.Ticker)
	fmt.Fprintln(&b, "| Field | Value |")
	fmt.Fprintln(&b, "|:---|---:|")
	row := func(name string, value any) { fmt.Fprintf(&b, "| %s | %v |\n", name, value) }
	row("ID", s.ID)
	row("Quantity", s.Quantity)
	row("Buy Price", s.BuyPrice)
	row("Current Price", s.CurrentPrice)
	row("Cost Basis", folio.CostBasis(s))
	row("Market Value", folio.MarketValue(s))
	row("Profit/Loss", folio.ProfitLoss(s).SignedString())
	row("Profit/Loss %", folio.ProfitLossPercent(s).SignedString())
	row("Allocation", folio.AllocationPercentage(s, total))
	if !s.LastUpdated.IsZero() {
		row("Last Updated", s.LastUpdated.Local().Format(time.DateTime))
	}
	return b.String()
}
