package renderer

import (
	"fmt"
	"strings"

	"github.com/etnz/folio"
	"github.com/etnz/folio/quote"
)

// QuotesMarkdown renders the latest quotes, prices being expressed in 'currency'.
func QuotesMarkdown(quotes []quote.Quote, currency string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Quotes\n\n")
	if len(quotes) == 0 {
		fmt.Fprintln(&b, "_No quote._")
		return b.String()
	}
	fmt.Fprintln(&b, "| Symbol | Price | Change | Change % | Open | High | Low | Previous Close | Volume | Trading Day |")
	fmt.Fprintln(&b, "|:---|---:|---:|---:|---:|---:|---:|---:|---:|:---|")

	mock := false
	for _, q := range quotes {
		symbol := q.Symbol
		if q.IsMock() {
			mock = true
			symbol += "*"
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %s | %s | %d | %s |\n",
			symbol,
			folio.M(q.Price, currency),
			folio.M(q.Change, currency).SignedString(),
			q.ChangePercent.SignedString(),
			folio.M(q.Open, currency),
			folio.M(q.High, currency),
			folio.M(q.Low, currency),
			folio.M(q.PreviousClose, currency),
			q.Volume,
			q.LatestTradingDay,
		)
	}
	if mock {
		fmt.Fprintf(&b, "\n\\* simulated quote\n")
	}
	return b.String()
}
