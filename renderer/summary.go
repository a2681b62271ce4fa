package renderer

import (
	"bytes"
	"fmt"
	"time"

	"github.com/etnz/folio"
	md "github.com/nao1215/markdown"
)

// SummaryMarkdown renders the portfolio totals.
func SummaryMarkdown(currency string, s folio.Summary) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Portfolio Summary")
	doc.PlainText(fmt.Sprintf("Total Market Value: %s", md.Bold(s.TotalValue.WithCurrency(currency).String())))

	performer := func(p *folio.Performer) string {
		if p == nil {
			return "-"
		}
		return fmt.Sprintf("%s (%s)", p.Ticker, p.Percent.SignedString())
	}
	updated := "-"
	if !s.LastUpdated.IsZero() {
		updated = s.LastUpdated.Local().Format(time.DateTime)
	}

	doc.H2("Performance")
	doc.Table(md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
		Header:    []string{"Metric", "Value"},
		Rows: [][]string{
			{"Positions", fmt.Sprint(s.Positions)},
			{"Total Value", s.TotalValue.WithCurrency(currency).String()},
			{"Total Cost", s.TotalCost.WithCurrency(currency).String()},
			{"Profit/Loss", s.TotalProfitLoss.WithCurrency(currency).SignedString()},
			{"Profit/Loss %", s.TotalProfitLossPercent.SignedString()},
			{"Best Performer", performer(s.Best)},
			{"Worst Performer", performer(s.Worst)},
			{"Last Updated", updated},
		},
	})

	return doc.String()
}
