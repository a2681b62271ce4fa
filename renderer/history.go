package renderer

import (
	"bytes"
	"fmt"
	"time"

	"github.com/etnz/folio"
	"github.com/etnz/folio/store"
	md "github.com/nao1215/markdown"
)

// HistoryMarkdown renders the valuation snapshots, most recent first.
func HistoryMarkdown(snaps []store.Snapshot) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Portfolio History")
	if len(snaps) == 0 {
		doc.PlainText("_No snapshot recorded._")
		return doc.String()
	}

	table := md.TableSet{
		Alignment: []md.TableAlignment{
			md.AlignLeft,
			md.AlignRight,
			md.AlignRight,
			md.AlignRight,
			md.AlignRight,
			md.AlignRight,
		},
		Header: []string{"Date", "Positions", "Value", "Cost", "Profit/Loss", "Change"},
		Rows:   [][]string{},
	}
	for i, s := range snaps {
		value := folio.M(s.TotalValue, s.Currency)
		change := "-"
		// snapshots are sorted most recent first, the previous one follows.
		if i+1 < len(snaps) && snaps[i+1].Currency == s.Currency {
			prev := folio.M(snaps[i+1].TotalValue, s.Currency)
			change = value.Sub(prev).Percent(prev).SignedString()
		}
		table.Rows = append(table.Rows, []string{
			s.TakenAt.Local().Format(time.DateTime),
			fmt.Sprint(len(s.Positions)),
			value.String(),
			folio.M(s.TotalCost, s.Currency).String(),
			folio.M(s.TotalProfitLoss, s.Currency).SignedString(),
			change,
		})
	}
	doc.Table(table)

	return doc.String()
}
