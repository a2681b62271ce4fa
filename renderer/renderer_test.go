package renderer

import (
	"io/fs"
	"strings"
	"testing"
	"text/template"
	"time"

	"github.com/etnz/folio"
	"github.com/etnz/folio/date"
	"github.com/etnz/folio/news"
	"github.com/etnz/folio/quote"
	"github.com/etnz/folio/store"
	"github.com/shopspring/decimal"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

var asOf = time.Date(2025, time.August, 15, 12, 0, 0, 0, time.UTC)

func usd(v float64) folio.Money { return folio.M(v, "USD") }

func stock(ticker string, buy, current, qty float64) folio.Stock {
	return folio.Stock{
		ID:           "id-" + ticker,
		Ticker:       ticker,
		BuyPrice:     usd(buy),
		CurrentPrice: usd(current),
		Quantity:     folio.Q(qty),
		LastUpdated:  asOf,
	}
}

func sampleStocks() []folio.Stock {
	return []folio.Stock{
		stock("TSLA", 250, 200, 2),
		stock("AAPL", 150, 185.5, 10),
		stock("MSFT", 300, 310, 5),
	}
}

// document is the parsed structure of a markdown output.
type document struct {
	headings []string
	tables   [][][]string // table, row, cell; the header is the first row.
}

// parse parses a markdown output with the GFM table extension.
func parse(t *testing.T, src string) document {
	t.Helper()
	source := []byte(src)
	root := goldmark.New(goldmark.WithExtensions(extension.Table)).Parser().Parse(text.NewReader(source))

	var doc document
	err := ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n := n.(type) {
		case *ast.Heading:
			doc.headings = append(doc.headings, nodeText(n, source))
			return ast.WalkSkipChildren, nil
		case *east.Table:
			var rows [][]string
			for r := n.FirstChild(); r != nil; r = r.NextSibling() {
				var row []string
				for c := r.FirstChild(); c != nil; c = c.NextSibling() {
					row = append(row, nodeText(c, source))
				}
				rows = append(rows, row)
			}
			doc.tables = append(doc.tables, rows)
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		t.Fatalf("walking markdown: %v", err)
	}
	return doc
}

func nodeText(n ast.Node, source []byte) string {
	var b strings.Builder
	ast.Walk(n, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if t, ok := n.(*ast.Text); ok && entering {
			b.Write(t.Segment.Value(source))
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(b.String())
}

func TestTemplatesParse(t *testing.T) {
	files, err := fs.Glob(templates, "templates/*.md")
	if err != nil {
		t.Fatal(err)
	}
	if len(files) == 0 {
		t.Fatal("no template embedded")
	}
	for _, f := range files {
		content, err := fs.ReadFile(templates, f)
		if err != nil {
			t.Fatalf("reading %s: %v", f, err)
		}
		if _, err := template.New(f).Parse(string(content)); err != nil {
			t.Errorf("parsing %s: %v", f, err)
		}
	}
}

func TestRenderHoldings(t *testing.T) {
	h := NewHoldings("USD", sampleStocks(), folio.SortByValue, true, asOf)
	out := RenderHoldings(h)
	doc := parse(t, out)

	if len(doc.headings) != 1 || doc.headings[0] != "Holdings on 2025-08-15 12:00" {
		t.Errorf("headings = %q, want the report title", doc.headings)
	}
	if len(doc.tables) != 1 {
		t.Fatalf("got %d tables, want 1:\n%s", len(doc.tables), out)
	}
	rows := doc.tables[0]
	if len(rows) != 5 {
		t.Fatalf("got %d rows, want header, 3 positions and total:\n%s", len(rows), out)
	}

	var tickers []string
	for _, r := range rows[1:4] {
		tickers = append(tickers, r[0])
	}
	if got, want := strings.Join(tickers, ","), "AAPL,MSFT,TSLA"; got != want {
		t.Errorf("order = %s, want %s", got, want)
	}

	aapl := rows[1]
	want := []string{"AAPL", "10", "$150.00", "$185.50", "$1,855.00", "+$355.00", "+23.67%", "48.75%"}
	for i, w := range want {
		if aapl[i] != w {
			t.Errorf("AAPL column %q = %q, want %q", rows[0][i], aapl[i], w)
		}
	}

	total := rows[4]
	if total[0] != "Total" || total[4] != "$3,805.00" || total[5] != "+$305.00" || total[6] != "+8.71%" {
		t.Errorf("total row = %q", total)
	}

	for _, s := range []string{"Portfolio Value: **$3,805.00**", "Best performer: **AAPL** (+23.67%)", "Worst performer: **TSLA** (-20.00%)", "Cost basis: $3,500.00"} {
		if !strings.Contains(out, s) {
			t.Errorf("output does not contain %q:\n%s", s, out)
		}
	}
}

func TestRenderHoldings_Empty(t *testing.T) {
	h := NewHoldings("EUR", nil, folio.SortByValue, true, asOf)
	h.Mock = true
	out := RenderHoldings(h)
	doc := parse(t, out)
	if len(doc.tables) != 0 {
		t.Errorf("got %d tables for an empty portfolio", len(doc.tables))
	}
	for _, s := range []string{"_No positions._", "_Prices are simulated._", "0.00"} {
		if !strings.Contains(out, s) {
			t.Errorf("output does not contain %q:\n%s", s, out)
		}
	}
	if strings.Contains(out, "error") {
		t.Errorf("template failed:\n%s", out)
	}
}

func TestRenderHoldings_Ascending(t *testing.T) {
	h := NewHoldings("USD", sampleStocks(), folio.SortByTicker, false, asOf)
	rows := parse(t, RenderHoldings(h)).tables[0]
	if rows[1][0] != "AAPL" || rows[2][0] != "MSFT" || rows[3][0] != "TSLA" {
		t.Errorf("rows are not sorted by ticker: %q", rows)
	}
}

func TestRenderGoals(t *testing.T) {
	today := date.New(2025, time.August, 15)

	house := folio.NewGoal("House", folio.GoalPurchase, usd(50000), date.New(2027, time.August, 15))
	house.CurrentAmount = usd(10000)
	house.MonthlyContribution = usd(2000)

	car := folio.NewGoal("Car", folio.GoalSavings, usd(10000), date.Date{})
	car.CurrentAmount = usd(10000)

	trip := folio.NewGoal("Trip", folio.GoalOther, usd(3000), date.New(2025, time.December, 1))
	trip.IsActive = false

	out := RenderGoals(NewGoals([]folio.Goal{house, car, trip}, today))
	doc := parse(t, out)

	if got, want := strings.Join(doc.headings, ","), "Goals on 2025-08-15,House"; got != want {
		t.Errorf("headings = %s, want %s", got, want)
	}
	if len(doc.tables) != 1 {
		t.Fatalf("got %d tables, want 1:\n%s", len(doc.tables), out)
	}
	rows := doc.tables[0]
	if len(rows) != 4 {
		t.Fatalf("got %d rows, want 4:\n%s", len(rows), out)
	}
	tests := []struct {
		row      []string
		title    string
		progress string
		date     string
		status   string
	}{
		{rows[1], "House", "20.00%", "2027-08-15", StatusOnTrack},
		{rows[2], "Car", "100.00%", "-", StatusReached},
		{rows[3], "Trip", "0.00%", "2025-12-01", StatusInactive},
	}
	for _, tc := range tests {
		if tc.row[0] != tc.title || tc.row[4] != tc.progress || tc.row[5] != tc.date || tc.row[6] != tc.status {
			t.Errorf("row = %q, want %s %s %s %s", tc.row, tc.title, tc.progress, tc.date, tc.status)
		}
	}

	for _, s := range []string{
		"Saved **$20,000.00** of **$63,000.00**",
		"Months remaining: 24",
		"Required monthly contribution: $1,666.67",
		"Projected completion: 2027-04-15",
	} {
		if !strings.Contains(out, s) {
			t.Errorf("output does not contain %q:\n%s", s, out)
		}
	}
}

func TestRenderGoals_Empty(t *testing.T) {
	out := RenderGoals(NewGoals(nil, date.New(2025, time.August, 15)))
	if !strings.Contains(out, "_No goals._") || strings.Contains(out, "Saved") {
		t.Errorf("unexpected empty goals report:\n%s", out)
	}
}

func TestNewGoals_MixedCurrencies(t *testing.T) {
	a := folio.NewGoal("A", folio.GoalSavings, usd(100), date.Date{})
	b := folio.NewGoal("B", folio.GoalSavings, folio.M(100, "EUR"), date.Date{})
	if g := NewGoals([]folio.Goal{a, b}, date.New(2025, time.August, 15)); g.HasTotals {
		t.Error("totals of goals in different currencies must be omitted")
	}
}

func TestQuotesMarkdown(t *testing.T) {
	quotes := []quote.Quote{
		{
			Symbol:           "AAPL",
			Price:            decimal.RequireFromString("185.50"),
			Open:             decimal.RequireFromString("183.00"),
			High:             decimal.RequireFromString("186.00"),
			Low:              decimal.RequireFromString("182.50"),
			PreviousClose:    decimal.RequireFromString("183.25"),
			Change:           decimal.RequireFromString("2.25"),
			ChangePercent:    1.2278,
			Volume:           51234567,
			LatestTradingDay: date.New(2025, time.August, 15),
			Source:           quote.SourceAlphaVantage,
		},
		{Symbol: "MSFT", Price: decimal.NewFromInt(310), Source: quote.SourceMock},
	}
	out := QuotesMarkdown(quotes, "USD")
	doc := parse(t, out)
	if len(doc.tables) != 1 || len(doc.tables[0]) != 3 {
		t.Fatalf("unexpected tables %q:\n%s", doc.tables, out)
	}
	want := []string{"AAPL", "$185.50", "+$2.25", "+1.23%", "$183.00", "$186.00", "$182.50", "$183.25", "51234567", "2025-08-15"}
	for i, w := range want {
		if got := doc.tables[0][1][i]; got != w {
			t.Errorf("column %q = %q, want %q", doc.tables[0][0][i], got, w)
		}
	}
	if got := doc.tables[0][2][0]; got != "MSFT*" {
		t.Errorf("mock quote symbol = %q, want MSFT*", got)
	}
	if !strings.Contains(out, "simulated quote") {
		t.Errorf("missing mock legend:\n%s", out)
	}
}

func TestNewsMarkdown(t *testing.T) {
	articles := []news.Article{
		{
			Source:      news.Source{Name: "Reuters"},
			Title:       "Apple [AAPL] beats estimates",
			Description: "Quarterly\nresults are in.",
			URL:         "https://example.com/a",
			PublishedAt: asOf,
		},
		{Title: "Untitled", URL: "https://example.com/b"},
	}
	out := NewsMarkdown("News for AAPL", articles)
	for _, s := range []string{
		"# News for AAPL",
		`1. [Apple \[AAPL\] beats estimates](https://example.com/a) - Reuters, 2025-08-15 12:00`,
		"   Quarterly results are in.",
		"2. [Untitled](https://example.com/b)\n",
	} {
		if !strings.Contains(out, s) {
			t.Errorf("output does not contain %q:\n%s", s, out)
		}
	}
	if out := NewsMarkdown("News", nil); !strings.Contains(out, "_No article found._") {
		t.Errorf("unexpected empty news:\n%s", out)
	}
}

func TestStockMarkdown(t *testing.T) {
	s := stock("AAPL", 150, 185.5, 10)
	doc := parse(t, StockMarkdown(s, usd(3710)))
	if len(doc.headings) != 1 || doc.headings[0] != "AAPL" {
		t.Errorf("headings = %q", doc.headings)
	}
	values := map[string]string{}
	for _, r := range doc.tables[0][1:] {
		values[r[0]] = r[1]
	}
	want := map[string]string{
		"ID":            "id-AAPL",
		"Market Value":  "$1,855.00",
		"Cost Basis":    "$1,500.00",
		"Profit/Loss":   "+$355.00",
		"Profit/Loss %": "+23.67%",
		"Allocation":    "50.00%",
	}
	for k, w := range want {
		if values[k] != w {
			t.Errorf("%s = %q, want %q", k, values[k], w)
		}
	}
}

func TestSettingsMarkdown(t *testing.T) {
	doc := parse(t, SettingsMarkdown(folio.DefaultSettings()))
	values := map[string]string{}
	for _, r := range doc.tables[0][1:] {
		values[r[0]] = r[1]
	}
	if values["Currency"] != folio.DefaultCurrency {
		t.Errorf("Currency = %q, want %q", values["Currency"], folio.DefaultCurrency)
	}
	if values["Refresh Interval"] != folio.DefaultSettings().Refresh().String() {
		t.Errorf("Refresh Interval = %q", values["Refresh Interval"])
	}
}

func TestSummaryMarkdown(t *testing.T) {
	stocks := sampleStocks()
	out := SummaryMarkdown("USD", folio.Summarize(stocks))
	for _, s := range []string{"Portfolio Summary", "$3,805.00", "$3,500.00", "+$305.00", "+8.71%", "AAPL (+23.67%)", "TSLA (-20.00%)"} {
		if !strings.Contains(out, s) {
			t.Errorf("output does not contain %q:\n%s", s, out)
		}
	}
	if out := SummaryMarkdown("USD", folio.Summarize(nil)); !strings.Contains(out, "$0.00") {
		t.Errorf("empty summary:\n%s", out)
	}
}

func TestHistoryMarkdown(t *testing.T) {
	snaps := []store.Snapshot{
		{TakenAt: asOf, Currency: "USD", TotalValue: decimal.NewFromInt(1100), TotalCost: decimal.NewFromInt(1000), TotalProfitLoss: decimal.NewFromInt(100), Positions: make([]store.Position, 2)},
		{TakenAt: asOf.Add(-24 * time.Hour), Currency: "USD", TotalValue: decimal.NewFromInt(1000), TotalCost: decimal.NewFromInt(1000)},
	}
	out := HistoryMarkdown(snaps)
	for _, s := range []string{"Portfolio History", "$1,100.00", "+$100.00", "+10.00%"} {
		if !strings.Contains(out, s) {
			t.Errorf("output does not contain %q:\n%s", s, out)
		}
	}
	if out := HistoryMarkdown(nil); !strings.Contains(out, "No snapshot recorded") {
		t.Errorf("empty history:\n%s", out)
	}
}
