package folio

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// this file contains functions to handle the import/export formats.
// The JSON document is the one exchanged with the web app, the CSV is meant for spreadsheets.

func init() {
	// Exports carry prices as numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// ExportVersion is the version written in exported documents.
const ExportVersion = "1.0"

// ExportMetadata summarizes the exported positions.
type ExportMetadata struct {
	TotalValue      decimal.Decimal `json:"totalValue"`
	TotalPositions  int             `json:"totalPositions"`
	TotalProfitLoss decimal.Decimal `json:"totalProfitLoss"`
	Currency        string          `json:"currency,omitempty"`
}

// ExportData is the export document.
type ExportData struct {
	Version    string         `json:"version"`
	ExportDate time.Time      `json:"exportDate"`
	Metadata   ExportMetadata `json:"metadata"`
	Stocks     []Stock        `json:"stocks"`
}

// NewExportData builds the export document of 'stocks' as of 'now'.
func NewExportData(stocks []Stock, now time.Time) ExportData {
	if stocks == nil {
		stocks = []Stock{}
	}
	sum := Summarize(stocks)
	return ExportData{
		Version:    ExportVersion,
		ExportDate: now.UTC(),
		Metadata: ExportMetadata{
			TotalValue:      sum.TotalValue.Decimal(),
			TotalPositions:  sum.Positions,
			TotalProfitLoss: sum.TotalProfitLoss.Decimal(),
			Currency:        sum.TotalValue.Currency(),
		},
		Stocks: stocks,
	}
}

// Export writes 'stocks' to 'w' as an indented JSON export document.
func Export(w io.Writer, stocks []Stock) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(NewExportData(stocks, time.Now()))
}

// Import reads an export document from 'r'.
//
// A bare JSON array of stocks, as saved by older versions, is accepted too.
// Every stock is normalized and gets a fresh id. Valid stocks are returned
// even when others are rejected; the error then joins one error per rejected stock.
func Import(r io.Reader) ([]Stock, error) {
	br := bufio.NewReader(r)
	first, err := firstNonSpace(br)
	if err != nil {
		return nil, fmt.Errorf("cannot read export document: %w", err)
	}

	var data ExportData
	dec := json.NewDecoder(br)
	switch first {
	case '[':
		err = dec.Decode(&data.Stocks)
	case '{':
		err = dec.Decode(&data)
		if err == nil && data.Version != "" && !strings.HasPrefix(data.Version, "1.") {
			return nil, fmt.Errorf("unsupported export version %q", data.Version)
		}
	default:
		return nil, fmt.Errorf("not an export document: unexpected %q", first)
	}
	if err != nil {
		return nil, fmt.Errorf("cannot parse export document: %w", err)
	}
	return acceptImported(data.Stocks)
}

func firstNonSpace(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.ReadByte()
		if err != nil {
			return 0, err
		}
		switch b {
		case ' ', '\t', '\r', '\n', 0xEF, 0xBB, 0xBF: // blanks and UTF-8 BOM
			continue
		}
		return b, br.UnreadByte()
	}
}

// acceptImported normalizes, validates and re-identifies imported stocks.
func acceptImported(stocks []Stock) ([]Stock, error) {
	var errs []error
	accepted := make([]Stock, 0, len(stocks))
	for i, s := range stocks {
		s = s.Normalize()
		if err := s.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("stock #%d %q: %w", i+1, s.Ticker, err))
			continue
		}
		s.ID = uuid.NewString()
		accepted = append(accepted, s)
	}
	return accepted, errors.Join(errs...)
}

var csvHeader = []string{"ticker", "buyPrice", "currentPrice", "quantity", "currency", "lastUpdated"}

// ExportCSV writes 'stocks' to 'w' as CSV with a header line.
func ExportCSV(w io.Writer, stocks []Stock) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, s := range stocks {
		updated := ""
		if !s.LastUpdated.IsZero() {
			updated = s.LastUpdated.UTC().Format(time.RFC3339)
		}
		record := []string{
			s.Ticker,
			s.BuyPrice.Decimal().String(),
			s.CurrentPrice.Decimal().String(),
			s.Quantity.String(),
			s.Currency(),
			updated,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ImportCSV reads stocks from CSV. Columns are located by the header line, in any order;
// ticker, buyPrice and quantity are required, the others optional.
func ImportCSV(r io.Reader) ([]Stock, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("cannot read CSV header: %w", err)
	}
	col := make(map[string]int)
	for i, name := range header {
		col[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	for _, required := range []string{"ticker", "buyPrice", "quantity"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("CSV header misses column %q", required)
		}
	}
	field := func(record []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var stocks []Stock
	var errs []error
	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("cannot read CSV: %w", err)
		}
		s, err := parseCSVStock(func(name string) string { return field(record, name) })
		if err != nil {
			errs = append(errs, fmt.Errorf("line %d: %w", line, err))
			continue
		}
		stocks = append(stocks, s)
	}
	accepted, err := acceptImported(stocks)
	return accepted, errors.Join(append(errs, err)...)
}

func parseCSVStock(field func(string) string) (Stock, error) {
	cur := strings.ToUpper(field("currency"))
	buy, err := decimal.NewFromString(field("buyPrice"))
	if err != nil {
		return Stock{}, fmt.Errorf("invalid buyPrice %q", field("buyPrice"))
	}
	current := buy
	if v := field("currentPrice"); v != "" {
		if current, err = decimal.NewFromString(v); err != nil {
			return Stock{}, fmt.Errorf("invalid currentPrice %q", v)
		}
	}
	qty, err := decimal.NewFromString(field("quantity"))
	if err != nil {
		return Stock{}, fmt.Errorf("invalid quantity %q", field("quantity"))
	}
	var updated time.Time
	if v := field("lastUpdated"); v != "" {
		if updated, err = time.Parse(time.RFC3339, v); err != nil {
			return Stock{}, fmt.Errorf("invalid lastUpdated %q", v)
		}
	}
	return Stock{
		Ticker:       field("ticker"),
		BuyPrice:     M(buy, cur),
		CurrentPrice: M(current, cur),
		Quantity:     Q(qty),
		LastUpdated:  updated,
	}, nil
}
