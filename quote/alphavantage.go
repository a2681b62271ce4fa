package quote

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/folio"
	"github.com/etnz/folio/date"
	"github.com/etnz/folio/webapi"
	"github.com/shopspring/decimal"
)

// DefaultAlphaVantageURL is the Alpha Vantage API endpoint.
const DefaultAlphaVantageURL = "https://www.alphavantage.co"

// AlphaVantage fetches quotes from the Alpha Vantage GLOBAL_QUOTE function.
type AlphaVantage struct {
	key     string
	baseURL string
	client  *webapi.Client
}

// NewAlphaVantage returns a provider using 'key'. A nil httpClient uses the webapi default.
func NewAlphaVantage(key string, httpClient *http.Client) *AlphaVantage {
	return &AlphaVantage{
		key:     key,
		baseURL: DefaultAlphaVantageURL,
		client:  &webapi.Client{Service: SourceAlphaVantage, HTTP: httpClient, Retries: 2},
	}
}

// WithBaseURL points the provider to another endpoint.
func (a *AlphaVantage) WithBaseURL(base string) *AlphaVantage {
	a.baseURL = strings.TrimSuffix(base, "/")
	return a
}

// IsCacheable reports whether an Alpha Vantage response body holds data rather than an error note.
// Alpha Vantage reports rate limits and errors with a 200 status.
func IsCacheable(body []byte) bool {
	s := string(body)
	return !strings.Contains(s, `"Note"`) && !strings.Contains(s, `"Information"`) && !strings.Contains(s, `"Error Message"`)
}

/*
	{
	    "Global Quote": {
	        "01. symbol": "IBM",
	        "02. open": "167.0000",
	        "03. high": "168.9600",
	        "04. low": "166.8300",
	        "05. price": "168.5100",
	        "06. volume": "3375891",
	        "07. latest trading day": "2024-05-24",
	        "08. previous close": "167.0000",
	        "09. change": "1.5100",
	        "10. change percent": "0.9042%"
	    }
	}
*/
func (a *AlphaVantage) Quote(ctx context.Context, symbol string) (Quote, error) {
	symbol = folio.NormalizeTicker(symbol)
	if a.key == "" {
		return Quote{}, &webapi.Error{Service: SourceAlphaVantage, Kind: webapi.ErrInvalidKey, Message: "no api key configured"}
	}

	q := url.Values{}
	q.Set("function", "GLOBAL_QUOTE")
	q.Set("symbol", symbol)
	q.Set("apikey", a.key)
	addr := a.baseURL + "/query?" + q.Encode()

	var jobj any
	if err := a.client.GetJSON(ctx, addr, &jobj); err != nil {
		return Quote{}, fmt.Errorf("cannot get quote for %s: %w", symbol, err)
	}
	if err := alphaVantageError(jobj); err != nil {
		return Quote{}, fmt.Errorf("cannot get quote for %s: %w", symbol, err)
	}

	p := &quoteParser{jobj: jobj}
	quote := Quote{
		Symbol:           symbol,
		Price:            p.decimal("05. price"),
		Open:             p.decimal("02. open"),
		High:             p.decimal("03. high"),
		Low:              p.decimal("04. low"),
		PreviousClose:    p.decimal("08. previous close"),
		Change:           p.decimal("09. change"),
		ChangePercent:    folio.Percent(p.decimal("10. change percent").InexactFloat64()),
		Volume:           p.decimal("06. volume").IntPart(),
		LatestTradingDay: p.date("07. latest trading day"),
		FetchedAt:        time.Now(),
		Source:           SourceAlphaVantage,
	}
	if p.err != nil || !quote.Price.IsPositive() {
		return Quote{}, fmt.Errorf("cannot get quote for %s: %w", symbol,
			&webapi.Error{Service: SourceAlphaVantage, Kind: webapi.ErrNotFound, Message: "no quote for symbol"})
	}
	return quote, nil
}

// alphaVantageError detects the errors Alpha Vantage reports in 200 responses.
func alphaVantageError(jobj any) error {
	obj, ok := jobj.(map[string]any)
	if !ok {
		return &webapi.Error{Service: SourceAlphaVantage, Kind: webapi.ErrUnavailable, Message: "unexpected response"}
	}
	for _, field := range []string{"Note", "Information"} {
		if msg, ok := obj[field]; ok {
			return &webapi.Error{Service: SourceAlphaVantage, Kind: webapi.ErrRateLimited, Message: fmt.Sprint(msg)}
		}
	}
	if msg, ok := obj["Error Message"]; ok {
		text := fmt.Sprint(msg)
		kind := webapi.ErrNotFound
		if lower := strings.ToLower(text); strings.Contains(lower, "apikey") || strings.Contains(lower, "api key") {
			kind = webapi.ErrInvalidKey
		}
		return &webapi.Error{Service: SourceAlphaVantage, Kind: kind, Message: text}
	}
	return nil
}

// quoteParser reads "Global Quote" fields, keeping the first error.
type quoteParser struct {
	jobj any
	err  error
}

func (p *quoteParser) field(name string) string {
	path := fmt.Sprintf(`$["Global Quote"][%q]`, name)
	jval, err := jsonpath.Get(path, p.jobj)
	if err != nil {
		if p.err == nil {
			p.err = fmt.Errorf("error parsing %q: %w", path, err)
		}
		return ""
	}
	s, _ := jval.(string)
	return strings.TrimSuffix(strings.TrimSpace(s), "%")
}

func (p *quoteParser) decimal(name string) decimal.Decimal {
	s := p.field(name)
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("invalid %q: %w", name, err)
	}
	return d
}

func (p *quoteParser) date(name string) date.Date {
	s := p.field(name)
	if s == "" {
		return date.Date{}
	}
	d, err := date.Parse(s)
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("invalid %q: %w", name, err)
	}
	return d
}
