package folio

import (
	"encoding/json"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Stock is one held position.
type Stock struct {
	ID           string
	Ticker       string
	BuyPrice     Money
	CurrentPrice Money
	Quantity     Quantity
	LastUpdated  time.Time
}

// NewStock creates a normalized position with a fresh id.
// The current price is initialized to the buy price when zero.
func NewStock(ticker string, buyPrice, currentPrice Money, quantity Quantity) Stock {
	if currentPrice.IsZero() {
		currentPrice = buyPrice
	}
	s := Stock{
		ID:           uuid.NewString(),
		Ticker:       ticker,
		BuyPrice:     buyPrice,
		CurrentPrice: currentPrice,
		Quantity:     quantity,
		LastUpdated:  time.Now(),
	}
	return s.Normalize()
}

// NormalizeTicker trims and upper-cases a ticker symbol.
func NormalizeTicker(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}

// Currency returns the currency the position is priced in.
func (s Stock) Currency() string {
	if s.BuyPrice.Currency() != "" {
		return s.BuyPrice.Currency()
	}
	return s.CurrentPrice.Currency()
}

// Normalize returns a copy with a canonical ticker and both prices in the same currency.
func (s Stock) Normalize() Stock {
	s.Ticker = NormalizeTicker(s.Ticker)
	cur := s.Currency()
	s.BuyPrice = s.BuyPrice.WithCurrency(cur)
	s.CurrentPrice = s.CurrentPrice.WithCurrency(cur)
	return s
}

// tickerRE accepts symbols like AAPL, BRK.B, RDS-A or ^GSPC.
var tickerRE = regexp.MustCompile(`^[A-Z0-9^][A-Z0-9.\-^]{0,11}$`)

// Validate reports every invalid field of a normalized stock.
func (s Stock) Validate() error {
	verr := &ValidationError{Record: "stock"}
	switch {
	case s.Ticker == "":
		verr.add("ticker", "is required")
	case !tickerRE.MatchString(s.Ticker):
		verr.add("ticker", "must be 1-12 letters, digits, '.', '-' or '^'")
	}
	if !s.BuyPrice.IsPositive() {
		verr.add("buyPrice", "must be positive")
	}
	if !s.CurrentPrice.IsPositive() {
		verr.add("currentPrice", "must be positive")
	}
	if !s.Quantity.IsPositive() {
		verr.add("quantity", "must be positive")
	}
	if s.BuyPrice.Currency() != s.CurrentPrice.Currency() {
		verr.add("currency", "buy and current prices must share a currency")
	}
	return verr.orNil()
}

// IsValidStock reports whether s, once normalized, is acceptable in a portfolio.
func IsValidStock(s Stock) bool { return s.Normalize().Validate() == nil }

// SetPrice records a new current price observed at 'at'.
func (s *Stock) SetPrice(price Money, at time.Time) {
	s.CurrentPrice = price.WithCurrency(s.Currency())
	s.LastUpdated = at
}

// MarshalJSON encodes prices and quantity as plain numbers.
func (s Stock) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Optional("id", s.ID)
	w.Append("ticker", s.Ticker)
	w.Amount("buyPrice", s.BuyPrice)
	w.Amount("currentPrice", s.CurrentPrice)
	w.Append("quantity", s.Quantity.value)
	w.Optional("currency", s.Currency())
	w.Time("lastUpdated", s.LastUpdated)
	return w.MarshalJSON()
}

func (s *Stock) UnmarshalJSON(data []byte) error {
	var js struct {
		ID           string          `json:"id"`
		Ticker       string          `json:"ticker"`
		BuyPrice     decimal.Decimal `json:"buyPrice"`
		CurrentPrice decimal.Decimal `json:"currentPrice"`
		Quantity     decimal.Decimal `json:"quantity"`
		Currency     string          `json:"currency"`
		LastUpdated  time.Time       `json:"lastUpdated"`
	}
	if err := json.Unmarshal(data, &js); err != nil {
		return err
	}
	*s = Stock{
		ID:           js.ID,
		Ticker:       js.Ticker,
		BuyPrice:     M(js.BuyPrice, js.Currency),
		CurrentPrice: M(js.CurrentPrice, js.Currency),
		Quantity:     Q(js.Quantity),
		LastUpdated:  js.LastUpdated,
	}
	return nil
}
