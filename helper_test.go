package folio

import (
	"testing"
	"time"
)

// USD is a helper for test to create usd money from const
func USD(v float64) Money { return M(v, "USD") }

// EUR is a helper for test to create euro money from const
func EUR(v float64) Money { return M(v, "EUR") }

// NO is a helper for test to create money from const with no currency set
func NO(v float64) Money { return M(v, "") }

// stock is a helper to create a valid USD position.
func stock(ticker string, buy, current, qty float64) Stock {
	return Stock{
		ID:           "id-" + ticker,
		Ticker:       ticker,
		BuyPrice:     USD(buy),
		CurrentPrice: USD(current),
		Quantity:     Q(qty),
		LastUpdated:  time.Date(2025, time.August, 15, 12, 0, 0, 0, time.UTC),
	}
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

// assertMoney fails if got is not 'want' once rounded to cents.
func assertMoney(t *testing.T, name string, got, want Money) {
	t.Helper()
	if !got.Round(2).Equal(want.Round(2)) {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}
