package cmd

import (
	"fmt"
	"strings"

	"github.com/etnz/folio"
	"github.com/shopspring/decimal"
)

// parseMoney parses a decimal amount in 'currency'. Thousands separators are ignored.
func parseMoney(name, s, currency string) (folio.Money, error) {
	d, err := parseDecimal(name, s)
	if err != nil {
		return folio.Money{}, err
	}
	return folio.M(d, currency), nil
}

func parseQuantity(name, s string) (folio.Quantity, error) {
	d, err := parseDecimal(name, s)
	if err != nil {
		return folio.Quantity{}, err
	}
	return folio.Q(d), nil
}

func parseDecimal(name, s string) (decimal.Decimal, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	s = strings.TrimPrefix(s, "$")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s %q: not a number", name, s)
	}
	return d, nil
}
