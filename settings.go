package folio

import (
	"fmt"
	"strings"
	"time"

	"github.com/Rhymond/go-money"
)

// DefaultCurrency prices positions when the user configured none.
const DefaultCurrency = "USD"

// Settings are the user preferences persisted alongside the portfolio.
type Settings struct {
	Currency        string  `json:"currency" yaml:"currency"`
	RefreshInterval int     `json:"refreshInterval" yaml:"refreshInterval"` // in seconds
	MockData        bool    `json:"mockData" yaml:"mockData"`
	NewsCountry     string  `json:"newsCountry" yaml:"newsCountry"`
	NewsCategory    string  `json:"newsCategory" yaml:"newsCategory"`
	SortBy          SortKey `json:"sortBy" yaml:"sortBy"`
	SortDesc        bool    `json:"sortDesc" yaml:"sortDesc"`
}

// DefaultSettings returns the settings of a new user.
func DefaultSettings() Settings {
	return Settings{
		Currency:        DefaultCurrency,
		RefreshInterval: 60,
		NewsCountry:     "us",
		NewsCategory:    "business",
		SortBy:          SortByValue,
		SortDesc:        true,
	}
}

// Refresh returns the price refresh period.
func (s Settings) Refresh() time.Duration { return time.Duration(s.RefreshInterval) * time.Second }

// newsCategories are the categories accepted by the top-headlines endpoint.
var newsCategories = []string{"business", "entertainment", "general", "health", "science", "sports", "technology"}

// Validate reports every invalid field.
func (s Settings) Validate() error {
	verr := &ValidationError{Record: "settings"}
	if money.GetCurrency(s.Currency) == nil {
		verr.add("currency", fmt.Sprintf("unknown currency code %q", s.Currency))
	}
	if s.RefreshInterval < 10 {
		verr.add("refreshInterval", "must be at least 10 seconds")
	}
	if len(s.NewsCountry) != 2 {
		verr.add("newsCountry", "must be a 2-letter country code")
	}
	known := false
	for _, c := range newsCategories {
		known = known || c == s.NewsCategory
	}
	if !known {
		verr.add("newsCategory", "must be one of "+strings.Join(newsCategories, ", "))
	}
	if _, err := ParseSortKey(string(s.SortBy)); err != nil || s.SortBy == "" {
		verr.add("sortBy", "must be ticker, value, profit, percent or allocation")
	}
	return verr.orNil()
}

// WithDefaults fills zero fields from DefaultSettings.
func (s Settings) WithDefaults() Settings {
	def := DefaultSettings()
	if s.Currency == "" {
		s.Currency = def.Currency
	}
	s.Currency = strings.ToUpper(s.Currency)
	if s.RefreshInterval == 0 {
		s.RefreshInterval = def.RefreshInterval
	}
	if s.NewsCountry == "" {
		s.NewsCountry = def.NewsCountry
	}
	if s.NewsCategory == "" {
		s.NewsCategory = def.NewsCategory
	}
	if s.SortBy == "" {
		s.SortBy = def.SortBy
	}
	return s
}
