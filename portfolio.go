package folio

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Portfolio is the in-memory collection of the user's positions and goals.
//
// Positions are all priced in the portfolio currency and tickers are unique.
// A Portfolio is not safe for concurrent use.
type Portfolio struct {
	currency string
	stocks   []Stock
	goals    []Goal
}

// NewPortfolio returns an empty portfolio priced in 'currency'.
func NewPortfolio(currency string) *Portfolio {
	if currency == "" {
		currency = DefaultCurrency
	}
	return &Portfolio{currency: strings.ToUpper(currency)}
}

// Currency returns the portfolio currency.
func (p *Portfolio) Currency() string { return p.currency }

// prepare normalizes s into the portfolio currency and validates it.
func (p *Portfolio) prepare(s Stock) (Stock, error) {
	s.BuyPrice = s.BuyPrice.WithCurrency(p.currency)
	s = s.Normalize()
	if err := s.Validate(); err != nil {
		return s, err
	}
	if s.Currency() != p.currency {
		return s, &ValidationError{Record: "stock", Fields: map[string]string{
			"currency": fmt.Sprintf("must be %s, the portfolio currency", p.currency),
		}}
	}
	return s, nil
}

// index returns the position of the stock identified by id or ticker, -1 if absent.
func (p *Portfolio) index(idOrTicker string) int {
	for i, s := range p.stocks {
		if s.ID == idOrTicker {
			return i
		}
	}
	ticker := NormalizeTicker(idOrTicker)
	for i, s := range p.stocks {
		if s.Ticker == ticker {
			return i
		}
	}
	return -1
}

// Add normalizes, validates and appends a position.
// It assigns an id when missing and fails with ErrDuplicateTicker if the ticker is already held.
func (p *Portfolio) Add(s Stock) (Stock, error) {
	s, err := p.prepare(s)
	if err != nil {
		return Stock{}, err
	}
	if _, exists := p.Find(s.Ticker); exists {
		return Stock{}, fmt.Errorf("%s: %w", s.Ticker, ErrDuplicateTicker)
	}
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.LastUpdated.IsZero() {
		s.LastUpdated = time.Now()
	}
	p.stocks = append(p.stocks, s)
	return s, nil
}

// Get returns the stock identified by its id, or by its ticker.
func (p *Portfolio) Get(idOrTicker string) (Stock, bool) {
	i := p.index(idOrTicker)
	if i < 0 {
		return Stock{}, false
	}
	return p.stocks[i], true
}

// Find returns the stock holding 'ticker'.
func (p *Portfolio) Find(ticker string) (Stock, bool) {
	ticker = NormalizeTicker(ticker)
	for _, s := range p.stocks {
		if s.Ticker == ticker {
			return s, true
		}
	}
	return Stock{}, false
}

// Update applies 'fn' to a copy of the identified stock, and stores the result if it is still valid.
func (p *Portfolio) Update(idOrTicker string, fn func(*Stock)) (Stock, error) {
	i := p.index(idOrTicker)
	if i < 0 {
		return Stock{}, fmt.Errorf("%s: %w", idOrTicker, ErrStockNotFound)
	}
	s := p.stocks[i]
	fn(&s)
	s.ID = p.stocks[i].ID
	s, err := p.prepare(s)
	if err != nil {
		return Stock{}, err
	}
	for j, other := range p.stocks {
		if j != i && other.Ticker == s.Ticker {
			return Stock{}, fmt.Errorf("%s: %w", s.Ticker, ErrDuplicateTicker)
		}
	}
	p.stocks[i] = s
	return s, nil
}

// Remove deletes the identified stock and returns it.
func (p *Portfolio) Remove(idOrTicker string) (Stock, error) {
	i := p.index(idOrTicker)
	if i < 0 {
		return Stock{}, fmt.Errorf("%s: %w", idOrTicker, ErrStockNotFound)
	}
	s := p.stocks[i]
	p.stocks = append(p.stocks[:i], p.stocks[i+1:]...)
	return s, nil
}

// Stocks returns a copy of the positions in insertion order.
func (p *Portfolio) Stocks() []Stock {
	out := make([]Stock, len(p.stocks))
	copy(out, p.stocks)
	return out
}

// Tickers returns the held tickers in insertion order.
func (p *Portfolio) Tickers() []string {
	out := make([]string, 0, len(p.stocks))
	for _, s := range p.stocks {
		out = append(out, s.Ticker)
	}
	return out
}

// UpdatePrice sets the current price of the position holding 'ticker'.
func (p *Portfolio) UpdatePrice(ticker string, price Money, at time.Time) error {
	if !price.IsPositive() {
		return &ValidationError{Record: "stock", Fields: map[string]string{"currentPrice": "must be positive"}}
	}
	if c := price.Currency(); c != "" && c != p.currency {
		return &ValidationError{Record: "stock", Fields: map[string]string{
			"currency": fmt.Sprintf("quote in %s cannot price a %s portfolio", c, p.currency),
		}}
	}
	ticker = NormalizeTicker(ticker)
	for i := range p.stocks {
		if p.stocks[i].Ticker == ticker {
			p.stocks[i].SetPrice(price, at)
			return nil
		}
	}
	return fmt.Errorf("%s: %w", ticker, ErrStockNotFound)
}

// Summary computes the portfolio totals.
func (p *Portfolio) Summary() Summary { return Summarize(p.stocks) }

// MergeResult reports the outcome of a Merge.
type MergeResult struct {
	Added   []Stock
	Skipped []string // tickers already held
}

// Merge adds every stock whose ticker is not held yet. Invalid stocks fail the whole merge
// before anything is added.
func (p *Portfolio) Merge(stocks []Stock) (MergeResult, error) {
	var res MergeResult
	prepared := make([]Stock, 0, len(stocks))
	for _, s := range stocks {
		s, err := p.prepare(s)
		if err != nil {
			return res, fmt.Errorf("%s: %w", s.Ticker, err)
		}
		prepared = append(prepared, s)
	}
	for _, s := range prepared {
		added, err := p.Add(s)
		if err != nil {
			res.Skipped = append(res.Skipped, s.Ticker)
			continue
		}
		res.Added = append(res.Added, added)
	}
	return res, nil
}

// AddGoal validates and appends a goal, assigning an id when missing.
func (p *Portfolio) AddGoal(g Goal) (Goal, error) {
	g, err := p.prepareGoal(g)
	if err != nil {
		return Goal{}, err
	}
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	if g.CreatedAt.IsZero() {
		g.CreatedAt = time.Now()
	}
	p.goals = append(p.goals, g)
	return g, nil
}

func (p *Portfolio) prepareGoal(g Goal) (Goal, error) {
	g.Title = strings.TrimSpace(g.Title)
	g.TargetAmount = g.TargetAmount.WithCurrency(p.currency)
	g.CurrentAmount = g.CurrentAmount.WithCurrency(g.Currency())
	g.MonthlyContribution = g.MonthlyContribution.WithCurrency(g.Currency())
	if err := g.Validate(); err != nil {
		return g, err
	}
	if g.Currency() != p.currency {
		return g, &ValidationError{Record: "goal", Fields: map[string]string{
			"currency": fmt.Sprintf("must be %s, the portfolio currency", p.currency),
		}}
	}
	return g, nil
}

// goalIndex finds a goal by id, or by title case insensitively.
func (p *Portfolio) goalIndex(idOrTitle string) int {
	for i, g := range p.goals {
		if g.ID == idOrTitle {
			return i
		}
	}
	for i, g := range p.goals {
		if strings.EqualFold(g.Title, strings.TrimSpace(idOrTitle)) {
			return i
		}
	}
	return -1
}

// Goal returns the goal identified by its id or title.
func (p *Portfolio) Goal(idOrTitle string) (Goal, bool) {
	i := p.goalIndex(idOrTitle)
	if i < 0 {
		return Goal{}, false
	}
	return p.goals[i], true
}

// UpdateGoal applies 'fn' to a copy of the identified goal, and stores it if 'fn' succeeds
// and the goal is still valid.
func (p *Portfolio) UpdateGoal(idOrTitle string, fn func(*Goal) error) (Goal, error) {
	i := p.goalIndex(idOrTitle)
	if i < 0 {
		return Goal{}, fmt.Errorf("%s: %w", idOrTitle, ErrGoalNotFound)
	}
	g := p.goals[i]
	if err := fn(&g); err != nil {
		return Goal{}, err
	}
	g.ID = p.goals[i].ID
	g, err := p.prepareGoal(g)
	if err != nil {
		return Goal{}, err
	}
	p.goals[i] = g
	return g, nil
}

// RemoveGoal deletes the identified goal and returns it.
func (p *Portfolio) RemoveGoal(idOrTitle string) (Goal, error) {
	i := p.goalIndex(idOrTitle)
	if i < 0 {
		return Goal{}, fmt.Errorf("%s: %w", idOrTitle, ErrGoalNotFound)
	}
	g := p.goals[i]
	p.goals = append(p.goals[:i], p.goals[i+1:]...)
	return g, nil
}

// Goals returns a copy of all goals.
func (p *Portfolio) Goals() []Goal {
	out := make([]Goal, len(p.goals))
	copy(out, p.goals)
	return out
}

// ActiveGoals returns the goals still pursued.
func (p *Portfolio) ActiveGoals() []Goal {
	var out []Goal
	for _, g := range p.goals {
		if g.IsActive {
			out = append(out, g)
		}
	}
	return out
}
