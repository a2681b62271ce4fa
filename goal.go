package folio

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/etnz/folio/date"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// GoalType classifies a financial goal.
type GoalType string

const (
	GoalSavings    GoalType = "savings"
	GoalInvestment GoalType = "investment"
	GoalRetirement GoalType = "retirement"
	GoalEmergency  GoalType = "emergency"
	GoalPurchase   GoalType = "purchase"
	GoalOther      GoalType = "other"
)

// GoalTypes lists every known goal type, in display order.
var GoalTypes = []GoalType{GoalSavings, GoalInvestment, GoalRetirement, GoalEmergency, GoalPurchase, GoalOther}

// ParseGoalType parses a goal type, case insensitive. The empty string is GoalOther.
func ParseGoalType(s string) (GoalType, error) {
	t := GoalType(strings.ToLower(strings.TrimSpace(s)))
	if t == "" {
		return GoalOther, nil
	}
	if !t.IsValid() {
		return "", fmt.Errorf("unknown goal type %q", s)
	}
	return t, nil
}

func (t GoalType) IsValid() bool {
	for _, known := range GoalTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Goal is a financial target, independent of the holdings.
type Goal struct {
	ID                  string
	Title               string
	Type                GoalType
	TargetAmount        Money
	CurrentAmount       Money
	TargetDate          date.Date
	MonthlyContribution Money
	Category            string
	IsActive            bool
	CreatedAt           time.Time
}

// NewGoal creates an active goal with a fresh id.
func NewGoal(title string, typ GoalType, target Money, targetDate date.Date) Goal {
	return Goal{
		ID:           uuid.NewString(),
		Title:        strings.TrimSpace(title),
		Type:         typ,
		TargetAmount: target,
		TargetDate:   targetDate,
		IsActive:     true,
		CreatedAt:    time.Now(),
	}
}

// Currency returns the currency the goal is expressed in.
func (g Goal) Currency() string { return g.TargetAmount.Currency() }

// Validate reports every invalid field of the goal.
func (g Goal) Validate() error {
	verr := &ValidationError{Record: "goal"}
	if strings.TrimSpace(g.Title) == "" {
		verr.add("title", "is required")
	}
	if !g.Type.IsValid() {
		verr.add("type", fmt.Sprintf("must be one of %v", GoalTypes))
	}
	if !g.TargetAmount.IsPositive() {
		verr.add("targetAmount", "must be positive")
	}
	if g.CurrentAmount.IsNegative() {
		verr.add("currentAmount", "must not be negative")
	}
	if g.MonthlyContribution.IsNegative() {
		verr.add("monthlyContribution", "must not be negative")
	}
	for _, m := range []Money{g.CurrentAmount, g.MonthlyContribution} {
		if m.Currency() != "" && m.Currency() != g.Currency() {
			verr.add("currency", fmt.Sprintf("amounts must all be in %s, got %s", g.Currency(), m.Currency()))
			break
		}
	}
	return verr.orNil()
}

// Progress is the share of the target already saved, capped at 100.
func (g Goal) Progress() Percent {
	p := g.CurrentAmount.Percent(g.TargetAmount)
	if p > 100 {
		return 100
	}
	if p < 0 {
		return 0
	}
	return p
}

// IsReached reports whether the current amount covers the target.
func (g Goal) IsReached() bool {
	return g.TargetAmount.IsPositive() && g.CurrentAmount.GreaterThanOrEqual(g.TargetAmount)
}

// Remaining is the amount still to be saved, never negative.
func (g Goal) Remaining() Money {
	r := g.TargetAmount.Sub(g.CurrentAmount)
	if r.IsNegative() {
		return M(0, r.Currency())
	}
	return r
}

// MonthsRemaining counts the months left until the target date, 0 when it has passed or is unset.
func (g Goal) MonthsRemaining(today date.Date) int {
	if g.TargetDate.IsZero() {
		return 0
	}
	return today.MonthsUntil(g.TargetDate)
}

// RequiredMonthlyContribution is what must be saved each month to reach the target on time.
// When no month is left the whole remaining amount is required.
func (g Goal) RequiredMonthlyContribution(today date.Date) Money {
	months := g.MonthsRemaining(today)
	if months == 0 {
		return g.Remaining()
	}
	return g.Remaining().Div(Q(months)).Round(2)
}

// ProjectedCompletion is the date the goal is reached at the current monthly contribution.
// It returns false when the goal is not reached and nothing is contributed.
func (g Goal) ProjectedCompletion(today date.Date) (date.Date, bool) {
	if g.IsReached() {
		return today, true
	}
	if !g.MonthlyContribution.IsPositive() {
		return date.Date{}, false
	}
	months := g.Remaining().Decimal().Div(g.MonthlyContribution.Decimal()).Ceil().IntPart()
	return today.AddMonth(int(months)), true
}

// OnTrack reports whether the current monthly contribution reaches the target by its date.
// Goals without a target date are on track as long as something is contributed.
func (g Goal) OnTrack(today date.Date) bool {
	if g.IsReached() {
		return true
	}
	if g.TargetDate.IsZero() {
		return g.MonthlyContribution.IsPositive()
	}
	if g.MonthsRemaining(today) == 0 {
		return false
	}
	return g.MonthlyContribution.GreaterThanOrEqual(g.RequiredMonthlyContribution(today))
}

// Contribute adds 'amount' to the saved amount. It fails, leaving the goal unchanged,
// when the amounts are not in the goal currency.
func (g *Goal) Contribute(amount Money) error {
	cur := g.Currency()
	saved, amount := g.CurrentAmount.WithCurrency(cur), amount.WithCurrency(cur)
	if saved.Currency() != cur || amount.Currency() != cur {
		return &ValidationError{Record: "goal", Fields: map[string]string{
			"currency": fmt.Sprintf("cannot add %s to a goal in %s", amount.Currency(), cur),
		}}
	}
	g.CurrentAmount = saved.Add(amount)
	return nil
}

// MarshalJSON encodes amounts as plain numbers.
func (g Goal) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Optional("id", g.ID)
	w.Append("title", g.Title)
	w.Append("type", g.Type)
	w.Amount("targetAmount", g.TargetAmount)
	w.Amount("currentAmount", g.CurrentAmount)
	w.Optional("targetDate", g.TargetDate)
	w.Amount("monthlyContribution", g.MonthlyContribution)
	w.Optional("category", g.Category)
	w.Append("isActive", g.IsActive)
	w.Optional("currency", g.Currency())
	w.Time("createdAt", g.CreatedAt)
	return w.MarshalJSON()
}

func (g *Goal) UnmarshalJSON(data []byte) error {
	var js struct {
		ID                  string          `json:"id"`
		Title               string          `json:"title"`
		Type                GoalType        `json:"type"`
		TargetAmount        decimal.Decimal `json:"targetAmount"`
		CurrentAmount       decimal.Decimal `json:"currentAmount"`
		TargetDate          date.Date       `json:"targetDate"`
		MonthlyContribution decimal.Decimal `json:"monthlyContribution"`
		Category            string          `json:"category"`
		IsActive            *bool           `json:"isActive"`
		Currency            string          `json:"currency"`
		CreatedAt           time.Time       `json:"createdAt"`
	}
	if err := json.Unmarshal(data, &js); err != nil {
		return err
	}
	*g = Goal{
		ID:                  js.ID,
		Title:               js.Title,
		Type:                js.Type,
		TargetAmount:        M(js.TargetAmount, js.Currency),
		CurrentAmount:       M(js.CurrentAmount, js.Currency),
		TargetDate:          js.TargetDate,
		MonthlyContribution: M(js.MonthlyContribution, js.Currency),
		Category:            js.Category,
		IsActive:            js.IsActive == nil || *js.IsActive,
		CreatedAt:           js.CreatedAt,
	}
	return nil
}
