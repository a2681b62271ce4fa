package renderer

import (
	"github.com/etnz/folio"
	"github.com/etnz/folio/date"
)

// Goal statuses.
const (
	StatusReached  = "reached"
	StatusOnTrack  = "on track"
	StatusBehind   = "behind"
	StatusInactive = "inactive"
)

// Goals is the data model of the goals report.
type Goals struct {
	Today       date.Date
	Goals       []GoalRow
	HasTotals   bool // false when goals are in different currencies
	TotalSaved  folio.Money
	TotalTarget folio.Money
}

// GoalRow is one goal of the goals report.
type GoalRow struct {
	ID                  string
	Title               string
	Type                folio.GoalType
	Category            string
	Status              string
	Target              folio.Money
	Saved               folio.Money
	Remaining           folio.Money
	Progress            folio.Percent
	TargetDate          date.Date
	MonthsRemaining     int
	MonthlyContribution folio.Money
	Required            folio.Money
	Projected           date.Date // zero when the goal can't be projected
}

// NewGoals creates the goals report as of 'today'.
func NewGoals(goals []folio.Goal, today date.Date) *Goals {
	r := &Goals{Today: today, Goals: make([]GoalRow, 0, len(goals)), HasTotals: len(goals) > 0}
	for i, g := range goals {
		row := GoalRow{
			ID:                  g.ID,
			Title:               cell(g.Title),
			Type:                g.Type,
			Category:            cell(g.Category),
			Target:              g.TargetAmount,
			Saved:               g.CurrentAmount,
			Remaining:           g.Remaining(),
			Progress:            g.Progress(),
			TargetDate:          g.TargetDate,
			MonthsRemaining:     g.MonthsRemaining(today),
			MonthlyContribution: g.MonthlyContribution,
			Required:            g.RequiredMonthlyContribution(today),
		}
		if d, ok := g.ProjectedCompletion(today); ok {
			row.Projected = d
		}
		switch {
		case !g.IsActive:
			row.Status = StatusInactive
		case g.IsReached():
			row.Status = StatusReached
		case g.OnTrack(today):
			row.Status = StatusOnTrack
		default:
			row.Status = StatusBehind
		}
		r.Goals = append(r.Goals, row)

		if i == 0 {
			r.TotalSaved, r.TotalTarget = g.CurrentAmount, g.TargetAmount
			continue
		}
		if g.Currency() != r.TotalTarget.Currency() {
			r.HasTotals = false
		}
		if r.HasTotals {
			r.TotalSaved = r.TotalSaved.Add(g.CurrentAmount)
			r.TotalTarget = r.TotalTarget.Add(g.TargetAmount)
		}
	}
	return r
}

// Progress is the overall share of the targets already saved.
func (g *Goals) Progress() folio.Percent {
	return g.TotalSaved.Percent(g.TotalTarget)
}
