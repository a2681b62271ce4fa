package cmd

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/etnz/folio"
	"github.com/etnz/folio/date"
	"github.com/etnz/folio/renderer"
	"github.com/google/subcommands"
)

type goalCmd struct{}

func (*goalCmd) Name() string     { return "goal" }
func (*goalCmd) Synopsis() string { return "manage financial goals" }
func (*goalCmd) Usage() string {
	return `pft goal add|list|edit|remove|contribute [<flags>] [<args>]

  Manages financial goals: savings targets with a date and a monthly contribution.
  Goals are identified by their id or their title.

Usage Examples:
$ pft goal add -title House -type purchase -target 50000 -date 2028-06-01 -monthly 1500
$ pft goal contribute -amount 500 House
$ pft goal list
`
}

func (*goalCmd) SetFlags(f *flag.FlagSet) {}

// goalCommands returns the subcommands of 'goal'.
func goalCommands() []subcommands.Command {
	return []subcommands.Command{&goalAddCmd{}, &goalListCmd{}, &goalEditCmd{}, &goalRemoveCmd{}, &goalContributeCmd{}}
}

func (c *goalCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	cdr := subcommands.NewCommander(f, "pft goal")
	cdr.Output, cdr.Error = stdout, stderr
	cdr.Register(cdr.HelpCommand(), "")
	for _, cmd := range goalCommands() {
		cdr.Register(cmd, "")
	}
	return cdr.Execute(ctx, args...)
}

// goalFlags are the editable fields of a goal.
type goalFlags struct {
	title, typ, target, targetDate, saved, monthly, category string
}

func (g *goalFlags) set(f *flag.FlagSet) {
	f.StringVar(&g.title, "title", "", "title of the goal")
	f.StringVar(&g.typ, "type", "", "type of the goal: "+goalTypes())
	f.StringVar(&g.target, "target", "", "amount to reach")
	f.StringVar(&g.targetDate, "date", "", "date to reach the target by, like 2028-06-01 or +5y")
	f.StringVar(&g.saved, "saved", "", "amount already saved")
	f.StringVar(&g.monthly, "monthly", "", "monthly contribution")
	f.StringVar(&g.category, "category", "", "free form category")
}

func goalTypes() string {
	names := make([]string, 0, len(folio.GoalTypes))
	for _, t := range folio.GoalTypes {
		names = append(names, string(t))
	}
	return strings.Join(names, ", ")
}

// edits parses the set flags into edits of a goal in 'currency'.
func (g *goalFlags) edits(currency string, today date.Date) ([]func(*folio.Goal), error) {
	var edits []func(*folio.Goal)
	if g.title != "" {
		edits = append(edits, func(x *folio.Goal) { x.Title = g.title })
	}
	if g.typ != "" {
		t, err := folio.ParseGoalType(g.typ)
		if err != nil {
			return nil, err
		}
		edits = append(edits, func(x *folio.Goal) { x.Type = t })
	}
	if g.targetDate != "" {
		d, err := date.ParseFrom(g.targetDate, today)
		if err != nil {
			return nil, err
		}
		edits = append(edits, func(x *folio.Goal) { x.TargetDate = d })
	}
	if g.category != "" {
		edits = append(edits, func(x *folio.Goal) { x.Category = g.category })
	}
	amounts := []struct {
		name, value string
		field       func(*folio.Goal) *folio.Money
	}{
		{"target amount", g.target, func(x *folio.Goal) *folio.Money { return &x.TargetAmount }},
		{"saved amount", g.saved, func(x *folio.Goal) *folio.Money { return &x.CurrentAmount }},
		{"monthly contribution", g.monthly, func(x *folio.Goal) *folio.Money { return &x.MonthlyContribution }},
	}
	for _, a := range amounts {
		if a.value == "" {
			continue
		}
		m, err := parseMoney(a.name, a.value, currency)
		if err != nil {
			return nil, err
		}
		field := a.field
		edits = append(edits, func(x *folio.Goal) { *field(x) = m })
	}
	return edits, nil
}

func apply(edits []func(*folio.Goal)) func(*folio.Goal) error {
	return func(g *folio.Goal) error {
		for _, edit := range edits {
			edit(g)
		}
		return nil
	}
}

// saveGoal persists 'g' and prints the goals report.
func (a *app) saveGoal(ctx context.Context, g folio.Goal) subcommands.ExitStatus {
	if err := a.store.SaveGoal(ctx, a.user(), g); err != nil {
		return fail(err)
	}
	printMarkdown(renderer.RenderGoals(renderer.NewGoals(a.portfolio.Goals(), date.Of(a.now()))))
	return subcommands.ExitSuccess
}

type goalAddCmd struct {
	goalFlags
}

func (*goalAddCmd) Name() string     { return "add" }
func (*goalAddCmd) Synopsis() string { return "add a goal" }
func (*goalAddCmd) Usage() string {
	return `pft goal add -title <title> -target <amount> [-type <type>] [-date <date>] [-saved <amount>] [-monthly <amount>] [-category <category>]
`
}
func (c *goalAddCmd) SetFlags(f *flag.FlagSet) { c.goalFlags.set(f) }

func (c *goalAddCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.title == "" || c.target == "" {
		return usage("-title and -target are required")
	}
	a, err := open(ctx)
	if err != nil {
		return fail(err)
	}
	defer a.Close()

	edits, err := c.edits(a.portfolio.Currency(), date.Of(a.now()))
	if err != nil {
		return usage("%v", err)
	}
	g := folio.NewGoal(c.title, folio.GoalOther, folio.Money{}, date.Date{})
	apply(edits)(&g)
	if g, err = a.portfolio.AddGoal(g); err != nil {
		return fail(err)
	}
	return a.saveGoal(ctx, g)
}

type goalListCmd struct {
	active bool
}

func (*goalListCmd) Name() string     { return "list" }
func (*goalListCmd) Synopsis() string { return "display the goals and their progress" }
func (*goalListCmd) Usage() string {
	return `pft goal list [-active]
`
}
func (c *goalListCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.active, "active", false, "only display active goals")
}

func (c *goalListCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := open(ctx)
	if err != nil {
		return fail(err)
	}
	defer a.Close()

	goals := a.portfolio.Goals()
	if c.active {
		goals = a.portfolio.ActiveGoals()
	}
	printMarkdown(renderer.RenderGoals(renderer.NewGoals(goals, date.Of(a.now()))))
	return subcommands.ExitSuccess
}

type goalEditCmd struct {
	goalFlags
	active optionalBool
}

func (*goalEditCmd) Name() string     { return "edit" }
func (*goalEditCmd) Synopsis() string { return "edit a goal" }
func (*goalEditCmd) Usage() string {
	return `pft goal edit [-title ..] [-type ..] [-target ..] [-date ..] [-saved ..] [-monthly ..] [-category ..] [-active=false] <id|title>
`
}
func (c *goalEditCmd) SetFlags(f *flag.FlagSet) {
	c.goalFlags.set(f)
	f.Var(&c.active, "active", "whether the goal is pursued")
}

func (c *goalEditCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		return usage("edit needs exactly one goal id or title")
	}
	a, err := open(ctx)
	if err != nil {
		return fail(err)
	}
	defer a.Close()

	edits, err := c.edits(a.portfolio.Currency(), date.Of(a.now()))
	if err != nil {
		return usage("%v", err)
	}
	if c.active.v != nil {
		active := *c.active.v
		edits = append(edits, func(g *folio.Goal) { g.IsActive = active })
	}
	if len(edits) == 0 {
		return usage("nothing to edit")
	}
	g, err := a.portfolio.UpdateGoal(f.Arg(0), apply(edits))
	if err != nil {
		return fail(err)
	}
	return a.saveGoal(ctx, g)
}

type goalRemoveCmd struct{}

func (*goalRemoveCmd) Name() string     { return "remove" }
func (*goalRemoveCmd) Synopsis() string { return "remove goals" }
func (*goalRemoveCmd) Usage() string {
	return `pft goal remove <id|title>...
`
}
func (*goalRemoveCmd) SetFlags(f *flag.FlagSet) {}

func (c *goalRemoveCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		return usage("remove needs at least one goal id or title")
	}
	a, err := open(ctx)
	if err != nil {
		return fail(err)
	}
	defer a.Close()

	for _, id := range f.Args() {
		g, err := a.portfolio.RemoveGoal(id)
		if err != nil {
			return fail(err)
		}
		if err := a.store.DeleteGoal(ctx, a.user(), g.ID); err != nil {
			return fail(err)
		}
		fmt.Fprintf(stdout, "Removed goal %q.\n", g.Title)
	}
	return subcommands.ExitSuccess
}

type goalContributeCmd struct {
	amount string
}

func (*goalContributeCmd) Name() string     { return "contribute" }
func (*goalContributeCmd) Synopsis() string { return "add savings to a goal" }
func (*goalContributeCmd) Usage() string {
	return `pft goal contribute -amount <amount> <id|title>

  Adds the amount to the savings of the goal. A negative amount withdraws.
`
}
func (c *goalContributeCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.amount, "amount", "", "amount saved (required)")
}

func (c *goalContributeCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 || c.amount == "" {
		return usage("contribute needs -amount and exactly one goal id or title")
	}
	a, err := open(ctx)
	if err != nil {
		return fail(err)
	}
	defer a.Close()

	amount, err := parseMoney("amount", c.amount, a.portfolio.Currency())
	if err != nil {
		return usage("%v", err)
	}
	g, err := a.portfolio.UpdateGoal(f.Arg(0), func(g *folio.Goal) error { return g.Contribute(amount) })
	if err != nil {
		return fail(err)
	}
	return a.saveGoal(ctx, g)
}
