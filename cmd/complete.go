package cmd

import (
	"flag"

	"github.com/etnz/folio"
	"github.com/etnz/folio/docs"
	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// flagPredictors predicts the values of every flag in 'f'. Boolean flags take no value.
func flagPredictors(f *flag.FlagSet, values map[string]complete.Predictor) map[string]complete.Predictor {
	preds := make(map[string]complete.Predictor)
	f.VisitAll(func(fl *flag.Flag) {
		switch p, ok := values[fl.Name]; {
		case ok:
			preds[fl.Name] = p
		case isBool(fl):
			preds[fl.Name] = predict.Nothing
		default:
			preds[fl.Name] = predict.Something
		}
	})
	return preds
}

func isBool(fl *flag.Flag) bool {
	b, ok := fl.Value.(interface{ IsBoolFlag() bool })
	return ok && b.IsBoolFlag()
}

// commandCompletion describes the flags of 'cmd' for completion.
func commandCompletion(cmd subcommands.Command, values map[string]complete.Predictor) *complete.Command {
	f := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	cmd.SetFlags(f)
	return &complete.Command{Flags: flagPredictors(f, values)}
}

// Completion describes the pft command line for shell completion.
func Completion() *complete.Command {
	var sorts, goalTypes []string
	for _, k := range []folio.SortKey{folio.SortByTicker, folio.SortByValue, folio.SortByProfit, folio.SortByPercent, folio.SortByAllocation} {
		sorts = append(sorts, string(k))
	}
	for _, t := range folio.GoalTypes {
		goalTypes = append(goalTypes, string(t))
	}
	values := map[string]complete.Predictor{
		"sort":   predict.Set(sorts),
		"type":   predict.Set(goalTypes),
		"format": predict.Set{formatJSON, formatCSV},
		"o":      predict.Files("*"),
		"store":  predict.Set{StoreFile, StoreSQLite, StoreFirestore},
		"config": predict.Files("*.yaml"),
		"data":   predict.Dirs("*"),
		"cache":  predict.Dirs("*"),
	}

	root := &complete.Command{
		Flags: flagPredictors(flag.CommandLine, values),
		Sub:   make(map[string]*complete.Command),
	}
	for _, cmd := range Commands() {
		root.Sub[cmd.Name()] = commandCompletion(cmd, values)
	}

	goal := root.Sub["goal"]
	goal.Sub = make(map[string]*complete.Command)
	for _, cmd := range goalCommands() {
		goal.Sub[cmd.Name()] = commandCompletion(cmd, values)
	}
	root.Sub["import"].Args = predict.Files("*")
	root.Sub["topic"].Args = predict.Set(docs.List())
	return root
}
