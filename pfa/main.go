package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"

	"github.com/quantfolio/portfolio/cmd"
)

func main() {
	// Shell completion runs before flag parsing and exits when invoked by
	// the completion machinery.
	sub := make(map[string]*complete.Command, len(cmd.Commands))
	for _, c := range cmd.Commands {
		sub[c.Name()] = &complete.Command{Flags: map[string]complete.Predictor{}}
	}
	completer := &complete.Command{
		Sub: sub,
		Flags: map[string]complete.Predictor{
			"ledger-file": predict.Files("*.jsonl"),
			"prices-file": predict.Files("*.jsonl"),
			"currency":    predict.Set{"EUR", "USD", "GBP", "CHF"},
		},
	}
	completer.Complete("pfa")

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))

	for _, c := range cmd.Commands {
		commander.Register(c, "")
	}
	commander.Register(commander.HelpCommand(), "help")
	commander.Register(commander.FlagsCommand(), "help")

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
