package cmd

import (
	"fmt"

	"github.com/chazu/sewcustom/pkg/rules"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/urfave/cli/v2"
)

func Rules() *cli.Command {
	return &cli.Command{
		Name:  "rules",
		Usage: "work with stitch policy scripts",
		Subcommands: []*cli.Command{
			{
				Name:      "check",
				Usage:     "evaluate a policy script and print the resulting policy",
				ArgsUsage: "[rules.lisp]",
				Action: func(c *cli.Context) error {
					path := c.Args().First()
					if path == "" {
						return cli.Exit("a rules file is required", 1)
					}
					return checkRules(path)
				},
			},
		},
	}
}

func checkRules(path string) error {
	source, err := afero.ReadFile(fs, path)
	if err != nil {
		return errors.Wrapf(err, "failed to read rules file %s", path)
	}

	p, evalErrs, err := rules.NewEngine().Evaluate(string(source))
	if err != nil {
		return errors.Wrapf(err, "failed to evaluate %s", path)
	}
	if len(evalErrs) > 0 {
		printEvalErrors(path, evalErrs)
		return cli.Exit("", 1)
	}

	successPrinter.Printf("%s is valid\n", path)
	for _, line := range p.Describe() {
		fmt.Printf("  %s\n", line)
	}
	return nil
}

func printEvalErrors(path string, evalErrs []rules.EvalError) {
	for _, e := range evalErrs {
		if e.Line > 0 {
			errorPrinter.Printf("%s:%d: %s\n", path, e.Line, e.Message)
			continue
		}
		errorPrinter.Printf("%s: %s\n", path, e.Message)
	}
}
