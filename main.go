package main

import (
	"os"

	"github.com/chazu/sewcustom/cmd"
	"github.com/fatih/color"
	"github.com/urfave/cli/v2"
)

var version = "dev"

func main() {
	color.NoColor = false

	opts := &cmd.Options{}

	app := &cli.App{
		Name:    "sewcustom",
		Version: version,
		Usage:   "Turn finger drawings into machine embroidery files",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "debug",
				Value:       false,
				Usage:       "show debug information",
				Destination: &opts.Debug,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to the configuration file",
				Destination: &opts.ConfigPath,
			},
		},
		Commands: []*cli.Command{
			cmd.Serve(opts),
			cmd.List(opts),
			cmd.Show(opts),
			cmd.Preview(opts),
			cmd.Convert(opts),
			cmd.ExportSVG(opts),
			cmd.Info(),
			cmd.Rules(),
			cmd.Config(opts),
		},
	}

	if err := app.Run(os.Args); err != nil {
		color.New(color.FgRed, color.Bold).Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
