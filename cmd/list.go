package cmd

import (
	"fmt"

	"github.com/chazu/sewcustom/pkg/drawing"
	"github.com/chazu/sewcustom/pkg/stitch"
	"github.com/chazu/sewcustom/pkg/viewer"
	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v2"
)

func List(opts *Options) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "list the saved drawings, newest first",
		Flags: []cli.Flag{dirFlag},
		Action: func(c *cli.Context) error {
			_, app, _, err := setup(c, opts)
			if err != nil {
				return err
			}

			entries, err := app.List()
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				infoPrinter.Printf("No drawings found in %s\n", app.Store().Dir())
				return nil
			}

			infoPrinter.Printf("%d drawing(s) in %s\n", len(entries), app.Store().Dir())
			for _, e := range entries {
				summary := "invalid drawing"
				if d, err := app.Load(e.Name); err == nil {
					summary = d.Describe()
				}
				fmt.Printf("  %-36s %s\n", e.Name, faint(fmt.Sprintf("%s, %s, %s",
					humanize.Bytes(uint64(e.Size)), humanize.Time(e.ModTime), summary)))
			}
			return nil
		},
	}
}

func Show(opts *Options) *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "show a drawing's details, validation findings and stitch plan",
		ArgsUsage: "[drawing name]",
		Flags:     []cli.Flag{dirFlag, rulesFlag},
		Action: func(c *cli.Context) error {
			name := c.Args().First()
			if name == "" {
				return cli.Exit("a drawing name is required", 1)
			}

			cfg, app, _, err := setup(c, opts)
			if err != nil {
				return err
			}

			d, err := app.Load(name)
			if err != nil {
				return err
			}

			stats := d.Stats()
			w, h := d.CanvasSize(cfg.Canvas.Width, cfg.Canvas.Height)
			infoPrinter.Printf("%s: %s\n", name, d.Describe())
			fmt.Printf("  canvas:  %gx%g px\n", w, h)
			fmt.Printf("  strokes: %s\n", strokeSummary(stats))

			printValidation(drawing.Validate(d))

			p, report, err := app.Digitize(name)
			if report != nil {
				fmt.Printf("  scale:   %.4f x %.4f units/px\n", report.Scale.X, report.Scale.Y)
				for _, s := range report.Skipped {
					fmt.Printf("  %s\n", faint(fmt.Sprintf("stroke %d skipped: %s", s.Stroke, s.Reason)))
				}
				if len(report.Clamped) > 0 {
					warningPrinter.Printf("  %d stroke(s) clamped to the hoop: %v\n", len(report.Clamped), report.Clamped)
				}
			}
			if err != nil {
				warningPrinter.Printf("  nothing to stitch: %v\n", err)
				return nil
			}

			counts := p.CountByType()
			successPrinter.Printf("  stitch plan: %d blocks (%d running, %d satin, %d fill), %s stitches, %d thread(s)\n",
				len(p.Blocks), counts[stitch.Running], counts[stitch.Satin], counts[stitch.Fill],
				humanize.Comma(int64(p.StitchCount())), len(p.Threads()))
			for i, t := range p.Threads() {
				fmt.Printf("    %d. %s\n", i+1, t.Hex())
			}
			fmt.Printf("  %s\n", faint("convert with: sewcustom convert "+name+" -o "+viewer.OutputName(name, viewer.FormatPES)))
			return nil
		},
	}
}

func strokeSummary(stats drawing.Stats) string {
	return fmt.Sprintf("%d (%d dots), %s points, %d colors",
		stats.Strokes, stats.Dots, humanize.Comma(int64(stats.Points)), len(stats.Colors))
}

func printValidation(res drawing.ValidationResult) {
	for _, e := range res.Errors {
		errorPrinter.Printf("  error: %s\n", e.Error())
	}
	for _, w := range res.Warnings {
		warningPrinter.Printf("  warning: %s\n", w.Error())
	}
}
