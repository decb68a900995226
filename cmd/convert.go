package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"

	"github.com/chazu/sewcustom/pkg/viewer"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

func Convert(opts *Options) *cli.Command {
	return &cli.Command{
		Name:      "convert",
		Usage:     "convert a drawing into an embroidery file",
		ArgsUsage: "[drawing name]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "output file (default: <name>.<format>)"},
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: viewer.FormatPES, Usage: "output format: pes or svg"},
			&cli.BoolFlag{Name: "all", Usage: "convert every saved drawing"},
			&cli.StringFlag{Name: "out-dir", Value: ".", Usage: "output folder for --all"},
			&cli.IntFlag{Name: "workers", Value: runtime.NumCPU(), Usage: "parallel conversions for --all"},
			dirFlag,
			rulesFlag,
		},
		Action: func(c *cli.Context) error {
			_, app, _, err := setup(c, opts)
			if err != nil {
				return err
			}

			format := c.String("format")
			if c.Bool("all") {
				ctx, stop := signal.NotifyContext(c.Context, os.Interrupt)
				defer stop()
				return convertAll(ctx, app, c.String("out-dir"), format, c.Int("workers"))
			}

			name := c.Args().First()
			if name == "" {
				return cli.Exit("a drawing name is required, or use --all", 1)
			}
			return convertOne(app, name, format, c.String("output"))
		},
	}
}

func ExportSVG(opts *Options) *cli.Command {
	return &cli.Command{
		Name:      "export-svg",
		Usage:     "write the stitch plan of a drawing as SVG",
		ArgsUsage: "[drawing name]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "output file (default: <name>.svg)"},
			dirFlag,
			rulesFlag,
		},
		Action: func(c *cli.Context) error {
			name := c.Args().First()
			if name == "" {
				return cli.Exit("a drawing name is required", 1)
			}

			_, app, _, err := setup(c, opts)
			if err != nil {
				return err
			}
			return convertOne(app, name, viewer.FormatSVG, c.String("output"))
		},
	}
}

func Preview(opts *Options) *cli.Command {
	return &cli.Command{
		Name:      "preview",
		Usage:     "render a drawing as it was drawn, as SVG",
		ArgsUsage: "[drawing name]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "output file (default: <name>_preview.svg)"},
			&cli.IntFlag{Name: "width", Value: 400, Usage: "maximum width in pixels"},
			&cli.IntFlag{Name: "height", Value: 450, Usage: "maximum height in pixels"},
			dirFlag,
		},
		Action: func(c *cli.Context) error {
			name := c.Args().First()
			if name == "" {
				return cli.Exit("a drawing name is required", 1)
			}

			_, app, _, err := setup(c, opts)
			if err != nil {
				return err
			}

			out := c.String("output")
			if out == "" {
				out = viewer.BaseName(name) + "_preview.svg"
			}

			f, err := fs.Create(out)
			if err != nil {
				return errors.Wrapf(err, "failed to create %s", out)
			}
			if err := app.Preview(f, name, c.Int("width"), c.Int("height")); err != nil {
				_ = f.Close()
				_ = fs.Remove(out)
				return err
			}
			if err := f.Close(); err != nil {
				return errors.Wrapf(err, "failed to write %s", out)
			}

			successPrinter.Printf("Wrote preview of %s to %s\n", name, out)
			return nil
		},
	}
}

func convertOne(app *viewer.App, name, format, out string) error {
	if out == "" {
		out = viewer.OutputName(name, format)
	}

	res, err := app.ExportFile(fs, name, format, out)
	if err != nil {
		return err
	}

	successPrinter.Printf("Converted %s -> %s %s\n", name, out, faint(describeResult(res)))
	return nil
}

func convertAll(ctx context.Context, app *viewer.App, outDir, format string, workers int) error {
	results, err := app.ConvertAll(ctx, fs, outDir, format, workers)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		infoPrinter.Printf("No drawings found in %s\n", app.Store().Dir())
		return nil
	}

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			errorPrinter.Printf("  %s: %v\n", r.Name, r.Err)
			continue
		}
		successPrinter.Printf("  %s -> %s %s\n", r.Name, r.Output, faint(describeResult(r.Result)))
	}

	infoPrinter.Printf("Converted %d of %d drawing(s).\n", len(results)-failed, len(results))
	if failed > 0 {
		return cli.Exit("", 1)
	}
	return nil
}

func describeResult(res *viewer.Result) string {
	return fmt.Sprintf("(%d stitches, %d colors, %.1f x %.1f mm)", res.Stitches, res.Colors, res.WidthMM, res.HeightMM)
}
