package cmd

import (
	"fmt"

	"github.com/chazu/sewcustom/pkg/pes"
	"github.com/chazu/sewcustom/pkg/stitch"
	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

func Info() *cli.Command {
	return &cli.Command{
		Name:      "info",
		Usage:     "decode a PES file and summarize it",
		ArgsUsage: "[file.pes]",
		Action: func(c *cli.Context) error {
			path := c.Args().First()
			if path == "" {
				return cli.Exit("a PES file is required", 1)
			}

			f, err := fs.Open(path)
			if err != nil {
				return errors.Wrapf(err, "failed to open %s", path)
			}
			defer f.Close()

			st, err := f.Stat()
			if err != nil {
				return errors.Wrapf(err, "failed to stat %s", path)
			}

			seq, err := pes.Read(f)
			if err != nil {
				return errors.Wrapf(err, "failed to decode %s", path)
			}

			lo, hi := seq.Bounds()
			infoPrinter.Printf("%s %s\n", path, faint(humanize.Bytes(uint64(st.Size()))))
			fmt.Printf("  label:         %s\n", seq.Name)
			fmt.Printf("  size:          %.1f x %.1f mm\n", (hi.X-lo.X)/stitch.UnitsPerMM, (hi.Y-lo.Y)/stitch.UnitsPerMM)
			fmt.Printf("  stitches:      %s\n", humanize.Comma(int64(seq.Count(stitch.CmdStitch))))
			fmt.Printf("  jumps:         %d\n", seq.Count(stitch.CmdJump))
			fmt.Printf("  trims:         %d\n", seq.Count(stitch.CmdTrim))
			fmt.Printf("  color changes: %d\n", seq.Count(stitch.CmdColorChange))
			fmt.Printf("  threads:\n")
			for i, t := range seq.Threads {
				fmt.Printf("    %d. %-20s %s\n", i+1, t.Description, t.Hex())
			}
			return nil
		},
	}
}
