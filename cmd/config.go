package cmd

import (
	"os"

	"github.com/chazu/sewcustom/pkg/config"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

func Config(opts *Options) *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "inspect or create the configuration file",
		Subcommands: []*cli.Command{
			{
				Name:  "show",
				Usage: "print the effective configuration",
				Action: func(c *cli.Context) error {
					cfg, err := loadConfig(opts)
					if err != nil {
						return err
					}
					out, err := yaml.Marshal(cfg)
					if err != nil {
						return errors.Wrap(err, "failed to marshal config")
					}
					_, err = os.Stdout.Write(out)
					return err
				},
			},
			{
				Name:      "init",
				Usage:     "write the default configuration",
				ArgsUsage: "[path]",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "force", Usage: "overwrite an existing file"},
				},
				Action: func(c *cli.Context) error {
					path := c.Args().First()
					if path == "" {
						path = config.DefaultFile
					}
					return initConfig(path, c.Bool("force"))
				},
			},
		},
	}
}

func initConfig(path string, force bool) error {
	exists, err := afero.Exists(fs, path)
	if err != nil {
		return errors.Wrapf(err, "failed to check %s", path)
	}
	if exists && !force {
		errorPrinter.Printf("%s already exists, use --force to overwrite it\n", path)
		return cli.Exit("", 1)
	}

	if err := config.Save(fs, path, config.Default()); err != nil {
		return err
	}

	successPrinter.Printf("Wrote default configuration to %s\n", path)
	return nil
}
