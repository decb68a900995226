package cmd

import (
	"github.com/chazu/sewcustom/pkg/config"
	"github.com/chazu/sewcustom/pkg/logger"
	"github.com/chazu/sewcustom/pkg/store"
	"github.com/chazu/sewcustom/pkg/viewer"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

// Options are the global flags shared by every command.
type Options struct {
	Debug      bool
	ConfigPath string
}

var dirFlag = &cli.StringFlag{
	Name:    "dir",
	Aliases: []string{"d"},
	Usage:   "folder holding the drawings (overrides the config file)",
}

var rulesFlag = &cli.StringFlag{
	Name:  "rules",
	Usage: "stitch policy script (overrides the config file)",
}

func loadConfig(opts *Options) (*config.Config, error) {
	if opts.ConfigPath != "" {
		return config.Load(fs, opts.ConfigPath)
	}
	return config.LoadOrDefault(fs, config.DefaultFile)
}

func makeLogger(opts *Options, cfg *config.Config) (*zap.SugaredLogger, error) {
	level := cfg.Log.Level
	if opts.Debug {
		level = "debug"
	}
	return logger.New(level, cfg.Log.JSON)
}

// setup loads the configuration and builds the viewer backend, applying the
// --dir and --rules overrides of c.
func setup(c *cli.Context, opts *Options) (*config.Config, *viewer.App, *zap.SugaredLogger, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, nil, nil, err
	}
	if dir := c.String("dir"); dir != "" {
		cfg.Storage.Dir = dir
	}
	if rules := c.String("rules"); rules != "" {
		cfg.Rules = rules
	}

	log, err := makeLogger(opts, cfg)
	if err != nil {
		return nil, nil, nil, err
	}

	st, err := store.New(fs, cfg.Storage.Dir)
	if err != nil {
		return nil, nil, nil, err
	}

	app := viewer.NewApp(st, cfg, log)
	if cfg.Rules != "" {
		evalErrs, err := app.LoadRules(fs, cfg.Rules)
		if err != nil {
			return nil, nil, nil, err
		}
		if len(evalErrs) > 0 {
			printEvalErrors(cfg.Rules, evalErrs)
			return nil, nil, nil, errors.Errorf("rules file %s has %d error(s)", cfg.Rules, len(evalErrs))
		}
	}

	return cfg, app, log, nil
}
