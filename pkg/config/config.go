// Package config loads sewcustom.yaml.
package config

import (
	"github.com/chazu/sewcustom/pkg/digitize"
	"github.com/chazu/sewcustom/pkg/drawing"
	"github.com/chazu/sewcustom/pkg/rules"
	"github.com/chazu/sewcustom/pkg/stitch"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// DefaultFile is read from the working directory when no --config is given.
const DefaultFile = "sewcustom.yaml"

// Server is where the HTTP server listens.
type Server struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Storage is the folder holding saved drawings.
type Storage struct {
	Dir string `yaml:"dir"`
}

// Hoop is the physical target the drawing canvas is mapped onto.
type Hoop struct {
	WidthInches  float64 `yaml:"width_inches"`
	HeightInches float64 `yaml:"height_inches"`
}

// Canvas is used for drawings that do not record their own size.
type Canvas struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// Stitch lengths are in 0.1 mm units.
type Stitch struct {
	RunningLength float64 `yaml:"running_length"`
	SatinSpacing  float64 `yaml:"satin_spacing"`
	FillSpacing   float64 `yaml:"fill_spacing"`
	FillLength    float64 `yaml:"fill_length"`
	MaxStitch     float64 `yaml:"max_stitch"`
	MaxJump       float64 `yaml:"max_jump"`
	TieOn         bool    `yaml:"tie_on"`
	TieOff        bool    `yaml:"tie_off"`
	TieLength     float64 `yaml:"tie_length"`
}

// Log selects the log level and encoder.
type Log struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// Config is the whole configuration file. Rules is the path of an
// optional stitch policy script.
type Config struct {
	Server  Server  `yaml:"server"`
	Storage Storage `yaml:"storage"`
	Hoop    Hoop    `yaml:"hoop"`
	Canvas  Canvas  `yaml:"canvas"`
	Stitch  Stitch  `yaml:"stitch"`
	Rules   string  `yaml:"rules,omitempty"`
	Log     Log     `yaml:"log"`
}

// Default returns the built-in configuration.
func Default() *Config {
	d := digitize.DefaultOptions()
	e := stitch.DefaultEncodeOptions()
	return &Config{
		Server:  Server{Host: "0.0.0.0", Port: 8000},
		Storage: Storage{Dir: "SewCustom"},
		Hoop: Hoop{
			WidthInches:  digitize.TargetWidthInches,
			HeightInches: digitize.TargetHeightInches,
		},
		Canvas: Canvas{Width: drawing.DefaultCanvasWidth, Height: drawing.DefaultCanvasHeight},
		Stitch: Stitch{
			RunningLength: d.RunningLength,
			SatinSpacing:  d.SatinSpacing,
			FillSpacing:   d.FillSpacing,
			FillLength:    d.FillLength,
			MaxStitch:     e.MaxStitch,
			MaxJump:       e.MaxJump,
			TieOn:         e.TieOn,
			TieOff:        e.TieOff,
			TieLength:     e.TieLength,
		},
		Log: Log{Level: "info"},
	}
}

// Load reads the YAML file at path on top of the defaults, so a file only
// needs the fields it changes.
func Load(fs afero.Fs, path string) (*Config, error) {
	buf, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read config file %s", path)
	}

	cfg := Default()
	if err := yaml.Unmarshal(buf, cfg); err != nil {
		return nil, errors.Wrapf(err, "failed to parse config file %s", path)
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid config file %s", path)
	}

	return cfg, nil
}

// LoadOrDefault behaves like Load but returns the defaults when path does
// not exist.
func LoadOrDefault(fs afero.Fs, path string) (*Config, error) {
	exists, err := afero.Exists(fs, path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to check config file %s", path)
	}
	if !exists {
		return Default(), nil
	}
	return Load(fs, path)
}

// Save writes cfg as YAML.
func Save(fs afero.Fs, path string, cfg *Config) error {
	buf, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, "failed to marshal config")
	}

	if err := afero.WriteFile(fs, path, buf, 0o644); err != nil {
		return errors.Wrapf(err, "failed to write config file %s", path)
	}

	return nil
}

// Validate rejects values the converter or server cannot use.
func (c *Config) Validate() error {
	switch {
	case c.Server.Port < 1 || c.Server.Port > 65535:
		return errors.Errorf("server port %d is out of range", c.Server.Port)
	case c.Storage.Dir == "":
		return errors.New("storage dir must not be empty")
	case c.Hoop.WidthInches <= 0 || c.Hoop.HeightInches <= 0:
		return errors.New("hoop size must be positive")
	case c.Canvas.Width <= 0 || c.Canvas.Height <= 0:
		return errors.New("canvas size must be positive")
	case c.Stitch.RunningLength <= 0 || c.Stitch.SatinSpacing <= 0 ||
		c.Stitch.FillSpacing <= 0 || c.Stitch.FillLength <= 0:
		return errors.New("stitch lengths and spacings must be positive")
	case c.Stitch.MaxStitch <= 0 || c.Stitch.MaxJump <= 0:
		return errors.New("max stitch and max jump must be positive")
	}

	if _, err := zap.ParseAtomicLevel(c.Log.Level); err != nil {
		return errors.Wrapf(err, "invalid log level '%s'", c.Log.Level)
	}

	return nil
}

// Digitize returns the conversion options for policy.
func (c *Config) Digitize(policy *rules.Policy) digitize.Options {
	return digitize.Options{
		TargetWidth:   c.Hoop.WidthInches * stitch.UnitsPerInch,
		TargetHeight:  c.Hoop.HeightInches * stitch.UnitsPerInch,
		CanvasWidth:   c.Canvas.Width,
		CanvasHeight:  c.Canvas.Height,
		RunningLength: c.Stitch.RunningLength,
		SatinSpacing:  c.Stitch.SatinSpacing,
		FillSpacing:   c.Stitch.FillSpacing,
		FillLength:    c.Stitch.FillLength,
		Policy:        policy,
	}
}

// Encode returns the options used to flatten patterns for machine files.
func (c *Config) Encode() stitch.EncodeOptions {
	return stitch.EncodeOptions{
		MaxStitch: c.Stitch.MaxStitch,
		MaxJump:   c.Stitch.MaxJump,
		TieOn:     c.Stitch.TieOn,
		TieOff:    c.Stitch.TieOff,
		TieLength: c.Stitch.TieLength,
	}
}
