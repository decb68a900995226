package config

import (
	"testing"

	"github.com/chazu/sewcustom/pkg/digitize"
	"github.com/chazu/sewcustom/pkg/rules"
	"github.com/chazu/sewcustom/pkg/stitch"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultMatchesPackageDefaults(t *testing.T) {
	t.Parallel()

	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, "SewCustom", cfg.Storage.Dir)

	opts := cfg.Digitize(rules.DefaultPolicy())
	want := digitize.DefaultOptions()
	assert.InDelta(t, want.TargetWidth, opts.TargetWidth, 1e-9)
	assert.InDelta(t, want.TargetHeight, opts.TargetHeight, 1e-9)
	assert.Equal(t, want.RunningLength, opts.RunningLength)
	assert.Equal(t, want.FillLength, opts.FillLength)
	assert.Equal(t, stitch.DefaultEncodeOptions(), cfg.Encode())
}

func TestLoadOverridesOnlyGivenFields(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	content := `
server:
  port: 9090
stitch:
  tie_on: false
  fill_spacing: 5
rules: rules.lisp
log:
  level: debug
  json: true
`
	require.NoError(t, afero.WriteFile(fs, "sewcustom.yaml", []byte(content), 0o644))

	cfg, err := Load(fs, "sewcustom.yaml")
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.False(t, cfg.Stitch.TieOn)
	assert.True(t, cfg.Stitch.TieOff)
	assert.InDelta(t, 5.0, cfg.Stitch.FillSpacing, 1e-9)
	assert.InDelta(t, 25.0, cfg.Stitch.RunningLength, 1e-9)
	assert.Equal(t, "rules.lisp", cfg.Rules)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Log.JSON)
}

func TestLoadErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		errPart string
	}{
		{name: "bad yaml", content: "server: [", errPart: "failed to parse"},
		{name: "bad port", content: "server:\n  port: 70000", errPart: "out of range"},
		{name: "empty dir", content: "storage:\n  dir: \"\"", errPart: "storage dir"},
		{name: "bad level", content: "log:\n  level: loud", errPart: "invalid log level"},
		{name: "negative spacing", content: "stitch:\n  satin_spacing: -1", errPart: "must be positive"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			fs := afero.NewMemMapFs()
			require.NoError(t, afero.WriteFile(fs, "c.yaml", []byte(tt.content), 0o644))

			_, err := Load(fs, "c.yaml")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errPart)
		})
	}
}

func TestLoadOrDefault(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	cfg, err := LoadOrDefault(fs, DefaultFile)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	_, err = Load(fs, DefaultFile)
	require.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	cfg := Default()
	cfg.Storage.Dir = "/tmp/drawings"
	cfg.Hoop.WidthInches = 4

	require.NoError(t, Save(fs, "out.yaml", cfg))

	loaded, err := Load(fs, "out.yaml")
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
