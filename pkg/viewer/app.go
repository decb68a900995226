// Package viewer is the backend shared by the command line and the HTTP
// server: it lists stored drawings, previews them and converts them to
// machine files.
package viewer

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/chazu/sewcustom/pkg/config"
	"github.com/chazu/sewcustom/pkg/digitize"
	"github.com/chazu/sewcustom/pkg/drawing"
	"github.com/chazu/sewcustom/pkg/kernel"
	"github.com/chazu/sewcustom/pkg/kernel/sdfx"
	"github.com/chazu/sewcustom/pkg/pes"
	"github.com/chazu/sewcustom/pkg/render"
	"github.com/chazu/sewcustom/pkg/rules"
	"github.com/chazu/sewcustom/pkg/stitch"
	"github.com/chazu/sewcustom/pkg/store"
	"github.com/pkg/errors"
	"github.com/sourcegraph/conc/pool"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Export formats.
const (
	FormatPES = "pes"
	FormatSVG = "svg"
)

// ListExtensions are the files the viewer offers.
var ListExtensions = []string{".json", ".txt"}

var (
	ErrNoStitches    = errors.New("no valid strokes to convert")
	ErrUnknownFormat = errors.New("unknown export format")
)

// App converts stored drawings.
type App struct {
	store  *store.Store
	cfg    *config.Config
	kernel kernel.Kernel
	engine *rules.Engine
	policy *rules.Policy
	logger *zap.SugaredLogger
}

// NewApp creates an App with the sdfx kernel and the default stitch policy.
func NewApp(st *store.Store, cfg *config.Config, logger *zap.SugaredLogger) *App {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &App{
		store:  st,
		cfg:    cfg,
		kernel: sdfx.New(),
		engine: rules.NewEngine(),
		policy: rules.DefaultPolicy(),
		logger: logger,
	}
}

func (a *App) Store() *store.Store {
	return a.store
}

func (a *App) Policy() *rules.Policy {
	return a.policy
}

// LoadRules evaluates the policy script at path and makes it the active
// policy. Script errors leave the current policy in place.
func (a *App) LoadRules(fs afero.Fs, path string) ([]rules.EvalError, error) {
	source, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read rules file %s", path)
	}

	p, evalErrs, err := a.engine.Evaluate(string(source))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to evaluate rules file %s", path)
	}
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			a.logger.Warnf("rules %s:%d: %s", path, e.Line, e.Message)
		}
		return evalErrs, nil
	}

	a.policy = p
	a.logger.Debugf("loaded %d stitch rules from %s", len(p.Rules), path)
	return nil, nil
}

func (a *App) List() ([]store.Entry, error) {
	return a.store.Entries(ListExtensions...)
}

func (a *App) Load(name string) (*drawing.Drawing, error) {
	return a.store.Load(name)
}

// BaseName strips the extension of a stored drawing name.
func BaseName(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// Digitize converts the stored drawing name into a stitch pattern.
func (a *App) Digitize(name string) (*stitch.Pattern, *digitize.Report, error) {
	d, err := a.Load(name)
	if err != nil {
		return nil, nil, err
	}

	p, report, err := digitize.Digitize(d, BaseName(name), a.kernel, a.cfg.Digitize(a.policy))
	if err != nil {
		return nil, nil, errors.Wrapf(err, "failed to digitize %s", name)
	}
	for _, s := range report.Skipped {
		a.logger.Debugf("%s: stroke %d skipped: %s", name, s.Stroke, s.Reason)
	}
	if len(report.Clamped) > 0 {
		a.logger.Warnf("%s: %d stroke(s) clamped to the hoop", name, len(report.Clamped))
	}
	if p.IsEmpty() {
		return nil, report, errors.Wrapf(ErrNoStitches, "%s", name)
	}

	return p, report, nil
}

// Result summarizes an export.
type Result struct {
	Name     string
	Format   string
	Stitches int
	Colors   int
	WidthMM  float64
	HeightMM float64
	Report   *digitize.Report
}

// Export converts the stored drawing name and writes it to w in format.
// Nothing is written to w when conversion fails.
func (a *App) Export(w io.Writer, name, format string) (*Result, error) {
	format = strings.ToLower(format)
	if format != FormatPES && format != FormatSVG {
		return nil, errors.Wrapf(ErrUnknownFormat, "'%s'", format)
	}

	p, report, err := a.Digitize(name)
	if err != nil {
		return nil, err
	}
	if format == FormatPES {
		p.Center()
	}
	seq := stitch.Encode(p, a.cfg.Encode())

	var buf bytes.Buffer
	switch format {
	case FormatPES:
		err = pes.Write(&buf, seq, pes.Options{Name: BaseName(name)})
	case FormatSVG:
		err = render.StitchSVG(&buf, seq)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to write %s for %s", format, name)
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return nil, errors.Wrap(err, "failed to write output")
	}

	lo, hi := seq.Bounds()
	return &Result{
		Name:     name,
		Format:   format,
		Stitches: seq.Count(stitch.CmdStitch),
		Colors:   len(seq.Threads),
		WidthMM:  (hi.X - lo.X) / stitch.UnitsPerMM,
		HeightMM: (hi.Y - lo.Y) / stitch.UnitsPerMM,
		Report:   report,
	}, nil
}

// Preview renders the stored drawing as an SVG no larger than maxW x maxH.
func (a *App) Preview(w io.Writer, name string, maxW, maxH int) error {
	d, err := a.Load(name)
	if err != nil {
		return err
	}
	return render.PreviewSVG(w, d, maxW, maxH)
}

// OutputName is the default output file for name in format.
func OutputName(name, format string) string {
	return BaseName(name) + "." + format
}

// BatchResult is the outcome of one file of ConvertAll.
type BatchResult struct {
	Name   string
	Output string
	Result *Result
	Err    error
}

// ConvertAll exports every stored drawing into outDir on fs using at most
// workers goroutines. Results are sorted by name; per-file failures are
// reported in the results, not as an error.
func (a *App) ConvertAll(ctx context.Context, fs afero.Fs, outDir, format string, workers int) ([]BatchResult, error) {
	entries, err := a.List()
	if err != nil {
		return nil, err
	}
	if err := fs.MkdirAll(outDir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "failed to create output folder %s", outDir)
	}

	p := pool.NewWithResults[BatchResult]().WithMaxGoroutines(max(workers, 1))
	for _, e := range entries {
		p.Go(func() BatchResult {
			out := filepath.Join(outDir, OutputName(e.Name, format))
			res := BatchResult{Name: e.Name, Output: out}
			if err := ctx.Err(); err != nil {
				res.Err = err
				return res
			}
			res.Result, res.Err = a.ExportFile(fs, e.Name, format, out)
			return res
		})
	}

	results := p.Wait()
	sort.Slice(results, func(i, j int) bool {
		return results[i].Name < results[j].Name
	})
	return results, nil
}

// ExportFile exports name to the file out on fs. The file is only created
// when conversion succeeds.
func (a *App) ExportFile(fs afero.Fs, name, format, out string) (*Result, error) {
	var buf bytes.Buffer
	res, err := a.Export(&buf, name, format)
	if err != nil {
		return nil, err
	}
	if err := afero.WriteFile(fs, out, buf.Bytes(), 0o644); err != nil {
		return nil, errors.Wrapf(err, "failed to write %s", out)
	}
	return res, nil
}
