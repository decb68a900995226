// Package digitize converts a drawing into an embroidery pattern. Strokes
// are scaled from canvas pixels onto the physical hoop target, a stitch type
// is chosen per stroke by the stitch policy, and each stroke becomes one or
// more stitch blocks. The digitizer is read-only and never mutates the
// drawing.
package digitize

import (
	"fmt"
	"math"

	"github.com/chazu/sewcustom/pkg/drawing"
	"github.com/chazu/sewcustom/pkg/kernel"
	"github.com/chazu/sewcustom/pkg/rules"
	"github.com/chazu/sewcustom/pkg/stitch"
)

// Physical target of the e-reader drawable area, 1:1.
const (
	TargetWidthInches  = 3.5
	TargetHeightInches = 3.75
)

// Options control scaling and stitch density. Lengths are in pattern units
// (0.1 mm).
type Options struct {
	TargetWidth   float64 // units
	TargetHeight  float64 // units
	CanvasWidth   float64 // px, used when the drawing has none
	CanvasHeight  float64 // px, used when the drawing has none
	RunningLength float64 // distance between running stitches
	SatinSpacing  float64 // distance between satin zig-zags along the path
	FillSpacing   float64 // distance between fill rows
	FillLength    float64 // stitch length inside fill rows
	Policy        *rules.Policy
}

// DefaultOptions returns the 3.5in x 3.75in target with the default
// policy.
func DefaultOptions() Options {
	return Options{
		TargetWidth:   TargetWidthInches * stitch.UnitsPerInch,
		TargetHeight:  TargetHeightInches * stitch.UnitsPerInch,
		CanvasWidth:   drawing.DefaultCanvasWidth,
		CanvasHeight:  drawing.DefaultCanvasHeight,
		RunningLength: 25,
		SatinSpacing:  4,
		FillSpacing:   4,
		FillLength:    30,
		Policy:        rules.DefaultPolicy(),
	}
}

func (o Options) validate() error {
	switch {
	case o.TargetWidth <= 0 || o.TargetHeight <= 0:
		return fmt.Errorf("target size must be positive, got %gx%g", o.TargetWidth, o.TargetHeight)
	case o.CanvasWidth <= 0 || o.CanvasHeight <= 0:
		return fmt.Errorf("default canvas size must be positive, got %gx%g", o.CanvasWidth, o.CanvasHeight)
	case o.RunningLength <= 0 || o.SatinSpacing <= 0 || o.FillSpacing <= 0 || o.FillLength <= 0:
		return fmt.Errorf("stitch lengths and spacings must be positive")
	}
	return nil
}

// Scale maps canvas pixels to pattern units. X and Y are scaled
// independently so the whole canvas lands exactly on the target.
type Scale struct {
	X, Y float64
}

// Apply scales a canvas point.
func (s Scale) Apply(p drawing.Point) stitch.Point {
	return stitch.Point{X: p.X * s.X, Y: p.Y * s.Y}
}

// Width converts a brush width in pixels to units using the mean scale.
func (s Scale) Width(px float64) float64 {
	return px * (s.X + s.Y) / 2
}

// ScaleFor computes the canvas-to-target scale for d.
func ScaleFor(d *drawing.Drawing, opts Options) Scale {
	w, h := d.CanvasSize(opts.CanvasWidth, opts.CanvasHeight)
	return Scale{X: opts.TargetWidth / w, Y: opts.TargetHeight / h}
}

// clamp moves p onto the target area.
func (o Options) clamp(p stitch.Point) stitch.Point {
	return stitch.Point{
		X: math.Min(math.Max(p.X, 0), o.TargetWidth),
		Y: math.Min(math.Max(p.Y, 0), o.TargetHeight),
	}
}

// maxWidth is the widest brush the target can hold.
func (o Options) maxWidth() float64 {
	return math.Min(o.TargetWidth, o.TargetHeight)
}

// Skipped records a stroke left out of the pattern.
type Skipped struct {
	Stroke int
	Reason string
}

// Report summarizes a conversion.
type Report struct {
	Scale   Scale
	Strokes int
	Blocks  map[stitch.Type]int
	Skipped []Skipped
	Clamped []int // strokes moved or narrowed to fit the target
}

func (r *Report) skip(i int, format string, args ...any) {
	r.Skipped = append(r.Skipped, Skipped{Stroke: i, Reason: fmt.Sprintf(format, args...)})
}

// Digitize converts every stroke of d into stitch blocks of a new pattern
// named name. Strokes that fail validation, use a skipped color, or have
// too few points for their stitch type are reported, not fatal. Every
// stitch lands on the target area: points past its edges are clamped and
// brush widths are capped at the shorter target side.
func Digitize(d *drawing.Drawing, name string, k kernel.Kernel, opts Options) (*stitch.Pattern, *Report, error) {
	if d == nil {
		return nil, nil, fmt.Errorf("digitize: nil drawing")
	}
	if err := opts.validate(); err != nil {
		return nil, nil, fmt.Errorf("digitize: %w", err)
	}
	if opts.Policy == nil {
		opts.Policy = rules.DefaultPolicy()
	}

	scale := ScaleFor(d, opts)
	report := &Report{Scale: scale, Blocks: make(map[stitch.Type]int)}
	pattern := stitch.New(name)
	bad := drawing.Validate(d).StrokeErrors()

	for i, s := range d.Strokes {
		if bad[i] {
			report.skip(i, "invalid stroke")
			continue
		}
		if opts.Policy.Skip(s.Color) {
			report.skip(i, "color %s is skipped", s.Color)
			continue
		}

		c, _ := drawing.ParseColor(s.Color)
		thread := stitch.Thread{Color: c, Description: drawing.NormalizeColor(s.Color)}

		widthUnits := scale.Width(s.Width)
		clamped := widthUnits > opts.maxWidth()
		widthUnits = math.Min(widthUnits, opts.maxWidth())
		typ := opts.Policy.Select(s.Color, widthUnits/stitch.UnitsPerMM)

		path := make([]stitch.Point, len(s.Coordinates))
		for j, p := range s.Coordinates {
			sp := scale.Apply(p)
			path[j] = opts.clamp(sp)
			clamped = clamped || path[j].Dist(sp) > 1e-6
		}
		if clamped {
			report.Clamped = append(report.Clamped, i)
		}

		if len(path) < 2 && typ != stitch.Fill {
			report.skip(i, "single point %s stroke", typ)
			continue
		}

		var blocks [][]stitch.Point
		switch typ {
		case stitch.Running:
			blocks = [][]stitch.Point{Running(path, opts.RunningLength)}
		case stitch.Satin:
			if b := Satin(path, widthUnits, opts.SatinSpacing); len(b) > 0 {
				blocks = [][]stitch.Point{b}
			}
		case stitch.Fill:
			if r := StrokeRegion(k, path, widthUnits/2); r != nil {
				r = k.Clip(r, [2]float64{0, 0}, [2]float64{opts.TargetWidth, opts.TargetHeight})
				blocks = Fill(k, r, opts.FillSpacing, opts.FillLength)
			}
		}

		if len(blocks) == 0 {
			report.skip(i, "%s stroke produced no stitches", typ)
			continue
		}
		for _, b := range blocks {
			for j := range b {
				b[j] = opts.clamp(b[j])
			}
			pattern.AddBlock(b, thread, typ)
			report.Blocks[typ]++
		}
		report.Strokes++
	}

	return pattern, report, nil
}
