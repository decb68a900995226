// Package render draws drawings and stitch sequences as SVG.
package render

import (
	"fmt"
	"io"
	"math"

	svg "github.com/ajstarks/svgo"
	"github.com/chazu/sewcustom/pkg/drawing"
	"github.com/chazu/sewcustom/pkg/stitch"
)

// errWriter remembers the first write error so SVG output, which does not
// report errors, can be checked once at the end.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return 0, e.err
	}
	n, err := e.w.Write(p)
	e.err = err
	return n, err
}

// PreviewScale returns the factor that fits a canvas of cw x ch into
// maxW x maxH without enlarging it.
func PreviewScale(cw, ch, maxW, maxH float64) float64 {
	return math.Min(math.Min(maxW/cw, maxH/ch), 1)
}

// PreviewSVG renders d as it looked on the drawing canvas, scaled to fit
// maxW x maxH pixels. Dots are discs; lines use round caps and joins.
func PreviewSVG(w io.Writer, d *drawing.Drawing, maxW, maxH int) error {
	if d == nil {
		return fmt.Errorf("render: nil drawing")
	}
	if maxW <= 0 || maxH <= 0 {
		return fmt.Errorf("render: invalid preview size %dx%d", maxW, maxH)
	}
	cw, ch := d.CanvasSize(drawing.DefaultCanvasWidth, drawing.DefaultCanvasHeight)
	scale := PreviewScale(cw, ch, float64(maxW), float64(maxH))
	pw, ph := max(int(math.Round(cw*scale)), 1), max(int(math.Round(ch*scale)), 1)

	ew := &errWriter{w: w}
	canvas := svg.New(ew)
	canvas.Start(pw, ph)
	canvas.Title(d.Describe())
	canvas.Rect(0, 0, pw, ph, "fill:white")

	for _, s := range d.Strokes {
		c, err := drawing.ParseColor(s.Color)
		if err != nil || len(s.Coordinates) == 0 {
			continue
		}
		hex := drawing.Hex(c)
		width := math.Max(s.Width*scale, 1)

		if s.IsDot() || len(s.Coordinates) == 1 {
			p := s.Coordinates[0]
			r := max(int(math.Round(width/2)), 1)
			canvas.Circle(px(p.X, scale), px(p.Y, scale), r, "fill:"+hex)
			continue
		}

		xs := make([]int, len(s.Coordinates))
		ys := make([]int, len(s.Coordinates))
		for i, p := range s.Coordinates {
			xs[i], ys[i] = px(p.X, scale), px(p.Y, scale)
		}
		canvas.Polyline(xs, ys, fmt.Sprintf(
			"fill:none;stroke:%s;stroke-width:%g;stroke-linecap:round;stroke-linejoin:round", hex, width))
	}

	canvas.End()
	return ew.err
}

// StitchSVG renders seq in pattern units with a millimetre document size.
// Each color run is a group; jumps break the drawn polylines.
func StitchSVG(w io.Writer, seq *stitch.Sequence) error {
	if seq == nil {
		return fmt.Errorf("render: nil sequence")
	}
	lo, hi := seq.Bounds()
	minX, minY := int(math.Floor(lo.X)), int(math.Floor(lo.Y))
	vw := max(int(math.Ceil(hi.X))-minX, 1)
	vh := max(int(math.Ceil(hi.Y))-minY, 1)

	ew := &errWriter{w: w}
	canvas := svg.New(ew)
	canvas.StartviewUnit(max(vw/stitch.UnitsPerMM, 1), max(vh/stitch.UnitsPerMM, 1), "mm", minX, minY, vw, vh)
	if seq.Name != "" {
		canvas.Title(seq.Name)
	}

	thread := 0
	var xs, ys []int
	flush := func() {
		if len(xs) > 1 {
			canvas.Polyline(xs, ys)
		}
		xs, ys = xs[:0], ys[:0]
	}
	open := func() {
		hex := "#000000"
		if thread < len(seq.Threads) {
			hex = seq.Threads[thread].Hex()
		}
		canvas.Gstyle("fill:none;stroke:" + hex + ";stroke-width:3")
	}

	open()
	for _, st := range seq.Stitches {
		switch st.Cmd {
		case stitch.CmdStitch:
			xs = append(xs, int(math.Round(st.X)))
			ys = append(ys, int(math.Round(st.Y)))
		case stitch.CmdJump, stitch.CmdTrim:
			flush()
		case stitch.CmdColorChange:
			flush()
			canvas.Gend()
			thread++
			open()
		}
	}
	flush()
	canvas.Gend()
	canvas.End()
	return ew.err
}

func px(v, scale float64) int {
	return int(math.Round(v * scale))
}
