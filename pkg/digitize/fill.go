package digitize

import (
	"math"

	"github.com/chazu/sewcustom/pkg/kernel"
	"github.com/chazu/sewcustom/pkg/stitch"
)

// StrokeRegion returns the area swept by a brush of the given radius along
// path. A single point is a disc. It returns nil without a kernel, points
// or radius.
func StrokeRegion(k kernel.Kernel, path []stitch.Point, radius float64) kernel.Region {
	if k == nil || len(path) == 0 || radius <= 0 {
		return nil
	}
	var r kernel.Region
	if len(path) == 1 || pathLength(path) == 0 {
		r = k.Disc(vec(path[0]), radius)
	} else {
		pts := simplify(path, radius/2)
		raw := make([][2]float64, len(pts))
		for i, p := range pts {
			raw[i] = vec(p)
		}
		r = k.Stroke(raw, radius)
	}
	return r
}

// Fill covers region r with tatami rows spacing apart. Row direction
// alternates and stitch positions are staggered by a third of length per
// row. Each connected run of overlapping rows becomes its own block, so
// disjoint parts of the area are joined by a jump instead of a stitch
// across empty cloth.
func Fill(k kernel.Kernel, r kernel.Region, spacing, length float64) [][]stitch.Point {
	if spacing <= 0 || length <= 0 {
		return nil
	}
	min, max := r.Bounds()
	sample := spacing / 2

	var (
		open   []*section
		closed []*section
		row    int
	)
	for y := min[1] + spacing/2; y <= max[1]; y += spacing {
		spans := kernel.Spans(k, r, y, sample)
		var next []*section
		for _, sp := range spans {
			if sp.Length() <= 0 {
				continue
			}
			s := attach(open, sp)
			if s == nil {
				s = &section{}
			} else {
				open = remove(open, s)
			}
			s.spans = append(s.spans, sp)
			s.rows = append(s.rows, row)
			next = append(next, s)
		}
		closed = append(closed, open...)
		open = next
		row++
	}
	closed = append(closed, open...)

	blocks := make([][]stitch.Point, 0, len(closed))
	for _, s := range closed {
		if b := s.stitches(length); len(b) > 0 {
			blocks = append(blocks, b)
		}
	}
	return blocks
}

// section is a run of spans on consecutive rows that overlap in x.
type section struct {
	spans []kernel.Span
	rows  []int
}

func (s *section) last() kernel.Span {
	return s.spans[len(s.spans)-1]
}

func (s *section) stitches(length float64) []stitch.Point {
	var out []stitch.Point
	for i, sp := range s.spans {
		pts := rowStitches(sp, length, s.rows[i])
		if i%2 == 1 {
			for l, r := 0, len(pts)-1; l < r; l, r = l+1, r-1 {
				pts[l], pts[r] = pts[r], pts[l]
			}
		}
		out = append(out, pts...)
	}
	return out
}

// attach returns the open section whose last span overlaps sp.
func attach(open []*section, sp kernel.Span) *section {
	for _, s := range open {
		l := s.last()
		if l.X0 <= sp.X1 && sp.X0 <= l.X1 {
			return s
		}
	}
	return nil
}

func remove(list []*section, s *section) []*section {
	for i, c := range list {
		if c == s {
			return append(list[:i:i], list[i+1:]...)
		}
	}
	return list
}

// rowStitches places penetrations along a span on a global grid offset by
// row, always including both span ends.
func rowStitches(sp kernel.Span, length float64, row int) []stitch.Point {
	out := []stitch.Point{{X: sp.X0, Y: sp.Y}}
	phase := float64(row%3) * length / 3
	x := math.Floor((sp.X0-phase)/length)*length + phase
	for x += length; x < sp.X1; x += length {
		if x-sp.X0 < length/4 || sp.X1-x < length/4 {
			continue
		}
		out = append(out, stitch.Point{X: x, Y: sp.Y})
	}
	return append(out, stitch.Point{X: sp.X1, Y: sp.Y})
}

func vec(p stitch.Point) [2]float64 {
	return [2]float64{p.X, p.Y}
}
