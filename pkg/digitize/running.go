package digitize

import (
	"math"

	"github.com/chazu/sewcustom/pkg/stitch"
)

// Running resamples path into stitches step apart along its length. The
// first and last points are always kept.
func Running(path []stitch.Point, step float64) []stitch.Point {
	if len(path) == 0 {
		return nil
	}
	out := []stitch.Point{path[0]}
	carry := 0.0 // distance travelled since the last emitted point
	for i := 1; i < len(path); i++ {
		a, b := path[i-1], path[i]
		seg := a.Dist(b)
		if seg == 0 {
			continue
		}
		pos := step - carry
		for pos < seg {
			out = append(out, a.Lerp(b, pos/seg))
			pos += step
		}
		carry = seg - (pos - step)
	}
	if last := path[len(path)-1]; out[len(out)-1] != last {
		out = append(out, last)
	}
	return out
}

// Satin zig-zags across path between offsets of ±width/2, one penetration
// every spacing units along the path. It returns nil for a path of zero
// length.
func Satin(path []stitch.Point, width, spacing float64) []stitch.Point {
	centers := Running(path, spacing)
	if len(centers) < 2 {
		return nil
	}
	hw := width / 2
	out := make([]stitch.Point, 0, len(centers))
	for i, c := range centers {
		prev := centers[max(i-1, 0)]
		next := centers[min(i+1, len(centers)-1)]
		n := normal(prev, next)
		if i%2 == 1 {
			n = n.Scale(-1)
		}
		out = append(out, c.Add(n.Scale(hw)))
	}
	return out
}

// normal returns the unit left normal of the direction a->b.
func normal(a, b stitch.Point) stitch.Point {
	d := b.Sub(a)
	l := d.Len()
	if l == 0 {
		return stitch.Point{X: 0, Y: -1}
	}
	return stitch.Point{X: -d.Y / l, Y: d.X / l}
}

// simplify drops points closer than minDist to the previously kept point.
// The last point is always kept.
func simplify(path []stitch.Point, minDist float64) []stitch.Point {
	if len(path) < 3 {
		return path
	}
	out := []stitch.Point{path[0]}
	for _, p := range path[1 : len(path)-1] {
		if out[len(out)-1].Dist(p) >= minDist {
			out = append(out, p)
		}
	}
	last := path[len(path)-1]
	if out[len(out)-1] != last {
		out = append(out, last)
	}
	return out
}

// pathLength returns the total length of path.
func pathLength(path []stitch.Point) float64 {
	total := 0.0
	for i := 1; i < len(path); i++ {
		total += path[i-1].Dist(path[i])
	}
	return math.Abs(total)
}
