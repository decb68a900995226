// Package stitch defines the embroidery pattern model: threads, stitch
// blocks and the flattened command sequence that machine formats encode.
// All coordinates are in embroidery units of 0.1 mm.
package stitch

import (
	"fmt"
	"image/color"
	"math"
)

// UnitsPerInch is the number of 0.1 mm units in one inch.
const UnitsPerInch = 254

// UnitsPerMM is the number of units in one millimetre.
const UnitsPerMM = 10

// Point is a position in pattern units.
type Point struct {
	X, Y float64
}

// Add returns p+q.
func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

// Sub returns p-q.
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// Scale returns p*s.
func (p Point) Scale(s float64) Point { return Point{p.X * s, p.Y * s} }

// Len returns the distance from the origin.
func (p Point) Len() float64 { return math.Hypot(p.X, p.Y) }

// Dist returns the distance between p and q.
func (p Point) Dist(q Point) float64 { return q.Sub(p).Len() }

// Lerp interpolates between p and q at t in [0,1].
func (p Point) Lerp(q Point, t float64) Point {
	return Point{p.X + (q.X-p.X)*t, p.Y + (q.Y-p.Y)*t}
}

// Type is the stitch type used to render a block.
type Type int

const (
	Running Type = iota // single line of stitches along the path
	Satin               // zig-zag column across the path
	Fill                // rows of stitches covering an area
)

func (t Type) String() string {
	switch t {
	case Running:
		return "running"
	case Satin:
		return "satin"
	case Fill:
		return "fill"
	default:
		return fmt.Sprintf("Type(%d)", int(t))
	}
}

// ParseType converts a type name back to a Type.
func ParseType(s string) (Type, error) {
	switch s {
	case "running":
		return Running, nil
	case "satin":
		return Satin, nil
	case "fill":
		return Fill, nil
	}
	return 0, fmt.Errorf("invalid stitch type %q, expected running, satin or fill", s)
}

// Thread is a thread color.
type Thread struct {
	Color       color.RGBA
	Description string
}

// Hex returns the thread color as #rrggbb.
func (t Thread) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", t.Color.R, t.Color.G, t.Color.B)
}

// Block is a run of stitches in one thread and stitch type. Points are
// needle penetrations in order.
type Block struct {
	Thread Thread
	Type   Type
	Points []Point
}

// Pattern is an ordered list of stitch blocks.
type Pattern struct {
	Name   string
	Blocks []Block
}

// New creates an empty pattern.
func New(name string) *Pattern {
	return &Pattern{Name: name}
}

// AddBlock appends a block. Empty point lists are ignored.
func (p *Pattern) AddBlock(points []Point, t Thread, typ Type) {
	if len(points) == 0 {
		return
	}
	cp := make([]Point, len(points))
	copy(cp, points)
	p.Blocks = append(p.Blocks, Block{Thread: t, Type: typ, Points: cp})
}

// IsEmpty reports whether the pattern has no stitches.
func (p *Pattern) IsEmpty() bool {
	return p.StitchCount() == 0
}

// StitchCount returns the number of needle penetrations across all blocks.
func (p *Pattern) StitchCount() int {
	n := 0
	for _, b := range p.Blocks {
		n += len(b.Points)
	}
	return n
}

// Threads returns one thread per color run: a new entry starts whenever a
// block's thread differs from the previous block's.
func (p *Pattern) Threads() []Thread {
	var out []Thread
	for i, b := range p.Blocks {
		if i == 0 || b.Thread.Color != p.Blocks[i-1].Thread.Color {
			out = append(out, b.Thread)
		}
	}
	return out
}

// Bounds returns the bounding box of all stitches. ok is false for an
// empty pattern.
func (p *Pattern) Bounds() (min, max Point, ok bool) {
	min = Point{math.Inf(1), math.Inf(1)}
	max = Point{math.Inf(-1), math.Inf(-1)}
	for _, b := range p.Blocks {
		for _, pt := range b.Points {
			min.X = math.Min(min.X, pt.X)
			min.Y = math.Min(min.Y, pt.Y)
			max.X = math.Max(max.X, pt.X)
			max.Y = math.Max(max.Y, pt.Y)
			ok = true
		}
	}
	if !ok {
		return Point{}, Point{}, false
	}
	return min, max, true
}

// Translate moves every stitch by (dx, dy).
func (p *Pattern) Translate(dx, dy float64) {
	for i := range p.Blocks {
		for j := range p.Blocks[i].Points {
			p.Blocks[i].Points[j].X += dx
			p.Blocks[i].Points[j].Y += dy
		}
	}
}

// Center moves the pattern so its bounding box is centered on the origin.
// Machines place the hoop center at the origin.
func (p *Pattern) Center() {
	min, max, ok := p.Bounds()
	if !ok {
		return
	}
	p.Translate(-(min.X+max.X)/2, -(min.Y+max.Y)/2)
}

// CountByType returns the number of blocks of each stitch type.
func (p *Pattern) CountByType() map[Type]int {
	counts := make(map[Type]int)
	for _, b := range p.Blocks {
		counts[b.Type]++
	}
	return counts
}
