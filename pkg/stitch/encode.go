package stitch

import "math"

// Command is a machine instruction in a flattened sequence.
type Command int

const (
	CmdStitch      Command = iota // needle penetration
	CmdJump                       // move without stitching
	CmdTrim                       // cut the thread
	CmdColorChange                // stop for the next thread
	CmdEnd                        // end of design
)

func (c Command) String() string {
	switch c {
	case CmdStitch:
		return "stitch"
	case CmdJump:
		return "jump"
	case CmdTrim:
		return "trim"
	case CmdColorChange:
		return "color_change"
	case CmdEnd:
		return "end"
	default:
		return "unknown"
	}
}

// Stitch is one command at an absolute position.
type Stitch struct {
	X, Y float64
	Cmd  Command
}

// Sequence is a pattern flattened into machine commands. Threads has one
// entry per color run, in the order the ColorChange commands select them.
type Sequence struct {
	Name     string
	Threads  []Thread
	Stitches []Stitch
}

// EncodeOptions control how blocks are flattened.
type EncodeOptions struct {
	MaxStitch float64 // longest single stitch; longer ones are split
	MaxJump   float64 // longest single jump; longer ones are split
	TieOn     bool    // lock stitches at the start of each block
	TieOff    bool    // lock stitches at the end of each block
	TieLength float64 // length of a lock stitch
}

// DefaultEncodeOptions mirrors the settings used when writing PES files.
func DefaultEncodeOptions() EncodeOptions {
	return EncodeOptions{
		MaxStitch: 120,
		MaxJump:   120,
		TieOn:     true,
		TieOff:    true,
		TieLength: 10,
	}
}

// Encode flattens a pattern. The first block starts with a jump from the
// origin; a thread change inserts ColorChange; consecutive blocks of the
// same thread are separated by Trim. The sequence always ends with a
// single End command.
func Encode(p *Pattern, opts EncodeOptions) *Sequence {
	seq := &Sequence{Name: p.Name}
	var cur Point
	var prev *Block

	for i := range p.Blocks {
		b := &p.Blocks[i]
		if len(b.Points) == 0 {
			continue
		}
		if prev == nil {
			seq.Threads = append(seq.Threads, b.Thread)
		} else if prev.Thread.Color != b.Thread.Color {
			seq.Stitches = append(seq.Stitches, Stitch{X: cur.X, Y: cur.Y, Cmd: CmdColorChange})
			seq.Threads = append(seq.Threads, b.Thread)
		} else {
			seq.Stitches = append(seq.Stitches, Stitch{X: cur.X, Y: cur.Y, Cmd: CmdTrim})
		}

		pts := b.Points
		if opts.TieOn || opts.TieOff {
			pts = tie(pts, opts)
		}

		seq.Stitches = appendMove(seq.Stitches, cur, pts[0], opts.MaxJump, CmdJump)
		cur = pts[0]
		seq.Stitches = append(seq.Stitches, Stitch{X: cur.X, Y: cur.Y, Cmd: CmdStitch})
		for _, pt := range pts[1:] {
			seq.Stitches = appendMove(seq.Stitches, cur, pt, opts.MaxStitch, CmdStitch)
			cur = pt
		}
		prev = b
	}

	seq.Stitches = append(seq.Stitches, Stitch{X: cur.X, Y: cur.Y, Cmd: CmdEnd})
	return seq
}

// appendMove emits cmd steps from a to b, splitting into equal sub-steps
// no longer than max. Zero-length moves emit nothing.
func appendMove(out []Stitch, a, b Point, max float64, cmd Command) []Stitch {
	d := a.Dist(b)
	if d == 0 {
		return out
	}
	n := 1
	if max > 0 && d > max {
		n = int(math.Ceil(d / max))
	}
	for i := 1; i <= n; i++ {
		p := a.Lerp(b, float64(i)/float64(n))
		out = append(out, Stitch{X: p.X, Y: p.Y, Cmd: cmd})
	}
	return out
}

// tie adds lock stitches at the block ends: a short step back along the
// path and a return, so the thread cannot pull out.
func tie(pts []Point, opts EncodeOptions) []Point {
	if len(pts) < 2 || opts.TieLength <= 0 {
		return pts
	}
	out := make([]Point, 0, len(pts)+4)
	if opts.TieOn {
		start := pts[0]
		out = append(out, start, towards(start, pts[1], opts.TieLength))
	}
	out = append(out, pts...)
	if opts.TieOff {
		end := pts[len(pts)-1]
		out = append(out, towards(end, pts[len(pts)-2], opts.TieLength), end)
	}
	return out
}

// towards returns the point at distance d from a in the direction of b,
// clamped to b.
func towards(a, b Point, d float64) Point {
	l := a.Dist(b)
	if l == 0 || l <= d {
		return b
	}
	return a.Lerp(b, d/l)
}

// Bounds returns the extents of all Stitch and Jump positions.
func (s *Sequence) Bounds() (min, max Point) {
	min = Point{math.Inf(1), math.Inf(1)}
	max = Point{math.Inf(-1), math.Inf(-1)}
	found := false
	for _, st := range s.Stitches {
		if st.Cmd != CmdStitch && st.Cmd != CmdJump {
			continue
		}
		found = true
		min.X = math.Min(min.X, st.X)
		min.Y = math.Min(min.Y, st.Y)
		max.X = math.Max(max.X, st.X)
		max.Y = math.Max(max.Y, st.Y)
	}
	if !found {
		return Point{}, Point{}
	}
	return min, max
}

// Count returns how many commands of kind cmd the sequence holds.
func (s *Sequence) Count(cmd Command) int {
	n := 0
	for _, st := range s.Stitches {
		if st.Cmd == cmd {
			n++
		}
	}
	return n
}
