package pes

import (
	"math"

	"github.com/chazu/sewcustom/pkg/stitch"
)

type icon [iconSize]byte

func (ic *icon) set(x, y int) {
	if x < 0 || y < 0 || x >= iconWidth || y >= iconHeight {
		return
	}
	ic[y*iconWidth/8+x/8] |= 1 << (x % 8)
}

func (ic *icon) frame() {
	for x := 0; x < iconWidth; x++ {
		ic.set(x, 0)
		ic.set(x, iconHeight-1)
	}
	for y := 0; y < iconHeight; y++ {
		ic.set(0, y)
		ic.set(iconWidth-1, y)
	}
}

// icons renders the machine-screen previews: one of the whole design
// followed by one per thread.
func icons(seq *stitch.Sequence, threads int) []icon {
	out := make([]icon, threads+1)
	for i := range out {
		out[i].frame()
	}

	min, max := seq.Bounds()
	const margin = 3
	sx := float64(iconWidth-2*margin-1) / math.Max(max.X-min.X, 1)
	sy := float64(iconHeight-2*margin-1) / math.Max(max.Y-min.Y, 1)
	s := math.Min(sx, sy)

	color := 0
	for _, st := range seq.Stitches {
		switch st.Cmd {
		case stitch.CmdColorChange:
			color++
		case stitch.CmdStitch:
			x := margin + int(math.Round((st.X-min.X)*s))
			y := margin + int(math.Round((st.Y-min.Y)*s))
			out[0].set(x, y)
			if color+1 < len(out) {
				out[color+1].set(x, y)
			}
		}
	}
	return out
}
