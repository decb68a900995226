package pes

import (
	"image/color"

	"github.com/chazu/sewcustom/pkg/stitch"
	"github.com/lucasb-eyer/go-colorful"
)

// PecThread is an entry of the fixed Brother PEC thread chart. PEC files
// reference threads by their index in this chart, not by RGB value.
type PecThread struct {
	Name string
	Hex  string
}

// Palette is the PEC thread chart. Index 0 is reserved; entries start at 1.
var Palette = []PecThread{
	{"Unknown", "#000000"},
	{"Prussian Blue", "#1a0a94"},
	{"Blue", "#0f75ff"},
	{"Teal Green", "#00934c"},
	{"Corn Flower Blue", "#babdfe"},
	{"Red", "#ec0000"},
	{"Reddish Brown", "#e4995a"},
	{"Magenta", "#cc48ab"},
	{"Light Lilac", "#fdc4fa"},
	{"Lilac", "#dd84cd"},
	{"Mint Green", "#6bd38a"},
	{"Deep Gold", "#e4a945"},
	{"Orange", "#ffbd42"},
	{"Yellow", "#ffe600"},
	{"Lime Green", "#6cd900"},
	{"Brass", "#c1a941"},
	{"Silver", "#b5ad97"},
	{"Russet Brown", "#ba9c5f"},
	{"Cream Brown", "#faf59e"},
	{"Pewter", "#808080"},
	{"Black", "#000000"},
	{"Ultramarine", "#001cdf"},
	{"Royal Purple", "#df00b8"},
	{"Dark Gray", "#626262"},
	{"Dark Brown", "#69260d"},
	{"Deep Rose", "#ff0060"},
	{"Light Brown", "#bf8200"},
	{"Salmon Pink", "#f39178"},
	{"Vermilion", "#ff6805"},
	{"White", "#f0f0f0"},
	{"Violet", "#c832cd"},
	{"Seacrest", "#b0bf9b"},
	{"Sky Blue", "#65bfeb"},
	{"Pumpkin", "#ffba04"},
	{"Cream Yellow", "#fff06c"},
	{"Khaki", "#feca15"},
	{"Clay Brown", "#f38101"},
	{"Leaf Green", "#37a923"},
	{"Peacock Blue", "#23465f"},
	{"Gray", "#a6a695"},
	{"Warm Gray", "#cebfa6"},
	{"Dark Olive", "#96aa02"},
	{"Linen Brown", "#ffe3c6"},
	{"Pink", "#ff99d7"},
	{"Deep Green", "#007004"},
	{"Lavender", "#edccfb"},
	{"Wisteria Violet", "#c089d8"},
	{"Beige", "#e7d9b4"},
	{"Carmine", "#e90e86"},
	{"Amber Red", "#cf6829"},
	{"Olive Green", "#408615"},
	{"Dark Fuschia", "#db1797"},
	{"Tangerine", "#ffa704"},
	{"Light Blue", "#b9ffff"},
	{"Emerald Green", "#228927"},
	{"Purple", "#b612cd"},
	{"Moss Green", "#00aa00"},
	{"Flesh Pink", "#fea9dc"},
	{"Harvest Gold", "#fed510"},
	{"Electric Blue", "#0097df"},
	{"Lemon Yellow", "#ffff84"},
	{"Fresh Green", "#cfe774"},
	{"Applique Material", "#ffc864"},
	{"Applique Position", "#ffc8c8"},
	{"Applique", "#ffc8c8"},
}

// lastColorIndex is the last chart entry that is a real thread color; the
// applique markers after it are never chosen for a drawing color.
const lastColorIndex = 61

// Nearest returns the chart index whose color is closest to c in CIE Lab.
func Nearest(c color.RGBA) int {
	target := colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
	best, bestDist := 1, -1.0
	for i := 1; i <= lastColorIndex; i++ {
		pc, err := colorful.Hex(Palette[i].Hex)
		if err != nil {
			continue
		}
		if d := target.DistanceLab(pc); bestDist < 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// Thread returns the chart entry at index i as a stitch thread. Out of
// range indices map to entry 0.
func Thread(i int) stitch.Thread {
	if i < 0 || i >= len(Palette) {
		i = 0
	}
	pc, _ := colorful.Hex(Palette[i].Hex)
	r, g, b := pc.RGB255()
	return stitch.Thread{Color: color.RGBA{R: r, G: g, B: b, A: 0xff}, Description: Palette[i].Name}
}
