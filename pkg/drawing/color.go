package drawing

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// namedColors covers the CSS names the sketch page palette can emit.
var namedColors = map[string]color.RGBA{
	"black":   {0, 0, 0, 255},
	"white":   {255, 255, 255, 255},
	"red":     {255, 0, 0, 255},
	"green":   {0, 128, 0, 255},
	"lime":    {0, 255, 0, 255},
	"blue":    {0, 0, 255, 255},
	"yellow":  {255, 255, 0, 255},
	"orange":  {255, 165, 0, 255},
	"purple":  {128, 0, 128, 255},
	"magenta": {255, 0, 255, 255},
	"cyan":    {0, 255, 255, 255},
	"pink":    {255, 192, 203, 255},
	"brown":   {165, 42, 42, 255},
	"gray":    {128, 128, 128, 255},
	"grey":    {128, 128, 128, 255},
	"navy":    {0, 0, 128, 255},
}

// ParseColor converts a stroke color to RGBA. It accepts #rgb, #rrggbb,
// rgb(r, g, b) and a small set of CSS color names.
func ParseColor(s string) (color.RGBA, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if v == "" {
		return color.RGBA{}, fmt.Errorf("empty color")
	}
	if c, ok := namedColors[v]; ok {
		return c, nil
	}
	if strings.HasPrefix(v, "#") {
		c, err := colorful.Hex(v)
		if err != nil {
			return color.RGBA{}, fmt.Errorf("invalid hex color %q", s)
		}
		r, g, b := c.RGB255()
		return color.RGBA{R: r, G: g, B: b, A: 255}, nil
	}
	if strings.HasPrefix(v, "rgb(") && strings.HasSuffix(v, ")") {
		var r, g, b int
		inner := strings.ReplaceAll(v[4:len(v)-1], " ", "")
		if _, err := fmt.Sscanf(inner, "%d,%d,%d", &r, &g, &b); err != nil {
			return color.RGBA{}, fmt.Errorf("invalid rgb color %q", s)
		}
		if !inByte(r) || !inByte(g) || !inByte(b) {
			return color.RGBA{}, fmt.Errorf("rgb component out of range in %q", s)
		}
		return color.RGBA{R: uint8(r), G: uint8(g), B: uint8(b), A: 255}, nil
	}
	return color.RGBA{}, fmt.Errorf("unrecognized color %q", s)
}

// Hex formats an RGBA value as #rrggbb.
func Hex(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// NormalizeColor returns the canonical #rrggbb form of s, or s lowercased
// when it cannot be parsed.
func NormalizeColor(s string) string {
	c, err := ParseColor(s)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(s))
	}
	return Hex(c)
}

func inByte(v int) bool {
	return v >= 0 && v <= 255
}
