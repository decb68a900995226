package rules

import (
	"fmt"
	"strings"

	"github.com/chazu/sewcustom/pkg/drawing"
	"github.com/chazu/sewcustom/pkg/stitch"
)

// Default width thresholds in millimetres.
const (
	DefaultSatinThreshold = 1.0
	DefaultFillThreshold  = 5.0
)

// DefaultSkipColor is the eraser color on the white sketch canvas.
const DefaultSkipColor = "#ffffff"

// Rule forces a stitch type for strokes matching a color and width range.
type Rule struct {
	Color    string      // normalized #rrggbb; empty matches any color
	MinWidth float64     // mm, inclusive
	MaxWidth float64     // mm, exclusive; zero means unbounded
	Stitch   stitch.Type // type to use when the rule matches
}

// Matches reports whether the rule applies to a stroke.
func (r Rule) Matches(color string, widthMM float64) bool {
	if r.Color != "" && r.Color != color {
		return false
	}
	if widthMM < r.MinWidth {
		return false
	}
	if r.MaxWidth > 0 && widthMM >= r.MaxWidth {
		return false
	}
	return true
}

func (r Rule) String() string {
	c := r.Color
	if c == "" {
		c = "any"
	}
	max := "inf"
	if r.MaxWidth > 0 {
		max = fmt.Sprintf("%g", r.MaxWidth)
	}
	return fmt.Sprintf("color=%s width=[%g,%s) -> %s", c, r.MinWidth, max, r.Stitch)
}

// Policy decides how each stroke is stitched.
type Policy struct {
	SatinThreshold float64 // below this width strokes are running stitch
	FillThreshold  float64 // at or above this width strokes are filled
	SkipColors     []string
	Rules          []Rule
}

// DefaultPolicy returns the built-in width heuristic with the eraser color
// skipped.
func DefaultPolicy() *Policy {
	return &Policy{
		SatinThreshold: DefaultSatinThreshold,
		FillThreshold:  DefaultFillThreshold,
		SkipColors:     []string{DefaultSkipColor},
	}
}

// Skip reports whether strokes of this color are left out of the pattern.
func (p *Policy) Skip(color string) bool {
	c := drawing.NormalizeColor(color)
	for _, s := range p.SkipColors {
		if s == c {
			return true
		}
	}
	return false
}

// Select picks the stitch type for a stroke of the given color and
// physical width. Explicit rules match first, in order.
func (p *Policy) Select(color string, widthMM float64) stitch.Type {
	c := drawing.NormalizeColor(color)
	for _, r := range p.Rules {
		if r.Matches(c, widthMM) {
			return r.Stitch
		}
	}
	switch {
	case widthMM < p.SatinThreshold:
		return stitch.Running
	case widthMM < p.FillThreshold:
		return stitch.Satin
	default:
		return stitch.Fill
	}
}

// Describe renders the policy as human-readable lines.
func (p *Policy) Describe() []string {
	lines := []string{
		fmt.Sprintf("running below %g mm, satin below %g mm, fill otherwise", p.SatinThreshold, p.FillThreshold),
	}
	if len(p.SkipColors) > 0 {
		lines = append(lines, "skip colors: "+strings.Join(p.SkipColors, ", "))
	}
	for i, r := range p.Rules {
		lines = append(lines, fmt.Sprintf("rule %d: %s", i+1, r))
	}
	return lines
}
