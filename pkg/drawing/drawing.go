package drawing

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Default canvas size used when a document omits width or height. These
// match the drawable area of the e-reader the sketch page was built for.
const (
	DefaultCanvasWidth  = 800
	DefaultCanvasHeight = 900
)

// Stroke types recorded by the sketch page.
const (
	StrokeLine = "line"
	StrokeDot  = "dot"
)

// Point is a canvas coordinate in pixels. It is encoded as a two-element
// JSON array: [x, y].
type Point struct {
	X, Y float64
}

// UnmarshalJSON decodes [x, y]. Extra elements (pressure, time) are ignored.
func (p *Point) UnmarshalJSON(data []byte) error {
	var raw []float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("point: expected [x, y]: %w", err)
	}
	if len(raw) < 2 {
		return fmt.Errorf("point: expected 2 coordinates, got %d", len(raw))
	}
	p.X, p.Y = raw[0], raw[1]
	return nil
}

// MarshalJSON encodes the point as [x, y].
func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{p.X, p.Y})
}

// IsFinite reports whether both coordinates are real numbers.
func (p Point) IsFinite() bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) && !math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}

// Timestamp holds the document timestamp as text. The sketch pages have sent
// both ISO strings and epoch milliseconds, so both are accepted.
type Timestamp string

// UnmarshalJSON accepts a JSON string or number.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*t = Timestamp(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("timestamp: expected string or number")
	}
	*t = Timestamp(n.String())
	return nil
}

// String returns the timestamp or "Unknown" when none was recorded.
func (t Timestamp) String() string {
	if t == "" {
		return "Unknown"
	}
	return string(t)
}

// Stroke is a single user-drawn line or dot.
type Stroke struct {
	Type        string  `json:"type"`
	Color       string  `json:"color"`
	Width       float64 `json:"width"`
	Coordinates []Point `json:"coordinates"`
}

// IsDot reports whether the stroke was recorded as a dot.
func (s Stroke) IsDot() bool {
	return s.Type == StrokeDot
}

// Drawing is the top-level document saved by the sketch page.
type Drawing struct {
	Width     float64   `json:"width"`
	Height    float64   `json:"height"`
	Timestamp Timestamp `json:"timestamp"`
	Strokes   []Stroke  `json:"strokes"`
}

// Parse decodes a drawing document. Unknown fields are ignored.
func Parse(data []byte) (*Drawing, error) {
	var d Drawing
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parse drawing: %w", err)
	}
	return &d, nil
}

// CanvasSize returns the canvas dimensions, substituting defW and defH when
// the document value is missing or not positive.
func (d *Drawing) CanvasSize(defW, defH float64) (w, h float64) {
	w, h = d.Width, d.Height
	if w <= 0 || math.IsNaN(w) {
		w = defW
	}
	if h <= 0 || math.IsNaN(h) {
		h = defH
	}
	return w, h
}

// Stats summarizes a drawing.
type Stats struct {
	Strokes int
	Points  int
	Dots    int
	Colors  []string // distinct colors in first-use order
}

// Stats counts strokes, points, dots and distinct colors.
func (d *Drawing) Stats() Stats {
	var s Stats
	seen := make(map[string]bool)
	for _, st := range d.Strokes {
		s.Strokes++
		s.Points += len(st.Coordinates)
		if st.IsDot() {
			s.Dots++
		}
		if !seen[st.Color] {
			seen[st.Color] = true
			s.Colors = append(s.Colors, st.Color)
		}
	}
	return s
}

// Describe returns the one-line summary shown next to a loaded drawing.
func (d *Drawing) Describe() string {
	return strconv.Itoa(len(d.Strokes)) + " strokes | " + d.Timestamp.String()
}
