package kernel

// Span is a horizontal interval [X0, X1] at height Y lying inside a region.
type Span struct {
	Y      float64
	X0, X1 float64
}

// Length returns the width of the span.
func (s Span) Length() float64 {
	return s.X1 - s.X0
}

// bisectSteps refines a span edge to step/2^bisectSteps.
const bisectSteps = 8

// Spans intersects the horizontal line at y with r. The line is sampled
// every step units between the region bounds and each inside/outside
// transition is refined by bisection. Spans are returned left to right.
func Spans(k Kernel, r Region, y, step float64) []Span {
	if step <= 0 {
		return nil
	}
	min, max := r.Bounds()
	if y < min[1] || y > max[1] {
		return nil
	}

	var spans []Span
	x := min[0] - step
	inside := false
	var start float64
	for x <= max[0]+step {
		in := k.Inside(r, [2]float64{x, y})
		if in != inside {
			edge := refine(k, r, x-step, x, y, inside)
			if in {
				start = edge
			} else {
				spans = append(spans, Span{Y: y, X0: start, X1: edge})
			}
			inside = in
		}
		x += step
	}
	if inside {
		spans = append(spans, Span{Y: y, X0: start, X1: x})
	}
	return spans
}

// refine locates the inside/outside transition between x0 (state was) and
// x1 by bisection.
func refine(k Kernel, r Region, x0, x1, y float64, was bool) float64 {
	for i := 0; i < bisectSteps; i++ {
		mid := (x0 + x1) / 2
		if k.Inside(r, [2]float64{mid, y}) == was {
			x0 = mid
		} else {
			x1 = mid
		}
	}
	return (x0 + x1) / 2
}
