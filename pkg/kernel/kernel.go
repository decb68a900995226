// Package kernel defines the abstract 2D geometry kernel used to build
// stitch regions. Implementations (sdfx) model stroke areas as signed
// distance fields behind this interface, so fill generation does not depend
// on a particular geometry library.
package kernel

// Region is an opaque handle to a closed 2D area in pattern units.
type Region interface {
	// Bounds returns the axis-aligned bounding box.
	Bounds() (min, max [2]float64)
}

// Kernel is the abstract 2D geometry kernel interface.
type Kernel interface {
	// Primitives
	Capsule(a, b [2]float64, radius float64) Region
	Disc(center [2]float64, radius float64) Region

	// Composition
	Union(rs ...Region) Region
	Stroke(path [][2]float64, radius float64) Region
	Clip(r Region, min, max [2]float64) Region // part of r inside the box; min below max

	// Queries
	Inside(r Region, p [2]float64) bool
	Distance(r Region, p [2]float64) float64 // negative inside
}
