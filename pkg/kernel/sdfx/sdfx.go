// Package sdfx implements the kernel.Kernel interface using the
// github.com/deadsy/sdfx SDF-based CAD library.
package sdfx

import (
	"math"

	"github.com/chazu/sewcustom/pkg/kernel"
	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
)

// Compile-time interface check.
var _ kernel.Kernel = (*SdfxKernel)(nil)

// sdfxRegion wraps an sdf.SDF2 to implement kernel.Region.
type sdfxRegion struct {
	s sdf.SDF2
}

// Bounds returns the axis-aligned bounding box.
func (r *sdfxRegion) Bounds() (min, max [2]float64) {
	bb := r.s.BoundingBox()
	return [2]float64{bb.Min.X, bb.Min.Y}, [2]float64{bb.Max.X, bb.Max.Y}
}

// capsule is the set of points within r of the segment ab. sdfx has no 2D
// segment primitive with round ends, so it is implemented against the
// sdf.SDF2 interface directly.
type capsule struct {
	a, b v2.Vec
	r    float64
}

// Evaluate returns the signed distance from p to the capsule boundary.
func (c *capsule) Evaluate(p v2.Vec) float64 {
	pa := p.Sub(c.a)
	ba := c.b.Sub(c.a)
	h := 0.0
	if l2 := ba.Dot(ba); l2 > 0 {
		h = math.Max(0, math.Min(1, pa.Dot(ba)/l2))
	}
	return pa.Sub(ba.MulScalar(h)).Length() - c.r
}

// BoundingBox returns the capsule bounds.
func (c *capsule) BoundingBox() sdf.Box2 {
	return sdf.Box2{
		Min: v2.Vec{X: math.Min(c.a.X, c.b.X) - c.r, Y: math.Min(c.a.Y, c.b.Y) - c.r},
		Max: v2.Vec{X: math.Max(c.a.X, c.b.X) + c.r, Y: math.Max(c.a.Y, c.b.Y) + c.r},
	}
}

// clipped restricts an SDF2 to a box. Its bounding box is the overlap of
// the two, which sdf.Intersect2D does not compute.
type clipped struct {
	sdf.SDF2
	bb sdf.Box2
}

func (c *clipped) BoundingBox() sdf.Box2 {
	return c.bb
}

// SdfxKernel implements kernel.Kernel using sdfx.
type SdfxKernel struct{}

// New returns a new SdfxKernel.
func New() *SdfxKernel {
	return &SdfxKernel{}
}

// unwrap extracts the underlying sdf.SDF2 from a kernel.Region.
func unwrap(r kernel.Region) sdf.SDF2 {
	return r.(*sdfxRegion).s
}

// wrap creates a kernel.Region from an sdf.SDF2.
func wrap(s sdf.SDF2) kernel.Region {
	return &sdfxRegion{s: s}
}

func vec(p [2]float64) v2.Vec {
	return v2.Vec{X: p[0], Y: p[1]}
}

// Capsule returns the region within radius of segment ab.
func (k *SdfxKernel) Capsule(a, b [2]float64, radius float64) kernel.Region {
	return wrap(&capsule{a: vec(a), b: vec(b), r: radius})
}

// Disc returns a filled circle. It is a capsule with coincident ends.
func (k *SdfxKernel) Disc(center [2]float64, radius float64) kernel.Region {
	c := vec(center)
	return wrap(&capsule{a: c, b: c, r: radius})
}

// Union returns the union of the regions.
func (k *SdfxKernel) Union(rs ...kernel.Region) kernel.Region {
	if len(rs) == 1 {
		return rs[0]
	}
	parts := make([]sdf.SDF2, len(rs))
	for i, r := range rs {
		parts[i] = unwrap(r)
	}
	return wrap(sdf.Union2D(parts...))
}

// Stroke returns the area swept by a round brush of the given radius along
// path. A single-point path is a disc.
func (k *SdfxKernel) Stroke(path [][2]float64, radius float64) kernel.Region {
	switch len(path) {
	case 0:
		return k.Disc([2]float64{}, 0)
	case 1:
		return k.Disc(path[0], radius)
	}
	segs := make([]kernel.Region, 0, len(path)-1)
	for i := 0; i+1 < len(path); i++ {
		segs = append(segs, k.Capsule(path[i], path[i+1], radius))
	}
	return k.Union(segs...)
}

// Clip returns the part of r inside the box [min, max].
func (k *SdfxKernel) Clip(r kernel.Region, min, max [2]float64) kernel.Region {
	lo, hi := vec(min), vec(max)
	box := sdf.Transform2D(sdf.Box2D(hi.Sub(lo), 0), sdf.Translate2d(lo.Add(hi).MulScalar(0.5)))
	s := unwrap(r)
	bb := s.BoundingBox()
	return wrap(&clipped{
		SDF2: sdf.Intersect2D(s, box),
		bb: sdf.Box2{
			Min: v2.Vec{X: math.Max(bb.Min.X, lo.X), Y: math.Max(bb.Min.Y, lo.Y)},
			Max: v2.Vec{X: math.Min(bb.Max.X, hi.X), Y: math.Min(bb.Max.Y, hi.Y)},
		},
	})
}

// Inside reports whether p lies in the region (boundary included).
func (k *SdfxKernel) Inside(r kernel.Region, p [2]float64) bool {
	return unwrap(r).Evaluate(vec(p)) <= 0
}

// Distance returns the signed distance from p to the region boundary.
func (k *SdfxKernel) Distance(r kernel.Region, p [2]float64) float64 {
	return unwrap(r).Evaluate(vec(p))
}
