package stitch

import (
	"image/color"
	"testing"
)

var (
	black = Thread{Color: color.RGBA{0, 0, 0, 255}}
	red   = Thread{Color: color.RGBA{255, 0, 0, 255}}
)

func TestTypeRoundTrip(t *testing.T) {
	for _, typ := range []Type{Running, Satin, Fill} {
		got, err := ParseType(typ.String())
		if err != nil {
			t.Fatalf("ParseType(%q): %v", typ.String(), err)
		}
		if got != typ {
			t.Errorf("ParseType(%q) = %v", typ.String(), got)
		}
	}
	if _, err := ParseType("cross"); err == nil {
		t.Error("expected error for unknown type")
	}
}

func TestAddBlockIgnoresEmpty(t *testing.T) {
	p := New("test")
	p.AddBlock(nil, black, Running)
	if len(p.Blocks) != 0 {
		t.Fatalf("expected no blocks, got %d", len(p.Blocks))
	}
	if !p.IsEmpty() {
		t.Error("IsEmpty() = false for empty pattern")
	}
}

func TestAddBlockCopiesPoints(t *testing.T) {
	p := New("test")
	pts := []Point{{0, 0}, {10, 0}}
	p.AddBlock(pts, black, Running)
	pts[0].X = 99
	if p.Blocks[0].Points[0].X != 0 {
		t.Error("AddBlock must copy the point slice")
	}
}

func TestThreadsPerColorRun(t *testing.T) {
	p := New("test")
	p.AddBlock([]Point{{0, 0}}, black, Running)
	p.AddBlock([]Point{{1, 0}}, black, Satin)
	p.AddBlock([]Point{{2, 0}}, red, Running)
	p.AddBlock([]Point{{3, 0}}, black, Fill)

	threads := p.Threads()
	if len(threads) != 3 {
		t.Fatalf("expected 3 color runs, got %d", len(threads))
	}
	if threads[1].Hex() != "#ff0000" {
		t.Errorf("second run = %s, want #ff0000", threads[1].Hex())
	}

	counts := p.CountByType()
	if counts[Running] != 2 || counts[Satin] != 1 || counts[Fill] != 1 {
		t.Errorf("CountByType() = %v", counts)
	}
}

func TestBoundsAndCenter(t *testing.T) {
	p := New("test")
	if _, _, ok := p.Bounds(); ok {
		t.Error("empty pattern should report no bounds")
	}
	p.AddBlock([]Point{{10, 20}, {30, 60}}, black, Running)
	p.AddBlock([]Point{{50, 40}}, red, Running)

	min, max, ok := p.Bounds()
	if !ok || min != (Point{10, 20}) || max != (Point{50, 60}) {
		t.Fatalf("Bounds() = %v %v %v", min, max, ok)
	}

	p.Center()
	min, max, _ = p.Bounds()
	if min != (Point{-20, -20}) || max != (Point{20, 20}) {
		t.Errorf("after Center() bounds = %v %v", min, max)
	}
	if p.StitchCount() != 3 {
		t.Errorf("StitchCount() = %d, want 3", p.StitchCount())
	}
}

func TestPointHelpers(t *testing.T) {
	a := Point{0, 0}
	b := Point{3, 4}
	if a.Dist(b) != 5 {
		t.Errorf("Dist = %v", a.Dist(b))
	}
	if got := a.Lerp(b, 0.5); got != (Point{1.5, 2}) {
		t.Errorf("Lerp = %v", got)
	}
	if got := b.Scale(2).Sub(b).Add(a); got != b {
		t.Errorf("Scale/Sub/Add = %v", got)
	}
}
