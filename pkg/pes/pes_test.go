package pes

import (
	"bytes"
	"encoding/binary"
	"errors"
	"image/color"
	"math"
	"testing"

	"github.com/chazu/sewcustom/pkg/stitch"
)

var (
	red   = stitch.Thread{Color: color.RGBA{R: 0xff, A: 0xff}}
	black = stitch.Thread{Color: color.RGBA{A: 0xff}}
)

func testSequence() *stitch.Sequence {
	p := stitch.New("sample-design")
	p.AddBlock([]stitch.Point{{10, 10}, {60, 10}, {60, 300}}, black, stitch.Running)
	p.AddBlock([]stitch.Point{{400, 400}, {420, 380}}, black, stitch.Satin)
	p.AddBlock([]stitch.Point{{-50, 20.4}, {-10, 20.6}, {-10, -40}}, red, stitch.Fill)
	return stitch.Encode(p, stitch.DefaultEncodeOptions())
}

func TestWriteHeader(t *testing.T) {
	seq := testSequence()
	var buf bytes.Buffer
	if err := Write(&buf, seq, Options{}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	data := buf.Bytes()

	if got := string(data[:8]); got != "#PES0001" {
		t.Errorf("magic = %q", got)
	}
	if got := binary.LittleEndian.Uint32(data[8:12]); got != 22 {
		t.Errorf("PEC offset = %d, want 22", got)
	}
	pec := data[22:]
	if got := string(pec[:20]); got != "LA:sample-d        \r" {
		t.Errorf("label = %q", got)
	}
	if pec[48] != 1 {
		t.Errorf("color count byte = %d, want 1", pec[48])
	}
	if pec[49] != 20 || pec[50] != 5 {
		t.Errorf("palette = %v, want [20 5]", pec[49:51])
	}
	if pec[51] != 0x20 || pec[511] != 0x20 {
		t.Errorf("header padding missing")
	}

	block := pec[512:]
	if !bytes.Equal(block[5:8], []byte{0x31, 0xff, 0xf0}) {
		t.Errorf("block marker = % x", block[5:8])
	}
	length := int(block[2]) | int(block[3])<<8 | int(block[4])<<16
	if want := len(block) - 3*iconSize; length != want {
		t.Errorf("block length = %d, want %d", length, want)
	}
	if block[length-1] != 0xff {
		t.Errorf("stitch data ends with %#x, want 0xff", block[length-1])
	}
}

func TestWriteNameOverride(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, testSequence(), Options{Name: "cat"}); err != nil {
		t.Fatal(err)
	}
	seq, err := Read(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if seq.Name != "cat" {
		t.Errorf("name = %q, want cat", seq.Name)
	}
}

func TestRoundTrip(t *testing.T) {
	orig := testSequence()
	var buf bytes.Buffer
	if err := Write(&buf, orig, Options{}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	if len(got.Stitches) != len(orig.Stitches) {
		t.Fatalf("got %d commands, want %d", len(got.Stitches), len(orig.Stitches))
	}
	for i, want := range orig.Stitches {
		g := got.Stitches[i]
		if g.Cmd != want.Cmd {
			t.Fatalf("command %d = %v, want %v", i, g.Cmd, want.Cmd)
		}
		if g.X != math.Round(want.X) || g.Y != math.Round(want.Y) {
			t.Errorf("command %d at (%v,%v), want (%v,%v)", i, g.X, g.Y, math.Round(want.X), math.Round(want.Y))
		}
	}
	if n := got.Count(stitch.CmdColorChange); n != 1 {
		t.Errorf("color changes = %d, want 1", n)
	}
	if len(got.Threads) != 2 || got.Threads[0].Description != "Black" || got.Threads[1].Description != "Red" {
		t.Errorf("threads = %+v", got.Threads)
	}
}

// colorRuns alternates red and black blocks so every block starts a new
// color run.
func colorRuns(n int) *stitch.Sequence {
	p := stitch.New("runs")
	for i := 0; i < n; i++ {
		th := red
		if i%2 == 1 {
			th = black
		}
		x := float64(i % 50 * 10)
		p.AddBlock([]stitch.Point{{x, 0}, {x, 20}}, th, stitch.Running)
	}
	return stitch.Encode(p, stitch.DefaultEncodeOptions())
}

func TestWriteColorLimit(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, colorRuns(MaxColors), Options{}); err != nil {
		t.Fatalf("Write(%d runs): %v", MaxColors, err)
	}
	got, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(got.Threads) != MaxColors {
		t.Errorf("read %d threads, want %d", len(got.Threads), MaxColors)
	}

	for _, n := range []int{MaxColors + 1, 464} {
		var out bytes.Buffer
		if err := Write(&out, colorRuns(n), Options{}); !errors.Is(err, ErrTooManyColors) {
			t.Errorf("Write(%d runs) err = %v, want ErrTooManyColors", n, err)
		}
		if out.Len() != 0 {
			t.Errorf("Write(%d runs) wrote %d bytes", n, out.Len())
		}
	}
}

func TestLabel(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"sketch", "sketch          "},
		{"sample-design", "sample-d        "},
		{"éééé", "____            "},
		{"été fleur", "_t_ fleu        "},
		{"\xff\xfeab", "__ab            "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := label(tt.name); got != tt.want {
				t.Errorf("label(%q) = %q, want %q", tt.name, got, tt.want)
			}
		})
	}
}

func TestRoundTripNonASCIIName(t *testing.T) {
	orig := testSequence()
	var buf bytes.Buffer
	if err := Write(&buf, orig, Options{Name: "éééé"}); err != nil {
		t.Fatal(err)
	}
	if got := buf.Bytes()[22+19]; got != '\r' {
		t.Fatalf("label terminator = %#x, want \\r", got)
	}

	got, err := Read(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "____" {
		t.Errorf("name = %q, want ____", got.Name)
	}
	if len(got.Threads) != len(orig.Threads) {
		t.Errorf("read %d threads, want %d", len(got.Threads), len(orig.Threads))
	}
	if len(got.Stitches) != len(orig.Stitches) {
		t.Errorf("read %d commands, want %d", len(got.Stitches), len(orig.Stitches))
	}
}

func TestWriteEmpty(t *testing.T) {
	var buf bytes.Buffer
	empty := stitch.Encode(stitch.New("x"), stitch.DefaultEncodeOptions())
	if err := Write(&buf, empty, Options{}); !errors.Is(err, ErrEmpty) {
		t.Errorf("err = %v, want ErrEmpty", err)
	}
	if err := Write(&buf, nil, Options{}); !errors.Is(err, ErrEmpty) {
		t.Errorf("nil sequence err = %v, want ErrEmpty", err)
	}
}

func TestReadRejectsGarbage(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"short", []byte("#PES")},
		{"wrong magic", []byte("GIF89a0000000000000000")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Read(bytes.NewReader(tt.data)); !errors.Is(err, ErrFormat) {
				t.Errorf("err = %v, want ErrFormat", err)
			}
		})
	}

	bad := append([]byte("#PES0001"), 0xff, 0xff, 0, 0)
	if _, err := Read(bytes.NewReader(bad)); err == nil {
		t.Error("expected error for out of range PEC offset")
	}
}

func TestDecodeValue(t *testing.T) {
	tests := []struct {
		name  string
		in    []byte
		want  int
		flags byte
		n     int
	}{
		{"short positive", []byte{0x05}, 5, 0, 1},
		{"short minus one", []byte{0x7f}, -1, 0, 1},
		{"short minimum", []byte{0x40}, -64, 0, 1},
		{"long jump", []byte{0x90, 0x05}, 5, flagJump, 2},
		{"long minus one", []byte{0x8f, 0xff}, -1, 0, 2},
		{"long trim", []byte{0xa0, 0x78}, 120, flagTrim, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, flags, n, err := decodeValue(tt.in, 0)
			if err != nil {
				t.Fatal(err)
			}
			if v != tt.want || flags != tt.flags || n != tt.n {
				t.Errorf("decodeValue = (%d, %#x, %d), want (%d, %#x, %d)", v, flags, n, tt.want, tt.flags, tt.n)
			}
		})
	}
	if _, _, _, err := decodeValue([]byte{0x90}, 0); err == nil {
		t.Error("expected error for truncated long form")
	}
}

func TestEncodeForms(t *testing.T) {
	var buf bytes.Buffer
	encodeStitches(&buf, []stitch.Stitch{
		{X: 100, Y: 0, Cmd: stitch.CmdJump},
		{X: 100, Y: 0, Cmd: stitch.CmdStitch},
		{X: 162, Y: -63, Cmd: stitch.CmdStitch},
		{X: 262, Y: -63, Cmd: stitch.CmdStitch},
		{X: 262, Y: -63, Cmd: stitch.CmdTrim},
		{X: 300, Y: -63, Cmd: stitch.CmdJump},
		{X: 300, Y: -63, Cmd: stitch.CmdColorChange},
		{X: 300, Y: -63, Cmd: stitch.CmdColorChange},
		{X: 300, Y: -63, Cmd: stitch.CmdEnd},
	})
	want := []byte{
		0x90, 0x64, 0x90, 0x00, // jump +100, 0
		0x00, 0x00, // zero stitch
		0x3e, 0x41, // +62, -63
		0x80, 0x64, 0x80, 0x00, // +100 forces both long
		0xa0, 0x26, 0xa0, 0x00, // trimmed jump +38
		0xfe, 0xb0, 0x02,
		0xfe, 0xb0, 0x01,
		0xff,
	}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Errorf("encoded\n% x\nwant\n% x", buf.Bytes(), want)
	}
}

func TestNearest(t *testing.T) {
	tests := []struct {
		c    color.RGBA
		want string
	}{
		{color.RGBA{A: 0xff}, "Black"},
		{color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}, "White"},
		{color.RGBA{R: 0xec, A: 0xff}, "Red"},
	}
	for _, tt := range tests {
		if got := Palette[Nearest(tt.c)].Name; got != tt.want {
			t.Errorf("Nearest(%v) = %s, want %s", tt.c, got, tt.want)
		}
	}
}

func TestThreadOutOfRange(t *testing.T) {
	if got := Thread(200).Description; got != "Unknown" {
		t.Errorf("Thread(200) = %s, want Unknown", got)
	}
	if got := Thread(5).Hex(); got != "#ec0000" {
		t.Errorf("Thread(5) = %s, want #ec0000", got)
	}
}
