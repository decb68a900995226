// Package pes reads and writes Brother PES embroidery files. Only the
// truncated version 1 PES wrapper is produced: an 8-byte magic, the offset
// of the PEC section, and the PEC section itself, which carries the thread
// palette, the stitch block and preview icons.
package pes

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/chazu/sewcustom/pkg/stitch"
)

const (
	pesMagic  = "#PES0001"
	pecMagic  = "#PEC0001"
	pecOffset = 22 // truncated v1 header length

	pecHeaderSize = 512
	labelLength   = 8
	labelField    = 16

	// MaxColors is the most color runs a PEC header can list: the count
	// is stored minus one in a single byte.
	MaxColors = 256

	// Fixed header bytes of the PEC stitch block.
	blockHeaderSize = 20

	iconWidth  = 48
	iconHeight = 38
	iconSize   = iconWidth / 8 * iconHeight

	flagJump = 0x10
	flagTrim = 0x20
)

// ErrEmpty is returned when a sequence has nothing to stitch.
var ErrEmpty = errors.New("pes: sequence has no stitches")

// ErrTooManyColors is returned when a sequence has more color runs than
// MaxColors.
var ErrTooManyColors = errors.New("pes: too many color changes")

// Options control PES output.
type Options struct {
	// Name is written as the PEC label: non-ASCII characters become '_'
	// and the result is truncated to 8 bytes. The sequence name is used
	// when empty.
	Name string
}

// Write encodes seq as a PES file.
func Write(w io.Writer, seq *stitch.Sequence, opts Options) error {
	if seq == nil || seq.Count(stitch.CmdStitch) == 0 {
		return ErrEmpty
	}
	if len(seq.Threads) > MaxColors {
		return fmt.Errorf("%w: %d color runs, at most %d", ErrTooManyColors, len(seq.Threads), MaxColors)
	}
	name := opts.Name
	if name == "" {
		name = seq.Name
	}

	var buf bytes.Buffer
	buf.WriteString(pesMagic)
	writeUint32LE(&buf, pecOffset)
	buf.Write(make([]byte, pecOffset-buf.Len()))

	writePec(&buf, seq, name)

	_, err := w.Write(buf.Bytes())
	if err != nil {
		return fmt.Errorf("pes: write: %w", err)
	}
	return nil
}

func writePec(buf *bytes.Buffer, seq *stitch.Sequence, name string) {
	threads := seq.Threads
	if len(threads) == 0 {
		threads = []stitch.Thread{Thread(20)}
	}

	// Label and palette header.
	start := buf.Len()
	buf.WriteString("LA:")
	buf.WriteString(label(name))
	buf.WriteByte('\r')
	buf.WriteString(strings.Repeat(" ", 12))
	buf.Write([]byte{0xff, 0x00, iconWidth / 8, iconHeight})
	buf.WriteString(strings.Repeat(" ", 12))
	buf.WriteByte(byte(len(threads) - 1))
	for _, t := range threads {
		buf.WriteByte(byte(Nearest(t.Color)))
	}
	buf.Write(bytes.Repeat([]byte{0x20}, pecHeaderSize-(buf.Len()-start)))

	// Stitch block.
	min, max := seq.Bounds()
	minX, minY := int(math.Round(min.X)), int(math.Round(min.Y))
	width := int(math.Round(max.X)) - minX
	height := int(math.Round(max.Y)) - minY

	blockStart := buf.Len()
	buf.Write([]byte{0x00, 0x00})
	buf.Write([]byte{0x00, 0x00, 0x00}) // length, patched below
	buf.Write([]byte{0x31, 0xff, 0xf0})
	writeUint16LE(buf, uint16(width))
	writeUint16LE(buf, uint16(height))
	writeUint16LE(buf, 0x1e0)
	writeUint16LE(buf, 0x1b0)
	writeUint16BE(buf, 0x9000|uint16(-minX)&0x0fff)
	writeUint16BE(buf, 0x9000|uint16(-minY)&0x0fff)
	encodeStitches(buf, seq.Stitches)

	length := buf.Len() - blockStart
	b := buf.Bytes()
	b[blockStart+2] = byte(length)
	b[blockStart+3] = byte(length >> 8)
	b[blockStart+4] = byte(length >> 16)

	for _, icon := range icons(seq, len(threads)) {
		buf.Write(icon[:])
	}
}

// label returns name as a fixed-width PEC label field: printable ASCII
// only, at most labelLength bytes, space padded to labelField bytes.
func label(name string) string {
	ascii := strings.Map(func(r rune) rune {
		if r < 0x20 || r > 0x7e {
			return '_'
		}
		return r
	}, name)
	if len(ascii) > labelLength {
		ascii = ascii[:labelLength]
	}
	return ascii + strings.Repeat(" ", labelField-len(ascii))
}

// encodeStitches writes PEC stitch commands as deltas between rounded
// positions, so rounding error does not accumulate.
func encodeStitches(buf *bytes.Buffer, stitches []stitch.Stitch) {
	var x, y int
	colorTwo := true
	trimNext := false
	for _, st := range stitches {
		dx := int(math.Round(st.X)) - x
		dy := int(math.Round(st.Y)) - y
		switch st.Cmd {
		case stitch.CmdStitch:
			x, y = x+dx, y+dy
			trimNext = false
			if shortForm(dx) && shortForm(dy) {
				buf.Write([]byte{byte(dx) & 0x7f, byte(dy) & 0x7f})
			} else {
				writeLong(buf, dx, 0)
				writeLong(buf, dy, 0)
			}
		case stitch.CmdJump:
			x, y = x+dx, y+dy
			flag := byte(flagJump)
			if trimNext {
				flag = flagTrim
				trimNext = false
			}
			writeLong(buf, dx, flag)
			writeLong(buf, dy, flag)
		case stitch.CmdTrim:
			trimNext = true
		case stitch.CmdColorChange:
			trimNext = false
			buf.Write([]byte{0xfe, 0xb0})
			if colorTwo {
				buf.WriteByte(0x02)
			} else {
				buf.WriteByte(0x01)
			}
			colorTwo = !colorTwo
		case stitch.CmdEnd:
			buf.WriteByte(0xff)
			return
		}
	}
	buf.WriteByte(0xff)
}

func shortForm(d int) bool {
	return d > -64 && d < 63
}

// writeLong writes a 12-bit two's complement value with the long-form
// marker and the given flag in the high nibble.
func writeLong(buf *bytes.Buffer, v int, flag byte) {
	u := uint16(v)&0x0fff | 0x8000 | uint16(flag)<<8
	writeUint16BE(buf, u)
}

func writeUint16LE(buf *bytes.Buffer, v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	buf.Write(b[:])
}

func writeUint16BE(buf *bytes.Buffer, v uint16) {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	buf.Write(b[:])
}

func writeUint32LE(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}
