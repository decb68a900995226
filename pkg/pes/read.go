package pes

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chazu/sewcustom/pkg/stitch"
)

// ErrFormat is returned for data that is not a PES or PEC file.
var ErrFormat = errors.New("pes: unrecognized format")

// Read decodes a PES or bare PEC file into a command sequence. Positions
// are absolute, starting from the origin. Threads come from the PEC
// palette.
func Read(r io.Reader) (*stitch.Sequence, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("pes: read: %w", err)
	}
	if len(data) < 12 {
		return nil, ErrFormat
	}

	var pec int
	switch {
	case bytes.HasPrefix(data, []byte("#PES")):
		pec = int(binary.LittleEndian.Uint32(data[8:12]))
	case bytes.HasPrefix(data, []byte(pecMagic)):
		pec = len(pecMagic)
	default:
		return nil, ErrFormat
	}
	if pec < 0 || pec+pecHeaderSize+blockHeaderSize > len(data) {
		return nil, fmt.Errorf("pes: PEC section at %d is out of range", pec)
	}
	return readPec(data[pec:])
}

func readPec(data []byte) (*stitch.Sequence, error) {
	seq := &stitch.Sequence{}
	if bytes.HasPrefix(data, []byte("LA:")) {
		seq.Name = strings.TrimRight(string(data[3:19]), " \x00")
	}

	count := int(data[48]) + 1
	if 49+count > pecHeaderSize {
		return nil, fmt.Errorf("pes: %d threads do not fit the PEC header", count)
	}
	for _, idx := range data[49 : 49+count] {
		seq.Threads = append(seq.Threads, Thread(int(idx)))
	}

	var err error
	seq.Stitches, err = decodeStitches(data[pecHeaderSize+blockHeaderSize:])
	if err != nil {
		return nil, err
	}
	return seq, nil
}

func decodeStitches(b []byte) ([]stitch.Stitch, error) {
	var (
		out  []stitch.Stitch
		x, y int
		i    int
	)
	for i < len(b) {
		switch b[i] {
		case 0xff:
			return append(out, stitch.Stitch{X: float64(x), Y: float64(y), Cmd: stitch.CmdEnd}), nil
		case 0xfe:
			if i+3 > len(b) {
				return nil, fmt.Errorf("pes: truncated color change at %d", i)
			}
			out = append(out, stitch.Stitch{X: float64(x), Y: float64(y), Cmd: stitch.CmdColorChange})
			i += 3
			continue
		}

		dx, fx, n, err := decodeValue(b, i)
		if err != nil {
			return nil, err
		}
		i += n
		dy, fy, n, err := decodeValue(b, i)
		if err != nil {
			return nil, err
		}
		i += n

		x, y = x+dx, y+dy
		flags := fx | fy
		switch {
		case flags&flagTrim != 0:
			out = append(out,
				stitch.Stitch{X: float64(x - dx), Y: float64(y - dy), Cmd: stitch.CmdTrim},
				stitch.Stitch{X: float64(x), Y: float64(y), Cmd: stitch.CmdJump})
		case flags&flagJump != 0:
			out = append(out, stitch.Stitch{X: float64(x), Y: float64(y), Cmd: stitch.CmdJump})
		default:
			out = append(out, stitch.Stitch{X: float64(x), Y: float64(y), Cmd: stitch.CmdStitch})
		}
	}
	return nil, fmt.Errorf("pes: stitch data has no end marker")
}

// decodeValue reads one coordinate at b[i]: a 7-bit short form or a 12-bit
// long form with flags in the high byte. It returns the value, the flags
// and the number of bytes consumed.
func decodeValue(b []byte, i int) (v int, flags byte, n int, err error) {
	if i >= len(b) {
		return 0, 0, 0, fmt.Errorf("pes: truncated stitch at %d", i)
	}
	v1 := b[i]
	if v1&0x80 == 0 {
		v = int(v1)
		if v > 63 {
			v -= 128
		}
		return v, 0, 1, nil
	}
	if i+1 >= len(b) {
		return 0, 0, 0, fmt.Errorf("pes: truncated long stitch at %d", i)
	}
	v = int(v1&0x0f)<<8 | int(b[i+1])
	if v > 0x7ff {
		v -= 0x1000
	}
	return v, v1 & (flagTrim | flagJump), 2, nil
}
