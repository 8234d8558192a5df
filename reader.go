package lxo

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/flywave/go3d/vec3"
)

// reader decodes big-endian primitives from a forward-only cursor. Every
// read is charged against the remaining FORM byte budget so chunk walkers
// can tell exactly how much a decoder consumed.
type reader struct {
	rd     io.ReadSeeker
	remain int64
}

func newReader(rd io.ReadSeeker, budget int64) *reader {
	return &reader{rd: rd, remain: budget}
}

func (r *reader) read(n int) ([]byte, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidBlobSize, n)
	}
	if int64(n) > r.remain {
		return nil, fmt.Errorf("%w: need %d bytes, %d declared", ErrTruncated, n, r.remain)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r.rd, buf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTruncated, err)
	}
	r.remain -= int64(n)
	return buf, nil
}

// skip seeks forward without touching the payload. The budget is charged
// unconditionally; a lie in the declared size surfaces on the next read.
func (r *reader) skip(n int64) error {
	r.remain -= n
	if _, err := r.rd.Seek(n, io.SeekCurrent); err != nil {
		return fmt.Errorf("%w: %v", ErrTruncated, err)
	}
	return nil
}

func (r *reader) u1() (uint8, error) {
	b, err := r.read(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *reader) u2() (uint16, error) {
	b, err := r.read(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

func (r *reader) u4() (uint32, error) {
	b, err := r.read(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

func (r *reader) i2() (int16, error) {
	v, err := r.u2()
	return int16(v), err
}

func (r *reader) i4() (int32, error) {
	v, err := r.u4()
	return int32(v), err
}

func (r *reader) f4() (float32, error) {
	v, err := r.u4()
	return math.Float32frombits(v), err
}

// id4 reads a 4-byte chunk identifier as a symbolic tag.
func (r *reader) id4() (string, error) {
	b, err := r.read(4)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// vx reads a variable index: U2 when below 0xFF00, otherwise U4 with the
// sentinel byte masked to zero.
func (r *reader) vx() (uint32, error) {
	hi, err := r.u2()
	if err != nil {
		return 0, err
	}
	if hi < 0xFF00 {
		return uint32(hi), nil
	}
	lo, err := r.u2()
	if err != nil {
		return 0, err
	}
	return uint32(hi&0x00FF)<<16 | uint32(lo), nil
}

// s0 reads a null-terminated string padded to an even byte count. Invalid
// UTF-8 sequences are replaced, never fatal.
func (r *reader) s0() (string, error) {
	var s []byte
	for {
		c, err := r.read(1)
		if err != nil {
			return "", err
		}
		s = append(s, c[0])
		if len(s)%2 == 0 && s[len(s)-1] == 0 {
			s = bytes.TrimRight(s, "\x00")
			return strings.ToValidUTF8(string(s), string(utf8.RuneError)), nil
		}
	}
}

func (r *reader) vec12() (vec3.T, error) {
	var v vec3.T
	for i := 0; i < 3; i++ {
		f, err := r.f4()
		if err != nil {
			return v, err
		}
		v[i] = f
	}
	return v, nil
}

// blob captures size raw bytes verbatim. Walkers pass the unconsumed rest
// of a chunk; a negative rest means a decoder overran its chunk.
func (r *reader) blob(size int) ([]byte, error) {
	return r.read(size)
}

// value decodes one channel value. The evaluated-variant bit is masked off
// so 17/18/19 dispatch like 1/2/3.
func (r *reader) value(datatype uint16) (interface{}, error) {
	switch datatype &^ CHANNEL_DATATYPE_EVAL_BIT {
	case CHANNEL_DATATYPE_INTEGER:
		v, err := r.i4()
		if err != nil {
			return nil, err
		}
		return v, nil
	case CHANNEL_DATATYPE_FLOAT:
		v, err := r.f4()
		if err != nil {
			return nil, err
		}
		return v, nil
	case CHANNEL_DATATYPE_HINT:
		v, err := r.s0()
		if err != nil {
			return nil, err
		}
		return v, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownDatatype, datatype)
	}
}
