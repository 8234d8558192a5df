package lxo

import (
	"bytes"
	"errors"
	"testing"
)

func testReader(data []byte) *reader {
	return newReader(bytes.NewReader(data), int64(len(data)))
}

func TestReadVX(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		want     uint32
		consumed int64
	}{
		{"small", []byte{0x00, 0x01}, 1, 2},
		{"zero", []byte{0x00, 0x00}, 0, 2},
		{"largest2", []byte{0xFE, 0xFF}, 0xFEFF, 2},
		{"wide", []byte{0xFF, 0x01, 0x02, 0x03}, 0x010203, 4},
		{"maskedTop", []byte{0xFF, 0xFF, 0xFF, 0xFF}, 0x00FFFFFF, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := testReader(tt.data)
			got, err := r.vx()
			if err != nil {
				t.Fatalf("vx failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("vx = %#x, want %#x", got, tt.want)
			}
			if consumed := int64(len(tt.data)) - r.remain; consumed != tt.consumed {
				t.Errorf("consumed %d bytes, want %d", consumed, tt.consumed)
			}
		})
	}
}

func TestReadVXRoundTrip(t *testing.T) {
	for _, v := range []uint32{0, 1, 0xFEFF, 0xFF00, 0x010203, 0x00FFFFFF} {
		r := testReader(beVX(v))
		got, err := r.vx()
		if err != nil {
			t.Fatalf("vx(%#x) failed: %v", v, err)
		}
		if got != v {
			t.Errorf("vx round trip = %#x, want %#x", got, v)
		}
	}
}

func TestReadS0(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		want     string
		consumed int64
	}{
		{"single", []byte{0x41, 0x00}, "A", 2},
		{"double", []byte{0x41, 0x42, 0x00, 0x00}, "AB", 4},
		{"empty", []byte{0x00, 0x00}, "", 2},
		{"oddPadded", []byte{0x41, 0x42, 0x43, 0x00}, "ABC", 4},
		{"invalidUTF8", []byte{0xFF, 0x00}, "�", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := testReader(tt.data)
			got, err := r.s0()
			if err != nil {
				t.Fatalf("s0 failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("s0 = %q, want %q", got, tt.want)
			}
			if consumed := int64(len(tt.data)) - r.remain; consumed != tt.consumed {
				t.Errorf("consumed %d bytes, want %d", consumed, tt.consumed)
			}
		})
	}
}

func TestReadValueMasking(t *testing.T) {
	intBytes := beU32(42)
	for _, datatype := range []uint16{1, 17} {
		r := testReader(intBytes)
		v, err := r.value(datatype)
		if err != nil {
			t.Fatalf("value(%d) failed: %v", datatype, err)
		}
		if v.(int32) != 42 {
			t.Errorf("value(%d) = %v, want 42", datatype, v)
		}
	}

	floatBytes := beF32(1.5)
	for _, datatype := range []uint16{2, 18} {
		r := testReader(floatBytes)
		v, err := r.value(datatype)
		if err != nil {
			t.Fatalf("value(%d) failed: %v", datatype, err)
		}
		if v.(float32) != 1.5 {
			t.Errorf("value(%d) = %v, want 1.5", datatype, v)
		}
	}

	strBytes := beS0("on")
	for _, datatype := range []uint16{3, 19} {
		r := testReader(strBytes)
		v, err := r.value(datatype)
		if err != nil {
			t.Fatalf("value(%d) failed: %v", datatype, err)
		}
		if v.(string) != "on" {
			t.Errorf("value(%d) = %v, want on", datatype, v)
		}
	}

	r := testReader(intBytes)
	if _, err := r.value(5); !errors.Is(err, ErrUnknownDatatype) {
		t.Errorf("value(5) err = %v, want ErrUnknownDatatype", err)
	}
}

func TestReadTruncated(t *testing.T) {
	// budget smaller than the read
	r := newReader(bytes.NewReader(make([]byte, 8)), 2)
	if _, err := r.u4(); !errors.Is(err, ErrTruncated) {
		t.Errorf("budget overrun err = %v, want ErrTruncated", err)
	}

	// stream shorter than the budget
	r = newReader(bytes.NewReader([]byte{1, 2}), 8)
	if _, err := r.u4(); !errors.Is(err, ErrTruncated) {
		t.Errorf("short stream err = %v, want ErrTruncated", err)
	}
}

func TestReadBlob(t *testing.T) {
	r := testReader([]byte{1, 2, 3, 4})
	b, err := r.blob(3)
	if err != nil {
		t.Fatalf("blob failed: %v", err)
	}
	if !bytes.Equal(b, []byte{1, 2, 3}) || r.remain != 1 {
		t.Errorf("blob = %v, remain = %d", b, r.remain)
	}

	if _, err := r.blob(-1); !errors.Is(err, ErrInvalidBlobSize) {
		t.Errorf("blob(-1) err = %v, want ErrInvalidBlobSize", err)
	}
}

func TestReadScalars(t *testing.T) {
	r := testReader(cat(
		beU16(0xABCD),
		beU32(0x12345678),
		beU16(0xFFFF), // -1 as i2
		beF32(2.5),
	))
	if v, _ := r.u2(); v != 0xABCD {
		t.Errorf("u2 = %#x", v)
	}
	if v, _ := r.u4(); v != 0x12345678 {
		t.Errorf("u4 = %#x", v)
	}
	if v, _ := r.i2(); v != -1 {
		t.Errorf("i2 = %d", v)
	}
	if v, _ := r.f4(); v != 2.5 {
		t.Errorf("f4 = %v", v)
	}
	if r.remain != 0 {
		t.Errorf("remain = %d", r.remain)
	}
}

func TestReadVec12(t *testing.T) {
	r := testReader(cat(beF32(1), beF32(2), beF32(3)))
	v, err := r.vec12()
	if err != nil {
		t.Fatalf("vec12 failed: %v", err)
	}
	if v[0] != 1 || v[1] != 2 || v[2] != 3 {
		t.Errorf("vec12 = %v", v)
	}
}

func TestReadID4(t *testing.T) {
	r := testReader([]byte("FORM"))
	id, err := r.id4()
	if err != nil {
		t.Fatalf("id4 failed: %v", err)
	}
	if id != "FORM" || r.remain != 0 {
		t.Errorf("id4 = %q, remain %d", id, r.remain)
	}
}
