package lxo

import (
	"errors"
	"testing"

	"golang.org/x/text/encoding/japanese"
)

func TestTextEncoding(t *testing.T) {
	f := &LXOFile{EncodingIndex: 3}
	enc, err := f.TextEncoding()
	if err != nil {
		t.Fatalf("TextEncoding failed: %v", err)
	}
	if enc != japanese.ShiftJIS {
		t.Errorf("encoding = %v, want ShiftJIS", enc)
	}

	f.EncodingIndex = 99
	if _, err := f.TextEncoding(); !errors.Is(err, ErrUnresolvedIndex) {
		t.Fatalf("err = %v, want ErrUnresolvedIndex", err)
	}
}

func TestDecodeText(t *testing.T) {
	f := &LXOFile{EncodingIndex: 1} // ANSI, decoded as Windows-1252
	got, err := f.DecodeText([]byte{0x63, 0x61, 0x66, 0xE9})
	if err != nil {
		t.Fatalf("DecodeText failed: %v", err)
	}
	if got != "café" {
		t.Errorf("text = %q", got)
	}
}
