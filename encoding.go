package lxo

import (
	"fmt"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/encoding/unicode"
)

// TextEncoding maps the scene's ENCO index to a character encoding so raw
// byte payloads (CHNC records, retained blobs) can be interpreted for
// non-UTF-8 scenes. "System Default" is treated as UTF-8; GB2312 text is
// decoded with GBK, its superset.
func (f *LXOFile) TextEncoding() (encoding.Encoding, error) {
	switch f.EncodingIndex {
	case 0, 2:
		return unicode.UTF8, nil
	case 1:
		return charmap.Windows1252, nil
	case 3:
		return japanese.ShiftJIS, nil
	case 4:
		return japanese.EUCJP, nil
	case 5:
		return korean.EUCKR, nil
	case 6:
		return simplifiedchinese.GBK, nil
	case 7:
		return traditionalchinese.Big5, nil
	default:
		return nil, fmt.Errorf("%w: encoding %d of %d", ErrUnresolvedIndex, f.EncodingIndex, len(sceneEncodings))
	}
}

// DecodeText converts raw bytes from the scene's declared encoding to
// UTF-8.
func (f *LXOFile) DecodeText(raw []byte) (string, error) {
	enc, err := f.TextEncoding()
	if err != nil {
		return "", err
	}
	out, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("lxo: decode text: %w", err)
	}
	return string(out), nil
}
