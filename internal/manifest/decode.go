package manifest

import (
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var (
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
	lz4Magic  = []byte{0x04, 0x22, 0x4d, 0x18}

	utf8BOM    = []byte{0xef, 0xbb, 0xbf}
	utf16BEBOM = []byte{0xfe, 0xff}
	utf16LEBOM = []byte{0xff, 0xfe}
)

// Decode turns fetched bytes into UTF-8 manifest text. Content framed as
// zstd or lz4 is inflated first. UTF-16 input must start with a byte order
// mark; a UTF-8 byte order mark is dropped. maxBytes bounds the decoded
// size; zero disables the bound.
func Decode(id string, raw []byte, maxBytes int64) ([]byte, error) {
	b := raw
	var err error
	switch {
	case bytes.HasPrefix(b, zstdMagic):
		b, err = inflateZstd(b, maxBytes)
		if err != nil {
			return nil, &DecodeError{ID: id, Reason: "invalid zstd content", Err: err}
		}
	case bytes.HasPrefix(b, lz4Magic):
		b, err = readLimited(lz4.NewReader(bytes.NewReader(b)), maxBytes)
		if err != nil {
			return nil, &DecodeError{ID: id, Reason: "invalid lz4 content", Err: err}
		}
	}
	if maxBytes > 0 && int64(len(b)) > maxBytes {
		return nil, &DecodeError{ID: id, Reason: fmt.Sprintf("content exceeds %d bytes", maxBytes)}
	}

	switch {
	case bytes.HasPrefix(b, utf16BEBOM), bytes.HasPrefix(b, utf16LEBOM):
		dec := unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM).NewDecoder()
		b, _, err = transform.Bytes(dec, b)
		if err != nil {
			return nil, &DecodeError{ID: id, Reason: "invalid UTF-16 content", Err: err}
		}
	case bytes.HasPrefix(b, utf8BOM):
		b = b[len(utf8BOM):]
	}
	if !utf8.Valid(b) {
		return nil, &DecodeError{ID: id, Reason: "content is not valid UTF-8"}
	}
	return b, nil
}

func inflateZstd(b []byte, maxBytes int64) ([]byte, error) {
	zr, err := zstd.NewReader(bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return readLimited(zr, maxBytes)
}

// readLimited reads at most maxBytes+1 bytes so oversized content is
// detected without inflating all of it.
func readLimited(r io.Reader, maxBytes int64) ([]byte, error) {
	if maxBytes > 0 {
		r = io.LimitReader(r, maxBytes+1)
	}
	return io.ReadAll(r)
}
