// Package encoding turns uploaded statement bytes into UTF-8 text.
package encoding

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Charset names the encoding an upload was decoded from.
type Charset string

const (
	UTF8        Charset = "UTF-8"
	UTF8BOM     Charset = "UTF-8 (BOM)"
	UTF16LE     Charset = "UTF-16LE"
	UTF16BE     Charset = "UTF-16BE"
	Windows1252 Charset = "windows-1252"
	ISO88599    Charset = "ISO-8859-9"
)

var ErrTooLarge = errors.New("upload exceeds size limit")

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// sniffLen bounds the sample handed to chardet.
const sniffLen = 4096

// Read reads at most limit bytes from r and decodes them. A limit of zero
// or less means no limit.
func Read(r io.Reader, limit int64) (string, Charset, error) {
	if limit > 0 {
		r = io.LimitReader(r, limit+1)
	}

	raw, err := io.ReadAll(r)
	if err != nil {
		return "", "", fmt.Errorf("reading upload: %w", err)
	}

	if limit > 0 && int64(len(raw)) > limit {
		return "", "", fmt.Errorf("%w: more than %d bytes", ErrTooLarge, limit)
	}

	return Decode(raw)
}

// Decode detects the encoding of raw and returns its UTF-8 text.
//
// Detection order:
//  1. Check for BOM (UTF-8 BOM is stripped; UTF-16 LE/BE is decoded)
//  2. Validate if the content is valid UTF-8 and return as-is
//  3. Heuristic detection via chardet
//  4. Fallback to Windows-1252
func Decode(raw []byte) (string, Charset, error) {
	switch {
	case bytes.HasPrefix(raw, bomUTF8):
		return string(raw[len(bomUTF8):]), UTF8BOM, nil
	case bytes.HasPrefix(raw, bomUTF16LE):
		return convert(raw, unicode.UTF16(unicode.LittleEndian, unicode.UseBOM), UTF16LE)
	case bytes.HasPrefix(raw, bomUTF16BE):
		return convert(raw, unicode.UTF16(unicode.BigEndian, unicode.UseBOM), UTF16BE)
	}

	if utf8.Valid(raw) {
		return string(raw), UTF8, nil
	}

	sample := raw
	if len(sample) > sniffLen {
		sample = sample[:sniffLen]
	}

	// ISO-8859-1 and windows-1252 results fall through to the default.
	result, err := chardet.NewTextDetector().DetectBest(sample)
	if err == nil && result.Charset == "ISO-8859-9" {
		return convert(raw, charmap.ISO8859_9, ISO88599)
	}

	return convert(raw, charmap.Windows1252, Windows1252)
}

func convert(raw []byte, enc encoding.Encoding, cs Charset) (string, Charset, error) {
	out, _, err := transform.Bytes(enc.NewDecoder(), raw)
	if err != nil {
		return "", "", fmt.Errorf("decoding %s: %w", cs, err)
	}

	return string(out), cs, nil
}
