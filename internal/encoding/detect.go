package encoding

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Charset names the source encoding of an ingested file.
type Charset string

const (
	UTF8        Charset = "UTF-8"
	UTF8BOM     Charset = "UTF-8 (BOM)"
	UTF16LE     Charset = "UTF-16LE"
	UTF16BE     Charset = "UTF-16BE"
	Windows1252 Charset = "windows-1252"
	ISO88599    Charset = "ISO-8859-9"
	Latin1      Charset = "ISO-8859-1"
)

const sniffLen = 4096

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// Detect picks a charset for a whole file.
//
// Detection order:
//  1. BOM (UTF-8, UTF-16 LE/BE)
//  2. Valid UTF-8
//  3. Heuristic detection via chardet
//  4. Fallback to Latin-1
func Detect(buf []byte) Charset {
	return detect(buf, false)
}

// detect treats buf as a prefix when partial is set, so a rune cut at the end
// of the window still counts as UTF-8.
func detect(buf []byte, partial bool) Charset {
	switch {
	case bytes.HasPrefix(buf, bomUTF8):
		return UTF8BOM
	case bytes.HasPrefix(buf, bomUTF16LE):
		return UTF16LE
	case bytes.HasPrefix(buf, bomUTF16BE):
		return UTF16BE
	}

	if utf8.Valid(buf) || (partial && truncatedUTF8(buf)) {
		return UTF8
	}

	// Invalid UTF-8 is never passed through, whatever chardet guesses.
	result, err := chardet.NewTextDetector().DetectBest(buf)
	if err == nil {
		switch result.Charset {
		case "windows-1252":
			return Windows1252
		case "ISO-8859-9":
			return ISO88599
		}
	}

	return Latin1
}

// truncatedUTF8 reports whether buf is valid UTF-8 except for a multi-byte rune
// cut at the end of the sniffed window.
func truncatedUTF8(buf []byte) bool {
	for i := 1; i < utf8.UTFMax && i < len(buf); i++ {
		if utf8.Valid(buf[:len(buf)-i]) && !utf8.FullRune(buf[len(buf)-i:]) {
			return true
		}
	}

	return false
}

func decoderFor(cs Charset) *encoding.Decoder {
	switch cs {
	case UTF16LE:
		return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder()
	case UTF16BE:
		return unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewDecoder()
	case Windows1252:
		return charmap.Windows1252.NewDecoder()
	case ISO88599:
		return charmap.ISO8859_9.NewDecoder()
	case Latin1:
		return charmap.ISO8859_1.NewDecoder()
	}

	return nil
}

// NewUTF8Reader detects the encoding of the input and returns a reader
// that yields UTF-8 without a byte-order mark.
func NewUTF8Reader(r io.Reader) (io.Reader, Charset, error) {
	br := bufio.NewReaderSize(r, sniffLen)

	buf, err := br.Peek(sniffLen)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, "", fmt.Errorf("peek: %w", err)
	}

	cs := detect(buf, len(buf) >= sniffLen)

	if cs == UTF8BOM {
		_, _ = br.Discard(len(bomUTF8))
		return br, cs, nil
	}

	dec := decoderFor(cs)
	if dec == nil {
		return br, cs, nil
	}

	return transform.NewReader(br, dec), cs, nil
}

// Decode converts a whole file to UTF-8. Unlike NewUTF8Reader it checks every
// byte, so a non-UTF-8 byte anywhere in the file selects a fallback charset.
func Decode(b []byte) ([]byte, Charset, error) {
	cs := Detect(b)

	switch cs {
	case UTF8:
		return b, cs, nil
	case UTF8BOM:
		return b[len(bomUTF8):], cs, nil
	}

	out, _, err := transform.Bytes(decoderFor(cs), b)
	if err != nil {
		return nil, cs, fmt.Errorf("decode %s: %w", cs, err)
	}

	return out, cs, nil
}
