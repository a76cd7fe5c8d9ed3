package nodefs

import (
	"encoding/base64"
	"encoding/hex"
	"strings"

	xencoding "golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// Encoding names a string/byte conversion.
type Encoding string

// Supported encodings. Aliases such as "utf-8", "binary" and "ucs2" are
// accepted by [ParseEncoding].
const (
	UTF8      Encoding = "utf8"
	ASCII     Encoding = "ascii"
	Latin1    Encoding = "latin1"
	UTF16LE   Encoding = "utf16le"
	Base64    Encoding = "base64"
	Base64URL Encoding = "base64url"
	Hex       Encoding = "hex"
)

var encodingAliases = map[string]Encoding{
	"utf8":      UTF8,
	"utf-8":     UTF8,
	"ascii":     ASCII,
	"latin1":    Latin1,
	"binary":    Latin1,
	"utf16le":   UTF16LE,
	"utf-16le":  UTF16LE,
	"ucs2":      UTF16LE,
	"ucs-2":     UTF16LE,
	"base64":    Base64,
	"base64url": Base64URL,
	"hex":       Hex,
}

// ParseEncoding resolves a case-insensitive encoding name.
func ParseEncoding(name string) (Encoding, bool) {
	enc, ok := encodingAliases[strings.ToLower(name)]

	return enc, ok
}

// IsEncoding reports whether name is a recognized encoding.
func IsEncoding(name string) bool {
	_, ok := ParseEncoding(name)

	return ok
}

var (
	latin1Codec  xencoding.Encoding = charmap.ISO8859_1
	utf16leCodec xencoding.Encoding = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)
)

// Encode converts s to bytes. The empty Encoding means UTF-8.
//
// Latin-1 and ASCII keep the low byte of characters outside their range.
// Base64 accepts both the standard and URL-safe alphabets, padded or not.
// Hex decodes the longest valid prefix of digit pairs.
func (e Encoding) Encode(s string) []byte {
	switch e {
	case Latin1, ASCII:
		out := make([]byte, 0, len(s))

		for _, r := range s {
			b, ok := charmap.ISO8859_1.EncodeRune(r)
			if !ok {
				b = byte(r)
			}

			out = append(out, b)
		}

		return out
	case UTF16LE:
		out, err := utf16leCodec.NewEncoder().Bytes([]byte(s))
		if err != nil {
			return []byte(s)
		}

		return out
	case Base64, Base64URL:
		return decodeBase64(s)
	case Hex:
		return decodeHexPrefix(s)
	default:
		return []byte(s)
	}
}

// Decode converts b to a string. The empty Encoding means UTF-8.
func (e Encoding) Decode(b []byte) string {
	switch e {
	case Latin1:
		out, err := latin1Codec.NewDecoder().Bytes(b)
		if err != nil {
			return string(b)
		}

		return string(out)
	case ASCII:
		masked := make([]byte, len(b))
		for i, c := range b {
			masked[i] = c & 0x7f
		}

		return string(masked)
	case UTF16LE:
		out, err := utf16leCodec.NewDecoder().Bytes(b[:len(b)&^1])
		if err != nil {
			return string(b)
		}

		return string(out)
	case Base64:
		return base64.StdEncoding.EncodeToString(b)
	case Base64URL:
		return base64.RawURLEncoding.EncodeToString(b)
	case Hex:
		return hex.EncodeToString(b)
	default:
		return string(b)
	}
}

func decodeBase64(s string) []byte {
	s = strings.Map(func(r rune) rune {
		switch r {
		case '-':
			return '+'
		case '_':
			return '/'
		case '=', ' ', '\n', '\r', '\t':
			return -1
		}

		return r
	}, s)

	out, err := base64.RawStdEncoding.DecodeString(s)
	if err != nil {
		return nil
	}

	return out
}

func decodeHexPrefix(s string) []byte {
	n := len(s) &^ 1

	for i := 0; i < n; i += 2 {
		if _, err := hex.DecodeString(s[i : i+2]); err != nil {
			n = i

			break
		}
	}

	out, _ := hex.DecodeString(s[:n])

	return out
}

// toBytes normalizes a data argument ([]byte or string) to bytes.
func toBytes(name string, data any, enc Encoding) ([]byte, error) {
	switch d := data.(type) {
	case []byte:
		return d, nil
	case string:
		return enc.Encode(d), nil
	default:
		return nil, invalidArgType(name, "string or []byte", data)
	}
}
