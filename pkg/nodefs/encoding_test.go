package nodefs

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func Test_Encoding_Roundtrips_Representable_Strings(t *testing.T) {
	t.Parallel()

	tests := []struct {
		enc Encoding
		s   string
	}{
		{UTF8, "héllo wörld ✓"},
		{ASCII, "plain text"},
		{Latin1, "café ÿ"},
		{UTF16LE, "héllo ✓"},
		{Hex, "00ff10ab"},
		{Base64, "aGVsbG8gd29ybGQ="},
		{Base64URL, "-_8"},
	}

	for _, tt := range tests {
		if got := tt.enc.Decode(tt.enc.Encode(tt.s)); got != tt.s {
			t.Fatalf("%s: roundtrip=%q, want %q", tt.enc, got, tt.s)
		}
	}
}

func Test_Encoding_Encodes_Known_Bytes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		enc  Encoding
		in   string
		want []byte
	}{
		{Latin1, "é", []byte{0xe9}},
		{Latin1, "✓", []byte{0x13}},
		{UTF16LE, "A", []byte{0x41, 0x00}},
		{Hex, "4142zz43", []byte("AB")},
		{Base64, "QUJD", []byte("ABC")},
		{Base64, "QU JD\n", []byte("ABC")},
		{Base64URL, "-_8", []byte{0xfb, 0xff}},
	}

	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, tt.enc.Encode(tt.in)); diff != "" {
			t.Fatalf("%s.Encode(%q) mismatch (-want +got):\n%s", tt.enc, tt.in, diff)
		}
	}
}

func Test_ParseEncoding_Accepts_Aliases_Case_Insensitively(t *testing.T) {
	t.Parallel()

	for name, want := range map[string]Encoding{
		"UTF-8":  UTF8,
		"Binary": Latin1,
		"ucs2":   UTF16LE,
		"HEX":    Hex,
	} {
		got, ok := ParseEncoding(name)
		if !ok || got != want {
			t.Fatalf("ParseEncoding(%q)=%q,%v, want %q", name, got, ok, want)
		}
	}

	if IsEncoding("ebcdic") {
		t.Fatal("IsEncoding(ebcdic)=true, want false")
	}
}

func Test_ChunkDecoder_Holds_Split_Sequences_Until_Complete(t *testing.T) {
	t.Parallel()

	tests := []struct {
		enc    Encoding
		chunks [][]byte
		want   string
	}{
		{UTF8, [][]byte{{'a', 0xe2, 0x9c}, {0x93, 'b'}}, "a✓b"},
		{UTF16LE, [][]byte{{0x41}, {0x00, 0x42}, {0x00}}, "AB"},
		{Base64, [][]byte{[]byte("ab"), []byte("cd")}, "YWJjZA=="},
		{Hex, [][]byte{{0x01}, {0xff}}, "01ff"},
	}

	for _, tt := range tests {
		d := &chunkDecoder{enc: tt.enc}

		var sb strings.Builder
		for _, c := range tt.chunks {
			sb.WriteString(d.decode(c))
		}

		sb.WriteString(d.flush())

		if got := sb.String(); got != tt.want {
			t.Fatalf("%s: decoded=%q, want %q", tt.enc, got, tt.want)
		}
	}
}
