package vm

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLookupCharset(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []byte
	}{
		{"utf8", "héllo", []byte("héllo")},
		{"UTF-8", "héllo", []byte("héllo")},
		{"ISO-8859-1", "café", []byte{'c', 'a', 'f', 0xE9}},
		{"GB2312", "中文", []byte{0xD6, 0xD0, 0xCE, 0xC4}},
		{"GBK", "中文", []byte{0xD6, 0xD0, 0xCE, 0xC4}},
		{"UTF-16BE", "A", []byte{0x00, 0x41}},
		{"UTF-16LE", "A", []byte{0x41, 0x00}},
		{"UTF-16", "A", []byte{0xFE, 0xFF, 0x00, 0x41}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			enc, err := LookupCharset(tt.name)
			if err != nil {
				t.Fatalf("LookupCharset(%q): %v", tt.name, err)
			}
			got := encodeString(enc, tt.input)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("encoding mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLookupCharset_Unknown(t *testing.T) {
	if _, err := LookupCharset("no-such-charset"); err == nil {
		t.Fatal("expected error for unknown charset")
	}
}

func TestEncodeString_Unmappable(t *testing.T) {
	enc, err := LookupCharset("GB2312")
	if err != nil {
		t.Fatalf("LookupCharset: %v", err)
	}
	got := encodeString(enc, "a😀b")
	if string(got) != "a?b" {
		t.Fatalf("got %q, want %q", got, "a?b")
	}
}
