package vm

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"

	"github.com/wippyai/hostbridge/errors"
)

// LookupCharset resolves a charset name the way String.getBytes would.
// IANA names are tried first, then WHATWG labels (which map GB2312 to GBK).
func LookupCharset(name string) (encoding.Encoding, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "UTF-8", "UTF8":
		return unicode.UTF8, nil
	case "UTF-16":
		return unicode.UTF16(unicode.BigEndian, unicode.UseBOM), nil
	case "UTF-16BE":
		return unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM), nil
	case "UTF-16LE":
		return unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM), nil
	}

	if enc, err := ianaindex.IANA.Encoding(name); err == nil && enc != nil {
		return enc, nil
	}
	if enc, err := htmlindex.Get(name); err == nil && enc != nil {
		return enc, nil
	}
	return nil, errors.Unsupported(errors.PhaseRuntime, "charset "+name)
}

// encodeString encodes s, substituting '?' for runes the charset cannot represent.
func encodeString(enc encoding.Encoding, s string) []byte {
	if out, err := enc.NewEncoder().Bytes([]byte(s)); err == nil {
		return out
	}

	out := make([]byte, 0, len(s))
	e := enc.NewEncoder()
	for _, r := range s {
		if r == utf8.RuneError {
			out = append(out, '?')
			continue
		}
		b, err := e.Bytes([]byte(string(r)))
		if err != nil {
			out = append(out, '?')
			e.Reset()
			continue
		}
		out = append(out, b...)
	}
	return out
}
