package ipc

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf16"
)

// ArgumentList is an immutable in-memory argument list.
type ArgumentList struct {
	values []Value
	msg    uint32
}

// NewArgumentList builds a list from values. The values are not copied.
func NewArgumentList(values ...Value) *ArgumentList {
	return &ArgumentList{values: values}
}

// Msg returns the message id carried with the list.
func (a *ArgumentList) Msg() uint32 { return a.msg }

// Count returns the number of arguments.
func (a *ArgumentList) Count() int { return len(a.values) }

func (a *ArgumentList) at(i int) (Value, bool) {
	if i < 0 || i >= len(a.values) {
		return Value{}, false
	}
	return a.values[i], true
}

// TypeOf returns the tag at i, or TypeEnd when i is out of range.
func (a *ArgumentList) TypeOf(i int) Type {
	v, ok := a.at(i)
	if !ok {
		return TypeEnd
	}
	return v.Type
}

// ByteArray returns the BYTEARRAY payload at i, or nil.
func (a *ArgumentList) ByteArray(i int) *ByteArray {
	v, ok := a.at(i)
	if !ok || v.Type != TypeByteArray {
		return nil
	}
	return &ByteArray{Content: v.Bytes, Length: int32(len(v.Bytes))}
}

// String returns the STRING or JSONSTRING payload at i, or nil.
func (a *ArgumentList) String(i int) *Text {
	v, ok := a.at(i)
	if !ok || (v.Type != TypeString && v.Type != TypeJSONString) {
		return nil
	}
	return &Text{Content: v.Chars, Length: int32(len(v.Chars))}
}

// Int32 returns the INT32 payload at i, or 0.
func (a *ArgumentList) Int32(i int) int32 {
	v, ok := a.at(i)
	if !ok || v.Type != TypeInt32 {
		return 0
	}
	return int32(v.I)
}

// Int64 returns the INT64 payload at i, or 0.
func (a *ArgumentList) Int64(i int) int64 {
	v, ok := a.at(i)
	if !ok || v.Type != TypeInt64 {
		return 0
	}
	return v.I
}

// Float returns the FLOAT payload at i, or 0.
func (a *ArgumentList) Float(i int) float32 {
	v, ok := a.at(i)
	if !ok || v.Type != TypeFloat {
		return 0
	}
	return float32(v.F)
}

// Double returns the DOUBLE payload at i, or 0.
func (a *ArgumentList) Double(i int) float64 {
	v, ok := a.at(i)
	if !ok || v.Type != TypeDouble {
		return 0
	}
	return v.F
}

// Describe renders argument i for diagnostics.
func Describe(args Arguments, i int) string {
	t := args.TypeOf(i)
	switch t {
	case TypeInt32:
		return strconv.FormatInt(int64(args.Int32(i)), 10)
	case TypeInt64:
		return strconv.FormatInt(args.Int64(i), 10)
	case TypeFloat:
		return strconv.FormatFloat(float64(args.Float(i)), 'g', -1, 32)
	case TypeDouble:
		return strconv.FormatFloat(args.Double(i), 'g', -1, 64)
	case TypeString, TypeJSONString:
		if s := args.String(i); s != nil {
			return strconv.Quote(string(utf16.Decode(s.Content)))
		}
	case TypeByteArray:
		if b := args.ByteArray(i); b != nil {
			return fmt.Sprintf("%d bytes %q", b.Length, truncate(b.Content, 64))
		}
	case TypeVoid, TypeJSUndefined, TypeEnd:
		return strings.ToLower(t.String())
	}
	return t.String()
}

func truncate(b []byte, n int) []byte {
	if len(b) <= n {
		return b
	}
	return b[:n]
}

var _ Arguments = (*ArgumentList)(nil)
