package ipc

import (
	"strconv"
	"unicode/utf16"
)

// Type is the discriminant of one argument.
type Type uint8

const (
	TypeInt32 Type = iota
	TypeInt64
	TypeFloat
	TypeDouble
	TypeJSONString
	TypeString
	TypeByteArray
	TypeVoid
	TypeJSUndefined
	TypeEnd
)

var typeNames = [...]string{
	TypeInt32:       "INT32",
	TypeInt64:       "INT64",
	TypeFloat:       "FLOAT",
	TypeDouble:      "DOUBLE",
	TypeJSONString:  "JSONSTRING",
	TypeString:      "STRING",
	TypeByteArray:   "BYTEARRAY",
	TypeVoid:        "VOID",
	TypeJSUndefined: "JSUNDEFINED",
	TypeEnd:         "END",
}

func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "Type(" + strconv.Itoa(int(t)) + ")"
}

// ByteArray is a length-prefixed byte payload.
type ByteArray struct {
	Content []byte
	Length  int32
}

// Text is a length-prefixed UTF-16 payload.
type Text struct {
	Content []uint16
	Length  int32
}

// Arguments is a read-only view of a tagged argument list.
type Arguments interface {
	Count() int
	TypeOf(i int) Type
	ByteArray(i int) *ByteArray
	String(i int) *Text
	Int32(i int) int32
	Int64(i int) int64
	Float(i int) float32
	Double(i int) float64
}

// Serializer appends typed values in call order.
type Serializer interface {
	SetMsg(msg uint32)
	AddInt32(v int32) error
	AddInt64(v int64) error
	AddFloat(v float32) error
	AddDouble(v float64) error
	Add(chars []uint16) error
	AddJSON(chars []uint16) error
	AddBytes(data []byte) error
	AddVoid() error
	Finish() (*Buffer, error)
}

// Value is one tagged argument.
type Value struct {
	Bytes []byte
	Chars []uint16
	F     float64
	I     int64
	Type  Type
}

func Int32Value(v int32) Value      { return Value{Type: TypeInt32, I: int64(v)} }
func Int64Value(v int64) Value      { return Value{Type: TypeInt64, I: v} }
func FloatValue(v float32) Value    { return Value{Type: TypeFloat, F: float64(v)} }
func DoubleValue(v float64) Value   { return Value{Type: TypeDouble, F: v} }
func CharsValue(c []uint16) Value   { return Value{Type: TypeString, Chars: c} }
func ByteArrayValue(b []byte) Value { return Value{Type: TypeByteArray, Bytes: b} }
func VoidValue() Value              { return Value{Type: TypeVoid} }
func UndefinedValue() Value         { return Value{Type: TypeJSUndefined} }

// StringValue encodes s as UTF-16 and tags it STRING.
func StringValue(s string) Value {
	return Value{Type: TypeString, Chars: utf16.Encode([]rune(s))}
}

// JSONValue encodes s as UTF-16 and tags it JSONSTRING.
func JSONValue(s string) Value {
	return Value{Type: TypeJSONString, Chars: utf16.Encode([]rune(s))}
}
