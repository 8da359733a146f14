package ipc

import (
	"testing"
	"unicode/utf16"
)

func TestArgumentList_TypedGetters(t *testing.T) {
	args := NewArgumentList(
		ByteArrayValue([]byte("hello")),
		Int32Value(42),
		StringValue("json:{}"),
		JSONValue(`{"a":1}`),
		Int64Value(1<<40),
		FloatValue(1.5),
		DoubleValue(2.25),
		VoidValue(),
		UndefinedValue(),
	)

	if args.Count() != 9 {
		t.Fatalf("Count = %d", args.Count())
	}

	wantTypes := []Type{TypeByteArray, TypeInt32, TypeString, TypeJSONString, TypeInt64, TypeFloat, TypeDouble, TypeVoid, TypeJSUndefined}
	for i, want := range wantTypes {
		if got := args.TypeOf(i); got != want {
			t.Errorf("TypeOf(%d) = %s, want %s", i, got, want)
		}
	}

	ba := args.ByteArray(0)
	if ba == nil || ba.Length != 5 || string(ba.Content) != "hello" {
		t.Fatalf("ByteArray(0) = %+v", ba)
	}
	if args.Int32(1) != 42 {
		t.Fatalf("Int32(1) = %d", args.Int32(1))
	}
	s := args.String(2)
	if s == nil || s.Length != 7 || string(utf16.Decode(s.Content)) != "json:{}" {
		t.Fatalf("String(2) = %+v", s)
	}
	if args.String(3) == nil {
		t.Fatal("String should accept JSONSTRING")
	}
	if args.Int64(4) != 1<<40 {
		t.Fatalf("Int64(4) = %d", args.Int64(4))
	}
	if args.Float(5) != 1.5 {
		t.Fatalf("Float(5) = %v", args.Float(5))
	}
	if args.Double(6) != 2.25 {
		t.Fatalf("Double(6) = %v", args.Double(6))
	}
}

func TestArgumentList_Mismatches(t *testing.T) {
	args := NewArgumentList(Int32Value(7), ByteArrayValue([]byte("x")))

	if args.ByteArray(0) != nil {
		t.Fatal("ByteArray on INT32 should be nil")
	}
	if args.String(1) != nil {
		t.Fatal("String on BYTEARRAY should be nil")
	}
	if args.Int32(1) != 0 || args.Int64(0) != 0 || args.Float(0) != 0 || args.Double(0) != 0 {
		t.Fatal("wrong-tag scalar getters should return 0")
	}

	for _, i := range []int{-1, 2, 100} {
		if args.TypeOf(i) != TypeEnd {
			t.Errorf("TypeOf(%d) = %s", i, args.TypeOf(i))
		}
		if args.ByteArray(i) != nil || args.String(i) != nil || args.Int32(i) != 0 {
			t.Errorf("out of range getters at %d should return zero values", i)
		}
	}
}

func TestType_String(t *testing.T) {
	if TypeByteArray.String() != "BYTEARRAY" {
		t.Fatalf("got %q", TypeByteArray.String())
	}
	if Type(42).String() != "Type(42)" {
		t.Fatalf("got %q", Type(42).String())
	}
}

func TestDescribe(t *testing.T) {
	args := NewArgumentList(
		Int32Value(-3),
		StringValue("hi"),
		ByteArrayValue([]byte("abc")),
		VoidValue(),
		DoubleValue(0.5),
	)

	tests := map[int]string{
		0: "-3",
		1: `"hi"`,
		2: `3 bytes "abc"`,
		3: "void",
		4: "0.5",
		5: "end",
	}
	for i, want := range tests {
		if got := Describe(args, i); got != want {
			t.Errorf("Describe(%d) = %q, want %q", i, got, want)
		}
	}
}
