package bridge

import (
	"context"
	"testing"

	"github.com/wippyai/hostbridge/ipc"
	"github.com/wippyai/hostbridge/native"
)

func TestConverter(t *testing.T) {
	m := newMachine(t)
	ctx := context.Background()

	c, err := NewConverter(ctx, m, &Config{Charset: "GB2312", Heap: native.HeapLinear, LinearPages: 2})
	if err != nil {
		t.Fatalf("NewConverter: %v", err)
	}
	defer c.Close()

	if c.Charset() != "GB2312" || c.Env() != m {
		t.Fatalf("converter bound to %q / %v", c.Charset(), c.Env())
	}

	s := mustString(t, m, "中文")
	raw, err := c.Decode(s)
	if err != nil || raw != "\xd6\xd0\xce\xc4" {
		t.Fatalf("Decode = %q, %v", raw, err)
	}

	buf, err := c.DecodeText(s)
	if err != nil {
		t.Fatalf("DecodeText: %v", err)
	}
	if buf.String() != raw {
		t.Fatalf("DecodeText = %q", buf.String())
	}
	buf.Release()

	if nb, err := c.DecodeText(0); nb != nil || err != nil {
		t.Fatalf("DecodeText(null) = %v, %v", nb, err)
	}

	if fast, _ := c.DecodeFast(s); fast != "中文" {
		t.Fatalf("DecodeFast = %q", fast)
	}

	ser := ipc.NewMsgpackSerializer()
	if err := c.AddString(ser, s); err != nil {
		t.Fatalf("AddString: %v", err)
	}
	if err := c.AddJSONString(ser, s); err != nil {
		t.Fatalf("AddJSONString: %v", err)
	}
	out, _ := ser.Finish()
	args, err := ipc.Decode(out.Bytes())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	ref, err := c.ManagedString(args, 0)
	if err != nil || ref.IsNull() {
		t.Fatalf("ManagedString = %d, %v", ref, err)
	}
	if tb, err := c.Text(args, 0); tb != nil || err != nil {
		t.Fatalf("Text on STRING = %v, %v", tb, err)
	}
	if m.OutstandingBorrows() != 0 {
		t.Fatal("borrow leaked")
	}
}

func TestNewConverter_Defaults(t *testing.T) {
	m := newMachine(t)

	c, err := NewConverter(context.Background(), m, nil)
	if err != nil {
		t.Fatalf("NewConverter: %v", err)
	}
	defer c.Close()

	if c.Charset() != LegacyCharset {
		t.Fatalf("charset = %q", c.Charset())
	}
	if _, ok := c.Heap().(*native.GoHeap); !ok {
		t.Fatalf("heap = %T", c.Heap())
	}
}

func TestNewConverter_Invalid(t *testing.T) {
	if _, err := NewConverter(context.Background(), newMachine(t), &Config{Heap: "disk"}); err == nil {
		t.Fatal("expected error")
	}
}

func TestNewConverterWithHeap(t *testing.T) {
	heap := native.NewGoHeap()
	c := NewConverterWithHeap(newMachine(t), heap, "")
	if c.Charset() != LegacyCharset {
		t.Fatalf("charset = %q", c.Charset())
	}
	c.Close()

	// the caller's heap stays open
	if _, err := heap.Alloc(4, 1); err != nil {
		t.Fatalf("heap closed by converter: %v", err)
	}
	heap.Close()
}
