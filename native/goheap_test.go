package native

import (
	"bytes"
	"context"
	"testing"
)

func TestGoHeap_AllocReadWrite(t *testing.T) {
	h := NewGoHeap()
	defer h.Close()

	ptr, err := h.Alloc(5, 1)
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	if ptr == 0 {
		t.Fatal("Alloc returned null pointer")
	}
	if err := h.Write(ptr, []byte("hello")); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, err := h.Read(ptr+1, 3)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !bytes.Equal(got, []byte("ell")) {
		t.Fatalf("Read = %q", got)
	}

	b, err := h.ReadU8(ptr + 4)
	if err != nil || b != 'o' {
		t.Fatalf("ReadU8 = %q, %v", b, err)
	}
}

func TestGoHeap_Alignment(t *testing.T) {
	h := NewGoHeap()
	defer h.Close()

	h.Alloc(3, 1)
	ptr, err := h.Alloc(8, 8)
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	if ptr%8 != 0 {
		t.Fatalf("ptr %d not 8-aligned", ptr)
	}
}

func TestGoHeap_BoundsChecks(t *testing.T) {
	h := NewGoHeap()
	defer h.Close()

	ptr, _ := h.Alloc(4, 1)

	if _, err := h.Read(ptr, 5); err == nil {
		t.Fatal("read past allocation should fail")
	}
	if err := h.Write(ptr+2, []byte("xyz")); err == nil {
		t.Fatal("write past allocation should fail")
	}
	if _, err := h.Read(0, 1); err == nil {
		t.Fatal("read at address 0 should fail")
	}
}

func TestGoHeap_Free(t *testing.T) {
	h := NewGoHeap()
	defer h.Close()

	a, _ := h.Alloc(4, 1)
	b, _ := h.Alloc(4, 1)
	if h.Live() != 2 {
		t.Fatalf("Live = %d", h.Live())
	}

	h.Free(a, 4, 1)
	h.Free(a, 4, 1)
	if h.Live() != 1 {
		t.Fatalf("Live = %d after free", h.Live())
	}
	if _, err := h.Read(a, 1); err == nil {
		t.Fatal("read of freed block should fail")
	}
	if _, err := h.Read(b, 4); err != nil {
		t.Fatalf("read of live block: %v", err)
	}
}

func TestGoHeap_ZeroSizeAndClose(t *testing.T) {
	h := NewGoHeap()

	if _, err := h.Alloc(0, 1); err == nil {
		t.Fatal("zero-size Alloc should fail")
	}

	h.Close()
	if _, err := h.Alloc(1, 1); err == nil {
		t.Fatal("Alloc after Close should fail")
	}
	if _, err := h.Read(heapBase, 1); err == nil {
		t.Fatal("Read after Close should fail")
	}
}

func TestNewHeap(t *testing.T) {
	ctx := context.Background()

	for _, kind := range []string{"", HeapGo, HeapLinear} {
		h, err := NewHeap(ctx, kind, 2)
		if err != nil {
			t.Fatalf("NewHeap(%q): %v", kind, err)
		}
		h.Close()
	}

	if _, err := NewHeap(ctx, "mmap", 0); err == nil {
		t.Fatal("unknown heap kind should fail")
	}
}
