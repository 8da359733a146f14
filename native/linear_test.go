package native

import (
	"bytes"
	"context"
	"sync"
	"testing"

	"github.com/wippyai/hostbridge/errors"
)

func newTestLinearHeap(t *testing.T, pages uint32) *LinearHeap {
	t.Helper()
	h, err := NewLinearHeap(context.Background(), &LinearConfig{MaxPages: pages})
	if err != nil {
		t.Fatalf("NewLinearHeap: %v", err)
	}
	t.Cleanup(func() { h.Close() })
	return h
}

func TestLinearHeap_AllocReadWrite(t *testing.T) {
	h := newTestLinearHeap(t, 4)

	if h.Size() != pageSize {
		t.Fatalf("initial size = %d", h.Size())
	}

	ptr, err := h.Alloc(11, 1)
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	if ptr < heapBase || ptr%blockAlign != 0 {
		t.Fatalf("ptr = %d", ptr)
	}
	if err := h.Write(ptr, []byte("linear heap")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := h.Read(ptr, 11)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !bytes.Equal(got, []byte("linear heap")) {
		t.Fatalf("Read = %q", got)
	}
}

func TestLinearHeap_ReuseAndCoalesce(t *testing.T) {
	h := newTestLinearHeap(t, 1)

	a, _ := h.Alloc(16, 1)
	b, _ := h.Alloc(16, 1)
	c, _ := h.Alloc(16, 1)
	if h.Live() != 3 {
		t.Fatalf("Live = %d", h.Live())
	}

	h.Free(a, 16, 1)
	h.Free(b, 16, 1)

	d, err := h.Alloc(32, 1)
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	if d != a {
		t.Fatalf("expected coalesced block at %d, got %d", a, d)
	}

	h.Free(c, 16, 1)
	h.Free(d, 32, 1)
	if h.Live() != 0 {
		t.Fatalf("Live = %d", h.Live())
	}
	if len(h.free) != 1 {
		t.Fatalf("free list not coalesced: %v", h.free)
	}
}

func TestLinearHeap_Grow(t *testing.T) {
	h := newTestLinearHeap(t, 3)

	ptr, err := h.Alloc(pageSize+10, 1)
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	if h.Size() <= pageSize {
		t.Fatalf("memory did not grow: %d", h.Size())
	}
	if err := h.WriteU8(ptr+pageSize+9, 0x7f); err != nil {
		t.Fatalf("WriteU8 at end of block: %v", err)
	}
	v, err := h.ReadU8(ptr + pageSize + 9)
	if err != nil || v != 0x7f {
		t.Fatalf("ReadU8 = %d, %v", v, err)
	}
}

func TestLinearHeap_Limit(t *testing.T) {
	h := newTestLinearHeap(t, 1)

	if _, err := h.Alloc(2*pageSize, 1); err == nil {
		t.Fatal("allocation beyond page limit should fail")
	}
	if _, err := h.Alloc(16, 16); err == nil {
		t.Fatal("alignment above 8 should be rejected")
	}
	if _, err := h.Alloc(0, 1); err == nil {
		t.Fatal("zero-size allocation should fail")
	}
}

func TestLinearHeap_Close(t *testing.T) {
	h, err := NewLinearHeap(context.Background(), nil)
	if err != nil {
		t.Fatalf("NewLinearHeap: %v", err)
	}
	if h.maxPages != defaultMaxPages {
		t.Fatalf("maxPages = %d", h.maxPages)
	}

	if err := h.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := h.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if _, err := h.Alloc(8, 1); err == nil {
		t.Fatal("Alloc after Close should fail")
	}
	if _, err := h.Read(heapBase, 1); err == nil {
		t.Fatal("Read after Close should fail")
	}
	h.Free(heapBase, 8, 1)
	if h.Size() != 0 {
		t.Fatalf("Size after Close = %d", h.Size())
	}
}

func TestLinearHeap_CloseWhileInUse(t *testing.T) {
	h, err := NewLinearHeap(context.Background(), &LinearConfig{MaxPages: 2})
	if err != nil {
		t.Fatalf("NewLinearHeap: %v", err)
	}
	ptr, err := h.Alloc(8, 1)
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(v byte) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				if err := h.WriteU8(ptr, v); err != nil {
					if !isClosed(err) {
						t.Errorf("WriteU8: %v", err)
					}
					return
				}
				if _, err := h.Read(ptr, 8); err != nil {
					if !isClosed(err) {
						t.Errorf("Read: %v", err)
					}
					return
				}
			}
		}(byte(i))
	}

	if err := h.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	wg.Wait()

	if _, err := h.ReadU8(ptr); !isClosed(err) {
		t.Fatalf("ReadU8 after Close = %v, want closed", err)
	}
}

func isClosed(err error) bool {
	e, ok := err.(*errors.Error)
	return ok && e.Kind == errors.KindClosed
}
