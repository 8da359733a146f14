package native

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/wippyai/hostbridge/errors"
)

type liveHeap interface {
	Heap
	Live() int
}

func forEachHeap(t *testing.T, fn func(t *testing.T, h liveHeap)) {
	t.Run("go", func(t *testing.T) {
		h := NewGoHeap()
		defer h.Close()
		fn(t, h)
	})
	t.Run("linear", func(t *testing.T) {
		h, err := NewLinearHeap(context.Background(), &LinearConfig{MaxPages: 2})
		if err != nil {
			t.Fatalf("NewLinearHeap: %v", err)
		}
		defer h.Close()
		fn(t, h)
	})
}

func TestNewCString(t *testing.T) {
	forEachHeap(t, func(t *testing.T, h liveHeap) {
		buf, err := NewCString(h, []byte("hello"))
		if err != nil {
			t.Fatalf("NewCString: %v", err)
		}
		if buf.IsNull() {
			t.Fatal("buffer is null")
		}
		if buf.Len() != 5 {
			t.Fatalf("Len = %d", buf.Len())
		}

		term, err := h.ReadU8(buf.Ptr() + 5)
		if err != nil || term != 0 {
			t.Fatalf("terminator = %d, %v", term, err)
		}

		got, err := buf.Bytes()
		if err != nil {
			t.Fatalf("Bytes: %v", err)
		}
		if diff := cmp.Diff([]byte("hello"), got); diff != "" {
			t.Fatalf("Bytes mismatch (-want +got):\n%s", diff)
		}
		if buf.String() != "hello" {
			t.Fatalf("String = %q", buf.String())
		}

		buf.Release()
		if h.Live() != 0 {
			t.Fatalf("Live = %d after Release", h.Live())
		}
	})
}

func TestNewCString_Empty(t *testing.T) {
	forEachHeap(t, func(t *testing.T, h liveHeap) {
		buf, err := NewCString(h, nil)
		if err != nil {
			t.Fatalf("NewCString: %v", err)
		}
		defer buf.Release()

		if buf.IsNull() {
			t.Fatal("empty C string must still hold its terminator")
		}
		s, err := buf.Text()
		if err != nil || s != "" {
			t.Fatalf("Text = %q, %v", s, err)
		}
	})
}

func TestNewBuffer_EmptyIsNull(t *testing.T) {
	forEachHeap(t, func(t *testing.T, h liveHeap) {
		buf, err := NewBuffer(h, []byte{})
		if err != nil {
			t.Fatalf("NewBuffer: %v", err)
		}
		if !buf.IsNull() {
			t.Fatal("empty buffer should be null")
		}
		if h.Live() != 0 {
			t.Fatal("empty buffer must not allocate")
		}
		got, err := buf.Bytes()
		if err != nil || got == nil || len(got) != 0 {
			t.Fatalf("Bytes = %v, %v", got, err)
		}
		buf.Release()
	})
}

func TestBuffer_ReleaseIdempotent(t *testing.T) {
	forEachHeap(t, func(t *testing.T, h liveHeap) {
		buf, err := NewBuffer(h, []byte{1, 2, 3})
		if err != nil {
			t.Fatalf("NewBuffer: %v", err)
		}
		buf.Release()
		buf.Release()

		if !buf.Released() {
			t.Fatal("Released = false")
		}
		_, err = buf.Bytes()
		if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseHeap, Kind: errors.KindReleased}) {
			t.Fatalf("Bytes after Release = %v", err)
		}
	})
}

func TestBuffer_Nil(t *testing.T) {
	var buf *Buffer
	if !buf.IsNull() || buf.Len() != 0 || buf.Ptr() != 0 {
		t.Fatal("nil buffer accessors")
	}
	buf.Release()
	if _, err := buf.Bytes(); err == nil {
		t.Fatal("Bytes on nil buffer should fail")
	}
	if _, err := NewCString(nil, []byte("x")); err == nil {
		t.Fatal("nil heap should fail")
	}
}
