package native

import (
	"fmt"
	"math"

	"github.com/wippyai/hostbridge/errors"
)

// Buffer is an owned allocation in a Heap.
// The content never includes the terminator written by NewCString.
type Buffer struct {
	heap     Heap
	ptr      uint32
	size     uint32
	length   uint32
	released bool
}

// NewBuffer copies content into a fresh allocation.
// Empty content yields a null Buffer and no allocation.
func NewBuffer(heap Heap, content []byte) (*Buffer, error) {
	if len(content) == 0 {
		return &Buffer{heap: heap}, nil
	}
	return newBuffer(heap, content, 0)
}

// NewCString copies content into a fresh allocation followed by a NUL byte.
// Empty content still allocates the terminator.
func NewCString(heap Heap, content []byte) (*Buffer, error) {
	return newBuffer(heap, content, 1)
}

func newBuffer(heap Heap, content []byte, extra int) (*Buffer, error) {
	if heap == nil {
		return nil, errors.InvalidInput(errors.PhaseHeap, "nil heap")
	}
	if uint64(len(content))+uint64(extra) > math.MaxUint32 {
		return nil, errors.AllocationFailed(errors.PhaseHeap, math.MaxUint32, fmt.Errorf("content of %d bytes too large", len(content)))
	}

	size := uint32(len(content) + extra)
	ptr, err := heap.Alloc(size, 1)
	if err != nil {
		return nil, err
	}

	if len(content) > 0 {
		if err := heap.Write(ptr, content); err != nil {
			heap.Free(ptr, size, 1)
			return nil, errors.Wrap(errors.PhaseHeap, errors.KindInvalidData, err, "copy into native buffer")
		}
	}
	if extra > 0 {
		if err := heap.WriteU8(ptr+uint32(len(content)), 0); err != nil {
			heap.Free(ptr, size, 1)
			return nil, errors.Wrap(errors.PhaseHeap, errors.KindInvalidData, err, "write terminator")
		}
	}

	return &Buffer{
		heap:   heap,
		ptr:    ptr,
		size:   size,
		length: uint32(len(content)),
	}, nil
}

// Ptr returns the native address, 0 for a null buffer.
func (b *Buffer) Ptr() uint32 {
	if b == nil {
		return 0
	}
	return b.ptr
}

// Len returns the content length in bytes.
func (b *Buffer) Len() int {
	if b == nil {
		return 0
	}
	return int(b.length)
}

// IsNull reports whether the buffer holds no allocation.
func (b *Buffer) IsNull() bool {
	return b == nil || b.ptr == 0
}

// Released reports whether Release has been called.
func (b *Buffer) Released() bool {
	return b != nil && b.released
}

// Bytes copies the content out of the heap.
func (b *Buffer) Bytes() ([]byte, error) {
	if b == nil {
		return nil, errors.NullHandle(errors.PhaseHeap, "buffer")
	}
	if b.released {
		return nil, errors.New(errors.PhaseHeap, errors.KindReleased).
			Detail("buffer at %d already released", b.ptr).
			Build()
	}
	if b.length == 0 {
		return []byte{}, nil
	}

	view, err := b.heap.Read(b.ptr, b.length)
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(view))
	copy(out, view)
	return out, nil
}

// Text returns the content as a Go string.
func (b *Buffer) Text() (string, error) {
	data, err := b.Bytes()
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// String returns the content, or "" if it cannot be read.
func (b *Buffer) String() string {
	s, _ := b.Text()
	return s
}

// Release frees the allocation. Calling it again is a no-op.
func (b *Buffer) Release() {
	if b == nil || b.released {
		return
	}
	b.released = true
	if b.ptr != 0 {
		b.heap.Free(b.ptr, b.size, 1)
	}
}
