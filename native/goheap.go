package native

import (
	"fmt"
	"sort"
	"sync"

	"github.com/wippyai/hostbridge/errors"
)

// GoHeap allocates native buffers as Go slices behind synthetic addresses.
// Addresses are never reused; the heap refuses allocations once the 32-bit
// address space is exhausted.
type GoHeap struct {
	blocks map[uint32][]byte
	bases  []uint32
	next   uint32
	mu     sync.Mutex
	closed bool
}

// NewGoHeap creates an empty Go-backed heap.
func NewGoHeap() *GoHeap {
	return &GoHeap{
		blocks: make(map[uint32][]byte),
		next:   heapBase,
	}
}

// Alloc reserves size bytes aligned to align.
func (h *GoHeap) Alloc(size, align uint32) (uint32, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return 0, errors.Closed(errors.PhaseHeap, "go heap")
	}
	if size == 0 {
		return 0, errors.InvalidInput(errors.PhaseHeap, "zero-size allocation")
	}

	ptr, ok := alignUp(h.next, align)
	if !ok || uint64(ptr)+uint64(size) > 0xFFFFFFFF {
		return 0, errors.AllocationFailed(errors.PhaseHeap, size, fmt.Errorf("address space exhausted"))
	}

	h.blocks[ptr] = make([]byte, size)
	h.bases = append(h.bases, ptr)
	h.next = ptr + size
	return ptr, nil
}

// Free releases the allocation at ptr. Unknown pointers are ignored.
func (h *GoHeap) Free(ptr, size, align uint32) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.blocks[ptr]; !ok {
		return
	}
	delete(h.blocks, ptr)

	i := sort.Search(len(h.bases), func(i int) bool { return h.bases[i] >= ptr })
	if i < len(h.bases) && h.bases[i] == ptr {
		h.bases = append(h.bases[:i], h.bases[i+1:]...)
	}
}

// block returns the slice covering [offset, offset+length). Caller holds h.mu.
func (h *GoHeap) block(offset, length uint32) ([]byte, error) {
	if h.closed {
		return nil, errors.Closed(errors.PhaseHeap, "go heap")
	}
	i := sort.Search(len(h.bases), func(i int) bool { return h.bases[i] > offset }) - 1
	if i < 0 {
		return nil, fmt.Errorf("memory access out of bounds: offset=%d, length=%d", offset, length)
	}
	base := h.bases[i]
	blk := h.blocks[base]
	rel := uint64(offset - base)
	if rel+uint64(length) > uint64(len(blk)) {
		return nil, fmt.Errorf("memory access out of bounds: offset=%d, length=%d", offset, length)
	}
	return blk[rel : rel+uint64(length)], nil
}

// Read returns a view of length bytes at offset.
func (h *GoHeap) Read(offset uint32, length uint32) ([]byte, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.block(offset, length)
}

// Write copies data to offset.
func (h *GoHeap) Write(offset uint32, data []byte) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	dst, err := h.block(offset, uint32(len(data)))
	if err != nil {
		return err
	}
	copy(dst, data)
	return nil
}

// ReadU8 reads one byte.
func (h *GoHeap) ReadU8(offset uint32) (uint8, error) {
	b, err := h.Read(offset, 1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// WriteU8 writes one byte.
func (h *GoHeap) WriteU8(offset uint32, value uint8) error {
	return h.Write(offset, []byte{value})
}

// Size returns the high-water mark of the address space.
func (h *GoHeap) Size() uint32 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.next
}

// Live returns the number of allocations not yet freed.
func (h *GoHeap) Live() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.blocks)
}

// Close drops all allocations. Further use fails.
func (h *GoHeap) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	h.blocks = nil
	h.bases = nil
	return nil
}
