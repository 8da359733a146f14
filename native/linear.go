package native

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/hostbridge/errors"
)

const (
	pageSize        = 65536
	defaultMaxPages = 256 // 16MB
	maxLinearPages  = 65535
	blockAlign      = 8
)

// memoryModule is a core module that only defines and exports one memory of
// one initial page: (module (memory (export "memory") 1)).
var memoryModule = []byte{
	0x00, 0x61, 0x73, 0x6d, // magic
	0x01, 0x00, 0x00, 0x00, // version
	0x05, 0x03, 0x01, 0x00, 0x01, // memory section: 1 memory, min 1 page
	0x07, 0x0a, 0x01, 0x06, 'm', 'e', 'm', 'o', 'r', 'y', 0x02, 0x00, // export "memory"
}

// LinearConfig configures a LinearHeap.
type LinearConfig struct {
	// MaxPages caps the linear memory in 64KB pages.
	// 0 means default (256 pages = 16MB). Values above 65535 are clamped.
	MaxPages uint32
}

type span struct {
	ptr  uint32
	size uint32
}

// LinearHeap allocates buffers inside a wazero linear memory.
// Blocks are 8-byte aligned; a first-fit free list is kept sorted by address
// and coalesced on every Free. The memory grows page by page up to MaxPages.
type LinearHeap struct {
	ctx      context.Context
	runtime  wazero.Runtime
	mem      *linearMemory
	used     map[uint32]uint32
	free     []span
	maxPages uint32
	mu       sync.Mutex
	closed   bool
}

// NewLinearHeap instantiates a memory-only module in a fresh wazero runtime.
func NewLinearHeap(ctx context.Context, cfg *LinearConfig) (*LinearHeap, error) {
	maxPages := uint32(defaultMaxPages)
	if cfg != nil && cfg.MaxPages > 0 {
		maxPages = cfg.MaxPages
	}
	if maxPages > maxLinearPages {
		maxPages = maxLinearPages
	}

	rt := wazero.NewRuntimeWithConfig(ctx, wazero.NewRuntimeConfig().WithMemoryLimitPages(maxPages))
	mod, err := rt.Instantiate(ctx, memoryModule)
	if err != nil {
		_ = rt.Close(ctx)
		return nil, errors.Wrap(errors.PhaseHeap, errors.KindAllocation, err, "instantiate linear memory")
	}

	mem := mod.ExportedMemory("memory")
	if mem == nil {
		_ = rt.Close(ctx)
		return nil, errors.NotFound(errors.PhaseHeap, "memory export", "memory")
	}

	return &LinearHeap{
		ctx:      ctx,
		runtime:  rt,
		mem:      &linearMemory{mem: mem},
		used:     make(map[uint32]uint32),
		free:     []span{{ptr: heapBase, size: mem.Size() - heapBase}},
		maxPages: maxPages,
	}, nil
}

// Alloc reserves size bytes. Alignments above 8 are not supported.
func (h *LinearHeap) Alloc(size, align uint32) (uint32, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.checkOpen(); err != nil {
		return 0, err
	}
	if size == 0 {
		return 0, errors.InvalidInput(errors.PhaseHeap, "zero-size allocation")
	}
	if align > blockAlign {
		return 0, errors.Unsupported(errors.PhaseHeap, fmt.Sprintf("alignment %d", align))
	}

	need, ok := alignUp(size, blockAlign)
	if !ok {
		return 0, errors.AllocationFailed(errors.PhaseHeap, size, fmt.Errorf("size overflow"))
	}

	for {
		for i, s := range h.free {
			if s.size < need {
				continue
			}
			if s.size == need {
				h.free = append(h.free[:i], h.free[i+1:]...)
			} else {
				h.free[i] = span{ptr: s.ptr + need, size: s.size - need}
			}
			h.used[s.ptr] = need
			return s.ptr, nil
		}
		if err := h.grow(need); err != nil {
			return 0, errors.AllocationFailed(errors.PhaseHeap, size, err)
		}
	}
}

// grow adds enough pages to hold need bytes. Caller holds h.mu.
func (h *LinearHeap) grow(need uint32) error {
	pages := (uint64(need) + pageSize - 1) / pageSize
	current := uint64(h.mem.mem.Size()) / pageSize
	if current+pages > uint64(h.maxPages) {
		return fmt.Errorf("memory limit of %d pages reached", h.maxPages)
	}

	prev, ok := h.mem.mem.Grow(uint32(pages))
	if !ok {
		return fmt.Errorf("grow by %d pages failed", pages)
	}
	h.insertFree(span{ptr: prev * pageSize, size: uint32(pages * pageSize)})
	return nil
}

// insertFree adds s to the free list, merging with adjacent spans. Caller holds h.mu.
func (h *LinearHeap) insertFree(s span) {
	i := sort.Search(len(h.free), func(i int) bool { return h.free[i].ptr > s.ptr })
	h.free = append(h.free, span{})
	copy(h.free[i+1:], h.free[i:])
	h.free[i] = s

	if i+1 < len(h.free) && h.free[i].ptr+h.free[i].size == h.free[i+1].ptr {
		h.free[i].size += h.free[i+1].size
		h.free = append(h.free[:i+1], h.free[i+2:]...)
	}
	if i > 0 && h.free[i-1].ptr+h.free[i-1].size == h.free[i].ptr {
		h.free[i-1].size += h.free[i].size
		h.free = append(h.free[:i], h.free[i+1:]...)
	}
}

// Free returns the block at ptr to the free list. Unknown pointers are ignored.
func (h *LinearHeap) Free(ptr, size, align uint32) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	n, ok := h.used[ptr]
	if !ok {
		return
	}
	delete(h.used, ptr)
	h.insertFree(span{ptr: ptr, size: n})
}

// checkOpen fails once the heap is closed. Caller holds h.mu.
func (h *LinearHeap) checkOpen() error {
	if h.closed {
		return errors.Closed(errors.PhaseHeap, "linear heap")
	}
	return nil
}

// Read returns a view of linear memory. The view is invalidated by growth
// and by Close.
func (h *LinearHeap) Read(offset uint32, length uint32) ([]byte, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.checkOpen(); err != nil {
		return nil, err
	}
	return h.mem.Read(offset, length)
}

// Write copies data into linear memory.
func (h *LinearHeap) Write(offset uint32, data []byte) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.checkOpen(); err != nil {
		return err
	}
	return h.mem.Write(offset, data)
}

// ReadU8 reads one byte.
func (h *LinearHeap) ReadU8(offset uint32) (uint8, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.checkOpen(); err != nil {
		return 0, err
	}
	return h.mem.ReadU8(offset)
}

// WriteU8 writes one byte.
func (h *LinearHeap) WriteU8(offset uint32, value uint8) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.checkOpen(); err != nil {
		return err
	}
	return h.mem.WriteU8(offset, value)
}

// Size returns the current linear memory size in bytes, 0 once closed.
func (h *LinearHeap) Size() uint32 {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return 0
	}
	return h.mem.mem.Size()
}

// Live returns the number of allocations not yet freed.
func (h *LinearHeap) Live() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.used)
}

// Close tears down the wazero runtime. Further use fails.
func (h *LinearHeap) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil
	}
	h.closed = true
	h.used = nil
	h.free = nil
	return h.runtime.Close(h.ctx)
}

// linearMemory adapts wazero api.Memory to the Memory interface.
type linearMemory struct {
	mem api.Memory
}

func (m *linearMemory) Read(offset uint32, length uint32) ([]byte, error) {
	data, ok := m.mem.Read(offset, length)
	if !ok {
		return nil, fmt.Errorf("memory read out of bounds: offset=%d, length=%d", offset, length)
	}
	return data, nil
}

func (m *linearMemory) Write(offset uint32, data []byte) error {
	if !m.mem.Write(offset, data) {
		return fmt.Errorf("memory write out of bounds: offset=%d, length=%d", offset, len(data))
	}
	return nil
}

func (m *linearMemory) ReadU8(offset uint32) (uint8, error) {
	v, ok := m.mem.ReadByte(offset)
	if !ok {
		return 0, fmt.Errorf("memory read out of bounds: offset=%d", offset)
	}
	return v, nil
}

func (m *linearMemory) WriteU8(offset uint32, value uint8) error {
	if !m.mem.WriteByte(offset, value) {
		return fmt.Errorf("memory write out of bounds: offset=%d", offset)
	}
	return nil
}
