package native

import (
	"context"

	hostbridge "github.com/wippyai/hostbridge"
	"github.com/wippyai/hostbridge/errors"
)

type Memory = hostbridge.Memory
type Allocator = hostbridge.Allocator

// Heap is native memory with its own allocator.
type Heap interface {
	Memory
	Allocator
	Close() error
}

// Heap kinds accepted by NewHeap.
const (
	HeapGo     = "go"
	HeapLinear = "linear"
)

// heapBase is the first address handed out; [0, heapBase) stays unused so that
// pointer 0 is never a valid allocation.
const heapBase = 8

// NewHeap creates a heap by kind name. maxPages only applies to linear heaps.
func NewHeap(ctx context.Context, kind string, maxPages uint32) (Heap, error) {
	switch kind {
	case "", HeapGo:
		return NewGoHeap(), nil
	case HeapLinear:
		return NewLinearHeap(ctx, &LinearConfig{MaxPages: maxPages})
	default:
		return nil, errors.InvalidInput(errors.PhaseHeap, "unknown heap kind "+kind)
	}
}

func alignUp(v, align uint32) (uint32, bool) {
	if align <= 1 {
		return v, true
	}
	r := (uint64(v) + uint64(align) - 1) &^ (uint64(align) - 1)
	if r > 0xFFFFFFFF {
		return 0, false
	}
	return uint32(r), true
}

var (
	_ Heap                   = (*GoHeap)(nil)
	_ Heap                   = (*LinearHeap)(nil)
	_ hostbridge.MemorySizer = (*GoHeap)(nil)
	_ hostbridge.MemorySizer = (*LinearHeap)(nil)
)
