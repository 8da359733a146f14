// Package native provides owned native buffers and the heaps they live in.
//
// Values crossing from the managed runtime into native code are copied into a
// Buffer: an allocation in a Heap that the holder owns until Release. Nothing in
// a Buffer points back into managed memory.
//
// # Heaps
//
//	GoHeap      - allocations backed by Go slices; the default
//	LinearHeap  - allocations inside a wazero linear memory, for callers that
//	              hand buffers to sandboxed native code
//
// Both implement Heap, which combines the root Memory and Allocator interfaces
// with Close. Address 0 is never handed out, so a zero pointer always means
// "no allocation".
//
// # Buffers
//
//	buf, err := native.NewCString(heap, []byte("hello"))
//	if err != nil {
//	    return err
//	}
//	defer buf.Release()
//
// NewCString appends a NUL terminator after the content; NewBuffer does not.
// Empty content passed to NewBuffer produces a null Buffer without touching
// the heap. Release is idempotent.
//
// # Thread Safety
//
// Heaps are safe for concurrent use. A Buffer is owned by one holder at a time.
package native
