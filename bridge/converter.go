package bridge

import (
	"context"

	"github.com/wippyai/hostbridge/ipc"
	"github.com/wippyai/hostbridge/native"
	"github.com/wippyai/hostbridge/vm"
)

// Converter binds a runtime environment, a charset and a native heap so
// callers do not pass them on every call. It holds no other state.
type Converter struct {
	env     vm.Env
	heap    native.Heap
	charset string
	ownHeap bool
}

// NewConverter creates a converter for env using cfg (nil means defaults).
// The heap is created from cfg and closed by Close.
func NewConverter(ctx context.Context, env vm.Env, cfg *Config) (*Converter, error) {
	if cfg != nil {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	heap, err := cfg.NewHeap(ctx)
	if err != nil {
		return nil, err
	}
	return &Converter{env: env, heap: heap, charset: cfg.charset(), ownHeap: true}, nil
}

// NewConverterWithHeap creates a converter over an existing heap, which the
// caller keeps ownership of.
func NewConverterWithHeap(env vm.Env, heap native.Heap, charset string) *Converter {
	if charset == "" {
		charset = LegacyCharset
	}
	return &Converter{env: env, heap: heap, charset: charset}
}

// Env returns the bound runtime environment.
func (c *Converter) Env() vm.Env { return c.env }

// Heap returns the bound native heap.
func (c *Converter) Heap() native.Heap { return c.heap }

// Charset returns the charset used by Decode.
func (c *Converter) Charset() string { return c.charset }

// Decode is DecodeString with the bound charset.
func (c *Converter) Decode(s vm.Ref) (string, error) {
	return DecodeString(c.env, s, c.charset)
}

// DecodeText decodes s with the bound charset into a NUL-terminated native
// buffer. A null s yields a nil buffer.
func (c *Converter) DecodeText(s vm.Ref) (*native.Buffer, error) {
	if s.IsNull() {
		return nil, nil
	}
	raw, err := c.Decode(s)
	if err != nil {
		return nil, err
	}
	return native.NewCString(c.heap, []byte(raw))
}

// DecodeFast is DecodeStringFast.
func (c *Converter) DecodeFast(s vm.Ref) (string, error) {
	return DecodeStringFast(c.env, s)
}

// Text is ArgumentAsText with the bound heap.
func (c *Converter) Text(args ipc.Arguments, i int) (*native.Buffer, error) {
	return ArgumentAsText(c.heap, args, i)
}

// ManagedString is ArgumentAsManagedString with the bound environment.
func (c *Converter) ManagedString(args ipc.Arguments, i int) (vm.Ref, error) {
	return ArgumentAsManagedString(c.env, args, i)
}

// AddString is AddString with the bound environment.
func (c *Converter) AddString(s ipc.Serializer, str vm.Ref) error {
	return AddString(c.env, s, str)
}

// AddJSONString is AddJSONString with the bound environment.
func (c *Converter) AddJSONString(s ipc.Serializer, str vm.Ref) error {
	return AddJSONString(c.env, s, str)
}

// Close closes the heap if the converter created it.
func (c *Converter) Close() error {
	if c.ownHeap && c.heap != nil {
		return c.heap.Close()
	}
	return nil
}
