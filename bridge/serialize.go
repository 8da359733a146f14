package bridge

import (
	"go.uber.org/zap"

	"github.com/wippyai/hostbridge/errors"
	"github.com/wippyai/hostbridge/ipc"
	"github.com/wippyai/hostbridge/vm"
)

// ScopedString is a borrowed view of a managed string's UTF-16 characters.
// Close ends the borrow; it is safe to call more than once.
type ScopedString struct {
	env   vm.Env
	ref   vm.Ref
	chars []uint16
	held  bool
}

// BorrowString borrows the characters of s. A null s yields an empty view
// that holds nothing.
func BorrowString(env vm.Env, s vm.Ref) (*ScopedString, error) {
	if s.IsNull() {
		return &ScopedString{env: env}, nil
	}
	chars, err := env.GetStringChars(s)
	if err != nil {
		return nil, wrapRuntime(errors.PhaseSerialize, err, "borrow string chars")
	}
	return &ScopedString{env: env, ref: s, chars: chars, held: true}, nil
}

// Chars returns the borrowed characters. They are invalid after Close.
func (g *ScopedString) Chars() []uint16 { return g.chars }

// Len returns the number of UTF-16 code units.
func (g *ScopedString) Len() int { return len(g.chars) }

// Close releases the borrow.
func (g *ScopedString) Close() {
	if g == nil || !g.held {
		return
	}
	g.held = false
	g.env.ReleaseStringChars(g.ref, g.chars)
	g.chars = nil
}

// WithStringChars calls fn with the borrowed characters of s and releases
// them when fn returns or panics. fn must not retain chars.
func WithStringChars(env vm.Env, s vm.Ref, fn func(chars []uint16) error) error {
	g, err := BorrowString(env, s)
	if err != nil {
		return err
	}
	defer g.Close()
	return fn(g.Chars())
}

// AddString appends the content of s to the serializer as a STRING.
// A null s is appended as an empty STRING.
func AddString(env vm.Env, s ipc.Serializer, str vm.Ref) error {
	return WithStringChars(env, str, func(chars []uint16) error {
		return appendChars(s.Add, chars, str, ipc.TypeString)
	})
}

// AddJSONString appends the content of s to the serializer as a JSONSTRING,
// telling the receiver to parse it.
func AddJSONString(env vm.Env, s ipc.Serializer, str vm.Ref) error {
	return WithStringChars(env, str, func(chars []uint16) error {
		return appendChars(s.AddJSON, chars, str, ipc.TypeJSONString)
	})
}

func appendChars(add func([]uint16) error, chars []uint16, str vm.Ref, tag ipc.Type) error {
	if err := add(chars); err != nil {
		Logger().Debug("serializer append failed",
			zap.Stringer("type", tag),
			zap.Uint32("ref", uint32(str)),
			zap.Error(err),
		)
		return errors.New(errors.PhaseSerialize, errors.KindInvalidData).
			Handle(uint32(str)).
			Detail("append %s", tag).
			Cause(err).
			Build()
	}
	return nil
}
