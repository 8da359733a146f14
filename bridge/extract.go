package bridge

import (
	"strconv"
	"unicode/utf16"

	"go.uber.org/zap"

	"github.com/wippyai/hostbridge/errors"
	"github.com/wippyai/hostbridge/ipc"
	"github.com/wippyai/hostbridge/native"
	"github.com/wippyai/hostbridge/vm"
)

// present reports whether argument i exists and carries tag want.
func present(args ipc.Arguments, i int, want ipc.Type) bool {
	if args == nil {
		return false
	}
	if n := args.Count(); i < 0 || i >= n {
		if ce := Logger().Check(zap.DebugLevel, "argument index out of range"); ce != nil {
			ce.Write(zap.Int("index", i), zap.Int("count", n))
		}
		return false
	}
	if got := args.TypeOf(i); got != want {
		if ce := Logger().Check(zap.DebugLevel, "argument tag mismatch"); ce != nil {
			ce.Write(zap.Int("index", i), zap.Stringer("want", want), zap.Stringer("got", got))
		}
		return false
	}
	return true
}

func byteContent(p *ipc.ByteArray) []byte {
	n := int(p.Length)
	if n < 0 {
		n = 0
	}
	if n > len(p.Content) {
		n = len(p.Content)
	}
	return p.Content[:n]
}

func textContent(p *ipc.Text) []uint16 {
	n := int(p.Length)
	if n < 0 {
		n = 0
	}
	if n > len(p.Content) {
		n = len(p.Content)
	}
	return p.Content[:n]
}

// ArgumentAsText copies the BYTEARRAY argument i into a NUL-terminated buffer
// in heap. The caller owns the buffer and must Release it.
//
// It returns nil, nil when i is out of range or the argument is not a BYTEARRAY.
func ArgumentAsText(heap native.Heap, args ipc.Arguments, i int) (*native.Buffer, error) {
	if !present(args, i, ipc.TypeByteArray) {
		return nil, nil
	}
	p := args.ByteArray(i)
	if p == nil {
		return nil, nil
	}
	buf, err := native.NewCString(heap, byteContent(p))
	if err != nil {
		return nil, errors.New(errors.PhaseExtract, errors.KindAllocation).
			Path("args", argIndex(i)).
			Cause(err).
			Build()
	}
	return buf, nil
}

// ArgumentAsString returns the BYTEARRAY argument i as a Go string.
func ArgumentAsString(args ipc.Arguments, i int) (string, bool) {
	if !present(args, i, ipc.TypeByteArray) {
		return "", false
	}
	p := args.ByteArray(i)
	if p == nil {
		return "", false
	}
	return string(byteContent(p)), true
}

// ArgumentAsManagedString creates a managed string from the STRING argument i.
// The caller owns the returned local reference.
//
// It returns vm.Null, nil when i is out of range or the argument is not a STRING.
func ArgumentAsManagedString(env vm.Env, args ipc.Arguments, i int) (vm.Ref, error) {
	if !present(args, i, ipc.TypeString) {
		return vm.Null, nil
	}
	p := args.String(i)
	if p == nil {
		return vm.Null, nil
	}
	s, err := env.NewString(textContent(p))
	if err != nil {
		return vm.Null, errors.New(errors.PhaseExtract, errors.KindInvalidData).
			Path("args", argIndex(i)).
			Detail("create managed string").
			Cause(err).
			Build()
	}
	return s, nil
}

// ArgumentAsJSON returns the JSONSTRING argument i decoded from UTF-16.
func ArgumentAsJSON(args ipc.Arguments, i int) (string, bool) {
	if !present(args, i, ipc.TypeJSONString) {
		return "", false
	}
	p := args.String(i)
	if p == nil {
		return "", false
	}
	return string(utf16.Decode(textContent(p))), true
}

// ArgumentAsInt32 returns the INT32 argument i. ok is false when the index is
// out of range or the tag differs, so a stored zero is distinguishable.
func ArgumentAsInt32(args ipc.Arguments, i int) (v int32, ok bool) {
	if !present(args, i, ipc.TypeInt32) {
		return 0, false
	}
	return args.Int32(i), true
}

// ArgumentAsInt64 returns the INT64 argument i.
func ArgumentAsInt64(args ipc.Arguments, i int) (v int64, ok bool) {
	if !present(args, i, ipc.TypeInt64) {
		return 0, false
	}
	return args.Int64(i), true
}

// ArgumentAsDouble returns the DOUBLE argument i.
func ArgumentAsDouble(args ipc.Arguments, i int) (v float64, ok bool) {
	if !present(args, i, ipc.TypeDouble) {
		return 0, false
	}
	return args.Double(i), true
}

func argIndex(i int) string {
	return "[" + strconv.Itoa(i) + "]"
}
