package bridge

import (
	"strings"

	"github.com/wippyai/hostbridge/errors"
	"github.com/wippyai/hostbridge/vm"
)

// BytesToString copies the content of a managed byte array into a Go string.
// A null or empty array yields "".
func BytesToString(env vm.Env, arr vm.Ref) (string, error) {
	if arr.IsNull() {
		return "", nil
	}
	return copyArray(env, arr, errors.PhaseEncode)
}

// NewByteArray creates a managed byte array holding text. text is read as a
// C string, so content after the first NUL is ignored.
//
// A nil text yields vm.Null; an empty text yields a zero-length array.
func NewByteArray(env vm.Env, text *string) (vm.Ref, error) {
	if text == nil {
		return vm.Null, nil
	}
	data := cstr(*text)

	arr, err := env.NewByteArray(len(data))
	if err != nil {
		return vm.Null, wrapRuntime(errors.PhaseEncode, err, "allocate byte array")
	}
	if len(data) == 0 {
		return arr, nil
	}
	if err := env.SetByteArrayRegion(arr, 0, []byte(data)); err != nil {
		err = wrapRuntime(errors.PhaseEncode, err, "fill byte array")
		deleteLocal(env, arr, &err)
		return vm.Null, err
	}
	return arr, nil
}

// NewString creates a managed string from text interpreted as UTF-8. text is
// read as a C string. A nil text yields vm.Null.
//
// text must be valid UTF-8 for the content to survive a round trip: the
// runtime replaces each invalid byte sequence with U+FFFD.
func NewString(env vm.Env, text *string) (vm.Ref, error) {
	if text == nil {
		return vm.Null, nil
	}
	s, err := env.NewStringUTF([]byte(cstr(*text)))
	if err != nil {
		return vm.Null, wrapRuntime(errors.PhaseEncode, err, "create string")
	}
	return s, nil
}

// cstr truncates s at its first NUL byte.
func cstr(s string) string {
	if i := strings.IndexByte(s, 0); i >= 0 {
		return s[:i]
	}
	return s
}
