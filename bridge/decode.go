package bridge

import (
	"go.uber.org/zap"

	"github.com/wippyai/hostbridge/errors"
	"github.com/wippyai/hostbridge/vm"
)

// LegacyCharset is the codepage used when no charset is configured.
const LegacyCharset = "GB2312"

// DecodeString encodes s through charset by calling String.getBytes(charset)
// on the runtime and returns the resulting bytes. The result holds the
// charset's byte sequence, which is UTF-8 only when charset is.
//
// A null s decodes to "". An empty result is returned as "" without touching
// the element buffer.
func DecodeString(env vm.Env, s vm.Ref, charset string) (out string, err error) {
	if s.IsNull() {
		return "", nil
	}
	if charset == "" {
		charset = LegacyCharset
	}

	class, err := env.FindClass(vm.StringClass)
	if err != nil {
		return "", wrapRuntime(errors.PhaseDecode, err, "find String class")
	}
	defer deleteLocal(env, class, &err)

	method, err := env.GetMethodID(class, vm.GetBytesMethod, vm.GetBytesCharsetSig)
	if err != nil {
		return "", wrapRuntime(errors.PhaseDecode, err, "resolve getBytes")
	}

	name, err := env.NewStringUTF([]byte(charset))
	if err != nil {
		return "", wrapRuntime(errors.PhaseDecode, err, "create charset name")
	}
	defer deleteLocal(env, name, &err)

	arr, err := env.CallObjectMethod(s, method, name)
	if err != nil {
		return "", wrapRuntime(errors.PhaseDecode, err, "call getBytes("+charset+")")
	}
	defer deleteLocal(env, arr, &err)

	return copyArray(env, arr, errors.PhaseDecode)
}

// DecodeStringFast returns the runtime's UTF-8 view of s without re-encoding.
// A null s decodes to "".
func DecodeStringFast(env vm.Env, s vm.Ref) (string, error) {
	if s.IsNull() {
		return "", nil
	}
	utf, err := env.GetStringUTFChars(s)
	if err != nil {
		return "", wrapRuntime(errors.PhaseDecode, err, "get UTF-8 view")
	}
	out := string(utf)
	env.ReleaseStringUTFChars(s, utf)
	return out, nil
}

// copyArray copies the elements of arr into a Go string and aborts the borrow.
func copyArray(env vm.Env, arr vm.Ref, phase errors.Phase) (string, error) {
	n, err := env.GetArrayLength(arr)
	if err != nil {
		return "", wrapRuntime(phase, err, "get array length")
	}
	if n == 0 {
		return "", nil
	}

	elems, err := env.GetByteArrayElements(arr)
	if err != nil {
		return "", wrapRuntime(phase, err, "get array elements")
	}
	out := string(elems)
	env.ReleaseByteArrayElements(arr, elems, vm.ReleaseAbort)
	return out, nil
}

// deleteLocal drops a temporary reference and reports the failure through errp
// if nothing else failed first.
func deleteLocal(env vm.Env, ref vm.Ref, errp *error) {
	if ref.IsNull() {
		return
	}
	if err := env.DeleteLocalRef(ref); err != nil {
		Logger().Debug("delete local ref failed",
			zap.Uint32("ref", uint32(ref)),
			zap.Error(err),
		)
		if *errp == nil {
			*errp = wrapRuntime(errors.PhaseRuntime, err, "delete local ref")
		}
	}
}

func wrapRuntime(phase errors.Phase, err error, detail string) error {
	kind := errors.KindInvalidData
	if e, ok := err.(*errors.Error); ok {
		kind = e.Kind
	}
	return errors.Wrap(phase, kind, err, detail)
}
