package vm

import (
	"unicode/utf16"

	"github.com/wippyai/hostbridge/errors"
)

// Class and method names the machine provides.
const (
	StringClass        = "java/lang/String"
	GetBytesMethod     = "getBytes"
	GetBytesSig        = "()[B"
	GetBytesCharsetSig = "(Ljava/lang/String;)[B"
)

func registerStringClass(m *Machine) {
	m.RegisterMethod(StringClass, KindString, GetBytesMethod, GetBytesSig, stringGetBytes)
	m.RegisterMethod(StringClass, KindString, GetBytesMethod, GetBytesCharsetSig, stringGetBytesCharset)
}

func stringGetBytes(m *Machine, obj Ref, args []Ref) (Ref, error) {
	s, err := m.StringValue(obj)
	if err != nil {
		return Null, err
	}
	return m.newByteArrayFrom([]byte(s))
}

func stringGetBytesCharset(m *Machine, obj Ref, args []Ref) (Ref, error) {
	if len(args) != 1 {
		return Null, errors.InvalidInput(errors.PhaseRuntime, "getBytes expects one charset argument")
	}
	name, err := m.StringValue(args[0])
	if err != nil {
		return Null, err
	}
	enc, err := LookupCharset(name)
	if err != nil {
		return Null, err
	}

	chars, err := m.stringChars(obj)
	if err != nil {
		return Null, err
	}
	return m.newByteArrayFrom(encodeString(enc, string(utf16.Decode(chars))))
}

func (m *Machine) newByteArrayFrom(data []byte) (Ref, error) {
	return m.insert(KindByteArray, &byteArray{data: data})
}
