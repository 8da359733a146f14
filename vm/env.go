package vm

import "github.com/wippyai/hostbridge/resource"

// Ref is an opaque reference to a managed object. Null is the zero value.
type Ref uint32

// Null is the null reference.
const Null Ref = 0

// IsNull reports whether r is the null reference.
func (r Ref) IsNull() bool { return r == Null }

func (r Ref) handle() resource.Handle { return resource.Handle(r) }

// MethodID identifies a resolved method. Zero is invalid.
type MethodID uint32

// ReleaseMode controls what ReleaseByteArrayElements does with the borrowed copy.
type ReleaseMode int

const (
	// ReleaseCopyBack writes the elements back and ends the borrow.
	ReleaseCopyBack ReleaseMode = iota
	// ReleaseCommit writes the elements back and keeps the borrow.
	ReleaseCommit
	// ReleaseAbort ends the borrow without writing back.
	ReleaseAbort
)

// Object kinds recorded in the handle table.
const (
	KindClass uint32 = iota + 1
	KindString
	KindByteArray
)

// Env is the accessor surface of the managed runtime.
type Env interface {
	FindClass(name string) (Ref, error)
	GetMethodID(class Ref, name, sig string) (MethodID, error)
	CallObjectMethod(obj Ref, method MethodID, args ...Ref) (Ref, error)

	NewStringUTF(utf []byte) (Ref, error)
	NewString(chars []uint16) (Ref, error)
	GetStringLength(s Ref) (int, error)
	GetStringChars(s Ref) ([]uint16, error)
	ReleaseStringChars(s Ref, chars []uint16)
	GetStringUTFChars(s Ref) ([]byte, error)
	ReleaseStringUTFChars(s Ref, utf []byte)

	NewByteArray(length int) (Ref, error)
	SetByteArrayRegion(arr Ref, start int, data []byte) error
	GetArrayLength(arr Ref) (int, error)
	GetByteArrayElements(arr Ref) ([]byte, error)
	ReleaseByteArrayElements(arr Ref, elems []byte, mode ReleaseMode)

	DeleteLocalRef(ref Ref) error
}
