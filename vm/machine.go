package vm

import (
	"sync"
	"unicode/utf16"

	"go.uber.org/zap"

	"github.com/wippyai/hostbridge/errors"
	"github.com/wippyai/hostbridge/resource"
)

type classDef struct {
	name    string
	methods map[string]MethodID // name+sig
	kind    uint32              // instance kind accepted as receiver
}

type methodFunc func(m *Machine, obj Ref, args []Ref) (Ref, error)

type methodDef struct {
	fn    methodFunc
	class string
	name  string
	sig   string
}

type byteArray struct {
	data []byte
}

// Machine is an in-memory Env.
type Machine struct {
	table   *resource.UnifiedTable
	classes map[string]*classDef
	methods []methodDef
	mu      sync.RWMutex
}

// NewMachine creates a machine with the java/lang/String class registered.
func NewMachine() *Machine {
	m := &Machine{
		table:   resource.NewTable(),
		classes: make(map[string]*classDef),
	}
	m.table.Subscribe(eventLogger{})
	registerStringClass(m)
	return m
}

type eventLogger struct{}

func (eventLogger) OnResourceEvent(e resource.Event) {
	if ce := Logger().Check(zap.DebugLevel, "managed ref event"); ce != nil {
		ce.Write(
			zap.Stringer("event", e.Type),
			zap.Uint32("ref", uint32(e.Handle)),
			zap.Uint32("kind", e.TypeID),
		)
	}
}

// RegisterMethod adds an instance method to class, creating the class if needed.
// receiverKind is the object kind CallObjectMethod accepts for this class.
func (m *Machine) RegisterMethod(class string, receiverKind uint32, name, sig string, fn func(m *Machine, obj Ref, args []Ref) (Ref, error)) MethodID {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.classes[class]
	if !ok {
		c = &classDef{name: class, methods: make(map[string]MethodID), kind: receiverKind}
		m.classes[class] = c
	}
	m.methods = append(m.methods, methodDef{fn: fn, class: class, name: name, sig: sig})
	id := MethodID(len(m.methods))
	c.methods[name+sig] = id
	return id
}

// LocalRefs returns the number of live references.
func (m *Machine) LocalRefs() int {
	return m.table.Len()
}

// OutstandingBorrows returns the number of Get* views not yet released.
func (m *Machine) OutstandingBorrows() int {
	return m.table.TotalBorrows()
}

// Close drops every object.
func (m *Machine) Close() error {
	return m.table.Close()
}

func (m *Machine) insert(kind uint32, value any) (Ref, error) {
	h := m.table.Insert(kind, value)
	if h == 0 {
		return Null, errors.Closed(errors.PhaseRuntime, "machine")
	}
	return Ref(h), nil
}

func kindName(kind uint32) string {
	switch kind {
	case KindClass:
		return "class"
	case KindString:
		return "string"
	case KindByteArray:
		return "byte[]"
	default:
		return "object"
	}
}

// lookup fetches obj and checks its kind.
func (m *Machine) lookup(obj Ref, kind uint32) (any, error) {
	if obj.IsNull() {
		return nil, errors.NullHandle(errors.PhaseRuntime, kindName(kind))
	}
	if v, ok := m.table.GetTyped(obj.handle(), kind); ok {
		return v, nil
	}
	actual, ok := m.table.TypeID(obj.handle())
	if !ok {
		return nil, errors.StaleHandle(errors.PhaseRuntime, uint32(obj))
	}
	return nil, errors.TypeMismatch(errors.PhaseRuntime, uint32(obj), kindName(kind), kindName(actual))
}

func (m *Machine) stringChars(s Ref) ([]uint16, error) {
	v, err := m.lookup(s, KindString)
	if err != nil {
		return nil, err
	}
	return v.([]uint16), nil
}

func (m *Machine) byteArray(arr Ref) (*byteArray, error) {
	v, err := m.lookup(arr, KindByteArray)
	if err != nil {
		return nil, err
	}
	return v.(*byteArray), nil
}

func (m *Machine) release(ref Ref, what string) {
	if !m.table.ReturnBorrow(ref.handle()) {
		Logger().Debug("release without matching borrow",
			zap.String("view", what),
			zap.Uint32("ref", uint32(ref)),
		)
	}
}

// FindClass returns a new local reference to a registered class.
func (m *Machine) FindClass(name string) (Ref, error) {
	m.mu.RLock()
	c, ok := m.classes[name]
	m.mu.RUnlock()
	if !ok {
		return Null, errors.NotFound(errors.PhaseRuntime, "class", name)
	}
	return m.insert(KindClass, c)
}

// GetMethodID resolves a method by name and signature.
func (m *Machine) GetMethodID(class Ref, name, sig string) (MethodID, error) {
	v, err := m.lookup(class, KindClass)
	if err != nil {
		return 0, err
	}
	c := v.(*classDef)

	m.mu.RLock()
	id, ok := c.methods[name+sig]
	m.mu.RUnlock()
	if !ok {
		return 0, errors.NotFound(errors.PhaseRuntime, "method", c.name+"."+name+sig)
	}
	return id, nil
}

// CallObjectMethod invokes method on obj and returns a new local reference.
func (m *Machine) CallObjectMethod(obj Ref, method MethodID, args ...Ref) (Ref, error) {
	m.mu.RLock()
	if method == 0 || int(method) > len(m.methods) {
		m.mu.RUnlock()
		return Null, errors.InvalidInput(errors.PhaseRuntime, "invalid method id")
	}
	def := m.methods[method-1]
	c := m.classes[def.class]
	m.mu.RUnlock()

	if _, err := m.lookup(obj, c.kind); err != nil {
		return Null, err
	}
	return def.fn(m, obj, args)
}

// NewStringUTF creates a string from UTF-8 bytes. Invalid sequences become U+FFFD.
func (m *Machine) NewStringUTF(utf []byte) (Ref, error) {
	return m.insert(KindString, utf16.Encode([]rune(string(utf))))
}

// NewString creates a string from UTF-16 code units.
func (m *Machine) NewString(chars []uint16) (Ref, error) {
	cp := make([]uint16, len(chars))
	copy(cp, chars)
	return m.insert(KindString, cp)
}

// GetStringLength returns the length in UTF-16 code units.
func (m *Machine) GetStringLength(s Ref) (int, error) {
	chars, err := m.stringChars(s)
	if err != nil {
		return 0, err
	}
	return len(chars), nil
}

// GetStringChars borrows the UTF-16 content of s.
func (m *Machine) GetStringChars(s Ref) ([]uint16, error) {
	chars, err := m.stringChars(s)
	if err != nil {
		return nil, err
	}
	if !m.table.Borrow(s.handle()) {
		return nil, errors.StaleHandle(errors.PhaseRuntime, uint32(s))
	}
	out := make([]uint16, len(chars))
	copy(out, chars)
	return out, nil
}

// ReleaseStringChars ends a borrow taken by GetStringChars.
func (m *Machine) ReleaseStringChars(s Ref, chars []uint16) {
	m.release(s, "string chars")
}

// GetStringUTFChars borrows the UTF-8 content of s.
func (m *Machine) GetStringUTFChars(s Ref) ([]byte, error) {
	chars, err := m.stringChars(s)
	if err != nil {
		return nil, err
	}
	if !m.table.Borrow(s.handle()) {
		return nil, errors.StaleHandle(errors.PhaseRuntime, uint32(s))
	}
	return []byte(string(utf16.Decode(chars))), nil
}

// ReleaseStringUTFChars ends a borrow taken by GetStringUTFChars.
func (m *Machine) ReleaseStringUTFChars(s Ref, utf []byte) {
	m.release(s, "string utf chars")
}

// NewByteArray creates a zeroed byte array.
func (m *Machine) NewByteArray(length int) (Ref, error) {
	if length < 0 {
		return Null, errors.InvalidInput(errors.PhaseRuntime, "negative array length")
	}
	return m.insert(KindByteArray, &byteArray{data: make([]byte, length)})
}

// SetByteArrayRegion copies data into arr starting at start.
func (m *Machine) SetByteArrayRegion(arr Ref, start int, data []byte) error {
	a, err := m.byteArray(arr)
	if err != nil {
		return err
	}
	if start < 0 || start+len(data) > len(a.data) {
		return errors.OutOfBounds(errors.PhaseRuntime, []string{"SetByteArrayRegion"}, start+len(data), len(a.data))
	}
	copy(a.data[start:], data)
	return nil
}

// GetArrayLength returns the length of arr.
func (m *Machine) GetArrayLength(arr Ref) (int, error) {
	a, err := m.byteArray(arr)
	if err != nil {
		return 0, err
	}
	return len(a.data), nil
}

// GetByteArrayElements borrows a copy of the elements of arr.
func (m *Machine) GetByteArrayElements(arr Ref) ([]byte, error) {
	a, err := m.byteArray(arr)
	if err != nil {
		return nil, err
	}
	if !m.table.Borrow(arr.handle()) {
		return nil, errors.StaleHandle(errors.PhaseRuntime, uint32(arr))
	}
	out := make([]byte, len(a.data))
	copy(out, a.data)
	return out, nil
}

// ReleaseByteArrayElements writes elems back according to mode.
func (m *Machine) ReleaseByteArrayElements(arr Ref, elems []byte, mode ReleaseMode) {
	if mode != ReleaseAbort {
		if a, err := m.byteArray(arr); err == nil {
			copy(a.data, elems)
		}
	}
	if mode != ReleaseCommit {
		m.release(arr, "byte array elements")
	}
}

// DeleteLocalRef drops ref. Null is ignored; a pinned object is kept.
func (m *Machine) DeleteLocalRef(ref Ref) error {
	if ref.IsNull() {
		return nil
	}
	n, ok := m.table.Borrows(ref.handle())
	if !ok {
		return errors.StaleHandle(errors.PhaseRuntime, uint32(ref))
	}
	if n > 0 {
		return errors.New(errors.PhaseRuntime, errors.KindOutstandingBorrow).
			Handle(uint32(ref)).
			Detail("%d borrows still held", n).
			Build()
	}
	if _, ok := m.table.Remove(ref.handle()); !ok {
		return errors.StaleHandle(errors.PhaseRuntime, uint32(ref))
	}
	return nil
}

// StringValue returns the content of s as a Go string without borrowing.
func (m *Machine) StringValue(s Ref) (string, error) {
	chars, err := m.stringChars(s)
	if err != nil {
		return "", err
	}
	return string(utf16.Decode(chars)), nil
}

// ByteArrayValue returns a copy of the content of arr without borrowing.
func (m *Machine) ByteArrayValue(arr Ref) ([]byte, error) {
	a, err := m.byteArray(arr)
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(a.data))
	copy(out, a.data)
	return out, nil
}

var _ Env = (*Machine)(nil)
