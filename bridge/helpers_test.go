package bridge

import (
	"testing"

	"github.com/wippyai/hostbridge/errors"
	"github.com/wippyai/hostbridge/vm"
)

// newMachine returns a machine closed at the end of the test.
func newMachine(t *testing.T) *vm.Machine {
	t.Helper()
	m := vm.NewMachine()
	t.Cleanup(func() { m.Close() })
	return m
}

type leakCheck struct {
	m    *vm.Machine
	refs int
}

func watch(m *vm.Machine) leakCheck {
	return leakCheck{m: m, refs: m.LocalRefs()}
}

// verify fails if the machine holds a different number of refs than when
// watch was called, plus extra, or if any borrow is outstanding.
func (c leakCheck) verify(t *testing.T, extra int) {
	t.Helper()
	if got := c.m.LocalRefs(); got != c.refs+extra {
		t.Fatalf("LocalRefs = %d, want %d", got, c.refs+extra)
	}
	if n := c.m.OutstandingBorrows(); n != 0 {
		t.Fatalf("OutstandingBorrows = %d, want 0", n)
	}
}

func mustString(t *testing.T, m *vm.Machine, s string) vm.Ref {
	t.Helper()
	ref, err := m.NewStringUTF([]byte(s))
	if err != nil {
		t.Fatalf("NewStringUTF(%q): %v", s, err)
	}
	return ref
}

func mustBytes(t *testing.T, m *vm.Machine, data []byte) vm.Ref {
	t.Helper()
	ref, err := m.NewByteArray(len(data))
	if err != nil {
		t.Fatalf("NewByteArray: %v", err)
	}
	if err := m.SetByteArrayRegion(ref, 0, data); err != nil {
		t.Fatalf("SetByteArrayRegion: %v", err)
	}
	return ref
}

func isKind(err error, kind errors.Kind) bool {
	e, ok := err.(*errors.Error)
	return ok && e.Kind == kind
}

func strPtr(s string) *string { return &s }
