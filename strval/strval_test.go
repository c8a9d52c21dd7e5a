package strval

import (
	"testing"

	"github.com/minibasic/basic-runtime/errors"
)

// trapsWith runs fn and reports the structured error it trapped with,
// or nil when fn completed normally.
func trapsWith(t *testing.T, fn func()) *errors.Error {
	t.Helper()
	var trapped *errors.Error
	func() {
		defer func() {
			if r := recover(); r != nil {
				e, ok := r.(*errors.Error)
				if !ok {
					t.Fatalf("panic with unexpected value: %v", r)
				}
				trapped = e
			}
		}()
		fn()
	}()
	return trapped
}

func TestAllocAndConcat(t *testing.T) {
	h := NewHeap()

	a := h.Alloc("ab")
	b := h.Alloc("cd")
	c := h.Concat(a, b)

	if c.Len() != 4 {
		t.Fatalf("Concat length = %d, want 4", c.Len())
	}
	if c.String() != "abcd" {
		t.Fatalf("Concat content = %q, want %q", c.String(), "abcd")
	}
	if a.String() != "ab" || b.String() != "cd" {
		t.Error("Concat mutated an input")
	}
	if c.Refs() != 1 {
		t.Errorf("new value refcount = %d, want 1", c.Refs())
	}
}

func TestConcatNilOperand(t *testing.T) {
	h := NewHeap()
	a := h.Alloc("ab")

	if got := h.Concat(a, nil).String(); got != "ab" {
		t.Errorf("Concat(a, nil) = %q, want %q", got, "ab")
	}
	if got := h.Concat(nil, a).String(); got != "ab" {
		t.Errorf("Concat(nil, a) = %q, want %q", got, "ab")
	}
	if got := h.Concat(nil, nil).Len(); got != 0 {
		t.Errorf("Concat(nil, nil) length = %d, want 0", got)
	}
}

func TestCompare(t *testing.T) {
	h := NewHeap()

	tests := []struct {
		a, b string
		want int32
	}{
		{"a", "b", -1},
		{"b", "a", 1},
		{"abc", "abc", 0},
		{"ab", "abc", -1},
		{"", "", 0},
		{"", "a", -1},
	}
	for _, tt := range tests {
		a := h.Alloc(tt.a)
		b := h.Alloc(tt.b)
		if got := h.Compare(a, b); got != tt.want {
			t.Errorf("Compare(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}

	if got := h.Compare(nil, h.Alloc("x")); got != -1 {
		t.Errorf("Compare(nil, x) = %d, want -1", got)
	}
	if got := h.Compare(nil, nil); got != 0 {
		t.Errorf("Compare(nil, nil) = %d, want 0", got)
	}
}

func TestBinarySafety(t *testing.T) {
	h := NewHeap()

	a := h.AllocBytes([]byte{'a', 0, 'b'})
	b := h.AllocBytes([]byte{'a', 0, 'c'})

	if a.Len() != 3 {
		t.Fatalf("embedded NUL length = %d, want 3", a.Len())
	}
	if got := h.Compare(a, b); got != -1 {
		t.Errorf("Compare over embedded NUL = %d, want -1", got)
	}
	c := h.Concat(a, b)
	if c.Len() != 6 {
		t.Errorf("Concat over embedded NUL length = %d, want 6", c.Len())
	}
}

func TestRetainReleaseBalance(t *testing.T) {
	h := NewHeap()
	v := h.Alloc("hello")

	// Three extra aliases beyond the allocation's implicit ownership.
	v.Retain()
	v.Retain()
	v.Retain()

	v.Release()
	v.Release()
	v.Release()
	if v.Freed() {
		t.Fatal("value freed before the final matching release")
	}
	if h.Live() != 1 {
		t.Fatalf("Live() = %d, want 1", h.Live())
	}

	v.Release() // matches the allocation
	if !v.Freed() {
		t.Fatal("value not freed on final release")
	}
	if h.Live() != 0 {
		t.Fatalf("Live() = %d after final release, want 0", h.Live())
	}
}

func TestDoubleReleaseTraps(t *testing.T) {
	h := NewHeap()
	v := h.Alloc("x")
	v.Release()

	err := trapsWith(t, func() { v.Release() })
	if err == nil {
		t.Fatal("double release did not trap")
	}
	if err.Kind != errors.KindDoubleFree {
		t.Errorf("trap kind = %s, want %s", err.Kind, errors.KindDoubleFree)
	}
}

func TestUseAfterFreeTraps(t *testing.T) {
	h := NewHeap()
	v := h.Alloc("x")
	v.Release()

	if err := trapsWith(t, func() { h.Concat(v, nil) }); err == nil {
		t.Error("Concat on freed value did not trap")
	}
	if err := trapsWith(t, func() { v.Retain() }); err == nil {
		t.Error("Retain on freed value did not trap")
	}
}

func TestNilRetainRelease(t *testing.T) {
	var v *Value
	v.Retain()
	v.Release() // both no-ops
	if v.Len() != 0 || v.String() != "" {
		t.Error("nil value accessors not empty")
	}
}

func TestHeapCounters(t *testing.T) {
	h := NewHeap()
	a := h.Alloc("a")
	b := h.Alloc("b")
	if h.Live() != 2 || h.Total() != 2 {
		t.Fatalf("Live/Total = %d/%d, want 2/2", h.Live(), h.Total())
	}
	a.Release()
	b.Release()
	if h.Live() != 0 || h.Total() != 2 {
		t.Fatalf("Live/Total = %d/%d after release, want 0/2", h.Live(), h.Total())
	}
}
