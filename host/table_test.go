package host

import (
	"testing"

	"github.com/minibasic/basic-runtime/strval"
)

func TestStringTable_Basic(t *testing.T) {
	h := strval.NewHeap()
	tab := newStringTable()

	handle := tab.add(h.Alloc("test"))
	if handle == 0 {
		t.Fatal("expected non-zero handle")
	}

	v := tab.get(handle)
	if v == nil || v.String() != "test" {
		t.Fatalf("get = %v", v)
	}

	tab.drop(handle)
	if tab.get(handle) != nil {
		t.Fatal("get after drop returned a value")
	}
	if tab.len() != 0 {
		t.Fatalf("len = %d after drop, want 0", tab.len())
	}
}

func TestStringTable_HandleReuse(t *testing.T) {
	h := strval.NewHeap()
	tab := newStringTable()

	h1 := tab.add(h.Alloc("a"))
	h2 := tab.add(h.Alloc("b"))
	if h1 == h2 {
		t.Fatal("distinct values share a handle")
	}

	tab.drop(h1)
	h3 := tab.add(h.Alloc("c"))
	if h3 != h1 {
		t.Errorf("freed handle not recycled: got %d, want %d", h3, h1)
	}
	if got := tab.get(h2).String(); got != "b" {
		t.Errorf("unrelated handle disturbed: %q", got)
	}
}

func TestStringTable_InvalidHandles(t *testing.T) {
	tab := newStringTable()

	for _, h := range []int32{0, -1, 99} {
		if tab.get(h) != nil {
			t.Errorf("get(%d) returned a value", h)
		}
		tab.drop(h) // must not panic
	}
	if tab.add(nil) != 0 {
		t.Error("add(nil) returned a handle")
	}
}
