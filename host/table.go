package host

import (
	"github.com/minibasic/basic-runtime/strval"
)

// stringTable maps i32 guest handles to string values. Handles are 1-based
// so 0 stays an invalid sentinel; freed slots are recycled through a free
// list. Not synchronized: host functions run on the guest's single task.
type stringTable struct {
	entries  []*strval.Value
	freeList []int32
}

func newStringTable() *stringTable {
	return &stringTable{
		entries:  make([]*strval.Value, 0, 64),
		freeList: make([]int32, 0, 16),
	}
}

// add stores a value and returns its handle.
func (t *stringTable) add(v *strval.Value) int32 {
	if v == nil {
		return 0
	}
	if n := len(t.freeList); n > 0 {
		h := t.freeList[n-1]
		t.freeList = t.freeList[:n-1]
		t.entries[h-1] = v
		return h
	}
	t.entries = append(t.entries, v)
	return int32(len(t.entries))
}

// get resolves a handle, nil when invalid or dropped.
func (t *stringTable) get(h int32) *strval.Value {
	if h <= 0 || int(h) > len(t.entries) {
		return nil
	}
	return t.entries[h-1]
}

// drop clears a slot and recycles the handle.
func (t *stringTable) drop(h int32) {
	if h <= 0 || int(h) > len(t.entries) || t.entries[h-1] == nil {
		return
	}
	t.entries[h-1] = nil
	t.freeList = append(t.freeList, h)
}

// len returns the number of live entries.
func (t *stringTable) len() int {
	n := 0
	for _, e := range t.entries {
		if e != nil {
			n++
		}
	}
	return n
}
