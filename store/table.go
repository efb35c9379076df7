package store

// FuncRef names a callable entity living in a (possibly different)
// instance's function table: the indirect-call target a table element
// resolves to.
type FuncRef struct {
	Instance *Instance
	FuncIdx  uint32
	Valid    bool // false denotes a null/unset entry
}

// Table is a Wasm table. Every entry is stored as a FuncRef; the raw slice
// is allocated alongside the entries, but nothing reads or writes it.
type Table struct {
	elems   []FuncRef
	raw     []uint64 // parallel externref storage, unused for funcref tables
	maxSize uint32
}

// NewTable allocates a table with minSize initial (null) entries.
func NewTable(minSize, maxSize uint32) *Table {
	return &Table{
		elems:   make([]FuncRef, minSize),
		raw:     make([]uint64, minSize),
		maxSize: maxSize,
	}
}

// Size returns the current element count.
func (t *Table) Size() uint32 { return uint32(len(t.elems)) }

// Get returns the FuncRef at idx, or ok=false if idx is out of range
// (spec.md §6 TableOutOfBounds).
func (t *Table) Get(idx uint32) (FuncRef, bool) {
	if idx >= uint32(len(t.elems)) {
		return FuncRef{}, false
	}
	return t.elems[idx], true
}

// Set stores ref at idx.
func (t *Table) Set(idx uint32, ref FuncRef) bool {
	if idx >= uint32(len(t.elems)) {
		return false
	}
	t.elems[idx] = ref
	return true
}

// Grow grows the table by delta elements, filling new slots with init.
// Mirrors Memory.Grow's previous-size/ok contract.
func (t *Table) Grow(delta uint32, init FuncRef, limit uint32) (previous uint32, ok bool) {
	previous = t.Size()
	target := previous + delta
	if target < previous {
		return previous, false
	}
	if t.maxSize != 0 && target > t.maxSize {
		return previous, false
	}
	if limit != 0 && target > limit {
		return previous, false
	}
	grown := make([]FuncRef, target)
	copy(grown, t.elems)
	for i := previous; i < target; i++ {
		grown[i] = init
	}
	t.elems = grown
	return previous, true
}

// Fill overwrites [idx, idx+n) with ref.
func (t *Table) Fill(idx, n uint32, ref FuncRef) bool {
	if uint64(idx)+uint64(n) > uint64(len(t.elems)) {
		return false
	}
	for i := uint32(0); i < n; i++ {
		t.elems[idx+i] = ref
	}
	return true
}

// CopyWithin copies n entries from src to dst, handling overlap like
// memmove (spec.md's table.copy/memory.copy are defined this way).
func (t *Table) CopyWithin(dst, src, n uint32) bool {
	if uint64(dst)+uint64(n) > uint64(len(t.elems)) || uint64(src)+uint64(n) > uint64(len(t.elems)) {
		return false
	}
	copy(t.elems[dst:dst+n], t.elems[src:src+n])
	return true
}
