package store

// Global is a mutable-or-immutable global variable holding one untyped
// 64-bit word (spec.md §4.5, §6): global.get reads it, global.set writes
// it; immutable globals are assumed already rejected by validation, so the
// executor never re-checks Mutable on global.set.
//
// A funcref-typed global carries its referenced function as a FuncRef
// struct rather than an encoded handle word, the same way Table.elems
// does — IsFuncRef is set once at instantiation from the global's
// declared type and never changes, so global.get/global.set can tell
// which representation applies without re-inspecting the module.
type Global struct {
	Value     uint64
	FuncRef   FuncRef
	IsFuncRef bool
	Mutable   bool
}

// Function is an engine-resolved function: either a translated IR body
// (internal) or a placeholder the embedder supplies results for
// (imported/host). Host functions carry no IR; the executor's call
// handlers exit with Done{HostCall} instead of pushing a frame for them.
type Function struct {
	Name       string
	Type       TypeHandle
	NumParams  int
	NumResults int

	// IR body, nil for host/imported functions.
	Code      []byte
	Consts    []uint64
	FrameSize int
	MaxStack  int

	IsHost bool
	// HostRef identifies the host function to the embedder; meaningful
	// only when IsHost is true.
	HostRef uint32
}

// DataSegment is a passive or (already-applied) active data segment; Dropped
// is set by data.drop per spec.md's bulk-memory semantics.
type DataSegment struct {
	Bytes   []byte
	Dropped bool
}

// ElementSegment is a passive or (already-applied) active element segment
// of function references; Dropped is set by elem.drop.
type ElementSegment struct {
	Refs    []FuncRef
	Dropped bool
}

// Instance is a concrete instantiation of a Wasm module: the set of
// handles spec.md §3 names — its function-type table (shared via Types),
// function table, linear memories, globals, tables, and passive
// data/element segments.
type Instance struct {
	Types *TypePool

	Funcs     []*Function
	Memories  []*Memory
	Tables    []*Table
	Globals   []*Global
	DataSegs  []*DataSegment
	ElemSegs  []*ElementSegment
}

// NewInstance returns an empty instance sharing the given type pool.
func NewInstance(types *TypePool) *Instance {
	return &Instance{Types: types}
}

// Mem0 returns the instance's zeroth linear memory, or nil if it declares
// none (spec.md's "memory 0 is special-cased", §3).
func (i *Instance) Mem0() *Memory {
	if len(i.Memories) == 0 {
		return nil
	}
	return i.Memories[0]
}

// Memory returns memory idx, or nil if out of range.
func (i *Instance) Memory(idx uint32) *Memory {
	if int(idx) >= len(i.Memories) {
		return nil
	}
	return i.Memories[idx]
}

// Table returns table idx, or nil if out of range.
func (i *Instance) Table(idx uint32) *Table {
	if int(idx) >= len(i.Tables) {
		return nil
	}
	return i.Tables[idx]
}

// Global returns global idx, or nil if out of range.
func (i *Instance) Global(idx uint32) *Global {
	if int(idx) >= len(i.Globals) {
		return nil
	}
	return i.Globals[idx]
}

// Func returns function idx, or nil if out of range.
func (i *Instance) Func(idx uint32) *Function {
	if int(idx) >= len(i.Funcs) {
		return nil
	}
	return i.Funcs[idx]
}
