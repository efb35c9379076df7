package rvm

import "github.com/wippyai/wasm-runtime/ir"

// Stack is the flat value stack spec.md §4.2 describes: one []uint64 shared
// by every frame in a call chain, each frame owning a contiguous window
// [Base, Base+FrameSize). Slots never move once assigned; growth only
// extends the backing array.
type Stack struct {
	words []uint64
}

// NewStack preallocates cap words of headroom.
func NewStack(capacity int) *Stack {
	return &Stack{words: make([]uint64, 0, capacity)}
}

// Reserve grows the stack to at least n words, zero-filling the new region,
// and returns the (possibly reallocated) backing slice's new length boundary
// is unaffected — callers address by absolute index via Get/Set.
func (s *Stack) Reserve(n int) {
	if n <= len(s.words) {
		return
	}
	if n <= cap(s.words) {
		s.words = s.words[:n]
		return
	}
	grown := make([]uint64, n)
	copy(grown, s.words)
	s.words = grown
}

// Len reports the stack's current live length in words.
func (s *Stack) Len() int { return len(s.words) }

// Get reads absolute word index i.
func (s *Stack) Get(i int) uint64 { return s.words[i] }

// Set writes absolute word index i.
func (s *Stack) Set(i int, v uint64) { s.words[i] = v }

// Slice returns the live backing slice, for span copies.
func (s *Stack) Slice() []uint64 { return s.words }

// Value resolves an ir.Slot against frame base and the function's constant
// pool: non-negative slots address the stack at base+slot, negative slots
// address consts.
func (s *Stack) Value(base int, consts []uint64, slot ir.Slot) uint64 {
	if slot.IsConst() {
		return consts[slot.ConstIndex()]
	}
	return s.words[base+int(slot)]
}

// SetValue writes slot (always a stack slot — results are never constants).
func (s *Stack) SetValue(base int, slot ir.Slot, v uint64) {
	s.words[base+int(slot)] = v
}

// CopyWithin copies n words from srcBase to dstBase (absolute indices),
// handling overlap like memmove via Go's builtin copy.
func (s *Stack) CopyWithin(dstBase, srcBase, n int) {
	copy(s.words[dstBase:dstBase+n], s.words[srcBase:srcBase+n])
}
