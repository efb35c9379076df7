package ir

// Slot is a signed 16-bit index into the value stack (non-negative) or the
// per-function constant pool (negative). Every instruction operand or
// result is a Slot.
type Slot int16

// IsConst reports whether s addresses the constant pool rather than the
// live value stack.
func (s Slot) IsConst() bool { return s < 0 }

// ConstIndex returns the constant-pool index addressed by s. Only valid
// when s.IsConst() is true.
func (s Slot) ConstIndex() int { return int(-s - 1) }

// NoSlot marks an operand field as unused for a given Op/Shape combination.
const NoSlot Slot = -32768

// SlotSpan is a contiguous run of stack slots: (base, length). Spans never
// cross a frame boundary — the translator's allocator guarantees
// contiguity within one frame.
type SlotSpan struct {
	Base Slot
	Len  uint16
}

// Empty reports whether the span carries no slots.
func (s SlotSpan) Empty() bool { return s.Len == 0 }

// ConstSlot builds the negative Slot for constant-pool index idx.
func ConstSlot(idx int) Slot {
	return Slot(-idx - 1)
}
