package ir

// Instr is one decoded IR instruction. Field meaning depends on Op; see the
// comments on each Op constant. Providers — "this operand is a stack slot
// or a compile-time immediate" — are represented by a Slot field that is
// ignored in favor of the matching Imm field when Shape (or Op) says the
// operand is immediate, rather than a separate tagged Provider struct: one
// fewer indirection on the hot path, at the cost of Shape/Op carrying that
// meaning implicitly. This is the same compactness trade spec.md §9 flags
// for the opcode union itself, applied one level down to operands.
type Instr struct {
	Op     Op
	Val    ValType
	Kind   uint8 // ArithKind | CmpKind | UnaryKind | ConvKind, cast per Op
	Shape  Shape
	Result Slot
	A, B   Slot // primary operands: lhs/ptr/index/then-value/condition-lhs
	C, D   Slot // select_cmp's extra operands: else-value, condition-rhs
	ImmA   uint64
	ImmB   uint64
	Offset int32    // branch displacement, or memory byte offset
	Span   SlotSpan // call args / copy span / br_table span payload
	Aux    uint32   // func/type/table/mem/global index, or fuel amount
	Aux2   uint32   // secondary index (e.g. call_indirect's table index)
	Trap   TrapCode

	// Targets holds br_table's per-target records. Only OpBrTable uses
	// this field. Each target is encoded as a 1-byte span flag and a 4-byte
	// offset, followed by a 4-byte span when the flag is set (5 or 9 bytes);
	// decode reconstructs the records as a slice for handler convenience.
	Targets []BrTableTarget
}

// BrTableTarget is one br_table entry: a bare branch offset, or an offset
// plus a SlotSpan to copy before branching (spec.md §4.1, §4.3 "Br_table").
type BrTableTarget struct {
	Offset int32
	Span   SlotSpan // Span.Len == 0 means "bare branch, no copy"
}

// ArithKind returns in.Kind as an ArithKind. Only meaningful when
// in.Op == OpBinArith.
func (in Instr) ArithKind() ArithKind { return ArithKind(in.Kind) }

// CmpKind returns in.Kind as a CmpKind. Only meaningful when in.Op is
// OpCmp, OpBranchCmp, or OpSelectCmp.
func (in Instr) CmpKind() CmpKind { return CmpKind(in.Kind) }

// UnaryKind returns in.Kind as a UnaryKind. Only meaningful when
// in.Op == OpUnary.
func (in Instr) UnaryKind() UnaryKind { return UnaryKind(in.Kind) }

// ConvKind returns in.Kind as a ConvKind. Only meaningful when
// in.Op == OpConvert.
func (in Instr) ConvKind() ConvKind { return ConvKind(in.Kind) }

// MemWidth and MemSigned unpack in.Kind for OpLoad/OpStore.
func (in Instr) MemWidth() MemWidth {
	w, _ := DecodeMemKind(in.Kind)
	return w
}

func (in Instr) MemSigned() bool {
	_, s := DecodeMemKind(in.Kind)
	return s
}
