package ir

// Emit appends in's encoded bytes to e and returns the byte offset the
// instruction starts at (its would-be "ip" for anyone branching to it).
// Field layout is grouped by Op, matching the teacher's single
// switch-over-opcode style in wasm/instruction.go rather than a generic
// field-list walker: one case per instruction class, each spelling out
// exactly which Instr fields it reads.
func Emit(e *Encoder, in Instr) int {
	start := e.Len()
	e.u8(uint8(in.Op))

	switch in.Op {
	case OpTrap:
		e.u8(uint8(in.Trap))

	case OpConsumeFuel:
		e.u32(in.Aux)

	case OpBr:
		e.i32(in.Offset)

	case OpBranchCmp:
		e.u8(in.Kind)
		e.u8(uint8(in.Shape))
		e.u8(uint8(in.Val))
		e.slot(in.A)
		switch in.Shape {
		case ShapeSSS:
			e.slot(in.B)
		case ShapeSSI:
			e.u64(in.ImmB)
		}
		e.i32(in.Offset)

	case OpBrTable:
		e.slot(in.A)
		e.u32(uint32(len(in.Targets)))
		for _, t := range in.Targets {
			if t.Span.Empty() {
				e.u8(0)
				e.i32(t.Offset)
			} else {
				e.u8(1)
				e.i32(t.Offset)
				e.span(t.Span)
			}
		}

	case OpReturn:
		// no fields

	case OpReturnSlot32, OpReturnSlot64:
		e.slot(in.A)

	case OpCopy, OpCopy32, OpCopy64:
		e.slot(in.Result)
		e.slot(in.A)

	case OpCopy2:
		e.slot(in.Result)
		e.slot(in.A)
		e.slot(in.C)
		e.slot(in.D)

	case OpCopySpan, OpCopySpanNonOverlapping:
		e.span(in.Span)
		e.slot(in.A)

	case OpCallInternal, OpCallImported, OpReturnCallInternal, OpReturnCallImported:
		e.span(in.Span)
		e.u32(in.Aux)

	case OpCallIndirect, OpReturnCallIndirect:
		e.span(in.Span)
		e.slot(in.A)
		e.u32(in.Aux)
		e.u32(in.Aux2)

	case OpBinArith, OpCmp:
		e.u8(in.Kind)
		e.u8(uint8(in.Shape))
		e.u8(uint8(in.Val))
		e.slot(in.Result)
		e.slot(in.A)
		switch in.Shape {
		case ShapeSSS:
			e.slot(in.B)
		case ShapeSSI:
			e.u64(in.ImmB)
		case ShapeSIS:
			e.u64(in.ImmA)
			e.slot(in.B)
		}

	case OpUnary:
		e.u8(in.Kind)
		e.u8(uint8(in.Val))
		e.slot(in.Result)
		e.slot(in.A)

	case OpConvert:
		e.u8(in.Kind)
		e.slot(in.Result)
		e.slot(in.A)

	case OpSelectCmp:
		e.u8(in.Kind)
		e.u8(uint8(in.Shape))
		e.u8(uint8(in.Val))
		e.slot(in.Result)
		e.slot(in.A) // then-value
		e.slot(in.C) // else-value
		e.slot(in.B) // cmp lhs
		switch in.Shape {
		case ShapeSSS:
			e.slot(in.D) // cmp rhs slot
		case ShapeSSI:
			e.u64(in.ImmB) // cmp rhs immediate
		case ShapeSIS:
			e.u64(in.ImmA) // cmp lhs immediate (B unused)
			e.slot(in.D)
		}

	case OpGlobalGet:
		e.u32(in.Aux)
		e.slot(in.Result)

	case OpGlobalSet:
		e.u32(in.Aux)
		e.slot(in.A)

	case OpLoad:
		e.u8(uint8(in.Val))
		e.u8(in.Kind)
		e.u8(uint8(in.Shape))
		e.u32(in.Aux)
		e.i32(in.Offset)
		e.slot(in.Result)
		switch in.Shape {
		case ShapeSSI:
			e.u64(in.ImmA)
		default:
			e.slot(in.A)
		}

	case OpStore:
		e.u8(uint8(in.Val))
		e.u8(in.Kind)
		e.u8(uint8(in.Shape))
		e.u32(in.Aux)
		e.i32(in.Offset)
		switch in.Shape {
		case ShapeSSI:
			e.u64(in.ImmA)
		default:
			e.slot(in.A)
		}
		e.slot(in.B)

	case OpMemorySize:
		e.u32(in.Aux)
		e.slot(in.Result)

	case OpMemoryGrow:
		e.u32(in.Aux)
		e.slot(in.Result)
		e.slot(in.A)

	case OpMemoryFill:
		e.u32(in.Aux)
		e.slot(in.A)
		e.slot(in.B)
		e.slot(in.C)

	case OpMemoryCopy:
		e.u32(in.Aux)
		e.u32(in.Aux2)
		e.slot(in.A)
		e.slot(in.B)
		e.slot(in.C)

	case OpMemoryInit:
		e.u32(in.Aux)
		e.u32(in.Aux2)
		e.slot(in.A)
		e.slot(in.B)
		e.slot(in.C)

	case OpDataDrop, OpElemDrop:
		e.u32(in.Aux)

	case OpTableGet:
		e.u32(in.Aux)
		e.slot(in.Result)
		e.slot(in.A)

	case OpTableSet:
		e.u32(in.Aux)
		e.slot(in.A)
		e.slot(in.B)

	case OpTableSize:
		e.u32(in.Aux)
		e.slot(in.Result)

	case OpTableGrow:
		e.u32(in.Aux)
		e.slot(in.Result)
		e.slot(in.A)
		e.slot(in.B)

	case OpTableFill:
		e.u32(in.Aux)
		e.slot(in.A)
		e.slot(in.B)
		e.slot(in.C)

	case OpTableCopy, OpTableInit:
		e.u32(in.Aux)
		e.u32(in.Aux2)
		e.slot(in.A)
		e.slot(in.B)
		e.slot(in.C)

	case OpRefNull:
		e.slot(in.Result)

	case OpRefIsNull:
		e.slot(in.Result)
		e.slot(in.A)

	case OpRefFunc:
		e.u32(in.Aux)
		e.slot(in.Result)
	}

	return start
}
