package ir

// Decode reads one instruction starting at ip and returns it along with
// the ip of the following instruction. Per spec.md §4.1, decoding never
// allocates except for br_table's Targets slice, and never validates —
// malformed IR is a programmer error, not a runtime condition to report.
func (d *Decoder) Decode(ip int) (Instr, int) {
	opByte, ip := d.u8(ip)
	in := Instr{Op: Op(opByte)}

	switch in.Op {
	case OpTrap:
		var t uint8
		t, ip = d.u8(ip)
		in.Trap = TrapCode(t)

	case OpConsumeFuel:
		in.Aux, ip = d.u32(ip)

	case OpBr:
		in.Offset, ip = d.i32(ip)

	case OpBranchCmp:
		var kind, shape, val uint8
		kind, ip = d.u8(ip)
		shape, ip = d.u8(ip)
		val, ip = d.u8(ip)
		in.Kind, in.Shape, in.Val = kind, Shape(shape), ValType(val)
		in.A, ip = d.slot(ip)
		switch in.Shape {
		case ShapeSSS:
			in.B, ip = d.slot(ip)
		case ShapeSSI:
			in.ImmB, ip = d.u64(ip)
		}
		in.Offset, ip = d.i32(ip)

	case OpBrTable:
		in.A, ip = d.slot(ip)
		var count uint32
		count, ip = d.u32(ip)
		in.Targets = make([]BrTableTarget, count)
		for i := range in.Targets {
			var hasSpan uint8
			hasSpan, ip = d.u8(ip)
			var t BrTableTarget
			t.Offset, ip = d.i32(ip)
			if hasSpan != 0 {
				t.Span, ip = d.span(ip)
			}
			in.Targets[i] = t
		}

	case OpReturn:
		// no fields

	case OpReturnSlot32, OpReturnSlot64:
		in.A, ip = d.slot(ip)

	case OpCopy, OpCopy32, OpCopy64:
		in.Result, ip = d.slot(ip)
		in.A, ip = d.slot(ip)

	case OpCopy2:
		in.Result, ip = d.slot(ip)
		in.A, ip = d.slot(ip)
		in.C, ip = d.slot(ip)
		in.D, ip = d.slot(ip)

	case OpCopySpan, OpCopySpanNonOverlapping:
		in.Span, ip = d.span(ip)
		in.A, ip = d.slot(ip)

	case OpCallInternal, OpCallImported, OpReturnCallInternal, OpReturnCallImported:
		in.Span, ip = d.span(ip)
		in.Aux, ip = d.u32(ip)

	case OpCallIndirect, OpReturnCallIndirect:
		in.Span, ip = d.span(ip)
		in.A, ip = d.slot(ip)
		in.Aux, ip = d.u32(ip)
		in.Aux2, ip = d.u32(ip)

	case OpBinArith, OpCmp:
		var kind, shape, val uint8
		kind, ip = d.u8(ip)
		shape, ip = d.u8(ip)
		val, ip = d.u8(ip)
		in.Kind, in.Shape, in.Val = kind, Shape(shape), ValType(val)
		in.Result, ip = d.slot(ip)
		in.A, ip = d.slot(ip)
		switch in.Shape {
		case ShapeSSS:
			in.B, ip = d.slot(ip)
		case ShapeSSI:
			in.ImmB, ip = d.u64(ip)
		case ShapeSIS:
			in.ImmA, ip = d.u64(ip)
			in.B, ip = d.slot(ip)
		}

	case OpUnary:
		var kind, val uint8
		kind, ip = d.u8(ip)
		val, ip = d.u8(ip)
		in.Kind, in.Val = kind, ValType(val)
		in.Result, ip = d.slot(ip)
		in.A, ip = d.slot(ip)

	case OpConvert:
		var kind uint8
		kind, ip = d.u8(ip)
		in.Kind = kind
		in.Result, ip = d.slot(ip)
		in.A, ip = d.slot(ip)

	case OpSelectCmp:
		var kind, shape, val uint8
		kind, ip = d.u8(ip)
		shape, ip = d.u8(ip)
		val, ip = d.u8(ip)
		in.Kind, in.Shape, in.Val = kind, Shape(shape), ValType(val)
		in.Result, ip = d.slot(ip)
		in.A, ip = d.slot(ip)
		in.C, ip = d.slot(ip)
		in.B, ip = d.slot(ip)
		switch in.Shape {
		case ShapeSSS:
			in.D, ip = d.slot(ip)
		case ShapeSSI:
			in.ImmB, ip = d.u64(ip)
		case ShapeSIS:
			in.ImmA, ip = d.u64(ip)
			in.D, ip = d.slot(ip)
		}

	case OpGlobalGet:
		in.Aux, ip = d.u32(ip)
		in.Result, ip = d.slot(ip)

	case OpGlobalSet:
		in.Aux, ip = d.u32(ip)
		in.A, ip = d.slot(ip)

	case OpLoad:
		var val, kind, shape uint8
		val, ip = d.u8(ip)
		kind, ip = d.u8(ip)
		shape, ip = d.u8(ip)
		in.Val, in.Kind, in.Shape = ValType(val), kind, Shape(shape)
		in.Aux, ip = d.u32(ip)
		in.Offset, ip = d.i32(ip)
		in.Result, ip = d.slot(ip)
		switch in.Shape {
		case ShapeSSI:
			in.ImmA, ip = d.u64(ip)
		default:
			in.A, ip = d.slot(ip)
		}

	case OpStore:
		var val, kind, shape uint8
		val, ip = d.u8(ip)
		kind, ip = d.u8(ip)
		shape, ip = d.u8(ip)
		in.Val, in.Kind, in.Shape = ValType(val), kind, Shape(shape)
		in.Aux, ip = d.u32(ip)
		in.Offset, ip = d.i32(ip)
		switch in.Shape {
		case ShapeSSI:
			in.ImmA, ip = d.u64(ip)
		default:
			in.A, ip = d.slot(ip)
		}
		in.B, ip = d.slot(ip)

	case OpMemorySize:
		in.Aux, ip = d.u32(ip)
		in.Result, ip = d.slot(ip)

	case OpMemoryGrow:
		in.Aux, ip = d.u32(ip)
		in.Result, ip = d.slot(ip)
		in.A, ip = d.slot(ip)

	case OpMemoryFill:
		in.Aux, ip = d.u32(ip)
		in.A, ip = d.slot(ip)
		in.B, ip = d.slot(ip)
		in.C, ip = d.slot(ip)

	case OpMemoryCopy:
		in.Aux, ip = d.u32(ip)
		in.Aux2, ip = d.u32(ip)
		in.A, ip = d.slot(ip)
		in.B, ip = d.slot(ip)
		in.C, ip = d.slot(ip)

	case OpMemoryInit:
		in.Aux, ip = d.u32(ip)
		in.Aux2, ip = d.u32(ip)
		in.A, ip = d.slot(ip)
		in.B, ip = d.slot(ip)
		in.C, ip = d.slot(ip)

	case OpDataDrop, OpElemDrop:
		in.Aux, ip = d.u32(ip)

	case OpTableGet:
		in.Aux, ip = d.u32(ip)
		in.Result, ip = d.slot(ip)
		in.A, ip = d.slot(ip)

	case OpTableSet:
		in.Aux, ip = d.u32(ip)
		in.A, ip = d.slot(ip)
		in.B, ip = d.slot(ip)

	case OpTableSize:
		in.Aux, ip = d.u32(ip)
		in.Result, ip = d.slot(ip)

	case OpTableGrow:
		in.Aux, ip = d.u32(ip)
		in.Result, ip = d.slot(ip)
		in.A, ip = d.slot(ip)
		in.B, ip = d.slot(ip)

	case OpTableFill:
		in.Aux, ip = d.u32(ip)
		in.A, ip = d.slot(ip)
		in.B, ip = d.slot(ip)
		in.C, ip = d.slot(ip)

	case OpTableCopy, OpTableInit:
		in.Aux, ip = d.u32(ip)
		in.Aux2, ip = d.u32(ip)
		in.A, ip = d.slot(ip)
		in.B, ip = d.slot(ip)
		in.C, ip = d.slot(ip)

	case OpRefNull:
		in.Result, ip = d.slot(ip)

	case OpRefIsNull:
		in.Result, ip = d.slot(ip)
		in.A, ip = d.slot(ip)

	case OpRefFunc:
		in.Aux, ip = d.u32(ip)
		in.Result, ip = d.slot(ip)
	}

	return in, ip
}
