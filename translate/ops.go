package translate

import (
	"math"

	"github.com/wippyai/wasm-runtime/ir"
	"github.com/wippyai/wasm-runtime/rvmerr"
	"github.com/wippyai/wasm-runtime/wasm"
)

// emitBr emits an unconditional branch with a placeholder offset and
// returns the patch for its Offset field.
func (b *builder) emitBr() branchPatch {
	instrStart := b.enc.Len()
	ir.Emit(b.enc, ir.Instr{Op: ir.OpBr, Offset: 0})
	return branchPatch{fieldPos: b.enc.Len() - 4, instrStart: instrStart}
}

// branchTo implements one exit from the current block to frame: write the
// branch's carried value (if frame's label carries one) into frame's
// resultSlot, then either jump straight to frame's already-known target
// (a loop head) or register a patch resolved once frame's end is reached.
func (b *builder) branchTo(frame *ctrlFrame) error {
	if frame.branchArity() == 1 {
		op := b.popMaybe()
		if err := b.materializeInto(frame.resultSlot, op); err != nil {
			return err
		}
	}
	if target, known := frame.branchTarget(); known {
		patch := b.emitBr()
		resolvePatches(b.enc, []branchPatch{patch}, target)
		return nil
	}
	frame.addPatch(b.emitBr())
	return nil
}

// translateInstr dispatches one decoded Wasm instruction into the
// function's in-progress IR encoding. ls is the function's control-frame
// stack; a nil error with b.unreachable left true after processing `end`
// of the outermost frame means the function fell off its end unreachably
// (every path already returned), which is valid Wasm and needs no extra
// terminator.
func (b *builder) translateInstr(mc *moduleCtx, ls *labelStack, instr wasm.Instruction) error {
	op := instr.Opcode

	// Structured control flow is handled whether or not the current block
	// is reachable (frame bookkeeping must stay correct either way);
	// everything else is skipped once b.unreachable, since none of it can
	// affect a live value.
	switch op {
	case wasm.OpBlock, wasm.OpLoop, wasm.OpIf:
		return b.translateBlockLike(mc, ls, instr)
	case wasm.OpElse:
		return b.translateElse(ls)
	case wasm.OpEnd:
		return b.translateEnd(ls)
	case wasm.OpBr:
		return b.translateBr(ls, instr)
	case wasm.OpBrIf:
		return b.translateBrIf(ls, instr)
	case wasm.OpBrTable:
		return b.translateBrTable(ls, instr)
	case wasm.OpReturn:
		return b.translateReturn(ls)
	case wasm.OpUnreachable:
		ir.Emit(b.enc, ir.Instr{Op: ir.OpTrap, Trap: ir.TrapUnreachable})
		b.markUnreachable()
		return nil
	case wasm.OpNop:
		return nil
	}

	if b.unreachable {
		return b.translateUnreachableStub(op, instr)
	}

	switch op {
	case wasm.OpDrop:
		b.popMaybe()
		return nil

	case wasm.OpSelect, wasm.OpSelectType:
		cond := b.popMaybe()
		elseVal := b.popMaybe()
		thenVal := b.popMaybe()
		dst, err := b.newTemp(thenVal.typ)
		if err != nil {
			return err
		}
		if err := b.emitSelectCmp(dst, thenVal.typ, cond, thenVal, elseVal); err != nil {
			return err
		}
		b.push(slotOperand(dst, thenVal.typ))
		return nil

	case wasm.OpLocalGet:
		idx := instr.Imm.(wasm.LocalImm).LocalIdx
		b.push(slotOperand(b.localSlot(idx), b.localType[idx]))
		return nil

	case wasm.OpLocalSet:
		idx := instr.Imm.(wasm.LocalImm).LocalIdx
		val := b.popMaybe()
		return b.materializeInto(b.localSlot(idx), val)

	case wasm.OpLocalTee:
		idx := instr.Imm.(wasm.LocalImm).LocalIdx
		val := b.popMaybe()
		if err := b.materializeInto(b.localSlot(idx), val); err != nil {
			return err
		}
		b.push(slotOperand(b.localSlot(idx), b.localType[idx]))
		return nil

	case wasm.OpGlobalGet:
		idx := instr.Imm.(wasm.GlobalImm).GlobalIdx
		typ := mc.globalTypes[idx]
		dst, err := b.newTemp(typ)
		if err != nil {
			return err
		}
		ir.Emit(b.enc, ir.Instr{Op: ir.OpGlobalGet, Aux: idx, Result: dst})
		b.push(slotOperand(dst, typ))
		return nil

	case wasm.OpGlobalSet:
		idx := instr.Imm.(wasm.GlobalImm).GlobalIdx
		val := b.popMaybe()
		slot, err := b.materialize(val)
		if err != nil {
			return err
		}
		ir.Emit(b.enc, ir.Instr{Op: ir.OpGlobalSet, Aux: idx, A: slot})
		return nil

	case wasm.OpI32Const:
		v := instr.Imm.(wasm.I32Imm).Value
		b.push(constOperand(uint64(uint32(v)), ir.I32))
		return nil
	case wasm.OpI64Const:
		v := instr.Imm.(wasm.I64Imm).Value
		b.push(constOperand(uint64(v), ir.I64))
		return nil
	case wasm.OpF32Const:
		v := instr.Imm.(wasm.F32Imm).Value
		b.push(constOperand(uint64(math.Float32bits(v)), ir.F32))
		return nil
	case wasm.OpF64Const:
		v := instr.Imm.(wasm.F64Imm).Value
		b.push(constOperand(math.Float64bits(v), ir.F64))
		return nil

	case wasm.OpCall:
		return b.translateCall(mc, instr, false)
	case wasm.OpCallIndirect:
		return b.translateCallIndirect(mc, instr, false)
	case wasm.OpReturnCall:
		return b.translateCall(mc, instr, true)
	case wasm.OpReturnCallIndirect:
		return b.translateCallIndirect(mc, instr, true)

	case wasm.OpMemorySize:
		memIdx := instr.Imm.(wasm.MemoryIdxImm).MemIdx
		dst, err := b.newTemp(ir.I32)
		if err != nil {
			return err
		}
		ir.Emit(b.enc, ir.Instr{Op: ir.OpMemorySize, Aux: memIdx, Result: dst})
		b.push(slotOperand(dst, ir.I32))
		return nil

	case wasm.OpMemoryGrow:
		memIdx := instr.Imm.(wasm.MemoryIdxImm).MemIdx
		delta := b.popMaybe()
		deltaSlot, err := b.materialize(delta)
		if err != nil {
			return err
		}
		dst, err := b.newTemp(ir.I32)
		if err != nil {
			return err
		}
		ir.Emit(b.enc, ir.Instr{Op: ir.OpMemoryGrow, Aux: memIdx, Result: dst, A: deltaSlot})
		b.push(slotOperand(dst, ir.I32))
		return nil

	case wasm.OpRefNull:
		dst, err := b.newTemp(ir.I64)
		if err != nil {
			return err
		}
		ir.Emit(b.enc, ir.Instr{Op: ir.OpRefNull, Result: dst})
		b.push(slotOperand(dst, ir.I64))
		return nil

	case wasm.OpRefIsNull:
		val := b.popMaybe()
		slot, err := b.materialize(val)
		if err != nil {
			return err
		}
		dst, err := b.newTemp(ir.I32)
		if err != nil {
			return err
		}
		ir.Emit(b.enc, ir.Instr{Op: ir.OpRefIsNull, Result: dst, A: slot})
		b.push(slotOperand(dst, ir.I32))
		return nil

	case wasm.OpRefFunc:
		idx := instr.Imm.(wasm.RefFuncImm).FuncIdx
		dst, err := b.newTemp(ir.I64)
		if err != nil {
			return err
		}
		ir.Emit(b.enc, ir.Instr{Op: ir.OpRefFunc, Aux: idx, Result: dst})
		b.push(slotOperand(dst, ir.I64))
		return nil

	case wasm.OpTableGet, wasm.OpTableSet:
		return b.translateTableGetSet(instr)

	case wasm.OpPrefixMisc:
		return b.translateMisc(instr)

	// i64.eqz needs a full 64-bit zero test; ir.Eqz (OpConvert) only ever
	// reads its operand's low 32 bits, which is right for i32.eqz but
	// would silently misclassify a 64-bit value like 0x1_0000_0000 as
	// zero. Routing it through the comparison machinery instead picks up
	// evalCmp's width-aware Eq, and keeps it eligible for branch fusion.
	case wasm.OpI64Eqz:
		lhs := b.popMaybe()
		b.push(cmpOperand(ir.Eq, lhs, constOperand(0, ir.I64)))
		return nil
	}

	if val, kind, ok := arithKindFor(op); ok {
		rhs := b.popMaybe()
		lhs := b.popMaybe()
		dst, err := b.newTemp(val)
		if err != nil {
			return err
		}
		if err := b.emitArithInto(dst, val, kind, lhs, rhs); err != nil {
			return err
		}
		b.push(slotOperand(dst, val))
		return nil
	}

	if _, kind, ok := cmpKindFor(op); ok {
		rhs := b.popMaybe()
		lhs := b.popMaybe()
		b.push(cmpOperand(kind, lhs, rhs))
		return nil
	}

	if val, kind, ok := unaryKindFor(op); ok {
		a := b.popMaybe()
		aSlot, err := b.materialize(a)
		if err != nil {
			return err
		}
		dst, err := b.newTemp(val)
		if err != nil {
			return err
		}
		ir.Emit(b.enc, ir.Instr{Op: ir.OpUnary, Val: val, Kind: uint8(kind), Result: dst, A: aSlot})
		b.push(slotOperand(dst, val))
		return nil
	}

	if kind, resTyp, ok := convKindFor(op); ok {
		a := b.popMaybe()
		aSlot, err := b.materialize(a)
		if err != nil {
			return err
		}
		dst, err := b.newTemp(resTyp)
		if err != nil {
			return err
		}
		ir.Emit(b.enc, ir.Instr{Op: ir.OpConvert, Kind: uint8(kind), Result: dst, A: aSlot})
		b.push(slotOperand(dst, resTyp))
		return nil
	}

	if val, width, signed, isLoad, isStore := memOpFor(op); isLoad || isStore {
		imm := instr.Imm.(wasm.MemoryImm)
		if isLoad {
			ptr := b.popMaybe()
			ptrSlot, err := b.materialize(ptr)
			if err != nil {
				return err
			}
			dst, err := b.newTemp(val)
			if err != nil {
				return err
			}
			ir.Emit(b.enc, ir.Instr{Op: ir.OpLoad, Val: val, Kind: ir.MemKind(width, signed), Shape: ir.ShapeSSS,
				Aux: imm.MemIdx, Offset: int32(imm.Offset), Result: dst, A: ptrSlot})
			b.push(slotOperand(dst, val))
			return nil
		}
		storeVal := b.popMaybe()
		ptr := b.popMaybe()
		valSlot, err := b.materialize(storeVal)
		if err != nil {
			return err
		}
		ptrSlot, err := b.materialize(ptr)
		if err != nil {
			return err
		}
		ir.Emit(b.enc, ir.Instr{Op: ir.OpStore, Val: val, Kind: ir.MemKind(width, false), Shape: ir.ShapeSSS,
			Aux: imm.MemIdx, Offset: int32(imm.Offset), A: ptrSlot, B: valSlot})
		return nil
	}

	return rvmerr.Unsupported(b.funcName, opUnsupportedDetail(op))
}

func opUnsupportedDetail(op byte) string {
	switch op {
	case wasm.OpPrefixSIMD:
		return "SIMD instructions are unsupported"
	case wasm.OpPrefixAtomic:
		return "atomic instructions are unsupported"
	default:
		return "unrecognized opcode"
	}
}

// translateUnreachableStub handles an instruction reached while translating
// dead code: it only needs to keep the virtual operand stack roughly
// balanced (so later popMaybe calls in the same dead stretch don't
// underflow past real values from before the unreachable point) — no IR is
// emitted, since none of it can execute. Stack-shape-affecting opcodes pop
// and push dummy operands; constants and gets just push one.
func (b *builder) translateUnreachableStub(op byte, instr wasm.Instruction) error {
	switch op {
	case wasm.OpLocalGet, wasm.OpGlobalGet, wasm.OpI32Const, wasm.OpI64Const,
		wasm.OpF32Const, wasm.OpF64Const, wasm.OpMemorySize, wasm.OpRefNull,
		wasm.OpRefFunc:
		b.push(constOperand(0, ir.I32))
	case wasm.OpLocalSet, wasm.OpGlobalSet, wasm.OpDrop, wasm.OpMemoryGrow,
		wasm.OpRefIsNull:
		b.popMaybe()
	case wasm.OpLocalTee, wasm.OpI64Eqz:
		b.popMaybe()
		b.push(constOperand(0, ir.I32))
	case wasm.OpSelect, wasm.OpSelectType:
		b.popMaybe()
		b.popMaybe()
		b.popMaybe()
		b.push(constOperand(0, ir.I32))
	case wasm.OpCall, wasm.OpCallIndirect, wasm.OpReturnCall, wasm.OpReturnCallIndirect:
		// Arity unknown without resolving the callee; dead code's stack
		// shape past this point is unconstrained by the Wasm spec anyway.
	default:
		if _, _, ok := arithKindFor(op); ok {
			b.popMaybe()
			b.popMaybe()
			b.push(constOperand(0, ir.I32))
		} else if _, _, ok := cmpKindFor(op); ok {
			b.popMaybe()
			b.popMaybe()
			b.push(constOperand(0, ir.I32))
		} else if _, _, ok := unaryKindFor(op); ok {
			b.popMaybe()
			b.push(constOperand(0, ir.I32))
		} else if _, _, ok := convKindFor(op); ok {
			b.popMaybe()
			b.push(constOperand(0, ir.I32))
		} else if _, _, _, isLoad, isStore := memOpFor(op); isLoad {
			b.popMaybe()
			b.push(constOperand(0, ir.I32))
		} else if isStore {
			b.popMaybe()
			b.popMaybe()
		}
	}
	return nil
}
