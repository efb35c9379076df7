package translate

import (
	"github.com/wippyai/wasm-runtime/ir"
	"github.com/wippyai/wasm-runtime/rvmerr"
	"github.com/wippyai/wasm-runtime/wasm"
)

// translateBlockLike pushes a new control frame for block/loop/if. Wasm 1.0
// has no block parameters, so entering one never needs to move operands —
// the frame just remembers the stack height to restore on exit and, if its
// label carries a result, reserves the slot every exit path funnels it
// through.
func (b *builder) translateBlockLike(mc *moduleCtx, ls *labelStack, instr wasm.Instruction) error {
	bt := instr.Imm.(wasm.BlockImm).Type
	hasResult, resultTyp, err := mc.blockType(b.funcName, bt)
	if err != nil {
		return err
	}

	var resultSlot ir.Slot
	if hasResult {
		resultSlot, err = b.newTemp(resultTyp)
		if err != nil {
			return err
		}
	}

	frame := ctrlFrame{
		hasResult:   hasResult,
		resultTyp:   resultTyp,
		resultSlot:  resultSlot,
		stackHeight: b.stackHeight(),
	}

	switch instr.Opcode {
	case wasm.OpLoop:
		frame.kind = frameLoop
		frame.loopHead = b.enc.Len()
	case wasm.OpIf:
		frame.kind = frameIf
		if b.unreachable {
			// Inside dead code an `if`'s condition was never really
			// pushed; popMaybe already keeps the virtual stack from
			// underflowing, so just discard it like any other consumer.
			b.popMaybe()
		} else {
			cond := b.popMaybe()
			patch, err := b.emitCondBranch(cond, false)
			if err != nil {
				return err
			}
			frame.elsePatch = patch
		}
	default:
		frame.kind = frameBlock
	}

	ls.push(frame)
	return nil
}

// translateElse closes the `if` frame's then-arm and opens its else-arm.
func (b *builder) translateElse(ls *labelStack) error {
	f := ls.top()
	if f.kind != frameIf {
		return rvmerr.Unsupported(b.funcName, "else without matching if")
	}

	if !b.unreachable {
		if f.hasResult {
			val := b.popMaybe()
			if err := b.materializeInto(f.resultSlot, val); err != nil {
				return err
			}
		}
		f.addPatch(b.emitBr())
	}

	resolvePatches(b.enc, []branchPatch{f.elsePatch}, b.enc.Len())
	f.sawElse = true
	b.unreachable = false
	b.truncateStack(f.stackHeight)
	return nil
}

// translateEnd closes the innermost frame, resolving every branch that
// targeted it to the merge point (here, for a block/if/loop; the function's
// own return sequence, for the outermost frame) and — if reachable —
// writing the frame's fallthrough value into its resultSlot the same way
// every branch out of it already did.
func (b *builder) translateEnd(ls *labelStack) error {
	f := ls.pop()

	if f.kind == frameIf && !f.sawElse {
		resolvePatches(b.enc, []branchPatch{f.elsePatch}, b.enc.Len())
	}

	fallthroughReachable := !b.unreachable
	if fallthroughReachable && f.hasResult {
		val := b.popMaybe()
		if err := b.materializeInto(f.resultSlot, val); err != nil {
			return err
		}
	}

	if ls.depth() == 0 {
		// Outermost frame: this end is the function's own end. Every
		// branch/return that targeted it, plus the fallthrough path,
		// land here and read resultSlot uniformly, so one return
		// instruction at this exact point serves all of them.
		target := b.enc.Len()
		resolvePatches(b.enc, f.endPatches, target)
		if f.hasResult {
			op := ir.OpReturnSlot32
			if f.resultTyp.Width64() {
				op = ir.OpReturnSlot64
			}
			ir.Emit(b.enc, ir.Instr{Op: op, A: f.resultSlot})
		} else {
			ir.Emit(b.enc, ir.Instr{Op: ir.OpReturn})
		}
		b.unreachable = true
		return nil
	}

	target := b.enc.Len()
	resolvePatches(b.enc, f.endPatches, target)

	b.truncateStack(f.stackHeight)
	if f.hasResult {
		b.push(slotOperand(f.resultSlot, f.resultTyp))
	}
	b.unreachable = false
	return nil
}

func (b *builder) translateBr(ls *labelStack, instr wasm.Instruction) error {
	idx := instr.Imm.(wasm.BranchImm).LabelIdx
	if b.unreachable {
		return nil
	}
	if err := b.branchTo(ls.at(idx)); err != nil {
		return err
	}
	b.markUnreachable()
	return nil
}

// translateBrIf's carried value (if the label has one) is written into the
// target frame's resultSlot unconditionally before the conditional branch:
// on the taken path that's exactly what a branch needs, and on the
// fallthrough path nothing reads that slot (the fallthrough keeps using the
// value still sitting on the virtual stack), so the write is harmless
// either way and no separate fused "conditional move" is needed.
func (b *builder) translateBrIf(ls *labelStack, instr wasm.Instruction) error {
	if b.unreachable {
		return nil
	}
	idx := instr.Imm.(wasm.BranchImm).LabelIdx
	frame := ls.at(idx)

	cond := b.popMaybe()
	if frame.branchArity() == 1 {
		val := b.peek()
		if err := b.materializeInto(frame.resultSlot, val); err != nil {
			return err
		}
	}

	patch, err := b.emitCondBranch(cond, true)
	if err != nil {
		return err
	}
	if target, known := frame.branchTarget(); known {
		resolvePatches(b.enc, []branchPatch{patch}, target)
	} else {
		frame.addPatch(patch)
	}
	return nil
}

func (b *builder) translateBrTable(ls *labelStack, instr wasm.Instruction) error {
	if b.unreachable {
		return nil
	}
	imm := instr.Imm.(wasm.BrTableImm)

	labels := append(append([]uint32{}, imm.Labels...), imm.Default)
	frames := make([]*ctrlFrame, len(labels))
	for i, l := range labels {
		frames[i] = ls.at(l)
	}

	// A br_table that carries a value writes it into every target's
	// resultSlot before the single dynamic jump, the same convention
	// branchTo uses, so no BrTableTarget.Span is ever emitted. The value is
	// written while it and the index are still on the virtual stack, so
	// temps allocated for it cannot land on the index's slot.
	carries := frames[0].branchArity() == 1
	if carries {
		val := b.stack[len(b.stack)-2]
		for _, f := range frames {
			if err := b.materializeInto(f.resultSlot, val); err != nil {
				return err
			}
		}
	}

	idx := b.popMaybe()
	idxSlot, err := b.materialize(idx)
	if err != nil {
		return err
	}
	if carries {
		b.popMaybe()
	}

	instrStart := b.enc.Len()
	targets := make([]ir.BrTableTarget, len(frames))
	forward := make([]int, 0, len(frames))
	for i, f := range frames {
		if target, known := f.branchTarget(); known {
			targets[i] = ir.BrTableTarget{Offset: int32(target - instrStart)}
		} else {
			forward = append(forward, i)
		}
	}

	ir.Emit(b.enc, ir.Instr{Op: ir.OpBrTable, A: idxSlot, Targets: targets})

	for _, i := range forward {
		fieldPos := instrStart + 7 + i*5 + 1
		frames[i].addPatch(branchPatch{fieldPos: fieldPos, instrStart: instrStart})
	}

	b.markUnreachable()
	return nil
}

func (b *builder) translateReturn(ls *labelStack) error {
	if b.unreachable {
		return nil
	}
	outer := ls.at(uint32(ls.depth() - 1))
	if err := b.branchTo(outer); err != nil {
		return err
	}
	b.markUnreachable()
	return nil
}

// marshalArgs moves n operands (already on the virtual stack, in call
// order) into a fresh contiguous slot span — the shape invoke() (rvm's
// shared call tail) requires argBase's span to already have.
func (b *builder) marshalArgs(n int) (ir.SlotSpan, error) {
	args := make([]operand, n)
	for i := n - 1; i >= 0; i-- {
		args[i] = b.popMaybe()
	}
	if n == 0 {
		// A 0-arg call still needs a base slot: afterCall anchors the
		// result (if any) there, and rolls the allocator back to
		// whatever depth this reservation started at either way.
		base, err := b.newTemp(ir.I32)
		if err != nil {
			return ir.SlotSpan{}, err
		}
		return ir.SlotSpan{Base: base, Len: 0}, nil
	}
	base, err := b.newTemp(args[0].typ)
	if err != nil {
		return ir.SlotSpan{}, err
	}
	for i, a := range args {
		dst := base
		if i > 0 {
			dst, err = b.newTemp(a.typ)
			if err != nil {
				return ir.SlotSpan{}, err
			}
		}
		if err := b.materializeInto(dst, a); err != nil {
			return ir.SlotSpan{}, err
		}
	}
	return ir.SlotSpan{Base: base, Len: uint16(n)}, nil
}

// afterCall rolls the slot allocator back to just above the call's argument
// span and, if the callee returns a value, pushes that span's base slot
// (invoke() always writes a single result back into resultBase, which
// equals argBase for a non-tail call) as the call's result operand.
func (b *builder) afterCall(span ir.SlotSpan, resultTyp ir.ValType, hasResult bool) {
	b.depth = int(span.Base) - b.numLocals
	if hasResult {
		b.depth++
		b.push(slotOperand(span.Base, resultTyp))
	}
	if b.depth > b.maxDepth {
		b.maxDepth = b.depth
	}
}

func (b *builder) translateCall(mc *moduleCtx, instr wasm.Instruction, tail bool) error {
	idx := instr.Imm.(wasm.CallImm).FuncIdx
	n := mc.funcParamCount(idx)

	span, err := b.marshalArgs(n)
	if err != nil {
		return err
	}

	op := ir.OpCallInternal
	if mc.funcIsImport(idx) {
		op = ir.OpCallImported
	}
	if tail {
		if op == ir.OpCallImported {
			op = ir.OpReturnCallImported
		} else {
			op = ir.OpReturnCallInternal
		}
	}
	ir.Emit(b.enc, ir.Instr{Op: op, Span: span, Aux: idx})

	if tail {
		b.markUnreachable()
		return nil
	}
	resultTyp, hasResult := mc.funcResultType(idx)
	b.afterCall(span, resultTyp, hasResult)
	return nil
}

func (b *builder) translateCallIndirect(mc *moduleCtx, instr wasm.Instruction, tail bool) error {
	imm := instr.Imm.(wasm.CallIndirectImm)
	ft := mc.moduleTypes[imm.TypeIdx]
	handle := mc.typeHandles[imm.TypeIdx]

	elemIdx := b.popMaybe()
	elemSlot, err := b.materialize(elemIdx)
	if err != nil {
		return err
	}

	span, err := b.marshalArgs(len(ft.Params))
	if err != nil {
		return err
	}

	op := ir.OpCallIndirect
	if tail {
		op = ir.OpReturnCallIndirect
	}
	ir.Emit(b.enc, ir.Instr{Op: op, Span: span, A: elemSlot, Aux: uint32(handle), Aux2: imm.TableIdx})

	if tail {
		b.markUnreachable()
		return nil
	}
	hasResult := len(ft.Results) > 0
	var resultTyp ir.ValType
	if hasResult {
		resultTyp = wasmValToIR(ft.Results[0])
	}
	b.afterCall(span, resultTyp, hasResult)
	return nil
}

func (b *builder) translateTableGetSet(instr wasm.Instruction) error {
	idx := instr.Imm.(wasm.TableImm).TableIdx
	if instr.Opcode == wasm.OpTableGet {
		elemIdx := b.popMaybe()
		slot, err := b.materialize(elemIdx)
		if err != nil {
			return err
		}
		dst, err := b.newTemp(ir.I64)
		if err != nil {
			return err
		}
		ir.Emit(b.enc, ir.Instr{Op: ir.OpTableGet, Aux: idx, Result: dst, A: slot})
		b.push(slotOperand(dst, ir.I64))
		return nil
	}
	// Both operands are materialized while still on the virtual stack:
	// popping first would free the ref's temp slot, and a constant index
	// materialized afterwards would be copied into that same slot.
	ref := b.stack[len(b.stack)-1]
	elemIdx := b.stack[len(b.stack)-2]
	refSlot, err := b.materialize(ref)
	if err != nil {
		return err
	}
	idxSlot, err := b.materialize(elemIdx)
	if err != nil {
		return err
	}
	b.popMaybe()
	b.popMaybe()
	ir.Emit(b.enc, ir.Instr{Op: ir.OpTableSet, Aux: idx, A: idxSlot, B: refSlot})
	return nil
}

// translateMisc handles the 0xFC-prefixed sub-opcodes: saturating
// truncation (a plain convert), bulk memory, and bulk table operations.
func (b *builder) translateMisc(instr wasm.Instruction) error {
	imm := instr.Imm.(wasm.MiscImm)

	if kind, resTyp, ok := truncSatConvKindFor(imm.SubOpcode); ok {
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

	switch imm.SubOpcode {
	case wasm.MiscMemoryInit:
		dataIdx, memIdx := imm.Operands[0], imm.Operands[1]
		n, src, dst := b.popMaybe(), b.popMaybe(), b.popMaybe()
		dSlot, sSlot, nSlot, err := b.materialize3(dst, src, n)
		if err != nil {
			return err
		}
		ir.Emit(b.enc, ir.Instr{Op: ir.OpMemoryInit, Aux: memIdx, Aux2: dataIdx, A: dSlot, B: sSlot, C: nSlot})
		return nil

	case wasm.MiscDataDrop:
		ir.Emit(b.enc, ir.Instr{Op: ir.OpDataDrop, Aux: imm.Operands[0]})
		return nil

	case wasm.MiscMemoryCopy:
		dstMem, srcMem := imm.Operands[0], imm.Operands[1]
		n, src, dst := b.popMaybe(), b.popMaybe(), b.popMaybe()
		dSlot, sSlot, nSlot, err := b.materialize3(dst, src, n)
		if err != nil {
			return err
		}
		ir.Emit(b.enc, ir.Instr{Op: ir.OpMemoryCopy, Aux: dstMem, Aux2: srcMem, A: dSlot, B: sSlot, C: nSlot})
		return nil

	case wasm.MiscMemoryFill:
		memIdx := imm.Operands[0]
		n, val, dst := b.popMaybe(), b.popMaybe(), b.popMaybe()
		dSlot, vSlot, nSlot, err := b.materialize3(dst, val, n)
		if err != nil {
			return err
		}
		ir.Emit(b.enc, ir.Instr{Op: ir.OpMemoryFill, Aux: memIdx, A: dSlot, B: vSlot, C: nSlot})
		return nil

	case wasm.MiscTableInit:
		elemIdx, tableIdx := imm.Operands[0], imm.Operands[1]
		n, src, dst := b.popMaybe(), b.popMaybe(), b.popMaybe()
		dSlot, sSlot, nSlot, err := b.materialize3(dst, src, n)
		if err != nil {
			return err
		}
		ir.Emit(b.enc, ir.Instr{Op: ir.OpTableInit, Aux: tableIdx, Aux2: elemIdx, A: dSlot, B: sSlot, C: nSlot})
		return nil

	case wasm.MiscElemDrop:
		ir.Emit(b.enc, ir.Instr{Op: ir.OpElemDrop, Aux: imm.Operands[0]})
		return nil

	case wasm.MiscTableCopy:
		dstTbl, srcTbl := imm.Operands[0], imm.Operands[1]
		n, src, dst := b.popMaybe(), b.popMaybe(), b.popMaybe()
		dSlot, sSlot, nSlot, err := b.materialize3(dst, src, n)
		if err != nil {
			return err
		}
		ir.Emit(b.enc, ir.Instr{Op: ir.OpTableCopy, Aux: dstTbl, Aux2: srcTbl, A: dSlot, B: sSlot, C: nSlot})
		return nil

	case wasm.MiscTableGrow:
		tblIdx := imm.Operands[0]
		n, init := b.popMaybe(), b.popMaybe()
		initSlot, nSlot, err := b.materialize2(init, n)
		if err != nil {
			return err
		}
		dst, err := b.newTemp(ir.I32)
		if err != nil {
			return err
		}
		ir.Emit(b.enc, ir.Instr{Op: ir.OpTableGrow, Aux: tblIdx, Result: dst, A: initSlot, B: nSlot})
		b.push(slotOperand(dst, ir.I32))
		return nil

	case wasm.MiscTableSize:
		tblIdx := imm.Operands[0]
		dst, err := b.newTemp(ir.I32)
		if err != nil {
			return err
		}
		ir.Emit(b.enc, ir.Instr{Op: ir.OpTableSize, Aux: tblIdx, Result: dst})
		b.push(slotOperand(dst, ir.I32))
		return nil

	case wasm.MiscTableFill:
		tblIdx := imm.Operands[0]
		n, val, idx := b.popMaybe(), b.popMaybe(), b.popMaybe()
		idxSlot, valSlot, nSlot, err := b.materialize3(idx, val, n)
		if err != nil {
			return err
		}
		ir.Emit(b.enc, ir.Instr{Op: ir.OpTableFill, Aux: tblIdx, A: idxSlot, B: valSlot, C: nSlot})
		return nil
	}

	return rvmerr.Unsupported(b.funcName, "unsupported 0xFC sub-opcode")
}

func (b *builder) materialize2(x, y operand) (ir.Slot, ir.Slot, error) {
	xs, err := b.materialize(x)
	if err != nil {
		return 0, 0, err
	}
	ys, err := b.materialize(y)
	if err != nil {
		return 0, 0, err
	}
	return xs, ys, nil
}

func (b *builder) materialize3(x, y, z operand) (ir.Slot, ir.Slot, ir.Slot, error) {
	xs, ys, err := b.materialize2(x, y)
	if err != nil {
		return 0, 0, 0, err
	}
	zs, err := b.materialize(z)
	if err != nil {
		return 0, 0, 0, err
	}
	return xs, ys, zs, nil
}
