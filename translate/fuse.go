package translate

import "github.com/wippyai/wasm-runtime/ir"

// materialize forces op into a stack slot, emitting whatever instruction is
// needed to get it there. A slot operand is already there and costs
// nothing; a constant costs one copy; a deferred comparison costs one cmp.
// Everywhere a value is consumed by something that isn't itself fusable
// with a constant or a comparison (e.g. the non-immediate side of a binary
// op, a local.set source, a call argument), this is the entry point.
func (b *builder) materialize(op operand) (ir.Slot, error) {
	switch op.kind {
	case opSlot:
		return op.slot, nil
	case opConst:
		dst, err := b.newTemp(op.typ)
		if err != nil {
			return 0, err
		}
		return dst, b.emitCopyConstInto(dst, op)
	case opCmp:
		dst, err := b.newTemp(ir.I32)
		if err != nil {
			return 0, err
		}
		return dst, b.emitCmpInto(dst, op.lhs.typ, op.cmpKind, *op.lhs, *op.rhs)
	}
	panic("unreachable operand kind")
}

// materializeInto is like materialize but targets a caller-chosen slot
// (a local, for local.set/tee) instead of allocating a fresh temp — saves
// a copy when the source is itself unmaterialized.
func (b *builder) materializeInto(dst ir.Slot, op operand) error {
	switch op.kind {
	case opSlot:
		if op.slot == dst {
			return nil
		}
		return b.emitCopySlotInto(dst, op)
	case opConst:
		return b.emitCopyConstInto(dst, op)
	case opCmp:
		return b.emitCmpInto(dst, op.lhs.typ, op.cmpKind, *op.lhs, *op.rhs)
	}
	panic("unreachable operand kind")
}

func (b *builder) emitCopyConstInto(dst ir.Slot, op operand) error {
	c, err := b.constSlot(op.constVal)
	if err != nil {
		return err
	}
	cp := ir.OpCopy32
	if op.typ.Width64() {
		cp = ir.OpCopy64
	}
	ir.Emit(b.enc, ir.Instr{Op: cp, Result: dst, A: c})
	return nil
}

func (b *builder) emitCopySlotInto(dst ir.Slot, op operand) error {
	cp := ir.OpCopy32
	if op.typ.Width64() {
		cp = ir.OpCopy64
	}
	ir.Emit(b.enc, ir.Instr{Op: cp, Result: dst, A: op.slot})
	return nil
}

// emitArithInto emits a bin_arith instruction computing kind(lhs,rhs) into
// dst. Immediate operands are folded into _ssi/_sis shapes rather than
// materialized; commutative kinds canonicalize (const,stack) into
// (stack,const) so the _sis shape is never needed for them.
func (b *builder) emitArithInto(dst ir.Slot, val ir.ValType, kind ir.ArithKind, lhs, rhs operand) error {
	if lhs.kind == opConst && rhs.kind != opConst && kind.Commutative() {
		lhs, rhs = rhs, lhs
	}
	switch {
	case rhs.kind == opConst:
		aSlot, err := b.materialize(lhs)
		if err != nil {
			return err
		}
		ir.Emit(b.enc, ir.Instr{Op: ir.OpBinArith, Val: val, Kind: uint8(kind), Shape: ir.ShapeSSI, Result: dst, A: aSlot, ImmB: rhs.constVal})
		return nil
	case lhs.kind == opConst:
		bSlot, err := b.materialize(rhs)
		if err != nil {
			return err
		}
		ir.Emit(b.enc, ir.Instr{Op: ir.OpBinArith, Val: val, Kind: uint8(kind), Shape: ir.ShapeSIS, Result: dst, ImmA: lhs.constVal, B: bSlot})
		return nil
	default:
		aSlot, err := b.materialize(lhs)
		if err != nil {
			return err
		}
		bSlot, err := b.materialize(rhs)
		if err != nil {
			return err
		}
		ir.Emit(b.enc, ir.Instr{Op: ir.OpBinArith, Val: val, Kind: uint8(kind), Shape: ir.ShapeSSS, Result: dst, A: aSlot, B: bSlot})
		return nil
	}
}

// emitCmpInto is emitArithInto's counterpart for comparisons; OpCmp supports
// the same three shapes as OpBinArith.
func (b *builder) emitCmpInto(dst ir.Slot, val ir.ValType, kind ir.CmpKind, lhs, rhs operand) error {
	switch {
	case rhs.kind == opConst:
		aSlot, err := b.materialize(lhs)
		if err != nil {
			return err
		}
		ir.Emit(b.enc, ir.Instr{Op: ir.OpCmp, Val: val, Kind: uint8(kind), Shape: ir.ShapeSSI, Result: dst, A: aSlot, ImmB: rhs.constVal})
		return nil
	case lhs.kind == opConst:
		bSlot, err := b.materialize(rhs)
		if err != nil {
			return err
		}
		ir.Emit(b.enc, ir.Instr{Op: ir.OpCmp, Val: val, Kind: uint8(kind), Shape: ir.ShapeSIS, Result: dst, ImmA: lhs.constVal, B: bSlot})
		return nil
	default:
		aSlot, err := b.materialize(lhs)
		if err != nil {
			return err
		}
		bSlot, err := b.materialize(rhs)
		if err != nil {
			return err
		}
		ir.Emit(b.enc, ir.Instr{Op: ir.OpCmp, Val: val, Kind: uint8(kind), Shape: ir.ShapeSSS, Result: dst, A: aSlot, B: bSlot})
		return nil
	}
}

// asCondition reduces any i32 operand to a cmp operand testing truthiness,
// so branch/if/select translation always has a CmpKind to work with — a
// bare stack value v becomes the deferred comparison v != 0.
func asCondition(op operand) operand {
	if op.kind == opCmp {
		return op
	}
	return cmpOperand(ir.Ne, op, constOperand(0, ir.I32))
}

// emitCondBranch emits a branch_cmp testing cond (reduced via asCondition)
// and returns the patch for its Offset field, to be resolved once the
// branch's target address is known. takeWhenTrue false negates the tested
// kind, letting callers share one emitter for `br_if` (take when truthy)
// and `if` (skip the then-arm when falsy) without emitting an extra not.
//
// branch_cmp only encodes the _sss and _ssi shapes (no immediate lhs), so a
// constant condition lhs is materialized rather than folded.
func (b *builder) emitCondBranch(cond operand, takeWhenTrue bool) (branchPatch, error) {
	cmp := asCondition(cond)
	kind := cmp.cmpKind
	if !takeWhenTrue {
		kind = kind.Negate()
	}

	instrStart := b.enc.Len()
	lhsSlot, err := b.materialize(*cmp.lhs)
	if err != nil {
		return branchPatch{}, err
	}

	if cmp.rhs.kind == opConst {
		ir.Emit(b.enc, ir.Instr{Op: ir.OpBranchCmp, Val: cmp.lhs.typ, Kind: uint8(kind), Shape: ir.ShapeSSI, A: lhsSlot, ImmB: cmp.rhs.constVal, Offset: 0})
	} else {
		rhsSlot, err := b.materialize(*cmp.rhs)
		if err != nil {
			return branchPatch{}, err
		}
		ir.Emit(b.enc, ir.Instr{Op: ir.OpBranchCmp, Val: cmp.lhs.typ, Kind: uint8(kind), Shape: ir.ShapeSSS, A: lhsSlot, B: rhsSlot, Offset: 0})
	}
	return branchPatch{fieldPos: b.enc.Len() - 4, instrStart: instrStart}, nil
}

// emitSelectCmp emits a select_cmp instruction choosing between thenVal and
// elseVal on cond (reduced via asCondition) into dst. Unlike branch_cmp,
// select_cmp's encoding supports all three cmp shapes (_sss/_ssi/_sis), so a
// constant condition lhs stays unmaterialized.
func (b *builder) emitSelectCmp(dst ir.Slot, val ir.ValType, cond, thenVal, elseVal operand) error {
	cmp := asCondition(cond)

	thenSlot, err := b.materialize(thenVal)
	if err != nil {
		return err
	}
	elseSlot, err := b.materialize(elseVal)
	if err != nil {
		return err
	}

	switch {
	case cmp.rhs.kind == opConst:
		lhsSlot, err := b.materialize(*cmp.lhs)
		if err != nil {
			return err
		}
		ir.Emit(b.enc, ir.Instr{Op: ir.OpSelectCmp, Val: val, Kind: uint8(cmp.cmpKind), Shape: ir.ShapeSSI,
			Result: dst, A: thenSlot, C: elseSlot, B: lhsSlot, ImmB: cmp.rhs.constVal})
	case cmp.lhs.kind == opConst:
		rhsSlot, err := b.materialize(*cmp.rhs)
		if err != nil {
			return err
		}
		ir.Emit(b.enc, ir.Instr{Op: ir.OpSelectCmp, Val: val, Kind: uint8(cmp.cmpKind), Shape: ir.ShapeSIS,
			Result: dst, A: thenSlot, C: elseSlot, ImmA: cmp.lhs.constVal, D: rhsSlot})
	default:
		lhsSlot, err := b.materialize(*cmp.lhs)
		if err != nil {
			return err
		}
		rhsSlot, err := b.materialize(*cmp.rhs)
		if err != nil {
			return err
		}
		ir.Emit(b.enc, ir.Instr{Op: ir.OpSelectCmp, Val: val, Kind: uint8(cmp.cmpKind), Shape: ir.ShapeSSS,
			Result: dst, A: thenSlot, C: elseSlot, B: lhsSlot, D: rhsSlot})
	}
	return nil
}
