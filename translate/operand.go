package translate

import "github.com/wippyai/wasm-runtime/ir"

// operand is one value on the translator's simulated Wasm operand stack.
// Most operands already live in a stack slot (a local, or a materialized
// temporary); a constant stays unmaterialized until something forces it
// into a slot, and a comparison stays unmaterialized until something other
// than a branch/select consumes it — this lets branch_cmp/select_cmp fuse
// the compare into the consuming instruction instead of always emitting a
// separate cmp first (spec.md §4.3).
type operand struct {
	kind operandKind
	typ  ir.ValType

	slot     ir.Slot // kind == opSlot
	constVal uint64  // kind == opConst

	// kind == opCmp: the deferred comparison's operands and kind.
	cmpKind ir.CmpKind
	lhs     *operand
	rhs     *operand
}

type operandKind uint8

const (
	opSlot operandKind = iota
	opConst
	opCmp
)

func slotOperand(s ir.Slot, typ ir.ValType) operand {
	return operand{kind: opSlot, slot: s, typ: typ}
}

func constOperand(v uint64, typ ir.ValType) operand {
	return operand{kind: opConst, constVal: v, typ: typ}
}

func cmpOperand(kind ir.CmpKind, lhs, rhs operand) operand {
	return operand{kind: opCmp, typ: ir.I32, cmpKind: kind, lhs: &lhs, rhs: &rhs}
}
