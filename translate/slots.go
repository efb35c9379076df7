package translate

import (
	"github.com/wippyai/wasm-runtime/ir"
	"github.com/wippyai/wasm-runtime/rvmerr"
)

// maxSlots bounds a single function's frame size; translation of a function
// that would need more slots than this aborts with rvmerr.TooManySlots
// rather than emitting a Slot that silently wraps (spec.md §7).
const maxSlots = 1 << 15

// maxConsts bounds a function's constant pool for the same reason
// (ir.Slot's negative half only addresses 1<<15 entries).
const maxConsts = 1 << 15

// builder holds one function's translation state: its encoder, slot
// allocator, constant pool, and virtual operand stack. Locals (params plus
// declared locals) occupy the low, fixed slots; everything above them is a
// LIFO region of temporaries the allocator hands out and reclaims exactly
// like the Wasm operand stack it mirrors.
type builder struct {
	funcName string

	enc *ir.Encoder

	numLocals int
	localType []ir.ValType

	constIndex map[uint64]int
	consts     []uint64

	depth    int // temps currently live, above numLocals
	maxDepth int

	stack []operand

	// unreachable marks that translation has passed a point (unreachable,
	// br, br_table, return) from which the rest of the current frame can
	// never execute. Wasm's validation algorithm lets unreachable code be
	// arbitrarily stack-polymorphic; rather than re-deriving that typing,
	// popMaybe synthesizes dummy operands once this is set, since none of
	// the emitted instructions can run anyway.
	unreachable bool
}

func newBuilder(funcName string, localTypes []ir.ValType) *builder {
	return &builder{
		funcName:   funcName,
		enc:        ir.NewEncoder(),
		numLocals:  len(localTypes),
		localType:  localTypes,
		constIndex: make(map[uint64]int),
	}
}

// frameSize is numLocals plus the deepest temp region reached.
func (b *builder) frameSize() int { return b.numLocals + b.maxDepth }

func (b *builder) localSlot(idx uint32) ir.Slot { return ir.Slot(idx) }

// constSlot interns v in the constant pool (deduplicated by raw bit
// pattern) and returns the negative Slot addressing it.
func (b *builder) constSlot(v uint64) (ir.Slot, error) {
	if i, ok := b.constIndex[v]; ok {
		return ir.ConstSlot(i), nil
	}
	if len(b.consts) >= maxConsts {
		return 0, rvmerr.TooManyConstants(b.funcName, len(b.consts)+1)
	}
	i := len(b.consts)
	b.consts = append(b.consts, v)
	b.constIndex[v] = i
	return ir.ConstSlot(i), nil
}

// newTemp allocates the next free temporary slot for typ.
func (b *builder) newTemp(typ ir.ValType) (ir.Slot, error) {
	if b.numLocals+b.depth >= maxSlots {
		return 0, rvmerr.TooManySlots(b.funcName, b.numLocals+b.depth+1)
	}
	s := ir.Slot(b.numLocals + b.depth)
	b.depth++
	if b.depth > b.maxDepth {
		b.maxDepth = b.depth
	}
	return s, nil
}

// push records op as the new top of the virtual operand stack.
func (b *builder) push(op operand) { b.stack = append(b.stack, op) }

// pop removes and returns the top operand, reclaiming its temp slot (if it
// occupied one) so the next newTemp reuses it — the same push/pop
// discipline the Wasm operand stack itself follows.
func (b *builder) pop() operand {
	top := b.stack[len(b.stack)-1]
	b.stack = b.stack[:len(b.stack)-1]
	if top.kind == opSlot && int(top.slot) == b.numLocals+b.depth-1 {
		b.depth--
	}
	return top
}

// peek returns the top operand without popping it.
func (b *builder) peek() operand { return b.stack[len(b.stack)-1] }

// stackHeight reports the number of live virtual-stack values, used by
// control frames to reset the stack on block/loop/if entry and exit.
func (b *builder) stackHeight() int { return len(b.stack) }

// truncateStack drops the stack back to height n, reclaiming any temps it
// discards — used when a branch or block exit discards values below the
// block's result arity.
func (b *builder) truncateStack(n int) {
	for len(b.stack) > n {
		b.pop()
	}
}

// popMaybe is pop, except in unreachable code it tolerates an empty stack by
// synthesizing a dummy i32 zero operand instead of panicking on underflow.
// Wasm's validator allows unreachable code to be stack-polymorphic (it can
// pop values of any type that were never pushed); since none of the
// instructions translated here will ever execute, the exact value and type
// of the synthesized operand don't matter.
func (b *builder) popMaybe() operand {
	if len(b.stack) == 0 {
		if !b.unreachable {
			panic("operand stack underflow in reachable code")
		}
		return constOperand(0, ir.I32)
	}
	return b.pop()
}

// markUnreachable marks the rest of the current frame as dead code.
func (b *builder) markUnreachable() { b.unreachable = true }
