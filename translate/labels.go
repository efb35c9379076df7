package translate

import "github.com/wippyai/wasm-runtime/ir"

// branchPatch is one not-yet-resolved branch: fieldPos is the byte offset of
// the instruction's i32 Offset field (always the field's final 4 bytes,
// since every branching Op in ir/encode.go writes Offset last), instrStart
// is the byte offset the owning instruction itself starts at. The executor
// computes a branch target as instrStart+Offset (rvm/executor.go), so
// resolving a patch is just target-instrStart.
type branchPatch struct {
	fieldPos  int
	instrStart int
}

// frameKind distinguishes the three Wasm structured control constructs;
// `else` does not get its own frame, it mutates the enclosing `if` frame.
type frameKind uint8

const (
	frameBlock frameKind = iota
	frameLoop
	frameIf
)

// ctrlFrame is one entry of the translator's control-flow stack, mirroring
// the block/loop/if nesting of the Wasm validation algorithm closely enough
// to reuse its arity bookkeeping, without re-deriving full validation.
type ctrlFrame struct {
	kind frameKind

	hasResult bool
	resultTyp ir.ValType

	// resultSlot is the fixed slot every exit path from this frame (a
	// branch targeting it, or falling off its end) writes its result into
	// before leaving, when hasResult is true. Reading it back at the merge
	// point (the frame's end) avoids reconciling per-path SSA values: every
	// path already agrees on where the value lives.
	resultSlot ir.Slot

	// stackHeight is the virtual operand-stack height at frame entry; a
	// branch out of this frame must leave exactly that many values (plus
	// the frame's result, if unwinding normally) below it.
	stackHeight int

	// loopHead is the byte offset `br`/`br_if` inside a loop frame target;
	// meaningless for block/if frames (those only ever branch forward, to
	// their `end`).
	loopHead int

	// endPatches collects every branch that exits this frame by falling
	// through to (or jumping to) its `end`.
	endPatches []branchPatch

	// elsePatch is the single conditional branch `if` emits to skip the
	// then-arm; `else` resolves it to its own start, `end` resolves it (if
	// no `else` was seen) to the frame's end, same as any other exit.
	elsePatch branchPatch
	sawElse   bool
}

// labelStack is the translator's control-frame stack for one function.
type labelStack struct {
	frames []ctrlFrame
}

func (ls *labelStack) push(f ctrlFrame) { ls.frames = append(ls.frames, f) }

func (ls *labelStack) top() *ctrlFrame { return &ls.frames[len(ls.frames)-1] }

// at returns the frame `depth` levels from the top (0 = innermost), the
// same indexing br/br_if/br_table label indices use.
func (ls *labelStack) at(depth uint32) *ctrlFrame {
	return &ls.frames[len(ls.frames)-1-int(depth)]
}

func (ls *labelStack) pop() ctrlFrame {
	f := ls.frames[len(ls.frames)-1]
	ls.frames = ls.frames[:len(ls.frames)-1]
	return f
}

func (ls *labelStack) depth() int { return len(ls.frames) }

// addPatch registers a branch instruction's Offset field for later
// resolution once the frame's target address is known.
func (f *ctrlFrame) addPatch(p branchPatch) {
	f.endPatches = append(f.endPatches, p)
}

// resolvePatches back-patches every pending branch in ps to target.
func resolvePatches(enc *ir.Encoder, ps []branchPatch, target int) {
	for _, p := range ps {
		enc.Patch32(p.fieldPos, int32(target-p.instrStart))
	}
}

// branchTarget returns the byte address a `br`/`br_if` targeting f should
// jump to, if it is already known (always true for a loop, whose target is
// its own head) — forward targets (block/if ends) are resolved later via
// addPatch, so branchTarget only applies to loop frames.
func (f *ctrlFrame) branchTarget() (int, bool) {
	if f.kind == frameLoop {
		return f.loopHead, true
	}
	return 0, false
}

// branchArity is the number of values a branch to f carries: a loop's
// label is its entry (params, arity 0 beyond what validation already
// shaped), a block/if's label is its exit (the frame's result arity).
func (f *ctrlFrame) branchArity() int {
	if f.kind == frameLoop {
		return 0
	}
	if f.hasResult {
		return 1
	}
	return 0
}
