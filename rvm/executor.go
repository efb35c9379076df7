package rvm

import (
	"github.com/wippyai/wasm-runtime/ir"
	"github.com/wippyai/wasm-runtime/rvmerr"
	"github.com/wippyai/wasm-runtime/store"
)

// Outcome classifies why Run/Resume stopped (spec.md §5's four-way split).
type Outcome uint8

const (
	NormalReturn Outcome = iota
	HostCall
	Trap
	OutOfFuel
)

// Done is the result of one dispatch-loop stretch: either the entry
// function returned, fuel ran out, a trap fired, or control has been
// handed to the embedder for a host call (and Resume continues it).
type Done struct {
	Outcome Outcome
	Trap    ir.TrapCode
	HostRef uint32
	// Results carries the entry function's return values on NormalReturn,
	// or the host call's argument values on HostCall.
	Results []uint64
}

// Executor runs translated IR against a store.Instance. One Executor may
// run many calls sequentially (Run resets its stack/frame state each time)
// but is not safe for concurrent use — spec.md §5's "one goroutine per
// Executor" model, mirrored from the teacher's single-threaded
// per-invocation wazero api.Function calling convention.
type Executor struct {
	stack  *Stack
	frames *Frames
	cache  store.Cache
	cfg    Config
	fuel   uint64

	// pendingResultBase/pendingResultLen locate where Resume should write a
	// host call's results once Run returned Done{HostCall}.
	pendingResultBase int
	pendingResultLen  int

	// refs interns store.FuncRef values behind small integer handles so the
	// value stack (a []uint64) can carry funcrefs; handle 0 is the null
	// funcref. Intentionally not reset per Run — a funcref a guest returns
	// to the embedder may be passed back into a later call.
	refs []store.FuncRef
}

// NewExecutor allocates an Executor sized per cfg's limits.
func NewExecutor(cfg Config) *Executor {
	return &Executor{
		stack:  NewStack(cfg.Limits.MaxStackSlots),
		frames: NewFrames(cfg.Limits.MaxCallDepth),
		cfg:    cfg,
	}
}

// Run invokes funcIdx in inst with args, starting a fresh call chain.
func (ex *Executor) Run(inst *store.Instance, funcIdx uint32, args []uint64) (Done, error) {
	fn := inst.Func(funcIdx)
	if fn == nil {
		return Done{}, rvmerr.New(rvmerr.PhaseExecute, rvmerr.KindTrap).
			Detail("function index out of range").Build()
	}
	if fn.IsHost {
		return Done{Outcome: HostCall, HostRef: fn.HostRef, Results: args}, nil
	}

	ex.stack = NewStack(ex.cfg.Limits.MaxStackSlots)
	ex.frames = NewFrames(ex.cfg.Limits.MaxCallDepth)
	ex.fuel = ex.cfg.FuelLimit
	ex.cache.Refresh(inst)

	base := 0
	ex.stack.Reserve(base + fn.FrameSize)
	for i, v := range args {
		ex.stack.Set(base+i, v)
	}
	ex.frames.Push(Frame{Func: fn, Inst: inst, IP: 0, Base: base, ResultBase: base})

	return ex.dispatch()
}

// Resume continues execution after an embedder has serviced a Done{HostCall}
// outcome, writing results back into the call's reserved result span.
func (ex *Executor) Resume(results []uint64) (Done, error) {
	for i := 0; i < ex.pendingResultLen && i < len(results); i++ {
		ex.stack.Set(ex.pendingResultBase+i, results[i])
	}
	return ex.dispatch()
}

func (ex *Executor) trapDone(code ir.TrapCode) Done {
	return Done{Outcome: Trap, Trap: code}
}

// dispatch is the linear-sweep loop: decode one instruction from the top
// frame, act on it, repeat. Control-flow ops adjust fr.IP directly; data and
// arithmetic ops fall through to the loop's top. Go's switch compiles to a
// jump table for a dense, small int-keyed case set like Op, giving the
// "switch-threaded" dispatch spec.md §9 calls out as the only portable
// choice absent guaranteed tail calls.
func (ex *Executor) dispatch() (Done, error) {
	for {
		fr := ex.frames.Top()
		dec := ir.NewDecoder(fr.Func.Code)
		start := fr.IP
		in, next := dec.Decode(start)
		fr.IP = next

		switch in.Op {
		case ir.OpTrap:
			return ex.trapDone(in.Trap), nil

		case ir.OpConsumeFuel:
			if ex.cfg.FuelLimit != 0 {
				if consumeFuel(&ex.fuel, ex.cfg.FuelCosts.Base*uint64(in.Aux)) {
					return Done{Outcome: OutOfFuel}, nil
				}
			}

		case ir.OpBr:
			fr.IP = start + int(in.Offset)

		case ir.OpBranchCmp:
			lhs := ex.stack.Value(fr.Base, fr.Func.Consts, in.A)
			var rhs uint64
			if in.Shape == ir.ShapeSSI {
				rhs = in.ImmB
			} else {
				rhs = ex.stack.Value(fr.Base, fr.Func.Consts, in.B)
			}
			if evalCmp(in.Val, in.CmpKind(), lhs, rhs) != 0 {
				fr.IP = start + int(in.Offset)
			}

		case ir.OpBrTable:
			idx := ex.stack.Value(fr.Base, fr.Func.Consts, in.A)
			i := int(uint32(idx))
			if i >= len(in.Targets) {
				i = len(in.Targets) - 1
			}
			target := in.Targets[i]
			// Target spans for multi-value branch results are not produced
			// by the translator today (Wasm 1.0 block types carry at most
			// one result); a non-empty span here would need a source slot
			// BrTableTarget does not carry, so it is intentionally ignored.
			fr.IP = start + int(target.Offset)

		case ir.OpReturn, ir.OpReturnSlot32, ir.OpReturnSlot64:
			if done, stop := ex.handleReturn(fr, in); stop {
				return done, nil
			}

		case ir.OpCopy, ir.OpCopy32, ir.OpCopy64:
			v := ex.stack.Value(fr.Base, fr.Func.Consts, in.A)
			ex.stack.SetValue(fr.Base, in.Result, v)

		case ir.OpCopy2:
			v1 := ex.stack.Value(fr.Base, fr.Func.Consts, in.A)
			v2 := ex.stack.Value(fr.Base, fr.Func.Consts, in.C)
			ex.stack.SetValue(fr.Base, in.Result, v1)
			ex.stack.SetValue(fr.Base, in.D, v2)

		case ir.OpCopySpan, ir.OpCopySpanNonOverlapping:
			dstBase := fr.Base + int(in.Span.Base)
			srcBase := fr.Base + int(in.A)
			ex.stack.CopyWithin(dstBase, srcBase, int(in.Span.Len))

		case ir.OpCallInternal, ir.OpCallImported:
			if done, stop := ex.call(fr, in, fr.Inst, false); stop {
				return done, nil
			}
		case ir.OpCallIndirect:
			if done, stop := ex.callIndirect(fr, in, false); stop {
				return done, nil
			}
		case ir.OpReturnCallInternal, ir.OpReturnCallImported:
			if done, stop := ex.call(fr, in, fr.Inst, true); stop {
				return done, nil
			}
		case ir.OpReturnCallIndirect:
			if done, stop := ex.callIndirect(fr, in, true); stop {
				return done, nil
			}

		case ir.OpBinArith:
			lhs := ex.stack.Value(fr.Base, fr.Func.Consts, in.A)
			var rhs uint64
			switch in.Shape {
			case ir.ShapeSSI:
				rhs = in.ImmB
			case ir.ShapeSIS:
				lhs, rhs = in.ImmA, ex.stack.Value(fr.Base, fr.Func.Consts, in.B)
			default:
				rhs = ex.stack.Value(fr.Base, fr.Func.Consts, in.B)
			}
			res, trap := evalBinArith(in.Val, in.ArithKind(), lhs, rhs)
			if trap != ir.TrapNone {
				return ex.trapDone(trap), nil
			}
			ex.stack.SetValue(fr.Base, in.Result, res)

		case ir.OpUnary:
			a := ex.stack.Value(fr.Base, fr.Func.Consts, in.A)
			ex.stack.SetValue(fr.Base, in.Result, evalUnary(in.Val, in.UnaryKind(), a))

		case ir.OpCmp:
			lhs := ex.stack.Value(fr.Base, fr.Func.Consts, in.A)
			var rhs uint64
			switch in.Shape {
			case ir.ShapeSSI:
				rhs = in.ImmB
			case ir.ShapeSIS:
				lhs, rhs = in.ImmA, ex.stack.Value(fr.Base, fr.Func.Consts, in.B)
			default:
				rhs = ex.stack.Value(fr.Base, fr.Func.Consts, in.B)
			}
			ex.stack.SetValue(fr.Base, in.Result, evalCmp(in.Val, in.CmpKind(), lhs, rhs))

		case ir.OpConvert:
			a := ex.stack.Value(fr.Base, fr.Func.Consts, in.A)
			res, trap := evalConvert(in.ConvKind(), a)
			if trap != ir.TrapNone {
				return ex.trapDone(trap), nil
			}
			ex.stack.SetValue(fr.Base, in.Result, res)

		case ir.OpSelectCmp:
			lhs := ex.stack.Value(fr.Base, fr.Func.Consts, in.B)
			var rhs uint64
			switch in.Shape {
			case ir.ShapeSSI:
				rhs = in.ImmB
			case ir.ShapeSIS:
				lhs, rhs = in.ImmA, ex.stack.Value(fr.Base, fr.Func.Consts, in.D)
			default:
				rhs = ex.stack.Value(fr.Base, fr.Func.Consts, in.D)
			}
			cond := evalCmp(in.Val, in.CmpKind(), lhs, rhs)
			var chosen ir.Slot
			if cond != 0 {
				chosen = in.A
			} else {
				chosen = in.C
			}
			ex.stack.SetValue(fr.Base, in.Result, ex.stack.Value(fr.Base, fr.Func.Consts, chosen))

		case ir.OpGlobalGet:
			g := fr.Inst.Global(in.Aux)
			if g.IsFuncRef {
				ex.stack.SetValue(fr.Base, in.Result, ex.encodeFuncRef(g.FuncRef))
			} else {
				ex.stack.SetValue(fr.Base, in.Result, g.Value)
			}

		case ir.OpGlobalSet:
			g := fr.Inst.Global(in.Aux)
			v := ex.stack.Value(fr.Base, fr.Func.Consts, in.A)
			if g.IsFuncRef {
				g.FuncRef = ex.decodeFuncRef(v)
			} else {
				g.Value = v
			}

		case ir.OpLoad:
			if done, stop := ex.doLoad(fr, in); stop {
				return done, nil
			}
		case ir.OpStore:
			if done, stop := ex.doStore(fr, in); stop {
				return done, nil
			}

		case ir.OpMemorySize:
			mem := fr.Inst.Memory(in.Aux)
			ex.stack.SetValue(fr.Base, in.Result, uint64(mem.Pages()))

		case ir.OpMemoryGrow:
			mem := fr.Inst.Memory(in.Aux)
			delta := uint32(ex.stack.Value(fr.Base, fr.Func.Consts, in.A))
			prev, ok := mem.Grow(delta, ex.cfg.Limits.MaxMemoryPages)
			if !ok {
				ex.stack.SetValue(fr.Base, in.Result, ^uint64(0))
			} else {
				ex.stack.SetValue(fr.Base, in.Result, uint64(prev))
				if in.Aux == 0 {
					ex.cache.RefreshMem0()
				}
			}

		case ir.OpMemoryFill:
			mem := fr.Inst.Memory(in.Aux)
			dst := ex.stack.Value(fr.Base, fr.Func.Consts, in.A)
			val := byte(ex.stack.Value(fr.Base, fr.Func.Consts, in.B))
			n := ex.stack.Value(fr.Base, fr.Func.Consts, in.C)
			if !memFill(mem.Bytes(), dst, val, n) {
				return ex.trapDone(ir.TrapMemoryOutOfBounds), nil
			}

		case ir.OpMemoryCopy:
			mem := fr.Inst.Memory(in.Aux)
			dst := ex.stack.Value(fr.Base, fr.Func.Consts, in.A)
			src := ex.stack.Value(fr.Base, fr.Func.Consts, in.B)
			n := ex.stack.Value(fr.Base, fr.Func.Consts, in.C)
			if !memCopy(mem.Bytes(), dst, src, n) {
				return ex.trapDone(ir.TrapMemoryOutOfBounds), nil
			}

		case ir.OpMemoryInit:
			mem := fr.Inst.Memory(in.Aux)
			seg := fr.Inst.DataSegs[in.Aux2]
			dst := ex.stack.Value(fr.Base, fr.Func.Consts, in.A)
			src := ex.stack.Value(fr.Base, fr.Func.Consts, in.B)
			n := ex.stack.Value(fr.Base, fr.Func.Consts, in.C)
			data := seg.Bytes
			if seg.Dropped {
				data = nil
			}
			if !memInit(mem.Bytes(), dst, data, src, n) {
				return ex.trapDone(ir.TrapMemoryOutOfBounds), nil
			}

		case ir.OpDataDrop:
			fr.Inst.DataSegs[in.Aux].Dropped = true
			fr.Inst.DataSegs[in.Aux].Bytes = nil

		case ir.OpTableGet:
			tbl := fr.Inst.Table(in.Aux)
			idx := uint32(ex.stack.Value(fr.Base, fr.Func.Consts, in.A))
			ref, ok := tbl.Get(idx)
			if !ok {
				return ex.trapDone(ir.TrapTableOutOfBounds), nil
			}
			ex.stack.SetValue(fr.Base, in.Result, ex.encodeFuncRef(ref))

		case ir.OpTableSet:
			tbl := fr.Inst.Table(in.Aux)
			idx := uint32(ex.stack.Value(fr.Base, fr.Func.Consts, in.A))
			ref := ex.decodeFuncRef(ex.stack.Value(fr.Base, fr.Func.Consts, in.B))
			if !tbl.Set(idx, ref) {
				return ex.trapDone(ir.TrapTableOutOfBounds), nil
			}

		case ir.OpTableSize:
			tbl := fr.Inst.Table(in.Aux)
			ex.stack.SetValue(fr.Base, in.Result, uint64(tbl.Size()))

		case ir.OpTableGrow:
			tbl := fr.Inst.Table(in.Aux)
			delta := uint32(ex.stack.Value(fr.Base, fr.Func.Consts, in.B))
			init := ex.decodeFuncRef(ex.stack.Value(fr.Base, fr.Func.Consts, in.A))
			prev, ok := tbl.Grow(delta, init, ex.cfg.Limits.MaxTableSize)
			if !ok {
				ex.stack.SetValue(fr.Base, in.Result, ^uint64(0))
			} else {
				ex.stack.SetValue(fr.Base, in.Result, uint64(prev))
			}

		case ir.OpTableFill:
			tbl := fr.Inst.Table(in.Aux)
			idx := uint32(ex.stack.Value(fr.Base, fr.Func.Consts, in.A))
			ref := ex.decodeFuncRef(ex.stack.Value(fr.Base, fr.Func.Consts, in.B))
			n := uint32(ex.stack.Value(fr.Base, fr.Func.Consts, in.C))
			if !tbl.Fill(idx, n, ref) {
				return ex.trapDone(ir.TrapTableOutOfBounds), nil
			}

		case ir.OpTableCopy:
			dstTbl := fr.Inst.Table(in.Aux)
			srcTbl := fr.Inst.Table(in.Aux2)
			dst := uint32(ex.stack.Value(fr.Base, fr.Func.Consts, in.A))
			src := uint32(ex.stack.Value(fr.Base, fr.Func.Consts, in.B))
			n := uint32(ex.stack.Value(fr.Base, fr.Func.Consts, in.C))
			if dstTbl == srcTbl {
				if !dstTbl.CopyWithin(dst, src, n) {
					return ex.trapDone(ir.TrapTableOutOfBounds), nil
				}
			} else {
				if !tableCopyCross(dstTbl, srcTbl, dst, src, n) {
					return ex.trapDone(ir.TrapTableOutOfBounds), nil
				}
			}

		case ir.OpTableInit:
			tbl := fr.Inst.Table(in.Aux)
			seg := fr.Inst.ElemSegs[in.Aux2]
			dst := uint32(ex.stack.Value(fr.Base, fr.Func.Consts, in.A))
			src := uint32(ex.stack.Value(fr.Base, fr.Func.Consts, in.B))
			n := uint32(ex.stack.Value(fr.Base, fr.Func.Consts, in.C))
			refs := seg.Refs
			if seg.Dropped {
				refs = nil
			}
			if !tableInit(tbl, refs, dst, src, n) {
				return ex.trapDone(ir.TrapTableOutOfBounds), nil
			}

		case ir.OpElemDrop:
			fr.Inst.ElemSegs[in.Aux].Dropped = true
			fr.Inst.ElemSegs[in.Aux].Refs = nil

		case ir.OpRefNull:
			ex.stack.SetValue(fr.Base, in.Result, 0)

		case ir.OpRefIsNull:
			v := ex.stack.Value(fr.Base, fr.Func.Consts, in.A)
			ref := ex.decodeFuncRef(v)
			if !ref.Valid {
				ex.stack.SetValue(fr.Base, in.Result, 1)
			} else {
				ex.stack.SetValue(fr.Base, in.Result, 0)
			}

		case ir.OpRefFunc:
			ex.stack.SetValue(fr.Base, in.Result, ex.encodeFuncRef(store.FuncRef{Instance: fr.Inst, FuncIdx: in.Aux, Valid: true}))
		}
	}
}

func (ex *Executor) handleReturn(fr *Frame, in ir.Instr) (Done, bool) {
	hasResult := in.Op != ir.OpReturn
	var resultVal uint64
	if hasResult {
		resultVal = ex.stack.Value(fr.Base, fr.Func.Consts, in.A)
	}
	resultBase := fr.ResultBase

	if ex.frames.Len() == 1 {
		var results []uint64
		if hasResult {
			results = []uint64{resultVal}
		}
		return Done{Outcome: NormalReturn, Results: results}, true
	}

	ex.frames.Pop()
	if hasResult {
		ex.stack.Set(resultBase, resultVal)
	}
	caller := ex.frames.Top()
	if caller.Inst != ex.cache.Inst {
		ex.cache.Refresh(caller.Inst)
	}
	return Done{}, false
}

// call handles OpCallInternal/OpCallImported (and their return-call tail
// variants): resolve the callee in inst, marshal in.Span's argument words,
// and either push a new frame or, when tail is true, replace the caller's
// frame in place (spec.md §4.3's "reuse this activation" tail-call
// semantics). Imported calls and internal calls share this path — the only
// difference the translator's two opcodes encode is which function table
// the callee index was resolved against at translate time, which by
// execution time is already baked into in.Aux indexing inst.Funcs.
func (ex *Executor) call(fr *Frame, in ir.Instr, inst *store.Instance, tail bool) (Done, bool) {
	callee := inst.Func(in.Aux)
	if callee == nil {
		return ex.trapDone(ir.TrapIndirectCallToNull), true
	}
	return ex.invoke(fr, in, callee, inst, tail)
}

// callIndirect handles OpCallIndirect/OpReturnCallIndirect: resolve the
// table entry, check its signature against the call site's declared type,
// then invoke exactly like a direct call.
func (ex *Executor) callIndirect(fr *Frame, in ir.Instr, tail bool) (Done, bool) {
	tbl := fr.Inst.Table(in.Aux2)
	idx := uint32(ex.stack.Value(fr.Base, fr.Func.Consts, in.A))
	ref, ok := tbl.Get(idx)
	if !ok {
		return ex.trapDone(ir.TrapTableOutOfBounds), true
	}
	if !ref.Valid {
		return ex.trapDone(ir.TrapIndirectCallToNull), true
	}
	callee := ref.Instance.Func(ref.FuncIdx)
	if callee == nil {
		return ex.trapDone(ir.TrapIndirectCallToNull), true
	}
	if !fr.Inst.Types.Equal(store.TypeHandle(in.Aux), callee.Type) {
		return ex.trapDone(ir.TrapBadSignature), true
	}
	return ex.invoke(fr, in, callee, ref.Instance, tail)
}

// invoke is the shared tail of call/callIndirect: marshal arguments out of
// the caller's frame, then either push a new frame (ordinary call) or
// replace the caller's frame in place (tail call), inheriting its
// ResultBase so a later Return from deep in the tail chain still lands
// results at the original, pre-tail-call caller's call site.
func (ex *Executor) invoke(fr *Frame, in ir.Instr, callee *store.Function, inst *store.Instance, tail bool) (Done, bool) {
	argBase := fr.Base + int(in.Span.Base)
	args := make([]uint64, in.Span.Len)
	for i := range args {
		args[i] = ex.stack.Get(argBase + i)
	}

	if callee.IsHost {
		ex.pendingResultBase = argBase
		ex.pendingResultLen = callee.NumResults
		return Done{Outcome: HostCall, HostRef: callee.HostRef, Results: args}, true
	}

	if !tail && ex.frames.Len() >= ex.cfg.Limits.MaxCallDepth {
		return ex.trapDone(ir.TrapStackOverflow), true
	}

	var newBase int
	var resultBase int
	if tail {
		newBase = fr.Base
		resultBase = fr.ResultBase
	} else {
		newBase = ex.stack.Len()
		resultBase = argBase
	}

	if newBase+callee.FrameSize > ex.cfg.Limits.MaxStackSlots {
		return ex.trapDone(ir.TrapStackOverflow), true
	}
	ex.stack.Reserve(newBase + callee.FrameSize)
	for i, v := range args {
		ex.stack.Set(newBase+i, v)
	}

	newFrame := Frame{Func: callee, Inst: inst, IP: 0, Base: newBase, ResultBase: resultBase}
	if tail {
		ex.frames.ReplaceTop(newFrame)
	} else {
		ex.frames.Push(newFrame)
	}
	if inst != ex.cache.Inst {
		ex.cache.Refresh(inst)
	}
	return Done{}, false
}

// memBytes resolves memIdx's backing bytes, taking the cached mem0 fast
// path spec.md §4.5 calls for when memIdx is 0 (the overwhelmingly common
// case — Wasm 1.0 modules declare at most one memory) rather than indexing
// through fr.Inst.Memories on every load/store.
func (ex *Executor) memBytes(fr *Frame, memIdx uint32) []byte {
	if memIdx == 0 {
		return ex.cache.Mem0Bytes()
	}
	mem := fr.Inst.Memory(memIdx)
	if mem == nil {
		return nil
	}
	return mem.Bytes()
}

// doLoad implements OpLoad: resolve the effective address, bounds-check
// against the target memory, and sign/zero-extend per in's MemWidth.
func (ex *Executor) doLoad(fr *Frame, in ir.Instr) (Done, bool) {
	mem := ex.memBytes(fr, in.Aux)
	if mem == nil {
		return ex.trapDone(ir.TrapMemoryOutOfBounds), true
	}
	var ptr uint32
	if in.Shape == ir.ShapeSSI {
		ptr = uint32(in.ImmA)
	} else {
		ptr = uint32(ex.stack.Value(fr.Base, fr.Func.Consts, in.A))
	}
	width := in.MemWidth()
	addr, ok := boundsCheck(ptr, in.Offset, width.Bytes(), len(mem))
	if !ok {
		return ex.trapDone(ir.TrapMemoryOutOfBounds), true
	}
	v := loadMem(mem, addr, width, in.MemSigned(), in.Val)
	ex.stack.SetValue(fr.Base, in.Result, v)
	return Done{}, false
}

// doStore implements OpStore: the stored value is always a stack slot
// (in.B); only the pointer operand may be a compile-time immediate.
func (ex *Executor) doStore(fr *Frame, in ir.Instr) (Done, bool) {
	mem := ex.memBytes(fr, in.Aux)
	if mem == nil {
		return ex.trapDone(ir.TrapMemoryOutOfBounds), true
	}
	var ptr uint32
	if in.Shape == ir.ShapeSSI {
		ptr = uint32(in.ImmA)
	} else {
		ptr = uint32(ex.stack.Value(fr.Base, fr.Func.Consts, in.A))
	}
	width := in.MemWidth()
	addr, ok := boundsCheck(ptr, in.Offset, width.Bytes(), len(mem))
	if !ok {
		return ex.trapDone(ir.TrapMemoryOutOfBounds), true
	}
	v := ex.stack.Value(fr.Base, fr.Func.Consts, in.B)
	storeMem(mem, addr, width, v)
	return Done{}, false
}
