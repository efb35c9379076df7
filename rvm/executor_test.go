package rvm

import (
	"testing"

	"github.com/wippyai/wasm-runtime/ir"
	"github.com/wippyai/wasm-runtime/store"
)

func u32w(v uint32) uint64 { return uint64(v) }

func TestRunAddTwoParams(t *testing.T) {
	enc := ir.NewEncoder()
	ir.Emit(enc, ir.Instr{Op: ir.OpBinArith, Val: ir.I32, Kind: uint8(ir.Add), Shape: ir.ShapeSSS, Result: 2, A: 0, B: 1})
	ir.Emit(enc, ir.Instr{Op: ir.OpReturnSlot32, A: 2})

	fn := &store.Function{Name: "add", NumParams: 2, NumResults: 1, FrameSize: 3, Code: enc.Bytes()}
	inst := store.NewInstance(store.NewTypePool())
	inst.Funcs = []*store.Function{fn}

	ex := NewExecutor(DefaultConfig())
	done, err := ex.Run(inst, 0, []uint64{u32w(3), u32w(4)})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if done.Outcome != NormalReturn {
		t.Fatalf("Outcome = %v, want NormalReturn", done.Outcome)
	}
	if got := uint32(done.Results[0]); got != 7 {
		t.Fatalf("result = %d, want 7", got)
	}
}

func TestRunBranchCmpSkipsTrap(t *testing.T) {
	enc := ir.NewEncoder()

	beforeBranch := enc.Len()
	ir.Emit(enc, ir.Instr{Op: ir.OpBranchCmp, Val: ir.I32, Kind: uint8(ir.Eq), Shape: ir.ShapeSSI, A: 0, ImmB: 0, Offset: 0})
	afterBranch := enc.Len()

	ir.Emit(enc, ir.Instr{Op: ir.OpReturnSlot32, A: 0})

	trapPos := enc.Len()
	ir.Emit(enc, ir.Instr{Op: ir.OpTrap, Trap: ir.TrapUnreachable})

	enc.Patch32(afterBranch-4, int32(trapPos-beforeBranch))

	fn := &store.Function{Name: "nonzero_or_trap", NumParams: 1, NumResults: 1, FrameSize: 1, Code: enc.Bytes()}
	inst := store.NewInstance(store.NewTypePool())
	inst.Funcs = []*store.Function{fn}

	ex := NewExecutor(DefaultConfig())

	done, err := ex.Run(inst, 0, []uint64{u32w(5)})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if done.Outcome != NormalReturn || uint32(done.Results[0]) != 5 {
		t.Fatalf("nonzero path: got %+v", done)
	}

	done, err = ex.Run(inst, 0, []uint64{u32w(0)})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if done.Outcome != Trap || done.Trap != ir.TrapUnreachable {
		t.Fatalf("zero path: got %+v, want Trap/TrapUnreachable", done)
	}
}

func TestRunStoreThenLoad(t *testing.T) {
	enc := ir.NewEncoder()
	ir.Emit(enc, ir.Instr{
		Op: ir.OpStore, Val: ir.I32, Kind: ir.MemKind(ir.Width32, false), Shape: ir.ShapeSSI,
		Aux: 0, Offset: 0, ImmA: 0, B: 0,
	})
	ir.Emit(enc, ir.Instr{
		Op: ir.OpLoad, Val: ir.I32, Kind: ir.MemKind(ir.Width32, false), Shape: ir.ShapeSSI,
		Aux: 0, Offset: 0, ImmA: 0, Result: 1,
	})
	ir.Emit(enc, ir.Instr{Op: ir.OpReturnSlot32, A: 1})

	fn := &store.Function{Name: "roundtrip", NumParams: 1, NumResults: 1, FrameSize: 2, Code: enc.Bytes()}
	inst := store.NewInstance(store.NewTypePool())
	inst.Funcs = []*store.Function{fn}
	inst.Memories = []*store.Memory{store.NewMemory(1, 1)}

	ex := NewExecutor(DefaultConfig())
	done, err := ex.Run(inst, 0, []uint64{u32w(42)})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if done.Outcome != NormalReturn || uint32(done.Results[0]) != 42 {
		t.Fatalf("got %+v, want 42", done)
	}
}

func TestRunLoadOutOfBoundsTraps(t *testing.T) {
	enc := ir.NewEncoder()
	ir.Emit(enc, ir.Instr{
		Op: ir.OpLoad, Val: ir.I32, Kind: ir.MemKind(ir.Width32, false), Shape: ir.ShapeSSI,
		Aux: 0, Offset: 0, ImmA: 65533, Result: 0,
	})
	ir.Emit(enc, ir.Instr{Op: ir.OpReturnSlot32, A: 0})

	fn := &store.Function{Name: "oob", NumParams: 0, NumResults: 1, FrameSize: 1, Code: enc.Bytes()}
	inst := store.NewInstance(store.NewTypePool())
	inst.Funcs = []*store.Function{fn}
	inst.Memories = []*store.Memory{store.NewMemory(1, 1)}

	ex := NewExecutor(DefaultConfig())
	done, err := ex.Run(inst, 0, nil)
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if done.Outcome != Trap || done.Trap != ir.TrapMemoryOutOfBounds {
		t.Fatalf("got %+v, want MemoryOutOfBounds trap", done)
	}
}

func TestRunCallInternal(t *testing.T) {
	encB := ir.NewEncoder()
	ir.Emit(encB, ir.Instr{Op: ir.OpBinArith, Val: ir.I32, Kind: uint8(ir.Mul), Shape: ir.ShapeSSI, A: 0, ImmB: 2, Result: 1})
	ir.Emit(encB, ir.Instr{Op: ir.OpReturnSlot32, A: 1})
	fnB := &store.Function{Name: "double", NumParams: 1, NumResults: 1, FrameSize: 2, Code: encB.Bytes()}

	encA := ir.NewEncoder()
	ir.Emit(encA, ir.Instr{Op: ir.OpCallInternal, Span: ir.SlotSpan{Base: 0, Len: 1}, Aux: 1})
	ir.Emit(encA, ir.Instr{Op: ir.OpBinArith, Val: ir.I32, Kind: uint8(ir.Add), Shape: ir.ShapeSSI, A: 0, ImmB: 1, Result: 2})
	ir.Emit(encA, ir.Instr{Op: ir.OpReturnSlot32, A: 2})
	fnA := &store.Function{Name: "double_plus_one", NumParams: 1, NumResults: 1, FrameSize: 3, Code: encA.Bytes()}

	inst := store.NewInstance(store.NewTypePool())
	inst.Funcs = []*store.Function{fnA, fnB}

	ex := NewExecutor(DefaultConfig())
	done, err := ex.Run(inst, 0, []uint64{u32w(5)})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if done.Outcome != NormalReturn || uint32(done.Results[0]) != 11 {
		t.Fatalf("got %+v, want 11", done)
	}
}

func TestRunCallHostReturnsHostCallOutcome(t *testing.T) {
	host := &store.Function{Name: "env.log", IsHost: true, NumParams: 1, NumResults: 0, HostRef: 7}

	encA := ir.NewEncoder()
	ir.Emit(encA, ir.Instr{Op: ir.OpCallInternal, Span: ir.SlotSpan{Base: 0, Len: 1}, Aux: 1})
	ir.Emit(encA, ir.Instr{Op: ir.OpReturn})
	fnA := &store.Function{Name: "caller", NumParams: 1, NumResults: 0, FrameSize: 1, Code: encA.Bytes()}

	inst := store.NewInstance(store.NewTypePool())
	inst.Funcs = []*store.Function{fnA, host}

	ex := NewExecutor(DefaultConfig())
	done, err := ex.Run(inst, 0, []uint64{u32w(99)})
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if done.Outcome != HostCall || done.HostRef != 7 || uint32(done.Results[0]) != 99 {
		t.Fatalf("got %+v, want HostCall ref 7 arg 99", done)
	}

	final, err := ex.Resume(nil)
	if err != nil {
		t.Fatalf("Resume error: %v", err)
	}
	if final.Outcome != NormalReturn {
		t.Fatalf("final outcome = %v, want NormalReturn", final.Outcome)
	}
}

func TestRunOutOfFuel(t *testing.T) {
	enc := ir.NewEncoder()
	ir.Emit(enc, ir.Instr{Op: ir.OpConsumeFuel, Aux: 10})
	ir.Emit(enc, ir.Instr{Op: ir.OpReturn})
	fn := &store.Function{Name: "metered", NumParams: 0, NumResults: 0, FrameSize: 0, Code: enc.Bytes()}

	inst := store.NewInstance(store.NewTypePool())
	inst.Funcs = []*store.Function{fn}

	cfg := DefaultConfig()
	cfg.FuelLimit = 5
	ex := NewExecutor(cfg)
	done, err := ex.Run(inst, 0, nil)
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if done.Outcome != OutOfFuel {
		t.Fatalf("got %+v, want OutOfFuel", done)
	}
}
