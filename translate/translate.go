// Package translate turns decoded Wasm function bodies into the register
// IR rvm executes, and decoded modules into the store.Instance form that
// feeds it. It is the one-time, ahead-of-instantiation cost the executor's
// hot loop never pays: most of the work below (slot allocation, operand
// fusion, label resolution) happens here precisely so executor.go never has
// to.
package translate

import (
	"math"

	"github.com/wippyai/wasm-runtime/ir"
	"github.com/wippyai/wasm-runtime/rvmerr"
	"github.com/wippyai/wasm-runtime/store"
	"github.com/wippyai/wasm-runtime/wasm"
)

// Function translates one function body into a store.Function. sig is the
// function's own signature, locals its declared (non-parameter) locals, ops
// its decoded instruction stream (including the trailing implicit `end`),
// mc the module-wide context shared across every function of the same
// module, and name a diagnostic label (export name, or a synthesized
// "func<idx>") carried into any rvmerr this translation reports.
func Function(name string, sig wasm.FuncType, locals []wasm.LocalEntry, ops []wasm.Instruction, mc *moduleCtx) (*store.Function, error) {
	if len(sig.Results) > 1 {
		return nil, rvmerr.Unsupported(name, "multi-value function results are unsupported")
	}

	localTypes := make([]ir.ValType, 0, len(sig.Params))
	for _, p := range sig.Params {
		localTypes = append(localTypes, wasmValToIR(p))
	}
	for _, l := range locals {
		t := wasmValToIR(l.ValType)
		for i := uint32(0); i < l.Count; i++ {
			localTypes = append(localTypes, t)
		}
	}

	b := newBuilder(name, localTypes)

	hasResult := len(sig.Results) == 1
	var resultTyp ir.ValType
	var resultSlot ir.Slot
	if hasResult {
		resultTyp = wasmValToIR(sig.Results[0])
		var err error
		resultSlot, err = b.newTemp(resultTyp)
		if err != nil {
			return nil, err
		}
	}

	ls := &labelStack{}
	ls.push(ctrlFrame{
		kind:       frameBlock,
		hasResult:  hasResult,
		resultTyp:  resultTyp,
		resultSlot: resultSlot,
	})

	for _, instr := range ops {
		if err := b.translateInstr(mc, ls, instr); err != nil {
			return nil, err
		}
	}

	if ls.depth() != 0 {
		return nil, rvmerr.Unsupported(name, "function body missing its closing end")
	}
	if b.enc.Len() > math.MaxInt32 {
		return nil, rvmerr.FunctionTooLarge(name)
	}

	return &store.Function{
		Name:       name,
		NumParams:  len(sig.Params),
		NumResults: len(sig.Results),
		Code:       b.enc.Bytes(),
		Consts:     b.consts,
		FrameSize:  b.frameSize(),
		MaxStack:   b.maxDepth,
	}, nil
}

// Module translates an entire parsed Wasm module into a store.Instance:
// every internal function body, plus memories/tables/globals/segments
// instantiated from the module's declarations. Imports are represented as
// host-stub store.Function/store.Memory/store.Table/store.Global entries
// the embedder is expected to resolve before execution — linking those
// stubs to real host state is outside this package's scope (spec.md's
// Non-goals: embedder API surface).
func Module(mod *wasm.Module) (*store.Instance, error) {
	mc, err := newModuleCtx(mod)
	if err != nil {
		return nil, err
	}

	inst := store.NewInstance(mc.types)

	instantiateImportedMemories(mod, inst)
	instantiateImportedTables(mod, inst)
	instantiateImportedGlobals(mod, inst)
	if err := instantiateGlobals(mod, inst); err != nil {
		return nil, err
	}
	if err := instantiateFuncs(mod, mc, inst); err != nil {
		return nil, err
	}
	instantiateMemories(mod, inst)
	instantiateTables(mod, inst)
	if err := instantiateDataSegments(mod, inst); err != nil {
		return nil, err
	}
	if err := instantiateElementSegments(mod, inst); err != nil {
		return nil, err
	}

	return inst, nil
}

// newModuleCtx collects the module-wide tables every function's translation
// (call target signatures, block types, global types) needs.
func newModuleCtx(mod *wasm.Module) (*moduleCtx, error) {
	types := store.NewTypePool()
	typeHandles := make([]store.TypeHandle, len(mod.Types))
	for i, ft := range mod.Types {
		typeHandles[i] = types.Insert(ft)
	}

	numImportFuncs := mod.NumImportedFuncs()
	funcTypes := make([]wasm.FuncType, 0, numImportFuncs+len(mod.Funcs))
	for _, imp := range mod.Imports {
		if imp.Desc.Kind != wasm.KindFunc {
			continue
		}
		if int(imp.Desc.TypeIdx) >= len(mod.Types) {
			return nil, rvmerr.Unsupported(imp.Name, "import references unknown type index")
		}
		funcTypes = append(funcTypes, mod.Types[imp.Desc.TypeIdx])
	}
	for _, typeIdx := range mod.Funcs {
		if int(typeIdx) >= len(mod.Types) {
			return nil, rvmerr.Unsupported("", "function references unknown type index")
		}
		funcTypes = append(funcTypes, mod.Types[typeIdx])
	}

	globalTypes := make([]ir.ValType, 0, mod.NumImportedGlobals()+len(mod.Globals))
	for _, imp := range mod.Imports {
		if imp.Desc.Kind != wasm.KindGlobal {
			continue
		}
		globalTypes = append(globalTypes, wasmValToIR(imp.Desc.Global.ValType))
	}
	for _, g := range mod.Globals {
		globalTypes = append(globalTypes, wasmValToIR(g.Type.ValType))
	}

	return &moduleCtx{
		types:       types,
		moduleTypes: mod.Types,
		typeHandles: typeHandles,
		funcTypes:   funcTypes,
		numImports:  numImportFuncs,
		globalTypes: globalTypes,
	}, nil
}

// funcExportName returns the export name of function idx, if any, else a
// synthesized diagnostic label.
func funcExportName(mod *wasm.Module, idx uint32) string {
	for _, exp := range mod.Exports {
		if exp.Kind == wasm.KindFunc && exp.Idx == idx {
			return exp.Name
		}
	}
	if idx < uint32(mod.NumImportedFuncs()) {
		for _, imp := range mod.Imports {
			if imp.Desc.Kind != wasm.KindFunc {
				continue
			}
			if idx == 0 {
				return imp.Module + "." + imp.Name
			}
			idx--
		}
	}
	return funcIndexLabel(idx)
}

func funcIndexLabel(idx uint32) string {
	const digits = "0123456789"
	if idx == 0 {
		return "func0"
	}
	buf := make([]byte, 0, 12)
	for idx > 0 {
		buf = append([]byte{digits[idx%10]}, buf...)
		idx /= 10
	}
	return "func" + string(buf)
}

func instantiateFuncs(mod *wasm.Module, mc *moduleCtx, inst *store.Instance) error {
	hostRef := uint32(0)
	for _, imp := range mod.Imports {
		if imp.Desc.Kind != wasm.KindFunc {
			continue
		}
		ft := mod.Types[imp.Desc.TypeIdx]
		inst.Funcs = append(inst.Funcs, &store.Function{
			Name:       imp.Module + "." + imp.Name,
			Type:       mc.typeHandles[imp.Desc.TypeIdx],
			NumParams:  len(ft.Params),
			NumResults: len(ft.Results),
			IsHost:     true,
			HostRef:    hostRef,
		})
		hostRef++
	}

	for i, typeIdx := range mod.Funcs {
		funcIdx := uint32(mc.numImports + i)
		name := funcExportName(mod, funcIdx)
		body := mod.Code[i]
		locals := make([]wasm.LocalEntry, len(body.Locals))
		copy(locals, body.Locals)

		ops, err := wasm.DecodeInstructions(body.Code)
		if err != nil {
			return err
		}
		fn, err := Function(name, mod.Types[typeIdx], locals, ops, mc)
		if err != nil {
			return err
		}
		fn.Type = mc.typeHandles[typeIdx]
		inst.Funcs = append(inst.Funcs, fn)
	}
	return nil
}

// instantiateImportedMemories gives each imported memory a real, usable
// Memory sized to its declared limits, so later index-based lookups
// (memory.size/grow/load/store, and locally-defined memories appended
// after them) land on the right slot. An embedder that wants to back an
// import with host-owned storage replaces this placeholder before running
// any code that touches it — wiring that replacement is outside this
// package's scope (spec.md's Non-goals: embedder API surface).
func instantiateImportedMemories(mod *wasm.Module, inst *store.Instance) {
	for _, imp := range mod.Imports {
		if imp.Desc.Kind != wasm.KindMemory {
			continue
		}
		mt := imp.Desc.Memory
		var max uint32
		if mt.Limits.Max != nil {
			max = uint32(*mt.Limits.Max)
		}
		inst.Memories = append(inst.Memories, store.NewMemory(uint32(mt.Limits.Min), max))
	}
}

// instantiateImportedTables mirrors instantiateImportedMemories for tables.
func instantiateImportedTables(mod *wasm.Module, inst *store.Instance) {
	for _, imp := range mod.Imports {
		if imp.Desc.Kind != wasm.KindTable {
			continue
		}
		tt := imp.Desc.Table
		var max uint32
		if tt.Limits.Max != nil {
			max = uint32(*tt.Limits.Max)
		}
		inst.Tables = append(inst.Tables, store.NewTable(uint32(tt.Limits.Min), max))
	}
}

// instantiateImportedGlobals gives each imported global a zero-valued
// placeholder: imports carry no initializer, only a declared type, so there
// is no value to evaluate here. Must run before instantiateGlobals, since a
// locally-defined global's init expression is allowed to global.get an
// imported one.
func instantiateImportedGlobals(mod *wasm.Module, inst *store.Instance) {
	for _, imp := range mod.Imports {
		if imp.Desc.Kind != wasm.KindGlobal {
			continue
		}
		g := &store.Global{Mutable: imp.Desc.Global.Mutable}
		if imp.Desc.Global.ValType == wasm.ValFuncRef {
			g.IsFuncRef = true
		}
		inst.Globals = append(inst.Globals, g)
	}
}

func instantiateMemories(mod *wasm.Module, inst *store.Instance) {
	for _, mt := range mod.Memories {
		var max uint32
		if mt.Limits.Max != nil {
			max = uint32(*mt.Limits.Max)
		}
		inst.Memories = append(inst.Memories, store.NewMemory(uint32(mt.Limits.Min), max))
	}
}

func instantiateTables(mod *wasm.Module, inst *store.Instance) {
	for _, tt := range mod.Tables {
		var max uint32
		if tt.Limits.Max != nil {
			max = uint32(*tt.Limits.Max)
		}
		inst.Tables = append(inst.Tables, store.NewTable(uint32(tt.Limits.Min), max))
	}
}

func instantiateGlobals(mod *wasm.Module, inst *store.Instance) error {
	for _, g := range mod.Globals {
		v, funcIdx, err := evalConstExpr("global init", g.Init, inst.Globals)
		if err != nil {
			return err
		}
		gl := &store.Global{Value: v, Mutable: g.Type.Mutable}
		if g.Type.ValType == wasm.ValFuncRef {
			gl.IsFuncRef = true
			if funcIdx != nil {
				gl.FuncRef = store.FuncRef{Instance: inst, FuncIdx: *funcIdx, Valid: true}
			}
		}
		inst.Globals = append(inst.Globals, gl)
	}
	return nil
}

func instantiateDataSegments(mod *wasm.Module, inst *store.Instance) error {
	for _, d := range mod.Data {
		seg := &store.DataSegment{Bytes: append([]byte(nil), d.Init...)}
		if d.Flags == 1 {
			// Passive: stays untouched until memory.init references it.
			inst.DataSegs = append(inst.DataSegs, seg)
			continue
		}
		memIdx := d.MemIdx
		mem := inst.Memory(memIdx)
		if mem == nil {
			return rvmerr.Unsupported("data segment", "references unknown memory")
		}
		off, _, err := evalConstExpr("data segment offset", d.Offset, inst.Globals)
		if err != nil {
			return err
		}
		dst := mem.Bytes()
		if int(off)+len(seg.Bytes) > len(dst) {
			return rvmerr.Unsupported("data segment", "active segment exceeds memory bounds")
		}
		copy(dst[off:], seg.Bytes)
		inst.DataSegs = append(inst.DataSegs, seg)
	}
	return nil
}

func instantiateElementSegments(mod *wasm.Module, inst *store.Instance) error {
	for _, e := range mod.Elements {
		refs := make([]store.FuncRef, len(e.FuncIdxs))
		for i, fi := range e.FuncIdxs {
			refs[i] = store.FuncRef{Instance: inst, FuncIdx: fi, Valid: true}
		}
		seg := &store.ElementSegment{Refs: refs}

		active := e.Flags == 0 || e.Flags == 2 || e.Flags == 4 || e.Flags == 6
		if !active {
			inst.ElemSegs = append(inst.ElemSegs, seg)
			continue
		}
		tbl := inst.Table(e.TableIdx)
		if tbl == nil {
			return rvmerr.Unsupported("element segment", "references unknown table")
		}
		off, _, err := evalConstExpr("element segment offset", e.Offset, inst.Globals)
		if err != nil {
			return err
		}
		if off+uint64(len(refs)) > uint64(tbl.Size()) {
			return rvmerr.Unsupported("element segment", "active segment exceeds table bounds")
		}
		for i, ref := range refs {
			tbl.Set(uint32(off)+uint32(i), ref)
		}
		inst.ElemSegs = append(inst.ElemSegs, seg)
	}
	return nil
}

// evalConstExpr evaluates a Wasm 1.0 constant expression: a single
// i32/i64/f32/f64.const, global.get (of an already-instantiated immutable
// global), ref.null, or ref.func, followed by end. The extended-const
// proposal's arithmetic forms are outside this runtime's scope.
//
// The second return value is non-nil only when the expression resolves to
// a function reference (directly via ref.func, or transitively via
// global.get of a funcref global) — callers that only ever evaluate i32
// offsets (data/element segment bounds) simply discard it.
func evalConstExpr(what string, init []byte, globals []*store.Global) (uint64, *uint32, error) {
	ops, err := wasm.DecodeInstructions(init)
	if err != nil {
		return 0, nil, err
	}
	if len(ops) == 0 {
		return 0, nil, rvmerr.Unsupported(what, "empty constant expression")
	}
	switch ops[0].Opcode {
	case wasm.OpI32Const:
		return uint64(uint32(ops[0].Imm.(wasm.I32Imm).Value)), nil, nil
	case wasm.OpI64Const:
		return uint64(ops[0].Imm.(wasm.I64Imm).Value), nil, nil
	case wasm.OpF32Const:
		return uint64(math.Float32bits(ops[0].Imm.(wasm.F32Imm).Value)), nil, nil
	case wasm.OpF64Const:
		return math.Float64bits(ops[0].Imm.(wasm.F64Imm).Value), nil, nil
	case wasm.OpGlobalGet:
		idx := ops[0].Imm.(wasm.GlobalImm).GlobalIdx
		if int(idx) >= len(globals) {
			return 0, nil, rvmerr.Unsupported(what, "global.get references an uninitialized global")
		}
		g := globals[idx]
		if g.IsFuncRef {
			if !g.FuncRef.Valid {
				return 0, nil, nil
			}
			fi := g.FuncRef.FuncIdx
			return 0, &fi, nil
		}
		return g.Value, nil, nil
	case wasm.OpRefNull:
		return 0, nil, nil
	case wasm.OpRefFunc:
		idx := ops[0].Imm.(wasm.RefFuncImm).FuncIdx
		return 0, &idx, nil
	}
	return 0, nil, rvmerr.Unsupported(what, "unsupported constant expression opcode")
}
