package translate

import (
	"github.com/wippyai/wasm-runtime/ir"
	"github.com/wippyai/wasm-runtime/rvmerr"
	"github.com/wippyai/wasm-runtime/store"
	"github.com/wippyai/wasm-runtime/wasm"
)

// moduleCtx is the module-wide information a single function's translation
// needs but doesn't own: the type pool, each function's signature and
// import/internal split, and each global's value type. Module (in
// translate.go) builds one of these per module and shares it across every
// function body it translates.
type moduleCtx struct {
	types *store.TypePool

	// moduleTypes is the module's raw type section, indexed by the type
	// indices block types and call_indirect carry.
	moduleTypes []wasm.FuncType
	// typeHandles[i] is moduleTypes[i] interned in types.
	typeHandles []store.TypeHandle

	// funcTypes[i] is function i's signature (imports first, then
	// internal definitions, standard Wasm indexing).
	funcTypes  []wasm.FuncType
	numImports int

	globalTypes []ir.ValType
}

func (mc *moduleCtx) funcIsImport(idx uint32) bool { return int(idx) < mc.numImports }

func (mc *moduleCtx) funcResultType(idx uint32) (ir.ValType, bool) {
	ft := mc.funcTypes[idx]
	if len(ft.Results) == 0 {
		return 0, false
	}
	return wasmValToIR(ft.Results[0]), true
}

func (mc *moduleCtx) funcParamCount(idx uint32) int { return len(mc.funcTypes[idx].Params) }

// blockType resolves a BlockImm.Type into (hasResult, resultType). Wasm 1.0
// block types are void, a single value type, or (post-multi-value) a type
// index — this translator only targets the 1.0 subset, so a type-index
// blocktype is accepted only when it names zero params and at most one
// result; anything wider is a translate-time error rather than silently
// dropped params/results.
func (mc *moduleCtx) blockType(funcName string, bt int32) (bool, ir.ValType, error) {
	switch bt {
	case -64:
		return false, 0, nil
	case -1:
		return true, ir.I32, nil
	case -2:
		return true, ir.I64, nil
	case -3:
		return true, ir.F32, nil
	case -4:
		return true, ir.F64, nil
	}
	if bt < 0 || int(bt) >= len(mc.moduleTypes) {
		return false, 0, rvmerr.Unsupported(funcName, "invalid block type")
	}
	ft := mc.moduleTypes[bt]
	if len(ft.Params) != 0 || len(ft.Results) > 1 {
		return false, 0, rvmerr.Unsupported(funcName, "multi-value block types are unsupported")
	}
	if len(ft.Results) == 0 {
		return false, 0, nil
	}
	return true, wasmValToIR(ft.Results[0]), nil
}
