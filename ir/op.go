package ir

// Op names an instruction class. Most classes are parametric over Val
// (ValType), Kind (ArithKind/CmpKind/UnaryKind/ConvKind cast to byte) and
// Shape, which together select the concrete behavior spec.md §4.1 assigns
// to a single named opcode variant.
type Op uint8

const (
	// Control
	OpTrap Op = iota
	OpConsumeFuel
	OpBr
	OpBranchCmp // fused compare + branch; Kind=CmpKind, Shape=ShapeSSS|ShapeSSI
	OpBrTable
	OpReturn
	OpReturnSlot32
	OpReturnSlot64

	// Data movement
	OpCopy
	OpCopy32
	OpCopy64
	OpCopy2
	OpCopySpan
	OpCopySpanNonOverlapping

	// Calls
	OpCallInternal
	OpCallImported
	OpCallIndirect
	OpReturnCallInternal
	OpReturnCallImported
	OpReturnCallIndirect

	// Arithmetic / comparisons / conversions
	OpBinArith // Kind=ArithKind, Shape=ShapeSSS|ShapeSSI|ShapeSIS
	OpUnary    // Kind=UnaryKind
	OpCmp      // Kind=CmpKind, Shape as above; Result is always i32 bool
	OpConvert  // Kind=ConvKind
	OpSelectCmp

	// Locals are pure slots and never reach the executor as an opcode.
	// Globals, memory, and table operations below.
	OpGlobalGet
	OpGlobalSet

	OpLoad  // Val=loaded width/type, Aux=memIdx, Offset=byte offset
	OpStore // Val=stored width/type, Aux=memIdx, Offset=byte offset

	OpMemorySize
	OpMemoryGrow
	OpMemoryFill
	OpMemoryCopy
	OpMemoryInit
	OpDataDrop

	OpTableGet
	OpTableSet
	OpTableSize
	OpTableGrow
	OpTableFill
	OpTableCopy
	OpTableInit
	OpElemDrop

	OpRefNull
	OpRefIsNull
	OpRefFunc
)

var opNames = [...]string{
	"trap", "consume_fuel", "br", "branch_cmp", "br_table",
	"return", "return_slot32", "return_slot64",
	"copy", "copy32", "copy64", "copy2", "copy_span", "copy_span_nonoverlapping",
	"call_internal", "call_imported", "call_indirect",
	"return_call_internal", "return_call_imported", "return_call_indirect",
	"bin_arith", "unary", "cmp", "convert", "select_cmp",
	"global_get", "global_set",
	"load", "store",
	"memory_size", "memory_grow", "memory_fill", "memory_copy", "memory_init", "data_drop",
	"table_get", "table_set", "table_size", "table_grow", "table_fill", "table_copy", "table_init", "elem_drop",
	"ref_null", "ref_is_null", "ref_func",
}

func (o Op) String() string {
	if int(o) < len(opNames) {
		return opNames[o]
	}
	return "?"
}

// Info is the per-Op declarative metadata, returned by OpInfo. The
// translator and executor switch on Op directly and do not call OpInfo.
type Info struct {
	Name      string
	HasResult bool
	// CanRelink marks an op whose Result slot could be rewritten in place to
	// point at an outgoing local instead of emitting a trailing copy. The
	// translate package does not consult it: local.set/tee of a value that
	// already lives in a slot emits a copy.
	CanRelink bool
}

var table = [...]Info{
	OpTrap:                   {"trap", false, false},
	OpConsumeFuel:            {"consume_fuel", false, false},
	OpBr:                     {"br", false, false},
	OpBranchCmp:              {"branch_cmp", false, false},
	OpBrTable:                {"br_table", false, false},
	OpReturn:                 {"return", false, false},
	OpReturnSlot32:           {"return_slot32", false, false},
	OpReturnSlot64:           {"return_slot64", false, false},
	OpCopy:                   {"copy", true, false},
	OpCopy32:                 {"copy32", true, false},
	OpCopy64:                 {"copy64", true, false},
	OpCopy2:                  {"copy2", false, false},
	OpCopySpan:               {"copy_span", false, false},
	OpCopySpanNonOverlapping: {"copy_span_nonoverlapping", false, false},
	OpCallInternal:           {"call_internal", true, false},
	OpCallImported:           {"call_imported", true, false},
	OpCallIndirect:           {"call_indirect", true, false},
	OpReturnCallInternal:     {"return_call_internal", false, false},
	OpReturnCallImported:     {"return_call_imported", false, false},
	OpReturnCallIndirect:     {"return_call_indirect", false, false},
	OpBinArith:               {"bin_arith", true, true},
	OpUnary:                  {"unary", true, true},
	OpCmp:                    {"cmp", true, true},
	OpConvert:                {"convert", true, true},
	OpSelectCmp:              {"select_cmp", true, true},
	OpGlobalGet:              {"global_get", true, true},
	OpGlobalSet:              {"global_set", false, false},
	OpLoad:                   {"load", true, true},
	OpStore:                  {"store", false, false},
	OpMemorySize:             {"memory_size", true, true},
	OpMemoryGrow:             {"memory_grow", true, true},
	OpMemoryFill:             {"memory_fill", false, false},
	OpMemoryCopy:             {"memory_copy", false, false},
	OpMemoryInit:             {"memory_init", false, false},
	OpDataDrop:               {"data_drop", false, false},
	OpTableGet:               {"table_get", true, true},
	OpTableSet:               {"table_set", false, false},
	OpTableSize:              {"table_size", true, true},
	OpTableGrow:              {"table_grow", true, true},
	OpTableFill:              {"table_fill", false, false},
	OpTableCopy:              {"table_copy", false, false},
	OpTableInit:              {"table_init", false, false},
	OpElemDrop:               {"elem_drop", false, false},
	OpRefNull:                {"ref_null", true, true},
	OpRefIsNull:              {"ref_is_null", true, true},
	OpRefFunc:                {"ref_func", true, true},
}

// OpInfo returns the declarative metadata for op.
func OpInfo(op Op) Info {
	if int(op) < len(table) {
		return table[op]
	}
	return Info{Name: "?"}
}
