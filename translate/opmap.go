package translate

import (
	"github.com/wippyai/wasm-runtime/ir"
	"github.com/wippyai/wasm-runtime/wasm"
)

// wasmValToIR narrows a Wasm binary value type to the register IR's
// four-way ValType. Reference types (funcref/externref) are carried as
// opaque 64-bit words on the value stack (ir/types.go), so they take I64's
// width here.
func wasmValToIR(v wasm.ValType) ir.ValType {
	switch v {
	case wasm.ValI32:
		return ir.I32
	case wasm.ValI64:
		return ir.I64
	case wasm.ValF32:
		return ir.F32
	case wasm.ValF64:
		return ir.F64
	default:
		return ir.I64 // funcref/externref
	}
}

// arithKindFor maps a Wasm binary numeric opcode to its register-IR
// equivalent. f32/f64 .div has no distinct ArithKind of its own — arith.go
// evaluates DivS and DivU identically for float operands, so float
// division is emitted as DivS by convention.
func arithKindFor(op byte) (ir.ValType, ir.ArithKind, bool) {
	switch op {
	case wasm.OpI32Add:
		return ir.I32, ir.Add, true
	case wasm.OpI32Sub:
		return ir.I32, ir.Sub, true
	case wasm.OpI32Mul:
		return ir.I32, ir.Mul, true
	case wasm.OpI32DivS:
		return ir.I32, ir.DivS, true
	case wasm.OpI32DivU:
		return ir.I32, ir.DivU, true
	case wasm.OpI32RemS:
		return ir.I32, ir.RemS, true
	case wasm.OpI32RemU:
		return ir.I32, ir.RemU, true
	case wasm.OpI32And:
		return ir.I32, ir.And, true
	case wasm.OpI32Or:
		return ir.I32, ir.Or, true
	case wasm.OpI32Xor:
		return ir.I32, ir.Xor, true
	case wasm.OpI32Shl:
		return ir.I32, ir.Shl, true
	case wasm.OpI32ShrS:
		return ir.I32, ir.ShrS, true
	case wasm.OpI32ShrU:
		return ir.I32, ir.ShrU, true
	case wasm.OpI32Rotl:
		return ir.I32, ir.Rotl, true
	case wasm.OpI32Rotr:
		return ir.I32, ir.Rotr, true

	case wasm.OpI64Add:
		return ir.I64, ir.Add, true
	case wasm.OpI64Sub:
		return ir.I64, ir.Sub, true
	case wasm.OpI64Mul:
		return ir.I64, ir.Mul, true
	case wasm.OpI64DivS:
		return ir.I64, ir.DivS, true
	case wasm.OpI64DivU:
		return ir.I64, ir.DivU, true
	case wasm.OpI64RemS:
		return ir.I64, ir.RemS, true
	case wasm.OpI64RemU:
		return ir.I64, ir.RemU, true
	case wasm.OpI64And:
		return ir.I64, ir.And, true
	case wasm.OpI64Or:
		return ir.I64, ir.Or, true
	case wasm.OpI64Xor:
		return ir.I64, ir.Xor, true
	case wasm.OpI64Shl:
		return ir.I64, ir.Shl, true
	case wasm.OpI64ShrS:
		return ir.I64, ir.ShrS, true
	case wasm.OpI64ShrU:
		return ir.I64, ir.ShrU, true
	case wasm.OpI64Rotl:
		return ir.I64, ir.Rotl, true
	case wasm.OpI64Rotr:
		return ir.I64, ir.Rotr, true

	case wasm.OpF32Add:
		return ir.F32, ir.Add, true
	case wasm.OpF32Sub:
		return ir.F32, ir.Sub, true
	case wasm.OpF32Mul:
		return ir.F32, ir.Mul, true
	case wasm.OpF32Div:
		return ir.F32, ir.DivS, true
	case wasm.OpF32Min:
		return ir.F32, ir.FMin, true
	case wasm.OpF32Max:
		return ir.F32, ir.FMax, true
	case wasm.OpF32Copysign:
		return ir.F32, ir.FCopysign, true

	case wasm.OpF64Add:
		return ir.F64, ir.Add, true
	case wasm.OpF64Sub:
		return ir.F64, ir.Sub, true
	case wasm.OpF64Mul:
		return ir.F64, ir.Mul, true
	case wasm.OpF64Div:
		return ir.F64, ir.DivS, true
	case wasm.OpF64Min:
		return ir.F64, ir.FMin, true
	case wasm.OpF64Max:
		return ir.F64, ir.FMax, true
	case wasm.OpF64Copysign:
		return ir.F64, ir.FCopysign, true
	}
	return 0, 0, false
}

func cmpKindFor(op byte) (ir.ValType, ir.CmpKind, bool) {
	switch op {
	case wasm.OpI32Eq:
		return ir.I32, ir.Eq, true
	case wasm.OpI32Ne:
		return ir.I32, ir.Ne, true
	case wasm.OpI32LtS:
		return ir.I32, ir.LtS, true
	case wasm.OpI32LtU:
		return ir.I32, ir.LtU, true
	case wasm.OpI32GtS:
		return ir.I32, ir.GtS, true
	case wasm.OpI32GtU:
		return ir.I32, ir.GtU, true
	case wasm.OpI32LeS:
		return ir.I32, ir.LeS, true
	case wasm.OpI32LeU:
		return ir.I32, ir.LeU, true
	case wasm.OpI32GeS:
		return ir.I32, ir.GeS, true
	case wasm.OpI32GeU:
		return ir.I32, ir.GeU, true

	case wasm.OpI64Eq:
		return ir.I64, ir.Eq, true
	case wasm.OpI64Ne:
		return ir.I64, ir.Ne, true
	case wasm.OpI64LtS:
		return ir.I64, ir.LtS, true
	case wasm.OpI64LtU:
		return ir.I64, ir.LtU, true
	case wasm.OpI64GtS:
		return ir.I64, ir.GtS, true
	case wasm.OpI64GtU:
		return ir.I64, ir.GtU, true
	case wasm.OpI64LeS:
		return ir.I64, ir.LeS, true
	case wasm.OpI64LeU:
		return ir.I64, ir.LeU, true
	case wasm.OpI64GeS:
		return ir.I64, ir.GeS, true
	case wasm.OpI64GeU:
		return ir.I64, ir.GeU, true

	case wasm.OpF32Eq:
		return ir.F32, ir.Eq, true
	case wasm.OpF32Ne:
		return ir.F32, ir.Ne, true
	case wasm.OpF32Lt:
		return ir.F32, ir.LtS, true
	case wasm.OpF32Gt:
		return ir.F32, ir.GtS, true
	case wasm.OpF32Le:
		return ir.F32, ir.LeS, true
	case wasm.OpF32Ge:
		return ir.F32, ir.GeS, true

	case wasm.OpF64Eq:
		return ir.F64, ir.Eq, true
	case wasm.OpF64Ne:
		return ir.F64, ir.Ne, true
	case wasm.OpF64Lt:
		return ir.F64, ir.LtS, true
	case wasm.OpF64Gt:
		return ir.F64, ir.GtS, true
	case wasm.OpF64Le:
		return ir.F64, ir.LeS, true
	case wasm.OpF64Ge:
		return ir.F64, ir.GeS, true
	}
	return 0, 0, false
}

func unaryKindFor(op byte) (ir.ValType, ir.UnaryKind, bool) {
	switch op {
	case wasm.OpI32Clz:
		return ir.I32, ir.Clz, true
	case wasm.OpI32Ctz:
		return ir.I32, ir.Ctz, true
	case wasm.OpI32Popcnt:
		return ir.I32, ir.Popcnt, true
	case wasm.OpI64Clz:
		return ir.I64, ir.Clz, true
	case wasm.OpI64Ctz:
		return ir.I64, ir.Ctz, true
	case wasm.OpI64Popcnt:
		return ir.I64, ir.Popcnt, true

	case wasm.OpF32Abs:
		return ir.F32, ir.FAbs, true
	case wasm.OpF32Neg:
		return ir.F32, ir.FNeg, true
	case wasm.OpF32Ceil:
		return ir.F32, ir.FCeil, true
	case wasm.OpF32Floor:
		return ir.F32, ir.FFloor, true
	case wasm.OpF32Trunc:
		return ir.F32, ir.FTrunc, true
	case wasm.OpF32Nearest:
		return ir.F32, ir.FNearest, true
	case wasm.OpF32Sqrt:
		return ir.F32, ir.FSqrt, true

	case wasm.OpF64Abs:
		return ir.F64, ir.FAbs, true
	case wasm.OpF64Neg:
		return ir.F64, ir.FNeg, true
	case wasm.OpF64Ceil:
		return ir.F64, ir.FCeil, true
	case wasm.OpF64Floor:
		return ir.F64, ir.FFloor, true
	case wasm.OpF64Trunc:
		return ir.F64, ir.FTrunc, true
	case wasm.OpF64Nearest:
		return ir.F64, ir.FNearest, true
	case wasm.OpF64Sqrt:
		return ir.F64, ir.FSqrt, true
	}
	return 0, 0, false
}

// convKindFor maps a conversion/reinterpret/sign-extend opcode to its
// ConvKind, plus the result ValType (ConvKind alone doesn't name it, since
// e.g. TruncF32S always produces an i32 regardless of source width).
func convKindFor(op byte) (ir.ConvKind, ir.ValType, bool) {
	switch op {
	case wasm.OpI32WrapI64:
		return ir.WrapI64, ir.I32, true
	case wasm.OpI64ExtendI32S:
		return ir.ExtendI32S, ir.I64, true
	case wasm.OpI64ExtendI32U:
		return ir.ExtendI32U, ir.I64, true
	case wasm.OpI32Extend8S:
		return ir.Extend8S, ir.I32, true
	case wasm.OpI32Extend16S:
		return ir.Extend16S, ir.I32, true
	case wasm.OpI64Extend8S:
		return ir.Extend8S, ir.I64, true
	case wasm.OpI64Extend16S:
		return ir.Extend16S, ir.I64, true
	case wasm.OpI64Extend32S:
		return ir.Extend32S, ir.I64, true

	case wasm.OpI32TruncF32S:
		return ir.TruncF32S, ir.I32, true
	case wasm.OpI32TruncF32U:
		return ir.TruncF32U, ir.I32, true
	case wasm.OpI32TruncF64S:
		return ir.TruncF64S, ir.I32, true
	case wasm.OpI32TruncF64U:
		return ir.TruncF64U, ir.I32, true
	case wasm.OpI64TruncF32S:
		return ir.TruncF32S, ir.I64, true
	case wasm.OpI64TruncF32U:
		return ir.TruncF32U, ir.I64, true
	case wasm.OpI64TruncF64S:
		return ir.TruncF64S, ir.I64, true
	case wasm.OpI64TruncF64U:
		return ir.TruncF64U, ir.I64, true

	case wasm.OpF32ConvertI32S:
		return ir.ConvertI32S, ir.F32, true
	case wasm.OpF32ConvertI32U:
		return ir.ConvertI32U, ir.F32, true
	case wasm.OpF32ConvertI64S:
		return ir.ConvertI64S, ir.F32, true
	case wasm.OpF32ConvertI64U:
		return ir.ConvertI64U, ir.F32, true
	case wasm.OpF64ConvertI32S:
		return ir.ConvertI32S, ir.F64, true
	case wasm.OpF64ConvertI32U:
		return ir.ConvertI32U, ir.F64, true
	case wasm.OpF64ConvertI64S:
		return ir.ConvertI64S, ir.F64, true
	case wasm.OpF64ConvertI64U:
		return ir.ConvertI64U, ir.F64, true

	case wasm.OpF32DemoteF64:
		return ir.DemoteF64, ir.F32, true
	case wasm.OpF64PromoteF32:
		return ir.PromoteF32, ir.F64, true

	case wasm.OpI32ReinterpretF32:
		return ir.ReinterpretF32AsI32, ir.I32, true
	case wasm.OpI64ReinterpretF64:
		return ir.ReinterpretF64AsI64, ir.I64, true
	case wasm.OpF32ReinterpretI32:
		return ir.ReinterpretI32AsF32, ir.F32, true
	case wasm.OpF64ReinterpretI64:
		return ir.ReinterpretI64AsF64, ir.F64, true

	case wasm.OpI32Eqz:
		return ir.Eqz, ir.I32, true
	}
	return 0, 0, false
}

// truncSatConvKindFor maps the 0xFC-prefixed saturating truncation
// sub-opcodes (MiscImm.SubOpcode).
func truncSatConvKindFor(sub uint32) (ir.ConvKind, ir.ValType, bool) {
	switch sub {
	case wasm.MiscI32TruncSatF32S:
		return ir.TruncSatF32S, ir.I32, true
	case wasm.MiscI32TruncSatF32U:
		return ir.TruncSatF32U, ir.I32, true
	case wasm.MiscI32TruncSatF64S:
		return ir.TruncSatF64S, ir.I32, true
	case wasm.MiscI32TruncSatF64U:
		return ir.TruncSatF64U, ir.I32, true
	case wasm.MiscI64TruncSatF32S:
		return ir.TruncSatF32S, ir.I64, true
	case wasm.MiscI64TruncSatF32U:
		return ir.TruncSatF32U, ir.I64, true
	case wasm.MiscI64TruncSatF64S:
		return ir.TruncSatF64S, ir.I64, true
	case wasm.MiscI64TruncSatF64U:
		return ir.TruncSatF64U, ir.I64, true
	}
	return 0, 0, false
}

// memOpFor maps a Wasm load/store opcode to the (ValType, MemWidth, signed)
// triple ir.MemKind packs into OpLoad/OpStore's Kind byte.
func memOpFor(op byte) (val ir.ValType, width ir.MemWidth, signed bool, isLoad, isStore bool) {
	switch op {
	case wasm.OpI32Load:
		return ir.I32, ir.Width32, false, true, false
	case wasm.OpI64Load:
		return ir.I64, ir.Width64, false, true, false
	case wasm.OpF32Load:
		return ir.F32, ir.Width32, false, true, false
	case wasm.OpF64Load:
		return ir.F64, ir.Width64, false, true, false
	case wasm.OpI32Load8S:
		return ir.I32, ir.Width8, true, true, false
	case wasm.OpI32Load8U:
		return ir.I32, ir.Width8, false, true, false
	case wasm.OpI32Load16S:
		return ir.I32, ir.Width16, true, true, false
	case wasm.OpI32Load16U:
		return ir.I32, ir.Width16, false, true, false
	case wasm.OpI64Load8S:
		return ir.I64, ir.Width8, true, true, false
	case wasm.OpI64Load8U:
		return ir.I64, ir.Width8, false, true, false
	case wasm.OpI64Load16S:
		return ir.I64, ir.Width16, true, true, false
	case wasm.OpI64Load16U:
		return ir.I64, ir.Width16, false, true, false
	case wasm.OpI64Load32S:
		return ir.I64, ir.Width32, true, true, false
	case wasm.OpI64Load32U:
		return ir.I64, ir.Width32, false, true, false

	case wasm.OpI32Store:
		return ir.I32, ir.Width32, false, false, true
	case wasm.OpI64Store:
		return ir.I64, ir.Width64, false, false, true
	case wasm.OpF32Store:
		return ir.F32, ir.Width32, false, false, true
	case wasm.OpF64Store:
		return ir.F64, ir.Width64, false, false, true
	case wasm.OpI32Store8:
		return ir.I32, ir.Width8, false, false, true
	case wasm.OpI32Store16:
		return ir.I32, ir.Width16, false, false, true
	case wasm.OpI64Store8:
		return ir.I64, ir.Width8, false, false, true
	case wasm.OpI64Store16:
		return ir.I64, ir.Width16, false, false, true
	case wasm.OpI64Store32:
		return ir.I64, ir.Width32, false, false, true
	}
	return 0, 0, false, false, false
}
