package rvm

import (
	"math"
	"math/bits"

	"github.com/wippyai/wasm-runtime/ir"
)

// This file computes the pure numeric core of OpBinArith/OpUnary/OpCmp/
// OpConvert: given raw 64-bit register words (the low 32 bits significant
// for i32/f32), produce the raw result word, or report a trap. Every
// function is free of stack/frame concerns so it can be unit-tested in
// isolation from the dispatch loop, matching how wasm/instruction.go keeps
// decoding separate from evaluation.

func i32(w uint64) int32    { return int32(uint32(w)) }
func u32v(w uint64) uint32  { return uint32(w) }
func i64(w uint64) int64    { return int64(w) }
func f32v(w uint64) float32 { return math.Float32frombits(uint32(w)) }
func f64v(w uint64) float64 { return math.Float64frombits(w) }

func fromI32(v int32) uint64    { return uint64(uint32(v)) }
func fromU32(v uint32) uint64   { return uint64(v) }
func fromI64(v int64) uint64    { return uint64(v) }
func fromF32(v float32) uint64  { return uint64(math.Float32bits(v)) }
func fromF64(v float64) uint64  { return math.Float64bits(v) }

// evalBinArith computes a ArithKind b for the given value type. trap is
// TrapNone unless the operation traps (integer division by zero/overflow).
func evalBinArith(val ir.ValType, kind ir.ArithKind, a, b uint64) (result uint64, trap ir.TrapCode) {
	switch val {
	case ir.I32:
		return evalBinArith32(kind, i32(a), u32v(a), i32(b), u32v(b))
	case ir.I64:
		return evalBinArith64(kind, i64(a), a, i64(b), b)
	case ir.F32:
		return evalBinArithF32(kind, f32v(a), f32v(b))
	case ir.F64:
		return evalBinArithF64(kind, f64v(a), f64v(b))
	}
	return 0, ir.TrapNone
}

func evalBinArith32(kind ir.ArithKind, as int32, au uint32, bs int32, bu uint32) (uint64, ir.TrapCode) {
	switch kind {
	case ir.Add:
		return fromU32(au + bu), ir.TrapNone
	case ir.Sub:
		return fromU32(au - bu), ir.TrapNone
	case ir.Mul:
		return fromU32(au * bu), ir.TrapNone
	case ir.DivS:
		if bs == 0 {
			return 0, ir.TrapIntegerDivisionByZero
		}
		if as == math.MinInt32 && bs == -1 {
			return 0, ir.TrapIntegerOverflow
		}
		return fromI32(as / bs), ir.TrapNone
	case ir.DivU:
		if bu == 0 {
			return 0, ir.TrapIntegerDivisionByZero
		}
		return fromU32(au / bu), ir.TrapNone
	case ir.RemS:
		if bs == 0 {
			return 0, ir.TrapIntegerDivisionByZero
		}
		if as == math.MinInt32 && bs == -1 {
			return 0, ir.TrapNone
		}
		return fromI32(as % bs), ir.TrapNone
	case ir.RemU:
		if bu == 0 {
			return 0, ir.TrapIntegerDivisionByZero
		}
		return fromU32(au % bu), ir.TrapNone
	case ir.And:
		return fromU32(au & bu), ir.TrapNone
	case ir.Or:
		return fromU32(au | bu), ir.TrapNone
	case ir.Xor:
		return fromU32(au ^ bu), ir.TrapNone
	case ir.Shl:
		return fromU32(au << (bu & 31)), ir.TrapNone
	case ir.ShrS:
		return fromI32(as >> (bu & 31)), ir.TrapNone
	case ir.ShrU:
		return fromU32(au >> (bu & 31)), ir.TrapNone
	case ir.Rotl:
		return fromU32(bits.RotateLeft32(au, int(bu&31))), ir.TrapNone
	case ir.Rotr:
		return fromU32(bits.RotateLeft32(au, -int(bu&31))), ir.TrapNone
	}
	return 0, ir.TrapNone
}

func evalBinArith64(kind ir.ArithKind, as int64, au uint64, bs int64, bu uint64) (uint64, ir.TrapCode) {
	switch kind {
	case ir.Add:
		return fromI64(as + bs), ir.TrapNone
	case ir.Sub:
		return fromI64(as - bs), ir.TrapNone
	case ir.Mul:
		return fromI64(as * bs), ir.TrapNone
	case ir.DivS:
		if bs == 0 {
			return 0, ir.TrapIntegerDivisionByZero
		}
		if as == math.MinInt64 && bs == -1 {
			return 0, ir.TrapIntegerOverflow
		}
		return fromI64(as / bs), ir.TrapNone
	case ir.DivU:
		if bu == 0 {
			return 0, ir.TrapIntegerDivisionByZero
		}
		return au / bu, ir.TrapNone
	case ir.RemS:
		if bs == 0 {
			return 0, ir.TrapIntegerDivisionByZero
		}
		if as == math.MinInt64 && bs == -1 {
			return 0, ir.TrapNone
		}
		return fromI64(as % bs), ir.TrapNone
	case ir.RemU:
		if bu == 0 {
			return 0, ir.TrapIntegerDivisionByZero
		}
		return au % bu, ir.TrapNone
	case ir.And:
		return au & bu, ir.TrapNone
	case ir.Or:
		return au | bu, ir.TrapNone
	case ir.Xor:
		return au ^ bu, ir.TrapNone
	case ir.Shl:
		return au << (bu & 63), ir.TrapNone
	case ir.ShrS:
		return fromI64(as >> (bu & 63)), ir.TrapNone
	case ir.ShrU:
		return au >> (bu & 63), ir.TrapNone
	case ir.Rotl:
		return bits.RotateLeft64(au, int(bu&63)), ir.TrapNone
	case ir.Rotr:
		return bits.RotateLeft64(au, -int(bu&63)), ir.TrapNone
	}
	return 0, ir.TrapNone
}

func evalBinArithF32(kind ir.ArithKind, a, b float32) (uint64, ir.TrapCode) {
	switch kind {
	case ir.Add:
		return fromF32(a + b), ir.TrapNone
	case ir.Sub:
		return fromF32(a - b), ir.TrapNone
	case ir.Mul:
		return fromF32(a * b), ir.TrapNone
	case ir.DivS, ir.DivU:
		return fromF32(a / b), ir.TrapNone
	case ir.FMin:
		return fromF32(wasmFMin32(a, b)), ir.TrapNone
	case ir.FMax:
		return fromF32(wasmFMax32(a, b)), ir.TrapNone
	case ir.FCopysign:
		return fromF32(float32(math.Copysign(float64(a), float64(b)))), ir.TrapNone
	}
	return 0, ir.TrapNone
}

func evalBinArithF64(kind ir.ArithKind, a, b float64) (uint64, ir.TrapCode) {
	switch kind {
	case ir.Add:
		return fromF64(a + b), ir.TrapNone
	case ir.Sub:
		return fromF64(a - b), ir.TrapNone
	case ir.Mul:
		return fromF64(a * b), ir.TrapNone
	case ir.DivS, ir.DivU:
		return fromF64(a / b), ir.TrapNone
	case ir.FMin:
		return fromF64(wasmFMin64(a, b)), ir.TrapNone
	case ir.FMax:
		return fromF64(wasmFMax64(a, b)), ir.TrapNone
	case ir.FCopysign:
		return fromF64(math.Copysign(a, b)), ir.TrapNone
	}
	return 0, ir.TrapNone
}

// wasmFMin32/wasmFMax32/wasmFMin64/wasmFMax64 implement Wasm's NaN-
// propagating min/max, which differs from math.Min/Max's handling of
// negative zero and NaN.
func wasmFMin32(a, b float32) float32 {
	if a != a {
		return a
	}
	if b != b {
		return b
	}
	if a == 0 && b == 0 {
		if math.Signbit(float64(a)) {
			return a
		}
		return b
	}
	if a < b {
		return a
	}
	return b
}

func wasmFMax32(a, b float32) float32 {
	if a != a {
		return a
	}
	if b != b {
		return b
	}
	if a == 0 && b == 0 {
		if !math.Signbit(float64(a)) {
			return a
		}
		return b
	}
	if a > b {
		return a
	}
	return b
}

func wasmFMin64(a, b float64) float64 {
	if a != a {
		return a
	}
	if b != b {
		return b
	}
	if a == 0 && b == 0 {
		if math.Signbit(a) {
			return a
		}
		return b
	}
	if a < b {
		return a
	}
	return b
}

func wasmFMax64(a, b float64) float64 {
	if a != a {
		return a
	}
	if b != b {
		return b
	}
	if a == 0 && b == 0 {
		if !math.Signbit(a) {
			return a
		}
		return b
	}
	if a > b {
		return a
	}
	return b
}

// evalUnary computes a UnaryKind applied to a single operand.
func evalUnary(val ir.ValType, kind ir.UnaryKind, a uint64) uint64 {
	switch val {
	case ir.I32:
		v := u32v(a)
		switch kind {
		case ir.Clz:
			return fromU32(uint32(bits.LeadingZeros32(v)))
		case ir.Ctz:
			return fromU32(uint32(bits.TrailingZeros32(v)))
		case ir.Popcnt:
			return fromU32(uint32(bits.OnesCount32(v)))
		}
	case ir.I64:
		switch kind {
		case ir.Clz:
			return fromI64(int64(bits.LeadingZeros64(a)))
		case ir.Ctz:
			return fromI64(int64(bits.TrailingZeros64(a)))
		case ir.Popcnt:
			return fromI64(int64(bits.OnesCount64(a)))
		}
	case ir.F32:
		f := f32v(a)
		switch kind {
		case ir.FAbs:
			return fromF32(float32(math.Abs(float64(f))))
		case ir.FNeg:
			return fromF32(-f)
		case ir.FCeil:
			return fromF32(float32(math.Ceil(float64(f))))
		case ir.FFloor:
			return fromF32(float32(math.Floor(float64(f))))
		case ir.FTrunc:
			return fromF32(float32(math.Trunc(float64(f))))
		case ir.FNearest:
			return fromF32(float32(math.RoundToEven(float64(f))))
		case ir.FSqrt:
			return fromF32(float32(math.Sqrt(float64(f))))
		}
	case ir.F64:
		f := f64v(a)
		switch kind {
		case ir.FAbs:
			return fromF64(math.Abs(f))
		case ir.FNeg:
			return fromF64(-f)
		case ir.FCeil:
			return fromF64(math.Ceil(f))
		case ir.FFloor:
			return fromF64(math.Floor(f))
		case ir.FTrunc:
			return fromF64(math.Trunc(f))
		case ir.FNearest:
			return fromF64(math.RoundToEven(f))
		case ir.FSqrt:
			return fromF64(math.Sqrt(f))
		}
	}
	return 0
}

// evalCmp computes a CmpKind for the given value type, returning an i32
// boolean word (0 or 1). Negated kinds invert the positive result — fusion
// never emits a separate code path, only a different Kind (spec.md §4.3).
func evalCmp(val ir.ValType, kind ir.CmpKind, a, b uint64) uint64 {
	positive := kind
	negate := false
	switch kind {
	case ir.NotEq, ir.NotLtS, ir.NotLtU, ir.NotGtS, ir.NotGtU,
		ir.NotLeS, ir.NotLeU, ir.NotGeS, ir.NotGeU, ir.NotLogAnd, ir.NotLogOr:
		negate = true
		positive = kind.Negate()
	}

	var r bool
	switch val {
	case ir.I32:
		r = evalCmp32(positive, i32(a), u32v(a), i32(b), u32v(b))
	case ir.I64:
		r = evalCmp64(positive, i64(a), a, i64(b), b)
	case ir.F32:
		r = evalCmpF(positive, float64(f32v(a)), float64(f32v(b)))
	case ir.F64:
		r = evalCmpF(positive, f64v(a), f64v(b))
	}
	if negate {
		r = !r
	}
	if r {
		return 1
	}
	return 0
}

func evalCmp32(kind ir.CmpKind, as int32, au uint32, bs int32, bu uint32) bool {
	switch kind {
	case ir.Eq:
		return au == bu
	case ir.Ne:
		return au != bu
	case ir.LtS:
		return as < bs
	case ir.LtU:
		return au < bu
	case ir.GtS:
		return as > bs
	case ir.GtU:
		return au > bu
	case ir.LeS:
		return as <= bs
	case ir.LeU:
		return au <= bu
	case ir.GeS:
		return as >= bs
	case ir.GeU:
		return au >= bu
	case ir.LogAnd:
		return au != 0 && bu != 0
	case ir.LogOr:
		return au != 0 || bu != 0
	}
	return false
}

func evalCmp64(kind ir.CmpKind, as int64, au uint64, bs int64, bu uint64) bool {
	switch kind {
	case ir.Eq:
		return au == bu
	case ir.Ne:
		return au != bu
	case ir.LtS:
		return as < bs
	case ir.LtU:
		return au < bu
	case ir.GtS:
		return as > bs
	case ir.GtU:
		return au > bu
	case ir.LeS:
		return as <= bs
	case ir.LeU:
		return au <= bu
	case ir.GeS:
		return as >= bs
	case ir.GeU:
		return au >= bu
	case ir.LogAnd:
		return au != 0 && bu != 0
	case ir.LogOr:
		return au != 0 || bu != 0
	}
	return false
}

func evalCmpF(kind ir.CmpKind, a, b float64) bool {
	switch kind {
	case ir.Eq:
		return a == b
	case ir.Ne:
		return a != b
	case ir.LtS, ir.LtU:
		return a < b
	case ir.GtS, ir.GtU:
		return a > b
	case ir.LeS, ir.LeU:
		return a <= b
	case ir.GeS, ir.GeU:
		return a >= b
	}
	return false
}

// evalConvert computes a ConvKind, reporting a trap for the
// trapping-truncation family when the source float is NaN or out of the
// target integer's representable range.
func evalConvert(kind ir.ConvKind, a uint64) (result uint64, trap ir.TrapCode) {
	switch kind {
	case ir.WrapI64:
		return fromU32(uint32(a)), ir.TrapNone
	case ir.ExtendI32S:
		return fromI64(int64(i32(a))), ir.TrapNone
	case ir.ExtendI32U:
		return fromI64(int64(u32v(a))), ir.TrapNone
	case ir.Extend8S:
		return fromI64(int64(int8(a))), ir.TrapNone
	case ir.Extend16S:
		return fromI64(int64(int16(a))), ir.TrapNone
	case ir.Extend32S:
		return fromI64(int64(int32(a))), ir.TrapNone
	case ir.ConvertI32S:
		return fromF64(float64(i32(a))), ir.TrapNone
	case ir.ConvertI32U:
		return fromF64(float64(u32v(a))), ir.TrapNone
	case ir.ConvertI64S:
		return fromF64(float64(i64(a))), ir.TrapNone
	case ir.ConvertI64U:
		return fromF64(float64(a)), ir.TrapNone
	case ir.DemoteF64:
		return fromF32(float32(f64v(a))), ir.TrapNone
	case ir.PromoteF32:
		return fromF64(float64(f32v(a))), ir.TrapNone
	case ir.ReinterpretI32AsF32:
		return a & 0xFFFFFFFF, ir.TrapNone
	case ir.ReinterpretI64AsF64:
		return a, ir.TrapNone
	case ir.ReinterpretF32AsI32:
		return a & 0xFFFFFFFF, ir.TrapNone
	case ir.ReinterpretF64AsI64:
		return a, ir.TrapNone
	case ir.Eqz:
		if u32v(a) == 0 {
			return 1, ir.TrapNone
		}
		return 0, ir.TrapNone
	case ir.TruncF32S, ir.TruncF32U, ir.TruncF64S, ir.TruncF64U:
		return truncToInt(kind, a, false)
	case ir.TruncSatF32S, ir.TruncSatF32U, ir.TruncSatF64S, ir.TruncSatF64U:
		return truncToInt(kind, a, true)
	}
	return 0, ir.TrapNone
}

func truncToInt(kind ir.ConvKind, a uint64, saturating bool) (uint64, ir.TrapCode) {
	var f float64
	switch kind {
	case ir.TruncF32S, ir.TruncF32U, ir.TruncSatF32S, ir.TruncSatF32U:
		f = float64(f32v(a))
	default:
		f = f64v(a)
	}

	is64 := kind == ir.TruncF64S || kind == ir.TruncF64U || kind == ir.TruncSatF64S || kind == ir.TruncSatF64U
	signed := kind == ir.TruncF32S || kind == ir.TruncF64S || kind == ir.TruncSatF32S || kind == ir.TruncSatF64S

	if math.IsNaN(f) {
		if saturating {
			return 0, ir.TrapNone
		}
		return 0, ir.TrapInvalidConversionToInteger
	}

	trunc := math.Trunc(f)

	var lo, hi float64
	if is64 {
		if signed {
			lo, hi = -9223372036854775808, 9223372036854775808
		} else {
			lo, hi = -1, 18446744073709551616
		}
	} else {
		if signed {
			lo, hi = -2147483649, 2147483648
		} else {
			lo, hi = -1, 4294967296
		}
	}

	if trunc <= lo || trunc >= hi {
		if !saturating {
			return 0, ir.TrapIntegerOverflow
		}
		return saturate(trunc, is64, signed, lo), ir.TrapNone
	}

	if is64 {
		if signed {
			return fromI64(int64(trunc)), ir.TrapNone
		}
		return uint64(trunc), ir.TrapNone
	}
	if signed {
		return fromI32(int32(trunc)), ir.TrapNone
	}
	return fromU32(uint32(trunc)), ir.TrapNone
}

func saturate(trunc float64, is64, signed bool, lo float64) uint64 {
	underflow := trunc <= lo
	if is64 {
		if signed {
			if underflow {
				return fromI64(math.MinInt64)
			}
			return fromI64(math.MaxInt64)
		}
		if underflow {
			return 0
		}
		return ^uint64(0)
	}
	if signed {
		if underflow {
			return fromI32(math.MinInt32)
		}
		return fromI32(math.MaxInt32)
	}
	if underflow {
		return 0
	}
	return fromU32(math.MaxUint32)
}
