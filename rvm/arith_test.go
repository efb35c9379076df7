package rvm

import (
	"math"
	"testing"

	"github.com/wippyai/wasm-runtime/ir"
)

func TestEvalBinArithDivByZeroTraps(t *testing.T) {
	_, trap := evalBinArith(ir.I32, ir.DivS, fromI32(7), fromI32(0))
	if trap != ir.TrapIntegerDivisionByZero {
		t.Fatalf("trap = %v, want IntegerDivisionByZero", trap)
	}
}

func TestEvalBinArithDivOverflowTraps(t *testing.T) {
	_, trap := evalBinArith(ir.I32, ir.DivS, fromI32(math.MinInt32), fromI32(-1))
	if trap != ir.TrapIntegerOverflow {
		t.Fatalf("trap = %v, want IntegerOverflow", trap)
	}
}

func TestEvalBinArithRemSMinByNegOneNoTrap(t *testing.T) {
	res, trap := evalBinArith(ir.I32, ir.RemS, fromI32(math.MinInt32), fromI32(-1))
	if trap != ir.TrapNone {
		t.Fatalf("unexpected trap %v", trap)
	}
	if int32(uint32(res)) != 0 {
		t.Fatalf("result = %d, want 0", int32(uint32(res)))
	}
}

func TestEvalBinArithUnsignedDivision(t *testing.T) {
	res, trap := evalBinArith(ir.I32, ir.DivU, fromU32(0xFFFFFFFF), fromU32(2))
	if trap != ir.TrapNone {
		t.Fatalf("unexpected trap %v", trap)
	}
	if uint32(res) != 0x7FFFFFFF {
		t.Fatalf("result = %x, want 0x7FFFFFFF", uint32(res))
	}
}

func TestEvalCmpNegatedKind(t *testing.T) {
	a, b := fromI32(1), fromI32(2)
	pos := evalCmp(ir.I32, ir.LtS, a, b)
	neg := evalCmp(ir.I32, ir.NotLtS, a, b)
	if pos == 0 {
		t.Fatalf("1 < 2 should be true")
	}
	if neg != 0 {
		t.Fatalf("negated 1 < 2 should be false")
	}
}

func TestEvalConvertTruncTrapsOnNaN(t *testing.T) {
	_, trap := evalConvert(ir.TruncF32S, fromF32(float32(math.NaN())))
	if trap != ir.TrapInvalidConversionToInteger {
		t.Fatalf("trap = %v, want InvalidConversionToInteger", trap)
	}
}

func TestEvalConvertTruncSatOnNaNReturnsZero(t *testing.T) {
	res, trap := evalConvert(ir.TruncSatF32S, fromF32(float32(math.NaN())))
	if trap != ir.TrapNone {
		t.Fatalf("unexpected trap %v", trap)
	}
	if res != 0 {
		t.Fatalf("result = %d, want 0", res)
	}
}

func TestEvalConvertTruncSatOverflowSaturates(t *testing.T) {
	res, trap := evalConvert(ir.TruncSatF64S, fromF64(1e300))
	if trap != ir.TrapNone {
		t.Fatalf("unexpected trap %v", trap)
	}
	if int64(res) != math.MaxInt64 {
		t.Fatalf("result = %d, want MaxInt64", int64(res))
	}
}

func TestEvalConvertTruncOverflowTraps(t *testing.T) {
	_, trap := evalConvert(ir.TruncF32S, fromF32(1e20))
	if trap != ir.TrapIntegerOverflow {
		t.Fatalf("trap = %v, want IntegerOverflow", trap)
	}
}

func TestEvalConvertWrapAndExtend(t *testing.T) {
	wrapped, _ := evalConvert(ir.WrapI64, fromI64(0x1_0000_0001))
	if uint32(wrapped) != 1 {
		t.Fatalf("wrap = %d, want 1", uint32(wrapped))
	}
	extended, _ := evalConvert(ir.ExtendI32S, fromI32(-1))
	if int64(extended) != -1 {
		t.Fatalf("extend = %d, want -1", int64(extended))
	}
}

func TestWasmFMinMaxNegativeZero(t *testing.T) {
	negZero := math.Copysign(0, -1)
	if wasmFMin64(0, negZero) != negZero {
		t.Fatalf("min(0,-0) should be -0")
	}
	if wasmFMax64(0, negZero) != 0 {
		t.Fatalf("max(0,-0) should be +0")
	}
}
