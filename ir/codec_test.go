package ir

import (
	"reflect"
	"testing"
)

func roundTrip(t *testing.T, in Instr) Instr {
	t.Helper()
	e := NewEncoder()
	Emit(e, in)
	d := NewDecoder(e.Bytes())
	out, ip := d.Decode(0)
	if ip != e.Len() {
		t.Fatalf("decode consumed %d bytes, encoder wrote %d", ip, e.Len())
	}
	return out
}

func TestRoundTripBinArithSSS(t *testing.T) {
	in := Instr{Op: OpBinArith, Val: I32, Kind: uint8(Add), Shape: ShapeSSS, Result: 2, A: 0, B: 1}
	out := roundTrip(t, in)
	if !reflect.DeepEqual(out, in) {
		t.Fatalf("got %+v, want %+v", out, in)
	}
}

func TestRoundTripBinArithSSI(t *testing.T) {
	in := Instr{Op: OpBinArith, Val: I32, Kind: uint8(Add), Shape: ShapeSSI, Result: 1, A: 0, ImmB: 7}
	out := roundTrip(t, in)
	if !reflect.DeepEqual(out, in) {
		t.Fatalf("got %+v, want %+v", out, in)
	}
}

func TestRoundTripBranchCmp(t *testing.T) {
	in := Instr{Op: OpBranchCmp, Val: I32, Kind: uint8(LtU), Shape: ShapeSSS, A: 0, B: 1, Offset: 42}
	out := roundTrip(t, in)
	if !reflect.DeepEqual(out, in) {
		t.Fatalf("got %+v, want %+v", out, in)
	}
}

func TestRoundTripBrTable(t *testing.T) {
	in := Instr{Op: OpBrTable, A: 3, Targets: []BrTableTarget{
		{Offset: 10},
		{Offset: 20, Span: SlotSpan{Base: 1, Len: 2}},
	}}
	out := roundTrip(t, in)
	if len(out.Targets) != 2 || out.Targets[0].Offset != 10 || out.Targets[1].Span.Len != 2 {
		t.Fatalf("got %+v", out)
	}
}

func TestRoundTripCallIndirect(t *testing.T) {
	in := Instr{Op: OpCallIndirect, Span: SlotSpan{Base: 4, Len: 2}, A: 10, Aux: 3, Aux2: 1}
	out := roundTrip(t, in)
	if !reflect.DeepEqual(out, in) {
		t.Fatalf("got %+v, want %+v", out, in)
	}
}

func TestRoundTripTrap(t *testing.T) {
	in := Instr{Op: OpTrap, Trap: TrapIntegerDivisionByZero}
	out := roundTrip(t, in)
	if out.Trap != TrapIntegerDivisionByZero {
		t.Fatalf("got %+v", out)
	}
}

func TestSlotConstRoundTrip(t *testing.T) {
	for i := 0; i < 5; i++ {
		s := ConstSlot(i)
		if !s.IsConst() {
			t.Fatalf("ConstSlot(%d) = %d not recognized as const", i, s)
		}
		if got := s.ConstIndex(); got != i {
			t.Fatalf("ConstSlot(%d).ConstIndex() = %d", i, got)
		}
	}
}

func TestCmpKindNegateInvolution(t *testing.T) {
	kinds := []CmpKind{Eq, Ne, LtS, LtU, GtS, GtU, LeS, LeU, GeS, GeU, LogAnd, LogOr}
	for _, k := range kinds {
		if k.Negate().Negate() != k {
			t.Fatalf("Negate not involutive for %v", k)
		}
	}
}
