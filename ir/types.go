package ir

// ValType is the register IR's notion of a value's storage type. Reference
// types (funcref/externref) are carried as opaque 64-bit words and use
// I64's load/store/copy width; the executor never interprets their bits.
type ValType uint8

const (
	I32 ValType = iota
	I64
	F32
	F64
)

func (v ValType) String() string {
	switch v {
	case I32:
		return "i32"
	case I64:
		return "i64"
	case F32:
		return "f32"
	case F64:
		return "f64"
	default:
		return "invalid"
	}
}

// Width64 reports whether v occupies a full 64-bit stack word natively
// (i64/f64) as opposed to the low 32 bits of one (i32/f32).
func (v ValType) Width64() bool { return v == I64 || v == F64 }

// Shape distinguishes which operands of a binary/compare instruction are
// stack slots versus compile-time immediates. Naming follows spec.md §3:
// the trailing letters name (result, lhs, rhs) kind, s=stack, i=immediate.
type Shape uint8

const (
	ShapeSSS Shape = iota // result, lhs, rhs all stack
	ShapeSSI              // rhs is immediate
	ShapeSIS              // lhs is immediate (non-commutative ops only)
)

func (s Shape) String() string {
	switch s {
	case ShapeSSS:
		return "sss"
	case ShapeSSI:
		return "ssi"
	case ShapeSIS:
		return "sis"
	default:
		return "?"
	}
}

// ArithKind enumerates the binary arithmetic/logic operations. Not every
// kind is valid for every ValType (DivS/DivU/RemS/RemU/And/Or/Xor/Shl/
// ShrS/ShrU/Rotl/Rotr are integer-only; FMin/FMax/FCopysign are float-only);
// translate validates this against the source operator, never the
// executor.
type ArithKind uint8

const (
	Add ArithKind = iota
	Sub
	Mul
	DivS
	DivU
	RemS
	RemU
	And
	Or
	Xor
	Shl
	ShrS
	ShrU
	Rotl
	Rotr
	FMin
	FMax
	FCopysign
)

// Commutative reports whether operand order may be swapped, which lets the
// translator canonicalize (imm, stack) into (stack, imm) and skip the _sis
// shape entirely.
func (k ArithKind) Commutative() bool {
	switch k {
	case Add, Mul, And, Or, Xor, FMin, FMax:
		return true
	default:
		return false
	}
}

func (k ArithKind) String() string {
	names := [...]string{"add", "sub", "mul", "div_s", "div_u", "rem_s", "rem_u",
		"and", "or", "xor", "shl", "shr_s", "shr_u", "rotl", "rotr",
		"fmin", "fmax", "fcopysign"}
	if int(k) < len(names) {
		return names[k]
	}
	return "?"
}

// UnaryKind enumerates single-operand numeric operations.
type UnaryKind uint8

const (
	Clz UnaryKind = iota
	Ctz
	Popcnt
	FAbs
	FNeg
	FCeil
	FFloor
	FTrunc
	FNearest
	FSqrt
)

// CmpKind enumerates comparisons, including the bitwise-negated forms that
// branch/select fusion produces (spec.md §4.3's "every comparison kind has
// a negated counterpart"). Negated forms let fusion turn `br_if_eqz` and
// similar "not" patterns into the same fused op shapes as their positive
// counterparts, instead of needing a separate negate-the-branch-target
// encoding.
type CmpKind uint8

const (
	Eq CmpKind = iota
	Ne
	LtS
	LtU
	GtS
	GtU
	LeS
	LeU
	GeS
	GeU
	LogAnd // i32.and/i32.or results treated as booleans by select/br_if fusion
	LogOr
	NotEq
	NotLtS
	NotLtU
	NotGtS
	NotGtU
	NotLeS
	NotLeU
	NotGeS
	NotGeU
	NotLogAnd
	NotLogOr
)

// Negate returns the logically-negated comparison kind, used when fusing
// `br_if_eqz`/`select` against an `if (!cond)` pattern.
func (k CmpKind) Negate() CmpKind {
	switch k {
	case Eq:
		return Ne
	case NotEq:
		return Eq
	case Ne:
		return Eq
	case LtS:
		return NotLtS
	case LtU:
		return NotLtU
	case GtS:
		return NotGtS
	case GtU:
		return NotGtU
	case LeS:
		return NotLeS
	case LeU:
		return NotLeU
	case GeS:
		return NotGeS
	case GeU:
		return NotGeU
	case NotLtS:
		return LtS
	case NotLtU:
		return LtU
	case NotGtS:
		return GtS
	case NotGtU:
		return GtU
	case NotLeS:
		return LeS
	case NotLeU:
		return LeU
	case NotGeS:
		return GeS
	case NotGeU:
		return GeU
	case LogAnd:
		return NotLogAnd
	case NotLogAnd:
		return LogAnd
	case LogOr:
		return NotLogOr
	case NotLogOr:
		return LogOr
	default:
		return k
	}
}

// ConvKind enumerates width/sign conversions and reinterpretations.
type ConvKind uint8

const (
	WrapI64 ConvKind = iota
	ExtendI32S
	ExtendI32U
	Extend8S
	Extend16S
	Extend32S
	TruncF32S
	TruncF32U
	TruncF64S
	TruncF64U
	TruncSatF32S
	TruncSatF32U
	TruncSatF64S
	TruncSatF64U
	ConvertI32S
	ConvertI32U
	ConvertI64S
	ConvertI64U
	DemoteF64
	PromoteF32
	ReinterpretI32AsF32
	ReinterpretI64AsF64
	ReinterpretF32AsI32
	ReinterpretF64AsI64
	Eqz
)

// MemWidth is the byte width a load/store instruction touches in linear
// memory, independent of Val (the register type the loaded value occupies
// once sign/zero-extended). Wasm's i32.load8_s, i64.load32_u, etc. combine
// a narrow memory width with a wider register type; OpLoad/OpStore carry
// this in Instr.Kind rather than minting a separate opcode per width like
// wasm/constants.go's byte-per-opcode table does, since the register IR
// only needs four load/store ops total (spec.md §9's compactness framing).
type MemWidth uint8

const (
	Width8 MemWidth = iota
	Width16
	Width32
	Width64
)

// Bytes returns the number of bytes this width touches in memory.
func (w MemWidth) Bytes() int {
	switch w {
	case Width8:
		return 1
	case Width16:
		return 2
	case Width32:
		return 4
	case Width64:
		return 8
	}
	return 0
}

// MemKind packs a MemWidth and a sign-extension flag into the single byte
// OpLoad's Instr.Kind carries (OpStore ignores signed — truncation never
// needs a sign). Narrow-store instructions (i32.store8) and full-width
// loads (i32.load, i64.load) both set signed=false; only a narrow *load*
// consults it.
func MemKind(width MemWidth, signed bool) uint8 {
	k := uint8(width)
	if signed {
		k |= 0x4
	}
	return k
}

// DecodeMemKind unpacks a MemKind byte back into width and sign.
func DecodeMemKind(k uint8) (width MemWidth, signed bool) {
	return MemWidth(k & 0x3), k&0x4 != 0
}

// TrapCode is the closed trap enum from spec.md §6.
type TrapCode uint8

const (
	TrapNone TrapCode = iota
	TrapUnreachable
	TrapMemoryOutOfBounds
	TrapTableOutOfBounds
	TrapIndirectCallToNull
	TrapBadSignature
	TrapIntegerDivisionByZero
	TrapIntegerOverflow
	TrapInvalidConversionToInteger
	TrapStackOverflow
	TrapGrowthOperationLimited
)

func (t TrapCode) String() string {
	names := [...]string{"none", "unreachable", "memory_out_of_bounds",
		"table_out_of_bounds", "indirect_call_to_null", "bad_signature",
		"integer_division_by_zero", "integer_overflow",
		"invalid_conversion_to_integer", "stack_overflow",
		"growth_operation_limited"}
	if int(t) < len(names) {
		return names[t]
	}
	return "?"
}
