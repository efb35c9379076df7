// Package ir defines the register-machine intermediate representation that
// the translate package emits and the rvm package executes.
//
// Every IR value reference is a Slot: a signed 16-bit index into the
// executing frame's region of the value stack (non-negative) or into the
// function's constant pool (negative). A SlotSpan names a contiguous run of
// slots used for call arguments, multi-value results, and branch-table
// payload copies.
//
// Instructions are a flat, fixed-shape struct (Instr) rather than one Go
// type per opcode variant: compactness and dispatch speed come from an
// explicit Op tag plus a handful of typed discriminant fields (Val, Kind,
// Shape), not from a large sum-of-structs hierarchy. This is the encoding
// choice spec.md §9 calls out explicitly ("a flat tagged sum ... is
// acceptable; compactness of each variant matters more than variant
// count") — here the flattening goes one step further, collapsing the
// {i32,i64,f32,f64} x {add,sub,...} x {sss,ssi,sis} cross product into a
// single Op class (OpBinArith) carrying ValType/ArithKind/Shape fields,
// rather than enumerating ~250 literal opcodes. The byte-encoded stream
// still varies in length per Op+Shape exactly as spec.md describes.
package ir
