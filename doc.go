// Package wasmruntime is the module root for a register-machine WebAssembly
// 1.0 interpreter core.
//
// # Architecture
//
//	wasm/      binary module + instruction decode (upstream collaborator,
//	           not a validating embedder)
//	wat/       WAT → binary compiler, used only as a test fixture builder
//	ir/        opcode set, Slot/SlotSpan, byte-stream encode/decode
//	translate/ stack-machine Wasm ops → register IR translator
//	rvm/       value stack, frames, executor/dispatch loop, fuel, traps
//	store/     instance, dedup type pool, resource cache/store view
//	rvmerr/    structured error/trap types
//
// The embedder API, disassembly, and CLI/file I/O are out of scope — this
// module is the translate-then-execute core, not a host runtime.
package wasmruntime
