package rvm

import (
	"encoding/binary"

	"github.com/wippyai/wasm-runtime/ir"
)

// boundsCheck computes the byte range [addr, addr+n) for a memory access at
// ptr+offset and reports whether it fits within memLen, folding the
// ptr+offset overflow check into the same comparison (spec.md §6's
// MemoryOutOfBounds covers both).
func boundsCheck(ptr uint32, offset int32, n int, memLen int) (addr uint64, ok bool) {
	addr = uint64(ptr) + uint64(uint32(offset))
	end := addr + uint64(n)
	if end > uint64(memLen) {
		return 0, false
	}
	return addr, true
}

// loadMem reads width bytes at addr from mem and sign/zero-extends to val's
// native width (32 or 64 bits), per MemKind's signed flag.
func loadMem(mem []byte, addr uint64, width ir.MemWidth, signed bool, val ir.ValType) uint64 {
	switch width {
	case ir.Width8:
		b := mem[addr]
		if signed {
			if val.Width64() {
				return uint64(int64(int8(b)))
			}
			return uint64(uint32(int32(int8(b))))
		}
		return uint64(b)
	case ir.Width16:
		v := binary.LittleEndian.Uint16(mem[addr:])
		if signed {
			if val.Width64() {
				return uint64(int64(int16(v)))
			}
			return uint64(uint32(int32(int16(v))))
		}
		return uint64(v)
	case ir.Width32:
		v := binary.LittleEndian.Uint32(mem[addr:])
		if val.Width64() {
			if signed {
				return uint64(int64(int32(v)))
			}
			return uint64(v)
		}
		return uint64(v)
	case ir.Width64:
		return binary.LittleEndian.Uint64(mem[addr:])
	}
	return 0
}

// storeMem truncates v to width bytes and writes them at addr.
func storeMem(mem []byte, addr uint64, width ir.MemWidth, v uint64) {
	switch width {
	case ir.Width8:
		mem[addr] = byte(v)
	case ir.Width16:
		binary.LittleEndian.PutUint16(mem[addr:], uint16(v))
	case ir.Width32:
		binary.LittleEndian.PutUint32(mem[addr:], uint32(v))
	case ir.Width64:
		binary.LittleEndian.PutUint64(mem[addr:], v)
	}
}

// memCopy implements memory.copy's overlap-safe semantics (spec.md §6):
// Go's builtin copy already handles overlapping byte slices correctly.
func memCopy(mem []byte, dst, src, n uint64) bool {
	if dst+n > uint64(len(mem)) || src+n > uint64(len(mem)) {
		return false
	}
	copy(mem[dst:dst+n], mem[src:src+n])
	return true
}

// memFill implements memory.fill.
func memFill(mem []byte, dst uint64, val byte, n uint64) bool {
	if dst+n > uint64(len(mem)) {
		return false
	}
	region := mem[dst : dst+n]
	for i := range region {
		region[i] = val
	}
	return true
}

// memInit implements memory.init: copies from a passive data segment's
// bytes into mem.
func memInit(mem []byte, dst uint64, data []byte, src, n uint64) bool {
	if dst+n > uint64(len(mem)) || src+n > uint64(len(data)) {
		return false
	}
	copy(mem[dst:dst+n], data[src:src+n])
	return true
}
