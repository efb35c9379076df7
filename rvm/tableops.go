package rvm

import "github.com/wippyai/wasm-runtime/store"

// encodeFuncRef interns ref behind a small integer handle so it can travel
// through the value stack's uint64 words; handle 0 is reserved for the null
// funcref (store.FuncRef{Valid: false}), matching ref.is_null's zero test.
func (ex *Executor) encodeFuncRef(ref store.FuncRef) uint64 {
	if !ref.Valid {
		return 0
	}
	ex.refs = append(ex.refs, ref)
	return uint64(len(ex.refs))
}

// decodeFuncRef resolves a handle word back into a store.FuncRef.
func (ex *Executor) decodeFuncRef(v uint64) store.FuncRef {
	if v == 0 {
		return store.FuncRef{Valid: false}
	}
	idx := int(v) - 1
	if idx < 0 || idx >= len(ex.refs) {
		return store.FuncRef{Valid: false}
	}
	return ex.refs[idx]
}

// tableCopyCross implements table.copy between two distinct tables (same-
// table copies use Table.CopyWithin's overlap-safe path instead).
func tableCopyCross(dst, src *store.Table, dstIdx, srcIdx, n uint32) bool {
	if uint64(srcIdx)+uint64(n) > uint64(src.Size()) || uint64(dstIdx)+uint64(n) > uint64(dst.Size()) {
		return false
	}
	for i := uint32(0); i < n; i++ {
		ref, _ := src.Get(srcIdx + i)
		dst.Set(dstIdx+i, ref)
	}
	return true
}

// tableInit implements table.init: copies from a passive element segment's
// resolved refs into tbl.
func tableInit(tbl *store.Table, refs []store.FuncRef, dst, src, n uint32) bool {
	if uint64(src)+uint64(n) > uint64(len(refs)) || uint64(dst)+uint64(n) > uint64(tbl.Size()) {
		return false
	}
	for i := uint32(0); i < n; i++ {
		tbl.Set(dst+i, refs[src+i])
	}
	return true
}
