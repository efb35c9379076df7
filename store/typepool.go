package store

import (
	"sync"

	"github.com/wippyai/wasm-runtime/wasm"
)

// TypeHandle is a dedup'd function-type index. Two functions share a
// TypeHandle iff their signatures are equal, which is what lets
// call_indirect compare signatures in O(1) (spec.md §3).
type TypeHandle uint32

// TypePool deduplicates function signatures by value. Adapted from
// resource/table.go's Insert/Get handle-table shape: that table maps
// arbitrary host resources to opaque handles with an observer/lifecycle
// layer this pool doesn't need (signatures never get dropped mid-run), so
// here Insert additionally dedups by equality instead of always minting a
// fresh handle.
type TypePool struct {
	mu    sync.Mutex
	types []wasm.FuncType
}

// NewTypePool returns an empty pool.
func NewTypePool() *TypePool {
	return &TypePool{}
}

// Insert returns ft's handle, reusing an existing entry if an equal
// signature was already interned.
func (p *TypePool) Insert(ft wasm.FuncType) TypeHandle {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, existing := range p.types {
		if funcTypeEqual(existing, ft) {
			return TypeHandle(i)
		}
	}
	p.types = append(p.types, ft)
	return TypeHandle(len(p.types) - 1)
}

// Get returns the signature registered at h.
func (p *TypePool) Get(h TypeHandle) (wasm.FuncType, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if int(h) >= len(p.types) {
		return wasm.FuncType{}, false
	}
	return p.types[h], true
}

// Equal reports whether two handles name equal signatures. Since Insert
// deduplicates, this is a plain handle comparison; the executor's
// call_indirect signature check calls it.
func (p *TypePool) Equal(a, b TypeHandle) bool { return a == b }

func funcTypeEqual(a, b wasm.FuncType) bool {
	if len(a.Params) != len(b.Params) || len(a.Results) != len(b.Results) {
		return false
	}
	for i := range a.Params {
		if a.Params[i] != b.Params[i] {
			return false
		}
	}
	for i := range a.Results {
		if a.Results[i] != b.Results[i] {
			return false
		}
	}
	return true
}
