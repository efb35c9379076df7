package store

// PageSize is the Wasm linear memory page size in bytes.
const PageSize = 65536

// Memory is one linear memory. Memory 0 of the current instance is cached
// directly by the executor (mem0_ptr/mem0_len); other memories and
// memory 0 of a different instance go through Bytes().
type Memory struct {
	data     []byte
	maxPages uint32 // 0 means "no declared maximum"
}

// NewMemory allocates a memory with minPages initial pages and an optional
// maxPages ceiling (0 = unbounded up to the implementation limit).
func NewMemory(minPages, maxPages uint32) *Memory {
	return &Memory{
		data:     make([]byte, int(minPages)*PageSize),
		maxPages: maxPages,
	}
}

// Bytes returns the memory's current backing slice.
func (m *Memory) Bytes() []byte { return m.data }

// Pages returns the current size in pages.
func (m *Memory) Pages() uint32 { return uint32(len(m.data) / PageSize) }

// Grow attempts to grow the memory by delta pages, per spec.md §4.4's
// memory.grow semantics: returns the previous size in pages on success, or
// ok=false (caller pushes the Wasm error sentinel, never traps) if the
// growth would exceed maxPages or a hard implementation ceiling.
func (m *Memory) Grow(delta uint32, limit uint32) (previous uint32, ok bool) {
	previous = m.Pages()
	target := previous + delta
	if target < previous { // overflow
		return previous, false
	}
	if target > 1<<16 { // 65536 pages fill the 32-bit address space
		return previous, false
	}
	if m.maxPages != 0 && target > m.maxPages {
		return previous, false
	}
	if limit != 0 && target > limit {
		return previous, false
	}
	grown := make([]byte, int(target)*PageSize)
	copy(grown, m.data)
	m.data = grown
	return previous, true
}
