package store

// Cache is the small write-through indirection spec.md §4.5 describes: it
// holds the most recently used instance's memory-0 handle so that
// repeated access from within one function body doesn't re-resolve the
// instance on every memory op. It never owns resources — Refresh only replaces
// the reference, it never frees anything, since the store (via Instance)
// is the sole owner.
type Cache struct {
	Inst *Instance
	mem0 *Memory
}

// Refresh points the cache at inst and re-derives its mem0 reference.
// Called on call-across-instance, return-across-instance, and
// memory.grow of memory 0 (spec.md §4.5).
func (c *Cache) Refresh(inst *Instance) {
	c.Inst = inst
	if inst != nil {
		c.mem0 = inst.Mem0()
	} else {
		c.mem0 = nil
	}
}

// Mem0 returns the cached memory-0 handle, which may be nil if the current
// instance declares no memory.
func (c *Cache) Mem0() *Memory { return c.mem0 }

// Mem0Bytes returns the cached memory 0's backing bytes, or nil.
func (c *Cache) Mem0Bytes() []byte {
	if c.mem0 == nil {
		return nil
	}
	return c.mem0.Bytes()
}

// RefreshMem0 re-derives only the mem0 pointer/length after a memory.grow
// of memory 0 relocates the backing allocation, without touching Inst.
func (c *Cache) RefreshMem0() {
	if c.Inst != nil {
		c.mem0 = c.Inst.Mem0()
	}
}
