// Package store models the resource cache & store view of spec.md §4.5: an
// Instance's function table, linear memories, tables, globals, and passive
// segments, plus the Cache — the write-through indirection the executor
// keeps pointed at the most recently used instance so that repeated access
// from within one function body doesn't re-traverse the instance on every
// op. TypePool is the process-wide (well, per-engine) function-type dedup
// pool spec.md §3 requires for O(1) call_indirect signature checks,
// adapted from the teacher's resource/table.go append/get/dedup shape.
package store
