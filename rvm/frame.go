package rvm

import "github.com/wippyai/wasm-runtime/store"

// Frame is one activation record: which function is running, which
// instance it belongs to (calls may cross instances for imports), its
// instruction pointer, and the stack window it owns. Per spec.md §4.2,
// Base is the absolute stack index the function's slot 0 maps to; the return
// handler reads the result, pops the frame, and then writes the result into
// the caller's window at ResultBase.
type Frame struct {
	Func *store.Function
	Inst *store.Instance
	IP   int
	Base int

	// ResultBase is where CallInternal/CallImported/CallIndirect wrote this
	// frame's argument span — also where Return copies results back to,
	// since spec.md's calling convention reuses the argument window for
	// results (arg count and result count may differ; FrameSize accounts
	// for the larger of the two).
	ResultBase int
}

// Frames is the call stack. A plain slice with explicit push/pop rather
// than a fixed-capacity ring: depth is bounded by store.Limits.MaxCallDepth,
// checked on push, not by backing-array capacity.
type Frames struct {
	frames []Frame
}

// NewFrames preallocates depth frames of headroom.
func NewFrames(depth int) *Frames {
	return &Frames{frames: make([]Frame, 0, depth)}
}

func (f *Frames) Len() int { return len(f.frames) }

func (f *Frames) Top() *Frame { return &f.frames[len(f.frames)-1] }

func (f *Frames) At(i int) *Frame { return &f.frames[i] }

// Push appends a new frame and returns a pointer to it. The pointer is only
// valid until the next Push (slice growth may relocate the backing array).
func (f *Frames) Push(fr Frame) *Frame {
	f.frames = append(f.frames, fr)
	return &f.frames[len(f.frames)-1]
}

// Pop discards the top frame.
func (f *Frames) Pop() {
	f.frames = f.frames[:len(f.frames)-1]
}

// ReplaceTop overwrites the top frame in place — the return-call family's
// "reuse this activation" semantics (spec.md §4.3's tail-call variants)
// instead of push-then-pop-the-old-one.
func (f *Frames) ReplaceTop(fr Frame) *Frame {
	f.frames[len(f.frames)-1] = fr
	return &f.frames[len(f.frames)-1]
}
