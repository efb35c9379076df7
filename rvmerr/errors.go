package rvmerr

import (
	"fmt"
	"strings"

	"github.com/wippyai/wasm-runtime/ir"
)

// Phase indicates where in the pipeline the error occurred.
type Phase string

const (
	PhaseTranslate Phase = "translate"
	PhaseExecute   Phase = "execute"
	PhaseLink      Phase = "link"
)

// Kind categorizes the error within its phase.
type Kind string

const (
	// Translation errors (spec.md §7): each aborts only the one function.
	KindFunctionTooLarge Kind = "function_too_large"
	KindTooManySlots     Kind = "too_many_slots"
	KindTooManyConstants Kind = "too_many_constants"
	// KindUnsupported marks an opcode or encoding outside this runtime's
	// Wasm 1.0 scope (GC, SIMD, atomics, exception handling, multi-value
	// block types, typed function references) — translation rejects it
	// instead of emitting IR that would misbehave silently.
	KindUnsupported Kind = "unsupported"

	// Execute-phase errors wrap a trap; the Trap field carries the code.
	KindTrap Kind = "trap"
)

// Error is the structured error type shared by translate and rvm.
type Error struct {
	Phase  Phase
	Kind   Kind
	Trap   ir.TrapCode
	Func   string
	Detail string
	Cause  error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))
	if e.Func != "" {
		b.WriteString(" in ")
		b.WriteString(e.Func)
	}
	if e.Kind == KindTrap {
		b.WriteString(": ")
		b.WriteString(e.Trap.String())
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if e.Cause != nil {
		b.WriteString(" (")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}
	return b.String()
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error { return e.Cause }

// Is reports whether target is an *Error with the same Phase/Kind (and
// Trap, for trap errors) — lets callers use errors.Is against a sentinel
// built with Trap(...) or a Builder, without comparing Detail/Cause.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if e.Phase != t.Phase || e.Kind != t.Kind {
		return false
	}
	if e.Kind == KindTrap {
		return e.Trap == t.Trap
	}
	return true
}

// Builder constructs translation-phase errors.
type Builder struct {
	err Error
}

// New starts building an error in the given phase/kind.
func New(phase Phase, kind Kind) *Builder {
	return &Builder{err: Error{Phase: phase, Kind: kind}}
}

// Func records which function the error occurred in.
func (b *Builder) Func(name string) *Builder {
	b.err.Func = name
	return b
}

// Detail sets the human-readable detail message.
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Cause sets the underlying error.
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Build returns the constructed error.
func (b *Builder) Build() *Error { return &b.err }

// Trap builds an Execute-phase trap error.
func Trap(code ir.TrapCode) *Error {
	return &Error{Phase: PhaseExecute, Kind: KindTrap, Trap: code}
}

// FunctionTooLarge builds the "function too large" translation error
// (spec.md §4.3: a branch offset overflowed the signed 32-bit range).
func FunctionTooLarge(funcName string) *Error {
	return New(PhaseTranslate, KindFunctionTooLarge).Func(funcName).
		Detail("branch offset exceeds signed 32-bit range").Build()
}

// TooManySlots builds the "too many slots" translation error.
func TooManySlots(funcName string, count int) *Error {
	return New(PhaseTranslate, KindTooManySlots).Func(funcName).
		Detail("function requires %d slots, exceeding the configured limit", count).Build()
}

// TooManyConstants builds the "too many constants" translation error.
func TooManyConstants(funcName string, count int) *Error {
	return New(PhaseTranslate, KindTooManyConstants).Func(funcName).
		Detail("constant pool requires %d entries, exceeding the configured limit", count).Build()
}

// Unsupported builds the "feature outside scope" translation error.
func Unsupported(funcName, detail string) *Error {
	return New(PhaseTranslate, KindUnsupported).Func(funcName).Detail("%s", detail).Build()
}
