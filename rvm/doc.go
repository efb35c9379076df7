// Package rvm is the register-machine executor: the value stack, call
// frames, and the linear-sweep dispatch loop that walks an ir.Decoder over
// a translated function body and a store.Instance's resources.
//
// The dispatch loop holds no state in Go locals across instructions: each
// iteration re-reads the top Frame, builds an ir.Decoder over its code and
// decodes at the frame's IP. Remaining fuel is an Executor field, and
// memory 0 is reached through the Executor's store.Cache.
package rvm
