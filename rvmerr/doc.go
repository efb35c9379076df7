// Package rvmerr provides the structured error type shared by the
// translate and rvm packages: translation-time compile errors (function
// too large, too many slots, too many constants) and the closed trap code
// enum traps unwind with. Errors are categorized by Phase and Kind, with a
// Builder for structured construction, adapted from the teacher's
// errors.Error/errors.Builder pattern and re-keyed to this domain.
package rvmerr
