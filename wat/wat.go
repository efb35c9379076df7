package wat

import (
	"github.com/wippyai/wasm-runtime/wat/internal/encoder"
	"github.com/wippyai/wasm-runtime/wat/internal/parser"
	"github.com/wippyai/wasm-runtime/wat/internal/token"
)

// Compile turns WAT source into a binary Wasm module. It is used only to
// build fixtures for translate/ and rvm/ tests — there is no Parse-without-
// Encode entry point because nothing in this module needs the AST itself.
func Compile(source string) ([]byte, error) {
	tokens := token.Tokenize(source)
	p := parser.New(tokens)
	mod, err := p.Parse()
	if err != nil {
		return nil, err
	}
	return encoder.Encode(mod), nil
}
