// Package dsl implements the tiny assertion grammar used by test
// fixtures and CLI input files to describe declarations and arithmetic
// atoms without hand-building a term DAG, e.g.:
//
//	int x, y;
//	real z;
//	assert (x + y <= 0);
//	assert (x * y >= 10);
//	assert not (x = y);
package dsl

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// Lexer is the stateful participle lexer for the assertion grammar,
// built the way the kanso-lang-kanso pack member's own grammar lexer
// is: an ordered rule list under a single "Root" state.
var Lexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		{"Comment", `//[^\n]*`, nil},
		{"Ident", `[a-zA-Z_][a-zA-Z0-9_]*`, nil},
		{"Integer", `[0-9]+`, nil},
		{"Operator", `(<=|>=|==|!=|[=<>+\-*])`, nil},
		{"Punctuation", `[(),;]`, nil},
		{"Whitespace", `[ \t\r\n]+`, nil},
	},
})
