package dsl

import (
	"fmt"

	"github.com/alecthomas/participle/v2"
)

// ParseString parses an assertion-file source into a Program, in the
// style of the kanso-lang-kanso pack member's own ParseFile: build a
// fresh participle parser bound to the stateful lexer, with whitespace
// and comments elided.
func ParseString(name, source string) (*Program, error) {
	parser, err := participle.Build[Program](
		participle.Lexer(Lexer),
		participle.Elide("Whitespace", "Comment"),
		participle.UseLookahead(2),
	)
	if err != nil {
		return nil, fmt.Errorf("dsl: failed to build parser: %w", err)
	}
	prog, err := parser.ParseString(name, source)
	if err != nil {
		return nil, fmt.Errorf("dsl: %w", err)
	}
	return prog, nil
}
