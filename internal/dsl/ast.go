package dsl

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// Program is the root of a parsed assertion file: an interleaved
// sequence of sort declarations and assertions.
type Program struct {
	Pos   lexer.Position
	Stmts []*Stmt `@@*`
}

// Stmt is either a Decl or an AssertStmt.
type Stmt struct {
	Pos    lexer.Position
	Decl   *Decl       `  @@`
	Assert *AssertStmt `| @@`
}

// Decl declares one or more identifiers of a single sort, e.g.
// "int x, y;" or "real z;".
type Decl struct {
	Pos   lexer.Position
	Sort  string   `@("int" | "real")`
	Names []string `@Ident { "," @Ident } ";"`
}

// AssertStmt is a single top-level assertion, optionally negated with
// the "not" keyword, over one comparison expression.
type AssertStmt struct {
	Pos  lexer.Position
	Not  bool          `"assert" [ @"not" ]`
	Expr *CompareExpr `"(" @@ ")" ";"`
}

// CompareExpr is an arithmetic comparison between two linear/nonlinear
// sums, the only Boolean atom this grammar produces.
type CompareExpr struct {
	Pos   lexer.Position
	Left  *SumExpr `@@`
	Op    string   `@("<=" | ">=" | "<" | ">" | "=")`
	Right *SumExpr `@@`
}

// SumExpr is a left-associative chain of +/- terms.
type SumExpr struct {
	Pos  lexer.Position
	Left *Term    `@@`
	Rest []*AddOp `{ @@ }`
}

type AddOp struct {
	Pos  lexer.Position
	Op   string `@("+" | "-")`
	Term *Term  `@@`
}

// Term is a left-associative chain of * factors.
type Term struct {
	Pos  lexer.Position
	Left *Factor  `@@`
	Rest []*MulOp `{ @@ }`
}

type MulOp struct {
	Pos    lexer.Position
	Op     string  `@"*"`
	Factor *Factor `@@`
}

// Factor is an optionally-negated integer literal, identifier
// reference, or parenthesised sub-expression.
type Factor struct {
	Pos   lexer.Position
	Neg   bool     `[ @"-" ]`
	Num   *int64   `(  @Integer`
	Ident *string  ` | @Ident`
	Sub   *SumExpr ` | "(" @@ ")" )`
}
