package dag

import "github.com/gitrdm/arithsls/internal/numeric"

// ExprID is an opaque host-side expression handle. The engine never
// interprets its value; it is only used to remember which interned
// Variable a given host subterm maps to (spec §3: "Term DAG lifecycle").
type ExprID int64

// ExprKind discriminates the generic arithmetic expression tree this
// package accepts from whatever the host's real AST is. The host (or,
// in this repo, internal/dsl) is responsible for translating its own
// term representation into Expr before calling Store.RegisterTerm; the
// "arithmetic abstract syntax" itself remains an external collaborator
// per spec §1.
type ExprKind int

const (
	EKNum ExprKind = iota
	EKVar
	EKAdd
	EKMul
	EKNeg
	EKUnary
)

// Expr is the generic arithmetic expression tree.
type Expr struct {
	Kind     ExprKind
	Lit      numeric.Num   // EKNum
	Host     ExprID        // EKVar: the host subterm this leaf names
	Sort     Sort          // EKVar: sort to use if this is the first sighting
	Children []*Expr       // EKAdd, EKMul: n-ary; EKNeg: exactly one child
	UnaryOp  UnaryKind     // EKUnary
	Arg1     *Expr         // EKUnary
	Arg2     *Expr         // EKUnary (nil for strictly-unary kinds)
}

// Num builds a numeral leaf.
func Num(n numeric.Num) *Expr { return &Expr{Kind: EKNum, Lit: n} }

// VarRef builds a leaf referencing a host subterm.
func VarRef(host ExprID, sort Sort) *Expr { return &Expr{Kind: EKVar, Host: host, Sort: sort} }

// Add builds an n-ary sum.
func Add(children ...*Expr) *Expr { return &Expr{Kind: EKAdd, Children: children} }

// Sub builds a-b as Add(a, Neg(b)).
func Sub(a, b *Expr) *Expr { return Add(a, Neg(b)) }

// Mul builds an n-ary product.
func Mul(children ...*Expr) *Expr { return &Expr{Kind: EKMul, Children: children} }

// Neg builds the negation of a single child.
func Neg(a *Expr) *Expr { return &Expr{Kind: EKNeg, Children: []*Expr{a}} }

// UnaryExpr builds a dedicated unary-op application.
func UnaryExpr(kind UnaryKind, a, b *Expr) *Expr {
	return &Expr{Kind: EKUnary, UnaryOp: kind, Arg1: a, Arg2: b}
}
