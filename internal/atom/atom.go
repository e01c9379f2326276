// Package atom canonicalises arithmetic (in)equalities into the form
// consumed by the move proposers and value-update engine, and owns the
// bijection between Boolean variables and the atoms they guard
// (spec §3, §4.C).
package atom

import (
	"github.com/gitrdm/arithsls/internal/dag"
	"github.com/gitrdm/arithsls/internal/numeric"
)

// Op is the relational operator an Atom carries.
type Op int

const (
	LE Op = iota // args_value <= 0
	LT           // args_value < 0
	EQ           // args_value == 0
)

func (o Op) String() string {
	switch o {
	case LE:
		return "<="
	case LT:
		return "<"
	case EQ:
		return "="
	default:
		return "?"
	}
}

// NonlinearEntry is one (outer product variable, coefficient, power of
// the inner variable) triple grouped under its inner variable in
// Atom.Nonlinear (spec §3, §4.C step v).
type NonlinearEntry struct {
	Outer dag.VarID
	Coeff numeric.Num
	Power int
}

// NonlinearGroup is every NonlinearEntry sharing the same inner
// variable, the unit move proposers iterate over.
type NonlinearGroup struct {
	Var     dag.VarID
	Entries []NonlinearEntry
}

// ID indexes into Store.Atoms.
type ID int

// NoAtom is the "absent" sentinel — some Bool vars guard no arithmetic
// atom at all (spec §3: "Bool atom table").
const NoAtom ID = -1

// Atom is a canonicalised inequality `coeff + Σ cᵢ·value(argᵢ) ⋈ 0`
// (spec §3).
type Atom struct {
	ID    ID
	Op    Op
	Coeff numeric.Num

	// Args holds one entry per unique variable appearing in the linear
	// combination, sorted by variable id.
	Args []dag.SumArg

	// Monomials[i] is non-nil iff Args[i].Var is a product-defined
	// variable, and expands its underlying factors for the nonlinear
	// move machinery (spec §3: "monomials ... parallel to args").
	Monomials [][]dag.MonomialTerm

	// Nonlinear groups, by inner factor variable, every (outer,
	// coeff, power) triple visible in this atom (spec §4.C step v).
	Nonlinear []NonlinearGroup

	ArgsValue numeric.Num
	IsLinear  bool

	// BoolVar is the Boolean variable this atom is attached to, set by
	// Store.InitIneq.
	BoolVar int
}

// IsTrue reports whether the atom's current cached ArgsValue satisfies
// its operator (spec §3: "is_true() <=> evaluation ... yields true").
func (a *Atom) IsTrue() bool {
	s := a.ArgsValue.Sign()
	switch a.Op {
	case LE:
		return s <= 0
	case LT:
		return s < 0
	case EQ:
		return s == 0
	default:
		return false
	}
}

