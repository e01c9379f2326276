// Package solverctx defines the narrow capability interface the SLS
// engine consumes from its owning SMT context (spec §6), plus an
// in-memory reference implementation used by the DSL runner, tests,
// and the slsctl CLI's standalone "solve" mode.
package solverctx

import (
	"github.com/gitrdm/arithsls/internal/dag"
)

// Lit is a signed Boolean literal: a Bool variable id plus its polarity.
type Lit struct {
	Var  int
	Sign bool // true = positive occurrence
}

// Clause is a disjunction of literals, referenced by index via
// Ctx.GetClause.
type Clause struct {
	Lits []Lit
}

// Ctx is the narrow capability set the engine requires of its host SMT
// context (spec §6: "Context interface consumed"). The engine never
// reaches into host state beyond these calls.
type Ctx interface {
	// AtomOf returns the arithmetic atom expression handle guarded by
	// bv, or NoVar-equivalent if bv has none.
	AtomOf(bv int) dag.ExprID
	// BoolVarOf is the inverse of AtomOf: the Bool var guarding e, or -1.
	BoolVarOf(e dag.ExprID) int
	// IsTrue reports lit's current assignment under the context's
	// Boolean model.
	IsTrue(lit Lit) bool
	// GetValue returns the context's last-known value for e, as a
	// decimal string (host-agnostic).
	GetValue(e dag.ExprID) string
	// IsUnit reports whether lit is a unit literal (its clause has been
	// reduced to this single literal).
	IsUnit(lit Lit) bool
	// UnitLiterals lists every currently-unit literal.
	UnitLiterals() []Lit
	// InputAssertions lists the top-level asserted expressions.
	InputAssertions() []dag.ExprID
	// Subterms lists every registered subterm of e, any order.
	Subterms(e dag.ExprID) []dag.ExprID
	// Parents lists every expression directly containing e.
	Parents(e dag.ExprID) []dag.ExprID
	// Clauses lists every clause index known to the context.
	Clauses() []int
	// GetClause returns the clause at index i.
	GetClause(i int) Clause
	// Unsat reports whether the context has already detected
	// unsatisfiability independent of the engine.
	Unsat() bool
	// NumBoolVars is the number of Boolean variables the context knows.
	NumBoolVars() int
	// Rand returns a uniform random float64 in [0,1).
	Rand() float64
	// Inc polls and decrements the cancellation budget, returning false
	// once the host wants the search loop to stop (spec §5).
	Inc() bool
	// NewValueEH notifies the host that e's value changed.
	NewValueEH(e dag.ExprID)
	// Flip requests the host flip bv's Boolean assignment to match
	// newly-committed atom truth (spec §4.D step 5).
	Flip(bv int) error
	// AddNewTerm notifies the host a fresh term was interned.
	AddNewTerm(e dag.ExprID)
	// AssignEval is called when lit is assigned by evaluation.
	AssignEval(lit Lit)
	// AssignPropagate is called when lit is assigned via clause
	// propagation from the given clause index.
	AssignPropagate(lit Lit, clause int)
}
