package dsl

import (
	"fmt"

	"github.com/gitrdm/arithsls/internal/atom"
	"github.com/gitrdm/arithsls/internal/dag"
	"github.com/gitrdm/arithsls/internal/solverctx"
)

// env tracks the identifiers a Program has declared so far: each gets a
// stable host ExprID and the sort it was declared with.
type env struct {
	sort  map[string]dag.Sort
	host  map[string]dag.ExprID
	next  dag.ExprID
	store *dag.Store
}

func newEnv(store *dag.Store) *env {
	return &env{sort: make(map[string]dag.Sort), host: make(map[string]dag.ExprID), store: store}
}

func (e *env) freshHost() dag.ExprID {
	id := e.next
	e.next++
	return id
}

// Lower walks prog once, registering every declared identifier as a
// leaf term and every assertion as a canonicalised atom bound to a
// fresh unit-assigned Boolean variable on host — spec.md's "arithmetic
// abstract syntax" collaborator, implemented only far enough to drive
// the engine end-to-end from this grammar (SPEC_FULL.md §4.J). It
// returns every declared identifier's resolved dag.VarID, so a caller
// printing a final assignment can name variables the way the source
// file did rather than by raw id.
func Lower(prog *Program, store *dag.Store, atoms *atom.Store, host *solverctx.InMemory) (map[string]dag.VarID, error) {
	e := newEnv(store)

	for _, stmt := range prog.Stmts {
		switch {
		case stmt.Decl != nil:
			if err := lowerDecl(stmt.Decl, e, store, host); err != nil {
				return nil, err
			}
		case stmt.Assert != nil:
			if err := lowerAssert(stmt.Assert, e, store, atoms, host); err != nil {
				return nil, err
			}
		}
	}

	names := make(map[string]dag.VarID, len(e.host))
	for name, hostID := range e.host {
		if v, ok := store.ExprMap[hostID]; ok {
			names[name] = v
		}
	}
	return names, nil
}

func lowerDecl(d *Decl, e *env, store *dag.Store, host *solverctx.InMemory) error {
	var sort dag.Sort
	switch d.Sort {
	case "int":
		sort = dag.Int
	case "real":
		sort = dag.Real
	default:
		return fmt.Errorf("dsl: unknown sort %q", d.Sort)
	}
	for _, name := range d.Names {
		if _, ok := e.sort[name]; ok {
			return fmt.Errorf("dsl: %q declared twice", name)
		}
		hostID := e.freshHost()
		e.sort[name] = sort
		e.host[name] = hostID
		if _, err := store.RegisterTerm(hostID, dag.VarRef(hostID, sort)); err != nil {
			return err
		}
		host.AddNewTerm(hostID)
	}
	return nil
}

// lowerAssert canonicalises "left op right" (optionally negated by
// "not") into lhs-rhs <= 0 / < 0 / = 0 form, builds its atom, and binds
// a freshly unit-assigned Boolean variable to it on host.
func lowerAssert(a *AssertStmt, e *env, store *dag.Store, atoms *atom.Store, host *solverctx.InMemory) error {
	left, err := lowerSum(a.Expr.Left, e)
	if err != nil {
		return err
	}
	right, err := lowerSum(a.Expr.Right, e)
	if err != nil {
		return err
	}

	// Normalise every comparator to one of <=, <, = by swapping operands
	// for >=/>.
	op := a.Expr.Op
	lhs, rhs := left, right
	switch op {
	case ">=":
		op, lhs, rhs = "<=", right, left
	case ">":
		op, lhs, rhs = "<", right, left
	}

	diff := dag.Sub(lhs, rhs)
	coeff, args, err := store.BuildLinear(diff)
	if err != nil {
		return err
	}

	isInt := allInt(a.Expr.Left, a.Expr.Right, e)
	var kind atom.Kind
	switch op {
	case "<=":
		kind = atom.KindLE
	case "<":
		if isInt {
			kind = atom.KindLTInt
		} else {
			kind = atom.KindLTReal
		}
	case "=":
		kind = atom.KindEQ
	default:
		return fmt.Errorf("dsl: unknown comparator %q", op)
	}

	bv := host.NewBoolVar()
	if _, err := atoms.InitIneq(bv, kind, coeff, args); err != nil {
		return err
	}

	assertHost := e.freshHost()
	host.BindAtom(bv, assertHost)
	host.Assert(assertHost)
	host.SetAssignment(bv, !a.Not)
	host.SetUnit(bv, true)
	return nil
}

// allInt reports whether every identifier reachable from l and r was
// declared "int", governing the LT-on-integers atom kind.
func allInt(l, r *SumExpr, e *env) bool {
	ok := true
	var walkSum func(*SumExpr)
	var walkTerm func(*Term)
	var walkFactor func(*Factor)
	walkFactor = func(f *Factor) {
		switch {
		case f.Ident != nil:
			if s, known := e.sort[*f.Ident]; !known || s != dag.Int {
				ok = false
			}
		case f.Sub != nil:
			walkSum(f.Sub)
		}
	}
	walkTerm = func(t *Term) {
		walkFactor(t.Left)
		for _, m := range t.Rest {
			walkFactor(m.Factor)
		}
	}
	walkSum = func(s *SumExpr) {
		walkTerm(s.Left)
		for _, a := range s.Rest {
			walkTerm(a.Term)
		}
	}
	walkSum(l)
	walkSum(r)
	return ok
}

// lowerSum translates a parsed SumExpr into the generic dag.Expr tree.
func lowerSum(s *SumExpr, e *env) (*dag.Expr, error) {
	acc, err := lowerTerm(s.Left, e)
	if err != nil {
		return nil, err
	}
	for _, add := range s.Rest {
		t, err := lowerTerm(add.Term, e)
		if err != nil {
			return nil, err
		}
		if add.Op == "-" {
			t = dag.Neg(t)
		}
		acc = dag.Add(acc, t)
	}
	return acc, nil
}

func lowerTerm(t *Term, e *env) (*dag.Expr, error) {
	acc, err := lowerFactor(t.Left, e)
	if err != nil {
		return nil, err
	}
	for _, mul := range t.Rest {
		f, err := lowerFactor(mul.Factor, e)
		if err != nil {
			return nil, err
		}
		acc = dag.Mul(acc, f)
	}
	return acc, nil
}

func lowerFactor(f *Factor, e *env) (*dag.Expr, error) {
	var out *dag.Expr
	switch {
	case f.Num != nil:
		out = dag.Num(e.store.Backend.FromInt64(*f.Num))
	case f.Ident != nil:
		hostID, ok := e.host[*f.Ident]
		if !ok {
			return nil, fmt.Errorf("dsl: undeclared identifier %q", *f.Ident)
		}
		out = dag.VarRef(hostID, e.sort[*f.Ident])
	case f.Sub != nil:
		sub, err := lowerSum(f.Sub, e)
		if err != nil {
			return nil, err
		}
		out = sub
	default:
		return nil, fmt.Errorf("dsl: empty factor")
	}
	if f.Neg {
		out = dag.Neg(out)
	}
	return out, nil
}

