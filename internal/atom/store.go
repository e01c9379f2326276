package atom

import (
	"sort"

	"github.com/gitrdm/arithsls/internal/dag"
	"github.com/gitrdm/arithsls/internal/numeric"
)

// Store owns every interned Atom and the bool_var <-> atom bijection
// (spec §3: "Bool atom table"). Some Bool vars guard no arithmetic atom
// at all; those map to NoAtom.
type Store struct {
	dag *dag.Store

	Atoms []Atom

	// BoolVarMap is the bijection bool_var <-> atom referenced by
	// SPEC_FULL.md §3: index i holds the atom guarded by Boolean
	// variable i, or NoAtom.
	BoolVarMap []ID
}

// NewStore creates an atom store backed by the given term DAG.
func NewStore(d *dag.Store) *Store {
	return &Store{dag: d}
}

// InitBoolVar registers bv as a Boolean variable with no arithmetic atom
// (an uninterpreted propositional atom), growing BoolVarMap as needed.
func (s *Store) InitBoolVar(bv int) {
	s.ensureBoolVar(bv)
	s.BoolVarMap[bv] = NoAtom
}

func (s *Store) ensureBoolVar(bv int) {
	for len(s.BoolVarMap) <= bv {
		s.BoolVarMap = append(s.BoolVarMap, NoAtom)
	}
}

// Kind discriminates the surface relation InitIneq canonicalises from,
// mirroring spec §4.C's four source shapes.
type Kind int

const (
	KindLE     Kind = iota // x <= y  (or y >= x)
	KindLTInt              // integer x < y
	KindLTReal             // real x < y
	KindEQ
)

// InitIneq builds and interns the canonical Atom for `bv`, given the raw
// (coeff, args) linear combination of `lhs - rhs` as already produced by
// dag.Store.BuildLinear, and installs its back-references (spec §4.C).
func (s *Store) InitIneq(bv int, kind Kind, coeff numeric.Num, args []dag.SumArg) (ID, error) {
	op := LE
	c := coeff
	switch kind {
	case KindLE:
		op = LE
	case KindLTInt:
		op = LE
		one := s.dag.Backend.One()
		var err error
		c, err = c.Add(one)
		if err != nil {
			return NoAtom, err
		}
	case KindLTReal:
		op = LT
	case KindEQ:
		op = EQ
	}

	sortedArgs := sortFoldArgs(args)

	monomials := make([][]dag.MonomialTerm, len(sortedArgs))
	for i, a := range sortedArgs {
		v := s.dag.Var(a.Var)
		if v.DefKind == dag.DefProduct {
			monomials[i] = append([]dag.MonomialTerm(nil), s.dag.Product(dag.ProductID(v.DefIndex)).Monomial...)
		}
	}

	id := ID(len(s.Atoms))
	at := Atom{
		ID:        id,
		Op:        op,
		Coeff:     c,
		Args:      sortedArgs,
		Monomials: monomials,
		BoolVar:   bv,
	}

	val, err := evalArgs(c, sortedArgs, s.dag.ValueOf)
	if err != nil {
		return NoAtom, err
	}
	at.ArgsValue = val

	at.Nonlinear = buildNonlinearGroups(sortedArgs, monomials)
	at.IsLinear = len(at.Nonlinear) == 0 || allLinearGroups(at.Nonlinear)

	s.Atoms = append(s.Atoms, at)

	for i, a := range sortedArgs {
		vr := s.dag.Var(a.Var)
		vr.LinearOccurs = append(vr.LinearOccurs, dag.LinearOccur{Coeff: a.Coeff, AtomID: int(id)})
		_ = i
	}

	s.ensureBoolVar(bv)
	s.BoolVarMap[bv] = id
	return id, nil
}

func sortFoldArgs(args []dag.SumArg) []dag.SumArg {
	out := append([]dag.SumArg(nil), args...)
	sort.Slice(out, func(i, j int) bool { return out[i].Var < out[j].Var })
	merged := out[:0]
	for _, a := range out {
		if n := len(merged); n > 0 && merged[n-1].Var == a.Var {
			sum, err := merged[n-1].Coeff.Add(a.Coeff)
			if err == nil {
				merged[n-1].Coeff = sum
			}
			continue
		}
		merged = append(merged, a)
	}
	return merged
}

func evalArgs(coeff numeric.Num, args []dag.SumArg, valueOf func(dag.VarID) numeric.Num) (numeric.Num, error) {
	total := coeff
	for _, a := range args {
		term, err := a.Coeff.Mul(valueOf(a.Var))
		if err != nil {
			return nil, err
		}
		total, err = total.Add(term)
		if err != nil {
			return nil, err
		}
	}
	return total, nil
}

// buildNonlinearGroups implements spec §4.C step (v): for each product
// argument, emit one entry per factor variable carrying (product-var,
// coeff, power); for each non-product argument, emit (v, coeff, 1).
// Entries are grouped by the factor ("inner") variable.
func buildNonlinearGroups(args []dag.SumArg, monomials [][]dag.MonomialTerm) []NonlinearGroup {
	groups := map[dag.VarID]*NonlinearGroup{}
	var order []dag.VarID
	add := func(inner dag.VarID, outer dag.VarID, coeff numeric.Num, power int) {
		g, ok := groups[inner]
		if !ok {
			g = &NonlinearGroup{Var: inner}
			groups[inner] = g
			order = append(order, inner)
		}
		g.Entries = append(g.Entries, NonlinearEntry{Outer: outer, Coeff: coeff, Power: power})
	}
	for i, a := range args {
		if mono := monomials[i]; len(mono) > 0 {
			for _, m := range mono {
				add(m.Var, a.Var, a.Coeff, m.Power)
			}
			continue
		}
		add(a.Var, a.Var, a.Coeff, 1)
	}
	out := make([]NonlinearGroup, 0, len(order))
	for _, v := range order {
		out = append(out, *groups[v])
	}
	return out
}

// allLinearGroups reports whether every group reduces to a single
// power-1 entry on its own variable, i.e. the atom is entirely linear
// with no product arguments.
func allLinearGroups(groups []NonlinearGroup) bool {
	for _, g := range groups {
		if len(g.Entries) != 1 {
			return false
		}
		e := g.Entries[0]
		if e.Power != 1 || e.Outer != g.Var {
			return false
		}
	}
	return true
}
