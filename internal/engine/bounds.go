package engine

import (
	"github.com/gitrdm/arithsls/internal/atom"
	"github.com/gitrdm/arithsls/internal/dag"
	"github.com/gitrdm/arithsls/internal/numeric"
	"github.com/gitrdm/arithsls/internal/solverctx"
)

// Initialize implements spec §4.H's bound/domain initialisation walk:
// it tightens every sum/product-defined variable's bound from its
// children's bounds, installs [0, divisor-1] bounds for MOD-by-constant
// and a zero lower bound for ABS, then installs direct bounds from unit
// literals and finite domains from top-level "x = numeral" disjunctions.
// ite nodes are out of scope (the term DAG has no ternary node; spec's
// "ite" clause never applies to this repository's DAG shape).
func (e *Engine) Initialize() error {
	for i := range e.Store.Vars {
		v := dag.VarID(i)
		vr := e.Store.Var(v)
		switch vr.DefKind {
		case dag.DefSum:
			e.boundSum(v)
		case dag.DefProduct:
			e.boundProduct(v)
		case dag.DefUnary:
			e.boundUnary(v)
		}
	}

	for _, lit := range e.Ctx.UnitLiterals() {
		e.installUnitBound(lit)
	}

	for _, ci := range e.Ctx.Clauses() {
		e.installFiniteDomain(e.Ctx.GetClause(ci))
	}

	return nil
}

func (e *Engine) boundSum(v dag.VarID) {
	vr := e.Store.Var(v)
	s := e.Store.Sum(dag.SumID(vr.DefIndex))

	lo, hi := s.Coeff, s.Coeff
	ok := true
	for _, arg := range s.Args {
		avr := e.Store.Var(arg.Var)
		if !avr.Lower.Valid || !avr.Upper.Valid {
			ok = false
			break
		}
		lo2, hi2, err := scaleInterval(arg.Coeff, avr.Lower.Value, avr.Upper.Value)
		if err != nil {
			ok = false
			break
		}
		lo, err = lo.Add(lo2)
		if err != nil {
			ok = false
			break
		}
		hi, err = hi.Add(hi2)
		if err != nil {
			ok = false
			break
		}
	}
	if !ok {
		return
	}
	vr.Lower = dag.Bound{Valid: true, Value: lo}
	vr.Upper = dag.Bound{Valid: true, Value: hi}
}

// scaleInterval scales [lo,hi] by coeff, flipping endpoints when coeff
// is negative.
func scaleInterval(coeff, lo, hi numeric.Num) (numeric.Num, numeric.Num, error) {
	a, err := coeff.Mul(lo)
	if err != nil {
		return nil, nil, err
	}
	b, err := coeff.Mul(hi)
	if err != nil {
		return nil, nil, err
	}
	if coeff.Sign() < 0 {
		return b, a, nil
	}
	return a, b, nil
}

func (e *Engine) boundProduct(v dag.VarID) {
	vr := e.Store.Var(v)
	p := e.Store.Product(dag.ProductID(vr.DefIndex))

	lo, hi := e.Store.Backend.One(), e.Store.Backend.One()
	for _, m := range p.Monomial {
		avr := e.Store.Var(m.Var)
		if !avr.Lower.Valid || !avr.Upper.Valid {
			return
		}
		if avr.Lower.Value.Sign() < 0 {
			return
		}
		l, err := avr.Lower.Value.PowerOf(m.Power)
		if err != nil {
			return
		}
		h, err := avr.Upper.Value.PowerOf(m.Power)
		if err != nil {
			return
		}
		lo, err = lo.Mul(l)
		if err != nil {
			return
		}
		hi, err = hi.Mul(h)
		if err != nil {
			return
		}
	}
	vr.Lower = dag.Bound{Valid: true, Value: lo}
	vr.Upper = dag.Bound{Valid: true, Value: hi}
}

func (e *Engine) boundUnary(v dag.VarID) {
	vr := e.Store.Var(v)
	op := e.Store.Op(dag.OpID(vr.DefIndex))
	switch op.Kind {
	case dag.OpMod:
		if op.Arg2 == dag.NoVar {
			return
		}
		divVar := e.Store.Var(op.Arg2)
		if divVar.DefKind != dag.DefNone || !divVar.Value.IsInt() || divVar.Value.Sign() <= 0 {
			return
		}
		one := e.Store.Backend.One()
		upper, err := divVar.Value.Sub(one)
		if err != nil {
			return
		}
		vr.Lower = dag.Bound{Valid: true, Value: e.Store.Backend.Zero()}
		vr.Upper = dag.Bound{Valid: true, Value: upper}
	case dag.OpAbs:
		vr.Lower = dag.Bound{Valid: true, Value: e.Store.Backend.Zero()}
	}
}

// installUnitBound installs a direct bound from a single-variable unit
// literal's atom, converting a strict integer bound to non-strict by
// one (spec §4.H).
func (e *Engine) installUnitBound(lit solverctx.Lit) {
	id := e.Atoms.BoolVarMap[lit.Var]
	if id == atom.NoAtom {
		return
	}
	a := &e.Atoms.Atoms[id]
	if len(a.Args) != 1 {
		return
	}
	x := a.Args[0].Var
	c := a.Args[0].Coeff
	if c.IsZero() {
		return
	}
	vr := e.Store.Var(x)

	// Boundary: c*x + Coeff `op` 0  =>  x `op'` -Coeff/c  (op' flips if c<0).
	neg := a.Coeff.Neg()
	bound, err := neg.Quo(c)
	if err != nil {
		return
	}
	upper := (c.Sign() > 0) == lit.Sign
	strict := a.Op == atom.LT

	if vr.IsInt() && strict {
		one := e.Store.Backend.One()
		if upper {
			bound, err = bound.Sub(one)
		} else {
			bound, err = bound.Add(one)
		}
		if err != nil {
			return
		}
		strict = false
	}

	if upper {
		if !vr.Upper.Valid || bound.Cmp(vr.Upper.Value) < 0 {
			vr.Upper = dag.Bound{Valid: true, Strict: strict, Value: bound}
		}
	} else {
		if !vr.Lower.Valid || bound.Cmp(vr.Lower.Value) > 0 {
			vr.Lower = dag.Bound{Valid: true, Strict: strict, Value: bound}
		}
	}
}

// installFiniteDomain installs a finite domain on x when clause is a
// top-level disjunction entirely of "x = numeral" EQ atoms over the
// same variable (spec §4.H).
func (e *Engine) installFiniteDomain(clause solverctx.Clause) {
	if len(clause.Lits) < 2 {
		return
	}
	var x dag.VarID = dag.NoVar
	var values []numeric.Num
	for _, lit := range clause.Lits {
		id := e.Atoms.BoolVarMap[lit.Var]
		if id == atom.NoAtom {
			return
		}
		a := &e.Atoms.Atoms[id]
		if a.Op != atom.EQ || len(a.Args) != 1 || !lit.Sign {
			return
		}
		v := a.Args[0].Var
		if x == dag.NoVar {
			x = v
		} else if x != v {
			return
		}
		c := a.Args[0].Coeff
		if c.IsZero() {
			return
		}
		numeral, err := a.Coeff.Neg().Quo(c)
		if err != nil {
			return
		}
		values = append(values, numeral)
	}
	if x == dag.NoVar {
		return
	}
	e.Store.Var(x).FiniteDomain = values
}
