package engine

import (
	"github.com/gitrdm/arithsls/internal/atom"
	"github.com/gitrdm/arithsls/internal/dag"
	"github.com/gitrdm/arithsls/internal/numeric"
)

// Repair implements spec §4.F's repair(lit) for a Bool literal assigned
// true whose atom is currently false: try a scored nonlinear move, then
// retry once with tabu disabled, then fall back to resetting every
// nonlinear variable the atom touches.
func (e *Engine) Repair(bv int) (bool, error) {
	a := &e.Atoms.Atoms[e.Atoms.BoolVarMap[bv]]

	moves, err := e.findNLMoves(a)
	if err != nil {
		return false, err
	}
	ok, err := e.ApplyUpdate(moves)
	if err != nil {
		return false, err
	}
	if ok {
		return true, nil
	}

	wasTabu := e.tabuActive
	e.tabuActive = false
	moves, err = e.findNLMoves(a)
	e.tabuActive = wasTabu
	if err != nil {
		return false, err
	}
	ok, err = e.ApplyUpdate(moves)
	if err != nil {
		return false, err
	}
	if ok {
		return true, nil
	}

	return e.findResetMoves(a)
}

// findNLMoves implements find_nl_moves: iterate a.Nonlinear, classify
// each inner variable's group as linear or quadratic, and collect every
// resulting candidate that IsPermittedUpdate still allows.
func (e *Engine) findNLMoves(a *atom.Atom) ([]Move, error) {
	var out []Move
	for _, g := range a.Nonlinear {
		var cand []Move
		var err error
		if b, ok := e.isLinear(g); ok {
			cand, err = e.FindLinearMoves(a, g.Var, b)
		} else if coeffA, b, ok := e.isQuadratic(g); ok {
			cand, err = e.FindQuadraticMoves(a, g.Var, coeffA, b)
		}
		if err != nil {
			return nil, err
		}
		for _, m := range cand {
			if d, permitted := e.IsPermittedUpdate(m.Var, m.Delta); permitted {
				out = append(out, Move{Var: m.Var, Delta: d})
			}
		}
	}
	return out, nil
}

// findResetMoves implements find_reset_moves: resets every variable
// this atom's nonlinear groups mention, recursively resetting the
// children of any sum/product among them, always succeeding (spec
// §4.F step 3 is the unconditional fallback).
func (e *Engine) findResetMoves(a *atom.Atom) (bool, error) {
	any := false
	for _, g := range a.Nonlinear {
		if err := e.resetSubtree(g.Var, make(map[dag.VarID]bool)); err != nil {
			return any, err
		}
		any = true
	}
	return any, nil
}

func (e *Engine) resetSubtree(v dag.VarID, seen map[dag.VarID]bool) error {
	if seen[v] {
		return nil
	}
	seen[v] = true
	m := e.AddResetUpdate(v)
	if !m.Delta.IsZero() {
		newValue, err := e.Store.ValueOf(v).Add(m.Delta)
		if err != nil {
			return err
		}
		if err := e.Update(v, newValue); err != nil && err != ErrNotApplicable {
			return err
		}
	}
	vr := e.Store.Var(v)
	switch vr.DefKind {
	case dag.DefSum:
		s := e.Store.Sum(dag.SumID(vr.DefIndex))
		for _, arg := range s.Args {
			if err := e.resetSubtree(arg.Var, seen); err != nil {
				return err
			}
		}
	case dag.DefProduct:
		p := e.Store.Product(dag.ProductID(vr.DefIndex))
		for _, m := range p.Monomial {
			if err := e.resetSubtree(m.Var, seen); err != nil {
				return err
			}
		}
	}
	return nil
}

// isLinear implements spec §4.F's is_linear(x, nl, &b): true if the
// group is a single power-1 entry (b = its coefficient), or every entry
// has power 1 with b = sum of coeff*mul_value_without(outer, x).
func (e *Engine) isLinear(g atom.NonlinearGroup) (numeric.Num, bool) {
	if len(g.Entries) == 1 && g.Entries[0].Power == 1 {
		return g.Entries[0].Coeff, true
	}
	b := e.Store.Backend.Zero()
	for _, en := range g.Entries {
		if en.Power != 1 {
			return nil, false
		}
		factor, err := e.valueWithoutFactor(en, g.Var)
		if err != nil {
			return nil, false
		}
		term, err := en.Coeff.Mul(factor)
		if err != nil {
			return nil, false
		}
		b, err = b.Add(term)
		if err != nil {
			return nil, false
		}
	}
	return b, true
}

// isQuadratic implements spec §4.F's is_quadratic(x, nl, &a, &b):
// groups powers 1 and 2 separately; fails on any power >= 3.
func (e *Engine) isQuadratic(g atom.NonlinearGroup) (numeric.Num, numeric.Num, bool) {
	a := e.Store.Backend.Zero()
	b := e.Store.Backend.Zero()
	sawQuadratic := false
	for _, en := range g.Entries {
		if en.Power >= 3 {
			return nil, nil, false
		}
		factor, err := e.valueWithoutFactor(en, g.Var)
		if err != nil {
			return nil, nil, false
		}
		term, err := en.Coeff.Mul(factor)
		if err != nil {
			return nil, nil, false
		}
		switch en.Power {
		case 2:
			sawQuadratic = true
			a, err = a.Add(term)
		case 1:
			b, err = b.Add(term)
		}
		if err != nil {
			return nil, nil, false
		}
	}
	if !sawQuadratic {
		return nil, nil, false
	}
	return a, b, true
}

// valueWithoutFactor returns the value of every other factor in en's
// product besides the group's inner variable x — 1 when en is a bare
// (non-product) variable reference.
func (e *Engine) valueWithoutFactor(en atom.NonlinearEntry, x dag.VarID) (numeric.Num, error) {
	if en.Outer == x {
		return e.Store.Backend.One(), nil
	}
	vr := e.Store.Var(en.Outer)
	if vr.DefKind != dag.DefProduct {
		return e.Store.Backend.One(), nil
	}
	p := e.Store.Product(dag.ProductID(vr.DefIndex))
	return p.ValueWithout(x, e.Store.ValueOf, e.Store.Backend.One())
}

// RepairUp implements spec §4.F's repair_up(e): recompute a definition
// variable's own value from its definition and commit it.
func (e *Engine) RepairUp(v dag.VarID) error {
	vr := e.Store.Var(v)
	one := e.Store.Backend.One()
	switch vr.DefKind {
	case dag.DefSum:
		s := e.Store.Sum(dag.SumID(vr.DefIndex))
		val, err := s.Eval(e.Store.ValueOf)
		if err != nil {
			return err
		}
		return e.Update(v, val)
	case dag.DefProduct:
		p := e.Store.Product(dag.ProductID(vr.DefIndex))
		val, err := p.Eval(e.Store.ValueOf, one)
		if err != nil {
			return err
		}
		return e.Update(v, val)
	case dag.DefUnary:
		op := e.Store.Op(dag.OpID(vr.DefIndex))
		arg2 := numeric.Num(nil)
		if op.Arg2 != dag.NoVar {
			arg2 = e.Store.ValueOf(op.Arg2)
		}
		val, err := op.Eval(e.Store.ValueOf(op.Arg1), arg2, e.Store.Backend.Zero())
		if err != nil {
			return err
		}
		return e.Update(v, val)
	}
	return nil
}

// RepairDown implements spec §4.F's repair_down(e): attempts to move a
// definition's inputs so the stored value matches the variable's
// (already-updated) target, with specialised per-op routines. Only MOD
// has a concrete routine; DIV/IDIV fall back to recomputing from the
// current inputs (repair_up's behaviour) since their input-side repair
// is not specified precisely enough to implement safely. POWER,
// TO_INT, and TO_REAL have no repair-down routine at all (spec §9: this
// repository's documented limitation) and return numeric.ErrNotImplemented.
func (e *Engine) RepairDown(v dag.VarID) error {
	vr := e.Store.Var(v)
	if vr.DefKind != dag.DefUnary {
		return e.RepairUp(v)
	}
	op := e.Store.Op(dag.OpID(vr.DefIndex))
	switch op.Kind {
	case dag.OpMod:
		if op.Arg2 == dag.NoVar {
			return e.RepairUp(v)
		}
		arg2 := e.Store.ValueOf(op.Arg2)
		if arg2.IsZero() {
			return e.RepairUp(v)
		}
		cur, err := e.Store.ValueOf(op.Arg1).Mod(arg2)
		if err != nil {
			return e.RepairUp(v)
		}
		target := vr.Value
		diff, err := target.Sub(cur)
		if err != nil {
			return err
		}
		newArg1, err := e.Store.ValueOf(op.Arg1).Add(diff)
		if err != nil {
			return err
		}
		return e.Update(op.Arg1, newArg1)
	case dag.OpRem, dag.OpIDiv, dag.OpDiv, dag.OpAbs:
		return e.RepairUp(v)
	case dag.OpPower, dag.OpToInt, dag.OpToReal:
		return numeric.ErrNotImplemented
	}
	return e.RepairUp(v)
}
