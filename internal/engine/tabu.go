package engine

import (
	"github.com/gitrdm/arithsls/internal/dag"
	"github.com/gitrdm/arithsls/internal/numeric"
)

// IsPermittedUpdate implements spec §4.E's is_permitted_update: reject a
// candidate (v, delta) that exactly undoes the last move, that bans v
// under an active tabu window, or that would leave v's admissible
// range. A delta that would cross a bound from inside to outside is
// clamped to the bound (with an epsilon on strict bounds) and retried;
// the (possibly clamped) delta is returned alongside whether the move
// is permitted at all. Delta of exactly zero is always rejected.
func (e *Engine) IsPermittedUpdate(v dag.VarID, delta numeric.Num) (numeric.Num, bool) {
	if delta.IsZero() {
		return delta, false
	}
	vr := e.Store.Var(v)

	if e.hasLastDelta && e.lastVar == v {
		negLast := e.lastDelta.Neg()
		if delta.Cmp(negLast) == 0 {
			return delta, false
		}
	}
	if e.tabuActive && vr.BanUntilStep > e.step {
		return delta, false
	}

	newValue, err := vr.Value.Add(delta)
	if err != nil {
		return delta, false
	}
	if !vr.InRange(newValue) {
		return delta, false
	}

	if vr.InBounds(vr.Value) && !vr.InBounds(newValue) {
		clamped, ok := e.clampToBound(vr, newValue)
		if !ok {
			return delta, false
		}
		newDelta, err := clamped.Sub(vr.Value)
		if err != nil || newDelta.IsZero() {
			return delta, false
		}
		return newDelta, true
	}

	return delta, true
}

// clampToBound pulls newValue back to whichever bound it crossed,
// nudging by one epsilon past a strict bound so the clamped value
// itself satisfies InBounds.
func (e *Engine) clampToBound(vr *dag.Variable, newValue numeric.Num) (numeric.Num, bool) {
	if vr.Lower.Valid && newValue.Cmp(vr.Lower.Value) < 0 {
		return e.nudge(vr.Lower.Value, vr.Lower.Strict, vr.IsInt(), +1)
	}
	if vr.Upper.Valid && newValue.Cmp(vr.Upper.Value) > 0 {
		return e.nudge(vr.Upper.Value, vr.Upper.Strict, vr.IsInt(), -1)
	}
	return newValue, true
}

// nudge returns b itself when the bound is non-strict, or b shifted by
// one admissible epsilon in the given direction (+1/-1) when strict: 1
// for an integer-sorted variable, 1/1000 for a real one.
func (e *Engine) nudge(b numeric.Num, strict bool, isInt bool, dir int) (numeric.Num, bool) {
	if !strict {
		return b, true
	}
	eps := e.epsilon(isInt)
	if dir < 0 {
		eps = eps.Neg()
	}
	v, err := b.Add(eps)
	if err != nil {
		return nil, false
	}
	return v, true
}

// epsilon returns the smallest admissible nudge for the given sort: an
// exact 1 for integers, 1/1000 for reals (computed via Quo so this
// stays backend-agnostic rather than constructing a Rational directly).
func (e *Engine) epsilon(isInt bool) numeric.Num {
	one := e.Store.Backend.One()
	if isInt {
		return one
	}
	thousand := e.Store.Backend.FromInt64(1000)
	v, err := one.Quo(thousand)
	if err != nil {
		return one
	}
	return v
}
