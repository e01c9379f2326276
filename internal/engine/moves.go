package engine

import (
	"github.com/gitrdm/arithsls/internal/atom"
	"github.com/gitrdm/arithsls/internal/dag"
	"github.com/gitrdm/arithsls/internal/numeric"
)

// Move is a candidate (variable, delta) update a proposer suggests.
type Move struct {
	Var   dag.VarID
	Delta numeric.Num
}

// FindLinearMoves implements spec §4.E's find_linear_moves for atom a
// and variable v appearing with coefficient c: if a is currently true,
// propose moves that push it one step further from the boundary (for
// EQ, both +1 and -1); if false, propose the minimal delta that makes
// args_value + c*delta satisfy the operator.
func (e *Engine) FindLinearMoves(a *atom.Atom, v dag.VarID, c numeric.Num) ([]Move, error) {
	isInt := e.Store.Var(v).IsInt()
	unit := e.epsilon(isInt)

	if a.IsTrue() {
		if a.Op == atom.EQ {
			return []Move{{Var: v, Delta: unit}, {Var: v, Delta: unit.Neg()}}, nil
		}
		if c.Sign() > 0 {
			return []Move{{Var: v, Delta: unit.Neg()}}, nil
		}
		return []Move{{Var: v, Delta: unit}}, nil
	}

	sum := a.ArgsValue
	if sum.IsZero() && a.Op != atom.LT {
		return nil, nil
	}
	switch a.Op {
	case atom.EQ:
		q, err := sum.Quo(c)
		if err != nil {
			return nil, err
		}
		if isInt && !q.IsInt() {
			return nil, nil
		}
		return []Move{{Var: v, Delta: q.Neg()}}, nil
	default: // LE, LT
		absC := c.Abs()
		mag, err := sum.Abs().DivideCeil(absC)
		if err != nil {
			return nil, err
		}
		sign := -1
		if (sum.Sign() < 0) != (c.Sign() < 0) {
			sign = 1
		}
		delta := mag
		if sign < 0 {
			delta = mag.Neg()
		}
		if a.Op == atom.LT {
			// A strict < atom landed exactly on args_value == 0 still
			// fails to satisfy it; nudge one more unit past the
			// boundary in the same direction delta already moves.
			nudge := unit
			if sign < 0 {
				nudge = unit.Neg()
			}
			d, err := delta.Add(nudge)
			if err != nil {
				return nil, err
			}
			delta = d
		}
		return []Move{{Var: v, Delta: delta}}, nil
	}
}

// FindQuadraticMoves implements spec §4.E's find_quadratic_moves: given
// a*x^2 + b*x + rest = 0 restricted to x (rest folding in every other
// term of the atom, including its own coeff), compute the real roots
// via the discriminant, using integer sqrt with a correctness re-check,
// and propose candidate deltas from the floor/ceil of each root
// adjusted by an epsilon to land the right side of the parabola for the
// atom's current polarity.
func (e *Engine) FindQuadraticMoves(a *atom.Atom, x dag.VarID, coeffA, coeffB numeric.Num) ([]Move, error) {
	if coeffA.IsZero() {
		return nil, nil
	}
	cur := e.Store.ValueOf(x)
	zero := e.Store.Backend.Zero()

	rest := residualConst(a, coeffA, coeffB, cur)

	four := e.Store.Backend.FromInt64(4)
	two := e.Store.Backend.FromInt64(2)

	b2, err := coeffB.Mul(coeffB)
	if err != nil {
		return nil, err
	}
	ac4, err := four.Mul(coeffA)
	if err != nil {
		return nil, err
	}
	acTerm, err := ac4.Mul(rest)
	if err != nil {
		return nil, err
	}
	disc, err := b2.Sub(acTerm)
	if err != nil {
		return nil, err
	}
	if disc.Sign() < 0 {
		return nil, nil
	}

	sq, err := e.Store.Backend.Sqrt(disc)
	if err != nil {
		return nil, nil
	}
	// Correctness re-check per spec §4.A/§4.E: nudge sq down until
	// sq^2 <= disc, guarding against an off-by-one from the Sqrt helper.
	for i := 0; i < 2; i++ {
		sq2, err := sq.Mul(sq)
		if err != nil {
			break
		}
		if sq2.Cmp(disc) <= 0 {
			break
		}
		sq, err = sq.Sub(e.Store.Backend.One())
		if err != nil {
			break
		}
	}

	negB := coeffB.Neg()
	twoA, err := two.Mul(coeffA)
	if err != nil {
		return nil, err
	}
	r1num, err := negB.Add(sq)
	if err != nil {
		return nil, err
	}
	r2num, err := negB.Sub(sq)
	if err != nil {
		return nil, err
	}
	r1, err := r1num.Quo(twoA)
	if err != nil {
		return nil, err
	}
	r2, err := r2num.Quo(twoA)
	if err != nil {
		return nil, err
	}
	if r1.Cmp(r2) > 0 {
		r1, r2 = r2, r1
	}

	isInt := e.Store.Var(x).IsInt()
	eps := e.epsilon(isInt)

	var moves []Move
	for _, root := range []numeric.Num{r1, r2} {
		delta, err := root.Sub(cur)
		if err != nil {
			continue
		}
		if isInt {
			fl, err := delta.DivideFloor(e.Store.Backend.One())
			if err == nil {
				delta = fl
			}
		}
		for _, adj := range []numeric.Num{zero, eps, eps.Neg()} {
			d, err := delta.Add(adj)
			if err != nil || d.IsZero() {
				continue
			}
			moves = append(moves, Move{Var: x, Delta: d})
		}
	}
	return moves, nil
}

// residualConst recovers the part of a.ArgsValue independent of x's own
// quadratic/linear contribution, i.e. the "rest" of
// a*x^2 + b*x + rest = 0 once ArgsValue = coeff + sum is rewritten
// around x: rest = ArgsValue - (a*x^2 + b*x) evaluated at x's current
// value.
func residualConst(a *atom.Atom, coeffA, coeffB, cur numeric.Num) numeric.Num {
	curSq, err := cur.Mul(cur)
	if err != nil {
		return a.ArgsValue
	}
	aTerm, err := coeffA.Mul(curSq)
	if err != nil {
		return a.ArgsValue
	}
	bTerm, err := coeffB.Mul(cur)
	if err != nil {
		return a.ArgsValue
	}
	total, err := aTerm.Add(bTerm)
	if err != nil {
		return a.ArgsValue
	}
	rest, err := a.ArgsValue.Sub(total)
	if err != nil {
		return a.ArgsValue
	}
	return rest
}

// AddResetUpdate implements spec §4.E's add_reset_update: picks a small
// random value in [-2,2] adjusted into v's bounds and clears its tabu
// ban window. FindResetMoves (repair.go) recurses this over a whole
// nonlinear subtree.
func (e *Engine) AddResetUpdate(v dag.VarID) Move {
	vr := e.Store.Var(v)
	vr.BanUntilStep = 0
	n := int(e.Ctx.Rand()*5) - 2
	target := e.Store.Backend.FromInt64(int64(n))
	if clamped, ok := e.clampToBound(vr, target); ok {
		target = clamped
	}
	delta, err := target.Sub(vr.Value)
	if err == nil && vr.InBounds(target) && vr.InRange(target) {
		return Move{Var: v, Delta: delta}
	}
	return Move{Var: v, Delta: e.Store.Backend.Zero()}
}
