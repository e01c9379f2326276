package engine

import (
	"context"
	"log/slog"

	"github.com/gitrdm/arithsls/internal/dag"
	"github.com/gitrdm/arithsls/internal/numeric"
	"github.com/gitrdm/arithsls/internal/solverctx"
)

// Update commits v := newValue and propagates the change through every
// dependent atom, product, and sum, re-flipping non-unit Boolean atoms
// as needed to maintain the atom-truth invariant (spec §4.D) — unit
// atoms keep their fixed required polarity and are left for the search
// loop to repair toward instead. Returns ErrNotApplicable for a
// rejected move and numeric.ErrOverflow for an overflow detected during
// the dry-run; neither leaves any observable effect (spec §5:
// atomicity via the pre-flight dry-run).
func (e *Engine) Update(v dag.VarID, newValue numeric.Num) error {
	vr := e.Store.Var(v)
	old := vr.Value

	// Step 1: reject cases.
	if old.Cmp(newValue) == 0 {
		return nil
	}
	if !vr.InRange(newValue) {
		return ErrNotApplicable
	}
	if vr.InBounds(old) && !vr.InBounds(newValue) {
		return ErrNotApplicable
	}

	delta, err := newValue.Sub(old)
	if err != nil {
		return err
	}

	// Step 2: dry-run recompute every product containing v to detect
	// overflow before committing anything.
	one := e.Store.Backend.One()
	for _, pid := range vr.Muls {
		p := e.Store.Product(pid)
		if _, err := dryRunProductAt(p, v, newValue, e.Store.ValueOf, one); err != nil {
			if e.Logger != nil && e.Logger.Enabled(context.Background(), slog.LevelWarn) {
				e.Logger.Warn("move rejected: overflow", "var", v, "err", err)
			}
			return err
		}
	}

	// Step 3: update cached atom args_value, queueing any bv whose
	// truth now disagrees with its Boolean assignment.
	var queued []int
	for _, occ := range vr.LinearOccurs {
		a := &e.Atoms.Atoms[occ.AtomID]
		scaled, err := occ.Coeff.Mul(delta)
		if err != nil {
			return err
		}
		nv, err := a.ArgsValue.Add(scaled)
		if err != nil {
			return err
		}
		a.ArgsValue = nv
		if !e.atomSatisfiesAssignment(a) {
			queued = append(queued, occ.AtomID)
		}
	}

	// Step 4: commit.
	vr.Value = newValue
	host := e.hostExprOf(v)
	e.Ctx.NewValueEH(host)

	// Step 5: flip every atom still disagreeing after commit. A unit
	// literal's Boolean assignment is a requirement fixed by the owning
	// context (spec §6: is_unit), not a free variable this engine may
	// invert to manufacture agreement — flipping it would let the
	// search "satisfy" an atom by silently discarding the assertion
	// that demanded its polarity in the first place.
	for _, aid := range queued {
		a := &e.Atoms.Atoms[aid]
		if e.Ctx.IsUnit(solverctx.Lit{Var: a.BoolVar, Sign: true}) {
			continue
		}
		if !e.atomSatisfiesAssignment(a) {
			if err := e.Ctx.Flip(a.BoolVar); err != nil {
				return err
			}
			e.stats.Flips++
		}
	}

	// Step 6: recurse into product parents.
	for _, pid := range vr.Muls {
		p := e.Store.Product(pid)
		newVal, err := p.Eval(e.Store.ValueOf, one)
		if err != nil {
			return err
		}
		if e.Store.ValueOf(p.Var).Cmp(newVal) != 0 {
			if err := e.Update(p.Var, newVal); err != nil {
				return err
			}
		}
	}

	// Step 7: recurse into sum parents.
	for _, sid := range vr.Adds {
		s := e.Store.Sum(sid)
		newVal, err := s.Eval(e.Store.ValueOf)
		if err != nil {
			return err
		}
		if e.Store.ValueOf(s.Var).Cmp(newVal) != 0 {
			if err := e.Update(s.Var, newVal); err != nil {
				return err
			}
		}
	}

	return nil
}

// dryRunProductAt recomputes p's value as if v already held newValue,
// without mutating any state, purely to surface an overflow early.
func dryRunProductAt(p *dag.Product, v dag.VarID, newValue numeric.Num, valueOf func(dag.VarID) numeric.Num, one numeric.Num) (numeric.Num, error) {
	lookup := func(id dag.VarID) numeric.Num {
		if id == v {
			return newValue
		}
		return valueOf(id)
	}
	return p.Eval(lookup, one)
}

// hostExprOf finds a host ExprID bound to v in Store.ExprMap, or -1 if
// v is an internal (non-leaf) variable with no direct host binding.
func (e *Engine) hostExprOf(v dag.VarID) dag.ExprID {
	for host, id := range e.Store.ExprMap {
		if id == v {
			return host
		}
	}
	return dag.ExprID(-1)
}

// UpdateArgsValue walks the DAG downward from v as if it had changed to
// newValue, updating every reachable atom's cached ArgsValue as a
// lookahead scoring aid, without touching bounds, committing v's value,
// or calling into Ctx (spec §4.D: "update_args_value").
func (e *Engine) UpdateArgsValue(v dag.VarID, newValue numeric.Num, deltas map[int]numeric.Num) error {
	vr := e.Store.Var(v)
	delta, err := newValue.Sub(vr.Value)
	if err != nil {
		return err
	}
	for _, occ := range vr.LinearOccurs {
		scaled, err := occ.Coeff.Mul(delta)
		if err != nil {
			return err
		}
		if cur, ok := deltas[occ.AtomID]; ok {
			merged, err := cur.Add(scaled)
			if err != nil {
				return err
			}
			deltas[occ.AtomID] = merged
		} else {
			deltas[occ.AtomID] = scaled
		}
	}
	one := e.Store.Backend.One()
	for _, pid := range vr.Muls {
		p := e.Store.Product(pid)
		nv, err := dryRunProductAt(p, v, newValue, e.Store.ValueOf, one)
		if err != nil {
			return err
		}
		if e.Store.ValueOf(p.Var).Cmp(nv) != 0 {
			if err := e.UpdateArgsValue(p.Var, nv, deltas); err != nil {
				return err
			}
		}
	}
	for _, sid := range vr.Adds {
		s := e.Store.Sum(sid)
		sub := func(id dag.VarID) numeric.Num {
			if id == v {
				return newValue
			}
			return e.Store.ValueOf(id)
		}
		nv, err := s.Eval(sub)
		if err != nil {
			return err
		}
		if e.Store.ValueOf(s.Var).Cmp(nv) != 0 {
			if err := e.UpdateArgsValue(s.Var, nv, deltas); err != nil {
				return err
			}
		}
	}
	return nil
}
