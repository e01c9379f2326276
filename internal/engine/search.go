package engine

import (
	"math"
	"strconv"
	"strings"

	"github.com/gitrdm/arithsls/internal/atom"
	"github.com/gitrdm/arithsls/internal/dag"
	"github.com/gitrdm/arithsls/internal/numeric"
)

const maxValueCeiling = 1000.0

// RootScore implements spec §4.G's per-root score(a) in [0,1]: 1 when
// the atom currently agrees with its Boolean assignment, otherwise a
// sigmoidal shaping of the literal spec formula |ArgsValue + Coeff|
// against the fixed ceiling of 1000, kept verbatim rather than
// "corrected" even though ArgsValue already includes Coeff (spec §3).
func (e *Engine) RootScore(a *atom.Atom) float64 {
	if e.atomSatisfiesAssignment(a) {
		return 1
	}
	v, err := a.ArgsValue.Add(a.Coeff)
	if err != nil {
		return 0
	}
	f := approxFloat(v)
	if f > maxValueCeiling {
		f = maxValueCeiling
	}
	if f < -maxValueCeiling {
		f = -maxValueCeiling
	}
	return 1 - (f*f)/(maxValueCeiling*maxValueCeiling)
}

// approxFloat converts a Num to a float64 approximation for scoring
// purposes only — this repository never lets truth or move-correctness
// depend on the result, only the relative ranking score() feeds into
// UCB selection.
func approxFloat(n numeric.Num) float64 {
	s := n.String()
	if i := strings.IndexByte(s, '/'); i >= 0 {
		num, errN := strconv.ParseFloat(s[:i], 64)
		den, errD := strconv.ParseFloat(s[i+1:], 64)
		if errN != nil || errD != nil || den == 0 {
			return float64(n.Sign()) * maxValueCeiling
		}
		return num / den
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return float64(n.Sign()) * maxValueCeiling
	}
	return f
}

// TopScore implements spec §4.G's top_score = sum(weight(a)*score(a))
// over every top-level input assertion that resolves to an atom.
func (e *Engine) TopScore() float64 {
	total := 0.0
	for _, root := range e.rootAtoms() {
		total += float64(e.weight[root]) * e.RootScore(&e.Atoms.Atoms[root])
	}
	return total
}

// rootAtoms resolves every top-level input assertion to its atom id,
// skipping uninterpreted Boolean assertions.
func (e *Engine) rootAtoms() []atom.ID {
	var out []atom.ID
	for _, expr := range e.Ctx.InputAssertions() {
		bv := e.Ctx.BoolVarOf(expr)
		if bv < 0 || bv >= len(e.Atoms.BoolVarMap) {
			continue
		}
		if id := e.Atoms.BoolVarMap[bv]; id != atom.NoAtom {
			out = append(out, id)
		}
	}
	return out
}

// falseRoots returns every root atom id currently disagreeing with its
// Boolean assignment.
func (e *Engine) falseRoots() []atom.ID {
	var out []atom.ID
	for _, id := range e.rootAtoms() {
		if !e.atomSatisfiesAssignment(&e.Atoms.Atoms[id]) {
			out = append(out, id)
		}
	}
	return out
}

// fixableVars implements spec §4.G step 2's fixable_exprs, restricted
// to this repository's arithmetic DAG: the closure under sum/product
// children of every inner variable named by a's Nonlinear groups.
func (e *Engine) fixableVars(a *atom.Atom) []dag.VarID {
	seen := make(map[dag.VarID]bool)
	var out []dag.VarID
	var walk func(v dag.VarID)
	walk = func(v dag.VarID) {
		if seen[v] {
			return
		}
		seen[v] = true
		out = append(out, v)
		vr := e.Store.Var(v)
		switch vr.DefKind {
		case dag.DefSum:
			for _, arg := range e.Store.Sum(dag.SumID(vr.DefIndex)).Args {
				walk(arg.Var)
			}
		case dag.DefProduct:
			for _, m := range e.Store.Product(dag.ProductID(vr.DefIndex)).Monomial {
				walk(m.Var)
			}
		}
	}
	for _, g := range a.Nonlinear {
		walk(g.Var)
	}
	return out
}

// pickUCB implements spec §4.G step 1's UCB candidate selection among
// false roots with a non-empty fixable set: maximise
// score + ucb_constant*sqrt(ln(touched_total)/touched(a)) +
// ucb_noise*rand(); falls back to uniform-random choice when
// ArithUseLookahead (this repo's stand-in for "UCB enabled") is off.
func (e *Engine) pickUCB(candidates []atom.ID) atom.ID {
	if len(candidates) == 0 {
		return atom.NoAtom
	}
	if !e.P.ArithUseLookahead {
		i := int(e.Ctx.Rand() * float64(len(candidates)))
		if i >= len(candidates) {
			i = len(candidates) - 1
		}
		return candidates[i]
	}
	best := candidates[0]
	bestVal := math.Inf(-1)
	logTotal := math.Log(math.Max(e.touchedTotal, 1))
	for _, id := range candidates {
		t := e.touched[id]
		if t <= 0 {
			t = 1
		}
		val := e.RootScore(&e.Atoms.Atoms[id]) +
			e.P.UCBConstant*math.Sqrt(logTotal/t) +
			e.P.UCBNoise*e.Ctx.Rand()
		if val > bestVal {
			bestVal = val
			best = id
		}
	}
	return best
}

// GlobalSearch implements spec §4.G's global_search main loop, bounded
// by maxMoves, returning once every root atom agrees with its Boolean
// assignment or the host's cancellation flag goes false.
func (e *Engine) GlobalSearch(maxMoves int) (bool, error) {
	for i := 0; i < maxMoves; i++ {
		if !e.Ctx.Inc() {
			return e.IsSat(), nil
		}
		e.checkRestart()

		false_ := e.falseRoots()
		var candidates []atom.ID
		for _, id := range false_ {
			if len(e.fixableVars(&e.Atoms.Atoms[id])) > 0 {
				candidates = append(candidates, id)
			}
		}
		if len(candidates) == 0 {
			if len(false_) == 0 {
				return true, nil
			}
			// Every false root has an empty fixable set (pure
			// uninterpreted Boolean content this engine cannot move);
			// nothing left for the arithmetic engine to do.
			return false, nil
		}

		chosen := e.pickUCB(candidates)
		e.touched[chosen]++
		e.touchedTotal++

		a := &e.Atoms.Atoms[chosen]
		vars := e.fixableVars(a)

		applied, err := e.stepMove(a, vars)
		if err != nil {
			return false, err
		}
		if applied {
			e.stats.Steps++
		}
	}
	return e.IsSat(), nil
}

// stepMove implements spec §4.G step 3: with probability wp/2048 do a
// pure random increment/decrement; otherwise hillclimb over the
// candidates the nonlinear move proposers return for a, accepting the
// best score (ties broken by earlier order); otherwise apply a single
// random move and PAWS-recalibrate
// every root's weight.
func (e *Engine) stepMove(a *atom.Atom, vars []dag.VarID) (bool, error) {
	if e.Ctx.Rand() < float64(e.P.WP)/2048 {
		return e.randomIncDec(vars)
	}

	candidates := e.hillclimbCandidates(a)
	if len(candidates) > 0 {
		return e.ApplyBestHillclimb(candidates)
	}

	ok, err := e.randomUpdate(vars)
	if err != nil || !ok {
		return ok, err
	}
	e.pawsRecalibrate()
	return true, nil
}

// hillclimbCandidates enumerates every (v, delta) candidate from the
// linear/quadratic proposers over a's nonlinear groups, for the
// hillclimb branch of stepMove.
func (e *Engine) hillclimbCandidates(a *atom.Atom) []Move {
	moves, err := e.findNLMoves(a)
	if err != nil {
		return nil
	}
	return moves
}

// randomIncDec implements the wp/2048 branch: pick a random variable
// from vars and propose +-1, or a random finite-domain value.
func (e *Engine) randomIncDec(vars []dag.VarID) (bool, error) {
	if len(vars) == 0 {
		return false, nil
	}
	v := vars[int(e.Ctx.Rand()*float64(len(vars)))%len(vars)]
	vr := e.Store.Var(v)
	var delta numeric.Num
	if len(vr.FiniteDomain) > 0 {
		choice := vr.FiniteDomain[int(e.Ctx.Rand()*float64(len(vr.FiniteDomain)))%len(vr.FiniteDomain)]
		d, err := choice.Sub(vr.Value)
		if err != nil {
			return false, nil
		}
		delta = d
	} else {
		one := e.Store.Backend.One()
		if e.Ctx.Rand() < 0.5 {
			one = one.Neg()
		}
		delta = one
	}
	if delta == nil || delta.IsZero() {
		return false, nil
	}
	d, permitted := e.IsPermittedUpdate(v, delta)
	if !permitted {
		return false, nil
	}
	return e.ApplyUpdate([]Move{{Var: v, Delta: d}})
}

// randomUpdate applies a single uniformly-picked permitted move from
// vars, the fallback branch of stepMove.
func (e *Engine) randomUpdate(vars []dag.VarID) (bool, error) {
	return e.randomIncDec(vars)
}

// pawsRecalibrate implements spec §4.G's PAWS weight adjustment: for
// each root, with probability paws_sp/2048 decrement its weight if
// true, else increment if false.
func (e *Engine) pawsRecalibrate() {
	for _, id := range e.rootAtoms() {
		if e.Ctx.Rand() >= float64(e.P.PawsSP)/2048 {
			continue
		}
		a := &e.Atoms.Atoms[id]
		if e.atomSatisfiesAssignment(a) {
			if e.weight[id] > 1 {
				e.weight[id]--
			}
		} else {
			e.weight[id]++
		}
	}
}

// checkRestart implements spec §4.G's restart schedule: every
// restart_base steps, forget UCB counters via
// touched := 1 + (touched-1)*ucb_forget; every restart_next moves
// trigger a full restart, with the next threshold growing by base on
// odd restarts and 2*(k/2)*base on even restarts.
func (e *Engine) checkRestart() {
	if e.P.RestartBase > 0 && e.step > 0 && e.step%e.P.RestartBase == 0 {
		for id, t := range e.touched {
			e.touched[id] = 1 + (t-1)*e.P.UCBForget
		}
	}
	if e.P.RestartBase <= 0 || e.step < e.restartNext {
		return
	}
	e.OnRestart()
	e.restartK++
	if e.restartK%2 == 1 {
		e.restartNext += e.P.RestartBase
	} else {
		e.restartNext += 2 * (e.restartK / 2) * e.P.RestartBase
	}
}

// OnRestart implements spec §6's on_restart hook: snapshot the best
// values seen, clear tabu state, and reset PAWS weights.
func (e *Engine) OnRestart() {
	if e.Logger != nil {
		e.Logger.Info("restart", "step", e.step, "restart_k", e.restartK)
	}
	e.SaveBestValues()
	e.hasLastDelta = false
	e.lastVar = dag.NoVar
	for i := range e.Store.Vars {
		e.Store.Vars[i].BanUntilStep = 0
	}
	for id := range e.weight {
		e.weight[id] = e.P.PawsInit
	}
	e.stats.Restarts++
}

// OnRescale is spec §6's on_rescale hook: currently a no-op since this
// repository's scoring never accumulates an unbounded scale factor
// that would need periodic rescaling (unlike weight, which PAWS keeps
// in a small integer range on its own).
func (e *Engine) OnRescale() {}
