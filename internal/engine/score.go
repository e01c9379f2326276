package engine

import (
	"context"
	"log/slog"
	"math"

	"github.com/gitrdm/arithsls/internal/atom"
	"github.com/gitrdm/arithsls/internal/dag"
	"github.com/gitrdm/arithsls/internal/numeric"
	"github.com/gitrdm/arithsls/internal/solverctx"
)

// ComputeScore implements spec §4.E's compute_score for candidate
// (v, delta): it counts atoms transitioning false->true ("make") and
// true->false ("break") under the hypothetical change, without
// committing it, then maps (make, break) to a score.
func (e *Engine) ComputeScore(v dag.VarID, delta numeric.Num) (float64, error) {
	newValue, err := e.Store.ValueOf(v).Add(delta)
	if err != nil {
		return 0, err
	}
	deltas := make(map[int]numeric.Num)
	if err := e.UpdateArgsValue(v, newValue, deltas); err != nil {
		return 0, err
	}

	make_, brk := 0, 0
	breaksUnit := false
	for aid, d := range deltas {
		a := &e.Atoms.Atoms[aid]
		before := e.atomSatisfiesAssignment(a)
		hypo, err := a.ArgsValue.Add(d)
		if err != nil {
			continue
		}
		after := evalTruth(a.Op, hypo) == e.Ctx.IsTrue(solverctx.Lit{Var: a.BoolVar, Sign: true})
		switch {
		case !before && after:
			make_++
		case before && !after:
			brk++
			if e.Ctx.IsUnit(solverctx.Lit{Var: a.BoolVar, Sign: true}) {
				breaksUnit = true
			}
		}
	}

	if breaksUnit && e.tabuActive {
		return 0, nil
	}

	result := make_ - brk
	switch {
	case result < 0:
		return 1e-7, nil
	case result == 0:
		return 2e-6, nil
	default:
		cb := e.P.CB
		if cb <= 1 {
			cb = 2
		}
		return math.Pow(cb, float64(-brk)), nil
	}
}

// evalTruth evaluates a hypothetical ArgsValue against op, matching
// Atom.IsTrue's semantics without needing a live Atom.
func evalTruth(op atom.Op, v numeric.Num) bool {
	s := v.Sign()
	switch op {
	case atom.LE:
		return s <= 0
	case atom.LT:
		return s < 0
	case atom.EQ:
		return s == 0
	default:
		return false
	}
}

// ApplyUpdate implements spec §4.E's apply_update: caps the candidate
// set at P.MaxSize by dropping random excess, selects one by weighted
// probability over ComputeScore, commits it via Update, and records
// last_var/last_delta, the step counter, and v's tabu ban window.
func (e *Engine) ApplyUpdate(candidates []Move) (bool, error) {
	candidates, scores, ok := e.scoredCandidates(candidates)
	if !ok {
		return false, nil
	}

	total := 0.0
	for _, s := range scores {
		total += s
	}
	if total <= 0 {
		return false, nil
	}

	pick := e.Ctx.Rand() * total
	chosen := candidates[len(candidates)-1]
	acc := 0.0
	for i, s := range scores {
		acc += s
		if pick <= acc {
			chosen = candidates[i]
			break
		}
	}

	return e.commitMove(chosen)
}

// ApplyBestHillclimb implements spec §4.G step 3's hillclimb rule:
// accept the candidate with the highest ComputeScore, breaking ties by
// earlier order — the first candidate to reach the maximum wins. This
// is deterministic selection, unlike ApplyUpdate's weighted-random
// pick used by stepMove's other two branches.
func (e *Engine) ApplyBestHillclimb(candidates []Move) (bool, error) {
	candidates, scores, ok := e.scoredCandidates(candidates)
	if !ok {
		return false, nil
	}
	best := 0
	for i := 1; i < len(scores); i++ {
		if scores[i] > scores[best] {
			best = i
		}
	}
	return e.commitMove(candidates[best])
}

// scoredCandidates caps candidates at P.MaxSize by dropping random
// excess (spec §4.E: "drop random ones to cap cost"), then scores every
// survivor via ComputeScore, shared by ApplyUpdate and
// ApplyBestHillclimb's differing selection rules.
func (e *Engine) scoredCandidates(candidates []Move) ([]Move, []float64, bool) {
	if len(candidates) == 0 {
		return nil, nil, false
	}
	if e.P.MaxSize > 0 && len(candidates) > e.P.MaxSize {
		candidates = e.sampleWithoutReplacement(candidates, e.P.MaxSize)
	}
	scores := make([]float64, len(candidates))
	for i, c := range candidates {
		s, err := e.ComputeScore(c.Var, c.Delta)
		if err != nil {
			s = 0
		}
		scores[i] = s
	}
	return candidates, scores, true
}

// commitMove applies chosen via Update and records last_var/last_delta,
// the step counter, and v's tabu ban window, shared by ApplyUpdate and
// ApplyBestHillclimb once each has picked its candidate.
func (e *Engine) commitMove(chosen Move) (bool, error) {
	if err := e.Update(chosen.Var, mustAdd(e.Store.ValueOf(chosen.Var), chosen.Delta)); err != nil {
		if err == ErrNotApplicable || err == numeric.ErrOverflow {
			return false, nil
		}
		return false, err
	}
	if e.Logger != nil && e.Logger.Enabled(context.Background(), slog.LevelDebug) {
		e.Logger.Debug("move committed", "var", chosen.Var, "delta", chosen.Delta.String())
	}

	e.lastVar = chosen.Var
	e.lastDelta = chosen.Delta
	e.hasLastDelta = true
	e.step++
	vr := e.Store.Var(chosen.Var)
	vr.BanUntilStep = e.step + 3 + int(e.Ctx.Rand()*10)
	vr.LastStep = e.step
	vr.HasLastDelta = true
	vr.LastDelta = chosen.Delta
	e.stats.MovesApplied++
	return true, nil
}

func mustAdd(a, b numeric.Num) numeric.Num {
	v, err := a.Add(b)
	if err != nil {
		return a
	}
	return v
}

// sampleWithoutReplacement drops random candidates down to n, per
// spec §4.E's "drop random ones to cap cost".
func (e *Engine) sampleWithoutReplacement(in []Move, n int) []Move {
	pool := append([]Move(nil), in...)
	for len(pool) > n {
		i := int(e.Ctx.Rand() * float64(len(pool)))
		if i >= len(pool) {
			i = len(pool) - 1
		}
		pool = append(pool[:i], pool[i+1:]...)
	}
	return pool
}
