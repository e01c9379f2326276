// Package engine implements the stochastic local-search repair/search
// procedure: the value-update propagation engine, move proposers,
// local repair, and the global lookahead search loop (spec §4.D-H).
package engine

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/gitrdm/arithsls/internal/atom"
	"github.com/gitrdm/arithsls/internal/config"
	"github.com/gitrdm/arithsls/internal/dag"
	"github.com/gitrdm/arithsls/internal/numeric"
	"github.com/gitrdm/arithsls/internal/slslog"
	"github.com/gitrdm/arithsls/internal/solverctx"
)

// ErrNotApplicable signals a rejected move: equal to current value,
// outside the admissible overflow range, or outside bounds when the
// prior value was in-bounds (spec §4.D step 1). Callers must treat this
// exactly like an overflow — the move simply did not happen.
var ErrNotApplicable = errors.New("engine: move not applicable")

// RunStats mirrors what collect_statistics reports (spec §6).
type RunStats struct {
	Steps       int
	Restarts    int
	Flips       int
	MovesTried  int
	MovesApplied int
}

// Engine owns the term DAG, atom store, and all search-loop state for
// one solver instance (spec §3: "Global mutable state ... no hidden
// globals").
type Engine struct {
	Store  *dag.Store
	Atoms  *atom.Store
	Ctx    solverctx.Ctx
	P      config.Params
	Logger *slog.Logger

	step int

	lastVar      dag.VarID
	lastDelta    numeric.Num
	hasLastDelta bool
	tabuActive   bool

	// touched/touchedTotal back UCB candidate selection (spec §4.G).
	touched      map[atom.ID]float64
	touchedTotal float64

	// weight is the PAWS per-root weight (spec §4.G).
	weight map[atom.ID]int

	restartNext int
	restartK    int

	best map[dag.VarID]numeric.Num

	stats RunStats
}

// BackendFor resolves p.Backend to a numeric.Backend, the same
// selection New makes internally — exported so callers that must build
// the term DAG before they have a host to wire it to (e.g. a host that
// needs a reference to the store) can select the same backend.
func BackendFor(p config.Params) numeric.Backend {
	if p.Backend == config.BackendChecked64 {
		return numeric.Checked64Backend{}
	}
	return numeric.RationalBackend{}
}

// New builds an Engine over a fresh term DAG/atom store using the
// backend named in p, wired to host.
func New(p config.Params, host solverctx.Ctx) *Engine {
	return NewWithStore(p, dag.NewStore(BackendFor(p)), host)
}

// NewWithStore builds an Engine over a caller-supplied store, for
// callers that must hand the same store to host before host exists as
// an Engine field (e.g. solverctx.InMemory's GetValue resolves
// expression handles through the same store it was built with).
func NewWithStore(p config.Params, store *dag.Store, host solverctx.Ctx) *Engine {
	return &Engine{
		Store:       store,
		Atoms:       atom.NewStore(store),
		Ctx:         host,
		P:           p,
		Logger:      slslog.Log,
		lastVar:     dag.NoVar,
		touched:     make(map[atom.ID]float64),
		weight:      make(map[atom.ID]int),
		restartNext: p.RestartBase,
		restartK:    1,
		best:        make(map[dag.VarID]numeric.Num),
	}
}

// RegisterTerm is the engine's register_term entry point (spec §6),
// delegating to the term DAG.
func (e *Engine) RegisterTerm(host dag.ExprID, expr *dag.Expr) (dag.VarID, error) {
	return e.Store.RegisterTerm(host, expr)
}

// InitBoolVar installs bv with no arithmetic atom (spec §6).
func (e *Engine) InitBoolVar(bv int) {
	e.Atoms.InitBoolVar(bv)
}

// InitIneq installs bv's arithmetic atom from a canonicalised linear
// combination (spec §4.C), initialising PAWS weight for it as a root.
func (e *Engine) InitIneq(bv int, kind atom.Kind, coeff numeric.Num, args []dag.SumArg) (atom.ID, error) {
	id, err := e.Atoms.InitIneq(bv, kind, coeff, args)
	if err != nil {
		return atom.NoAtom, err
	}
	e.weight[id] = e.P.PawsInit
	e.touched[id] = 1
	e.touchedTotal++
	return id, nil
}

// atomSatisfiesAssignment reports whether a's current cached truth
// agrees with its Boolean variable's assigned value (spec §4.D step 3's
// "atom's truth ... matches its Boolean assignment").
func (e *Engine) atomSatisfiesAssignment(a *atom.Atom) bool {
	want := e.Ctx.IsTrue(solverctx.Lit{Var: a.BoolVar, Sign: true})
	return a.IsTrue() == want
}

// IsSat reports whether every atom in the store currently agrees with
// its Boolean assignment (spec §6: is_sat).
func (e *Engine) IsSat() bool {
	for i := range e.Atoms.Atoms {
		if !e.atomSatisfiesAssignment(&e.Atoms.Atoms[i]) {
			return false
		}
	}
	return true
}

// StartPropagation implements spec §6's start_propagation(): a no-op
// when arith_use_lookahead is disabled (spec §6 config table);
// otherwise every currently unit literal is propagated into agreement
// via PropagateLiteral before initialize/global_search ever run.
func (e *Engine) StartPropagation() error {
	if !e.P.ArithUseLookahead {
		return nil
	}
	for _, lit := range e.Ctx.UnitLiterals() {
		if _, err := e.PropagateLiteral(lit); err != nil {
			return err
		}
	}
	return nil
}

// PropagateLiteral implements spec §6's propagate_literal(lit): if
// lit's atom already agrees with lit's required truth, nothing to do;
// otherwise hand it to RepairLiteral. A literal naming no arithmetic
// atom (a purely propositional Bool var) trivially agrees.
func (e *Engine) PropagateLiteral(lit solverctx.Lit) (bool, error) {
	if lit.Var < 0 || lit.Var >= len(e.Atoms.BoolVarMap) {
		return true, nil
	}
	id := e.Atoms.BoolVarMap[lit.Var]
	if id == atom.NoAtom {
		return true, nil
	}
	a := &e.Atoms.Atoms[id]
	if a.IsTrue() == lit.Sign {
		return true, nil
	}
	return e.RepairLiteral(lit)
}

// RepairLiteral implements spec §6's repair_literal(lit), delegating
// to Repair for lit's Boolean variable (spec §4.F's repair always
// targets the literal's own required assignment, never its negation).
func (e *Engine) RepairLiteral(lit solverctx.Lit) (bool, error) {
	return e.Repair(lit.Var)
}

// Propagate implements spec §6's propagate(): this engine never defers
// work to a later propagate() call, so it is always a no-op returning
// false.
func (e *Engine) Propagate() bool { return false }

// SetValue implements spec §6's set_value(e, v): resolves the host
// expression e to its interned variable and commits v through Update.
func (e *Engine) SetValue(expr dag.ExprID, v numeric.Num) error {
	vid, ok := e.Store.ExprMap[expr]
	if !ok {
		return fmt.Errorf("engine: set_value: unregistered expression %d", expr)
	}
	return e.Update(vid, v)
}

// GetValue implements spec §6's get_value(e): resolves the host
// expression e to its interned variable's current value, reporting
// false if e was never registered.
func (e *Engine) GetValue(expr dag.ExprID) (numeric.Num, bool) {
	vid, ok := e.Store.ExprMap[expr]
	if !ok {
		return nil, false
	}
	return e.Store.ValueOf(vid), true
}

// IsFixed implements spec §6's is_fixed(e, out): reports whether e's
// interned variable is pinned to a single point by a degenerate
// [lower, upper] bound (both bounds valid, non-strict and equal),
// writing that point into *out.
func (e *Engine) IsFixed(expr dag.ExprID, out *numeric.Num) bool {
	vid, ok := e.Store.ExprMap[expr]
	if !ok {
		return false
	}
	vr := e.Store.Var(vid)
	if !vr.Lower.Valid || !vr.Upper.Valid || vr.Lower.Strict || vr.Upper.Strict {
		return false
	}
	if vr.Lower.Value.Cmp(vr.Upper.Value) != 0 {
		return false
	}
	*out = vr.Lower.Value
	return true
}

// SaveBestValues snapshots every variable's current value as Best
// (spec §6: save_best_values), used by on_restart to remember the
// best assignment seen so far.
func (e *Engine) SaveBestValues() {
	for i := range e.Store.Vars {
		e.Store.Vars[i].Best = e.Store.Vars[i].Value
		e.best[dag.VarID(i)] = e.Store.Vars[i].Value
	}
}

// CollectStatistics returns a copy of the engine's running counters.
func (e *Engine) CollectStatistics() RunStats { return e.stats }

// ResetStatistics zeroes the running counters.
func (e *Engine) ResetStatistics() { e.stats = RunStats{} }

// Step returns the engine's current move counter.
func (e *Engine) Step() int { return e.step }
