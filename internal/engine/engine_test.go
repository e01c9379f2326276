package engine

import (
	"testing"

	"github.com/gitrdm/arithsls/internal/atom"
	"github.com/gitrdm/arithsls/internal/config"
	"github.com/gitrdm/arithsls/internal/dag"
	"github.com/gitrdm/arithsls/internal/solverctx"
)

// assertLE declares a fresh "lhs <= 0" assertion against e's store,
// binding a unit Boolean variable to its own host expression the way
// internal/dsl's lowerAssert does, without importing that package.
func assertLE(t *testing.T, e *Engine, host *solverctx.InMemory, lhs *dag.Expr, negate bool) {
	t.Helper()
	coeff, args, err := e.Store.BuildLinear(lhs)
	if err != nil {
		t.Fatalf("build linear: %v", err)
	}
	bv := host.NewBoolVar()
	if _, err := e.InitIneq(bv, atom.KindLE, coeff, args); err != nil {
		t.Fatalf("init ineq: %v", err)
	}
	assertHost := dag.ExprID(1<<30 + bv) // one per assertion, distinct from leaf hosts
	host.BindAtom(bv, assertHost)
	host.Assert(assertHost)
	host.SetAssignment(bv, !negate)
	host.SetUnit(bv, true)
}

func newTestEngine(t *testing.T, backend config.Backend) (*Engine, *solverctx.InMemory) {
	t.Helper()
	p := config.Default()
	p.Backend = backend
	p.Seed = 1
	store := dag.NewStore(BackendFor(p))
	host := solverctx.NewInMemory(store, p.Seed)
	e := NewWithStore(p, store, host)
	return e, host
}

func declareVar(t *testing.T, e *Engine, host *solverctx.InMemory, hostID dag.ExprID, sort dag.Sort) dag.VarID {
	t.Helper()
	v, err := e.RegisterTerm(hostID, dag.VarRef(hostID, sort))
	if err != nil {
		t.Fatalf("register term: %v", err)
	}
	host.AddNewTerm(hostID)
	return v
}

func TestEngineIsSatTriviallyTrueAtZero(t *testing.T) {
	e, host := newTestEngine(t, config.BackendRational)
	x := declareVar(t, e, host, 0, dag.Int)

	assertLE(t, e, host, dag.VarRef(0, dag.Int), false)
	if !e.IsSat() {
		t.Fatalf("expected is_sat true: 0 <= 0 holds at the default zero value")
	}
	_ = x
}

func TestEngineGlobalSearchRepairsSimpleBound(t *testing.T) {
	e, host := newTestEngine(t, config.BackendRational)
	declareVar(t, e, host, 0, dag.Int)

	// "5 - x <= 0" is false at x=0 (5 <= 0 doesn't hold), giving the
	// search loop real work to do.
	five := dag.Num(e.Store.Backend.FromInt64(5))
	lhs := dag.Sub(five, dag.VarRef(0, dag.Int))
	assertLE(t, e, host, lhs, false)

	if e.IsSat() {
		t.Fatalf("expected initial assignment to be unsat (5 <= 0 is false at x=0)")
	}

	if err := e.Initialize(); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	sat, err := e.GlobalSearch(10000)
	if err != nil {
		t.Fatalf("global search: %v", err)
	}
	if !sat {
		t.Fatalf("expected global_search to find a satisfying assignment for 5 - x <= 0")
	}
}

func TestEngineGlobalSearchOverChecked64Backend(t *testing.T) {
	e, host := newTestEngine(t, config.BackendChecked64)
	declareVar(t, e, host, 0, dag.Int)

	three := dag.Num(e.Store.Backend.FromInt64(3))
	lhs := dag.Sub(three, dag.VarRef(0, dag.Int))
	assertLE(t, e, host, lhs, false)

	if err := e.Initialize(); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	sat, err := e.GlobalSearch(10000)
	if err != nil {
		t.Fatalf("global search: %v", err)
	}
	if !sat {
		t.Fatalf("expected global_search to find a satisfying assignment over Checked64")
	}
}

func TestEngineGlobalSearchReportsUnsatForContradictoryAssertions(t *testing.T) {
	e, host := newTestEngine(t, config.BackendRational)
	declareVar(t, e, host, 0, dag.Int)

	// "5 - x <= 0" (x >= 5) and "x - 3 <= 0" (x <= 3) together are
	// unsatisfiable. Repairing the first toward x=5 falsifies the second,
	// which must never be hidden by flipping the second's unit literal.
	five := dag.Num(e.Store.Backend.FromInt64(5))
	lhsGE5 := dag.Sub(five, dag.VarRef(0, dag.Int))
	assertLE(t, e, host, lhsGE5, false)

	three := dag.Num(e.Store.Backend.FromInt64(3))
	lhsLE3 := dag.Sub(dag.VarRef(0, dag.Int), three)
	assertLE(t, e, host, lhsLE3, false)

	if err := e.Initialize(); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	sat, err := e.GlobalSearch(10000)
	if err != nil {
		t.Fatalf("global search: %v", err)
	}
	if sat {
		t.Fatalf("expected global_search to report unsat for x>=5 and x<=3 simultaneously")
	}
	if e.IsSat() {
		t.Fatalf("expected is_sat false to persist after global_search gives up")
	}
	if len(e.falseRoots()) == 0 {
		t.Fatalf("expected at least one root assertion to remain genuinely false")
	}
}

func TestEngineSaveBestValuesSnapshotsCurrentValues(t *testing.T) {
	e, host := newTestEngine(t, config.BackendRational)
	v := declareVar(t, e, host, 0, dag.Int)

	e.SaveBestValues()
	if e.Store.Vars[v].Best.Cmp(e.Store.Vars[v].Value) != 0 {
		t.Fatalf("expected Best to equal Value right after SaveBestValues")
	}
}

func TestEngineCollectAndResetStatistics(t *testing.T) {
	e, host := newTestEngine(t, config.BackendRational)
	declareVar(t, e, host, 0, dag.Int)

	three := dag.Num(e.Store.Backend.FromInt64(3))
	lhs := dag.Sub(three, dag.VarRef(0, dag.Int))
	assertLE(t, e, host, lhs, false)

	if err := e.Initialize(); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	if _, err := e.GlobalSearch(10000); err != nil {
		t.Fatalf("global search: %v", err)
	}
	if e.CollectStatistics().Steps == 0 {
		t.Fatalf("expected at least one committed step")
	}
	e.ResetStatistics()
	if e.CollectStatistics() != (RunStats{}) {
		t.Fatalf("expected zeroed statistics after ResetStatistics")
	}
}
