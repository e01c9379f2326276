package solverctx

import (
	"testing"

	"github.com/gitrdm/arithsls/internal/dag"
	"github.com/gitrdm/arithsls/internal/numeric"
)

func TestInMemoryBoolVarLifecycle(t *testing.T) {
	c := NewInMemory(dag.NewStore(numeric.RationalBackend{}), 1)

	bv := c.NewBoolVar()
	if bv != 0 {
		t.Fatalf("first NewBoolVar = %d, want 0", bv)
	}
	if c.IsTrue(Lit{Var: bv, Sign: true}) {
		t.Fatalf("expected fresh bool var to start false")
	}

	c.SetAssignment(bv, true)
	if !c.IsTrue(Lit{Var: bv, Sign: true}) {
		t.Fatalf("expected IsTrue(true-signed) after SetAssignment(true)")
	}
	if c.IsTrue(Lit{Var: bv, Sign: false}) {
		t.Fatalf("expected IsTrue(false-signed) to negate the stored assignment")
	}

	c.SetUnit(bv, true)
	if !c.IsUnit(Lit{Var: bv}) {
		t.Fatalf("expected IsUnit true after SetUnit(true)")
	}
	units := c.UnitLiterals()
	if len(units) != 1 || units[0].Var != bv {
		t.Fatalf("UnitLiterals = %v, want one literal for bv %d", units, bv)
	}

	if c.NumBoolVars() != 1 {
		t.Fatalf("NumBoolVars = %d, want 1", c.NumBoolVars())
	}
}

func TestInMemoryAtomBinding(t *testing.T) {
	c := NewInMemory(dag.NewStore(numeric.RationalBackend{}), 1)
	bv := c.NewBoolVar()
	e := dag.ExprID(7)

	if got := c.AtomOf(bv); got != dag.ExprID(-1) {
		t.Fatalf("AtomOf before BindAtom = %d, want -1", got)
	}
	if got := c.BoolVarOf(e); got != -1 {
		t.Fatalf("BoolVarOf before BindAtom = %d, want -1", got)
	}

	c.BindAtom(bv, e)
	if got := c.AtomOf(bv); got != e {
		t.Fatalf("AtomOf = %d, want %d", got, e)
	}
	if got := c.BoolVarOf(e); got != bv {
		t.Fatalf("BoolVarOf = %d, want %d", got, bv)
	}
}

func TestInMemoryGetValueResolvesThroughStore(t *testing.T) {
	store := dag.NewStore(numeric.RationalBackend{})
	c := NewInMemory(store, 1)

	const host dag.ExprID = 3
	v, err := store.RegisterTerm(host, dag.VarRef(host, dag.Int))
	if err != nil {
		t.Fatalf("register term: %v", err)
	}
	store.Var(v).Value = store.Backend.FromInt64(5)

	if got := c.GetValue(host); got != "5" {
		t.Fatalf("GetValue = %q, want %q", got, "5")
	}
	if got := c.GetValue(dag.ExprID(999)); got != "?" {
		t.Fatalf("GetValue for unregistered handle = %q, want %q", got, "?")
	}
}

func TestInMemoryGetValueWithNilStore(t *testing.T) {
	c := NewInMemory(nil, 1)
	if got := c.GetValue(0); got != "?" {
		t.Fatalf("GetValue with nil store = %q, want %q", got, "?")
	}
}

func TestInMemoryClausesAndParents(t *testing.T) {
	c := NewInMemory(dag.NewStore(numeric.RationalBackend{}), 1)

	cl := Clause{Lits: []Lit{{Var: 0, Sign: true}}}
	idx := c.AddClause(cl)
	if idx != 0 {
		t.Fatalf("AddClause index = %d, want 0", idx)
	}
	if len(c.Clauses()) != 1 {
		t.Fatalf("Clauses() = %v, want one entry", c.Clauses())
	}
	if got := c.GetClause(0); len(got.Lits) != 1 {
		t.Fatalf("GetClause(0) = %+v, want one literal", got)
	}

	parent, child := dag.ExprID(1), dag.ExprID(2)
	c.LinkParent(parent, child)
	if subs := c.Subterms(parent); len(subs) != 1 || subs[0] != child {
		t.Fatalf("Subterms(parent) = %v, want [%d]", subs, child)
	}
	if parents := c.Parents(child); len(parents) != 1 || parents[0] != parent {
		t.Fatalf("Parents(child) = %v, want [%d]", parents, parent)
	}
}

func TestInMemoryBudgetAndUnsat(t *testing.T) {
	c := NewInMemory(dag.NewStore(numeric.RationalBackend{}), 1)

	if !c.Inc() {
		t.Fatalf("expected Inc to permit moves with no budget installed")
	}

	c.SetBudget(1)
	if !c.Inc() {
		t.Fatalf("expected first Inc within a budget of 1 to succeed")
	}
	if c.Inc() {
		t.Fatalf("expected Inc to fail once the budget is exhausted")
	}

	if c.Unsat() {
		t.Fatalf("expected Unsat false before SetUnsat")
	}
	c.SetUnsat()
	if !c.Unsat() {
		t.Fatalf("expected Unsat true after SetUnsat")
	}
}

func TestInMemoryFlipTogglesAssignment(t *testing.T) {
	c := NewInMemory(dag.NewStore(numeric.RationalBackend{}), 1)
	bv := c.NewBoolVar()

	if err := c.Flip(bv); err != nil {
		t.Fatalf("flip: %v", err)
	}
	if !c.IsTrue(Lit{Var: bv, Sign: true}) {
		t.Fatalf("expected Flip to toggle a fresh (false) bool var to true")
	}
}

func TestInMemoryRandIsDeterministicPerSeed(t *testing.T) {
	a := NewInMemory(dag.NewStore(numeric.RationalBackend{}), 42)
	b := NewInMemory(dag.NewStore(numeric.RationalBackend{}), 42)

	for i := 0; i < 5; i++ {
		if a.Rand() != b.Rand() {
			t.Fatalf("expected identical seeds to produce identical Rand() sequences")
		}
	}
}

func TestRecordingCapturesMutatingCalls(t *testing.T) {
	inner := NewInMemory(dag.NewStore(numeric.RationalBackend{}), 1)
	bv := inner.NewBoolVar()
	r := NewRecording(inner)

	if err := r.Flip(bv); err != nil {
		t.Fatalf("flip: %v", err)
	}
	r.NewValueEH(dag.ExprID(1))
	r.AddNewTerm(dag.ExprID(2))
	r.AssignEval(Lit{Var: bv, Sign: true})
	r.AssignPropagate(Lit{Var: bv, Sign: false}, 0)

	wantKinds := []string{"flip", "new_value_eh", "add_new_term", "assign_eval", "assign_propagate"}
	if len(r.Events) != len(wantKinds) {
		t.Fatalf("Events = %+v, want %d entries", r.Events, len(wantKinds))
	}
	for i, kind := range wantKinds {
		if r.Events[i].Kind != kind {
			t.Fatalf("Events[%d].Kind = %q, want %q", i, r.Events[i].Kind, kind)
		}
	}

	// AssignPropagate ran last and set bv back to false via its Sign.
	if inner.IsTrue(Lit{Var: bv, Sign: true}) {
		t.Fatalf("expected delegated AssignPropagate to reach the wrapped InMemory")
	}
}
