package solverctx

import (
	"math/rand/v2"

	"github.com/gitrdm/arithsls/internal/dag"
)

// InMemory is a self-contained reference Ctx: every Boolean variable,
// clause, and unit-literal set lives in plain slices/maps owned by this
// struct. It is the host used by the DSL runner and by tests — never a
// production SMT integration, which would instead adapt its own solver
// state behind the same interface.
type InMemory struct {
	store *dag.Store

	boolAtom map[int]dag.ExprID
	atomBool map[dag.ExprID]int
	assign   map[int]bool

	clauses []Clause
	unit    map[int]bool

	asserted []dag.ExprID
	parents  map[dag.ExprID][]dag.ExprID
	subterms map[dag.ExprID][]dag.ExprID

	rng    *rand.Rand
	budget int
	unsat  bool

	nextBoolVar int
}

// NewInMemory builds an empty reference context over store, with an RNG
// seeded explicitly from seed — never the global math/rand state, so
// runs are reproducible given the same seed (spec §6: ctx.rand()).
func NewInMemory(store *dag.Store, seed uint64) *InMemory {
	return &InMemory{
		store:    store,
		boolAtom: make(map[int]dag.ExprID),
		atomBool: make(map[dag.ExprID]int),
		assign:   make(map[int]bool),
		unit:     make(map[int]bool),
		parents:  make(map[dag.ExprID][]dag.ExprID),
		subterms: make(map[dag.ExprID][]dag.ExprID),
		rng:      rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		budget:   -1, // -1 = unbounded; SetBudget installs a finite cap
	}
}

// SetBudget installs a finite move budget; Inc() returns false once
// exhausted (spec §5: "timeouts ... by decrementing max_moves").
func (c *InMemory) SetBudget(n int) { c.budget = n }

// NewBoolVar allocates a fresh Boolean variable id with no assignment.
func (c *InMemory) NewBoolVar() int {
	bv := c.nextBoolVar
	c.nextBoolVar++
	c.assign[bv] = false
	return bv
}

// BindAtom associates bv with the arithmetic atom expression e.
func (c *InMemory) BindAtom(bv int, e dag.ExprID) {
	c.boolAtom[bv] = e
	c.atomBool[e] = bv
}

// Assert records e as a top-level input assertion.
func (c *InMemory) Assert(e dag.ExprID) { c.asserted = append(c.asserted, e) }

// SetAssignment sets bv's current Boolean value.
func (c *InMemory) SetAssignment(bv int, v bool) { c.assign[bv] = v }

// SetUnit marks bv as currently a unit literal.
func (c *InMemory) SetUnit(bv int, unit bool) { c.unit[bv] = unit }

// AddClause appends a clause and returns its index.
func (c *InMemory) AddClause(cl Clause) int {
	c.clauses = append(c.clauses, cl)
	return len(c.clauses) - 1
}

// LinkParent records that child is a direct subterm of parent.
func (c *InMemory) LinkParent(parent, child dag.ExprID) {
	c.parents[child] = append(c.parents[child], parent)
	c.subterms[parent] = append(c.subterms[parent], child)
}

// SetUnsat flags that unsatisfiability was detected independent of the
// engine (e.g. by Boolean propagation alone).
func (c *InMemory) SetUnsat() { c.unsat = true }

func (c *InMemory) AtomOf(bv int) dag.ExprID {
	if e, ok := c.boolAtom[bv]; ok {
		return e
	}
	return dag.ExprID(-1)
}

func (c *InMemory) BoolVarOf(e dag.ExprID) int {
	if bv, ok := c.atomBool[e]; ok {
		return bv
	}
	return -1
}

func (c *InMemory) IsTrue(lit Lit) bool {
	v := c.assign[lit.Var]
	if lit.Sign {
		return v
	}
	return !v
}

// GetValue resolves e to its interned variable through the store this
// context was built over and returns that variable's current value.
// Expression handles this context never interned (or a nil store)
// yield "?" rather than a panic, since GetValue is advisory output, not
// something the engine's correctness depends on.
func (c *InMemory) GetValue(e dag.ExprID) string {
	if c.store == nil {
		return "?"
	}
	v, ok := c.store.ExprMap[e]
	if !ok {
		return "?"
	}
	return c.store.Var(v).Value.String()
}

func (c *InMemory) IsUnit(lit Lit) bool { return c.unit[lit.Var] }

func (c *InMemory) UnitLiterals() []Lit {
	var out []Lit
	for bv, u := range c.unit {
		if u {
			out = append(out, Lit{Var: bv, Sign: c.assign[bv]})
		}
	}
	return out
}

func (c *InMemory) InputAssertions() []dag.ExprID { return c.asserted }

func (c *InMemory) Subterms(e dag.ExprID) []dag.ExprID { return c.subterms[e] }

func (c *InMemory) Parents(e dag.ExprID) []dag.ExprID { return c.parents[e] }

func (c *InMemory) Clauses() []int {
	out := make([]int, len(c.clauses))
	for i := range c.clauses {
		out[i] = i
	}
	return out
}

func (c *InMemory) GetClause(i int) Clause { return c.clauses[i] }

func (c *InMemory) Unsat() bool { return c.unsat }

func (c *InMemory) NumBoolVars() int { return c.nextBoolVar }

func (c *InMemory) Rand() float64 { return c.rng.Float64() }

func (c *InMemory) Inc() bool {
	if c.budget < 0 {
		return true
	}
	if c.budget == 0 {
		return false
	}
	c.budget--
	return true
}

func (c *InMemory) NewValueEH(e dag.ExprID) {}

func (c *InMemory) Flip(bv int) error {
	c.assign[bv] = !c.assign[bv]
	return nil
}

func (c *InMemory) AddNewTerm(e dag.ExprID) {}

func (c *InMemory) AssignEval(lit Lit) { c.assign[lit.Var] = lit.Sign }

func (c *InMemory) AssignPropagate(lit Lit, clause int) { c.assign[lit.Var] = lit.Sign }
