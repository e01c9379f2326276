package solverctx

import "github.com/gitrdm/arithsls/internal/dag"

// Event is one intercepted call to a decorated Ctx, captured by
// Recording for test assertions on engine/host interaction order.
type Event struct {
	Kind string
	Bool int
	Expr dag.ExprID
}

// Recording wraps any Ctx and appends an Event for every call that
// mutates or is mutated by the engine (flip, new_value_eh, add_new_term,
// assign_eval, assign_propagate), while delegating every read-only call
// straight through (spec §4.I).
type Recording struct {
	Ctx
	Events []Event
}

// NewRecording wraps inner in a Recording decorator.
func NewRecording(inner Ctx) *Recording {
	return &Recording{Ctx: inner}
}

func (r *Recording) Flip(bv int) error {
	r.Events = append(r.Events, Event{Kind: "flip", Bool: bv})
	return r.Ctx.Flip(bv)
}

func (r *Recording) NewValueEH(e dag.ExprID) {
	r.Events = append(r.Events, Event{Kind: "new_value_eh", Expr: e})
	r.Ctx.NewValueEH(e)
}

func (r *Recording) AddNewTerm(e dag.ExprID) {
	r.Events = append(r.Events, Event{Kind: "add_new_term", Expr: e})
	r.Ctx.AddNewTerm(e)
}

func (r *Recording) AssignEval(lit Lit) {
	r.Events = append(r.Events, Event{Kind: "assign_eval", Bool: lit.Var})
	r.Ctx.AssignEval(lit)
}

func (r *Recording) AssignPropagate(lit Lit, clause int) {
	r.Events = append(r.Events, Event{Kind: "assign_propagate", Bool: lit.Var})
	r.Ctx.AssignPropagate(lit, clause)
}
