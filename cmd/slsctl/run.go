package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/gitrdm/arithsls/internal/config"
	"github.com/gitrdm/arithsls/internal/dag"
	"github.com/gitrdm/arithsls/internal/dsl"
	"github.com/gitrdm/arithsls/internal/engine"
	"github.com/gitrdm/arithsls/internal/solverctx"
)

// solveResult is what a solveFile run hands back to whichever
// subcommand invoked it (solve, or watch's re-solve loop).
type solveResult struct {
	eng   *engine.Engine
	host  *solverctx.InMemory
	names map[string]dag.VarID
	sat   bool
}

// solveFile reads path as a .sls assertion file, lowers it onto a
// fresh engine built from p, runs bound/domain initialisation, then
// global_search to maxMoves (or p.MaxMovesBase when maxMoves <= 0).
func solveFile(path string, p config.Params, maxMoves int) (*solveResult, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("slsctl: read %s: %w", path, err)
	}

	prog, err := dsl.ParseString(path, string(source))
	if err != nil {
		return nil, fmt.Errorf("slsctl: parse %s: %w", path, err)
	}

	store := dag.NewStore(engine.BackendFor(p))
	host := solverctx.NewInMemory(store, p.Seed)
	eng := engine.NewWithStore(p, store, host)

	names, err := dsl.Lower(prog, eng.Store, eng.Atoms, host)
	if err != nil {
		return nil, fmt.Errorf("slsctl: lower %s: %w", path, err)
	}

	if err := eng.Initialize(); err != nil {
		return nil, fmt.Errorf("slsctl: initialize: %w", err)
	}

	budget := maxMoves
	if budget <= 0 {
		budget = p.MaxMovesBase
	}
	sat, err := eng.GlobalSearch(budget)
	if err != nil {
		return &solveResult{eng: eng, host: host, names: names}, fmt.Errorf("slsctl: search: %w", err)
	}
	return &solveResult{eng: eng, host: host, names: names, sat: sat}, nil
}

// sortedNames returns r's declared variable names in lexical order, for
// deterministic CLI output.
func (r *solveResult) sortedNames() []string {
	out := make([]string, 0, len(r.names))
	for name := range r.names {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// valueOf returns name's current value as a decimal string.
func (r *solveResult) valueOf(name string) string {
	v := r.names[name]
	return r.eng.Store.Var(v).Value.String()
}
