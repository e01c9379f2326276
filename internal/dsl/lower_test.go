package dsl

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gitrdm/arithsls/internal/atom"
	"github.com/gitrdm/arithsls/internal/dag"
	"github.com/gitrdm/arithsls/internal/numeric"
	"github.com/gitrdm/arithsls/internal/solverctx"
)

func lowerSource(t *testing.T, src string) (*dag.Store, *atom.Store, *solverctx.InMemory) {
	t.Helper()
	store := dag.NewStore(numeric.RationalBackend{})
	atoms := atom.NewStore(store)
	host := solverctx.NewInMemory(store, 1)

	prog, err := ParseString("t.sls", src)
	require.NoError(t, err)
	_, err = Lower(prog, store, atoms, host)
	require.NoError(t, err)
	return store, atoms, host
}

func TestLowerDeclaresLeaves(t *testing.T) {
	store, _, _ := lowerSource(t, "int x, y; real z;")
	require.Len(t, store.Vars, 3)
	require.Equal(t, dag.Int, store.Var(0).Sort)
	require.Equal(t, dag.Int, store.Var(1).Sort)
	require.Equal(t, dag.Real, store.Var(2).Sort)
}

func TestLowerAssertBindsAtomAndAssignment(t *testing.T) {
	_, atoms, host := lowerSource(t, "int x, y; assert (x + y <= 0);")
	require.Len(t, atoms.Atoms, 1)
	require.Equal(t, 1, host.NumBoolVars())

	asserted := host.InputAssertions()
	require.Len(t, asserted, 1)

	bv := host.BoolVarOf(asserted[0])
	require.Equal(t, 0, bv)
	require.True(t, host.IsTrue(solverctx.Lit{Var: bv, Sign: true}))
	require.True(t, host.IsUnit(solverctx.Lit{Var: bv, Sign: true}))
}

func TestLowerNegatedAssertFlipsAssignment(t *testing.T) {
	_, _, host := lowerSource(t, "int x, y; assert not (x = y);")
	asserted := host.InputAssertions()
	bv := host.BoolVarOf(asserted[0])
	require.False(t, host.IsTrue(solverctx.Lit{Var: bv, Sign: true}))
}

func TestLowerGreaterEqualSwapsOperands(t *testing.T) {
	_, atoms, _ := lowerSource(t, "int x, y; assert (x * y >= 10);")
	require.Len(t, atoms.Atoms, 1)
	require.Equal(t, atom.LE, atoms.Atoms[0].Op)
}

func TestLowerReturnsDeclaredNames(t *testing.T) {
	store := dag.NewStore(numeric.RationalBackend{})
	atoms := atom.NewStore(store)
	host := solverctx.NewInMemory(store, 1)

	prog, err := ParseString("t.sls", "int x; real y; assert (x <= 0);")
	require.NoError(t, err)
	names, err := Lower(prog, store, atoms, host)
	require.NoError(t, err)
	require.Len(t, names, 2)

	xv, ok := names["x"]
	require.True(t, ok)
	require.Equal(t, dag.Int, store.Var(xv).Sort)

	yv, ok := names["y"]
	require.True(t, ok)
	require.Equal(t, dag.Real, store.Var(yv).Sort)
}

func TestLowerRejectsUndeclaredIdentifier(t *testing.T) {
	store := dag.NewStore(numeric.RationalBackend{})
	atoms := atom.NewStore(store)
	host := solverctx.NewInMemory(store, 1)
	prog, err := ParseString("t.sls", "assert (x <= 0);")
	require.NoError(t, err)
	_, err = Lower(prog, store, atoms, host)
	require.Error(t, err)
}
