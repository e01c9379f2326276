package dag

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gitrdm/arithsls/internal/numeric"
)

func newTestStore() *Store {
	return NewStore(numeric.RationalBackend{})
}

func rat(n, d int64) numeric.Num { return numeric.NewRational(n, d) }

// RegisterTerm on a bare leaf should intern exactly one variable and
// return the same id on a second call for the same host handle.
func TestRegisterTermInternsLeaf(t *testing.T) {
	s := newTestStore()
	e := VarRef(1, Int)

	id1, err := s.RegisterTerm(1, e)
	require.NoError(t, err)
	id2, err := s.RegisterTerm(1, e)
	require.NoError(t, err)
	require.Equal(t, id1, id2)
	require.Len(t, s.Vars, 1)
}

// RegisterTerm on a pure numeral collapses to a constant variable with
// no Sum node and no linear args.
func TestRegisterTermConstant(t *testing.T) {
	s := newTestStore()
	e := Num(rat(7, 1))

	id, err := s.RegisterTerm(42, e)
	require.NoError(t, err)
	require.Equal(t, DefNone, s.Var(id).DefKind)
	require.Equal(t, 0, rat(7, 1).Cmp(s.ValueOf(id)))
}

// 2*(x+y) must distribute into a Sum with two args each carrying
// coefficient 2, not a Product or a nested Sum-of-Sum.
func TestAddArgsDistributesScalarOverSum(t *testing.T) {
	s := newTestStore()
	x := VarRef(1, Int)
	y := VarRef(2, Int)
	e := Mul(Num(rat(2, 1)), Add(x, y))

	lc := s.newLinComb()
	err := s.AddArgs(lc, e, s.Backend.One())
	require.NoError(t, err)

	args := lc.sortedArgs()
	require.Len(t, args, 2)
	for _, a := range args {
		require.Equal(t, 0, rat(2, 1).Cmp(a.Coeff))
	}
}

// x*y*x must merge into a single product node with x at power 2 and y
// at power 1, not three separate factors.
func TestMkProductVarMergesPowers(t *testing.T) {
	s := newTestStore()
	x := VarRef(1, Int)
	y := VarRef(2, Int)
	e := Mul(x, y, x)

	lc := s.newLinComb()
	err := s.AddArgs(lc, e, s.Backend.One())
	require.NoError(t, err)
	require.Len(t, s.Products, 1)

	mono := s.Products[0].Monomial
	require.Len(t, mono, 2)
	powers := map[VarID]int{}
	for _, m := range mono {
		powers[m.Var] = m.Power
	}
	xid := s.leafVar(1, Int)
	yid := s.leafVar(2, Int)
	require.Equal(t, 2, powers[xid])
	require.Equal(t, 1, powers[yid])
}

// Building the same monomial twice from different expression trees must
// reuse the existing Product node rather than allocate a second one.
func TestMkProductVarDedups(t *testing.T) {
	s := newTestStore()
	x := VarRef(1, Int)
	y := VarRef(2, Int)

	lc1 := s.newLinComb()
	require.NoError(t, s.AddArgs(lc1, Mul(x, y), s.Backend.One()))
	lc2 := s.newLinComb()
	require.NoError(t, s.AddArgs(lc2, Mul(y, x), s.Backend.One()))

	require.Len(t, s.Products, 1)
	require.Equal(t, lc1.sortedArgs()[0].Var, lc2.sortedArgs()[0].Var)
}

// BuildLinear returns a standalone (coeff, args) pair without installing
// a Sum node, matching atom construction's needs.
func TestBuildLinearNoSumNode(t *testing.T) {
	s := newTestStore()
	x := VarRef(1, Int)
	e := Add(Num(rat(3, 1)), Mul(Num(rat(5, 1)), x))

	coeff, args, err := s.BuildLinear(e)
	require.NoError(t, err)
	require.Equal(t, 0, rat(3, 1).Cmp(coeff))
	require.Len(t, args, 1)
	require.Equal(t, 0, rat(5, 1).Cmp(args[0].Coeff))
	require.Empty(t, s.Sums)
}

// A dedicated unary-op node (here MOD) is created once and reused on a
// repeated build of the same (kind, arg1, arg2).
func TestMkOpVarDedups(t *testing.T) {
	s := newTestStore()
	x := VarRef(1, Int)
	y := VarRef(2, Int)
	e := UnaryExpr(OpMod, x, y)

	id1, err := s.mkOpVar(OpMod, x, y, Int)
	require.NoError(t, err)
	id2, err := s.mkOpVar(OpMod, x, y, Int)
	require.NoError(t, err)
	require.Equal(t, id1, id2)
	require.Len(t, s.Ops, 1)
	_ = e
}

// Division/mod/idiv by zero evaluates to 0 rather than propagating an
// error, per the unary-op semantics table.
func TestUnaryOpDivByZeroEvaluatesToZero(t *testing.T) {
	op := UnaryOp{Kind: OpIDiv}
	v, err := op.Eval(rat(5, 1), rat(0, 1), rat(0, 1))
	require.NoError(t, err)
	require.True(t, v.IsZero())
}
