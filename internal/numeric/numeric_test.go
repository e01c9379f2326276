package numeric

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRationalArithmetic(t *testing.T) {
	a := NewRational(3, 1)
	b := NewRational(2, 1)

	sum, err := a.Add(b)
	require.NoError(t, err)
	require.Equal(t, "5", sum.String())

	diff, err := a.Sub(b)
	require.NoError(t, err)
	require.Equal(t, "1", diff.String())

	prod, err := a.Mul(b)
	require.NoError(t, err)
	require.Equal(t, "6", prod.String())

	half := NewRational(1, 2)
	third := NewRational(1, 3)
	s, err := half.Add(third)
	require.NoError(t, err)
	require.Equal(t, "5/6", s.String())
}

func TestRationalDivideByZero(t *testing.T) {
	a := NewRational(1, 1)
	zero := NewRational(0, 1)
	_, err := a.Quo(zero)
	require.ErrorIs(t, err, ErrDivideByZero)
	_, err = a.Mod(zero)
	require.ErrorIs(t, err, ErrDivideByZero)
}

func TestDivideFloorCeilInteger(t *testing.T) {
	// spec §8: divide_floor(v,a,b)*b <= a < (divide_floor(v,a,b)+1)*b
	cases := []struct{ a, b int64 }{
		{7, 2}, {-7, 2}, {7, -2}, {-7, -2}, {6, 3}, {0, 5},
	}
	for _, c := range cases {
		a := NewRational(c.a, 1)
		b := NewRational(c.b, 1)
		qv, err := a.DivideFloor(b)
		require.NoError(t, err)
		q := qv.(Rational)
		lhs, _ := q.Mul(b)
		rhs, _ := q.Add(NewRational(1, 1))
		rhsVal, _ := rhs.Mul(b)
		require.True(t, lhs.Cmp(a) <= 0, "floor*b <= a: %v*%v vs %v", q, b, a)
		if c.b > 0 {
			require.True(t, a.Cmp(rhsVal) < 0, "a < (floor+1)*b")
		} else {
			require.True(t, a.Cmp(rhsVal) > 0, "a > (floor+1)*b when b<0")
		}
	}
}

func TestRootOfExact(t *testing.T) {
	// spec §8: root_of(k,a)^k <= a < (root_of(k,a)+1)^k for a >= 0, k >= 1.
	for _, tc := range []struct{ a int64; k int }{
		{0, 2}, {1, 2}, {4, 2}, {8, 3}, {26, 3}, {1000, 3}, {2, 2},
	} {
		r := NewRational(tc.a, 1)
		root, err := r.RootOf(tc.k)
		require.NoError(t, err)
		rootPow, err := root.PowerOf(tc.k)
		require.NoError(t, err)
		require.True(t, rootPow.Cmp(r) <= 0, "root^k <= a")
		nextRoot, _ := root.Add(NewRational(1, 1))
		nextPow, _ := nextRoot.PowerOf(tc.k)
		require.True(t, r.Cmp(nextPow) < 0, "a < (root+1)^k")
	}
}

func TestIntegerSqrtMatchesMath(t *testing.T) {
	for d := int64(0); d < 2000; d++ {
		got := integerSqrtInt64(d)
		require.True(t, got*got <= d, "got^2 <= d for d=%d got=%d", d, got)
		require.True(t, (got+1)*(got+1) > d, "(got+1)^2 > d for d=%d got=%d", d, got)
	}
}

func TestChecked64Overflow(t *testing.T) {
	big1 := NewChecked64(math.MaxInt64)
	one := NewChecked64(1)
	_, err := big1.Add(one)
	require.ErrorIs(t, err, ErrOverflow)

	_, err = big1.Mul(NewChecked64(2))
	require.ErrorIs(t, err, ErrOverflow)
}

func TestChecked64DivideSemantics(t *testing.T) {
	a := NewChecked64(7)
	b := NewChecked64(2)
	q, err := a.IDiv(b)
	require.NoError(t, err)
	require.Equal(t, "3", q.String())

	negA := NewChecked64(-7)
	q2, err := negA.IDiv(b)
	require.NoError(t, err)
	require.Equal(t, "-4", q2.String()) // floor(-3.5) = -4
}

func TestChecked64Divide(t *testing.T) {
	// divide(v,a,b) = ceil(a/|b|)*sign(b) per spec.
	a := NewChecked64(7)
	b := NewChecked64(2)
	d, err := a.Divide(b)
	require.NoError(t, err)
	require.Equal(t, "4", d.String()) // ceil(7/2) = 4

	d2, err := a.Divide(NewChecked64(-2))
	require.NoError(t, err)
	require.Equal(t, "-4", d2.String())
}
