package numeric

import (
	"math/big"
)

// Rational is the arbitrary-precision Num backend: an exact fraction
// backed by math/big.Rat. It never overflows; the only failures it can
// return are ErrDivideByZero, ErrBadRoot, and ErrNotImplemented (Mod,
// Rem, IDiv and RootOf on non-integers, PowerOf with a negative power).
//
// A Rational is considered integral (IsInt() == true) when its reduced
// denominator is 1. The engine is responsible for only ever handing
// integral Rationals to variables whose sort is INT — Rational itself
// does not track sort.
type Rational struct {
	r *big.Rat
}

// NewRational builds a reduced num/den rational. Panics on den == 0,
// mirroring the teacher's Rational.Add-family invariant that rationals
// are always constructed normalized.
func NewRational(num, den int64) Rational {
	if den == 0 {
		panic("numeric: rational with zero denominator")
	}
	return Rational{r: big.NewRat(num, den)}
}

func ratFromBig(r *big.Rat) Rational { return Rational{r: r} }

// RationalBackend is the Backend for the Rational Num implementation.
type RationalBackend struct{}

func (RationalBackend) Name() string        { return "rational" }
func (RationalBackend) Zero() Num           { return NewRational(0, 1) }
func (RationalBackend) One() Num            { return NewRational(1, 1) }
func (RationalBackend) FromInt64(v int64) Num { return NewRational(v, 1) }
func (RationalBackend) IsIntSort() bool     { return false }

func (RationalBackend) Sqrt(d Num) (Num, error) {
	rd, ok := d.(Rational)
	if !ok || !rd.IsInt() {
		return nil, ErrBadRoot
	}
	n := rd.r.Num()
	if n.Sign() < 0 {
		return nil, ErrBadRoot
	}
	return ratFromBig(new(big.Rat).SetInt(integerSqrt(n))), nil
}

// integerSqrt computes floor(sqrt(d)) for d >= 0 using the recursive
// refinement sqrt(d) = 2*sqrt(floor(d/4)) + {0,1} from spec §4.A.
func integerSqrt(d *big.Int) *big.Int {
	if d.Sign() <= 0 {
		return big.NewInt(0)
	}
	if d.Cmp(big.NewInt(4)) < 0 {
		return big.NewInt(1)
	}
	quarter := new(big.Int).Rsh(d, 2) // floor(d/4), exact for non-negative d
	half := integerSqrt(quarter)
	cand := new(big.Int).Lsh(half, 1) // 2*sqrt(floor(d/4))
	candPlus := new(big.Int).Add(cand, big.NewInt(1))
	if new(big.Int).Mul(candPlus, candPlus).Cmp(d) <= 0 {
		return candPlus
	}
	return cand
}

func (r Rational) Add(other Num) (Num, error) {
	o := other.(Rational)
	return ratFromBig(new(big.Rat).Add(r.r, o.r)), nil
}

func (r Rational) Sub(other Num) (Num, error) {
	o := other.(Rational)
	return ratFromBig(new(big.Rat).Sub(r.r, o.r)), nil
}

func (r Rational) Mul(other Num) (Num, error) {
	o := other.(Rational)
	return ratFromBig(new(big.Rat).Mul(r.r, o.r)), nil
}

func (r Rational) Neg() Num {
	return ratFromBig(new(big.Rat).Neg(r.r))
}

func (r Rational) Quo(other Num) (Num, error) {
	o := other.(Rational)
	if o.IsZero() {
		return nil, ErrDivideByZero
	}
	return ratFromBig(new(big.Rat).Quo(r.r, o.r)), nil
}

// floorDivInt returns (q, rem) such that a = q*b + rem, 0 <= rem < |b|,
// i.e. Euclidean/floor division on big.Ints with b != 0.
func floorDivInt(a, b *big.Int) (*big.Int, *big.Int) {
	q, m := new(big.Int), new(big.Int)
	q.DivMod(a, b, m) // big.Int.DivMod is Euclidean: 0 <= m < |b|
	return q, m
}

func (r Rational) requireInt(other Rational) (*big.Int, *big.Int, bool) {
	if !r.IsInt() || !other.IsInt() {
		return nil, nil, false
	}
	return new(big.Int).Set(r.r.Num()), new(big.Int).Set(other.r.Num()), true
}

func (r Rational) Mod(other Num) (Num, error) {
	o := other.(Rational)
	if o.IsZero() {
		return nil, ErrDivideByZero
	}
	a, b, ok := r.requireInt(o)
	if !ok {
		return nil, ErrNotImplemented
	}
	_, m := floorDivInt(a, b)
	return ratFromBig(new(big.Rat).SetInt(m)), nil
}

func (r Rational) Rem(other Num) (Num, error) {
	o := other.(Rational)
	if o.IsZero() {
		return nil, ErrDivideByZero
	}
	a, b, ok := r.requireInt(o)
	if !ok {
		return nil, ErrNotImplemented
	}
	rem := new(big.Int).Rem(a, b) // truncated, sign follows dividend
	return ratFromBig(new(big.Rat).SetInt(rem)), nil
}

func (r Rational) IDiv(other Num) (Num, error) {
	o := other.(Rational)
	if o.IsZero() {
		return nil, ErrDivideByZero
	}
	a, b, ok := r.requireInt(o)
	if !ok {
		return nil, ErrNotImplemented
	}
	q, _ := floorDivInt(a, b)
	return ratFromBig(new(big.Rat).SetInt(q)), nil
}

func (r Rational) Abs() Num {
	return ratFromBig(new(big.Rat).Abs(r.r))
}

func (r Rational) PowerOf(k int) (Num, error) {
	if k < 0 {
		return nil, ErrNotImplemented
	}
	result := big.NewRat(1, 1)
	base := new(big.Rat).Set(r.r)
	for k > 0 {
		if k&1 == 1 {
			result.Mul(result, base)
		}
		base.Mul(base, base)
		k >>= 1
	}
	return ratFromBig(result), nil
}

// RootOf computes the integer k-th root by Newton iteration:
// x_{n+1} = ((k-1)*x_n + a/x_n^{k-1}) / k, halted when the sequence stops
// decreasing, per spec §4.A.
func (r Rational) RootOf(k int) (Num, error) {
	if k <= 0 {
		return nil, ErrBadRoot
	}
	if !r.IsInt() {
		return nil, ErrNotImplemented
	}
	a := new(big.Int).Set(r.r.Num())
	if a.Sign() < 0 && k%2 == 0 {
		return nil, ErrBadRoot
	}
	neg := a.Sign() < 0
	if neg {
		a.Neg(a)
	}
	if a.Sign() == 0 {
		return ratFromBig(big.NewRat(0, 1)), nil
	}
	if k == 1 {
		res := new(big.Int).Set(a)
		if neg {
			res.Neg(res)
		}
		return ratFromBig(new(big.Rat).SetInt(res)), nil
	}
	x := new(big.Int).Set(a)
	kBig := big.NewInt(int64(k))
	kMinus1 := big.NewInt(int64(k - 1))
	for {
		xPow, err := intPow(x, k-1)
		if err != nil {
			return nil, err
		}
		if xPow.Sign() == 0 {
			break
		}
		term := new(big.Int).Div(a, xPow)
		next := new(big.Int).Mul(kMinus1, x)
		next.Add(next, term)
		next.Div(next, kBig)
		if next.Cmp(x) >= 0 {
			break
		}
		x = next
	}
	// correctness re-check: nudge down while x^k > a, up while (x+1)^k <= a
	for {
		p, _ := intPow(x, k)
		if p.Cmp(a) > 0 {
			x.Sub(x, big.NewInt(1))
			continue
		}
		break
	}
	for {
		xp1 := new(big.Int).Add(x, big.NewInt(1))
		p, _ := intPow(xp1, k)
		if p.Cmp(a) <= 0 {
			x = xp1
			continue
		}
		break
	}
	if neg {
		x.Neg(x)
	}
	return ratFromBig(new(big.Rat).SetInt(x)), nil
}

func intPow(base *big.Int, k int) (*big.Int, error) {
	result := big.NewInt(1)
	b := new(big.Int).Set(base)
	for k > 0 {
		if k&1 == 1 {
			result.Mul(result, b)
		}
		b.Mul(b, b)
		k >>= 1
	}
	return result, nil
}

// Divide implements spec §4.A's "divide": real division rounds toward
// zero; for integers, ceil(a/|b|)*sign(b) — the smallest-magnitude
// result that still pushes a past zero, computed as div(a+|b|-1, b).
func (r Rational) Divide(other Num) (Num, error) {
	o := other.(Rational)
	if o.IsZero() {
		return nil, ErrDivideByZero
	}
	if !r.IsInt() || !o.IsInt() {
		return r.Quo(other)
	}
	a := new(big.Int).Set(r.r.Num())
	b := new(big.Int).Set(o.r.Num())
	absB := new(big.Int).Abs(b)
	adj := new(big.Int).Add(a, absB)
	adj.Sub(adj, big.NewInt(1))
	q, _ := floorDivInt(adj, b)
	return ratFromBig(new(big.Rat).SetInt(q)), nil
}

func (r Rational) DivideFloor(other Num) (Num, error) {
	o := other.(Rational)
	if o.IsZero() {
		return nil, ErrDivideByZero
	}
	if !r.IsInt() || !o.IsInt() {
		return r.Quo(other)
	}
	a, b, _ := r.requireInt(o)
	q, _ := floorDivInt(a, b)
	return ratFromBig(new(big.Rat).SetInt(q)), nil
}

func (r Rational) DivideCeil(other Num) (Num, error) {
	o := other.(Rational)
	if o.IsZero() {
		return nil, ErrDivideByZero
	}
	if !r.IsInt() || !o.IsInt() {
		return r.Quo(other)
	}
	a, b, _ := r.requireInt(o)
	q, m := floorDivInt(a, b)
	if m.Sign() != 0 {
		q.Add(q, big.NewInt(1))
	}
	return ratFromBig(new(big.Rat).SetInt(q)), nil
}

func (r Rational) Sign() int { return r.r.Sign() }

func (r Rational) Cmp(other Num) int {
	o := other.(Rational)
	return r.r.Cmp(o.r)
}

func (r Rational) IsZero() bool { return r.r.Sign() == 0 }

func (r Rational) IsInt() bool { return r.r.IsInt() }

func (r Rational) String() string {
	if r.IsInt() {
		return r.r.Num().String()
	}
	return r.r.RatString()
}
