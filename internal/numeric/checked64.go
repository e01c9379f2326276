package numeric

import "math/big"

// Checked64 is the overflow-checked 64-bit integer Num backend. Every
// arithmetic operation that could exceed [math.MinInt64, math.MaxInt64]
// returns ErrOverflow instead of wrapping, so the engine can abandon a
// speculative move cleanly (spec §4.A, §7).
//
// Checked64 is always integral; there is no REAL-sort use of this backend
// (spec §9: the two backends are interchangeable instantiations of the
// same contract, but only Rational is used for REAL-sorted variables).
type Checked64 struct {
	v int64
}

const (
	maxInt64 int64 = 1<<63 - 1
	minInt64 int64 = -1 << 63
)

// NewChecked64 wraps a plain int64 value.
func NewChecked64(v int64) Checked64 { return Checked64{v: v} }

// Checked64Backend is the Backend for the Checked64 Num implementation.
type Checked64Backend struct{}

func (Checked64Backend) Name() string          { return "checked64" }
func (Checked64Backend) Zero() Num             { return NewChecked64(0) }
func (Checked64Backend) One() Num              { return NewChecked64(1) }
func (Checked64Backend) FromInt64(v int64) Num { return NewChecked64(v) }
func (Checked64Backend) IsIntSort() bool       { return true }

func (Checked64Backend) Sqrt(d Num) (Num, error) {
	cd := d.(Checked64)
	if cd.v < 0 {
		return nil, ErrBadRoot
	}
	return NewChecked64(int64(integerSqrtInt64(cd.v))), nil
}

func integerSqrtInt64(d int64) int64 {
	if d <= 0 {
		return 0
	}
	if d < 4 {
		return 1
	}
	half := integerSqrtInt64(d / 4)
	cand := half * 2
	if (cand+1)*(cand+1) <= d {
		return cand + 1
	}
	return cand
}

// bigFits checks whether a big.Int result fits in int64 and converts it,
// or reports ErrOverflow. Every Checked64 arithmetic op routes through a
// big.Int intermediate so overflow detection is exact, not a heuristic.
func bigFits(z *big.Int) (Checked64, error) {
	if !z.IsInt64() {
		return Checked64{}, ErrOverflow
	}
	return NewChecked64(z.Int64()), nil
}

func (c Checked64) Add(other Num) (Num, error) {
	o := other.(Checked64)
	z := new(big.Int).Add(big.NewInt(c.v), big.NewInt(o.v))
	return bigFits(z)
}

func (c Checked64) Sub(other Num) (Num, error) {
	o := other.(Checked64)
	z := new(big.Int).Sub(big.NewInt(c.v), big.NewInt(o.v))
	return bigFits(z)
}

func (c Checked64) Mul(other Num) (Num, error) {
	o := other.(Checked64)
	z := new(big.Int).Mul(big.NewInt(c.v), big.NewInt(o.v))
	return bigFits(z)
}

func (c Checked64) Neg() Num {
	if c.v == minInt64 {
		// overflow on negate is reported lazily by callers that add/sub
		// the result; Neg itself has no error return in the Num
		// interface, so saturate through big.Int and let the next
		// arithmetic op surface ErrOverflow if it matters.
		z := new(big.Int).Neg(big.NewInt(c.v))
		if v, err := bigFits(z); err == nil {
			return v
		}
	}
	return NewChecked64(-c.v)
}

func (c Checked64) Quo(other Num) (Num, error) {
	o := other.(Checked64)
	if o.v == 0 {
		return nil, ErrDivideByZero
	}
	if c.v == minInt64 && o.v == -1 {
		return nil, ErrOverflow
	}
	return NewChecked64(c.v / o.v), nil // truncating toward zero, Go semantics
}

func (c Checked64) Mod(other Num) (Num, error) {
	o := other.(Checked64)
	if o.v == 0 {
		return nil, ErrDivideByZero
	}
	m := c.v % o.v
	if m != 0 && (m < 0) != (o.v < 0) {
		m += o.v
	}
	return NewChecked64(m), nil
}

func (c Checked64) Rem(other Num) (Num, error) {
	o := other.(Checked64)
	if o.v == 0 {
		return nil, ErrDivideByZero
	}
	if c.v == minInt64 && o.v == -1 {
		return nil, ErrOverflow
	}
	return NewChecked64(c.v % o.v), nil
}

func (c Checked64) IDiv(other Num) (Num, error) {
	o := other.(Checked64)
	if o.v == 0 {
		return nil, ErrDivideByZero
	}
	if c.v == minInt64 && o.v == -1 {
		return nil, ErrOverflow
	}
	q := c.v / o.v
	if (c.v%o.v != 0) && ((c.v < 0) != (o.v < 0)) {
		q--
	}
	return NewChecked64(q), nil
}

func (c Checked64) Abs() Num {
	if c.v == minInt64 {
		return NewChecked64(c.v) // cannot represent |minInt64|; caller's
		// subsequent op will overflow-check, matching "dry-run detects
		// overflow" rather than panicking here.
	}
	if c.v < 0 {
		return NewChecked64(-c.v)
	}
	return c
}

func (c Checked64) PowerOf(k int) (Num, error) {
	if k < 0 {
		return nil, ErrNotImplemented
	}
	result := big.NewInt(1)
	base := big.NewInt(c.v)
	for k > 0 {
		if k&1 == 1 {
			result.Mul(result, base)
			if !result.IsInt64() && result.BitLen() > 127 {
				return nil, ErrOverflow
			}
		}
		base.Mul(base, base)
		k >>= 1
	}
	return bigFits(result)
}

// RootOf computes the integer k-th root via the same Newton iteration as
// Rational.RootOf, operating on int64 with big.Int intermediates to avoid
// overflow during the iteration itself (the *result* is still checked
// against int64 range).
func (c Checked64) RootOf(k int) (Num, error) {
	if k <= 0 {
		return nil, ErrBadRoot
	}
	a := big.NewInt(c.v)
	if a.Sign() < 0 && k%2 == 0 {
		return nil, ErrBadRoot
	}
	neg := a.Sign() < 0
	if neg {
		a.Neg(a)
	}
	if a.Sign() == 0 {
		return NewChecked64(0), nil
	}
	if k == 1 {
		res := new(big.Int).Set(a)
		if neg {
			res.Neg(res)
		}
		return bigFits(res)
	}
	x := new(big.Int).Set(a)
	kBig := big.NewInt(int64(k))
	kMinus1 := big.NewInt(int64(k - 1))
	for {
		xPow, _ := intPow(x, k-1)
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
	return bigFits(x)
}

// Divide implements spec §4.A's "divide" for integers: the
// smallest-magnitude quotient that still pushes a past zero, computed as
// div(a+|b|-1, b).
func (c Checked64) Divide(other Num) (Num, error) {
	o := other.(Checked64)
	if o.v == 0 {
		return nil, ErrDivideByZero
	}
	absB := o.v
	if absB < 0 {
		absB = -absB
	}
	a := new(big.Int).Add(big.NewInt(c.v), big.NewInt(absB))
	a.Sub(a, big.NewInt(1))
	b := big.NewInt(o.v)
	q, m := new(big.Int), new(big.Int)
	q.DivMod(a, b, m)
	return bigFits(q)
}

func (c Checked64) DivideFloor(other Num) (Num, error) {
	return c.IDiv(other)
}

func (c Checked64) DivideCeil(other Num) (Num, error) {
	o := other.(Checked64)
	if o.v == 0 {
		return nil, ErrDivideByZero
	}
	q, err := c.IDiv(other)
	if err != nil {
		return nil, err
	}
	rem, _ := c.Rem(other)
	if !rem.IsZero() {
		return q.Add(NewChecked64(1))
	}
	return q, nil
}

func (c Checked64) Sign() int {
	switch {
	case c.v > 0:
		return 1
	case c.v < 0:
		return -1
	default:
		return 0
	}
}

func (c Checked64) Cmp(other Num) int {
	o := other.(Checked64)
	switch {
	case c.v < o.v:
		return -1
	case c.v > o.v:
		return 1
	default:
		return 0
	}
}

func (c Checked64) IsZero() bool { return c.v == 0 }
func (c Checked64) IsInt() bool  { return true }

func (c Checked64) String() string {
	return big.NewInt(c.v).String()
}

// Int64 exposes the raw value for code that must interoperate with
// host-side plain integers (e.g. the DSL numeral literal parser).
func (c Checked64) Int64() int64 { return c.v }
