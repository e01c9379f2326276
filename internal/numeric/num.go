// Package numeric abstracts the two arithmetic backends the engine can run
// over: arbitrary-precision rationals and overflow-checked 64-bit integers.
// Both satisfy Num with identical contracts so the rest of the engine never
// has to know which backend it is wired to.
package numeric

import "errors"

// ErrOverflow signals that an operation could not be represented in the
// current backend. Callers must treat it as "move not applicable", never
// propagate it to the owning SMT context.
var ErrOverflow = errors.New("numeric: overflow")

// ErrDivideByZero signals division or modulo by zero. Unary-op evaluation
// catches this and substitutes the value zero per the spec's op table;
// anywhere else it is a programmer error to divide by a literal zero
// divisor without checking first.
var ErrDivideByZero = errors.New("numeric: division by zero")

// ErrBadRoot signals an n-th root request with a non-positive degree or a
// negative radicand under an even root.
var ErrBadRoot = errors.New("numeric: invalid root")

// ErrNotImplemented signals a genuinely unimplemented operation on this
// backend (unary POWER/TO_INT/TO_REAL repair direction, per spec). Fatal in
// developer builds, never silently swallowed.
var ErrNotImplemented = errors.New("numeric: not implemented")

// Num is signed arithmetic abstracted over a concrete representation.
// Implementations: Rational (exact, never overflows) and Checked64
// (overflow-checked int64).
//
// Every arithmetic method returns an error only for ErrOverflow,
// ErrDivideByZero, ErrBadRoot or ErrNotImplemented; Rational never
// returns ErrOverflow.
type Num interface {
	Add(other Num) (Num, error)
	Sub(other Num) (Num, error)
	Mul(other Num) (Num, error)
	Neg() Num

	// Quo is the DIV unary op's division: exact on Rational, truncating
	// toward zero on Checked64.
	Quo(other Num) (Num, error)
	// Mod is integer floor-mod; Rational returns ErrNotImplemented when
	// either operand is not an integer.
	Mod(other Num) (Num, error)
	// Rem is target-language remainder (sign follows dividend).
	Rem(other Num) (Num, error)
	// IDiv is integer floor division.
	IDiv(other Num) (Num, error)

	Abs() Num

	// PowerOf raises the receiver to a non-negative integer power via
	// binary exponentiation.
	PowerOf(k int) (Num, error)
	// RootOf returns the integer k-th root of the receiver (k >= 1),
	// via Newton iteration, satisfying root^k <= a < (root+1)^k for a>=0.
	RootOf(k int) (Num, error)

	// Divide implements spec §4.A's "divide": rounds toward zero for
	// reals; for integers returns the smallest-magnitude value that still
	// pushes a past zero, i.e. ceil(a/|b|)*sign(b).
	Divide(other Num) (Num, error)
	// DivideFloor/DivideCeil are signed integer floor/ceil division
	// (plain division on reals).
	DivideFloor(other Num) (Num, error)
	DivideCeil(other Num) (Num, error)

	Sign() int
	Cmp(other Num) int
	IsZero() bool
	IsInt() bool

	String() string
}

// Backend constructs Num values of one concrete representation and knows
// how to compute an integer square root in that representation (used by
// the quadratic move proposer).
type Backend interface {
	// Name identifies the backend ("rational" or "checked64").
	Name() string
	// Zero, One return the additive/multiplicative identities.
	Zero() Num
	One() Num
	// FromInt64 lifts a host integer literal into this backend.
	FromInt64(v int64) Num
	// IsIntSort reports whether values from this backend should be
	// treated as the INT sort (true) or REAL sort (false) by default;
	// the engine overrides this per-variable via Variable.IsInt, this is
	// only the backend's natural default for freshly-created literals.
	IsIntSort() bool
	// Sqrt returns floor(sqrt(d)) for d >= 0 using the recursive
	// refinement sqrt(d) = 2*sqrt(floor(d/4)) + {0,1} from spec §4.A.
	Sqrt(d Num) (Num, error)
}
