package dag

import "github.com/gitrdm/arithsls/internal/numeric"

// OpID indexes into Store.Ops.
type OpID int

// NoOp is the "absent" sentinel.
const NoOp OpID = -1

// UnaryKind enumerates the dedicated unary-op node kinds (spec §6).
type UnaryKind int

const (
	OpMod UnaryKind = iota
	OpRem
	OpIDiv
	OpDiv
	OpPower
	OpAbs
	OpToInt
	OpToReal
)

func (k UnaryKind) String() string {
	switch k {
	case OpMod:
		return "mod"
	case OpRem:
		return "rem"
	case OpIDiv:
		return "idiv"
	case OpDiv:
		return "div"
	case OpPower:
		return "power"
	case OpAbs:
		return "abs"
	case OpToInt:
		return "to_int"
	case OpToReal:
		return "to_real"
	default:
		return "unknown"
	}
}

// UnaryOp is a dedicated operator node (spec §3/§6). Arg2 is NoVar for
// the strictly-unary kinds (ABS, TO_INT, TO_REAL).
type UnaryOp struct {
	ID   OpID
	Var  VarID
	Kind UnaryKind
	Arg1 VarID
	Arg2 VarID
}

// Eval computes the op's value from current child values per the
// semantics table of spec §6. Division/mod/idiv/rem by zero evaluates
// to 0 rather than erroring, per the table's footnote.
func (op UnaryOp) Eval(arg1, arg2 numeric.Num, zero numeric.Num) (numeric.Num, error) {
	switch op.Kind {
	case OpMod:
		if arg2 == nil || arg2.IsZero() {
			return zero, nil
		}
		v, err := arg1.Mod(arg2)
		if err != nil {
			return zero, nil
		}
		return v, nil
	case OpRem:
		if arg2 == nil || arg2.IsZero() {
			return zero, nil
		}
		v, err := arg1.Rem(arg2)
		if err != nil {
			return zero, nil
		}
		return v, nil
	case OpIDiv:
		if arg2 == nil || arg2.IsZero() {
			return zero, nil
		}
		v, err := arg1.IDiv(arg2)
		if err != nil {
			return zero, nil
		}
		return v, nil
	case OpDiv:
		if arg2 == nil || arg2.IsZero() {
			return zero, nil
		}
		v, err := arg1.Quo(arg2)
		if err != nil {
			return zero, nil
		}
		return v, nil
	case OpAbs:
		return arg1.Abs(), nil
	case OpPower:
		// arg2 must be a non-negative integer literal for PowerOf;
		// repair for POWER is unimplemented (spec §9) but evaluation is
		// supported so atoms containing x^k still score.
		k, ok := smallIntOf(arg2)
		if !ok || k < 0 {
			return zero, nil
		}
		v, err := arg1.PowerOf(k)
		if err != nil {
			return zero, nil
		}
		return v, nil
	case OpToInt, OpToReal:
		// identity on value; the distinction is purely about the
		// resulting variable's Sort, decided by the caller.
		return arg1, nil
	default:
		return zero, nil
	}
}

// smallIntOf extracts a small int exponent from a Num, used only for
// evaluating POWER with a literal exponent.
func smallIntOf(n numeric.Num) (int, bool) {
	if n == nil {
		return 0, false
	}
	if !n.IsInt() {
		return 0, false
	}
	switch v := n.(type) {
	case numeric.Checked64:
		return int(v.Int64()), true
	case numeric.Rational:
		s := v.String()
		var k int
		var neg bool
		for i, c := range s {
			if i == 0 && c == '-' {
				neg = true
				continue
			}
			if c < '0' || c > '9' {
				return 0, false
			}
			k = k*10 + int(c-'0')
		}
		if neg {
			k = -k
		}
		return k, true
	default:
		return 0, false
	}
}
