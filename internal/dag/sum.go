package dag

import "github.com/gitrdm/arithsls/internal/numeric"

// SumID indexes into Store.Sums.
type SumID int

// NoSum is the "absent" sentinel.
const NoSum SumID = -1

// SumArg is one (coefficient, variable) term of a Sum.
type SumArg struct {
	Coeff numeric.Num
	Var   VarID
}

// Sum is `var.value = coeff + Σ cᵢ·value(argᵢ)` with args sorted by
// variable id and duplicates folded (spec §3).
type Sum struct {
	ID    SumID
	Var   VarID
	Coeff numeric.Num
	Args  []SumArg
}

// Eval recomputes the sum's value from current child values.
func (s *Sum) Eval(valueOf func(VarID) numeric.Num) (numeric.Num, error) {
	total := s.Coeff
	for _, a := range s.Args {
		term, err := a.Coeff.Mul(valueOf(a.Var))
		if err != nil {
			return nil, err
		}
		total, err = total.Add(term)
		if err != nil {
			return nil, err
		}
	}
	return total, nil
}
