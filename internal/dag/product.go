package dag

import "github.com/gitrdm/arithsls/internal/numeric"

// ProductID indexes into Store.Products.
type ProductID int

// NoProduct is the "absent" sentinel.
const NoProduct ProductID = -1

// MonomialTerm is one (variable, power) factor of a Product, sorted by
// variable id with like variables merged (spec §3).
type MonomialTerm struct {
	Var   VarID
	Power int
}

// Product is `var.value = Π value(wⱼ)^pⱼ` (spec §3).
type Product struct {
	ID       ProductID
	Var      VarID
	Monomial []MonomialTerm
}

// Eval recomputes the product's value from current child values. one is
// the multiplicative identity of the active backend, supplied by the
// caller so this package never has to guess which Num implementation is
// in play.
func (p *Product) Eval(valueOf func(VarID) numeric.Num, one numeric.Num) (numeric.Num, error) {
	acc := one
	for _, m := range p.Monomial {
		v, err := valueOf(m.Var).PowerOf(m.Power)
		if err != nil {
			return nil, err
		}
		acc, err = acc.Mul(v)
		if err != nil {
			return nil, err
		}
	}
	return acc, nil
}

// ValueWithout computes Π value(wⱼ)^pⱼ over every factor except x,
// i.e. the product's value "with x factored out" — used by the
// linear/quadratic move proposers' is_linear/is_quadratic helpers
// (spec §4.F).
func (p *Product) ValueWithout(x VarID, valueOf func(VarID) numeric.Num, one numeric.Num) (numeric.Num, error) {
	acc := one
	for _, m := range p.Monomial {
		if m.Var == x {
			continue
		}
		v, err := valueOf(m.Var).PowerOf(m.Power)
		if err != nil {
			return nil, err
		}
		acc, err = acc.Mul(v)
		if err != nil {
			return nil, err
		}
	}
	return acc, nil
}

// PowerOf returns the power of x within this monomial, or 0 if absent.
func (p *Product) PowerOf(x VarID) int {
	for _, m := range p.Monomial {
		if m.Var == x {
			return m.Power
		}
	}
	return 0
}
