package dag

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gitrdm/arithsls/internal/numeric"
)

// Store is the arena owning every Variable, Sum, Product, and UnaryOp
// node for one engine instance (spec §3: "Global mutable state"). Every
// cross-reference is an int index into one of its slices; nothing here
// is ever destroyed (spec §3: "Never destroyed").
type Store struct {
	Backend numeric.Backend

	Vars     []Variable
	Sums     []Sum
	Products []Product
	Ops      []UnaryOp

	// ExprMap interns host expression handles to variable ids so a
	// repeated RegisterTerm call on the same host subterm returns the
	// same Variable (spec §3: "created lazily on register_term").
	ExprMap map[ExprID]VarID

	// productSig deduplicates product nodes by their sorted monomial
	// signature, so "a product node is allocated only if none already
	// exists for that variable" (spec §4.B).
	productSig map[string]VarID

	// opSig deduplicates unary-op nodes by (kind, arg1, arg2), mirroring
	// the product-node dedup above.
	opSig map[string]VarID
}

// NewStore creates an empty arena over the given numeric backend.
func NewStore(backend numeric.Backend) *Store {
	return &Store{
		Backend:    backend,
		ExprMap:    make(map[ExprID]VarID),
		productSig: make(map[string]VarID),
		opSig:      make(map[string]VarID),
	}
}

// ValueOf returns the current value of a variable; it is the function
// every Eval/ValueWithout call in this package is threaded through.
func (s *Store) ValueOf(id VarID) numeric.Num {
	return s.Vars[id].Value
}

// Var returns a pointer to the variable at id for in-place mutation.
func (s *Store) Var(id VarID) *Variable { return &s.Vars[id] }

func (s *Store) Sum(id SumID) *Sum { return &s.Sums[id] }

func (s *Store) Product(id ProductID) *Product { return &s.Products[id] }

func (s *Store) Op(id OpID) *UnaryOp { return &s.Ops[id] }

// mkVar allocates a fresh variable with no definition and the given
// initial value/sort; this is spec's mk_var.
func (s *Store) mkVar(vsort Sort, value numeric.Num) VarID {
	id := VarID(len(s.Vars))
	s.Vars = append(s.Vars, Variable{
		ID:       id,
		Sort:     vsort,
		Value:    value,
		Best:     value,
		DefKind:  DefNone,
		DefIndex: -1,
	})
	return id
}

// MkFreshVar allocates a variable with no host binding and no
// definition — used for value slots the engine itself needs (e.g. a
// lookahead scratch variable).
func (s *Store) MkFreshVar(vsort Sort, value numeric.Num) VarID {
	return s.mkVar(vsort, value)
}

// leafVar resolves (or creates, on first sighting) the Variable for a
// host expression handle.
func (s *Store) leafVar(host ExprID, vsort Sort) VarID {
	if id, ok := s.ExprMap[host]; ok {
		return id
	}
	id := s.mkVar(vsort, s.Backend.Zero())
	s.ExprMap[host] = id
	return id
}

// linComb accumulates a coeff + Σ cᵢ·varᵢ linear combination while
// walking an Expr tree — the working state behind add_args (spec §4.B).
type linComb struct {
	coeff numeric.Num
	terms map[VarID]numeric.Num
	order []VarID // first-seen order, for deterministic iteration before final sort
}

func (s *Store) newLinComb() *linComb {
	return &linComb{coeff: s.Backend.Zero(), terms: make(map[VarID]numeric.Num)}
}

func (lc *linComb) addConst(c numeric.Num) error {
	v, err := lc.coeff.Add(c)
	if err != nil {
		return err
	}
	lc.coeff = v
	return nil
}

func (lc *linComb) addVarCoeff(v VarID, c numeric.Num) error {
	if cur, ok := lc.terms[v]; ok {
		next, err := cur.Add(c)
		if err != nil {
			return err
		}
		lc.terms[v] = next
		return nil
	}
	lc.terms[v] = c
	lc.order = append(lc.order, v)
	return nil
}

// sortedArgs returns the linear combination's terms sorted by variable
// id with any coefficient that has folded to zero dropped, matching
// spec §3's Sum invariant ("args sorted by variable id, duplicates
// folded").
func (lc *linComb) sortedArgs() []SumArg {
	ids := append([]VarID(nil), lc.order...)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	args := make([]SumArg, 0, len(ids))
	for _, id := range ids {
		c := lc.terms[id]
		if c.IsZero() {
			continue
		}
		args = append(args, SumArg{Coeff: c, Var: id})
	}
	return args
}

// AddArgs walks e once, distributing coeff, flattening +/-, folding
// numeral products, and rewriting c·(a+b) into c·a+c·b, accumulating
// into lc. This is spec §4.B's add_args.
func (s *Store) AddArgs(lc *linComb, e *Expr, coeff numeric.Num) error {
	switch e.Kind {
	case EKNum:
		c, err := coeff.Mul(e.Lit)
		if err != nil {
			return err
		}
		return lc.addConst(c)

	case EKVar:
		v := s.leafVar(e.Host, e.Sort)
		return lc.addVarCoeff(v, coeff)

	case EKNeg:
		negCoeff := coeff.Neg()
		return s.AddArgs(lc, e.Children[0], negCoeff)

	case EKAdd:
		for _, child := range e.Children {
			if err := s.AddArgs(lc, child, coeff); err != nil {
				return err
			}
		}
		return nil

	case EKMul:
		numericFactor, nonNumeric, err := s.flattenMul(e, coeff)
		if err != nil {
			return err
		}
		switch len(nonNumeric) {
		case 0:
			return lc.addConst(numericFactor)
		case 1:
			// c·(a+b) is handled here: recursing into AddArgs on an
			// EKAdd child distributes the scalar over its children.
			return s.AddArgs(lc, nonNumeric[0], numericFactor)
		default:
			v, err := s.mkProductVar(nonNumeric, e.sortHint())
			if err != nil {
				return err
			}
			return lc.addVarCoeff(v, numericFactor)
		}

	case EKUnary:
		v, err := s.mkOpVar(e.UnaryOp, e.Arg1, e.Arg2, e.sortHint())
		if err != nil {
			return err
		}
		return lc.addVarCoeff(v, coeff)

	default:
		return fmt.Errorf("dag: unknown expr kind %d", e.Kind)
	}
}

// sortHint picks a Sort for a freshly-interned compound subterm: REAL if
// any visible leaf says REAL, else INT. It is a shallow heuristic (the
// real host supplies an authoritative sort via its own AST in a full
// integration); this repo's DSL always annotates leaves explicitly so
// the heuristic only matters for anonymous intermediate nodes.
func (e *Expr) sortHint() Sort {
	switch e.Kind {
	case EKVar:
		return e.Sort
	case EKUnary:
		if e.Arg1 != nil && e.Arg1.sortHint() == Real {
			return Real
		}
		if e.Arg2 != nil && e.Arg2.sortHint() == Real {
			return Real
		}
		return Int
	default:
		for _, c := range e.Children {
			if c.sortHint() == Real {
				return Real
			}
		}
		return Int
	}
}

// flattenMul descends through nested EKMul/EKNeg nodes, folding every
// EKNum literal it finds into a running scalar and collecting the
// remaining non-numeric factors (spec §4.B: "folding products of
// numerals").
func (s *Store) flattenMul(e *Expr, coeff numeric.Num) (numeric.Num, []*Expr, error) {
	scalar := coeff
	var factors []*Expr
	var walk func(n *Expr, sign numeric.Num) error
	walk = func(n *Expr, sign numeric.Num) error {
		switch n.Kind {
		case EKNum:
			v, err := sign.Mul(n.Lit)
			if err != nil {
				return err
			}
			scalar, err = scalar.Mul(v)
			return err
		case EKMul:
			for _, c := range n.Children {
				if err := walk(c, sign); err != nil {
					return err
				}
				sign = s.Backend.One()
			}
			return nil
		case EKNeg:
			negSign := sign.Neg()
			return walk(n.Children[0], negSign)
		default:
			if !sign.IsZero() && sign.Cmp(s.Backend.One()) != 0 {
				// fold a literal sign/scalar picked up from an EKNeg
				// wrapper directly into the running scalar instead of
				// threading it through as a pseudo-factor.
				v, err := scalar.Mul(sign)
				if err != nil {
					return err
				}
				scalar = v
			}
			factors = append(factors, n)
			return nil
		}
	}
	if err := walk(e, s.Backend.One()); err != nil {
		return nil, nil, err
	}
	return scalar, factors, nil
}

// resolveFactor materializes a monomial factor expression into a plain
// VarID: a leaf resolves directly, anything compound is folded through
// AddArgs into its own fresh Sum variable first.
func (s *Store) resolveFactor(e *Expr) (VarID, error) {
	if e.Kind == EKVar {
		return s.leafVar(e.Host, e.Sort), nil
	}
	if e.Kind == EKUnary {
		return s.mkOpVar(e.UnaryOp, e.Arg1, e.Arg2, e.sortHint())
	}
	lc := s.newLinComb()
	if err := s.AddArgs(lc, e, s.Backend.One()); err != nil {
		return 0, err
	}
	return s.materializeSum(lc, e.sortHint())
}

// materializeSum allocates a new Sum-defined variable from a finished
// linear combination and installs its occurrence back-references.
func (s *Store) materializeSum(lc *linComb, vsort Sort) (VarID, error) {
	args := lc.sortedArgs()
	val, err := evalSumArgs(lc.coeff, args, s.ValueOf)
	if err != nil {
		return 0, err
	}
	id := s.mkVar(vsort, val)
	sumID := SumID(len(s.Sums))
	s.Sums = append(s.Sums, Sum{ID: sumID, Var: id, Coeff: lc.coeff, Args: args})
	s.Vars[id].DefKind = DefSum
	s.Vars[id].DefIndex = int(sumID)
	for _, a := range args {
		s.Vars[a.Var].Adds = append(s.Vars[a.Var].Adds, sumID)
	}
	return id, nil
}

func evalSumArgs(coeff numeric.Num, args []SumArg, valueOf func(VarID) numeric.Num) (numeric.Num, error) {
	total := coeff
	for _, a := range args {
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

// mkProductVar resolves each factor, sorts by variable id merging
// repeated factors' powers, and finds-or-creates a Product node for
// that monomial signature (spec §4.B).
func (s *Store) mkProductVar(factors []*Expr, vsort Sort) (VarID, error) {
	powers := make(map[VarID]int)
	var order []VarID
	for _, f := range factors {
		v, err := s.resolveFactor(f)
		if err != nil {
			return 0, err
		}
		if _, ok := powers[v]; !ok {
			order = append(order, v)
		}
		powers[v]++
	}
	sort_ := append([]VarID(nil), order...)
	sort.Slice(sort_, func(i, j int) bool { return sort_[i] < sort_[j] })
	monomial := make([]MonomialTerm, 0, len(sort_))
	for _, v := range sort_ {
		monomial = append(monomial, MonomialTerm{Var: v, Power: powers[v]})
	}
	sig := monomialSignature(monomial)
	if existing, ok := s.productSig[sig]; ok {
		return existing, nil
	}
	val, err := evalMonomial(monomial, s.ValueOf, s.Backend.One())
	if err != nil {
		return 0, err
	}
	id := s.mkVar(vsort, val)
	pid := ProductID(len(s.Products))
	s.Products = append(s.Products, Product{ID: pid, Var: id, Monomial: monomial})
	s.Vars[id].DefKind = DefProduct
	s.Vars[id].DefIndex = int(pid)
	for _, m := range monomial {
		s.Vars[m.Var].Muls = append(s.Vars[m.Var].Muls, pid)
	}
	s.productSig[sig] = id
	return id, nil
}

func evalMonomial(m []MonomialTerm, valueOf func(VarID) numeric.Num, one numeric.Num) (numeric.Num, error) {
	acc := one
	for _, t := range m {
		v, err := valueOf(t.Var).PowerOf(t.Power)
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

func monomialSignature(m []MonomialTerm) string {
	var b strings.Builder
	for _, t := range m {
		fmt.Fprintf(&b, "%d^%d;", t.Var, t.Power)
	}
	return b.String()
}

// mkOpVar resolves both operands and either reuses an existing unary-op
// node with the same (kind, arg1, arg2) or allocates a new one,
// computing its initial value per the semantics table (spec §6),
// treating division-by-zero as evaluating to 0.
func (s *Store) mkOpVar(kind UnaryKind, a1, a2 *Expr, vsort Sort) (VarID, error) {
	v1, err := s.resolveFactor(a1)
	if err != nil {
		return 0, err
	}
	var v2 VarID = NoVar
	if a2 != nil {
		v2, err = s.resolveFactor(a2)
		if err != nil {
			return 0, err
		}
	}
	sig := fmt.Sprintf("%d:%d:%d", kind, v1, v2)
	if existing, ok := s.opSig[sig]; ok {
		return existing, nil
	}
	arg2Val := numeric.Num(nil)
	if v2 != NoVar {
		arg2Val = s.ValueOf(v2)
	}
	op := UnaryOp{Kind: kind, Arg1: v1, Arg2: v2}
	val, err := op.Eval(s.ValueOf(v1), arg2Val, s.Backend.Zero())
	if err != nil {
		return 0, err
	}
	resultSort := vsort
	if kind == OpToReal {
		resultSort = Real
	} else if kind == OpToInt {
		resultSort = Int
	}
	id := s.mkVar(resultSort, val)
	opID := OpID(len(s.Ops))
	op.ID = opID
	op.Var = id
	s.Ops = append(s.Ops, op)
	s.Vars[id].DefKind = DefUnary
	s.Vars[id].DefIndex = int(opID)
	s.opSig[sig] = id
	return id, nil
}

// RegisterTerm is the host-facing entry point: interns e as the
// Variable for host (spec §6: register_term). Repeated calls for the
// same host handle return the same variable without rebuilding it.
func (s *Store) RegisterTerm(host ExprID, e *Expr) (VarID, error) {
	if id, ok := s.ExprMap[host]; ok {
		return id, nil
	}
	lc := s.newLinComb()
	if err := s.AddArgs(lc, e, s.Backend.One()); err != nil {
		return 0, err
	}
	args := lc.sortedArgs()
	if len(args) == 0 {
		id := s.mkVar(e.sortHint(), lc.coeff)
		s.ExprMap[host] = id
		return id, nil
	}
	id, err := s.materializeSum(lc, e.sortHint())
	if err != nil {
		return 0, err
	}
	s.ExprMap[host] = id
	return id, nil
}

// BuildLinear walks e into a standalone (coeff, sorted args) pair
// without materializing a Sum node — this is what atom construction
// uses (spec §4.C: atoms carry their own coeff/args, not a shared Sum).
func (s *Store) BuildLinear(e *Expr) (numeric.Num, []SumArg, error) {
	lc := s.newLinComb()
	if err := s.AddArgs(lc, e, s.Backend.One()); err != nil {
		return nil, nil, err
	}
	return lc.coeff, lc.sortedArgs(), nil
}
