package dag

// Sort distinguishes integer from real-sorted variables per spec §3;
// it controls rounded division and strict-bound tightening.
type Sort int

const (
	Int Sort = iota
	Real
)

func (s Sort) String() string {
	if s == Int {
		return "Int"
	}
	return "Real"
}
