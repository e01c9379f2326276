package dsl

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseStringDecls(t *testing.T) {
	prog, err := ParseString("t.sls", "int x, y; real z;")
	require.NoError(t, err)
	require.Len(t, prog.Stmts, 2)
	require.Equal(t, "int", prog.Stmts[0].Decl.Sort)
	require.Equal(t, []string{"x", "y"}, prog.Stmts[0].Decl.Names)
	require.Equal(t, "real", prog.Stmts[1].Decl.Sort)
	require.Equal(t, []string{"z"}, prog.Stmts[1].Decl.Names)
}

func TestParseStringAsserts(t *testing.T) {
	src := `int x, y;
assert (x + y <= 0);
assert (x * y >= 10);
assert not (x = y);
`
	prog, err := ParseString("t.sls", src)
	require.NoError(t, err)
	require.Len(t, prog.Stmts, 4)

	a1 := prog.Stmts[1].Assert
	require.NotNil(t, a1)
	require.False(t, a1.Not)
	require.Equal(t, "<=", a1.Expr.Op)

	a2 := prog.Stmts[2].Assert
	require.Equal(t, ">=", a2.Expr.Op)

	a3 := prog.Stmts[3].Assert
	require.True(t, a3.Not)
	require.Equal(t, "=", a3.Expr.Op)
}

func TestParseStringRejectsGarbage(t *testing.T) {
	_, err := ParseString("t.sls", "int x; assert (x <);")
	require.Error(t, err)
}
