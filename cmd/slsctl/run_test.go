package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gitrdm/arithsls/internal/config"
)

func writeSLS(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "test.sls")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write .sls: %v", err)
	}
	return path
}

func TestSolveFileSatisfiesSimpleAssertion(t *testing.T) {
	path := writeSLS(t, t.TempDir(), "int x; assert (x <= 0);\n")
	p := config.Default()
	p.Seed = 1

	result, err := solveFile(path, p, 1000)
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	if !result.sat {
		t.Fatalf("expected sat, got unsat/unknown")
	}
	if _, ok := result.names["x"]; !ok {
		t.Fatalf("expected declared name x in result")
	}
}

func TestSolveFileReportsNamesInSortedOrder(t *testing.T) {
	path := writeSLS(t, t.TempDir(), "int b, a; assert (a + b <= 10);\n")
	p := config.Default()

	result, err := solveFile(path, p, 1000)
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	names := result.sortedNames()
	if len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Fatalf("sortedNames = %v, want [a b]", names)
	}
}

func TestSolveFileRejectsMissingFile(t *testing.T) {
	p := config.Default()
	if _, err := solveFile(filepath.Join(t.TempDir(), "nope.sls"), p, 100); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestSolveFileRejectsParseError(t *testing.T) {
	path := writeSLS(t, t.TempDir(), "int x assert\n")
	p := config.Default()
	if _, err := solveFile(path, p, 100); err == nil {
		t.Fatalf("expected parse error")
	}
}
