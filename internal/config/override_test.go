package config

import "testing"

func TestApplyOverridesKebabCase(t *testing.T) {
	p := Default()
	err := ApplyOverrides(&p, []string{"paws-init=7", "restart-base=500", "arith-use-lookahead=false"})
	if err != nil {
		t.Fatalf("apply overrides: %v", err)
	}
	if p.PawsInit != 7 {
		t.Errorf("PawsInit = %d, want 7", p.PawsInit)
	}
	if p.RestartBase != 500 {
		t.Errorf("RestartBase = %d, want 500", p.RestartBase)
	}
	if p.ArithUseLookahead {
		t.Errorf("ArithUseLookahead = true, want false")
	}
}

func TestApplyOverridesSnakeCase(t *testing.T) {
	p := Default()
	if err := ApplyOverrides(&p, []string{"ucb_constant=3.5"}); err != nil {
		t.Fatalf("apply overrides: %v", err)
	}
	if p.UCBConstant != 3.5 {
		t.Errorf("UCBConstant = %v, want 3.5", p.UCBConstant)
	}
}

func TestApplyOverridesUnknownKey(t *testing.T) {
	p := Default()
	if err := ApplyOverrides(&p, []string{"not-a-field=1"}); err == nil {
		t.Fatalf("expected error for unknown parameter")
	}
}

func TestApplyOverridesMalformed(t *testing.T) {
	p := Default()
	if err := ApplyOverrides(&p, []string{"paws-init"}); err == nil {
		t.Fatalf("expected error for missing '='")
	}
}

func TestApplyOverridesEmpty(t *testing.T) {
	p := Default()
	if err := ApplyOverrides(&p, nil); err != nil {
		t.Fatalf("apply overrides: %v", err)
	}
}
