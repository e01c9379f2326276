package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gitrdm/arithsls/internal/config"
	"github.com/gitrdm/arithsls/internal/store"
)

func TestLoadParamsDefaultsWithNoConfig(t *testing.T) {
	p, err := loadParams("", nil)
	if err != nil {
		t.Fatalf("load params: %v", err)
	}
	if p != config.Default() {
		t.Fatalf("expected defaults, got %+v", p)
	}
}

func TestLoadParamsAppliesOverridesAfterFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "run.yaml")
	if err := os.WriteFile(path, []byte("seed: 42\npaws_init: 3\n"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	p, err := loadParams(path, []string{"paws-init=9"})
	if err != nil {
		t.Fatalf("load params: %v", err)
	}
	if p.Seed != 42 {
		t.Fatalf("Seed = %d, want 42", p.Seed)
	}
	if p.PawsInit != 9 {
		t.Fatalf("PawsInit = %d, want 9 (override should win over file)", p.PawsInit)
	}
}

func TestOpenSinkDefaultsToNoop(t *testing.T) {
	sink, err := openSink("")
	if err != nil {
		t.Fatalf("open sink: %v", err)
	}
	if _, ok := sink.(store.Noop); !ok {
		t.Fatalf("expected Noop sink, got %T", sink)
	}
}

func TestOpenSinkOpensSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.db")
	sink, err := openSink(path)
	if err != nil {
		t.Fatalf("open sink: %v", err)
	}
	defer sink.Close()
	if _, ok := sink.(*store.SQLiteSink); !ok {
		t.Fatalf("expected *store.SQLiteSink, got %T", sink)
	}
}
