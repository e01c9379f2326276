package store

import "testing"

func TestSinkImplementations(t *testing.T) {
	var _ Sink = (*SQLiteSink)(nil)
	var _ Sink = Noop{}
}

func openTestSink(t *testing.T) *SQLiteSink {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open test sink: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveAndLoadBestValues(t *testing.T) {
	s := openTestSink(t)
	if err := s.SaveRun("run-1", "rational", 1); err != nil {
		t.Fatalf("save run: %v", err)
	}

	values := map[int]string{0: "5", 1: "-3/2"}
	if err := s.SaveBestValues("run-1", values); err != nil {
		t.Fatalf("save best values: %v", err)
	}

	got, err := s.LoadBestValues("run-1")
	if err != nil {
		t.Fatalf("load best values: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d values, want 2", len(got))
	}
	if got[0] != "5" || got[1] != "-3/2" {
		t.Errorf("values = %+v, want %+v", got, values)
	}
}

func TestSaveBestValuesOverwrites(t *testing.T) {
	s := openTestSink(t)
	s.SaveRun("run-1", "rational", 1)
	s.SaveBestValues("run-1", map[int]string{0: "1"})
	s.SaveBestValues("run-1", map[int]string{0: "2"})

	got, err := s.LoadBestValues("run-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got[0] != "2" {
		t.Errorf("value = %q, want %q", got[0], "2")
	}
}

func TestLoadBestValuesEmptyRun(t *testing.T) {
	s := openTestSink(t)
	got, err := s.LoadBestValues("nonexistent")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("got %d values, want 0", len(got))
	}
}

func TestSaveAndLoadStats(t *testing.T) {
	s := openTestSink(t)
	s.SaveRun("run-1", "checked64", 42)

	if err := s.SaveStats("run-1", 10, 2, 5, 20, 15); err != nil {
		t.Fatalf("save stats: %v", err)
	}
	steps, restarts, flips, tried, applied, err := s.LoadStats("run-1")
	if err != nil {
		t.Fatalf("load stats: %v", err)
	}
	if steps != 10 || restarts != 2 || flips != 5 || tried != 20 || applied != 15 {
		t.Errorf("stats = (%d,%d,%d,%d,%d), want (10,2,5,20,15)", steps, restarts, flips, tried, applied)
	}
}

func TestSaveStatsUpserts(t *testing.T) {
	s := openTestSink(t)
	s.SaveRun("run-1", "rational", 1)
	s.SaveStats("run-1", 1, 0, 0, 0, 0)
	s.SaveStats("run-1", 99, 3, 1, 4, 2)

	steps, restarts, _, _, _, err := s.LoadStats("run-1")
	if err != nil {
		t.Fatalf("load stats: %v", err)
	}
	if steps != 99 || restarts != 3 {
		t.Errorf("steps=%d restarts=%d, want 99/3", steps, restarts)
	}
}

func TestLoadStatsNoRun(t *testing.T) {
	s := openTestSink(t)
	steps, restarts, flips, tried, applied, err := s.LoadStats("nonexistent")
	if err != nil {
		t.Fatalf("load stats: %v", err)
	}
	if steps != 0 || restarts != 0 || flips != 0 || tried != 0 || applied != 0 {
		t.Errorf("expected all zero, got (%d,%d,%d,%d,%d)", steps, restarts, flips, tried, applied)
	}
}

func TestMigrationIdempotent(t *testing.T) {
	s := openTestSink(t)
	if err := s.migrate(); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
}

func TestAllTablesExist(t *testing.T) {
	s := openTestSink(t)
	tables := []string{"runs", "run_stats", "best_values", "schema_migrations"}
	for _, name := range tables {
		var count int
		err := s.db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", name).Scan(&count)
		if err != nil {
			t.Fatalf("check table %s: %v", name, err)
		}
		if count != 1 {
			t.Errorf("table %s not found", name)
		}
	}
}

func TestNoopSinkIsInert(t *testing.T) {
	var n Noop
	if err := n.SaveRun("r", "rational", 1); err != nil {
		t.Fatalf("save run: %v", err)
	}
	if err := n.SaveBestValues("r", map[int]string{0: "1"}); err != nil {
		t.Fatalf("save best values: %v", err)
	}
	if err := n.SaveStats("r", 1, 1, 1, 1, 1); err != nil {
		t.Fatalf("save stats: %v", err)
	}
	vals, err := n.LoadBestValues("r")
	if err != nil || vals != nil {
		t.Fatalf("load best values: %v, %v", vals, err)
	}
	steps, _, _, _, _, err := n.LoadStats("r")
	if err != nil || steps != 0 {
		t.Fatalf("load stats: %d, %v", steps, err)
	}
	if err := n.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}
