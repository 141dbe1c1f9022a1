package provenance

import (
	"path/filepath"
	"testing"
)

// #region store-tests

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestLogAndListTransitions(t *testing.T) {
	store := openTestStore(t)
	adj := -1

	entries := []TransitionEntry{
		{
			RunID: "run-1", Round: 1, RecordID: "id-1", Question: "q1",
			OldK: "2", NewK: "1", Score: 5, Adjustment: &adj,
			Action: "lower", Reason: "judge voted less context",
		},
		{
			RunID: "run-1", Round: 1, RecordID: "id-2", Question: "q2",
			OldK: "3", NewK: "3", Action: "hold",
			Reason: "evaluation failed, no signal", EvalFailed: true,
		},
		{
			RunID: "run-2", Round: 1, RecordID: "id-3", Question: "q3",
			OldK: "5", NewK: "0", Score: 2, Action: "reset",
			Reason: "score 2 < 3 at ceiling",
		},
	}
	for _, e := range entries {
		if err := store.LogTransition(e); err != nil {
			t.Fatalf("LogTransition: %v", err)
		}
	}

	got, err := store.ListTransitions("run-1")
	if err != nil {
		t.Fatalf("ListTransitions: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("run-1 transitions = %d, want 2", len(got))
	}

	first := got[0]
	if first.Question != "q1" || first.OldK != "2" || first.NewK != "1" || first.Score != 5 {
		t.Errorf("first transition = %+v", first)
	}
	if first.Adjustment == nil || *first.Adjustment != -1 {
		t.Errorf("first Adjustment = %v, want -1", first.Adjustment)
	}
	if first.EvalFailed {
		t.Error("first transition flagged EvalFailed")
	}
	if first.CreatedAt.IsZero() {
		t.Error("first CreatedAt not persisted")
	}

	second := got[1]
	if !second.EvalFailed {
		t.Error("second transition not flagged EvalFailed")
	}
	if second.Adjustment != nil {
		t.Errorf("second Adjustment = %v, want nil", second.Adjustment)
	}

	all, err := store.ListTransitions("")
	if err != nil {
		t.Fatalf("ListTransitions all: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("all transitions = %d, want 3", len(all))
	}
}

func TestLogAndListRounds(t *testing.T) {
	store := openTestStore(t)

	rounds := []RoundEntry{
		{RunID: "run-1", Round: 1, Evaluated: 10, Failed: 1, Resolved: 3, Reflected: 7, Dropped: 0},
		{RunID: "run-1", Round: 2, Evaluated: 7, Failed: 0, Resolved: 4, Reflected: 3, Dropped: 0},
	}
	for _, e := range rounds {
		if err := store.LogRound(e); err != nil {
			t.Fatalf("LogRound: %v", err)
		}
	}

	got, err := store.ListRounds("run-1")
	if err != nil {
		t.Fatalf("ListRounds: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("rounds = %d, want 2", len(got))
	}
	if got[0].Round != 1 || got[1].Round != 2 {
		t.Errorf("round order = %d, %d", got[0].Round, got[1].Round)
	}
	if got[1].Resolved != 4 || got[1].Reflected != 3 {
		t.Errorf("round 2 = %+v", got[1])
	}

	none, err := store.ListRounds("absent-run")
	if err != nil {
		t.Fatalf("ListRounds absent: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("absent run rounds = %d, want 0", len(none))
	}
}

func TestStoreReopens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reopen.db")
	store, err := NewStore(path)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if err := store.LogRound(RoundEntry{RunID: "run-1", Round: 1}); err != nil {
		t.Fatalf("LogRound: %v", err)
	}
	store.Close()

	reopened, err := NewStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.ListRounds("run-1")
	if err != nil {
		t.Fatalf("ListRounds: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("rounds after reopen = %d, want 1", len(got))
	}
}

// #endregion store-tests
