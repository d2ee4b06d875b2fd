package shift_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"bitbucket.org/mmdatafocus/shifts_backend/ledger"
	"bitbucket.org/mmdatafocus/shifts_backend/shift"
	"github.com/shopspring/decimal"
)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal %q: %v", s, err)
	}
	return d
}

func sampleState(t *testing.T) *shift.ShiftState {
	return &shift.ShiftState{
		StartTime: time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC),
		Agents: []shift.AgentEntry{
			{Name: "Anna", Turnover: dec(t, "100"), Percent: dec(t, "3")},
		},
		TotalTurnover:       dec(t, "100"),
		TotalOperatorPayout: dec(t, "0.5"),
	}
}

func TestStore_SaveLoadRoundtrip(t *testing.T) {
	st := shift.Store{Dir: t.TempDir()}
	state := sampleState(t)

	if err := st.Save("77", state); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := st.Load("77")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded == nil {
		t.Fatal("Load returned nil for saved state")
	}
	if !loaded.StartTime.Equal(state.StartTime) {
		t.Errorf("start time: got %s", loaded.StartTime)
	}
	if len(loaded.Agents) != 1 || loaded.Agents[0].Name != "Anna" {
		t.Errorf("agents: %+v", loaded.Agents)
	}
	if !loaded.TotalTurnover.Equal(dec(t, "100")) {
		t.Errorf("total turnover: %s", loaded.TotalTurnover)
	}
}

func TestStore_LoadMissingMeansNoShift(t *testing.T) {
	st := shift.Store{Dir: t.TempDir()}
	state, err := st.Load("nobody")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if state != nil {
		t.Fatalf("expected nil state, got %+v", state)
	}
}

func TestStore_FailedSaveKeepsPreviousFile(t *testing.T) {
	dir := t.TempDir()
	st := shift.Store{Dir: dir}
	if err := st.Save("77", sampleState(t)); err != nil {
		t.Fatalf("Save: %v", err)
	}

	// A store whose directory path is actually a file cannot write; the
	// already saved file in the real directory must stay readable.
	blocked := filepath.Join(dir, "operator_77.json")
	bad := shift.Store{Dir: blocked}
	err := bad.Save("77", sampleState(t))
	var ioErr *ledger.AggregationIOError
	if !errors.As(err, &ioErr) {
		t.Fatalf("expected AggregationIOError, got %v", err)
	}

	loaded, err := st.Load("77")
	if err != nil || loaded == nil {
		t.Fatalf("previous file must survive a failed save: %v", err)
	}
}

func TestStore_LoadCorruptFileFails(t *testing.T) {
	dir := t.TempDir()
	st := shift.Store{Dir: dir}
	if err := os.WriteFile(filepath.Join(dir, "operator_9.json"), []byte("{half"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := st.Load("9")
	var ioErr *ledger.AggregationIOError
	if !errors.As(err, &ioErr) {
		t.Fatalf("expected AggregationIOError for corrupt file, got %v", err)
	}
}

func TestStore_PurgeIsIdempotent(t *testing.T) {
	st := shift.Store{Dir: t.TempDir()}
	if err := st.Save("5", sampleState(t)); err != nil {
		t.Fatal(err)
	}
	if err := st.Purge("5"); err != nil {
		t.Fatalf("Purge: %v", err)
	}
	if err := st.Purge("5"); err != nil {
		t.Fatalf("second Purge must be a no-op: %v", err)
	}
	state, err := st.Load("5")
	if err != nil || state != nil {
		t.Fatalf("state must be gone after purge: %+v, %v", state, err)
	}
}
