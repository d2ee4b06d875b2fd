package shift_test

import (
	"errors"
	"fmt"
	"testing"

	"bitbucket.org/mmdatafocus/shifts_backend/ledger"
	"bitbucket.org/mmdatafocus/shifts_backend/shift"
	"github.com/shopspring/decimal"
)

func newRegistry(t *testing.T) (*shift.Registry, shift.Store) {
	st := shift.Store{Dir: t.TempDir()}
	return shift.NewRegistry(st, decimal.NewFromFloat(0.5)), st
}

func record(t *testing.T, r *shift.Registry, key, name, turnover string) {
	t.Helper()
	err := r.RecordSheet(key, shift.AgentEntry{
		Name:     name,
		Turnover: dec(t, turnover),
		Percent:  dec(t, "3"),
	})
	if err != nil {
		t.Fatalf("RecordSheet(%s): %v", name, err)
	}
}

func TestRegistry_AggregatesAndRanks(t *testing.T) {
	r, _ := newRegistry(t)
	if err := r.Begin("op"); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	record(t, r, "op", "Anna", "100")
	record(t, r, "op", "Boris", "200")

	sum, err := r.Summarize("op")
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if sum.AgentCount != 2 {
		t.Fatalf("agent count: %d", sum.AgentCount)
	}
	if !sum.TotalTurnover.Equal(dec(t, "300")) {
		t.Fatalf("total turnover: %s", sum.TotalTurnover)
	}
	if !sum.TotalOperatorPayout.Equal(dec(t, "1.5")) {
		t.Fatalf("operator payout: %s", sum.TotalOperatorPayout)
	}
	if sum.Agents[0].Name != "Boris" || sum.Agents[1].Name != "Anna" {
		t.Fatalf("ranking: %+v", sum.Agents)
	}
}

func TestRegistry_StableTieBreakAndRepeats(t *testing.T) {
	r, _ := newRegistry(t)
	if err := r.Begin("op"); err != nil {
		t.Fatal(err)
	}
	// Same agent may appear once per file; ties keep ingestion order.
	record(t, r, "op", "Anna", "100")
	record(t, r, "op", "Vera", "100")
	record(t, r, "op", "Anna", "100")

	sum, err := r.Summarize("op")
	if err != nil {
		t.Fatal(err)
	}
	names := []string{sum.Agents[0].Name, sum.Agents[1].Name, sum.Agents[2].Name}
	want := []string{"Anna", "Vera", "Anna"}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("tie-break order: got %v, want %v", names, want)
		}
	}
}

func TestRegistry_SummarizeDoesNotMutate(t *testing.T) {
	r, _ := newRegistry(t)
	if err := r.Begin("op"); err != nil {
		t.Fatal(err)
	}
	record(t, r, "op", "Boris", "200")
	record(t, r, "op", "Anna", "100")

	first, err := r.Summarize("op")
	if err != nil {
		t.Fatal(err)
	}
	second, err := r.Summarize("op")
	if err != nil {
		t.Fatal(err)
	}
	if !first.TotalTurnover.Equal(second.TotalTurnover) ||
		!first.TotalOperatorPayout.Equal(second.TotalOperatorPayout) ||
		first.AgentCount != second.AgentCount {
		t.Fatalf("summaries differ: %+v vs %+v", first, second)
	}
	// Ranking in the summary must not reorder the underlying entries.
	third, _ := r.Summarize("op")
	if third.Agents[0].Name != "Boris" {
		t.Fatalf("ranking lost: %+v", third.Agents)
	}
}

// failingStore wraps the file store and fails every save after a cutoff,
// simulating a crash between mutation and durable write.
type failingStore struct {
	shift.Store
	fail bool
}

func (f *failingStore) Save(key string, state *shift.ShiftState) error {
	if f.fail {
		return &ledger.AggregationIOError{OperatorKey: key, Err: fmt.Errorf("disk gone")}
	}
	return f.Store.Save(key, state)
}

func TestRegistry_MemoryNeverOutrunsDisk(t *testing.T) {
	fs := &failingStore{Store: shift.Store{Dir: t.TempDir()}}
	r := shift.NewRegistry(fs, decimal.NewFromFloat(0.5))
	if err := r.Begin("op"); err != nil {
		t.Fatal(err)
	}
	record(t, r, "op", "Anna", "100")

	fs.fail = true
	err := r.RecordSheet("op", shift.AgentEntry{Name: "Boris", Turnover: dec(t, "200"), Percent: dec(t, "3")})
	var ioErr *ledger.AggregationIOError
	if !errors.As(err, &ioErr) {
		t.Fatalf("expected AggregationIOError, got %v", err)
	}

	sum, err := r.Summarize("op")
	if err != nil {
		t.Fatal(err)
	}
	if sum.AgentCount != 1 || !sum.TotalTurnover.Equal(dec(t, "100")) {
		t.Fatalf("in-memory state advanced past durable state: %+v", sum)
	}

	// Disk agrees with memory.
	loaded, err := fs.Store.Load("op")
	if err != nil || loaded == nil {
		t.Fatal(err)
	}
	if len(loaded.Agents) != 1 {
		t.Fatalf("durable state: %+v", loaded.Agents)
	}
}

func TestRegistry_ResumeAfterRestart(t *testing.T) {
	st := shift.Store{Dir: t.TempDir()}
	r1 := shift.NewRegistry(st, decimal.NewFromFloat(0.5))
	if err := r1.Begin("op"); err != nil {
		t.Fatal(err)
	}
	record(t, r1, "op", "Anna", "100")

	// A new registry over the same directory stands in for a restarted
	// process.
	r2 := shift.NewRegistry(st, decimal.NewFromFloat(0.5))
	if err := r2.Begin("op"); err != nil {
		t.Fatalf("Begin after restart: %v", err)
	}
	sum, err := r2.Summarize("op")
	if err != nil {
		t.Fatal(err)
	}
	if !sum.TotalTurnover.Equal(dec(t, "100")) {
		t.Fatalf("resumed turnover: %s", sum.TotalTurnover)
	}
}

func TestRegistry_EndPurgesAndFreshBegin(t *testing.T) {
	r, st := newRegistry(t)
	if err := r.Begin("op"); err != nil {
		t.Fatal(err)
	}
	record(t, r, "op", "Anna", "100")

	final, err := r.End("op")
	if err != nil {
		t.Fatalf("End: %v", err)
	}
	if !final.TotalTurnover.Equal(dec(t, "100")) {
		t.Fatalf("final summary: %+v", final)
	}

	if _, err := r.Summarize("op"); !errors.Is(err, shift.ErrNoActiveShift) {
		t.Fatalf("expected ErrNoActiveShift after End, got %v", err)
	}
	if state, _ := st.Load("op"); state != nil {
		t.Fatalf("durable state must be purged on End")
	}

	if err := r.Begin("op"); err != nil {
		t.Fatal(err)
	}
	sum, err := r.Summarize("op")
	if err != nil {
		t.Fatal(err)
	}
	if !sum.TotalTurnover.IsZero() || sum.AgentCount != 0 {
		t.Fatalf("fresh shift expected after End+Begin: %+v", sum)
	}
}

func TestRegistry_OperatorsAreIsolated(t *testing.T) {
	r, _ := newRegistry(t)
	if err := r.Begin("a"); err != nil {
		t.Fatal(err)
	}
	if err := r.Begin("b"); err != nil {
		t.Fatal(err)
	}
	record(t, r, "a", "Anna", "100")
	record(t, r, "b", "Boris", "200")

	sa, err := r.Summarize("a")
	if err != nil {
		t.Fatal(err)
	}
	sb, err := r.Summarize("b")
	if err != nil {
		t.Fatal(err)
	}
	if !sa.TotalTurnover.Equal(dec(t, "100")) || !sb.TotalTurnover.Equal(dec(t, "200")) {
		t.Fatalf("cross-operator leakage: %s / %s", sa.TotalTurnover, sb.TotalTurnover)
	}
}

func TestRegistry_RecordWithoutBegin(t *testing.T) {
	r, _ := newRegistry(t)
	err := r.RecordSheet("ghost", shift.AgentEntry{Name: "X", Turnover: dec(t, "1"), Percent: dec(t, "1")})
	if !errors.Is(err, shift.ErrNoActiveShift) {
		t.Fatalf("expected ErrNoActiveShift, got %v", err)
	}
}
