package shift

import (
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// ErrNoActiveShift is returned when an operation requires an open shift and
// the operator has none, in memory or on disk.
var ErrNoActiveShift = errors.New("no active shift for operator")

// StateStore is the durable backing for shift state. Store is the
// file-based implementation.
type StateStore interface {
	Save(key string, state *ShiftState) error
	Load(key string) (*ShiftState, error)
	Purge(key string) error
}

// Registry maps each operator key to its own ShiftState. Two operators can
// never share a state instance; every operation goes through the key.
//
// End purges the durable file, so a Begin after End always starts fresh.
// Resumption from disk only happens when the process restarted while a
// shift was still open.
type Registry struct {
	store           StateStore
	operatorPercent decimal.Decimal
	now             func() time.Time

	mu     sync.Mutex
	shifts map[string]*ShiftState
}

func NewRegistry(store StateStore, operatorPercent decimal.Decimal) *Registry {
	return &Registry{
		store:           store,
		operatorPercent: operatorPercent,
		now:             time.Now,
		shifts:          make(map[string]*ShiftState),
	}
}

// lookup resolves the state for key: in-memory first, then the durable
// file, then (only if create is set) a fresh state. Caller holds r.mu.
func (r *Registry) lookup(key string, create bool) (*ShiftState, error) {
	if s, ok := r.shifts[key]; ok {
		return s, nil
	}
	s, err := r.store.Load(key)
	if err != nil {
		return nil, err
	}
	if s == nil {
		if !create {
			return nil, ErrNoActiveShift
		}
		s = newState(r.now())
	}
	r.shifts[key] = s
	return s, nil
}

// Begin opens a shift for the operator, resuming durable state when a file
// from an interrupted shift exists.
func (r *Registry) Begin(key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, err := r.lookup(key, true)
	return err
}

// RecordSheet appends one sheet's entry and recomputes the totals. The
// updated state is written durably before it becomes visible in memory; on
// a failed write the previous state stays current and the error is an
// AggregationIOError.
func (r *Registry) RecordSheet(key string, entry AgentEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, err := r.lookup(key, false)
	if err != nil {
		return err
	}
	next := current.withEntry(entry, r.operatorPercent)
	if err := r.store.Save(key, next); err != nil {
		return err
	}
	r.shifts[key] = next
	return nil
}

// Summarize returns the read-only projection of the operator's shift.
func (r *Registry) Summarize(key string) (Summary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, err := r.lookup(key, false)
	if err != nil {
		return Summary{}, err
	}
	return s.Summarize(), nil
}

// End returns the final summary, discards the in-memory state and purges
// the durable file. The in-memory state is dropped even if the purge
// fails, so a stale file can at worst cause a resume, never a corrupt one.
func (r *Registry) End(key string) (Summary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, err := r.lookup(key, false)
	if err != nil {
		return Summary{}, err
	}
	summary := s.Summarize()
	delete(r.shifts, key)
	if err := r.store.Purge(key); err != nil {
		return summary, err
	}
	return summary, nil
}
