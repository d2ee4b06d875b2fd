package shift

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"bitbucket.org/mmdatafocus/shifts_backend/ledger"
	"github.com/google/uuid"
)

// Store persists shift state as one JSON file per operator key under Dir.
// Writes go to a temp file first and are renamed into place, so a crash
// mid-write can never leave a half-written file readable on next load.
type Store struct {
	Dir string
}

func (st Store) path(key string) string {
	return filepath.Join(st.Dir, "operator_"+key+".json")
}

// Save durably replaces the state file for key. Any failure is reported as
// AggregationIOError and leaves the previous file intact.
func (st Store) Save(key string, state *ShiftState) error {
	if err := os.MkdirAll(st.Dir, 0o755); err != nil {
		return &ledger.AggregationIOError{OperatorKey: key, Err: err}
	}
	out, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return &ledger.AggregationIOError{OperatorKey: key, Err: err}
	}

	target := st.path(key)
	tmp := target + "." + uuid.NewString() + ".tmp"
	if err := os.WriteFile(tmp, out, 0o644); err != nil {
		return &ledger.AggregationIOError{OperatorKey: key, Err: err}
	}
	if err := os.Rename(tmp, target); err != nil {
		os.Remove(tmp)
		return &ledger.AggregationIOError{OperatorKey: key, Err: err}
	}
	return nil
}

// Load reads the durable state for key. A missing file is not an error:
// it returns (nil, nil), meaning no shift is open for that operator.
func (st Store) Load(key string) (*ShiftState, error) {
	b, err := os.ReadFile(st.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, &ledger.AggregationIOError{OperatorKey: key, Err: err}
	}
	var state ShiftState
	if err := json.Unmarshal(b, &state); err != nil {
		return nil, &ledger.AggregationIOError{OperatorKey: key, Err: fmt.Errorf("corrupt state file: %w", err)}
	}
	return &state, nil
}

// Purge removes the durable state for key. Removing an absent file is a
// no-op.
func (st Store) Purge(key string) error {
	err := os.Remove(st.path(key))
	if err != nil && !os.IsNotExist(err) {
		return &ledger.AggregationIOError{OperatorKey: key, Err: err}
	}
	return nil
}
