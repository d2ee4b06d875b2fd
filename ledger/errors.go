package ledger

import "fmt"

// MalformedInputError means the uploaded file is not a readable workbook.
// Nothing from the request is ingested when this is returned.
type MalformedInputError struct {
	Err error
}

func (e *MalformedInputError) Error() string {
	return fmt.Sprintf("workbook cannot be parsed: %v", e.Err)
}

func (e *MalformedInputError) Unwrap() error {
	return e.Err
}

// PersistenceError means the atomic ledger commit for one sheet failed and
// was rolled back. Sheets committed earlier in the same request stay
// committed.
type PersistenceError struct {
	Sheet string
	Err   error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("ledger commit failed for sheet %q: %v", e.Sheet, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// AggregationIOError means the durable shift-state write failed. The
// in-memory shift state is not advanced when this is returned, so memory
// never runs ahead of disk.
type AggregationIOError struct {
	OperatorKey string
	Err         error
}

func (e *AggregationIOError) Error() string {
	return fmt.Sprintf("shift state write failed for operator %q: %v", e.OperatorKey, e.Err)
}

func (e *AggregationIOError) Unwrap() error {
	return e.Err
}
