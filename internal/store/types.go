package store

import "errors"

// ErrNotFound is returned when a lookup by identifier matches nothing.
var ErrNotFound = errors.New("record not found")

// InsertResult summarises a batch insert of colleges.
type InsertResult struct {
	Inserted int64
	Skipped  int64
}
