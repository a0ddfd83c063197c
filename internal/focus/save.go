// ABOUTME: Save is the pending/settled handle returned by every session mutation
// ABOUTME: Callers can show a saving indicator, wait for durability, or inspect the failure
package focus

import (
	"context"

	"github.com/harper/focusflow/internal/recordstore"
)

// Save tracks one background write of a table's document
type Save struct {
	table recordstore.Table
	done  chan struct{}
	err   error
}

func newSave(table recordstore.Table) *Save {
	return &Save{table: table, done: make(chan struct{})}
}

func (s *Save) finish(err error) {
	s.err = err
	close(s.done)
}

// Table names the table being written
func (s *Save) Table() recordstore.Table {
	return s.table
}

// Done is closed once the write has committed or failed
func (s *Save) Done() <-chan struct{} {
	return s.done
}

// Pending reports whether the write is still in flight
func (s *Save) Pending() bool {
	select {
	case <-s.done:
		return false
	default:
		return true
	}
}

// Err returns the write's failure. It is nil while pending.
func (s *Save) Err() error {
	select {
	case <-s.done:
		return s.err
	default:
		return nil
	}
}

// Wait blocks until the write settles or ctx ends. Giving up does not stop the write.
func (s *Save) Wait(ctx context.Context) error {
	if !s.Pending() {
		return s.err
	}
	select {
	case <-s.done:
		return s.err
	case <-ctx.Done():
		return ctx.Err()
	}
}
