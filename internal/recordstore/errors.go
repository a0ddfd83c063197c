// ABOUTME: Failure taxonomy for the record store
// ABOUTME: Every error names its operation and table and matches a sentinel via errors.Is
package recordstore

import (
	"errors"
	"fmt"
)

// Kind classifies a record store failure
type Kind int

const (
	// KindOpen means the store could not be opened; it stays unusable for the process lifetime.
	KindOpen Kind = iota + 1
	// KindNotOpen means an operation was attempted on a closed store or one whose open failed.
	KindNotOpen
	// KindTransaction means the storage engine rejected a single read, write or clear.
	KindTransaction
	// KindSerialization means a value could not be represented as JSON.
	KindSerialization
	// KindSchemaUpgrade means a schema migration failed or the on-disk schema is newer than supported.
	KindSchemaUpgrade
	// KindUnknownTable means the caller named a table the store does not have.
	KindUnknownTable
)

var (
	ErrOpen          = errors.New("open failed")
	ErrNotOpen       = errors.New("store not open")
	ErrTransaction   = errors.New("transaction failed")
	ErrSerialization = errors.New("value not serializable")
	ErrSchemaUpgrade = errors.New("schema upgrade failed")
	ErrUnknownTable  = errors.New("unknown table")
)

// errClosed is the cause attached to operations on a closed store
var errClosed = errors.New("store is closed")

var errInvalidJSON = errors.New("document is not valid JSON")

func (k Kind) sentinel() error {
	switch k {
	case KindOpen:
		return ErrOpen
	case KindNotOpen:
		return ErrNotOpen
	case KindTransaction:
		return ErrTransaction
	case KindSerialization:
		return ErrSerialization
	case KindSchemaUpgrade:
		return ErrSchemaUpgrade
	case KindUnknownTable:
		return ErrUnknownTable
	}
	return nil
}

func (k Kind) String() string {
	if s := k.sentinel(); s != nil {
		return s.Error()
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error is the single error type returned by the store
type Error struct {
	Kind  Kind
	Op    string
	Table Table
	Err   error
}

func (e *Error) Error() string {
	msg := "recordstore: " + e.Op
	if e.Table != "" {
		msg += " " + string(e.Table)
	}
	msg += ": " + e.Kind.String()
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel for the error's kind. A schema upgrade failure
// happens inside the open protocol, so it also matches ErrOpen.
func (e *Error) Is(target error) bool {
	if target == e.Kind.sentinel() {
		return true
	}
	return e.Kind == KindSchemaUpgrade && target == ErrOpen
}

// KindOf returns the kind of the outermost store error in err's chain, or 0.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return 0
}

// wrap classifies err as kind unless it already carries a store error.
func wrap(kind Kind, op string, table Table, err error) error {
	if err == nil {
		return nil
	}
	var se *Error
	if errors.As(err, &se) {
		return err
	}
	return &Error{Kind: kind, Op: op, Table: table, Err: err}
}
