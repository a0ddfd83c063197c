// ABOUTME: Table names, the singleton key and the Backend contract
// ABOUTME: Each table holds at most one JSON document under SingletonKey
package recordstore

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Table is one of the four logical partitions of the store
type Table string

const (
	TableProfile Table = "profile"
	TableTasks   Table = "tasks"
	TableChat    Table = "chat"
	TablePlan    Table = "plan"
)

// SingletonKey is the fixed key every table stores its document under
const SingletonKey = "current"

var tables = [...]Table{TableProfile, TableTasks, TableChat, TablePlan}

// Tables returns the four tables in their fixed order
func Tables() []Table {
	out := tables
	return out[:]
}

// Valid reports whether t names one of the four tables
func (t Table) Valid() bool {
	return t.index() >= 0
}

func (t Table) index() int {
	for i, known := range tables {
		if known == t {
			return i
		}
	}
	return -1
}

// ParseTable converts user input into a Table
func ParseTable(s string) (Table, error) {
	t := Table(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", &Error{Kind: KindUnknownTable, Op: "parse", Table: t}
	}
	return t, nil
}

// Document is the JSON value stored in a table
type Document = json.RawMessage

// Backend is an opened connection to the underlying storage engine.
// Implementations need not be safe for concurrent use on the same table;
// the Store serialises same-table calls.
type Backend interface {
	Get(ctx context.Context, table Table) (Document, bool, error)
	Put(ctx context.Context, table Table, doc Document) error
	ClearAll(ctx context.Context) error
	SchemaVersion(ctx context.Context) (int, error)
	Close() error
}

// OpenFunc performs the open protocol: connect and bring the schema up to date.
type OpenFunc func(ctx context.Context) (Backend, error)

func checkTable(t Table) error {
	if !t.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownTable, string(t))
	}
	return nil
}
