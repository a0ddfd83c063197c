// ABOUTME: Tests for the record store error taxonomy
// ABOUTME: Sentinel matching, messages and table name parsing
package recordstore

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorMatchesOnlyItsKind(t *testing.T) {
	sentinels := []error{ErrOpen, ErrNotOpen, ErrTransaction, ErrSerialization, ErrSchemaUpgrade, ErrUnknownTable}
	kinds := []Kind{KindOpen, KindNotOpen, KindTransaction, KindSerialization, KindSchemaUpgrade, KindUnknownTable}

	for i, kind := range kinds {
		err := &Error{Kind: kind, Op: "write", Table: TableTasks}
		for j, sentinel := range sentinels {
			want := i == j || (kind == KindSchemaUpgrade && sentinel == ErrOpen)
			if got := errors.Is(err, sentinel); got != want {
				t.Errorf("errors.Is(%v, %v) = %v, want %v", kind, sentinel, got, want)
			}
		}
	}
}

func TestErrorMessage(t *testing.T) {
	err := &Error{Kind: KindTransaction, Op: "write", Table: TableTasks, Err: errors.New("disk full")}
	want := "recordstore: write tasks: transaction failed: disk full"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}

	bare := &Error{Kind: KindOpen, Op: "open"}
	if bare.Error() != "recordstore: open: open failed" {
		t.Errorf("Error() = %q", bare.Error())
	}
}

func TestWrapKeepsExistingStoreError(t *testing.T) {
	inner := &Error{Kind: KindSchemaUpgrade, Op: "open"}
	got := wrap(KindOpen, "open", "", fmt.Errorf("context: %w", inner))
	if KindOf(got) != KindSchemaUpgrade {
		t.Errorf("KindOf(wrap()) = %v, want schema upgrade", KindOf(got))
	}
	if wrap(KindOpen, "open", "", nil) != nil {
		t.Error("wrap(nil) should be nil")
	}
	if KindOf(errors.New("plain")) != 0 {
		t.Error("KindOf(plain) should be 0")
	}
}

func TestParseTable(t *testing.T) {
	for _, in := range []string{"profile", " Tasks ", "CHAT", "plan"} {
		if _, err := ParseTable(in); err != nil {
			t.Errorf("ParseTable(%q) error = %v", in, err)
		}
	}
	if _, err := ParseTable("settings"); !errors.Is(err, ErrUnknownTable) {
		t.Errorf("ParseTable(settings) error = %v, want ErrUnknownTable", err)
	}
}
