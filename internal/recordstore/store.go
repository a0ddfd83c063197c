// ABOUTME: Store is the lazily opened, process-wide record store handle
// ABOUTME: Concurrent first callers share one in-flight open; same-table operations are serialised
package recordstore

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// State is the connection lifecycle state
type State int

const (
	StateUnopened State = iota
	StateOpening
	StateOpen
	StateFailed
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUnopened:
		return "unopened"
	case StateOpening:
		return "opening"
	case StateOpen:
		return "open"
	case StateFailed:
		return "failed"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

// Option configures a Store
type Option func(*Store)

// WithLogger sets the logger used for lifecycle and operation events
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Store) {
		s.logger = logger.With().Str("component", "recordstore").Logger()
	}
}

// Store provides read, write and clear over the four tables.
// The zero value is not usable; create one with New and share it.
type Store struct {
	open   OpenFunc
	logger zerolog.Logger

	mu      sync.Mutex
	state   State
	ready   chan struct{} // closed once the open attempt settles
	backend Backend
	openErr error

	// lifecycle is held shared by running operations and exclusively by Close.
	lifecycle sync.RWMutex
	locks     [len(tables)]sync.Mutex
}

// New creates a Store that will open lazily with open on first use.
func New(open OpenFunc, opts ...Option) *Store {
	s := &Store{
		open:   open,
		logger: zerolog.Nop(),
		ready:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current lifecycle state
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Open triggers the open protocol if it has not started and waits for it.
// Every caller observes the same outcome.
func (s *Store) Open(ctx context.Context) error {
	_, err := s.connect(ctx)
	if err == nil || KindOf(err) != 0 {
		return err
	}
	return &Error{Kind: KindNotOpen, Op: "open", Err: err}
}

// connect starts the open on first use and waits for the shared attempt to settle.
// Only the wait honours ctx; the attempt itself runs to completion.
func (s *Store) connect(ctx context.Context) (Backend, error) {
	s.mu.Lock()
	switch s.state {
	case StateUnopened:
		s.state = StateOpening
		go s.runOpen(context.WithoutCancel(ctx))
	case StateClosed:
		s.mu.Unlock()
		return nil, errClosed
	}
	ready := s.ready
	s.mu.Unlock()

	select {
	case <-ready:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.state == StateClosed:
		return nil, errClosed
	case s.openErr != nil:
		return nil, s.openErr
	}
	return s.backend, nil
}

func (s *Store) runOpen(ctx context.Context) {
	start := time.Now()
	s.logger.Debug().Msg("opening record store")

	backend, err := s.open(s.logger.WithContext(ctx))

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.state = StateFailed
		s.openErr = wrap(KindOpen, "open", "", err)
		s.logger.Error().Stack().Err(err).Dur("took", time.Since(start)).Msg("record store open failed")
	} else {
		s.state = StateOpen
		s.backend = backend
		s.logger.Debug().Dur("took", time.Since(start)).Msg("record store open")
	}
	close(s.ready)
}

// do runs fn against the open backend while holding the given table locks.
func (s *Store) do(ctx context.Context, op string, table Table, locks []int, fn func(context.Context, Backend) error) error {
	backend, err := s.connect(ctx)
	if err != nil {
		return &Error{Kind: KindNotOpen, Op: op, Table: table, Err: err}
	}

	s.lifecycle.RLock()
	defer s.lifecycle.RUnlock()
	if s.State() == StateClosed {
		return &Error{Kind: KindNotOpen, Op: op, Table: table, Err: errClosed}
	}

	for _, i := range locks {
		s.locks[i].Lock()
	}
	defer func() {
		for j := len(locks) - 1; j >= 0; j-- {
			s.locks[locks[j]].Unlock()
		}
	}()

	start := time.Now()
	err = fn(context.WithoutCancel(ctx), backend)
	if err != nil {
		s.logger.Warn().Stack().Err(err).Str("op", op).Str("table", string(table)).Msg("record store operation failed")
	} else {
		s.logger.Debug().Str("op", op).Str("table", string(table)).Dur("took", time.Since(start)).Msg("record store operation")
	}

	return wrap(KindTransaction, op, table, err)
}

func tableLock(table Table) []int {
	return []int{table.index()}
}

func unknownTable(op string, table Table) error {
	return &Error{Kind: KindUnknownTable, Op: op, Table: table}
}

// Read returns the table's document. A table that was never written reports
// found=false with a nil error.
func (s *Store) Read(ctx context.Context, table Table) (doc Document, found bool, err error) {
	if !table.Valid() {
		return nil, false, unknownTable("read", table)
	}
	err = s.do(ctx, "read", table, tableLock(table), func(ctx context.Context, b Backend) error {
		var getErr error
		doc, found, getErr = b.Get(ctx, table)
		return getErr
	})
	if err != nil {
		return nil, false, err
	}
	return doc, found, nil
}

// Write replaces the table's document with the JSON encoding of v.
// It returns once the new value is committed to storage.
func (s *Store) Write(ctx context.Context, table Table, v any) error {
	if !table.Valid() {
		return unknownTable("write", table)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return &Error{Kind: KindSerialization, Op: "write", Table: table, Err: err}
	}
	return s.do(ctx, "write", table, tableLock(table), func(ctx context.Context, b Backend) error {
		return b.Put(ctx, table, data)
	})
}

// WriteDocument replaces the table's document with raw JSON.
func (s *Store) WriteDocument(ctx context.Context, table Table, doc Document) error {
	if !table.Valid() {
		return unknownTable("write", table)
	}
	if !json.Valid(doc) {
		return &Error{Kind: KindSerialization, Op: "write", Table: table, Err: errInvalidJSON}
	}
	return s.Write(ctx, table, doc)
}

// ClearAll empties all four tables atomically: either every table is cleared or none is.
func (s *Store) ClearAll(ctx context.Context) error {
	all := make([]int, len(tables))
	for i := range all {
		all[i] = i
	}
	return s.do(ctx, "clear", "", all, func(ctx context.Context, b Backend) error {
		return b.ClearAll(ctx)
	})
}

// SchemaVersion reports the schema version recorded on disk
func (s *Store) SchemaVersion(ctx context.Context) (int, error) {
	var version int
	err := s.do(ctx, "schema_version", "", nil, func(ctx context.Context, b Backend) error {
		var vErr error
		version, vErr = b.SchemaVersion(ctx)
		return vErr
	})
	return version, err
}

// Close waits for running operations, closes the backend and makes the store
// permanently unusable. Closing an unopened or failed store is allowed.
func (s *Store) Close() error {
	s.mu.Lock()
	if s.state == StateOpening {
		ready := s.ready
		s.mu.Unlock()
		<-ready
		s.mu.Lock()
	}
	if s.state == StateClosed {
		s.mu.Unlock()
		return nil
	}
	backend := s.backend
	wasUnopened := s.state == StateUnopened
	s.state = StateClosed
	s.backend = nil
	if wasUnopened {
		close(s.ready)
	}
	s.mu.Unlock()

	// Drain operations that passed the state check before we flipped it.
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()

	if backend == nil {
		return nil
	}
	s.logger.Debug().Msg("closing record store")
	return wrap(KindTransaction, "close", "", backend.Close())
}
