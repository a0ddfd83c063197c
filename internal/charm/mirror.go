// ABOUTME: Mirror copies the four record store tables to and from charm KV
// ABOUTME: The local SQLite store stays authoritative; the mirror is an explicit push/pull
package charm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/harper/focusflow/internal/recordstore"
	"github.com/harper/focusflow/internal/util"
	"github.com/rs/zerolog"
)

// KeyPrefix namespaces every key the mirror writes
const KeyPrefix = "focusflow:"

// Key returns the charm key for a table
func Key(table recordstore.Table) string {
	return KeyPrefix + string(table)
}

// MirrorOptions tunes sync retries
type MirrorOptions struct {
	Retries    int
	RetryDelay time.Duration
	Logger     zerolog.Logger
}

// Mirror syncs a Store with a charm KV database
type Mirror struct {
	kv     KV
	store  *recordstore.Store
	opts   MirrorOptions
	logger zerolog.Logger
	mu     sync.Mutex
}

// TableStatus compares one table locally and remotely
type TableStatus struct {
	Table  recordstore.Table `json:"table" yaml:"table"`
	Local  bool              `json:"local" yaml:"local"`
	Remote bool              `json:"remote" yaml:"remote"`
	InSync bool              `json:"inSync" yaml:"inSync"`
}

// NewMirror creates a mirror between store and db
func NewMirror(db KV, store *recordstore.Store, opts MirrorOptions) *Mirror {
	return &Mirror{
		kv:     db,
		store:  store,
		opts:   opts,
		logger: opts.Logger.With().Str("component", "charm").Logger(),
	}
}

// Close closes the KV database
func (m *Mirror) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.kv.Close()
}

// sync pushes and pulls with the charm server, retrying transient failures
func (m *Mirror) sync(ctx context.Context) error {
	err := util.Retry(ctx, m.opts.Retries+1, m.opts.RetryDelay, func(attempt int) error {
		if attempt > 0 {
			m.logger.Debug().Int("attempt", attempt+1).Msg("retrying charm sync")
		}
		return m.kv.Sync()
	})
	if err != nil {
		return fmt.Errorf("charm sync failed: %w", err)
	}
	return nil
}

// remoteKeys returns the mirror's keys currently in the KV
func (m *Mirror) remoteKeys() (map[string]bool, error) {
	keys, err := m.kv.Keys()
	if err != nil {
		return nil, fmt.Errorf("failed to list charm keys: %w", err)
	}
	out := make(map[string]bool)
	for _, k := range keys {
		if s := string(k); strings.HasPrefix(s, KeyPrefix) {
			out[s] = true
		}
	}
	return out, nil
}

// Push writes every local table to the KV, deletes remote copies of absent
// tables, then syncs. It returns the number of tables written.
func (m *Mirror) Push(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	remote, err := m.remoteKeys()
	if err != nil {
		return 0, err
	}

	written := 0
	for _, table := range recordstore.Tables() {
		doc, found, err := m.store.Read(ctx, table)
		if err != nil {
			return written, err
		}
		key := Key(table)
		switch {
		case found:
			if err := m.kv.Set([]byte(key), doc); err != nil {
				return written, fmt.Errorf("failed to set %s: %w", key, err)
			}
			written++
		case remote[key]:
			if err := m.kv.Delete([]byte(key)); err != nil {
				return written, fmt.Errorf("failed to delete %s: %w", key, err)
			}
		}
	}

	if err := m.sync(ctx); err != nil {
		return written, err
	}
	m.logger.Info().Int("tables", written).Msg("pushed to charm")
	return written, nil
}

// Pull syncs, then replaces local tables with their remote copies. Tables with
// no remote copy are left alone. It returns the number of tables written.
func (m *Mirror) Pull(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.sync(ctx); err != nil {
		return 0, err
	}
	remote, err := m.remoteKeys()
	if err != nil {
		return 0, err
	}

	written := 0
	for _, table := range recordstore.Tables() {
		key := Key(table)
		if !remote[key] {
			continue
		}
		doc, err := m.kv.Get([]byte(key))
		if err != nil {
			return written, fmt.Errorf("failed to get %s: %w", key, err)
		}
		if !json.Valid(doc) {
			m.logger.Warn().Str("table", string(table)).Msg("skipping invalid remote document")
			continue
		}
		if err := m.store.WriteDocument(ctx, table, doc); err != nil {
			return written, err
		}
		written++
	}
	m.logger.Info().Int("tables", written).Msg("pulled from charm")
	return written, nil
}

// Status compares local and remote tables without syncing
func (m *Mirror) Status(ctx context.Context) ([]TableStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	remote, err := m.remoteKeys()
	if err != nil {
		return nil, err
	}

	out := make([]TableStatus, 0, len(recordstore.Tables()))
	for _, table := range recordstore.Tables() {
		local, found, err := m.store.Read(ctx, table)
		if err != nil {
			return nil, err
		}
		st := TableStatus{Table: table, Local: found, Remote: remote[Key(table)]}
		switch {
		case st.Local && st.Remote:
			doc, err := m.kv.Get([]byte(Key(table)))
			if err != nil {
				return nil, fmt.Errorf("failed to get %s: %w", Key(table), err)
			}
			st.InSync = bytes.Equal(bytes.TrimSpace(doc), bytes.TrimSpace(local))
		case !st.Local && !st.Remote:
			st.InSync = true
		}
		out = append(out, st)
	}
	return out, nil
}

// Wipe deletes every mirrored key and syncs the deletion
func (m *Mirror) Wipe(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	remote, err := m.remoteKeys()
	if err != nil {
		return 0, err
	}
	for key := range remote {
		if err := m.kv.Delete([]byte(key)); err != nil {
			return 0, fmt.Errorf("failed to delete %s: %w", key, err)
		}
	}
	if err := m.sync(ctx); err != nil {
		return len(remote), err
	}
	m.logger.Info().Int("keys", len(remote)).Msg("wiped charm mirror")
	return len(remote), nil
}
