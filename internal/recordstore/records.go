// ABOUTME: Typed access to the four record documents
// ABOUTME: Load/Save decode and encode JSON; Records wraps them per table
package recordstore

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/harper/focusflow/internal/models"
)

// Load reads table and decodes its document into a T.
func Load[T any](ctx context.Context, s *Store, table Table) (T, bool, error) {
	var v T
	doc, found, err := s.Read(ctx, table)
	if err != nil || !found {
		return v, false, err
	}
	if err := json.Unmarshal(doc, &v); err != nil {
		return v, false, &Error{Kind: KindSerialization, Op: "read", Table: table, Err: err}
	}
	return v, true, nil
}

// Save encodes v and replaces table's document with it.
func Save[T any](ctx context.Context, s *Store, table Table, v T) error {
	return s.Write(ctx, table, v)
}

// Records is the typed view of the store used by the application
type Records struct {
	store *Store
}

// NewRecords wraps a Store
func NewRecords(s *Store) *Records {
	return &Records{store: s}
}

// Store returns the underlying record store
func (r *Records) Store() *Store {
	return r.store
}

var errNilDocument = errors.New("document is nil")

// Profile returns the saved profile, or nil if onboarding never completed.
// A stored JSON null counts as absent.
func (r *Records) Profile(ctx context.Context) (*models.Profile, error) {
	p, _, err := Load[*models.Profile](ctx, r.store, TableProfile)
	return p, err
}

func (r *Records) SaveProfile(ctx context.Context, p *models.Profile) error {
	if p == nil {
		return &Error{Kind: KindSerialization, Op: "write", Table: TableProfile, Err: errNilDocument}
	}
	return Save(ctx, r.store, TableProfile, p)
}

// Tasks returns the task list, empty when none was saved.
func (r *Records) Tasks(ctx context.Context) (models.Tasks, error) {
	tasks, _, err := Load[models.Tasks](ctx, r.store, TableTasks)
	if err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = models.Tasks{}
	}
	return tasks, nil
}

func (r *Records) SaveTasks(ctx context.Context, tasks models.Tasks) error {
	if tasks == nil {
		tasks = models.Tasks{}
	}
	return Save(ctx, r.store, TableTasks, tasks)
}

// ChatHistory returns the transcript, empty when none was saved.
func (r *Records) ChatHistory(ctx context.Context) ([]models.ChatMessage, error) {
	msgs, _, err := Load[[]models.ChatMessage](ctx, r.store, TableChat)
	if err != nil {
		return nil, err
	}
	if msgs == nil {
		msgs = []models.ChatMessage{}
	}
	return msgs, nil
}

func (r *Records) SaveChatHistory(ctx context.Context, msgs []models.ChatMessage) error {
	if msgs == nil {
		msgs = []models.ChatMessage{}
	}
	return Save(ctx, r.store, TableChat, msgs)
}

// StrategicPlan returns the saved plan, or nil if none was generated.
func (r *Records) StrategicPlan(ctx context.Context) (*models.StrategicPlan, error) {
	plan, _, err := Load[*models.StrategicPlan](ctx, r.store, TablePlan)
	return plan, err
}

func (r *Records) SaveStrategicPlan(ctx context.Context, plan *models.StrategicPlan) error {
	if plan == nil {
		return &Error{Kind: KindSerialization, Op: "write", Table: TablePlan, Err: errNilDocument}
	}
	return Save(ctx, r.store, TablePlan, plan)
}

// ClearData removes every document from every table.
func (r *Records) ClearData(ctx context.Context) error {
	return r.store.ClearAll(ctx)
}
