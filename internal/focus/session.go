// ABOUTME: Session holds the in-memory profile, tasks, chat and plan for one user
// ABOUTME: Mutations apply in memory first, then persist through a chained background Save
package focus

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/harper/focusflow/internal/llm"
	"github.com/harper/focusflow/internal/models"
	"github.com/harper/focusflow/internal/recordstore"
	"github.com/rs/zerolog"
)

var (
	ErrNotOnboarded = errors.New("profile is not set up; run onboarding first")
	ErrTaskNotFound = errors.New("task not found")
	ErrNoGenerator  = errors.New("no model provider configured (set OPENAI_API_KEY)")
	ErrNoResult     = errors.New("task has no AI result to remember")
	ErrEmptyTitle   = errors.New("task title is required")
	ErrEmptyMessage = errors.New("message is empty")
	ErrEmptyGoal    = errors.New("goal is empty")
)

// Snapshot is a copy of the session state
type Snapshot struct {
	Profile *models.Profile
	Tasks   models.Tasks
	Chat    []models.ChatMessage
	Plan    *models.StrategicPlan
}

// Option configures a Session
type Option func(*Session)

// WithGenerator sets the model used for generation calls
func WithGenerator(g llm.Generator) Option {
	return func(s *Session) { s.gen = g }
}

// WithLogger sets the session logger
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Session) {
		s.logger = logger.With().Str("component", "session").Logger()
	}
}

// WithClock overrides time.Now (for testing)
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// Session is safe for concurrent use.
type Session struct {
	records *recordstore.Records
	gen     llm.Generator
	logger  zerolog.Logger
	now     func() time.Time

	mu       sync.Mutex
	profile  *models.Profile
	tasks    models.Tasks
	chat     []models.ChatMessage
	plan     *models.StrategicPlan
	versions map[recordstore.Table]uint64
	tails    map[recordstore.Table]*Save
	saved    map[recordstore.Table]func() // restores the last committed value
	pending  int
}

// NewSession creates an empty session over records. Call Hydrate to load saved state.
func NewSession(records *recordstore.Records, opts ...Option) *Session {
	s := &Session{
		records:  records,
		logger:   zerolog.Nop(),
		now:      time.Now,
		tasks:    models.Tasks{},
		chat:     []models.ChatMessage{},
		versions: make(map[recordstore.Table]uint64),
		tails:    make(map[recordstore.Table]*Save),
		saved:    make(map[recordstore.Table]func()),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.markSavedLocked()
	return s
}

// Hydrate loads all four tables concurrently. Tables that fail to load are left
// empty and their errors joined; an open failure leaves a fresh-install state.
func (s *Session) Hydrate(ctx context.Context) (Snapshot, error) {
	var (
		wg      sync.WaitGroup
		profile *models.Profile
		tasks   models.Tasks
		chat    []models.ChatMessage
		plan    *models.StrategicPlan
		errs    [4]error
	)
	wg.Add(4)
	go func() { defer wg.Done(); profile, errs[0] = s.records.Profile(ctx) }()
	go func() { defer wg.Done(); tasks, errs[1] = s.records.Tasks(ctx) }()
	go func() { defer wg.Done(); chat, errs[2] = s.records.ChatHistory(ctx) }()
	go func() { defer wg.Done(); plan, errs[3] = s.records.StrategicPlan(ctx) }()
	wg.Wait()

	if tasks == nil {
		tasks = models.Tasks{}
	}
	if chat == nil {
		chat = []models.ChatMessage{}
	}

	s.mu.Lock()
	s.profile, s.tasks, s.chat, s.plan = profile, tasks, chat, plan
	s.markSavedLocked()
	snap := s.snapshotLocked()
	s.mu.Unlock()

	err := errors.Join(errs[:]...)
	if err != nil {
		s.logger.Warn().Err(err).Msg("hydrate incomplete")
		if errors.Is(err, recordstore.ErrOpen) {
			return snap, fmt.Errorf("record store unavailable, starting fresh: %w", err)
		}
	}
	return snap, err
}

// Snapshot returns a copy of the current in-memory state
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	snap := Snapshot{
		Profile: s.profile.Clone(),
		Tasks:   s.tasks.Clone(),
		Chat:    append([]models.ChatMessage{}, s.chat...),
	}
	if s.plan != nil {
		p := clonePlan(*s.plan)
		snap.Plan = &p
	}
	return snap
}

// NeedsOnboarding reports whether no completed profile exists
func (s *Session) NeedsOnboarding() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile == nil || !s.profile.IsSetup
}

// Pending returns how many saves have not settled
func (s *Session) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// Flush waits for every save issued so far and reports their failures
func (s *Session) Flush(ctx context.Context) error {
	s.mu.Lock()
	tails := make([]*Save, 0, len(s.tails))
	for _, sv := range s.tails {
		tails = append(tails, sv)
	}
	s.mu.Unlock()

	var errs []error
	for _, sv := range tails {
		if err := sv.Wait(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// markSavedLocked records the current in-memory state as what the store holds.
func (s *Session) markSavedLocked() {
	profile, tasks, chat, plan := s.profile, s.tasks, s.chat, s.plan
	s.saved[recordstore.TableProfile] = func() { s.profile = profile }
	s.saved[recordstore.TableTasks] = func() { s.tasks = tasks }
	s.saved[recordstore.TableChat] = func() { s.chat = chat }
	s.saved[recordstore.TablePlan] = func() { s.plan = plan }
}

// persistLocked writes value to table in the background after any earlier save
// to the same table. apply sets the in-memory table back to value; it becomes
// the table's saved state once the write commits. If the write fails and no
// later mutation has touched the table, the last saved state is restored, which
// skips over earlier saves that failed too. Callers hold s.mu.
func (s *Session) persistLocked(table recordstore.Table, value any, apply func()) *Save {
	s.versions[table]++
	version := s.versions[table]
	prev := s.tails[table]
	sv := newSave(table)
	s.tails[table] = sv
	s.pending++

	go func() {
		if prev != nil {
			<-prev.done
		}
		err := s.records.Store().Write(context.Background(), table, value)

		s.mu.Lock()
		switch {
		case err == nil:
			s.saved[table] = apply
		case s.versions[table] == version:
			if restore := s.saved[table]; restore != nil {
				restore()
			}
			s.logger.Warn().Err(err).Stack().Str("table", string(table)).Msg("save failed, rolled back")
		default:
			s.logger.Warn().Err(err).Stack().Str("table", string(table)).Msg("save failed, superseded")
		}
		s.pending--
		if s.tails[table] == sv {
			delete(s.tails, table)
		}
		s.mu.Unlock()

		sv.finish(err)
	}()
	return sv
}

func (s *Session) saveProfileLocked(next *models.Profile) *Save {
	s.profile = next
	return s.persistLocked(recordstore.TableProfile, next.Clone(), func() { s.profile = next })
}

func (s *Session) saveTasksLocked(next models.Tasks) *Save {
	s.tasks = next
	return s.persistLocked(recordstore.TableTasks, next.Clone(), func() { s.tasks = next })
}

func (s *Session) saveChatLocked(next []models.ChatMessage) *Save {
	s.chat = next
	return s.persistLocked(recordstore.TableChat, append([]models.ChatMessage{}, next...), func() { s.chat = next })
}

func (s *Session) savePlanLocked(next *models.StrategicPlan) *Save {
	s.plan = next
	snapshot := clonePlan(*next)
	return s.persistLocked(recordstore.TablePlan, &snapshot, func() { s.plan = next })
}

func clonePlan(p models.StrategicPlan) models.StrategicPlan {
	p.Milestones = append([]models.Milestone(nil), p.Milestones...)
	p.Resources = append([]models.Resource(nil), p.Resources...)
	return p
}

// currentProfile returns a copy of the set-up profile or ErrNotOnboarded.
func (s *Session) currentProfile() (*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.profile == nil || !s.profile.IsSetup {
		return nil, ErrNotOnboarded
	}
	return s.profile.Clone(), nil
}

func (s *Session) generator() (llm.Generator, error) {
	if s.gen == nil {
		return nil, ErrNoGenerator
	}
	return s.gen, nil
}

// Reset waits for pending saves, clears every table, then empties the session.
func (s *Session) Reset(ctx context.Context) error {
	if err := s.Flush(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("pending saves failed before reset")
	}
	if err := s.records.ClearData(ctx); err != nil {
		return fmt.Errorf("failed to clear data: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = nil
	s.tasks = models.Tasks{}
	s.chat = []models.ChatMessage{}
	s.plan = nil
	s.markSavedLocked()
	// Late rollbacks must not resurrect cleared state.
	for _, t := range recordstore.Tables() {
		s.versions[t]++
	}
	s.logger.Info().Msg("all data cleared")
	return nil
}
