package onboarding

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

type Deps struct {
	Store     DraftStore
	Gateway   Gateway
	Refresher IdentityRefresher
	Skills    SkillSource
	Seeder    DraftSeeder

	// IdleTTL drops a live wizard nobody touched for this long. Zero keeps
	// sessions until they are submitted or discarded.
	IdleTTL time.Duration
}

// Manager keeps one Wizard per candidate. The in-memory controller is the
// source of truth; the store only holds snapshots for resuming.
type Manager struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*Wizard
	deps     Deps
}

func NewManager(deps Deps) *Manager {
	if deps.Store == nil {
		deps.Store = NewMemoryDraftStore()
	}
	return &Manager{
		sessions: make(map[uuid.UUID]*Wizard),
		deps:     deps,
	}
}

// Mount returns the candidate's live wizard, creating it on first use. A new
// wizard resumes from a stored snapshot when there is one, otherwise it is
// seeded from the candidate's partial profile. A wizard left idle past
// IdleTTL is dropped together with its snapshot and the candidate starts
// over. Suggestions are fetched once per mount and degrade to an empty list
// on failure.
func (m *Manager) Mount(ctx context.Context, id Identity) *Wizard {
	m.mu.Lock()
	if w, ok := m.sessions[id.UserID]; ok && !w.Completed() {
		if !m.expired(w) {
			m.mu.Unlock()
			w.touch()
			return w
		}
		m.mu.Unlock()
		log.Printf("[Onboarding] session for %s expired, starting over", id.UserID)
		m.forget(ctx, id.UserID, w)
	} else {
		m.mu.Unlock()
	}

	step, draft := m.initialState(ctx, id.UserID)
	w := NewWizard(id, step, draft, m.fetchSuggestions(ctx), m.deps.Gateway, m.deps.Refresher)

	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.sessions[id.UserID]; ok && !existing.Completed() {
		return existing
	}
	m.sessions[id.UserID] = w
	return w
}

func (m *Manager) expired(w *Wizard) bool {
	if m.deps.IdleTTL <= 0 {
		return false
	}
	return w.idleSince(time.Now().Add(-m.deps.IdleTTL))
}

// Sweep drops every live wizard idle past IdleTTL and deletes its snapshot.
// It returns how many sessions were dropped.
func (m *Manager) Sweep(ctx context.Context) int {
	if m.deps.IdleTTL <= 0 {
		return 0
	}
	m.mu.Lock()
	stale := make(map[uuid.UUID]*Wizard)
	for userID, w := range m.sessions {
		if w.Completed() || m.expired(w) {
			stale[userID] = w
		}
	}
	m.mu.Unlock()

	for userID, w := range stale {
		m.forget(ctx, userID, w)
	}
	if len(stale) > 0 {
		log.Printf("[Onboarding] swept %d idle sessions", len(stale))
	}
	return len(stale)
}

// RunSweeper calls Sweep every interval until ctx is done.
func (m *Manager) RunSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			m.Sweep(ctx)
		}
	}
}

func (m *Manager) initialState(ctx context.Context, userID uuid.UUID) (Step, Draft) {
	snap, err := m.deps.Store.Load(ctx, userID)
	if err != nil {
		log.Printf("[Onboarding] load snapshot for %s: %v", userID, err)
	}
	if snap != nil && snap.Step.Valid() {
		return snap.Step, snap.Draft
	}

	if m.deps.Seeder == nil {
		return FirstStep, Draft{}
	}
	draft, err := m.deps.Seeder.SeedDraft(ctx, userID)
	if err != nil {
		log.Printf("[Onboarding] seed draft for %s: %v", userID, err)
		return FirstStep, Draft{}
	}
	return FirstStep, draft
}

func (m *Manager) fetchSuggestions(ctx context.Context) []Suggestion {
	if m.deps.Skills == nil {
		return []Suggestion{}
	}
	list, err := m.deps.Skills.SkillSuggestions(ctx)
	if err != nil {
		log.Printf("[Onboarding] skill suggestions unavailable: %v", err)
		return []Suggestion{}
	}
	return list
}

// Persist stores a snapshot of w. Failures are logged: the live wizard stays
// authoritative.
func (m *Manager) Persist(ctx context.Context, w *Wizard) {
	if w.Completed() {
		return
	}
	id := w.Identity()
	if err := m.deps.Store.Save(ctx, id.UserID, w.Snapshot()); err != nil {
		log.Printf("[Onboarding] persist draft for %s: %v", id.UserID, err)
	}
}

// Submit runs the final submission and, when it succeeds, drops the session
// and its snapshot.
func (m *Manager) Submit(ctx context.Context, w *Wizard) (Identity, error) {
	refreshed, err := w.SubmitFinal(ctx)
	if err != nil {
		return Identity{}, err
	}
	m.forget(ctx, refreshed.UserID, w)
	return refreshed, nil
}

// Discard abandons the candidate's session (navigation away). It is refused
// while a submission is in flight.
func (m *Manager) Discard(ctx context.Context, userID uuid.UUID) error {
	m.mu.Lock()
	w, ok := m.sessions[userID]
	m.mu.Unlock()
	if ok && w.Submitting() {
		return ErrSubmissionInFlight
	}
	m.forget(ctx, userID, w)
	return nil
}

func (m *Manager) forget(ctx context.Context, userID uuid.UUID, w *Wizard) {
	m.mu.Lock()
	if current, ok := m.sessions[userID]; ok && (w == nil || current == w) {
		delete(m.sessions, userID)
	}
	m.mu.Unlock()

	if err := m.deps.Store.Delete(ctx, userID); err != nil {
		log.Printf("[Onboarding] delete draft for %s: %v", userID, err)
	}
}

// Active reports how many wizards are currently mounted.
func (m *Manager) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
