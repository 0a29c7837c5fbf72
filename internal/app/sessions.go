package app

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"reviewflow/internal/adapters/observability"
	"reviewflow/internal/domain"
)

// Session is one open review flow. Its wizard is nil until the subject is
// known, which for a generic entry means until the user picks a kind.
type Session struct {
	ID    string
	Entry Entry

	mu        sync.Mutex
	author    string
	wizard    *Wizard
	nav       *RouteRecorder
	lastSeen  time.Time
	cancelled bool
}

func (s *Session) Wizard() *Wizard {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wizard
}

// NeedsChoice reports whether the user still has to pick a subject kind.
func (s *Session) NeedsChoice() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wizard == nil && !s.cancelled
}

// Cancelled reports whether the session was left from the kind chooser.
func (s *Session) Cancelled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancelled
}

// Route is the exit route the wizard navigated to, if any.
func (s *Session) Route() string { return s.nav.Route() }

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idle(now time.Time, ttl time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ttl > 0 && now.Sub(s.lastSeen) > ttl
}

// expired is idle or finished. Finished sessions stay readable until a sweep.
func (s *Session) expired(now time.Time, ttl time.Duration) bool {
	if s.idle(now, ttl) {
		return true
	}
	w := s.Wizard()
	return w != nil && w.State().Terminal()
}

type SessionOptions struct {
	TTL                 time.Duration
	RequireAspectRating bool
	Strict              bool
}

// Sessions keeps the open wizards of this process.
type Sessions struct {
	resolver *SubjectResolver
	reviews  domain.ReviewStore
	opts     SessionOptions
	now      func() time.Time

	mu    sync.Mutex
	items map[string]*Session
}

func NewSessions(r *SubjectResolver, reviews domain.ReviewStore, opts SessionOptions) *Sessions {
	return &Sessions{
		resolver: r,
		reviews:  reviews,
		opts:     opts,
		now:      time.Now,
		items:    map[string]*Session{},
	}
}

// Start resolves the entry and opens a session. SubjectNotFound and
// conflicting entries open nothing.
func (m *Sessions) Start(ctx context.Context, e Entry, author string) (*Session, error) {
	res, err := m.resolver.Resolve(ctx, e)
	if err != nil {
		return nil, err
	}
	s := &Session{
		ID:       uuid.NewString(),
		Entry:    e,
		author:   author,
		nav:      &RouteRecorder{},
		lastSeen: m.now(),
	}
	if !res.NeedsChoice {
		w, err := m.newWizard(*res.Subject, s)
		if err != nil {
			return nil, err
		}
		s.wizard = w
	}

	m.mu.Lock()
	m.items[s.ID] = s
	n := len(m.items)
	m.mu.Unlock()

	observability.ActiveSessions.Set(float64(n))
	log.Info().Str("session", s.ID).Bool("needs_choice", res.NeedsChoice).Msg("review session started")
	return s, nil
}

// Get returns a live session and marks it as used. A session idle past the
// TTL is dropped instead.
func (m *Sessions) Get(id string) (*Session, bool) {
	now := m.now()
	m.mu.Lock()
	s, ok := m.items[id]
	if ok && s.idle(now, m.opts.TTL) {
		delete(m.items, id)
		ok = false
	}
	n := len(m.items)
	m.mu.Unlock()
	if !ok {
		observability.ActiveSessions.Set(float64(n))
		return nil, false
	}
	s.touch(now)
	return s, true
}

// Cancel leaves the flow and drops the session. Before a kind is chosen
// there is no draft to discard; the session just navigates back.
func (m *Sessions) Cancel(id string) (*Session, error) {
	s, ok := m.Get(id)
	if !ok {
		return nil, domain.ErrNotFound
	}
	if w := s.Wizard(); w != nil {
		if err := w.Cancel(); err != nil {
			return nil, err
		}
	} else {
		s.mu.Lock()
		s.cancelled = true
		s.mu.Unlock()
		s.nav.NavigateBack()
	}
	m.drop(id)
	return s, nil
}

func (m *Sessions) drop(id string) {
	m.mu.Lock()
	delete(m.items, id)
	n := len(m.items)
	m.mu.Unlock()
	observability.ActiveSessions.Set(float64(n))
}

// ChooseKind seeds the wizard of a generic-entry session.
func (m *Sessions) ChooseKind(id string, kind domain.SubjectKind) (*Session, error) {
	s, ok := m.Get(id)
	if !ok {
		return nil, domain.ErrNotFound
	}
	sub, err := m.resolver.ChooseKind(kind)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancelled {
		return nil, domain.ErrWizardClosed
	}
	if s.wizard != nil {
		return nil, domain.ErrSubjectResolved
	}
	w, err := m.newWizard(sub, s)
	if err != nil {
		return nil, err
	}
	s.wizard = w
	return s, nil
}

// Sweep drops finished and idle sessions and returns how many went.
func (m *Sessions) Sweep() int {
	now := m.now()
	m.mu.Lock()
	dropped := 0
	for id, s := range m.items {
		if s.expired(now, m.opts.TTL) {
			delete(m.items, id)
			dropped++
		}
	}
	n := len(m.items)
	m.mu.Unlock()

	observability.ActiveSessions.Set(float64(n))
	if dropped > 0 {
		log.Debug().Int("dropped", dropped).Int("open", n).Msg("review sessions swept")
	}
	return dropped
}

func (m *Sessions) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

func (m *Sessions) newWizard(sub domain.Subject, s *Session) (*Wizard, error) {
	return NewWizard(sub, m.reviews, WizardOptions{
		Author:              s.author,
		RequireAspectRating: m.opts.RequireAspectRating,
		Strict:              m.opts.Strict,
		Navigator:           s.nav,
	})
}
