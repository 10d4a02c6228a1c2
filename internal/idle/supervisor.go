// Package idle watches open cooking sessions in the background. Active
// sessions left untouched get a spoken nudge; sessions left open for too
// long are abandoned so they stop counting as in progress.
package idle

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hammamikhairi/simmr/internal/domain"
	"github.com/hammamikhairi/simmr/internal/logger"
)

// Abandoner closes a session that is still idle. lastSeen is the UpdatedAt
// the supervisor observed; a session touched since then must be left open.
// The engine satisfies it.
type Abandoner interface {
	AbandonIdle(ctx context.Context, sessionID string, lastSeen time.Time) (bool, error)
}

// Option configures the supervisor.
type Option func(*Supervisor)

// WithTickInterval sets how often the supervisor checks sessions.
func WithTickInterval(d time.Duration) Option {
	return func(s *Supervisor) {
		s.tickInterval = d
	}
}

// WithNudgeAfter sets how long an active session may sit untouched before
// the cook is nudged.
func WithNudgeAfter(d time.Duration) Option {
	return func(s *Supervisor) {
		s.nudgeAfter = d
	}
}

// WithNudgeCooldown sets the minimum time between nudges for one session.
func WithNudgeCooldown(d time.Duration) Option {
	return func(s *Supervisor) {
		s.nudgeCooldown = d
	}
}

// WithMaxNudges sets how many nudges a session gets before the supervisor
// goes quiet.
func WithMaxNudges(n int) Option {
	return func(s *Supervisor) {
		s.maxNudges = n
	}
}

// WithAbandonAfter sets how long an active or paused session may sit
// untouched before it is abandoned. Zero disables abandoning.
func WithAbandonAfter(d time.Duration) Option {
	return func(s *Supervisor) {
		s.abandonAfter = d
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Supervisor) {
		s.now = now
	}
}

type nudgeState struct {
	count     int
	last      time.Time
	updatedAt time.Time
}

// Supervisor periodically scans open sessions.
type Supervisor struct {
	store     domain.SessionStore
	abandoner Abandoner
	notifier  domain.Notifier // nil disables nudges
	log       *logger.Logger
	now       func() time.Time

	tickInterval  time.Duration
	nudgeAfter    time.Duration
	nudgeCooldown time.Duration
	maxNudges     int
	abandonAfter  time.Duration

	mu      sync.Mutex
	nudges  map[string]*nudgeState
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// New creates an idle supervisor.
func New(store domain.SessionStore, abandoner Abandoner, notifier domain.Notifier, log *logger.Logger, opts ...Option) *Supervisor {
	s := &Supervisor{
		store:         store,
		abandoner:     abandoner,
		notifier:      notifier,
		log:           log,
		now:           time.Now,
		tickInterval:  30 * time.Second,
		nudgeAfter:    10 * time.Minute,
		nudgeCooldown: 5 * time.Minute,
		maxNudges:     3,
		abandonAfter:  12 * time.Hour,
		nudges:        make(map[string]*nudgeState),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start begins the background loop. Non-blocking.
func (s *Supervisor) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		s.log.Warn("idle supervisor already running")
		return
	}

	childCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.running = true
	s.done = make(chan struct{})

	go s.loop(childCtx, s.done)

	s.log.Info("idle supervisor started (tick=%s, nudge=%s, abandon=%s)", s.tickInterval, s.nudgeAfter, s.abandonAfter)
}

// Stop shuts the loop down and waits for it to exit.
func (s *Supervisor) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.cancel()
	s.running = false
	done := s.done
	s.mu.Unlock()

	<-done
	s.log.Info("idle supervisor stopped")
}

func (s *Supervisor) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Tick runs one scan. Exported so callers and tests can drive it directly.
func (s *Supervisor) Tick(ctx context.Context) {
	sessions, err := s.store.ListActive(ctx)
	if err != nil {
		s.log.Error("idle: listing open sessions: %v", err)
		return
	}

	now := s.now()
	seen := make(map[string]bool, len(sessions))
	for _, session := range sessions {
		seen[session.ID] = true
		s.check(ctx, session, now)
	}

	s.mu.Lock()
	for id := range s.nudges {
		if !seen[id] {
			delete(s.nudges, id)
		}
	}
	s.mu.Unlock()
}

func (s *Supervisor) check(ctx context.Context, session *domain.Session, now time.Time) {
	idleFor := now.Sub(session.UpdatedAt)

	if s.abandonAfter > 0 && idleFor >= s.abandonAfter {
		abandoned, err := s.abandoner.AbandonIdle(ctx, session.ID, session.UpdatedAt)
		if err != nil {
			s.log.Error("idle: abandoning session %s: %v", session.ID, err)
			return
		}
		if abandoned {
			s.log.Info("idle: abandoned session %s after %s", session.ID, idleFor.Round(time.Minute))
			s.forget(session.ID)
		}
		return
	}

	if s.notifier == nil || session.Status != domain.SessionActive || idleFor < s.nudgeAfter {
		return
	}

	s.mu.Lock()
	st, ok := s.nudges[session.ID]
	if !ok || !st.updatedAt.Equal(session.UpdatedAt) {
		// The cook moved since the last nudge; start over.
		st = &nudgeState{updatedAt: session.UpdatedAt}
		s.nudges[session.ID] = st
	}
	if st.count >= s.maxNudges || (!st.last.IsZero() && now.Sub(st.last) < s.nudgeCooldown) {
		s.mu.Unlock()
		return
	}
	st.count++
	st.last = now
	level := st.count
	s.mu.Unlock()

	if err := s.notifier.Notify(ctx, nudgeMessage(session, level)); err != nil {
		s.log.Error("idle: nudging session %s: %v", session.ID, err)
	}
}

func (s *Supervisor) forget(id string) {
	s.mu.Lock()
	delete(s.nudges, id)
	s.mu.Unlock()
}

// nudgeMessage gets shorter with each repeat.
func nudgeMessage(session *domain.Session, level int) string {
	step := session.CurrentStepIndex + 1
	switch level {
	case 1:
		return fmt.Sprintf("Still with me? We're on step %d of %s. Say next when you're ready.", step, session.RecipeTitle)
	case 2:
		return fmt.Sprintf("%s is waiting on step %d.", session.RecipeTitle, step)
	default:
		return "Say pause if you need a break."
	}
}
