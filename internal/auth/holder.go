package auth

import (
	"context"
	"sync"
	"time"

	"github.com/hammamikhairi/simmr/internal/domain"
	"github.com/hammamikhairi/simmr/internal/logger"
)

// State is a snapshot of who is signed in.
type State struct {
	Session  *domain.AuthSession
	Profile  *domain.User
	Loading  bool
	LoggedIn bool
}

// ProfileLoader fetches the account behind a session.
type ProfileLoader func(ctx context.Context, session *domain.AuthSession) (*domain.User, error)

// Holder owns the signed-in state and broadcasts every change to its
// subscribers. Setting a session triggers a background profile load.
type Holder struct {
	mu     sync.Mutex
	state  State
	subs   map[int]chan State
	nextID int
	closed bool

	loader ProfileLoader
	now    func() time.Time
	log    *logger.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// HolderOption configures a Holder.
type HolderOption func(*Holder)

// WithProfileLoader sets the function used to load the profile after a
// session change.
func WithProfileLoader(fn ProfileLoader) HolderOption {
	return func(h *Holder) { h.loader = fn }
}

// WithClock overrides the time source used for expiry checks.
func WithClock(now func() time.Time) HolderOption {
	return func(h *Holder) { h.now = now }
}

// NewHolder creates a signed-out holder. Call Close when done.
func NewHolder(log *logger.Logger, opts ...HolderOption) *Holder {
	ctx, cancel := context.WithCancel(context.Background())
	h := &Holder{
		subs:   make(map[int]chan State),
		now:    time.Now,
		log:    log,
		ctx:    ctx,
		cancel: cancel,
	}
	for _, o := range opts {
		o(h)
	}
	return h
}

// Get returns the current state.
func (h *Holder) Get() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// Subscribe returns a channel that receives the current state right away
// and then every change. Slow readers only see the latest state. The
// returned func unsubscribes and closes the channel.
func (h *Holder) Subscribe() (<-chan State, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan State, 1)
	if h.closed {
		close(ch)
		return ch, func() {}
	}

	id := h.nextID
	h.nextID++
	h.subs[id] = ch
	ch <- h.state

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if c, ok := h.subs[id]; ok {
				delete(h.subs, id)
				close(c)
			}
		})
	}
}

// Set signs in with the given session and starts loading its profile.
func (h *Holder) Set(session *domain.AuthSession) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}

	h.state = State{
		Session:  session,
		LoggedIn: session != nil,
		Loading:  session != nil && h.loader != nil,
	}
	h.broadcastLocked()

	if session != nil && h.loader != nil {
		h.wg.Add(1)
		go h.loadProfile(session)
	}
}

// Clear signs out.
func (h *Holder) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.state = State{}
	h.broadcastLocked()
}

// Restore applies a session read back from disk. Expired or missing
// sessions sign out instead. It reports whether a session was restored.
func (h *Holder) Restore(session *domain.AuthSession) bool {
	if session == nil || session.Expired(h.now()) {
		h.log.Debug("no valid saved session")
		h.Clear()
		return false
	}
	h.Set(session)
	return true
}

// Close stops profile loads and closes every subscription.
func (h *Holder) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	for id, ch := range h.subs {
		delete(h.subs, id)
		close(ch)
	}
	h.mu.Unlock()

	h.cancel()
	h.wg.Wait()
}

func (h *Holder) loadProfile(session *domain.AuthSession) {
	defer h.wg.Done()

	profile, err := h.loader(h.ctx, session)
	if err != nil {
		h.log.Warn("loading profile for %s: %v", session.UserID, err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	// A newer Set or Clear supersedes this load.
	if h.closed || h.state.Session != session {
		return
	}
	h.state.Profile = profile
	h.state.Loading = false
	h.broadcastLocked()
}

// broadcastLocked delivers the state to every subscriber, replacing any
// value still sitting unread in a channel. Callers hold h.mu.
func (h *Holder) broadcastLocked() {
	for _, ch := range h.subs {
		select {
		case ch <- h.state:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- h.state
		}
	}
}
