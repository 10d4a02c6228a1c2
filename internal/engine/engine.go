// Package engine implements the cook-along session state machine: a user
// walks through a recipe's steps by voice or text, hearing each step's
// story in the chosen tone.
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hammamikhairi/simmr/internal/domain"
	"github.com/hammamikhairi/simmr/internal/logger"
)

// Option configures the engine.
type Option func(*Engine)

// WithNarrator sets the narrator used for finished-dish summaries.
func WithNarrator(n domain.Narrator) Option {
	return func(e *Engine) {
		e.narrator = n
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// Engine manages cook-along sessions. It depends only on interfaces and
// is fully testable with in-memory implementations.
type Engine struct {
	recipes  domain.RecipeSource
	store    domain.SessionStore
	narrator domain.Narrator
	log      *logger.Logger
	now      func() time.Time

	// mu serializes load-modify-save cycles so concurrent commands on the
	// same session cannot interleave.
	mu sync.Mutex
}

// New creates a cook-along engine with the given dependencies and options.
func New(recipes domain.RecipeSource, store domain.SessionStore, log *logger.Logger, opts ...Option) *Engine {
	e := &Engine{
		recipes: recipes,
		store:   store,
		log:     log,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// StartSession begins a cook-along for the given recipe. An empty or
// unknown tone falls back to the recipe's tone, then to the default tone.
func (e *Engine) StartSession(ctx context.Context, userID, recipeID string, tone domain.StoryTone) (*domain.Session, error) {
	recipe, err := e.recipes.Get(ctx, recipeID)
	if err != nil {
		return nil, fmt.Errorf("getting recipe: %w", err)
	}
	if len(recipe.Steps) == 0 {
		return nil, fmt.Errorf("recipe %q has no steps: %w", recipe.ID, domain.ErrNoMoreSteps)
	}

	if !tone.Valid() {
		tone = recipe.StoryTone
	}
	if !tone.Valid() {
		tone = domain.DefaultTone
	}

	now := e.now()
	session := &domain.Session{
		ID:               uuid.NewString(),
		UserID:           userID,
		RecipeID:         recipe.ID,
		RecipeTitle:      recipe.Title,
		Tone:             tone,
		CurrentStepIndex: 0,
		StepStates:       make(map[int]*domain.StepState, len(recipe.Steps)),
		Status:           domain.SessionActive,
		StartedAt:        now,
		UpdatedAt:        now,
	}

	for i := range recipe.Steps {
		session.StepStates[i] = &domain.StepState{Status: domain.StepPending}
	}
	session.StepStates[0].Status = domain.StepActive
	session.StepStates[0].StartedAt = now

	if err := e.store.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("saving session: %w", err)
	}

	e.log.Info("started session %s for recipe %q (tone=%s)", session.ID, recipe.Title, tone)
	return session, nil
}

// CurrentStep returns the current step and its state.
func (e *Engine) CurrentStep(ctx context.Context, sessionID string) (*domain.Step, *domain.StepState, error) {
	session, recipe, err := e.load(ctx, sessionID)
	if err != nil {
		return nil, nil, err
	}

	idx := session.CurrentStepIndex
	if idx >= len(recipe.Steps) {
		return nil, nil, domain.ErrNoMoreSteps
	}
	return &recipe.Steps[idx], stepState(session, idx), nil
}

// Advance completes the current step and moves to the next one. Advancing
// past the last step completes the session and returns ErrNoMoreSteps.
func (e *Engine) Advance(ctx context.Context, sessionID string) (*domain.Step, error) {
	return e.moveOn(ctx, sessionID, domain.StepDone)
}

// Skip marks the current step skipped and moves to the next one.
func (e *Engine) Skip(ctx context.Context, sessionID string) (*domain.Step, error) {
	return e.moveOn(ctx, sessionID, domain.StepSkipped)
}

func (e *Engine) moveOn(ctx context.Context, sessionID string, mark domain.StepStatus) (*domain.Step, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	session, recipe, err := e.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != domain.SessionActive {
		return nil, domain.ErrSessionNotActive
	}

	now := e.now()
	current := stepState(session, session.CurrentStepIndex)
	current.Status = mark
	current.CompletedAt = now

	nextIdx := session.CurrentStepIndex + 1
	if nextIdx >= len(recipe.Steps) {
		session.Status = domain.SessionCompleted
		session.UpdatedAt = now
		if err := e.store.Save(ctx, session); err != nil {
			return nil, fmt.Errorf("saving session: %w", err)
		}
		e.log.Info("session %s completed (last step %s)", sessionID, mark)
		return nil, domain.ErrNoMoreSteps
	}

	session.CurrentStepIndex = nextIdx
	next := stepState(session, nextIdx)
	next.Status = domain.StepActive
	next.StartedAt = now
	session.UpdatedAt = now

	if err := e.store.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("saving session: %w", err)
	}

	e.log.Debug("session %s moved to step %d/%d", sessionID, nextIdx+1, len(recipe.Steps))
	return &recipe.Steps[nextIdx], nil
}

// Previous goes back one step. The step being left returns to pending.
func (e *Engine) Previous(ctx context.Context, sessionID string) (*domain.Step, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	session, recipe, err := e.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != domain.SessionActive {
		return nil, domain.ErrSessionNotActive
	}
	if session.CurrentStepIndex == 0 {
		return nil, domain.ErrFirstStep
	}

	now := e.now()
	session.StepStates[session.CurrentStepIndex] = &domain.StepState{Status: domain.StepPending}

	prevIdx := session.CurrentStepIndex - 1
	session.CurrentStepIndex = prevIdx
	session.StepStates[prevIdx] = &domain.StepState{Status: domain.StepActive, StartedAt: now}
	session.UpdatedAt = now

	if err := e.store.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("saving session: %w", err)
	}

	e.log.Debug("session %s back to step %d/%d", sessionID, prevIdx+1, len(recipe.Steps))
	return &recipe.Steps[prevIdx], nil
}

// Repeat returns the current step again without changing state.
func (e *Engine) Repeat(ctx context.Context, sessionID string) (*domain.Step, error) {
	step, _, err := e.CurrentStep(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	e.log.Debug("session %s repeating current step", sessionID)
	return step, nil
}

// Pause pauses an active session.
func (e *Engine) Pause(ctx context.Context, sessionID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	session, err := e.store.Load(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("loading session: %w", err)
	}
	if session.Status != domain.SessionActive {
		return domain.ErrSessionNotActive
	}

	session.Status = domain.SessionPaused
	session.UpdatedAt = e.now()
	if err := e.store.Save(ctx, session); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}

	e.log.Info("session %s paused", sessionID)
	return nil
}

// Resume resumes a paused session.
func (e *Engine) Resume(ctx context.Context, sessionID string) (*domain.Session, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	session, err := e.store.Load(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}
	if session.Status != domain.SessionPaused {
		return nil, domain.ErrSessionPaused
	}

	session.Status = domain.SessionActive
	session.UpdatedAt = e.now()
	if err := e.store.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("saving session: %w", err)
	}

	e.log.Info("session %s resumed", sessionID)
	return session, nil
}

// Status returns the full session state.
func (e *Engine) Status(ctx context.Context, sessionID string) (*domain.Session, error) {
	session, err := e.store.Load(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}
	return session, nil
}

// Abandon marks an active or paused session as abandoned. Finished
// sessions return ErrSessionNotActive.
func (e *Engine) Abandon(ctx context.Context, sessionID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	session, err := e.store.Load(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("loading session: %w", err)
	}
	return e.abandon(ctx, session)
}

// AbandonIdle abandons the session only if it is still open and has not
// been touched since lastSeen, the UpdatedAt the caller observed. It
// reports whether the session was abandoned.
func (e *Engine) AbandonIdle(ctx context.Context, sessionID string, lastSeen time.Time) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	session, err := e.store.Load(ctx, sessionID)
	if err != nil {
		return false, fmt.Errorf("loading session: %w", err)
	}
	if !isOpen(session.Status) || !session.UpdatedAt.Equal(lastSeen) {
		return false, nil
	}
	if err := e.abandon(ctx, session); err != nil {
		return false, err
	}
	return true, nil
}

func (e *Engine) abandon(ctx context.Context, session *domain.Session) error {
	if !isOpen(session.Status) {
		return domain.ErrSessionNotActive
	}

	session.Status = domain.SessionAbandoned
	session.UpdatedAt = e.now()
	if err := e.store.Save(ctx, session); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}

	e.log.Info("session %s abandoned", session.ID)
	return nil
}

// Summary returns the finished-dish message for a completed session,
// followed by a narration in the session's tone when a narrator is
// configured. A failed narration is logged and left out.
func (e *Engine) Summary(ctx context.Context, sessionID string) (string, error) {
	session, recipe, err := e.load(ctx, sessionID)
	if err != nil {
		return "", err
	}
	if session.Status != domain.SessionCompleted {
		return "", domain.ErrSessionOpen
	}

	headline := fmt.Sprintf("You finished %s!", recipe.Title)
	if e.narrator == nil {
		return headline, nil
	}

	story, err := e.narrator.Narrate(ctx, domain.NarrationRequest{
		RecipeTitle: recipe.Title,
		Tone:        session.Tone,
		Steps:       recipe.Steps,
	})
	if err != nil {
		e.log.Warn("narration for session %s failed: %v", sessionID, err)
		return headline, nil
	}
	if story == "" {
		return headline, nil
	}
	return headline + "\n\n" + story, nil
}

// ActiveFor returns the user's most recently updated active or paused
// session.
func (e *Engine) ActiveFor(ctx context.Context, userID string) (*domain.Session, error) {
	sessions, err := e.store.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	var best *domain.Session
	for _, s := range sessions {
		if s.UserID != userID {
			continue
		}
		if best == nil || s.UpdatedAt.After(best.UpdatedAt) {
			best = s
		}
	}
	if best == nil {
		return nil, domain.ErrNotFound
	}
	return best, nil
}

// StepCount returns how many steps the session's recipe has.
func (e *Engine) StepCount(ctx context.Context, sessionID string) (int, error) {
	_, recipe, err := e.load(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	return len(recipe.Steps), nil
}

func (e *Engine) load(ctx context.Context, sessionID string) (*domain.Session, *domain.Recipe, error) {
	session, err := e.store.Load(ctx, sessionID)
	if err != nil {
		return nil, nil, fmt.Errorf("loading session: %w", err)
	}
	recipe, err := e.recipes.Get(ctx, session.RecipeID)
	if err != nil {
		return nil, nil, fmt.Errorf("getting recipe: %w", err)
	}
	e.fitToRecipe(session, recipe)
	return session, recipe, nil
}

// fitToRecipe keeps an open session inside its recipe after the recipe was
// re-imported with fewer steps: the cook lands on the new last step.
func (e *Engine) fitToRecipe(session *domain.Session, recipe *domain.Recipe) {
	last := len(recipe.Steps) - 1
	if last < 0 || session.CurrentStepIndex <= last || !isOpen(session.Status) {
		return
	}
	e.log.Warn("session %s: recipe %s now has %d steps, moving from step %d to %d",
		session.ID, recipe.ID, len(recipe.Steps), session.CurrentStepIndex+1, last+1)
	session.CurrentStepIndex = last
	st := stepState(session, last)
	st.Status = domain.StepActive
	st.CompletedAt = time.Time{}
}

// stepState returns the state for step idx, creating a pending one when
// the recipe has grown since the session started.
func stepState(session *domain.Session, idx int) *domain.StepState {
	if session.StepStates == nil {
		session.StepStates = make(map[int]*domain.StepState)
	}
	st, ok := session.StepStates[idx]
	if !ok || st == nil {
		st = &domain.StepState{Status: domain.StepPending}
		session.StepStates[idx] = st
	}
	return st
}

func isOpen(status domain.SessionStatus) bool {
	return status == domain.SessionActive || status == domain.SessionPaused
}
