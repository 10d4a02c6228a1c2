package conversation

import (
	"context"
	"errors"
	"fmt"

	"github.com/hammamikhairi/simmr/internal/domain"
	"github.com/hammamikhairi/simmr/internal/engine"
	"github.com/hammamikhairi/simmr/internal/logger"
)

// Outcome is the result of applying one intent to a cook-along.
type Outcome struct {
	Intent  domain.IntentType `json:"-"`
	Session *domain.Session   `json:"session"`
	Step    *domain.Step      `json:"step,omitempty"`
	Total   int               `json:"total_steps"`
	Reply   string            `json:"reply"`
	Summary string            `json:"summary,omitempty"`
}

// Dispatcher applies parsed intents to the engine and phrases the reply.
// State conflicts (going back from step one, resuming while not paused)
// become replies; only real failures are returned as errors.
type Dispatcher struct {
	engine *engine.Engine
	log    *logger.Logger
}

// NewDispatcher creates a dispatcher for the given engine.
func NewDispatcher(eng *engine.Engine, log *logger.Logger) *Dispatcher {
	return &Dispatcher{engine: eng, log: log}
}

// Handle applies intent to the session.
func (d *Dispatcher) Handle(ctx context.Context, sessionID string, intent *domain.Intent) (*Outcome, error) {
	out := &Outcome{Intent: intent.Type}
	var (
		err  error
		lead string
	)

	switch intent.Type {
	case domain.IntentNext:
		err = d.move(ctx, out, sessionID, d.engine.Advance)
	case domain.IntentSkip:
		err, lead = d.move(ctx, out, sessionID, d.engine.Skip), LineSkipped()
	case domain.IntentPrevious:
		_, err = d.engine.Previous(ctx, sessionID)
		if errors.Is(err, domain.ErrFirstStep) {
			out.Reply, err = LineFirstStep(), nil
		}
	case domain.IntentRepeat:
		_, err = d.engine.Repeat(ctx, sessionID)
	case domain.IntentPause:
		if err = d.engine.Pause(ctx, sessionID); err == nil {
			out.Reply = LinePaused()
		}
	case domain.IntentResume:
		_, err = d.engine.Resume(ctx, sessionID)
		lead = LineResumed()
		if errors.Is(err, domain.ErrSessionPaused) {
			out.Reply, err = LineNotPaused(), nil
		}
	case domain.IntentStatus:
		// reply is built from the refreshed session below
	case domain.IntentFinish:
		err = d.finish(ctx, out, sessionID)
	case domain.IntentQuit:
		if err = d.engine.Abandon(ctx, sessionID); err == nil {
			out.Reply = LineAbandoned()
		}
	case domain.IntentHelp:
		out.Reply = HelpText
	default:
		out.Reply = LineUnknown(intent.Payload)
	}

	if err != nil && !errors.Is(err, domain.ErrSessionNotActive) {
		return nil, err
	}
	if rerr := d.refresh(ctx, out, sessionID); rerr != nil {
		return nil, rerr
	}
	if errors.Is(err, domain.ErrSessionNotActive) {
		out.Reply = d.inactiveReply(out.Session)
	}
	if out.Reply == "" {
		out.Reply = d.stepReply(out, intent.Type)
		if lead != "" {
			out.Reply = lead + " " + out.Reply
		}
	}

	d.log.Debug("intent %s on session %s: %s", intent.Type, sessionID, out.Reply)
	return out, nil
}

func (d *Dispatcher) move(ctx context.Context, out *Outcome, id string, fn func(context.Context, string) (*domain.Step, error)) error {
	_, err := fn(ctx, id)
	if errors.Is(err, domain.ErrNoMoreSteps) {
		out.Reply = LineLastStepDone()
		return nil
	}
	return err
}

// finish completes the session when it sits on its last step and returns
// the narrated summary.
func (d *Dispatcher) finish(ctx context.Context, out *Outcome, id string) error {
	s, err := d.engine.Status(ctx, id)
	if err != nil {
		return err
	}
	total, err := d.engine.StepCount(ctx, id)
	if err != nil {
		return err
	}
	if s.Status == domain.SessionActive && s.CurrentStepIndex == total-1 {
		if _, err := d.engine.Advance(ctx, id); err != nil && !errors.Is(err, domain.ErrNoMoreSteps) {
			return err
		}
	}

	summary, err := d.engine.Summary(ctx, id)
	if errors.Is(err, domain.ErrSessionOpen) {
		out.Reply = LineStepsLeft(total - s.CurrentStepIndex)
		return nil
	}
	if err != nil {
		return err
	}
	out.Summary = summary
	out.Reply = summary
	return nil
}

func (d *Dispatcher) refresh(ctx context.Context, out *Outcome, id string) error {
	s, err := d.engine.Status(ctx, id)
	if err != nil {
		return err
	}
	total, err := d.engine.StepCount(ctx, id)
	if err != nil {
		return err
	}
	out.Session, out.Total = s, total

	if s.Status == domain.SessionActive || s.Status == domain.SessionPaused {
		step, _, err := d.engine.CurrentStep(ctx, id)
		if err != nil && !errors.Is(err, domain.ErrNoMoreSteps) {
			return err
		}
		out.Step = step
	}
	return nil
}

func (d *Dispatcher) inactiveReply(s *domain.Session) string {
	switch s.Status {
	case domain.SessionPaused:
		return LineIsPaused()
	case domain.SessionCompleted:
		return LineLastStepDone()
	}
	return LineNoSession()
}

func (d *Dispatcher) stepReply(out *Outcome, intent domain.IntentType) string {
	s := out.Session
	if intent == domain.IntentStatus || out.Step == nil {
		return LineStatus(s.RecipeTitle, s.CurrentStepIndex+1, out.Total, s.Status == domain.SessionPaused)
	}
	return LineStep(out.Step.Order, out.Total, out.Step.Instruction, out.Step.Story)
}

// String renders an outcome for a log line.
func (o *Outcome) String() string {
	if o.Session == nil {
		return o.Reply
	}
	return fmt.Sprintf("[%s %d/%d] %s", o.Session.Status, o.Session.CurrentStepIndex+1, o.Total, o.Reply)
}
