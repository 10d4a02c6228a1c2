package domain

import "time"

// Session is a guided cook-along: a user walking through a recipe's steps
// with narration in the chosen tone.
type Session struct {
	ID               string             `json:"id"`
	UserID           string             `json:"user_id"`
	RecipeID         string             `json:"recipe_id"`
	RecipeTitle      string             `json:"recipe_title"`
	Tone             StoryTone          `json:"tone"`
	CurrentStepIndex int                `json:"current_step_index"`
	StepStates       map[int]*StepState `json:"step_states"`
	Status           SessionStatus      `json:"status"`
	StartedAt        time.Time          `json:"started_at"`
	UpdatedAt        time.Time          `json:"updated_at"`
}

// Clone returns a deep copy of the session, step states included.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	if s.StepStates != nil {
		c.StepStates = make(map[int]*StepState, len(s.StepStates))
		for i, st := range s.StepStates {
			if st == nil {
				continue
			}
			cp := *st
			c.StepStates[i] = &cp
		}
	}
	return &c
}

// SessionStatus tracks the lifecycle of a cook-along.
type SessionStatus int

const (
	SessionActive SessionStatus = iota
	SessionPaused
	SessionCompleted
	SessionAbandoned
)

// String returns a human-readable session status.
func (s SessionStatus) String() string {
	switch s {
	case SessionActive:
		return "active"
	case SessionPaused:
		return "paused"
	case SessionCompleted:
		return "completed"
	case SessionAbandoned:
		return "abandoned"
	default:
		return "unknown"
	}
}

// StepState tracks progress of a single step within a session.
type StepState struct {
	Status      StepStatus `json:"status"`
	StartedAt   time.Time  `json:"started_at,omitempty"`
	CompletedAt time.Time  `json:"completed_at,omitempty"`
}

// StepStatus tracks the state of a single step.
type StepStatus int

const (
	StepPending StepStatus = iota
	StepActive
	StepDone
	StepSkipped
)

// String returns a human-readable step status.
func (s StepStatus) String() string {
	switch s {
	case StepPending:
		return "pending"
	case StepActive:
		return "active"
	case StepDone:
		return "done"
	case StepSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}
