package domain

import (
	"context"
	"io"
)

// RecipeSource provides recipes. Implementations can be in-memory (seeded),
// file-based or Postgres-backed.
type RecipeSource interface {
	List(ctx context.Context) ([]Recipe, error)
	Get(ctx context.Context, id string) (*Recipe, error)
	Search(ctx context.Context, query string) ([]Recipe, error)
}

// RecipeWriter is implemented by sources that accept new or changed recipes.
type RecipeWriter interface {
	Upsert(ctx context.Context, recipe *Recipe) error
}

// SessionStore persists cook-along sessions.
type SessionStore interface {
	Save(ctx context.Context, session *Session) error
	Load(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
	ListActive(ctx context.Context) ([]*Session, error)
}

// PantryStore holds the ingredient names each user has declared they own.
// Items are returned in insertion order.
type PantryStore interface {
	Items(ctx context.Context, userID string) ([]string, error)
	Add(ctx context.Context, userID, name string) (bool, error)
	Remove(ctx context.Context, userID, name string) error
}

// UserStore persists accounts. Create returns ErrAlreadyExists for a
// duplicate email.
type UserStore interface {
	Create(ctx context.Context, user *User) error
	ByEmail(ctx context.Context, email string) (*User, error)
	ByID(ctx context.Context, id string) (*User, error)
}

// StoryLogStore persists finished-dish logs.
type StoryLogStore interface {
	Insert(ctx context.Context, log *StoryLog) error
	ListByUser(ctx context.Context, userID string) ([]StoryLog, error)
}

// GroupStore persists group cooking sessions and their invites.
type GroupStore interface {
	CreateSession(ctx context.Context, session *GroupSession, invites []Invite) error
	GetSession(ctx context.Context, id string) (*GroupSession, error)
	SessionsFor(ctx context.Context, userID string) ([]GroupSession, error)
	InvitesFor(ctx context.Context, userID string) ([]Invite, error)
	UpdateInvite(ctx context.Context, invite Invite) error
}

// ImageStore uploads dish photos and returns their public URL.
type ImageStore interface {
	Put(ctx context.Context, key, contentType string, body io.Reader) (string, error)
	Delete(ctx context.Context, key string) error
}

// IntentParser converts raw user input into structured intents.
type IntentParser interface {
	Parse(ctx context.Context, input string, session *Session) (*Intent, error)
}

// Notifier delivers messages to the user. Implementations can write to
// stdout or speak through text-to-speech.
type Notifier interface {
	Notify(ctx context.Context, message string) error
	NotifyUrgent(ctx context.Context, message string) error
}

// SpeechProvider sends text through a TTS pipeline.
type SpeechProvider interface {
	Speak(ctx context.Context, text string) error
}

// NarrationRequest describes the story a Narrator should tell.
type NarrationRequest struct {
	RecipeTitle string
	Tone        StoryTone
	Steps       []Step
}

// Narrator writes a short story for a finished dish in the requested tone.
type Narrator interface {
	Narrate(ctx context.Context, req NarrationRequest) (string, error)
}
