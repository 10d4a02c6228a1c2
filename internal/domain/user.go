package domain

import "time"

// Roles a user can hold.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is a registered account and its profile.
type User struct {
	ID           string            `json:"id"`
	Email        string            `json:"email"`
	DisplayName  string            `json:"display_name"`
	PasswordHash string            `json:"-"`
	Role         string            `json:"role"`
	Contacts     []string          `json:"contacts"`
	Settings     map[string]string `json:"settings,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
}

// AuthSession is the signed-in state handed back by login.
type AuthSession struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session is past its expiry at now.
func (s *AuthSession) Expired(now time.Time) bool {
	return s == nil || !now.Before(s.ExpiresAt)
}

// StoryLog records a finished dish: the narrated summary and a photo.
type StoryLog struct {
	ID           string    `json:"id"`
	RecipeID     string    `json:"recipe_id"`
	UserID       string    `json:"user_id"`
	StorySummary string    `json:"story_summary"`
	DishImageURL string    `json:"dish_image_url"`
	Date         time.Time `json:"date"`
}

// GroupSession is a planned cook-together with invited friends.
type GroupSession struct {
	ID             string    `json:"id"`
	CreatorID      string    `json:"creator_id"`
	InvitedFriends []string  `json:"invited_friends"`
	Location       string    `json:"location"`
	RecipeID       string    `json:"recipe_id"`
	SessionDate    time.Time `json:"session_date"`
	StoryTheme     StoryTone `json:"story_theme"`
}

// InviteStatus is an invitee's RSVP.
type InviteStatus string

const (
	InvitePending  InviteStatus = "pending"
	InviteAccepted InviteStatus = "accepted"
	InviteDeclined InviteStatus = "declined"
)

// Invite links a group session to one invited user.
type Invite struct {
	SessionID   string       `json:"session_id"`
	UserID      string       `json:"user_id"`
	Status      InviteStatus `json:"status"`
	RespondedAt time.Time    `json:"responded_at,omitempty"`
}
