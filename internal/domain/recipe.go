// Package domain defines the core types and interfaces for simmr.
// All other packages depend on domain; domain depends on nothing.
package domain

import "time"

// Recipe is a recipe record as stored by the backend.
type Recipe struct {
	ID              string            `json:"id"`
	Title           string            `json:"title"`
	Ingredients     []IngredientEntry `json:"ingredients"`
	Instructions    string            `json:"instructions"`
	Category        Category          `json:"category"`
	Difficulty      Difficulty        `json:"difficulty"`
	Restriction     Restriction       `json:"restriction"`
	KidFriendly     bool              `json:"kid_friendly"`
	NumServings     string            `json:"num_servings"`
	CookTimeMinutes int               `json:"cook_time_minutes"`
	StoryTone       StoryTone         `json:"story_tone"`
	ImageURL        string            `json:"image_url"`
	Steps           []Step            `json:"steps,omitempty"`
	Version         int               `json:"version"`
	CreatedAt       time.Time         `json:"created_at,omitempty"`
}

// Step is a single guided cooking step. Story is the narrated flavour
// text read out alongside the instruction.
type Step struct {
	Order       int    `json:"order"`
	Instruction string `json:"instruction"`
	Story       string `json:"story,omitempty"`
}

// IngredientLines returns the raw "name:amount" form of every entry,
// in order.
func (r *Recipe) IngredientLines() []string {
	out := make([]string, len(r.Ingredients))
	for i, e := range r.Ingredients {
		out[i] = e.Line()
	}
	return out
}

// Category groups recipes for browsing. The set is closed.
type Category string

const (
	CategoryBrowse     Category = "Browse"
	CategoryFriends    Category = "Friends"
	CategoryKids       Category = "Kids"
	CategoryTikTok     Category = "TikTok"
	CategoryChallenge  Category = "Challenge"
	CategoryThreeBites Category = "ThreeBites"
	CategorySweets     Category = "Sweets"
)

var categoryTitles = map[Category]string{
	CategoryBrowse:     "Browse recipes for you",
	CategoryFriends:    "Cooking with friends",
	CategoryKids:       "Cooking with kids",
	CategoryTikTok:     "Trending on TikTok",
	CategoryChallenge:  "Challenge recipes",
	CategoryThreeBites: "3 Ingredient bites",
	CategorySweets:     "Sweet cravings",
}

// Categories returns every category in display order.
func Categories() []Category {
	return []Category{
		CategoryBrowse,
		CategoryFriends,
		CategoryKids,
		CategoryTikTok,
		CategoryChallenge,
		CategoryThreeBites,
		CategorySweets,
	}
}

// Title returns the heading shown for the category.
func (c Category) Title() string {
	if t, ok := categoryTitles[c]; ok {
		return t
	}
	return string(c)
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	_, ok := categoryTitles[c]
	return ok
}

// ParseCategory returns the category with the exact given name.
func ParseCategory(s string) (Category, bool) {
	c := Category(s)
	return c, c.Valid()
}

// Difficulty rates how hard a recipe is.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "Easy"
	DifficultyMedium Difficulty = "Medium"
	DifficultyHard   Difficulty = "Hard"
)

// Restriction is a dietary restriction a recipe satisfies.
type Restriction string

const (
	RestrictionNutFree    Restriction = "Nut-Free"
	RestrictionVegan      Restriction = "Vegan"
	RestrictionVegetarian Restriction = "Vegetarian"
	RestrictionGlutenFree Restriction = "Gluten-Free"
	RestrictionNone       Restriction = "None"
)

// StoryTone is the narration style for a cooking session.
type StoryTone string

const (
	ToneCozy        StoryTone = "Cozy"
	ToneRomantic    StoryTone = "Romantic"
	ToneAdventure   StoryTone = "Adventure"
	ToneEducational StoryTone = "Educational"
	ToneMystery     StoryTone = "Mystery"
	ToneHumorous    StoryTone = "Humorous"
)

// DefaultTone is used when no tone was chosen or the tone is unknown.
const DefaultTone = ToneAdventure

var toneEmoji = map[StoryTone]string{
	ToneCozy:        "🛋️",
	ToneRomantic:    "💕",
	ToneAdventure:   "🗺️",
	ToneEducational: "📚",
	ToneMystery:     "🔍",
	ToneHumorous:    "😂",
}

// Tones returns every story tone in display order.
func Tones() []StoryTone {
	return []StoryTone{ToneCozy, ToneRomantic, ToneAdventure, ToneEducational, ToneMystery, ToneHumorous}
}

// Emoji returns the icon for the tone, or an empty string.
func (t StoryTone) Emoji() string { return toneEmoji[t] }

// Valid reports whether t is a known tone.
func (t StoryTone) Valid() bool {
	_, ok := toneEmoji[t]
	return ok
}
