package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// EntryKind discriminates the two shapes an ingredient entry arrives in.
type EntryKind int

const (
	// EntryRaw is a "name:amount" string as stored in the recipes table.
	EntryRaw EntryKind = iota
	// EntryStructured is an already split {name, amount, have} record.
	EntryStructured
)

// String returns a human-readable entry kind.
func (k EntryKind) String() string {
	switch k {
	case EntryRaw:
		return "raw"
	case EntryStructured:
		return "structured"
	default:
		return "unknown"
	}
}

// IngredientEntry is one ingredient line of a recipe, in either of the two
// shapes clients and rows use. Only Raw is meaningful for EntryRaw; Name,
// Amount and Have only for EntryStructured.
type IngredientEntry struct {
	Kind   EntryKind
	Raw    string
	Name   string
	Amount string
	Have   *bool
}

// RawEntry wraps a "name:amount" line.
func RawEntry(line string) IngredientEntry {
	return IngredientEntry{Kind: EntryRaw, Raw: line}
}

// StructuredEntry builds an entry from already split parts.
func StructuredEntry(name, amount string) IngredientEntry {
	return IngredientEntry{Kind: EntryStructured, Name: name, Amount: amount}
}

// RawEntries wraps every line as an EntryRaw.
func RawEntries(lines ...string) []IngredientEntry {
	out := make([]IngredientEntry, len(lines))
	for i, l := range lines {
		out[i] = RawEntry(l)
	}
	return out
}

// Line renders the entry back to the "name:amount" storage form.
func (e IngredientEntry) Line() string {
	if e.Kind == EntryRaw {
		return e.Raw
	}
	if e.Amount == "" {
		return e.Name
	}
	return e.Name + ":" + e.Amount
}

type structuredJSON struct {
	Name   string `json:"name"`
	Amount string `json:"amount,omitempty"`
	Have   *bool  `json:"have,omitempty"`
}

// MarshalJSON writes raw entries as strings and structured entries as objects.
func (e IngredientEntry) MarshalJSON() ([]byte, error) {
	if e.Kind == EntryRaw {
		return json.Marshal(e.Raw)
	}
	return json.Marshal(structuredJSON{Name: e.Name, Amount: e.Amount, Have: e.Have})
}

// UnmarshalJSON accepts either a JSON string or a {name, amount, have} object.
func (e *IngredientEntry) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return fmt.Errorf("ingredient entry: empty value")
	}

	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return fmt.Errorf("ingredient entry: %w", err)
		}
		*e = RawEntry(s)
		return nil
	case '{':
		var s structuredJSON
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return fmt.Errorf("ingredient entry: %w", err)
		}
		*e = IngredientEntry{Kind: EntryStructured, Name: s.Name, Amount: s.Amount, Have: s.Have}
		return nil
	default:
		return fmt.Errorf("ingredient entry: expected string or object, got %s", string(trimmed))
	}
}
