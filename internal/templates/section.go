package templates

import (
	"encoding/json"
	"slices"
)

// Key identifies one of the fixed award sections a template renders.
type Key string

// Award sections in document order.
const (
	KeyIntroduction      Key = "introduction"
	KeyProceduralHistory Key = "procedural_history"
	KeyFactualBackground Key = "factual_background"
	KeyPartiesPositions  Key = "parties_positions"
	KeyTribunalAnalysis  Key = "tribunal_analysis"
	KeyDecision          Key = "decision"
)

var keys = []Key{
	KeyIntroduction,
	KeyProceduralHistory,
	KeyFactualBackground,
	KeyPartiesPositions,
	KeyTribunalAnalysis,
	KeyDecision,
}

var titles = map[Key]string{
	KeyIntroduction:      "Introduction",
	KeyProceduralHistory: "Procedural History",
	KeyFactualBackground: "Factual Background",
	KeyPartiesPositions:  "Parties' Positions",
	KeyTribunalAnalysis:  "Tribunal's Analysis",
	KeyDecision:          "Decision",
}

// Keys returns the award section keys in document order.
func Keys() []Key {
	return slices.Clone(keys)
}

// Title returns the heading of the section.
func (k Key) Title() string {
	return titles[k]
}

// UnmarshalJSON validates that the decoded string is a known section key.
func (k *Key) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	v, err := ParseKey(raw)
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// ParseKey validates a string as a known section key.
func ParseKey(s string) (Key, error) {
	v := Key(s)
	if !slices.Contains(keys, v) {
		return "", ErrInvalidSection
	}
	return v, nil
}
