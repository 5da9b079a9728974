package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Note represents a single detected or edited note in a hummed melody.
// Pitch labels use scientific notation, e.g. "C#4", optionally with a
// cents offset suffix such as "A4+12".
type Note struct {
	Note       string  `json:"note"`
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Duration   float64 `json:"duration"`
	Volume     int     `json:"volume"`
	Vibrato    bool    `json:"vibrato"`
	Breathy    bool    `json:"breathy"`
	Confidence float64 `json:"confidence"`
}

// UnmarshalJSON accepts both the canonical "note" field and the legacy
// "note_name" field produced by older pitch-detection clients.
func (n *Note) UnmarshalJSON(data []byte) error {
	type alias Note
	aux := struct {
		*alias
		NoteName string `json:"note_name"`
	}{alias: (*alias)(n)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if n.Note == "" && aux.NoteName != "" {
		n.Note = aux.NoteName
	}
	return nil
}

// Notes is a note sequence stored as a JSON column inside artifact rows.
type Notes []Note

// Value implements driver.Valuer so a note sequence can be written as JSON.
func (ns Notes) Value() (driver.Value, error) {
	if ns == nil {
		return "[]", nil
	}
	b, err := json.Marshal(ns)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal notes: %w", err)
	}
	return string(b), nil
}

// Scan implements sql.Scanner for reading the JSON column back.
func (ns *Notes) Scan(value interface{}) error {
	if value == nil {
		*ns = nil
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for notes column", value)
	}
	return json.Unmarshal(data, ns)
}
