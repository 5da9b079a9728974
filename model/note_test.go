package model_test

import (
	"encoding/json"
	"testing"

	"Hummify/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoteUnmarshalAcceptsLegacyFieldName(t *testing.T) {
	var n model.Note
	err := json.Unmarshal([]byte(`{"note_name":"C#4","start":0,"end":1,"duration":1,"volume":80}`), &n)
	require.NoError(t, err)
	assert.Equal(t, "C#4", n.Note)

	// Canonical field wins when both are present.
	err = json.Unmarshal([]byte(`{"note":"D4","note_name":"C#4","start":0,"end":1}`), &n)
	require.NoError(t, err)
	assert.Equal(t, "D4", n.Note)
}

func TestNotesSQLRoundTrip(t *testing.T) {
	original := model.Notes{
		{Note: "C4", Start: 0, End: 1, Duration: 1, Volume: 80, Vibrato: true, Confidence: 0.9},
		{Note: "E4", Start: 1, End: 2.5, Duration: 1.5, Volume: 100},
	}

	value, err := original.Value()
	require.NoError(t, err)

	var decoded model.Notes
	require.NoError(t, decoded.Scan(value))
	assert.Equal(t, original, decoded)
}

func TestNotesScanNil(t *testing.T) {
	var decoded model.Notes
	require.NoError(t, decoded.Scan(nil))
	assert.Nil(t, decoded)
}
