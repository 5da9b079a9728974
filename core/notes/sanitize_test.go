package notes_test

import (
	"math"
	"testing"

	"Hummify/core/notes"
	"Hummify/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeNormalizesPitchGlyphs(t *testing.T) {
	in := []model.Note{
		{Note: "c♯4", Start: 0, End: 1, Duration: 1, Volume: 80},
		{Note: "B♭3", Start: 1, End: 2, Duration: 1, Volume: 80},
		{Note: "A4+12", Start: 2, End: 3, Duration: 1, Volume: 80},
	}

	out, err := notes.Sanitize(in)
	require.NoError(t, err)
	require.Len(t, out, 3)

	assert.Equal(t, "C#4", out[0].Note)
	assert.Equal(t, "Bb3", out[1].Note)
	assert.Equal(t, "A4+12", out[2].Note)
}

func TestSanitizeClampsVolumeOnly(t *testing.T) {
	out, err := notes.Sanitize([]model.Note{
		{Note: "C4", Start: 0, End: 1, Duration: 1, Volume: 300},
		{Note: "D4", Start: 1, End: 2, Duration: 1, Volume: -5},
		{Note: "E4", Start: 2, End: 3, Duration: 1}, // unset volume
	})
	require.NoError(t, err)

	assert.Equal(t, 127, out[0].Volume)
	assert.Equal(t, 1, out[1].Volume)
	assert.Equal(t, 100, out[2].Volume)
}

func TestSanitizeFillsDefaults(t *testing.T) {
	out, err := notes.Sanitize([]model.Note{
		{Note: "G4", Start: 0.5, End: 1.25, Volume: 90},
	})
	require.NoError(t, err)

	assert.InDelta(t, 0.75, out[0].Duration, 1e-9)
	assert.Equal(t, 1.0, out[0].Confidence)
	assert.False(t, out[0].Vibrato)
	assert.False(t, out[0].Breathy)
}

func TestSanitizeRejectsBadInput(t *testing.T) {
	cases := []struct {
		name string
		in   []model.Note
	}{
		{"empty sequence", nil},
		{"bad pitch letter", []model.Note{{Note: "H4", Start: 0, End: 1, Duration: 1}}},
		{"empty pitch", []model.Note{{Note: "", Start: 0, End: 1, Duration: 1}}},
		{"end before start", []model.Note{{Note: "C4", Start: 2, End: 1, Duration: 1}}},
		{"negative start", []model.Note{{Note: "C4", Start: -1, End: 1, Duration: 2}}},
		{"duration mismatch", []model.Note{{Note: "C4", Start: 0, End: 1, Duration: 0.5}}},
		{"nan start", []model.Note{{Note: "C4", Start: math.NaN(), End: 1, Duration: 1}}},
		{"inf end", []model.Note{{Note: "C4", Start: 0, End: math.Inf(1), Duration: 1}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := notes.Sanitize(tc.in)
			assert.Error(t, err)
		})
	}
}

func TestSanitizeDoesNotMutateInput(t *testing.T) {
	in := []model.Note{{Note: "c♯4", Start: 0, End: 1, Duration: 1, Volume: 300}}
	_, err := notes.Sanitize(in)
	require.NoError(t, err)

	assert.Equal(t, "c♯4", in[0].Note)
	assert.Equal(t, 300, in[0].Volume)
}

func TestCanonicalPitch(t *testing.T) {
	got, err := notes.CanonicalPitch(" g♭2 ")
	require.NoError(t, err)
	assert.Equal(t, "Gb2", got)

	_, err = notes.CanonicalPitch("C##4")
	assert.Error(t, err)
}
