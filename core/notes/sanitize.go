// Package notes validates and normalizes note sequences before they are
// handed to the synthesis engine.
package notes

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"Hummify/model"
)

// durationEpsilon is the tolerance when reconciling duration with end-start.
const durationEpsilon = 1e-6

// pitchPattern matches a canonical pitch label: letter A-G, optional sharp or
// flat, optional octave digit, optional cents offset (e.g. "C#4", "A4+12").
var pitchPattern = regexp.MustCompile(`^[A-G](#|b)?[0-9]?([+-][0-9]+)?$`)

// glyphReplacer canonicalizes enharmonic glyph variants to ASCII.
var glyphReplacer = strings.NewReplacer("♯", "#", "♭", "b")

// Sanitize validates a note sequence and returns a normalized copy ready for
// synthesis. Pitch labels are canonicalized (glyph variants folded to ASCII,
// letters uppercased), volume is clamped to [1,127], and expressive defaults
// are filled in. Any other malformed field fails the whole sequence.
func Sanitize(in []model.Note) ([]model.Note, error) {
	if len(in) == 0 {
		return nil, fmt.Errorf("note sequence is empty")
	}

	out := make([]model.Note, len(in))
	for i, n := range in {
		pitch, err := CanonicalPitch(n.Note)
		if err != nil {
			return nil, fmt.Errorf("note %d: %w", i, err)
		}

		for _, f := range []struct {
			name  string
			value float64
		}{
			{"start", n.Start},
			{"end", n.End},
			{"duration", n.Duration},
			{"confidence", n.Confidence},
		} {
			if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
				return nil, fmt.Errorf("note %d: %s is not finite", i, f.name)
			}
		}
		if n.Start < 0 {
			return nil, fmt.Errorf("note %d: start %.6f is negative", i, n.Start)
		}
		if n.End < n.Start {
			return nil, fmt.Errorf("note %d: end %.6f before start %.6f", i, n.End, n.Start)
		}

		span := n.End - n.Start
		if n.Duration == 0 {
			n.Duration = span
		} else if math.Abs(n.Duration-span) > durationEpsilon {
			return nil, fmt.Errorf("note %d: duration %.6f does not match end-start %.6f", i, n.Duration, span)
		}

		// Volume is the one field we clamp instead of reject. Zero means
		// the client never set it.
		volume := n.Volume
		if volume == 0 {
			volume = 100
		} else if volume < 1 {
			volume = 1
		} else if volume > 127 {
			volume = 127
		}

		confidence := n.Confidence
		if confidence == 0 {
			confidence = 1.0
		}

		out[i] = model.Note{
			Note:       pitch,
			Start:      n.Start,
			End:        n.End,
			Duration:   n.Duration,
			Volume:     volume,
			Vibrato:    n.Vibrato,
			Breathy:    n.Breathy,
			Confidence: confidence,
		}
	}
	return out, nil
}

// CanonicalPitch normalizes a pitch label to the internal representation and
// verifies it against the pitch grammar.
func CanonicalPitch(raw string) (string, error) {
	p := strings.TrimSpace(raw)
	if p == "" {
		return "", fmt.Errorf("pitch label is empty")
	}
	p = glyphReplacer.Replace(p)
	// Uppercase the note letter only; the flat marker stays lowercase.
	p = strings.ToUpper(p[:1]) + p[1:]
	if !pitchPattern.MatchString(p) {
		return "", fmt.Errorf("pitch label %q does not match pitch grammar", raw)
	}
	return p, nil
}
