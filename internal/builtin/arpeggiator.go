package builtin

import (
	"math/rand/v2"

	"github.com/aurora-melody/sdk/sdk/contracts"
	"github.com/aurora-melody/sdk/sdk/melody"
	"github.com/aurora-melody/sdk/sdk/note"
	"github.com/aurora-melody/sdk/sdk/plugin"
	"github.com/aurora-melody/sdk/sdk/theory"
)

var arpChords = map[string]theory.Chord{
	"Major":      theory.MajorTriad,
	"Minor":      theory.MinorTriad,
	"Major 7":    theory.Major7,
	"Minor 7":    theory.Minor7,
	"Dominant 7": theory.Dominant7,
	"Sus4":       theory.Sus4,
}

var arpPatterns = map[string]melody.Pattern{
	"Up":         melody.PatternUp,
	"Down":       melody.PatternDown,
	"Up-Down":    melody.PatternUpDown,
	"Down-Up":    melody.PatternDownUp,
	"Random":     melody.PatternRandom,
	"Outside-In": melody.PatternOutsideIn,
}

const (
	arpBaseVelocity = 90
	arpAccent       = 15
	arpLowest       = 24
	arpHighest      = 108
)

// Arpeggiator plays a chord across octaves in a chosen pattern.
type Arpeggiator struct {
	plugin.Base
	rng *rand.Rand
}

// NewArpeggiator creates the plugin. A nil rng is seeded from the clock.
func NewArpeggiator(rng *rand.Rand) *Arpeggiator {
	return &Arpeggiator{
		Base: plugin.Base{
			Name:        "Arpeggiator",
			Author:      Author,
			Version:     "1.0.0",
			Description: "Generate arpeggios from chord patterns",
			Params: []contracts.Parameter{
				contracts.IntParameter("root_note", "Root Note", 48, 36, 84),
				contracts.ChoiceParameter("chord_type", "Chord Type", "Major", "Major", "Minor", "Major 7", "Minor 7", "Dominant 7", "Sus4"),
				contracts.ChoiceParameter("pattern", "Pattern", "Up", "Up", "Down", "Up-Down", "Down-Up", "Random", "Outside-In"),
				contracts.ChoiceParameter("octaves", "Octaves", "2", "1", "2", "3"),
				contracts.ChoiceParameter("note_length", "Note Length", "1/16", "1/32", "1/16", "1/8", "1/4"),
				contracts.IntParameter("bars", "Bars", 2, 1, 8),
				contracts.IntParameter("velocity_variation", "Velocity Variation", 15, 0, 40),
			},
		},
		rng: orRand(rng),
	}
}

// Generate fills bars*4 beats from the playhead.
func (a *Arpeggiator) Generate(pc *contracts.PluginContext) ([]note.MidiNote, error) {
	chord, ok := arpChords[pc.StringParam("chord_type", "Major")]
	if !ok {
		chord = theory.MajorTriad
	}
	pattern, ok := arpPatterns[pc.StringParam("pattern", "Up")]
	if !ok {
		pattern = melody.PatternUp
	}

	pitches := arpPitches(pc.IntParam("root_note", 48), chord, pc.IntParam("octaves", 2))
	if len(pitches) == 0 {
		return []note.MidiNote{}, nil
	}

	spread := min(40, max(0, pc.IntParam("velocity_variation", 15)))
	return melody.Arpeggiate(a.rng, pitches, melody.ArpConfig{
		Pattern:    pattern,
		StartBeat:  pc.PlayheadPosition,
		TotalBeats: float64(max(1, pc.IntParam("bars", 2))) * 4,
		NoteLength: lengthOf(pc.StringParam("note_length", "1/16"), 0.25),
		Velocity:   melody.Range{Min: arpBaseVelocity - spread, Max: arpBaseVelocity + spread},
		Accent:     arpAccent,
		Gate:       0.9,
		Channel:    1,
	}), nil
}

// arpPitches stacks chord on root for the given number of octaves, keeping
// pitches inside the arpeggiator range.
func arpPitches(root int, chord theory.Chord, octaves int) []int {
	var pitches []int
	for _, p := range theory.Notes(root, chord.Intervals(), max(1, octaves)) {
		if p >= arpLowest && p <= arpHighest {
			pitches = append(pitches, p)
		}
	}
	return pitches
}
