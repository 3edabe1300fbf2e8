package builtin

import (
	"math"
	"math/rand/v2"
	"slices"

	"github.com/aurora-melody/sdk/sdk/contracts"
	"github.com/aurora-melody/sdk/sdk/melody"
	"github.com/aurora-melody/sdk/sdk/note"
	"github.com/aurora-melody/sdk/sdk/plugin"
	"github.com/aurora-melody/sdk/sdk/theory"
)

// degree is a chord built on a major-scale degree (1-7).
type degree struct {
	step  int
	chord theory.Chord
}

// Named progressions in the order the host lists them.
var progressionNames = []string{
	"Pop (I-V-vi-IV)",
	"Jazz (ii-V-I)",
	"Blues (I-IV-I-V)",
	"Rock (I-IV-V)",
	"Sad (vi-IV-I-V)",
	"Epic (I-III-IV-iv)",
	"Funk (I-I-IV-I)",
	"Classical (I-IV-V-I)",
	"Dorian (i-IV-i-V)",
	RandomProgression,
}

// RandomProgression picks one of randomProgressions per Generate.
const RandomProgression = "Random"

var (
	maj  = theory.MajorTriad
	min3 = theory.MinorTriad
	dom7 = theory.Dominant7
)

var progressions = map[string][]degree{
	"Pop (I-V-vi-IV)":      {{1, maj}, {5, maj}, {6, min3}, {4, maj}},
	"Jazz (ii-V-I)":        {{2, theory.Minor7}, {5, dom7}, {1, theory.Major7}},
	"Blues (I-IV-I-V)":     {{1, dom7}, {4, dom7}, {1, dom7}, {5, dom7}},
	"Rock (I-IV-V)":        {{1, maj}, {4, maj}, {5, maj}},
	"Sad (vi-IV-I-V)":      {{6, min3}, {4, maj}, {1, maj}, {5, maj}},
	"Epic (I-III-IV-iv)":   {{1, maj}, {3, maj}, {4, maj}, {4, min3}},
	"Funk (I-I-IV-I)":      {{1, dom7}, {1, dom7}, {4, dom7}, {1, dom7}},
	"Classical (I-IV-V-I)": {{1, maj}, {4, maj}, {5, maj}, {1, maj}},
	"Dorian (i-IV-i-V)":    {{1, min3}, {4, maj}, {1, min3}, {5, maj}},
}

var randomProgressions = [][]degree{
	{{1, maj}, {4, maj}, {5, maj}, {1, maj}},
	{{1, min3}, {4, min3}, {5, min3}, {1, min3}},
	{{1, maj}, {6, min3}, {4, maj}, {5, maj}},
	{{2, min3}, {5, maj}, {1, maj}, {6, min3}},
	{{1, maj}, {5, maj}, {6, min3}, {3, min3}},
}

var keys = []string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

var chordBeats = map[string]float64{
	"1 bar":    4,
	"2 bars":   8,
	"Half bar": 2,
}

// Chord styles.
const (
	styleBlock  = "Block"
	styleBroken = "Broken"
	stylePower  = "Power (5ths only)"
)

// ChordProgression lays out a named progression in a key.
type ChordProgression struct {
	plugin.Base
	rng *rand.Rand
}

// NewChordProgression creates the plugin. A nil rng is seeded from the clock.
func NewChordProgression(rng *rand.Rand) *ChordProgression {
	return &ChordProgression{
		Base: plugin.Base{
			Name:        "Chord Progression Builder",
			Author:      Author,
			Version:     "1.0.0",
			Description: "Generate chord progressions in various styles",
			Params: []contracts.Parameter{
				contracts.ChoiceParameter("key", "Key", "C", keys...),
				contracts.IntParameter("octave", "Octave", 3, 2, 5),
				contracts.ChoiceParameter("progression", "Progression", progressionNames[0], progressionNames...),
				contracts.ChoiceParameter("chord_duration", "Chord Duration", "1 bar", "1 bar", "2 bars", "Half bar"),
				contracts.ChoiceParameter("style", "Style", styleBlock, styleBlock, styleBroken, stylePower),
				contracts.ChoiceParameter("inversions", "Use Inversions", "No", "No", "Yes"),
				contracts.IntParameter("repeats", "Repeats", 2, 1, 4),
			},
		},
		rng: orRand(rng),
	}
}

// Generate plays the progression repeats times from the playhead.
func (c *ChordProgression) Generate(pc *contracts.PluginContext) ([]note.MidiNote, error) {
	key := max(0, slices.Index(keys, pc.StringParam("key", "C")))
	root := (pc.IntParam("octave", 3)+1)*12 + key

	name := pc.StringParam("progression", progressionNames[0])
	prog, ok := progressions[name]
	switch {
	case name == RandomProgression:
		prog = randomProgressions[c.rng.IntN(len(randomProgressions))]
	case !ok:
		prog = progressions[progressionNames[0]]
	}

	beats, ok := chordBeats[pc.StringParam("chord_duration", "1 bar")]
	if !ok {
		beats = 4
	}
	style := pc.StringParam("style", styleBlock)
	inversions := pc.StringParam("inversions", "No") == "Yes"

	cfg := melody.ChordConfig{
		StartBeat:     pc.PlayheadPosition,
		BeatsPerChord: beats,
		Style:         melody.StyleBlock,
		Velocity:      melody.Range{Min: 75, Max: 90},
		Channel:       1,
	}
	switch style {
	case styleBroken:
		cfg.Style = melody.StyleBroken
		cfg.Velocity = melody.Range{Min: 70, Max: 85}
	case stylePower:
		cfg.Velocity = melody.Range{Min: 85, Max: 100}
	}

	var steps []melody.ChordStep
	for range max(1, pc.IntParam("repeats", 2)) {
		var last []int
		for _, d := range prog {
			step := melody.ChordStep{Root: root + theory.Major.Intervals()[d.step-1], Chord: d.chord}
			switch {
			case style == stylePower:
				step.Chord = theory.Power
			case inversions && last != nil:
				step.Voicing = closestInversion(step.Root, d.chord, last)
			}
			last = step.Pitches()
			steps = append(steps, step)
		}
	}
	return melody.SequenceChords(c.rng, steps, cfg), nil
}

// closestInversion picks among the first three inversions the one whose mean
// pitch is nearest the mean of last.
func closestInversion(root int, chord theory.Chord, last []int) []int {
	target := mean(last)
	var best []int
	bestDist := math.Inf(1)
	for inv := range 3 {
		candidate := chord.Inversion(root, inv)
		if d := math.Abs(mean(candidate) - target); d < bestDist {
			best, bestDist = candidate, d
		}
	}
	return best
}

func mean(pitches []int) float64 {
	if len(pitches) == 0 {
		return 0
	}
	sum := 0
	for _, p := range pitches {
		sum += p
	}
	return float64(sum) / float64(len(pitches))
}
