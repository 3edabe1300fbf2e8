package builtin

import (
	"math/rand/v2"

	"github.com/aurora-melody/sdk/sdk/contracts"
	"github.com/aurora-melody/sdk/sdk/note"
	"github.com/aurora-melody/sdk/sdk/plugin"
	"github.com/aurora-melody/sdk/sdk/theory"
)

var melodyScales = map[string]theory.Scale{
	"Major":            theory.Major,
	"Minor":            theory.Minor,
	"Pentatonic Major": theory.PentatonicMajor,
	"Pentatonic Minor": theory.PentatonicMinor,
	"Blues":            theory.Blues,
}

// walkSteps favours small moves in scale degrees.
var walkSteps = [...]int{-2, -1, -1, 0, 0, 1, 1, 2}

var lengthFactors = [...]float64{0.5, 1.5, 2}

const (
	melodyLowest  = 36
	melodyHighest = 96
)

// RandomMelody walks a scale from the middle of its range.
type RandomMelody struct {
	plugin.Base
	rng *rand.Rand
}

// NewRandomMelody creates the plugin. A nil rng is seeded from the clock.
func NewRandomMelody(rng *rand.Rand) *RandomMelody {
	return &RandomMelody{
		Base: plugin.Base{
			Name:        "Random Melody Generator",
			Author:      Author,
			Version:     "1.0.0",
			Description: "Generate random melodies within a scale",
			Params: []contracts.Parameter{
				contracts.IntParameter("num_notes", "Number of Notes", 16, 4, 64),
				contracts.IntParameter("root_note", "Root Note", 60, 36, 84),
				contracts.ChoiceParameter("scale_type", "Scale", "Major", "Major", "Minor", "Pentatonic Major", "Pentatonic Minor", "Blues"),
				contracts.ChoiceParameter("note_length", "Note Length", "1/8", "1/16", "1/8", "1/4", "1/2"),
				contracts.IntParameter("velocity_min", "Min Velocity", 70, 1, 127),
				contracts.IntParameter("velocity_max", "Max Velocity", 100, 1, 127),
			},
		},
		rng: orRand(rng),
	}
}

// Generate places num_notes back to back from the playhead. One note in five
// is stretched or shortened.
func (m *RandomMelody) Generate(pc *contracts.PluginContext) ([]note.MidiNote, error) {
	scale, ok := melodyScales[pc.StringParam("scale_type", "Major")]
	if !ok {
		scale = theory.Major
	}
	root := pc.IntParam("root_note", 60)
	count := max(0, pc.IntParam("num_notes", 16))
	length := lengthOf(pc.StringParam("note_length", "1/8"), 0.5)

	velLo := min(note.MaxVelocity, max(1, pc.IntParam("velocity_min", 70)))
	velHi := min(note.MaxVelocity, max(1, pc.IntParam("velocity_max", 100)))
	if velLo > velHi {
		velLo, velHi = velHi, velLo
	}

	var pitches []int
	for _, p := range theory.Notes(root-12, scale.Intervals(), 4) {
		if p >= melodyLowest && p <= melodyHighest {
			pitches = append(pitches, p)
		}
	}
	if len(pitches) == 0 {
		pitches = []int{min(note.MaxNumber, max(note.MinNumber, root))}
	}

	notes := make([]note.MidiNote, 0, count)
	idx := len(pitches) / 2
	for i := range count {
		idx = min(len(pitches)-1, max(0, idx+walkSteps[m.rng.IntN(len(walkSteps))]))
		velocity := velLo + m.rng.IntN(velHi-velLo+1)

		l := length
		if m.rng.Float64() < 0.2 {
			l *= lengthFactors[m.rng.IntN(len(lengthFactors))]
		}

		notes = append(notes, note.MidiNote{
			NoteNumber:  pitches[idx],
			StartBeat:   max(0, pc.PlayheadPosition+float64(i)*length),
			LengthBeats: l,
			Velocity:    velocity,
			Channel:     1,
		})
	}
	return notes, nil
}
