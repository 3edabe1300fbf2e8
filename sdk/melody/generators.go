// Package melody generates note sequences from the theory tables and
// post-processes existing sequences.
//
// Every function that needs randomness takes an explicit *rand.Rand so that
// a seeded source reproduces the same output.
package melody

import (
	"math"
	"math/rand/v2"
	"slices"

	"github.com/aurora-melody/sdk/sdk/note"
	"github.com/aurora-melody/sdk/sdk/theory"
)

// Pitch bounds for random walks.
const (
	WalkLowest  = 24
	WalkHighest = 108
)

// Range is an inclusive integer interval.
type Range struct {
	Min, Max int
}

// draw picks uniformly from the range. Reversed bounds are swapped.
func (r Range) draw(rng *rand.Rand) int {
	lo, hi := r.Min, r.Max
	if lo > hi {
		lo, hi = hi, lo
	}
	return lo + rng.IntN(hi-lo+1)
}

// WalkConfig configures RandomWalk.
type WalkConfig struct {
	StartNote  int
	NumNotes   int
	Scale      []int // scale intervals; nil walks chromatically
	Root       int
	Step       Range // per-note movement, in scale degrees (or semitones without a scale)
	StartBeat  float64
	NoteLength float64
	Velocity   Range
	Gate       float64 // sounding fraction of NoteLength; 0 means 1
	Channel    int
}

// DefaultWalkConfig mirrors the stock random walk: 16 eighth notes around C4.
func DefaultWalkConfig() WalkConfig {
	return WalkConfig{
		StartNote:  60,
		NumNotes:   16,
		Root:       60,
		Step:       Range{Min: -2, Max: 2},
		NoteLength: 0.5,
		Velocity:   Range{Min: 70, Max: 100},
		Gate:       0.9,
		Channel:    1,
	}
}

// RandomWalk builds a melody by a bounded random walk over scale degrees.
//
// With a scale, pitches come from the scale spread over the playable range and
// the walk starts on the degree nearest StartNote; the degree index is clamped
// to the available pitches. Without one the walk moves in semitones between
// WalkLowest and WalkHighest.
func RandomWalk(rng *rand.Rand, cfg WalkConfig) []note.MidiNote {
	if cfg.NumNotes <= 0 {
		return nil
	}

	var pitches []int
	if len(cfg.Scale) > 0 {
		for _, p := range theory.Notes(theory.PitchClass(cfg.Root), cfg.Scale, 10) {
			if p >= WalkLowest && p <= WalkHighest {
				pitches = append(pitches, p)
			}
		}
		if len(pitches) == 0 {
			pitches = []int{clampPitch(cfg.StartNote)}
		}
	}

	idx := nearestIndex(pitches, cfg.StartNote)
	current := min(WalkHighest, max(WalkLowest, cfg.StartNote))

	notes := make([]note.MidiNote, 0, cfg.NumNotes)
	for i := 0; i < cfg.NumNotes; i++ {
		step := cfg.Step.draw(rng)

		var pitch int
		if pitches != nil {
			idx = min(len(pitches)-1, max(0, idx+step))
			pitch = pitches[idx]
		} else {
			current = min(WalkHighest, max(WalkLowest, current+step))
			pitch = current
		}

		notes = append(notes, note.MidiNote{
			NoteNumber:  pitch,
			StartBeat:   max(0, cfg.StartBeat+float64(i)*cfg.NoteLength),
			LengthBeats: gated(cfg.NoteLength, cfg.Gate),
			Velocity:    clampVelocity(cfg.Velocity.draw(rng)),
			Channel:     clampChannel(cfg.Channel),
		})
	}
	return notes
}

// Pattern selects the note order of an arpeggio.
type Pattern string

const (
	PatternUp        Pattern = "up"
	PatternDown      Pattern = "down"
	PatternUpDown    Pattern = "updown"
	PatternDownUp    Pattern = "downup"
	PatternRandom    Pattern = "random"
	PatternOutsideIn Pattern = "outside-in"
)

// ArpConfig configures Arpeggiate.
type ArpConfig struct {
	Pattern    Pattern
	StartBeat  float64
	TotalBeats float64
	NoteLength float64
	Velocity   Range
	Accent     int     // added to the first note of every cycle
	Gate       float64 // sounding fraction of NoteLength; 0 means 1
	Channel    int
}

// DefaultArpConfig is a one-bar sixteenth-note upward arpeggio.
func DefaultArpConfig() ArpConfig {
	return ArpConfig{
		Pattern:    PatternUp,
		TotalBeats: 4,
		NoteLength: 0.25,
		Velocity:   Range{Min: 70, Max: 100},
		Accent:     10,
		Gate:       0.9,
		Channel:    1,
	}
}

// MaxArpNotes caps the notes a single Arpeggiate call produces.
const MaxArpNotes = 1 << 14

// Arpeggiate spreads pitches over time following cfg.Pattern.
//
// It emits floor(TotalBeats/NoteLength) notes, at most MaxArpNotes, so the last
// note never runs past StartBeat+TotalBeats. Ping-pong patterns do not repeat the
// turning-point notes; the random pattern draws a pitch per slot.
func Arpeggiate(rng *rand.Rand, pitches []int, cfg ArpConfig) []note.MidiNote {
	if len(pitches) == 0 || cfg.NoteLength <= 0 || cfg.TotalBeats <= 0 {
		return nil
	}

	ratio := cfg.TotalBeats / cfg.NoteLength
	if math.IsNaN(ratio) {
		return nil
	}
	count := MaxArpNotes
	if ratio < MaxArpNotes {
		count = int(math.Floor(ratio + 1e-9))
	}

	sequence := arpSequence(pitches, cfg.Pattern)

	notes := make([]note.MidiNote, 0, count)
	for i := 0; i < count; i++ {
		pitch := sequence[i%len(sequence)]
		if cfg.Pattern == PatternRandom {
			pitch = pitches[rng.IntN(len(pitches))]
		}

		velocity := cfg.Velocity.draw(rng)
		if i%len(sequence) == 0 {
			velocity += cfg.Accent
		}

		notes = append(notes, note.MidiNote{
			NoteNumber:  clampPitch(pitch),
			StartBeat:   max(0, cfg.StartBeat+float64(i)*cfg.NoteLength),
			LengthBeats: gated(cfg.NoteLength, cfg.Gate),
			Velocity:    clampVelocity(velocity),
			Channel:     clampChannel(cfg.Channel),
		})
	}
	return notes
}

func arpSequence(pitches []int, pattern Pattern) []int {
	up := slices.Clone(pitches)
	down := slices.Clone(pitches)
	slices.Reverse(down)

	switch pattern {
	case PatternDown:
		return down
	case PatternUpDown:
		if len(up) <= 2 {
			return up
		}
		return append(up, down[1:len(down)-1]...)
	case PatternDownUp:
		if len(down) <= 2 {
			return down
		}
		return append(down, up[1:len(up)-1]...)
	case PatternOutsideIn:
		seq := make([]int, 0, len(up))
		for lo, hi := 0, len(up)-1; lo <= hi; lo, hi = lo+1, hi-1 {
			seq = append(seq, up[lo])
			if lo != hi {
				seq = append(seq, up[hi])
			}
		}
		return seq
	default:
		return up
	}
}

// ChordStep is one entry of a progression.
type ChordStep struct {
	Root  int
	Chord theory.Chord

	// Voicing, when set, is played instead of Chord on Root.
	Voicing []int
}

// Pitches returns the notes the step sounds.
func (s ChordStep) Pitches() []int {
	if len(s.Voicing) > 0 {
		return slices.Clone(s.Voicing)
	}
	return s.Chord.Notes(s.Root)
}

// ChordStyle selects how SequenceChords voices each chord.
type ChordStyle string

const (
	StyleBlock  ChordStyle = "block"
	StyleBroken ChordStyle = "broken"
)

// ChordConfig configures SequenceChords.
type ChordConfig struct {
	StartBeat     float64
	BeatsPerChord float64
	Style         ChordStyle
	Velocity      Range
	Channel       int
}

// DefaultChordConfig plays one block chord per bar.
func DefaultChordConfig() ChordConfig {
	return ChordConfig{
		BeatsPerChord: 4,
		Style:         StyleBlock,
		Velocity:      Range{Min: 70, Max: 90},
		Channel:       1,
	}
}

// SequenceChords lays a progression out back to back. Block chords sound for
// 95% of their slot; broken chords arpeggiate upward across the slot. Pitches
// are clamped to 0-127 in both styles.
func SequenceChords(rng *rand.Rand, progression []ChordStep, cfg ChordConfig) []note.MidiNote {
	var notes []note.MidiNote
	beat := cfg.StartBeat

	for _, step := range progression {
		pitches := step.Pitches()
		if len(pitches) == 0 {
			beat += cfg.BeatsPerChord
			continue
		}

		if cfg.Style == StyleBroken {
			notes = append(notes, Arpeggiate(rng, pitches, ArpConfig{
				Pattern:    PatternUp,
				StartBeat:  beat,
				TotalBeats: cfg.BeatsPerChord,
				NoteLength: cfg.BeatsPerChord / float64(len(pitches)),
				Velocity:   cfg.Velocity,
				Gate:       0.9,
				Channel:    cfg.Channel,
			})...)
		} else {
			for _, p := range pitches {
				notes = append(notes, note.MidiNote{
					NoteNumber:  clampPitch(p),
					StartBeat:   max(0, beat),
					LengthBeats: gated(cfg.BeatsPerChord, 0.95),
					Velocity:    clampVelocity(cfg.Velocity.draw(rng)),
					Channel:     clampChannel(cfg.Channel),
				})
			}
		}
		beat += cfg.BeatsPerChord
	}
	return notes
}

func nearestIndex(pitches []int, target int) int {
	best := 0
	for i, p := range pitches {
		if abs(p-target) < abs(pitches[best]-target) {
			best = i
		}
	}
	return best
}

func gated(length, gate float64) float64 {
	if gate <= 0 {
		gate = 1
	}
	return max(MinLength, length*gate)
}

func clampPitch(p int) int {
	return min(note.MaxNumber, max(note.MinNumber, p))
}

func clampVelocity(v int) int {
	return min(note.MaxVelocity, max(note.MinVelocity, v))
}

func clampChannel(c int) int {
	if c == 0 {
		return note.MinChannel
	}
	return min(note.MaxChannel, max(note.MinChannel, c))
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
