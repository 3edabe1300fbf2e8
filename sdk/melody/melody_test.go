package melody_test

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aurora-melody/sdk/sdk/melody"
	"github.com/aurora-melody/sdk/sdk/note"
	"github.com/aurora-melody/sdk/sdk/theory"
)

func seeded(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func pitches(notes []note.MidiNote) []int {
	out := make([]int, len(notes))
	for i, n := range notes {
		out[i] = n.NoteNumber
	}
	return out
}

func starts(notes []note.MidiNote) []float64 {
	out := make([]float64, len(notes))
	for i, n := range notes {
		out[i] = n.StartBeat
	}
	return out
}

func TestRandomWalkIsDeterministicForASeed(t *testing.T) {
	cfg := melody.DefaultWalkConfig()
	cfg.Scale = theory.Major.Intervals()

	a := melody.RandomWalk(seeded(7), cfg)
	b := melody.RandomWalk(seeded(7), cfg)
	assert.Equal(t, a, b)
	assert.Len(t, a, 16)
}

func TestRandomWalkStaysInScale(t *testing.T) {
	cfg := melody.DefaultWalkConfig()
	cfg.NumNotes = 64
	cfg.Scale = theory.PentatonicMajor.Intervals()

	for seed := uint64(0); seed < 20; seed++ {
		for _, n := range melody.RandomWalk(seeded(seed), cfg) {
			assert.True(t, theory.PentatonicMajor.Contains(n.NoteNumber, 60), n.Name())
			assert.GreaterOrEqual(t, n.NoteNumber, melody.WalkLowest)
			assert.LessOrEqual(t, n.NoteNumber, melody.WalkHighest)
			assert.GreaterOrEqual(t, n.Velocity, 70)
			assert.LessOrEqual(t, n.Velocity, 100)
		}
	}
}

func TestRandomWalkTiming(t *testing.T) {
	cfg := melody.DefaultWalkConfig()
	cfg.NumNotes = 4
	cfg.StartBeat = 2
	cfg.NoteLength = 0.5
	cfg.Gate = 1

	notes := melody.RandomWalk(seeded(1), cfg)
	assert.Equal(t, []float64{2, 2.5, 3, 3.5}, starts(notes))
	for _, n := range notes {
		assert.Equal(t, 0.5, n.LengthBeats)
		require.NoError(t, n.Validate())
	}
}

func TestRandomWalkZeroStepHoldsStartDegree(t *testing.T) {
	cfg := melody.DefaultWalkConfig()
	cfg.Scale = theory.Major.Intervals()
	cfg.StartNote = 61 // nearest C major degree below wins the tie
	cfg.Step = melody.Range{}

	for _, n := range melody.RandomWalk(seeded(3), cfg) {
		assert.Equal(t, 60, n.NoteNumber)
	}
}

func TestRandomWalkChromaticClamps(t *testing.T) {
	cfg := melody.DefaultWalkConfig()
	cfg.StartNote = 107
	cfg.Step = melody.Range{Min: 5, Max: 5}
	cfg.NumNotes = 3

	assert.Equal(t, []int{108, 108, 108}, pitches(melody.RandomWalk(seeded(2), cfg)))
	assert.Empty(t, melody.RandomWalk(seeded(2), melody.WalkConfig{}))
}

func TestArpeggiateUp(t *testing.T) {
	notes := melody.Arpeggiate(seeded(1), []int{60, 64, 67}, melody.ArpConfig{
		Pattern:    melody.PatternUp,
		TotalBeats: 2,
		NoteLength: 0.5,
		Velocity:   melody.Range{Min: 100, Max: 100},
	})

	require.Len(t, notes, 4)
	assert.Equal(t, []int{60, 64, 67, 60}, pitches(notes))
	assert.Equal(t, []float64{0, 0.5, 1, 1.5}, starts(notes))
	for _, n := range notes {
		assert.Equal(t, 100, n.Velocity)
		assert.Equal(t, 1, n.Channel)
	}
}

func TestArpeggiatePatterns(t *testing.T) {
	chord := []int{60, 64, 67, 72}
	tests := []struct {
		pattern melody.Pattern
		want    []int
	}{
		{melody.PatternDown, []int{72, 67, 64, 60, 72, 67, 64, 60}},
		{melody.PatternUpDown, []int{60, 64, 67, 72, 67, 64, 60, 64}},
		{melody.PatternDownUp, []int{72, 67, 64, 60, 64, 67, 72, 67}},
		{melody.PatternOutsideIn, []int{60, 72, 64, 67, 60, 72, 64, 67}},
	}

	for _, tt := range tests {
		t.Run(string(tt.pattern), func(t *testing.T) {
			cfg := melody.DefaultArpConfig()
			cfg.Pattern = tt.pattern
			cfg.TotalBeats = 2
			notes := melody.Arpeggiate(seeded(1), chord, cfg)
			assert.Equal(t, tt.want, pitches(notes))
		})
	}
}

func TestArpeggiateRandomPicksFromInput(t *testing.T) {
	cfg := melody.DefaultArpConfig()
	cfg.Pattern = melody.PatternRandom
	cfg.TotalBeats = 16

	notes := melody.Arpeggiate(seeded(9), []int{60, 64, 67}, cfg)
	require.Len(t, notes, 64)
	for _, n := range notes {
		assert.Contains(t, []int{60, 64, 67}, n.NoteNumber)
	}
	assert.Equal(t, notes, melody.Arpeggiate(seeded(9), []int{60, 64, 67}, cfg))
}

func TestArpeggiateNeverOverflowsTotalBeats(t *testing.T) {
	cfg := melody.DefaultArpConfig()
	cfg.StartBeat = 1
	cfg.TotalBeats = 1.9
	cfg.NoteLength = 0.5
	cfg.Gate = 1

	notes := melody.Arpeggiate(seeded(1), []int{60, 64}, cfg)
	require.Len(t, notes, 3)
	last := notes[len(notes)-1]
	assert.LessOrEqual(t, last.EndBeat(), cfg.StartBeat+cfg.TotalBeats)
}

func TestArpeggiateAccentsCycleStart(t *testing.T) {
	cfg := melody.DefaultArpConfig()
	cfg.Velocity = melody.Range{Min: 80, Max: 80}
	cfg.Accent = 10
	cfg.TotalBeats = 1.5

	notes := melody.Arpeggiate(seeded(1), []int{60, 64, 67}, cfg)
	assert.Equal(t, []int{90, 80, 80, 90, 80, 80}, []int{
		notes[0].Velocity, notes[1].Velocity, notes[2].Velocity,
		notes[3].Velocity, notes[4].Velocity, notes[5].Velocity,
	})
}

func TestArpeggiateEmptyInput(t *testing.T) {
	assert.Empty(t, melody.Arpeggiate(seeded(1), nil, melody.DefaultArpConfig()))

	cfg := melody.DefaultArpConfig()
	cfg.NoteLength = 0
	assert.Empty(t, melody.Arpeggiate(seeded(1), []int{60}, cfg))
}

func TestArpeggiateCapsNoteCount(t *testing.T) {
	cfg := melody.DefaultArpConfig()
	cfg.NoteLength = 1e-300
	notes := melody.Arpeggiate(seeded(1), []int{60, 64}, cfg)
	assert.Len(t, notes, melody.MaxArpNotes)

	cfg = melody.DefaultArpConfig()
	cfg.TotalBeats = math.Inf(1)
	assert.Len(t, melody.Arpeggiate(seeded(1), []int{60}, cfg), melody.MaxArpNotes)

	cfg = melody.DefaultArpConfig()
	cfg.NoteLength = math.NaN()
	assert.Empty(t, melody.Arpeggiate(seeded(1), []int{60}, cfg))
}

func TestSequenceChords(t *testing.T) {
	progression := []melody.ChordStep{
		{Root: 60, Chord: theory.MajorTriad},
		{Root: 65, Chord: theory.MajorTriad},
	}

	block := melody.SequenceChords(seeded(1), progression, melody.DefaultChordConfig())
	require.Len(t, block, 6)
	assert.Equal(t, []int{60, 64, 67, 65, 69, 72}, pitches(block))
	assert.Equal(t, []float64{0, 0, 0, 4, 4, 4}, starts(block))
	assert.InDelta(t, 3.8, block[0].LengthBeats, 1e-9)

	cfg := melody.DefaultChordConfig()
	cfg.Style = melody.StyleBroken
	cfg.BeatsPerChord = 3
	broken := melody.SequenceChords(seeded(1), progression, cfg)
	assert.Equal(t, []int{60, 64, 67, 65, 69, 72}, pitches(broken))
	assert.Equal(t, []float64{0, 1, 2, 3, 4, 5}, starts(broken))
}

func TestSequenceChordsVoicing(t *testing.T) {
	progression := []melody.ChordStep{
		{Root: 60, Chord: theory.MajorTriad, Voicing: []int{64, 67, 72}},
	}
	notes := melody.SequenceChords(seeded(2), progression, melody.DefaultChordConfig())
	assert.Equal(t, []int{64, 67, 72}, pitches(notes))
}

func TestSequenceChordsClampsHighPitches(t *testing.T) {
	progression := []melody.ChordStep{
		{Voicing: []int{124, 127, 132}},
		{Root: 120, Chord: theory.MajorTriad, Voicing: theory.MajorTriad.Inversion(120, 1)},
	}
	for _, style := range []melody.ChordStyle{melody.StyleBlock, melody.StyleBroken} {
		cfg := melody.DefaultChordConfig()
		cfg.Style = style
		notes := melody.SequenceChords(seeded(4), progression, cfg)

		require.Len(t, notes, 5, style)
		assert.Equal(t, []int{124, 127, 127, 124, 127}, pitches(notes), style)
		for _, n := range notes {
			assert.NoError(t, n.Validate(), style)
		}
	}
}

func TestQuantizeBeat(t *testing.T) {
	tests := []struct {
		value, resolution, want float64
	}{
		{1.37, 0.25, 1.25},
		{1.13, 0.25, 1.25},
		{1.0, 0.25, 1.0},
		{1.37, 0.5, 1.5},
		{1.2, 0.5, 1.0},
		{1.6, 1.0, 2.0},
		{0.4, 1.0, 0.0},
		{0.125, 0.25, 0.25}, // half rounds up
		{0.5, 1.0, 1.0},
		{2.5, 1.0, 3.0},
		{1.37, 0, 1.37},
	}

	for _, tt := range tests {
		assert.InDelta(t, tt.want, melody.QuantizeBeat(tt.value, tt.resolution), 1e-9, "%v @ %v", tt.value, tt.resolution)
	}
}

func TestQuantizeBeatIsIdempotent(t *testing.T) {
	rng := seeded(4)
	for _, res := range []float64{melody.Grid64th, melody.Grid16th, 0.1, 1.0 / 3, melody.GridWhole} {
		for i := 0; i < 200; i++ {
			v := rng.Float64() * 32
			once := melody.QuantizeBeat(v, res)
			assert.Equal(t, once, melody.QuantizeBeat(once, res), "%v @ %v", v, res)
		}
	}
}

func TestQuantizeNotes(t *testing.T) {
	notes := []note.MidiNote{
		note.MustNew(60, 0.13, 0.5, 100, 1),
		note.MustNew(62, 0.87, 0.5, 100, 1),
	}

	q := melody.QuantizeNotes(notes, 0.25, false)
	assert.Equal(t, 0.25, q[0].StartBeat)
	assert.Equal(t, 0.75, q[1].StartBeat)
	assert.Equal(t, 0.13, notes[0].StartBeat, "input untouched")
}

func TestQuantizeNotesKeepsLengthPositive(t *testing.T) {
	notes := []note.MidiNote{
		note.MustNew(60, 0, 0.05, 100, 1),
		note.MustNew(60, 1, 0.6, 100, 1),
		note.MustNew(60, 2, 0.01, 100, 1),
	}

	q := melody.QuantizeNotes(notes, 0.25, true)
	assert.Equal(t, 0.25, q[0].LengthBeats)
	assert.Equal(t, 0.5, q[1].LengthBeats)
	for _, n := range q {
		assert.Greater(t, n.LengthBeats, 0.0)
		require.NoError(t, n.Validate())
	}
}

func TestHumanize(t *testing.T) {
	notes := make([]note.MidiNote, 32)
	for i := range notes {
		notes[i] = note.MustNew(60+i%12, float64(i)*0.5, 0.5, []int{0, 5, 120, 127}[i%4], 1)
	}

	cfg := melody.HumanizeConfig{Timing: 0.1, Velocity: 20, Length: 0.6}
	out := melody.Humanize(seeded(11), notes, cfg)

	require.Len(t, out, len(notes))
	changed := false
	for i, n := range out {
		assert.Equal(t, notes[i].NoteNumber, n.NoteNumber, "order preserved")
		assert.GreaterOrEqual(t, n.Velocity, 0)
		assert.LessOrEqual(t, n.Velocity, 127)
		assert.GreaterOrEqual(t, n.LengthBeats, melody.MinLength)
		assert.GreaterOrEqual(t, n.StartBeat, 0.0)
		assert.InDelta(t, notes[i].StartBeat, n.StartBeat, 0.1+1e-9)
		if n != notes[i] {
			changed = true
		}
	}
	assert.True(t, changed)
	assert.Equal(t, out, melody.Humanize(seeded(11), notes, cfg))
	assert.Equal(t, 0.0, notes[0].StartBeat, "input untouched")
}

func TestHumanizeZeroVarianceIsIdentity(t *testing.T) {
	notes := []note.MidiNote{note.MustNew(60, 1, 1, 100, 1)}
	assert.Equal(t, notes, melody.Humanize(seeded(1), notes, melody.HumanizeConfig{}))
}

func TestRemoveOverlapsTruncatesEarlierNote(t *testing.T) {
	notes := []note.MidiNote{
		note.MustNew(60, 0, 2, 100, 1),
		note.MustNew(62, 1, 2, 100, 1),
	}

	out := melody.RemoveOverlaps(notes)
	require.Len(t, out, 2)
	assert.Equal(t, 1.0, out[0].LengthBeats)
	assert.Equal(t, 2.0, out[1].LengthBeats)
	assert.Equal(t, 2.0, notes[0].LengthBeats, "input untouched")
}

func TestRemoveOverlapsKeepsChannelsApart(t *testing.T) {
	notes := []note.MidiNote{
		note.MustNew(60, 0, 2, 100, 1),
		note.MustNew(62, 1, 2, 100, 2),
	}

	out := melody.RemoveOverlaps(notes)
	require.Len(t, out, 2)
	assert.Equal(t, 2.0, out[0].LengthBeats)
}

func TestRemoveOverlapsDropsZeroLengthResult(t *testing.T) {
	notes := []note.MidiNote{
		note.MustNew(64, 1, 1, 100, 1),
		note.MustNew(60, 0, 4, 100, 1),
		note.MustNew(67, 1, 1, 100, 1),
	}

	out := melody.RemoveOverlaps(notes)
	require.Len(t, out, 2)
	assert.Equal(t, []int{60, 67}, pitches(out))
	assert.Equal(t, 1.0, out[0].LengthBeats)
}

func TestRemoveOverlapsCollapsesSameChannelChord(t *testing.T) {
	chord := []note.MidiNote{
		note.MustNew(60, 0, 1, 100, 1),
		note.MustNew(64, 0, 1, 100, 1),
		note.MustNew(67, 0, 1, 100, 1),
		note.MustNew(48, 0, 1, 100, 2),
	}

	out := melody.RemoveOverlaps(chord)
	assert.Equal(t, []int{67, 48}, pitches(out))
}

func TestRemoveOverlapsNoOverlap(t *testing.T) {
	notes := []note.MidiNote{
		note.MustNew(60, 0, 0.5, 100, 1),
		note.MustNew(60, 0.5, 0.5, 100, 1),
		note.MustNew(60, 1, 0.5, 100, 1),
	}
	assert.Equal(t, notes, melody.RemoveOverlaps(notes))
	assert.Empty(t, melody.RemoveOverlaps(nil))
}
