package theory_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/aurora-melody/sdk/sdk/theory"
)

func TestToMidi(t *testing.T) {
	tests := []struct {
		name string
		want int
	}{
		{"C4", 60},
		{"A4", 69},
		{"F#5", 78},
		{"Bb3", 58},
		{"C-1", 0},
		{"G9", 127},
		{"c4", 60},
		{"Cb4", 59},
		{"E#4", 65},
		{"C##4", 62},
		{"D", 62},
		{" A4 ", 69},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToMidi(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestToMidiRejectsMalformedNames(t *testing.T) {
	for _, name := range []string{"", "H4", "X", "C#x", "4C", "Cb-1", "G#9", "C4.5"} {
		_, err := ToMidi(name)
		assert.ErrorIs(t, err, ErrFormat, name)
	}
}

func TestToMidiDefaultOctave(t *testing.T) {
	got, err := ToMidiDefault("F#", 2)
	require.NoError(t, err)
	assert.Equal(t, 42, got)
}

func TestFromMidi(t *testing.T) {
	name, err := FromMidi(60)
	require.NoError(t, err)
	assert.Equal(t, "C4", name)

	name, err = FromMidi(70)
	require.NoError(t, err)
	assert.Equal(t, "A#4", name)

	name, err = FromMidiFlats(70)
	require.NoError(t, err)
	assert.Equal(t, "Bb4", name)

	name, err = FromMidi(0)
	require.NoError(t, err)
	assert.Equal(t, "C-1", name)

	_, err = FromMidi(128)
	assert.ErrorIs(t, err, ErrFormat)
	_, err = FromMidi(-1)
	assert.ErrorIs(t, err, ErrFormat)
}

func TestMidiRoundTrip(t *testing.T) {
	for n := 0; n <= 127; n++ {
		name, err := FromMidi(n)
		require.NoError(t, err)
		back, err := ToMidi(name)
		require.NoError(t, err)
		assert.Equal(t, n, back, name)

		flat, err := FromMidiFlats(n)
		require.NoError(t, err)
		back, err = ToMidi(flat)
		require.NoError(t, err)
		assert.Equal(t, n, back, flat)
	}
}

func TestNameRoundTripGivesCanonicalSpelling(t *testing.T) {
	for in, want := range map[string]string{"Bb3": "A#3", "Db4": "C#4", "Cb4": "B3", "E#4": "F4", "G4": "G4"} {
		midi, err := ToMidi(in)
		require.NoError(t, err)
		got, err := FromMidi(midi)
		require.NoError(t, err)
		assert.Equal(t, want, got, in)
	}
}

func TestTransposeAndInterval(t *testing.T) {
	got, err := Transpose("C4", 7)
	require.NoError(t, err)
	assert.Equal(t, "G4", got)

	got, err = Transpose("A4", -12)
	require.NoError(t, err)
	assert.Equal(t, "A3", got)

	_, err = Transpose("G9", 1)
	assert.ErrorIs(t, err, ErrFormat)

	iv, err := Interval("C4", "E4")
	require.NoError(t, err)
	assert.Equal(t, 4, iv)

	iv, err = Interval("C5", "A4")
	require.NoError(t, err)
	assert.Equal(t, -3, iv)
}

func TestScaleNotes(t *testing.T) {
	assert.Equal(t, []int{60, 62, 64, 65, 67, 69, 71}, Notes(60, Major.Intervals(), 1))
	assert.Equal(t, []int{60, 62, 64, 65, 67, 69, 71}, Major.Notes(60, 1))

	two := Major.Notes(60, 2)
	require.Len(t, two, 14)
	for i := 1; i < len(two); i++ {
		assert.Greater(t, two[i], two[i-1])
	}

	assert.Equal(t, []int{57, 60, 62, 64, 67, 69, 72, 74, 76, 79}, PentatonicMinor.Notes(57, 2))
	assert.Empty(t, Major.Notes(60, 0))
}

func TestScaleNotesSkipsOutOfRangePitches(t *testing.T) {
	notes := Major.Notes(120, 2)
	assert.Equal(t, []int{120, 122, 124, 125, 127}, notes)
}

func TestScaleIntervalsAreCopies(t *testing.T) {
	iv := Major.Intervals()
	iv[0] = 99
	assert.Equal(t, 0, Major.Intervals()[0])
}

func TestScaleContainsAndNearest(t *testing.T) {
	assert.True(t, Major.Contains(62, 60))
	assert.True(t, Major.Contains(74, 60))
	assert.False(t, Major.Contains(61, 60))
	assert.True(t, Minor.Contains(60, 57))
	assert.False(t, Minor.Contains(58, 57))

	assert.Equal(t, 60, Major.Nearest(61, 60))
	assert.Equal(t, 64, Major.Nearest(64, 60))
	assert.Equal(t, 65, Major.Nearest(66, 60))
	assert.Equal(t, 72, Major.Nearest(72, 48))
}

func TestScaleByName(t *testing.T) {
	for _, name := range []string{"Pentatonic Minor", "pentatonic_minor", "PENTATONIC-MINOR"} {
		s, ok := ScaleByName(name)
		require.True(t, ok, name)
		assert.Equal(t, "Pentatonic Minor", s.Name())
	}

	s, ok := ScaleByName("aeolian")
	require.True(t, ok)
	assert.Equal(t, Minor.Intervals(), s.Intervals())

	_, ok = ScaleByName("nope")
	assert.False(t, ok)

	assert.Contains(t, ScaleNames(), "Blues")
	assert.Len(t, ScaleNames(), 21)
}

func TestChordNotes(t *testing.T) {
	assert.Equal(t, []int{60, 64, 67}, MajorTriad.Notes(60))
	assert.Equal(t, []int{57, 60, 64, 67}, Minor7.Notes(57))
}

func TestInversion(t *testing.T) {
	assert.Equal(t, []int{64, 67, 72}, Inversion(60, MajorTriad.Intervals(), 1))
	assert.Equal(t, []int{67, 72, 76}, MajorTriad.Inversion(60, 2))
	assert.Equal(t, []int{60, 64, 67}, MajorTriad.Inversion(60, 0))
	assert.Equal(t, []int{64, 67, 72}, MajorTriad.Inversion(60, 4), "wraps modulo chord size")
	assert.Equal(t, []int{67, 70, 72, 76}, Dominant7.Inversion(60, 2))

	for n := 0; n < 3; n++ {
		notes := MajorTriad.Inversion(60, n)
		for i := 1; i < len(notes); i++ {
			assert.Greater(t, notes[i], notes[i-1])
		}
	}
}

func TestInversionStaysInMidiRange(t *testing.T) {
	assert.Equal(t, []int{124, 127}, MajorTriad.Inversion(120, 1))
	assert.Equal(t, []int{127}, MajorTriad.Inversion(120, 2))
	assert.Equal(t, []int{112, 115, 118, 120}, Dominant7.Inversion(108, 1))

	for root := 96; root <= 127; root++ {
		for n := 0; n < 4; n++ {
			for _, p := range Dominant7.Inversion(root, n) {
				assert.LessOrEqual(t, p, 127, "root %d inversion %d", root, n)
			}
		}
	}
}

func TestVoiceLead(t *testing.T) {
	// C major to F major stays in root position
	assert.Equal(t, []int{65, 69, 72}, VoiceLead([]int{60, 64, 67}, 65, MajorTriad))

	// C major to G major: B-D-G moves least
	assert.Equal(t, []int{59, 62, 67}, VoiceLead([]int{60, 64, 67}, 55, MajorTriad))

	assert.Equal(t, []int{65, 69, 72}, VoiceLead(nil, 65, MajorTriad))
}

func TestChordByName(t *testing.T) {
	c, ok := ChordByName("minor_7")
	require.True(t, ok)
	assert.Equal(t, []int{0, 3, 7, 10}, c.Intervals())

	_, ok = ChordByName("mystery")
	assert.False(t, ok)
	assert.Len(t, ChordNames(), 26)
}
