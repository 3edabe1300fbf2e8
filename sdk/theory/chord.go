package theory

import (
	"slices"
	"sort"
)

// Chord is a named, read-only table of semitone offsets from a root.
type Chord struct {
	name      string
	intervals []int
}

// Common chord types.
var (
	// triads
	MajorTriad      = newChord("Major", 0, 4, 7)
	MinorTriad      = newChord("Minor", 0, 3, 7)
	DiminishedTriad = newChord("Diminished", 0, 3, 6)
	AugmentedTriad  = newChord("Augmented", 0, 4, 8)
	Sus2            = newChord("Sus2", 0, 2, 7)
	Sus4            = newChord("Sus4", 0, 5, 7)

	// sevenths
	Major7          = newChord("Major 7", 0, 4, 7, 11)
	Minor7          = newChord("Minor 7", 0, 3, 7, 10)
	Dominant7       = newChord("Dominant 7", 0, 4, 7, 10)
	Diminished7     = newChord("Diminished 7", 0, 3, 6, 9)
	HalfDiminished7 = newChord("Half Diminished 7", 0, 3, 6, 10) // m7b5
	MinorMajor7     = newChord("Minor Major 7", 0, 3, 7, 11)
	Augmented7      = newChord("Augmented 7", 0, 4, 8, 10)
	AugmentedMajor7 = newChord("Augmented Major 7", 0, 4, 8, 11)

	// extended
	Major9    = newChord("Major 9", 0, 4, 7, 11, 14)
	Minor9    = newChord("Minor 9", 0, 3, 7, 10, 14)
	Dominant9 = newChord("Dominant 9", 0, 4, 7, 10, 14)
	Major11   = newChord("Major 11", 0, 4, 7, 11, 14, 17)
	Minor11   = newChord("Minor 11", 0, 3, 7, 10, 14, 17)
	Major13   = newChord("Major 13", 0, 4, 7, 11, 14, 17, 21)

	Add9        = newChord("Add9", 0, 4, 7, 14)
	Add11       = newChord("Add11", 0, 4, 7, 17)
	Power       = newChord("Power", 0, 7)
	PowerOctave = newChord("Power Octave", 0, 7, 12)
	Sixth       = newChord("Sixth", 0, 4, 7, 9)
	Minor6      = newChord("Minor 6", 0, 3, 7, 9)
)

var chordsByName = indexChords(
	MajorTriad, MinorTriad, DiminishedTriad, AugmentedTriad, Sus2, Sus4,
	Major7, Minor7, Dominant7, Diminished7, HalfDiminished7, MinorMajor7,
	Augmented7, AugmentedMajor7, Major9, Minor9, Dominant9, Major11, Minor11,
	Major13, Add9, Add11, Power, PowerOctave, Sixth, Minor6,
)

func newChord(name string, intervals ...int) Chord {
	return Chord{name: name, intervals: intervals}
}

func indexChords(chords ...Chord) map[string]Chord {
	m := make(map[string]Chord, len(chords))
	for _, c := range chords {
		m[normalizeName(c.name)] = c
	}
	return m
}

// Name returns the display name, e.g. "Minor 7".
func (c Chord) Name() string { return c.name }

// Intervals returns a copy of the semitone offsets.
func (c Chord) Intervals() []int { return slices.Clone(c.intervals) }

// Notes returns the chord pitches in root position.
func (c Chord) Notes(root int) []int {
	return Notes(root, c.intervals, 1)
}

// Inversion returns the chord voiced in inversion n (0 = root position).
func (c Chord) Inversion(root, n int) []int {
	return Inversion(root, c.intervals, n)
}

// Inversion raises the lowest note by an octave n times, moving it to the top
// each time. n wraps modulo the number of notes. Like Notes, it never returns
// a pitch above 127: a note that would be raised past it is left out.
func Inversion(root int, intervals []int, n int) []int {
	notes := Notes(root, intervals, 1)
	if len(notes) == 0 {
		return notes
	}

	n = ((n % len(notes)) + len(notes)) % len(notes)
	for i := 0; i < n && len(notes) > 0; i++ {
		lowest := notes[0]
		notes = notes[1:]
		if lowest+12 <= 127 {
			notes = append(notes, lowest+12)
		}
	}
	return notes
}

// VoiceLead picks the inversion of chord on root whose voices move least from
// the previous chord. Voices without a counterpart cost an octave each.
func VoiceLead(from []int, root int, chord Chord) []int {
	if len(from) == 0 {
		return chord.Notes(root)
	}

	var best []int
	bestMovement := -1
	for inv := range chord.intervals {
		candidate := chord.Inversion(root, inv)
		movement := 0
		for i, n := range candidate {
			if i < len(from) {
				movement += abs(n - from[i])
			} else {
				movement += 12
			}
		}
		if bestMovement < 0 || movement < bestMovement {
			best, bestMovement = candidate, movement
		}
	}
	if best == nil {
		return chord.Notes(root)
	}
	return best
}

// ChordByName looks a chord type up case-insensitively ("minor_7", "Minor 7").
func ChordByName(name string) (Chord, bool) {
	c, ok := chordsByName[normalizeName(name)]
	return c, ok
}

// ChordNames lists the display names of all chord types, sorted.
func ChordNames() []string {
	names := make([]string, 0, len(chordsByName))
	for _, c := range chordsByName {
		names = append(names, c.name)
	}
	sort.Strings(names)
	return names
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
