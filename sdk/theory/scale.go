package theory

import (
	"math"
	"slices"
	"sort"
	"strings"
)

// Scale is a named, read-only table of semitone offsets from a root.
type Scale struct {
	name      string
	intervals []int
}

// Common scales.
var (
	Major           = newScale("Major", 0, 2, 4, 5, 7, 9, 11)
	Ionian          = Major
	Minor           = newScale("Minor", 0, 2, 3, 5, 7, 8, 10)
	NaturalMinor    = Minor
	Aeolian         = Minor
	HarmonicMinor   = newScale("Harmonic Minor", 0, 2, 3, 5, 7, 8, 11)
	MelodicMinor    = newScale("Melodic Minor", 0, 2, 3, 5, 7, 9, 11)
	PentatonicMajor = newScale("Pentatonic Major", 0, 2, 4, 7, 9)
	PentatonicMinor = newScale("Pentatonic Minor", 0, 3, 5, 7, 10)
	Blues           = newScale("Blues", 0, 3, 5, 6, 7, 10)
	Dorian          = newScale("Dorian", 0, 2, 3, 5, 7, 9, 10)
	Phrygian        = newScale("Phrygian", 0, 1, 3, 5, 7, 8, 10)
	Lydian          = newScale("Lydian", 0, 2, 4, 6, 7, 9, 11)
	Mixolydian      = newScale("Mixolydian", 0, 2, 4, 5, 7, 9, 10)
	Locrian         = newScale("Locrian", 0, 1, 3, 5, 6, 8, 10)
	Chromatic       = newScale("Chromatic", 0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11)
	WholeTone       = newScale("Whole Tone", 0, 2, 4, 6, 8, 10)
	Diminished      = newScale("Diminished", 0, 2, 3, 5, 6, 8, 9, 11) // half-whole
	Augmented       = newScale("Augmented", 0, 3, 4, 7, 8, 11)
	Hirajoshi       = newScale("Hirajoshi", 0, 2, 3, 7, 8)
	InSen           = newScale("In Sen", 0, 1, 5, 7, 10)
	HungarianMinor  = newScale("Hungarian Minor", 0, 2, 3, 6, 7, 8, 11)
	Spanish         = newScale("Spanish", 0, 1, 4, 5, 7, 8, 10)
	Arabic          = newScale("Arabic", 0, 1, 4, 5, 7, 8, 11)
)

var scalesByName = indexScales(
	Major, Minor, HarmonicMinor, MelodicMinor, PentatonicMajor, PentatonicMinor,
	Blues, Dorian, Phrygian, Lydian, Mixolydian, Locrian, Chromatic, WholeTone,
	Diminished, Augmented, Hirajoshi, InSen, HungarianMinor, Spanish, Arabic,
)

// scale aliases resolvable by name
var scaleAliases = map[string]Scale{
	"ionian":        Major,
	"natural minor": Minor,
	"aeolian":       Minor,
}

func newScale(name string, intervals ...int) Scale {
	return Scale{name: name, intervals: intervals}
}

func indexScales(scales ...Scale) map[string]Scale {
	m := make(map[string]Scale, len(scales))
	for _, s := range scales {
		m[normalizeName(s.name)] = s
	}
	return m
}

// Name returns the display name, e.g. "Pentatonic Minor".
func (s Scale) Name() string { return s.name }

// Intervals returns a copy of the semitone offsets.
func (s Scale) Intervals() []int { return slices.Clone(s.intervals) }

// Notes returns the scale pitches from root across the given number of octaves.
func (s Scale) Notes(root, octaves int) []int {
	return Notes(root, s.intervals, octaves)
}

// Contains reports whether note belongs to the scale built on root, in any octave.
func (s Scale) Contains(note, root int) bool {
	return slices.Contains(s.intervals, PitchClass(note-root))
}

// Nearest returns the scale pitch closest to note. Ties resolve to the lower pitch.
func (s Scale) Nearest(note, root int) int {
	base := (note/12)*12 + PitchClass(root)
	candidates := Notes(base-12, s.intervals, 3)
	if len(candidates) == 0 {
		return note
	}

	best := candidates[0]
	for _, c := range candidates[1:] {
		if math.Abs(float64(c-note)) < math.Abs(float64(best-note)) {
			best = c
		}
	}
	return best
}

// Notes expands intervals from root: for each octave o and interval i it emits
// root+i+12*o in (octave, interval) order. Pitches outside 0-127 are skipped.
func Notes(root int, intervals []int, octaves int) []int {
	notes := make([]int, 0, len(intervals)*max(octaves, 0))
	for o := 0; o < octaves; o++ {
		for _, i := range intervals {
			n := root + i + 12*o
			if n >= 0 && n <= 127 {
				notes = append(notes, n)
			}
		}
	}
	return notes
}

// ScaleByName looks a scale up case-insensitively; "pentatonic_minor",
// "Pentatonic Minor" and "PENTATONIC-MINOR" all resolve.
func ScaleByName(name string) (Scale, bool) {
	key := normalizeName(name)
	if s, ok := scalesByName[key]; ok {
		return s, true
	}
	s, ok := scaleAliases[key]
	return s, ok
}

// ScaleNames lists the display names of all scales, sorted.
func ScaleNames() []string {
	names := make([]string, 0, len(scalesByName))
	for _, s := range scalesByName {
		names = append(names, s.name)
	}
	sort.Strings(names)
	return names
}

func normalizeName(name string) string {
	r := strings.NewReplacer("_", " ", "-", " ")
	return strings.Join(strings.Fields(strings.ToLower(r.Replace(name))), " ")
}
