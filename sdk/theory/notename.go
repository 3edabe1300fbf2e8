// Package theory holds note-name conversion and the scale and chord interval tables.
package theory

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrFormat is returned for malformed pitch names and out-of-range MIDI numbers.
var ErrFormat = errors.New("invalid note format")

// DefaultOctave is used by ToMidi when a name carries no octave.
const DefaultOctave = 4

var letterOffsets = map[byte]int{
	'C': 0, 'D': 2, 'E': 4, 'F': 5, 'G': 7, 'A': 9, 'B': 11,
}

var (
	sharpNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}
	flatNames  = [12]string{"C", "Db", "D", "Eb", "E", "F", "Gb", "G", "Ab", "A", "Bb", "B"}
)

// ToMidi converts a name like "C4", "F#5" or "Bb3" to a MIDI number using C4 = 60.
func ToMidi(name string) (int, error) {
	return ToMidiDefault(name, DefaultOctave)
}

// ToMidiDefault is ToMidi with an explicit octave for names that omit one ("D", "F#").
func ToMidiDefault(name string, defaultOctave int) (int, error) {
	s := strings.TrimSpace(name)
	if s == "" {
		return 0, fmt.Errorf("%w: empty name", ErrFormat)
	}

	pc, ok := letterOffsets[upper(s[0])]
	if !ok {
		return 0, fmt.Errorf("%w: unknown pitch letter in %q", ErrFormat, name)
	}

	accidental := 0
	rest := s[1:]
	for len(rest) > 0 && (rest[0] == '#' || rest[0] == 'b') {
		if rest[0] == '#' {
			accidental++
		} else {
			accidental--
		}
		rest = rest[1:]
	}

	octave := defaultOctave
	if rest != "" {
		o, err := strconv.Atoi(rest)
		if err != nil {
			return 0, fmt.Errorf("%w: non-numeric octave in %q", ErrFormat, name)
		}
		octave = o
	}

	midi := (octave+1)*12 + pc + accidental
	if midi < 0 || midi > 127 {
		return 0, fmt.Errorf("%w: %q is outside the MIDI range", ErrFormat, name)
	}
	return midi, nil
}

// FromMidi returns the sharp spelling of a MIDI number, e.g. 61 -> "C#4".
func FromMidi(number int) (string, error) {
	return fromMidi(number, sharpNames)
}

// FromMidiFlats returns the flat spelling of a MIDI number, e.g. 70 -> "Bb4".
func FromMidiFlats(number int) (string, error) {
	return fromMidi(number, flatNames)
}

func fromMidi(number int, names [12]string) (string, error) {
	if number < 0 || number > 127 {
		return "", fmt.Errorf("%w: MIDI number %d out of range 0-127", ErrFormat, number)
	}
	return names[PitchClass(number)] + strconv.Itoa(Octave(number)), nil
}

// Transpose moves a named pitch by semitones and returns its sharp spelling.
func Transpose(name string, semitones int) (string, error) {
	midi, err := ToMidi(name)
	if err != nil {
		return "", err
	}
	return FromMidi(midi + semitones)
}

// Interval returns the distance in semitones from a to b (positive when b is higher).
func Interval(a, b string) (int, error) {
	from, err := ToMidi(a)
	if err != nil {
		return 0, err
	}
	to, err := ToMidi(b)
	if err != nil {
		return 0, err
	}
	return to - from, nil
}

// PitchClass returns 0-11 where 0 = C.
func PitchClass(number int) int {
	return ((number % 12) + 12) % 12
}

// Octave returns the octave of a MIDI number, C4 = 4.
func Octave(number int) int {
	if number < 0 {
		return (number+1)/12 - 2
	}
	return number/12 - 1
}

func upper(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - 'a' + 'A'
	}
	return c
}
